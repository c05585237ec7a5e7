package state

// Batch runs fn with notifications deferred.
// Paths written while fn runs are collected as a set; when fn returns,
// fails or panics, each collected path is notified once with its final value.
// Batches opened inside fn join the outermost batch.
func (s *Store) Batch(fn func() error) error {
	s.batchMu.Lock()
	if s.batchDepth == 0 {
		s.batchSeen = make(map[Path]bool)
		s.batchPaths = nil
	}
	s.batchDepth++
	s.batchMu.Unlock()

	defer s.endBatch()

	return fn()
}

// InBatch reports whether a batch is open.
func (s *Store) InBatch() bool {
	s.batchMu.Lock()
	defer s.batchMu.Unlock()
	return s.batchDepth > 0
}

func (s *Store) endBatch() {
	s.batchMu.Lock()
	s.batchDepth--
	if s.batchDepth > 0 {
		s.batchMu.Unlock()
		return
	}
	pending := s.batchPaths
	s.batchPaths = nil
	s.batchSeen = nil
	s.batchMu.Unlock()

	s.config.logger.Debug("state batch flushed", "paths", len(pending))
	for _, p := range pending {
		s.notifyPath(p)
	}
}
