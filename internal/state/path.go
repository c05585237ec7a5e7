package state

import "strings"

// Separator separates path segments.
const Separator = "."

// Path addresses a value in the state tree using dot notation.
// Examples: "currentSection", "preferences.reducedMotion".
type Path string

// String returns the path as a string.
func (p Path) String() string {
	return string(p)
}

// Segments returns the path split by the separator.
func (p Path) Segments() []string {
	if p == "" {
		return nil
	}
	return strings.Split(string(p), Separator)
}

// Valid reports whether the path is non-empty and has no empty segments.
func (p Path) Valid() bool {
	if p == "" {
		return false
	}
	for _, seg := range p.Segments() {
		if seg == "" {
			return false
		}
	}
	return true
}

// Parent returns the path without its last segment, or "" for a top-level
// path.
func (p Path) Parent() Path {
	idx := strings.LastIndex(string(p), Separator)
	if idx < 0 {
		return ""
	}
	return p[:idx]
}

// Child returns the path extended by one segment.
func (p Path) Child(segment string) Path {
	if p == "" {
		return Path(segment)
	}
	return p + Separator + Path(segment)
}

// Base returns the last segment.
func (p Path) Base() string {
	s := string(p)
	idx := strings.LastIndex(s, Separator)
	if idx < 0 {
		return s
	}
	return s[idx+1:]
}
