// Package state provides the reactive state store shared by the portfolio
// components.
//
// The store holds one tree of values addressed by dot-separated paths
// ("preferences.reducedMotion"). Writes notify subscribers synchronously.
//
// # Exact-Path Subscriptions
//
// Subscribers are indexed by the literal Path used at subscribe time. A write
// to "preferences.reducedMotion" notifies subscribers of that path only;
// subscribers of "preferences" are not notified, and the reverse also holds.
// Each subscriber receives the value read back from the tree after the write
// completes.
//
// # Writes
//
//	store.Set("currentSection", "about")
//	store.SetMany(
//	    state.Update{Path: "currentSection", Value: "contact"},
//	    state.Update{Path: "isMenuOpen", Value: false},
//	)
//
// SetMany applies every write before any subscriber runs and notifies each
// distinct path once. Every write call appends a HistoryEntry holding the
// tree before and after; the history is capped and evicts its oldest entry
// first. Silent() suppresses notifications but not history.
//
// # Batches
//
// Batch defers notifications until its function returns, collapsing repeated
// writes to the same path into one notification carrying the final value.
// The flush happens even if the function fails or panics.
//
// # Computed Values
//
// Computed derives a target path from dependency paths and rewrites it,
// silently, whenever a dependency changes. Registrations that would create a
// dependency cycle are rejected with ErrComputedCycle. Because derived
// writes are silent, a computed value that depends on another computed
// target is not refreshed when that target changes.
package state
