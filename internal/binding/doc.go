// Package binding keeps an external value and the selection of a list
// control in sync.
//
// A Controller derives the selected entry straight from the external value,
// so a selection label is available before the collection has ever been
// evaluated. The collection itself is evaluated and projected only when the
// list is opened, and again on every filter change when filtering is
// delegated to the collection expression (external filter mode).
//
// Loads may be split into Begin, Fetch and Apply so that Fetch can run off
// the caller's goroutine. Only the most recently begun request is applied;
// results of superseded requests are discarded.
package binding
