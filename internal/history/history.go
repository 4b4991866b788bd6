// Package history keeps the linear undo/redo timeline of committed
// model snapshots.
package history

import "signflow/internal/annotation"

// Stack is a linear history of model snapshots. Index points at the
// snapshot reflecting the current model state; -1 means the state
// before the first commit, i.e. an empty model.
//
// Commits are whole-model snapshots, one per completed gesture. Undo
// and redo move the index and hand back the snapshot to restore; they
// never mutate the model themselves.
type Stack struct {
	entries []annotation.Snapshot
	index   int
}

// New returns an empty history.
func New() *Stack {
	return &Stack{index: -1}
}

// Commit records a snapshot as the new present. Any redo tail beyond
// the current index is discarded.
func (s *Stack) Commit(snap annotation.Snapshot) {
	s.entries = append(s.entries[:s.index+1], snap)
	s.index = len(s.entries) - 1
}

// CanUndo reports whether there is a state before the present one.
func (s *Stack) CanUndo() bool {
	return s.index >= 0
}

// CanRedo reports whether a later state was undone away from.
func (s *Stack) CanRedo() bool {
	return s.index < len(s.entries)-1
}

// Undo steps back one commit and returns the snapshot to restore.
// Stepping back past the first commit returns an empty snapshot, the
// state the model had before anything was placed. ok is false when
// there is nothing to undo.
func (s *Stack) Undo() (annotation.Snapshot, bool) {
	if !s.CanUndo() {
		return nil, false
	}
	s.index--
	if s.index < 0 {
		return annotation.Snapshot{}, true
	}
	return s.entries[s.index], true
}

// Redo steps forward one commit and returns the snapshot to restore.
// ok is false when there is nothing to redo.
func (s *Stack) Redo() (annotation.Snapshot, bool) {
	if !s.CanRedo() {
		return nil, false
	}
	s.index++
	return s.entries[s.index], true
}

// Len returns the number of committed snapshots.
func (s *Stack) Len() int {
	return len(s.entries)
}

// Reset discards the whole timeline.
func (s *Stack) Reset() {
	s.entries = nil
	s.index = -1
}
