package editsvc

import "errors"

// ErrDeclined is returned when the fast path cannot locate the edit
// unambiguously and no generator is configured. It is the expected
// non-answer, not a failure of the service.
var ErrDeclined = errors.New("editsvc: patch declined")

// ErrInvalidInput is returned when an edit request fails validation.
var ErrInvalidInput = errors.New("editsvc: invalid input")

// ErrNotFound is returned when a patch ID has no journal entry.
var ErrNotFound = errors.New("editsvc: patch not found")

// ErrFileChanged is returned by Undo when the file no longer matches the
// journaled post-patch state. Restoring over foreign edits would destroy
// them, so the undo is refused.
var ErrFileChanged = errors.New("editsvc: file changed since patch")

// ErrAlreadyReverted is returned by Undo for a patch that was undone before.
var ErrAlreadyReverted = errors.New("editsvc: patch already reverted")
