package collection

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by a Collection is an *OpError whose
// Kind is one of these; use errors.Is to test for them. Not finding a
// document is never an error.
var (
	// ErrInvalidArgument is returned when a nil item is inserted or updated
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrAlreadyExists is returned when inserting an item that already has an id
	ErrAlreadyExists = errors.New("item has already been inserted")

	// ErrNotInserted is returned when updating an item that has no id yet
	ErrNotInserted = errors.New("item has not been inserted")

	// ErrQueryFailed is returned when a query cannot be evaluated
	ErrQueryFailed = errors.New("query failed")

	// ErrInsertFailed is returned after a failed insert has been rolled back
	ErrInsertFailed = errors.New("insert failed")

	// ErrUpdateFailed is returned after a failed update has been rolled back
	ErrUpdateFailed = errors.New("update failed")

	// ErrRemoveFailed is returned after a failed remove has been rolled back
	ErrRemoveFailed = errors.New("remove failed")

	// ErrPersistFailed is returned when the collection file cannot be written
	ErrPersistFailed = errors.New("persist failed")

	// ErrLoadFailed is returned when the collection file cannot be read
	ErrLoadFailed = errors.New("load failed")
)

// OpError describes a failed collection operation
type OpError struct {
	Op         string // insert, find, update, remove, persist, refresh
	Collection string
	ID         int64 // primary id involved, 0 when not applicable
	Kind       error // one of the Err* kinds above
	Err        error // underlying cause, may be nil
}

// Error implements the error interface
func (e *OpError) Error() string {
	var msg strings.Builder
	msg.WriteString(e.Op)
	if e.Collection != "" {
		msg.WriteString(" " + e.Collection)
	}
	if e.ID != 0 {
		msg.WriteString(fmt.Sprintf(" (_id %d)", e.ID))
	}
	msg.WriteString(": ")
	msg.WriteString(e.Kind.Error())
	if e.Err != nil {
		msg.WriteString(": ")
		msg.WriteString(e.Err.Error())
	}
	return msg.String()
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As
func (e *OpError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
