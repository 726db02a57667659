package room

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound is returned when no room has the requested id.
	ErrNotFound = errors.New("room: not found")
	// ErrDuplicateNumber is returned when a room number is already used in the building.
	ErrDuplicateNumber = errors.New("room: number already exists in building")
	// ErrUnknownReference is wrapped in a StoreError when the building or room type does not exist.
	ErrUnknownReference = errors.New("room: unknown building or room type")
)

// ValidationError lists every rejected field of a submission, keyed by
// field name (buildingId, floor, number, typeId, baseRent, status, remark).
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "invalid room: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = msg
	}
}

// StoreError is a persistence failure (constraint or connectivity).
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("room store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
