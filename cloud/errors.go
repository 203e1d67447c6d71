package cloud

import (
	"errors"
	"fmt"

	"github.com/prefect-community/prefect-cloud-go/http"
)

// ObjectNotFound is returned when a lookup names an object the API does not
// know about.
type ObjectNotFound struct {
	wrapped error
}

func (e *ObjectNotFound) Error() string {
	return fmt.Sprintf("object not found: %v", e.wrapped)
}

func (e *ObjectNotFound) Unwrap() error {
	return e.wrapped
}

// ObjectAlreadyExists is returned when a create names an object the API
// already has.
type ObjectAlreadyExists struct {
	wrapped error
}

func (e *ObjectAlreadyExists) Error() string {
	return fmt.Sprintf("object already exists: %v", e.wrapped)
}

func (e *ObjectAlreadyExists) Unwrap() error {
	return e.wrapped
}

// IsObjectNotFound reports whether err is an ObjectNotFound translation.
func IsObjectNotFound(err error) bool {
	var notFound *ObjectNotFound
	return errors.As(err, &notFound)
}

// translateNotFound converts a 404 HTTP error into ObjectNotFound, leaving
// every other error untouched.
func translateNotFound(err error) error {
	if err == nil {
		return nil
	}
	if http.IsHTTPStatusError(err, 404) {
		return &ObjectNotFound{wrapped: err}
	}
	return err
}

// translateConflict converts a 409 HTTP error into ObjectAlreadyExists.
func translateConflict(err error) error {
	if err == nil {
		return nil
	}
	if http.IsHTTPStatusError(err, 409) {
		return &ObjectAlreadyExists{wrapped: err}
	}
	return err
}
