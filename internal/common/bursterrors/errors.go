// Package bursterrors contains generic errors returned by the load generator. The command line entrypoint looks for
// the error types defined in this file and picks the process exit code accordingly.
//
// If multiple errors occur in some function (e.g., if several cores fail to start), that function should return an
// error of type multierror.Error from package github.com/hashicorp/go-multierror that encapsulates those individual
// errors.
package bursterrors

import (
	"fmt"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
)

const (
	ExitCodeOK              = 0
	ExitCodeFailure         = 1
	ExitCodeInvalidArgument = 2
)

// ErrInvalidArgument is a generic error to be returned on invalid argument.
// Message is optional and is omitted from the error message if not provided.
type ErrInvalidArgument struct {
	Name    string // Name of the field referred to, e.g., "coresNum"
	Value   any    // The invalid value that was provided
	Message string // An optional message to include with the error message, e.g., explaining why the value is invalid
}

func (err *ErrInvalidArgument) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("value %q is invalid for field %q", fmt.Sprint(err.Value), err.Name)
	} else {
		return fmt.Sprintf("value %q is invalid for field %q; %s", fmt.Sprint(err.Value), err.Name, err.Message)
	}
}

// ErrUnexpectedResponse is returned when the indexing service answers with a status the caller did not expect.
// Body is optional and is omitted from the error message if not provided.
type ErrUnexpectedResponse struct {
	Operation  string // e.g., "indices.create"
	StatusCode int
	Body       string
}

func (err *ErrUnexpectedResponse) Error() (s string) {
	s = fmt.Sprintf("%s returned unexpected status %d", err.Operation, err.StatusCode)
	if err.Body != "" {
		s = s + fmt.Sprintf("; %s", err.Body)
	}
	return
}

// ErrCoreFailed records that the worker on one core stopped with an error.
type ErrCoreFailed struct {
	Core  int
	Cause error
}

func (err *ErrCoreFailed) Error() string {
	return fmt.Sprintf("worker on core %d failed: %s", err.Core, err.Cause)
}

func (err *ErrCoreFailed) Unwrap() error {
	return err.Cause
}

// ExitCodeFromError maps error types to process exit codes.
// Uses errors.As to look through the chain of errors, as opposed to just considering the topmost error in the chain.
// A multierror maps to the code of its first error.
func ExitCodeFromError(err error) int {
	if err == nil {
		return ExitCodeOK
	}

	var multiErr *multierror.Error
	if errors.As(err, &multiErr) && len(multiErr.Errors) > 0 {
		return ExitCodeFromError(multiErr.Errors[0])
	}

	var eInvalidArgument *ErrInvalidArgument
	if errors.As(err, &eInvalidArgument) {
		return ExitCodeInvalidArgument
	}
	return ExitCodeFailure
}
