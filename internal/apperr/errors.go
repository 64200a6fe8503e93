// Package apperr defines the error taxonomy shared by the uploader components.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidState is returned when an operation is called out of order,
	// e.g. attaching a resource to a finalized note or resolving a notebook
	// before the note store is ready.
	ErrInvalidState = errors.New("invalid state")
	// ErrNoInput is returned when there are neither files to upload nor a
	// directory to watch.
	ErrNoInput = errors.New("usage error: file not specified")
)

// IncompatibleProtocolError reports that the service rejected the client's
// EDAM protocol version. It is fatal: nothing is uploaded.
type IncompatibleProtocolError struct {
	ClientName string
	Major      int16
	Minor      int16
}

func (e *IncompatibleProtocolError) Error() string {
	return fmt.Sprintf("EDAM version %d.%d is incompatible (client %q)", e.Major, e.Minor, e.ClientName)
}

// AuthenticationError carries the service error code and the offending
// parameter of a rejected authentication.
type AuthenticationError struct {
	Code      string
	Parameter string
	Err       error
}

func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %s(%s)", e.Code, e.Parameter)
}

func (e *AuthenticationError) Unwrap() error { return e.Err }

// MetadataParseError wraps a failure to read embedded image metadata.
// Callers fall back to filesystem attributes.
type MetadataParseError struct {
	Path string
	Err  error
}

func (e *MetadataParseError) Error() string {
	return fmt.Sprintf("metadata: parse %s: %v", e.Path, e.Err)
}

func (e *MetadataParseError) Unwrap() error { return e.Err }

// NoteSubmissionError wraps a fault returned by the note-creation call.
type NoteSubmissionError struct {
	Title  string
	Code   string
	Detail string
	Err    error
}

func (e *NoteSubmissionError) Error() string {
	msg := fmt.Sprintf("submit note %q failed", e.Title)
	if e.Code != "" {
		msg += ": " + e.Code
		if e.Detail != "" {
			msg += "(" + e.Detail + ")"
		}
		return msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *NoteSubmissionError) Unwrap() error { return e.Err }
