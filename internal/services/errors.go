package services

import "fmt"

// FormatError reports a tabular source that could not be read or parsed.
type FormatError struct {
	Path string
	Err  error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unreadable tabular source %s: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error { return e.Err }

// MissingFieldError reports a required column absent from the tabular
// source. It is raised before any record is emitted.
type MissingFieldError struct {
	Column string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("required column %q not found in tabular source", e.Column)
}

// DocumentOpenError reports a source PDF that could not be opened.
type DocumentOpenError struct {
	Path string
	Err  error
}

func (e *DocumentOpenError) Error() string {
	return fmt.Sprintf("failed to open document %s: %v", e.Path, e.Err)
}

func (e *DocumentOpenError) Unwrap() error { return e.Err }
