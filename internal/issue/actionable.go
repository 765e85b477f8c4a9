// SPDX-License-Identifier: MPL-2.0

// Package issue provides user-facing error values for the CLI boundary.
//
// An ActionableError carries what operation failed, which resource was
// involved, and concrete suggestions for fixing the problem. Command
// handlers wrap domain errors into ActionableErrors right before rendering
// so the error taxonomy of the core packages stays free of presentation
// concerns.
package issue

import (
	"errors"
	"fmt"
	"strings"
)

// ActionableError is an error enriched with context for terminal output.
type ActionableError struct {
	// Operation is a verb phrase for what was being attempted
	// (e.g. "build package", "load project config").
	Operation string

	// Resource identifies the file or entity involved (optional).
	Resource string

	// Suggestions are hints on how to fix the problem (optional).
	Suggestions []string

	// Cause is the underlying error (optional).
	Cause error
}

// Wrap creates an ActionableError around err for the given operation.
// Returns nil when err is nil.
func Wrap(err error, operation string) *ActionableError {
	if err == nil {
		return nil
	}
	return &ActionableError{Operation: operation, Cause: err}
}

// WrapResource creates an ActionableError carrying the resource involved.
// Returns nil when err is nil.
func WrapResource(err error, operation, resource string) *ActionableError {
	if err == nil {
		return nil
	}
	return &ActionableError{Operation: operation, Resource: resource, Cause: err}
}

// Suggest appends suggestions and returns the receiver for chaining.
func (e *ActionableError) Suggest(suggestions ...string) *ActionableError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// Error implements the error interface with the concise one-line form.
func (e *ActionableError) Error() string {
	var msg strings.Builder
	msg.WriteString("failed to ")
	msg.WriteString(e.Operation)
	if e.Resource != "" {
		msg.WriteString(": ")
		msg.WriteString(e.Resource)
	}
	if e.Cause != nil {
		msg.WriteString(": ")
		msg.WriteString(e.Cause.Error())
	}
	return msg.String()
}

// Unwrap exposes the cause for errors.Is/As chains.
func (e *ActionableError) Unwrap() error { return e.Cause }

// Format renders the error for the terminal. Suggestions are listed as
// bullet points; verbose mode appends the unwrapped error chain.
func (e *ActionableError) Format(verbose bool) string {
	var msg strings.Builder
	msg.WriteString(e.Error())

	for _, s := range e.Suggestions {
		msg.WriteString("\n  • ")
		msg.WriteString(s)
	}

	if verbose && e.Cause != nil {
		msg.WriteString("\n\nError chain:")
		for depth, err := 1, e.Cause; err != nil; depth, err = depth+1, errors.Unwrap(err) {
			fmt.Fprintf(&msg, "\n  %d. %s", depth, err.Error())
		}
	}

	return msg.String()
}
