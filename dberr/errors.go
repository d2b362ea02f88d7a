// Package dberr defines the structured error kinds shared by the
// descriptor, path, condition, modification, codec and registry packages.
package dberr

import "fmt"

// Kind identifies one of the closed set of failure modes the core can
// produce. See spec §7.
type Kind string

const (
	// SerializationError marks a malformed canonical-codec payload: a
	// zero- or multi-key tagged object, or a tag with no alias match.
	SerializationError Kind = "SerializationError"

	// IncompatibleRecord marks a path step or reflective get/set that
	// saw a value whose runtime type didn't match the expected field.
	IncompatibleRecord Kind = "IncompatibleRecord"

	// MissingKey marks a ModifyByKey referencing an absent map key.
	MissingKey Kind = "MissingKey"

	// BackendUnsupported marks a translator's refusal to emit a native
	// query for a variant. Not produced by this module; declared here
	// so backends share one error taxonomy with the core.
	BackendUnsupported Kind = "BackendUnsupported"

	// GenericPlaceholder marks a virtual serializer that hit a type
	// parameter stand-in it cannot deserialize without a concrete
	// argument from the caller.
	GenericPlaceholder Kind = "GenericPlaceholder"
)

// Error is the structured failure type every package in this module
// returns. It carries the kind, the offending path or tag, and an
// optional wrapped cause.
type Error struct {
	Kind    Kind
	Subject string // offending path, tag, or key
	Message string
	Cause   error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s", e.Kind)
	if e.Subject != "" {
		msg += fmt.Sprintf(" (%s)", e.Subject)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds an Error with no wrapped cause.
func New(kind Kind, subject, message string) error {
	return &Error{Kind: kind, Subject: subject, Message: message}
}

// Wrap builds an Error around an existing cause.
func Wrap(kind Kind, subject, message string, cause error) error {
	return &Error{Kind: kind, Subject: subject, Message: message, Cause: cause}
}

// Is reports whether err is a *Error of the given kind, so callers can
// write `dberr.Is(err, dberr.MissingKey)` instead of type-asserting.
func Is(err error, kind Kind) bool {
	var e *Error
	for err != nil {
		if de, ok := err.(*Error); ok {
			e = de
			break
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return e != nil && e.Kind == kind
}
