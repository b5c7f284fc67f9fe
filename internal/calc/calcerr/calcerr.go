// Package calcerr holds the coded errors returned by the joint analysis
// pipeline. Every rejection of an input carries one of the codes below so
// callers can branch on the category without parsing messages.
package calcerr

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeInvalidThreadDesignation Code = "invalid_thread_designation"
	CodeUnsupportedThreadSize    Code = "unsupported_thread_size"
	CodeUnknownMaterial          Code = "unknown_material"
	CodeInconsistentUnits        Code = "inconsistent_units"
	CodeMalformedLoadCase        Code = "malformed_load_case"
	CodeConfiguration            Code = "configuration_error"
	// CodeUndefinedResult marks a capability that evaluated to NaN or Inf.
	CodeUndefinedResult Code = "undefined_result"
	CodeNotFound        Code = "not_found"
	// CodeCanceled marks batch items skipped after cancellation or timeout.
	CodeCanceled Code = "canceled"
	CodeInternal Code = "internal_error"
)

type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code to err. A nil err stays nil.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// CodeOf returns the outermost code in the chain, or CodeInternal.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

func HasCode(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Err
	}
	return false
}

// MessageOf returns the human message without the code prefix.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Err != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Err)
		}
		return e.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
