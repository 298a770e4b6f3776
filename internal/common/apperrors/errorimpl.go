package apperrors

import (
	"errors"
	"strings"
)

type appError struct {
	msg         string
	base        error
	wrapped     []error
	statusCode  int
	expandError bool
}

// New creates a root error with the given message.
func New(msg string) Error {
	return &appError{msg: msg}
}

func (e *appError) Error() string {
	return e.msg
}

func (e *appError) ErrorAll() string {
	if !e.expandError {
		return e.msg
	}
	var b strings.Builder
	b.WriteString(e.msg)
	for _, err := range e.wrapped {
		if err == e.base {
			continue
		}
		b.WriteString("; ")
		b.WriteString(err.Error())
	}
	return b.String()
}

func (e *appError) Unwrap() error {
	return e.base
}

func (e *appError) UnwrapAll() []error {
	return e.wrapped
}

func (e *appError) New(msg string) Error {
	return &appError{
		msg:         msg,
		base:        e,
		statusCode:  e.statusCode,
		expandError: e.expandError,
	}
}

func (e *appError) Msg(msg string) Error {
	return e.MsgErr(msg)
}

func (e *appError) MsgErr(msg string, errs ...error) Error {
	return &appError{
		msg:         msg,
		base:        e,
		wrapped:     append([]error{e}, errs...),
		statusCode:  e.statusCode,
		expandError: e.expandError,
	}
}

func (e *appError) Err(errs ...error) Error {
	return e.MsgErr(e.msg, errs...)
}

func (e *appError) SetExpandError(flag bool) Error {
	cp := *e
	cp.expandError = flag
	return &cp
}

func (e *appError) SetStatusCode(code int) Error {
	cp := *e
	cp.statusCode = code
	return &cp
}

func (e *appError) StatusCode() int {
	return e.statusCode
}

// Is matches the base error and every wrapped error.
func (e *appError) Is(target error) bool {
	if target == nil {
		return false
	}
	if errors.Is(e.base, target) {
		return true
	}
	for _, err := range e.wrapped {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// As looks through the wrapped errors. The base chain is reached by Unwrap.
func (e *appError) As(target any) bool {
	for _, err := range e.wrapped {
		if err == e.base {
			continue
		}
		if errors.As(err, target) {
			return true
		}
	}
	return false
}
