// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bind

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrUnknownOption is returned for a token naming no declared option.
	ErrUnknownOption = errors.New("unknown option")

	// ErrMissingOptionValue is returned when a valued option is the last token.
	ErrMissingOptionValue = errors.New("missing option value")

	// ErrValueConversion is wrapped by every *ValueError.
	ErrValueConversion = errors.New("invalid value")

	// ErrMissingRequiredArgument is returned when a required argument was not given.
	ErrMissingRequiredArgument = errors.New("missing required argument")

	// ErrMissingRequiredOption is returned when a required option was not given.
	ErrMissingRequiredOption = errors.New("missing required option")

	// ErrHelpRequested is returned when the help trigger was matched. It is
	// an outcome rather than a failure: callers render usage and exit.
	ErrHelpRequested = errors.New("help requested")
)

// ParseError is a structural parse failure.
type ParseError struct {
	Err    error  // one of the Err* sentinels
	Option string // option or argument name; unknown options keep their dashes, e.g. "--x"
	Token  string // offending token, if any
}

func (e *ParseError) Error() string {
	switch e.Err {
	case ErrUnknownOption:
		return fmt.Sprintf("unknown option: %s", e.Option)
	case ErrMissingOptionValue:
		return fmt.Sprintf("missing value for option %s", e.Option)
	case ErrMissingRequiredArgument:
		return fmt.Sprintf("missing required argument %s", e.Option)
	case ErrMissingRequiredOption:
		return fmt.Sprintf("missing required option %s", e.Option)
	case ErrHelpRequested:
		return "help requested"
	}
	if e.Option != "" {
		return fmt.Sprintf("%s: %v", e.Option, e.Err)
	}
	return e.Err.Error()
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ValueError reports a token that could not be converted to its declared
// type. It wraps both ErrValueConversion and the parser's error.
type ValueError struct {
	Name   string // option name or argument name, e.g. "port" or "files"
	Member string // declaring member, "Type.Member"
	Raw    string
	Type   reflect.Type
	Err    error
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("invalid value %q for %s: %v", e.Raw, e.Name, e.Err)
}

func (e *ValueError) Unwrap() []error {
	return []error{ErrValueConversion, e.Err}
}

// ConversionErrors collects every conversion failure of one parse.
type ConversionErrors struct {
	Errs []*ValueError
}

func (e *ConversionErrors) Error() string {
	if len(e.Errs) == 1 {
		return e.Errs[0].Error()
	}
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("%d invalid values:\n  %s", len(e.Errs), strings.Join(msgs, "\n  "))
}

func (e *ConversionErrors) Unwrap() []error {
	errs := make([]error, len(e.Errs))
	for i, err := range e.Errs {
		errs[i] = err
	}
	return errs
}
