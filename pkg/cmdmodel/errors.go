// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdmodel

import (
	"errors"
	"fmt"
)

// Declaration errors. They report programming mistakes in a declared type
// and are wrapped in a *DeclError naming the members involved.
var (
	ErrConflictingRoles       = errors.New("conflicting roles")
	ErrInvalidNoValueType     = errors.New("no-value option must be boolean")
	ErrDuplicateOrder         = errors.New("duplicate argument order")
	ErrMultiValueNotLast      = errors.New("only the last argument can accept multiple values")
	ErrMultiValueTypeMismatch = errors.New("multi-value argument type mismatch")
	ErrDuplicateHelpTrigger   = errors.New("duplicate help trigger")
	ErrAmbiguousName          = errors.New("ambiguous option name")
	ErrUnresolvedArity        = errors.New("cannot determine option arity")
	ErrInvalidTemplate        = errors.New("invalid option template")
	ErrNoValueParser          = errors.New("no value parser")
)

// DeclError is returned by Compile when a declaration is inconsistent.
type DeclError struct {
	Err    error  // one of the Err* sentinels
	Type   string // declared type name
	Member string // offending member, "Type.Member"
	Other  string // second member for collisions, if any
	Name   string // colliding option name, if any
	Order  int    // colliding argument order, for ErrDuplicateOrder
	Detail string
}

func (e *DeclError) Error() string {
	var msg string
	switch e.Err {
	case ErrAmbiguousName:
		msg = fmt.Sprintf("ambiguous option name: both %s and %s produce an option named %q", e.Member, e.Other, e.Name)
	case ErrDuplicateOrder:
		msg = fmt.Sprintf("duplicate argument order: both %s and %s have order %d", e.Member, e.Other, e.Order)
	case ErrMultiValueNotLast:
		msg = fmt.Sprintf("argument %s accepts multiple values but %s comes after it; only the last argument can accept multiple values", e.Member, e.Other)
	case ErrDuplicateHelpTrigger:
		msg = fmt.Sprintf("multiple help triggers: %s and %s; declare one per type, on the type or on one member", e.Other, e.Member)
	default:
		msg = fmt.Sprintf("%s: %v", e.Member, e.Err)
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	return msg
}

func (e *DeclError) Unwrap() error {
	return e.Err
}
