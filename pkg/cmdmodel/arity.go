// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdmodel

import (
	"fmt"
	"reflect"
)

// Arity is the number of value tokens an option consumes.
type Arity int

const (
	// ArityUnset means the declaration leaves arity to inference.
	ArityUnset Arity = iota
	NoValue
	SingleValue
	MultipleValue
)

func (a Arity) String() string {
	switch a {
	case ArityUnset:
		return "unset"
	case NoValue:
		return "none"
	case SingleValue:
		return "single"
	case MultipleValue:
		return "multi"
	}
	return fmt.Sprintf("Arity(%d)", int(a))
}

// ParseArity parses the names returned by Arity.String.
func ParseArity(s string) (Arity, error) {
	switch s {
	case "", "unset":
		return ArityUnset, nil
	case "none", "novalue":
		return NoValue, nil
	case "single", "singlevalue":
		return SingleValue, nil
	case "multi", "multiple", "multiplevalue":
		return MultipleValue, nil
	}
	return ArityUnset, fmt.Errorf("unknown arity %q", s)
}

// ValueParsers is the capability the compiler and binder need from a
// value-parser registry. *valueparse.Registry implements it.
type ValueParsers interface {
	// Supports reports whether text can be converted into t.
	Supports(t reflect.Type) bool
	// Custom reports whether a parser was registered for exactly t.
	Custom(t reflect.Type) bool
	// Parse converts raw into a value assignable to t.
	Parse(t reflect.Type, raw string) (any, error)
}

var boolType = reflect.TypeFor[bool]()

// InferArity decides how many values an option of type t consumes.
// Pointer types are treated as optional forms of their element type.
// It returns ErrUnresolvedArity if no rule applies.
func InferArity(t reflect.Type, reg ValueParsers) (Arity, error) {
	if isBool(t) || (IsSequence(t) && isBool(ElemType(t))) {
		return NoValue, nil
	}
	// A parser for exactly *T wins over the rules for T.
	if reg.Custom(t) {
		return SingleValue, nil
	}
	t = deref(t)
	if reg.Custom(t) {
		return SingleValue, nil
	}
	if t.Kind() == reflect.Slice {
		if reg.Supports(t.Elem()) {
			return MultipleValue, nil
		}
		return ArityUnset, fmt.Errorf("%w: no parser for element type %s", ErrUnresolvedArity, t.Elem())
	}
	if reg.Supports(t) {
		return SingleValue, nil
	}
	return ArityUnset, fmt.Errorf("%w: no parser for %s", ErrUnresolvedArity, t)
}

func deref(t reflect.Type) reflect.Type {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func isBool(t reflect.Type) bool {
	return deref(t).Kind() == reflect.Bool
}

// IsSequence reports whether t is a slice type, i.e. one that collects
// one element per matched token.
func IsSequence(t reflect.Type) bool {
	return deref(t).Kind() == reflect.Slice
}

// ElemType returns the type each token of a value of type t converts to.
func ElemType(t reflect.Type) reflect.Type {
	t = deref(t)
	if t.Kind() == reflect.Slice {
		return t.Elem()
	}
	return t
}
