// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package valueparse converts raw command-line text into typed Go values.
//
// A Registry holds parsers keyed by exact reflect.Type. Types without an exact
// parser fall back to rules based on their kind (so named types such as
// `type Level int` work), on encoding.TextUnmarshaler, on the Setter interface,
// and on pointer wrapping:
//
//	reg := valueparse.NewRegistry()
//	valueparse.RegisterFunc(reg, func(s string) (Color, error) { ... })
//	v, err := reg.Parse(reflect.TypeFor[Color](), "red")
package valueparse

import (
	"encoding"
	"errors"
	"fmt"
	"reflect"
	"strconv"

	"tailscale.com/syncs"
	"tailscale.com/types/lazy"
)

// Func converts raw text into a value of a fixed type.
type Func func(raw string) (any, error)

// Setter is implemented by types that parse themselves from text,
// like pflag values. It must be implemented on the pointer receiver.
type Setter interface {
	Set(string) error
}

// ErrUnsupported is returned by Parse when no parser handles the type.
var ErrUnsupported = errors.New("no value parser for type")

var (
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
	setterType          = reflect.TypeFor[Setter]()
)

// Registry is a set of value parsers. It is safe for concurrent use.
// The zero value is not usable; use NewRegistry.
type Registry struct {
	builtin syncs.Map[reflect.Type, Func]
	custom  syncs.Map[reflect.Type, Func]
}

// NewRegistry returns a Registry with the built-in parsers installed.
func NewRegistry() *Registry {
	r := &Registry{}
	installBuiltins(r)
	return r
}

var defaultRegistry lazy.SyncValue[*Registry]

// Default returns the process-wide registry used when callers don't supply one.
func Default() *Registry {
	return defaultRegistry.Get(NewRegistry)
}

// Register installs a custom parser for exactly t, replacing any previous one.
func (r *Registry) Register(t reflect.Type, fn Func) {
	r.custom.Store(t, fn)
}

// RegisterFunc is the typed form of Register.
func RegisterFunc[T any](r *Registry, fn func(string) (T, error)) {
	r.Register(reflect.TypeFor[T](), func(raw string) (any, error) {
		return fn(raw)
	})
}

// Custom reports whether a custom parser was registered for exactly t.
func (r *Registry) Custom(t reflect.Type) bool {
	_, ok := r.custom.Load(t)
	return ok
}

// Supports reports whether Parse can convert text into t.
func (r *Registry) Supports(t reflect.Type) bool {
	return r.lookup(t) != nil
}

// Parse converts raw into a value assignable to t.
func (r *Registry) Parse(t reflect.Type, raw string) (any, error) {
	fn := r.lookup(t)
	if fn == nil {
		return nil, fmt.Errorf("%w %s", ErrUnsupported, t)
	}
	return fn(raw)
}

func (r *Registry) lookup(t reflect.Type) Func {
	if t == nil {
		return nil
	}
	if fn, ok := r.custom.Load(t); ok {
		return fn
	}
	if fn, ok := r.builtin.Load(t); ok {
		return fn
	}

	// Pointers parse their element and take its address.
	if t.Kind() == reflect.Pointer {
		elem := r.lookup(t.Elem())
		if elem == nil {
			return nil
		}
		return func(raw string) (any, error) {
			v, err := elem(raw)
			if err != nil {
				return nil, err
			}
			if v == nil {
				return reflect.Zero(t).Interface(), nil
			}
			p := reflect.New(t.Elem())
			p.Elem().Set(reflect.ValueOf(v).Convert(t.Elem()))
			return p.Interface(), nil
		}
	}

	pt := reflect.PointerTo(t)
	if pt.Implements(textUnmarshalerType) {
		return func(raw string) (any, error) {
			p := reflect.New(t)
			if err := p.Interface().(encoding.TextUnmarshaler).UnmarshalText([]byte(raw)); err != nil {
				return nil, err
			}
			return p.Elem().Interface(), nil
		}
	}
	if pt.Implements(setterType) {
		return func(raw string) (any, error) {
			p := reflect.New(t)
			if err := p.Interface().(Setter).Set(raw); err != nil {
				return nil, err
			}
			return p.Elem().Interface(), nil
		}
	}
	return kindParser(t)
}

// kindParser handles named types whose underlying kind is a primitive.
func kindParser(t reflect.Type) Func {
	switch t.Kind() {
	case reflect.String:
		return func(raw string) (any, error) {
			return reflect.ValueOf(raw).Convert(t).Interface(), nil
		}

	case reflect.Bool:
		return func(raw string) (any, error) {
			b, err := strconv.ParseBool(raw)
			if err != nil {
				return nil, fmt.Errorf("invalid bool value %q", raw)
			}
			return reflect.ValueOf(b).Convert(t).Interface(), nil
		}

	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return func(raw string) (any, error) {
			i, err := strconv.ParseInt(raw, 10, t.Bits())
			if err != nil {
				return nil, numError("int", raw, err)
			}
			return reflect.ValueOf(i).Convert(t).Interface(), nil
		}

	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return func(raw string) (any, error) {
			u, err := strconv.ParseUint(raw, 10, t.Bits())
			if err != nil {
				return nil, numError("uint", raw, err)
			}
			return reflect.ValueOf(u).Convert(t).Interface(), nil
		}

	case reflect.Float32, reflect.Float64:
		return func(raw string) (any, error) {
			f, err := strconv.ParseFloat(raw, t.Bits())
			if err != nil {
				return nil, numError("float", raw, err)
			}
			return reflect.ValueOf(f).Convert(t).Interface(), nil
		}
	}
	return nil
}

func numError(kind, raw string, err error) error {
	var numErr *strconv.NumError
	if errors.As(err, &numErr) && numErr.Err == strconv.ErrRange {
		return fmt.Errorf("%s value %q out of range", kind, raw)
	}
	return fmt.Errorf("invalid %s value %q", kind, raw)
}
