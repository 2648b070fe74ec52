// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdmodel

import (
	"reflect"
	"slices"
	"strings"
)

// Option is a compiled option. At least one of ShortName and LongName is set.
// SymbolName is an extra single-character alias such as "?"; it shares the
// short name namespace.
type Option struct {
	ShortName   string
	SymbolName  string
	LongName    string
	ValueName   string
	Arity       Arity
	Type        reflect.Type
	Description string
	Required    bool
	Default     string
	Hidden      bool
	// Help is set on the help trigger.
	Help bool

	// Member identifies the declaring member, "Type.Member".
	Member string
	// Index is the field path of the declaring member.
	Index []int
}

// Name returns the long name if there is one, else the short name.
func (o *Option) Name() string {
	if o.LongName != "" {
		return o.LongName
	}
	if o.ShortName != "" {
		return o.ShortName
	}
	return o.SymbolName
}

// Display renders the option as it appears on a command line, e.g. "-p|--port".
func (o *Option) Display() string {
	var parts []string
	if o.SymbolName != "" {
		parts = append(parts, "-"+o.SymbolName)
	}
	if o.ShortName != "" {
		parts = append(parts, "-"+o.ShortName)
	}
	if o.LongName != "" {
		parts = append(parts, "--"+o.LongName)
	}
	return strings.Join(parts, "|")
}

// Argument is a compiled positional argument.
type Argument struct {
	Name           string
	Order          int
	Type           reflect.Type
	Description    string
	MultipleValues bool
	Required       bool
	Default        string

	Member string
	Index  []int
}

// Model is a compiled command model. It is immutable and safe for
// concurrent use; accessors return copies.
type Model struct {
	name    string
	typ     reflect.Type
	options []Option
	args    []Argument // sorted by Order
	help    int        // index into options, -1 if none
	byShort map[string]int
	byLong  map[string]int // keys lower-cased
}

// Name returns the name of the declared type the model was compiled from.
func (m *Model) Name() string { return m.name }

// Type returns the Go type of the declaration, or nil.
func (m *Model) Type() reflect.Type { return m.typ }

// Options returns the options, help trigger included, in declaration order.
func (m *Model) Options() []Option {
	return cloneOptions(m.options)
}

// Arguments returns the positional arguments in ascending order.
func (m *Model) Arguments() []Argument {
	out := slices.Clone(m.args)
	for i := range out {
		out[i].Index = slices.Clone(out[i].Index)
	}
	return out
}

// HelpOption returns the help trigger, if the model has one.
func (m *Model) HelpOption() (Option, bool) {
	if m.help < 0 {
		return Option{}, false
	}
	return cloneOption(m.options[m.help]), true
}

// ShortOption looks up an option by short or symbol name.
func (m *Model) ShortOption(name string) (Option, bool) {
	i, ok := m.byShort[name]
	if !ok {
		return Option{}, false
	}
	return cloneOption(m.options[i]), true
}

// LongOption looks up an option by long name, case-insensitively.
func (m *Model) LongOption(name string) (Option, bool) {
	i, ok := m.byLong[strings.ToLower(name)]
	if !ok {
		return Option{}, false
	}
	return cloneOption(m.options[i]), true
}

// Argument looks up an argument by order.
func (m *Model) Argument(order int) (Argument, bool) {
	i, ok := slices.BinarySearchFunc(m.args, order, func(a Argument, order int) int {
		return a.Order - order
	})
	if !ok {
		return Argument{}, false
	}
	a := m.args[i]
	a.Index = slices.Clone(a.Index)
	return a, true
}

// The binder works on indexes to avoid copying on every token.

// NumOptions returns the number of options.
func (m *Model) NumOptions() int { return len(m.options) }

// NumArguments returns the number of positional arguments.
func (m *Model) NumArguments() int { return len(m.args) }

// OptionAt returns a pointer to the i'th option. Callers must not modify it.
func (m *Model) OptionAt(i int) *Option { return &m.options[i] }

// ArgumentAt returns a pointer to the i'th argument in ascending order.
// Callers must not modify it.
func (m *Model) ArgumentAt(i int) *Argument { return &m.args[i] }

// ShortIndex returns the index of the option with the given short or symbol
// name.
func (m *Model) ShortIndex(name string) (int, bool) {
	i, ok := m.byShort[name]
	return i, ok
}

// LongIndex returns the index of the option with the given long name,
// matched case-insensitively.
func (m *Model) LongIndex(name string) (int, bool) {
	i, ok := m.byLong[strings.ToLower(name)]
	return i, ok
}

// HelpIndex returns the index of the help trigger, or -1.
func (m *Model) HelpIndex() int { return m.help }

func cloneOption(o Option) Option {
	o.Index = slices.Clone(o.Index)
	return o
}

func cloneOptions(opts []Option) []Option {
	out := make([]Option, len(opts))
	for i, o := range opts {
		out[i] = cloneOption(o)
	}
	return out
}
