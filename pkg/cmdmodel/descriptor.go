// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdmodel

import (
	"reflect"
)

// Descriptor is the declaration of a command: the members of one declared
// type together with their declarative tags. Descriptors are produced by a
// declaration reader (see package decl) or written by hand.
type Descriptor struct {
	// Name identifies the declared type in diagnostics, e.g. "main.Params".
	Name string
	// Type is the Go type the descriptor was read from, if any. It is only
	// used as a cache key and for sanity checks on commit.
	Type reflect.Type
	// Bases are inherited declarations. Their members are processed before
	// Members, in order.
	Bases []*Descriptor
	// Help is a help trigger declared on the type itself rather than on a
	// member. A nil Help means none.
	Help *HelpTag
	// Members are the declared members in declaration order.
	Members []Member
}

// Member is a named slot on the declared object.
type Member struct {
	// Name is the member name, e.g. "MaxRetries".
	Name string
	// Type is the static value type of the member.
	Type reflect.Type
	// Index is the field path used to write the member back onto a struct.
	// It is nil for members that are not struct fields.
	Index []int

	Option   *OptionTag
	Argument *ArgumentTag
	Help     *HelpTag
}

// OptionTag marks a member as an option.
type OptionTag struct {
	// Template is e.g. "-p|--port <PORT>". Empty derives the names from
	// the member name.
	Template    string
	Arity       Arity
	Description string
	Required    bool
	// Default is text converted and assigned when the option is absent.
	Default string
	Hidden  bool
}

// ArgumentTag marks a member as a positional argument.
type ArgumentTag struct {
	// Order positions the argument. Nil infers it from declaration order.
	Order *int
	// Name is the display name; it defaults to the member name.
	Name           string
	Description    string
	MultipleValues bool
	Required       bool
	Default        string
}

// HelpTag marks a member (or, via Descriptor.Help, the type) as the help trigger.
type HelpTag struct {
	// Template defaults to DefaultHelpTemplate.
	Template    string
	Description string
}

// DefaultHelpTemplate is the template used by help triggers that don't set one.
const DefaultHelpTemplate = "-?|-h|--help"

// DefaultHelpDescription describes help triggers that don't set a description.
const DefaultHelpDescription = "Show help information"

// Order is a helper for ArgumentTag.Order literals.
func Order(n int) *int { return &n }

// members flattens d into declaration order, base members first.
// Each result carries the name of the descriptor that declared it.
func (d *Descriptor) members() []declared {
	var out []declared
	var walk func(*Descriptor)
	walk = func(d *Descriptor) {
		for _, b := range d.Bases {
			if b != nil {
				walk(b)
			}
		}
		for i := range d.Members {
			out = append(out, declared{owner: d.Name, Member: &d.Members[i]})
		}
	}
	walk(d)
	return out
}

type declared struct {
	owner string
	*Member
}

func (d declared) id() string {
	if d.owner == "" {
		return d.Name
	}
	return d.owner + "." + d.Name
}
