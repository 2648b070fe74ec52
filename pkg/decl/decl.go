// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package decl reads command declarations from struct tags.
//
// Each exported field may carry one role:
//
//	opt:"-p|--port <PORT>"  option; an empty template derives the names from the field name
//	arg:"" or arg:"N"       positional argument; N sets its order
//	helpopt:"-h|--help"     help trigger (bool fields only); empty uses the default template
//
// and role settings:
//
//	help:"text"               description
//	arity:"none|single|multi" explicit option arity
//	required:"true"
//	default:"text"            converted when the member is absent
//	multi:"true"              argument takes every remaining token
//	name:"FILE"               argument display name
//	hidden:"true"             option is left out of usage
//
// Embedded struct fields are base declarations; their members come first.
// A type implementing HelpTemplater gets a type-level help trigger.
package decl

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"

	"github.com/yeetrun/argbind/pkg/cmdmodel"
)

// HelpTemplater is implemented by declared types that want a help trigger
// without a dedicated field. An empty template uses the default.
type HelpTemplater interface {
	HelpTemplate() string
}

var helpTemplaterType = reflect.TypeFor[HelpTemplater]()

// Describe builds a descriptor from the struct tags of t, which must be a
// struct type or a pointer to one. It only reports malformed tag values;
// consistency is checked by cmdmodel.Compile.
func Describe(t reflect.Type) (*cmdmodel.Descriptor, error) {
	if t == nil {
		return nil, fmt.Errorf("decl: nil type")
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("decl: %s is not a struct", t)
	}
	return describe(t, nil)
}

// DescribeFor is the typed form of Describe.
func DescribeFor[T any]() (*cmdmodel.Descriptor, error) {
	return Describe(reflect.TypeFor[T]())
}

func describe(t reflect.Type, prefix []int) (*cmdmodel.Descriptor, error) {
	d := &cmdmodel.Descriptor{Name: t.String()}
	if prefix == nil {
		d.Type = t
	}

	baseHelp := false
	for i := range t.NumField() {
		f := t.Field(i)
		index := append(slices.Clone(prefix), f.Index...)

		if f.Anonymous && f.Type.Kind() == reflect.Struct && !hasRole(f.Tag) {
			base, err := describe(f.Type, index)
			if err != nil {
				return nil, err
			}
			d.Bases = append(d.Bases, base)
			baseHelp = baseHelp || implementsHelp(f.Type)
			continue
		}
		if !f.IsExported() || !hasRole(f.Tag) {
			continue
		}
		m, err := member(t, f, index)
		if err != nil {
			return nil, err
		}
		d.Members = append(d.Members, m)
	}

	// A promoted HelpTemplate belongs to the base that declares it.
	if implementsHelp(t) && !baseHelp {
		h := reflect.New(t).Interface().(HelpTemplater)
		d.Help = &cmdmodel.HelpTag{Template: h.HelpTemplate()}
	}
	return d, nil
}

func implementsHelp(t reflect.Type) bool {
	return t.Implements(helpTemplaterType) || reflect.PointerTo(t).Implements(helpTemplaterType)
}

func hasRole(tag reflect.StructTag) bool {
	for _, k := range []string{"opt", "arg", "helpopt"} {
		if _, ok := tag.Lookup(k); ok {
			return true
		}
	}
	return false
}

func member(owner reflect.Type, f reflect.StructField, index []int) (cmdmodel.Member, error) {
	m := cmdmodel.Member{Name: f.Name, Type: f.Type, Index: index}
	bad := func(key, val string, err error) error {
		return fmt.Errorf("decl: %s.%s: invalid %s tag %q: %w", owner, f.Name, key, val, err)
	}
	flag := func(key string) (bool, error) {
		v, ok := f.Tag.Lookup(key)
		if !ok {
			return false, nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, bad(key, v, err)
		}
		return b, nil
	}
	required, err := flag("required")
	if err != nil {
		return m, err
	}

	if tmpl, ok := f.Tag.Lookup("opt"); ok {
		arity, err := cmdmodel.ParseArity(f.Tag.Get("arity"))
		if err != nil {
			return m, bad("arity", f.Tag.Get("arity"), err)
		}
		hidden, err := flag("hidden")
		if err != nil {
			return m, err
		}
		m.Option = &cmdmodel.OptionTag{
			Template:    tmpl,
			Arity:       arity,
			Description: f.Tag.Get("help"),
			Required:    required,
			Default:     f.Tag.Get("default"),
			Hidden:      hidden,
		}
	}
	if order, ok := f.Tag.Lookup("arg"); ok {
		multi, err := flag("multi")
		if err != nil {
			return m, err
		}
		a := &cmdmodel.ArgumentTag{
			Name:           f.Tag.Get("name"),
			Description:    f.Tag.Get("help"),
			MultipleValues: multi,
			Required:       required,
			Default:        f.Tag.Get("default"),
		}
		if order != "" {
			n, err := strconv.Atoi(order)
			if err != nil {
				return m, bad("arg", order, err)
			}
			a.Order = cmdmodel.Order(n)
		}
		m.Argument = a
	}
	if tmpl, ok := f.Tag.Lookup("helpopt"); ok {
		m.Help = &cmdmodel.HelpTag{Template: tmpl, Description: f.Tag.Get("help")}
	}
	return m, nil
}
