// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bind

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/yeetrun/argbind/pkg/cmdmodel"
)

// Value is one bound option or argument.
type Value struct {
	// Name is the option's long (or short) name, or the argument's name.
	Name string
	// Member is the declaring member, "Type.Member".
	Member string
	// Raw holds the matched tokens, or the split default text.
	Raw []string
	// Value is the converted value, assignable to the member type.
	Value any
	// Default is set when Value came from default text.
	Default bool
	// Argument is set for positional arguments.
	Argument bool

	index []int
}

// Result is a successful parse. Values holds options in declaration order
// followed by arguments in ascending order; members that were neither
// matched nor defaulted are absent.
type Result struct {
	Values []Value
	// Leftover holds the first token no argument could take and everything
	// after it, for subcommand dispatch.
	Leftover []string

	model *cmdmodel.Model
}

// Lookup returns the value bound to name, which is an option's long or
// short name, an argument's name, or a member name.
func (r *Result) Lookup(name string) (Value, bool) {
	for _, v := range r.Values {
		if v.Name == name || v.Member == name || memberName(v.Member) == name {
			return v, true
		}
	}
	if i, ok := r.model.LongIndex(name); ok {
		return r.lookupMember(r.model.OptionAt(i).Member)
	}
	if i, ok := r.model.ShortIndex(name); ok {
		return r.lookupMember(r.model.OptionAt(i).Member)
	}
	return Value{}, false
}

func (r *Result) lookupMember(member string) (Value, bool) {
	for _, v := range r.Values {
		if v.Member == member {
			return v, true
		}
	}
	return Value{}, false
}

// finish converts the recorded tokens and checks required members.
func (p *parser) finish() (*Result, error) {
	res := &Result{model: p.m, Leftover: p.leftover}
	var convErrs []*ValueError

	for idx := range p.m.NumOptions() {
		o := p.m.OptionAt(idx)
		if o.Help {
			continue
		}
		raw, def := p.optRaw[idx], false
		if raw == nil && o.Default != "" {
			raw, def = splitDefault(o.Default, accumulates(o)), true
		}
		if raw == nil {
			continue
		}
		name := o.Name()
		v, errs := p.convert(name, o.Member, o.Type, accumulates(o), raw)
		convErrs = append(convErrs, errs...)
		res.Values = append(res.Values, Value{
			Name:    name,
			Member:  o.Member,
			Raw:     raw,
			Value:   v,
			Default: def,
			index:   o.Index,
		})
	}
	for idx := range p.m.NumArguments() {
		a := p.m.ArgumentAt(idx)
		raw, def := p.argRaw[idx], false
		if raw == nil && a.Default != "" {
			raw, def = splitDefault(a.Default, a.MultipleValues), true
		}
		if raw == nil {
			continue
		}
		v, errs := p.convert(a.Name, a.Member, a.Type, a.MultipleValues, raw)
		convErrs = append(convErrs, errs...)
		res.Values = append(res.Values, Value{
			Name:     a.Name,
			Member:   a.Member,
			Raw:      raw,
			Value:    v,
			Default:  def,
			Argument: true,
			index:    a.Index,
		})
	}
	if len(convErrs) > 0 {
		return nil, &ConversionErrors{Errs: convErrs}
	}

	for idx := range p.m.NumArguments() {
		if a := p.m.ArgumentAt(idx); a.Required && p.argRaw[idx] == nil {
			return nil, &ParseError{Err: ErrMissingRequiredArgument, Option: a.Name}
		}
	}
	for idx := range p.m.NumOptions() {
		if o := p.m.OptionAt(idx); o.Required && !p.matched.Contains(idx) {
			return nil, &ParseError{Err: ErrMissingRequiredOption, Option: o.Display()}
		}
	}
	return res, nil
}

func splitDefault(text string, seq bool) []string {
	if seq {
		return strings.Split(text, ",")
	}
	return []string{text}
}

// convert turns raw into a value of type t. Sequences convert each token
// into the element type; scalars convert the last token.
func (p *parser) convert(name, member string, t reflect.Type, seq bool, raw []string) (any, []*ValueError) {
	if !seq {
		s := raw[len(raw)-1]
		v, err := p.reg.Parse(t, s)
		if err != nil {
			return nil, []*ValueError{{Name: name, Member: member, Raw: s, Type: t, Err: err}}
		}
		if v == nil {
			// A parser may return nil for "none"; that is the zero value.
			return reflect.Zero(t).Interface(), nil
		}
		return v, nil
	}

	st := t
	if st.Kind() == reflect.Pointer {
		st = st.Elem()
	}
	elem := st.Elem()
	out := reflect.MakeSlice(st, 0, len(raw))
	var errs []*ValueError
	for _, s := range raw {
		v, err := p.reg.Parse(elem, s)
		if err != nil {
			errs = append(errs, &ValueError{Name: name, Member: member, Raw: s, Type: elem, Err: err})
			continue
		}
		out = reflect.Append(out, assignable(reflect.ValueOf(v), elem))
	}
	if errs != nil {
		return nil, errs
	}
	if st != t {
		ptr := reflect.New(st)
		ptr.Elem().Set(out)
		return ptr.Interface(), nil
	}
	return out.Interface(), nil
}

func assignable(v reflect.Value, t reflect.Type) reflect.Value {
	if !v.IsValid() {
		return reflect.Zero(t)
	}
	if v.Type() != t && v.Type().ConvertibleTo(t) {
		return v.Convert(t)
	}
	return v
}

// Commit writes the bound values to dst, which is either an Assigner or a
// non-nil pointer to the struct the model was compiled from. For a struct,
// every field is checked before anything is written. An Assigner receives
// the values one at a time; if Assign fails, the values already assigned
// stay, so an Assigner that needs all-or-nothing must stage them itself.
func (r *Result) Commit(dst any) error {
	if a, ok := dst.(Assigner); ok {
		for _, v := range r.Values {
			if err := a.Assign(memberName(v.Member), v.Value); err != nil {
				return fmt.Errorf("assigning %s: %w", v.Member, err)
			}
		}
		return nil
	}

	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("commit target must be a non-nil struct pointer or Assigner, got %T", dst)
	}
	if want := r.model.Type(); want != nil && rv.Elem().Type() != want {
		return fmt.Errorf("commit target is %s, model was compiled for %s", rv.Elem().Type(), want)
	}

	fields := make([]reflect.Value, len(r.Values))
	vals := make([]reflect.Value, len(r.Values))
	for i, v := range r.Values {
		if v.index == nil {
			return fmt.Errorf("member %s has no field path", v.Member)
		}
		f, err := rv.Elem().FieldByIndexErr(v.index)
		if err != nil {
			return fmt.Errorf("member %s: %w", v.Member, err)
		}
		if !f.CanSet() {
			return fmt.Errorf("member %s is not settable", v.Member)
		}
		val := assignable(reflect.ValueOf(v.Value), f.Type())
		if !val.Type().AssignableTo(f.Type()) {
			return fmt.Errorf("member %s: cannot assign %s to %s", v.Member, val.Type(), f.Type())
		}
		fields[i], vals[i] = f, val
	}
	for i := range fields {
		fields[i].Set(vals[i])
	}
	return nil
}

// memberName strips the owner from a "Type.Member" identity.
func memberName(id string) string {
	if i := strings.LastIndexByte(id, '.'); i >= 0 {
		return id[i+1:]
	}
	return id
}

// IsHelp reports whether err is the help outcome.
func IsHelp(err error) bool {
	return errors.Is(err, ErrHelpRequested)
}
