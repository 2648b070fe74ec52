// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdmodel

import (
	"fmt"
	"slices"
	"strings"

	"github.com/yeetrun/argbind/pkg/valueparse"
	"tailscale.com/types/logger"
	"tailscale.com/util/mak"
	"tailscale.com/util/must"
)

// CompileOption configures Compile.
type CompileOption func(*compiler)

// WithRegistry sets the value parsers used for arity inference and type
// checks. The default is valueparse.Default().
func WithRegistry(reg ValueParsers) CompileOption {
	return func(c *compiler) { c.reg = reg }
}

// WithHelpTemplate sets the template used by help triggers that don't
// declare one. The default is DefaultHelpTemplate.
func WithHelpTemplate(tmpl string) CompileOption {
	return func(c *compiler) { c.helpTemplate = tmpl }
}

// WithLogf sets a logger for compilation traces.
func WithLogf(logf logger.Logf) CompileOption {
	return func(c *compiler) { c.logf = logf }
}

type compiler struct {
	d            *Descriptor
	reg          ValueParsers
	helpTemplate string
	logf         logger.Logf

	options   []Option
	args      []Argument // declaration order until pass 2
	help      int
	helpOwner string
}

// Compile validates d and builds its command model. It returns a *DeclError
// describing the first violation found; no partial model is returned.
//
// Members are processed in declaration order, base members first. The first
// pass resolves each member on its own (roles, arity, names, types); the
// second pass checks cross-member constraints (argument orders, multi-value
// placement, name collisions).
func Compile(d *Descriptor, opts ...CompileOption) (*Model, error) {
	c := &compiler{
		d:            d,
		helpTemplate: DefaultHelpTemplate,
		help:         -1,
		logf:         logger.Discard,
	}
	for _, o := range opts {
		o(c)
	}
	if c.reg == nil {
		c.reg = valueparse.Default()
	}
	if err := c.resolve(); err != nil {
		return nil, err
	}
	m, err := c.validate()
	if err != nil {
		return nil, err
	}
	c.logf("cmdmodel: compiled %s: %d options, %d arguments", d.Name, len(m.options), len(m.args))
	return m, nil
}

// MustCompile is like Compile but panics on error. It is meant for
// package-level declarations whose validity is a programming invariant.
func MustCompile(d *Descriptor, opts ...CompileOption) *Model {
	return must.Get(Compile(d, opts...))
}

func (c *compiler) declErr(err error, member string, detail string) *DeclError {
	return &DeclError{Err: err, Type: c.d.Name, Member: member, Detail: detail}
}

// resolve is the first pass.
func (c *compiler) resolve() error {
	if err := c.resolveTypeHelp(c.d); err != nil {
		return err
	}
	for _, m := range c.d.members() {
		if err := c.resolveMember(m); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) resolveTypeHelp(d *Descriptor) error {
	for _, b := range d.Bases {
		if b != nil {
			if err := c.resolveTypeHelp(b); err != nil {
				return err
			}
		}
	}
	if d.Help == nil {
		return nil
	}
	return c.addHelp(d.Name+" (type)", d.Help, nil)
}

func (c *compiler) addHelp(id string, tag *HelpTag, m *declared) error {
	if c.help >= 0 {
		e := c.declErr(ErrDuplicateHelpTrigger, id, "")
		e.Other = c.helpOwner
		return e
	}
	if m != nil && !isBool(m.Type) {
		return c.declErr(ErrInvalidNoValueType, id, fmt.Sprintf("help trigger has type %s", m.Type))
	}
	tmpl := tag.Template
	if tmpl == "" {
		tmpl = c.helpTemplate
	}
	n, err := parseTemplate(tmpl)
	if err != nil {
		return c.declErr(ErrInvalidTemplate, id, err.Error())
	}
	o := Option{
		ShortName:   n.short,
		SymbolName:  n.symbol,
		LongName:    n.long,
		Arity:       NoValue,
		Type:        boolType,
		Description: tag.Description,
		Help:        true,
		Member:      id,
	}
	if o.Description == "" {
		o.Description = DefaultHelpDescription
	}
	if m != nil {
		o.Type = m.Type
		o.Index = slices.Clone(m.Index)
	}
	c.help = len(c.options)
	c.helpOwner = id
	c.options = append(c.options, o)
	return nil
}

func (c *compiler) resolveMember(m declared) error {
	id := m.id()
	switch {
	case m.Option != nil && m.Argument != nil:
		return c.declErr(ErrConflictingRoles, id, "declared as both option and argument")
	case m.Option != nil && m.Help != nil:
		return c.declErr(ErrConflictingRoles, id, "declared as both option and help trigger")
	case m.Argument != nil && m.Help != nil:
		return c.declErr(ErrConflictingRoles, id, "declared as both argument and help trigger")
	}
	if m.Type == nil && (m.Option != nil || m.Argument != nil || m.Help != nil) {
		return c.declErr(ErrNoValueParser, id, "member has no type")
	}
	switch {
	case m.Help != nil:
		return c.addHelp(id, m.Help, &m)
	case m.Option != nil:
		return c.addOption(id, m)
	case m.Argument != nil:
		return c.addArgument(id, m)
	}
	return nil
}

func (c *compiler) addOption(id string, m declared) error {
	tag := m.Option
	arity := tag.Arity
	switch {
	case isBool(m.Type) || (IsSequence(m.Type) && isBool(ElemType(m.Type))):
		// Presence is the value; explicit arity doesn't apply.
		arity = NoValue
	case arity == NoValue:
		return c.declErr(ErrInvalidNoValueType, id, fmt.Sprintf("type is %s", m.Type))
	case arity == ArityUnset:
		a, err := InferArity(m.Type, c.reg)
		if err != nil {
			return c.declErr(ErrUnresolvedArity, id, fmt.Sprintf("set an explicit arity or register a value parser for %s", m.Type))
		}
		arity = a
	case arity == MultipleValue:
		if !IsSequence(m.Type) {
			return c.declErr(ErrMultiValueTypeMismatch, id, fmt.Sprintf("multi-value option must be a slice, got %s", m.Type))
		}
		if !c.reg.Supports(ElemType(m.Type)) {
			return c.declErr(ErrNoValueParser, id, fmt.Sprintf("cannot convert text to %s", ElemType(m.Type)))
		}
	case arity == SingleValue:
		if !c.reg.Supports(m.Type) {
			return c.declErr(ErrNoValueParser, id, fmt.Sprintf("cannot convert text to %s", m.Type))
		}
	}

	var n names
	if tag.Template != "" {
		var err error
		if n, err = parseTemplate(tag.Template); err != nil {
			return c.declErr(ErrInvalidTemplate, id, err.Error())
		}
	} else {
		n.long = KebabCase(m.Name)
		if n.long == "" {
			return c.declErr(ErrInvalidTemplate, id, "cannot derive option names from an empty member name")
		}
		n.short = firstChar(n.long)
	}
	if n.valueName == "" && arity != NoValue {
		n.valueName = ConstantCase(m.Name)
	}

	desc := tag.Description
	if desc == "" {
		desc = m.Name
	}
	c.options = append(c.options, Option{
		ShortName:   n.short,
		SymbolName:  n.symbol,
		LongName:    n.long,
		ValueName:   n.valueName,
		Arity:       arity,
		Type:        m.Type,
		Description: desc,
		Required:    tag.Required,
		Default:     tag.Default,
		Hidden:      tag.Hidden,
		Member:      id,
		Index:       slices.Clone(m.Index),
	})
	return nil
}

func (c *compiler) addArgument(id string, m declared) error {
	tag := m.Argument
	seq := IsSequence(m.Type) && !c.reg.Custom(m.Type) && !c.reg.Custom(deref(m.Type))
	switch {
	case tag.MultipleValues && !seq:
		return c.declErr(ErrMultiValueTypeMismatch, id, fmt.Sprintf("multi-value argument must be a slice, got %s", m.Type))
	case !tag.MultipleValues && seq:
		return c.declErr(ErrMultiValueTypeMismatch, id, fmt.Sprintf("%s is a collection; mark the argument multi-value", m.Type))
	}
	elem := m.Type
	if tag.MultipleValues {
		elem = ElemType(m.Type)
	}
	if !c.reg.Supports(elem) {
		return c.declErr(ErrNoValueParser, id, fmt.Sprintf("cannot convert text to %s", elem))
	}

	order := len(c.args)
	if tag.Order != nil {
		order = *tag.Order
	}
	name := tag.Name
	if name == "" {
		name = KebabCase(m.Name)
	}
	c.args = append(c.args, Argument{
		Name:           name,
		Order:          order,
		Type:           m.Type,
		Description:    tag.Description,
		MultipleValues: tag.MultipleValues,
		Required:       tag.Required,
		Default:        tag.Default,
		Member:         id,
		Index:          slices.Clone(m.Index),
	})
	return nil
}

// validate is the second pass. It checks constraints that span members and
// assembles the model.
func (c *compiler) validate() (*Model, error) {
	var byOrder map[int]int
	for i, a := range c.args {
		if prev, ok := byOrder[a.Order]; ok {
			e := c.declErr(ErrDuplicateOrder, c.args[prev].Member, "")
			e.Other = a.Member
			e.Order = a.Order
			return nil, e
		}
		mak.Set(&byOrder, a.Order, i)
	}

	args := slices.Clone(c.args)
	slices.SortStableFunc(args, func(a, b Argument) int { return a.Order - b.Order })
	for i := 0; i < len(args)-1; i++ {
		if args[i].MultipleValues {
			e := c.declErr(ErrMultiValueNotLast, args[i].Member, "")
			e.Other = args[len(args)-1].Member
			return nil, e
		}
	}

	m := &Model{
		name:    c.d.Name,
		typ:     c.d.Type,
		options: c.options,
		args:    args,
		help:    c.help,
	}
	for i, o := range c.options {
		for _, short := range []string{o.SymbolName, o.ShortName} {
			if short == "" {
				continue
			}
			if prev, ok := m.byShort[short]; ok {
				return nil, c.ambiguous(prev, i, "-"+short)
			}
			mak.Set(&m.byShort, short, i)
		}
		if o.LongName != "" {
			key := strings.ToLower(o.LongName)
			if prev, ok := m.byLong[key]; ok {
				return nil, c.ambiguous(prev, i, "--"+o.LongName)
			}
			mak.Set(&m.byLong, key, i)
		}
	}
	return m, nil
}

func (c *compiler) ambiguous(prev, cur int, name string) *DeclError {
	e := c.declErr(ErrAmbiguousName, c.options[prev].Member, "")
	e.Other = c.options[cur].Member
	e.Name = name
	return e
}
