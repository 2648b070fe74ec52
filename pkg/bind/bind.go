// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package bind parses argument vectors against a compiled command model
// and writes the converted values onto the declared object.
//
// Parsing happens in three steps. Tokens are classified left to right and
// matched to options and arguments; then every matched token is converted
// through the value-parser registry; then required members are checked.
// Values are only written by Commit, after all of that succeeded.
//
//	res, err := bind.Parse(model, os.Args[1:], valueparse.Default())
//	if errors.Is(err, bind.ErrHelpRequested) {
//		usage.Write(os.Stdout, "serve", model)
//		return
//	}
//	...
//	err = res.Commit(&params)
package bind

import (
	"strings"
	"unicode/utf8"

	"github.com/yeetrun/argbind/pkg/cmdmodel"
	"tailscale.com/types/logger"
	"tailscale.com/util/set"
)

// Option configures Parse.
type Option func(*parser)

// WithLogf routes token classification traces to logf.
func WithLogf(logf logger.Logf) Option {
	return func(p *parser) { p.logf = logf }
}

// Assigner is a commit target that is not a struct, such as a map of values
// read from a descriptor file. Assign is called once per bound member with
// the member name and the converted value.
type Assigner interface {
	Assign(member string, value any) error
}

// Bind parses args and commits the result to dst.
func Bind(m *cmdmodel.Model, args []string, reg cmdmodel.ValueParsers, dst any, opts ...Option) (*Result, error) {
	res, err := Parse(m, args, reg, opts...)
	if err != nil {
		return nil, err
	}
	if err := res.Commit(dst); err != nil {
		return nil, err
	}
	return res, nil
}

// Parse matches args against m and converts the matched tokens.
//
// The first structural error (unknown option, missing option value) stops
// tokenizing; conversion errors are all collected and returned together as
// a *ConversionErrors. If the help trigger appears before "--" the result is
// ErrHelpRequested, even when a structural error comes first.
func Parse(m *cmdmodel.Model, args []string, reg cmdmodel.ValueParsers, opts ...Option) (*Result, error) {
	p := &parser{
		m:      m,
		reg:    reg,
		logf:   logger.Discard,
		optRaw: make([][]string, m.NumOptions()),
		argRaw: make([][]string, m.NumArguments()),
	}
	for _, o := range opts {
		o(p)
	}
	if err := p.tokenize(args); err != nil {
		return nil, err
	}
	return p.finish()
}

type parser struct {
	m    *cmdmodel.Model
	reg  cmdmodel.ValueParsers
	logf logger.Logf

	optRaw   [][]string // by option index
	argRaw   [][]string // by argument index, ascending order
	matched  set.Set[int]
	argPos   int
	leftover []string
}

// errHelp is the internal signal that the help trigger matched.
var errHelp = &ParseError{Err: ErrHelpRequested}

func (p *parser) tokenize(args []string) error {
	terminated := false
	for i := 0; i < len(args); i++ {
		tok := args[i]
		var err error
		switch {
		case terminated:
			if !p.positional(tok) {
				p.leftover = args[i:]
				return nil
			}
		case tok == "--":
			p.logf("bind: %q ends options", tok)
			terminated = true
		case strings.HasPrefix(tok, "--"):
			i, err = p.long(args, i)
		case strings.HasPrefix(tok, "-") && tok != "-" && !p.negativeNumber(tok):
			i, err = p.short(args, i)
		default:
			if !p.positional(tok) {
				p.leftover = args[i:]
				return nil
			}
		}
		if err == errHelp {
			p.logf("bind: help requested at %q", tok)
			return err
		}
		if err != nil {
			if p.helpAhead(args[i:]) {
				p.logf("bind: help requested after %v", err)
				return errHelp
			}
			return err
		}
	}
	return nil
}

// negativeNumber reports whether tok is a negative number rather than a
// short option: "-5" is positional unless "5" is a declared short name.
func (p *parser) negativeNumber(tok string) bool {
	if !isNumeric(tok) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(tok[1:])
	_, declared := p.m.ShortIndex(string(r))
	return !declared
}

// isNumeric checks if a string is a number (e.g., "10", "-10", "3.14", "-3.14").
func isNumeric(s string) bool {
	if len(s) == 0 {
		return false
	}
	start := 0
	if s[0] == '-' || s[0] == '+' {
		if len(s) == 1 {
			return false
		}
		start = 1
	}
	hasDigit := false
	hasDot := false
	for i := start; i < len(s); i++ {
		switch {
		case s[i] >= '0' && s[i] <= '9':
			hasDigit = true
		case s[i] == '.' && !hasDot:
			hasDot = true
		default:
			return false
		}
	}
	return hasDigit
}

// positional assigns tok to the next unfilled argument. It reports false
// when every argument is filled and tok has nowhere to go.
func (p *parser) positional(tok string) bool {
	if p.argPos >= p.m.NumArguments() {
		p.logf("bind: %q and the rest are leftover", tok)
		return false
	}
	a := p.m.ArgumentAt(p.argPos)
	p.logf("bind: %q is argument %s", tok, a.Name)
	p.argRaw[p.argPos] = append(p.argRaw[p.argPos], tok)
	if !a.MultipleValues {
		p.argPos++
	}
	return true
}

// long handles "--name", "--name=value" and "--name:value".
func (p *parser) long(args []string, i int) (int, error) {
	tok := args[i]
	name, value, inline := cutValue(tok[2:])
	idx, ok := p.m.LongIndex(name)
	if !ok {
		return i, &ParseError{Err: ErrUnknownOption, Option: "--" + name, Token: tok}
	}
	o := p.m.OptionAt(idx)
	if o.Help {
		return i, errHelp
	}
	if o.Arity == cmdmodel.NoValue {
		if !inline {
			value = "true"
		}
		p.record(idx, value)
		return i, nil
	}
	if !inline {
		if i+1 >= len(args) {
			return i, &ParseError{Err: ErrMissingOptionValue, Option: o.Name(), Token: tok}
		}
		i++
		value = args[i]
	}
	p.record(idx, value)
	return i, nil
}

// short handles "-x", "-x:value", "-x=value", "-xvalue" and clusters of
// no-value options like "-vvx". The first valued option in a cluster takes
// the rest of the token as its value.
func (p *parser) short(args []string, i int) (int, error) {
	tok := args[i]
	rest := tok[1:]
	for rest != "" {
		r, size := utf8.DecodeRuneInString(rest)
		name := string(r)
		rest = rest[size:]
		idx, ok := p.m.ShortIndex(name)
		if !ok {
			return i, &ParseError{Err: ErrUnknownOption, Option: "-" + name, Token: tok}
		}
		o := p.m.OptionAt(idx)
		if o.Help {
			return i, errHelp
		}
		if o.Arity == cmdmodel.NoValue {
			if rest != "" && (rest[0] == ':' || rest[0] == '=') {
				p.record(idx, rest[1:])
				return i, nil
			}
			p.record(idx, "true")
			continue
		}
		value := rest
		if value != "" {
			if value[0] == ':' || value[0] == '=' {
				value = value[1:]
			}
		} else {
			if i+1 >= len(args) {
				return i, &ParseError{Err: ErrMissingOptionValue, Option: o.Name(), Token: tok}
			}
			i++
			value = args[i]
		}
		p.record(idx, value)
		return i, nil
	}
	return i, nil
}

// record stores a raw value for option idx. Single values are replaced so
// the last occurrence wins; sequences accumulate.
func (p *parser) record(idx int, value string) {
	o := p.m.OptionAt(idx)
	p.logf("bind: option %s = %q", o.Name(), value)
	p.matched.Make()
	p.matched.Add(idx)
	if accumulates(o) {
		p.optRaw[idx] = append(p.optRaw[idx], value)
		return
	}
	p.optRaw[idx] = []string{value}
}

func accumulates(o *cmdmodel.Option) bool {
	return o.Arity == cmdmodel.MultipleValue ||
		(o.Arity == cmdmodel.NoValue && cmdmodel.IsSequence(o.Type))
}

// helpAhead reports whether the help trigger appears in rest before "--".
// rest starts with the token that failed, so the part of a short cluster
// after an unknown name is searched too.
func (p *parser) helpAhead(rest []string) bool {
	h := p.m.HelpIndex()
	if h < 0 {
		return false
	}
	for _, tok := range rest {
		switch {
		case tok == "--":
			return false
		case strings.HasPrefix(tok, "--"):
			name, _, _ := cutValue(tok[2:])
			if idx, ok := p.m.LongIndex(name); ok && idx == h {
				return true
			}
		case strings.HasPrefix(tok, "-") && len(tok) > 1:
			if p.clusterHasHelp(tok[1:], h) {
				return true
			}
		}
	}
	return false
}

// clusterHasHelp walks a short cluster the way short does, skipping unknown
// names. A valued option ends the walk since the rest is its value.
func (p *parser) clusterHasHelp(cluster string, h int) bool {
	for _, r := range cluster {
		idx, ok := p.m.ShortIndex(string(r))
		if !ok {
			continue
		}
		if idx == h {
			return true
		}
		if p.m.OptionAt(idx).Arity != cmdmodel.NoValue {
			return false
		}
	}
	return false
}

func cutValue(s string) (name, value string, ok bool) {
	if i := strings.IndexAny(s, "=:"); i >= 0 {
		return s[:i], s[i+1:], true
	}
	return s, "", false
}
