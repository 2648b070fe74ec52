// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package usage renders help text for a compiled command model.
package usage

import (
	"fmt"
	"io"
	"strings"

	"github.com/yeetrun/argbind/pkg/cmdmodel"
)

// Config describes the command around a model.
type Config struct {
	// Name is the program name shown in USAGE.
	Name string
	// Description is printed above USAGE.
	Description string
	// Usage is appended to the synopsis, e.g. "<command> [ARGS...]".
	Usage    string
	Examples []string
	Color    Colorizer
}

const (
	indent   = "    "
	argWidth = 20
	optWidth = 24
)

// Write renders plain help for m to w.
func Write(w io.Writer, name string, m *cmdmodel.Model) error {
	_, err := io.WriteString(w, Render(Config{Name: name}, m))
	return err
}

// Render returns the help text for m.
func Render(cfg Config, m *cmdmodel.Model) string {
	c := cfg.Color
	var b strings.Builder

	if cfg.Description != "" {
		b.WriteString(cfg.Description)
		b.WriteString("\n\n")
	}

	args := m.Arguments()
	var opts []cmdmodel.Option
	for _, o := range m.Options() {
		if !o.Hidden && !o.Help {
			opts = append(opts, o)
		}
	}
	help, hasHelp := m.HelpOption()

	b.WriteString(c.Header("USAGE:"))
	b.WriteString("\n")
	synopsis := indent + cfg.Name
	if len(opts) > 0 || hasHelp {
		synopsis += " [OPTIONS]"
	}
	for _, a := range args {
		synopsis += " " + Synopsis(a)
	}
	if cfg.Usage != "" {
		synopsis += " " + cfg.Usage
	}
	b.WriteString(synopsis)
	b.WriteString("\n\n")

	if len(args) > 0 {
		b.WriteString(c.Header("ARGUMENTS:"))
		b.WriteString("\n")
		for _, a := range args {
			name := strings.ToUpper(a.Name)
			b.WriteString(indent)
			if a.Description == "" && a.Default == "" {
				b.WriteString(c.Name(name))
				b.WriteString("\n")
				continue
			}
			b.WriteString(pad(c, name, argWidth))
			b.WriteString(" ")
			b.WriteString(a.Description)
			writeDefault(&b, c, a.Default, a.Description != "")
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(opts) > 0 || hasHelp {
		b.WriteString(c.Header("OPTIONS:"))
		b.WriteString("\n")
		if hasHelp {
			opts = append(opts, help)
		}
		for _, o := range opts {
			flag := Flag(o)
			b.WriteString(indent)
			b.WriteString(pad(c, flag, optWidth))
			b.WriteString(" ")
			b.WriteString(o.Description)
			if o.Required {
				b.WriteString(c.Dim(" (required)"))
			}
			writeDefault(&b, c, o.Default, true)
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(cfg.Examples) > 0 {
		b.WriteString(c.Header("EXAMPLES:"))
		b.WriteString("\n")
		for _, ex := range cfg.Examples {
			fmt.Fprintf(&b, "%s%s\n", indent, ex)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// Flag renders an option's names and value placeholder, e.g.
// "-p, --port <PORT>".
func Flag(o cmdmodel.Option) string {
	var names []string
	for _, s := range []string{o.SymbolName, o.ShortName} {
		if s != "" {
			names = append(names, "-"+s)
		}
	}
	if o.LongName != "" {
		names = append(names, "--"+o.LongName)
	}
	s := strings.Join(names, ", ")
	switch o.Arity {
	case cmdmodel.SingleValue:
		s += " <" + o.ValueName + ">"
	case cmdmodel.MultipleValue:
		s += " <" + o.ValueName + ">..."
	}
	return s
}

// Synopsis renders an argument for the USAGE line: <NAME> when required,
// [NAME] when optional, with "..." for multi-value arguments.
func Synopsis(a cmdmodel.Argument) string {
	name := strings.ToUpper(a.Name)
	if a.MultipleValues {
		name += "..."
	}
	if a.Required {
		return "<" + name + ">"
	}
	return "[" + name + "]"
}

func pad(c Colorizer, plain string, width int) string {
	s := c.Name(plain)
	if n := width - len(plain); n > 0 {
		s += strings.Repeat(" ", n)
	}
	return s
}

func writeDefault(b *strings.Builder, c Colorizer, def string, space bool) {
	if def == "" {
		return
	}
	if space {
		b.WriteString(" ")
	}
	b.WriteString(c.Dim(fmt.Sprintf("(default: %s)", def)))
}
