// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package argbind binds command lines to tagged structs.
//
// Declare the command as a struct (see package decl for the tags) and parse:
//
//	type Params struct {
//		Port int      `opt:"-p|--port <PORT>" help:"Port to listen on" default:"8080"`
//		Dirs []string `arg:"" multi:"true" help:"Directories to serve"`
//		Help bool     `helpopt:""`
//	}
//
//	p, _, err := argbind.Parse[Params](os.Args[1:])
//
// Models are compiled once per type and cached.
package argbind

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"

	"github.com/yeetrun/argbind/pkg/bind"
	"github.com/yeetrun/argbind/pkg/cmdmodel"
	"github.com/yeetrun/argbind/pkg/decl"
	"github.com/yeetrun/argbind/pkg/usage"
	"github.com/yeetrun/argbind/pkg/valueparse"
	"tailscale.com/types/lazy"
	"tailscale.com/types/logger"
	"tailscale.com/util/must"
)

// ErrShown is returned by Run when help or an error message was displayed.
// Callers should treat it as a signal to exit.
var ErrShown = errors.New("help or error displayed")

// App holds the configuration shared by every parse. The zero value is
// ready to use. An App must not be copied after first use.
type App struct {
	// Name is the program name used in usage text. It defaults to the base
	// name of os.Args[0].
	Name        string
	Description string
	Examples    []string

	// Registry converts token text. Nil means valueparse.Default().
	Registry *valueparse.Registry
	// HelpTemplate replaces cmdmodel.DefaultHelpTemplate.
	HelpTemplate string
	// Logf receives debug traces. Nil discards them.
	Logf logger.Logf

	// Stdout and Stderr are used by Run. Nil means os.Stdout and os.Stderr.
	Stdout io.Writer
	Stderr io.Writer
	// Color enables colored usage and errors in Run.
	Color bool

	cache cmdmodel.Cache
}

func (a *App) registry() *valueparse.Registry {
	if a.Registry != nil {
		return a.Registry
	}
	return valueparse.Default()
}

func (a *App) logf(format string, args ...any) {
	if a.Logf != nil {
		a.Logf(format, args...)
	}
}

func (a *App) name() string {
	if a.Name != "" {
		return a.Name
	}
	return filepath.Base(os.Args[0])
}

// Model returns the compiled model for the struct type t (or a pointer to
// it), compiling and caching it on first use.
func (a *App) Model(t reflect.Type) (*cmdmodel.Model, error) {
	if t == nil {
		return nil, fmt.Errorf("argbind: nil type")
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	m, hit, err := a.cache.Load(t, func() (*cmdmodel.Model, error) {
		d, err := decl.Describe(t)
		if err != nil {
			return nil, err
		}
		opts := []cmdmodel.CompileOption{
			cmdmodel.WithRegistry(a.registry()),
			cmdmodel.WithLogf(a.logf),
		}
		if a.HelpTemplate != "" {
			opts = append(opts, cmdmodel.WithHelpTemplate(a.HelpTemplate))
		}
		return cmdmodel.Compile(d, opts...)
	})
	if err != nil {
		return nil, fmt.Errorf("argbind: %w", err)
	}
	if hit {
		a.logf("argbind: model cache hit for %s", t)
	}
	return m, nil
}

// ParseInto parses args and writes the values to dst, a pointer to a
// tagged struct.
func (a *App) ParseInto(dst any, args []string) (*bind.Result, error) {
	m, err := a.modelFor(dst)
	if err != nil {
		return nil, err
	}
	return bind.Bind(m, args, a.registry(), dst, bind.WithLogf(a.logf))
}

func (a *App) modelFor(dst any) (*cmdmodel.Model, error) {
	t := reflect.TypeOf(dst)
	if t == nil || t.Kind() != reflect.Pointer {
		return nil, fmt.Errorf("argbind: destination must be a pointer, got %T", dst)
	}
	return a.Model(t)
}

// Usage returns the help text for the struct type t.
func (a *App) Usage(t reflect.Type) (string, error) {
	m, err := a.Model(t)
	if err != nil {
		return "", err
	}
	return a.render(m, false), nil
}

func (a *App) render(m *cmdmodel.Model, color bool) string {
	return usage.Render(usage.Config{
		Name:        a.name(),
		Description: a.Description,
		Examples:    a.Examples,
		Color:       usage.NewColorizer(color),
	}, m)
}

// Run is ParseInto for main functions. On a help request it prints usage
// to Stdout; on a user error it prints the error and a hint to Stderr.
// Both cases return ErrShown. Declaration errors are returned as is.
func (a *App) Run(dst any, args []string) (*bind.Result, error) {
	m, err := a.modelFor(dst)
	if err != nil {
		return nil, err
	}
	res, err := bind.Bind(m, args, a.registry(), dst, bind.WithLogf(a.logf))
	if err == nil {
		return res, nil
	}

	stdout, stderr := a.Stdout, a.Stderr
	if stdout == nil {
		stdout = os.Stdout
	}
	if stderr == nil {
		stderr = os.Stderr
	}
	if bind.IsHelp(err) {
		io.WriteString(stdout, a.render(m, a.Color))
		return nil, ErrShown
	}
	c := usage.NewColorizer(a.Color)
	fmt.Fprintf(stderr, "%s %v\n", c.Error("Error:"), err)
	if h, ok := m.HelpOption(); ok {
		fmt.Fprintf(stderr, "Try '%s %s' for more information\n", a.name(), helpName(h))
	}
	return nil, ErrShown
}

func helpName(o cmdmodel.Option) string {
	switch {
	case o.LongName != "":
		return "--" + o.LongName
	case o.ShortName != "":
		return "-" + o.ShortName
	}
	return "-" + o.SymbolName
}

var defaultApp lazy.SyncValue[*App]

// Default returns the App used by the package-level functions.
func Default() *App {
	return defaultApp.Get(func() *App { return new(App) })
}

// Parse parses args into a new T using the default App.
func Parse[T any](args []string) (*T, *bind.Result, error) {
	dst := new(T)
	res, err := Default().ParseInto(dst, args)
	if err != nil {
		return nil, nil, err
	}
	return dst, res, nil
}

// ParseInto parses args into dst using the default App.
func ParseInto(dst any, args []string) (*bind.Result, error) {
	return Default().ParseInto(dst, args)
}

// MustModel returns the model for T from the default App and panics if
// T's declaration is invalid.
func MustModel[T any]() *cmdmodel.Model {
	return must.Get(Default().Model(reflect.TypeFor[T]()))
}

// SubcommandHandler runs a subcommand with the tokens that follow its name.
type SubcommandHandler func(ctx context.Context, args []string) error

// ErrNoSubcommand is returned by Dispatch when there is nothing to dispatch.
var ErrNoSubcommand = errors.New("no subcommand given")

// UnknownSubcommandError is returned by Dispatch for a name with no handler.
type UnknownSubcommandError struct {
	Name string
}

func (e *UnknownSubcommandError) Error() string {
	return fmt.Sprintf("unknown command: %s", e.Name)
}

// Dispatch routes leftover tokens from a parse to the handler named by the
// first one.
//
//	res, err := argbind.ParseInto(&globals, os.Args[1:])
//	...
//	err = argbind.Dispatch(ctx, res.Leftover, map[string]argbind.SubcommandHandler{
//		"serve": runServe,
//	})
func Dispatch(ctx context.Context, leftover []string, handlers map[string]SubcommandHandler) error {
	if len(leftover) == 0 {
		return ErrNoSubcommand
	}
	h, ok := handlers[leftover[0]]
	if !ok {
		return &UnknownSubcommandError{Name: leftover[0]}
	}
	return h(ctx, leftover[1:])
}
