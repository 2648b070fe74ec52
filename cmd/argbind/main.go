// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The argbind command checks descriptor files and parses command lines
// against them.
//
//	argbind check deploy.yaml
//	argbind parse deploy.yaml --format yaml -- --port 9090 prod a.tar
//	argbind convert deploy.yaml --to toml -o deploy.toml
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"text/tabwriter"

	"github.com/yeetrun/argbind/pkg/argbind"
	"github.com/yeetrun/argbind/pkg/bind"
	"github.com/yeetrun/argbind/pkg/cmdmodel"
	"github.com/yeetrun/argbind/pkg/cmdutil"
	"github.com/yeetrun/argbind/pkg/declfile"
	"github.com/yeetrun/argbind/pkg/fileutil"
	"github.com/yeetrun/argbind/pkg/usage"
	"github.com/yeetrun/argbind/pkg/valueparse"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
	"tailscale.com/types/logger"
)

type globals struct {
	Verbose bool `opt:"-v|--verbose" help:"Print debug traces (ARGBIND_DEBUG)"`
	NoColor bool `opt:"--no-color" help:"Disable colored output (NO_COLOR)"`
	Help    bool `helpopt:""`
}

type checkParams struct {
	File string `arg:"" required:"true" help:"Descriptor file (.yaml, .yml or .toml)"`
	Help bool   `helpopt:""`
}

type parseParams struct {
	File   string `arg:"" required:"true" help:"Descriptor file (.yaml, .yml or .toml)"`
	Format string `opt:"-f|--format <FORMAT>" default:"json" help:"Output format: json or yaml"`
	Help   bool   `helpopt:""`
}

type convertParams struct {
	File   string          `arg:"" required:"true" help:"Descriptor file (.yaml, .yml or .toml)"`
	To     declfile.Format `opt:"-t|--to <FORMAT>" required:"true" help:"Output format: yaml or toml"`
	Output string          `opt:"-o|--output <FILE>" help:"Write to FILE instead of stdout"`
	Force  bool            `opt:"--force" help:"Overwrite FILE without asking"`
	Help   bool            `helpopt:""`
}

// tool carries the settings shared by the subcommands.
type tool struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	// tty reports whether stdout is a terminal; interactive whether stdin is.
	tty         bool
	interactive bool

	color bool
	logf  logger.Logf
}

func (t *tool) app(name, description string) *argbind.App {
	return &argbind.App{
		Name:        name,
		Description: description,
		Logf:        t.logf,
		Stdout:      t.stdout,
		Stderr:      t.stderr,
		Color:       t.color,
	}
}

func main() {
	log.SetFlags(0)
	t := &tool{
		stdin:       os.Stdin,
		stdout:      os.Stdout,
		stderr:      os.Stderr,
		tty:         term.IsTerminal(int(os.Stdout.Fd())),
		interactive: term.IsTerminal(int(os.Stdin.Fd())),
	}
	err := t.run(context.Background(), os.Args[1:])
	switch {
	case err == nil:
	case errors.Is(err, argbind.ErrShown):
		os.Exit(2)
	default:
		log.Fatalf("argbind: %v", err)
	}
}

func (t *tool) run(ctx context.Context, args []string) error {
	t.logf = logger.Discard
	app := t.app("argbind", "Check descriptor files and bind command lines against them.")
	app.Examples = []string{
		"argbind check deploy.yaml",
		"argbind parse deploy.yaml --format yaml -- --port 9090 prod",
		"argbind convert deploy.yaml --to toml",
	}
	var g globals
	res, err := app.Run(&g, args)
	if err != nil {
		return err
	}
	if g.Verbose || os.Getenv("ARGBIND_DEBUG") != "" {
		t.logf = log.Printf
	}
	t.color = t.tty && !g.NoColor && os.Getenv("NO_COLOR") == ""

	err = argbind.Dispatch(ctx, res.Leftover, map[string]argbind.SubcommandHandler{
		"check":   t.check,
		"parse":   t.parse,
		"convert": t.convert,
	})
	var unknown *argbind.UnknownSubcommandError
	if errors.Is(err, argbind.ErrNoSubcommand) || errors.As(err, &unknown) {
		c := usage.NewColorizer(t.color)
		fmt.Fprintf(t.stderr, "%s %v\n", c.Error("Error:"), err)
		fmt.Fprintln(t.stderr, "Try 'argbind --help' for more information")
		return argbind.ErrShown
	}
	return err
}

// load reads a descriptor file and compiles its model.
func (t *tool) load(path string) (*declfile.File, *cmdmodel.Model, error) {
	f, err := declfile.Load(path)
	if err != nil {
		return nil, nil, err
	}
	d, err := f.Descriptor()
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	m, err := cmdmodel.Compile(d, cmdmodel.WithLogf(t.logf))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return f, m, nil
}

func (t *tool) check(ctx context.Context, args []string) error {
	var p checkParams
	if _, err := t.app("argbind check", "Compile a descriptor file and print its model.").Run(&p, args); err != nil {
		return err
	}
	f, m, err := t.load(p.File)
	if err != nil {
		return err
	}
	io.WriteString(t.stdout, usage.Render(usage.Config{
		Name:        f.Name,
		Description: f.Description,
		Color:       usage.NewColorizer(t.color),
	}, m))
	fmt.Fprintln(t.stdout)
	return writeTable(t.stdout, m)
}

// writeTable lists every compiled member with its resolved names.
func writeTable(w io.Writer, m *cmdmodel.Model) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MEMBER\tKIND\tNAMES\tARITY\tTYPE")
	for _, o := range m.Options() {
		kind := "option"
		if o.Help {
			kind = "help"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%v\n", o.Member, kind, o.Display(), o.Arity, o.Type)
	}
	for _, a := range m.Arguments() {
		arity := cmdmodel.SingleValue
		if a.MultipleValues {
			arity = cmdmodel.MultipleValue
		}
		fmt.Fprintf(tw, "%s\targument %d\t%s\t%s\t%v\n", a.Member, a.Order, a.Name, arity, a.Type)
	}
	return tw.Flush()
}

func (t *tool) parse(ctx context.Context, args []string) error {
	var p parseParams
	res, err := t.app("argbind parse", "Bind the arguments after -- and print the values.").Run(&p, args)
	if err != nil {
		return err
	}
	if p.Format != "json" && p.Format != "yaml" {
		return fmt.Errorf("unknown output format %q (want json or yaml)", p.Format)
	}
	f, m, err := t.load(p.File)
	if err != nil {
		return err
	}

	var vals declfile.Values
	if _, err := bind.Bind(m, res.Leftover, valueparse.Default(), &vals, bind.WithLogf(t.logf)); err != nil {
		if bind.IsHelp(err) {
			io.WriteString(t.stdout, usage.Render(usage.Config{
				Name:        f.Name,
				Description: f.Description,
				Color:       usage.NewColorizer(t.color),
			}, m))
			return nil
		}
		return err
	}
	return writeValues(t.stdout, vals, p.Format)
}

func writeValues(w io.Writer, vals declfile.Values, format string) error {
	text := vals.Text()
	if format == "yaml" {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(text); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(text)
}

func (t *tool) convert(ctx context.Context, args []string) error {
	var p convertParams
	if _, err := t.app("argbind convert", "Rewrite a descriptor file in another format.").Run(&p, args); err != nil {
		return err
	}
	f, _, err := t.load(p.File)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := f.Encode(&buf, p.To); err != nil {
		return err
	}
	if p.Output == "" {
		_, err := t.stdout.Write(buf.Bytes())
		return err
	}

	same, err := fileutil.Identical(p.Output, buf.Bytes())
	if err != nil {
		return err
	}
	if same {
		t.logf("argbind: %s is up to date", p.Output)
		return nil
	}
	if _, err := os.Stat(p.Output); err == nil && !p.Force {
		if !t.interactive {
			return fmt.Errorf("%s exists; use --force to overwrite", p.Output)
		}
		ok, err := cmdutil.Confirm(t.stdin, t.stderr, fmt.Sprintf("Overwrite %s?", p.Output))
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("not overwriting " + p.Output)
		}
	}
	return fileutil.WriteFile(p.Output, buf.Bytes(), 0o644)
}
