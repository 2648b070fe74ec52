// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package bind_test

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/yeetrun/argbind/pkg/bind"
	"github.com/yeetrun/argbind/pkg/cmdmodel"
	"github.com/yeetrun/argbind/pkg/decl"
	"github.com/yeetrun/argbind/pkg/valueparse"
)

func compile[T any](t *testing.T) *cmdmodel.Model {
	t.Helper()
	d, err := decl.DescribeFor[T]()
	if err != nil {
		t.Fatalf("Describe() error: %v", err)
	}
	m, err := cmdmodel.Compile(d)
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	return m
}

func bindArgs[T any](t *testing.T, args ...string) (T, *bind.Result, error) {
	t.Helper()
	var dst T
	res, err := bind.Bind(compile[T](t), args, valueparse.Default(), &dst)
	return dst, res, err
}

type serveParams struct {
	Port    int      `opt:"--port"`
	Verbose bool     `opt:"-v|--verbose"`
	Name    string   `opt:"-n|--name <N>"`
	Args    []string `arg:"" multi:"true"`
	Help    bool     `helpopt:""`
}

func TestBind_PortAndArgs(t *testing.T) {
	got, res, err := bindArgs[serveParams](t, "--port", "9090", "a", "b", "c")
	if err != nil {
		t.Fatalf("Bind() error: %v", err)
	}
	want := serveParams{Port: 9090, Args: []string{"a", "b", "c"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
	if len(res.Leftover) != 0 {
		t.Errorf("Leftover = %v, want none", res.Leftover)
	}
}

func TestBind_MissingOptionValue(t *testing.T) {
	_, _, err := bindArgs[serveParams](t, "--port")
	if !errors.Is(err, bind.ErrMissingOptionValue) {
		t.Fatalf("Bind() error = %v, want %v", err, bind.ErrMissingOptionValue)
	}
	var pe *bind.ParseError
	if !errors.As(err, &pe) || pe.Option != "port" {
		t.Errorf("ParseError = %+v, want option port", pe)
	}
}

type clusterParams struct {
	V bool   `opt:"-v"`
	X string `opt:"-x"`
	Q bool   `opt:"-q"`
}

func TestBind_ShortForms(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want clusterParams
	}{
		{"cluster with attached value", []string{"-vxfoo"}, clusterParams{V: true, X: "foo"}},
		{"cluster of flags", []string{"-vq"}, clusterParams{V: true, Q: true}},
		{"colon value", []string{"-x:bar"}, clusterParams{X: "bar"}},
		{"equals value", []string{"-x=bar"}, clusterParams{X: "bar"}},
		{"separate value", []string{"-x", "bar"}, clusterParams{X: "bar"}},
		{"value looks like option", []string{"-x", "-v"}, clusterParams{X: "-v"}},
		{"flag with inline false", []string{"-v=false", "-q"}, clusterParams{Q: true}},
		{"last single value wins", []string{"-x", "a", "-x", "b"}, clusterParams{X: "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := bindArgs[clusterParams](t, tt.args...)
			if err != nil {
				t.Fatalf("Bind(%q) error: %v", tt.args, err)
			}
			if got != tt.want {
				t.Errorf("Bind(%q) = %+v, want %+v", tt.args, got, tt.want)
			}
		})
	}
}

type longParams struct {
	MaxRetries int           `opt:""`
	Verbose    bool          `opt:""`
	Timeout    time.Duration `opt:"--timeout" default:"5s"`
	Tags       []string      `opt:"--tag"`
}

func TestBind_LongForms(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want longParams
	}{
		{"derived names", []string{"--max-retries", "3", "--verbose"}, longParams{MaxRetries: 3, Verbose: true, Timeout: 5 * time.Second}},
		{"case-insensitive", []string{"--MAX-RETRIES=4"}, longParams{MaxRetries: 4, Timeout: 5 * time.Second}},
		{"colon value", []string{"--timeout:1m"}, longParams{Timeout: time.Minute}},
		{"no-value with inline", []string{"--verbose=true"}, longParams{Verbose: true, Timeout: 5 * time.Second}},
		{"multi accumulates", []string{"--tag", "a", "--tag=b"}, longParams{Tags: []string{"a", "b"}, Timeout: 5 * time.Second}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := bindArgs[longParams](t, tt.args...)
			if err != nil {
				t.Fatalf("Bind(%q) error: %v", tt.args, err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Bind(%q) mismatch (-want +got):\n%s", tt.args, diff)
			}
		})
	}
}

func TestBind_UnknownOption(t *testing.T) {
	tests := []struct {
		args     []string
		wantName string
	}{
		{[]string{"--nope"}, "--nope"},
		{[]string{"--nope=1"}, "--nope"},
		{[]string{"-z"}, "-z"},
		{[]string{"-vz"}, "-z"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			_, _, err := bindArgs[clusterParams](t, tt.args...)
			if !errors.Is(err, bind.ErrUnknownOption) {
				t.Fatalf("Bind() error = %v, want %v", err, bind.ErrUnknownOption)
			}
			var pe *bind.ParseError
			if errors.As(err, &pe) && pe.Option != tt.wantName {
				t.Errorf("Option = %q, want %q", pe.Option, tt.wantName)
			}
		})
	}
}

func TestBind_BooleanPresence(t *testing.T) {
	got, _, err := bindArgs[longParams](t)
	if err != nil {
		t.Fatalf("Bind() error: %v", err)
	}
	if got.Verbose {
		t.Errorf("Verbose = true without the flag")
	}
	got, _, err = bindArgs[longParams](t, "--verbose")
	if err != nil {
		t.Fatalf("Bind() error: %v", err)
	}
	if !got.Verbose {
		t.Errorf("Verbose = false with the flag")
	}
}

type countParams struct {
	Verbose []bool `opt:"-v"`
}

func TestBind_CountingFlag(t *testing.T) {
	got, _, err := bindArgs[countParams](t, "-vvv", "-v")
	if err != nil {
		t.Fatalf("Bind() error: %v", err)
	}
	if len(got.Verbose) != 4 {
		t.Errorf("len(Verbose) = %d, want 4", len(got.Verbose))
	}
}

type copyParams struct {
	Force  bool   `opt:"-f"`
	Offset int    `opt:"-o"`
	Source string `arg:"" required:"true"`
	Dest   string `arg:""`
}

func TestBind_Positionals(t *testing.T) {
	tests := []struct {
		name         string
		args         []string
		want         copyParams
		wantLeftover []string
	}{
		{
			name: "interleaved with options",
			args: []string{"a", "-f", "b"},
			want: copyParams{Force: true, Source: "a", Dest: "b"},
		},
		{
			name: "double dash",
			args: []string{"--", "-f", "b"},
			want: copyParams{Source: "-f", Dest: "b"},
		},
		{
			name: "negative number",
			args: []string{"-5", "-2.5"},
			want: copyParams{Source: "-5", Dest: "-2.5"},
		},
		{
			name: "lone dash",
			args: []string{"-", "out"},
			want: copyParams{Source: "-", Dest: "out"},
		},
		{
			name:         "overflow stops parsing",
			args:         []string{"a", "b", "sub", "-f", "--x"},
			want:         copyParams{Source: "a", Dest: "b"},
			wantLeftover: []string{"sub", "-f", "--x"},
		},
		{
			name:         "overflow after double dash",
			args:         []string{"-o", "-3", "--", "a", "b", "c"},
			want:         copyParams{Offset: -3, Source: "a", Dest: "b"},
			wantLeftover: []string{"c"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, res, err := bindArgs[copyParams](t, tt.args...)
			if err != nil {
				t.Fatalf("Bind(%q) error: %v", tt.args, err)
			}
			if got != tt.want {
				t.Errorf("Bind(%q) = %+v, want %+v", tt.args, got, tt.want)
			}
			if !reflect.DeepEqual(res.Leftover, tt.wantLeftover) {
				t.Errorf("Leftover = %q, want %q", res.Leftover, tt.wantLeftover)
			}
		})
	}
}

type digitParams struct {
	Five bool   `opt:"-5"`
	Arg  string `arg:""`
}

func TestBind_DeclaredDigitShortName(t *testing.T) {
	got, _, err := bindArgs[digitParams](t, "-5", "x")
	if err != nil {
		t.Fatalf("Bind() error: %v", err)
	}
	if !got.Five || got.Arg != "x" {
		t.Errorf("Bind() = %+v, want Five and Arg x", got)
	}
}

func TestBind_Required(t *testing.T) {
	_, _, err := bindArgs[copyParams](t, "-f")
	if !errors.Is(err, bind.ErrMissingRequiredArgument) {
		t.Fatalf("Bind() error = %v, want %v", err, bind.ErrMissingRequiredArgument)
	}

	type needsName struct {
		Name string `opt:"--name" required:"true"`
	}
	_, _, err = bindArgs[needsName](t)
	if !errors.Is(err, bind.ErrMissingRequiredOption) {
		t.Fatalf("Bind() error = %v, want %v", err, bind.ErrMissingRequiredOption)
	}
	if !strings.Contains(err.Error(), "--name") {
		t.Errorf("error %q does not name --name", err)
	}
}

func TestBind_Help(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantHelp bool
		wantErr  error
	}{
		{name: "long", args: []string{"--help"}, wantHelp: true},
		{name: "short", args: []string{"-h"}, wantHelp: true},
		{name: "symbol", args: []string{"-?"}, wantHelp: true},
		{name: "after values", args: []string{"--port", "1", "a", "-h"}, wantHelp: true},
		{name: "stops before bad value", args: []string{"-h", "--port", "x"}, wantHelp: true},
		{name: "after unknown option", args: []string{"--bogus", "--help"}, wantHelp: true},
		{name: "after missing value", args: []string{"--port", "--help"}, wantErr: bind.ErrValueConversion},
		{name: "after double dash", args: []string{"--", "--help"}},
		{name: "unknown then help after double dash", args: []string{"--bogus", "--", "--help"}, wantErr: bind.ErrUnknownOption},
		{name: "in cluster", args: []string{"-vh"}, wantHelp: true},
		{name: "in cluster after unknown option", args: []string{"--bogus", "-vh"}, wantHelp: true},
		{name: "after unknown name in same cluster", args: []string{"-zh"}, wantHelp: true},
		{name: "short after unknown option", args: []string{"--bogus", "-h"}, wantHelp: true},
		{name: "cluster value is not help", args: []string{"--bogus", "-nh"}, wantErr: bind.ErrUnknownOption},
		{name: "value after unknown name is not help", args: []string{"-znh"}, wantErr: bind.ErrUnknownOption},
		{name: "unknown in later cluster", args: []string{"-v", "-zvh", "--name"}, wantHelp: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := bindArgs[serveParams](t, tt.args...)
			if got := bind.IsHelp(err); got != tt.wantHelp {
				t.Fatalf("IsHelp(%v) = %v, want %v", err, got, tt.wantHelp)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Bind() error = %v, want %v", err, tt.wantErr)
			}
			if !tt.wantHelp && tt.wantErr == nil && err != nil {
				t.Errorf("Bind() error: %v", err)
			}
		})
	}
}

type convParams struct {
	Port  valueparse.Port `opt:"--port"`
	Count int             `opt:"--count"`
	Nums  []int           `arg:"" multi:"true"`
}

func TestBind_ConversionErrorsCollected(t *testing.T) {
	_, _, err := bindArgs[convParams](t, "--port", "99999", "--count", "many", "1", "two", "3", "four")
	var ce *bind.ConversionErrors
	if !errors.As(err, &ce) {
		t.Fatalf("Bind() error = %v, want *ConversionErrors", err)
	}
	var got []string
	for _, e := range ce.Errs {
		got = append(got, e.Name+"="+e.Raw)
	}
	want := []string{"port=99999", "count=many", "nums=two", "nums=four"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("conversion errors mismatch (-want +got):\n%s", diff)
	}
	if !errors.Is(err, bind.ErrValueConversion) {
		t.Errorf("errors.Is(err, ErrValueConversion) = false")
	}
	var ve *bind.ValueError
	if !errors.As(err, &ve) || ve.Member == "" {
		t.Errorf("errors.As(*ValueError) = %+v", ve)
	}
}

func TestBind_NoPartialCommit(t *testing.T) {
	m := compile[convParams](t)
	dst := convParams{Count: 7}
	if _, err := bind.Bind(m, []string{"--count", "1", "--port", "x"}, valueparse.Default(), &dst); err == nil {
		t.Fatal("Bind() succeeded, want error")
	}
	if dst.Count != 7 {
		t.Errorf("Count = %d after failed bind, want 7", dst.Count)
	}
}

type roundTrip struct {
	Name    string        `opt:""`
	Retries int           `opt:""`
	Factor  float64       `opt:""`
	Wait    time.Duration `opt:""`
	Debug   bool          `opt:""`
	Level   *uint8        `opt:""`
	Tags    []string      `opt:"-t|--tag"`
	Ports   []uint16      `opt:"-p|--port"`
	Target  string        `arg:""`
	Files   []string      `arg:"" multi:"true"`
}

// Binding the canonical text of a populated object through long names must
// reproduce the object. Arguments go after "--" so values that look like
// options stay positional.
func TestBind_RoundTrip(t *testing.T) {
	lvl := uint8(3)
	src := roundTrip{
		Name:    "web",
		Retries: -2,
		Factor:  0.25,
		Wait:    1500 * time.Millisecond,
		Debug:   true,
		Level:   &lvl,
		Tags:    []string{"a", "b,c", "--x"},
		Ports:   []uint16{80, 443},
		Target:  "-prod",
		Files:   []string{"x.tar", "--help", "-"},
	}
	m := compile[roundTrip](t)

	var args []string
	rv := reflect.ValueOf(src)
	for _, o := range m.Options() {
		f := rv.FieldByIndex(o.Index)
		switch o.Arity {
		case cmdmodel.NoValue:
			if f.Bool() {
				args = append(args, "--"+o.LongName)
			}
		case cmdmodel.MultipleValue:
			for i := range f.Len() {
				args = append(args, "--"+o.LongName, valueparse.Format(f.Index(i).Interface()))
			}
		default:
			args = append(args, fmt.Sprintf("--%s=%s", o.LongName, valueparse.Format(f.Interface())))
		}
	}
	args = append(args, "--")
	for _, a := range m.Arguments() {
		f := rv.FieldByIndex(a.Index)
		if !a.MultipleValues {
			args = append(args, valueparse.Format(f.Interface()))
			continue
		}
		for i := range f.Len() {
			args = append(args, valueparse.Format(f.Index(i).Interface()))
		}
	}

	var got roundTrip
	res, err := bind.Bind(m, args, valueparse.Default(), &got)
	if err != nil {
		t.Fatalf("Bind(%q) error: %v", args, err)
	}
	if diff := cmp.Diff(src, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	if len(res.Leftover) != 0 {
		t.Errorf("Leftover = %q, want none", res.Leftover)
	}
}

// token has a parser that reports "no value" as nil.
type token struct{ s string }

type nilParams struct {
	Token token    `opt:"--token"`
	Ref   *token   `opt:"--ref"`
	All   []token  `opt:"--all" arity:"multi"`
	Args  []*token `arg:"" multi:"true"`
}

func TestBind_ParserReturnsNil(t *testing.T) {
	reg := valueparse.NewRegistry()
	reg.Register(reflect.TypeFor[token](), func(raw string) (any, error) {
		if raw == "none" {
			return nil, nil
		}
		return token{raw}, nil
	})
	d, err := decl.DescribeFor[nilParams]()
	if err != nil {
		t.Fatalf("Describe() error: %v", err)
	}
	m, err := cmdmodel.Compile(d, cmdmodel.WithRegistry(reg))
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}

	dst := nilParams{Token: token{"old"}, Ref: &token{"old"}}
	args := []string{"--token", "none", "--ref", "none", "--all", "a", "--all", "none", "b", "none"}
	if _, err := bind.Bind(m, args, reg, &dst); err != nil {
		t.Fatalf("Bind() error: %v", err)
	}
	want := nilParams{
		All:  []token{{"a"}, {}},
		Args: []*token{{"b"}, nil},
	}
	if diff := cmp.Diff(want, dst, cmp.AllowUnexported(token{})); diff != "" {
		t.Errorf("params mismatch (-want +got):\n%s", diff)
	}
}

func TestResult_Lookup(t *testing.T) {
	_, res, err := bindArgs[longParams](t, "--max-retries", "2")
	if err != nil {
		t.Fatalf("Bind() error: %v", err)
	}
	for _, name := range []string{"max-retries", "m", "MaxRetries"} {
		v, ok := res.Lookup(name)
		if !ok || v.Value != 2 {
			t.Errorf("Lookup(%q) = %+v, %v, want 2", name, v, ok)
		}
	}
	v, ok := res.Lookup("timeout")
	if !ok || !v.Default || v.Value != 5*time.Second {
		t.Errorf("Lookup(timeout) = %+v, %v, want default 5s", v, ok)
	}
	if _, ok := res.Lookup("verbose"); ok {
		t.Errorf("Lookup(verbose) found an unmatched flag")
	}
}

type mapTarget map[string]any

func (m mapTarget) Assign(member string, v any) error {
	m[member] = v
	return nil
}

func TestResult_CommitAssigner(t *testing.T) {
	m := compile[copyParams](t)
	res, err := bind.Parse(m, []string{"-f", "src"}, valueparse.Default())
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	got := mapTarget{}
	if err := res.Commit(got); err != nil {
		t.Fatalf("Commit() error: %v", err)
	}
	want := mapTarget{"Force": true, "Source": "src"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Commit() mismatch (-want +got):\n%s", diff)
	}
}

// rejectTarget refuses one member and records the rest.
type rejectTarget struct {
	reject string
	got    map[string]any
}

func (r *rejectTarget) Assign(member string, v any) error {
	if member == r.reject {
		return errors.New("rejected")
	}
	r.got[member] = v
	return nil
}

func TestResult_CommitAssignerError(t *testing.T) {
	m := compile[copyParams](t)
	res, err := bind.Parse(m, []string{"-f", "src"}, valueparse.Default())
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	dst := &rejectTarget{reject: "Source", got: map[string]any{}}
	err = res.Commit(dst)
	if err == nil || !strings.Contains(err.Error(), "Source") {
		t.Fatalf("Commit() error = %v, want it to name Source", err)
	}
	// Values before the failing member stay assigned.
	want := map[string]any{"Force": true}
	if diff := cmp.Diff(want, dst.got); diff != "" {
		t.Errorf("assigned mismatch (-want +got):\n%s", diff)
	}
}

func TestResult_CommitWrongTarget(t *testing.T) {
	m := compile[copyParams](t)
	res, err := bind.Parse(m, []string{"src"}, valueparse.Default())
	if err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	for _, dst := range []any{nil, copyParams{}, &serveParams{}, new(int)} {
		if err := res.Commit(dst); err == nil {
			t.Errorf("Commit(%T) succeeded, want error", dst)
		}
	}
}

func TestParse_Logf(t *testing.T) {
	m := compile[copyParams](t)
	var lines []string
	logf := func(format string, args ...any) { lines = append(lines, fmt.Sprintf(format, args...)) }
	if _, err := bind.Parse(m, []string{"-f", "a"}, valueparse.Default(), bind.WithLogf(logf)); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	if len(lines) == 0 {
		t.Errorf("no trace lines logged")
	}
}
