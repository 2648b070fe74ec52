// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdmodel

import (
	"testing"
)

func TestKebabCase(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Port", "port"},
		{"MaxRetries", "max-retries"},
		{"HTTPPort", "http-port"},
		{"ServerURL", "server-url"},
		{"IPv6", "i-pv6"},
		{"Retry2Times", "retry2-times"},
		{"dry_run", "dry-run"},
		{"x", "x"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := KebabCase(tt.in); got != tt.want {
				t.Errorf("KebabCase(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestConstantCase(t *testing.T) {
	if got, want := ConstantCase("MaxRetries"), "MAX_RETRIES"; got != want {
		t.Errorf("ConstantCase = %q, want %q", got, want)
	}
	if got, want := ConstantCase("HTTPPort"), "HTTP_PORT"; got != want {
		t.Errorf("ConstantCase = %q, want %q", got, want)
	}
}

func TestParseTemplate(t *testing.T) {
	tests := []struct {
		tmpl    string
		want    names
		wantErr bool
	}{
		{tmpl: "-p|--port <PORT>", want: names{short: "p", long: "port", valueName: "PORT"}},
		{tmpl: "--name", want: names{long: "name"}},
		{tmpl: "-v", want: names{short: "v"}},
		{tmpl: "-?|-h|--help", want: names{short: "h", symbol: "?", long: "help"}},
		{tmpl: "--out <FILE>", want: names{long: "out", valueName: "FILE"}},
		{tmpl: "", wantErr: true},
		{tmpl: "-port", wantErr: true},
		{tmpl: "port", wantErr: true},
		{tmpl: "-a|-b", wantErr: true},
		{tmpl: "--a|--b", wantErr: true},
		{tmpl: "--a=b", wantErr: true},
		{tmpl: "--port PORT", wantErr: true},
		{tmpl: "--port <A> <B>", wantErr: true},
		{tmpl: "-|--x", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.tmpl, func(t *testing.T) {
			got, err := parseTemplate(tt.tmpl)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseTemplate(%q) error = %v, wantErr %v", tt.tmpl, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseTemplate(%q) = %+v, want %+v", tt.tmpl, got, tt.want)
			}
		})
	}
}
