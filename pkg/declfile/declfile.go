// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package declfile reads command declarations from YAML or TOML files.
//
// A file describes one command:
//
//	version = 1
//	name = "deploy"
//	help = ""            # type-level help trigger; "" uses the default template
//
//	[[members]]
//	name = "Port"
//	type = "port"
//	role = "option"
//	template = "-p|--port <PORT>"
//	default = "8080"
//
//	[[members]]
//	name = "Files"
//	type = "[]string"
//	role = "argument"
//	multi = true
//
// Values bound from such a declaration are committed into a Values map.
package declfile

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/yeetrun/argbind/pkg/cmdmodel"
	"gopkg.in/yaml.v3"
)

const fileVersion = 1

// Format is a descriptor file encoding.
type Format string

const (
	YAML Format = "yaml"
	TOML Format = "toml"
)

// FormatOf returns the format implied by a file name's extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	}
	return "", fmt.Errorf("unknown descriptor format for %q (want .yaml, .yml or .toml)", path)
}

// File is a descriptor file.
type File struct {
	Version     int          `yaml:"version,omitempty" toml:"version,omitempty"`
	Name        string       `yaml:"name" toml:"name"`
	Description string       `yaml:"description,omitempty" toml:"description,omitempty"`
	Help        *string      `yaml:"help,omitempty" toml:"help,omitempty"`
	Members     []MemberSpec `yaml:"members" toml:"members"`
}

// MemberSpec declares one member. Role is "option", "argument" or "help";
// several roles may be joined with commas, which Compile rejects.
type MemberSpec struct {
	Name        string `yaml:"name" toml:"name"`
	Type        string `yaml:"type" toml:"type"`
	Role        string `yaml:"role" toml:"role"`
	Template    string `yaml:"template,omitempty" toml:"template,omitempty"`
	Arity       string `yaml:"arity,omitempty" toml:"arity,omitempty"`
	Order       *int   `yaml:"order,omitempty" toml:"order,omitempty"`
	Multi       bool   `yaml:"multi,omitempty" toml:"multi,omitempty"`
	Required    bool   `yaml:"required,omitempty" toml:"required,omitempty"`
	Default     string `yaml:"default,omitempty" toml:"default,omitempty"`
	Description string `yaml:"description,omitempty" toml:"description,omitempty"`
	Hidden      bool   `yaml:"hidden,omitempty" toml:"hidden,omitempty"`
	// Display is the argument name shown in usage.
	Display string `yaml:"display,omitempty" toml:"display,omitempty"`
}

// Load reads a descriptor file, choosing the format by extension.
func Load(path string) (*File, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return f, nil
}

// Parse decodes a descriptor file. Unknown keys are errors.
func Parse(data []byte, format Format) (*File, error) {
	var f File
	switch format {
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && err != io.EOF {
			return nil, err
		}
	case TOML:
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&f)
		if err != nil {
			return nil, err
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("unknown keys: %v", undecoded)
		}
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
	if f.Version == 0 {
		f.Version = fileVersion
	}
	if f.Version != fileVersion {
		return nil, fmt.Errorf("unsupported version %d", f.Version)
	}
	return &f, nil
}

// Encode writes f in the given format.
func (f *File) Encode(w io.Writer, format Format) error {
	switch format {
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return err
		}
		return enc.Close()
	case TOML:
		return toml.NewEncoder(w).Encode(f)
	}
	return fmt.Errorf("unknown format %q", format)
}

// Descriptor converts f into a descriptor for cmdmodel.Compile. Members
// have no field path; bind their results into a Values.
func (f *File) Descriptor() (*cmdmodel.Descriptor, error) {
	name := f.Name
	if name == "" {
		name = "command"
	}
	d := &cmdmodel.Descriptor{Name: name}
	if f.Help != nil {
		d.Help = &cmdmodel.HelpTag{Template: *f.Help}
	}
	for i, ms := range f.Members {
		if ms.Name == "" {
			return nil, fmt.Errorf("member %d has no name", i)
		}
		t, err := LookupType(ms.Type)
		if err != nil {
			return nil, fmt.Errorf("member %s: %w", ms.Name, err)
		}
		m := cmdmodel.Member{Name: ms.Name, Type: t}
		for _, role := range strings.Split(ms.Role, ",") {
			switch strings.TrimSpace(role) {
			case "option":
				arity, err := cmdmodel.ParseArity(ms.Arity)
				if err != nil {
					return nil, fmt.Errorf("member %s: %w", ms.Name, err)
				}
				m.Option = &cmdmodel.OptionTag{
					Template:    ms.Template,
					Arity:       arity,
					Description: ms.Description,
					Required:    ms.Required,
					Default:     ms.Default,
					Hidden:      ms.Hidden,
				}
			case "argument":
				m.Argument = &cmdmodel.ArgumentTag{
					Order:          ms.Order,
					Name:           ms.Display,
					Description:    ms.Description,
					MultipleValues: ms.Multi,
					Required:       ms.Required,
					Default:        ms.Default,
				}
			case "help":
				m.Help = &cmdmodel.HelpTag{Template: ms.Template, Description: ms.Description}
			default:
				return nil, fmt.Errorf("member %s: unknown role %q", ms.Name, role)
			}
		}
		d.Members = append(d.Members, m)
	}
	return d, nil
}
