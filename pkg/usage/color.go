// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package usage

import (
	"os"

	"github.com/fatih/color"
)

// Colorizer decorates usage text. The zero value writes plain text.
type Colorizer struct {
	Enabled bool
}

// NewColorizer returns a Colorizer that is enabled only if enabled is true,
// NO_COLOR is unset and TERM names a real terminal.
func NewColorizer(enabled bool) Colorizer {
	if !enabled {
		return Colorizer{}
	}
	if os.Getenv("NO_COLOR") != "" {
		return Colorizer{}
	}
	term := os.Getenv("TERM")
	if term == "" || term == "dumb" {
		return Colorizer{}
	}
	return Colorizer{Enabled: true}
}

func (c Colorizer) wrap(text string, attrs ...color.Attribute) string {
	if !c.Enabled {
		return text
	}
	col := color.New(attrs...)
	col.EnableColor()
	return col.Sprint(text)
}

// Header styles a section header such as "USAGE:".
func (c Colorizer) Header(text string) string {
	return c.wrap(text, color.Bold, color.FgYellow)
}

// Name styles an option or argument name.
func (c Colorizer) Name(text string) string {
	return c.wrap(text, color.FgGreen)
}

// Dim styles secondary text such as defaults.
func (c Colorizer) Dim(text string) string {
	return c.wrap(text, color.FgHiBlack)
}

// Error styles an error message.
func (c Colorizer) Error(text string) string {
	return c.wrap(text, color.FgRed)
}
