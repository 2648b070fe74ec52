// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package declfile

import (
	"fmt"
	"net/netip"
	"net/url"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
	"github.com/yeetrun/argbind/pkg/valueparse"
	"tailscale.com/util/mak"
)

var types = map[string]reflect.Type{
	"string":     reflect.TypeFor[string](),
	"bool":       reflect.TypeFor[bool](),
	"int":        reflect.TypeFor[int](),
	"int8":       reflect.TypeFor[int8](),
	"int16":      reflect.TypeFor[int16](),
	"int32":      reflect.TypeFor[int32](),
	"int64":      reflect.TypeFor[int64](),
	"uint":       reflect.TypeFor[uint](),
	"uint8":      reflect.TypeFor[uint8](),
	"uint16":     reflect.TypeFor[uint16](),
	"uint32":     reflect.TypeFor[uint32](),
	"uint64":     reflect.TypeFor[uint64](),
	"float32":    reflect.TypeFor[float32](),
	"float64":    reflect.TypeFor[float64](),
	"duration":   reflect.TypeFor[time.Duration](),
	"time":       reflect.TypeFor[time.Time](),
	"url":        reflect.TypeFor[*url.URL](),
	"ip":         reflect.TypeFor[netip.Addr](),
	"prefix":     reflect.TypeFor[netip.Prefix](),
	"addrport":   reflect.TypeFor[netip.AddrPort](),
	"port":       reflect.TypeFor[valueparse.Port](),
	"semver":     reflect.TypeFor[*semver.Version](),
	"constraint": reflect.TypeFor[*semver.Constraints](),
	"uuid":       reflect.TypeFor[uuid.UUID](),
}

// LookupType resolves a type name such as "int", "duration" or "[]string".
func LookupType(name string) (reflect.Type, error) {
	elem, isSlice := strings.CutPrefix(strings.TrimSpace(name), "[]")
	t, ok := types[elem]
	if !ok {
		return nil, fmt.Errorf("unknown type %q (known: %s)", name, strings.Join(TypeNames(), ", "))
	}
	if isSlice {
		return reflect.SliceOf(t), nil
	}
	return t, nil
}

// TypeNames returns the known scalar type names, sorted.
func TypeNames() []string {
	var names []string
	for n := range types {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Values receives bound values by member name. It implements bind.Assigner
// through its pointer; the map is allocated on first assignment.
type Values map[string]any

// Assign records v for member.
func (vs *Values) Assign(member string, v any) error {
	mak.Set(vs, member, v)
	return nil
}

// Text returns the values with every scalar rendered as canonical text,
// keeping booleans and numbers as they are and slices as lists. The result
// encodes cleanly as JSON, YAML or TOML.
func (vs Values) Text() map[string]any {
	out := make(map[string]any, len(vs))
	for k, v := range vs {
		out[k] = text(v)
	}
	return out
}

func text(v any) any {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return nil
	}
	// Named types such as Port and time.Duration render as text.
	builtin := rv.Type().PkgPath() == ""
	switch rv.Kind() {
	case reflect.Bool, reflect.Float32, reflect.Float64,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		if builtin {
			return v
		}
	case reflect.Slice:
		if builtin {
			out := make([]any, rv.Len())
			for i := range out {
				out[i] = text(rv.Index(i).Interface())
			}
			return out
		}
	}
	return valueparse.Format(v)
}
