// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package valueparse

import (
	"errors"
	"fmt"
	"net/netip"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
)

// Port is a uint16 for IP ports. Unlike a plain uint16 it reports
// out-of-range values with a port-specific message.
type Port uint16

func installBuiltins(r *Registry) {
	add := func(t reflect.Type, fn Func) { r.builtin.Store(t, fn) }

	add(reflect.TypeFor[string](), func(raw string) (any, error) { return raw, nil })
	add(reflect.TypeFor[time.Duration](), func(raw string) (any, error) {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid duration %q", raw)
		}
		return d, nil
	})
	add(reflect.TypeFor[time.Time](), func(raw string) (any, error) {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("invalid time %q (want RFC 3339)", raw)
		}
		return t, nil
	})
	add(reflect.TypeFor[url.URL](), func(raw string) (any, error) {
		u, err := parseURL(raw)
		if err != nil {
			return nil, err
		}
		return *u, nil
	})
	add(reflect.TypeFor[*url.URL](), func(raw string) (any, error) {
		return parseURL(raw)
	})
	add(reflect.TypeFor[netip.Addr](), func(raw string) (any, error) {
		a, err := netip.ParseAddr(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid IP address %q", raw)
		}
		return a, nil
	})
	add(reflect.TypeFor[netip.Prefix](), func(raw string) (any, error) {
		p, err := netip.ParsePrefix(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid IP prefix %q", raw)
		}
		return p, nil
	})
	add(reflect.TypeFor[netip.AddrPort](), func(raw string) (any, error) {
		ap, err := netip.ParseAddrPort(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid address %q (want ip:port)", raw)
		}
		return ap, nil
	})
	add(reflect.TypeFor[Port](), func(raw string) (any, error) {
		return ParsePort(raw)
	})
	add(reflect.TypeFor[semver.Version](), func(raw string) (any, error) {
		v, err := semver.NewVersion(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid version %q: %w", raw, err)
		}
		return *v, nil
	})
	add(reflect.TypeFor[*semver.Version](), func(raw string) (any, error) {
		v, err := semver.NewVersion(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid version %q: %w", raw, err)
		}
		return v, nil
	})
	add(reflect.TypeFor[*semver.Constraints](), func(raw string) (any, error) {
		c, err := semver.NewConstraint(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid version constraint %q: %w", raw, err)
		}
		return c, nil
	})
	add(reflect.TypeFor[uuid.UUID](), func(raw string) (any, error) {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid UUID %q", raw)
		}
		return id, nil
	})
}

func parseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid URL %q", raw)
	}
	return u, nil
}

// ParsePort parses a port number with a user-friendly error message.
func ParsePort(raw string) (Port, error) {
	v, err := strconv.ParseUint(raw, 10, 16)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && numErr.Err == strconv.ErrRange {
			return 0, fmt.Errorf("port must be between 0 and 65535, got %q", raw)
		}
		return 0, fmt.Errorf("invalid port value %q", raw)
	}
	return Port(v), nil
}

// String returns the port in decimal.
func (p Port) String() string {
	return strconv.FormatUint(uint64(p), 10)
}

// Format returns the canonical text for v, the inverse of Parse for the
// built-in types. It is used to render defaults and to re-serialize values.
func Format(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		return x.Format(time.RFC3339)
	case url.URL:
		return x.String()
	case semver.Version:
		return x.Original()
	case *semver.Version:
		if x == nil {
			return ""
		}
		return x.Original()
	case fmt.Stringer:
		return x.String()
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return ""
		}
		return Format(rv.Elem().Interface())
	}
	if rv.Kind() == reflect.Slice {
		parts := make([]string, rv.Len())
		for i := range parts {
			parts[i] = Format(rv.Index(i).Interface())
		}
		return strings.Join(parts, ",")
	}
	return fmt.Sprint(v)
}
