// Copyright (c) 2025 AUTHORS All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmdmodel

import (
	"reflect"

	"tailscale.com/syncs"
)

// Cache holds compiled models keyed by declared type. It is safe for
// concurrent use. The zero value is ready to use.
//
// No lock is held while compiling: two goroutines missing on the same type
// both compile and the first to store wins. Failed compilations are not
// cached.
type Cache struct {
	models syncs.Map[reflect.Type, *Model]
}

// Load returns the model for t, calling compile on a miss.
func (c *Cache) Load(t reflect.Type, compile func() (*Model, error)) (m *Model, hit bool, err error) {
	if m, ok := c.models.Load(t); ok {
		return m, true, nil
	}
	m, err = compile()
	if err != nil {
		return nil, false, err
	}
	m, hit = c.models.LoadOrStore(t, m)
	return m, hit, nil
}

// Forget drops the model cached for t.
func (c *Cache) Forget(t reflect.Type) {
	c.models.Delete(t)
}

// Len returns the number of cached models.
func (c *Cache) Len() int {
	return c.models.Len()
}
