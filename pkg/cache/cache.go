/*
   XSysLoader - game asset installer for the xsystem35 runtime
   Copyright (c) 2021, Alexander Vollschwitz

   This file is part of XSysLoader.

   XSysLoader is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   XSysLoader is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with XSysLoader. If not, see <http://www.gnu.org/licenses/>.
*/

package cache

import (
	"context"
	"sync"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// Loader produces the value for a key. It is invoked at most once per key
// while a value for that key is memoized.
type Loader[V any] func(ctx context.Context) (V, error)

/*
	Cache is a memoizing get-or-create cache. Concurrent requests for the same
	key are coalesced into a single invocation of the loader. Successful values
	are kept until the key is forgotten, failures are not kept, so a later Get
	for the same key loads again. A load that was in flight while its key got
	forgotten still returns to its callers, but is not memoized.
*/
type Cache[V any] struct {
	group  singleflight.Group
	lock   sync.RWMutex
	values map[string]V
	// bumped by Forget
	generations map[string]uint64
}

//
func New[V any]() *Cache[V] {
	return &Cache[V]{values: map[string]V{}, generations: map[string]uint64{}}
}

// Get returns the value memoized for key, or loads it with loader.
func (c *Cache[V]) Get(ctx context.Context, key string, loader Loader[V]) (V, error) {

	if v, ok := c.lookup(key); ok {
		return v, nil
	}

	ch := c.group.DoChan(key, func() (interface{}, error) {
		// a concurrent caller may have finished while we were queued
		if v, ok := c.lookup(key); ok {
			return v, nil
		}
		c.lock.RLock()
		gen := c.generations[key]
		c.lock.RUnlock()

		log.WithField("key", key).Debug("cache miss, loading")
		v, err := loader(ctx)
		if err != nil {
			return nil, err
		}

		c.lock.Lock()
		if c.generations[key] == gen {
			c.values[key] = v
		} else {
			log.WithField("key", key).Debug("key forgotten during load")
		}
		c.lock.Unlock()
		return v, nil
	})

	var zero V

	select {
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(V), nil
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

// Forget drops the value memoized for key, if any.
func (c *Cache[V]) Forget(key string) {
	c.lock.Lock()
	defer c.lock.Unlock()
	delete(c.values, key)
	c.generations[key]++
	c.group.Forget(key)
}

//
func (c *Cache[V]) Len() int {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return len(c.values)
}

//
func (c *Cache[V]) lookup(key string) (V, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	v, ok := c.values[key]
	return v, ok
}
