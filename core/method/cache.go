package method

import (
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/artpar/cloudrest/core/entry"
	"github.com/artpar/cloudrest/core/target"
)

// BuildObserver is notified once for every schema built by a Cache.
type BuildObserver func(typeName, method string, err error)

type cached struct {
	schema *Schema
	err    error
}

// Cache builds each (type, method) schema once and keeps the outcome,
// failures included, for the lifetime of the process.
type Cache struct {
	reg      *entry.Registry
	entries  sync.Map // key -> *cached
	group    singleflight.Group
	observer BuildObserver
}

// CacheOption configures a Cache.
type CacheOption func(*Cache)

// WithObserver reports every build to fn.
func WithObserver(fn BuildObserver) CacheOption {
	return func(c *Cache) { c.observer = fn }
}

// NewCache creates a cache resolving tags through reg.
func NewCache(reg *entry.Registry, opts ...CacheOption) *Cache {
	c := &Cache{reg: reg}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Registry returns the tag registry used by the cache.
func (c *Cache) Registry() *entry.Registry {
	return c.reg
}

// Get returns the schema of method name on t, building it on first use.
func (c *Cache) Get(t *target.Type, name string) (*Schema, error) {
	key := t.Name + "." + name
	if v, ok := c.entries.Load(key); ok {
		e := v.(*cached)
		return e.schema, e.err
	}

	v, _, _ := c.group.Do(key, func() (any, error) {
		if v, ok := c.entries.Load(key); ok {
			return v, nil
		}
		s, err := Build(c.reg, t, name)
		e := &cached{schema: s, err: err}
		c.entries.Store(key, e)
		if c.observer != nil {
			c.observer(t.Name, name, err)
		}
		return e, nil
	})
	e := v.(*cached)
	return e.schema, e.err
}

// Len returns the number of cached outcomes.
func (c *Cache) Len() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
