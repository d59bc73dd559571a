package engine

import (
	"context"
	"log/slog"

	"github.com/mtoporowski/stovokor/internal/cachestore"
)

// Key identifies one cached substitution: the rule it came from and the
// fully resolved generator expression. Two nodes carrying the same text and
// routed through the same rule resolve to the same key.
type Key struct {
	RuleID string
	Expr   string
}

// Cache makes cached-policy rules referentially consistent: the first
// invocation for a key generates and stores, every later invocation returns
// the stored value.
//
// The cache spans one run, across all input files of that run. With a
// backing store it additionally spans runs sharing the same cache file.
type Cache struct {
	entries map[Key]string
	store   *cachestore.Store
}

// NewCache creates an empty run-scoped cache. store may be nil.
func NewCache(store *cachestore.Store) *Cache {
	return &Cache{
		entries: make(map[Key]string),
		store:   store,
	}
}

// GetOrGenerate returns the cached value for key, generating and storing it
// on first use. A failing generate leaves the cache untouched, so a later
// occurrence of the same value gets another chance.
func (c *Cache) GetOrGenerate(ctx context.Context, key Key, generate func() (string, error)) (string, error) {
	if value, ok := c.entries[key]; ok {
		return value, nil
	}
	if c.store != nil {
		value, ok, err := c.store.Get(ctx, key.RuleID, key.Expr)
		if err != nil {
			slog.Warn("cache store read failed, regenerating", "rule", key.RuleID, "err", err)
		} else if ok {
			c.entries[key] = value
			return value, nil
		}
	}

	value, err := generate()
	if err != nil {
		return "", err
	}
	c.entries[key] = value
	if c.store != nil {
		if err := c.store.Put(ctx, key.RuleID, key.Expr, value); err != nil {
			slog.Warn("cache store write failed", "rule", key.RuleID, "err", err)
		}
	}
	return value, nil
}

// Len returns the number of in-memory entries.
func (c *Cache) Len() int {
	return len(c.entries)
}
