package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheGetOrGenerate(t *testing.T) {
	c := NewCache(nil)
	ctx := context.Background()
	key := Key{RuleID: "predef:account", Expr: "alphanum -l 8"}

	calls := 0
	generate := func() (string, error) {
		calls++
		return "value", nil
	}

	got, err := c.GetOrGenerate(ctx, key, generate)
	require.NoError(t, err)
	assert.Equal(t, "value", got)

	got, err = c.GetOrGenerate(ctx, key, generate)
	require.NoError(t, err)
	assert.Equal(t, "value", got)
	assert.Equal(t, 1, calls, "second call must be served from the cache")
	assert.Equal(t, 1, c.Len())
}

func TestCacheFailureLeavesNoEntry(t *testing.T) {
	c := NewCache(nil)
	ctx := context.Background()
	key := Key{RuleID: "r", Expr: "e"}

	_, err := c.GetOrGenerate(ctx, key, func() (string, error) {
		return "", errors.New("boom")
	})
	require.Error(t, err)
	assert.Zero(t, c.Len())

	got, err := c.GetOrGenerate(ctx, key, func() (string, error) {
		return "recovered", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "recovered", got)
}

func TestCacheDistinguishesRules(t *testing.T) {
	c := NewCache(nil)
	ctx := context.Background()

	a, err := c.GetOrGenerate(ctx, Key{RuleID: "a", Expr: "e"}, func() (string, error) { return "from-a", nil })
	require.NoError(t, err)
	b, err := c.GetOrGenerate(ctx, Key{RuleID: "b", Expr: "e"}, func() (string, error) { return "from-b", nil })
	require.NoError(t, err)

	assert.Equal(t, "from-a", a)
	assert.Equal(t, "from-b", b)
}
