package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type plan struct {
	Shape   string    `json:"shape"`
	Overall float64   `json:"overall"`
	Times   []float64 `json:"times"`
}

// runStoreContract checks the behaviour every Store must share.
func runStoreContract(t *testing.T, store Store[*plan]) {
	t.Helper()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok, "empty store should miss")

	want := &plan{Shape: "trapezoidal", Overall: 87.25, Times: []float64{0, 0.0666, 0.5, 0.5666}}
	require.NoError(t, store.Put(ctx, "a", want))

	got, ok, err := store.Get(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want, got)

	require.NoError(t, store.Put(ctx, "b", &plan{Shape: "degenerate"}))
	n, err := store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.NoError(t, store.Delete(ctx, "a"))
	_, ok, err = store.Get(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok, "deleted key should miss")

	n, err = store.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
