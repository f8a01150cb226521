package objectstore_test

import (
	"context"
	"testing"

	"github.com/specialistvlad/fieldgridgo/internal/inmemorystore"
	"github.com/specialistvlad/fieldgridgo/internal/objectstore"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnv_TemporariesAreScopedToOwner(t *testing.T) {
	// --- Arrange ---
	ctx := context.Background()
	store := inmemorystore.New()
	a := objectstore.NewEnv(store, "a")
	b := objectstore.NewEnv(store, "b")

	// --- Act ---
	require.NoError(t, a.Tmp(ctx, "tmp", "field", 8, 1, nil))
	require.NoError(t, b.Tmp(ctx, "tmp", "field", 8, 1, nil))

	// --- Assert ---
	assert.Len(t, store.Owned(ctx, "a"), 1)
	assert.Equal(t, "a/tmp", store.Owned(ctx, "a")[0].Name)
	assert.Equal(t, objectstore.Temporary, store.Owned(ctx, "b")[0].Class)
}

func TestEnv_ExtentAndAs(t *testing.T) {
	ctx := context.Background()
	store := inmemorystore.New()
	env := objectstore.NewEnv(store, "prop")

	require.NoError(t, env.Create(ctx, "q_5d", "field5d", 80, 8, func() any { return []float64{1, 2} }))
	require.NoError(t, env.Create(ctx, "q", "field", 10, 0, nil))

	ext, err := env.Extent(ctx, "q_5d")
	require.NoError(t, err)
	assert.Equal(t, 8, ext)
	ext, err = env.Extent(ctx, "q")
	require.NoError(t, err)
	assert.Equal(t, 1, ext)

	_, err = env.Extent(ctx, "nope")
	require.ErrorIs(t, err, objectstore.ErrObjectNotFound)

	_, err = store.Allocate(ctx, "q_5d")
	require.NoError(t, err)
	v, err := objectstore.As[[]float64](ctx, env, "q_5d")
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 2}, v)

	_, err = objectstore.As[string](ctx, env, "q_5d")
	require.Error(t, err)
}

func TestEnv_CacheRedeclareIsNoop(t *testing.T) {
	ctx := context.Background()
	store := inmemorystore.New()
	env := objectstore.NewEnv(store, "wall")

	require.NoError(t, env.Cache(ctx, "wall_t", "int", 4, 1, nil))
	require.NoError(t, env.Cache(ctx, "wall_t", "int", 4, 1, nil))
	assert.True(t, env.IsCached(ctx, "wall_t"))
}
