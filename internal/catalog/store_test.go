package catalog

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"agstrans/internal/stringmap"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}

	ctx := context.Background()
	pool, err := Connect(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	store := NewStore(pool)
	require.NoError(t, store.EnsureSchema(ctx))
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()
	pack := fmt.Sprintf("test-%d", time.Now().UnixNano())

	m := stringmap.New()
	m.Insert("Hello", "Hallo")
	m.Insert("Bye", "")

	changed, err := store.UpsertPack(ctx, pack, m)
	require.NoError(t, err)
	assert.Equal(t, 2, changed)

	changed, err = store.UpsertPack(ctx, pack, m)
	require.NoError(t, err)
	assert.Zero(t, changed)

	loaded, err := store.LoadPack(ctx, pack)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len())
	got, ok := loaded.Find("Hello")
	assert.True(t, ok)
	assert.Equal(t, "Hallo", got)

	added, err := store.RecordUntranslated(ctx, pack, []string{"Hello", "Bye", "New line"})
	require.NoError(t, err)
	assert.Equal(t, 3, added)

	added, err = store.RecordUntranslated(ctx, pack, []string{"New line"})
	require.NoError(t, err)
	assert.Zero(t, added)

	pending, err := store.ListUntranslated(ctx, pack)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Bye", "New line"}, pending)
}

func TestStoreEmptyInputs(t *testing.T) {
	store := testStore(t)
	ctx := context.Background()

	n, err := store.UpsertPack(ctx, "empty", stringmap.New())
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = store.RecordUntranslated(ctx, "empty", nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}
