package contract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/chef-fhe/backend/internal/models"
	"github.com/pageza/chef-fhe/backend/internal/testhelpers"
)

const testAddress = "0x5FbDB2315678afecb367f032d93F642f64180aa3"

// exerciseStore runs the behaviour every backend must share.
func exerciseStore(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()

	ok, err := store.IsAvailable(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	missing, err := store.GetData(ctx, "recipe_missing")
	require.NoError(t, err)
	assert.NotNil(t, missing)
	assert.Empty(t, missing)

	require.NoError(t, store.SetData(ctx, "recipe_keys", []byte(`["1-a"]`)))
	require.NoError(t, store.SetData(ctx, "recipe_1-a", []byte(`{"status":"pending"}`)))
	require.NoError(t, store.SetData(ctx, "recipe_1-a", []byte(`{"status":"generated"}`)))
	require.NoError(t, store.SetData(ctx, "other_key", []byte(`x`)))

	got, err := store.GetData(ctx, "recipe_1-a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"generated"}`, string(got))

	if lister, ok := store.(Lister); ok {
		keys, err := lister.Keys(ctx, "recipe_")
		require.NoError(t, err)
		assert.Equal(t, []string{"recipe_1-a", "recipe_keys"}, keys)
	}

	assert.Equal(t, testAddress, store.Address())
}

func TestMemoryStore(t *testing.T) {
	exerciseStore(t, NewMemoryStore(testAddress))
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(testAddress)

	value := []byte("abc")
	require.NoError(t, store.SetData(ctx, "k", value))
	value[0] = 'z'

	got, err := store.GetData(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(got))

	got[1] = 'z'
	again, _ := store.GetData(ctx, "k")
	assert.Equal(t, "abc", string(again))
}

func TestMemoryStoreUnavailable(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(testAddress)
	store.SetAvailable(false)

	ok, err := store.IsAvailable(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.ErrorIs(t, store.SetData(ctx, "k", []byte("v")), ErrUnavailable)
}

func TestMemoryStoreHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	store := NewMemoryStore(testAddress)

	_, err := store.GetData(ctx, "k")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, store.SetData(ctx, "k", nil), context.Canceled)
}

func TestSQLStore(t *testing.T) {
	db := testhelpers.SetupSQLiteDatabase(t)

	store := NewSQLStore(db, testAddress, nil)
	exerciseStore(t, store)

	var count int64
	require.NoError(t, db.Model(&models.ContractEntry{}).Count(&count).Error)
	assert.Equal(t, int64(3), count)
}

func TestSQLStoreKeysEscapesWildcards(t *testing.T) {
	db := testhelpers.SetupSQLiteDatabase(t)
	ctx := context.Background()

	store := NewSQLStore(db, testAddress, nil)
	require.NoError(t, store.SetData(ctx, "recipe_1", []byte("a")))
	require.NoError(t, store.SetData(ctx, "recipeX1", []byte("b")))

	keys, err := store.Keys(ctx, "recipe_")
	require.NoError(t, err)
	assert.Equal(t, []string{"recipe_1"}, keys)
}

func TestClose(t *testing.T) {
	assert.NoError(t, Close(NewMemoryStore(testAddress)))
}
