package persistence_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kantai-tool/fleetdeck/internal/adapters/persistence"
	"github.com/kantai-tool/fleetdeck/internal/domain/player"
	"github.com/kantai-tool/fleetdeck/internal/domain/storage"
	"github.com/kantai-tool/fleetdeck/test/helpers"
)

func stores(t *testing.T) map[string]storage.DocumentStore {
	t.Helper()
	fileStore, err := persistence.NewFileDocumentStore(filepath.Join(t.TempDir(), "data"))
	require.NoError(t, err)
	return map[string]storage.DocumentStore{
		"file": fileStore,
		"gorm": persistence.NewGormDocumentRepository(helpers.NewTestDB(t)),
	}
}

func TestDocumentStore_NotFound(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.Load(context.Background(), player.MustNewUsername("alice"), storage.KindFormations)

			assert.ErrorIs(t, err, storage.ErrDocumentNotFound)
		})
	}
}

func TestDocumentStore_SaveReplacesAndIsolates(t *testing.T) {
	ctx := context.Background()
	alice := player.MustNewUsername("alice")
	bob := player.MustNewUsername("bob")

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Save(ctx, alice, storage.KindBonus, []byte(`[{"ids":[1],"text":"a"}]`)))
			require.NoError(t, store.Save(ctx, alice, storage.KindBonus, []byte(`[]`)))
			require.NoError(t, store.Save(ctx, bob, storage.KindBonus, []byte(`[{"ids":[2],"text":"b"}]`)))
			require.NoError(t, store.Save(ctx, alice, storage.KindRoster, []byte(`[{"api_id":1}]`)))

			data, err := store.Load(ctx, alice, storage.KindBonus)
			require.NoError(t, err)
			assert.Equal(t, `[]`, string(data))

			data, err = store.Load(ctx, bob, storage.KindBonus)
			require.NoError(t, err)
			assert.JSONEq(t, `[{"ids":[2],"text":"b"}]`, string(data))

			data, err = store.Load(ctx, alice, storage.KindRoster)
			require.NoError(t, err)
			assert.JSONEq(t, `[{"api_id":1}]`, string(data))
		})
	}
}

func TestDocumentStore_ConcurrentWritesLeaveOneWholeDocument(t *testing.T) {
	ctx := context.Background()
	user := player.MustNewUsername("carol")

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			var wg sync.WaitGroup
			for i := 0; i < 8; i++ {
				wg.Add(1)
				go func(i int) {
					defer wg.Done()
					assert.NoError(t, store.Save(ctx, user, storage.KindFormations, []byte(fmt.Sprintf(`{"writer":%d}`, i))))
				}(i)
			}
			wg.Wait()

			data, err := store.Load(ctx, user, storage.KindFormations)
			require.NoError(t, err)
			assert.Regexp(t, `^\{"writer":[0-7]\}$`, string(data))
		})
	}
}

func TestFileDocumentStore_FileNames(t *testing.T) {
	dir := t.TempDir()
	store, err := persistence.NewFileDocumentStore(dir)
	require.NoError(t, err)
	user := player.MustNewUsername("dave")

	for _, kind := range storage.Kinds() {
		require.NoError(t, store.Save(context.Background(), user, kind, kind.EmptyDocument()))
	}

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	assert.ElementsMatch(t, []string{
		"dave.json", "dave_decks.json", "dave_bonus.json", "dave_master.json", "dave_stype_config.json",
	}, names, "no temp files are left behind")
}
