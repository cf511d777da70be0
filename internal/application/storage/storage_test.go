package storage_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kantai-tool/fleetdeck/internal/application/auth"
	"github.com/kantai-tool/fleetdeck/internal/application/mediator"
	appStorage "github.com/kantai-tool/fleetdeck/internal/application/storage"
	"github.com/kantai-tool/fleetdeck/internal/application/storage/commands"
	"github.com/kantai-tool/fleetdeck/internal/application/storage/queries"
	"github.com/kantai-tool/fleetdeck/internal/domain/catalog"
	"github.com/kantai-tool/fleetdeck/internal/domain/player"
	"github.com/kantai-tool/fleetdeck/internal/domain/shared"
	"github.com/kantai-tool/fleetdeck/internal/domain/storage"
	"github.com/kantai-tool/fleetdeck/test/helpers"
)

func newMediator(t *testing.T) (mediator.Mediator, *helpers.MockDocumentStore) {
	t.Helper()
	store := helpers.NewMockDocumentStore()
	m := mediator.NewMediator()
	m.Use(auth.UsernameMiddleware())
	require.NoError(t, appStorage.RegisterHandlers(m, store))
	return m, store
}

func TestLogin_NormalizesUsername(t *testing.T) {
	m, _ := newMediator(t)

	resp, err := m.Send(context.Background(), &commands.LoginCommand{Username: "  Admiral_01 "})

	require.NoError(t, err)
	assert.Equal(t, "admiral_01", resp.(*commands.LoginResponse).Token)
}

func TestLogin_RejectsUnsafeNames(t *testing.T) {
	m, _ := newMediator(t)

	for _, name := range []string{"", "   ", "../etc", "a b", "名前"} {
		_, err := m.Send(context.Background(), &commands.LoginCommand{Username: name})

		var vErr *shared.ValidationError
		assert.True(t, errors.As(err, &vErr), "%q: %v", name, err)
	}
}

func TestSaveThenLoad_RoundTripsVerbatim(t *testing.T) {
	m, _ := newMediator(t)
	user := player.MustNewUsername("alice")
	doc := []byte(`{"default":[{"name":"A","shape":"standard","ships":[1,null,null,null,null,null]}]}`)

	_, err := m.Send(context.Background(), &commands.SaveDocumentCommand{Username: user, Kind: storage.KindFormations, Data: doc})
	require.NoError(t, err)

	resp, err := m.Send(context.Background(), &queries.LoadDocumentQuery{Username: user, Kind: storage.KindFormations})
	require.NoError(t, err)
	loaded := resp.(*queries.LoadDocumentResponse)
	assert.True(t, loaded.Found)
	assert.Equal(t, doc, loaded.Data)
}

func TestLoad_MissingDocumentsReadAsEmpty(t *testing.T) {
	m, _ := newMediator(t)
	user := player.MustNewUsername("bob")

	for _, kind := range storage.Kinds() {
		resp, err := m.Send(context.Background(), &queries.LoadDocumentQuery{Username: user, Kind: kind})
		require.NoError(t, err)

		loaded := resp.(*queries.LoadDocumentResponse)
		assert.False(t, loaded.Found)
		assert.Equal(t, kind.EmptyDocument(), loaded.Data, kind.String())
	}
}

func TestLoad_CorruptCatalogAndBucketsReadAsEmpty(t *testing.T) {
	m, store := newMediator(t)
	user := player.MustNewUsername("carol")
	store.Put(user, storage.KindCatalog, []byte(`{not json`))
	store.Put(user, storage.KindBuckets, []byte(`[{"name":`))

	for _, kind := range []storage.Kind{storage.KindCatalog, storage.KindBuckets} {
		resp, err := m.Send(context.Background(), &queries.LoadDocumentQuery{Username: user, Kind: kind})
		require.NoError(t, err)
		assert.Equal(t, kind.EmptyDocument(), resp.(*queries.LoadDocumentResponse).Data)
	}
}

func TestSave_RejectsInvalidJSON(t *testing.T) {
	m, store := newMediator(t)
	user := player.MustNewUsername("dave")

	_, err := m.Send(context.Background(), &commands.SaveDocumentCommand{Username: user, Kind: storage.KindBonus, Data: []byte(`[{`)})

	var invalid *storage.ErrInvalidDocument
	require.True(t, errors.As(err, &invalid))
	_, stored := store.Get(user, storage.KindBonus)
	assert.False(t, stored)
}

func TestSave_NormalizesCatalog(t *testing.T) {
	m, store := newMediator(t)
	user := player.MustNewUsername("erin")
	upload := []byte(`{"data":"svdata={\"api_data\":{\"api_mst_ship\":[{\"api_id\":1,\"api_name\":\"Mutsuki\",\"api_stype\":2}],\"api_mst_stype\":[{\"api_id\":2,\"api_name\":\"DD\"}],\"api_mst_slotitem\":[]}}"}`)

	_, err := m.Send(context.Background(), &commands.SaveDocumentCommand{Username: user, Kind: storage.KindCatalog, Data: upload})
	require.NoError(t, err)

	stored, ok := store.Get(user, storage.KindCatalog)
	require.True(t, ok)
	assert.JSONEq(t, `{"api_mst_ship":[{"api_id":1,"api_name":"Mutsuki","api_stype":2}],"api_mst_stype":[{"api_id":2,"api_name":"DD"}]}`, string(stored))
}

func TestSave_CatalogWithoutTables(t *testing.T) {
	m, _ := newMediator(t)

	_, err := m.Send(context.Background(), &commands.SaveDocumentCommand{
		Username: player.MustNewUsername("frank"),
		Kind:     storage.KindCatalog,
		Data:     []byte(`{"data":{"api_mst_ship":[]}}`),
	})

	assert.True(t, errors.Is(err, catalog.ErrMissingTables))
}

func TestSave_StoreFailureIsWrapped(t *testing.T) {
	m, store := newMediator(t)
	boom := errors.New("disk full")
	store.SaveErr = boom

	_, err := m.Send(context.Background(), &commands.SaveDocumentCommand{
		Username: player.MustNewUsername("gina"),
		Kind:     storage.KindRoster,
		Data:     []byte(`[]`),
	})

	var storageErr *shared.StorageError
	require.True(t, errors.As(err, &storageErr))
	assert.Equal(t, "gina", storageErr.Username)
	assert.True(t, errors.Is(err, boom))
}

func TestUsernameMiddleware_RejectsZeroUser(t *testing.T) {
	m, _ := newMediator(t)

	_, err := m.Send(context.Background(), &queries.LoadDocumentQuery{Kind: storage.KindRoster})

	assert.True(t, errors.Is(err, auth.ErrUnauthenticated))
}
