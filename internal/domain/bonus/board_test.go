package bonus_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kantai-tool/fleetdeck/internal/domain/bonus"
	"github.com/kantai-tool/fleetdeck/internal/domain/shared"
)

func TestPlaceholderBoard(t *testing.T) {
	b := bonus.PlaceholderBoard()

	require.Equal(t, 1, b.Len())
	assert.True(t, b.Groups()[0].IsEmpty())
	assert.NotEmpty(t, b.Groups()[0].ID)
	assert.Empty(t, b.Export())
}

func TestAddMember_Idempotent(t *testing.T) {
	// Arrange
	b, id := bonus.NewBoard(nil).AddGroup()

	// Act
	b, err := b.AddMember(id, 100)
	require.NoError(t, err)
	b, err = b.AddMember(id, 100)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, []int{100}, b.Groups()[0].Members)
}

func TestAddMember_UnknownGroup(t *testing.T) {
	_, err := bonus.PlaceholderBoard().AddMember("nope", 1)

	assert.True(t, errors.Is(err, bonus.ErrGroupNotFound))
}

func TestBoard_OperationsDoNotMutateReceiver(t *testing.T) {
	b, id := bonus.NewBoard(nil).AddGroup()
	b, err := b.AddMember(id, 1)
	require.NoError(t, err)

	after, err := b.RemoveMember(id, 1)
	require.NoError(t, err)
	_, err = b.SetGroupText(0, "changed")
	require.NoError(t, err)

	assert.Empty(t, after.Groups()[0].Members)
	assert.Equal(t, []int{1}, b.Groups()[0].Members)
	assert.Equal(t, "", b.Groups()[0].Text)
}

func TestRemoveGroup(t *testing.T) {
	b := bonus.NewBoard([]bonus.Group{{ID: "a", Text: "E-1"}, {ID: "b", Text: "E-2"}})

	same, removed, err := b.RemoveGroup(context.Background(), 0, shared.NeverConfirm)
	require.NoError(t, err)
	assert.False(t, removed)
	assert.Equal(t, 2, same.Len())

	next, removed, err := b.RemoveGroup(context.Background(), 0, shared.AlwaysConfirm)
	require.NoError(t, err)
	assert.True(t, removed)
	require.Equal(t, 1, next.Len())
	assert.Equal(t, "b", next.Groups()[0].ID)

	_, _, err = b.RemoveGroup(context.Background(), 5, shared.AlwaysConfirm)
	assert.True(t, errors.Is(err, bonus.ErrGroupNotFound))
}

func TestMap_JoinsTextInGroupOrder(t *testing.T) {
	b := bonus.NewBoard([]bonus.Group{
		{ID: "a", Text: "x1.2", Members: []int{1, 2}},
		{ID: "b", Text: "x1.5", Members: []int{2}},
	})

	assert.Equal(t, map[int]string{1: "x1.2", 2: "x1.2\nx1.5"}, b.Map())
	assert.Equal(t, 2, b.MemberCount())
	assert.Equal(t, []int{1, 2}, b.Tagged())
}

func TestExportImport_RoundTrip(t *testing.T) {
	b := bonus.NewBoard([]bonus.Group{
		{ID: "a", Text: "E-1", Members: []int{5, 3}},
		{ID: "b"},
		{ID: "c", Text: "", Members: []int{8}},
		{ID: "d", Text: "note only"},
	})

	exported := b.Export()
	imported := bonus.Import(exported)

	want := []bonus.Entry{
		{IDs: []int{5, 3}, Text: "E-1"},
		{IDs: []int{8}, Text: ""},
		{IDs: []int{}, Text: "note only"},
	}
	if diff := cmp.Diff(want, exported); diff != "" {
		t.Errorf("export mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(want, imported.Export()); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
	for _, g := range imported.Groups() {
		assert.NotContains(t, []string{"a", "b", "c", "d"}, g.ID, "import assigns fresh ids")
	}
}

func TestImport_PreservesEmptyGroups(t *testing.T) {
	b := bonus.Import([]bonus.Entry{{IDs: nil, Text: ""}, {IDs: []int{1}, Text: "t"}})

	assert.Equal(t, 2, b.Len())
}

func TestDecode(t *testing.T) {
	b, err := bonus.Decode([]byte(`[{"ids":[1,2],"text":"E-3"}]`))
	require.NoError(t, err)
	assert.Equal(t, "E-3", b.Groups()[0].Text)

	b, err = bonus.Decode([]byte(`[]`))
	require.NoError(t, err)
	assert.Equal(t, 1, b.Len(), "empty list loads a placeholder")

	_, err = bonus.Decode([]byte(`{"ids":1}`))
	var vErr *shared.ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestDecodeFile_KeepsListAsIs(t *testing.T) {
	b, err := bonus.DecodeFile([]byte(`[]`))
	require.NoError(t, err)
	assert.Equal(t, 0, b.Len(), "an empty exchange file clears the board")

	b, err = bonus.DecodeFile([]byte(` [{"ids":[],"text":""}] `))
	require.NoError(t, err)
	assert.Equal(t, 1, b.Len())

	_, err = bonus.DecodeFile([]byte(``))
	var vErr *shared.ValidationError
	assert.True(t, errors.As(err, &vErr))
}

func TestEncode_EmptyBoard(t *testing.T) {
	data, err := bonus.PlaceholderBoard().Encode()

	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}
