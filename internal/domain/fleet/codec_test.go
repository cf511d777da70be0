package fleet_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kantai-tool/fleetdeck/internal/domain/fleet"
	"github.com/kantai-tool/fleetdeck/internal/domain/shared"
)

func TestDecodeSets_LegacyFlatArray(t *testing.T) {
	data := []byte(`[{"name":"X","ships":[{"api_id":5,"api_ship_id":1},null,null,null,null,null]}]`)

	sets, err := fleet.DecodeSets(data)

	require.NoError(t, err)
	want := map[string][]fleet.Deck{
		"default": {{Name: "X", Fleet: standard(5)}},
	}
	if diff := cmp.Diff(want, sets); diff != "" {
		t.Errorf("decoded sets mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeSets_LegacyShapeInference(t *testing.T) {
	data := []byte(`[
		{"name":"Seven","ships":[1,2,3,4,5,6,7]},
		{"name":"Main","ships":[8],"isCombined":true},
		{"name":"Escort","ships":[null,9]},
		{"name":"Short","ships":[10,11]},
		{"ships":[12,13,14,15,16,17,18,19]}
	]`)

	sets, err := fleet.DecodeSets(data)
	require.NoError(t, err)

	want := []fleet.Deck{
		{Name: "Seven", Fleet: fleet.Extended{Slots: [7]fleet.Slot{1, 2, 3, 4, 5, 6, 7}}},
		{Name: "Main", Fleet: fleet.Combined{Main: [6]fleet.Slot{8}, Escort: [6]fleet.Slot{0, 9}}},
		{Name: "Short", Fleet: standard(10, 11)},
		{Name: "Fleet 4", Fleet: standard(12, 13, 14, 15, 16, 17)},
	}
	if diff := cmp.Diff(want, sets["default"]); diff != "" {
		t.Errorf("legacy migration mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeSets_CombinedFlagOnLastDeck(t *testing.T) {
	sets, err := fleet.DecodeSets([]byte(`[{"name":"Solo","ships":[1],"isCombined":true}]`))

	require.NoError(t, err)
	assert.Equal(t, standard(1), sets["default"][0].Fleet)
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	sets := map[string][]fleet.Deck{
		"default": {
			{Name: "A", Fleet: standard(1, 0, 3)},
			{Name: "B", Fleet: fleet.Extended{Slots: [7]fleet.Slot{0, 0, 0, 0, 0, 0, 4}}},
		},
		"event": {
			{Name: "Strike", Fleet: fleet.Combined{Main: [6]fleet.Slot{5}, Escort: [6]fleet.Slot{6}}},
		},
	}

	data, err := fleet.EncodeSets(sets)
	require.NoError(t, err)
	decoded, err := fleet.DecodeSets(data)
	require.NoError(t, err)

	if diff := cmp.Diff(sets, decoded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeSets_WireFormat(t *testing.T) {
	data, err := fleet.EncodeSets(map[string][]fleet.Deck{
		"default": {{Name: "A", Fleet: standard(1)}},
	})

	require.NoError(t, err)
	assert.JSONEq(t, `{"default":[{"name":"A","shape":"standard","ships":[1,null,null,null,null,null]}]}`, string(data))
}

func TestDecodeSets_Empty(t *testing.T) {
	for _, doc := range []string{"", "null", "{}", "  "} {
		sets, err := fleet.DecodeSets([]byte(doc))
		require.NoError(t, err, doc)
		assert.Empty(t, sets, doc)
	}

	w, err := fleet.LoadWorkspace([]byte(`{}`), "")
	require.NoError(t, err)
	assert.Equal(t, fleet.DefaultSetName, w.Active())
	assert.Len(t, w.Decks(), 1)
}

func TestDecodeSets_Malformed(t *testing.T) {
	docs := []string{
		`{broken`,
		`{"default":[{"name":"A","shape":"triangle","ships":[]}]}`,
		`{"default":[{"name":"A","ships":["five"]}]}`,
	}
	for _, doc := range docs {
		_, err := fleet.DecodeSets([]byte(doc))

		var vErr *shared.ValidationError
		assert.True(t, errors.As(err, &vErr), "%s: got %v", doc, err)
	}
}

func TestLoadWorkspace_UnknownActiveFallsBack(t *testing.T) {
	w, err := fleet.LoadWorkspace([]byte(`{"b":[{"name":"Y","shape":"standard","ships":[]}],"a":[{"name":"X","shape":"standard","ships":[]}]}`), "gone")

	require.NoError(t, err)
	assert.Equal(t, "a", w.Active())
}

func TestDecodeSets_DuplicateNamesAreRenamed(t *testing.T) {
	sets, err := fleet.DecodeSets([]byte(`{"s":[{"name":"A","shape":"standard","ships":[]},{"name":"A","shape":"standard","ships":[]}]}`))

	require.NoError(t, err)
	assert.Equal(t, "A", sets["s"][0].Name)
	assert.Equal(t, "Fleet 2", sets["s"][1].Name)
}
