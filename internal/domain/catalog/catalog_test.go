package catalog_test

import (
	"encoding/json"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kantai-tool/fleetdeck/internal/domain/catalog"
)

const vendorTables = `{"api_mst_ship":[{"api_id":1,"api_name":"Mutsuki","api_stype":2,"api_sortno":31},{"api_id":2,"api_name":"Kisaragi","api_stype":2,"api_sortno":30},{"api_id":1501,"api_name":"I-class","api_stype":2}],"api_mst_stype":[{"api_id":2,"api_name":"Destroyer"}]}`

func TestNormalizeMaster_AcceptedShapes(t *testing.T) {
	enveloped := `{"api_result":1,"api_data":` + vendorTables + `}`

	cases := map[string]string{
		"object data":        `{"data":` + vendorTables + `}`,
		"enveloped object":   `{"data":` + enveloped + `}`,
		"string data":        `{"data":` + strconv.Quote(vendorTables) + `}`,
		"svdata string":      `{"data":` + strconv.Quote("svdata="+enveloped) + `}`,
		"bare vendor object": vendorTables,
		"bare enveloped":     enveloped,
	}

	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			master, err := catalog.NormalizeMaster([]byte(payload))

			require.NoError(t, err)
			assert.Len(t, master.Units, 3)
			assert.Len(t, master.Categories, 1)
		})
	}
}

func TestNormalizeMaster_MissingTables(t *testing.T) {
	cases := []string{
		`{"data": {"api_mst_ship": []}}`,
		`{"data": "svdata=not json"}`,
		`{"data": {"api_data": {"api_mst_stype": []}}}`,
		`not json at all`,
		`[]`,
	}
	for _, payload := range cases {
		_, err := catalog.NormalizeMaster([]byte(payload))
		assert.ErrorIs(t, err, catalog.ErrMissingTables, payload)
	}
}

func TestLoad_BuildsLookups(t *testing.T) {
	master, err := catalog.NormalizeMaster([]byte(vendorTables))
	require.NoError(t, err)
	stored, err := json.Marshal(master)
	require.NoError(t, err)

	c := catalog.Load(stored)

	assert.Equal(t, "Mutsuki", c.Name(1))
	assert.Equal(t, "ID:999", c.Name(999))
	assert.Equal(t, 2, c.CategoryOf(1))
	assert.Equal(t, "Destroyer", c.CategoryName(2))

	playable := c.Playable()
	require.Len(t, playable, 2)
	assert.Equal(t, 2, playable[0].ReferenceID, "ordered by sort number")
	assert.Equal(t, 1, playable[1].ReferenceID)
}

func TestLoad_FailsClosed(t *testing.T) {
	for _, stored := range []string{"", "{", `{"api_mst_ship": "oops"}`} {
		c := catalog.Load([]byte(stored))
		assert.Equal(t, 0, c.Len())
		assert.Equal(t, "ID:5", c.Name(5))
	}
}
