package category_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kantai-tool/fleetdeck/internal/domain/category"
)

func sampleConfig() category.Config {
	return category.Config{Buckets: []category.Bucket{
		{Name: "Destroyers", CategoryIDs: []int{2}},
		{Name: "Cruisers", CategoryIDs: []int{3, 4}},
	}}
}

func TestMatches(t *testing.T) {
	c := sampleConfig()

	assert.True(t, category.Matches(c, "", 99), "no selection matches all")
	assert.True(t, category.Matches(c, "Destroyers", 2))
	assert.False(t, category.Matches(c, "Destroyers", 3))
	assert.True(t, category.Matches(c, "Cruisers", 4))
	assert.True(t, category.Matches(c, category.RemainderName, 9))
	assert.False(t, category.Matches(c, category.RemainderName, 3))
	assert.False(t, category.Matches(c, "Unknown", 2))
}

func TestMatches_RemainderFollowsEdits(t *testing.T) {
	c := sampleConfig()
	require.False(t, category.Matches(c, category.RemainderName, 2))

	c, err := c.RemoveBucket(0)
	require.NoError(t, err)

	assert.True(t, category.Matches(c, category.RemainderName, 2))
}

func TestConfig_Validate(t *testing.T) {
	c := sampleConfig()

	_, err := c.AddBucket("Cruisers")
	assert.Error(t, err, "duplicate")

	_, err = c.AddBucket(category.RemainderName)
	assert.Error(t, err, "reserved")

	_, err = c.RenameBucket(0, "  ")
	assert.Error(t, err, "empty")

	next, err := c.AddBucket("Carriers")
	require.NoError(t, err)
	assert.Equal(t, []string{"Destroyers", "Cruisers", "Carriers", category.RemainderName}, next.Names())
	assert.Len(t, c.Buckets, 2, "receiver is not mutated")
}

func TestAvailable(t *testing.T) {
	c := sampleConfig()

	assert.Equal(t, []string{"Cruisers", category.RemainderName}, category.Available(c, []int{4, 8, 4}))
}

func TestDecodeEncode(t *testing.T) {
	c := category.Decode([]byte(`[{"name":"DD","stypes":[2]}]`))
	require.Len(t, c.Buckets, 1)
	assert.Equal(t, []int{2}, c.Buckets[0].CategoryIDs)

	assert.Empty(t, category.Decode([]byte(`{broken`)).Buckets)

	data, err := category.Config{}.Encode()
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}
