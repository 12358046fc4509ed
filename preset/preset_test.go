package preset

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	for _, s := range []string{"nananiji", "Nananiji", " HANSHIN ", "kyojin"} {
		_, err := Parse(s)
		assert.NoError(t, err, s)
	}

	_, err := Parse("tigers")
	assert.ErrorIs(t, err, ErrUnknown)
}

func TestGroupings(t *testing.T) {
	g, err := Groupings(Nananiji, true)
	require.NoError(t, err)
	assert.Equal(t, [][]int64{{227}, {22, 7}, {2, 2, 7}}, g)

	g, err = Groupings(Hanshin, false)
	require.NoError(t, err)
	assert.Equal(t, [][]int64{{334}, {33, 4}, {3, 3, 4}}, g)

	g, err = Groupings(Hanshin, true)
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 34}, g[len(g)-1])

	g, err = Groupings(Kyojin, true)
	require.NoError(t, err)
	assert.Equal(t, [][]int64{{264}, {26, 4}, {2, 6, 4}, {2, 64}}, g)

	_, err = Groupings(Name("x"), false)
	assert.ErrorIs(t, err, ErrUnknown)
}

func TestGroupingsAreFresh(t *testing.T) {
	g, err := Groupings(Hanshin, false)
	require.NoError(t, err)
	g[0][0] = 1

	again, err := Groupings(Hanshin, false)
	require.NoError(t, err)
	assert.Equal(t, int64(334), again[0][0])
}

func TestBlobName(t *testing.T) {
	assert.Equal(t, "nananiji.bin", BlobName(Nananiji, true))
	assert.Equal(t, "hanshin.bin", BlobName(Hanshin, false))
	assert.Equal(t, "hanshin_a.bin", BlobName(Hanshin, true))
	assert.Equal(t, "kyojin_a.bin", BlobName(Kyojin, true))
}
