package zarr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockShape(t *testing.T) {
	cases := []struct {
		name   string
		chunks ChunkSpec
		want   BlockShape
	}{
		{"regular", ChunkSpec{{1000, 1000}, {500}}, BlockShape{1000, 500}},
		{"irregular", ChunkSpec{{10, 10, 5}}, BlockShape{10}},
		{"empty dimension", ChunkSpec{{}}, BlockShape{1}},
		{"scalar", ChunkSpec{}, BlockShape{}},
		{"capped", ChunkSpec{{20000}}, BlockShape{10000}},
		{"mixed", ChunkSpec{{3, 7, 2}, {}, {12000, 1}}, BlockShape{7, 1, 10000}},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := c.chunks.BlockShape()
			assert.Equal(t, c.want, got)
			for _, size := range got {
				assert.GreaterOrEqual(t, size, 1)
				assert.LessOrEqual(t, size, BlockSizeLimit)
			}
		})
	}
}

func TestParseBlockCoord(t *testing.T) {
	coord, err := ParseBlockCoord("0,2,14")
	require.NoError(t, err)
	assert.Equal(t, BlockCoord{0, 2, 14}, coord)
	assert.Equal(t, "0,2,14", coord.String())

	coord, err = ParseBlockCoord("0")
	require.NoError(t, err)
	assert.Equal(t, BlockCoord{0}, coord)

	_, err = ParseBlockCoord("1,x")
	require.ErrorIs(t, err, ErrInvalidBlock)

	_, err = ParseBlockCoord("0,-1")
	require.ErrorIs(t, err, ErrInvalidBlock)

	_, err = ParseBlockCoord("")
	require.ErrorIs(t, err, ErrInvalidBlock)
}

func TestBlockCoordRanges(t *testing.T) {
	sel := BlockCoord{2, 0}.Ranges(BlockShape{10, 5})
	assert.Equal(t, []Range{{Start: 20, Stop: 30}, {Start: 0, Stop: 5}}, sel)

	// scalar arrays are addressed by "0" against an empty block shape
	sel = BlockCoord{0}.Ranges(BlockShape{})
	assert.Empty(t, sel)
}
