package zarr_test

import (
	"bytes"
	"context"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/qri-io/dataset/compression"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	zarr "github.com/datatrellis/zarr-serve"
	"github.com/datatrellis/zarr-serve/adapter"
)

var (
	int32LE   = zarr.Dtype{ByteOrder: zarr.BOLittleEndian, BasicType: zarr.BTInteger, ByteSize: 4}
	float64LE = zarr.Dtype{ByteOrder: zarr.BOLittleEndian, BasicType: zarr.BTFloatingPoint, ByteSize: 8}
)

// rampArray builds a 1-d int32 array holding 0..n-1.
func rampArray(t *testing.T, n int, chunks zarr.ChunkSpec) *adapter.Array {
	t.Helper()
	data := make([]byte, n*4)
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint32(data[i*4:], uint32(i))
	}
	arr, err := adapter.NewArray(zarr.DataType{Dtype: int32LE}, []int{n}, chunks, data, nil)
	require.NoError(t, err)
	return arr
}

func decodeZstd(t *testing.T, buf []byte) []byte {
	t.Helper()
	r, err := compression.Decompressor("zst", io.NopCloser(bytes.NewReader(buf)))
	require.NoError(t, err)
	out, err := io.ReadAll(r)
	require.NoError(t, err)
	require.NoError(t, r.Close())
	return out
}

func int32Values(t *testing.T, raw []byte) []int32 {
	t.Helper()
	require.Zero(t, len(raw)%4)
	vals := make([]int32, len(raw)/4)
	for i := range vals {
		vals[i] = int32(binary.LittleEndian.Uint32(raw[i*4:]))
	}
	return vals
}

func TestFetchBlockPadsFinalPartialBlock(t *testing.T) {
	// shape 25, chunk spec [10 10 5]: uniform grid re-slices as 10,10,10
	arr := rampArray(t, 25, zarr.ChunkSpec{{10, 10, 5}})
	codec := zarr.NewCodec(zarr.DefaultCodecSpec)

	buf, err := zarr.FetchBlock(context.Background(), arr, zarr.BlockCoord{2}, codec)
	require.NoError(t, err)

	vals := int32Values(t, decodeZstd(t, buf))
	assert.Equal(t, []int32{20, 21, 22, 23, 24, 0, 0, 0, 0, 0}, vals)
}

func TestFetchBlockFullBlock(t *testing.T) {
	arr := rampArray(t, 25, zarr.ChunkSpec{{10, 10, 5}})
	codec := zarr.NewCodec(zarr.DefaultCodecSpec)

	buf, err := zarr.FetchBlock(context.Background(), arr, zarr.BlockCoord{1}, codec)
	require.NoError(t, err)

	vals := int32Values(t, decodeZstd(t, buf))
	assert.Equal(t, []int32{10, 11, 12, 13, 14, 15, 16, 17, 18, 19}, vals)
}

func TestFetchBlockIdempotent(t *testing.T) {
	arr := rampArray(t, 25, zarr.ChunkSpec{{10, 10, 5}})
	codec := zarr.NewCodec(zarr.DefaultCodecSpec)

	first, err := zarr.FetchBlock(context.Background(), arr, zarr.BlockCoord{0}, codec)
	require.NoError(t, err)
	second, err := zarr.FetchBlock(context.Background(), arr, zarr.BlockCoord{0}, codec)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFetchBlockZeroLengthDimension(t *testing.T) {
	// a [0]-shaped array still serves one zero-padded block
	arr, err := adapter.NewArray(zarr.DataType{Dtype: int32LE}, []int{0}, zarr.ChunkSpec{{}}, nil, nil)
	require.NoError(t, err)
	codec := zarr.NewCodec(zarr.DefaultCodecSpec)

	buf, err := zarr.FetchBlock(context.Background(), arr, zarr.BlockCoord{0}, codec)
	require.NoError(t, err)

	vals := int32Values(t, decodeZstd(t, buf))
	assert.Equal(t, []int32{0}, vals)
}

func TestFetchBlockScalar(t *testing.T) {
	// zero-dimensional array: empty block shape, addressed by "0"
	data := binary.LittleEndian.AppendUint32(nil, 7)
	arr, err := adapter.NewArray(zarr.DataType{Dtype: int32LE}, []int{}, zarr.ChunkSpec{}, data, nil)
	require.NoError(t, err)
	codec := zarr.NewCodec(zarr.DefaultCodecSpec)

	buf, err := zarr.FetchBlock(context.Background(), arr, zarr.BlockCoord{0}, codec)
	require.NoError(t, err)
	assert.Equal(t, []int32{7}, int32Values(t, decodeZstd(t, buf)))

	// anything but "0" is dimensionally inconsistent
	_, err = zarr.FetchBlock(context.Background(), arr, zarr.BlockCoord{1}, codec)
	require.ErrorIs(t, err, zarr.ErrInvalidBlock)
}

func TestFetchBlockCoordinateMismatch(t *testing.T) {
	arr := rampArray(t, 25, zarr.ChunkSpec{{10, 10, 5}})
	codec := zarr.NewCodec(zarr.DefaultCodecSpec)

	_, err := zarr.FetchBlock(context.Background(), arr, zarr.BlockCoord{0, 0}, codec)
	require.ErrorIs(t, err, zarr.ErrInvalidBlock)
}

func TestFetchBlockOutOfRange(t *testing.T) {
	arr := rampArray(t, 25, zarr.ChunkSpec{{10, 10, 5}})
	codec := zarr.NewCodec(zarr.DefaultCodecSpec)

	_, err := zarr.FetchBlock(context.Background(), arr, zarr.BlockCoord{4}, codec)
	require.ErrorIs(t, err, zarr.ErrInvalidBlock)
}

func TestFetchBlockHugeCoordinate(t *testing.T) {
	// a coordinate large enough to overflow the range arithmetic must be
	// rejected, not wrapped back inside the array
	arr := rampArray(t, 25, zarr.ChunkSpec{{10, 10, 5}})
	codec := zarr.NewCodec(zarr.DefaultCodecSpec)

	for _, c := range []int{
		math.MaxInt,
		math.MaxInt / 10,
		1844674407370955162, // wraps the range to [4,14) at block size 10
	} {
		_, err := zarr.FetchBlock(context.Background(), arr, zarr.BlockCoord{c}, codec)
		require.ErrorIs(t, err, zarr.ErrInvalidBlock, "coordinate %d", c)
	}
}

func TestFetchBlockHugeCoordinateTwoDimensional(t *testing.T) {
	data := make([]byte, 4*4*4)
	arr, err := adapter.NewArray(zarr.DataType{Dtype: int32LE}, []int{4, 4},
		zarr.ChunkSpec{{4}, {4}}, data, nil)
	require.NoError(t, err)
	codec := zarr.NewCodec(zarr.DefaultCodecSpec)

	// overflow in any single dimension is enough to reject the block
	_, err = zarr.FetchBlock(context.Background(), arr, zarr.BlockCoord{0, math.MaxInt / 2}, codec)
	require.ErrorIs(t, err, zarr.ErrInvalidBlock)
}

func TestFetchBlockDensifiesSparse(t *testing.T) {
	one := binary.LittleEndian.AppendUint64(nil, 0x3FF0000000000000)  // 1.0
	two := binary.LittleEndian.AppendUint64(nil, 0x4000000000000000)  // 2.0
	sp, err := adapter.NewSparse(float64LE, []int{4, 4}, zarr.ChunkSpec{{4}, {4}},
		[][]int{{0, 0}, {3, 1}}, append(one, two...), nil)
	require.NoError(t, err)
	codec := zarr.NewCodec(zarr.DefaultCodecSpec)

	buf, err := zarr.FetchBlock(context.Background(), sp, zarr.BlockCoord{0, 0}, codec)
	require.NoError(t, err)

	raw := decodeZstd(t, buf)
	require.Len(t, raw, 16*8)
	vals := make([]float64, 16)
	for i := range vals {
		vals[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
	}
	want := make([]float64, 16)
	want[0] = 1.0  // (0,0)
	want[13] = 2.0 // (3,1) row-major
	assert.Equal(t, want, vals)
}

// notApplicableCodec forces the raw-bytes fallback path.
type notApplicableCodec struct{}

func (notApplicableCodec) Spec() zarr.CodecSpec { return zarr.CodecSpec{ID: "blosc"} }
func (notApplicableCodec) Encode(p []byte) ([]byte, error) {
	return nil, zarr.ErrCodecNotApplicable
}

func TestFetchBlockCodecFallback(t *testing.T) {
	arr := rampArray(t, 25, zarr.ChunkSpec{{10, 10, 5}})

	buf, err := zarr.FetchBlock(context.Background(), arr, zarr.BlockCoord{2}, notApplicableCodec{})
	require.NoError(t, err)

	// fallback serves the uncompressed row-major layout directly
	assert.Equal(t, []int32{20, 21, 22, 23, 24, 0, 0, 0, 0, 0}, int32Values(t, buf))
}

// failingCodec simulates a hard encoder fault.
type failingCodec struct{}

func (failingCodec) Spec() zarr.CodecSpec { return zarr.CodecSpec{ID: "zstd"} }
func (failingCodec) Encode(p []byte) ([]byte, error) {
	return nil, errors.New("encoder exploded")
}

func TestFetchBlockCodecFault(t *testing.T) {
	arr := rampArray(t, 25, zarr.ChunkSpec{{10, 10, 5}})

	buf, err := zarr.FetchBlock(context.Background(), arr, zarr.BlockCoord{0}, failingCodec{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, zarr.ErrInvalidBlock)
	assert.Nil(t, buf)
}

func TestFetchBlockTwoDimensionalPadding(t *testing.T) {
	// 3x5 array, blocks of 2x4: block (1,1) covers rows [2,4) cols [4,8),
	// only element (2,4) exists, the rest pads with zeros
	data := make([]byte, 15*4)
	for i := 0; i < 15; i++ {
		binary.LittleEndian.PutUint32(data[i*4:], uint32(i+1))
	}
	arr, err := adapter.NewArray(zarr.DataType{Dtype: int32LE}, []int{3, 5},
		zarr.ChunkSpec{{2, 1}, {4, 1}}, data, nil)
	require.NoError(t, err)

	buf, err := zarr.FetchBlock(context.Background(), arr, zarr.BlockCoord{1, 1}, notApplicableCodec{})
	require.NoError(t, err)

	// 2x4 block: first row starts at logical (2,4) = value 15
	assert.Equal(t, []int32{15, 0, 0, 0, 0, 0, 0, 0}, int32Values(t, buf))
}
