package zarr

import (
	"fmt"
	"strconv"
	"strings"
)

// ChunkSpec is the internal chunk decomposition of an array: one entry per
// dimension, each an ordered sequence of positive chunk lengths summing to
// that dimension's shape. Chunk lengths may vary along an axis; the wire
// protocol cannot express that, so serving goes through BlockShape instead.
type ChunkSpec [][]int

// BlockShape is the single per-dimension block size used for addressing
// under the wire protocol.
type BlockShape []int

// BlockShape projects the possibly irregular chunk decomposition onto the
// protocol's required uniform grid: per dimension the block size is the
// largest chunk length, floored at 1 and capped at BlockSizeLimit. The
// projection is lossy and one-way; the server re-slices storage along this
// grid, not along the original chunk boundaries.
func (cs ChunkSpec) BlockShape() BlockShape {
	bs := make(BlockShape, len(cs))
	for i, dim := range cs {
		size := 1
		for _, c := range dim {
			if c > size {
				size = c
			}
		}
		if size > BlockSizeLimit {
			size = BlockSizeLimit
		}
		bs[i] = size
	}
	return bs
}

// NumElements is the element count of one full block.
func (bs BlockShape) NumElements() int {
	n := 1
	for _, s := range bs {
		n *= s
	}
	return n
}

// BlockCoord addresses one block in the uniform grid.
type BlockCoord []int

// ParseBlockCoord reads the wire form of a block coordinate: a
// comma-separated list of non-negative integers, e.g. "0,2".
func ParseBlockCoord(s string) (BlockCoord, error) {
	parts := strings.Split(s, ",")
	coord := make(BlockCoord, len(parts))
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("%w: coordinate %q is not an integer list", ErrInvalidBlock, s)
		}
		if n < 0 {
			return nil, fmt.Errorf("%w: negative coordinate %q", ErrInvalidBlock, s)
		}
		coord[i] = n
	}
	return coord, nil
}

func (bc BlockCoord) String() string {
	parts := make([]string, len(bc))
	for i, n := range bc {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ",")
}

// Range is a half-open index interval [Start, Stop) along one dimension.
type Range struct {
	Start int
	Stop  int
}

// Ranges gives the logical read selection for the block at bc: per
// dimension [c*b, (c+1)*b). The upper bound may run past the array extent
// for the final partial block; the storage reader clips, the pipeline pads.
// The caller rejects coordinates large enough to overflow this arithmetic.
func (bc BlockCoord) Ranges(bs BlockShape) []Range {
	sel := make([]Range, len(bs))
	for i, b := range bs {
		sel[i] = Range{Start: bc[i] * b, Stop: (bc[i] + 1) * b}
	}
	return sel
}
