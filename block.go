package zarr

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// FetchBlock materializes and encodes the protocol block at coord.
//
// The coordinate addresses the uniform grid derived from the entry's chunk
// spec, not the internal chunk boundaries. The read selection is delegated
// to the entry, sparse results are densified, and a final partial block is
// right-padded with the type's zero value so that every served block has
// exactly the uniform block shape. Encoding either fully succeeds, falls
// back to the raw row-major bytes when the codec is not applicable, or the
// whole request fails; partial output is never returned.
func FetchBlock(ctx context.Context, entry ArrayEntry, coord BlockCoord, codec Codec) ([]byte, error) {
	st := entry.Structure()
	blocks := st.Chunks.BlockShape()

	// a zero-dimensional array has an empty block shape and is addressed
	// by the single coordinate "0"
	scalar := len(blocks) == 0 && len(coord) == 1 && coord[0] == 0
	if !scalar && len(coord) != len(blocks) {
		return nil, fmt.Errorf("%w: coordinate [%s] is inconsistent with array shape %v",
			ErrInvalidBlock, coord, st.Shape)
	}

	// a huge coordinate would overflow the range arithmetic and wrap the
	// read back inside the array; reject before multiplying
	for i, b := range blocks {
		if coord[i] > (math.MaxInt-b)/b {
			return nil, fmt.Errorf("%w: block [%s] is out of range", ErrInvalidBlock, coord)
		}
	}

	val, err := entry.Read(ctx, coord.Ranges(blocks))
	if err != nil {
		if errors.Is(err, ErrOutOfRange) {
			return nil, fmt.Errorf("%w: block [%s] is out of range", ErrInvalidBlock, coord)
		}
		return nil, err
	}

	dense := padBlock(val.Dense(), blocks)

	buf, err := codec.Encode(dense.Data)
	if err != nil {
		if errors.Is(err, ErrCodecNotApplicable) {
			return dense.Data, nil
		}
		return nil, err
	}
	return buf, nil
}

// padBlock right-pads a clipped boundary block with zero bytes up to the
// full uniform block shape. Blocks already at full shape pass through.
func padBlock(d *Dense, shape BlockShape) *Dense {
	full := len(d.Dims) == len(shape)
	if full {
		for i := range shape {
			if d.Dims[i] != shape[i] {
				full = false
				break
			}
		}
	}
	if full {
		return d
	}

	esize := d.Dtype.ByteSize
	out := make([]byte, shape.NumElements()*esize)
	copyRegion(out, d.Data, shape, d.Dims, esize)
	return &Dense{
		Dtype: d.Dtype,
		Dims:  append([]int{}, shape...),
		Data:  out,
	}
}

// copyRegion copies a row-major src of srcShape into the origin corner of a
// row-major dst of dstShape. srcShape never exceeds dstShape along any
// dimension.
func copyRegion(dst, src []byte, dstShape, srcShape []int, esize int) {
	if len(srcShape) == 0 {
		copy(dst, src)
		return
	}
	if len(srcShape) == 1 {
		copy(dst, src[:srcShape[0]*esize])
		return
	}

	dstStride := esize
	for _, s := range dstShape[1:] {
		dstStride *= s
	}
	srcStride := esize
	for _, s := range srcShape[1:] {
		srcStride *= s
	}
	for i := 0; i < srcShape[0]; i++ {
		copyRegion(dst[i*dstStride:], src[i*srcStride:(i+1)*srcStride], dstShape[1:], srcShape[1:], esize)
	}
}
