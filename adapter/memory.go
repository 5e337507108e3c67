// Package adapter provides in-memory implementations of the zarr
// collaborator interfaces. They back the package tests and the demo server;
// production deployments plug their own storage behind the same interfaces.
package adapter

import (
	"context"
	"fmt"
	"sync"

	zarr "github.com/datatrellis/zarr-serve"
)

// Array is a dense in-memory array entry backed by a row-major byte slice.
type Array struct {
	dtype  zarr.DataType
	shape  []int
	chunks zarr.ChunkSpec
	data   []byte
	meta   zarr.Attributes
}

var _ zarr.ArrayEntry = (*Array)(nil)

// NewArray wraps row-major data as an array entry. The backing slice must
// hold exactly one element per position of shape.
func NewArray(dt zarr.DataType, shape []int, chunks zarr.ChunkSpec, data []byte, meta zarr.Attributes) (*Array, error) {
	esize := dt.Dtype.ByteSize
	if dt.IsStruct() {
		esize = structSize(dt)
	}
	if want := numElements(shape) * esize; len(data) != want {
		return nil, fmt.Errorf("array data is %d bytes, shape %v with %d-byte elements needs %d",
			len(data), shape, esize, want)
	}
	if len(chunks) != len(shape) {
		return nil, fmt.Errorf("chunk spec has %d dimensions, shape %v has %d", len(chunks), shape, len(shape))
	}
	return &Array{dtype: dt, shape: shape, chunks: chunks, data: data, meta: meta}, nil
}

func (a *Array) Kind() zarr.StructureKind {
	if a.dtype.IsStruct() {
		return zarr.KindStructuredArray
	}
	return zarr.KindArray
}

func (a *Array) Metadata() zarr.Attributes { return a.meta }

func (a *Array) Structure() zarr.ArrayStructure {
	return zarr.ArrayStructure{Shape: a.shape, Chunks: a.chunks, Dtype: a.dtype}
}

// Read materializes the selection clipped to the array extent. A selection
// that starts strictly past the extent along any dimension fails with
// ErrOutOfRange; a selection that merely overruns the final partial block
// is clipped, the caller pads.
func (a *Array) Read(ctx context.Context, sel []zarr.Range) (zarr.Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clipped, dims, err := clipSelection(sel, a.shape)
	if err != nil {
		return nil, err
	}

	esize := a.dtype.Dtype.ByteSize
	if a.dtype.IsStruct() {
		esize = structSize(a.dtype)
	}
	out := make([]byte, numElements(dims)*esize)
	gather(out, a.data, a.shape, clipped, esize)

	return &zarr.Dense{Dtype: a.dtype.Dtype, Dims: dims, Data: out}, nil
}

// Sparse is a coordinate-format in-memory array entry.
type Sparse struct {
	dtype  zarr.Dtype
	shape  []int
	chunks zarr.ChunkSpec
	coords [][]int
	data   []byte
	meta   zarr.Attributes
}

var _ zarr.ArrayEntry = (*Sparse)(nil)

// NewSparse wraps COO data, one coordinate vector and one element's worth
// of bytes per stored element, as a sparse array entry.
func NewSparse(dt zarr.Dtype, shape []int, chunks zarr.ChunkSpec, coords [][]int, data []byte, meta zarr.Attributes) (*Sparse, error) {
	if len(data) != len(coords)*dt.ByteSize {
		return nil, fmt.Errorf("sparse data is %d bytes, %d coordinates with %d-byte elements need %d",
			len(data), len(coords), dt.ByteSize, len(coords)*dt.ByteSize)
	}
	for i, coord := range coords {
		if len(coord) != len(shape) {
			return nil, fmt.Errorf("sparse coordinate %d has %d dimensions, shape %v has %d",
				i, len(coord), shape, len(shape))
		}
		for d, c := range coord {
			if c < 0 || c >= shape[d] {
				return nil, fmt.Errorf("sparse coordinate %d is %v, outside shape %v", i, coord, shape)
			}
		}
	}
	return &Sparse{dtype: dt, shape: shape, chunks: chunks, coords: coords, data: data, meta: meta}, nil
}

func (s *Sparse) Kind() zarr.StructureKind { return zarr.KindSparseArray }

func (s *Sparse) Metadata() zarr.Attributes { return s.meta }

func (s *Sparse) Structure() zarr.ArrayStructure {
	return zarr.ArrayStructure{Shape: s.shape, Chunks: s.chunks, Dtype: zarr.DataType{Dtype: s.dtype}}
}

func (s *Sparse) Read(ctx context.Context, sel []zarr.Range) (zarr.Value, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	clipped, dims, err := clipSelection(sel, s.shape)
	if err != nil {
		return nil, err
	}

	esize := s.dtype.ByteSize
	val := &zarr.Sparse{Dtype: s.dtype, Dims: dims}
	for i, coord := range s.coords {
		inside := true
		for d, c := range coord {
			if c < clipped[d].Start || c >= clipped[d].Stop {
				inside = false
				break
			}
		}
		if !inside {
			continue
		}
		shifted := make([]int, len(coord))
		for d, c := range coord {
			shifted[d] = c - clipped[d].Start
		}
		val.Coords = append(val.Coords, shifted)
		val.Data = append(val.Data, s.data[i*esize:(i+1)*esize]...)
	}
	return val, nil
}

// Table declares ordered columns; the columns themselves resolve as array
// entries under child paths.
type Table struct {
	columns []string
	meta    zarr.Attributes
}

var _ zarr.TableEntry = (*Table)(nil)

func NewTable(columns []string, meta zarr.Attributes) *Table {
	return &Table{columns: columns, meta: meta}
}

func (t *Table) Kind() zarr.StructureKind  { return zarr.KindTable }
func (t *Table) Metadata() zarr.Attributes { return t.meta }
func (t *Table) Columns() []string         { return t.columns }

// Container holds child keys in insertion order.
type Container struct {
	keys []string
	meta zarr.Attributes
}

var _ zarr.ContainerEntry = (*Container)(nil)

func NewContainer(keys []string, meta zarr.Attributes) *Container {
	return &Container{keys: keys, meta: meta}
}

func (c *Container) Kind() zarr.StructureKind  { return zarr.KindContainer }
func (c *Container) Metadata() zarr.Attributes { return c.meta }

func (c *Container) Keys(ctx context.Context, offset, limit int) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset >= len(c.keys) {
		return []string{}, nil
	}
	keys := c.keys[offset:]
	if limit >= 0 && limit < len(keys) {
		keys = keys[:limit]
	}
	return keys, nil
}

// Resolver maps normalized paths to entries.
type Resolver struct {
	mu      sync.RWMutex
	entries map[string]zarr.Entry
}

var _ zarr.Resolver = (*Resolver)(nil)

func NewResolver() *Resolver {
	return &Resolver{entries: map[string]zarr.Entry{}}
}

// Add registers an entry under path. Paths are normalized so lookups are
// insensitive to leading, trailing and repeated slashes.
func (r *Resolver) Add(path string, entry zarr.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries[NormPath(path)] = entry
}

func (r *Resolver) Resolve(ctx context.Context, path string) (zarr.Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.entries[NormPath(path)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", zarr.ErrNotFound, path)
	}
	return entry, nil
}

func clipSelection(sel []zarr.Range, shape []int) (clipped []zarr.Range, dims []int, err error) {
	if len(sel) != len(shape) {
		return nil, nil, fmt.Errorf("selection has %d dimensions, array has %d", len(sel), len(shape))
	}
	clipped = make([]zarr.Range, len(sel))
	dims = make([]int, len(sel))
	for i, r := range sel {
		if r.Start > shape[i] {
			return nil, nil, fmt.Errorf("%w: [%d, %d) along dimension %d of extent %d",
				zarr.ErrOutOfRange, r.Start, r.Stop, i, shape[i])
		}
		stop := r.Stop
		if stop > shape[i] {
			stop = shape[i]
		}
		clipped[i] = zarr.Range{Start: r.Start, Stop: stop}
		dims[i] = stop - r.Start
	}
	return clipped, dims, nil
}

// gather copies the selected region of a row-major src of srcShape into a
// contiguous row-major dst.
func gather(dst, src []byte, srcShape []int, sel []zarr.Range, esize int) {
	if len(srcShape) == 0 {
		copy(dst, src[:esize])
		return
	}
	if len(srcShape) == 1 {
		copy(dst, src[sel[0].Start*esize:sel[0].Stop*esize])
		return
	}

	srcStride := esize
	for _, s := range srcShape[1:] {
		srcStride *= s
	}
	dstStride := esize
	for _, r := range sel[1:] {
		dstStride *= r.Stop - r.Start
	}
	for i := sel[0].Start; i < sel[0].Stop; i++ {
		gather(dst[(i-sel[0].Start)*dstStride:], src[i*srcStride:(i+1)*srcStride], srcShape[1:], sel[1:], esize)
	}
}

func numElements(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}

func structSize(dt zarr.DataType) int {
	size := 0
	for _, f := range dt.Fields {
		if end := f.Offset + f.Dtype.ByteSize; end > size {
			size = end
		}
	}
	return size
}
