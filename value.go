package zarr

// Value is a materialized read result from the storage layer: either dense
// already, or a sparse representation that can be densified. Protocol
// blocks are always dense, so the pipeline calls Dense before layout.
type Value interface {
	Shape() []int
	Dense() *Dense
}

// Dense holds array elements in row-major ("C") byte order.
type Dense struct {
	Dtype Dtype
	Dims  []int
	Data  []byte
}

var _ Value = (*Dense)(nil)

func (d *Dense) Shape() []int { return d.Dims }

func (d *Dense) Dense() *Dense { return d }

// NumElements is the element count implied by the dims, 1 for a scalar.
func (d *Dense) NumElements() int {
	n := 1
	for _, s := range d.Dims {
		n *= s
	}
	return n
}

// Sparse is a coordinate-format value: one coordinate vector and one
// element's worth of bytes per stored element. Elements not listed are the
// type's zero value.
type Sparse struct {
	Dtype  Dtype
	Dims   []int
	Coords [][]int
	Data   []byte
}

var _ Value = (*Sparse)(nil)

func (s *Sparse) Shape() []int { return s.Dims }

// Dense scatters the stored elements into a zero-filled row-major buffer.
func (s *Sparse) Dense() *Dense {
	esize := s.Dtype.ByteSize
	n := 1
	for _, d := range s.Dims {
		n *= d
	}
	out := make([]byte, n*esize)

	strides := make([]int, len(s.Dims))
	stride := 1
	for i := len(s.Dims) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= s.Dims[i]
	}

	for i, coord := range s.Coords {
		off := 0
		for dim, c := range coord {
			off += c * strides[dim]
		}
		copy(out[off*esize:(off+1)*esize], s.Data[i*esize:(i+1)*esize])
	}

	return &Dense{Dtype: s.Dtype, Dims: s.Dims, Data: out}
}
