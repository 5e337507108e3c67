package zarr

import "fmt"

// MetaType is a reserved metadata key suffix in a zarr store. The wire
// protocol addresses the three metadata documents by appending these to an
// entry's path.
type MetaType string

const (
	// MTAttributes stores userland metadata
	MTAttributes MetaType = ".zattrs"
	// MTArray is the key for the array descriptor document
	MTArray MetaType = ".zarray"
	// MTGroup is the key for the group marker document
	MTGroup MetaType = ".zgroup"
)

// Group is the .zgroup marker document. Arrays can be organized into groups
// which can also contain other groups; a group exists at a logical path if
// the ".zgroup" key answers there. This server has no persisted groups,
// group-like entries are simulated from containers, tables and structured
// arrays, so the marker is always identical.
type Group struct {
	ZarrFormat int `json:"zarr_format"`
}

// GroupMarker is the response body for every group metadata request.
var GroupMarker = Group{ZarrFormat: Format}

// Attributes is the .zattrs document: an arbitrary JSON-compatible mapping
// passed through from the entry's metadata.
type Attributes map[string]interface{}

// ArrayMeta is the .zarray array descriptor document, rebuilt per request
// from the live structure description.
type ArrayMeta struct {
	// A list of integers defining the length of each dimension of a chunk.
	// All chunks within a zarr array have the same shape, hence BlockShape
	// rather than the internal ChunkSpec.
	Chunks BlockShape `json:"chunks"`
	// A JSON object identifying the primary compression codec. The client
	// decides how to decode block bytes from this field alone.
	Compressor CodecSpec `json:"compressor"`
	// Canonical dtype string, see Dtype.
	Dtype Dtype `json:"dtype"`
	// Default value for uninitialized portions of the array. Block padding
	// uses the type's zero value, so this is always 0.
	FillValue interface{} `json:"fill_value"`
	// Codec configurations applied before the compressor; never used here.
	Filters []CodecSpec `json:"filters"`
	// Layout of bytes within each chunk, always "C" (row-major).
	Order string `json:"order"`
	// Length of each dimension of the array.
	Shape []int `json:"shape"`
	// Version of the storage specification.
	ZarrFormat int `json:"zarr_format"`
}

// BuildArrayMeta constructs the .zarray document for a primitive array.
// A structure description that cannot be reconciled, a structured dtype or
// a shape/chunk-spec mismatch, is a storage-layer contract violation and
// fails with an error wrapping ErrEncoding.
func BuildArrayMeta(shape []int, chunks ChunkSpec, dt DataType, codec CodecSpec) (*ArrayMeta, error) {
	if dt.IsStruct() {
		return nil, fmt.Errorf("%w: structured dtype has no array descriptor", ErrEncoding)
	}
	if len(shape) != len(chunks) {
		return nil, fmt.Errorf("%w: shape has %d dimensions, chunk spec has %d",
			ErrEncoding, len(shape), len(chunks))
	}
	for i, dim := range chunks {
		sum := 0
		for _, c := range dim {
			sum += c
		}
		if sum != shape[i] {
			return nil, fmt.Errorf("%w: chunk spec sums to %d along dimension %d, shape says %d",
				ErrEncoding, sum, i, shape[i])
		}
	}

	return &ArrayMeta{
		Chunks:     chunks.BlockShape(),
		Compressor: codec,
		Dtype:      dt.Dtype,
		FillValue:  0,
		Filters:    nil,
		Order:      OrderRowMajor,
		Shape:      shape,
		ZarrFormat: Format,
	}, nil
}
