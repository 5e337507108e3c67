package zarr

import "context"

// ArrayStructure is the structure description the storage layer supplies
// for an array-like entry at request time. Nothing here is cached by this
// package; correctness depends only on the description being current when
// the request is handled.
type ArrayStructure struct {
	Shape  []int
	Chunks ChunkSpec
	Dtype  DataType
}

// Entry is an addressed item in the storage layer. Metadata is the single
// access form for an entry's attribute mapping; a nil map means the entry
// exposes none.
type Entry interface {
	Kind() StructureKind
	Metadata() Attributes
}

// ArrayEntry is an entry that can describe its array structure and
// materialize logical slices. Read returns a dense or sparse Value covering
// the selection clipped to the array extent, and fails with an error
// wrapping ErrOutOfRange when a selection starts past the extent. Read
// blocks until the value is fully materialized.
type ArrayEntry interface {
	Entry
	Structure() ArrayStructure
	Read(ctx context.Context, sel []Range) (Value, error)
}

// ContainerEntry enumerates child keys in a stable total order. Pagination
// is the enumerator's business; limit < 0 means no limit.
type ContainerEntry interface {
	Entry
	Keys(ctx context.Context, offset, limit int) ([]string, error)
}

// TableEntry declares its column names in order. Columns are accessed
// separately, as arrays, under child paths.
type TableEntry interface {
	Entry
	Columns() []string
}

// Resolver maps a request path to an entry. Authentication, authorization
// and path semantics live behind this interface; a missing entry is
// signaled with an error wrapping ErrNotFound.
type Resolver interface {
	Resolve(ctx context.Context, path string) (Entry, error)
}
