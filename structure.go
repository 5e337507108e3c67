package zarr

// StructureKind is the storage layer's declared structure for an entry. It
// is an explicit tagged union: every classification below switches on it
// exhaustively, nothing is inferred by probing attributes.
type StructureKind int

const (
	// KindArray is a plain chunked array. Its DataType may still be
	// structured, in which case it plays the same protocol role as
	// KindStructuredArray.
	KindArray StructureKind = iota
	// KindStructuredArray is an array of records with named sub-fields.
	KindStructuredArray
	// KindSparseArray stores only the nonzero elements; blocks are
	// densified before serving.
	KindSparseArray
	// KindTable is tabular data with named columns.
	KindTable
	// KindContainer holds child entries under keys.
	KindContainer
)

func (k StructureKind) String() string {
	switch k {
	case KindArray:
		return "array"
	case KindStructuredArray:
		return "structured array"
	case KindSparseArray:
		return "sparse array"
	case KindTable:
		return "table"
	case KindContainer:
		return "container"
	}
	return "unknown"
}

// Role is the protocol role an entry plays: group-like entries answer the
// virtual-directory metadata/listing endpoints, array-like entries answer
// the array-descriptor and binary-block endpoints.
type Role int

const (
	RoleInvalid Role = iota
	RoleGroupLike
	RoleArrayLike
)

func (r Role) String() string {
	switch r {
	case RoleGroupLike:
		return "group-like"
	case RoleArrayLike:
		return "array-like"
	}
	return "invalid"
}

// Classify decides which protocol role applies to an entry. Containers and
// tables are group-like. An array with a structured data type is group-like
// too: it is served as a virtual table whose sub-fields become children.
// Primitive arrays and sparse arrays are array-like. A request against the
// wrong endpoint for the resulting role is answered not-found, which tells
// the protocol client to retry the other endpoint.
func Classify(kind StructureKind, dt DataType) Role {
	switch kind {
	case KindContainer, KindTable, KindStructuredArray:
		return RoleGroupLike
	case KindArray:
		if dt.IsStruct() {
			return RoleGroupLike
		}
		return RoleArrayLike
	case KindSparseArray:
		return RoleArrayLike
	}
	return RoleInvalid
}
