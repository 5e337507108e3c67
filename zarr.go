// Package zarr serves data held in an internal chunked-array storage model
// over the Zarr v2 wire protocol. Clients only ever see the three JSON
// metadata documents (.zgroup, .zarray, .zattrs), virtual directory
// listings, and binary-encoded fixed-size blocks addressed by integer
// coordinates; the native storage layout stays hidden behind the Entry
// collaborator interfaces.
package zarr

const (
	// Format is the Zarr storage specification version this package speaks.
	Format = 2

	// BlockSizeLimit caps the uniform block size along any dimension.
	// The protocol forbids zero-sized blocks, so translation also floors
	// every dimension at 1.
	BlockSizeLimit = 10000

	// OrderRowMajor is the only chunk memory layout served: "C" means
	// row-major order, the last dimension varies fastest.
	OrderRowMajor = "C"
)
