package zarr

import "errors"

// Error taxonomy for the serving pipeline. Callers classify with errors.Is;
// everything else that bubbles out of a collaborator is a storage fault and
// passes through verbatim.
var (
	// ErrNotFound is returned by a Resolver for a path with no entry.
	ErrNotFound = errors.New("not found")

	// ErrNotApplicable marks a request against the wrong endpoint for the
	// entry's structure kind. The protocol convention is to answer not-found
	// so the client probes the other endpoint; it is not a real failure.
	ErrNotApplicable = errors.New("not applicable")

	// ErrInvalidBlock marks a malformed or out-of-range block coordinate.
	ErrInvalidBlock = errors.New("invalid block")

	// ErrOutOfRange is the storage reader's signal that a selection starts
	// past the array extent. The block pipeline folds it into ErrInvalidBlock.
	ErrOutOfRange = errors.New("out of range")

	// ErrEncoding marks a metadata document that cannot be constructed from
	// the structure description. This indicates a storage-layer contract
	// violation, not a client error.
	ErrEncoding = errors.New("cannot encode metadata")

	// ErrCodecNotApplicable is returned by a Codec that cannot encode the
	// given block; the pipeline then falls back to the raw byte layout.
	ErrCodecNotApplicable = errors.New("codec not applicable")
)
