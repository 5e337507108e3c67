package zarr

import (
	"bytes"
	"fmt"

	"github.com/qri-io/dataset/compression"
)

// CodecSpec identifies a compression codec on the wire. It is embedded
// verbatim in the .zarray descriptor; protocol clients pick their decoder
// from it, never by inspecting block bytes.
type CodecSpec struct {
	ID    string `json:"id"`
	Level int    `json:"level,omitempty"`
}

// DefaultCodecSpec is the codec advertised when the caller does not pick
// one.
var DefaultCodecSpec = CodecSpec{ID: "zstd", Level: 5}

// Codec encodes a dense block's bytes for the wire. An encoder that cannot
// handle a given block returns an error wrapping ErrCodecNotApplicable and
// the pipeline serves the uncompressed byte layout instead; the fallback is
// a valid protocol response, not an error path.
type Codec interface {
	Spec() CodecSpec
	Encode(p []byte) ([]byte, error)
}

// wire codec ids to qri-io/dataset compression format names
var codecFormats = map[string]string{
	"zstd": "zst",
}

// StreamCodec backs a CodecSpec with the dataset compression package.
type StreamCodec struct {
	spec CodecSpec
}

var _ Codec = (*StreamCodec)(nil)

func NewCodec(spec CodecSpec) *StreamCodec {
	return &StreamCodec{spec: spec}
}

func (c *StreamCodec) Spec() CodecSpec { return c.spec }

func (c *StreamCodec) Encode(p []byte) ([]byte, error) {
	format, ok := codecFormats[c.spec.ID]
	if !ok {
		return nil, fmt.Errorf("%w: no encoder for codec %q", ErrCodecNotApplicable, c.spec.ID)
	}

	buf := &bytes.Buffer{}
	w, err := compression.Compressor(format, buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrCodecNotApplicable, err)
	}
	if _, err := w.Write(p); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
