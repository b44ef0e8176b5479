package imaging

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	apperrors "go-image-forensics/internal/errors"
)

// Source bundles a decoded pixel buffer with the original encoded bytes
// it was decoded from. The encoded bytes are optional: only the error
// level detector needs them, and it fails with an unsupported-input
// marker when they are absent.
type Source struct {
	Buffer  *PixelBuffer
	Encoded []byte
}

// NewSource creates a source from an already decoded buffer. Encoded may
// be nil.
func NewSource(buffer *PixelBuffer, encoded []byte) (*Source, error) {
	if buffer == nil {
		return nil, apperrors.NewInputError("nil pixel buffer", nil)
	}
	return &Source{Buffer: buffer, Encoded: encoded}, nil
}

// NewSourceFromBytes decodes encoded image bytes and keeps them alongside
// the decoded buffer.
func NewSourceFromBytes(encoded []byte) (*Source, error) {
	if len(encoded) == 0 {
		return nil, apperrors.NewInputError("empty image data", nil)
	}
	img, _, err := image.Decode(bytes.NewReader(encoded))
	if err != nil {
		return nil, apperrors.NewInputError("failed to decode image", err)
	}
	buffer, err := FromImage(img)
	if err != nil {
		return nil, err
	}
	return &Source{Buffer: buffer, Encoded: encoded}, nil
}

// HasEncoded reports whether the original encoded bytes are available.
func (s *Source) HasEncoded() bool {
	return len(s.Encoded) > 0
}
