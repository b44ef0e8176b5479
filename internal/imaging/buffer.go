package imaging

import (
	"image"
	"math"
	"sync"

	apperrors "go-image-forensics/internal/errors"
)

// Channel counts supported by PixelBuffer.
const (
	GrayChannels  = 1
	ColorChannels = 3
)

// PixelBuffer is an immutable handle to a 2-D grid of 8-bit samples,
// either single-channel (grayscale) or 3-channel (RGB). Detectors borrow
// it read-only; the derived luma view is computed once and shared.
type PixelBuffer struct {
	width    int
	height   int
	channels int
	pix      []uint8 // row-major, interleaved channels

	lumaOnce sync.Once
	luma     *PixelBuffer
}

// NewGray wraps a single-channel pixel grid. The slice is adopted, not
// copied; callers must not mutate it afterwards.
func NewGray(width, height int, pix []uint8) (*PixelBuffer, error) {
	return newBuffer(width, height, GrayChannels, pix)
}

// NewRGB wraps a 3-channel interleaved pixel grid.
func NewRGB(width, height int, pix []uint8) (*PixelBuffer, error) {
	return newBuffer(width, height, ColorChannels, pix)
}

func newBuffer(width, height, channels int, pix []uint8) (*PixelBuffer, error) {
	if width <= 0 || height <= 0 {
		return nil, apperrors.NewInputError("image dimensions must be positive", nil)
	}
	if channels != GrayChannels && channels != ColorChannels {
		return nil, apperrors.NewInputError("unsupported channel count", nil)
	}
	if len(pix) != width*height*channels {
		return nil, apperrors.NewInputError("pixel data does not match dimensions", nil)
	}
	return &PixelBuffer{width: width, height: height, channels: channels, pix: pix}, nil
}

// FromImage converts a decoded image into a PixelBuffer. Grayscale images
// stay single-channel; everything else becomes 3-channel RGB.
func FromImage(img image.Image) (*PixelBuffer, error) {
	if img == nil {
		return nil, apperrors.NewInputError("nil image", nil)
	}
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, apperrors.NewInputError("empty image", nil)
	}

	if gray, ok := img.(*image.Gray); ok {
		pix := make([]uint8, width*height)
		for y := 0; y < height; y++ {
			// PixOffset honors non-origin bounds, e.g. a SubImage view.
			off := gray.PixOffset(bounds.Min.X, bounds.Min.Y+y)
			copy(pix[y*width:(y+1)*width], gray.Pix[off:off+width])
		}
		return NewGray(width, height, pix)
	}

	pix := make([]uint8, width*height*ColorChannels)
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			pix[i] = uint8(r >> 8)
			pix[i+1] = uint8(g >> 8)
			pix[i+2] = uint8(b >> 8)
			i += ColorChannels
		}
	}
	return NewRGB(width, height, pix)
}

// Width returns the buffer width in pixels.
func (b *PixelBuffer) Width() int { return b.width }

// Height returns the buffer height in pixels.
func (b *PixelBuffer) Height() int { return b.height }

// Channels returns 1 for grayscale and 3 for RGB buffers.
func (b *PixelBuffer) Channels() int { return b.channels }

// Pix exposes the raw samples. Treat as read-only.
func (b *PixelBuffer) Pix() []uint8 { return b.pix }

// Luma returns the grayscale view of the buffer. For a single-channel
// buffer it is the buffer itself; for RGB the fixed ITU-R 601 weighting
// 0.299 R + 0.587 G + 0.114 B is applied with rounding. The view always
// has the same dimensions as the source buffer.
func (b *PixelBuffer) Luma() *PixelBuffer {
	if b.channels == GrayChannels {
		return b
	}
	b.lumaOnce.Do(func() {
		pix := make([]uint8, b.width*b.height)
		for i := range pix {
			o := i * ColorChannels
			y := 0.299*float64(b.pix[o]) + 0.587*float64(b.pix[o+1]) + 0.114*float64(b.pix[o+2])
			pix[i] = uint8(math.Round(y))
		}
		b.luma = &PixelBuffer{width: b.width, height: b.height, channels: GrayChannels, pix: pix}
	})
	return b.luma
}

// LumaFloats returns the grayscale view as a flat float64 slice, the
// working representation for the numeric kernels.
func (b *PixelBuffer) LumaFloats() []float64 {
	luma := b.Luma()
	out := make([]float64, len(luma.pix))
	for i, v := range luma.pix {
		out[i] = float64(v)
	}
	return out
}

// GrayImage renders a single-channel buffer as an *image.Gray.
func (b *PixelBuffer) GrayImage() *image.Gray {
	luma := b.Luma()
	img := image.NewGray(image.Rect(0, 0, b.width, b.height))
	for y := 0; y < b.height; y++ {
		copy(img.Pix[y*img.Stride:y*img.Stride+b.width], luma.pix[y*b.width:(y+1)*b.width])
	}
	return img
}

// RGBImage renders the buffer as an *image.RGBA (grayscale buffers are
// replicated across channels).
func (b *PixelBuffer) RGBImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, b.width, b.height))
	for y := 0; y < b.height; y++ {
		for x := 0; x < b.width; x++ {
			o := img.PixOffset(x, y)
			if b.channels == GrayChannels {
				v := b.pix[y*b.width+x]
				img.Pix[o], img.Pix[o+1], img.Pix[o+2] = v, v, v
			} else {
				s := (y*b.width + x) * ColorChannels
				img.Pix[o], img.Pix[o+1], img.Pix[o+2] = b.pix[s], b.pix[s+1], b.pix[s+2]
			}
			img.Pix[o+3] = 0xff
		}
	}
	return img
}
