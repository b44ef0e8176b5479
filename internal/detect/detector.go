package detect

import (
	"fmt"

	"go-image-forensics/internal/imaging"
)

// Detector names as they appear in result sets and API responses.
const (
	NameHistogram = "histogram"
	NameELA       = "ela"
	NameNoise     = "noise"
	NameBitDepth  = "bitdepth"
	NameClone     = "clone"
	NameFrequency = "frequency"
	NameContrast  = "contrast"
	NameBlur      = "blur"
	NameBiasField = "bias_field"
)

// Detector is a stateless forensic analysis over a pixel source. Run must
// be a pure function of (source, params): identical inputs produce
// identical results, and no detector mutates shared state.
type Detector interface {
	Name() string
	Run(src *imaging.Source, p Params) (*Result, error)
}

// Result is the outcome of a single detector invocation. Score is always
// in [0, 100], higher meaning more suspicious. Maps are full-resolution
// buffers already normalized to 0-255; consumers apply no further
// scaling. Immutable after return.
type Result struct {
	Score  float64
	Flags  map[string]bool
	Maps   map[string]*imaging.PixelBuffer
	Grids  map[string]*Grid
	Extras map[string]interface{}
}

func newResult() *Result {
	return &Result{
		Flags:  make(map[string]bool),
		Maps:   make(map[string]*imaging.PixelBuffer),
		Grids:  make(map[string]*Grid),
		Extras: make(map[string]interface{}),
	}
}

// Params carries the tunable knobs shared by the battery. The zero value
// is not usable; start from DefaultParams.
type Params struct {
	// TileSize is the edge length of the non-overlapping analysis tiles
	// used by the noise, contrast and blur detectors.
	TileSize int
	// CloneTileSize is the edge of the overlapping tiles compared by the
	// clone detector; the slide stride is half this value.
	CloneTileSize int
	// CloneThreshold is the Pearson correlation above which two distant
	// tiles count as a clone match.
	CloneThreshold float64
	// ELAQuality is the JPEG quality used for the re-encode pass.
	ELAQuality int
	// DCWindow is the edge of the square zeroed around the spectrum
	// center before frequency peak counting (odd, center inclusive).
	DCWindow int
	// PeakPercentile is the magnitude percentile used as the frequency
	// peak threshold.
	PeakPercentile float64
	// NoiseZMultiplier scales the grid standard deviation when building
	// the noise inconsistency mask.
	NoiseZMultiplier float64
	// NotchRadius is the disk radius zeroed by the notch filter utility.
	NotchRadius int
}

// DefaultParams returns the battery defaults.
func DefaultParams() Params {
	return Params{
		TileSize:         64,
		CloneTileSize:    16,
		CloneThreshold:   0.9,
		ELAQuality:       95,
		DCWindow:         21,
		PeakPercentile:   99.5,
		NoiseZMultiplier: 1.5,
		NotchRadius:      10,
	}
}

// WithTileSize returns a copy with the analysis tile edge replaced.
func (p Params) WithTileSize(size int) Params {
	p.TileSize = size
	return p
}

// WithCloneThreshold returns a copy with the clone correlation threshold
// replaced.
func (p Params) WithCloneThreshold(threshold float64) Params {
	p.CloneThreshold = threshold
	return p
}

// New creates a detector by name.
func New(name string) (Detector, error) {
	switch name {
	case NameHistogram:
		return &HistogramDetector{}, nil
	case NameELA:
		return &ErrorLevelDetector{}, nil
	case NameNoise:
		return &NoiseDetector{}, nil
	case NameBitDepth:
		return &BitDepthDetector{}, nil
	case NameClone:
		return &BlockCloneDetector{}, nil
	case NameFrequency:
		return &FrequencyDetector{}, nil
	case NameContrast:
		return &ContrastDetector{}, nil
	case NameBlur:
		return &BlurDetector{}, nil
	case NameBiasField:
		return &LightingDetector{}, nil
	default:
		return nil, fmt.Errorf("unknown detector: %s", name)
	}
}

// DefaultBattery returns the detectors enabled for a standard run, in
// invocation order. Clone detection is opt-in because of its quadratic
// block comparison cost.
func DefaultBattery() []Detector {
	return []Detector{
		&HistogramDetector{},
		&ErrorLevelDetector{},
		&NoiseDetector{},
		&BitDepthDetector{},
		&FrequencyDetector{},
		&ContrastDetector{},
		&BlurDetector{},
		&LightingDetector{},
	}
}

// FullBattery returns every detector, clone detection included.
func FullBattery() []Detector {
	battery := DefaultBattery()
	return append(battery[:4:4], append([]Detector{&BlockCloneDetector{}}, battery[4:]...)...)
}
