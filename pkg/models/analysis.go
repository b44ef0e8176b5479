package models

// AnalysisRequest is the POST /analyze body. Detectors selects a subset
// of the battery by name; empty means the default battery. Params
// overrides individual detector parameters for this run only.
type AnalysisRequest struct {
	URL          string             `json:"url" binding:"required,url"`
	Detectors    []string           `json:"detectors,omitempty"`
	IncludeClone bool               `json:"include_clone,omitempty"`
	IncludeMaps  bool               `json:"include_maps,omitempty"`
	Params       *DetectorOverrides `json:"params,omitempty"`
}

// DetectorOverrides carries per-request parameter overrides. Zero-valued
// fields keep the server defaults.
type DetectorOverrides struct {
	TileSize         int     `json:"tile_size,omitempty"`
	CloneTileSize    int     `json:"clone_tile_size,omitempty"`
	CloneThreshold   float64 `json:"clone_threshold,omitempty"`
	ELAQuality       int     `json:"ela_quality,omitempty"`
	DCWindow         int     `json:"dc_window,omitempty"`
	PeakPercentile   float64 `json:"peak_percentile,omitempty"`
	NoiseZMultiplier float64 `json:"noise_z_multiplier,omitempty"`
	NotchRadius      int     `json:"notch_radius,omitempty"`
}

// DetectorReport is the per-detector slice of an analysis response. Maps
// holds base64-encoded PNG heatmaps, present only when requested.
type DetectorReport struct {
	Name   string                 `json:"name"`
	Score  float64                `json:"score"`
	Status string                 `json:"status,omitempty"`
	Flags  map[string]bool        `json:"flags,omitempty"`
	Extras map[string]interface{} `json:"extras,omitempty"`
	Maps   map[string]string      `json:"maps,omitempty"`
	Failed bool                   `json:"failed,omitempty"`
	Error  string                 `json:"error,omitempty"`
}

// AnalysisResponse is the successful POST /analyze payload.
type AnalysisResponse struct {
	ImageURL          string           `json:"image_url"`
	Timestamp         string           `json:"timestamp"`
	ProcessingTimeSec float64          `json:"processing_time_sec"`
	MeanScore         float64          `json:"mean_score"`
	Verdict           string           `json:"verdict"`
	Detectors         []DetectorReport `json:"detectors"`
}

// ErrorResponse is the uniform error payload.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
