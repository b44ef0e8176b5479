package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"image/png"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"go-image-forensics/internal/detect"
	"go-image-forensics/internal/engine"
	apperrors "go-image-forensics/internal/errors"
	"go-image-forensics/internal/imaging"
	"go-image-forensics/internal/observer"
	"go-image-forensics/internal/report"
	"go-image-forensics/internal/storage"
	"go-image-forensics/internal/visual"
	"go-image-forensics/pkg/models"
)

// ForensicsService runs the detection battery over remote images and
// shapes the outcome for transport.
type ForensicsService interface {
	AnalyzeURL(ctx context.Context, req *models.AnalysisRequest) (*models.AnalysisResponse, error)
	ValidateImageURL(imageURL string) error
}

type forensicsService struct {
	fetcher     storage.ByteFetcher
	blobFetcher storage.ByteFetcher
	opts        engine.Options
	logger      *logrus.Logger
	publisher   observer.Subject
}

// NewForensicsService creates the service. blobFetcher may be nil; when
// set it handles Azure blob URLs and the plain fetcher handles the rest.
func NewForensicsService(
	fetcher storage.ByteFetcher,
	blobFetcher storage.ByteFetcher,
	opts engine.Options,
	logger *logrus.Logger,
	publisher observer.Subject,
) ForensicsService {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &forensicsService{
		fetcher:     fetcher,
		blobFetcher: blobFetcher,
		opts:        opts,
		logger:      logger,
		publisher:   publisher,
	}
}

func (s *forensicsService) AnalyzeURL(ctx context.Context, req *models.AnalysisRequest) (*models.AnalysisResponse, error) {
	if err := s.ValidateImageURL(req.URL); err != nil {
		return nil, err
	}

	start := time.Now()
	data, err := s.fetcherFor(req.URL).Fetch(ctx, req.URL)
	if err != nil {
		if _, ok := err.(*apperrors.AppError); ok {
			return nil, err
		}
		return nil, apperrors.NewNetworkError("failed to fetch image", err)
	}

	src, err := imaging.NewSourceFromBytes(data)
	if err != nil {
		return nil, err
	}

	eng, err := s.buildEngine(req)
	if err != nil {
		return nil, err
	}
	results, err := eng.Run(ctx, src, req.URL)
	if err != nil {
		return nil, err
	}

	summary := report.Build(req.URL, results)
	return s.convertResponse(req, results, summary, time.Since(start)), nil
}

// ValidateImageURL checks that the reference is an absolute http(s) URL.
func (s *forensicsService) ValidateImageURL(imageURL string) error {
	parsed, err := url.Parse(imageURL)
	if err != nil {
		return apperrors.NewInputError("invalid URL format", err)
	}
	if parsed.Host == "" {
		return apperrors.NewInputError("URL must have a valid host", nil)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return apperrors.NewInputError("URL scheme must be http or https", nil)
	}
	return nil
}

func (s *forensicsService) fetcherFor(imageURL string) storage.ByteFetcher {
	if s.blobFetcher != nil {
		if parsed, err := url.Parse(imageURL); err == nil &&
			strings.HasSuffix(parsed.Host, ".blob.core.windows.net") {
			return s.blobFetcher
		}
	}
	return s.fetcher
}

func (s *forensicsService) buildEngine(req *models.AnalysisRequest) (*engine.Engine, error) {
	opts := s.opts
	if req.IncludeClone {
		opts = opts.WithClone()
	}
	if req.Params != nil {
		opts = opts.WithParams(overlayParams(opts.Params, req.Params))
	}

	if len(req.Detectors) == 0 {
		return engine.New(opts, s.logger, s.publisher), nil
	}

	battery := make([]detect.Detector, 0, len(req.Detectors))
	for _, name := range req.Detectors {
		d, err := detect.New(name)
		if err != nil {
			return nil, apperrors.NewInputError("unknown detector: "+name, nil)
		}
		battery = append(battery, d)
	}
	return engine.NewWithBattery(battery, opts, s.logger, s.publisher), nil
}

func overlayParams(base detect.Params, o *models.DetectorOverrides) detect.Params {
	if o.TileSize > 0 {
		base.TileSize = o.TileSize
	}
	if o.CloneTileSize > 0 {
		base.CloneTileSize = o.CloneTileSize
	}
	if o.CloneThreshold > 0 {
		base.CloneThreshold = o.CloneThreshold
	}
	if o.ELAQuality > 0 {
		base.ELAQuality = o.ELAQuality
	}
	if o.DCWindow > 0 {
		base.DCWindow = o.DCWindow
	}
	if o.PeakPercentile > 0 {
		base.PeakPercentile = o.PeakPercentile
	}
	if o.NoiseZMultiplier > 0 {
		base.NoiseZMultiplier = o.NoiseZMultiplier
	}
	if o.NotchRadius > 0 {
		base.NotchRadius = o.NotchRadius
	}
	return base
}

func (s *forensicsService) convertResponse(req *models.AnalysisRequest, results *engine.ResultSet, summary *report.Summary, elapsed time.Duration) *models.AnalysisResponse {
	detectors := make([]models.DetectorReport, 0, len(results.Entries))
	for _, e := range results.Entries {
		d := models.DetectorReport{Name: e.Name}
		if e.Err != nil {
			d.Failed = true
			d.Error = e.Err.Error()
		} else {
			d.Score = e.Result.Score
			d.Status = report.StatusLabel(e.Result.Score)
			d.Flags = e.Result.Flags
			d.Extras = e.Result.Extras
			if req.IncludeMaps && len(e.Result.Maps) > 0 {
				d.Maps = s.encodeMaps(e.Name, e.Result.Maps)
			}
		}
		detectors = append(detectors, d)
	}

	return &models.AnalysisResponse{
		ImageURL:          req.URL,
		Timestamp:         summary.GeneratedAt.Format(time.RFC3339),
		ProcessingTimeSec: elapsed.Seconds(),
		MeanScore:         summary.MeanScore,
		Verdict:           string(summary.Verdict),
		Detectors:         detectors,
	}
}

// encodeMaps renders each detector map as a jet heatmap PNG and encodes
// it as base64 for the JSON payload.
func (s *forensicsService) encodeMaps(detector string, maps map[string]*imaging.PixelBuffer) map[string]string {
	out := make(map[string]string, len(maps))
	for name, buf := range maps {
		var png64 bytes.Buffer
		if err := png.Encode(&png64, visual.Heatmap(buf)); err != nil {
			s.logger.WithFields(logrus.Fields{
				"detector": detector,
				"map":      name,
			}).WithError(err).Warn("Failed to encode heatmap")
			continue
		}
		out[name] = base64.StdEncoding.EncodeToString(png64.Bytes())
	}
	return out
}
