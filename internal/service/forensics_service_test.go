package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-image-forensics/internal/detect"
	"go-image-forensics/internal/engine"
	apperrors "go-image-forensics/internal/errors"
	"go-image-forensics/pkg/models"
)

type stubFetcher struct {
	data  []byte
	err   error
	calls int
}

func (f *stubFetcher) Fetch(_ context.Context, _ string) ([]byte, error) {
	f.calls++
	return f.data, f.err
}

func testJPEG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 128, 128))
	state := uint32(7)
	for y := 0; y < 128; y++ {
		for x := 0; x < 128; x++ {
			state = state*1664525 + 1013904223
			v := uint8(state >> 24)
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}))
	return buf.Bytes()
}

func newTestService(t *testing.T, fetcher *stubFetcher) ForensicsService {
	t.Helper()
	opts := engine.DefaultOptions().WithParams(detect.DefaultParams())
	return NewForensicsService(fetcher, nil, opts, nil, nil)
}

func TestAnalyzeURLDefaultBattery(t *testing.T) {
	fetcher := &stubFetcher{data: testJPEG(t)}
	svc := newTestService(t, fetcher)

	resp, err := svc.AnalyzeURL(context.Background(), &models.AnalysisRequest{
		URL: "https://example.com/image.jpg",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://example.com/image.jpg", resp.ImageURL)
	assert.Len(t, resp.Detectors, 8)
	assert.NotEmpty(t, resp.Verdict)
	for _, d := range resp.Detectors {
		assert.False(t, d.Failed, "detector %s failed: %s", d.Name, d.Error)
		assert.GreaterOrEqual(t, d.Score, 0.0)
		assert.LessOrEqual(t, d.Score, 100.0)
		assert.Empty(t, d.Maps, "maps were not requested")
	}
	assert.Equal(t, 1, fetcher.calls)
}

func TestAnalyzeURLDetectorSubset(t *testing.T) {
	svc := newTestService(t, &stubFetcher{data: testJPEG(t)})

	resp, err := svc.AnalyzeURL(context.Background(), &models.AnalysisRequest{
		URL:       "https://example.com/image.jpg",
		Detectors: []string{"noise", "contrast"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Detectors, 2)
	assert.Equal(t, "noise", resp.Detectors[0].Name)
	assert.Equal(t, "contrast", resp.Detectors[1].Name)
}

func TestAnalyzeURLUnknownDetector(t *testing.T) {
	svc := newTestService(t, &stubFetcher{data: testJPEG(t)})

	_, err := svc.AnalyzeURL(context.Background(), &models.AnalysisRequest{
		URL:       "https://example.com/image.jpg",
		Detectors: []string{"palmistry"},
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInput))
}

func TestAnalyzeURLIncludeMaps(t *testing.T) {
	svc := newTestService(t, &stubFetcher{data: testJPEG(t)})

	resp, err := svc.AnalyzeURL(context.Background(), &models.AnalysisRequest{
		URL:         "https://example.com/image.jpg",
		Detectors:   []string{"contrast"},
		IncludeMaps: true,
	})
	require.NoError(t, err)
	require.Len(t, resp.Detectors, 1)

	maps := resp.Detectors[0].Maps
	require.Contains(t, maps, "contrast_map")
	decoded, err := base64.StdEncoding.DecodeString(maps["contrast_map"])
	require.NoError(t, err)
	_, err = png.Decode(bytes.NewReader(decoded))
	require.NoError(t, err)
}

func TestAnalyzeURLParamOverrides(t *testing.T) {
	svc := newTestService(t, &stubFetcher{data: testJPEG(t)})

	resp, err := svc.AnalyzeURL(context.Background(), &models.AnalysisRequest{
		URL:       "https://example.com/image.jpg",
		Detectors: []string{"ela"},
		Params:    &models.DetectorOverrides{ELAQuality: 80},
	})
	require.NoError(t, err)
	require.Len(t, resp.Detectors, 1)
	assert.EqualValues(t, 80, resp.Detectors[0].Extras["quality"])
}

func TestAnalyzeURLRejectsBadScheme(t *testing.T) {
	fetcher := &stubFetcher{data: testJPEG(t)}
	svc := newTestService(t, fetcher)

	_, err := svc.AnalyzeURL(context.Background(), &models.AnalysisRequest{
		URL: "ftp://example.com/image.jpg",
	})
	require.Error(t, err)
	assert.True(t, apperrors.IsType(err, apperrors.ErrorTypeInput))
	assert.Zero(t, fetcher.calls)
}

func TestAnalyzeURLUndecodableBytes(t *testing.T) {
	svc := newTestService(t, &stubFetcher{data: []byte("not an image")})

	_, err := svc.AnalyzeURL(context.Background(), &models.AnalysisRequest{
		URL: "https://example.com/image.jpg",
	})
	require.Error(t, err)
}

func TestBlobFetcherRouting(t *testing.T) {
	plain := &stubFetcher{data: testJPEG(t)}
	blob := &stubFetcher{data: testJPEG(t)}
	opts := engine.DefaultOptions().WithParams(detect.DefaultParams())
	svc := NewForensicsService(plain, blob, opts, nil, nil)

	_, err := svc.AnalyzeURL(context.Background(), &models.AnalysisRequest{
		URL: "https://myaccount.blob.core.windows.net/images?blob=a.jpg",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, blob.calls)
	assert.Zero(t, plain.calls)
}
