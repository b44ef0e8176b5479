package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	apperrors "go-image-forensics/internal/errors"
)

// ByteFetcher retrieves the raw encoded bytes of an image. Detection
// works on decoded pixels, but error-level analysis also needs the
// original bytes, so fetchers never decode.
type ByteFetcher interface {
	Fetch(ctx context.Context, ref string) ([]byte, error)
}

// HTTPByteFetcher downloads image bytes over HTTP with bounded retries.
type HTTPByteFetcher struct {
	client   *http.Client
	maxBytes int64
}

// NewHTTPByteFetcher creates an HTTP fetcher. maxBytes caps the
// response body; zero applies a 50 MiB default.
func NewHTTPByteFetcher(maxBytes int64) *HTTPByteFetcher {
	if maxBytes <= 0 {
		maxBytes = 50 << 20
	}

	transport := &http.Transport{
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   2,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &HTTPByteFetcher{
		client: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("too many redirects (limit: 3)")
				}
				return nil
			},
		},
		maxBytes: maxBytes,
	}
}

// Fetch downloads ref with up to three attempts. Transport failures and
// 5xx responses are retried with linear backoff; 4xx responses fail
// immediately.
func (h *HTTPByteFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, ref, nil)
	if err != nil {
		return nil, apperrors.NewInputError("invalid image URL", err)
	}
	req.Header.Set("Accept", "image/jpeg, image/png, image/gif, */*")
	req.Header.Set("User-Agent", "Image-Forensics/1.0")

	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, apperrors.NewTimeoutError("image fetch canceled", ctx.Err())
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		resp, err := h.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		data, status, err := h.readBody(resp)
		switch {
		case apperrors.IsType(err, apperrors.ErrorTypeInput):
			return nil, err
		case err != nil:
			lastErr = err
		case status == http.StatusOK:
			return data, nil
		case status >= 400 && status < 500:
			return nil, apperrors.NewInputError(
				fmt.Sprintf("image fetch rejected: status %d", status), nil)
		default:
			lastErr = fmt.Errorf("server error: status code %d", status)
		}
	}
	return nil, apperrors.NewNetworkError("failed to fetch image after 3 attempts", lastErr)
}

func (h *HTTPByteFetcher) readBody(resp *http.Response) ([]byte, int, error) {
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, nil
	}

	limited := io.LimitReader(resp.Body, h.maxBytes+1)
	data, err := io.ReadAll(limited)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	if int64(len(data)) > h.maxBytes {
		return nil, resp.StatusCode, apperrors.NewInputError(
			fmt.Sprintf("image exceeds the %d byte limit", h.maxBytes), nil)
	}
	return data, resp.StatusCode, nil
}
