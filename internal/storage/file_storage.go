package storage

import (
	"context"
	"fmt"
	"os"

	apperrors "go-image-forensics/internal/errors"
)

// FileFetcher reads image bytes from the local filesystem. Used by the
// command line tool, where refs are plain paths.
type FileFetcher struct {
	maxBytes int64
}

// NewFileFetcher creates a file fetcher. maxBytes caps the file size;
// zero applies a 50 MiB default.
func NewFileFetcher(maxBytes int64) *FileFetcher {
	if maxBytes <= 0 {
		maxBytes = 50 << 20
	}
	return &FileFetcher{maxBytes: maxBytes}
}

func (f *FileFetcher) Fetch(ctx context.Context, ref string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, apperrors.NewTimeoutError("image fetch canceled", err)
	}

	info, err := os.Stat(ref)
	if err != nil {
		return nil, apperrors.NewInputError("image file not found", err)
	}
	if info.Size() > f.maxBytes {
		return nil, apperrors.NewInputError(
			fmt.Sprintf("image exceeds the %d byte limit", f.maxBytes), nil)
	}

	data, err := os.ReadFile(ref)
	if err != nil {
		return nil, apperrors.NewInputError("image file could not be read", err)
	}
	return data, nil
}
