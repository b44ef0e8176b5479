package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	apperrors "go-image-forensics/internal/errors"
)

func TestFileFetcher(t *testing.T) {
	payload := []byte("image bytes")
	path := filepath.Join(t.TempDir(), "sample.jpg")
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	data, err := NewFileFetcher(0).Fetch(context.Background(), path)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Error("Expected payload returned unchanged")
	}
}

func TestFileFetcherMissingFile(t *testing.T) {
	_, err := NewFileFetcher(0).Fetch(context.Background(), filepath.Join(t.TempDir(), "absent.jpg"))
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeInput) {
		t.Errorf("Expected input error type, got %v", err)
	}
}

func TestFileFetcherSizeLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "big.jpg")
	if err := os.WriteFile(path, make([]byte, 2048), 0o644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	_, err := NewFileFetcher(1024).Fetch(context.Background(), path)
	if err == nil {
		t.Fatal("Expected error for oversized file")
	}
	if !apperrors.IsType(err, apperrors.ErrorTypeInput) {
		t.Errorf("Expected input error type, got %v", err)
	}
}
