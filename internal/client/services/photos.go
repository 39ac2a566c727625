package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// FilePhotoResolver resolves a record's photo reference as a path on the
// local filesystem. Offline records keep the path the user submitted from;
// the bytes are re-read at replay time.
type FilePhotoResolver struct{}

func (FilePhotoResolver) Resolve(_ context.Context, ref string) ([]byte, string, error) {
	if ref == "" {
		return nil, "", fmt.Errorf("record has no photo reference")
	}
	data, err := os.ReadFile(ref)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read photo %s: %w", ref, err)
	}
	return data, filepath.Base(ref), nil
}
