package cli

import (
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"

	"github.com/gabriel-vasile/mimetype"

	"docrepo/internal/domain"
	"docrepo/internal/export"
)

// fileFromPath prepares a local file for upload. The file is reopened on
// every attempt so a failed upload can be retried.
func fileFromPath(path string) (*domain.FileUpload, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%s is a directory", path)
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		mt, err := mimetype.DetectFile(path)
		if err != nil {
			return nil, fmt.Errorf("detecting type of %s: %w", path, err)
		}
		contentType = mt.String()
	}

	return &domain.FileUpload{
		Name:        filepath.Base(path),
		ContentType: contentType,
		Open: func() (io.ReadCloser, error) {
			return os.Open(path)
		},
	}, nil
}

// saveDownload writes dl into dir under a sanitized name and returns the
// path written.
func saveDownload(dir string, dl *domain.Download) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}
	path := filepath.Join(dir, export.SafeDownloadName(dl.Filename))
	if err := os.WriteFile(path, dl.Body, 0o644); err != nil {
		return "", fmt.Errorf("writing %s: %w", path, err)
	}
	return path, nil
}
