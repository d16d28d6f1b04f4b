package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Object is the result of a successful upload.
type Object struct {
	URL     string
	AssetID string
}

// Storage is the object storage contract used by the intake pipeline.
type Storage interface {
	Upload(ctx context.Context, r io.Reader, folder, filename string) (Object, error)
	Delete(ctx context.Context, assetID string) error
}

// Disk stores uploads on the local filesystem under Root and serves them
// under BaseURL via a static route.
type Disk struct {
	Root    string
	BaseURL string
}

// NewDisk creates the root directory if needed.
func NewDisk(root, baseURL string) (*Disk, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload root: %w", err)
	}
	return &Disk{Root: root, BaseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Upload writes the reader's content to <root>/<folder>/<uuid><ext>.
// The asset ID is the path relative to the root.
func (d *Disk) Upload(ctx context.Context, r io.Reader, folder, filename string) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}

	ext := filepath.Ext(filename)
	assetID := path.Join(sanitize(folder), uuid.NewString()+ext)

	dst := filepath.Join(d.Root, filepath.FromSlash(assetID))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return Object{}, fmt.Errorf("failed to create upload folder: %w", err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return Object{}, fmt.Errorf("failed to create upload file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(dst)
		return Object{}, fmt.Errorf("failed to write upload: %w", err)
	}

	return Object{
		URL:     d.BaseURL + "/" + assetID,
		AssetID: assetID,
	}, nil
}

// Delete removes a stored asset. Missing assets are not an error.
func (d *Disk) Delete(ctx context.Context, assetID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(d.Root, filepath.FromSlash(sanitize(assetID))))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// sanitize prevents path traversal out of the storage root.
func sanitize(p string) string {
	return strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(p, "\\", "/")), "/")
}
