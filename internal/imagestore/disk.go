package imagestore

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Disk stores blobs under a local directory served as static files.
type Disk struct {
	root    string
	baseURL string
}

func NewDisk(root, baseURL string) (*Disk, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create image dir: %w", err)
	}
	return &Disk{root: root, baseURL: strings.TrimSuffix(baseURL, "/")}, nil
}

// Root is the directory blobs live in, for the static file route.
func (d *Disk) Root() string { return d.root }

func (d *Disk) Save(_ context.Context, name, _ string, data []byte) (string, error) {
	path := filepath.Join(d.root, filepath.Base(name))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write image: %w", err)
	}
	return d.URL(name), nil
}

func (d *Disk) Remove(_ context.Context, name string) error {
	err := os.Remove(filepath.Join(d.root, filepath.Base(name)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove image: %w", err)
	}
	return nil
}

func (d *Disk) URL(name string) string {
	return d.baseURL + "/" + filepath.Base(name)
}
