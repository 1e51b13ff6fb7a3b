package service

import (
	"fmt"
	"os"
	"path/filepath"
)

// UploadProvisioner creates upload folder trees on the local filesystem
type UploadProvisioner struct {
	basePath string
}

// NewUploadProvisioner creates a provisioner rooted at basePath
func NewUploadProvisioner(basePath string) *UploadProvisioner {
	return &UploadProvisioner{basePath: basePath}
}

// ProvisionEventFolders creates the upload tree for an event:
// <base>/events/<slug>/{photos,videos,docs}
func (p *UploadProvisioner) ProvisionEventFolders(slug string) error {
	for _, sub := range []string{"photos", "videos", "docs"} {
		dir := filepath.Join(p.basePath, "events", slug, sub)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	return nil
}

// EventFolderPath returns the upload root for an event
func (p *UploadProvisioner) EventFolderPath(slug string) string {
	return filepath.Join(p.basePath, "events", slug)
}
