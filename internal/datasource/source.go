// Package datasource decides where taxon data comes from and provides the
// persistent response cache for service fetches.
package datasource

import (
	"fmt"
	"os"
	"time"

	"github.com/vanderheijden86/orthoweb/pkg/config"
	"github.com/vanderheijden86/orthoweb/pkg/debug"
)

// SourceType identifies the type of data source
type SourceType string

const (
	// SourceTypeRemote is the OrthoMCL data service
	SourceTypeRemote SourceType = "remote"
	// SourceTypeTaxonFile is a local /data-summary/taxons JSON dump
	SourceTypeTaxonFile SourceType = "taxon_file"
)

// Source represents where taxon data is read from
type Source struct {
	// Type identifies the source type
	Type SourceType `json:"type"`
	// Path is the local taxon file (taxon_file sources only)
	Path string `json:"path,omitempty"`
	// BaseURL is the service root (remote sources only)
	BaseURL string `json:"base_url,omitempty"`
	// ModTime is the last modification time of the local file
	ModTime time.Time `json:"mod_time,omitempty"`
	// Size is the local file size in bytes
	Size int64 `json:"size,omitempty"`
}

// String returns a human-readable description of the source
func (s Source) String() string {
	if s.Type == SourceTypeTaxonFile {
		return fmt.Sprintf("%s (%s, mod=%s, %d bytes)", s.Path, s.Type, s.ModTime.Format(time.RFC3339), s.Size)
	}
	return fmt.Sprintf("%s (%s)", s.BaseURL, s.Type)
}

// Local reports whether the source is a file on disk.
func (s Source) Local() bool { return s.Type == SourceTypeTaxonFile }

// Refresh re-reads the file's modification time and size. Remote sources
// and files that can no longer be read are returned unchanged.
func (s Source) Refresh() Source {
	if !s.Local() {
		return s
	}
	info, err := os.Stat(s.Path)
	if err != nil {
		debug.Log("datasource: refresh %s: %v", s.Path, err)
		return s
	}
	s.ModTime = info.ModTime()
	s.Size = info.Size()
	return s
}

// Detect picks the configured taxon file when it exists and is a regular
// file, and the remote service otherwise.
func Detect(cfg config.Config) Source {
	remote := Source{Type: SourceTypeRemote, BaseURL: cfg.Service.BaseURL}
	if cfg.TaxonFile == "" {
		return remote
	}
	info, err := os.Stat(cfg.TaxonFile)
	if err != nil {
		debug.Log("datasource: taxon file unusable, falling back to remote: %v", err)
		return remote
	}
	if !info.Mode().IsRegular() {
		debug.Log("datasource: taxon file %s is not a regular file", cfg.TaxonFile)
		return remote
	}
	return Source{
		Type:    SourceTypeTaxonFile,
		Path:    cfg.TaxonFile,
		ModTime: info.ModTime(),
		Size:    info.Size(),
	}
}
