// Package collaborators contains the narrow, mostly out-of-scope external
// contracts this system depends on: directory scanning, command-file
// parsing, public IP discovery, and process-tree killing. Each gets a
// minimal concrete adapter so the rest of the system can be exercised end
// to end; none carries extra business rules beyond its contract.
package collaborators

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hackerjacks/gradecluster/internal/envelope"
)

// FileCrawler enumerates subdirectories and reads/writes files as
// (relative_path, base64_payload) pairs.
type FileCrawler interface {
	// Subdirs lists the immediate subdirectory names of dir.
	Subdirs(dir string) ([]string, error)
	// ReadAll reads every regular file directly under dir (non-recursive)
	// as base64-encoded payloads keyed by their file name.
	ReadAll(dir string) ([]envelope.FileEntry, error)
	// WriteAll materializes every entry under dir, creating dir if needed.
	WriteAll(dir string, entries []envelope.FileEntry) error
}

// DirFileCrawler is the default FileCrawler backed directly by the local
// filesystem.
type DirFileCrawler struct{}

func NewDirFileCrawler() *DirFileCrawler { return &DirFileCrawler{} }

func (DirFileCrawler) Subdirs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("collaborators: list %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func (DirFileCrawler) ReadAll(dir string) ([]envelope.FileEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("collaborators: list %s: %w", dir, err)
	}

	var out []envelope.FileEntry
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name())
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("collaborators: read %s: %w", path, err)
		}
		out = append(out, envelope.FileEntry{
			Path: e.Name(),
			B64:  base64.StdEncoding.EncodeToString(b),
		})
	}
	return out, nil
}

func (DirFileCrawler) WriteAll(dir string, entries []envelope.FileEntry) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("collaborators: mkdir %s: %w", dir, err)
	}
	for _, e := range entries {
		raw, err := base64.StdEncoding.DecodeString(e.B64)
		if err != nil {
			return fmt.Errorf("collaborators: decode %s: %w", e.Path, err)
		}
		dest := filepath.Join(dir, e.Path)
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("collaborators: mkdir %s: %w", filepath.Dir(dest), err)
		}
		if err := os.WriteFile(dest, raw, 0o644); err != nil {
			return fmt.Errorf("collaborators: write %s: %w", dest, err)
		}
	}
	return nil
}
