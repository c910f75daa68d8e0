// ABOUTME: Atomic full-document write of the gateway configuration
// ABOUTME: Writes to a temp file in the same directory then renames over

package config

import (
	"fmt"
	"os"
	"path/filepath"
)

// WriteFile replaces the document at path with cfg. The write is atomic:
// either the old document or the complete new one is on disk, never a
// partial file. A write failure is fatal to the run and is returned as-is.
func WriteFile(path string, cfg *Config) error {
	data, err := cfg.Encode()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, DefaultFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp config file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing config: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp config file: %w", err)
	}

	// The document carries credentials; keep it operator-only.
	if err := os.Chmod(tmpPath, 0600); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting config permissions: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replacing config file: %w", err)
	}

	return nil
}

// DefaultPath returns the default location of the gateway configuration,
// ~/.config/coven/gateway.yaml, or the COVEN_CONFIG override.
func DefaultPath() string {
	if p := os.Getenv("COVEN_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultFileName
	}
	return filepath.Join(home, DefaultConfigDir, DefaultFileName)
}
