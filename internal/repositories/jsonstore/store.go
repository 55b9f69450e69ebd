// Package jsonstore implements the repository ports over structured JSON
// files. Reads are served from an in-memory index; every mutating call
// rewrites the full snapshot to disk before returning success, so a crash
// mid-operation loses at most the in-flight call and never corrupts prior
// state. The store assumes single-session access and takes no locks.
package jsonstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// readSnapshot decodes the JSON file at path into v. The caller distinguishes
// a missing file (first run) from a corrupt one via os.IsNotExist.
func readSnapshot(path string, v any) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := json.NewDecoder(f).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return nil
}

// writeSnapshot serializes v to path atomically: the snapshot is written to a
// temporary file first and then renamed over the target, so an interrupted
// write leaves the previous snapshot intact.
func writeSnapshot(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", tmp, err)
	}
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		f.Close()
		return fmt.Errorf("failed to encode %s: %w", tmp, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp, err)
	}
	return os.Rename(tmp, path)
}
