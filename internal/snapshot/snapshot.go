// Package snapshot persists resolved plane datasets as gzipped gob
// files, the hand-off format between external loaders and the
// postprocessing core.
package snapshot

import (
	"compress/gzip"
	"encoding/gob"
	"fmt"
	"os"

	"github.com/windfield-data/planebox/internal/plane"
)

// Save writes the dataset to path as gzipped gob.
func Save(path string, ds *plane.Dataset) error {
	if err := ds.Validate(); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshot: create %s: %w", path, err)
	}
	zw := gzip.NewWriter(f)
	if err := gob.NewEncoder(zw).Encode(ds); err != nil {
		zw.Close()
		f.Close()
		os.Remove(path)
		return fmt.Errorf("snapshot: encode %s: %w", path, err)
	}
	if err := zw.Close(); err != nil {
		f.Close()
		os.Remove(path)
		return fmt.Errorf("snapshot: close %s: %w", path, err)
	}
	return f.Close()
}

// Load reads a dataset snapshot and validates it before returning.
func Load(path string) (*plane.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("snapshot: open %s: %w", path, err)
	}
	defer f.Close()
	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("snapshot: %s is not gzipped gob: %w", path, err)
	}
	defer zr.Close()
	var ds plane.Dataset
	if err := gob.NewDecoder(zr).Decode(&ds); err != nil {
		return nil, fmt.Errorf("snapshot: decode %s: %w", path, err)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return &ds, nil
}
