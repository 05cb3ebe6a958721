// Package stream provides JSONL streaming to/from zip archives.
package stream

import (
	"archive/zip"
	"encoding/json"
	"io"
)

// Writer streams entities as JSONL to a zip archive.
type Writer struct {
	enc   *json.Encoder
	count int
}

// NewWriter creates a JSONL writer for a path within the zip. Every byte
// written is also copied to tee when it is non-nil (checksums).
func NewWriter(zw *zip.Writer, path string, tee io.Writer) (*Writer, error) {
	w, err := zw.Create(path)
	if err != nil {
		return nil, err
	}
	if tee != nil {
		w = io.MultiWriter(w, tee)
	}
	return &Writer{enc: json.NewEncoder(w)}, nil
}

// Write encodes a single entity as one line.
func (w *Writer) Write(entity any) error {
	// Encoder.Encode terminates each value with '\n'.
	if err := w.enc.Encode(entity); err != nil {
		return err
	}
	w.count++
	return nil
}

// Count returns entities written so far.
func (w *Writer) Count() int {
	return w.count
}
