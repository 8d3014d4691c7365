package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"ReviewPulse/internal/domain"
	"ReviewPulse/internal/ports"
)

const jsPrefix = "window.restaurantData = "

// FileStore writes the report array to a single file and reads it back for
// the serving boundary.
type FileStore struct {
	path   string
	format string
}

var _ ports.ReportSink = (*FileStore)(nil)

// NewFileStore targets path; format is "json" or "js".
func NewFileStore(path, format string) *FileStore {
	return &FileStore{path: path, format: format}
}

// Write replaces the output file atomically via a temp file and rename.
func (s *FileStore) Write(ctx context.Context, reports []domain.RestaurantReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := Encode(reports, s.format)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".reports-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(payload); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		cleanup()
		return fmt.Errorf("rename output: %w", err)
	}
	return nil
}

// LoadReports reads a file previously produced by Write in either format.
func (s *FileStore) LoadReports(ctx context.Context) ([]domain.RestaurantReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read reports: %w", err)
	}
	return Decode(raw)
}

// Encode renders reports as indented JSON, or as a JS assignment for "js".
// Non-ASCII text is written as-is.
func Encode(reports []domain.RestaurantReport, format string) ([]byte, error) {
	if reports == nil {
		reports = []domain.RestaurantReport{}
	}

	var buf bytes.Buffer
	if format == "js" {
		buf.WriteString(jsPrefix)
	}
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(reports); err != nil {
		return nil, fmt.Errorf("encode reports: %w", err)
	}
	if format == "js" {
		buf.Truncate(buf.Len() - 1)
		buf.WriteString(";\n")
	}
	return buf.Bytes(), nil
}

// Decode accepts either the JSON or the JS rendering.
func Decode(raw []byte) ([]domain.RestaurantReport, error) {
	raw = bytes.TrimSpace(raw)
	raw = bytes.TrimPrefix(raw, []byte(jsPrefix))
	raw = bytes.TrimSuffix(raw, []byte(";"))

	var reports []domain.RestaurantReport
	if err := json.Unmarshal(raw, &reports); err != nil {
		return nil, fmt.Errorf("decode reports: %w", err)
	}
	return reports, nil
}
