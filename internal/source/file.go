package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/ccmonitor/internal/model"
)

// RefreshMarker is written next to the snapshot file to ask the collector
// for an immediate re-collection.
const RefreshMarker = "refresh-request"

// File reads snapshots from the JSON file written by the collector.
type File struct {
	Path string
	// RequestRefresh makes Refresh touch RefreshMarker before re-reading.
	RequestRefresh bool

	now func() time.Time
}

// NewFile returns a file source for path.
func NewFile(path string) *File {
	return &File{Path: path, RequestRefresh: true, now: time.Now}
}

// Snapshot reads and decodes the snapshot file.
func (f *File) Snapshot(ctx context.Context) (*model.UsageSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	fh, err := os.Open(f.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s does not exist", ErrNoSnapshot, f.Path)
		}
		return nil, fmt.Errorf("source: opening snapshot: %w", err)
	}
	defer func() { _ = fh.Close() }()

	s, err := Decode(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return s, nil
}

// Refresh requests a re-collection, then re-reads the file. The collector
// picks up the marker asynchronously, so the returned snapshot may predate it.
func (f *File) Refresh(ctx context.Context) (*model.UsageSnapshot, error) {
	if f.RequestRefresh {
		if err := f.touchMarker(); err != nil {
			return nil, err
		}
	}
	return f.Snapshot(ctx)
}

// MarkerPath returns where the refresh marker is written.
func (f *File) MarkerPath() string {
	return filepath.Join(filepath.Dir(f.Path), RefreshMarker)
}

func (f *File) touchMarker() error {
	now := time.Now
	if f.now != nil {
		now = f.now
	}
	stamp := now().UTC().Format(time.RFC3339Nano) + "\n"
	if err := os.WriteFile(f.MarkerPath(), []byte(stamp), 0o600); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: directory of %s does not exist", ErrNoSnapshot, f.Path)
		}
		return fmt.Errorf("source: writing refresh marker: %w", err)
	}
	return nil
}
