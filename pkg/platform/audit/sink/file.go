package sink

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"sync"

	audit "navbat/pkg/platform/audit"
	"navbat/pkg/platform/sentinel"
)

var (
	_ audit.Sink   = (*FileSink)(nil)
	_ audit.Reader = (*FileSink)(nil)
)

// FileSink appends records as JSON lines to a file opened with O_APPEND.
// Each record is encoded and synced under the mutex, so lines never interleave.
type FileSink struct {
	mu      sync.Mutex
	name    string
	path    string
	file    *os.File
	encoder *json.Encoder
	closed  bool
}

// NewFileSink opens (or creates) path for appending.
func NewFileSink(name, path string) (*FileSink, error) {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening audit file: %w", err)
	}
	if name == "" {
		name = "file"
	}
	return &FileSink{
		name:    name,
		path:    path,
		file:    file,
		encoder: json.NewEncoder(file),
	}, nil
}

func (f *FileSink) Append(_ context.Context, record audit.Record) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return sentinel.ErrClosed
	}
	if err := f.encoder.Encode(record); err != nil {
		return fmt.Errorf("writing audit record: %w", err)
	}
	if err := f.file.Sync(); err != nil {
		return fmt.Errorf("syncing audit file: %w", err)
	}
	return nil
}

// ListRecent scans the file and returns the last limit records, newest first.
// Lines that fail to decode are skipped.
func (f *FileSink) ListRecent(_ context.Context, limit int) ([]audit.Record, error) {
	if limit <= 0 {
		return []audit.Record{}, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	in, err := os.Open(f.path)
	if err != nil {
		return nil, fmt.Errorf("opening audit file: %w", err)
	}
	defer in.Close()

	ring := make([]audit.Record, 0, limit)
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		var record audit.Record
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			continue
		}
		if len(ring) == limit {
			ring = ring[1:]
		}
		ring = append(ring, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading audit file: %w", err)
	}
	slices.Reverse(ring)
	return ring, nil
}

func (f *FileSink) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	return f.file.Close()
}

func (f *FileSink) Name() string { return f.name }
