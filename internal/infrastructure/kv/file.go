package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/elobenin/rental-portal/internal/pkg/metrics"
)

// File keeps all keys of one profile in a single JSON object on disk, the
// way a browser keeps local storage per profile. The file is written 0600
// since session records are sensitive.
type File struct {
	path string
	log  zerolog.Logger

	mu sync.Mutex
}

// NewFile returns a medium backed by path. The file is created lazily.
func NewFile(path string, log zerolog.Logger) (*File, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("storage file path is required")
	}
	return &File{path: path, log: log}, nil
}

// Path returns the backing file.
func (f *File) Path() string {
	return f.path
}

func (f *File) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.readLocked()
	if err != nil {
		return "", false, err
	}
	v, ok := values[key]
	return v, ok, nil
}

func (f *File) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.readLocked()
	if err != nil {
		return err
	}
	values[key] = value
	return f.writeLocked(values)
}

func (f *File) Remove(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	values, err := f.readLocked()
	if err != nil {
		return err
	}
	if _, ok := values[key]; !ok {
		return nil
	}
	delete(values, key)
	return f.writeLocked(values)
}

// readLocked treats a missing, empty or undecodable file as empty storage.
// An undecodable file is moved aside first so the next write cannot destroy
// it.
func (f *File) readLocked() (map[string]string, error) {
	values := make(map[string]string)
	b, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return values, nil
		}
		return nil, fmt.Errorf("read storage file: %w", err)
	}
	if len(b) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(b, &values); err != nil {
		f.quarantineLocked(err)
		return make(map[string]string), nil
	}
	return values, nil
}

func (f *File) quarantineLocked(cause error) {
	metrics.SessionStoreDiscardsTotal.Inc()
	aside := f.path + ".corrupt"
	if err := os.Rename(f.path, aside); err != nil {
		f.log.Warn().Err(cause).AnErr("rename_error", err).Str("path", f.path).
			Msg("storage file is unreadable and could not be moved aside")
		return
	}
	f.log.Warn().Err(cause).Str("path", f.path).Str("moved_to", aside).
		Msg("storage file is unreadable, treating it as empty")
}

func (f *File) writeLocked(values map[string]string) error {
	b, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return fmt.Errorf("encode storage file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("mkdir storage dir: %w", err)
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return fmt.Errorf("write storage file: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace storage file: %w", err)
	}
	return nil
}
