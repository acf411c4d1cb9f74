// Package fileutil holds the small file primitives shared by the JSON-backed
// stores: lock-guarded read-modify-write and atomic JSON replacement.
package fileutil

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
)

const lockRetryDelay = 25 * time.Millisecond

// ReadJSON decodes the JSON document at path into v. It reports false without
// error when the file is missing or empty.
func ReadJSON(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return true, nil
}

// MarshalIndented renders v as two-space indented JSON without HTML escaping.
// Map keys are emitted in sorted order so equal content yields equal bytes.
func MarshalIndented(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteJSONAtomic writes v to path through a temp file and rename so readers
// never observe a partial document.
func WriteJSONAtomic(path string, v any) error {
	data, err := MarshalIndented(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	return WriteFileAtomic(path, data)
}

// WriteFileAtomic writes data to a temp file beside path and renames it into
// place, creating parent directories as needed.
func WriteFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}

// WithLock runs fn while holding an exclusive advisory lock on path + ".lock".
// Separate processes updating the same file serialize through this lock.
func WithLock(ctx context.Context, path string, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}
	lock := flock.New(path + ".lock")
	locked, err := lock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("acquire lock on %s: %w", filepath.Base(path), err)
	}
	if !locked {
		return fmt.Errorf("acquire lock on %s: not acquired", filepath.Base(path))
	}
	defer lock.Unlock()
	return fn()
}

// UpdateJSON performs a locked read-modify-write of the JSON document at path.
// mutate receives the decoded value (zero value when the file is missing) and
// reports whether anything changed; unchanged documents are not rewritten.
func UpdateJSON[T any](ctx context.Context, path string, mutate func(*T) (bool, error)) error {
	return WithLock(ctx, path, func() error {
		var doc T
		if _, err := ReadJSON(path, &doc); err != nil {
			return err
		}
		changed, err := mutate(&doc)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		return WriteJSONAtomic(path, doc)
	})
}
