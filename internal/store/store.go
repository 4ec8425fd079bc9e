// Package store manages the temporary files behind the upload/clean/download
// cycle. Every uploaded CSV gets a UUID identity and a file under the store
// directory; cleaned output and the cleaning report attach to the same entry.
// Entries expire after a configurable window and a background sweeper removes
// them, so the store never needs manual cleanup in normal operation.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"csvcleaner/internal/clean"
)

// ErrNotFound is returned for unknown or already-swept file IDs.
var ErrNotFound = errors.New("file not found or expired")

// ErrNotCleaned is returned when a download is requested before the file has
// been cleaned.
var ErrNotCleaned = errors.New("file has not been cleaned yet")

// Entry is the metadata the store keeps for one uploaded file. The Report is
// nil until the file has been cleaned.
type Entry struct {
	ID           uuid.UUID     `json:"file_id"`
	Name         string        `json:"filename"`
	Size         int64         `json:"size_bytes"`
	UploadedAt   time.Time     `json:"uploaded_at"`
	ExpiresAt    time.Time     `json:"expires_at"`
	Cleaned      bool          `json:"cleaned"`
	Report       *clean.Report `json:"-"`

	rawPath     string
	cleanedPath string
}

// Store is a concurrency-safe file store with time-based expiration.
type Store struct {
	dir        string
	expiration time.Duration

	mu      sync.RWMutex
	entries map[uuid.UUID]*Entry
}

// New creates the store directory if needed and returns an empty store.
// Files left over from a previous process are removed so stale data never
// outlives its metadata.
func New(dir string, expiration time.Duration) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}
	s := &Store{
		dir:        dir,
		expiration: expiration,
		entries:    make(map[uuid.UUID]*Entry),
	}
	if n := s.removeOrphans(); n > 0 {
		slog.Info("removed stale files from previous run", "dir", dir, "count", n)
	}
	return s, nil
}

// Put writes data to a new UUID-named file and registers the entry.
func (s *Store) Put(name string, data []byte) (Entry, error) {
	id := uuid.New()
	path := filepath.Join(s.dir, id.String()+".csv")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return Entry{}, fmt.Errorf("write upload: %w", err)
	}

	now := time.Now()
	e := &Entry{
		ID:         id,
		Name:       name,
		Size:       int64(len(data)),
		UploadedAt: now,
		ExpiresAt:  now.Add(s.expiration),
		rawPath:    path,
	}

	s.mu.Lock()
	s.entries[id] = e
	s.mu.Unlock()

	slog.Info("file stored", "file_id", id, "filename", name, "size", e.Size)
	return *e, nil
}

// Get looks up an entry by its string ID. The ID must parse as a UUID, which
// also keeps request paths from ever reaching the filesystem as names.
func (s *Store) Get(id string) (Entry, error) {
	return s.lookup(id)
}

// ReadRaw returns the original uploaded bytes.
func (s *Store) ReadRaw(id string) ([]byte, Entry, error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, Entry{}, err
	}
	data, err := os.ReadFile(e.rawPath)
	if err != nil {
		return nil, Entry{}, fmt.Errorf("read upload: %w", err)
	}
	return data, e, nil
}

// SaveCleaned writes the cleaned CSV next to the original and attaches the
// report. The expiration window restarts so a clean is always downloadable.
func (s *Store) SaveCleaned(id string, data []byte, report *clean.Report) (Entry, error) {
	e, err := s.lookup(id)
	if err != nil {
		return Entry{}, err
	}

	path := filepath.Join(s.dir, e.ID.String()+".cleaned.csv")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return Entry{}, fmt.Errorf("write cleaned file: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	live, ok := s.entries[e.ID]
	if !ok {
		// Swept between the lookup and the file write.
		os.Remove(path)
		return Entry{}, ErrNotFound
	}
	live.cleanedPath = path
	live.Cleaned = true
	live.Report = report
	live.ExpiresAt = time.Now().Add(s.expiration)
	return *live, nil
}

// ReadCleaned returns the cleaned bytes, or ErrNotCleaned when the file was
// uploaded but never run through the pipeline.
func (s *Store) ReadCleaned(id string) ([]byte, Entry, error) {
	e, err := s.lookup(id)
	if err != nil {
		return nil, Entry{}, err
	}
	if !e.Cleaned {
		return nil, Entry{}, ErrNotCleaned
	}
	data, err := os.ReadFile(e.cleanedPath)
	if err != nil {
		return nil, Entry{}, fmt.Errorf("read cleaned file: %w", err)
	}
	return data, e, nil
}

// List returns the live entries, newest upload first.
func (s *Store) List() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := time.Now()
	out := make([]Entry, 0, len(s.entries))
	for _, e := range s.entries {
		if now.Before(e.ExpiresAt) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})
	return out
}

// Delete removes an entry and its files.
func (s *Store) Delete(id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return ErrNotFound
	}

	s.mu.Lock()
	e, ok := s.entries[parsed]
	if ok {
		delete(s.entries, parsed)
	}
	s.mu.Unlock()

	if !ok {
		return ErrNotFound
	}
	removeEntryFiles(e)
	return nil
}

// Sweep removes every expired entry and returns how many were removed.
func (s *Store) Sweep() int {
	now := time.Now()

	s.mu.Lock()
	var expired []*Entry
	for id, e := range s.entries {
		if !now.Before(e.ExpiresAt) {
			expired = append(expired, e)
			delete(s.entries, id)
		}
	}
	s.mu.Unlock()

	for _, e := range expired {
		removeEntryFiles(e)
	}
	if len(expired) > 0 {
		slog.Info("swept expired files", "count", len(expired))
	}
	return len(expired)
}

// StartSweeper runs Sweep immediately, then every interval, until the context
// is cancelled.
func (s *Store) StartSweeper(ctx context.Context, interval time.Duration) {
	slog.Info("store sweeper started", "interval", interval, "expiration", s.expiration)
	s.Sweep()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("store sweeper stopped")
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

// lookup returns a value snapshot of the entry. The copy happens under the
// read lock so a concurrent SaveCleaned cannot mutate the entry mid-read.
func (s *Store) lookup(id string) (Entry, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Entry{}, ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[parsed]
	if !ok || !time.Now().Before(e.ExpiresAt) {
		return Entry{}, ErrNotFound
	}
	return *e, nil
}

func removeEntryFiles(e *Entry) {
	if err := os.Remove(e.rawPath); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to remove stored file", "path", e.rawPath, "error", err)
	}
	if e.cleanedPath != "" {
		if err := os.Remove(e.cleanedPath); err != nil && !os.IsNotExist(err) {
			slog.Warn("failed to remove cleaned file", "path", e.cleanedPath, "error", err)
		}
	}
}

// removeOrphans deletes files in the store directory that no entry refers to.
func (s *Store) removeOrphans() int {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*.csv"))
	if err != nil {
		return 0
	}
	removed := 0
	for _, path := range matches {
		if err := os.Remove(path); err == nil {
			removed++
		}
	}
	return removed
}
