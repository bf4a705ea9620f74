// Package store implements a flat-file JSON document store.
//
// STORAGE MODEL:
// Each named collection lives in one file, <dir>/<name>.json, holding the
// complete collection as a single JSON document:
//
//	{"tasks": [ {...}, {...} ]}
//
// There are no partial writes and no appends. A read loads the whole
// document; a mutation is load → change in memory → rewrite the whole file.
// Uniqueness and ownership rules are enforced by the callers with linear
// scans — the store knows nothing about record shapes.
//
// WHY FULL-FILE REWRITES?
// The collections here are small (a handful of users, their tasks, a forum).
// Rewriting a few kilobytes per mutation is far simpler than an index or a
// write-ahead log, and the whole file stays human-readable — you can open
// data/tasks.json in an editor and see exactly what the server sees.
//
// CONCURRENCY:
// Each collection carries its own RWMutex. Mutate holds the write lock for
// the whole load-change-rewrite cycle, so two in-process writers can never
// interleave and silently drop each other's change. The lock does nothing
// for writers outside this process — last rewrite wins there, which is the
// accepted trade-off for this storage model.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Store reads and rewrites whole-collection JSON documents under a data
// directory. Create one with New and share it; it is safe for concurrent use.
type Store struct {
	dir string

	mu    sync.Mutex // guards locks
	locks map[string]*sync.RWMutex
}

// New creates a Store rooted at dir, creating the directory if needed.
func New(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store: creating data dir %s: %w", dir, err)
	}
	return &Store{
		dir:   dir,
		locks: make(map[string]*sync.RWMutex),
	}, nil
}

// Init seeds an empty document for each named collection that has no file
// yet. Existing files are left untouched. Call this once at bootstrap —
// after Init, a missing file during View/Mutate is an error, not something
// the store papers over.
func (s *Store) Init(collections ...string) error {
	for _, name := range collections {
		path := s.path(name)
		if _, err := os.Stat(path); err == nil {
			continue
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("store: checking %s: %w", path, err)
		}

		doc := []byte(fmt.Sprintf("{\n  %q: []\n}\n", name))
		if err := os.WriteFile(path, doc, 0o644); err != nil {
			return fmt.Errorf("store: seeding %s: %w", path, err)
		}
	}
	return nil
}

// View loads the full document for a collection into doc (a pointer to the
// caller's document struct). It takes the collection's read lock, so views
// never observe a half-written mutation from this process.
func (s *Store) View(collection string, doc any) error {
	lock := s.lock(collection)
	lock.RLock()
	defer lock.RUnlock()

	return s.load(collection, doc)
}

// Mutate runs a read-modify-write cycle against one collection under its
// write lock: load the document into doc, call apply to change it in
// memory, then rewrite the whole file.
//
// If apply returns an error, nothing is written and the error is returned
// as-is — domain errors (conflict, not found) pass through unwrapped so
// callers can match them with errors.Is.
func (s *Store) Mutate(collection string, doc any, apply func() error) error {
	lock := s.lock(collection)
	lock.Lock()
	defer lock.Unlock()

	if err := s.load(collection, doc); err != nil {
		return err
	}
	if err := apply(); err != nil {
		return err
	}
	return s.replace(collection, doc)
}

// load reads and decodes a collection document. A missing or unreadable
// file and malformed JSON all fail fatally — the caller sees a plain error,
// which the HTTP edge turns into a 500.
func (s *Store) load(collection string, doc any) error {
	data, err := os.ReadFile(s.path(collection))
	if err != nil {
		return fmt.Errorf("store: reading collection %s: %w", collection, err)
	}
	if err := json.Unmarshal(data, doc); err != nil {
		return fmt.Errorf("store: parsing collection %s: %w", collection, err)
	}
	return nil
}

// replace rewrites the collection document in full.
//
// The write goes to a temp file in the same directory first, then renames
// over the original. Rename is atomic on POSIX filesystems, so a crash
// mid-write leaves the old document intact instead of a truncated file.
func (s *Store) replace(collection string, doc any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("store: encoding collection %s: %w", collection, err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(s.dir, collection+"-*.tmp")
	if err != nil {
		return fmt.Errorf("store: creating temp file for %s: %w", collection, err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("store: writing collection %s: %w", collection, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("store: closing temp file for %s: %w", collection, err)
	}

	if err := os.Rename(tmpName, s.path(collection)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("store: replacing collection %s: %w", collection, err)
	}
	return nil
}

func (s *Store) path(collection string) string {
	return filepath.Join(s.dir, collection+".json")
}

// lock returns the RWMutex for a collection, creating it on first use.
func (s *Store) lock(collection string) *sync.RWMutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.locks[collection]
	if !ok {
		l = &sync.RWMutex{}
		s.locks[collection] = l
	}
	return l
}
