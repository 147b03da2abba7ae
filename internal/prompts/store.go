// Package prompts keeps the version history of a single prompt on disk and selects the
// (old, new) text pairs that get diffed.
package prompts

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/codimo/promptdiff/internal/core"
	"github.com/codimo/promptdiff/internal/storage"
)

const versionsFile = "versions.json"

// Version describes one stored prompt version.
type Version struct {
	Number    int               `json:"version"`
	Hash      core.Hash         `json:"hash"`
	CreatedAt time.Time         `json:"created_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// Update is the outcome of Set.
type Update struct {
	Version         int       `json:"version"`
	PreviousVersion int       `json:"previous_version"`
	UpdatedAt       time.Time `json:"updated_at"`
	OldPrompt       string    `json:"old_prompt"`
	NewPrompt       string    `json:"new_prompt"`
}

// Pair is the old and new text selected for a version number.
type Pair struct {
	Version int    `json:"version"`
	Old     string `json:"old_prompt"`
	New     string `json:"new_prompt"`
}

type versionLog struct {
	Versions []Version `json:"versions"`
}

// Store is a prompt version history rooted at a directory. Prompt texts live in a
// content-addressed object store; versions.json lists the versions in order. A Store is safe
// for concurrent use within one process.
type Store struct {
	root    string
	objects *storage.Store

	mu       sync.RWMutex
	versions []Version

	now func() time.Time
}

// Init creates a new store in root whose version 1 is initial.
func Init(root, initial string) (*Store, error) {
	if _, err := os.Stat(filepath.Join(root, versionsFile)); err == nil {
		return nil, core.ErrAlreadyInitialized
	}

	if err := os.MkdirAll(filepath.Join(root, "objects"), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory %s: %w", root, err)
	}

	s := newStore(root)
	hash, err := s.objects.PutPrompt(initial)
	if err != nil {
		return nil, err
	}

	s.versions = []Version{{Number: 1, Hash: hash, CreatedAt: s.now()}}
	if err := s.save(); err != nil {
		return nil, err
	}
	return s, nil
}

// Open opens an existing store.
func Open(root string) (*Store, error) {
	data, err := os.ReadFile(filepath.Join(root, versionsFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, core.ErrNotInitialized
		}
		return nil, fmt.Errorf("failed to read version log: %w", err)
	}

	var log versionLog
	if err := json.Unmarshal(data, &log); err != nil {
		return nil, fmt.Errorf("failed to parse version log: %w", err)
	}
	if len(log.Versions) == 0 {
		return nil, fmt.Errorf("version log is empty: %w", core.ErrInvalidObject)
	}
	for i, v := range log.Versions {
		if v.Number != i+1 {
			return nil, fmt.Errorf("version log out of order at %d: %w", v.Number, core.ErrInvalidObject)
		}
	}

	s := newStore(root)
	s.versions = log.Versions
	return s, nil
}

func newStore(root string) *Store {
	return &Store{
		root:    root,
		objects: storage.NewStore(root),
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Root returns the directory the store lives in.
func (s *Store) Root() string {
	return s.root
}

// Current returns the newest version and its text.
func (s *Store) Current() (Version, string, error) {
	s.mu.RLock()
	v := s.versions[len(s.versions)-1]
	s.mu.RUnlock()

	text, err := s.objects.GetPrompt(v.Hash)
	if err != nil {
		return Version{}, "", err
	}
	return v, text, nil
}

// Set stores text as the next version. The metadata is recorded on the new version.
func (s *Store) Set(text string, metadata map[string]string) (Update, error) {
	if text == "" {
		return Update{}, core.ErrEmptyPrompt
	}

	hash, err := s.objects.PutPrompt(text)
	if err != nil {
		return Update{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.versions[len(s.versions)-1]
	old, err := s.objects.GetPrompt(prev.Hash)
	if err != nil {
		return Update{}, err
	}

	next := Version{
		Number:    prev.Number + 1,
		Hash:      hash,
		CreatedAt: s.now(),
		Metadata:  copyMetadata(metadata),
	}
	s.versions = append(s.versions, next)
	if err := s.save(); err != nil {
		s.versions = s.versions[:len(s.versions)-1]
		return Update{}, err
	}

	return Update{
		Version:         next.Number,
		PreviousVersion: prev.Number,
		UpdatedAt:       next.CreatedAt,
		OldPrompt:       old,
		NewPrompt:       text,
	}, nil
}

// Get returns the text of a version, or core.ErrVersionNotFound.
func (s *Store) Get(version int) (string, error) {
	s.mu.RLock()
	if version < 1 || version > len(s.versions) {
		s.mu.RUnlock()
		return "", fmt.Errorf("version %d: %w", version, core.ErrVersionNotFound)
	}
	hash := s.versions[version-1].Hash
	s.mu.RUnlock()

	return s.objects.GetPrompt(hash)
}

// History returns every version, oldest first. The last entry is the current version.
func (s *Store) History() []Version {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Version, len(s.versions))
	for i, v := range s.versions {
		v.Metadata = copyMetadata(v.Metadata)
		out[i] = v
	}
	return out
}

// Pair selects the texts to compare for version. Zero compares the previous version with the
// current one. A version in 1..current compares it with the version before it; version 1 is
// compared with itself. Anything else is core.ErrInvalidVersion.
func (s *Store) Pair(version int) (Pair, error) {
	s.mu.RLock()
	current := len(s.versions)
	s.mu.RUnlock()

	if version == 0 {
		version = current
	}
	if version < 1 || version > current {
		return Pair{}, fmt.Errorf("version %d not in 1..%d: %w", version, current, core.ErrInvalidVersion)
	}

	newText, err := s.Get(version)
	if err != nil {
		return Pair{}, err
	}
	oldText := newText
	if version > 1 {
		if oldText, err = s.Get(version - 1); err != nil {
			return Pair{}, err
		}
	}
	return Pair{Version: version, Old: oldText, New: newText}, nil
}

// save writes the version log. The caller must hold mu or own s exclusively.
func (s *Store) save() error {
	data, err := json.MarshalIndent(versionLog{Versions: s.versions}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode version log: %w", err)
	}

	tmp, err := os.CreateTemp(s.root, ".versions-*")
	if err != nil {
		return fmt.Errorf("failed to write version log: %w", err)
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write version log: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write version log: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.root, versionsFile)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("failed to write version log: %w", err)
	}
	return nil
}

func copyMetadata(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
