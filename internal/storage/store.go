package storage

import (
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/codimo/promptdiff/internal/core"
)

// Store is a content-addressed object database. Objects are zlib-compressed files under
// <root>/objects/xx/yyyy..., named by the blake3 hash of "<type> <data>".
type Store struct {
	root  string
	mu    sync.RWMutex
	cache map[core.Hash]*core.Object
}

// NewStore creates a store rooted at root. Directories are created on first write.
func NewStore(root string) *Store {
	return &Store{
		root:  root,
		cache: make(map[core.Hash]*core.Object),
	}
}

// Put stores data as an object of the given type and returns its hash. Storing the same
// content twice is a no-op.
func (s *Store) Put(objType core.ObjectType, data []byte) (core.Hash, error) {
	obj := make([]byte, 0, len(objType)+1+len(data))
	obj = append(obj, objType...)
	obj = append(obj, ' ')
	obj = append(obj, data...)

	hash := core.HashBytes(obj)

	if s.Exists(hash) {
		return hash, nil
	}

	path := s.objectPath(hash)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return core.Hash{}, fmt.Errorf("failed to create object directory: %w", err)
	}

	var buf bytes.Buffer
	w := zlib.NewWriter(&buf)
	if _, err := w.Write(obj); err != nil {
		return core.Hash{}, fmt.Errorf("failed to compress object: %w", err)
	}
	if err := w.Close(); err != nil {
		return core.Hash{}, fmt.Errorf("failed to compress object: %w", err)
	}

	// Write to a temp file first so a reader never sees a partial object.
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return core.Hash{}, fmt.Errorf("failed to create object file: %w", err)
	}
	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return core.Hash{}, fmt.Errorf("failed to write object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return core.Hash{}, fmt.Errorf("failed to write object: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return core.Hash{}, fmt.Errorf("failed to store object: %w", err)
	}

	return hash, nil
}

// Get retrieves an object, returning core.ErrObjectNotFound when it does not exist.
func (s *Store) Get(hash core.Hash) (*core.Object, error) {
	s.mu.RLock()
	if obj, ok := s.cache[hash]; ok {
		s.mu.RUnlock()
		return obj, nil
	}
	s.mu.RUnlock()

	file, err := os.Open(s.objectPath(hash))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, core.ErrObjectNotFound
		}
		return nil, fmt.Errorf("failed to open object: %w", err)
	}
	defer file.Close()

	reader, err := zlib.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decompress object %s: %w", hash.Short(), core.ErrInvalidObject)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read object: %w", err)
	}

	if core.HashBytes(data) != hash {
		return nil, fmt.Errorf("object %s is corrupt: %w", hash.Short(), core.ErrInvalidObject)
	}

	typeEnd := bytes.IndexByte(data, ' ')
	if typeEnd == -1 {
		return nil, core.ErrInvalidObject
	}

	obj := &core.Object{
		Type: core.ObjectType(data[:typeEnd]),
		Data: data[typeEnd+1:],
		Hash: hash,
	}

	s.mu.Lock()
	s.cache[hash] = obj
	s.mu.Unlock()

	return obj, nil
}

// Exists reports whether the object file is on disk. The read cache is not consulted, so
// Put rewrites an object whose file has gone missing.
func (s *Store) Exists(hash core.Hash) bool {
	_, err := os.Stat(s.objectPath(hash))
	return err == nil
}

func (s *Store) objectPath(hash core.Hash) string {
	hashStr := hash.String()
	return filepath.Join(s.root, "objects", hashStr[:2], hashStr[2:])
}

// PutPrompt stores a prompt text
func (s *Store) PutPrompt(text string) (core.Hash, error) {
	return s.Put(core.ObjectTypePrompt, []byte(text))
}

// GetPrompt retrieves a prompt text stored with PutPrompt
func (s *Store) GetPrompt(hash core.Hash) (string, error) {
	obj, err := s.Get(hash)
	if err != nil {
		return "", err
	}

	if obj.Type != core.ObjectTypePrompt {
		return "", fmt.Errorf("expected prompt, got %s: %w", obj.Type, core.ErrInvalidObject)
	}

	return string(obj.Data), nil
}
