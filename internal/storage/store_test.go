package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/codimo/promptdiff/internal/core"
)

func TestStorePutGet(t *testing.T) {
	store := NewStore(t.TempDir())

	text := "You are a helpful assistant.\r\nAnswer briefly.\n"
	hash, err := store.PutPrompt(text)
	if err != nil {
		t.Fatalf("failed to put prompt: %v", err)
	}

	obj, err := store.Get(hash)
	if err != nil {
		t.Fatalf("failed to get object: %v", err)
	}
	if obj.Type != core.ObjectTypePrompt {
		t.Errorf("expected prompt, got %s", obj.Type)
	}

	got, err := store.GetPrompt(hash)
	if err != nil {
		t.Fatalf("failed to get prompt: %v", err)
	}
	if got != text {
		t.Errorf("prompt mismatch: %q", got)
	}
}

func TestStoreEmptyPrompt(t *testing.T) {
	store := NewStore(t.TempDir())

	hash, err := store.PutPrompt("")
	if err != nil {
		t.Fatal(err)
	}
	got, err := store.GetPrompt(hash)
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("expected empty prompt, got %q", got)
	}
}

func TestStoreDeduplication(t *testing.T) {
	root := t.TempDir()
	store := NewStore(root)

	hash1, err := store.PutPrompt("duplicate content")
	if err != nil {
		t.Fatal(err)
	}
	hash2, err := store.PutPrompt("duplicate content")
	if err != nil {
		t.Fatal(err)
	}

	if hash1 != hash2 {
		t.Error("same content should produce same hash")
	}

	entries, err := os.ReadDir(filepath.Dir(store.objectPath(hash1)))
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected one object file, got %d", len(entries))
	}
}

func TestStoreTypeMismatch(t *testing.T) {
	store := NewStore(t.TempDir())

	hash, err := store.Put(core.ObjectType("note"), []byte("not a prompt"))
	if err != nil {
		t.Fatal(err)
	}

	_, err = store.GetPrompt(hash)
	if !errors.Is(err, core.ErrInvalidObject) {
		t.Errorf("expected ErrInvalidObject, got %v", err)
	}
}

func TestStoreCorruptObject(t *testing.T) {
	store := NewStore(t.TempDir())

	hash, err := store.PutPrompt("original")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(store.objectPath(hash), []byte("garbage"), 0644); err != nil {
		t.Fatal(err)
	}

	_, err = store.Get(hash)
	if !errors.Is(err, core.ErrInvalidObject) {
		t.Errorf("expected ErrInvalidObject, got %v", err)
	}
}

func TestStoreCache(t *testing.T) {
	store := NewStore(t.TempDir())

	hash, err := store.PutPrompt("cached content")
	if err != nil {
		t.Fatal(err)
	}

	// First get - from disk
	obj1, err := store.Get(hash)
	if err != nil {
		t.Fatal(err)
	}

	// Remove the file; the second get must be served from cache
	if err := os.Remove(store.objectPath(hash)); err != nil {
		t.Fatal(err)
	}

	obj2, err := store.Get(hash)
	if err != nil {
		t.Fatal(err)
	}
	if obj1 != obj2 {
		t.Error("expected cached object")
	}
	if store.Exists(hash) {
		t.Error("removed object file should not exist")
	}
}

func TestStorePutRestoresMissingFile(t *testing.T) {
	store := NewStore(t.TempDir())

	hash, err := store.PutPrompt("restore me")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(hash); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(store.objectPath(hash)); err != nil {
		t.Fatal(err)
	}

	again, err := store.PutPrompt("restore me")
	if err != nil {
		t.Fatal(err)
	}
	if again != hash {
		t.Error("same content should produce same hash")
	}
	if !store.Exists(hash) {
		t.Error("Put should rewrite a missing object file")
	}
}

func TestStoreNotFound(t *testing.T) {
	store := NewStore(t.TempDir())

	fakeHash := core.HashBytes([]byte("nonexistent"))
	_, err := store.Get(fakeHash)
	if err != core.ErrObjectNotFound {
		t.Errorf("expected ErrObjectNotFound, got %v", err)
	}
	if store.Exists(fakeHash) {
		t.Error("missing object should not exist")
	}
}

func BenchmarkStorePut(b *testing.B) {
	store := NewStore(b.TempDir())
	data := make([]byte, 1024) // 1 KB

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		data[0] = byte(i) // Make each blob unique
		store.Put(core.ObjectTypePrompt, data)
	}
}
