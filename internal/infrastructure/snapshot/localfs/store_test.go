package localfs

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveLoadRoundTrip(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	payload := []byte(`{"dimension":768}`)
	if err := store.Save("semantic.json", payload); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	data, ok, err := store.Load("semantic.json")
	if err != nil || !ok {
		t.Fatalf("Load() = (%t, %v)", ok, err)
	}
	if !bytes.Equal(data, payload) {
		t.Fatalf("loaded %q, want %q", data, payload)
	}
}

func TestLoadMissingIsNotAnError(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	data, ok, err := store.Load("never-written.json")
	if err != nil {
		t.Fatalf("missing snapshot must not error, got %v", err)
	}
	if ok || data != nil {
		t.Fatalf("expected absence, got ok=%t data=%q", ok, data)
	}
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := store.Save("lexical.json", []byte("x")); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "lexical.json.tmp")); !os.IsNotExist(err) {
		t.Fatal("temp file left behind after publish")
	}
}
