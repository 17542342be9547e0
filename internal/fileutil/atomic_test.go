package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteFileAtomic(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	testFile := filepath.Join(tmpDir, "scores.json")

	if err := WriteFileAtomic(testFile, []byte("initial"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}
	if err := WriteFileAtomic(testFile, []byte("updated"), 0o600); err != nil {
		t.Fatalf("Overwrite failed: %v", err)
	}

	data, err := os.ReadFile(testFile)
	if err != nil {
		t.Fatalf("Failed to read file: %v", err)
	}
	if string(data) != "updated" {
		t.Errorf("File content mismatch: got %q", string(data))
	}

	info, err := os.Stat(testFile)
	if err != nil {
		t.Fatalf("Failed to stat file: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("File permissions mismatch: got %o, want %o", info.Mode().Perm(), 0o600)
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("Failed to read dir: %v", err)
	}
	for _, entry := range entries {
		if entry.Name() != "scores.json" {
			t.Errorf("Unexpected file in directory: %s", entry.Name())
		}
	}
}

func TestWriteFileAtomicCreatesParents(t *testing.T) {
	t.Parallel()

	testFile := filepath.Join(t.TempDir(), "a", "b", "scores.json")
	if err := WriteFileAtomic(testFile, []byte("{}"), 0o644); err != nil {
		t.Fatalf("WriteFileAtomic failed: %v", err)
	}
	if _, err := os.Stat(testFile); err != nil {
		t.Fatalf("File missing: %v", err)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	t.Parallel()

	testFile := filepath.Join(t.TempDir(), "best.json")

	var missing map[string]int
	found, err := ReadJSON(testFile, &missing)
	if err != nil || found {
		t.Fatalf("ReadJSON on missing file: found=%v err=%v", found, err)
	}

	if err := WriteJSONAtomic(testFile, map[string]int{"1": 12}, 0o644); err != nil {
		t.Fatalf("WriteJSONAtomic failed: %v", err)
	}

	var got map[string]int
	found, err = ReadJSON(testFile, &got)
	if err != nil || !found {
		t.Fatalf("ReadJSON failed: found=%v err=%v", found, err)
	}
	if got["1"] != 12 {
		t.Errorf("Decoded value mismatch: got %v", got)
	}
}

func TestReadJSONCorrupt(t *testing.T) {
	t.Parallel()

	testFile := filepath.Join(t.TempDir(), "best.json")
	if err := os.WriteFile(testFile, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	var v map[string]int
	if _, err := ReadJSON(testFile, &v); err == nil {
		t.Error("Expected decode error")
	}
}

func TestWriteFileAtomicCleansUpOnFailure(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	// Renaming a file over a directory fails after the temp file is written.
	target := filepath.Join(tmpDir, "scores.json")
	if err := os.Mkdir(target, 0o755); err != nil {
		t.Fatal(err)
	}

	if err := WriteFileAtomic(target, []byte("{}"), 0o644); err == nil {
		t.Fatal("Expected rename error")
	}

	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatalf("Failed to read dir: %v", err)
	}
	for _, entry := range entries {
		if entry.Name() != "scores.json" {
			t.Errorf("Temp file left behind: %s", entry.Name())
		}
	}
}
