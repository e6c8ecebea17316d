package lockfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func sampleLock() *Lockfile {
	return &Lockfile{
		Tools: []Entry{
			{
				Name:     "just",
				Version:  "1.42.1",
				URL:      "https://example.com/just-1.42.1-linux-amd64.tar.gz",
				Checksum: "sha256:abc",
				Platform: "linux-amd64",
			},
			{
				Name:     "ripgrep",
				Version:  "14.1.0",
				URL:      "https://example.com/rg.zip",
				Checksum: "def",
				Platform: "linux-amd64",
			},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	lock := sampleLock()
	if err := lock.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if diff := cmp.Diff(lock, loaded); diff != "" {
		t.Errorf("round-trip mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveByteIdentical(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.lock")
	second := filepath.Join(dir, "b.lock")

	lock := sampleLock()
	if err := lock.Save(first); err != nil {
		t.Fatal(err)
	}
	if err := lock.Save(second); err != nil {
		t.Fatal(err)
	}

	a, _ := os.ReadFile(first)
	b, _ := os.ReadFile(second)
	if string(a) != string(b) {
		t.Error("expected byte-identical lockfiles from identical state")
	}
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	if err := sampleLock().Save(filepath.Join(dir, FileName)); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "."+FileName) {
			t.Errorf("temporary lockfile left behind: %s", entry.Name())
		}
	}
}

func TestLoadMissingIsEmpty(t *testing.T) {
	lock, err := Load(filepath.Join(t.TempDir(), FileName))
	if err != nil {
		t.Fatalf("Load of missing lockfile failed: %v", err)
	}
	if len(lock.Tools) != 0 {
		t.Errorf("expected empty lockfile, got %d entries", len(lock.Tools))
	}
}

func TestLoadMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	if err := os.WriteFile(path, []byte("[[tool\nname="), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed lockfile")
	}
}

func TestGet(t *testing.T) {
	lock := sampleLock()

	entry, ok := lock.Get("just")
	if !ok || entry.Version != "1.42.1" {
		t.Errorf("Get(just) = %+v, %v", entry, ok)
	}
	if _, ok := lock.Get("absent"); ok {
		t.Error("Get of absent tool should report false")
	}
}
