package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

type tarEntry struct {
	name     string
	content  string
	mode     int64
	typeflag byte
	linkname string
}

func createTestTarGz(t *testing.T, path string, entries []tarEntry) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	gzWriter := gzip.NewWriter(f)
	defer gzWriter.Close()
	tarWriter := tar.NewWriter(gzWriter)
	defer tarWriter.Close()

	for _, entry := range entries {
		typeflag := entry.typeflag
		if typeflag == 0 {
			typeflag = tar.TypeReg
		}
		mode := entry.mode
		if mode == 0 {
			mode = 0644
		}
		header := &tar.Header{
			Name:     entry.name,
			Mode:     mode,
			Typeflag: typeflag,
			Linkname: entry.linkname,
		}
		if typeflag == tar.TypeReg {
			header.Size = int64(len(entry.content))
		}
		if err := tarWriter.WriteHeader(header); err != nil {
			t.Fatal(err)
		}
		if typeflag == tar.TypeReg {
			if _, err := tarWriter.Write([]byte(entry.content)); err != nil {
				t.Fatal(err)
			}
		}
	}
}

func createTestZip(t *testing.T, path string, files map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	zipWriter := zip.NewWriter(f)
	defer zipWriter.Close()

	for name, content := range files {
		w, err := zipWriter.Create(name)
		if err != nil {
			t.Fatal(err)
		}
		if _, err := w.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		filename string
		expected Format
		wantErr  bool
	}{
		{filename: "tool-1.0.0-linux-amd64.tar.gz", expected: FormatTarGz},
		{filename: "tool-1.0.0.tgz", expected: FormatTarGz},
		{filename: "tool-1.0.0-windows-amd64.zip", expected: FormatZip},
		{filename: "TOOL.ZIP", expected: FormatZip},
		{filename: "tool-1.0.0.tar.xz", wantErr: true},
		{filename: "tool", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			got, err := DetectFormat(tt.filename)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %q", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("DetectFormat failed: %v", err)
			}
			if got != tt.expected {
				t.Errorf("DetectFormat(%q) = %q, want %q", tt.filename, got, tt.expected)
			}
		})
	}
}

func TestExtractTarGz(t *testing.T) {
	tmpDir := t.TempDir()
	archivePath := filepath.Join(tmpDir, "test.tar.gz")
	createTestTarGz(t, archivePath, []tarEntry{
		{name: "dir1", typeflag: tar.TypeDir, mode: 0755},
		{name: "dir1/file1.txt", content: "one"},
		{name: "tool", content: "#!/bin/sh\n", mode: 0755},
	})

	destDir := filepath.Join(tmpDir, "extracted")
	if err := Extract(archivePath, destDir); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	content, err := os.ReadFile(filepath.Join(destDir, "dir1", "file1.txt"))
	if err != nil {
		t.Fatalf("expected file missing: %v", err)
	}
	if string(content) != "one" {
		t.Errorf("unexpected content: %q", content)
	}

	if runtime.GOOS != "windows" {
		info, err := os.Stat(filepath.Join(destDir, "tool"))
		if err != nil {
			t.Fatal(err)
		}
		if info.Mode().Perm()&0111 == 0 {
			t.Error("executable bit not preserved")
		}
	}
}

func TestExtractZip(t *testing.T) {
	tmpDir := t.TempDir()
	archivePath := filepath.Join(tmpDir, "test.zip")
	createTestZip(t, archivePath, map[string]string{
		"dir1/file1.txt": "one",
		"file2.txt":      "two",
	})

	destDir := filepath.Join(tmpDir, "extracted")
	if err := Extract(archivePath, destDir); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	for name, want := range map[string]string{
		"dir1/file1.txt": "one",
		"file2.txt":      "two",
	} {
		content, err := os.ReadFile(filepath.Join(destDir, name))
		if err != nil {
			t.Errorf("expected file %s missing: %v", name, err)
			continue
		}
		if string(content) != want {
			t.Errorf("file %s: got %q, want %q", name, content, want)
		}
	}
}

func TestExtractRejectsTraversal(t *testing.T) {
	tmpDir := t.TempDir()
	archivePath := filepath.Join(tmpDir, "evil.tar.gz")
	createTestTarGz(t, archivePath, []tarEntry{
		{name: "safe.txt", content: "fine"},
		{name: "../escape.txt", content: "evil"},
	})

	destDir := filepath.Join(tmpDir, "extracted")
	err := Extract(archivePath, destDir)

	var unsafe *UnsafeEntryError
	if !errors.As(err, &unsafe) {
		t.Fatalf("expected UnsafeEntryError, got %T: %v", err, err)
	}

	// The target directory must not exist at all, not even partially.
	if _, statErr := os.Stat(destDir); !os.IsNotExist(statErr) {
		t.Error("failed extraction left a target directory behind")
	}
	if _, statErr := os.Stat(filepath.Join(tmpDir, "escape.txt")); !os.IsNotExist(statErr) {
		t.Error("traversal entry escaped the extraction root")
	}
}

func TestExtractRejectsAbsolutePath(t *testing.T) {
	tmpDir := t.TempDir()
	archivePath := filepath.Join(tmpDir, "evil.zip")

	f, err := os.Create(archivePath)
	if err != nil {
		t.Fatal(err)
	}
	zipWriter := zip.NewWriter(f)
	w, err := zipWriter.CreateHeader(&zip.FileHeader{Name: "/etc/evil.txt"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write([]byte("evil")); err != nil {
		t.Fatal(err)
	}
	zipWriter.Close()
	f.Close()

	destDir := filepath.Join(tmpDir, "extracted")
	err = Extract(archivePath, destDir)

	var unsafe *UnsafeEntryError
	if !errors.As(err, &unsafe) {
		t.Fatalf("expected UnsafeEntryError, got %v", err)
	}
}

func TestExtractRejectsSymlinkEscape(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks not reliable on windows")
	}

	tmpDir := t.TempDir()
	archivePath := filepath.Join(tmpDir, "evil.tar.gz")
	createTestTarGz(t, archivePath, []tarEntry{
		{name: "link", typeflag: tar.TypeSymlink, linkname: "../../outside"},
	})

	destDir := filepath.Join(tmpDir, "extracted")
	err := Extract(archivePath, destDir)

	var unsafe *UnsafeEntryError
	if !errors.As(err, &unsafe) {
		t.Fatalf("expected UnsafeEntryError, got %v", err)
	}
}

func TestExtractCorruptArchiveLeavesNothing(t *testing.T) {
	tmpDir := t.TempDir()
	archivePath := filepath.Join(tmpDir, "corrupt.tar.gz")
	if err := os.WriteFile(archivePath, []byte("this is not gzip"), 0644); err != nil {
		t.Fatal(err)
	}

	destDir := filepath.Join(tmpDir, "extracted")
	if err := Extract(archivePath, destDir); err == nil {
		t.Fatal("expected error for corrupt archive")
	}

	if _, err := os.Stat(destDir); !os.IsNotExist(err) {
		t.Error("corrupt archive left a target directory behind")
	}

	// The staging directory must be cleaned up too.
	entries, err := os.ReadDir(tmpDir)
	if err != nil {
		t.Fatal(err)
	}
	for _, entry := range entries {
		if entry.Name() != "corrupt.tar.gz" {
			t.Errorf("leftover entry after failed extraction: %s", entry.Name())
		}
	}
}

func TestExtractTargetExists(t *testing.T) {
	tmpDir := t.TempDir()
	archivePath := filepath.Join(tmpDir, "test.zip")
	createTestZip(t, archivePath, map[string]string{"a.txt": "a"})

	destDir := filepath.Join(tmpDir, "extracted")
	if err := os.MkdirAll(destDir, 0755); err != nil {
		t.Fatal(err)
	}

	if err := Extract(archivePath, destDir); err == nil {
		t.Fatal("expected error when target already exists")
	}
}
