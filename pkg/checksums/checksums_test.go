package checksums

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTestFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "asset.tar.gz")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func sumOf(content string) string {
	h := sha256.Sum256([]byte(content))
	return hex.EncodeToString(h[:])
}

func TestComputeFile(t *testing.T) {
	path := writeTestFile(t, "hello world")

	got, err := ComputeFile(path)
	if err != nil {
		t.Fatalf("ComputeFile failed: %v", err)
	}
	if want := sumOf("hello world"); got != want {
		t.Errorf("ComputeFile = %s, want %s", got, want)
	}
}

func TestVerifyFile(t *testing.T) {
	path := writeTestFile(t, "archive bytes")

	if err := VerifyFile(path, sumOf("archive bytes")); err != nil {
		t.Errorf("expected verification to pass: %v", err)
	}

	// The sha256: prefix used by registry entries is accepted.
	if err := VerifyFile(path, "sha256:"+sumOf("archive bytes")); err != nil {
		t.Errorf("expected prefixed checksum to pass: %v", err)
	}
}

func TestVerifyFileMismatch(t *testing.T) {
	path := writeTestFile(t, "archive bytes")

	err := VerifyFile(path, sumOf("different bytes"))
	var integrity *IntegrityError
	if !errors.As(err, &integrity) {
		t.Fatalf("expected IntegrityError, got %T: %v", err, err)
	}
	if integrity.Expected == integrity.Actual {
		t.Error("mismatch error should carry differing hashes")
	}
}

func TestVerifyFileSingleByteCorruption(t *testing.T) {
	content := []byte("release archive content")
	path := filepath.Join(t.TempDir(), "asset.zip")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}
	expected, err := ComputeFile(path)
	if err != nil {
		t.Fatal(err)
	}

	// Flip one byte after the checksum was taken.
	content[0] ^= 0xff
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	err = VerifyFile(path, expected)
	var integrity *IntegrityError
	if !errors.As(err, &integrity) {
		t.Fatalf("expected IntegrityError after corruption, got %v", err)
	}
}

func TestComputeFileMissing(t *testing.T) {
	_, err := ComputeFile(filepath.Join(t.TempDir(), "nope"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"sha256:ABCDEF", "abcdef"},
		{"abcdef", "abcdef"},
		{"  sha256:abc  ", "abc"},
	}
	for _, tt := range tests {
		if got := Normalize(tt.input); got != tt.expected {
			t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
