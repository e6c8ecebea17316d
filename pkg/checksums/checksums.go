// Package checksums computes and verifies the SHA-256 content hashes the
// registry publishes for release assets.
package checksums

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// IntegrityError reports a checksum mismatch on a downloaded asset. The
// file it refers to must never be trusted or extracted.
type IntegrityError struct {
	Path     string
	Expected string
	Actual   string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("checksum mismatch for %s: expected %s, got %s", e.Path, e.Expected, e.Actual)
}

// ComputeFile returns the hex-encoded SHA-256 hash of a file's contents.
func ComputeFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to open file for hashing: %s", path)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrapf(err, "failed to hash file: %s", path)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// VerifyFile compares a file's content hash against the expected checksum
// and returns an IntegrityError on mismatch. The expected value may carry a
// "sha256:" prefix, which registry entries commonly use.
func VerifyFile(path, expected string) error {
	expected = Normalize(expected)

	actual, err := ComputeFile(path)
	if err != nil {
		return err
	}
	if actual != expected {
		return &IntegrityError{Path: path, Expected: expected, Actual: actual}
	}
	return nil
}

// Normalize strips the optional algorithm prefix and lowercases the hex
// digest.
func Normalize(checksum string) string {
	checksum = strings.TrimSpace(checksum)
	checksum = strings.TrimPrefix(checksum, "sha256:")
	return strings.ToLower(checksum)
}
