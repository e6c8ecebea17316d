// Package archive unpacks release archives into cache directories. The
// format set is closed (zip and gzip-compressed tar) and chosen from the
// asset's file name, never sniffed from content.
//
// Extraction is all-or-nothing: entries are written to a fresh temporary
// directory next to the target, which is renamed into place only after
// every entry extracted cleanly. A hostile or truncated archive therefore
// never leaves a partially populated target directory.
package archive

import (
	"archive/tar"
	"archive/zip"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Format identifies a supported archive format.
type Format string

const (
	FormatTarGz Format = "tar.gz"
	FormatZip   Format = "zip"
)

// UnsafeEntryError reports an archive entry whose path would resolve
// outside the extraction target. Such archives are hostile and extraction
// is aborted.
type UnsafeEntryError struct {
	Entry string
}

func (e *UnsafeEntryError) Error() string {
	return fmt.Sprintf("unsafe archive entry: %s", e.Entry)
}

// DetectFormat determines the archive format from a file name.
func DetectFormat(filename string) (Format, error) {
	lower := strings.ToLower(filename)

	if strings.HasSuffix(lower, ".tar.gz") || strings.HasSuffix(lower, ".tgz") {
		return FormatTarGz, nil
	}
	if strings.HasSuffix(lower, ".zip") {
		return FormatZip, nil
	}
	return "", fmt.Errorf("unsupported archive type: %s", filepath.Base(filename))
}

// Extract unpacks the archive at archivePath into destDir. destDir must not
// already exist; it appears atomically on success and not at all on failure.
func Extract(archivePath, destDir string) error {
	format, err := DetectFormat(archivePath)
	if err != nil {
		return err
	}

	if _, err := os.Stat(destDir); err == nil {
		return fmt.Errorf("extraction target already exists: %s", destDir)
	}
	if err := os.MkdirAll(filepath.Dir(destDir), 0755); err != nil {
		return errors.Wrap(err, "failed to create parent directory")
	}

	tmpDir, err := os.MkdirTemp(filepath.Dir(destDir), "."+filepath.Base(destDir)+"-*")
	if err != nil {
		return errors.Wrap(err, "failed to create staging directory")
	}
	defer os.RemoveAll(tmpDir)

	switch format {
	case FormatTarGz:
		err = extractTarGz(archivePath, tmpDir)
	case FormatZip:
		err = extractZip(archivePath, tmpDir)
	}
	if err != nil {
		return err
	}

	if err := os.Rename(tmpDir, destDir); err != nil {
		return errors.Wrap(err, "failed to move extracted contents into place")
	}
	return nil
}

// entryPath validates an archive entry name and resolves it under destDir.
func entryPath(destDir, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(name))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(os.PathSeparator)) {
		return "", &UnsafeEntryError{Entry: name}
	}

	target := filepath.Join(destDir, cleaned)
	if !strings.HasPrefix(target, destDir+string(os.PathSeparator)) && target != destDir {
		return "", &UnsafeEntryError{Entry: name}
	}
	return target, nil
}

func extractTarGz(archivePath, destDir string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return errors.Wrap(err, "failed to open archive")
	}
	defer file.Close()

	gzReader, err := gzip.NewReader(file)
	if err != nil {
		return errors.Wrap(err, "failed to create gzip reader")
	}
	defer gzReader.Close()

	tarReader := tar.NewReader(gzReader)
	for {
		header, err := tarReader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "failed to read tar header")
		}

		target, err := entryPath(destDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, os.FileMode(header.Mode)|0700); err != nil {
				return errors.Wrap(err, "failed to create directory")
			}
		case tar.TypeReg:
			if err := writeEntry(target, tarReader, os.FileMode(header.Mode)); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := writeSymlink(destDir, target, header.Linkname); err != nil {
				return err
			}
		}
	}
	return nil
}

func extractZip(archivePath, destDir string) error {
	reader, err := zip.OpenReader(archivePath)
	if err != nil {
		return errors.Wrap(err, "failed to open zip archive")
	}
	defer reader.Close()

	for _, file := range reader.File {
		target, err := entryPath(destDir, file.Name)
		if err != nil {
			return err
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(target, file.Mode()|0700); err != nil {
				return errors.Wrap(err, "failed to create directory")
			}
			continue
		}

		fileReader, err := file.Open()
		if err != nil {
			return errors.Wrap(err, "failed to open file in archive")
		}
		err = writeEntry(target, fileReader, file.Mode())
		fileReader.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func writeEntry(target string, r io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.Wrap(err, "failed to create parent directory")
	}

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm())
	if err != nil {
		return errors.Wrap(err, "failed to create file")
	}
	if _, err := io.Copy(out, r); err != nil {
		out.Close()
		return errors.Wrap(err, "failed to extract file")
	}
	return out.Close()
}

// writeSymlink creates a symlink entry after checking that the link cannot
// escape the extraction target.
func writeSymlink(destDir, target, linkname string) error {
	if filepath.IsAbs(linkname) {
		return &UnsafeEntryError{Entry: linkname}
	}
	resolved := filepath.Join(filepath.Dir(target), linkname)
	if !strings.HasPrefix(resolved, destDir+string(os.PathSeparator)) && resolved != destDir {
		return &UnsafeEntryError{Entry: linkname}
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return errors.Wrap(err, "failed to create parent directory")
	}
	if err := os.Symlink(linkname, target); err != nil {
		return errors.Wrap(err, "failed to create symlink")
	}
	return nil
}
