// Package cache owns the on-disk layout under the frate root directory. No
// other package writes inside the root: installs, removals and metadata all
// go through here.
//
// Layout:
//
//	<root>/tools/<name>/<version>/   extracted archive contents
//	<root>/tools/<name>/tool.yml     per-tool metadata (primary binary etc.)
//	<root>/bin/                      shims, one per installed tool
//	<root>/archives/                 verified downloaded archives, reused on reinstall
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/adrg/xdg"
	"github.com/pkg/errors"
)

// EnvRoot names the environment variable that overrides the cache root.
const EnvRoot = "FRATE_HOME"

// Root is an explicit handle to a frate cache directory. It is passed
// around rather than held as a global so tests can point it at a temporary
// directory.
type Root struct {
	Dir string
}

// IOError reports a filesystem failure inside the cache.
type IOError struct {
	Op   string
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("cache %s failed for %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// DefaultRoot returns the platform-conventional cache root: FRATE_HOME
// when set, otherwise a "frate" directory under the user's XDG data home.
func DefaultRoot() (Root, error) {
	if dir := os.Getenv(EnvRoot); dir != "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return Root{}, errors.Wrapf(err, "invalid %s", EnvRoot)
		}
		return Root{Dir: abs}, nil
	}
	return Root{Dir: filepath.Join(xdg.DataHome, "frate")}, nil
}

// ToolsDir is the directory holding one subdirectory per tool.
func (r Root) ToolsDir() string { return filepath.Join(r.Dir, "tools") }

// BinDir is the shared shim directory.
func (r Root) BinDir() string { return filepath.Join(r.Dir, "bin") }

// ArchivesDir holds verified downloaded archives.
func (r Root) ArchivesDir() string { return filepath.Join(r.Dir, "archives") }

// ToolDir is the directory for one tool across all its versions.
func (r Root) ToolDir(name string) string {
	return filepath.Join(r.ToolsDir(), name)
}

// EntryDir is the cache entry for one tool at one version.
func (r Root) EntryDir(name, version string) string {
	return filepath.Join(r.ToolDir(name), version)
}

// MetadataPath is the per-tool metadata file.
func (r Root) MetadataPath(name string) string {
	return filepath.Join(r.ToolDir(name), metadataFile)
}

// ArchivePath is where a downloaded asset is kept. The key is a digest of
// the full URL, so identically named archives from different tools cannot
// collide. The archive extension is carried over from the URL path (query
// and fragment stripped) because extraction detects the format from it.
func (r Root) ArchivePath(url string) string {
	sum := sha256.Sum256([]byte(url))
	return filepath.Join(r.ArchivesDir(), hex.EncodeToString(sum[:8])+archiveExt(url))
}

// archiveExt extracts the archive extension from a URL's path component.
func archiveExt(url string) string {
	name := url
	if idx := strings.IndexAny(name, "?#"); idx >= 0 {
		name = name[:idx]
	}
	if idx := strings.LastIndex(name, "/"); idx >= 0 {
		name = name[idx+1:]
	}
	lower := strings.ToLower(name)
	for _, ext := range []string{".tar.gz", ".tgz", ".zip"} {
		if strings.HasSuffix(lower, ext) {
			return ext
		}
	}
	if idx := strings.LastIndex(name, "."); idx >= 0 {
		return name[idx:]
	}
	return ""
}

// Ensure creates the cache directory structure.
func (r Root) Ensure() error {
	for _, dir := range []string{r.ToolsDir(), r.BinDir(), r.ArchivesDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &IOError{Op: "mkdir", Path: dir, Err: err}
		}
	}
	return nil
}

// HasEntry reports whether a cache entry exists for the tool at the given
// version.
func (r Root) HasEntry(name, version string) bool {
	info, err := os.Stat(r.EntryDir(name, version))
	return err == nil && info.IsDir()
}

// Tools enumerates the tool names present in the cache, sorted.
func (r Root) Tools() ([]string, error) {
	entries, err := os.ReadDir(r.ToolsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &IOError{Op: "read", Path: r.ToolsDir(), Err: err}
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Versions enumerates the installed versions of one tool, sorted.
func (r Root) Versions(name string) ([]string, error) {
	entries, err := os.ReadDir(r.ToolDir(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, &IOError{Op: "read", Path: r.ToolDir(name), Err: err}
	}

	var versions []string
	for _, entry := range entries {
		if entry.IsDir() {
			versions = append(versions, entry.Name())
		}
	}
	sort.Strings(versions)
	return versions, nil
}

// RemoveTool deletes a tool's directory with every installed version and
// its metadata. Removing an absent tool is a no-op.
func (r Root) RemoveTool(name string) error {
	path := r.ToolDir(name)
	if err := os.RemoveAll(path); err != nil {
		return &IOError{Op: "remove", Path: path, Err: err}
	}
	return nil
}

// RemoveArchives empties the archive store.
func (r Root) RemoveArchives() error {
	path := r.ArchivesDir()
	if err := os.RemoveAll(path); err != nil {
		return &IOError{Op: "remove", Path: path, Err: err}
	}
	if err := os.MkdirAll(path, 0755); err != nil {
		return &IOError{Op: "mkdir", Path: path, Err: err}
	}
	return nil
}

// RemoveArchive deletes one cached archive if present.
func (r Root) RemoveArchive(url string) error {
	path := r.ArchivePath(url)
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return &IOError{Op: "remove", Path: path, Err: err}
	}
	return nil
}

// HasArchive reports whether a verified archive for the URL is cached.
func (r Root) HasArchive(url string) bool {
	info, err := os.Stat(r.ArchivePath(url))
	return err == nil && info.Mode().IsRegular()
}

// StoreArchive moves a verified archive file into the archive store.
func (r Root) StoreArchive(srcPath, url string) error {
	dest := r.ArchivePath(url)
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return &IOError{Op: "mkdir", Path: filepath.Dir(dest), Err: err}
	}
	if err := os.Rename(srcPath, dest); err != nil {
		return &IOError{Op: "store", Path: dest, Err: err}
	}
	return nil
}
