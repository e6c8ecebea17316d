// Package lockfile reads, writes and synchronizes frate.lock: the derived
// file pinning every manifest dependency to one concrete version, download
// URL and checksum for the platform it was resolved on.
package lockfile

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// FileName is the lockfile name inside a project directory.
const FileName = "frate.lock"

const header = "# Generated by `frate sync`. Do not edit by hand.\n\n"

// Lockfile pins every declared tool to one resolved release.
type Lockfile struct {
	Tools []Entry `toml:"tool"`
}

// Entry is one locked tool.
type Entry struct {
	Name     string `toml:"name"`
	Version  string `toml:"version"`
	URL      string `toml:"url"`
	Checksum string `toml:"checksum"`
	Platform string `toml:"platform"`
}

// Load reads the lockfile at path, returning an empty lockfile when the
// file does not exist yet.
func Load(path string) (*Lockfile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Lockfile{}, nil
		}
		return nil, errors.Wrapf(err, "failed to read lockfile: %s", path)
	}

	var lock Lockfile
	if err := toml.Unmarshal(data, &lock); err != nil {
		return nil, errors.Wrapf(err, "failed to parse lockfile: %s", path)
	}
	return &lock, nil
}

// LoadDir loads the lockfile from a project directory.
func LoadDir(dir string) (*Lockfile, error) {
	return Load(filepath.Join(dir, FileName))
}

// Save rewrites the lockfile atomically: the content is staged in a
// temporary file in the same directory and renamed over the target, so a
// crash never leaves a truncated lockfile behind.
func (l *Lockfile) Save(path string) error {
	var buf bytes.Buffer
	buf.WriteString(header)
	if err := toml.NewEncoder(&buf).Encode(l); err != nil {
		return errors.Wrap(err, "failed to encode lockfile")
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+FileName+"-*")
	if err != nil {
		return errors.Wrap(err, "failed to create temporary lockfile")
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to write temporary lockfile")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close temporary lockfile")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errors.Wrapf(err, "failed to replace lockfile: %s", path)
	}
	return nil
}

// Get returns the locked entry for a tool.
func (l *Lockfile) Get(name string) (Entry, bool) {
	for _, entry := range l.Tools {
		if entry.Name == name {
			return entry, true
		}
	}
	return Entry{}, false
}
