package cache

import (
	"os"
	"path/filepath"
	"time"

	"github.com/goccy/go-yaml"
)

const metadataFile = "tool.yml"

// Metadata records what frate knows about a tool's cache entries beyond
// the extracted files themselves, most importantly which file inside each
// version is the primary executable.
type Metadata struct {
	Tool string `yaml:"tool"`
	// Current is the version the tool's shim points at. Shims are not
	// multi-version: the latest install wins.
	Current  string             `yaml:"current,omitempty"`
	Installs map[string]Install `yaml:"installs"`
}

// Install describes one installed version.
type Install struct {
	// Binary is the primary executable, relative to the version's entry
	// directory.
	Binary      string    `yaml:"binary"`
	InstalledAt time.Time `yaml:"installed_at"`
}

// ReadMetadata loads a tool's metadata, returning an empty record when none
// exists yet.
func (r Root) ReadMetadata(name string) (*Metadata, error) {
	path := r.MetadataPath(name)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Metadata{Tool: name, Installs: map[string]Install{}}, nil
		}
		return nil, &IOError{Op: "read", Path: path, Err: err}
	}

	var meta Metadata
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, &IOError{Op: "decode", Path: path, Err: err}
	}
	if meta.Tool == "" {
		meta.Tool = name
	}
	if meta.Installs == nil {
		meta.Installs = map[string]Install{}
	}
	return &meta, nil
}

// WriteMetadata persists a tool's metadata atomically.
func (r Root) WriteMetadata(meta *Metadata) error {
	path := r.MetadataPath(meta.Tool)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &IOError{Op: "mkdir", Path: filepath.Dir(path), Err: err}
	}

	data, err := yaml.Marshal(meta)
	if err != nil {
		return &IOError{Op: "encode", Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+metadataFile+"-*")
	if err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return &IOError{Op: "write", Path: path, Err: err}
	}
	return nil
}
