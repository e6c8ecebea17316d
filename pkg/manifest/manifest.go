// Package manifest reads and writes the frate.toml project manifest: the
// declarative list of tools a project depends on, keyed by name with a
// semantic-version requirement each.
package manifest

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// FileName is the manifest file name inside a project directory.
const FileName = "frate.toml"

// Manifest is the parsed frate.toml.
type Manifest struct {
	Project      Project           `toml:"project"`
	Dependencies map[string]string `toml:"dependencies"`
}

// Project identifies the owning project.
type Project struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// ParseError describes a malformed manifest file.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid manifest %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// New returns a manifest for a fresh project with no dependencies.
func New(projectName string) *Manifest {
	return &Manifest{
		Project: Project{
			Name:    projectName,
			Version: "0.1.0",
		},
		Dependencies: map[string]string{},
	}
}

// Load reads and parses the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read manifest: %s", path)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, &ParseError{Path: path, Err: err}
	}
	if m.Dependencies == nil {
		m.Dependencies = map[string]string{}
	}
	return &m, nil
}

// LoadDir loads the manifest from a project directory.
func LoadDir(dir string) (*Manifest, error) {
	return Load(filepath.Join(dir, FileName))
}

// Save writes the manifest to path. Encoding is deterministic: the TOML
// encoder emits map keys in sorted order, so an unmodified manifest
// round-trips to equivalent content.
func (m *Manifest) Save(path string) error {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(m); err != nil {
		return errors.Wrap(err, "failed to encode manifest")
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return errors.Wrapf(err, "failed to write manifest: %s", path)
	}
	return nil
}

// Add records a dependency, replacing any previous requirement for the
// same tool name.
func (m *Manifest) Add(name, requirement string) {
	if m.Dependencies == nil {
		m.Dependencies = map[string]string{}
	}
	m.Dependencies[name] = requirement
}

// Remove drops a dependency. It reports whether the tool was present.
func (m *Manifest) Remove(name string) bool {
	_, ok := m.Dependencies[name]
	delete(m.Dependencies, name)
	return ok
}

// Names returns the declared tool names in sorted order.
func (m *Manifest) Names() []string {
	names := make([]string, 0, len(m.Dependencies))
	for name := range m.Dependencies {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
