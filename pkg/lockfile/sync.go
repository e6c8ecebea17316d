package lockfile

import (
	"context"
	"fmt"
	"strings"

	"github.com/apex/log"

	"github.com/konni332/frate/pkg/manifest"
	"github.com/konni332/frate/pkg/platform"
	"github.com/konni332/frate/pkg/registry"
	"github.com/konni332/frate/pkg/resolve"
)

// Registry is the slice of the registry client the synchronizer needs.
type Registry interface {
	Lookup(ctx context.Context, name string) (*registry.ToolRecord, error)
}

// NoCompatibleAssetError reports that a resolved release has no asset for
// the running platform.
type NoCompatibleAssetError struct {
	Tool      string
	Version   string
	Platform  string
	Available []string
}

func (e *NoCompatibleAssetError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("%s %s publishes no assets", e.Tool, e.Version)
	}
	return fmt.Sprintf("%s %s has no asset for %s (available: %s)",
		e.Tool, e.Version, e.Platform, strings.Join(e.Available, ", "))
}

// Sync reconciles the manifest against an existing lockfile and returns the
// fully rebuilt replacement. Locked entries whose version still satisfies
// the manifest requirement and whose platform still matches the running one
// are kept untouched; everything else is re-resolved against the registry.
// Entries for tools no longer in the manifest are dropped.
//
// Any failure aborts the whole sync; the caller only writes the returned
// lockfile on success, so the file on disk is never partially updated.
func Sync(ctx context.Context, m *manifest.Manifest, existing *Lockfile, reg Registry, currentPlatform string) (*Lockfile, error) {
	next := &Lockfile{}

	for _, name := range m.Names() {
		requirement := m.Dependencies[name]

		if entry, ok := existing.Get(name); ok &&
			resolve.Satisfies(entry.Version, requirement) &&
			platform.Matches(entry.Platform, currentPlatform) {
			log.Debugf("keeping %s %s (satisfies %q)", name, entry.Version, requirement)
			next.Tools = append(next.Tools, entry)
			continue
		}

		entry, err := resolveEntry(ctx, reg, name, requirement, currentPlatform)
		if err != nil {
			return nil, err
		}
		log.Debugf("locked %s %s from %s", entry.Name, entry.Version, entry.URL)
		next.Tools = append(next.Tools, entry)
	}

	return next, nil
}

func resolveEntry(ctx context.Context, reg Registry, name, requirement, currentPlatform string) (Entry, error) {
	record, err := reg.Lookup(ctx, name)
	if err != nil {
		return Entry{}, err
	}

	version, err := resolve.Resolve(name, requirement, record.VersionStrings())
	if err != nil {
		return Entry{}, err
	}

	release, ok := record.Release(version)
	if !ok {
		// Resolve only returns versions taken from the record.
		return Entry{}, fmt.Errorf("registry record for %s is missing resolved version %s", name, version)
	}

	for _, asset := range release.Assets {
		if platform.Matches(asset.Platform, currentPlatform) {
			return Entry{
				Name:     name,
				Version:  version,
				URL:      asset.URL,
				Checksum: asset.Checksum,
				Platform: currentPlatform,
			}, nil
		}
	}

	available := make([]string, len(release.Assets))
	for i, asset := range release.Assets {
		available[i] = asset.Platform
	}
	return Entry{}, &NoCompatibleAssetError{
		Tool:      name,
		Version:   version,
		Platform:  currentPlatform,
		Available: available,
	}
}
