package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/apex/log"
	"github.com/konni332/frate/pkg/cache"
	"github.com/konni332/frate/pkg/installer"
	"github.com/konni332/frate/pkg/lockfile"
	"github.com/konni332/frate/pkg/manifest"
	"github.com/konni332/frate/pkg/platform"
	"github.com/konni332/frate/pkg/registry"
)

// resolveProjectDir determines the project directory to operate on.
// The --project flag wins; otherwise the current directory is used.
func resolveProjectDir() (string, error) {
	if projectDir != "" {
		return projectDir, nil
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to determine current directory: %w", err)
	}
	return dir, nil
}

// loadProjectManifest loads frate.toml from the project directory, with a
// hint toward 'frate init' when the file is missing.
func loadProjectManifest(dir string) (*manifest.Manifest, error) {
	path := filepath.Join(dir, manifest.FileName)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("%s not found in %s. Run 'frate init' to create one", manifest.FileName, dir)
	}
	m, err := manifest.LoadDir(dir)
	if err != nil {
		log.WithError(err).Errorf("Failed to load %s", path)
		return nil, err
	}
	return m, nil
}

// resolveCacheRoot determines the cache root. The --root flag wins;
// otherwise FRATE_HOME or the XDG data dir applies.
func resolveCacheRoot() (cache.Root, error) {
	if cacheDir != "" {
		return cache.Root{Dir: cacheDir}, nil
	}
	return cache.DefaultRoot()
}

// newRegistryClient builds a registry client from the --registry flag,
// falling back to FRATE_REGISTRY and then the public index.
func newRegistryClient() *registry.Client {
	return registry.NewClient(registryURL)
}

// syncLockfile re-resolves the manifest against the registry and writes
// frate.lock. The lockfile on disk is only touched when every requirement
// resolved.
func syncLockfile(ctx context.Context, dir string, m *manifest.Manifest) (*lockfile.Lockfile, error) {
	existing, err := lockfile.LoadDir(dir)
	if err != nil {
		log.WithError(err).Error("Failed to load existing lockfile")
		return nil, err
	}

	current := platform.Current()
	log.Debugf("Resolving %d requirement(s) for %s", len(m.Names()), current)

	lock, err := lockfile.Sync(ctx, m, existing, newRegistryClient(), current)
	if err != nil {
		return nil, err
	}

	lockPath := filepath.Join(dir, lockfile.FileName)
	if err := lock.Save(lockPath); err != nil {
		log.WithError(err).Errorf("Failed to write %s", lockPath)
		return nil, err
	}
	log.Infof("Locked %d tool(s) in %s", len(lock.Tools), lockfile.FileName)
	return lock, nil
}

// logOutcomes reports each per-tool outcome of an install, uninstall or
// clean run at an appropriate level.
func logOutcomes(report *installer.Report) {
	for _, outcome := range report.Outcomes {
		entry := log.WithField("tool", outcome.Tool)
		if outcome.Version != "" {
			entry = entry.WithField("version", outcome.Version)
		}
		switch outcome.Status {
		case installer.StatusInstalled:
			entry.Info("installed")
		case installer.StatusSkipped:
			entry.Info("up to date")
		case installer.StatusRemoved:
			entry.Info("removed")
		case installer.StatusFailed:
			entry.WithError(outcome.Err).Error("failed")
		}
	}
}
