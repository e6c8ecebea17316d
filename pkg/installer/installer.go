// Package installer orchestrates the install pipeline for locked tools:
// fetch, verify, extract, record, shim. It is the only caller of the
// lower-level packages that mutates the cache, and it reports per-tool
// outcomes instead of aborting a whole run on the first failure.
package installer

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/apex/log"
	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"

	"github.com/konni332/frate/pkg/archive"
	"github.com/konni332/frate/pkg/cache"
	"github.com/konni332/frate/pkg/checksums"
	"github.com/konni332/frate/pkg/fetch"
	"github.com/konni332/frate/pkg/lockfile"
	"github.com/konni332/frate/pkg/shim"
)

// ErrNotLocked is returned when a named tool has no lockfile entry.
var ErrNotLocked = errors.New("tool not present in lockfile")

// ErrNotInstalled is returned by Locate when a tool has no usable cache
// entry.
var ErrNotInstalled = errors.New("tool not installed")

// Status classifies the outcome of one tool in a run.
type Status string

const (
	StatusInstalled Status = "installed"
	StatusSkipped   Status = "skipped"
	StatusRemoved   Status = "removed"
	StatusFailed    Status = "failed"
)

// Outcome is the result for a single tool.
type Outcome struct {
	Tool    string
	Version string
	Status  Status
	Err     error
}

// Report aggregates per-tool outcomes of one operation so the presentation
// layer can render status without re-deriving it.
type Report struct {
	Outcomes []Outcome
}

func (r *Report) add(o Outcome) { r.Outcomes = append(r.Outcomes, o) }

// Installed counts successfully installed tools.
func (r *Report) Installed() int { return r.count(StatusInstalled) }

// Skipped counts tools already present and consistent.
func (r *Report) Skipped() int { return r.count(StatusSkipped) }

// Removed counts uninstalled or cleaned tools.
func (r *Report) Removed() int { return r.count(StatusRemoved) }

// Failed counts tools whose pipeline failed.
func (r *Report) Failed() int { return r.count(StatusFailed) }

func (r *Report) count(s Status) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Status == s {
			n++
		}
	}
	return n
}

// Err returns the aggregated error across failed tools, or nil when every
// tool succeeded.
func (r *Report) Err() error {
	var result *multierror.Error
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			result = multierror.Append(result, errors.Wrap(o.Err, o.Tool))
		}
	}
	return result.ErrorOrNil()
}

// Installer drives installs, uninstalls and cache cleaning against one
// cache root.
type Installer struct {
	Root cache.Root
}

// New returns an installer for the given cache root.
func New(root cache.Root) *Installer {
	return &Installer{Root: root}
}

// Install installs the named tool from the lockfile, or every locked tool
// when tool is empty. One tool's failure does not abort the others.
func (i *Installer) Install(ctx context.Context, lock *lockfile.Lockfile, tool string) (*Report, error) {
	entries := lock.Tools
	if tool != "" {
		entry, ok := lock.Get(tool)
		if !ok {
			return nil, errors.Wrapf(ErrNotLocked, "%s", tool)
		}
		entries = []lockfile.Entry{entry}
	}

	if err := i.Root.Ensure(); err != nil {
		return nil, err
	}

	report := &Report{}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		status, err := i.installOne(ctx, entry)
		if err != nil {
			log.WithError(err).Errorf("failed to install %s", entry.Name)
			report.add(Outcome{Tool: entry.Name, Version: entry.Version, Status: StatusFailed, Err: err})
			continue
		}
		report.add(Outcome{Tool: entry.Name, Version: entry.Version, Status: status})
	}
	return report, nil
}

func (i *Installer) installOne(ctx context.Context, entry lockfile.Entry) (Status, error) {
	if i.consistent(entry) {
		log.Debugf("%s %s already installed", entry.Name, entry.Version)
		return StatusSkipped, nil
	}

	entryDir := i.Root.EntryDir(entry.Name, entry.Version)
	created := false
	if !i.Root.HasEntry(entry.Name, entry.Version) {
		archivePath, err := i.ensureArchive(ctx, entry)
		if err != nil {
			return StatusFailed, err
		}
		log.Infof("extracting %s %s", entry.Name, entry.Version)
		if err := archive.Extract(archivePath, entryDir); err != nil {
			return StatusFailed, err
		}
		created = true
	}

	if err := i.expose(entry, entryDir); err != nil {
		// A cache entry without a shim must not outlive the install.
		if created {
			i.discardEntry(entry)
		}
		return StatusFailed, err
	}
	log.Infof("installed %s %s", entry.Name, entry.Version)
	return StatusInstalled, nil
}

// expose records the entry's primary binary in the tool metadata and writes
// the shim, completing the install.
func (i *Installer) expose(entry lockfile.Entry, entryDir string) error {
	binaryRel, err := cache.DetectPrimaryBinary(entryDir, entry.Name)
	if err != nil {
		return err
	}

	meta, err := i.Root.ReadMetadata(entry.Name)
	if err != nil {
		return err
	}
	meta.Current = entry.Version
	meta.Installs[entry.Version] = cache.Install{
		Binary:      binaryRel,
		InstalledAt: time.Now().UTC(),
	}
	if err := i.Root.WriteMetadata(meta); err != nil {
		return err
	}

	return shim.Create(i.Root.BinDir(), entry.Name, entry.Version, binaryRel)
}

// discardEntry rolls back a cache entry whose install did not complete, so
// the cache never durably holds an entry with no shim. Best effort: rollback
// failures are logged, the install error itself is already on its way to
// the caller.
func (i *Installer) discardEntry(entry lockfile.Entry) {
	if err := os.RemoveAll(i.Root.EntryDir(entry.Name, entry.Version)); err != nil {
		log.WithError(err).Warnf("failed to roll back cache entry for %s %s", entry.Name, entry.Version)
		return
	}

	meta, err := i.Root.ReadMetadata(entry.Name)
	if err != nil {
		log.WithError(err).Warnf("failed to read metadata while rolling back %s", entry.Name)
		return
	}
	_, recorded := meta.Installs[entry.Version]
	if !recorded && meta.Current != entry.Version {
		return
	}
	delete(meta.Installs, entry.Version)
	if meta.Current == entry.Version {
		meta.Current = ""
	}
	if err := i.Root.WriteMetadata(meta); err != nil {
		log.WithError(err).Warnf("failed to update metadata while rolling back %s", entry.Name)
	}
}

// consistent reports whether a tool's cache entry and shim both exist and
// agree on the locked version.
func (i *Installer) consistent(entry lockfile.Entry) bool {
	if !i.Root.HasEntry(entry.Name, entry.Version) {
		return false
	}
	if !shim.Exists(i.Root.BinDir(), entry.Name) {
		return false
	}
	meta, err := i.Root.ReadMetadata(entry.Name)
	if err != nil {
		return false
	}
	if meta.Current != entry.Version {
		return false
	}
	_, ok := meta.Installs[entry.Version]
	return ok
}

// ensureArchive returns the path of a verified archive for the locked
// entry, downloading it when the archive store has no usable copy. A
// cached archive that fails verification is discarded before the fresh
// download; a fresh download that fails verification is fatal.
func (i *Installer) ensureArchive(ctx context.Context, entry lockfile.Entry) (string, error) {
	archivePath := i.Root.ArchivePath(entry.URL)

	if i.Root.HasArchive(entry.URL) {
		if err := checksums.VerifyFile(archivePath, entry.Checksum); err == nil {
			log.Debugf("using cached archive for %s %s", entry.Name, entry.Version)
			return archivePath, nil
		}
		log.Warnf("cached archive for %s failed verification, re-downloading", entry.Name)
		if err := i.Root.RemoveArchive(entry.URL); err != nil {
			return "", err
		}
	}

	// Stage the download next to its final location so the rename after
	// verification stays on one filesystem.
	partPath := archivePath + ".partial"
	defer os.Remove(partPath)

	log.Infof("downloading %s", entry.URL)
	if err := fetch.Download(ctx, entry.URL, partPath); err != nil {
		return "", err
	}
	if err := checksums.VerifyFile(partPath, entry.Checksum); err != nil {
		return "", err
	}
	if err := i.Root.StoreArchive(partPath, entry.URL); err != nil {
		return "", err
	}
	return archivePath, nil
}

// Uninstall removes the named tool, or every cached tool when tool is
// empty. The shim goes first so a crash mid-way never leaves a shim
// pointing at a removed cache entry. Uninstalling an absent tool is a
// successful no-op.
func (i *Installer) Uninstall(tool string) (*Report, error) {
	tools, err := i.targetTools(tool)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for _, name := range tools {
		if err := i.removeOne(name); err != nil {
			report.add(Outcome{Tool: name, Status: StatusFailed, Err: err})
			continue
		}
		report.add(Outcome{Tool: name, Status: StatusRemoved})
	}
	return report, nil
}

// Clean removes cache entries (and their shims, preserving the pairing
// invariant) to reclaim disk space. With no tool named it also empties the
// archive store.
func (i *Installer) Clean(tool string) (*Report, error) {
	report, err := i.Uninstall(tool)
	if err != nil {
		return nil, err
	}
	if tool == "" {
		if err := i.Root.RemoveArchives(); err != nil {
			return report, err
		}
	}
	return report, nil
}

func (i *Installer) targetTools(tool string) ([]string, error) {
	if tool != "" {
		return []string{tool}, nil
	}
	return i.Root.Tools()
}

func (i *Installer) removeOne(name string) error {
	log.Infof("removing %s", name)
	if err := shim.Remove(i.Root.BinDir(), name); err != nil {
		return err
	}
	return i.Root.RemoveTool(name)
}

// Locate returns the installed binary path and shim path for a tool.
func (i *Installer) Locate(tool string) (binaryPath, shimPath string, err error) {
	meta, err := i.Root.ReadMetadata(tool)
	if err != nil {
		return "", "", err
	}
	if meta.Current == "" {
		return "", "", errors.Wrapf(ErrNotInstalled, "%s", tool)
	}
	install, ok := meta.Installs[meta.Current]
	if !ok {
		return "", "", errors.Wrapf(ErrNotInstalled, "%s", tool)
	}

	binaryPath = filepath.Join(i.Root.EntryDir(tool, meta.Current), install.Binary)
	if _, statErr := os.Stat(binaryPath); statErr != nil {
		return "", "", errors.Wrapf(ErrNotInstalled, "%s", tool)
	}

	shimPath = shim.Path(i.Root.BinDir(), tool)
	if !shim.Exists(i.Root.BinDir(), tool) {
		shimPath = ""
	}
	return binaryPath, shimPath, nil
}
