package cache

import (
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// ErrNoExecutable is returned when an extracted tree contains nothing that
// looks runnable.
var ErrNoExecutable = errors.New("no executable found in cache entry")

// DetectPrimaryBinary scans an extracted cache entry for the tool's main
// executable and returns its path relative to dir.
//
// Detection is a deterministic scored ranking rather than filesystem
// enumeration order: an exact case-insensitive match on the tool name wins,
// then a file whose name contains the tool name (release archives often
// ship "just-1.42.1" or "gh_linux_amd64" style names), then any executable.
// Ties break lexicographically.
func DetectPrimaryBinary(dir, toolName string) (string, error) {
	type candidate struct {
		rel   string
		score int
	}

	var candidates []candidate
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		if !isExecutable(path, info.Mode()) {
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		candidates = append(candidates, candidate{
			rel:   rel,
			score: scoreCandidate(filepath.Base(rel), toolName),
		})
		return nil
	})
	if err != nil {
		return "", errors.Wrapf(err, "failed to scan %s", dir)
	}
	if len(candidates) == 0 {
		return "", errors.Wrapf(ErrNoExecutable, "%s", dir)
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score < candidates[j].score
		}
		return candidates[i].rel < candidates[j].rel
	})
	return candidates[0].rel, nil
}

func scoreCandidate(filename, toolName string) int {
	stem := strings.ToLower(strings.TrimSuffix(filename, filepath.Ext(filename)))
	name := strings.ToLower(toolName)

	switch {
	case stem == name:
		return 0
	case strings.HasPrefix(stem, name) || strings.HasSuffix(stem, name):
		return 1
	case strings.Contains(stem, name):
		return 2
	default:
		return 3
	}
}

func isExecutable(path string, mode os.FileMode) bool {
	if runtime.GOOS == "windows" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".exe", ".bat", ".cmd":
			return true
		}
		return false
	}
	return mode.Perm()&0111 != 0
}
