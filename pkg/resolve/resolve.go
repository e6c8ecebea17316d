// Package resolve matches a declared version requirement against the
// versions a registry publishes for a tool.
package resolve

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// NoMatchingVersionError reports that no published version satisfies the
// requirement.
type NoMatchingVersionError struct {
	Tool        string
	Requirement string
	Available   []string
}

func (e *NoMatchingVersionError) Error() string {
	if len(e.Available) == 0 {
		return fmt.Sprintf("no version of %s satisfies %q: none published", e.Tool, e.Requirement)
	}
	return fmt.Sprintf("no version of %s satisfies %q (available: %s)",
		e.Tool, e.Requirement, strings.Join(e.Available, ", "))
}

// Resolve picks the single version that satisfies the requirement: the
// highest satisfying semantic version, independent of the order the
// registry listed them in. Published versions that do not parse as semver
// are skipped. Prereleases only satisfy a requirement that itself names a
// prerelease, per semver constraint semantics.
func Resolve(tool, requirement string, published []string) (string, error) {
	constraint, err := semver.NewConstraint(requirement)
	if err != nil {
		return "", fmt.Errorf("invalid version requirement %q for %s: %w", requirement, tool, err)
	}

	var best *semver.Version
	var bestRaw string
	for _, raw := range published {
		v, err := semver.NewVersion(raw)
		if err != nil {
			continue
		}
		if !constraint.Check(v) {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
			bestRaw = raw
		}
	}

	if best == nil {
		return "", &NoMatchingVersionError{
			Tool:        tool,
			Requirement: requirement,
			Available:   published,
		}
	}
	return bestRaw, nil
}

// Satisfies reports whether a concrete version meets a requirement. The
// lock synchronizer uses it to decide whether an existing locked entry is
// still valid. Unparsable input never satisfies anything.
func Satisfies(version, requirement string) bool {
	constraint, err := semver.NewConstraint(requirement)
	if err != nil {
		return false
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return false
	}
	return constraint.Check(v)
}
