// Package shim writes the thin executable indirections that expose cached
// tools on the search path. A shim never embeds an absolute path: it
// resolves the cache root from its own location every time it runs, so a
// relocated cache root keeps working without regenerating anything.
package shim

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// GenerationError reports a failure to write or replace a shim.
type GenerationError struct {
	Tool string
	Err  error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("failed to generate shim for %s: %v", e.Tool, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Path returns the shim location for a tool inside the bin directory.
func Path(binDir, tool string) string {
	if runtime.GOOS == "windows" {
		return filepath.Join(binDir, tool+".bat")
	}
	return filepath.Join(binDir, tool)
}

// Exists reports whether a shim is present for the tool.
func Exists(binDir, tool string) bool {
	info, err := os.Stat(Path(binDir, tool))
	return err == nil && info.Mode().IsRegular()
}

// Create writes the shim for one installed tool version, replacing any
// previous shim atomically. binaryRel is the primary executable relative to
// the version's cache entry directory.
func Create(binDir, tool, version, binaryRel string) error {
	if err := os.MkdirAll(binDir, 0755); err != nil {
		return &GenerationError{Tool: tool, Err: err}
	}

	script := script(tool, version, binaryRel)
	path := Path(binDir, tool)

	tmp, err := os.CreateTemp(binDir, "."+tool+"-*")
	if err != nil {
		return &GenerationError{Tool: tool, Err: err}
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.WriteString(script); err != nil {
		tmp.Close()
		return &GenerationError{Tool: tool, Err: err}
	}
	if err := tmp.Chmod(0755); err != nil {
		tmp.Close()
		return &GenerationError{Tool: tool, Err: err}
	}
	if err := tmp.Close(); err != nil {
		return &GenerationError{Tool: tool, Err: err}
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return &GenerationError{Tool: tool, Err: errors.Wrap(err, "failed to replace shim")}
	}
	return nil
}

// Remove deletes a tool's shim. Removing an absent shim is a no-op.
func Remove(binDir, tool string) error {
	if err := os.Remove(Path(binDir, tool)); err != nil && !os.IsNotExist(err) {
		return &GenerationError{Tool: tool, Err: err}
	}
	return nil
}

// script renders the shim body. The target path is expressed relative to
// the shim's own directory ("$dir/../tools/...") and the shim execs the
// real binary, so arguments and the exit status pass through unchanged.
func script(tool, version, binaryRel string) string {
	if runtime.GOOS == "windows" {
		target := filepath.Join("..", "tools", tool, version, binaryRel)
		return fmt.Sprintf("@echo off\r\n\"%%~dp0%s\" %%*\r\nexit /b %%errorlevel%%\r\n", target)
	}

	target := filepath.ToSlash(filepath.Join("..", "tools", tool, version, binaryRel))
	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	fmt.Fprintf(&b, "# frate shim for %s %s\n", tool, version)
	b.WriteString(`dir=$(CDPATH= cd -- "$(dirname -- "$0")" && pwd -P)` + "\n")
	fmt.Fprintf(&b, "exec \"$dir/%s\" \"$@\"\n", target)
	return b.String()
}
