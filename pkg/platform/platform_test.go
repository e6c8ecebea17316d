package platform

import (
	"runtime"
	"strings"
	"testing"
)

func TestCurrent(t *testing.T) {
	current := Current()

	if !strings.Contains(current, "-") {
		t.Errorf("expected os-arch form, got %q", current)
	}
	if runtime.GOOS == "linux" && !strings.HasPrefix(current, "linux-") {
		t.Errorf("expected linux prefix on linux, got %q", current)
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "canonical passthrough", input: "linux-amd64", expected: "linux-amd64"},
		{name: "rust style triple separator", input: "linux/amd64", expected: "linux-amd64"},
		{name: "x86_64 alias", input: "linux-x86_64", expected: "linux-amd64"},
		{name: "aarch64 alias", input: "linux-aarch64", expected: "linux-arm64"},
		{name: "macos alias", input: "macos-arm64", expected: "darwin-arm64"},
		{name: "osx alias", input: "osx-x86_64", expected: "darwin-amd64"},
		{name: "windows short", input: "win-x64", expected: "windows-amd64"},
		{name: "uppercase", input: "Linux-AMD64", expected: "linux-amd64"},
		{name: "no separator left alone", input: "linux", expected: "linux"},
		{name: "386 alias", input: "windows-i686", expected: "windows-386"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.input); got != tt.expected {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestMatches(t *testing.T) {
	if !Matches("Linux/x86_64", "linux-amd64") {
		t.Error("expected alias spelling to match canonical platform")
	}
	if Matches("darwin-arm64", "linux-amd64") {
		t.Error("expected different platforms not to match")
	}
}
