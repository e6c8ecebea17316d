package cmd

import (
	"testing"
)

func TestParseToolSpec(t *testing.T) {
	tests := []struct {
		name            string
		arg             string
		wantName        string
		wantRequirement string
		expectError     bool
	}{
		{
			name:            "name with exact version",
			arg:             "just@1.42.4",
			wantName:        "just",
			wantRequirement: "1.42.4",
		},
		{
			name:            "name with caret range",
			arg:             "ripgrep@^14.1",
			wantName:        "ripgrep",
			wantRequirement: "^14.1",
		},
		{
			name:            "bare name defaults to any version",
			arg:             "fd",
			wantName:        "fd",
			wantRequirement: "*",
		},
		{
			name:            "wildcard spelled out",
			arg:             "fd@*",
			wantName:        "fd",
			wantRequirement: "*",
		},
		{
			name:        "empty name",
			arg:         "@1.0.0",
			expectError: true,
		},
		{
			name:        "empty requirement",
			arg:         "just@",
			expectError: true,
		},
		{
			name:        "empty argument",
			arg:         "",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, requirement, err := parseToolSpec(tt.arg)
			if tt.expectError {
				if err == nil {
					t.Fatalf("expected error for %q, got name=%q requirement=%q", tt.arg, name, requirement)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if name != tt.wantName || requirement != tt.wantRequirement {
				t.Errorf("parseToolSpec(%q) = (%q, %q), want (%q, %q)",
					tt.arg, name, requirement, tt.wantName, tt.wantRequirement)
			}
		})
	}
}
