package main

import (
	"bytes"
	"strings"
	"testing"
)

// TestGetVersion tests version string resolution.
func TestGetVersion(t *testing.T) {
	if got := getVersion(); got == "" {
		t.Error("expected non-empty version")
	}
}

// TestNewVersionCmd tests the version command output.
func TestNewVersionCmd(t *testing.T) {
	t.Parallel()

	cmd := NewVersionCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)

	cmd.Run(cmd, nil)

	got := out.String()
	if !strings.Contains(got, "gitbook2pdf version") {
		t.Errorf("missing version line: %q", got)
	}
	if !strings.Contains(got, "commit:") {
		t.Errorf("missing commit line: %q", got)
	}
	if !strings.Contains(got, "built:") {
		t.Errorf("missing build date line: %q", got)
	}
}
