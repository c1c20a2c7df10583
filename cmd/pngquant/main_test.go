package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/chojs23/gopngquant/internal/cli"
)

func TestVersionStringOverride(t *testing.T) {
	old := version
	version = "v1.2.3"
	t.Cleanup(func() {
		version = old
	})

	if got := versionString(); got != "v1.2.3" {
		t.Fatalf("versionString() = %q, want %q", got, "v1.2.3")
	}
}

func parseAndReport(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	opts, err := cli.Parse(args)
	if err == nil {
		err = opts.Validate()
	}
	if err == nil {
		t.Fatalf("args %q did not stop before the engine", args)
	}
	var out, errOut bytes.Buffer
	code = report(&out, &errOut, opts, err)
	return code, out.String(), errOut.String()
}

func TestReportExitCodes(t *testing.T) {
	old := version
	version = "v9.9.9"
	t.Cleanup(func() {
		version = old
	})

	tests := []struct {
		name       string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{name: "version", args: []string{"--version"}, wantCode: 0, wantStdout: "v9.9.9\n"},
		{name: "help", args: []string{"-h"}, wantCode: 0, wantStdout: "usage:  pngquant"},
		{name: "no arguments", args: []string{}, wantCode: 1, wantStderr: "usage:  pngquant"},
		{name: "no files", args: []string{"--speed", "3"}, wantCode: 1, wantStderr: "error: No input files specified\n\n"},
		{name: "unknown flag", args: []string{"--bogus"}, wantCode: 2, wantStderr: "bogus"},
	}
	for _, tt := range tests {
		code, stdout, stderr := parseAndReport(t, tt.args...)
		if code != tt.wantCode {
			t.Fatalf("%s: exit code = %d, want %d", tt.name, code, tt.wantCode)
		}
		if tt.wantStdout != "" && !strings.Contains(stdout, tt.wantStdout) {
			t.Fatalf("%s: stdout = %q, want %q", tt.name, stdout, tt.wantStdout)
		}
		if tt.wantStderr != "" && !strings.Contains(stderr, tt.wantStderr) {
			t.Fatalf("%s: stderr = %q, want %q", tt.name, stderr, tt.wantStderr)
		}
	}
}

func TestReportHelpIncludesBanner(t *testing.T) {
	_, stdout, _ := parseAndReport(t, "--help")
	if !strings.HasPrefix(stdout, "pngquant, ") {
		t.Fatalf("stdout = %q, want banner first", stdout)
	}
}

func TestReportNoFilesBannerOnlyWhenVerbose(t *testing.T) {
	_, _, stderr := parseAndReport(t, "--speed", "3")
	if strings.Contains(stderr, "pngquant, ") {
		t.Fatalf("stderr = %q, want no banner", stderr)
	}
	_, _, stderr = parseAndReport(t, "--verbose", "--speed", "3")
	if !strings.Contains(stderr, "pngquant, ") {
		t.Fatalf("stderr = %q, want banner", stderr)
	}
}
