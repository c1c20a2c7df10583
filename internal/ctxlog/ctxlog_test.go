package ctxlog

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestFromContextRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, true)
	ctx := WithLogger(context.Background(), logger)
	if got := FromContext(ctx); got != logger {
		t.Fatalf("FromContext() returned a different logger")
	}
}

func TestFromContextWithoutLoggerDiscards(t *testing.T) {
	logger := FromContext(context.Background())
	if logger == nil {
		t.Fatal("FromContext() = nil")
	}
	logger.Error("dropped")
}

func TestNewLevels(t *testing.T) {
	var quiet bytes.Buffer
	New(&quiet, false).Info("status")
	if quiet.Len() != 0 {
		t.Fatalf("non-verbose logger wrote %q", quiet.String())
	}

	var verbose bytes.Buffer
	New(&verbose, true).Info("status", "file", "a.png")
	out := verbose.String()
	if !strings.Contains(out, "msg=status") || !strings.Contains(out, "file=a.png") {
		t.Fatalf("verbose output = %q", out)
	}
	if strings.Contains(out, "time=") {
		t.Fatalf("verbose output = %q, want no timestamp", out)
	}
}
