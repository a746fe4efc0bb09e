package logger

import (
	"bytes"
	"os"
	"testing"
)

func TestDebugSuppressedWhenNotVerbose(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	SetVerbose(false)
	Debug("should not appear")

	if buf.Len() != 0 {
		t.Errorf("expected no output, got %q", buf.String())
	}
}

func TestDebugPrintedWhenVerbose(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	defer SetVerbose(false)

	SetVerbose(true)
	Debug("projecting %d points", 12)

	if got := buf.String(); got != "[DEBUG] projecting 12 points\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestDegradedTagged(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)
	defer SetVerbose(false)

	SetVerbose(true)
	Degraded("umap failed, using fallback")

	if got := buf.String(); got != "[DEGRADED] umap failed, using fallback\n" {
		t.Errorf("unexpected output: %q", got)
	}
}

func TestWarnAlwaysPrinted(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	defer SetOutput(os.Stderr)

	SetVerbose(false)
	Warn("qdrant unreachable")

	if got := buf.String(); got != "[WARN] qdrant unreachable\n" {
		t.Errorf("unexpected output: %q", got)
	}
}
