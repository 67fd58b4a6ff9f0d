package tracing

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestTracingFile(t *testing.T) {
	fname := filepath.Join(t.TempDir(), "span_test.txt")

	if err := Init("sfxbot", "0.0.1", fname); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	ctx, span := StartSpan(context.Background(), "sfx.submit")
	span.WithAttributes(map[string]string{"submission.id": "s1", "empty": ""})
	span.Event("posted")
	_, child := StartSpan(ctx, "sfx.finalize")
	EndSpan(child, errors.New("boom"))
	EndSpan(span, nil)

	data, err := os.ReadFile(fname)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("no data written to trace file")
	}

	mu.Lock()
	file := output
	mu.Unlock()
	if file == nil {
		t.Fatalf("trace file not retained")
	}
	if err = Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	if _, err = file.Write([]byte("x")); !errors.Is(err, os.ErrClosed) {
		t.Fatalf("expected trace file to be closed, got %v", err)
	}

	// a later Init cannot replace the provider, so its file is closed right away
	if err = Init("sfxbot", "0.0.1", filepath.Join(t.TempDir(), "second.txt")); err != nil {
		t.Fatalf("second init failed: %v", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if output != nil {
		t.Fatalf("second trace file retained")
	}
}

func TestNilSpan(t *testing.T) {
	var span *Span
	span.WithAttributes(map[string]string{"k": "v"})
	span.Event("noop")
	EndSpan(span, nil)
}
