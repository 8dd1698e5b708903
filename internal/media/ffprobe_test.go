package media

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFFProbeDuration(t *testing.T) {
	var gotBinary string
	var gotArgs []string

	prober := NewFFProbe("ffprobe", time.Second)
	prober.Run = func(_ context.Context, binary string, args ...string) ([]byte, error) {
		gotBinary = binary
		gotArgs = args
		return []byte(`{"format":{"duration":"128.04"}}`), nil
	}

	duration, err := prober.Duration(context.Background(), "/tmp/clip.mp4")
	if err != nil {
		t.Fatalf("duration: %v", err)
	}
	if duration != 128.04 {
		t.Fatalf("expected 128.04, got %v", duration)
	}

	if gotBinary != "ffprobe" {
		t.Fatalf("unexpected binary %q", gotBinary)
	}
	if len(gotArgs) == 0 || gotArgs[len(gotArgs)-1] != "/tmp/clip.mp4" {
		t.Fatalf("expected file path as final argument, got %v", gotArgs)
	}
}

func TestFFProbeDurationErrors(t *testing.T) {
	prober := NewFFProbe("", 0)

	prober.Run = func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("boom")
	}
	if _, err := prober.Duration(context.Background(), "x"); err == nil {
		t.Fatal("expected error from failing command")
	}

	prober.Run = func(context.Context, string, ...string) ([]byte, error) {
		return []byte("not-json"), nil
	}
	if _, err := prober.Duration(context.Background(), "x"); err == nil {
		t.Fatal("expected error from unparseable output")
	}

	prober.Run = func(context.Context, string, ...string) ([]byte, error) {
		return []byte(`{"format":{}}`), nil
	}
	if _, err := prober.Duration(context.Background(), "x"); err == nil {
		t.Fatal("expected error when duration missing")
	}
}

func TestFFProbeDefaults(t *testing.T) {
	prober := NewFFProbe("  ", -1)
	if prober.Binary != "ffprobe" {
		t.Fatalf("expected default binary, got %q", prober.Binary)
	}
	if prober.Timeout != 30*time.Second {
		t.Fatalf("expected default timeout, got %v", prober.Timeout)
	}
}
