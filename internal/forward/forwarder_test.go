// Beaconfall - Resource Timing Beacon Collection and Waterfall Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/beaconfall

package forward

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// stubForwarder records calls and reports a configured outcome.
type stubForwarder struct {
	name   string
	err    error
	n      int
	calls  int
	closed bool
}

func (s *stubForwarder) Forward(_ context.Context, _ []byte, _ string, cb Callback) {
	s.calls++
	cb(s.err, s.n)
}

func (s *stubForwarder) Name() string { return s.name }

func (s *stubForwarder) Close() error {
	s.closed = true
	return s.err
}

func TestLogForwarder(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	f := NewLogForwarderWithLogger(logger)

	if f.Name() != "log" {
		t.Errorf("Name() = %q, want %q", f.Name(), "log")
	}

	calls := 0
	f.Forward(context.Background(), []byte("<svg/>"), "\n", func(err error, n int) {
		calls++
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if want := len("<svg/>") + len("\n"); n != want {
			t.Errorf("n = %d, want %d", n, want)
		}
	})
	if calls != 1 {
		t.Fatalf("callback invoked %d times, want exactly once", calls)
	}
	if !strings.Contains(buf.String(), "<svg/>") {
		t.Errorf("log output missing forwarded data: %s", buf.String())
	}

	// Nil callback must not panic.
	f.Forward(context.Background(), []byte("x"), "", nil)

	if err := f.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
}

func TestFileForwarder(t *testing.T) {
	t.Run("appends records with separator", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "beacons.out")
		f, err := NewFileForwarder(path)
		if err != nil {
			t.Fatalf("NewFileForwarder: %v", err)
		}
		defer f.Close()

		for _, rec := range []string{"first", "second"} {
			calls := 0
			f.Forward(context.Background(), []byte(rec), "\n", func(err error, n int) {
				calls++
				if err != nil {
					t.Errorf("Forward(%q) error: %v", rec, err)
				}
				if want := len(rec) + 1; n != want {
					t.Errorf("Forward(%q) n = %d, want %d", rec, n, want)
				}
			})
			if calls != 1 {
				t.Fatalf("callback invoked %d times, want exactly once", calls)
			}
		}

		got, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("ReadFile: %v", err)
		}
		if string(got) != "first\nsecond\n" {
			t.Errorf("file contents = %q, want %q", got, "first\nsecond\n")
		}
	})

	t.Run("reopens existing file in append mode", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "beacons.out")
		if err := os.WriteFile(path, []byte("existing\n"), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}

		f, err := NewFileForwarder(path)
		if err != nil {
			t.Fatalf("NewFileForwarder: %v", err)
		}
		f.Forward(context.Background(), []byte("new"), "\n", nil)
		if err := f.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}

		got, _ := os.ReadFile(path)
		if string(got) != "existing\nnew\n" {
			t.Errorf("file contents = %q, want %q", got, "existing\nnew\n")
		}
	})

	t.Run("forward after close reports ErrClosed", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "beacons.out")
		f, err := NewFileForwarder(path)
		if err != nil {
			t.Fatalf("NewFileForwarder: %v", err)
		}
		if err := f.Close(); err != nil {
			t.Fatalf("Close: %v", err)
		}

		calls := 0
		f.Forward(context.Background(), []byte("late"), "\n", func(err error, n int) {
			calls++
			if !errors.Is(err, ErrClosed) {
				t.Errorf("error = %v, want ErrClosed", err)
			}
			if n != 0 {
				t.Errorf("n = %d, want 0", n)
			}
		})
		if calls != 1 {
			t.Fatalf("callback invoked %d times, want exactly once", calls)
		}
	})

	t.Run("double close is safe", func(t *testing.T) {
		f, err := NewFileForwarder(filepath.Join(t.TempDir(), "beacons.out"))
		if err != nil {
			t.Fatalf("NewFileForwarder: %v", err)
		}
		if err := f.Close(); err != nil {
			t.Fatalf("first Close: %v", err)
		}
		if err := f.Close(); err != nil {
			t.Errorf("second Close: %v", err)
		}
	})
}

func TestMultiForwarder(t *testing.T) {
	t.Run("aggregates bytes across children", func(t *testing.T) {
		a := &stubForwarder{name: "a", n: 10}
		b := &stubForwarder{name: "b", n: 7}
		m := NewMultiForwarder(a, b)

		calls := 0
		m.Forward(context.Background(), []byte("x"), "\n", func(err error, n int) {
			calls++
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if n != 17 {
				t.Errorf("n = %d, want 17", n)
			}
		})
		if calls != 1 {
			t.Fatalf("callback invoked %d times, want exactly once", calls)
		}
		if a.calls != 1 || b.calls != 1 {
			t.Errorf("child calls = %d, %d, want 1, 1", a.calls, b.calls)
		}
	})

	t.Run("reports first child error and keeps going", func(t *testing.T) {
		errA := errors.New("sink a down")
		errB := errors.New("sink b down")
		a := &stubForwarder{name: "a", err: errA}
		b := &stubForwarder{name: "b", err: errB, n: 5}
		m := NewMultiForwarder(a, b)

		m.Forward(context.Background(), []byte("x"), "", func(err error, n int) {
			if !errors.Is(err, errA) {
				t.Errorf("error = %v, want first child error %v", err, errA)
			}
			if n != 5 {
				t.Errorf("n = %d, want 5", n)
			}
		})
		if b.calls != 1 {
			t.Errorf("second child not invoked after first child error")
		}
	})

	t.Run("close closes every child", func(t *testing.T) {
		a := &stubForwarder{name: "a", err: errors.New("close a")}
		b := &stubForwarder{name: "b"}
		m := NewMultiForwarder(a, b)

		if err := m.Close(); err == nil {
			t.Error("Close() = nil, want first child error")
		}
		if !a.closed || !b.closed {
			t.Errorf("closed = %v, %v, want both true", a.closed, b.closed)
		}
	})
}
