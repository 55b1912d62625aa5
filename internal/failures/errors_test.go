package failures_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"cleanstage/internal/failures"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := failures.Wrap(failures.ErrFormat, "cleaning", "parse", "bad csv", base)
	if !errors.Is(err, failures.ErrFormat) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"cleaning", "parse", "bad csv", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := failures.Wrap(failures.ErrPublish, "", "", "", nil)
	if !errors.Is(err, failures.ErrPublish) {
		t.Fatalf("expected publish marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "stage failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestExitCodeMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, failures.ExitOK},
		{failures.Wrap(failures.ErrConfiguration, "params", "validate", "", nil), failures.ExitConfiguration},
		{failures.Wrap(failures.ErrResolution, "store", "resolve", "", nil), failures.ExitResolution},
		{failures.Wrap(failures.ErrFormat, "dataset", "decode", "", nil), failures.ExitFormat},
		{failures.Wrap(failures.ErrIO, "dataset", "write", "", nil), failures.ExitIO},
		{failures.Wrap(failures.ErrPublish, "store", "publish", "", nil), failures.ExitPublish},
		{fmt.Errorf("outer: %w", failures.Wrap(failures.ErrFormat, "", "", "", nil)), failures.ExitFormat},
		{errors.New("plain"), failures.ExitGeneric},
	}
	for _, tc := range cases {
		if got := failures.ExitCode(tc.err); got != tc.want {
			t.Fatalf("ExitCode(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}
