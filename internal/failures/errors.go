package failures

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrResolution    = errors.New("resolution error")
	ErrFormat        = errors.New("format error")
	ErrIO            = errors.New("io error")
	ErrPublish       = errors.New("publish error")
	ErrConfiguration = errors.New("configuration error")
)

// Exit codes reported by the CLI for each marker.
const (
	ExitOK            = 0
	ExitGeneric       = 1
	ExitConfiguration = 2
	ExitResolution    = 3
	ExitFormat        = 4
	ExitIO            = 5
	ExitPublish       = 6
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrIO
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Kind returns the short classification name of err, or "unknown".
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrConfiguration):
		return "configuration"
	case errors.Is(err, ErrResolution):
		return "resolution"
	case errors.Is(err, ErrFormat):
		return "format"
	case errors.Is(err, ErrPublish):
		return "publish"
	case errors.Is(err, ErrIO):
		return "io"
	default:
		return "unknown"
	}
}

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	switch Kind(err) {
	case "":
		return ExitOK
	case "configuration":
		return ExitConfiguration
	case "resolution":
		return ExitResolution
	case "format":
		return ExitFormat
	case "publish":
		return ExitPublish
	case "io":
		return ExitIO
	default:
		return ExitGeneric
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "stage failure"
	}
	return strings.Join(parts, ": ")
}
