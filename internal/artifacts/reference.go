package artifacts

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"cleanstage/internal/failures"
)

const latestAlias = "latest"

var namePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Reference identifies an artifact version: a concrete vN or the latest one.
type Reference struct {
	Name    string
	Version int
	Latest  bool
}

// String renders the reference in name:version form.
func (r Reference) String() string {
	if r.Latest {
		return r.Name + ":" + latestAlias
	}
	return fmt.Sprintf("%s:v%d", r.Name, r.Version)
}

// ValidName reports whether name can be used as an artifact name.
func ValidName(name string) bool {
	return namePattern.MatchString(name) && name != "." && name != ".."
}

// ParseReference parses name, name:latest, or name:vN.
func ParseReference(raw string) (Reference, error) {
	value := strings.TrimSpace(raw)
	name, version, hasVersion := strings.Cut(value, ":")
	if !ValidName(name) {
		return Reference{}, failures.Wrap(failures.ErrConfiguration, "artifacts", "parse reference",
			fmt.Sprintf("invalid artifact name in %q", raw), nil)
	}
	if !hasVersion || version == latestAlias {
		return Reference{Name: name, Latest: true}, nil
	}
	digits, ok := strings.CutPrefix(version, "v")
	if !ok || digits == "" {
		return Reference{}, failures.Wrap(failures.ErrConfiguration, "artifacts", "parse reference",
			fmt.Sprintf("invalid version %q in %q (expected vN or latest)", version, raw), nil)
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 0 || strings.HasPrefix(digits, "+") {
		return Reference{}, failures.Wrap(failures.ErrConfiguration, "artifacts", "parse reference",
			fmt.Sprintf("invalid version %q in %q (expected vN or latest)", version, raw), nil)
	}
	return Reference{Name: name, Version: n}, nil
}
