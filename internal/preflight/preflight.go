package preflight

import (
	"fmt"
	"strings"

	"cleanstage/internal/config"
	"cleanstage/internal/failures"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes the directory checks for the given config.
func RunAll(cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	results := []Result{
		CheckDirectoryAccess("Artifact store", cfg.Paths.StoreDir),
		CheckDirectoryAccess("Work directory", cfg.Paths.WorkDir),
	}

	// Empty output_dir writes into the current directory.
	outputDir := cfg.Paths.OutputDir
	if outputDir == "" {
		outputDir = "."
	}
	results = append(results, CheckDirectoryAccess("Output directory", outputDir))

	if cfg.Paths.LogDir != "" {
		results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))
	}

	return results
}

// Err folds failed results into a single IO error, or nil when all passed.
func Err(results []Result) error {
	var failed []string
	for _, result := range results {
		if !result.Passed {
			failed = append(failed, fmt.Sprintf("%s: %s", result.Name, result.Detail))
		}
	}
	if len(failed) == 0 {
		return nil
	}
	return failures.Wrap(failures.ErrIO, "preflight", "check directories", strings.Join(failed, "; "), nil)
}
