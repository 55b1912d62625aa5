package cleaning

import (
	"path/filepath"

	"cleanstage/internal/config"
	"cleanstage/internal/dataset"
)

// Settings are the configuration-driven parts of the stage.
type Settings struct {
	PriceColumn    string
	DateColumn     string
	DateLayouts    []string
	MalformedDates dataset.MalformedPolicy
	// OutputDir receives the cleaned CSV. Empty means the working directory.
	OutputDir string
}

// DefaultSettings mirror the configuration defaults.
func DefaultSettings() Settings {
	return SettingsFromConfig(nil)
}

// SettingsFromConfig extracts the stage settings from cfg. A nil cfg yields
// the defaults.
func SettingsFromConfig(cfg *config.Config) Settings {
	if cfg == nil {
		defaults := config.Default()
		cfg = &defaults
	}
	return Settings{
		PriceColumn:    cfg.Cleaning.PriceColumn,
		DateColumn:     cfg.Cleaning.DateColumn,
		DateLayouts:    append([]string(nil), cfg.Cleaning.DateLayouts...),
		MalformedDates: dataset.MalformedPolicy(cfg.Cleaning.MalformedDates),
		OutputDir:      cfg.Paths.OutputDir,
	}
}

func (s Settings) outputPath(name string) string {
	if s.OutputDir == "" {
		return name
	}
	return filepath.Join(s.OutputDir, name)
}

func (s Settings) dateOptions() dataset.DateOptions {
	return dataset.DateOptions{Layouts: s.DateLayouts, Policy: s.MalformedDates}
}
