package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeTracker()
	c.normalizeLogging()
	c.normalizeCleaning()
	return nil
}

func (c *Config) normalizePaths() error {
	if value, ok := os.LookupEnv("CLEANSTAGE_STORE_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.StoreDir = strings.TrimSpace(value)
	}
	if strings.TrimSpace(c.Paths.StoreDir) == "" {
		c.Paths.StoreDir = defaultStoreDir
	}
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		c.Paths.WorkDir = defaultWorkDir
	}

	var err error
	if c.Paths.StoreDir, err = expandPath(c.Paths.StoreDir); err != nil {
		return fmt.Errorf("paths.store_dir: %w", err)
	}
	if c.Paths.WorkDir, err = expandPath(c.Paths.WorkDir); err != nil {
		return fmt.Errorf("paths.work_dir: %w", err)
	}
	// An empty log_dir disables the log file.
	if c.Paths.LogDir, err = expandPath(strings.TrimSpace(c.Paths.LogDir)); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(strings.TrimSpace(c.Paths.OutputDir)); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeTracker() {
	if value, ok := os.LookupEnv("CLEANSTAGE_PROJECT"); ok && strings.TrimSpace(value) != "" {
		c.Tracker.Project = value
	}
	c.Tracker.Project = strings.TrimSpace(c.Tracker.Project)
	if c.Tracker.Project == "" {
		c.Tracker.Project = defaultProject
	}
	c.Tracker.JobType = strings.TrimSpace(c.Tracker.JobType)
	if c.Tracker.JobType == "" {
		c.Tracker.JobType = defaultJobType
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

func (c *Config) normalizeCleaning() {
	c.Cleaning.PriceColumn = strings.TrimSpace(c.Cleaning.PriceColumn)
	if c.Cleaning.PriceColumn == "" {
		c.Cleaning.PriceColumn = defaultPriceColumn
	}
	c.Cleaning.DateColumn = strings.TrimSpace(c.Cleaning.DateColumn)
	if c.Cleaning.DateColumn == "" {
		c.Cleaning.DateColumn = defaultDateColumn
	}
	c.Cleaning.MalformedDates = strings.ToLower(strings.TrimSpace(c.Cleaning.MalformedDates))
	if c.Cleaning.MalformedDates == "" {
		c.Cleaning.MalformedDates = defaultMalformedDates
	}
	if len(c.Cleaning.DateLayouts) > 0 {
		layouts := make([]string, 0, len(c.Cleaning.DateLayouts))
		seen := make(map[string]struct{}, len(c.Cleaning.DateLayouts))
		for _, layout := range c.Cleaning.DateLayouts {
			layout = strings.TrimSpace(layout)
			if layout == "" {
				continue
			}
			if _, exists := seen[layout]; exists {
				continue
			}
			seen[layout] = struct{}{}
			layouts = append(layouts, layout)
		}
		c.Cleaning.DateLayouts = layouts
	}
}
