package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateCleaning(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.StoreDir) == "" {
		return errors.New("paths.store_dir must be set")
	}
	if strings.TrimSpace(c.Paths.WorkDir) == "" {
		return errors.New("paths.work_dir must be set")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format must be one of auto, console, json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be one of debug, info, warn, error (got %q)", c.Logging.Level)
	}
	return nil
}

func (c *Config) validateCleaning() error {
	if c.Cleaning.PriceColumn == c.Cleaning.DateColumn {
		return errors.New("cleaning.price_column and cleaning.date_column must differ")
	}
	switch c.Cleaning.MalformedDates {
	case MalformedDatesFail, MalformedDatesDrop, MalformedDatesNull:
	default:
		return fmt.Errorf("cleaning.malformed_dates must be one of fail, drop, null (got %q)", c.Cleaning.MalformedDates)
	}
	return nil
}
