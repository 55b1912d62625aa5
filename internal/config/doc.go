// Package config loads, normalizes, and validates cleanstage configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// CLEANSTAGE_STORE_DIR. The Config type centralizes the knobs the stage and the
// CLI need: where the artifact store lives, where scratch files go, how logs are
// shaped, and how the price and date columns are interpreted.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
