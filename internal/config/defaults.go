package config

const (
	defaultConfigPath     = "~/.config/cleanstage/config.toml"
	defaultStoreDir       = "~/.local/share/cleanstage/store"
	defaultWorkDir        = "~/.local/share/cleanstage/work"
	defaultLogDir         = "~/.local/share/cleanstage/logs"
	defaultLogFormat      = "auto"
	defaultLogLevel       = "info"
	defaultProject        = "nyc_airbnb"
	defaultJobType        = "basic_cleaning"
	defaultPriceColumn    = "price"
	defaultDateColumn     = "last_review"
	defaultMalformedDates = MalformedDatesFail
)

// Malformed date policies.
const (
	MalformedDatesFail = "fail"
	MalformedDatesDrop = "drop"
	MalformedDatesNull = "null"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StoreDir: defaultStoreDir,
			WorkDir:  defaultWorkDir,
			LogDir:   defaultLogDir,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Tracker: Tracker{
			Project: defaultProject,
			JobType: defaultJobType,
		},
		Cleaning: Cleaning{
			PriceColumn:    defaultPriceColumn,
			DateColumn:     defaultDateColumn,
			MalformedDates: defaultMalformedDates,
		},
	}
}
