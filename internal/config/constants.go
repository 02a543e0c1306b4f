package config

// Application constants
const (
	AppName   = "bvmtdash"
	EnvPrefix = "DASH"

	DefaultHost        = "0.0.0.0"
	DefaultPort        = 8080
	DefaultDataDir     = "data"
	DefaultLoadWorkers = 4

	// Numeric cell conventions
	ConventionPercent  = "percent"
	ConventionFraction = "fraction"
)
