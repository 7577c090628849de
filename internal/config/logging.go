package config

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn error"` // debug, info, warn, error
	Format string `yaml:"format" validate:"oneof=json console"`         // json, console
}

// IsDebug reports whether debug output is requested.
func (c *LoggingConfig) IsDebug() bool {
	return c.Level == "debug"
}
