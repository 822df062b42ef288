package log

import "io"

// LoggerBuilderOption is a functional option for configuring a Logger created by New.
type LoggerBuilderOption func(*loggerConfig)

// WithDir sets the directory the rotated log file is written to.
// Defaults to <user config dir>/tm3d.
//
// Parameters:
//   - dir: the log directory
//
// Returns:
//   - LoggerBuilderOption: option function to apply
func WithDir(dir string) LoggerBuilderOption {
	return func(c *loggerConfig) {
		c.dir = dir
	}
}

// WithLevel sets the minimum level recorded: debug, info, warn or error.
//
// Parameters:
//   - level: the level name
//
// Returns:
//   - LoggerBuilderOption: option function to apply
func WithLevel(level string) LoggerBuilderOption {
	return func(c *loggerConfig) {
		c.level = level
	}
}

// WithRotation sets the size in megabytes at which the log file rotates and how many old files are kept.
//
// Parameters:
//   - maxSizeMB: rotation threshold in megabytes
//   - maxBackups: number of rotated files to retain
//
// Returns:
//   - LoggerBuilderOption: option function to apply
func WithRotation(maxSizeMB, maxBackups int) LoggerBuilderOption {
	return func(c *loggerConfig) {
		if maxSizeMB > 0 {
			c.maxSizeMB = maxSizeMB
		}
		if maxBackups >= 0 {
			c.maxBackups = maxBackups
		}
	}
}

// WithStderr mirrors every record to standard error.
func WithStderr(enabled bool) LoggerBuilderOption {
	return func(c *loggerConfig) {
		c.stderr = enabled
	}
}

// WithWriter replaces the rotated file with w. Mostly useful in tests.
func WithWriter(w io.Writer) LoggerBuilderOption {
	return func(c *loggerConfig) {
		c.writer = w
	}
}
