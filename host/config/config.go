// Package config loads host tool settings from an optional .env file and
// TWISLAVE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Environment variable names.
const (
	EnvDevice      = "TWISLAVE_DEVICE"
	EnvBaud        = "TWISLAVE_BAUD"
	EnvReadTimeout = "TWISLAVE_READ_TIMEOUT"
	EnvBus         = "TWISLAVE_BUS"
	EnvAddress     = "TWISLAVE_ADDRESS"
	EnvGeneralCall = "TWISLAVE_GENERAL_CALL"
	EnvGap         = "TWISLAVE_GAP"
	EnvLogLevel    = "TWISLAVE_LOG_LEVEL"
)

// DefaultEnvFile is read when no other file is named.
const DefaultEnvFile = ".env"

// Config holds the settings shared by the host commands.
type Config struct {
	// Serial device the firmware reports on
	Device      string
	Baud        int
	ReadTimeout time.Duration

	// I2C bus device used to drive the slave
	Bus         string
	Address     uint16
	GeneralCall bool

	// Delay between the write and the read half of an exchange, giving the
	// slave time to report and re-arm
	Gap time.Duration

	LogLevel string
}

// Load reads envFile if it exists, overlays the process environment and
// fills in defaults. A missing file is not an error.
func Load(envFile string) (*Config, error) {
	values := map[string]string{}
	if envFile != "" {
		fileValues, err := godotenv.Read(envFile)
		switch {
		case err == nil:
			values = fileValues
		case errors.Is(err, fs.ErrNotExist):
		default:
			return nil, fmt.Errorf("failed to read %s: %w", envFile, err)
		}
	}

	for _, key := range []string{
		EnvDevice, EnvBaud, EnvReadTimeout, EnvBus,
		EnvAddress, EnvGeneralCall, EnvGap, EnvLogLevel,
	} {
		if v, ok := os.LookupEnv(key); ok {
			values[key] = v
		}
	}

	cfg, err := parse(values)
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	return cfg, nil
}

func parse(values map[string]string) (*Config, error) {
	cfg := &Config{
		Device:   values[EnvDevice],
		Bus:      values[EnvBus],
		LogLevel: values[EnvLogLevel],
	}

	if v := values[EnvBaud]; v != "" {
		baud, err := strconv.Atoi(v)
		if err != nil || baud <= 0 {
			return nil, fmt.Errorf("invalid %s %q", EnvBaud, v)
		}
		cfg.Baud = baud
	}

	if v := values[EnvAddress]; v != "" {
		addr, err := strconv.ParseUint(v, 0, 8)
		if err != nil || addr == 0 || addr > 0x7F {
			return nil, fmt.Errorf("invalid %s %q: want a 7-bit address", EnvAddress, v)
		}
		cfg.Address = uint16(addr)
	}

	if v := values[EnvGeneralCall]; v != "" {
		gc, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s %q: %w", EnvGeneralCall, v, err)
		}
		cfg.GeneralCall = gc
	}

	var err error
	if cfg.ReadTimeout, err = parseDuration(EnvReadTimeout, values[EnvReadTimeout]); err != nil {
		return nil, err
	}
	if cfg.Gap, err = parseDuration(EnvGap, values[EnvGap]); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseDuration(key, v string) (time.Duration, error) {
	if v == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s %q", key, v)
	}
	return d, nil
}

// applyDefaults fills in missing configuration values
func applyDefaults(cfg *Config) {
	if cfg.Device == "" {
		cfg.Device = "/dev/ttyUSB0"
	}
	if cfg.Baud == 0 {
		cfg.Baud = 9600
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 100 * time.Millisecond
	}
	if cfg.Bus == "" {
		cfg.Bus = "/dev/i2c-1"
	}
	if cfg.Address == 0 {
		cfg.Address = 0x26
	}
	if cfg.Gap == 0 {
		cfg.Gap = 10 * time.Millisecond
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

// NewLogger builds a console logger writing to w at the given level.
func NewLogger(w io.Writer, level string) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	out := zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: true}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger(), nil
}
