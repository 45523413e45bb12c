package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		EnvDevice, EnvBaud, EnvReadTimeout, EnvBus,
		EnvAddress, EnvGeneralCall, EnvGap, EnvLogLevel,
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeEnv(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyUSB0", cfg.Device)
	assert.Equal(t, 9600, cfg.Baud)
	assert.Equal(t, 100*time.Millisecond, cfg.ReadTimeout)
	assert.Equal(t, "/dev/i2c-1", cfg.Bus)
	assert.Equal(t, uint16(0x26), cfg.Address)
	assert.False(t, cfg.GeneralCall)
	assert.Equal(t, 10*time.Millisecond, cfg.Gap)
	assert.Equal(t, "info", cfg.LogLevel)
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)

	path := writeEnv(t, `
TWISLAVE_DEVICE=/dev/ttyACM3
TWISLAVE_BAUD=115200
TWISLAVE_BUS=/dev/i2c-7
TWISLAVE_ADDRESS=0x42
TWISLAVE_GENERAL_CALL=true
TWISLAVE_GAP=25ms
TWISLAVE_LOG_LEVEL=debug
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/dev/ttyACM3", cfg.Device)
	assert.Equal(t, 115200, cfg.Baud)
	assert.Equal(t, "/dev/i2c-7", cfg.Bus)
	assert.Equal(t, uint16(0x42), cfg.Address)
	assert.True(t, cfg.GeneralCall)
	assert.Equal(t, 25*time.Millisecond, cfg.Gap)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestEnvironmentOverridesFile(t *testing.T) {
	clearEnv(t)

	path := writeEnv(t, "TWISLAVE_ADDRESS=0x42\nTWISLAVE_DEVICE=/dev/ttyACM3\n")
	t.Setenv(EnvAddress, "38")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, uint16(38), cfg.Address)
	assert.Equal(t, "/dev/ttyACM3", cfg.Device)
}

func TestLoadWithoutFile(t *testing.T) {
	clearEnv(t)
	t.Setenv(EnvBaud, "57600")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 57600, cfg.Baud)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		key, value string
	}{
		{EnvAddress, "0"},
		{EnvAddress, "0x80"},
		{EnvAddress, "banana"},
		{EnvBaud, "-1"},
		{EnvBaud, "fast"},
		{EnvGeneralCall, "maybe"},
		{EnvGap, "soon"},
		{EnvReadTimeout, "-5ms"},
	}

	for _, tc := range cases {
		t.Run(tc.key+"="+tc.value, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tc.key, tc.value)

			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.key)
		})
	}
}

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer

	log, err := NewLogger(&buf, "warn")
	require.NoError(t, err)
	assert.Equal(t, zerolog.WarnLevel, log.GetLevel())

	log.Info().Msg("hidden")
	log.Warn().Str("addr", "0x26").Msg("shown")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "shown")
	assert.Contains(t, out, "addr=0x26")

	_, err = NewLogger(&buf, "loud")
	require.Error(t, err)
}
