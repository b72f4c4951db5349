package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/notifykit/pkg/config"
)

func validConfig() config.Config {
	cfg := config.Default()
	cfg.APIURL = "http://x"
	cfg.UserID = "u1"
	return cfg
}

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	assert.True(t, cfg.AutoConnect)
	assert.True(t, cfg.AutoReconnect)
	assert.Equal(t, -1, cfg.MaxReconnectAttempts)
	assert.Equal(t, time.Second, cfg.ReconnectDelay)
	assert.Equal(t, 30*time.Second, cfg.MaxReconnectDelay)
	assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
	assert.Zero(t, cfg.IdleTimeout)
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		mutate    func(*config.Config)
		wantField string
	}{
		{"valid", func(*config.Config) {}, ""},
		{"missing api url", func(c *config.Config) { c.APIURL = "" }, "apiUrl"},
		{"relative api url", func(c *config.Config) { c.APIURL = "/api" }, "apiUrl"},
		{"ws scheme", func(c *config.Config) { c.APIURL = "ws://x" }, "apiUrl"},
		{"missing user id", func(c *config.Config) { c.UserID = " " }, "userId"},
		{"attempts below -1", func(c *config.Config) { c.MaxReconnectAttempts = -2 }, "maxReconnectAttempts"},
		{"zero attempts allowed", func(c *config.Config) { c.MaxReconnectAttempts = 0 }, ""},
		{"zero delay", func(c *config.Config) { c.ReconnectDelay = 0 }, "reconnectDelay"},
		{"max below base", func(c *config.Config) { c.MaxReconnectDelay = 500 * time.Millisecond }, "maxReconnectDelay"},
		{"negative idle timeout", func(c *config.Config) { c.IdleTimeout = -time.Second }, "idleTimeout"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()

			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}
			var cfgErr *config.ConfigError
			require.True(t, errors.As(err, &cfgErr))
			assert.Equal(t, tt.wantField, cfgErr.Field)
			assert.True(t, config.IsConfigError(err))
		})
	}
}

func TestWithDefaults(t *testing.T) {
	t.Parallel()

	t.Run("zero durations", func(t *testing.T) {
		t.Parallel()

		cfg := config.Config{APIURL: "http://x", UserID: "u1", AutoConnect: true}.WithDefaults()
		require.NoError(t, cfg.Validate())
		assert.Equal(t, time.Second, cfg.ReconnectDelay)
		assert.Equal(t, 30*time.Second, cfg.MaxReconnectDelay)
		assert.Equal(t, 10*time.Second, cfg.RequestTimeout)
		assert.Zero(t, cfg.MaxReconnectAttempts, "zero attempts is an explicit value")
		assert.False(t, cfg.AutoReconnect)
	})

	t.Run("explicit values are kept", func(t *testing.T) {
		t.Parallel()

		cfg := config.Config{ReconnectDelay: 2 * time.Second, RequestTimeout: time.Second}.WithDefaults()
		assert.Equal(t, 2*time.Second, cfg.ReconnectDelay)
		assert.Equal(t, 30*time.Second, cfg.MaxReconnectDelay)
		assert.Equal(t, time.Second, cfg.RequestTimeout)
	})

	t.Run("max delay follows a large base", func(t *testing.T) {
		t.Parallel()

		cfg := config.Config{ReconnectDelay: time.Minute}.WithDefaults()
		assert.Equal(t, time.Minute, cfg.MaxReconnectDelay)
	})
}

func TestIDList_Values(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"d1", "d2", "d3"}, config.IDList{"d1, d2", "", "d3"}.Values())
	assert.Nil(t, config.IDList{}.Values())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("NOTIFY_API_URL", "https://api.example.com")
	t.Setenv("NOTIFY_USER_ID", "u1")
	t.Setenv("NOTIFY_DEPARTMENT_IDS", "d1, d2")
	t.Setenv("NOTIFY_AUTO_CONNECT", "false")
	t.Setenv("NOTIFY_MAX_RECONNECT_ATTEMPTS", "5")
	t.Setenv("NOTIFY_RECONNECT_DELAY", "250ms")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.com", cfg.APIURL)
	assert.Equal(t, "u1", cfg.UserID)
	assert.Equal(t, config.IDList{"d1", "d2"}, cfg.DepartmentIDs)
	assert.False(t, cfg.AutoConnect)
	assert.True(t, cfg.AutoReconnect, "unset variables keep defaults")
	assert.Equal(t, 5, cfg.MaxReconnectAttempts)
	assert.Equal(t, 250*time.Millisecond, cfg.ReconnectDelay)
	assert.Equal(t, 30*time.Second, cfg.MaxReconnectDelay)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("NOTIFY_API_URL", "http://x")
	t.Setenv("NOTIFY_USER_ID", "")

	_, err := config.Load()
	require.Error(t, err)
	assert.True(t, config.IsConfigError(err))
}

func TestLoad_ParseError(t *testing.T) {
	t.Setenv("NOTIFY_API_URL", "http://x")
	t.Setenv("NOTIFY_USER_ID", "u1")
	t.Setenv("NOTIFY_RECONNECT_DELAY", "soon")

	_, err := config.Load()
	assert.ErrorIs(t, err, config.ErrParsingConfig)
}

func TestLoad_EnvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "notify.env")
	require.NoError(t, os.WriteFile(path, []byte("NOTIFY_API_URL=http://from-file\nNOTIFY_USER_ID=file-user\n"), 0o600))

	// godotenv does not override variables that are already set
	t.Setenv("NOTIFY_USER_ID", "env-user")
	t.Setenv("NOTIFY_API_URL", "")
	require.NoError(t, os.Unsetenv("NOTIFY_API_URL"))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "http://from-file", cfg.APIURL)
	assert.Equal(t, "env-user", cfg.UserID)

	_, err = config.Load(filepath.Join(dir, "missing.env"))
	assert.ErrorIs(t, err, config.ErrReadingFile)
}

func TestLoadYAML(t *testing.T) {
	t.Setenv("NOTIFY_MAX_RECONNECT_DELAY", "1m")

	doc := `
apiUrl: http://x/
userId: u1
departmentIds: d1,d2
autoReconnect: false
maxReconnectAttempts: 3
reconnectDelay: 2s
`
	cfg, err := config.LoadYAML(strings.NewReader(doc))
	require.NoError(t, err)

	assert.Equal(t, "http://x/", cfg.APIURL)
	assert.Equal(t, config.IDList{"d1", "d2"}, cfg.DepartmentIDs)
	assert.False(t, cfg.AutoReconnect)
	assert.True(t, cfg.AutoConnect)
	assert.Equal(t, 3, cfg.MaxReconnectAttempts)
	assert.Equal(t, 2*time.Second, cfg.ReconnectDelay)
	assert.Equal(t, time.Minute, cfg.MaxReconnectDelay, "environment overrides the file")
}

func TestLoadYAML_DepartmentList(t *testing.T) {
	cfg, err := config.LoadYAML(strings.NewReader("apiUrl: http://x\nuserId: u1\ndepartmentIds: [d1, \"d2,d3\"]\n"))
	require.NoError(t, err)
	assert.Equal(t, config.IDList{"d1", "d2", "d3"}, cfg.DepartmentIDs)
}

func TestLoadYAML_UnknownField(t *testing.T) {
	_, err := config.LoadYAML(strings.NewReader("apiUrl: http://x\nuserId: u1\nretries: 3\n"))
	assert.ErrorIs(t, err, config.ErrReadingFile)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notify.yaml")
	require.NoError(t, os.WriteFile(path, []byte("apiUrl: https://x\nuserId: u9\n"), 0o600))

	cfg, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "u9", cfg.UserID)

	_, err = config.LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.ErrorIs(t, err, config.ErrReadingFile)
}
