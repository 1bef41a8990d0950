package config_test

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/Flaque/filet"
	"github.com/UnknownOlympus/meridian/internal/config"
	"github.com/stretchr/testify/assert"
)

func Test_MustLoadDefaults(t *testing.T) {
	cfg := config.MustLoad()

	assert.Equal(t, "production", cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.Equal(t, "FCO_Posts_list_August_2019", cfg.Title)
	assert.Equal(t, 200, cfg.MaxUploadMB)
	assert.Equal(t, int64(200<<20), cfg.MaxUploadBytes())
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, 1024, cfg.SessionCapacity)
	assert.Equal(t, 5*time.Minute, cfg.JanitorInterval)
	assert.Equal(t, 10*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 5, cfg.UploadRate)
}

func Test_MustLoadFromEnv(t *testing.T) {
	t.Setenv("MERIDIAN_ENV", "local")
	t.Setenv("MERIDIAN_HTTP_PORT", "9090")
	t.Setenv("MERIDIAN_TITLE", "Posts")
	t.Setenv("MERIDIAN_MAX_UPLOAD_MB", "5")
	t.Setenv("MERIDIAN_SESSION_TTL", "30m")
	t.Setenv("MERIDIAN_SESSION_CAPACITY", "16")
	t.Setenv("MERIDIAN_JANITOR_INTERVAL", "1m")
	t.Setenv("MERIDIAN_SHUTDOWN_TIMEOUT", "3s")
	t.Setenv("MERIDIAN_UPLOAD_RATE", "0")

	cfg := config.MustLoad()

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, "Posts", cfg.Title)
	assert.Equal(t, 5, cfg.MaxUploadMB)
	assert.Equal(t, 30*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 16, cfg.SessionCapacity)
	assert.Equal(t, time.Minute, cfg.JanitorInterval)
	assert.Equal(t, 3*time.Second, cfg.ShutdownTimeout)
	assert.Equal(t, 0, cfg.UploadRate)
}

func Test_MustLoadFromFile(t *testing.T) {
	defer filet.CleanUp(t)
	dir := filet.TmpDir(t, "")
	path := filepath.Join(dir, "meridian.yaml")
	filet.File(t, path, "env: development\nhttp_port: 7070\nsession_ttl: 2h\ntitle: From file\n")

	t.Setenv("MERIDIAN_CONFIG_FILE", path)
	t.Setenv("MERIDIAN_TITLE", "From env")

	cfg := config.MustLoad()

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 7070, cfg.Port)
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "From env", cfg.Title)
}

func TestMustLoad_Errors(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		panic string
	}{
		{
			name:  "port",
			key:   "MERIDIAN_HTTP_PORT",
			value: "error_value",
			panic: "failed to parse port for http server from configuration",
		},
		{
			name:  "max upload",
			key:   "MERIDIAN_MAX_UPLOAD_MB",
			value: "0",
			panic: "failed to parse max upload size from configuration, must be a positive integer",
		},
		{
			name:  "session capacity",
			key:   "MERIDIAN_SESSION_CAPACITY",
			value: "error_value",
			panic: "failed to parse session capacity from configuration, must be a positive integer",
		},
		{
			name:  "session ttl",
			key:   "MERIDIAN_SESSION_TTL",
			value: "error_value",
			panic: "failed to parse session ttl from configuration",
		},
		{
			name:  "janitor interval",
			key:   "MERIDIAN_JANITOR_INTERVAL",
			value: "0s",
			panic: "failed to parse janitor interval from configuration",
		},
		{
			name:  "shutdown timeout",
			key:   "MERIDIAN_SHUTDOWN_TIMEOUT",
			value: "error_value",
			panic: "failed to parse shutdown timeout from configuration",
		},
		{
			name:  "upload rate",
			key:   "MERIDIAN_UPLOAD_RATE",
			value: "-1",
			panic: "failed to parse upload rate from configuration, must be a non-negative integer",
		},
		{
			name:  "missing config file",
			key:   "MERIDIAN_CONFIG_FILE",
			value: "/nonexistent/meridian.yaml",
			panic: "failed to read configuration file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			assert.PanicsWithValue(t, tt.panic, func() {
				config.MustLoad()
			})
		})
	}
}
