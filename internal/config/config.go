package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the configuration settings for the dashboard server.
//
// Fields:
// - Env: The current environment (local, development, production).
// - Port: The port the HTTP server listens on.
// - Title: The dashboard page title.
// - MaxUploadMB: The maximum accepted upload size in megabytes.
// - SessionTTL: How long an upload is kept for its browser session.
// - SessionCapacity: The maximum number of sessions kept in memory.
// - JanitorInterval: The interval between purges of expired uploads.
// - ShutdownTimeout: The grace period for in-flight requests on shutdown.
// - UploadRate: The number of uploads per second the server accepts, 0 disables the limit.
type Config struct {
	Env             string        `yaml:"env"`              // Env is the current environment: local, development, production.
	Port            int           `yaml:"http_port"`        // Port is the HTTP server port.
	Title           string        `yaml:"title"`            // Title is shown as the page heading.
	MaxUploadMB     int           `yaml:"max_upload_mb"`    // MaxUploadMB limits the upload body size.
	SessionTTL      time.Duration `yaml:"session_ttl"`      // SessionTTL is the lifetime of a stored upload.
	SessionCapacity int           `yaml:"session_capacity"` // SessionCapacity bounds the upload cache.
	JanitorInterval time.Duration `yaml:"janitor_interval"` // JanitorInterval is the purge period.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // ShutdownTimeout bounds graceful shutdown.
	UploadRate      int           `yaml:"upload_rate"`      // UploadRate throttles POST /upload.
}

// MaxUploadBytes returns the upload limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// MustLoad reads the configuration from MERIDIAN_* environment variables, an optional
// .env file and an optional YAML file named by MERIDIAN_CONFIG_FILE. Environment
// variables take precedence over the file. It panics on invalid values.
func MustLoad() *Config {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("MERIDIAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("env", "production")
	v.SetDefault("http_port", "8080")
	v.SetDefault("title", "FCO_Posts_list_August_2019")
	v.SetDefault("max_upload_mb", "200")
	v.SetDefault("session_ttl", "1h")
	v.SetDefault("session_capacity", "1024")
	v.SetDefault("janitor_interval", "5m")
	v.SetDefault("shutdown_timeout", "10s")
	v.SetDefault("upload_rate", "5")

	if file := v.GetString("config_file"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			panic("failed to read configuration file")
		}
	}

	port, err := strconv.Atoi(v.GetString("http_port"))
	if err != nil {
		panic("failed to parse port for http server from configuration")
	}

	maxUpload, err := strconv.Atoi(v.GetString("max_upload_mb"))
	if err != nil || maxUpload <= 0 {
		panic("failed to parse max upload size from configuration, must be a positive integer")
	}

	capacity, err := strconv.Atoi(v.GetString("session_capacity"))
	if err != nil || capacity <= 0 {
		panic("failed to parse session capacity from configuration, must be a positive integer")
	}

	ttl, err := time.ParseDuration(v.GetString("session_ttl"))
	if err != nil {
		panic("failed to parse session ttl from configuration")
	}

	janitor, err := time.ParseDuration(v.GetString("janitor_interval"))
	if err != nil || janitor <= 0 {
		panic("failed to parse janitor interval from configuration")
	}

	shutdown, err := time.ParseDuration(v.GetString("shutdown_timeout"))
	if err != nil {
		panic("failed to parse shutdown timeout from configuration")
	}

	uploadRate, err := strconv.Atoi(v.GetString("upload_rate"))
	if err != nil || uploadRate < 0 {
		panic("failed to parse upload rate from configuration, must be a non-negative integer")
	}

	return &Config{
		Env:             v.GetString("env"),
		Port:            port,
		Title:           v.GetString("title"),
		MaxUploadMB:     maxUpload,
		SessionTTL:      ttl,
		SessionCapacity: capacity,
		JanitorInterval: janitor,
		ShutdownTimeout: shutdown,
		UploadRate:      uploadRate,
	}
}
