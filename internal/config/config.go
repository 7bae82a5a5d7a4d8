package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

type Config struct {
	Mode     Mode   `toml:"mode"`
	HTTPAddr string `toml:"http_addr"`

	DBDriver string `toml:"db_driver"` // sqlite|postgres|memory
	DBDSN    string `toml:"db_dsn"`

	BlobBasePath string `toml:"blob_base_path"`

	AuthHMACSecret  string `toml:"auth_hmac_secret"`
	TeacherUser     string `toml:"teacher_user"`
	TeacherPassHash string `toml:"teacher_pass_hash"` // bcrypt

	CORSOrigins []string `toml:"cors_origins"`

	MaxUploadMB         int    `toml:"max_upload_mb"`
	LogLevel            string `toml:"log_level"`
	DefaultTimeLimitMin int    `toml:"default_time_limit_min"`
}

// Default is the offline, single-machine setup.
func Default() Config {
	return Config{
		Mode:                ModeOffline,
		HTTPAddr:            ":8080",
		DBDriver:            "sqlite",
		BlobBasePath:        "./data",
		AuthHMACSecret:      "dev-secret-change-me",
		TeacherUser:         "teacher",
		TeacherPassHash:     "$2y$12$pyZAiWaTfVtM7UElIRStvOC3gNbnp70nmQU4eYopLGBfCJr1DOvji",
		CORSOrigins:         []string{"http://localhost:3000", "http://localhost:5173"},
		MaxUploadMB:         20,
		LogLevel:            "info",
		DefaultTimeLimitMin: 90,
	}
}

// Load applies defaults, then the TOML file named by CONFIG_FILE (if any),
// then environment variables.
func Load() (Config, error) {
	cfg := Default()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

// FromEnv ignores CONFIG_FILE.
func FromEnv() Config {
	cfg := Default()
	applyEnv(&cfg)
	return cfg
}

func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

func applyEnv(c *Config) {
	c.Mode = Mode(envOr("MODE", string(c.Mode)))
	c.HTTPAddr = envOr("HTTP_ADDR", c.HTTPAddr)
	c.DBDriver = envOr("DB_DRIVER", c.DBDriver)
	c.DBDSN = envOr("DB_DSN", c.DBDSN)
	c.BlobBasePath = envOr("BLOB_BASE_PATH", c.BlobBasePath)
	c.AuthHMACSecret = envOr("AUTH_HMAC_SECRET", c.AuthHMACSecret)
	c.TeacherUser = envOr("TEACHER_USER", c.TeacherUser)
	c.TeacherPassHash = envOr("TEACHER_PASS_HASH", c.TeacherPassHash)
	c.CORSOrigins = csvOr("CORS_ORIGINS", c.CORSOrigins)
	c.MaxUploadMB = envInt("MAX_UPLOAD_MB", c.MaxUploadMB)
	c.LogLevel = envOr("LOG_LEVEL", c.LogLevel)
	c.DefaultTimeLimitMin = envInt("DEFAULT_TIME_LIMIT_MIN", c.DefaultTimeLimitMin)
}

func envOr(k, def string) string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	return v
}

func envInt(k string, def int) int {
	n, err := strconv.Atoi(os.Getenv(k))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func csvOr(k string, def []string) []string {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, s)
		}
	}
	return out
}
