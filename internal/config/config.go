// Package config loads service settings: defaults, then an optional YAML
// file, then environment variables (highest precedence).
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"recommend-service/internal/directory"
)

type Config struct {
	Host         string   `koanf:"host"`
	Port         int      `koanf:"port"`
	AllowOrigins []string `koanf:"allow_origins"`
	LogLevel     string   `koanf:"log_level"`
	LogFile      string   `koanf:"log_file"`
	LogFormat    string   `koanf:"log_format"` // console | json
	MaxUploadMB  int      `koanf:"max_upload_mb"`

	DBBackend string `koanf:"db_backend"` // canonical: sqlite | mysql | postgresql | memory
	DBDSN     string `koanf:"db_dsn"`

	JWTSecret string `koanf:"jwt_secret"` // пусто — токены не проверяются, все анонимны
	TopN      int    `koanf:"top_n"`
}

var (
	ErrInvalidPort    = errors.New("PORT must be a valid integer in 1..65535")
	ErrInvalidUpload  = errors.New("MAX_UPLOAD_MB must be a positive integer")
	ErrInvalidTopN    = errors.New("TOP_N must be a positive integer")
	ErrUnknownBackend = errors.New("DB_BACKEND must be sqlite, mysql, postgresql (postgres, pg) or memory")
)

const (
	DefaultHost      = "127.0.0.1"
	DefaultPort      = 8082
	DefaultLogLevel  = "info"
	DefaultLogFile   = "logs/recommend-service.log"
	DefaultLogFormat = "console"
	DefaultUploadMB  = 32
	DefaultDBBackend = "sqlite"
	DefaultDBDSN     = "data/suppliers.db"
	DefaultTopN      = 3
)

// Load reads the config. path may be empty. The returned error slice lists
// every invalid value; the config still carries defaults for them.
func Load(path string) (Config, []error) {
	var errs []error
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			// файл не прочитан: остаются дефолты и переменные окружения
			errs = append(errs, fmt.Errorf("load config file %s: %w", path, err))
			k = koanf.New(".")
		}
	}

	port, err := intSetting(k, "PORT", "port", DefaultPort)
	if err != nil || port < 1 || port > 65535 {
		errs = append(errs, ErrInvalidPort)
		port = DefaultPort
	}
	mb, err := intSetting(k, "MAX_UPLOAD_MB", "max_upload_mb", DefaultUploadMB)
	if err != nil || mb <= 0 {
		errs = append(errs, ErrInvalidUpload)
		mb = DefaultUploadMB
	}
	topN, err := intSetting(k, "TOP_N", "top_n", DefaultTopN)
	if err != nil || topN <= 0 {
		errs = append(errs, ErrInvalidTopN)
		topN = DefaultTopN
	}

	backend := DefaultDBBackend
	if b, err := directory.ParseBackend(strSetting(k, "DB_BACKEND", "db_backend", DefaultDBBackend)); err != nil {
		errs = append(errs, ErrUnknownBackend)
	} else {
		backend = string(b)
	}

	origins := k.Strings("allow_origins")
	if v := os.Getenv("ALLOW_ORIGINS"); v != "" || len(origins) == 0 {
		origins = splitList(getenv("ALLOW_ORIGINS", "*"))
	}

	return Config{
		Host:         strSetting(k, "HOST", "host", DefaultHost),
		Port:         port,
		AllowOrigins: origins,
		LogLevel:     strSetting(k, "LOG_LEVEL", "log_level", DefaultLogLevel),
		LogFile:      strSetting(k, "LOG_FILE", "log_file", DefaultLogFile),
		LogFormat:    strings.ToLower(strSetting(k, "LOG_FORMAT", "log_format", DefaultLogFormat)),
		MaxUploadMB:  mb,
		DBBackend:    backend,
		DBDSN:        strSetting(k, "DB_DSN", "db_dsn", DefaultDBDSN),
		JWTSecret:    strSetting(k, "JWT_SECRET", "jwt_secret", ""),
		TopN:         topN,
	}, errs
}

func defaults() Config {
	return Config{
		Host:         DefaultHost,
		Port:         DefaultPort,
		AllowOrigins: []string{"*"},
		LogLevel:     DefaultLogLevel,
		LogFile:      DefaultLogFile,
		LogFormat:    DefaultLogFormat,
		MaxUploadMB:  DefaultUploadMB,
		DBBackend:    DefaultDBBackend,
		DBDSN:        DefaultDBDSN,
		TopN:         DefaultTopN,
	}
}

func (c Config) Addr() string { return fmt.Sprintf("%s:%d", c.Host, c.Port) }

// MaxUploadBytes is the request body cap derived from MaxUploadMB.
func (c Config) MaxUploadBytes() int64 { return int64(c.MaxUploadMB) * 1024 * 1024 }

func strSetting(k *koanf.Koanf, env, key, def string) string {
	if v := k.String(key); v != "" {
		def = v
	}
	return getenv(env, def)
}

func intSetting(k *koanf.Koanf, env, key string, def int) (int, error) {
	if k.Exists(key) {
		def = k.Int(key)
	}
	v := os.Getenv(env)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(strings.TrimSpace(v))
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
