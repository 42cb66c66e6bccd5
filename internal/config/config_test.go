package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envKeys = []string{"HOST", "PORT", "ALLOW_ORIGINS", "LOG_LEVEL", "LOG_FILE", "LOG_FORMAT", "MAX_UPLOAD_MB", "DB_BACKEND", "DB_DSN", "JWT_SECRET", "TOP_N"}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, errs := Load("")
	require.Empty(t, errs)
	assert.Equal(t, defaults(), cfg)
	assert.Equal(t, "127.0.0.1:8082", cfg.Addr())
	assert.Equal(t, int64(32*1024*1024), cfg.MaxUploadBytes())
}

func TestLoadFileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := "host: 0.0.0.0\nport: 9000\nallow_origins:\n  - https://a.example\n  - https://b.example\ndb_backend: memory\ntop_n: 5\njwt_secret: from-file\n"
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))

	t.Run("file values", func(t *testing.T) {
		cfg, errs := Load(path)
		require.Empty(t, errs)
		assert.Equal(t, "0.0.0.0", cfg.Host)
		assert.Equal(t, 9000, cfg.Port)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowOrigins)
		assert.Equal(t, "memory", cfg.DBBackend)
		assert.Equal(t, 5, cfg.TopN)
		assert.Equal(t, "from-file", cfg.JWTSecret)
	})

	t.Run("env wins", func(t *testing.T) {
		t.Setenv("PORT", "7001")
		t.Setenv("ALLOW_ORIGINS", "https://c.example, https://d.example")
		t.Setenv("JWT_SECRET", "from-env")

		cfg, errs := Load(path)
		require.Empty(t, errs)
		assert.Equal(t, 7001, cfg.Port)
		assert.Equal(t, []string{"https://c.example", "https://d.example"}, cfg.AllowOrigins)
		assert.Equal(t, "from-env", cfg.JWTSecret)
		assert.Equal(t, "0.0.0.0", cfg.Host)
	})
}

func TestLoadValidation(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "not-a-port")
	t.Setenv("TOP_N", "0")
	t.Setenv("MAX_UPLOAD_MB", "-1")
	t.Setenv("DB_BACKEND", "oracle")

	cfg, errs := Load("")
	assert.ElementsMatch(t, []error{ErrInvalidPort, ErrInvalidTopN, ErrInvalidUpload, ErrUnknownBackend}, errs)
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultTopN, cfg.TopN)
	assert.Equal(t, DefaultDBBackend, cfg.DBBackend)
}

func TestLoadMissingFile(t *testing.T) {
	clearEnv(t)
	_, errs := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "nope.yaml")
}

func TestLoadMissingFileKeepsEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9999")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("DB_BACKEND", "memory")

	cfg, errs := Load(filepath.Join(t.TempDir(), "missing", "config.yaml"))
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0].Error(), "config.yaml")
	assert.Equal(t, 9999, cfg.Port)
	assert.Equal(t, "s3cret", cfg.JWTSecret)
	assert.Equal(t, "memory", cfg.DBBackend)
	assert.Equal(t, DefaultHost, cfg.Host)
}

func TestLoadBackendAliases(t *testing.T) {
	tests := map[string]string{
		"postgres":   "postgresql",
		"PG":         "postgresql",
		"postgresql": "postgresql",
		"sqlite3":    "sqlite",
		"mem":        "memory",
		"MySQL":      "mysql",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DB_BACKEND", in)
			cfg, errs := Load("")
			require.Empty(t, errs)
			assert.Equal(t, want, cfg.DBBackend)
		})
	}
}
