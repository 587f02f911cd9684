package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "library.db", cfg.Database.Path)
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.MQ.Enabled)
	assert.Equal(t, "library.events", cfg.MQ.Exchange)
	assert.Equal(t, 8*time.Hour, cfg.JWT.AccessTokenExpire)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
}

func TestLoad_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "library.yaml")
	content := `
server:
  port: 9090
  mode: test
database:
  driver: mysql
  host: db.internal
  password: secret
redis:
  enabled: true
  port: 6380
log:
  level: debug
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("LIBRARY_DATABASE_DBNAME", "library_test")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, DriverMySQL, cfg.Database.Driver)
	assert.Equal(t, "library_test", cfg.Database.DBName)
	assert.Equal(t, "127.0.0.1:6380", cfg.Redis.Addr())
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "root:secret@tcp(db.internal:3306)/library_test?charset=utf8mb4&parseTime=true&loc=Local", cfg.Database.DSN())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Server:   ServerConfig{Port: 8080, Mode: "release"},
			Database: DatabaseConfig{Driver: DriverSQLite, Path: "x.db"},
			JWT:      JWTConfig{Enabled: true, Secret: "prod-secret"},
		}
	}

	assert.NoError(t, validate(base()))

	cfg := base()
	cfg.Server.Port = 0
	assert.Error(t, validate(cfg))

	cfg = base()
	cfg.Database.Driver = "oracle"
	assert.Error(t, validate(cfg))

	cfg = base()
	cfg.JWT.Secret = defaultJWTSecret
	assert.Error(t, validate(cfg))

	cfg = base()
	cfg.MQ = MQConfig{Enabled: true}
	assert.Error(t, validate(cfg))
}

func TestDatabaseConfig_SQLiteDSN(t *testing.T) {
	d := DatabaseConfig{Driver: DriverSQLite, Path: "/tmp/lib.db"}
	assert.Equal(t, "/tmp/lib.db?_foreign_keys=on&_busy_timeout=5000", d.DSN())
}
