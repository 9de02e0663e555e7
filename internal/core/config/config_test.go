package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestRead_FileValuesAndDefaults(t *testing.T) {
	p := writeConfig(t, `
app:
  http:
    port: 9090
jwt:
  secret: s3cret
db:
  driver: postgres
  dsn: host=localhost
shelter:
  dashboard_window_months: 3
`)
	c, err := Read(p)
	require.NoError(t, err)

	assert.Equal(t, 9090, c.App.HTTP.Port)
	assert.Equal(t, 8081, c.App.Admin.Port)
	assert.Equal(t, "s3cret", c.JWT.Secret)
	assert.Equal(t, "animal-shelter", c.JWT.Issuer)
	assert.Equal(t, "postgres", c.DB.Driver)
	assert.Equal(t, 3, c.Shelter.DashboardWindowMonths)
	assert.Equal(t, 5, c.Shelter.ActiveVolunteers)
	assert.Equal(t, 30, c.Cache.PublicTTLSec)
	assert.False(t, c.Auth.Require2FA)
}

func TestRead_EnvOverride(t *testing.T) {
	p := writeConfig(t, "db:\n  driver: sqlite\n")
	t.Setenv("APP_DB_DRIVER", "mysql")
	t.Setenv("APP_AUTH_REQUIRE_2FA", "true")

	c, err := Read(p)
	require.NoError(t, err)
	assert.Equal(t, "mysql", c.DB.Driver)
	assert.True(t, c.Auth.Require2FA)
}

func TestRead_MissingFile(t *testing.T) {
	_, err := Read(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
