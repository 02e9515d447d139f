package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTestConfig() *AppConfig {
	cfg := DefaultAppConfig()
	cfg.Database.DSN = "host=127.0.0.1 user=catalog dbname=catalog"
	cfg.Media.CloudName = "democloud"
	cfg.Media.APIKey = "key"
	cfg.Media.APISecret = "secret"
	return cfg
}

func TestDefaults(t *testing.T) {
	cfg := LoadConfig("")
	assert.Equal(t, 3000, cfg.Web.Port)
	assert.Equal(t, "products", cfg.Media.Folder)
	assert.Equal(t, "https://api.cloudinary.com/v1_1", cfg.Media.BaseURL)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfile := filepath.Join(dir, "catalogd.yml")
	data := `
web:
  port: 8088
media:
  cloud_name: filecloud
  folder: shopimages
database:
  dsn: "host=db user=catalog"
`
	require.NoError(t, os.WriteFile(cfile, []byte(data), 0o644))

	cfg := LoadConfig(cfile)
	assert.Equal(t, 8088, cfg.Web.Port)
	assert.Equal(t, "filecloud", cfg.Media.CloudName)
	assert.Equal(t, "shopimages", cfg.Media.Folder)
	assert.Equal(t, "host=db user=catalog", cfg.Database.DSN)
	// untouched values keep their defaults
	assert.Equal(t, "0.0.0.0", cfg.Web.Host)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CATALOG_WEB_PORT", "9000")
	t.Setenv("CATALOG_DB_DSN", "host=envdb")
	t.Setenv("CATALOG_MEDIA_CLOUD_NAME", "envcloud")
	t.Setenv("CATALOG_MEDIA_API_KEY", "envkey")
	t.Setenv("CATALOG_MEDIA_API_SECRET", "envsecret")
	t.Setenv("CATALOG_SYSTEM_DEBUG", "true")

	cfg := LoadConfig("")
	assert.Equal(t, 9000, cfg.Web.Port)
	assert.Equal(t, "host=envdb", cfg.Database.DSN)
	assert.Equal(t, "envcloud", cfg.Media.CloudName)
	assert.True(t, cfg.System.Debug)
	require.NoError(t, cfg.Validate())
}

func TestValidateRequiredFields(t *testing.T) {
	require.NoError(t, validTestConfig().Validate())

	cfg := validTestConfig()
	cfg.Database.DSN = ""
	assert.Error(t, cfg.Validate())

	cfg = validTestConfig()
	cfg.Media.CloudName = ""
	assert.Error(t, cfg.Validate())

	cfg = validTestConfig()
	cfg.Media.APIKey = ""
	assert.Error(t, cfg.Validate())

	cfg = validTestConfig()
	cfg.Media.APISecret = ""
	assert.Error(t, cfg.Validate())

	cfg = validTestConfig()
	cfg.Web.Port = -1
	assert.Error(t, cfg.Validate())
}
