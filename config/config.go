package config

import (
	"fmt"
	"os"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

// SysConfig holds process-level settings.
type SysConfig struct {
	Appid    string `yaml:"appid" json:"appid"`
	Location string `yaml:"location" json:"location"`
	Workdir  string `yaml:"workdir" json:"workdir"`
	Debug    bool   `yaml:"debug" json:"debug"`
	SeedDemo bool   `yaml:"seed_demo" json:"seed_demo"`
}

type WebConfig struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
}

type DBConfig struct {
	// DSN is the full connection string for the record store.
	DSN string `yaml:"dsn" json:"dsn"`
	// MaxConn limits open connections on the pool.
	MaxConn int `yaml:"max_conn" json:"max_conn"`
	IdleConn int `yaml:"idle_conn" json:"idle_conn"`
}

// MediaConfig holds the hosted image service credentials.
type MediaConfig struct {
	CloudName string `yaml:"cloud_name" json:"cloud_name"`
	APIKey    string `yaml:"api_key" json:"api_key"`
	APISecret string `yaml:"api_secret" json:"-"`
	// Folder is the logical folder uploads are placed under.
	Folder string `yaml:"folder" json:"folder"`
	// BaseURL overrides the media host endpoint, mainly for tests.
	BaseURL string `yaml:"base_url" json:"base_url"`
}

type LogConfig struct {
	Mode       string `yaml:"mode" json:"mode"`
	FileEnable bool   `yaml:"file_enable" json:"file_enable"`
	Filename   string `yaml:"filename" json:"filename"`
}

type AppConfig struct {
	System   SysConfig   `yaml:"system" json:"system"`
	Web      WebConfig   `yaml:"web" json:"web"`
	Database DBConfig    `yaml:"database" json:"database"`
	Media    MediaConfig `yaml:"media" json:"media"`
	Logger   LogConfig   `yaml:"logger" json:"logger"`
}

func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		System: SysConfig{
			Appid:    "catalogd",
			Location: "UTC",
			Workdir:  "/var/catalogd",
			Debug:    false,
			SeedDemo: false,
		},
		Web: WebConfig{
			Host: "0.0.0.0",
			Port: 3000,
		},
		Database: DBConfig{
			MaxConn:  50,
			IdleConn: 10,
		},
		Media: MediaConfig{
			Folder:  "products",
			BaseURL: "https://api.cloudinary.com/v1_1",
		},
		Logger: LogConfig{
			Mode:       "development",
			FileEnable: false,
			Filename:   "/var/catalogd/catalogd.log",
		},
	}
}

func setEnvValue(name string, val *string) {
	if v, ok := os.LookupEnv(name); ok {
		*val = v
	}
}

func setEnvIntValue(name string, val *int) {
	if v, ok := os.LookupEnv(name); ok {
		*val = cast.ToInt(v)
	}
}

func setEnvBoolValue(name string, val *bool) {
	if v, ok := os.LookupEnv(name); ok {
		*val = cast.ToBool(v)
	}
}

// LoadConfig reads the YAML configuration file when it exists and applies
// environment overrides on top. The file is optional so a pure-env
// deployment works.
func LoadConfig(cfile string) *AppConfig {
	cfg := DefaultAppConfig()
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				fmt.Fprintf(os.Stderr, "catalogd: bad config file %s: %v\n", cfile, err)
				os.Exit(1)
			}
		}
	}

	setEnvValue("CATALOG_SYSTEM_WORKDIR", &cfg.System.Workdir)
	setEnvBoolValue("CATALOG_SYSTEM_DEBUG", &cfg.System.Debug)
	setEnvBoolValue("CATALOG_SYSTEM_SEED_DEMO", &cfg.System.SeedDemo)
	setEnvValue("CATALOG_WEB_HOST", &cfg.Web.Host)
	setEnvIntValue("CATALOG_WEB_PORT", &cfg.Web.Port)
	setEnvValue("CATALOG_DB_DSN", &cfg.Database.DSN)
	setEnvValue("CATALOG_MEDIA_CLOUD_NAME", &cfg.Media.CloudName)
	setEnvValue("CATALOG_MEDIA_API_KEY", &cfg.Media.APIKey)
	setEnvValue("CATALOG_MEDIA_API_SECRET", &cfg.Media.APISecret)
	setEnvValue("CATALOG_MEDIA_FOLDER", &cfg.Media.Folder)
	setEnvValue("CATALOG_MEDIA_BASE_URL", &cfg.Media.BaseURL)
	setEnvValue("CATALOG_LOGGER_MODE", &cfg.Logger.Mode)
	setEnvBoolValue("CATALOG_LOGGER_FILE_ENABLE", &cfg.Logger.FileEnable)
	setEnvValue("CATALOG_LOGGER_FILENAME", &cfg.Logger.Filename)

	return cfg
}

// Validate checks the values the process cannot run without.
func (c *AppConfig) Validate() error {
	switch {
	case c.Database.DSN == "":
		return fmt.Errorf("database dsn is required (CATALOG_DB_DSN)")
	case c.Media.CloudName == "":
		return fmt.Errorf("media cloud name is required (CATALOG_MEDIA_CLOUD_NAME)")
	case c.Media.APIKey == "":
		return fmt.Errorf("media api key is required (CATALOG_MEDIA_API_KEY)")
	case c.Media.APISecret == "":
		return fmt.Errorf("media api secret is required (CATALOG_MEDIA_API_SECRET)")
	}
	if c.Web.Port <= 0 || c.Web.Port > 65535 {
		return fmt.Errorf("invalid web port %d", c.Web.Port)
	}
	return nil
}
