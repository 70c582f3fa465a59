package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix             = "SNAPVIEW"
	defaultHTTPAddress    = "0.0.0.0:8080"
	defaultDatabasePath   = "snapview.db"
	defaultLogLevel       = "info"
	defaultSidePanelWidth = 320
)

// AppConfig captures runtime configuration for the snapview CLI.
type AppConfig struct {
	HTTPAddress    string
	SnapshotDir    string
	BaseURL        string
	DatabasePath   string
	LogLevel       string
	SidePanelWidth float64
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("panel.width", defaultSidePanelWidth)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	cfg := AppConfig{
		HTTPAddress:    configViper.GetString("http.address"),
		SnapshotDir:    configViper.GetString("snapshot.dir"),
		BaseURL:        configViper.GetString("base.url"),
		DatabasePath:   configViper.GetString("database.path"),
		LogLevel:       configViper.GetString("log.level"),
		SidePanelWidth: configViper.GetFloat64("panel.width"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.HTTPAddress) == "" {
		return fmt.Errorf("http.address is required")
	}
	if strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.SidePanelWidth < 0 {
		return fmt.Errorf("panel.width must not be negative")
	}
	return nil
}
