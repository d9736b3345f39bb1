package main

import (
	"errors"
	"os"
	"strings"

	"github.com/arthur-debert/filedb/filedb"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// cliConfig is everything the commands read from flags, the environment and
// the config file
type cliConfig struct {
	filedb.Config `mapstructure:",squash"`

	Tag        string `mapstructure:"tag"`
	DataStore  string `mapstructure:"datastore"`
	Collection string `mapstructure:"collection"`
	Format     string `mapstructure:"format"`
	Encrypted  bool   `mapstructure:"encrypted"`
	Compressed bool   `mapstructure:"compressed"`
	LogLevel   string `mapstructure:"log_level"`
	NoColor    bool   `mapstructure:"no_color"`
}

// configKeys maps viper keys to the persistent flags they are bound to
var configKeys = map[string]string{
	"location":        "location",
	"tag":             "tag",
	"datastore":       "datastore",
	"collection":      "collection",
	"format":          "format",
	"passphrase":      "passphrase",
	"encrypted":       "encrypted",
	"compressed":      "compressed",
	"access_everyone": "access-everyone",
	"disable_caching": "no-cache",
	"log_level":       "log-level",
	"no_color":        "no-color",
}

// setupViper configures config file discovery and environment variables
func (a *app) setupViper() {
	a.v.SetFs(a.fs.Afero())

	// FILEDB_CONFIG selects a config file explicitly
	if configFile := os.Getenv("FILEDB_CONFIG"); configFile != "" {
		a.v.SetConfigFile(configFile)
	} else {
		a.v.SetConfigName("filedb")
		a.v.AddConfigPath(".")
		a.v.AddConfigPath("$HOME/.filedb")
		a.v.AddConfigPath("/etc/filedb")
	}

	// FILEDB_LOG_LEVEL, FILEDB_PASSPHRASE, ...
	a.v.SetEnvPrefix("FILEDB")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
}

// loadConfig binds the flags of cmd and reads the merged configuration
func (a *app) loadConfig(cmd *cobra.Command) (*cliConfig, error) {
	flags := cmd.Flags()
	for key, flag := range configKeys {
		if f := flags.Lookup(flag); f != nil {
			if err := a.v.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}

	if path, _ := flags.GetString("config"); path != "" {
		a.v.SetConfigFile(path)
	}
	if err := a.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, NewConfigError("load configuration", err.Error(), CommonSuggestions.CheckConfig)
		}
	}

	var cfg cliConfig
	if err := a.v.Unmarshal(&cfg); err != nil {
		return nil, NewConfigError("load configuration", err.Error(), CommonSuggestions.CheckConfig)
	}

	if cfg.Location == "" && len(cfg.Locations) == 0 {
		cfg.Location = "."
	}
	if cfg.DataStore == "" {
		cfg.DataStore = "default"
	}
	return &cfg, nil
}
