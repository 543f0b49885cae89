package app

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"confshelf/internal/logging"
	"confshelf/internal/store"
)

// ConfigName is the base name of the configuration file.
const ConfigName = "confshelf"

// Config holds runtime options for the CLI.
type Config struct {
	Home        string        `mapstructure:"home"`   // default state dir, e.g. $XDG_CONFIG_HOME/confshelf
	Dir         string        `mapstructure:"dir"`    // snapshot dir; defaults to Home
	Prefix      string        `mapstructure:"prefix"` // snapshot name without extension
	Ext         string        `mapstructure:"ext"`
	Encrypt     bool          `mapstructure:"encrypt"`
	Compression string        `mapstructure:"compression"`
	SaltPath    string        `mapstructure:"salt_path"` // empty means <Home>/master.salt
	CreateSalt  bool          `mapstructure:"create_salt"`
	Passphrase  string        `mapstructure:"passphrase"`
	LockTimeout time.Duration `mapstructure:"lock_timeout"`
	LogLevel    string        `mapstructure:"log_level"`
}

// Defaults returns the built-in configuration values.
func Defaults() map[string]any {
	return map[string]any{
		"home":         "",
		"dir":          "",
		"prefix":       "config",
		"ext":          store.DefaultExt,
		"encrypt":      false,
		"compression":  "",
		"salt_path":    "",
		"create_salt":  false,
		"passphrase":   "",
		"lock_timeout": store.DefaultLockTimeout,
		"log_level":    logging.DefaultLevel,
	}
}

// flagKeys maps config keys to CLI flag names.
var flagKeys = map[string]string{
	"home":         "home",
	"dir":          "dir",
	"prefix":       "prefix",
	"ext":          "ext",
	"encrypt":      "encrypt",
	"compression":  "compression",
	"salt_path":    "salt",
	"create_salt":  "create-salt",
	"lock_timeout": "lock-timeout",
	"log_level":    "log-level",
}

// LoadConfig merges defaults, the config file, CONFSHELF_* environment
// variables and flags, in increasing precedence. configFile, when set,
// replaces the search of the standard locations.
func LoadConfig(flags *pflag.FlagSet, configFile string) (Config, error) {
	var c Config
	v := viper.New()

	for key, value := range Defaults() {
		v.SetDefault(key, value)
	}

	v.SetConfigName(ConfigName)
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, ConfigName))
		}
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		// A missing file is fine unless it was asked for explicitly.
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return c, fmt.Errorf("reading config: %w", err)
		}
	}

	// Every key carries a default so AutomaticEnv covers all of them.
	v.SetEnvPrefix(ConfigName)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for key, name := range flagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return c, err
				}
			}
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("parsing config: %w", err)
	}
	return c, nil
}
