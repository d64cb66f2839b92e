// Package config resolves ripe's settings from flags, environment variables
// and a YAML config file, in that order of precedence.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/polarityio/ripe/internal/appdir"
)

// EnvPrefix prefixes every environment variable, e.g. RIPE_PROXY.
const EnvPrefix = "RIPE"

// Config is the fully-resolved configuration. File keys use underscores
// (user_agent); the matching flags use hyphens (--user-agent).
type Config struct {
	// ConfigFile is the config file that was read.
	ConfigFile string `mapstructure:"config"`

	Verbose bool   `mapstructure:"verbose"`
	Trace   bool   `mapstructure:"trace"`
	Output  string `mapstructure:"output"`
	Defang  bool   `mapstructure:"defang"`

	// Request settings applied to every registry request.
	Proxy              string `mapstructure:"proxy"`
	UserAgent          string `mapstructure:"user_agent"`
	Cert               string `mapstructure:"cert"`
	Key                string `mapstructure:"key"`
	Passphrase         string `mapstructure:"passphrase"`
	CA                 string `mapstructure:"ca"`
	RejectUnauthorized bool   `mapstructure:"reject_unauthorized"`
}

// keys lists every config key; the flag name is the key with '_' → '-'.
var keys = []string{
	"config", "verbose", "trace", "output", "defang",
	"proxy", "user_agent", "cert", "key", "passphrase", "ca", "reject_unauthorized",
}

func flagName(key string) string { return strings.ReplaceAll(key, "_", "-") }

// RegisterFlags adds every config flag to flags.
func RegisterFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "config file (default: <user config dir>/ripe/config.yaml)")
	flags.BoolP("verbose", "v", false, "enable verbose logging (debug level)")
	flags.Bool("trace", false, "enable trace logging, including every request URI (implies --verbose)")
	flags.StringP("output", "o", "table", "output format: table, json, plain")
	flags.Bool("defang", false, "defang addresses and links in output")

	flags.String("proxy", "", "proxy URL (http, https or socks5, e.g. socks5://127.0.0.1:9050)")
	flags.String("user-agent", "", "custom User-Agent string")
	flags.String("cert", "", "PEM client certificate file for TLS client authentication")
	flags.String("key", "", "PEM private key file for the client certificate")
	flags.String("passphrase", "", "passphrase for an encrypted client private key")
	flags.String("ca", "", "PEM CA bundle used instead of the system roots")
	flags.Bool("reject-unauthorized", true, "verify the registry's TLS certificate")
}

// DefaultConfigPath returns <user config dir>/ripe/config.yaml.
func DefaultConfigPath() (string, error) {
	dir, err := appdir.ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// Load resolves the configuration. Flags that were set win over RIPE_*
// environment variables, which win over the config file, which wins over
// flag defaults. The config file is created (empty, 0600) when missing.
func Load(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	for _, key := range keys {
		f := flags.Lookup(flagName(key))
		if f == nil {
			return nil, fmt.Errorf("flag --%s is not registered", flagName(key))
		}
		if err := v.BindPFlag(key, f); err != nil {
			return nil, fmt.Errorf("binding flag --%s: %w", f.Name, err)
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	path := v.GetString("config")
	if path == "" {
		var err error
		if path, err = DefaultConfigPath(); err != nil {
			return nil, err
		}
	}
	if err := appdir.EnsureFile(path); err != nil {
		return nil, err
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config file %q: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.ConfigFile = path
	return &cfg, nil
}
