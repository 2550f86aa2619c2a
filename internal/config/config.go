package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultPath returns the default config file path.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "crxledger", "config.yml")
}

// ConfigPath returns the config file in effect: CRXLEDGER_CONFIG or the default.
func ConfigPath() string {
	if p := os.Getenv("CRXLEDGER_CONFIG"); p != "" {
		return p
	}
	return DefaultPath()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("project_root", "")
	v.SetDefault("data_dir", ".data")

	v.SetDefault("files.metadata", "metadata.json")
	v.SetDefault("files.download_log", "download-log.json")
	v.SetDefault("files.install_state", "install-state-log.json")
	v.SetDefault("files.install_state_by_version", "install-state-by-version.json")
	v.SetDefault("files.prune_script", "prune-dupes.sh")
	v.SetDefault("files.sample_list", filepath.Join("zips", "sitemaps", "random-crx.txt"))

	v.SetDefault("scraper.base_url", "https://www.crx4chrome.com")
	v.SetDefault("scraper.user_agent", "crxledger/1.0 (+https://github.com/blackwell-systems/crxledger)")

	v.SetDefault("cdn.base_url", "https://clients2.google.com/service/update2/crx")
	v.SetDefault("cdn.response", "redirect")
	v.SetDefault("cdn.os", "mac")
	v.SetDefault("cdn.arch", "x64")
	v.SetDefault("cdn.os_arch", "x86_64")
	v.SetDefault("cdn.nacl_arch", "x86-64")
	v.SetDefault("cdn.prod", "chromecrx")
	v.SetDefault("cdn.prodchannel", "canary")
	v.SetDefault("cdn.prodversion", "121.0.6116.0")
	v.SetDefault("cdn.lang", "en-US")
	v.SetDefault("cdn.acceptformat", "crx3,puff")
	v.SetDefault("cdn.update_url", "https://update.googleapis.com/service/update2/json")

	v.SetDefault("prettify.enabled", false)
	v.SetDefault("prettify.command", "prettier")
	v.SetDefault("prettify.args", []string{"--no-editorconfig", "--no-config", "--write"})

	v.SetDefault("log.level", "info")
}

// Load reads the config from disk and env. A missing file is fine; values
// then come from defaults and CRXLEDGER_* variables.
func Load() (*Config, error) {
	return LoadFile(ConfigPath())
}

// LoadFile is Load with an explicit config file path.
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CRXLEDGER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		// Not finding the config file is fine; init creates it.
		if !os.IsNotExist(err) {
			if _, isCfgNotFound := err.(viper.ConfigFileNotFoundError); !isCfgNotFound {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.ProjectRoot = ExpandHome(cfg.ProjectRoot)
	if cfg.ProjectRoot != "" {
		if abs, err := filepath.Abs(cfg.ProjectRoot); err == nil {
			cfg.ProjectRoot = abs
		}
	}
	return &cfg, nil
}

// Save writes the config to path.
func Save(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	return enc.Encode(cfg)
}

// ExpandHome expands a leading ~/ in a path.
func ExpandHome(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}
