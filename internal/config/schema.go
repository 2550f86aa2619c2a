package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrProjectRootUnset is returned by Validate when no project root is configured.
var ErrProjectRootUnset = errors.New("project_root is not set (set CRXLEDGER_PROJECT_ROOT or project_root in config)")

// Config is the top-level crxledger configuration.
type Config struct {
	ProjectRoot string         `mapstructure:"project_root" yaml:"project_root"`
	DataDir     string         `mapstructure:"data_dir" yaml:"data_dir"`
	Files       FilesConfig    `mapstructure:"files" yaml:"files"`
	Scraper     ScraperConfig  `mapstructure:"scraper" yaml:"scraper"`
	CDN         CDNConfig      `mapstructure:"cdn" yaml:"cdn"`
	Prettify    PrettifyConfig `mapstructure:"prettify" yaml:"prettify"`
	Log         LogConfig      `mapstructure:"log" yaml:"log"`
}

// FilesConfig names the pipeline's JSON documents, relative to ProjectRoot.
type FilesConfig struct {
	Metadata              string `mapstructure:"metadata" yaml:"metadata"`
	DownloadLog           string `mapstructure:"download_log" yaml:"download_log"`
	InstallState          string `mapstructure:"install_state" yaml:"install_state"`
	InstallStateByVersion string `mapstructure:"install_state_by_version" yaml:"install_state_by_version"`
	PruneScript           string `mapstructure:"prune_script" yaml:"prune_script"`
	SampleList            string `mapstructure:"sample_list" yaml:"sample_list"`
}

// ScraperConfig holds mirror site settings.
type ScraperConfig struct {
	BaseURL   string `mapstructure:"base_url" yaml:"base_url"`
	UserAgent string `mapstructure:"user_agent" yaml:"user_agent"`
}

// CDNConfig holds the vendor update-service query contract.
type CDNConfig struct {
	BaseURL      string `mapstructure:"base_url" yaml:"base_url"`
	Response     string `mapstructure:"response" yaml:"response"`
	OS           string `mapstructure:"os" yaml:"os"`
	Arch         string `mapstructure:"arch" yaml:"arch"`
	OSArch       string `mapstructure:"os_arch" yaml:"os_arch"`
	NaclArch     string `mapstructure:"nacl_arch" yaml:"nacl_arch"`
	Prod         string `mapstructure:"prod" yaml:"prod"`
	ProdChannel  string `mapstructure:"prodchannel" yaml:"prodchannel"`
	ProdVersion  string `mapstructure:"prodversion" yaml:"prodversion"`
	Lang         string `mapstructure:"lang" yaml:"lang"`
	AcceptFormat string `mapstructure:"acceptformat" yaml:"acceptformat"`
	// UpdateURL is the update-check (Omaha JSON) endpoint.
	UpdateURL string `mapstructure:"update_url" yaml:"update_url"`
}

// PrettifyConfig configures the external source formatter.
type PrettifyConfig struct {
	Enabled bool     `mapstructure:"enabled" yaml:"enabled"`
	Command string   `mapstructure:"command" yaml:"command"`
	Args    []string `mapstructure:"args" yaml:"args"`
}

// LogConfig configures the structured logger.
type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level"`
}

// Validate fails fast on settings every pipeline stage depends on.
func (c *Config) Validate() error {
	if c.ProjectRoot == "" {
		return ErrProjectRootUnset
	}
	fi, err := os.Stat(c.ProjectRoot)
	if err != nil {
		return fmt.Errorf("project_root %q: %w", c.ProjectRoot, err)
	}
	if !fi.IsDir() {
		return fmt.Errorf("project_root %q is not a directory", c.ProjectRoot)
	}
	return nil
}

// Path resolves a project-relative path. Absolute paths are returned as is.
func (c *Config) Path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(c.ProjectRoot, rel)
}

// DataPath returns the absolute data directory.
func (c *Config) DataPath() string {
	dir := c.DataDir
	if dir == "" {
		dir = ".data"
	}
	return c.Path(dir)
}

// ExtensionsDir is where archived CRX copies are kept.
func (c *Config) ExtensionsDir() string {
	return filepath.Join(c.DataPath(), "extensions")
}
