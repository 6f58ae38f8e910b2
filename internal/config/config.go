// Package config persists hoist settings across runs. Values resolve
// with the precedence explicit flag > stored value > interactive prompt
// (whose answer is stored for future runs).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/hoistd/hoist/internal/registry"
	"github.com/hoistd/hoist/util"
)

// DefaultPreserve names the application's stateful files. They are
// backed up before every install and never purged from the install
// directory.
var DefaultPreserve = []string{"app.db", "settings.db", "external.db"}

// Config holds the persisted hoist settings.
type Config struct {
	RegistryURL string   `json:"registry_url,omitempty"`
	Repo        string   `json:"repo,omitempty"`
	StatusURL   string   `json:"status_url,omitempty"`
	APIKey      string   `json:"api_key,omitempty"`
	InstallDir  string   `json:"install_dir,omitempty"`
	BackupDir   string   `json:"backup_dir,omitempty"`
	ServiceName string   `json:"service_name,omitempty"`
	Channel     string   `json:"channel,omitempty"`
	AssetSuffix string   `json:"asset_suffix,omitempty"`
	Preserve    []string `json:"preserve,omitempty"`
}

// DefaultPath returns the per-user config file location.
func DefaultPath() string {
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "hoist", "config.json")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".config", "hoist", "config.json")
}

// Default returns a config with built-in defaults applied.
func Default() *Config {
	return &Config{
		RegistryURL: registry.DefaultBaseURL,
		Channel:     string(registry.ChannelStable),
		Preserve:    append([]string(nil), DefaultPreserve...),
	}
}

// Load reads the config file at path. A missing file is not an error
// and yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if err := util.ReadJson(path, cfg); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if cfg.RegistryURL == "" {
		cfg.RegistryURL = registry.DefaultBaseURL
	}
	if cfg.Channel == "" {
		cfg.Channel = string(registry.ChannelStable)
	}
	if len(cfg.Preserve) == 0 {
		cfg.Preserve = append([]string(nil), DefaultPreserve...)
	}

	return cfg, nil
}

// Save writes the config to path, creating parent directories.
func (c *Config) Save(path string) error {
	return util.WriteJson(path, c)
}

// Settable configuration keys, as exposed by "hoist set" and "hoist get".
const (
	KeyRegistryURL = "registry-url"
	KeyRepo        = "repo"
	KeyStatusURL   = "status-url"
	KeyAPIKey      = "api-key"
	KeyInstallDir  = "install-dir"
	KeyBackupDir   = "backup-dir"
	KeyServiceName = "service-name"
	KeyChannel     = "channel"
	KeyAssetSuffix = "asset-suffix"
	KeyPreserve    = "preserve"
)

// Get returns the stored value for key.
func (c *Config) Get(key string) (string, error) {
	switch key {
	case KeyRegistryURL:
		return c.RegistryURL, nil
	case KeyRepo:
		return c.Repo, nil
	case KeyStatusURL:
		return c.StatusURL, nil
	case KeyAPIKey:
		return c.APIKey, nil
	case KeyInstallDir:
		return c.InstallDir, nil
	case KeyBackupDir:
		return c.BackupDir, nil
	case KeyServiceName:
		return c.ServiceName, nil
	case KeyChannel:
		return c.Channel, nil
	case KeyAssetSuffix:
		return c.AssetSuffix, nil
	case KeyPreserve:
		return strings.Join(c.Preserve, ","), nil
	}
	return "", fmt.Errorf("unknown configuration key %q", key)
}

// Set updates the stored value for key. The channel value is validated;
// preserve takes a comma-separated filename list.
func (c *Config) Set(key, value string) error {
	switch key {
	case KeyRegistryURL:
		c.RegistryURL = value
	case KeyRepo:
		c.Repo = value
	case KeyStatusURL:
		c.StatusURL = value
	case KeyAPIKey:
		c.APIKey = value
	case KeyInstallDir:
		c.InstallDir = value
	case KeyBackupDir:
		c.BackupDir = value
	case KeyServiceName:
		c.ServiceName = value
	case KeyChannel:
		channel, err := registry.ParseChannel(value)
		if err != nil {
			return err
		}
		c.Channel = string(channel)
	case KeyAssetSuffix:
		c.AssetSuffix = value
	case KeyPreserve:
		var files []string
		for _, name := range strings.Split(value, ",") {
			if name = strings.TrimSpace(name); name != "" {
				files = append(files, name)
			}
		}
		c.Preserve = files
	default:
		return fmt.Errorf("unknown configuration key %q", key)
	}
	return nil
}
