package cmd

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hoistd/hoist/internal/config"
	"github.com/hoistd/hoist/internal/installer"
	"github.com/hoistd/hoist/internal/oracle"
	"github.com/hoistd/hoist/internal/registry"
	"github.com/hoistd/hoist/internal/updater"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "updates the managed application to the latest published release",
	Long: `Selects the newest release on the configured channel, asks for
confirmation and then stops the service, backs up the application's state
files, replaces the install directory contents and restarts the service.

A declined confirmation exits cleanly without touching the service or any
file. Exit code is 0 on success or decline, 1 on any failure.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setupCommand(cmd); err != nil {
			return err
		}

		cfg, err := resolvedConfig()
		if err != nil {
			return err
		}

		if err := ensureCredentials(cmd, cfg); err != nil {
			return err
		}

		channel, err := registry.ParseChannel(cfg.Channel)
		if err != nil {
			return err
		}

		if cfg.Repo == "" || cfg.InstallDir == "" || cfg.ServiceName == "" {
			return fmt.Errorf("repo, install-dir and service-name must be configured, see: hoist set")
		}
		if cfg.BackupDir == "" {
			cfg.BackupDir = filepath.Clean(cfg.InstallDir) + "-backup"
		}

		releases := registry.NewClient(cfg.Repo)
		if cfg.RegistryURL != "" {
			releases.BaseURL = cfg.RegistryURL
		}

		suffix := cfg.AssetSuffix
		if suffix == "" {
			suffix = registry.DefaultSuffix()
		}

		u := &updater.Updater{
			Releases:  releases,
			Prober:    oracle.NewClient(),
			Installer: installer.New(installer.NewSystemService(cfg.ServiceName), cfg.Preserve),
			StatusURL: cfg.StatusURL,
			APIKey:    cfg.APIKey,
			Channel:   channel,
			Target: installer.Target{
				InstallDir:  cfg.InstallDir,
				BackupDir:   cfg.BackupDir,
				ServiceName: cfg.ServiceName,
			},
			AssetSuffix: suffix,
			In:          cmd.InOrStdin(),
			Out:         cmd.OutOrStdout(),
		}

		if _, err := u.Run(cmd.Context()); err != nil {
			return err
		}
		return nil
	},
}

// ensureCredentials prompts once for the status endpoint credentials and
// stores the answers, so later runs do not ask again. Empty answers are
// allowed: the version probe is best-effort and simply reports Unknown.
// Only the prompted answers are persisted; one-off flag values stay
// one-off.
func ensureCredentials(cmd *cobra.Command, cfg *config.Config) error {
	var promptedStatusURL, promptedAPIKey string

	if cfg.StatusURL == "" {
		value, err := promptValue(cmd, "Application status URL (empty to skip): ")
		if err != nil {
			return err
		}
		if value != "" {
			cfg.StatusURL = value
			promptedStatusURL = value
		}
	}

	if cfg.StatusURL != "" && cfg.APIKey == "" {
		value, err := promptValue(cmd, "Application API key: ")
		if err != nil {
			return err
		}
		if value != "" {
			cfg.APIKey = value
			promptedAPIKey = value
		}
	}

	if promptedStatusURL == "" && promptedAPIKey == "" {
		return nil
	}

	// write the answers onto the stored config, not the flag-overlaid
	// one, so explicit flags never leak into config.json
	stored, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if promptedStatusURL != "" {
		stored.StatusURL = promptedStatusURL
	}
	if promptedAPIKey != "" {
		stored.APIKey = promptedAPIKey
	}

	if err := stored.Save(configPath); err != nil {
		return fmt.Errorf("persist credentials: %w", err)
	}
	return nil
}

// promptValue reads one whitespace-delimited token without buffering
// past the line, so the confirmation prompt still sees its input.
func promptValue(cmd *cobra.Command, prompt string) (string, error) {
	cmd.Print(prompt)

	var value string
	if _, err := fmt.Fscanln(cmd.InOrStdin(), &value); err != nil {
		// an empty line or closed input means "skip"
		if errors.Is(err, io.EOF) || err.Error() == "unexpected newline" {
			return "", nil
		}
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(value), nil
}
