package cmd

import (
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/hoistd/hoist/internal/config"
	"github.com/hoistd/hoist/util"
)

var (
	configPath string
	logLevel   string
	logFile    string

	registryURL string
	repo        string
	statusURL   string
	apiKey      string
	installDir  string
	backupDir   string
	serviceName string
	channelFlag string
	assetSuffix string

	rootCmd = &cobra.Command{
		Use:          "hoist",
		Short:        "update orchestrator for self-hosted services",
		SilenceUsage: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath(), "hoist config file location")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "info", "sets hoist log level")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "console", "sets hoist log path. If console is specified the log will be output to stdout")
	rootCmd.PersistentFlags().StringVarP(&serviceName, "service", "s", "", "OS service name of the managed application")

	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(serviceCmd)
	rootCmd.AddCommand(versionCmd)

	serviceCmd.AddCommand(startCmd, stopCmd, svcStatusCmd)

	updateCmd.Flags().StringVar(&registryURL, "registry-url", "", "release registry API root URL")
	updateCmd.Flags().StringVar(&repo, "repo", "", "owner/name repository identifier the releases are published under")
	updateCmd.Flags().StringVar(&statusURL, "status-url", "", "status endpoint of the running application")
	updateCmd.Flags().StringVar(&apiKey, "api-key", "", "API key for the application's status endpoint")
	updateCmd.Flags().StringVar(&installDir, "install-dir", "", "directory the application is installed in")
	updateCmd.Flags().StringVar(&backupDir, "backup-dir", "", "directory state files are backed up to (default \"<install-dir>-backup\")")
	updateCmd.Flags().StringVar(&channelFlag, "channel", "", "release channel to follow, stable or prerelease")
	updateCmd.Flags().StringVar(&assetSuffix, "asset-suffix", "", "bundle name suffix to select (default chosen for this platform)")
}

// setupCommand applies the environment variable layer and initializes
// logging; every leaf command calls it first.
func setupCommand(cmd *cobra.Command) error {
	SetFlagsFromEnvVars(rootCmd)
	SetFlagsFromEnvVars(cmd)
	cmd.SetOut(cmd.OutOrStdout())

	return util.InitLog(logLevel, logFile)
}

// SetFlagsFromEnvVars reads and updates flag values from environment variables with prefix HOIST_
func SetFlagsFromEnvVars(cmd *cobra.Command) {
	flags := cmd.PersistentFlags()
	if cmd != rootCmd {
		flags = cmd.Flags()
	}

	flags.VisitAll(func(f *pflag.Flag) {
		envVar := FlagNameToEnvVar(f.Name, "HOIST_")

		if value, present := os.LookupEnv(envVar); present {
			err := flags.Set(f.Name, value)
			if err != nil {
				log.Infof("unable to configure flag %s using variable %s, err: %v", f.Name, envVar, err)
			}
		}
	})
}

// FlagNameToEnvVar converts flag name to environment var name adding a prefix,
// replacing dashes and making all uppercase (e.g. install-dir is converted to HOIST_INSTALL_DIR according to the input prefix)
func FlagNameToEnvVar(cmdFlag string, prefix string) string {
	parsed := strings.ReplaceAll(cmdFlag, "-", "_")
	upper := strings.ToUpper(parsed)
	return prefix + upper
}

// resolvedConfig loads the stored config and overlays any explicitly
// provided flag or environment values on top of it.
func resolvedConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	if registryURL != "" {
		cfg.RegistryURL = registryURL
	}
	if repo != "" {
		cfg.Repo = repo
	}
	if statusURL != "" {
		cfg.StatusURL = statusURL
	}
	if apiKey != "" {
		cfg.APIKey = apiKey
	}
	if installDir != "" {
		cfg.InstallDir = installDir
	}
	if backupDir != "" {
		cfg.BackupDir = backupDir
	}
	if serviceName != "" {
		cfg.ServiceName = serviceName
	}
	if channelFlag != "" {
		cfg.Channel = channelFlag
	}
	if assetSuffix != "" {
		cfg.AssetSuffix = assetSuffix
	}

	return cfg, nil
}
