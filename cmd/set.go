package cmd

import (
	"github.com/spf13/cobra"

	"github.com/hoistd/hoist/internal/config"
)

var setCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "persists a hoist configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setupCommand(cmd); err != nil {
			return err
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		if err := cfg.Set(args[0], args[1]); err != nil {
			return err
		}

		if err := cfg.Save(configPath); err != nil {
			return err
		}

		cmd.Printf("%s saved\n", args[0])
		return nil
	},
}

var getCmd = &cobra.Command{
	Use:   "get <key>",
	Short: "prints a hoist configuration value",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := setupCommand(cmd); err != nil {
			return err
		}

		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		value, err := cfg.Get(args[0])
		if err != nil {
			return err
		}

		cmd.Println(value)
		return nil
	},
}
