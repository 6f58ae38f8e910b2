package cmd

import (
	"fmt"

	"github.com/kardianos/service"
	"github.com/spf13/cobra"

	"github.com/hoistd/hoist/internal/installer"
)

var serviceCmd = &cobra.Command{
	Use:   "service",
	Short: "manually control the managed application's OS service",
}

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "starts the application service",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, name, err := resolvedService(cmd)
		if err != nil {
			return err
		}
		if err := svc.Start(); err != nil {
			return err
		}
		cmd.Printf("service %s has been started\n", name)
		return nil
	},
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "stops the application service",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, name, err := resolvedService(cmd)
		if err != nil {
			return err
		}
		if err := svc.Stop(); err != nil {
			return err
		}
		cmd.Printf("service %s has been stopped\n", name)
		return nil
	},
}

var svcStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "prints the application service status",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, name, err := resolvedService(cmd)
		if err != nil {
			return err
		}

		status, err := svc.Status()
		if err != nil {
			return fmt.Errorf("get status of service %s: %w", name, err)
		}

		switch status {
		case service.StatusRunning:
			cmd.Printf("service %s is running\n", name)
		case service.StatusStopped:
			cmd.Printf("service %s is stopped\n", name)
		default:
			cmd.Printf("service %s status is unknown\n", name)
		}
		return nil
	},
}

func resolvedService(cmd *cobra.Command) (*installer.SystemService, string, error) {
	if err := setupCommand(cmd); err != nil {
		return nil, "", err
	}

	cfg, err := resolvedConfig()
	if err != nil {
		return nil, "", err
	}

	if cfg.ServiceName == "" {
		return nil, "", fmt.Errorf("service-name is not configured, see: hoist set %s", "service-name")
	}

	return installer.NewSystemService(cfg.ServiceName), cfg.ServiceName, nil
}
