package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nettf/nettf/internal/daemon"
)

var serviceCmd = &cobra.Command{
	Use:       "service install|uninstall|run",
	Short:     "manage the receiver as a system service",
	Long:      `service registers the receiver with the operating system's service manager so it runs in the background and starts at boot. run is the entry point the service manager itself invokes.`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"install", "uninstall", "run"},
	RunE:      runService,
}

func init() {
	rootCmd.AddCommand(serviceCmd)
}

func runService(cmd *cobra.Command, args []string) error {
	m := daemon.NewManager(cfg)
	switch args[0] {
	case "install":
		return m.Install()
	case "uninstall":
		return m.Uninstall()
	case "run":
		return m.Run()
	default:
		return fmt.Errorf("unknown service action %q", args[0])
	}
}
