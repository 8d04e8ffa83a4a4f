package cli

import (
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nettf/nettf/internal/discovery"
)

var (
	discPort    int
	discTimeout time.Duration
	discPublic  bool
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "find receivers on the local network",
	Long: `discover sweeps the local IPv4 subnets and reports every host
accepting connections on the service port. With --public it also asks a STUN
server for this host's public address.`,
	Args: cobra.NoArgs,
	RunE: runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)
	discoverCmd.Flags().IntVarP(&discPort, "port", "p", 0, "port to probe (default from config)")
	discoverCmd.Flags().DurationVar(&discTimeout, "timeout", 500*time.Millisecond, "per-host probe timeout")
	discoverCmd.Flags().BoolVar(&discPublic, "public", false, "also query the STUN server for the public address")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	if discPort == 0 {
		discPort = cfg.Port()
	}
	out := cmd.OutOrStdout()

	peers, err := discovery.Scan(discPort, discTimeout)
	if err != nil {
		return err
	}
	if len(peers) == 0 {
		fmt.Fprintln(out, "No receivers found.")
	} else {
		color.New(color.FgCyan).Fprintf(out, "Found %d receiver(s):\n", len(peers))
		for _, p := range peers {
			fmt.Fprintf(out, "  %s  (%s)\n", color.GreenString(p.Addr), p.RTT.Round(time.Millisecond))
		}
	}

	if discPublic {
		addr, err := discovery.PublicAddr(cfg.StunServer())
		if err != nil {
			return fmt.Errorf("public address lookup: %w", err)
		}
		fmt.Fprintf(out, "Public address: %s\n", color.YellowString(addr))
	}
	return nil
}
