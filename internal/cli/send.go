package cli

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/nettf/nettf/internal/client"
	"github.com/nettf/nettf/internal/shutdown"
	"github.com/nettf/nettf/internal/transfer"
	"github.com/nettf/nettf/pkg/progress"
)

var (
	sendPort    int
	sendTimeout time.Duration
	sendQuiet   bool
)

var sendCmd = &cobra.Command{
	Use:   "send <host> <path> [target-dir]",
	Short: "send a file or directory to a receiver",
	Long: `send transmits one file or one directory tree to a running receiver.
With a target-dir argument the receiver places the content under that
subdirectory of its receive root instead of the root itself.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runSend,
}

func init() {
	rootCmd.AddCommand(sendCmd)
	sendCmd.Flags().IntVarP(&sendPort, "port", "p", 0, "receiver port (default from config)")
	sendCmd.Flags().DurationVar(&sendTimeout, "timeout", 0, "dial timeout (default from config)")
	sendCmd.Flags().BoolVarP(&sendQuiet, "quiet", "q", false, "suppress the progress line")
}

func runSend(cmd *cobra.Command, args []string) error {
	host, path := args[0], args[1]
	var target string
	if len(args) == 3 {
		target = args[2]
	}
	if sendPort == 0 {
		sendPort = cfg.Port()
	}
	if sendTimeout == 0 {
		sendTimeout = cfg.DialTimeout()
	}

	tok := shutdown.NewToken()
	tok.Install()

	opts := &transfer.Options{Token: tok}
	if !sendQuiet {
		opts.Progress = progress.NewRenderer(cmd.OutOrStdout()).Handle
	}

	c := client.New(host, sendPort, sendTimeout, opts)
	return c.Send(path, target)
}
