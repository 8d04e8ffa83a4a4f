package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/nettf/nettf/internal/client"
	"github.com/nettf/nettf/internal/shutdown"
	"github.com/nettf/nettf/internal/transfer"
	"github.com/nettf/nettf/internal/watcher"
	"github.com/nettf/nettf/pkg/logger"
)

var (
	watchPort   int
	watchTarget string
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir> <host>",
	Short: "auto-send files dropped into a directory",
	Long: `watch monitors a directory and sends every file that settles in it
to the receiver on host, reproducing the directory's layout under the
receiver's root (or under --target).`,
	Args: cobra.ExactArgs(2),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().IntVarP(&watchPort, "port", "p", 0, "receiver port (default from config)")
	watchCmd.Flags().StringVarP(&watchTarget, "target", "t", "", "receiver-side base directory for sent files")
}

func runWatch(cmd *cobra.Command, args []string) error {
	dir, host := args[0], args[1]
	if watchPort == 0 {
		watchPort = cfg.Port()
	}

	tok := shutdown.NewToken()
	tok.Install()

	opts := &transfer.Options{Token: tok}
	c := client.New(host, watchPort, cfg.DialTimeout(), opts)

	w, err := watcher.New(dir, watchTarget, c, context.Background())
	if err != nil {
		return err
	}
	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	for {
		switch tok.State() {
		case shutdown.PromptOnce:
			logger.Log.Warn("Shutdown requested; press Ctrl+C again to force exit")
			tok.Acknowledge()
		case shutdown.ForceExit:
			return nil
		}
		time.Sleep(200 * time.Millisecond)
	}
}
