package cli

import (
	"github.com/spf13/cobra"

	"github.com/nettf/nettf/internal/monitor"
	"github.com/nettf/nettf/internal/server"
	"github.com/nettf/nettf/internal/shutdown"
	"github.com/nettf/nettf/internal/transfer"
	"github.com/nettf/nettf/pkg/logger"
	"github.com/nettf/nettf/pkg/progress"
)

var (
	recvPort    int
	recvDest    string
	recvMonitor bool
	recvQuiet   bool
)

var receiveCmd = &cobra.Command{
	Use:   "receive",
	Short: "run the receiver",
	Long: `receive listens for incoming transfers and writes them under the
receive directory. Connections are handled one at a time; press Ctrl+C once
for a graceful stop after the current transfer, twice to force exit.`,
	Args: cobra.NoArgs,
	RunE: runReceive,
}

func init() {
	rootCmd.AddCommand(receiveCmd)
	receiveCmd.Flags().IntVarP(&recvPort, "port", "p", 0, "listen port (default from config)")
	receiveCmd.Flags().StringVarP(&recvDest, "dest", "d", "", "receive directory (default from config)")
	receiveCmd.Flags().BoolVar(&recvMonitor, "monitor", false, "expose live progress over WebSocket")
	receiveCmd.Flags().BoolVarP(&recvQuiet, "quiet", "q", false, "suppress the progress line")
}

func runReceive(cmd *cobra.Command, args []string) error {
	if recvPort == 0 {
		recvPort = cfg.Port()
	}
	if recvDest == "" {
		recvDest = cfg.ReceiveDir()
	}

	tok := shutdown.NewToken()
	tok.Install()

	opts := &transfer.Options{Token: tok}
	var handlers []progress.Func
	if !recvQuiet {
		handlers = append(handlers, progress.NewRenderer(cmd.OutOrStdout()).Handle)
	}
	if recvMonitor {
		hub := monitor.NewHub()
		go func() {
			if err := hub.Serve(cfg.MonitorAddr()); err != nil {
				logger.Log.Error("monitor stopped", "error", err)
			}
		}()
		defer hub.Shutdown()
		handlers = append(handlers, hub.Progress())
	}
	if len(handlers) > 0 {
		opts.Progress = progress.Multi(handlers...)
	}

	return server.New(recvPort, recvDest, opts).ListenAndServe()
}
