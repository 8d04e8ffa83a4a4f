// Package client runs the send side: dial the receiver and stream one file
// or directory tree over the connection, then close it. Every invocation is
// one connection and one transfer.
package client

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/nettf/nettf/internal/transfer"
	"github.com/nettf/nettf/pkg/logger"
)

// Client holds the dial parameters for outbound transfers.
type Client struct {
	addr        string
	dialTimeout time.Duration
	opts        *transfer.Options
}

func New(host string, port int, dialTimeout time.Duration, opts *transfer.Options) *Client {
	return &Client{
		addr:        net.JoinHostPort(host, fmt.Sprintf("%d", port)),
		dialTimeout: dialTimeout,
		opts:        opts,
	}
}

// Send transmits path to the receiver. Directories and files select their
// wire variant automatically; a non-empty targetDir selects the target
// variants and is validated before dialing.
func (c *Client) Send(path, targetDir string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if targetDir != "" {
		if _, err := transfer.ValidateTargetDir(targetDir); err != nil {
			return err
		}
	}

	conn, err := net.DialTimeout("tcp", c.addr, c.dialTimeout)
	if err != nil {
		return fmt.Errorf("connect to %s: %w", c.addr, err)
	}
	defer conn.Close()
	logger.Log.Info("connected", "peer", c.addr)

	start := time.Now()
	switch {
	case info.IsDir() && targetDir != "":
		err = transfer.SendDirectoryWithTarget(conn, path, targetDir, c.opts)
	case info.IsDir():
		err = transfer.SendDirectory(conn, path, c.opts)
	case targetDir != "":
		err = transfer.SendFileWithTarget(conn, path, targetDir, c.opts)
	default:
		err = transfer.SendFile(conn, path, c.opts)
	}
	if err != nil {
		return err
	}

	logger.Log.Info("transfer complete", "path", path, "elapsed", time.Since(start).String())
	return nil
}
