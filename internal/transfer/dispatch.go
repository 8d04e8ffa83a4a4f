package transfer

import (
	"io"

	"github.com/nettf/nettf/internal/protocol"
	"github.com/nettf/nettf/pkg/logger"
)

// DispatchAndReceive reads the leading magic number off an accepted
// connection and runs the matching receive engine. An unknown magic is fatal
// for the connection; no further bytes are consumed from it.
func DispatchAndReceive(conn io.Reader, destDir string, opts *Options) error {
	kind, err := protocol.ReadMagic(conn)
	if err != nil {
		return err
	}
	logger.Log.Info("incoming transfer", "type", kind.String())

	switch kind {
	case protocol.TransferFile:
		return RecvFile(conn, destDir, opts)
	case protocol.TransferDir:
		return RecvDirectory(conn, destDir, opts)
	case protocol.TransferTargetFile:
		return RecvFileWithTarget(conn, destDir, opts)
	default:
		return RecvDirectoryWithTarget(conn, destDir, opts)
	}
}
