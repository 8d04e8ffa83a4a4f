package transfer

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nettf/nettf/internal/adaptive"
	"github.com/nettf/nettf/internal/protocol"
	"github.com/nettf/nettf/pkg/logger"
)

// SendFile transmits a single file: FILE magic, file header, filename bytes,
// then the content stream.
func SendFile(conn io.Writer, path string, opts *Options) error {
	f, info, err := openRegular(path)
	if err != nil {
		return err
	}
	defer f.Close()

	name := filepath.Base(path)
	size := uint64(info.Size())

	if err := protocol.WriteMagic(conn, protocol.FileMagic); err != nil {
		return fmt.Errorf("send magic: %w", err)
	}
	hdr := protocol.FileHeader{FileSize: size, FilenameLen: uint64(len(name))}
	if err := protocol.SendAll(conn, hdr.Encode()); err != nil {
		return fmt.Errorf("send file header: %w", err)
	}
	if err := protocol.SendAll(conn, []byte(name)); err != nil {
		return fmt.Errorf("send filename: %w", err)
	}

	logger.Log.Info("sending file", "name", name, "size", size)
	state := adaptive.New(size)
	return sendContent(conn, f, name, size, state, opts)
}

// SendFileWithTarget transmits a single file destined for a subdirectory of
// the receiver's receive root. The target is validated before any bytes go
// on the wire.
func SendFileWithTarget(conn io.Writer, path, targetDir string, opts *Options) error {
	target, err := ValidateTargetDir(targetDir)
	if err != nil {
		return err
	}

	f, info, err := openRegular(path)
	if err != nil {
		return err
	}
	defer f.Close()

	name := filepath.Base(path)
	size := uint64(info.Size())

	if err := protocol.WriteMagic(conn, protocol.TargetFileMagic); err != nil {
		return fmt.Errorf("send magic: %w", err)
	}
	hdr := protocol.TargetFileHeader{
		FileSize:     size,
		FilenameLen:  uint64(len(name)),
		TargetDirLen: uint64(len(target)),
	}
	if err := protocol.SendAll(conn, hdr.Encode()); err != nil {
		return fmt.Errorf("send target file header: %w", err)
	}
	if err := protocol.SendAll(conn, []byte(name)); err != nil {
		return fmt.Errorf("send filename: %w", err)
	}
	if err := protocol.SendAll(conn, []byte(target)); err != nil {
		return fmt.Errorf("send target dir: %w", err)
	}

	logger.Log.Info("sending file", "name", name, "size", size, "target", target)
	state := adaptive.New(size)
	return sendContent(conn, f, name, size, state, opts)
}

// RecvFile handles the body of a FILE transfer after the magic has been
// consumed by the dispatcher.
func RecvFile(conn io.Reader, destDir string, opts *Options) error {
	raw := make([]byte, protocol.FileHeaderSize)
	if err := protocol.RecvAll(conn, raw); err != nil {
		return fmt.Errorf("recv file header: %w", err)
	}
	hdr := protocol.DecodeFileHeader(raw)

	name, err := recvString(conn, hdr.FilenameLen)
	if err != nil {
		return fmt.Errorf("recv filename: %w", err)
	}

	dest, err := securePath(destDir, name)
	if err != nil {
		return err
	}

	logger.Log.Info("receiving file", "name", name, "size", hdr.FileSize)
	state := adaptive.New(hdr.FileSize)
	return writeIncoming(conn, dest, name, hdr.FileSize, state, opts)
}

// RecvFileWithTarget handles the body of a TARG transfer. The receiver
// re-derives the destination under its own receive root rather than trusting
// the sender's path as-is.
func RecvFileWithTarget(conn io.Reader, destDir string, opts *Options) error {
	raw := make([]byte, protocol.TargetFileHeaderSize)
	if err := protocol.RecvAll(conn, raw); err != nil {
		return fmt.Errorf("recv target file header: %w", err)
	}
	hdr := protocol.DecodeTargetFileHeader(raw)

	name, err := recvString(conn, hdr.FilenameLen)
	if err != nil {
		return fmt.Errorf("recv filename: %w", err)
	}
	target, err := recvString(conn, hdr.TargetDirLen)
	if err != nil {
		return fmt.Errorf("recv target dir: %w", err)
	}

	dest, err := securePath(destDir, filepath.Join(target, name))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create target dir: %w", err)
	}

	logger.Log.Info("receiving file", "name", name, "size", hdr.FileSize, "target", target)
	state := adaptive.New(hdr.FileSize)
	return writeIncoming(conn, dest, name, hdr.FileSize, state, opts)
}

// writeIncoming creates the destination file and streams the declared number
// of bytes into it. Zero-length files are created and closed with no content
// cycle.
func writeIncoming(conn io.Reader, dest, name string, size uint64, state *adaptive.State, opts *Options) error {
	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	defer f.Close()

	if size == 0 {
		if fn := opts.progressFunc(); fn != nil {
			rep := newReporter(fn, name, 0, state)
			rep.emit(true)
		}
		return nil
	}
	return recvContent(conn, f, name, size, state, opts)
}

func openRegular(path string) (*os.File, os.FileInfo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open %s: %w", path, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, nil, fmt.Errorf("%s: not a regular file", path)
	}
	return f, info, nil
}
