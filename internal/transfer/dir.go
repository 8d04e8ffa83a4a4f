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

// SendDirectory walks root and transmits every regular file under it: DIR
// magic, directory header, base name, then one file-header-plus-content
// record per file and a zero end marker after the last one.
func SendDirectory(conn io.Writer, root string, opts *Options) error {
	entries, err := Enumerate(root)
	if err != nil {
		return err
	}
	base := filepath.Base(filepath.Clean(root))
	total := totalSize(entries)

	if err := protocol.WriteMagic(conn, protocol.DirMagic); err != nil {
		return fmt.Errorf("send magic: %w", err)
	}
	hdr := protocol.DirHeader{
		TotalFiles:  uint64(len(entries)),
		TotalSize:   total,
		BasePathLen: uint64(len(base)),
	}
	if err := protocol.SendAll(conn, hdr.Encode()); err != nil {
		return fmt.Errorf("send dir header: %w", err)
	}
	if err := protocol.SendAll(conn, []byte(base)); err != nil {
		return fmt.Errorf("send base path: %w", err)
	}

	logger.Log.Info("sending directory", "base", base, "files", len(entries), "size", total)

	state := adaptive.New(total)
	for _, e := range entries {
		if err := sendEntry(conn, root, e, state, opts); err != nil {
			return err
		}
	}

	end := protocol.FileHeader{}
	if err := protocol.SendAll(conn, end.Encode()); err != nil {
		return fmt.Errorf("send end marker: %w", err)
	}
	return nil
}

// SendDirectoryWithTarget is SendDirectory with a server-side target
// subdirectory. The directory header already declares the file count, so
// this variant sends no end marker after the last entry.
func SendDirectoryWithTarget(conn io.Writer, root, targetDir string, opts *Options) error {
	target, err := ValidateTargetDir(targetDir)
	if err != nil {
		return err
	}
	entries, err := Enumerate(root)
	if err != nil {
		return err
	}
	base := filepath.Base(filepath.Clean(root))
	total := totalSize(entries)

	if err := protocol.WriteMagic(conn, protocol.TargetDirMagic); err != nil {
		return fmt.Errorf("send magic: %w", err)
	}
	hdr := protocol.TargetDirHeader{
		TotalFiles:   uint64(len(entries)),
		TotalSize:    total,
		BasePathLen:  uint64(len(base)),
		TargetDirLen: uint64(len(target)),
	}
	if err := protocol.SendAll(conn, hdr.Encode()); err != nil {
		return fmt.Errorf("send target dir header: %w", err)
	}
	if err := protocol.SendAll(conn, []byte(base)); err != nil {
		return fmt.Errorf("send base path: %w", err)
	}
	if err := protocol.SendAll(conn, []byte(target)); err != nil {
		return fmt.Errorf("send target dir: %w", err)
	}

	logger.Log.Info("sending directory", "base", base, "files", len(entries), "size", total, "target", target)

	state := adaptive.New(total)
	for _, e := range entries {
		if err := sendEntry(conn, root, e, state, opts); err != nil {
			return err
		}
	}
	return nil
}

// sendEntry transmits one file record inside a directory stream. The shared
// controller state is reset between files so stale speed samples from the
// previous file do not steer the next one; the learned chunk size carries over.
func sendEntry(conn io.Writer, root string, e Entry, state *adaptive.State, opts *Options) error {
	path := filepath.Join(root, filepath.FromSlash(e.RelPath))
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	hdr := protocol.FileHeader{FileSize: uint64(e.Size), FilenameLen: uint64(len(e.RelPath))}
	if err := protocol.SendAll(conn, hdr.Encode()); err != nil {
		return fmt.Errorf("send entry header: %w", err)
	}
	if err := protocol.SendAll(conn, []byte(e.RelPath)); err != nil {
		return fmt.Errorf("send entry path: %w", err)
	}

	state.Reset()
	return sendContent(conn, f, e.RelPath, uint64(e.Size), state, opts)
}

// RecvDirectory handles the body of a DIR transfer. Entries are consumed
// until the zero end marker arrives; the declared file count is informational.
func RecvDirectory(conn io.Reader, destDir string, opts *Options) error {
	raw := make([]byte, protocol.DirHeaderSize)
	if err := protocol.RecvAll(conn, raw); err != nil {
		return fmt.Errorf("recv dir header: %w", err)
	}
	hdr := protocol.DecodeDirHeader(raw)

	base, err := recvString(conn, hdr.BasePathLen)
	if err != nil {
		return fmt.Errorf("recv base path: %w", err)
	}
	baseRoot, err := securePath(destDir, base)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(baseRoot, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", baseRoot, err)
	}

	logger.Log.Info("receiving directory", "base", base, "files", hdr.TotalFiles, "size", hdr.TotalSize)

	var received uint64
	for {
		entry := make([]byte, protocol.FileHeaderSize)
		if err := protocol.RecvAll(conn, entry); err != nil {
			return fmt.Errorf("recv entry header: %w", err)
		}
		fh := protocol.DecodeFileHeader(entry)
		if fh.IsEndMarker() {
			break
		}
		if err := recvDirEntry(conn, baseRoot, fh, opts); err != nil {
			return err
		}
		received++
	}
	if received != hdr.TotalFiles {
		logger.Log.Warn("directory file count mismatch", "declared", hdr.TotalFiles, "received", received)
	}
	return nil
}

// RecvDirectoryWithTarget handles the body of a TDIR transfer. This variant
// has no end marker; exactly the declared number of entries is consumed.
func RecvDirectoryWithTarget(conn io.Reader, destDir string, opts *Options) error {
	raw := make([]byte, protocol.TargetDirHeaderSize)
	if err := protocol.RecvAll(conn, raw); err != nil {
		return fmt.Errorf("recv target dir header: %w", err)
	}
	hdr := protocol.DecodeTargetDirHeader(raw)

	base, err := recvString(conn, hdr.BasePathLen)
	if err != nil {
		return fmt.Errorf("recv base path: %w", err)
	}
	target, err := recvString(conn, hdr.TargetDirLen)
	if err != nil {
		return fmt.Errorf("recv target dir: %w", err)
	}

	baseRoot, err := securePath(destDir, filepath.Join(target, base))
	if err != nil {
		return err
	}
	if err := os.MkdirAll(baseRoot, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", baseRoot, err)
	}

	logger.Log.Info("receiving directory", "base", base, "files", hdr.TotalFiles, "size", hdr.TotalSize, "target", target)

	for i := uint64(0); i < hdr.TotalFiles; i++ {
		entry := make([]byte, protocol.FileHeaderSize)
		if err := protocol.RecvAll(conn, entry); err != nil {
			return fmt.Errorf("recv entry header: %w", err)
		}
		fh := protocol.DecodeFileHeader(entry)
		if fh.IsEndMarker() {
			return fmt.Errorf("unexpected end marker at entry %d of %d", i, hdr.TotalFiles)
		}
		if err := recvDirEntry(conn, baseRoot, fh, opts); err != nil {
			return err
		}
	}
	return nil
}

// recvDirEntry consumes one file record: relative path, then content. Each
// file gets a fresh controller since the receive side cannot carry sender
// pacing across files.
func recvDirEntry(conn io.Reader, baseRoot string, fh protocol.FileHeader, opts *Options) error {
	rel, err := recvString(conn, fh.FilenameLen)
	if err != nil {
		return fmt.Errorf("recv entry path: %w", err)
	}

	dest, err := securePath(baseRoot, rel)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(dest), err)
	}

	state := adaptive.New(fh.FileSize)
	return writeIncoming(conn, dest, rel, fh.FileSize, state, opts)
}
