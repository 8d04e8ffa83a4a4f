package transfer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// maxTargetDirLen bounds the target-directory string a sender will place on
// the wire.
const maxTargetDirLen = 4096

var (
	ErrTargetTraversal = errors.New("path traversal in target directory")
	ErrTargetAbsolute  = errors.New("absolute target directory not allowed")
	ErrTargetTooLong   = errors.New("target directory path too long")
)

// ValidateTargetDir checks a caller-supplied target directory before any
// bytes go on the wire: no "..", no absolute path, bounded length. The
// returned string has leading slashes stripped and is otherwise unchanged.
// An empty target means the receiver's working directory and is valid.
//
// This runs on the sending side only. The receiver treats whatever arrives
// off the wire as untrusted and applies securePath independently.
func ValidateTargetDir(target string) (string, error) {
	if target == "" {
		return "", nil
	}
	if strings.Contains(target, "..") {
		return "", ErrTargetTraversal
	}
	if strings.HasPrefix(target, "/") {
		return "", ErrTargetAbsolute
	}
	clean := strings.TrimLeft(target, "/")
	if len(clean) > maxTargetDirLen {
		return "", ErrTargetTooLong
	}
	return clean, nil
}

// securePath resolves a wire-supplied relative path under root and rejects
// anything that would escape it. Network input is untrusted here even though
// the sender validated its own side.
func securePath(root, rel string) (string, error) {
	cleanRoot := filepath.Clean(root)
	target := filepath.Join(cleanRoot, filepath.FromSlash(rel))
	if target != cleanRoot && !strings.HasPrefix(target, cleanRoot+string(os.PathSeparator)) {
		return "", fmt.Errorf("path %q escapes destination root", rel)
	}
	return target, nil
}
