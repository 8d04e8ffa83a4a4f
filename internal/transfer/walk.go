package transfer

import (
	"fmt"
	"io/fs"
	"path/filepath"
)

// Entry is one regular file inside a directory transfer, addressed by its
// path relative to the transfer root. Relative paths use forward slashes on
// the wire regardless of host separator.
type Entry struct {
	RelPath string
	Size    int64
}

// Enumerate walks the tree under root and returns every regular file with its
// relative path and size, in lexical walk order. Subdirectories are implied
// by the relative paths and are never returned as entries. The walk is
// read-only; nothing may mutate the tree between enumeration and streaming.
func Enumerate(root string) ([]Entry, error) {
	var entries []Entry
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		entries = append(entries, Entry{
			RelPath: filepath.ToSlash(rel),
			Size:    info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("enumerate %s: %w", root, err)
	}
	return entries, nil
}

// totalSize sums the sizes of the enumerated entries.
func totalSize(entries []Entry) uint64 {
	var total uint64
	for _, e := range entries {
		total += uint64(e.Size)
	}
	return total
}
