// Package watcher implements watch mode: an outbox directory is monitored
// and every file dropped into it is sent to the configured receiver once it
// stops changing.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nettf/nettf/pkg/logger"
)

// Sender is the outbound half the watcher drives. Satisfied by
// client.Client.
type Sender interface {
	Send(path, targetDir string) error
}

// Watcher monitors an outbox directory and pushes settled files to a
// receiver. Rapid write events for the same file are debounced so a file is
// sent once, after its writer goes quiet.
type Watcher struct {
	outbox    string
	targetDir string
	sender    Sender

	fsWatcher     *fsnotify.Watcher
	debounceMap   map[string]*time.Timer
	debounceMu    sync.Mutex
	debounceDelay time.Duration

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a watcher over outbox. Files that settle are sent via sender
// into targetDir plus their path relative to the outbox, so the outbox
// layout reproduces under the receiver's root.
func New(outbox, targetDir string, sender Sender, parent context.Context) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(parent)
	return &Watcher{
		outbox:        outbox,
		targetDir:     targetDir,
		sender:        sender,
		fsWatcher:     fsWatcher,
		debounceMap:   make(map[string]*time.Timer),
		debounceDelay: 2 * time.Second,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

// Start begins watching the outbox and its existing subdirectories.
func (w *Watcher) Start() error {
	if err := w.fsWatcher.Add(w.outbox); err != nil {
		return err
	}
	if err := w.addSubdirectories(w.outbox); err != nil {
		logger.Log.Warn("failed to watch some subdirectories", "error", err)
	}
	logger.Log.Info("watch mode started", "outbox", w.outbox)
	w.wg.Add(2)
	go w.eventLoop()
	go w.errorLoop()
	return nil
}

// Stop retires the watcher. Files still inside their debounce window are not
// sent.
func (w *Watcher) Stop() {
	w.cancel()
	w.fsWatcher.Close()
	w.wg.Wait()
	w.debounceMu.Lock()
	for _, timer := range w.debounceMap {
		timer.Stop()
	}
	w.debounceMap = nil
	w.debounceMu.Unlock()
	logger.Log.Info("watch mode stopped")
}

// Wait blocks until the watcher's context is cancelled.
func (w *Watcher) Wait() {
	<-w.ctx.Done()
}

func (w *Watcher) eventLoop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		}
	}
}

func (w *Watcher) errorLoop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.ctx.Done():
			return
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			logger.Log.Error("watch error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
		return
	}
	if isDir(event.Name) {
		if event.Op&fsnotify.Create == fsnotify.Create {
			if err := w.fsWatcher.Add(event.Name); err != nil {
				logger.Log.Warn("failed to watch new subdirectory", "path", event.Name, "error", err)
			}
		}
		return
	}
	w.scheduleSend(event.Name)
}

// scheduleSend arms or re-arms the debounce timer for path. The send fires
// only after the path has been quiet for the full debounce window.
func (w *Watcher) scheduleSend(path string) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()
	if w.debounceMap == nil {
		return
	}
	if timer, exists := w.debounceMap[path]; exists {
		timer.Stop()
	}
	w.debounceMap[path] = time.AfterFunc(w.debounceDelay, func() {
		w.debounceMu.Lock()
		delete(w.debounceMap, path)
		w.debounceMu.Unlock()

		select {
		case <-w.ctx.Done():
			return
		default:
		}
		if isDir(path) {
			return
		}
		target, err := w.targetFor(path)
		if err != nil {
			logger.Log.Error("cannot derive target for outbox file", "path", path, "error", err)
			return
		}
		logger.Log.Info("outbox file settled", "path", path, "target", target)
		if err := w.sender.Send(path, target); err != nil {
			logger.Log.Error("auto-send failed", "path", path, "error", err)
		}
	})
}

// targetFor maps an outbox file to its receiver-side target directory: the
// configured base target joined with the file's directory relative to the
// outbox root, so the outbox layout reproduces on the receiver.
func (w *Watcher) targetFor(path string) (string, error) {
	rel, err := filepath.Rel(w.outbox, path)
	if err != nil {
		return "", err
	}
	dir := filepath.Dir(rel)
	if dir == "." {
		dir = ""
	}
	target := filepath.ToSlash(filepath.Join(w.targetDir, dir))
	if target == "." {
		target = ""
	}
	return target, nil
}

func (w *Watcher) addSubdirectories(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() && path != root {
			if err := w.fsWatcher.Add(path); err != nil {
				logger.Log.Warn("failed to watch subdirectory", "path", path, "error", err)
			}
		}
		return nil
	})
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}
