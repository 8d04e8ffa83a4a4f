// Package server runs the receive side: a TCP listener that accepts one
// connection at a time and hands each stream to the transfer dispatcher.
// Sequential handling is intentional; a receiver saturating one link gains
// nothing from concurrent transfers fighting for the same disk and NIC.
package server

import (
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/nettf/nettf/internal/shutdown"
	"github.com/nettf/nettf/internal/transfer"
	"github.com/nettf/nettf/pkg/logger"
)

// Server owns the listening socket and the destination root for everything
// received on it.
type Server struct {
	port    int
	destDir string
	opts    *transfer.Options

	mu sync.Mutex
	ln net.Listener
}

func New(port int, destDir string, opts *transfer.Options) *Server {
	return &Server{port: port, destDir: destDir, opts: opts}
}

// Addr reports the bound listen address, empty until ListenAndServe has
// bound the socket. Mainly useful when the configured port is 0.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return ""
	}
	return s.ln.Addr().String()
}

// Close unblocks the accept loop. An in-flight transfer finishes before the
// loop observes the closed listener and returns.
func (s *Server) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln != nil {
		s.ln.Close()
	}
}

// ListenAndServe binds the port and serves until the shutdown token reaches
// force-exit. Per-connection failures are logged and the loop continues; a
// bad peer must not take the receiver down.
func (s *Server) ListenAndServe() error {
	if err := os.MkdirAll(s.destDir, 0o755); err != nil {
		return fmt.Errorf("create receive dir %s: %w", s.destDir, err)
	}

	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("listen on port %d: %w", s.port, err)
	}
	s.mu.Lock()
	s.ln = ln
	s.mu.Unlock()
	defer ln.Close()

	logger.Log.Info("receiver listening", "port", s.port, "dest", s.destDir)

	stop := s.watchShutdown(ln)
	defer close(stop)

	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.forced() {
				logger.Log.Info("receiver stopping")
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return nil
			}
			logger.Log.Error("accept failed", "error", err)
			continue
		}
		s.handle(conn)
		if s.forced() {
			logger.Log.Info("receiver stopping")
			return nil
		}
	}
}

func (s *Server) handle(conn net.Conn) {
	defer conn.Close()
	peer := conn.RemoteAddr().String()
	logger.Log.Info("connection accepted", "peer", peer)

	start := time.Now()
	if err := transfer.DispatchAndReceive(conn, s.destDir, s.opts); err != nil {
		logger.Log.Error("transfer failed", "peer", peer, "error", err)
		return
	}
	logger.Log.Info("transfer complete", "peer", peer, "elapsed", time.Since(start).String())
}

// watchShutdown unblocks Accept when the operator forces exit by closing the
// listener. Returns a channel the caller closes to retire the watcher.
func (s *Server) watchShutdown(ln net.Listener) chan struct{} {
	stop := make(chan struct{})
	if s.opts == nil || s.opts.Token == nil {
		return stop
	}
	tok := s.opts.Token
	go func() {
		ticker := time.NewTicker(200 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				switch tok.State() {
				case shutdown.PromptOnce:
					logger.Log.Warn("Shutdown requested; press Ctrl+C again to force exit")
					tok.Acknowledge()
				case shutdown.ForceExit:
					ln.Close()
					return
				}
			}
		}
	}()
	return stop
}

func (s *Server) forced() bool {
	if s.opts == nil || s.opts.Token == nil {
		return false
	}
	return s.opts.Token.State() == shutdown.ForceExit
}
