// Package transfer implements the NETTF transfer engines: single files and
// directory trees, each in a plain and a target-directory variant. Engines
// speak the wire format from internal/protocol, size every read/write cycle
// through internal/adaptive and poll an internal/shutdown token once per
// chunk. They return errors instead of terminating; only the CLI layer exits
// the process.
package transfer

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/nettf/nettf/internal/adaptive"
	"github.com/nettf/nettf/internal/protocol"
	"github.com/nettf/nettf/internal/shutdown"
	"github.com/nettf/nettf/pkg/logger"
	"github.com/nettf/nettf/pkg/progress"
)

// ErrAborted is returned when the operator forces shutdown mid-transfer. A
// partially written file is left behind; that is an accepted outcome.
var ErrAborted = errors.New("transfer aborted by operator")

// Options carries the cross-cutting collaborators of a transfer. The zero
// value is valid: no progress reporting, no shutdown wiring.
type Options struct {
	Progress progress.Func
	Token    *shutdown.Token
}

func (o *Options) progressFunc() progress.Func {
	if o == nil {
		return nil
	}
	return o.Progress
}

func (o *Options) shutdownToken() *shutdown.Token {
	if o == nil {
		return nil
	}
	return o.Token
}

// pollShutdown is called once per chunk. The first interrupt is surfaced to
// the operator and acknowledged; the second aborts the transfer.
func pollShutdown(tok *shutdown.Token) error {
	if tok == nil {
		return nil
	}
	switch tok.State() {
	case shutdown.PromptOnce:
		logger.Log.Warn("Shutdown requested; press Ctrl+C again to force exit")
		tok.Acknowledge()
	case shutdown.ForceExit:
		return ErrAborted
	}
	return nil
}

// reporter throttles progress events to roughly one per second per file.
type reporter struct {
	fn    progress.Func
	name  string
	total uint64
	state *adaptive.State
	start time.Time
	last  time.Time
}

func newReporter(fn progress.Func, name string, total uint64, state *adaptive.State) *reporter {
	now := time.Now()
	return &reporter{fn: fn, name: name, total: total, state: state, start: now, last: now}
}

func (r *reporter) emit(done bool) {
	if r.fn == nil {
		return
	}
	now := time.Now()
	if !done && now.Sub(r.last) < time.Second {
		return
	}
	r.last = now
	r.fn(progress.Event{
		File:        r.name,
		Transferred: r.state.Transferred(),
		Total:       r.total,
		Speed:       r.state.Speed(),
		ChunkSize:   r.state.ChunkSize(),
		Elapsed:     now.Sub(r.start),
		Done:        done,
	})
}

// sendContent streams one file's bytes in controller-sized chunks. Each cycle
// reads up to ChunkSize bytes, puts them on the wire, feeds the measured
// cycle time back into the controller and polls for shutdown.
func sendContent(conn io.Writer, f *os.File, name string, total uint64, state *adaptive.State, opts *Options) error {
	buf := make([]byte, adaptive.MaxChunkSize)
	rep := newReporter(opts.progressFunc(), name, total, state)
	tok := opts.shutdownToken()

	for {
		cycleStart := time.Now()
		n, err := f.Read(buf[:state.ChunkSize()])
		if n > 0 {
			if werr := protocol.SendAll(conn, buf[:n]); werr != nil {
				return fmt.Errorf("send %s: %w", name, werr)
			}
			state.Update(n, time.Since(cycleStart).Seconds())
			if serr := pollShutdown(tok); serr != nil {
				return serr
			}
			rep.emit(false)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", name, err)
		}
	}
	rep.emit(true)
	return nil
}

// recvContent pulls exactly fileSize bytes off the wire in controller-sized
// chunks, writing each chunk to disk before requesting the next. A short disk
// write is fatal.
func recvContent(conn io.Reader, f *os.File, name string, fileSize uint64, state *adaptive.State, opts *Options) error {
	buf := make([]byte, adaptive.MaxChunkSize)
	rep := newReporter(opts.progressFunc(), name, fileSize, state)
	tok := opts.shutdownToken()

	var received uint64
	for received < fileSize {
		chunk := uint64(state.ChunkSize())
		if remaining := fileSize - received; remaining < chunk {
			chunk = remaining
		}

		cycleStart := time.Now()
		if err := protocol.RecvAll(conn, buf[:chunk]); err != nil {
			return fmt.Errorf("recv %s: %w", name, err)
		}
		if _, err := f.Write(buf[:chunk]); err != nil {
			return fmt.Errorf("write %s: %w", name, err)
		}
		state.Update(int(chunk), time.Since(cycleStart).Seconds())
		received += chunk

		if err := pollShutdown(tok); err != nil {
			return err
		}
		rep.emit(false)
	}
	rep.emit(true)
	return nil
}

// recvString reads a length-declared variable field (filename, base name,
// target dir) as a raw byte blob. The length is taken as declared; the peer
// is assumed non-adversarial beyond path containment checks.
func recvString(conn io.Reader, length uint64) (string, error) {
	if length == 0 {
		return "", nil
	}
	buf := make([]byte, length)
	if err := protocol.RecvAll(conn, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
