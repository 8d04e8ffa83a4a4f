package protocol

import (
	"errors"
	"fmt"
	"io"
)

// ErrPeerClosed is returned when the remote side closes the connection while
// more bytes were expected. Mid-transfer this is always fatal; there is no
// resynchronization point in the stream.
var ErrPeerClosed = errors.New("connection closed by peer")

// SendAll writes the whole buffer, looping over partial writes. Every caller
// may assume that on nil return the buffer is fully on the wire.
func SendAll(w io.Writer, data []byte) error {
	for len(data) > 0 {
		n, err := w.Write(data)
		if err != nil {
			return fmt.Errorf("send: %w", err)
		}
		if n == 0 {
			return fmt.Errorf("send: %w", ErrPeerClosed)
		}
		data = data[n:]
	}
	return nil
}

// RecvAll fills the whole buffer, looping over partial reads. A clean or
// mid-stream EOF both mean the peer went away before the protocol allowed it.
func RecvAll(r io.Reader, buf []byte) error {
	_, err := io.ReadFull(r, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return ErrPeerClosed
	}
	if err != nil {
		return fmt.Errorf("recv: %w", err)
	}
	return nil
}
