package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"net"
	"testing"
	"time"
)

func TestFileHeaderWireLayout(t *testing.T) {
	h := FileHeader{FileSize: 0x0102030405060708, FilenameLen: 9}
	buf := h.Encode()
	if len(buf) != FileHeaderSize {
		t.Fatalf("encoded length %d, want %d", len(buf), FileHeaderSize)
	}
	want := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	if !bytes.Equal(buf[:8], want) {
		t.Errorf("file_size bytes %x, want %x (big-endian)", buf[:8], want)
	}
	if got := DecodeFileHeader(buf); got != h {
		t.Errorf("decode mismatch: %+v != %+v", got, h)
	}
}

func TestEndMarker(t *testing.T) {
	if !(FileHeader{}).IsEndMarker() {
		t.Error("zero header not recognized as end marker")
	}
	if (FileHeader{FileSize: 1}).IsEndMarker() {
		t.Error("non-zero size mistaken for end marker")
	}
	if (FileHeader{FilenameLen: 1}).IsEndMarker() {
		t.Error("non-zero name length mistaken for end marker")
	}
}

func TestDirHeaderRoundTrip(t *testing.T) {
	h := DirHeader{TotalFiles: 42, TotalSize: 1 << 40, BasePathLen: 7}
	buf := h.Encode()
	if len(buf) != DirHeaderSize {
		t.Fatalf("encoded length %d, want %d", len(buf), DirHeaderSize)
	}
	if got := DecodeDirHeader(buf); got != h {
		t.Errorf("decode mismatch: %+v != %+v", got, h)
	}
}

func TestTargetHeaderSizes(t *testing.T) {
	tf := TargetFileHeader{FileSize: 10, FilenameLen: 4, TargetDirLen: 8}
	if got := len(tf.Encode()); got != TargetFileHeaderSize {
		t.Errorf("target file header length %d, want %d", got, TargetFileHeaderSize)
	}
	if got := DecodeTargetFileHeader(tf.Encode()); got != tf {
		t.Errorf("decode mismatch: %+v != %+v", got, tf)
	}

	td := TargetDirHeader{TotalFiles: 3, TotalSize: 999, BasePathLen: 5, TargetDirLen: 0}
	if got := len(td.Encode()); got != TargetDirHeaderSize {
		t.Errorf("target dir header length %d, want %d", got, TargetDirHeaderSize)
	}
	if got := DecodeTargetDirHeader(td.Encode()); got != td {
		t.Errorf("decode mismatch: %+v != %+v", got, td)
	}
}

func TestMagicDispatch(t *testing.T) {
	cases := []struct {
		magic uint32
		want  TransferType
	}{
		{FileMagic, TransferFile},
		{DirMagic, TransferDir},
		{TargetFileMagic, TransferTargetFile},
		{TargetDirMagic, TransferTargetDir},
	}
	for _, tc := range cases {
		var buf bytes.Buffer
		if err := WriteMagic(&buf, tc.magic); err != nil {
			t.Fatalf("WriteMagic: %v", err)
		}
		got, err := ReadMagic(&buf)
		if err != nil {
			t.Fatalf("ReadMagic(0x%08X): %v", tc.magic, err)
		}
		if got != tc.want {
			t.Errorf("ReadMagic(0x%08X) = %v, want %v", tc.magic, got, tc.want)
		}
	}
}

func TestUnknownMagicReadsNothingFurther(t *testing.T) {
	payload := make([]byte, MagicSize+32)
	binary.BigEndian.PutUint32(payload, 0xDEADBEEF)
	r := bytes.NewReader(payload)

	_, err := ReadMagic(r)
	var magicErr *UnknownMagicError
	if !errors.As(err, &magicErr) {
		t.Fatalf("error %v, want UnknownMagicError", err)
	}
	if magicErr.Magic != 0xDEADBEEF {
		t.Errorf("reported magic 0x%08X, want 0xDEADBEEF", magicErr.Magic)
	}
	if !errors.Is(err, ErrUnknownMagic) {
		t.Errorf("error does not match ErrUnknownMagic sentinel")
	}
	if remaining := r.Len(); remaining != 32 {
		t.Errorf("dispatcher consumed header bytes after bad magic: %d bytes left, want 32", remaining)
	}
}

func TestSendAllRecvAllOverPipe(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	payload := bytes.Repeat([]byte{0xA5}, 3000)
	errCh := make(chan error, 1)
	go func() {
		errCh <- SendAll(client, payload)
	}()

	buf := make([]byte, len(payload))
	if err := RecvAll(server, buf); err != nil {
		t.Fatalf("RecvAll: %v", err)
	}
	if err := <-errCh; err != nil {
		t.Fatalf("SendAll: %v", err)
	}
	if !bytes.Equal(buf, payload) {
		t.Error("payload corrupted in transit")
	}
}

func TestRecvAllPeerClose(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	go func() {
		_ = SendAll(client, []byte{1, 2, 3})
		client.Close()
	}()

	// Expect 10 bytes but the peer only sends 3 then closes.
	buf := make([]byte, 10)
	server.SetReadDeadline(time.Now().Add(2 * time.Second))
	err := RecvAll(server, buf)
	if !errors.Is(err, ErrPeerClosed) {
		t.Errorf("error %v, want ErrPeerClosed", err)
	}
}

func TestRecvAllZeroLength(t *testing.T) {
	if err := RecvAll(bytes.NewReader(nil), nil); err != nil {
		t.Errorf("zero-length receive should be a no-op, got %v", err)
	}
}
