package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// TransferType identifies which wire-format variant follows the magic number.
type TransferType int

const (
	TransferFile TransferType = iota
	TransferDir
	TransferTargetFile
	TransferTargetDir
)

func (t TransferType) String() string {
	switch t {
	case TransferFile:
		return "file"
	case TransferDir:
		return "directory"
	case TransferTargetFile:
		return "file+target"
	case TransferTargetDir:
		return "directory+target"
	default:
		return "unknown"
	}
}

// ErrUnknownMagic matches any UnknownMagicError under errors.Is.
var ErrUnknownMagic = errors.New("unknown transfer magic")

// UnknownMagicError is the protocol fault for an unrecognized leading magic
// number. The connection must be abandoned without reading further bytes.
type UnknownMagicError struct {
	Magic uint32
}

func (e *UnknownMagicError) Error() string {
	return fmt.Sprintf("unknown transfer magic 0x%08X", e.Magic)
}

func (e *UnknownMagicError) Is(target error) bool {
	return target == ErrUnknownMagic
}

// WriteMagic puts the variant tag on the wire as the first bytes of a transfer.
func WriteMagic(w io.Writer, magic uint32) error {
	buf := make([]byte, MagicSize)
	binary.BigEndian.PutUint32(buf, magic)
	return SendAll(w, buf)
}

// ReadMagic reads the 4-byte tag and maps it to a transfer type. This is the
// sole dispatch point at the start of every accepted connection; there is no
// negotiation or versioning beyond it.
func ReadMagic(r io.Reader) (TransferType, error) {
	buf := make([]byte, MagicSize)
	if err := RecvAll(r, buf); err != nil {
		return 0, err
	}
	switch magic := binary.BigEndian.Uint32(buf); magic {
	case FileMagic:
		return TransferFile, nil
	case DirMagic:
		return TransferDir, nil
	case TargetFileMagic:
		return TransferTargetFile, nil
	case TargetDirMagic:
		return TransferTargetDir, nil
	default:
		return 0, &UnknownMagicError{Magic: magic}
	}
}
