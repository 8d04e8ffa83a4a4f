// Package protocol defines the NETTF wire format: a 4-byte magic number
// selecting one of four transfer variants, followed by a fixed-layout header,
// variable-length name fields and raw file content. All integers are 64-bit
// and big-endian regardless of host byte order.
package protocol

import "encoding/binary"

// Magic numbers, first four bytes of every transfer. ASCII-derived so a hex
// dump of the stream is self-describing.
const (
	FileMagic       uint32 = 0x46494C45 // "FILE"
	DirMagic        uint32 = 0x44495220 // "DIR "
	TargetFileMagic uint32 = 0x54415247 // "TARG"
	TargetDirMagic  uint32 = 0x54444952 // "TDIR"
)

// Exact on-the-wire sizes. The structs below have no padding on the wire;
// these constants are the contract, not unsafe.Sizeof.
const (
	MagicSize            = 4
	FileHeaderSize       = 16
	DirHeaderSize        = 24
	TargetFileHeaderSize = 24
	TargetDirHeaderSize  = 32
)

// FileHeader precedes a plain file transfer and every file entry inside a
// directory transfer. A header with both fields zero is the end-of-stream
// marker for a plain directory transfer, never a real file.
type FileHeader struct {
	FileSize    uint64
	FilenameLen uint64
}

// IsEndMarker reports whether this header is the directory end-of-stream marker.
func (h FileHeader) IsEndMarker() bool {
	return h.FileSize == 0 && h.FilenameLen == 0
}

func (h FileHeader) Encode() []byte {
	buf := make([]byte, FileHeaderSize)
	binary.BigEndian.PutUint64(buf[0:8], h.FileSize)
	binary.BigEndian.PutUint64(buf[8:16], h.FilenameLen)
	return buf
}

func DecodeFileHeader(buf []byte) FileHeader {
	return FileHeader{
		FileSize:    binary.BigEndian.Uint64(buf[0:8]),
		FilenameLen: binary.BigEndian.Uint64(buf[8:16]),
	}
}

// DirHeader precedes a plain directory transfer.
type DirHeader struct {
	TotalFiles  uint64
	TotalSize   uint64
	BasePathLen uint64
}

func (h DirHeader) Encode() []byte {
	buf := make([]byte, DirHeaderSize)
	binary.BigEndian.PutUint64(buf[0:8], h.TotalFiles)
	binary.BigEndian.PutUint64(buf[8:16], h.TotalSize)
	binary.BigEndian.PutUint64(buf[16:24], h.BasePathLen)
	return buf
}

func DecodeDirHeader(buf []byte) DirHeader {
	return DirHeader{
		TotalFiles:  binary.BigEndian.Uint64(buf[0:8]),
		TotalSize:   binary.BigEndian.Uint64(buf[8:16]),
		BasePathLen: binary.BigEndian.Uint64(buf[16:24]),
	}
}

// TargetFileHeader is the FileHeader variant carrying an optional server-side
// target subdirectory.
type TargetFileHeader struct {
	FileSize     uint64
	FilenameLen  uint64
	TargetDirLen uint64
}

func (h TargetFileHeader) Encode() []byte {
	buf := make([]byte, TargetFileHeaderSize)
	binary.BigEndian.PutUint64(buf[0:8], h.FileSize)
	binary.BigEndian.PutUint64(buf[8:16], h.FilenameLen)
	binary.BigEndian.PutUint64(buf[16:24], h.TargetDirLen)
	return buf
}

func DecodeTargetFileHeader(buf []byte) TargetFileHeader {
	return TargetFileHeader{
		FileSize:     binary.BigEndian.Uint64(buf[0:8]),
		FilenameLen:  binary.BigEndian.Uint64(buf[8:16]),
		TargetDirLen: binary.BigEndian.Uint64(buf[16:24]),
	}
}

// TargetDirHeader is the DirHeader variant carrying an optional server-side
// target subdirectory.
type TargetDirHeader struct {
	TotalFiles   uint64
	TotalSize    uint64
	BasePathLen  uint64
	TargetDirLen uint64
}

func (h TargetDirHeader) Encode() []byte {
	buf := make([]byte, TargetDirHeaderSize)
	binary.BigEndian.PutUint64(buf[0:8], h.TotalFiles)
	binary.BigEndian.PutUint64(buf[8:16], h.TotalSize)
	binary.BigEndian.PutUint64(buf[16:24], h.BasePathLen)
	binary.BigEndian.PutUint64(buf[24:32], h.TargetDirLen)
	return buf
}

func DecodeTargetDirHeader(buf []byte) TargetDirHeader {
	return TargetDirHeader{
		TotalFiles:   binary.BigEndian.Uint64(buf[0:8]),
		TotalSize:    binary.BigEndian.Uint64(buf[8:16]),
		BasePathLen:  binary.BigEndian.Uint64(buf[16:24]),
		TargetDirLen: binary.BigEndian.Uint64(buf[24:32]),
	}
}
