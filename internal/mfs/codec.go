package mfs

import "encoding/binary"

// HeaderSize is the fixed size, in bytes, of an MFS request or response
// header: psize (u32 LE), dsize (u32 LE), op (u8).
const HeaderSize = 9

// Header is the decoded form of the 9-byte MFS header.
type Header struct {
	PSize uint32
	DSize uint32
	Op    byte
}

// EncodeHeader writes h into buf, which must be at least HeaderSize bytes.
// It is pure and total: every Header encodes to exactly 9 bytes.
func EncodeHeader(buf []byte, h Header) {
	binary.LittleEndian.PutUint32(buf[0:4], h.PSize)
	binary.LittleEndian.PutUint32(buf[4:8], h.DSize)
	buf[8] = h.Op
}

// DecodeHeader reads a Header from buf, which must be at least HeaderSize
// bytes. It is pure and total: every 9-byte buffer decodes to some Header.
func DecodeHeader(buf []byte) Header {
	return Header{
		PSize: binary.LittleEndian.Uint32(buf[0:4]),
		DSize: binary.LittleEndian.Uint32(buf[4:8]),
		Op:    buf[8],
	}
}
