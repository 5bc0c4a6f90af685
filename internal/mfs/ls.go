package mfs

// listFiles implements §4.5. It assembles the concatenation of every
// registered name followed by a zero byte, either in one shot via the data
// buffer (fast path) or streamed directly to the transport when the total
// doesn't fit (streaming path). Either path silently drops the client on a
// short write, since that breaks wire synchronisation. It returns the
// number of bytes sent (header included) for diagnostics reporting.
func (s *Server) listFiles(client ClientID) int {
	names := s.registry.names()

	total := 0
	for _, n := range names {
		total += len(n) + 1
	}

	if total <= len(s.dataBuf) {
		off := 0
		for _, n := range names {
			off += copy(s.dataBuf[off:], n)
			s.dataBuf[off] = 0
			off++
		}
		s.sendMessage(Message{
			DSize: uint32(total),
			Op:    ResponseOf(OpLS),
			Data:  s.dataBuf[:total],
		}, client)
		return HeaderSize + total
	}

	var hdrBuf [HeaderSize]byte
	EncodeHeader(hdrBuf[:], Header{DSize: uint32(total), Op: ResponseOf(OpLS)})
	if n, _ := s.transport.Write(client, hdrBuf[:]); n != HeaderSize {
		s.dropClient(client)
		return HeaderSize
	}

	terminator := [1]byte{0}
	for _, name := range names {
		if n, _ := s.transport.Write(client, name); n != int64(len(name)) {
			s.dropClient(client)
			return HeaderSize
		}
		if n, _ := s.transport.Write(client, terminator[:]); n != 1 {
			s.dropClient(client)
			return HeaderSize
		}
	}
	return HeaderSize + total
}
