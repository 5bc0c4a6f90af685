package mfs

// emptyErrorMessage is the sentinel readMessage returns when it could not
// produce a well-formed request: all numeric fields zero, op set to the
// response-of-ERROR opcode, no buffers bound.
func emptyErrorMessage() Message {
	return Message{Op: ResponseOf(OpERROR)}
}

func isEmptyErrorMessage(m Message) bool {
	return m.PSize == 0 && m.DSize == 0 && m.Path == nil && m.Data == nil
}

// readMessage implements §4.2 of the MFS core. On success it returns a
// Message whose Path/Data point into the server's shared scratch buffers.
// On any recoverable failure it has already notified the client where the
// protocol allows it, and returns the empty-error sentinel. Unlike a short
// read or a hard-limit violation, an oversize-but-legal request keeps the
// client after draining and erroring — readMessage itself decides whether
// to drop, so the caller only needs to check the sentinel to know whether
// there's a message to dispatch, not whether the client survived.
func (s *Server) readMessage(client ClientID) Message {
	var hdrBuf [HeaderSize]byte
	if n, _ := s.transport.Read(client, hdrBuf[:]); n != HeaderSize {
		s.sendError(emptyErrorMessage(), client, ErrHeaderReadFailed)
		s.dropClient(client)
		return emptyErrorMessage()
	}
	hdr := DecodeHeader(hdrBuf[:])

	if hdr.PSize > s.hardLimit || hdr.DSize > s.hardLimit {
		s.dropClient(client)
		return emptyErrorMessage()
	}

	if hdr.PSize > uint32(len(s.pathBuf)) || hdr.DSize > uint32(len(s.dataBuf)) {
		if !s.drain(client, hdr.PSize, s.pathBuf) {
			return emptyErrorMessage()
		}
		if !s.drain(client, hdr.DSize, s.dataBuf) {
			return emptyErrorMessage()
		}
		s.sendError(emptyErrorMessage(), client, ErrTooLargeForBuffers)
		return emptyErrorMessage() // client retained, per §4.2 step 4
	}

	path := s.pathBuf[:hdr.PSize]
	if n, _ := s.transport.Read(client, path); n != int64(hdr.PSize) {
		s.sendError(emptyErrorMessage(), client, ErrTooLargeForBuffers)
		s.dropClient(client)
		return emptyErrorMessage()
	}
	data := s.dataBuf[:hdr.DSize]
	if n, _ := s.transport.Read(client, data); n != int64(hdr.DSize) {
		s.sendError(emptyErrorMessage(), client, ErrTooLargeForBuffers)
		s.dropClient(client)
		return emptyErrorMessage()
	}

	return Message{PSize: hdr.PSize, DSize: hdr.DSize, Op: hdr.Op, Path: path, Data: data}
}

// drain reads and discards exactly total bytes from client in chunks no
// larger than len(scratch), fully draining both oversized payloads (the
// original's path-drain loop stopped after a single chunk; that defect is
// not reproduced here — see SPEC_FULL.md §9). Returns false and drops the
// client on any short read.
func (s *Server) drain(client ClientID, total uint32, scratch []byte) bool {
	chunk := uint32(len(scratch))
	for processed := uint32(0); processed < total; {
		n := chunk
		if total-processed < n {
			n = total - processed
		}
		if got, _ := s.transport.Read(client, scratch[:n]); got != int64(n) {
			s.dropClient(client)
			return false
		}
		processed += n
	}
	return true
}

// sendMessage implements §4.3: header, then path, then data, in that order.
// Any short write drops the client.
func (s *Server) sendMessage(msg Message, client ClientID) error {
	var hdrBuf [HeaderSize]byte
	EncodeHeader(hdrBuf[:], Header{PSize: msg.PSize, DSize: msg.DSize, Op: msg.Op})

	if n, _ := s.transport.Write(client, hdrBuf[:]); n != HeaderSize {
		s.dropClient(client)
		return errShortWrite
	}
	if msg.PSize > 0 {
		if n, _ := s.transport.Write(client, msg.Path[:msg.PSize]); n != int64(msg.PSize) {
			s.dropClient(client)
			return errShortWrite
		}
	}
	if msg.DSize > 0 {
		if n, _ := s.transport.Write(client, msg.Data[:msg.DSize]); n != int64(msg.DSize) {
			s.dropClient(client)
			return errShortWrite
		}
	}
	return nil
}

// sendError mutates a local copy of msg into an ERROR response (path
// echoed, data = 2-byte little-endian code) and sends it.
func (s *Server) sendError(msg Message, client ClientID, code uint16) error {
	msg.Op = ResponseOf(OpERROR)
	msg.DSize = 2
	s.errBuf[0] = byte(code)
	s.errBuf[1] = byte(code >> 8)
	msg.Data = s.errBuf[:]
	return s.sendMessage(msg, client)
}
