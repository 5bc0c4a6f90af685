package mfs

// noopResponse is the header-only reply template for NOOP and for opcodes
// the dispatcher silently treats as NOOP.
func noopResponse() Message {
	return Message{Op: ResponseOf(OpNOOP)}
}

// dispatch implements §4.6: resolve the file, then switch on opcode. It is
// called once per client per tick, after readMessage has already produced a
// well-formed request. It returns the response byte count and, for an
// ERROR response, the error code — both purely for diagnostics reporting.
// An unresolved path is answered with ErrFileNotFound only for the defined
// opcodes other than LS and NOOP; undefined opcodes go straight to the
// reserved-range/illegal handling in the default case.
func (s *Server) dispatch(req Message, client ClientID) (respBytes int, errorCode uint16) {
	reader, writer, found := s.registry.resolve(req.Path)
	isLSOrNoop := req.Op == OpLS || req.Op == OpNOOP
	isUndefined := req.Op > OpERROR
	if !found && !isLSOrNoop && !isUndefined {
		s.sendError(req, client, ErrFileNotFound)
		return HeaderSize + 2, ErrFileNotFound
	}

	switch req.Op {
	case OpERROR:
		// Clients should not send this; treat as a protocol no-op.
		s.sendMessage(noopResponse(), client)
		return HeaderSize, 0

	case OpLS:
		return s.listFiles(client), 0

	case OpNOOP:
		s.sendMessage(noopResponse(), client)
		return HeaderSize, 0

	case OpREAD:
		resp := reader(req)
		s.sendMessage(resp, client)
		return HeaderSize + int(resp.PSize+resp.DSize), 0

	case OpWRITE:
		resp := writer(req)
		s.sendMessage(resp, client)
		return HeaderSize + int(resp.PSize+resp.DSize), 0

	default:
		if req.Op < ReservedOpRange {
			s.sendMessage(noopResponse(), client)
			return HeaderSize, 0
		}
		s.sendError(req, client, ErrIllegalOpcode)
		return HeaderSize + 2, ErrIllegalOpcode
	}
}
