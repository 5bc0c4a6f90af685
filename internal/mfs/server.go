package mfs

const (
	// DefaultHardLimit is the default upper bound on advertised psize/dsize
	// beyond which a client is dropped without any attempt to drain.
	DefaultHardLimit = 10000
	// DefaultTimerMs is the default client idle timeout in milliseconds.
	DefaultTimerMs = 20000
)

// Event is a single dispatched request/response exchange, reported to an
// optional Observer after the response has been sent. It carries no
// pointers into the server's shared buffers.
type Event struct {
	NowMs      uint64
	Client     ClientID
	Op         byte
	ErrorCode  uint16 // 0 when the response was not an error
	ReqBytes   int
	RespBytes  int
	DurationMs uint64
}

// Observer receives a best-effort stream of Events for diagnostics. It must
// not block or retain references into the server; it is called from within
// the single-threaded serve loop.
type Observer interface {
	Observe(Event)
}

// Config are the construction parameters for a Server, mirroring §6 of
// SPEC_FULL.md.
type Config struct {
	Transport Transport

	// PathBuf and DataBuf are the shared scratch buffers. Their lengths
	// are the largest path/data payload the server will accept from a
	// client without draining and erroring.
	PathBuf []byte
	DataBuf []byte

	// MaxClients and MaxFiles size the fixed client and file tables.
	MaxClients int
	MaxFiles   int

	// HardLimit and TimerMs default to DefaultHardLimit/DefaultTimerMs
	// when zero.
	HardLimit uint32
	TimerMs   uint64

	// Observer, if non-nil, is notified of every dispatched request.
	Observer Observer
}

// Server is the MFS core: protocol codec, client table, file registry, and
// dispatch loop. Outside of file registration (see registry.go), it makes
// no concurrent calls and holds no lock — Accept and Serve must be driven
// from a single goroutine, alternating, per SPEC_FULL.md §5.
type Server struct {
	transport Transport

	pathBuf []byte
	dataBuf []byte
	errBuf  [2]byte

	clients   []clientSlot
	registry  *registry
	hardLimit uint32
	timerMs   uint64

	observer Observer
}

// New builds a Server from cfg. The client and file tables, and the scratch
// buffers, are all fixed for the life of the Server. Allocation does not
// stop here: registering a file copies its name, and every LS request
// copies the registered names before sending them.
func New(cfg Config) *Server {
	hardLimit := cfg.HardLimit
	if hardLimit == 0 {
		hardLimit = DefaultHardLimit
	}
	timerMs := cfg.TimerMs
	if timerMs == 0 {
		timerMs = DefaultTimerMs
	}
	return &Server{
		transport: cfg.Transport,
		pathBuf:   cfg.PathBuf,
		dataBuf:   cfg.DataBuf,
		clients:   make([]clientSlot, cfg.MaxClients),
		registry:  newRegistry(cfg.MaxFiles, len(cfg.PathBuf)),
		hardLimit: hardLimit,
		timerMs:   timerMs,
		observer:  cfg.Observer,
	}
}

// RegisterFile adds a file with the given name and read/write handlers.
// Either handler may be nil if that operation is unsupported; dispatch then
// panics only if the client actually issues it, matching the original's
// trust that a registered slot always has both callbacks — callers should
// supply both in production use.
func (s *Server) RegisterFile(name string, reader, writer Handler) error {
	return s.registry.registerFile([]byte(name), reader, writer)
}

// Files returns the currently registered file names.
func (s *Server) Files() [][]byte {
	return s.registry.names()
}

// UnregisterFile removes the file with the given name, if registered.
func (s *Server) UnregisterFile(name string) error {
	return s.registry.unregisterFile([]byte(name))
}

// dropClient closes the transport connection and frees the client's slot.
// A no-op for ClientID 0 or an id not present in the table.
func (s *Server) dropClient(client ClientID) {
	if client == 0 {
		return
	}
	for i := range s.clients {
		if s.clients[i].occupied && s.clients[i].id == client {
			s.transport.Close(client)
			s.clients[i].clear()
			return
		}
	}
}

// AcceptClients fills empty client slots by polling the transport's accept
// callback once per slot. Call once per server tick, before ServeClients.
func (s *Server) AcceptClients() {
	for i := range s.clients {
		if s.clients[i].occupied {
			continue
		}
		id := s.transport.Accept()
		if id == 0 {
			continue
		}
		s.clients[i] = clientSlot{
			occupied:   true,
			id:         id,
			deadlineMs: s.transport.NowMillis() + s.timerMs,
		}
	}
}

// ServeClients walks the client table once: it times out expired clients,
// and for any client with at least a header's worth of bytes available,
// reads one request, dispatches it, and sends exactly one response. Call
// once per server tick, after AcceptClients.
func (s *Server) ServeClients() {
	now := s.transport.NowMillis()
	for i := range s.clients {
		slot := s.clients[i]
		if !slot.occupied {
			continue
		}

		if slot.deadlineMs <= now {
			s.sendError(noopResponse(), slot.id, ErrClientTimedOut)
			s.dropClient(slot.id)
			s.report(Event{NowMs: now, Client: slot.id, Op: OpNOOP, ErrorCode: ErrClientTimedOut})
			continue
		}

		if s.transport.Available(slot.id) < HeaderSize {
			continue
		}

		req := s.readMessage(slot.id)
		if isEmptyErrorMessage(req) {
			// readMessage has already decided, and acted on, whether the
			// client survives: dropped for a short read or a hard-limit
			// violation, retained after an oversize-but-legal drain.
			continue
		}

		s.clients[i].deadlineMs = now + s.timerMs
		respBytes, errorCode := s.dispatch(req, slot.id)
		after := s.transport.NowMillis()
		s.report(Event{
			NowMs:      now,
			Client:     slot.id,
			Op:         req.Op,
			ErrorCode:  errorCode,
			ReqBytes:   int(HeaderSize + req.PSize + req.DSize),
			RespBytes:  respBytes,
			DurationMs: after - now,
		})
	}
}

func (s *Server) report(ev Event) {
	if s.observer != nil {
		s.observer.Observe(ev)
	}
}
