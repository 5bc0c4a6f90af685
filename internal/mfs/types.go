package mfs

// ClientID is an opaque client identifier assigned by the transport. The
// value 0 is reserved to mean "no client" / "empty slot".
type ClientID uint64

// Message is one decoded MFS request or response. Path and Data, when
// present, point into the server's shared scratch buffers and are only
// valid until the next call into the server — a handler must not retain
// either slice past its own return.
type Message struct {
	PSize uint32
	DSize uint32
	Op    byte
	Path  []byte
	Data  []byte
}

// Transport is the capability bundle the MFS core calls into. All methods
// are expected to block until their byte-count contract is met, except
// Accept and Available which must return immediately. Implementations
// should impose their own timeout so a stalled client cannot wedge the
// single-threaded serve loop forever.
type Transport interface {
	// Accept returns a newly connected client id, or 0 if none is waiting.
	Accept() ClientID
	// Available reports how many bytes can be read from client without
	// blocking. Must return 0 for ClientID 0.
	Available(client ClientID) uint64
	// Read blocks until exactly len(buf) bytes have been read from client,
	// or returns a negative count (and error) on failure.
	Read(client ClientID, buf []byte) (int64, error)
	// Write blocks until exactly len(buf) bytes have been written to
	// client, or returns a negative count (and error) on failure.
	Write(client ClientID, buf []byte) (int64, error)
	// Close tears down the client's connection.
	Close(client ClientID)
	// NowMillis returns a monotonic millisecond clock. Must not wrap
	// during the lifetime of any single client session.
	NowMillis() uint64
}

// Handler produces the response message for a READ or WRITE request
// against the file it is registered for. The returned Message is sent to
// the client verbatim; if it reuses the server's data buffer it must
// finish writing to that buffer before returning.
type Handler func(req Message) Message
