package mfs

// fakeTransport is an in-memory mfs.Transport for unit tests. Each client
// has an inbound queue the test writes to and an outbound buffer the test
// reads back, so a test can script exactly what bytes a client "sends"
// without a real socket.
type fakeTransport struct {
	nextClient ClientID
	acceptID   ClientID // set by the test to simulate Accept(); consumed once

	inbound  map[ClientID][]byte
	outbound map[ClientID][]byte
	closed   map[ClientID]bool

	now uint64
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		inbound:  make(map[ClientID][]byte),
		outbound: make(map[ClientID][]byte),
		closed:   make(map[ClientID]bool),
	}
}

func (f *fakeTransport) Accept() ClientID {
	id := f.acceptID
	f.acceptID = 0
	return id
}

func (f *fakeTransport) Available(client ClientID) uint64 {
	return uint64(len(f.inbound[client]))
}

func (f *fakeTransport) Read(client ClientID, buf []byte) (int64, error) {
	data := f.inbound[client]
	n := copy(buf, data)
	f.inbound[client] = data[n:]
	return int64(n), nil
}

func (f *fakeTransport) Write(client ClientID, buf []byte) (int64, error) {
	f.outbound[client] = append(f.outbound[client], buf...)
	return int64(len(buf)), nil
}

func (f *fakeTransport) Close(client ClientID) {
	f.closed[client] = true
}

func (f *fakeTransport) NowMillis() uint64 {
	return f.now
}

// queue appends bytes to client's inbound queue, as if the client had sent
// them over the wire.
func (f *fakeTransport) queue(client ClientID, b []byte) {
	f.inbound[client] = append(f.inbound[client], b...)
}

func request(op byte, path, data []byte) []byte {
	var hdr [HeaderSize]byte
	EncodeHeader(hdr[:], Header{PSize: uint32(len(path)), DSize: uint32(len(data)), Op: op})
	out := append([]byte{}, hdr[:]...)
	out = append(out, path...)
	out = append(out, data...)
	return out
}
