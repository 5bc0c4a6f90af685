package mfs

import (
	"bytes"
	"errors"
	"sync"
)

// fileSlot is one entry in the file registry. A slot is empty when name is
// nil; this is the single predicate used everywhere empty-slot detection is
// needed (see fileSlotEmpty).
type fileSlot struct {
	name   []byte
	reader Handler
	writer Handler
}

func fileSlotEmpty(s fileSlot) bool {
	return s.name == nil
}

// ErrNameTaken is returned by RegisterFile when a file of the same name is
// already registered.
var ErrNameTaken = errors.New("mfs: file name already registered")

// ErrNoFreeSlot is returned by RegisterFile when the file table is full.
var ErrNoFreeSlot = errors.New("mfs: no free file slot")

// ErrNotFound is returned by UnregisterFile when no file of the given name
// is registered.
var ErrNotFound = errors.New("mfs: file not registered")

// registry is the fixed-size file table. Unlike the rest of the MFS core it
// is guarded by a mutex: RegisterFile/UnregisterFile are a public API meant
// to be callable from outside the single-threaded serve loop (e.g. at
// startup, or from a directory watcher), while resolve is called once per
// dispatched request. See SPEC_FULL.md §5 for why this is the one
// deliberate exception to the core's lock-free design.
type registry struct {
	mu         sync.Mutex
	slots      []fileSlot
	maxNameLen int
}

func newRegistry(size, maxNameLen int) *registry {
	return &registry{slots: make([]fileSlot, size), maxNameLen: maxNameLen}
}

// hasNUL mirrors the original get_file_index contract: a path containing an
// embedded NUL byte within its declared length can never match a registered
// name and is treated as "not found".
func hasNUL(path []byte) bool {
	return bytes.IndexByte(path, 0) >= 0
}

func (r *registry) indexLocked(path []byte) int {
	for i, s := range r.slots {
		if fileSlotEmpty(s) {
			continue
		}
		if bytes.Equal(s.name, path) {
			return i
		}
	}
	return -1
}

// resolve looks up path and returns its reader/writer pair atomically with
// respect to concurrent RegisterFile/UnregisterFile calls, so a file that
// is unregistered between dispatch's lookup and its handler invocation
// cannot hand back a stale or nil handler pair.
func (r *registry) resolve(path []byte) (reader, writer Handler, ok bool) {
	if hasNUL(path) {
		return nil, nil, false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexLocked(path)
	if i < 0 {
		return nil, nil, false
	}
	s := r.slots[i]
	return s.reader, s.writer, true
}

// names returns the registered file names, skipping empty slots, in slot
// order. The returned slices are copies; callers may keep them.
func (r *registry) names() [][]byte {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([][]byte, 0, len(r.slots))
	for _, s := range r.slots {
		if fileSlotEmpty(s) {
			continue
		}
		out = append(out, append([]byte(nil), s.name...))
	}
	return out
}

// registerFile adds a new file with the given name and handlers. The name
// is copied; the caller's buffer is not retained (this is the copy
// resolution of the original's open question about path-pointer lifetime,
// see SPEC_FULL.md §9). name is validated with ValidName first: an empty,
// over-length, or NUL-bearing name is rejected outright rather than being
// stored in a slot that resolve/indexLocked could then never look up again.
func (r *registry) registerFile(name []byte, reader, writer Handler) error {
	if err := ValidName(string(name), r.maxNameLen); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.slots {
		if !fileSlotEmpty(s) && bytes.Equal(s.name, name) {
			return ErrNameTaken
		}
	}
	for i, s := range r.slots {
		if fileSlotEmpty(s) {
			r.slots[i] = fileSlot{
				name:   append([]byte(nil), name...),
				reader: reader,
				writer: writer,
			}
			return nil
		}
	}
	return ErrNoFreeSlot
}

// unregisterFile zeroes the slot matching name, if any.
func (r *registry) unregisterFile(name []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, s := range r.slots {
		if !fileSlotEmpty(s) && bytes.Equal(s.name, name) {
			r.slots[i] = fileSlot{}
			return nil
		}
	}
	return ErrNotFound
}
