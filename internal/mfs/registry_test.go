package mfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoHandler(b byte) Handler {
	return func(req Message) Message {
		return Message{Op: ResponseOf(req.Op), PSize: req.PSize, Path: req.Path, DSize: 1, Data: []byte{b}}
	}
}

func TestRegistryRegisterAndResolve(t *testing.T) {
	r := newRegistry(4, 64)

	require.NoError(t, r.registerFile([]byte("hi"), echoHandler('X'), echoHandler('X')))

	reader, writer, ok := r.resolve([]byte("hi"))
	require.True(t, ok)
	require.NotNil(t, reader)
	require.NotNil(t, writer)

	_, _, ok = r.resolve([]byte("missing"))
	assert.False(t, ok)
}

func TestRegistryRejectsDuplicateName(t *testing.T) {
	r := newRegistry(4, 64)
	require.NoError(t, r.registerFile([]byte("hi"), echoHandler('X'), echoHandler('X')))
	err := r.registerFile([]byte("hi"), echoHandler('Y'), echoHandler('Y'))
	assert.ErrorIs(t, err, ErrNameTaken)
}

func TestRegistryRejectsWhenFull(t *testing.T) {
	r := newRegistry(1, 64)
	require.NoError(t, r.registerFile([]byte("a"), echoHandler('X'), echoHandler('X')))
	err := r.registerFile([]byte("b"), echoHandler('X'), echoHandler('X'))
	assert.ErrorIs(t, err, ErrNoFreeSlot)
}

func TestRegistryUnregister(t *testing.T) {
	r := newRegistry(4, 64)
	require.NoError(t, r.registerFile([]byte("hi"), echoHandler('X'), echoHandler('X')))
	require.NoError(t, r.unregisterFile([]byte("hi")))

	_, _, ok := r.resolve([]byte("hi"))
	assert.False(t, ok)

	err := r.unregisterFile([]byte("hi"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRegistryRejectsEmbeddedNULAtRegistration(t *testing.T) {
	r := newRegistry(4, 64)
	name := []byte("hi\x00there")
	err := r.registerFile(name, echoHandler('X'), echoHandler('X'))
	assert.Error(t, err, "a name containing NUL must be rejected at registration, since it could never be looked up again")
}

func TestRegistryEmbeddedNULNeverMatches(t *testing.T) {
	r := newRegistry(4, 64)
	name := []byte("hi\x00there")
	// Bypass registerFile's validation to exercise resolve's own defense:
	// even a slot that somehow holds a NUL-bearing name must never match.
	r.slots[0] = fileSlot{name: name, reader: echoHandler('X'), writer: echoHandler('X')}

	_, _, ok := r.resolve(name)
	assert.False(t, ok, "a name containing NUL must never resolve, matching get_file_index's embedded-NUL contract")
}

func TestRegistryNamesSkipsEmptySlots(t *testing.T) {
	r := newRegistry(4, 64)
	require.NoError(t, r.registerFile([]byte("a"), echoHandler('X'), echoHandler('X')))
	require.NoError(t, r.registerFile([]byte("b"), echoHandler('X'), echoHandler('X')))
	require.NoError(t, r.unregisterFile([]byte("a")))

	names := r.names()
	require.Len(t, names, 1)
	assert.Equal(t, "b", string(names[0]))
}
