package mfs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeaderRoundTrip(t *testing.T) {
	cases := []Header{
		{PSize: 0, DSize: 0, Op: 0},
		{PSize: 1, DSize: 2, Op: OpREAD},
		{PSize: 0xFFFFFFFF, DSize: 0xFFFFFFFF, Op: 0xFF},
	}
	for _, h := range cases {
		var buf [HeaderSize]byte
		EncodeHeader(buf[:], h)
		got := DecodeHeader(buf[:])
		assert.Equal(t, h, got)
	}
}

func TestResponseOf(t *testing.T) {
	assert.Equal(t, byte(0x80), ResponseOf(OpNOOP))
	assert.Equal(t, byte(0x81), ResponseOf(OpREAD))
	assert.Equal(t, byte(0x83), ResponseOf(OpLS))
	assert.Equal(t, byte(0x84), ResponseOf(OpERROR))
}
