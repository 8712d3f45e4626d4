package xbnet

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildRXFrameFor(sender RadioAddr, payload []byte) []byte {
	inner := make([]byte, 0, 12+len(payload))
	inner = append(inner, frameTypeRXPacket)
	for i := 0; i < 8; i++ {
		inner = append(inner, byte(sender>>uint(56-8*i)))
	}
	inner = append(inner, 0xff, 0xfe) // addr16 unknown
	inner = append(inner, 0x01)       // rx options
	inner = append(inner, payload...)

	var buf bytes.Buffer
	buf.WriteByte(frameDelimiter)
	buf.WriteByte(byte(len(inner) >> 8))
	buf.WriteByte(byte(len(inner)))
	buf.Write(inner)
	buf.WriteByte(checksum(inner))
	return buf.Bytes()
}

func TestReframerSingleChunkDatagram(t *testing.T) {
	frame := buildRXFrameFor(1, append([]byte{0x00}, []byte("hello")...))

	rf := NewReframer()
	br := bufio.NewReader(bytes.NewReader(frame))
	sender, _, datagram, err := rf.RxFrameBlocking(br)
	require.NoError(t, err)
	assert.Equal(t, RadioAddr(1), sender)
	assert.Equal(t, []byte("hello"), datagram)
	assert.Equal(t, 0, len(rf.buf)) // no leftover state after a complete datagram
}

func TestReframerInterleavedSendersDontConflate(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(buildRXFrameFor(1, append([]byte{1}, []byte("AA")...))) // sender 1, chunk 1 of 2
	buf.Write(buildRXFrameFor(2, append([]byte{1}, []byte("BB")...))) // sender 2, chunk 1 of 2
	buf.Write(buildRXFrameFor(1, append([]byte{0}, []byte("aa")...))) // sender 1, last chunk
	buf.Write(buildRXFrameFor(2, append([]byte{0}, []byte("bb")...))) // sender 2, last chunk

	rf := NewReframer()
	br := bufio.NewReader(&buf)

	sender, _, datagram, err := rf.RxFrameBlocking(br)
	require.NoError(t, err)
	assert.Equal(t, RadioAddr(1), sender)
	assert.Equal(t, []byte("AAaa"), datagram)

	sender, _, datagram, err = rf.RxFrameBlocking(br)
	require.NoError(t, err)
	assert.Equal(t, RadioAddr(2), sender)
	assert.Equal(t, []byte("BBbb"), datagram)

	assert.Equal(t, 0, len(rf.buf))
}

func TestReframerMaxBufferedBytesDropsOversizedBuffer(t *testing.T) {
	rf := NewReframer()
	rf.MaxBufferedBytes = 3

	var buf bytes.Buffer
	buf.Write(buildRXFrameFor(1, append([]byte{1}, []byte("AAAA")...))) // exceeds cap, dropped
	buf.Write(buildRXFrameFor(1, append([]byte{0}, []byte("z")...)))    // starts fresh

	br := bufio.NewReader(&buf)
	sender, _, datagram, err := rf.RxFrameBlocking(br)
	require.NoError(t, err)
	assert.Equal(t, RadioAddr(1), sender)
	assert.Equal(t, []byte("z"), datagram)
}
