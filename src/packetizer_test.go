package xbnet

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPacketizeEmptyData(t *testing.T) {
	ps := NewPacketStream()
	reqs, err := ps.PacketizeData(20, 1, nil, false, false)
	require.NoError(t, err)
	assert.Nil(t, reqs)
}

func TestPacketizeSingleChunk(t *testing.T) {
	ps := NewPacketStream()
	reqs, err := ps.PacketizeData(20, Broadcast, []byte("short"), false, false)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, byte(0), reqs[0].Payload[0])
	assert.Equal(t, []byte("short"), reqs[0].Payload[1:])
}

func TestPacketizeMultiChunkCountsDown(t *testing.T) {
	ps := NewPacketStream()
	data := bytes.Repeat([]byte("x"), 25)
	reqs, err := ps.PacketizeData(11, Broadcast, data, false, false) // chunk size 10
	require.NoError(t, err)
	require.Len(t, reqs, 3)

	assert.Equal(t, byte(2), reqs[0].Payload[0])
	assert.Equal(t, byte(1), reqs[1].Payload[0])
	assert.Equal(t, byte(0), reqs[2].Payload[0])

	var reassembled []byte
	for _, r := range reqs {
		reassembled = append(reassembled, r.Payload[1:]...)
	}
	assert.Equal(t, data, reassembled)
}

func TestPacketizeTooManyChunksErrors(t *testing.T) {
	ps := NewPacketStream()
	data := bytes.Repeat([]byte("x"), 256*9) // 256 chunks at chunk size 9
	_, err := ps.PacketizeData(10, Broadcast, data, false, false)
	require.Error(t, err)
}

func TestNextFrameIDWrapsSkippingZero(t *testing.T) {
	ps := NewPacketStream()
	ps.frameCounter = 255
	id := ps.nextFrameID()
	assert.Equal(t, byte(255), id)
	id = ps.nextFrameID()
	assert.Equal(t, byte(1), id)
}
