package xbnet

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func buildIPv4Packet(src, dst net.IP) []byte {
	p := make([]byte, 20)
	p[0] = 0x45 // version 4, IHL 5
	copy(p[12:16], src.To4())
	copy(p[16:20], dst.To4())
	return p
}

func buildIPv6Packet(src, dst net.IP) []byte {
	p := make([]byte, 40)
	p[0] = 0x60 // version 6
	copy(p[8:24], src.To16())
	copy(p[24:40], dst.To16())
	return p
}

func TestExtractIPv4(t *testing.T) {
	tb := &TunBridge{}
	src := net.IPv4(10, 0, 0, 1)
	dst := net.IPv4(10, 0, 0, 2)
	packet := buildIPv4Packet(src, dst)

	got, ok := tb.extractDestIP(packet)
	assert.True(t, ok)
	assert.True(t, got.Equal(dst))

	got, ok = tb.extractSrcIP(packet)
	assert.True(t, ok)
	assert.True(t, got.Equal(src))
}

func TestExtractIPv4DisabledDropsPacket(t *testing.T) {
	tb := &TunBridge{disableIPv4: true}
	packet := buildIPv4Packet(net.IPv4(10, 0, 0, 1), net.IPv4(10, 0, 0, 2))
	_, ok := tb.extractDestIP(packet)
	assert.False(t, ok)
}

func TestExtractIPv6(t *testing.T) {
	tb := &TunBridge{}
	src := net.ParseIP("fe80::1")
	dst := net.ParseIP("fe80::2")
	packet := buildIPv6Packet(src, dst)

	got, ok := tb.extractDestIP(packet)
	assert.True(t, ok)
	assert.True(t, got.Equal(dst))
}

func TestExtractIPUnknownVersionRejected(t *testing.T) {
	tb := &TunBridge{}
	packet := []byte{0x00, 0x01, 0x02}
	_, ok := tb.extractDestIP(packet)
	assert.False(t, ok)
}
