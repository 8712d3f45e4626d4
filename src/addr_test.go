package xbnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMac64To48DropsTopBits(t *testing.T) {
	addr := RadioAddr(0x0013a20040abcdef)
	mac := mac64to48(addr)
	assert.Equal(t, [6]byte{0xa2, 0x00, 0x40, 0xab, 0xcd, 0xef}, mac)
}

func TestMac48To64RoundTripUnderSharedPrefix(t *testing.T) {
	pattern := RadioAddr(0x0013a20000000000)
	addr := RadioAddr(0x0013a20040abcdef)

	mac := mac64to48(addr)
	back := mac48to64(mac, pattern)

	assert.Equal(t, addr, back)
}

func TestShowMACFormat(t *testing.T) {
	mac := [6]byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55}
	assert.Equal(t, "00:11:22:33:44:55", showMAC(mac))
}
