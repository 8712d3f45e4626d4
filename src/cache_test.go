package xbnet

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMACCacheInsertAndLookup(t *testing.T) {
	c := newMACCache()
	mac := [6]byte{1, 2, 3, 4, 5, 6}

	_, ok := c.lookup(mac)
	assert.False(t, ok)

	c.insert(mac, 0x42)
	addr, ok := c.lookup(mac)
	assert.True(t, ok)
	assert.Equal(t, RadioAddr(0x42), addr)
}

func TestIPCacheExpiresEntries(t *testing.T) {
	c := newIPCache(time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	c.insert("10.0.0.1", 0x1, now)

	addr, ok := c.lookup("10.0.0.1", now.Add(30*time.Second))
	assert.True(t, ok)
	assert.Equal(t, RadioAddr(0x1), addr)

	_, ok = c.lookup("10.0.0.1", now.Add(2*time.Minute))
	assert.False(t, ok)
}

func TestIPCacheLen(t *testing.T) {
	c := newIPCache(time.Minute)
	now := time.Now()
	c.insert("10.0.0.1", 1, now)
	c.insert("10.0.0.2", 2, now)
	assert.Equal(t, 2, c.len())
}
