package xbnet

/*------------------------------------------------------------------
 *
 * Purpose:	Address-learning caches shared by the TAP and TUN bridges.
 *
 *---------------------------------------------------------------*/

import (
	"sync"
	"time"
)

// macCache maps Ethernet MACs to radio addresses, as learned by the TAP
// bridge from traffic received off the radio. Safe for concurrent use.
type macCache struct {
	mu sync.Mutex
	m  map[[6]byte]RadioAddr
}

func newMACCache() macCache {
	return macCache{m: make(map[[6]byte]RadioAddr)}
}

func (c *macCache) insert(mac [6]byte, addr RadioAddr) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[mac] = addr
}

func (c *macCache) lookup(mac [6]byte) (RadioAddr, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	addr, ok := c.m[mac]
	return addr, ok
}

// ipEntry is one learned IP -> radio-address mapping with its expiry.
type ipEntry struct {
	addr   RadioAddr
	expiry time.Time
}

// ipCache maps IP addresses (string form, v4 or v6) to radio addresses,
// each entry valid until its TTL-derived expiry. Safe for concurrent use.
type ipCache struct {
	mu  sync.Mutex
	m   map[string]ipEntry
	ttl time.Duration
}

func newIPCache(ttl time.Duration) ipCache {
	return ipCache{m: make(map[string]ipEntry), ttl: ttl}
}

func (c *ipCache) insert(ip string, addr RadioAddr, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.m[ip] = ipEntry{addr: addr, expiry: now.Add(c.ttl)}
}

func (c *ipCache) lookup(ip string, now time.Time) (RadioAddr, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.m[ip]
	if !ok || now.After(e.expiry) {
		return 0, false
	}
	return e.addr, true
}

func (c *ipCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.m)
}
