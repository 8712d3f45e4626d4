package xbnet

/*------------------------------------------------------------------
 *
 * Purpose:	Layer-3 gateway: bridges a TUN device to the radio mesh,
 *		learning IP -> radio MAC associations (with expiry) by
 *		observing traffic received from the radio.
 *
 *---------------------------------------------------------------*/

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"time"

	"github.com/songgao/water"
)

// DefaultIPCacheTTL is how long a learned IP -> radio-address mapping
// remains valid before it must be relearned.
const DefaultIPCacheTTL = 10 * time.Minute

const (
	ipVersion4 = 4
	ipVersion6 = 6
)

// TunBridge bridges a TUN device to the radio, translating between IP
// addresses and 64-bit radio addresses. Unlike TapBridge there is no
// Ethernet MAC to derive: the radio address a datagram came from is
// learned directly against its source IP.
type TunBridge struct {
	iface *water.Interface

	MyRadioMAC RadioAddr

	broadcastEverything bool
	disableIPv4         bool
	disableIPv6         bool

	cache ipCache
}

// NewTunBridge creates a TUN device (no packet-info prefix) and an empty
// IP cache with the given TTL (DefaultIPCacheTTL if ttl <= 0).
func NewTunBridge(myRadioMAC RadioAddr, ifaceName string, ttl time.Duration, broadcastEverything, disableIPv4, disableIPv6 bool) (*TunBridge, error) {
	if ttl <= 0 {
		ttl = DefaultIPCacheTTL
	}

	cfg := water.Config{DeviceType: water.TUN}
	cfg.Name = ifaceName

	iface, err := water.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("xbnet: creating TUN device: %w", err)
	}

	fmt.Printf("Interface %s (XBee MAC %s) ready\n", iface.Name(), myRadioMAC)

	return &TunBridge{
		iface:               iface,
		MyRadioMAC:          myRadioMAC,
		broadcastEverything: broadcastEverything,
		disableIPv4:         disableIPv4,
		disableIPv6:         disableIPv6,
		cache:               newIPCache(ttl),
	}, nil
}

// Name returns the TUN interface's actual kernel-assigned name.
func (t *TunBridge) Name() string {
	return t.iface.Name()
}

// CacheSize returns the current number of learned IP -> radio-address
// entries, expired or not.
func (t *TunBridge) CacheSize() int {
	return t.cache.len()
}

// FramesFromTun reads IP packets from the TUN device and enqueues each one
// for transmission, addressed per the destination policy: if the
// datagram's IP version is disabled, drop it. If broadcastEverything, the
// destination is always 0xFFFF. Otherwise look up the destination IP in
// the learned cache; on a hit with an unexpired entry use the mapped radio
// address, and on a miss or expired entry broadcast (which lets the reply
// relearn the route).
func (t *TunBridge) FramesFromTun(ctx context.Context, ctrl *Controller, now func() time.Time) error {
	buf := make([]byte, ctrl.MaxPacketSize*4)
	for {
		n, err := t.iface.Read(buf)
		if err != nil {
			return err
		}
		packet := append([]byte(nil), buf[:n]...)

		dstIP, ok := t.extractDestIP(packet)
		if !ok {
			logWarn("dropping unrecognized or disabled-family ip packet")
			continue
		}

		dest := Broadcast
		if !t.broadcastEverything {
			if found, ok := t.cache.lookup(dstIP.String(), now()); ok {
				dest = found
			}
		}

		ctrl.Send(dest, packet)
	}
}

// FramesFromRadio reads reassembled datagrams from the radio, learns the
// sender's source-IP -> radio-address mapping, and writes each datagram
// to the TUN device unconditionally.
func (t *TunBridge) FramesFromRadio(ctx context.Context, rf *Reframer, r *bufio.Reader, now func() time.Time) error {
	for {
		sender, _, datagram, err := rf.RxFrameBlocking(r)
		if err != nil {
			return err
		}

		if srcIP, ok := t.extractSrcIP(datagram); ok {
			t.cache.insert(srcIP.String(), sender, now())
		}

		if _, err := t.iface.Write(datagram); err != nil {
			logWarn("failed to write packet to tun interface", "err", err)
		}
	}
}

func (t *TunBridge) extractDestIP(packet []byte) (net.IP, bool) {
	return t.extractIP(packet, false)
}

func (t *TunBridge) extractSrcIP(packet []byte) (net.IP, bool) {
	return t.extractIP(packet, true)
}

// extractIP reads the source or destination address out of an IPv4 or
// IPv6 header, respecting the disableIPv4/disableIPv6 flags.
func (t *TunBridge) extractIP(packet []byte, src bool) (net.IP, bool) {
	if len(packet) < 1 {
		return nil, false
	}
	version := packet[0] >> 4

	switch version {
	case ipVersion4:
		if t.disableIPv4 || len(packet) < 20 {
			return nil, false
		}
		if src {
			return net.IP(packet[12:16]), true
		}
		return net.IP(packet[16:20]), true
	case ipVersion6:
		if t.disableIPv6 || len(packet) < 40 {
			return nil, false
		}
		if src {
			return net.IP(packet[8:24]), true
		}
		return net.IP(packet[24:40]), true
	default:
		return nil, false
	}
}
