package xbnet

/*------------------------------------------------------------------
 *
 * Purpose:	Layer-2 gateway: bridges a TAP device to the radio mesh,
 *		learning Ethernet MAC -> radio MAC associations by
 *		observing traffic received from the radio.
 *
 *---------------------------------------------------------------*/

import (
	"bufio"
	"context"
	"fmt"

	"github.com/songgao/water"
	"github.com/vishvananda/netlink"
)

const tapReadBufSize = 9100 // enough for jumbo Ethernet frames

// TapBridge bridges a TAP device to the radio, translating between
// Ethernet MAC addresses and 64-bit radio addresses.
type TapBridge struct {
	iface *water.Interface

	MyRadioMAC RadioAddr
	myEtherMAC [6]byte

	broadcastUnknown    bool
	broadcastEverything bool

	cache macCache
}

// NewTapBridge creates a TAP device (without packet-info prepending) and
// seeds its address cache with the broadcast pair. If ifaceName is
// non-empty it is requested as the interface name; the kernel may still
// assign a different name, which is reported once the device is open.
func NewTapBridge(myRadioMAC RadioAddr, ifaceName string, broadcastUnknown, broadcastEverything bool) (*TapBridge, error) {
	cfg := water.Config{DeviceType: water.TAP}
	cfg.Name = ifaceName

	iface, err := water.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("xbnet: creating TAP device: %w", err)
	}

	etherMAC := mac64to48(myRadioMAC)
	if link, lerr := netlink.LinkByName(iface.Name()); lerr == nil {
		if serr := netlink.LinkSetHardwareAddr(link, etherMAC[:]); serr != nil {
			logWarn("could not set TAP interface hardware address", "err", serr)
		}
	} else {
		logWarn("could not look up TAP interface for MAC assignment", "err", lerr)
	}

	fmt.Printf("Interface %s with ether MAC %s (XBee MAC %s) ready\n", iface.Name(), showMAC(etherMAC), myRadioMAC)

	t := &TapBridge{
		iface:               iface,
		MyRadioMAC:          myRadioMAC,
		myEtherMAC:          etherMAC,
		broadcastUnknown:    broadcastUnknown,
		broadcastEverything: broadcastEverything,
		cache:               newMACCache(),
	}
	t.cache.insert(EtherBroadcast, Broadcast)
	return t, nil
}

// Name returns the TAP interface's actual kernel-assigned name.
func (t *TapBridge) Name() string {
	return t.iface.Name()
}

// FramesFromTap reads Ethernet frames from the TAP device and enqueues each
// one for transmission, addressed per §4.8's destination policy.
func (t *TapBridge) FramesFromTap(ctx context.Context, ctrl *Controller) error {
	buf := make([]byte, tapReadBufSize)
	for {
		n, err := t.iface.Read(buf)
		if err != nil {
			return err
		}
		frame := append([]byte(nil), buf[:n]...)

		dst, _, ok := parseEthernetHeader(frame)
		if !ok {
			logWarn("malformed ethernet frame from tap, dropping")
			continue
		}

		var dest RadioAddr
		switch {
		case t.broadcastEverything:
			dest = Broadcast
		default:
			if radio, found := t.cache.lookup(dst); found {
				dest = radio
			} else if t.broadcastUnknown {
				dest = Broadcast
			} else {
				logWarn("dropping frame to unknown destination", "mac", showMAC(dst))
				continue
			}
		}

		ctrl.Send(dest, frame)
	}
}

// FramesFromRadio reads reassembled datagrams from the radio, learns the
// sender's MAC->radio-MAC mapping, and writes each datagram to the TAP
// device unconditionally.
func (t *TapBridge) FramesFromRadio(ctx context.Context, rf *Reframer, r *bufio.Reader) error {
	for {
		sender, _, datagram, err := rf.RxFrameBlocking(r)
		if err != nil {
			return err
		}

		if _, src, ok := parseEthernetHeader(datagram); ok && !t.broadcastEverything {
			t.cache.insert(src, sender)
		}

		if _, err := t.iface.Write(datagram); err != nil {
			logWarn("failed to write frame to tap interface", "err", err)
		}
	}
}

func parseEthernetHeader(frame []byte) (dst, src [6]byte, ok bool) {
	if len(frame) < 14 {
		return dst, src, false
	}
	copy(dst[:], frame[0:6])
	copy(src[:], frame[6:12])
	return dst, src, true
}

