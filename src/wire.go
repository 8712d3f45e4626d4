package xbnet

/*------------------------------------------------------------------
 *
 * Purpose:	XBee API-mode frame codec: build and parse frame types
 *		0x10 (TX Request), 0x8B (Extended TX Status) and 0x90
 *		(Receive Packet); checksum.
 *
 *---------------------------------------------------------------*/

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	frameDelimiter       = 0x7e
	frameTypeTXRequest   = 0x10
	frameTypeExtTXStatus = 0x8b
	frameTypeRXPacket    = 0x90

	dest16Unknown = 0xfffe
)

// ErrInvalidLen is returned by Serialize when the payload is empty or the
// resulting inner frame would not fit in the wire format's 16-bit length
// field.
var ErrInvalidLen = errors.New("xbnet: invalid payload length")

// TXRequest is a Digi 64-bit transmit request, frame type 0x10.
type TXRequest struct {
	// FrameID is echoed in the subsequent 0x8B status frame. Zero disables
	// the status response for this transmission.
	FrameID byte

	// Dest is the 64-bit destination radio address. Broadcast (0xFFFF)
	// addresses the whole mesh.
	Dest RadioAddr

	// BroadcastRadius is the number of hops a broadcast may traverse; 0
	// uses the radio's configured default.
	BroadcastRadius byte

	// TransmitOptions is the XBee transmit-options bitfield; 0x01 disables
	// acknowledgments and route repair.
	TransmitOptions byte

	Payload []byte
}

// checksum computes the XBee checksum over the inner frame bytes:
// 0xFF minus the sum of all bytes, modulo 256.
func checksum(inner []byte) byte {
	var sum byte
	for _, b := range inner {
		sum += b
	}
	return 0xff - sum
}

// Serialize encodes a TX Request into a complete wire frame: delimiter,
// 16-bit big-endian inner length, inner bytes, checksum.
func (r *TXRequest) Serialize() ([]byte, error) {
	if len(r.Payload) == 0 {
		return nil, ErrInvalidLen
	}

	inner := make([]byte, 0, 13+len(r.Payload))
	inner = append(inner, frameTypeTXRequest, r.FrameID)
	var destBuf [8]byte
	binary.BigEndian.PutUint64(destBuf[:], uint64(r.Dest))
	inner = append(inner, destBuf[:]...)
	var dest16Buf [2]byte
	binary.BigEndian.PutUint16(dest16Buf[:], dest16Unknown)
	inner = append(inner, dest16Buf[:]...)
	inner = append(inner, r.BroadcastRadius, r.TransmitOptions)
	inner = append(inner, r.Payload...)

	if len(inner) > 0xffff {
		return nil, ErrInvalidLen
	}

	frame := make([]byte, 0, 4+len(inner))
	frame = append(frame, frameDelimiter)
	var lenBuf [2]byte
	binary.BigEndian.PutUint16(lenBuf[:], uint16(len(inner)))
	frame = append(frame, lenBuf[:]...)
	frame = append(frame, inner...)
	frame = append(frame, checksum(inner))
	return frame, nil
}

// RXPacket is a Digi receive packet, frame type 0x90.
type RXPacket struct {
	SenderAddr64 RadioAddr
	SenderAddr16 uint16
	RXOptions    byte
	Payload      []byte
}

// ParseFrame reads one frame from r. It skips and logs bytes preceding the
// delimiter as junk, validates the checksum, and dispatches on frame type:
// a 0x90 frame yields a decoded RXPacket; a 0x8B frame is logged at trace
// level and yields (nil, nil); any other frame type is logged at debug
// level and yields (nil, nil). A checksum mismatch also yields (nil, nil).
// Only I/O errors from r are returned as an error.
func ParseFrame(r *bufio.Reader) (*RXPacket, error) {
	var junk []byte
	for {
		b, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		if b == frameDelimiter {
			break
		}
		if len(junk) == 0 {
			logTrace("receiving junk before frame delimiter")
		}
		junk = append(junk, b)
	}
	if len(junk) != 0 {
		logTrace("skipped junk bytes", "data", fmt.Sprintf("%x", junk))
	}

	var lenBuf [2]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	length := binary.BigEndian.Uint16(lenBuf[:])

	inner := make([]byte, length)
	if _, err := io.ReadFull(r, inner); err != nil {
		return nil, err
	}

	cksum, err := r.ReadByte()
	if err != nil {
		return nil, err
	}

	if checksum(inner) != cksum {
		logDebug("checksum mismatch, discarding frame", "data", fmt.Sprintf("%x", inner))
		return nil, nil
	}

	if len(inner) == 0 {
		logDebug("empty inner frame, discarding")
		return nil, nil
	}

	switch inner[0] {
	case frameTypeExtTXStatus:
		logTrace("received extended TX status frame", "data", fmt.Sprintf("%x", inner))
		return nil, nil
	case frameTypeRXPacket:
		if len(inner) < 12 {
			logDebug("short 0x90 frame, discarding", "len", len(inner))
			return nil, nil
		}
		return &RXPacket{
			SenderAddr64: RadioAddr(binary.BigEndian.Uint64(inner[1:9])),
			SenderAddr16: binary.BigEndian.Uint16(inner[9:11]),
			RXOptions:    inner[11],
			Payload:      append([]byte(nil), inner[12:]...),
		}, nil
	default:
		logDebug("unknown frame type, discarding", "type", fmt.Sprintf("0x%02x", inner[0]))
		return nil, nil
	}
}

// ParseFrameBlocking retries ParseFrame until a Receive Packet is produced,
// or an I/O error occurs.
func ParseFrameBlocking(r *bufio.Reader) (*RXPacket, error) {
	for {
		pkt, err := ParseFrame(r)
		if err != nil {
			return nil, err
		}
		if pkt != nil {
			return pkt, nil
		}
	}
}
