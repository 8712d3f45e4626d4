package xbnet

/*------------------------------------------------------------------
 *
 * Purpose:	Split an application datagram into a bounded sequence of
 *		XBee TX Requests, each prefixed with a remaining-chunks byte.
 *
 *---------------------------------------------------------------*/

import "fmt"

// PacketStream assigns monotonically increasing frame IDs across calls to
// PacketizeData, wrapping from 255 back to 1 (0 is reserved: it disables
// the XBee's TX status response).
type PacketStream struct {
	frameCounter byte
}

// NewPacketStream returns a PacketStream with its frame counter starting at 1.
func NewPacketStream() *PacketStream {
	return &PacketStream{frameCounter: 1}
}

func (p *PacketStream) nextFrameID() byte {
	id := p.frameCounter
	if p.frameCounter == 0xff {
		p.frameCounter = 1
	} else {
		p.frameCounter++
	}
	return id
}

// PacketizeData splits data into TX Requests of at most maxPacketSize-1
// bytes each, prefixed with a remaining-chunks byte that counts down to 0x00
// on the last chunk. An empty payload yields no packets. More than 255
// required chunks is an error.
func (p *PacketStream) PacketizeData(maxPacketSize int, dest RadioAddr, data []byte, disableAcks, requestTXReports bool) ([]*TXRequest, error) {
	if len(data) == 0 {
		return nil, nil
	}

	chunkSize := maxPacketSize - 1
	chunkCount := (len(data) + chunkSize - 1) / chunkSize
	if chunkCount > 255 {
		return nil, fmt.Errorf("xbnet: %w: %d chunks required, max 255", ErrInvalidLen, chunkCount)
	}

	var transmitOptions byte
	if disableAcks {
		transmitOptions = 0x01
	}

	packets := make([]*TXRequest, 0, chunkCount)
	remaining := byte(chunkCount)
	for offset := 0; offset < len(data); offset += chunkSize {
		end := offset + chunkSize
		if end > len(data) {
			end = len(data)
		}

		remaining--
		payload := make([]byte, 0, 1+end-offset)
		payload = append(payload, remaining)
		payload = append(payload, data[offset:end]...)

		var frameID byte
		if requestTXReports {
			frameID = p.nextFrameID()
		}

		packets = append(packets, &TXRequest{
			FrameID:         frameID,
			Dest:            dest,
			BroadcastRadius: 0,
			TransmitOptions: transmitOptions,
			Payload:         payload,
		})
	}

	return packets, nil
}
