package xbnet

/*------------------------------------------------------------------
 *
 * Purpose:	Byte-stream bridge between the radio and standard I/O.
 *
 *---------------------------------------------------------------*/

import (
	"bufio"
	"io"
)

// PipeStdinToRadio reads blocks of up to maxPacketSize-2 bytes from r and
// enqueues each non-empty block as a TX to dest. The extra byte of margin
// below the packetizer's own maxPacketSize-1 chunk size is intentional,
// not a bug: one byte of slack for whatever the next layer adds.
//
// On end of stream it shuts the controller down and returns nil.
func PipeStdinToRadio(r io.Reader, ctrl *Controller, dest RadioAddr) error {
	buf := make([]byte, ctrl.MaxPacketSize-2)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			ctrl.Send(dest, append([]byte(nil), buf[:n]...))
		}
		if err != nil {
			if err == io.EOF {
				ctrl.Shutdown()
				return nil
			}
			return err
		}
	}
}

// PipeRadioToStdout writes every reassembled datagram's payload to w,
// flushing after each one.
func PipeRadioToStdout(rf *Reframer, r *bufio.Reader, w *bufio.Writer) error {
	for {
		_, _, datagram, err := rf.RxFrameBlocking(r)
		if err != nil {
			return err
		}
		if _, err := w.Write(datagram); err != nil {
			return err
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
}
