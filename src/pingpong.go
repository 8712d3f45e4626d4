package xbnet

/*------------------------------------------------------------------
 *
 * Purpose:	Diagnostic ping/pong traffic generator and responder.
 *
 *---------------------------------------------------------------*/

import (
	"bufio"
	"context"
	"fmt"
	"time"
)

// pingInterval is the fixed interval between generated pings.
const pingInterval = 5 * time.Second

// GenPings enqueues a "Ping <n>" datagram to dest every pingInterval,
// with n starting at 1 and incrementing, until ctx is cancelled.
func GenPings(ctx context.Context, ctrl *Controller, dest RadioAddr) {
	counter := 1
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()
	for {
		msg := fmt.Sprintf("Ping %d", counter)
		logInfo("send", "msg", msg)
		ctrl.Send(dest, []byte(msg))
		counter++

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// DisplayPongs reads reassembled datagrams from the radio and prints each
// one as "RECV from <hex addr>: <payload>" until ctx is cancelled or the
// radio reader reaches end of stream.
func DisplayPongs(ctx context.Context, rf *Reframer, r *bufio.Reader) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		sender, _, datagram, err := rf.RxFrameBlocking(r)
		if err != nil {
			return err
		}
		fmt.Printf("RECV from %s: %s\n", sender, string(datagram))
	}
}

// Pong replies to every received datagram whose payload begins with
// "Ping " by sending "Pong <remainder>" back to the sender.
func Pong(ctx context.Context, rf *Reframer, r *bufio.Reader, ctrl *Controller) error {
	const prefix = "Ping "
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		sender, _, datagram, err := rf.RxFrameBlocking(r)
		if err != nil {
			return err
		}
		if len(datagram) >= len(prefix) && string(datagram[:len(prefix)]) == prefix {
			reply := "Pong " + string(datagram[len(prefix):])
			ctrl.Send(sender, []byte(reply))
		}
	}
}
