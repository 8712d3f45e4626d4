package main

/*------------------------------------------------------------------
 *
 * Purpose:	Main program for xbnet, a host-side gateway between a
 *		serial-attached XBee radio module and the local machine:
 *
 *			Ping/pong diagnostic traffic.
 *			Raw byte-stream pipe over stdin/stdout.
 *			Ethernet bridging via a TAP device.
 *			IP bridging via a TUN device.
 *
 *---------------------------------------------------------------*/

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	xbnet "github.com/jgoerzen/xbnet/src"
	"github.com/spf13/pflag"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	global := pflag.NewFlagSet("xbnet", pflag.ContinueOnError)
	baud := global.IntP("serial-speed", "s", 9600, "Serial port baud rate")
	initFile := global.StringP("initfile", "i", "", "Optional file of extra AT commands to run at startup")
	disableAcks := global.Bool("disable-xbee-acks", false, "Disable XBee-level acknowledgements")
	requestTXReports := global.Bool("request-xbee-tx-reports", false, "Request extended transmit status reports")
	debug := global.BoolP("debug", "d", false, "Enable trace-level logging")

	global.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: xbnet [global options] <port> <command> [command options]\n\n")
		fmt.Fprintf(os.Stderr, "Commands:\n")
		fmt.Fprintf(os.Stderr, "  ping --dest <addr>   Send periodic pings to addr and display replies\n")
		fmt.Fprintf(os.Stderr, "  pong                 Reply to pings from anyone\n")
		fmt.Fprintf(os.Stderr, "  pipe --dest <addr>   Bridge stdin/stdout to addr as a raw byte stream\n")
		fmt.Fprintf(os.Stderr, "  tap                  Bridge a TAP device to the radio\n")
		fmt.Fprintf(os.Stderr, "  tun                  Bridge a TUN device to the radio\n\n")
		fmt.Fprintf(os.Stderr, "Global options:\n")
		global.PrintDefaults()
	}

	if err := global.Parse(args); err != nil {
		return 2
	}

	if *debug {
		xbnet.EnableTrace()
	}

	rest := global.Args()
	if len(rest) < 2 {
		global.Usage()
		return 2
	}
	port, cmd, cmdArgs := rest[0], rest[1], rest[2:]

	p, err := xbnet.OpenPort(port, *baud)
	if err != nil {
		fmt.Fprintf(os.Stderr, "xbnet: %s\n", err)
		return 1
	}
	defer p.Close()

	ctrl, err := xbnet.NewController(p, *initFile, *disableAcks, *requestTXReports, xbnet.DefaultQueueCapacity)
	if err != nil {
		fmt.Fprintf(os.Stderr, "xbnet: %s\n", err)
		return 1
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	switch cmd {
	case "ping":
		return runPing(ctx, ctrl, cmdArgs)
	case "pong":
		return runPong(ctx, ctrl, cmdArgs)
	case "pipe":
		return runPipe(ctx, ctrl, cmdArgs)
	case "tap":
		return runTap(ctx, ctrl, cmdArgs)
	case "tun":
		return runTun(ctx, ctrl, cmdArgs)
	default:
		fmt.Fprintf(os.Stderr, "xbnet: unknown command %q\n", cmd)
		global.Usage()
		return 2
	}
}

func parseDest(s string) (xbnet.RadioAddr, error) {
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid destination address %q: %w", s, err)
	}
	return xbnet.RadioAddr(v), nil
}

func runPing(ctx context.Context, ctrl *xbnet.Controller, args []string) int {
	fs := pflag.NewFlagSet("ping", pflag.ContinueOnError)
	destStr := fs.String("dest", "", "Destination radio address, hex (required)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *destStr == "" {
		fmt.Fprintln(os.Stderr, "xbnet ping: --dest is required")
		return 2
	}
	dest, err := parseDest(*destStr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "xbnet ping:", err)
		return 2
	}

	go xbnet.GenPings(ctx, ctrl, dest)

	rf := xbnet.NewReframer()
	if err := xbnet.DisplayPongs(ctx, rf, ctrl.Reader()); err != nil && ctx.Err() == nil {
		fmt.Fprintln(os.Stderr, "xbnet ping:", err)
		return 1
	}
	return 0
}

func runPong(ctx context.Context, ctrl *xbnet.Controller, args []string) int {
	fs := pflag.NewFlagSet("pong", pflag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	rf := xbnet.NewReframer()
	if err := xbnet.Pong(ctx, rf, ctrl.Reader(), ctrl); err != nil && ctx.Err() == nil {
		fmt.Fprintln(os.Stderr, "xbnet pong:", err)
		return 1
	}
	return 0
}

func runPipe(ctx context.Context, ctrl *xbnet.Controller, args []string) int {
	fs := pflag.NewFlagSet("pipe", pflag.ContinueOnError)
	destStr := fs.String("dest", "", "Destination radio address, hex (required)")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *destStr == "" {
		fmt.Fprintln(os.Stderr, "xbnet pipe: --dest is required")
		return 2
	}
	dest, err := parseDest(*destStr)
	if err != nil {
		fmt.Fprintln(os.Stderr, "xbnet pipe:", err)
		return 2
	}

	rf := xbnet.NewReframer()
	w := bufio.NewWriter(os.Stdout)

	errc := make(chan error, 2)
	go func() { errc <- xbnet.PipeRadioToStdout(rf, ctrl.Reader(), w) }()
	go func() { errc <- xbnet.PipeStdinToRadio(os.Stdin, ctrl, dest) }()

	select {
	case err := <-errc:
		if err != nil {
			fmt.Fprintln(os.Stderr, "xbnet pipe:", err)
			return 1
		}
		return 0
	case <-ctx.Done():
		ctrl.Shutdown()
		return 0
	}
}

func runTap(ctx context.Context, ctrl *xbnet.Controller, args []string) int {
	fs := pflag.NewFlagSet("tap", pflag.ContinueOnError)
	ifaceName := fs.String("iface-name", "", "Requested TAP interface name")
	broadcastUnknown := fs.Bool("broadcast-unknown", false, "Broadcast frames to unlearned destinations")
	broadcastEverything := fs.Bool("broadcast-everything", false, "Always broadcast; disables learning")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	bridge, err := xbnet.NewTapBridge(ctrl.MyMAC, *ifaceName, *broadcastUnknown, *broadcastEverything)
	if err != nil {
		fmt.Fprintln(os.Stderr, "xbnet tap:", err)
		return 1
	}

	rf := xbnet.NewReframer()
	errc := make(chan error, 2)
	go func() { errc <- bridge.FramesFromRadio(ctx, rf, ctrl.Reader()) }()
	go func() { errc <- bridge.FramesFromTap(ctx, ctrl) }()

	select {
	case err := <-errc:
		if err != nil {
			fmt.Fprintln(os.Stderr, "xbnet tap:", err)
			return 1
		}
		return 0
	case <-ctx.Done():
		ctrl.Shutdown()
		return 0
	}
}

func runTun(ctx context.Context, ctrl *xbnet.Controller, args []string) int {
	fs := pflag.NewFlagSet("tun", pflag.ContinueOnError)
	ifaceName := fs.String("iface-name", "", "Requested TUN interface name")
	broadcastEverything := fs.Bool("broadcast-everything", false, "Always broadcast; disables learning")
	maxIPCacheSecs := fs.Int("max-ip-cache", int(xbnet.DefaultIPCacheTTL/time.Second), "How long, in seconds, a learned IP mapping stays valid")
	disableIPv4 := fs.Bool("disable-ipv4", false, "Drop IPv4 traffic")
	disableIPv6 := fs.Bool("disable-ipv6", false, "Drop IPv6 traffic")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	bridge, err := xbnet.NewTunBridge(ctrl.MyMAC, *ifaceName, time.Duration(*maxIPCacheSecs)*time.Second, *broadcastEverything, *disableIPv4, *disableIPv6)
	if err != nil {
		fmt.Fprintln(os.Stderr, "xbnet tun:", err)
		return 1
	}

	rf := xbnet.NewReframer()
	errc := make(chan error, 2)
	go func() { errc <- bridge.FramesFromRadio(ctx, rf, ctrl.Reader(), time.Now) }()
	go func() { errc <- bridge.FramesFromTun(ctx, ctrl, time.Now) }()

	select {
	case err := <-errc:
		if err != nil {
			fmt.Fprintln(os.Stderr, "xbnet tun:", err)
			return 1
		}
		return 0
	case <-ctx.Done():
		ctrl.Shutdown()
		return 0
	}
}
