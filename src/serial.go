package xbnet

/*------------------------------------------------------------------
 *
 * Purpose:   	Interface to the serial port, hiding the line-mode/raw-mode
 *		distinction the radio controller needs during startup versus
 *		steady-state API-mode operation.
 *
 *---------------------------------------------------------------*/

import (
	"bufio"
	"io"

	"github.com/pkg/term"
)

// Port is a serial-port handle supporting both line-oriented I/O (used
// while the module is still in AT command mode) and raw byte I/O (used
// once the module has dropped into API mode). Both directions share the
// same underlying device, per spec.md's "two handles, same port" model.
type Port struct {
	name string
	t    *term.Term
	br   *bufio.Reader
}

// OpenPort opens name at the given baud rate: 8 data bits, hardware flow
// control, no parity, one stop bit, and an effectively infinite read
// timeout (the caller is expected to block on reads for the process
// lifetime).
//
// Hardware flow control is requested through pkg/term's FlowControl option;
// the setting isn't read back to verify that it took effect.
func OpenPort(name string, baud int) (*Port, error) {
	t, err := term.Open(name, term.Speed(baud), term.RawMode, term.FlowControl(term.HARDWARE))
	if err != nil {
		return nil, err
	}
	return &Port{
		name: name,
		t:    t,
		br:   bufio.NewReader(t),
	}, nil
}

// Close releases the underlying device.
func (p *Port) Close() error {
	return p.t.Close()
}

// ReadLine reads up to and including a carriage return (0x0D) and returns
// the trimmed string. It returns io.EOF when the port closes.
func (p *Port) ReadLine() (string, error) {
	line, err := p.br.ReadString('\r')
	if err != nil {
		if err == io.EOF {
			logDebug("received EOF from serial port", "port", p.name)
		}
		return "", err
	}
	trimmed := trimCRLF(line)
	logTrace("serial line in", "port", p.name, "line", trimmed)
	return trimmed, nil
}

// WriteLine writes data followed by a CRLF terminator.
func (p *Port) WriteLine(data string) error {
	logTrace("serial line out", "port", p.name, "line", data)
	if _, err := p.t.Write([]byte(data)); err != nil {
		return err
	}
	_, err := p.t.Write([]byte("\r\n"))
	return err
}

// WriteRaw writes data with no added framing, flushing immediately.
func (p *Port) WriteRaw(data []byte) error {
	_, err := p.t.Write(data)
	return err
}

// ReadRaw performs an exact-length raw byte read into buf.
func (p *Port) ReadRaw(buf []byte) (int, error) {
	return io.ReadFull(p.br, buf)
}

// Reader exposes the buffered reader backing raw reads, for callers (the
// reframer) that need byte-at-a-time access while scanning for a delimiter.
func (p *Port) Reader() *bufio.Reader {
	return p.br
}

func trimCRLF(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\r' || s[len(s)-1] == '\n') {
		s = s[:len(s)-1]
	}
	return s
}
