// Package serialport connects the esp8266 driver to a module on a host
// serial port, such as a USB-serial adapter or a NodeMCU board.
//
// The adapter's RTS line is used as the module reset line, the way the
// NodeMCU auto-reset circuit is wired: asserting RTS pulls RST low.
package serialport

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"go.bug.st/serial"
)

// Port is a host serial port wired to an ESP8266. It satisfies both
// esp8266.UART and esp8266.Pin.
type Port struct {
	port io.ReadWriteCloser
	rts  func(bool) error

	mu      sync.Mutex
	pending []byte
	notify  func()
	err     error

	done chan struct{}
}

// Open opens name at baud, 8N1.
func Open(name string, baud int) (*Port, error) {
	p, err := serial.Open(name, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	return newPort(p, p.SetRTS), nil
}

func newPort(rw io.ReadWriteCloser, rts func(bool) error) *Port {
	p := &Port{
		port: rw,
		rts:  rts,
		done: make(chan struct{}),
	}
	go p.readLoop()
	return p
}

// OnReceive registers f to run after every chunk read from the port. It
// plays the role of the UART receive interrupt: pass the device's
// HandleInterrupt.
func (p *Port) OnReceive(f func()) {
	p.mu.Lock()
	p.notify = f
	p.mu.Unlock()
}

func (p *Port) readLoop() {
	defer close(p.done)
	buf := make([]byte, 256)
	for {
		n, err := p.port.Read(buf)
		if 0 < n {
			p.mu.Lock()
			p.pending = append(p.pending, buf[:n]...)
			f := p.notify
			p.mu.Unlock()
			if f != nil {
				f()
			}
		}
		if err != nil {
			if !errors.Is(err, io.EOF) {
				p.setErr(err)
			}
			return
		}
	}
}

// Write raw bytes to the port.
func (p *Port) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

// Buffered returns the number of bytes read from the port and not yet
// taken with ReadByte.
func (p *Port) Buffered() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// ReadByte takes the next received byte.
func (p *Port) ReadByte() (byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.pending) == 0 {
		return 0, io.EOF
	}
	b := p.pending[0]
	p.pending = p.pending[1:]
	if len(p.pending) == 0 {
		p.pending = nil
	}
	return b, nil
}

// High releases the module reset line.
func (p *Port) High() {
	p.setErr(p.rts(false))
}

// Low holds the module in reset.
func (p *Port) Low() {
	p.setErr(p.rts(true))
}

// Err returns the first error seen on the port or the reset line.
func (p *Port) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *Port) setErr(err error) {
	if err == nil {
		return
	}
	p.mu.Lock()
	if p.err == nil {
		p.err = err
	}
	p.mu.Unlock()
}

// Close closes the port and waits for the reader to stop.
func (p *Port) Close() error {
	err := p.port.Close()
	<-p.done
	return err
}
