// Package esp8266 implements a single-connection web client for an ESP8266
// running the Espressif AT command set across a UART interface.
//
// The AT firmware gives command replies no length or terminator, so every
// command is synchronized by a fixed wait window: the capture buffer is
// cleared, the command is written, and whatever has arrived when the window
// closes is the response. Callers decide success by looking for the reply
// tokens the module is known to send.
//
// Only one command and one TCP connection can be outstanding at a time.
//
// AT command set:
// https://www.espressif.com/sites/default/files/documentation/4a-esp8266_at_instruction_set_en.pdf
//
package esp8266

import (
	"io"
	"time"
)

// UART is the serial channel to the ESP8266. machine.UART satisfies it.
type UART interface {
	Write(b []byte) (n int, err error)
	Buffered() int
	ReadByte() (byte, error)
}

// Pin drives the reset line of the ESP8266. machine.Pin satisfies it.
type Pin interface {
	High()
	Low()
}

// Clock suspends the caller for the length of a wait window.
type Clock interface {
	Sleep(d time.Duration)
}

type systemClock struct{}

func (systemClock) Sleep(d time.Duration) {
	time.Sleep(d)
}

// Device wraps UART connection to the ESP8266.
type Device struct {
	uart  UART
	reset Pin
	cfg   Config

	// command responses that come back from the ESP8266, appended from
	// interrupt context
	capture captureBuffer

	state SessionState
}

// Config holds the wait windows used to synchronize with the module. Zero
// fields take the defaults noted on each field.
type Config struct {
	// CommandWait is the window for configuration commands (300ms).
	CommandWait time.Duration
	// ConnectWait is the window for opening a TCP connection (2s).
	ConnectWait time.Duration
	// JoinWait is the window for joining an access point (5s).
	JoinWait time.Duration
	// FetchWait is the window for the remote server's reply (5s).
	FetchWait time.Duration
	// SettleDelay absorbs straggling bytes after each response (300ms).
	SettleDelay time.Duration
	// ResetPulse is how long the reset line is held low (1s).
	ResetPulse time.Duration
	// ResetRecovery is how long the module is given to boot (3s).
	ResetRecovery time.Duration

	Clock Clock
}

// DefaultConfig returns the wait windows that work with stock AT firmware.
func DefaultConfig() Config {
	return Config{
		CommandWait:   300 * time.Millisecond,
		ConnectWait:   2 * time.Second,
		JoinWait:      5 * time.Second,
		FetchWait:     5 * time.Second,
		SettleDelay:   300 * time.Millisecond,
		ResetPulse:    1 * time.Second,
		ResetRecovery: 3 * time.Second,
		Clock:         systemClock{},
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.CommandWait <= 0 {
		c.CommandWait = def.CommandWait
	}
	if c.ConnectWait <= 0 {
		c.ConnectWait = def.ConnectWait
	}
	if c.JoinWait <= 0 {
		c.JoinWait = def.JoinWait
	}
	if c.FetchWait <= 0 {
		c.FetchWait = def.FetchWait
	}
	if c.SettleDelay <= 0 {
		c.SettleDelay = def.SettleDelay
	}
	if c.ResetPulse <= 0 {
		c.ResetPulse = def.ResetPulse
	}
	if c.ResetRecovery <= 0 {
		c.ResetRecovery = def.ResetRecovery
	}
	if c.Clock == nil {
		c.Clock = def.Clock
	}
	return c
}

// New returns a new esp8266 driver. Pass in a fully configured UART at
// 115200 baud, 8N1, and the pin wired to the module reset input. reset may be
// nil, in which case SoftReset restarts the firmware with AT+RST instead.
func New(uart UART, reset Pin) *Device {
	return &Device{
		uart:  uart,
		reset: reset,
		cfg:   DefaultConfig(),
		state: StateUninitialized,
	}
}

// Configure sets up the device for communication. A nil config keeps the
// defaults.
func (d *Device) Configure(config *Config) error {
	if config != nil {
		d.cfg = config.withDefaults()
	}
	if d.reset != nil {
		d.reset.High()
	}
	return nil
}

// HandleInterrupt drains every byte currently readable from the UART into
// the capture buffer. Call it from the UART receive interrupt or from a
// polling goroutine; it never waits for data.
func (d *Device) HandleInterrupt() {
	var chunk [64]byte
	for {
		n := 0
		for n < len(chunk) && d.uart.Buffered() > 0 {
			b, err := d.uart.ReadByte()
			if err != nil {
				break
			}
			chunk[n] = b
			n++
		}
		if n == 0 {
			return
		}
		d.capture.Write(chunk[:n])
		if n < len(chunk) {
			return
		}
	}
}

// Sink returns a writer that appends to the capture buffer, for serial
// sources that push bytes from their own reader goroutine.
func (d *Device) Sink() io.Writer {
	return &d.capture
}

// Write raw bytes to the UART.
func (d *Device) Write(b []byte) (n int, err error) {
	return d.uart.Write(b)
}
