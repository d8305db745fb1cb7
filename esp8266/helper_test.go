package esp8266

import (
	"strings"
	"time"
)

// reply is one scripted exchange: when a write starts with cmd, res arrives
// within the wait window and late arrives during the settle delay.
type reply struct {
	cmd  string
	res  string
	late string
}

// fakeModule is a scripted ESP8266. It is both the UART and the clock, so a
// wait window is the moment the module's bytes are delivered.
type fakeModule struct {
	dev *Device

	script  []reply
	next    int
	pending []byte
	late    []byte

	written []string
	sleeps  []time.Duration
	pin     []string
}

func newTestDevice(script ...reply) (*Device, *fakeModule) {
	m := &fakeModule{script: script}
	d := New(m, m)
	d.Configure(&Config{Clock: m})
	m.dev = d
	m.pin = nil
	return d, m
}

func (m *fakeModule) Write(b []byte) (int, error) {
	m.written = append(m.written, string(b))
	if m.next < len(m.script) && strings.HasPrefix(string(b), m.script[m.next].cmd) {
		m.pending = append(m.pending, m.script[m.next].res...)
		m.late = append(m.late, m.script[m.next].late...)
		m.next++
	}
	return len(b), nil
}

func (m *fakeModule) Buffered() int {
	return len(m.pending)
}

func (m *fakeModule) ReadByte() (byte, error) {
	b := m.pending[0]
	m.pending = m.pending[1:]
	return b, nil
}

func (m *fakeModule) Sleep(d time.Duration) {
	m.sleeps = append(m.sleeps, d)
	m.dev.HandleInterrupt()
	m.pending = append(m.pending, m.late...)
	m.late = nil
}

func (m *fakeModule) High() {
	m.pin = append(m.pin, "high")
}

func (m *fakeModule) Low() {
	m.pin = append(m.pin, "low")
}
