package esp8266

import (
	"time"
)

// SendCommand writes cmd to the module and returns whatever arrived within
// wait. The capture buffer is cleared before writing, so nothing from an
// earlier command can appear in the result.
//
// The result may be empty, cut short if the module was still sending when
// the window closed, or contain unsolicited status lines next to the reply.
func (d *Device) SendCommand(cmd string, wait time.Duration) string {
	return d.exchange(cmd, wait, true)
}

// exchange is the wait-then-snapshot primitive. With settle set, bytes that
// trickle in after the snapshot are dropped so they cannot be read as the
// next reply; without it they stay captured for a socket reader.
func (d *Device) exchange(cmd string, wait time.Duration, settle bool) string {
	d.capture.reset()

	dbgPrintf("w:%d: %q\r\n", len(cmd), abbrev(cmd))
	if _, err := d.uart.Write([]byte(cmd)); err != nil {
		dbgPrintf("write error: %s\r\n", err.Error())
		return ""
	}

	d.cfg.Clock.Sleep(wait)
	res := string(d.capture.swap())
	dbgPrintf("r:%d: %q\r\n", len(res), abbrev(res))

	if settle {
		d.cfg.Clock.Sleep(d.cfg.SettleDelay)
		d.capture.reset()
	}
	return res
}

// Execute sends an AT command to the ESP8266.
func (d *Device) Execute(cmd string) string {
	return d.SendCommand("AT"+cmd+"\r\n", d.cfg.CommandWait)
}

// Query sends an AT command to the ESP8266 that returns the
// current value for some configuration parameter.
func (d *Device) Query(cmd string) string {
	return d.SendCommand("AT"+cmd+"?\r\n", d.cfg.CommandWait)
}

// Set sends an AT command with params to the ESP8266 for a
// configuration value to be set.
func (d *Device) Set(cmd, params string) string {
	return d.SendCommand("AT"+cmd+"="+params+"\r\n", d.cfg.CommandWait)
}

// quote formats s as an AT string parameter. The firmware wants '"', ','
// and '\' escaped with a backslash.
func quote(s string) string {
	b := make([]byte, 0, len(s)+2)
	b = append(b, '"')
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"', ',', '\\':
			b = append(b, '\\')
		}
		b = append(b, s[i])
	}
	b = append(b, '"')
	return string(b)
}
