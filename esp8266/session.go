package esp8266

import (
	"fmt"
	"strings"
)

// SessionState is the driver's view of the module. It is reconstructed from
// the calls made and the status polls seen, never read back from the module.
type SessionState uint8

const (
	StateUninitialized SessionState = iota
	StateInitialized
	StateJoinRequested
	StateJoined
	StateDisconnected
)

func (s SessionState) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateInitialized:
		return "Initialized"
	case StateJoinRequested:
		return "Join Requested"
	case StateJoined:
		return "Joined"
	case StateDisconnected:
		return "Disconnected"
	default:
		return "Unknown"
	}
}

// Status is the connection status reported by AT+CIPSTATUS.
type Status uint8

const (
	StatusUnknown      Status = 0
	StatusGotIP        Status = 2
	StatusConnected    Status = 3
	StatusDisconnected Status = 4
	StatusNotJoined    Status = 5
)

func (s Status) String() string {
	switch s {
	case StatusGotIP:
		return "Got IP"
	case StatusConnected:
		return "Connected"
	case StatusDisconnected:
		return "Disconnected"
	case StatusNotJoined:
		return "Not Joined"
	default:
		return "Unknown"
	}
}

// State returns the current session state.
func (d *Device) State() SessionState {
	return d.state
}

// SoftReset pulses the reset line. The module keeps the stored access point
// credentials across this reset.
func (d *Device) SoftReset() {
	if d.reset == nil {
		d.Restart()
	} else {
		d.reset.Low()
		d.cfg.Clock.Sleep(d.cfg.ResetPulse)
		d.reset.High()
	}
	// the boot banner must not end up in front of the next reply
	d.cfg.Clock.Sleep(d.cfg.ResetRecovery)
	d.capture.reset()
	d.state = StateUninitialized
}

// Init turns echo off and puts the module in client mode.
func (d *Device) Init() bool {
	return d.InitErr() == nil
}

// InitErr is Init with the failure class kept.
func (d *Device) InitErr() error {
	d.state = StateUninitialized
	if err := expect(d.Execute(EchoConfigOff), replyOK); err != nil {
		return fmt.Errorf("echo off: %w", err)
	}
	if err := expect(d.Set(WifiMode, WifiModeClient), replyOK); err != nil {
		return fmt.Errorf("client mode: %w", err)
	}
	d.state = StateInitialized
	return nil
}

// ConnectToAP joins the access point. It sends the full join command every
// time it is called, whatever the current state.
func (d *Device) ConnectToAP(ssid, pass string) bool {
	return d.ConnectToAPErr(ssid, pass) == nil
}

// ConnectToAPErr is ConnectToAP with the failure class kept.
func (d *Device) ConnectToAPErr(ssid, pass string) error {
	d.state = StateJoinRequested
	// a failing join takes the module a long time to answer
	res := d.SendCommand("AT"+ConnectAP+"="+quote(ssid)+","+quote(pass)+"\r\n", d.cfg.JoinWait)
	if err := expect(res, replyConnected, replyGotIP, replyOK); err != nil {
		return fmt.Errorf("join %s: %w", ssid, err)
	}
	d.state = StateJoined
	return nil
}

// IsConnected reports whether the module holds an IP address from the
// access point. Any reply without a readable status counts as not connected.
func (d *Device) IsConnected() bool {
	st, err := d.Status()
	if err == nil && st == StatusGotIP {
		d.state = StateJoined
		return true
	}
	if d.state == StateJoined {
		d.state = StateDisconnected
	}
	return false
}

// Status queries the connection status.
func (d *Device) Status() (Status, error) {
	res := d.Execute(TCPStatus)
	if strings.TrimSpace(res) == "" {
		return StatusUnknown, ErrNoResponse
	}
	return parseStatus(res)
}

// parseStatus finds the status digit after the "STATUS:" label, wherever
// the label sits in the reply.
func parseStatus(res string) (Status, error) {
	i := strings.Index(res, statusLabel)
	if i < 0 {
		return StatusUnknown, ErrMalformedStatus
	}
	i += len(statusLabel)
	if len(res) <= i || res[i] < '0' || '9' < res[i] {
		return StatusUnknown, ErrMalformedStatus
	}
	return Status(res[i] - '0'), nil
}

// Connected checks if there is communication with the ESP8266.
func (d *Device) Connected() bool {
	return expect(d.Execute(Test), replyOK) == nil
}

// Version returns the ESP8266 firmware version info.
func (d *Device) Version() string {
	res := d.Execute(Version)
	if expect(res, replyOK) != nil {
		return "unknown"
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(res), "OK"))
}

// Echo sets the ESP8266 echo setting.
func (d *Device) Echo(set bool) bool {
	cmd := EchoConfigOff
	if set {
		cmd = EchoConfigOn
	}
	return expect(d.Execute(cmd), replyOK) == nil
}

// Restart restarts the ESP8266 firmware. The module forgets its echo and
// mode settings, so Init has to run again.
func (d *Device) Restart() {
	d.Execute(Restart)
	d.state = StateUninitialized
}

// Disconnect leaves the current access point.
func (d *Device) Disconnect() bool {
	if expect(d.Execute(DisconnectAP), replyOK) != nil {
		return false
	}
	d.state = StateDisconnected
	return true
}

// GetClientIP returns the station IP address, "a.b.c.d".
func (d *Device) GetClientIP() (string, error) {
	res := d.Execute(GetLocalIP)
	i := strings.Index(res, staIPLabel)
	if i < 0 {
		return "", expectErr(res)
	}
	v := res[i+len(staIPLabel):]
	if e := strings.IndexAny(v, "\r\n"); 0 <= e {
		v = v[:e]
	}
	return strings.Trim(v, `"`), nil
}
