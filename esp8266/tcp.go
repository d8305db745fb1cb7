package esp8266

import (
	"fmt"
	"strconv"
	"strings"

	"tinygo.org/x/drivers/net"
)

// NewDriver returns the net.DeviceDriver view of the device, for use with
// net.UseDriver.
func (d *Device) NewDriver() net.DeviceDriver {
	return &Driver{dev: d}
}

// Driver adapts Device to tinygo.org/x/drivers/net.
type Driver struct {
	dev *Device

	readBuf readBuffer
	// raw socket bytes ending in a header that is still arriving
	partial string
}

type readBuffer struct {
	data []byte
	head int
}

func (b *readBuffer) size() int {
	return len(b.data) - b.head
}

func (b *readBuffer) append(s string) {
	if b.size() == 0 {
		b.data = b.data[:0]
		b.head = 0
	}
	b.data = append(b.data, s...)
}

func (drv *Driver) GetDNS(domain string) (string, error) {
	res := drv.dev.Set(DomainLookup, quote(domain))
	i := strings.Index(res, domainLabel)
	if i < 0 {
		return "", fmt.Errorf("lookup %s: %w", domain, expectErr(res))
	}
	ip := res[i+len(domainLabel):]
	if e := strings.IndexAny(ip, "\r\n"); 0 <= e {
		ip = ip[:e]
	}
	return strings.Trim(ip, `"`), nil
}

func (drv *Driver) ConnectTCPSocket(addr, portStr string) error {
	return drv.connect(`"TCP",` + quote(addr) + "," + portStr)
}

func (drv *Driver) ConnectSSLSocket(addr, portStr string) error {
	return ErrNotImplemented
}

func (drv *Driver) ConnectUDPSocket(addr, sendport, listenport string) error {
	return drv.connect(`"UDP",` + quote(addr) + "," + sendport + "," + listenport)
}

func (drv *Driver) connect(params string) error {
	drv.readBuf = readBuffer{}
	drv.partial = ""
	res := drv.dev.SendCommand("AT"+TCPConnect+"="+params+"\r\n", drv.dev.cfg.ConnectWait)
	if err := expect(res, replyOK); err != nil {
		return fmt.Errorf("connect %s: %w", params, err)
	}
	return nil
}

func (drv *Driver) DisconnectSocket() error {
	if err := expect(drv.dev.Execute(TCPClose), replyOK); err != nil {
		return fmt.Errorf("close: %w", err)
	}
	return nil
}

func (drv *Driver) StartSocketSend(size int) error {
	// AT+CIPSEND goes out with the payload in Write
	return nil
}

// Write sends b over the open connection. Socket data that arrives within
// the fetch window is kept for ReadSocket.
func (drv *Driver) Write(b []byte) (int, error) {
	// w: "AT+CIPSEND=38\r\n"
	// r: "\r\nOK\r\n> "
	// w: "GET / HTTP/1.0\r\nHost: example.com\r\n\r\n"
	// r: "\r\nRecv 38 bytes\r\n\r\nSEND OK\r\n\r\n+IPD,512:HTTP/1.0 200 OK..."
	res := drv.dev.Set(TCPSend, strconv.Itoa(len(b)))
	if err := expect(res, replyPrompt); err != nil {
		if err == ErrNegativeAck {
			err = ErrNotReady
		}
		return 0, fmt.Errorf("send %d bytes: %w", len(b), err)
	}

	res = drv.dev.exchange(string(b), drv.dev.cfg.FetchWait, false)
	idx := strings.Index(res, replySendOK)
	if idx < 0 {
		return 0, fmt.Errorf("send %d bytes: %w", len(b), expectErr(res))
	}
	drv.receive(res[idx+len(replySendOK):])

	return len(b), nil
}

func (drv *Driver) receive(raw string) {
	complete, rest := cutIncomplete(drv.partial + raw)
	drv.partial = rest
	if complete != "" {
		drv.readBuf.append(CleanPage(complete))
	}
}

func (drv *Driver) ReadSocket(b []byte) (int, error) {
	if !drv.IsSocketDataAvailable() {
		return 0, nil
	}
	n := copy(b, drv.readBuf.data[drv.readBuf.head:])
	drv.readBuf.head += n
	return n, nil
}

// IsSocketDataAvailable returns of there is socket data available
func (drv *Driver) IsSocketDataAvailable() bool {
	if drv.dev.capture.len() > 0 {
		drv.receive(string(drv.dev.capture.swap()))
	}
	return drv.readBuf.size() > 0
}

// Response is a no-op: Write has already consumed the reply to the send.
func (drv *Driver) Response(timeout int) ([]byte, error) {
	return nil, nil
}
