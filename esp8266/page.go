package esp8266

import (
	"fmt"
	"strconv"
)

// httpRequest is the smallest request the servers accept. The module needs
// its exact length before it takes the payload.
func httpRequest(host, page string) string {
	return "GET " + page + " HTTP/1.0\r\nHost: " + host + "\r\n\r\n"
}

// GetPage gets the contents of page from host over plain HTTP on port 80.
// It returns an empty string on any failure. The connection is left for the
// module or the server to time out.
func (d *Device) GetPage(host, page string) string {
	data, err := d.FetchPage(host, page)
	if err != nil {
		dbgPrintf("GetPage: %s\r\n", err.Error())
		return ""
	}
	return data
}

// FetchPage is GetPage with the failure class kept.
func (d *Device) FetchPage(host, page string) (string, error) {
	req := httpRequest(host, page)

	res := d.SendCommand("AT"+TCPConnect+`="TCP",`+quote(host)+","+strconv.Itoa(httpPort)+"\r\n", d.cfg.ConnectWait)
	if err := expect(res, replyOK); err != nil {
		return "", fmt.Errorf("connect %s: %w", host, err)
	}

	res = d.Set(TCPSend, strconv.Itoa(len(req)))
	if err := expect(res, replyPrompt); err != nil {
		if err == ErrNegativeAck {
			err = ErrNotReady
		}
		return "", fmt.Errorf("send %d bytes: %w", len(req), err)
	}

	// the window has to cover the whole reply from the server
	data := d.SendCommand(req, d.cfg.FetchWait)
	if data == "" {
		return "", fmt.Errorf("GET %s%s: %w", host, page, ErrNoResponse)
	}
	return CleanPage(data), nil
}
