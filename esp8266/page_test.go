package esp8266

import (
	"errors"
	"reflect"
	"strconv"
	"testing"
	"time"
)

func TestGetPage(t *testing.T) {
	host := "rss.example.com"
	page := "/weather/caqc0363"
	requestLength := 25 + len(host) + len(page)

	d, m := newTestDevice(
		reply{cmd: "AT+CIPSTART=", res: "CONNECT\r\n\r\nOK\r\n"},
		reply{cmd: "AT+CIPSEND=", res: "\r\nOK\r\n> "},
		reply{cmd: "GET ", res: "\r\nRecv " + strconv.Itoa(requestLength) + " bytes\r\n\r\nSEND OK\r\n" +
			"\r\n+IPD,19:HTTP/1.0 200 OK\r\n\r\n" +
			"\r\n+IPD,12:<rss></rss>\n" +
			"CLOSED\r\n"},
	)

	res := d.GetPage(host, page)

	expected := "\r\nRecv " + strconv.Itoa(requestLength) + " bytes\r\n\r\nSEND OK\r\n" +
		"HTTP/1.0 200 OK\r\n\r\n" +
		"<rss></rss>\n" +
		"CLOSED\r\n"
	if g, e := res, expected; g != e {
		t.Errorf("got %q, want %q", g, e)
	}

	written := []string{
		"AT+CIPSTART=\"TCP\",\"rss.example.com\",80\r\n",
		"AT+CIPSEND=" + strconv.Itoa(requestLength) + "\r\n",
		"GET /weather/caqc0363 HTTP/1.0\r\nHost: rss.example.com\r\n\r\n",
	}
	if g, e := m.written, written; !reflect.DeepEqual(g, e) {
		t.Errorf("got %q, want %q", g, e)
	}
	if g, e := len(m.written[2]), requestLength; g != e {
		t.Errorf("got %d, want %d", g, e)
	}

	settle := 300 * time.Millisecond
	sleeps := []time.Duration{2 * time.Second, settle, 300 * time.Millisecond, settle, 5 * time.Second, settle}
	if g, e := m.sleeps, sleeps; !reflect.DeepEqual(g, e) {
		t.Errorf("got %v, want %v", g, e)
	}
}

func TestGetPageFailure(t *testing.T) {
	tests := []struct {
		summary  string
		script   []reply
		expected error
		writes   int
	}{
		{
			summary: "connect refused",
			script: []reply{
				{cmd: "AT+CIPSTART=", res: "\r\nERROR\r\nCLOSED\r\n"},
			},
			expected: ErrNegativeAck,
			writes:   1,
		},
		{
			summary:  "module silent on connect",
			script:   nil,
			expected: ErrNoResponse,
			writes:   1,
		},
		{
			summary: "no prompt",
			script: []reply{
				{cmd: "AT+CIPSTART=", res: "CONNECT\r\n\r\nOK\r\n"},
				{cmd: "AT+CIPSEND=", res: "\r\nOK\r\n"},
			},
			expected: ErrNotReady,
			writes:   2,
		},
		{
			summary: "no prompt, module silent",
			script: []reply{
				{cmd: "AT+CIPSTART=", res: "CONNECT\r\n\r\nOK\r\n"},
			},
			expected: ErrNoResponse,
			writes:   2,
		},
		{
			summary: "server silent",
			script: []reply{
				{cmd: "AT+CIPSTART=", res: "CONNECT\r\n\r\nOK\r\n"},
				{cmd: "AT+CIPSEND=", res: "\r\nOK\r\n> "},
			},
			expected: ErrNoResponse,
			writes:   3,
		},
	}

	for _, test := range tests {
		d, m := newTestDevice(test.script...)

		res, err := d.FetchPage("example.com", "/")
		if !errors.Is(err, test.expected) {
			t.Errorf("%s: got %v, want %v", test.summary, err, test.expected)
		}
		if g, e := res, ""; g != e {
			t.Errorf("%s: got %q, want %q", test.summary, g, e)
		}
		if g, e := len(m.written), test.writes; g != e {
			t.Errorf("%s: got %d writes, want %d", test.summary, g, e)
		}

		d, _ = newTestDevice(test.script...)
		if g, e := d.GetPage("example.com", "/"), ""; g != e {
			t.Errorf("%s: got %q, want %q", test.summary, g, e)
		}
	}
}
