package esp8266

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestSendCommand(t *testing.T) {
	tests := []struct {
		summary  string
		script   []reply
		expected string
	}{
		{
			summary:  "normal",
			script:   []reply{{cmd: "AT\r\n", res: "\r\nOK\r\n"}},
			expected: "\r\nOK\r\n",
		},
		{
			summary:  "silent module",
			script:   nil,
			expected: "",
		},
		{
			summary:  "unsolicited line next to the reply",
			script:   []reply{{cmd: "AT\r\n", res: "WIFI DISCONNECT\r\n\r\nOK\r\n"}},
			expected: "WIFI DISCONNECT\r\n\r\nOK\r\n",
		},
	}

	for _, test := range tests {
		d, m := newTestDevice(test.script...)

		res := d.SendCommand("AT\r\n", 700*time.Millisecond)
		if g, e := res, test.expected; g != e {
			t.Errorf("%s: got %q, want %q", test.summary, g, e)
		}

		if g, e := len(m.written), 1; g != e {
			t.Fatalf("%s: got %d writes, want %d", test.summary, g, e)
		}
		if g, e := m.written[0], "AT\r\n"; g != e {
			t.Errorf("%s: got %q, want %q", test.summary, g, e)
		}

		if g, e := len(m.sleeps), 2; g != e {
			t.Fatalf("%s: got %d sleeps, want %d", test.summary, g, e)
		}
		if g, e := m.sleeps[0], 700*time.Millisecond; g != e {
			t.Errorf("%s: got %v, want %v", test.summary, g, e)
		}
		if g, e := m.sleeps[1], 300*time.Millisecond; g != e {
			t.Errorf("%s: got %v, want %v", test.summary, g, e)
		}
	}
}

func TestSendCommandNoLeak(t *testing.T) {
	d, _ := newTestDevice(
		reply{cmd: "AT+CWJAP", res: "WIFI CONNECTED\r\n", late: "WIFI GOT IP\r\n\r\nOK\r\n"},
		reply{cmd: "AT+CIPSTATUS", res: "STATUS:2\r\n\r\nOK\r\n"},
	)

	res := d.SendCommand("AT+CWJAP=\"a\",\"b\"\r\n", time.Second)
	if g, e := res, "WIFI CONNECTED\r\n"; g != e {
		t.Errorf("got %q, want %q", g, e)
	}

	// noise between commands is dropped as well
	d.Sink().Write([]byte("\r\n+IPD,3:abc"))

	res = d.SendCommand("AT+CIPSTATUS\r\n", time.Second)
	if g, e := res, "STATUS:2\r\n\r\nOK\r\n"; g != e {
		t.Errorf("got %q, want %q", g, e)
	}
}

func TestSetQueryExecute(t *testing.T) {
	d, m := newTestDevice()

	d.Execute(Version)
	d.Query(WifiMode)
	d.Set(WifiMode, WifiModeClient)

	expected := []string{"AT+GMR\r\n", "AT+CWMODE?\r\n", "AT+CWMODE=1\r\n"}
	if g, e := len(m.written), len(expected); g != e {
		t.Fatalf("got %d writes, want %d", g, e)
	}
	for i := range expected {
		if g, e := m.written[i], expected[i]; g != e {
			t.Errorf("got %q, want %q", g, e)
		}
	}
}

func TestQuote(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{input: "home", expected: `"home"`},
		{input: `a"b`, expected: `"a\"b"`},
		{input: `x,y\z`, expected: `"x\,y\\z"`},
		{input: "", expected: `""`},
	}

	for _, test := range tests {
		if g, e := quote(test.input), test.expected; g != e {
			t.Errorf("got %s, want %s", g, e)
		}
	}
}

func TestHandleInterruptLargeBurst(t *testing.T) {
	d, m := newTestDevice()
	m.pending = []byte(strings.Repeat("0123456789", 100))

	d.HandleInterrupt()

	if g, e := string(d.capture.swap()), strings.Repeat("0123456789", 100); g != e {
		t.Errorf("got %d bytes, want %d", len(g), len(e))
	}
	if g, e := m.Buffered(), 0; g != e {
		t.Errorf("got %d, want %d", g, e)
	}
}

func TestCaptureBufferConcurrentSwap(t *testing.T) {
	var c captureBuffer

	const writers = 4
	const perWriter = 1000

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				c.Write([]byte{'x'})
			}
		}()
	}

	done := make(chan struct{})
	total := 0
	go func() {
		wg.Wait()
		close(done)
	}()

loop:
	for {
		select {
		case <-done:
			break loop
		default:
			total += len(c.swap())
		}
	}
	total += len(c.swap())

	if g, e := total, writers*perWriter; g != e {
		t.Errorf("got %d, want %d", g, e)
	}
}
