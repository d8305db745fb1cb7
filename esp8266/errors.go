package esp8266

import (
	"fmt"
	"strings"
)

// Error is a driver failure class. Every failure collapses to a boolean or
// an empty string at the caller-facing API; the Err variants keep the class.
type Error uint8

const (
	// ErrNoResponse means the wait window closed with nothing captured.
	ErrNoResponse Error = 0x01
	// ErrNegativeAck means the module replied without the expected token.
	ErrNegativeAck Error = 0x02
	// ErrMalformedStatus means the status reply had no readable status field.
	ErrMalformedStatus Error = 0x03
	// ErrNotReady means the module did not prompt for payload.
	ErrNotReady Error = 0x04

	ErrNotImplemented Error = 0xF0
)

func (err Error) Error() string {
	switch err {
	case ErrNoResponse:
		return "esp8266: no response"
	case ErrNegativeAck:
		return "esp8266: unexpected response"
	case ErrMalformedStatus:
		return "esp8266: malformed status"
	case ErrNotReady:
		return "esp8266: not ready to send"
	case ErrNotImplemented:
		return "esp8266: not implemented"
	}
	return fmt.Sprintf("esp8266 error: 0x%02X", uint8(err))
}

// expect classifies a response: nil if any token is present, ErrNoResponse
// if the module stayed silent, ErrNegativeAck otherwise.
func expect(res string, tokens ...string) error {
	for _, t := range tokens {
		if strings.Contains(res, t) {
			return nil
		}
	}
	return expectErr(res)
}

// expectErr classifies a response already known to lack its token.
func expectErr(res string) error {
	if strings.TrimSpace(res) == "" {
		return ErrNoResponse
	}
	return ErrNegativeAck
}
