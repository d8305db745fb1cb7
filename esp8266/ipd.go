package esp8266

import (
	"bytes"
	"strings"
)

// CleanPage removes the "\r\n+IPD,<len>:" headers the module puts in front
// of every chunk of received socket data, leaving only payload bytes in
// their original order. A header that never reaches its ':' is removed
// together with everything after it.
//
// The result contains no header, so cleaning it again changes nothing.
func CleanPage(page string) string {
	marker := []byte(ipdMarker)
	b := []byte(page)
	pos := 0
	for {
		start := bytes.Index(b[pos:], marker)
		if start < 0 {
			break
		}
		start += pos

		length := bytes.IndexByte(b[start:], ':')
		if length < 0 {
			b = b[:start]
			break
		}
		b = append(b[:start], b[start+length+1:]...)

		// the bytes joined at start may spell out a new header
		pos = start - (len(marker) - 1)
		if pos < 0 {
			pos = 0
		}
	}
	return string(b)
}

// cutIncomplete splits raw in front of a trailing header whose ':' has not
// arrived yet, so it can be cleaned once the rest of it is captured.
func cutIncomplete(raw string) (complete, rest string) {
	i := strings.LastIndex(raw, ipdMarker)
	if i < 0 || 0 <= strings.IndexByte(raw[i:], ':') {
		return raw, ""
	}
	return raw[:i], raw[i:]
}
