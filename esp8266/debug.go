package esp8266

import (
	"fmt"
)

var (
	debug = false
)

// Debug enables tracing of every command and response on stdout.
func Debug(b bool) {
	debug = b
}

func dbgPrintf(format string, a ...interface{}) {
	if debug {
		fmt.Printf(format, a...)
	}
}

// abbrev keeps long payloads readable in traces.
func abbrev(str string) string {
	if 100 < len(str) {
		return str[:47] + "..." + str[len(str)-50:]
	}
	return str
}
