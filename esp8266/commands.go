package esp8266

// Basic AT commands
const (
	// Test that the device is working.
	Test = ""

	// Restart the device.
	Restart = "+RST"

	// Version info for the firmware.
	Version = "+GMR"

	// EchoConfigOn sets echo of AT commands on.
	EchoConfigOn = "E1"

	// EchoConfigOff sets echo of AT commands off.
	EchoConfigOff = "E0"
)

// WiFi commands.
const (
	// WifiMode sets the wifi mode.
	WifiMode = "+CWMODE"

	// ConnectAP connects to an access point.
	ConnectAP = "+CWJAP"

	// DisconnectAP disconnects from the current access point.
	DisconnectAP = "+CWQAP"

	// GetLocalIP returns the local IP addresses.
	GetLocalIP = "+CIFSR"
)

// WifiModeClient configures the module as a station.
const WifiModeClient = "1"

// TCP/IP commands
const (
	// TCPStatus returns the connection status.
	TCPStatus = "+CIPSTATUS"

	// DomainLookup resolves a host name.
	DomainLookup = "+CIPDOMAIN"

	// TCPConnect establishes a TCP or UDP connection.
	TCPConnect = "+CIPSTART"

	// TCPSend announces how many bytes of payload follow.
	TCPSend = "+CIPSEND"

	// TCPClose closes the connection.
	TCPClose = "+CIPCLOSE"
)

// Reply tokens the firmware sends.
const (
	replyOK        = "OK\r\n"
	replyConnected = "WIFI CONNECTED"
	replyGotIP     = "WIFI GOT IP"
	replyPrompt    = "> "
	replySendOK    = "SEND OK\r\n"

	statusLabel = "STATUS:"
	domainLabel = "+CIPDOMAIN:"
	staIPLabel  = "+CIFSR:STAIP,"

	// ipdMarker introduces every chunk of received socket data:
	// "\r\n+IPD,<len>:<payload>".
	ipdMarker = "\r\n+IPD"
)

const httpPort = 80
