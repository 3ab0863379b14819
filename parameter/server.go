package parameter

import "time"

// Server - HTTP
const (
	// ServerAddress is the default listen address
	ServerAddress = ":8080"

	// ServerReadTimeout bounds request read time
	ServerReadTimeout = 15 * time.Second

	// ServerWriteTimeout bounds response write time
	ServerWriteTimeout = 15 * time.Second

	// ServerShutdownTimeout is grace period for in-flight requests on stop
	ServerShutdownTimeout = 5 * time.Second

	// ServerMaxBodyBytes caps JSON request bodies
	ServerMaxBodyBytes = 64 * 1024
)

// Server - WebSocket
const (
	// WSReadBufferSize is the upgrader read buffer
	WSReadBufferSize = 1024

	// WSWriteBufferSize is the upgrader write buffer
	WSWriteBufferSize = 1024

	// WSWriteWait is the deadline for a single outbound frame
	WSWriteWait = 5 * time.Second

	// WSPongWait is max silence before the peer is considered gone
	WSPongWait = 60 * time.Second

	// WSPingPeriod must be shorter than WSPongWait
	WSPingPeriod = (WSPongWait * 9) / 10

	// WSSendQueueSize is buffered outbound results per session
	WSSendQueueSize = 32
)
