package httpclient

import "context"

// Connector is the abstract "establish a duplex stream to remote host"
// capability the client is built against (spec.md §6). Plain TCP, TLS,
// and Unix-socket connectors all implement this; none of them are part
// of this package.
type Connector interface {
	// Connect establishes a new duplex stream, honoring ctx's deadline.
	Connect(ctx context.Context) (DuplexStream, error)
	// RemoteHost describes the remote endpoint for error messages and
	// metrics labels.
	RemoteHost() string
	// IsDebug enables verbose tracing on the read/write loops.
	IsDebug() bool
	// Reunite is the inverse of whatever split the connector used
	// internally to hand out independent read/write halves; it is used
	// to return the single upgraded stream to the caller after a
	// WebSocket handoff.
	Reunite(read ReadHalf, write WriteHalf) DuplexStream
}

// DisconnectHandle is exposed to the caller on a WebSocket upgrade, fenced
// to the specific connection it was minted for.
type DisconnectHandle interface {
	// Disconnect tears down the connection if it is still the current
	// one; a no-op otherwise (the connection id fences stale calls).
	Disconnect()
	// WebSocketDisconnect is the disconnect path taken after a
	// successful upgrade, distinguished for metrics purposes (the
	// websocket_is_disconnected counter vs tcp_disconnect).
	WebSocketDisconnect()
}
