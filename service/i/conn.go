package i

// Conn is the outbound half of a client connection.
type Conn interface {
	// Send queues one protocol line for the client. It must not block on a
	// slow peer.
	Send(line string)

	// Close tears the connection down. It is safe to call more than once.
	Close() error
}
