package chathub

import "cloudchat/backend/internal/models"

// Client is the interface for any type of connection (e.g., WebSocket,
// Telegram). It abstracts the underlying transport, allowing the hub to
// manage different client types uniformly.
type Client interface {
	// GetUserID returns the anonymous connection id, stable for the
	// connection's lifetime.
	GetUserID() string

	// GetSendChannel returns the channel through which the hub delivers
	// events destined for this client. It is a send-only channel.
	GetSendChannel() chan<- models.ServerEvent

	// Run starts the client's read and write loops.
	Run()
	// Close shuts down the client's outgoing side. Called only by the hub,
	// after the client has been unregistered.
	Close()
}

// InboundEvent pairs a decoded client event with the connection it came
// from. Transports push these into the hub's incoming channel.
type InboundEvent struct {
	SenderID string
	Event    models.ClientEvent
}
