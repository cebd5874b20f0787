package lifecycle

import (
	"context"

	"tankarena/server/logging"
)

const (
	// EventSessionConnected is emitted when a client completes the version
	// handshake.
	EventSessionConnected logging.EventType = "lifecycle.session_connected"
	// EventSessionRejected is emitted when the handshake fails.
	EventSessionRejected logging.EventType = "lifecycle.session_rejected"
	// EventSessionDisconnected is emitted when a session goes away.
	EventSessionDisconnected logging.EventType = "lifecycle.session_disconnected"
)

// SessionConnectedPayload captures handshake metadata for a new session.
type SessionConnectedPayload struct {
	RemoteAddr string `json:"remoteAddr,omitempty"`
	Version    int    `json:"version"`
}

// SessionRejectedPayload captures why a handshake was refused.
type SessionRejectedPayload struct {
	Reason        string `json:"reason"`
	ClientVersion int    `json:"clientVersion"`
}

// SessionDisconnectedPayload captures the reason a session ended.
type SessionDisconnectedPayload struct {
	Reason string `json:"reason"`
}

// SessionConnected publishes a session connect event.
func SessionConnected(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload SessionConnectedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSessionConnected,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: "lifecycle",
		Payload:  payload,
		Extra:    extra,
	})
}

// SessionRejected publishes a handshake refusal event.
func SessionRejected(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload SessionRejectedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSessionRejected,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: "lifecycle",
		Payload:  payload,
		Extra:    extra,
	})
}

// SessionDisconnected publishes a session disconnect event.
func SessionDisconnected(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload SessionDisconnectedPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventSessionDisconnected,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: "lifecycle",
		Payload:  payload,
		Extra:    extra,
	})
}
