package network

import (
	"context"

	"tankarena/server/logging"
)

const (
	// EventResyncRequested is emitted when a client asks for a full snapshot.
	EventResyncRequested logging.EventType = "network.resync_requested"
	// EventResyncFallback is emitted when delta encoding falls back to a
	// full snapshot because the base tick left the journal window.
	EventResyncFallback logging.EventType = "network.resync_fallback"
	// EventRateLimited is emitted when an inbound message is dropped by the
	// per-session limiter.
	EventRateLimited logging.EventType = "network.rate_limited"
	// EventStateBacklogDrop is emitted when a slow subscriber overwrites an
	// unsent state frame.
	EventStateBacklogDrop logging.EventType = "network.state_backlog_drop"
)

// ResyncPayload captures which state a client wanted to rebuild from.
type ResyncPayload struct {
	GameID   string `json:"gameId"`
	BaseTick uint64 `json:"baseTick,omitempty"`
}

// RateLimitPayload captures the dropped message type.
type RateLimitPayload struct {
	MessageType string `json:"messageType"`
}

// ResyncRequested publishes a client resync request event.
func ResyncRequested(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ResyncPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventResyncRequested,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityInfo,
		Category: "network",
		Payload:  payload,
		Extra:    extra,
	})
}

// ResyncFallback publishes a delta-base-miss event.
func ResyncFallback(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, payload ResyncPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventResyncFallback,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityWarn,
		Category: "network",
		Payload:  payload,
		Extra:    extra,
	})
}

// RateLimited publishes a dropped-message event.
func RateLimited(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload RateLimitPayload, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventRateLimited,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: "network",
		Payload:  payload,
		Extra:    extra,
	})
}

// StateBacklogDrop publishes a slow-subscriber overwrite event.
func StateBacklogDrop(ctx context.Context, pub logging.Publisher, tick uint64, actor logging.EntityRef, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     EventStateBacklogDrop,
		Tick:     tick,
		Actor:    actor,
		Severity: logging.SeverityDebug,
		Category: "network",
		Extra:    extra,
	})
}
