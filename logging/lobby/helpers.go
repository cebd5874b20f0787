package lobby

import (
	"context"

	"tankarena/server/logging"
)

const (
	// EventRoomCreated is emitted when a room is opened.
	EventRoomCreated logging.EventType = "lobby.room_created"
	// EventRoomClosed is emitted when a room is torn down.
	EventRoomClosed logging.EventType = "lobby.room_closed"
	// EventMemberJoined is emitted when a player enters a room.
	EventMemberJoined logging.EventType = "lobby.member_joined"
	// EventMemberLeft is emitted when a player leaves a room.
	EventMemberLeft logging.EventType = "lobby.member_left"
	// EventCountdownStarted is emitted when the pre-game countdown begins.
	EventCountdownStarted logging.EventType = "lobby.countdown_started"
	// EventCountdownCancelled is emitted when the countdown aborts.
	EventCountdownCancelled logging.EventType = "lobby.countdown_cancelled"
)

// RoomPayload captures room identity for lobby events.
type RoomPayload struct {
	RoomCode string `json:"roomCode"`
	Members  int    `json:"members"`
}

// MemberPayload captures one membership change.
type MemberPayload struct {
	RoomCode string `json:"roomCode"`
	PlayerID uint64 `json:"playerId"`
	Nickname string `json:"nickname"`
}

// ClosedPayload captures why a room went away.
type ClosedPayload struct {
	RoomCode string `json:"roomCode"`
	Reason   string `json:"reason"`
}

// CountdownPayload captures countdown parameters.
type CountdownPayload struct {
	RoomCode string `json:"roomCode"`
	Seconds  int    `json:"seconds"`
}

func publish(ctx context.Context, pub logging.Publisher, eventType logging.EventType, severity logging.Severity, actor logging.EntityRef, payload any, extra map[string]any) {
	if pub == nil {
		return
	}
	pub.Publish(ctx, logging.Event{
		Type:     eventType,
		Actor:    actor,
		Severity: severity,
		Category: "lobby",
		Payload:  payload,
		Extra:    extra,
	})
}

// RoomCreated publishes a room creation event.
func RoomCreated(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload RoomPayload, extra map[string]any) {
	publish(ctx, pub, EventRoomCreated, logging.SeverityInfo, actor, payload, extra)
}

// RoomClosed publishes a room teardown event.
func RoomClosed(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload ClosedPayload, extra map[string]any) {
	publish(ctx, pub, EventRoomClosed, logging.SeverityInfo, actor, payload, extra)
}

// MemberJoined publishes a membership join event.
func MemberJoined(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload MemberPayload, extra map[string]any) {
	publish(ctx, pub, EventMemberJoined, logging.SeverityInfo, actor, payload, extra)
}

// MemberLeft publishes a membership leave event.
func MemberLeft(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload MemberPayload, extra map[string]any) {
	publish(ctx, pub, EventMemberLeft, logging.SeverityInfo, actor, payload, extra)
}

// CountdownStarted publishes a countdown start event.
func CountdownStarted(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload CountdownPayload, extra map[string]any) {
	publish(ctx, pub, EventCountdownStarted, logging.SeverityInfo, actor, payload, extra)
}

// CountdownCancelled publishes a countdown abort event.
func CountdownCancelled(ctx context.Context, pub logging.Publisher, actor logging.EntityRef, payload CountdownPayload, extra map[string]any) {
	publish(ctx, pub, EventCountdownCancelled, logging.SeverityInfo, actor, payload, extra)
}
