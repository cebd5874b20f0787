package server

import (
	"time"

	"tankarena/server/internal/proto"
)

// SessionState tracks where a connection is in its lifecycle. The handshake
// happens before a session exists, so the zero state is already connected.
type SessionState string

const (
	StateConnected SessionState = "connected"
	StateInRoom    SessionState = "in_room"
)

// allowedInState reports whether a client message type is legal for a
// session in the given state. Handshake and heartbeat traffic is handled
// before this check.
func allowedInState(state SessionState, msgType string) bool {
	switch msgType {
	case proto.TypeRoomCreate, proto.TypeRoomJoin:
		return state == StateConnected
	case proto.TypeRoomLeave, proto.TypeStartCountdown, proto.TypeInput, proto.TypeResyncRequest:
		return state == StateInRoom
	case proto.TypeHeartbeat, proto.TypeDisconnect:
		return true
	default:
		return false
	}
}

// session is the hub-side record for one connected client.
type session struct {
	id       string
	sub      *subscriber
	state    SessionState
	nickname string
	roomCode string

	connectedAt   time.Time
	lastHeartbeat time.Time
	lastRTT       time.Duration
}
