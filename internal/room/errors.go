package room

import (
	"errors"

	"tankarena/server/internal/proto"
)

var (
	ErrRoomCapacity     = errors.New("room table full")
	ErrUnknownCode      = errors.New("unknown room code")
	ErrRoomFull         = errors.New("room full")
	ErrGameStarted      = errors.New("game already started")
	ErrInvalidState     = errors.New("operation invalid in current phase")
	ErrNotMember        = errors.New("session is not a room member")
	ErrAlreadyMember    = errors.New("session already in a room")
	ErrNotEnoughPlayers = errors.New("not enough players")
	ErrInvalidDuration  = errors.New("invalid countdown duration")
)

// CodeFor maps a room error onto its wire error code.
func CodeFor(err error) proto.ErrorCode {
	switch {
	case errors.Is(err, ErrRoomCapacity):
		return proto.ErrRoomCapacity
	case errors.Is(err, ErrUnknownCode):
		return proto.ErrUnknownCode
	case errors.Is(err, ErrRoomFull):
		return proto.ErrRoomFull
	case errors.Is(err, ErrGameStarted):
		return proto.ErrGameStarted
	case errors.Is(err, ErrInvalidState):
		return proto.ErrInvalidState
	case errors.Is(err, ErrNotMember):
		return proto.ErrNotInRoom
	case errors.Is(err, ErrAlreadyMember):
		return proto.ErrAlreadyInRoom
	case errors.Is(err, ErrNotEnoughPlayers):
		return proto.ErrNotEnoughPlayers
	case errors.Is(err, ErrInvalidDuration):
		return proto.ErrInvalidDuration
	default:
		return proto.ErrGeneral
	}
}
