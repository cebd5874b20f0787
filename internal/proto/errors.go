package proto

// ErrorCode is the machine-readable code attached to error messages.
type ErrorCode string

const (
	// Connect errors. Version mismatch is fatal for the connection.
	ErrVersionMismatch ErrorCode = "version_mismatch"
	ErrServerFull      ErrorCode = "server_full"

	// Room errors, reported only to the requesting session.
	ErrRoomCapacity  ErrorCode = "room_capacity"
	ErrUnknownCode   ErrorCode = "unknown_code"
	ErrRoomFull      ErrorCode = "room_full"
	ErrInvalidState  ErrorCode = "invalid_state"
	ErrGameStarted   ErrorCode = "game_started"
	ErrNotInRoom     ErrorCode = "not_in_room"
	ErrAlreadyInRoom ErrorCode = "already_in_room"

	// Countdown errors, surfaced as serverError.
	ErrInvalidDuration  ErrorCode = "invalid_duration"
	ErrNotEnoughPlayers ErrorCode = "not_enough_players"

	// Per-packet input errors. Never interrupt the tick loop.
	ErrStaleTick     ErrorCode = "stale_tick"
	ErrThrottled     ErrorCode = "throttled"
	ErrIllegalAction ErrorCode = "illegal_action"

	ErrGeneral ErrorCode = "general"
)
