package proto

// Version is the wire envelope version carried in every message.
const Version = 1

// APIVersion is the handshake protocol revision. A connect carrying any
// other value is refused before a session exists.
const APIVersion uint16 = 1

// Client message types.
const (
	TypeConnect        = "connect"
	TypeDisconnect     = "disconnect"
	TypeRoomCreate     = "roomCreate"
	TypeRoomJoin       = "roomJoin"
	TypeRoomLeave      = "roomLeave"
	TypeStartCountdown = "roomStartCountdown"
	TypeInput          = "input"
	TypeResyncRequest  = "resyncRequest"
	TypeHeartbeat      = "heartbeat"
)

// Server message types.
const (
	TypeConnectOk          = "connectOk"
	TypeConnectError       = "connectError"
	TypeServerError        = "serverError"
	TypeRoomCreateOk       = "roomCreateOk"
	TypeRoomCreateError    = "roomCreateError"
	TypeRoomJoinOk         = "roomJoinOk"
	TypeRoomJoinError      = "roomJoinError"
	TypeRoomState          = "roomState"
	TypeRoomDelta          = "roomDelta"
	TypeRoomLeaveOk        = "roomLeaveOk"
	TypeRoomLeaveError     = "roomLeaveError"
	TypeCountdownStarted   = "countdownStarted"
	TypeCountdownTick      = "countdownTick"
	TypeCountdownFinished  = "countdownFinished"
	TypeCountdownCancelled = "countdownCancelled"
	TypeGameStart          = "gameStart"
	TypeGameEnd            = "gameEnd"
	TypeRoundStart         = "roundStart"
	TypeRoundEnd           = "roundEnd"
	TypeGameMap            = "gameMap"
	TypeGameSnapshot       = "gameSnapshot"
	TypeGameDelta          = "gameDelta"
	TypeInputError         = "inputError"
	TypeHeartbeatAck       = "heartbeat"
)

// InputPayload carries the per-tick intent of one player: a movement axis,
// an aim point in map coordinates, and whether the fire control is pressed.
type InputPayload struct {
	MoveX float64 `json:"moveX"`
	MoveY float64 `json:"moveY"`
	AimX  float64 `json:"aimX"`
	AimY  float64 `json:"aimY"`
	Fire  bool    `json:"fire"`
}

// ClientMessage is the single envelope decoded from client traffic. Fields
// beyond Type are populated depending on the message type.
type ClientMessage struct {
	Ver        int           `json:"ver,omitempty"`
	Type       string        `json:"type"`
	Nickname   string        `json:"nickname,omitempty"`
	APIVersion uint16        `json:"apiVersion,omitempty"`
	RoomCode   string        `json:"roomCode,omitempty"`
	MapName    string        `json:"mapName,omitempty"`
	BestOf     int           `json:"bestOf,omitempty"`
	Seconds    int           `json:"seconds,omitempty"`
	Tick       uint64        `json:"tick,omitempty"`
	Input      *InputPayload `json:"input,omitempty"`
	GameID     string        `json:"gameId,omitempty"`
	SentAt     int64         `json:"sentAt,omitempty"`
}

type ConnectOkMessage struct {
	Ver       int    `json:"ver"`
	Type      string `json:"type"`
	SessionID string `json:"sessionId"`
}

type ConnectErrorMessage struct {
	Ver  int       `json:"ver"`
	Type string    `json:"type"`
	Code ErrorCode `json:"code"`
}

type ServerErrorMessage struct {
	Ver     int       `json:"ver"`
	Type    string    `json:"type"`
	Code    ErrorCode `json:"code"`
	Message string    `json:"message,omitempty"`
}

type RoomCreateOkMessage struct {
	Ver      int         `json:"ver"`
	Type     string      `json:"type"`
	RoomCode string      `json:"roomCode"`
	Room     RoomPayload `json:"room"`
}

type RoomCreateErrorMessage struct {
	Ver  int       `json:"ver"`
	Type string    `json:"type"`
	Code ErrorCode `json:"code"`
}

type RoomJoinOkMessage struct {
	Ver     int         `json:"ver"`
	Type    string      `json:"type"`
	StateID uint64      `json:"stateId"`
	Room    RoomPayload `json:"room"`
}

type RoomJoinErrorMessage struct {
	Ver  int       `json:"ver"`
	Type string    `json:"type"`
	Code ErrorCode `json:"code"`
}

type RoomStateMessage struct {
	Ver  int         `json:"ver"`
	Type string      `json:"type"`
	Room RoomPayload `json:"room"`
}

type RoomDeltaMessage struct {
	Ver      int             `json:"ver"`
	Type     string          `json:"type"`
	RoomCode string          `json:"roomCode"`
	StateID  uint64          `json:"stateId"`
	Joined   []PlayerSummary `json:"joined,omitempty"`
	Left     []uint64        `json:"left,omitempty"`
}

type RoomLeaveOkMessage struct {
	Ver  int    `json:"ver"`
	Type string `json:"type"`
}

type RoomLeaveErrorMessage struct {
	Ver  int       `json:"ver"`
	Type string    `json:"type"`
	Code ErrorCode `json:"code"`
}

type CountdownStartedMessage struct {
	Ver     int    `json:"ver"`
	Type    string `json:"type"`
	Seconds int    `json:"seconds"`
}

type CountdownTickMessage struct {
	Ver         int    `json:"ver"`
	Type        string `json:"type"`
	SecondsLeft int    `json:"secondsLeft"`
}

type CountdownFinishedMessage struct {
	Ver  int    `json:"ver"`
	Type string `json:"type"`
}

type CountdownCancelledMessage struct {
	Ver  int    `json:"ver"`
	Type string `json:"type"`
}

type GameStartMessage struct {
	Ver    int    `json:"ver"`
	Type   string `json:"type"`
	GameID string `json:"gameId"`
}

type GameEndMessage struct {
	Ver    int    `json:"ver"`
	Type   string `json:"type"`
	GameID string `json:"gameId"`
	Winner Team   `json:"winner,omitempty"`
}

type RoundStartMessage struct {
	Ver   int    `json:"ver"`
	Type  string `json:"type"`
	Round int    `json:"round"`
}

type RoundEndMessage struct {
	Ver       int    `json:"ver"`
	Type      string `json:"type"`
	Round     int    `json:"round"`
	Winner    Team   `json:"winner,omitempty"`
	BlueScore int    `json:"blueScore"`
	RedScore  int    `json:"redScore"`
}

type GameMapMessage struct {
	Ver    int     `json:"ver"`
	Type   string  `json:"type"`
	GameID string  `json:"gameId"`
	Map    MapData `json:"map"`
}

type GameSnapshotMessage struct {
	Ver  int    `json:"ver"`
	Type string `json:"type"`
	GameSnapshot
}

type GameDeltaMessage struct {
	Ver  int    `json:"ver"`
	Type string `json:"type"`
	GameDelta
}

type InputErrorMessage struct {
	Ver  int       `json:"ver"`
	Type string    `json:"type"`
	Tick uint64    `json:"tick"`
	Code ErrorCode `json:"code"`
}

type HeartbeatAckMessage struct {
	Ver        int    `json:"ver"`
	Type       string `json:"type"`
	ServerTime int64  `json:"serverTime"`
	ClientTime int64  `json:"clientTime"`
	RTTMillis  int64  `json:"rtt"`
}
