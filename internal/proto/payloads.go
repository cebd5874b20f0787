package proto

// Team identifies one of the two sides of a match.
type Team string

const (
	TeamBlue Team = "blue"
	TeamRed  Team = "red"
)

// Checksum is the truncated digest carried by snapshots and deltas.
type Checksum uint64

// ShapeKind discriminates static map geometry.
type ShapeKind string

const (
	ShapeRect   ShapeKind = "rect"
	ShapeCircle ShapeKind = "circle"
)

// Shape is one piece of static geometry. Rectangles are axis aligned with
// X/Y as the top-left origin; circles use X/Y as the center.
type Shape struct {
	Kind   ShapeKind `json:"kind"`
	X      float64   `json:"x"`
	Y      float64   `json:"y"`
	Width  float64   `json:"width,omitempty"`
	Height float64   `json:"height,omitempty"`
	Radius float64   `json:"radius,omitempty"`
}

// SpawnPoint places one player of the given team at round start.
type SpawnPoint struct {
	Team Team    `json:"team"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// MapData is the immutable static geometry of a match, sent once at game
// start.
type MapData struct {
	Name        string       `json:"name"`
	Width       float64      `json:"width"`
	Height      float64      `json:"height"`
	Shapes      []Shape      `json:"shapes"`
	SpawnPoints []SpawnPoint `json:"spawnPoints"`
}

// PlayerSummary describes a room member before a game exists.
type PlayerSummary struct {
	PlayerID uint64 `json:"playerId"`
	Nickname string `json:"nickname"`
	Team     Team   `json:"team"`
	IsAI     bool   `json:"isAi"`
}

// RoomPayload is the full lobby state, revisioned by StateID.
type RoomPayload struct {
	RoomCode string          `json:"roomCode"`
	StateID  uint64          `json:"stateId"`
	Phase    string          `json:"phase"`
	Players  []PlayerSummary `json:"players"`
	Rounds   int             `json:"rounds"`
	MapName  string          `json:"mapName"`
}

// PlayerState is the dynamic wire state of one player at a tick.
type PlayerState struct {
	PlayerID  uint64   `json:"playerId"`
	Nickname  string   `json:"nickname"`
	X         float64  `json:"x"`
	Y         float64  `json:"y"`
	Rotation  float64  `json:"rotation"`
	Health    float64  `json:"health"`
	Team      Team     `json:"team"`
	IsAI      bool     `json:"isAi"`
	Inventory []string `json:"inventory,omitempty"`
}

// ProjectileState is the dynamic wire state of one projectile at a tick.
type ProjectileState struct {
	ProjectileID uint64  `json:"projectileId"`
	OwnerID      uint64  `json:"ownerId"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	DirX         float64 `json:"dirX"`
	DirY         float64 `json:"dirY"`
	Speed        float64 `json:"speed"`
}

// GameSnapshot is the complete dynamic state at a tick.
type GameSnapshot struct {
	GameID      string            `json:"gameId"`
	Tick        uint64            `json:"tick"`
	Players     []PlayerState     `json:"players"`
	Projectiles []ProjectileState `json:"projectiles"`
	Checksum    Checksum          `json:"checksum"`
}

// GameDelta expresses the state at Tick as changes against BaseTick.
// Removed entities appear in the tombstone lists; absence from the updated
// lists means unchanged, never removed.
type GameDelta struct {
	GameID             string            `json:"gameId"`
	Tick               uint64            `json:"tick"`
	BaseTick           uint64            `json:"baseTick"`
	PlayersUpdated     []PlayerState     `json:"playersUpdated,omitempty"`
	PlayersRemoved     []uint64          `json:"playersRemoved,omitempty"`
	ProjectilesUpdated []ProjectileState `json:"projectilesUpdated,omitempty"`
	ProjectilesRemoved []uint64          `json:"projectilesRemoved,omitempty"`
	Checksum           Checksum          `json:"checksum"`
}
