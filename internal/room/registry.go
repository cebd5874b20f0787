package room

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"tankarena/server/internal/game"
	"tankarena/server/internal/proto"
	"tankarena/server/logging"
	loglobby "tankarena/server/logging/lobby"
)

// Registry owns the room table. Lookups take the read lock; room internals
// are guarded by each room's own mutex so a slow game never blocks the
// table.
type Registry struct {
	cfg  Config
	deps Deps

	mu    sync.RWMutex
	rooms map[string]*Room
	rng   *rand.Rand

	stop     chan struct{}
	stopOnce sync.Once
}

// NewRegistry constructs an empty registry.
func NewRegistry(cfg Config, deps Deps) *Registry {
	return &Registry{
		cfg:   cfg.normalized(),
		deps:  deps.normalized(),
		rooms: make(map[string]*Room),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		stop:  make(chan struct{}),
	}
}

// Create opens a room, joins the creator and starts the room's tick loop.
// Empty mapName selects the default map; zero bestOf selects the configured
// default.
func (reg *Registry) Create(sessionID, nickname, mapName string, bestOf int) (*Room, Member, proto.RoomPayload, error) {
	if mapName == "" {
		mapName = game.DefaultMapName
	}
	mapDef, err := game.MapByName(mapName)
	if err != nil {
		return nil, Member{}, proto.RoomPayload{}, ErrInvalidState
	}
	if bestOf == 0 {
		bestOf = reg.cfg.BestOf
	}
	if bestOf < 1 || bestOf > 7 || bestOf%2 == 0 {
		return nil, Member{}, proto.RoomPayload{}, ErrInvalidState
	}

	reg.mu.Lock()
	if len(reg.rooms) >= reg.cfg.MaxRooms {
		reg.mu.Unlock()
		return nil, Member{}, proto.RoomPayload{}, ErrRoomCapacity
	}
	code := generateCode(reg.rng)
	for {
		if _, taken := reg.rooms[code]; !taken {
			break
		}
		code = generateCode(reg.rng)
	}
	r := newRoom(code, mapName, mapDef, bestOf, reg.cfg, reg.deps)
	reg.rooms[code] = r
	count := len(reg.rooms)
	reg.mu.Unlock()

	member, payload, err := r.Join(sessionID, nickname)
	if err != nil {
		reg.Remove(code, "creator_join_failed")
		return nil, Member{}, proto.RoomPayload{}, err
	}
	go r.Run()

	reg.deps.Metrics.Store("rooms_active", uint64(count))
	loglobby.RoomCreated(context.Background(), reg.deps.Publisher,
		logging.EntityRef{ID: code, Kind: logging.EntityKindRoom},
		loglobby.RoomPayload{RoomCode: code, Members: 1}, nil)
	reg.deps.Logger.Printf("room %s: created by %s (map %s, best of %d)", code, nickname, mapName, bestOf)

	return r, member, payload, nil
}

// Get returns the room for a code.
func (reg *Registry) Get(code string) (*Room, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	r, ok := reg.rooms[code]
	return r, ok
}

// Join adds a session to an existing room.
func (reg *Registry) Join(code, sessionID, nickname string) (*Room, Member, proto.RoomPayload, error) {
	r, ok := reg.Get(code)
	if !ok {
		return nil, Member{}, proto.RoomPayload{}, ErrUnknownCode
	}
	member, payload, err := r.Join(sessionID, nickname)
	if err != nil {
		return nil, Member{}, proto.RoomPayload{}, err
	}
	return r, member, payload, nil
}

// Remove tears a room down and drops it from the table.
func (reg *Registry) Remove(code, reason string) {
	reg.mu.Lock()
	r, ok := reg.rooms[code]
	if ok {
		delete(reg.rooms, code)
	}
	count := len(reg.rooms)
	reg.mu.Unlock()
	if !ok {
		return
	}
	r.Close()

	reg.deps.Metrics.Store("rooms_active", uint64(count))
	loglobby.RoomClosed(context.Background(), reg.deps.Publisher,
		logging.EntityRef{ID: code, Kind: logging.EntityKindRoom},
		loglobby.ClosedPayload{RoomCode: code, Reason: reason}, nil)
	reg.deps.Logger.Printf("room %s: closed (%s)", code, reason)
}

// Len returns the number of open rooms.
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// Diagnostics returns the status of every open room.
func (reg *Registry) Diagnostics() []Diagnostics {
	reg.mu.RLock()
	rooms := make([]*Room, 0, len(reg.rooms))
	for _, r := range reg.rooms {
		rooms = append(rooms, r)
	}
	reg.mu.RUnlock()

	out := make([]Diagnostics, 0, len(rooms))
	for _, r := range rooms {
		out = append(out, r.Diagnostics())
	}
	return out
}

// Run sweeps for abandoned rooms until the context is cancelled or Close is
// called.
func (reg *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(reg.cfg.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-reg.stop:
			return
		case now := <-ticker.C:
			reg.sweep(now)
		}
	}
}

func (reg *Registry) sweep(now time.Time) {
	reg.mu.RLock()
	var expired []string
	for code, r := range reg.rooms {
		if r.EmptyFor(reg.cfg.ReapGrace, now) {
			expired = append(expired, code)
		}
	}
	reg.mu.RUnlock()

	for _, code := range expired {
		reg.Remove(code, "empty")
	}
}

// Close stops the sweep loop and tears down every room.
func (reg *Registry) Close() {
	reg.stopOnce.Do(func() { close(reg.stop) })

	reg.mu.Lock()
	rooms := make([]*Room, 0, len(reg.rooms))
	for code, r := range reg.rooms {
		rooms = append(rooms, r)
		delete(reg.rooms, code)
	}
	reg.mu.Unlock()

	for _, r := range rooms {
		r.Close()
	}
}
