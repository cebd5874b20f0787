// Package room owns the lobby lifecycle: code allocation, membership, the
// pre-game countdown and the per-room simulation loop that drives a started
// game and fans its state out to subscribers.
package room

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"tankarena/server/internal/game"
	"tankarena/server/internal/journal"
	"tankarena/server/internal/proto"
	"tankarena/server/internal/telemetry"
	"tankarena/server/logging"
	loglobby "tankarena/server/logging/lobby"
	logmatch "tankarena/server/logging/match"
	lognetwork "tankarena/server/logging/network"
)

// Messenger delivers wire messages to connected sessions. Control messages
// ride the reliable lane; state messages ride the latest-wins lane and may
// be coalesced for slow subscribers.
type Messenger interface {
	SendControl(sessionID string, msg any)
	SendState(sessionID string, msg any)
}

// Phase is the room lifecycle state.
type Phase string

const (
	PhaseWaiting   Phase = "waiting"
	PhaseCountdown Phase = "countdown"
	PhaseStarted   Phase = "started"
)

// Member is one connected player inside a room.
type Member struct {
	SessionID string
	PlayerID  uint64
	Nickname  string
	Team      proto.Team
}

// Deps bundles the ambient services every room shares.
type Deps struct {
	Messenger Messenger
	Logger    telemetry.Logger
	Metrics   telemetry.Metrics
	Publisher logging.Publisher
}

func (d Deps) normalized() Deps {
	if d.Logger == nil {
		d.Logger = telemetry.LoggerFunc(func(string, ...any) {})
	}
	if d.Metrics == nil {
		d.Metrics = telemetry.NopMetrics{}
	}
	if d.Publisher == nil {
		d.Publisher = logging.NopPublisher()
	}
	return d
}

// Room is one lobby and, once started, one running game. Mutations go
// through the mutex; the tick loop runs in its own goroutine and takes the
// same lock per step.
type Room struct {
	code       string
	cfg        Config
	deps       Deps
	mapName    string
	mapDef     proto.MapData
	bestOf     int
	maxPlayers int
	createdAt  time.Time

	mu           sync.Mutex
	phase        Phase
	stateID      uint64
	members      []*Member
	nextPlayerID uint64
	emptySince   time.Time

	cd *countdown

	gameID            string
	engine            *game.Engine
	journal           *journal.Journal
	policy            *journal.Policy
	lastBroadcastTick uint64
	needSnapshot      map[string]bool

	stop     chan struct{}
	stopOnce sync.Once
}

func newRoom(code, mapName string, mapDef proto.MapData, bestOf int, cfg Config, deps Deps) *Room {
	return &Room{
		code:         code,
		cfg:          cfg,
		deps:         deps,
		mapName:      mapName,
		mapDef:       mapDef,
		bestOf:       bestOf,
		maxPlayers:   len(mapDef.SpawnPoints),
		createdAt:    time.Now(),
		phase:        PhaseWaiting,
		nextPlayerID: 1,
		emptySince:   time.Now(),
		needSnapshot: make(map[string]bool),
		stop:         make(chan struct{}),
	}
}

// Code returns the join code.
func (r *Room) Code() string { return r.code }

// Phase returns the current lifecycle state.
func (r *Room) Phase() Phase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// Payload renders the lobby state for the wire.
func (r *Room) Payload() proto.RoomPayload {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.payloadLocked()
}

func (r *Room) payloadLocked() proto.RoomPayload {
	players := make([]proto.PlayerSummary, 0, len(r.members))
	for _, m := range r.members {
		players = append(players, proto.PlayerSummary{
			PlayerID: m.PlayerID,
			Nickname: m.Nickname,
			Team:     m.Team,
		})
	}
	return proto.RoomPayload{
		RoomCode: r.code,
		StateID:  r.stateID,
		Phase:    string(r.phase),
		Players:  players,
		Rounds:   r.bestOf,
		MapName:  r.mapName,
	}
}

// Members returns a snapshot of the current membership.
func (r *Room) Members() []Member {
	r.mu.Lock()
	defer r.mu.Unlock()
	members := make([]Member, 0, len(r.members))
	for _, m := range r.members {
		members = append(members, *m)
	}
	return members
}

// EmptyFor reports whether the room should be reaped. A Waiting room keeps
// its code for the grace period so members can rejoin after a transient
// disconnect; a room emptied in any other phase has no gameplay value left.
func (r *Room) EmptyFor(grace time.Duration, now time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.members) > 0 {
		return false
	}
	if r.phase != PhaseWaiting {
		return true
	}
	return now.Sub(r.emptySince) >= grace
}

// Close stops the tick loop. Idempotent.
func (r *Room) Close() {
	r.stopOnce.Do(func() { close(r.stop) })
}

// Join adds a session to the lobby and notifies the existing members. A
// join during the countdown is fine and the timer keeps running; only a
// started game refuses late arrivals.
func (r *Room) Join(sessionID, nickname string) (Member, proto.RoomPayload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase == PhaseStarted {
		return Member{}, proto.RoomPayload{}, ErrGameStarted
	}
	if len(r.members) >= r.maxPlayers {
		return Member{}, proto.RoomPayload{}, ErrRoomFull
	}
	for _, m := range r.members {
		if m.SessionID == sessionID {
			return Member{}, proto.RoomPayload{}, ErrAlreadyMember
		}
	}

	member := &Member{
		SessionID: sessionID,
		PlayerID:  r.nextPlayerID,
		Nickname:  nickname,
		Team:      r.pickTeamLocked(),
	}
	r.nextPlayerID++
	r.members = append(r.members, member)
	r.stateID++
	r.emptySince = time.Time{}

	r.broadcastControlLocked(proto.RoomDeltaMessage{
		Ver:      proto.Version,
		Type:     proto.TypeRoomDelta,
		RoomCode: r.code,
		StateID:  r.stateID,
		Joined: []proto.PlayerSummary{{
			PlayerID: member.PlayerID,
			Nickname: member.Nickname,
			Team:     member.Team,
		}},
	}, sessionID)

	loglobby.MemberJoined(context.Background(), r.deps.Publisher,
		logging.EntityRef{ID: sessionID, Kind: logging.EntityKindSession},
		loglobby.MemberPayload{RoomCode: r.code, PlayerID: member.PlayerID, Nickname: member.Nickname}, nil)

	return *member, r.payloadLocked(), nil
}

// Leave removes a session cleanly. Refused once the game has started; a
// session whose transport is gone uses Drop instead. During a countdown the
// timer aborts when fewer than two players remain.
func (r *Room) Leave(sessionID string) (Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase == PhaseStarted {
		if !r.isMemberLocked(sessionID) {
			return Member{}, ErrNotMember
		}
		return Member{}, ErrGameStarted
	}
	return r.removeLocked(sessionID)
}

// Drop removes a session in any phase. Mid-game the player's tank is removed
// and its tombstone goes out in the next delta; the round resolves naturally.
func (r *Room) Drop(sessionID string) (Member, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.removeLocked(sessionID)
}

func (r *Room) removeLocked(sessionID string) (Member, error) {
	idx := -1
	for i, m := range r.members {
		if m.SessionID == sessionID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Member{}, ErrNotMember
	}
	member := *r.members[idx]
	r.members = append(r.members[:idx], r.members[idx+1:]...)
	r.stateID++
	delete(r.needSnapshot, sessionID)

	if r.phase == PhaseCountdown && len(r.members) < 2 {
		r.cancelCountdownLocked()
	}
	if r.phase == PhaseStarted && r.engine != nil {
		r.engine.RemovePlayer(member.PlayerID)
	}
	if len(r.members) == 0 {
		r.emptySince = time.Now()
	}

	r.broadcastControlLocked(proto.RoomDeltaMessage{
		Ver:      proto.Version,
		Type:     proto.TypeRoomDelta,
		RoomCode: r.code,
		StateID:  r.stateID,
		Left:     []uint64{member.PlayerID},
	}, sessionID)

	loglobby.MemberLeft(context.Background(), r.deps.Publisher,
		logging.EntityRef{ID: sessionID, Kind: logging.EntityKindSession},
		loglobby.MemberPayload{RoomCode: r.code, PlayerID: member.PlayerID, Nickname: member.Nickname}, nil)

	return member, nil
}

// StartCountdown begins the pre-game timer. Zero seconds selects the
// configured default.
func (r *Room) StartCountdown(sessionID string, seconds int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isMemberLocked(sessionID) {
		return ErrNotMember
	}
	switch r.phase {
	case PhaseStarted:
		return ErrGameStarted
	case PhaseCountdown:
		return ErrInvalidState
	}
	if seconds == 0 {
		seconds = r.cfg.CountdownSeconds
	}
	if seconds < MinCountdownSeconds || seconds > MaxCountdownSeconds {
		return ErrInvalidDuration
	}
	if len(r.members) < 2 {
		return ErrNotEnoughPlayers
	}

	r.phase = PhaseCountdown
	r.cd = newCountdown(seconds)
	r.stateID++
	r.broadcastControlLocked(proto.CountdownStartedMessage{
		Ver:     proto.Version,
		Type:    proto.TypeCountdownStarted,
		Seconds: seconds,
	}, "")

	loglobby.CountdownStarted(context.Background(), r.deps.Publisher,
		logging.EntityRef{ID: r.code, Kind: logging.EntityKindRoom},
		loglobby.CountdownPayload{RoomCode: r.code, Seconds: seconds}, nil)
	return nil
}

// SubmitInput routes a player input into the running game.
func (r *Room) SubmitInput(sessionID string, tick uint64, payload proto.InputPayload) (proto.ErrorCode, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.phase != PhaseStarted || r.engine == nil {
		return proto.ErrInvalidState, false
	}
	member := r.memberBySessionLocked(sessionID)
	if member == nil {
		return proto.ErrNotInRoom, false
	}
	return r.engine.SubmitInput(member.PlayerID, tick, payload)
}

// RequestResync schedules a full snapshot for the session on the next tick.
func (r *Room) RequestResync(sessionID string, baseTick uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.isMemberLocked(sessionID) {
		return ErrNotMember
	}
	if r.phase != PhaseStarted {
		return ErrInvalidState
	}
	r.needSnapshot[sessionID] = true
	r.deps.Metrics.Add("resync_requests", 1)

	lognetwork.ResyncRequested(context.Background(), r.deps.Publisher, r.engine.Tick(),
		logging.EntityRef{ID: sessionID, Kind: logging.EntityKindSession},
		lognetwork.ResyncPayload{GameID: r.gameID, BaseTick: baseTick}, nil)
	return nil
}

// Run drives the room at the configured tick rate until Close.
func (r *Room) Run() {
	interval := time.Second / time.Duration(r.cfg.TickRate)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-r.stop:
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if dt <= 0 {
				continue
			}
			r.safeStep(dt)
		}
	}
}

// safeStep isolates a tick panic to this room. The broken game is abandoned
// and the lobby returns to waiting, so members can leave or start over
// instead of being stranded in a dead match.
func (r *Room) safeStep(dt float64) {
	defer func() {
		if rec := recover(); rec != nil {
			r.deps.Logger.Printf("room %s: tick panic: %v", r.code, rec)
			r.abandonGame()
		}
	}()
	r.step(dt)
}

func (r *Room) abandonGame() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase == PhaseWaiting {
		return
	}
	gameID := r.gameID
	r.gameID = ""
	r.engine = nil
	r.journal = nil
	r.policy = nil
	r.cd = nil
	r.lastBroadcastTick = 0
	for sessionID := range r.needSnapshot {
		delete(r.needSnapshot, sessionID)
	}
	r.phase = PhaseWaiting
	r.stateID++

	if gameID != "" {
		r.broadcastControlLocked(proto.GameEndMessage{
			Ver:    proto.Version,
			Type:   proto.TypeGameEnd,
			GameID: gameID,
		}, "")
	}
	r.broadcastControlLocked(proto.RoomStateMessage{
		Ver:  proto.Version,
		Type: proto.TypeRoomState,
		Room: r.payloadLocked(),
	}, "")
}

func (r *Room) step(dt float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch r.phase {
	case PhaseCountdown:
		r.stepCountdownLocked(dt)
	case PhaseStarted:
		r.stepGameLocked(dt)
	}
}

func (r *Room) stepCountdownLocked(dt float64) {
	if r.cd == nil {
		r.phase = PhaseWaiting
		return
	}
	marks, finished := r.cd.advance(dt)
	for _, mark := range marks {
		r.broadcastControlLocked(proto.CountdownTickMessage{
			Ver:         proto.Version,
			Type:        proto.TypeCountdownTick,
			SecondsLeft: mark,
		}, "")
	}
	if !finished {
		return
	}
	r.cd = nil
	r.broadcastControlLocked(proto.CountdownFinishedMessage{
		Ver:  proto.Version,
		Type: proto.TypeCountdownFinished,
	}, "")
	r.startGameLocked()
}

func (r *Room) cancelCountdownLocked() {
	r.cd = nil
	r.phase = PhaseWaiting
	r.broadcastControlLocked(proto.CountdownCancelledMessage{
		Ver:  proto.Version,
		Type: proto.TypeCountdownCancelled,
	}, "")
	loglobby.CountdownCancelled(context.Background(), r.deps.Publisher,
		logging.EntityRef{ID: r.code, Kind: logging.EntityKindRoom},
		loglobby.CountdownPayload{RoomCode: r.code}, nil)
}

func (r *Room) startGameLocked() {
	humans := make([]game.HumanSlot, 0, len(r.members))
	for _, m := range r.members {
		humans = append(humans, game.HumanSlot{
			PlayerID:  m.PlayerID,
			Nickname:  m.Nickname,
			SessionID: m.SessionID,
			Team:      m.Team,
		})
	}

	rules := game.Rules{
		BestOf:        r.bestOf,
		RoundDuration: r.cfg.RoundDuration,
		FillWithBots:  r.cfg.FillWithBots,
	}
	gameID := uuid.NewString()
	engine, err := game.New(gameID, r.mapDef, humans, rules, time.Now().UnixNano())
	if err != nil {
		r.deps.Logger.Printf("room %s: start game: %v", r.code, err)
		r.phase = PhaseWaiting
		return
	}

	r.gameID = gameID
	r.engine = engine
	r.journal = journal.New(r.cfg.JournalCapacity, r.cfg.JournalMaxAge)
	r.policy = journal.NewPolicy()
	r.phase = PhaseStarted
	r.stateID++
	for sessionID := range r.needSnapshot {
		delete(r.needSnapshot, sessionID)
	}

	r.broadcastControlLocked(proto.GameMapMessage{
		Ver:    proto.Version,
		Type:   proto.TypeGameMap,
		GameID: gameID,
		Map:    r.mapDef,
	}, "")
	r.broadcastControlLocked(proto.GameStartMessage{
		Ver:    proto.Version,
		Type:   proto.TypeGameStart,
		GameID: gameID,
	}, "")
	r.broadcastControlLocked(proto.RoundStartMessage{
		Ver:   proto.Version,
		Type:  proto.TypeRoundStart,
		Round: engine.Round(),
	}, "")

	players, projectiles := engine.Snapshot()
	frame := journal.Frame{Tick: engine.Tick(), Players: players, Projectiles: projectiles}
	r.journal.Record(frame)
	r.lastBroadcastTick = frame.Tick
	if snapshot, err := journal.BuildSnapshot(gameID, frame); err == nil {
		r.broadcastStateLocked(proto.GameSnapshotMessage{
			Ver:          proto.Version,
			Type:         proto.TypeGameSnapshot,
			GameSnapshot: snapshot,
		})
	} else {
		r.deps.Logger.Printf("room %s: initial snapshot: %v", r.code, err)
	}

	bots := 0
	for _, p := range players {
		if p.IsAI {
			bots++
		}
	}
	r.deps.Metrics.Add("games_started", 1)
	logmatch.GameStarted(context.Background(), r.deps.Publisher, 0,
		logging.EntityRef{ID: gameID, Kind: logging.EntityKindGame},
		logmatch.GamePayload{
			GameID:  gameID,
			MapName: r.mapName,
			BestOf:  r.bestOf,
			Players: len(humans),
			Bots:    bots,
		}, nil)
}

func (r *Room) stepGameLocked(dt float64) {
	if r.engine == nil {
		r.phase = PhaseWaiting
		return
	}

	result := r.engine.Step(dt)
	players, projectiles := r.engine.Snapshot()
	frame := journal.Frame{Tick: result.Tick, Players: players, Projectiles: projectiles}
	r.journal.Record(frame)

	for _, rej := range result.Rejections {
		if rej.SessionID != "" {
			r.deps.Messenger.SendControl(rej.SessionID, proto.InputErrorMessage{
				Ver:  proto.Version,
				Type: proto.TypeInputError,
				Tick: rej.Tick,
				Code: rej.Code,
			})
		}
		logmatch.InputRejected(context.Background(), r.deps.Publisher, result.Tick,
			logging.EntityRef{ID: rej.SessionID, Kind: logging.EntityKindSession},
			logmatch.RejectionPayload{GameID: r.gameID, Code: string(rej.Code)}, nil)
	}

	r.broadcastFrameLocked(frame)
	r.lastBroadcastTick = frame.Tick

	if result.RoundEnded != nil {
		r.broadcastControlLocked(proto.RoundEndMessage{
			Ver:       proto.Version,
			Type:      proto.TypeRoundEnd,
			Round:     result.RoundEnded.Round,
			Winner:    result.RoundEnded.Winner,
			BlueScore: result.RoundEnded.BlueScore,
			RedScore:  result.RoundEnded.RedScore,
		}, "")
		r.deps.Metrics.Add("rounds_played", 1)
		logmatch.RoundEnded(context.Background(), r.deps.Publisher, result.Tick,
			logging.EntityRef{ID: r.gameID, Kind: logging.EntityKindGame},
			logmatch.RoundPayload{
				GameID:    r.gameID,
				Round:     result.RoundEnded.Round,
				Winner:    string(result.RoundEnded.Winner),
				BlueScore: result.RoundEnded.BlueScore,
				RedScore:  result.RoundEnded.RedScore,
			}, nil)
	}
	if result.MatchEnded != nil {
		r.finishGameLocked(result.Tick, result.MatchEnded)
		return
	}
	if result.RoundStarted > 0 {
		r.broadcastControlLocked(proto.RoundStartMessage{
			Ver:   proto.Version,
			Type:  proto.TypeRoundStart,
			Round: result.RoundStarted,
		}, "")
	}

	if signal, ok := r.policy.Consume(); ok {
		r.deps.Logger.Printf("room %s: journal window too short: %s", r.code, signal.Summary())
	}
}

// broadcastFrameLocked sends the tick to every member: a delta against the
// previous broadcast when possible, a full snapshot on the keyframe cadence
// or when the base frame left the journal window.
func (r *Room) broadcastFrameLocked(frame journal.Frame) {
	keyframe := frame.Tick%uint64(r.cfg.KeyframeInterval) == 0

	var snapshotMsg *proto.GameSnapshotMessage
	buildSnapshot := func() *proto.GameSnapshotMessage {
		if snapshotMsg != nil {
			return snapshotMsg
		}
		snapshot, err := journal.BuildSnapshot(r.gameID, frame)
		if err != nil {
			r.deps.Logger.Printf("room %s: snapshot tick %d: %v", r.code, frame.Tick, err)
			return nil
		}
		snapshotMsg = &proto.GameSnapshotMessage{
			Ver:          proto.Version,
			Type:         proto.TypeGameSnapshot,
			GameSnapshot: snapshot,
		}
		return snapshotMsg
	}

	var deltaMsg *proto.GameDeltaMessage
	if !keyframe {
		base, ok := r.journal.Frame(r.lastBroadcastTick)
		if !ok {
			r.policy.NoteMiss("base_evicted", r.lastBroadcastTick)
			r.deps.Metrics.Add("delta_fallbacks", 1)
			lognetwork.ResyncFallback(context.Background(), r.deps.Publisher, frame.Tick,
				logging.EntityRef{ID: r.gameID, Kind: logging.EntityKindGame},
				lognetwork.ResyncPayload{GameID: r.gameID, BaseTick: r.lastBroadcastTick}, nil)
		} else {
			delta, err := journal.BuildDelta(r.gameID, base, frame)
			if err != nil {
				r.deps.Logger.Printf("room %s: delta tick %d: %v", r.code, frame.Tick, err)
			} else {
				r.policy.NoteDelta()
				deltaMsg = &proto.GameDeltaMessage{
					Ver:       proto.Version,
					Type:      proto.TypeGameDelta,
					GameDelta: delta,
				}
			}
		}
	}

	for _, m := range r.members {
		if deltaMsg != nil && !r.needSnapshot[m.SessionID] {
			r.deps.Messenger.SendState(m.SessionID, *deltaMsg)
			continue
		}
		if msg := buildSnapshot(); msg != nil {
			r.deps.Messenger.SendState(m.SessionID, *msg)
			delete(r.needSnapshot, m.SessionID)
		}
	}
}

func (r *Room) finishGameLocked(tick uint64, result *game.MatchResult) {
	r.broadcastControlLocked(proto.GameEndMessage{
		Ver:    proto.Version,
		Type:   proto.TypeGameEnd,
		GameID: r.gameID,
		Winner: result.Winner,
	}, "")
	logmatch.GameEnded(context.Background(), r.deps.Publisher, tick,
		logging.EntityRef{ID: r.gameID, Kind: logging.EntityKindGame},
		logmatch.ResultPayload{GameID: r.gameID, Winner: string(result.Winner)}, nil)

	gameID := r.gameID
	r.gameID = ""
	r.engine = nil
	r.journal = nil
	r.policy = nil
	r.lastBroadcastTick = 0
	for sessionID := range r.needSnapshot {
		delete(r.needSnapshot, sessionID)
	}
	r.phase = PhaseWaiting
	r.stateID++

	r.broadcastControlLocked(proto.RoomStateMessage{
		Ver:  proto.Version,
		Type: proto.TypeRoomState,
		Room: r.payloadLocked(),
	}, "")
	r.deps.Logger.Printf("room %s: game %s finished, winner %s", r.code, gameID, result.Winner)
}

func (r *Room) pickTeamLocked() proto.Team {
	blue, red := 0, 0
	for _, m := range r.members {
		switch m.Team {
		case proto.TeamBlue:
			blue++
		case proto.TeamRed:
			red++
		}
	}
	if blue <= red {
		return proto.TeamBlue
	}
	return proto.TeamRed
}

func (r *Room) isMemberLocked(sessionID string) bool {
	return r.memberBySessionLocked(sessionID) != nil
}

func (r *Room) memberBySessionLocked(sessionID string) *Member {
	for _, m := range r.members {
		if m.SessionID == sessionID {
			return m
		}
	}
	return nil
}

func (r *Room) broadcastControlLocked(msg any, except string) {
	for _, m := range r.members {
		if m.SessionID == except {
			continue
		}
		r.deps.Messenger.SendControl(m.SessionID, msg)
	}
}

func (r *Room) broadcastStateLocked(msg any) {
	for _, m := range r.members {
		r.deps.Messenger.SendState(m.SessionID, msg)
	}
}

// Diagnostics is the room view exposed by the diagnostics endpoint.
type Diagnostics struct {
	Code        string `json:"code"`
	Phase       Phase  `json:"phase"`
	Members     int    `json:"members"`
	StateID     uint64 `json:"stateId"`
	GameID      string `json:"gameId,omitempty"`
	Tick        uint64 `json:"tick,omitempty"`
	JournalSize int    `json:"journalSize,omitempty"`
}

// Diagnostics returns the current room status.
func (r *Room) Diagnostics() Diagnostics {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := Diagnostics{
		Code:    r.code,
		Phase:   r.phase,
		Members: len(r.members),
		StateID: r.stateID,
		GameID:  r.gameID,
	}
	if r.engine != nil {
		d.Tick = r.engine.Tick()
	}
	if r.journal != nil {
		size, _, _ := r.journal.Window()
		d.JournalSize = size
	}
	return d
}
