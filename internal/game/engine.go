// Package game runs the authoritative simulation for one started match. An
// Engine is owned by exactly one room and is only ever touched from that
// room's tick goroutine; it does no locking of its own.
package game

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"tankarena/server/internal/ai"
	"tankarena/server/internal/proto"
)

// Rules are the per-match knobs a room passes in when the countdown ends.
type Rules struct {
	BestOf        int
	RoundDuration float64
	FillWithBots  bool
}

// DefaultRules returns the standard competitive settings.
func DefaultRules() Rules {
	return Rules{
		BestOf:        DefaultBestOf,
		RoundDuration: RoundDurationSeconds,
		FillWithBots:  true,
	}
}

// HumanSlot describes one connected player entering a match.
type HumanSlot struct {
	PlayerID  uint64
	Nickname  string
	SessionID string
	Team      proto.Team
}

// KillEvent records one elimination for event fan-out.
type KillEvent struct {
	KillerID   uint64
	KillerNick string
	VictimID   uint64
	VictimNick string
}

// InputRejection is a per-packet input failure addressed to one session.
type InputRejection struct {
	PlayerID  uint64
	SessionID string
	Tick      uint64
	Code      proto.ErrorCode
}

// RoundResult reports a finished round. Winner is empty on a draw, in which
// case the round is replayed and no score changes.
type RoundResult struct {
	Round     int
	Winner    proto.Team
	BlueScore int
	RedScore  int
}

// MatchResult reports the decided match.
type MatchResult struct {
	Winner    proto.Team
	BlueScore int
	RedScore  int
}

// TickResult is everything one simulation step produced beyond the state
// itself.
type TickResult struct {
	Tick         uint64
	Kills        []KillEvent
	Rejections   []InputRejection
	RoundEnded   *RoundResult
	RoundStarted int // new round number, 0 if none started this tick
	MatchEnded   *MatchResult
}

type pendingInput struct {
	tick    uint64
	payload proto.InputPayload
}

// Engine is the simulation for one match.
type Engine struct {
	id      string
	mapDef  proto.MapData
	rules   Rules
	rng     *rand.Rand
	players []*Player // sorted by PlayerID, assignment order
	agents  []*ai.Agent
	inputs  map[uint64]pendingInput

	projectiles      []*Projectile
	nextProjectileID uint64

	tick          uint64
	round         int
	blueScore     int
	redScore      int
	roundTimeLeft float64
	ended         bool
}

// New builds the engine for a starting match. Humans keep the teams their
// room assigned; unused spawn points are filled with bots when the rules ask
// for it.
func New(id string, mapDef proto.MapData, humans []HumanSlot, rules Rules, seed int64) (*Engine, error) {
	if rules.BestOf <= 0 {
		rules.BestOf = DefaultBestOf
	}
	if rules.RoundDuration <= 0 {
		rules.RoundDuration = RoundDurationSeconds
	}
	if len(humans) > len(mapDef.SpawnPoints) {
		return nil, fmt.Errorf("map %q has %d spawn points for %d players", mapDef.Name, len(mapDef.SpawnPoints), len(humans))
	}

	e := &Engine{
		id:     id,
		mapDef: mapDef,
		rules:  rules,
		rng:    rand.New(rand.NewSource(seed)),
		inputs: make(map[uint64]pendingInput),
		round:  1,
	}

	// Humans keep the ids their room assigned so input routing stays valid;
	// bots are numbered after the highest human id.
	nextID := uint64(1)
	teamCount := map[proto.Team]int{}
	for _, h := range humans {
		e.players = append(e.players, newPlayer(h.PlayerID, h.Nickname, h.Team, h.SessionID, false))
		teamCount[h.Team]++
		if h.PlayerID >= nextID {
			nextID = h.PlayerID + 1
		}
	}

	if rules.FillWithBots {
		for _, spawn := range mapDef.SpawnPoints {
			if teamCount[spawn.Team] > 0 {
				teamCount[spawn.Team]--
				continue
			}
			bot := newPlayer(nextID, fmt.Sprintf("Bot %d", nextID), spawn.Team, "", true)
			e.players = append(e.players, bot)
			e.agents = append(e.agents, ai.New(nextID, ai.Hunter, seed+int64(nextID)))
			nextID++
		}
	}

	e.startRound()
	return e, nil
}

// ID returns the match identifier.
func (e *Engine) ID() string { return e.id }

// Map returns the static geometry for this match.
func (e *Engine) Map() proto.MapData { return e.mapDef }

// Tick returns the last completed tick id.
func (e *Engine) Tick() uint64 { return e.tick }

// Round returns the current round number.
func (e *Engine) Round() int { return e.round }

// Scores returns the current match score.
func (e *Engine) Scores() (blue, red int) { return e.blueScore, e.redScore }

// Ended reports whether the match has been decided.
func (e *Engine) Ended() bool { return e.ended }

// SubmitInput queues a player's intent for the next step. The tick the
// client stamped must fall inside the lag-compensation window; anything
// older, or anything ahead of the server, is rejected as stale.
func (e *Engine) SubmitInput(playerID uint64, tick uint64, payload proto.InputPayload) (proto.ErrorCode, bool) {
	p := e.playerByID(playerID)
	if p == nil {
		return proto.ErrIllegalAction, false
	}
	if tick > e.tick {
		return proto.ErrStaleTick, false
	}
	if tick+StaleTickTolerance < e.tick {
		return proto.ErrStaleTick, false
	}
	e.inputs[playerID] = pendingInput{tick: tick, payload: payload}
	return "", true
}

// RemovePlayer drops a disconnected player and everything it owns. The
// entity disappears from the next delta via tombstones.
func (e *Engine) RemovePlayer(playerID uint64) bool {
	idx := -1
	for i, p := range e.players {
		if p.PlayerID == playerID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	e.players = append(e.players[:idx], e.players[idx+1:]...)
	delete(e.inputs, playerID)

	kept := e.projectiles[:0]
	for _, pr := range e.projectiles {
		if pr.OwnerID != playerID {
			kept = append(kept, pr)
		}
	}
	e.projectiles = kept

	for i, agent := range e.agents {
		if agent.PlayerID == playerID {
			e.agents = append(e.agents[:i], e.agents[i+1:]...)
			break
		}
	}
	return true
}

// Step advances the simulation by one fixed tick.
func (e *Engine) Step(dt float64) TickResult {
	e.tick++
	result := TickResult{Tick: e.tick}
	if e.ended || len(e.players) == 0 {
		return result
	}

	e.injectBotInputs(dt)

	for _, p := range e.players {
		if p.cooldown > 0 {
			p.cooldown = math.Max(0, p.cooldown-dt)
		}

		in, ok := e.inputs[p.PlayerID]
		if !ok {
			continue
		}
		if !p.Alive() {
			if in.payload.Fire && p.SessionID != "" {
				result.Rejections = append(result.Rejections, InputRejection{
					PlayerID:  p.PlayerID,
					SessionID: p.SessionID,
					Tick:      in.tick,
					Code:      proto.ErrIllegalAction,
				})
			}
			continue
		}

		aimX := in.payload.AimX - p.X
		aimY := in.payload.AimY - p.Y
		if aimX != 0 || aimY != 0 {
			p.Rotation = math.Atan2(aimY, aimX)
		}

		movePlayer(p, in.payload, e.mapDef, dt)

		if in.payload.Fire {
			if p.cooldown > 0 {
				if p.SessionID != "" {
					result.Rejections = append(result.Rejections, InputRejection{
						PlayerID:  p.PlayerID,
						SessionID: p.SessionID,
						Tick:      in.tick,
						Code:      proto.ErrThrottled,
					})
				}
			} else {
				dirX := math.Cos(p.Rotation)
				dirY := math.Sin(p.Rotation)
				e.spawnProjectile(p, dirX, dirY)
				p.cooldown = FireCooldownSeconds
			}
		}
	}

	alive := make([]*Player, 0, len(e.players))
	for _, p := range e.players {
		if p.Alive() {
			alive = append(alive, p)
		}
	}
	resolvePlayerCollisions(alive, e.mapDef)

	result.Kills = append(result.Kills, e.advanceProjectiles(dt)...)

	e.roundTimeLeft = math.Max(0, e.roundTimeLeft-dt)
	e.evaluateRound(&result)

	clear(e.inputs)
	return result
}

// advanceProjectiles moves every projectile and resolves wall, bounds, and
// player hits. A projectile is consumed by the first thing it strikes.
func (e *Engine) advanceProjectiles(dt float64) []KillEvent {
	var kills []KillEvent
	kept := e.projectiles[:0]

projectiles:
	for _, pr := range e.projectiles {
		pr.X += pr.DirX * pr.Speed * dt
		pr.Y += pr.DirY * pr.Speed * dt

		if outOfBounds(pr, e.mapDef) {
			continue
		}
		for _, shape := range e.mapDef.Shapes {
			if projectileHitsShape(pr, shape) {
				continue projectiles
			}
		}
		for _, p := range e.players {
			if !p.Alive() || p.PlayerID == pr.OwnerID {
				continue
			}
			if projectileHitsPlayer(pr, p) {
				p.applyHealthDelta(-ProjectileDamage)
				if !p.Alive() {
					kills = append(kills, KillEvent{
						KillerID:   pr.OwnerID,
						KillerNick: e.nicknameOf(pr.OwnerID),
						VictimID:   p.PlayerID,
						VictimNick: p.Nickname,
					})
				}
				continue projectiles
			}
		}
		kept = append(kept, pr)
	}
	e.projectiles = kept
	return kills
}

func (e *Engine) injectBotInputs(dt float64) {
	if len(e.agents) == 0 {
		return
	}
	players := e.playerStates()
	projectiles := e.projectileStates()
	for _, agent := range e.agents {
		me := e.playerByID(agent.PlayerID)
		if me == nil || !me.Alive() {
			continue
		}
		payload := agent.GenerateInput(me.PlayerState, players, projectiles, e.mapDef, dt)
		e.inputs[agent.PlayerID] = pendingInput{tick: e.tick, payload: payload}
	}
}

// Snapshot returns the wire view of all dynamic state, players sorted by id.
func (e *Engine) Snapshot() ([]proto.PlayerState, []proto.ProjectileState) {
	return e.playerStates(), e.projectileStates()
}

func (e *Engine) playerStates() []proto.PlayerState {
	states := make([]proto.PlayerState, 0, len(e.players))
	for _, p := range e.players {
		states = append(states, p.PlayerState)
	}
	sort.Slice(states, func(i, j int) bool { return states[i].PlayerID < states[j].PlayerID })
	return states
}

func (e *Engine) projectileStates() []proto.ProjectileState {
	states := make([]proto.ProjectileState, 0, len(e.projectiles))
	for _, pr := range e.projectiles {
		states = append(states, pr.ProjectileState)
	}
	return states
}

func (e *Engine) playerByID(id uint64) *Player {
	for _, p := range e.players {
		if p.PlayerID == id {
			return p
		}
	}
	return nil
}

func (e *Engine) nicknameOf(id uint64) string {
	if p := e.playerByID(id); p != nil {
		return p.Nickname
	}
	return ""
}
