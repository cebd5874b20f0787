// Package ai generates per-tick inputs for bot-controlled players. Agents
// consume the same wire-level view a client would and emit ordinary input
// payloads, so the simulation cannot tell a bot from a human.
package ai

import (
	"math"
	"math/rand"

	"tankarena/server/internal/proto"
)

// Difficulty selects the agent behaviour profile.
type Difficulty string

const (
	// Wanderer drifts around the map and fires opportunistically.
	Wanderer Difficulty = "wanderer"
	// Hunter closes on the nearest enemy and fires whenever aimed.
	Hunter Difficulty = "hunter"
)

// Agent drives one bot player.
type Agent struct {
	PlayerID   uint64
	difficulty Difficulty
	rng        *rand.Rand

	wanderX, wanderY float64
	retargetIn       float64
}

// New creates an agent for the given player. The seed makes bot behaviour
// reproducible for a given game.
func New(playerID uint64, difficulty Difficulty, seed int64) *Agent {
	return &Agent{
		PlayerID:   playerID,
		difficulty: difficulty,
		rng:        rand.New(rand.NewSource(seed)),
	}
}

// GenerateInput produces the agent's intent for this tick.
func (a *Agent) GenerateInput(me proto.PlayerState, players []proto.PlayerState, projectiles []proto.ProjectileState, m proto.MapData, dt float64) proto.InputPayload {
	target, hasTarget := nearestEnemy(me, players)

	input := proto.InputPayload{AimX: me.X, AimY: me.Y + 1}
	if hasTarget {
		input.AimX = target.X
		input.AimY = target.Y
	}

	switch a.difficulty {
	case Hunter:
		if hasTarget {
			dx := target.X - me.X
			dy := target.Y - me.Y
			dist := math.Hypot(dx, dy)
			if dist > 0 {
				// Hold a standoff distance instead of ramming the target.
				if dist > 220 {
					input.MoveX = dx / dist
					input.MoveY = dy / dist
				} else if dist < 140 {
					input.MoveX = -dx / dist
					input.MoveY = -dy / dist
				}
			}
			input.Fire = dist < 600
		}
	default:
		a.retargetIn -= dt
		if a.retargetIn <= 0 {
			angle := a.rng.Float64() * 2 * math.Pi
			a.wanderX = math.Cos(angle)
			a.wanderY = math.Sin(angle)
			a.retargetIn = 1 + a.rng.Float64()*2
		}
		input.MoveX = a.wanderX
		input.MoveY = a.wanderY
		input.Fire = hasTarget && a.rng.Float64() < 0.3
	}

	input.MoveX, input.MoveY = steerInsideBounds(me, m, input.MoveX, input.MoveY)
	return input
}

func nearestEnemy(me proto.PlayerState, players []proto.PlayerState) (proto.PlayerState, bool) {
	var best proto.PlayerState
	bestDist := math.MaxFloat64
	found := false
	for _, p := range players {
		if p.PlayerID == me.PlayerID || p.Team == me.Team || p.Health <= 0 {
			continue
		}
		dx := p.X - me.X
		dy := p.Y - me.Y
		dist := dx*dx + dy*dy
		if dist < bestDist {
			bestDist = dist
			best = p
			found = true
		}
	}
	return best, found
}

// steerInsideBounds turns the agent back toward the interior when it is
// about to run into the map edge.
func steerInsideBounds(me proto.PlayerState, m proto.MapData, dx, dy float64) (float64, float64) {
	const margin = 48
	if me.X < margin && dx < 0 {
		dx = -dx
	}
	if me.X > m.Width-margin && dx > 0 {
		dx = -dx
	}
	if me.Y < margin && dy < 0 {
		dy = -dy
	}
	if me.Y > m.Height-margin && dy > 0 {
		dy = -dy
	}
	return dx, dy
}
