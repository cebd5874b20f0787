package game

import "tankarena/server/internal/proto"

// Player is one combatant. The embedded wire state is what clients see; the
// unexported fields are server-side bookkeeping that never leaves the tick
// loop. A player whose health reaches zero stays in the collection until the
// round ends so scorekeeping can still see it.
type Player struct {
	proto.PlayerState

	// SessionID ties the player back to its connection; empty for bots.
	SessionID string

	velX, velY float64
	cooldown   float64 // seconds until the next shot is allowed
}

// Alive reports whether the player can still act this round.
func (p *Player) Alive() bool {
	return p.Health > 0
}

// applyHealthDelta adjusts health, clamping at zero and the maximum.
func (p *Player) applyHealthDelta(delta float64) {
	next := p.Health + delta
	if next < 0 {
		next = 0
	}
	if next > PlayerMaxHealth {
		next = PlayerMaxHealth
	}
	p.Health = next
}

func newPlayer(id uint64, nickname string, team proto.Team, sessionID string, isAI bool) *Player {
	return &Player{
		PlayerState: proto.PlayerState{
			PlayerID:  id,
			Nickname:  nickname,
			Team:      team,
			Health:    PlayerMaxHealth,
			IsAI:      isAI,
			Inventory: []string{"cannon"},
		},
		SessionID: sessionID,
	}
}
