package game

import (
	"math"

	"tankarena/server/internal/proto"
)

// evaluateRound checks the round-end conditions after a step. Elimination is
// checked before the timer: a team wipe on the same tick the timer expires
// still counts as a wipe. A double wipe, or equal aggregate health at
// timeout, is a draw: no score changes and the same round number replays.
func (e *Engine) evaluateRound(result *TickResult) {
	blueAlive, redAlive := 0, 0
	blueHealth, redHealth := 0.0, 0.0
	for _, p := range e.players {
		switch p.Team {
		case proto.TeamBlue:
			blueHealth += p.Health
			if p.Alive() {
				blueAlive++
			}
		case proto.TeamRed:
			redHealth += p.Health
			if p.Alive() {
				redAlive++
			}
		}
	}

	var winner proto.Team
	decided := false
	switch {
	case blueAlive == 0 && redAlive == 0:
		decided = true // draw
	case blueAlive == 0:
		decided = true
		winner = proto.TeamRed
	case redAlive == 0:
		decided = true
		winner = proto.TeamBlue
	case e.roundTimeLeft <= 0:
		decided = true
		switch {
		case blueHealth > redHealth:
			winner = proto.TeamBlue
		case redHealth > blueHealth:
			winner = proto.TeamRed
		}
	}
	if !decided {
		return
	}

	switch winner {
	case proto.TeamBlue:
		e.blueScore++
	case proto.TeamRed:
		e.redScore++
	}

	result.RoundEnded = &RoundResult{
		Round:     e.round,
		Winner:    winner,
		BlueScore: e.blueScore,
		RedScore:  e.redScore,
	}

	majority := e.rules.BestOf/2 + 1
	if e.blueScore >= majority || e.redScore >= majority {
		e.ended = true
		matchWinner := proto.TeamBlue
		if e.redScore > e.blueScore {
			matchWinner = proto.TeamRed
		}
		result.MatchEnded = &MatchResult{
			Winner:    matchWinner,
			BlueScore: e.blueScore,
			RedScore:  e.redScore,
		}
		return
	}

	if winner != "" {
		e.round++
	}
	e.startRound()
	result.RoundStarted = e.round
}

// startRound respawns every player on its team's spawn points and clears
// transient round state. Projectile ids stay monotonic across rounds so
// tombstones from the previous round can never collide with new shots.
func (e *Engine) startRound() {
	spawns := map[proto.Team][]proto.SpawnPoint{}
	for _, sp := range e.mapDef.SpawnPoints {
		spawns[sp.Team] = append(spawns[sp.Team], sp)
	}

	center := struct{ x, y float64 }{e.mapDef.Width / 2, e.mapDef.Height / 2}
	for _, p := range e.players {
		var x, y float64
		if pool := spawns[p.Team]; len(pool) > 0 {
			x, y = pool[0].X, pool[0].Y
			spawns[p.Team] = pool[1:]
		} else {
			x, y = e.randomFreePosition()
		}
		p.X, p.Y = x, y
		p.Health = PlayerMaxHealth
		p.velX, p.velY = 0, 0
		p.cooldown = 0
		p.Rotation = math.Atan2(center.y-y, center.x-x)
	}

	e.projectiles = e.projectiles[:0]
	clear(e.inputs)
	e.roundTimeLeft = e.rules.RoundDuration
}

// randomFreePosition finds a spot away from walls and other players. After a
// bounded number of attempts it gives up and returns the map center.
func (e *Engine) randomFreePosition() (float64, float64) {
	const (
		maxAttempts = 50
		padding     = 24.0
		minDist     = 40.0
	)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		x := padding + e.rng.Float64()*(e.mapDef.Width-2*padding)
		y := padding + e.rng.Float64()*(e.mapDef.Height-2*padding)

		occupied := false
		for _, p := range e.players {
			dx, dy := p.X-x, p.Y-y
			if dx*dx+dy*dy < minDist*minDist {
				occupied = true
				break
			}
		}
		if occupied {
			continue
		}

		trial := &Player{PlayerState: proto.PlayerState{X: x, Y: y}}
		for _, shape := range e.mapDef.Shapes {
			resolveShapePenetration(trial, shape)
		}
		if trial.X == x && trial.Y == y {
			return x, y
		}
	}
	return e.mapDef.Width / 2, e.mapDef.Height / 2
}
