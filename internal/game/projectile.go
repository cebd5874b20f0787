package game

import "tankarena/server/internal/proto"

// Projectile is a live shot. SpawnTick is kept for diagnostics; removal
// happens on map exit, wall hit, or player hit.
type Projectile struct {
	proto.ProjectileState

	SpawnTick uint64
}

func (e *Engine) spawnProjectile(owner *Player, dirX, dirY float64) *Projectile {
	e.nextProjectileID++
	p := &Projectile{
		ProjectileState: proto.ProjectileState{
			ProjectileID: e.nextProjectileID,
			OwnerID:      owner.PlayerID,
			X:            owner.X,
			Y:            owner.Y,
			DirX:         dirX,
			DirY:         dirY,
			Speed:        ProjectileSpeed,
		},
		SpawnTick: e.tick,
	}
	e.projectiles = append(e.projectiles, p)
	return p
}
