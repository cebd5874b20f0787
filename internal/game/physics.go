package game

import (
	"math"

	"tankarena/server/internal/proto"
)

func clamp(value, min, max float64) float64 {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}

// movePlayer advances a player along its input axis, then resolves map
// bounds and wall penetration.
func movePlayer(p *Player, in proto.InputPayload, m proto.MapData, dt float64) {
	dx := in.MoveX
	dy := in.MoveY
	length := math.Hypot(dx, dy)
	if length > 1 {
		dx /= length
		dy /= length
	}

	p.velX = dx * PlayerSpeed
	p.velY = dy * PlayerSpeed
	p.X += p.velX * dt
	p.Y += p.velY * dt

	constrainToMap(p, m)
	for _, shape := range m.Shapes {
		resolveShapePenetration(p, shape)
	}
	constrainToMap(p, m)
}

func constrainToMap(p *Player, m proto.MapData) {
	p.X = clamp(p.X, PlayerRadius, m.Width-PlayerRadius)
	p.Y = clamp(p.Y, PlayerRadius, m.Height-PlayerRadius)
}

// resolveShapePenetration pushes a player out of one static shape.
func resolveShapePenetration(p *Player, shape proto.Shape) {
	switch shape.Kind {
	case proto.ShapeRect:
		resolveRectPenetration(p, shape)
	case proto.ShapeCircle:
		resolveCirclePenetration(p, shape)
	}
}

func resolveRectPenetration(p *Player, rect proto.Shape) {
	closestX := clamp(p.X, rect.X, rect.X+rect.Width)
	closestY := clamp(p.Y, rect.Y, rect.Y+rect.Height)
	dx := p.X - closestX
	dy := p.Y - closestY
	distSq := dx*dx + dy*dy

	if distSq >= PlayerRadius*PlayerRadius {
		return
	}

	if distSq == 0 {
		// Center is inside the rectangle; push out through the nearest edge.
		left := math.Abs(p.X - rect.X)
		right := math.Abs((rect.X + rect.Width) - p.X)
		top := math.Abs(p.Y - rect.Y)
		bottom := math.Abs((rect.Y + rect.Height) - p.Y)

		minDist := left
		direction := 0
		if right < minDist {
			minDist = right
			direction = 1
		}
		if top < minDist {
			minDist = top
			direction = 2
		}
		if bottom < minDist {
			direction = 3
		}

		switch direction {
		case 0:
			p.X = rect.X - PlayerRadius
		case 1:
			p.X = rect.X + rect.Width + PlayerRadius
		case 2:
			p.Y = rect.Y - PlayerRadius
		case 3:
			p.Y = rect.Y + rect.Height + PlayerRadius
		}
		return
	}

	dist := math.Sqrt(distSq)
	overlap := PlayerRadius - dist
	p.X += dx / dist * overlap
	p.Y += dy / dist * overlap
}

func resolveCirclePenetration(p *Player, circle proto.Shape) {
	dx := p.X - circle.X
	dy := p.Y - circle.Y
	minDist := PlayerRadius + circle.Radius
	distSq := dx*dx + dy*dy
	if distSq >= minDist*minDist {
		return
	}

	var dist float64
	if distSq == 0 {
		dx, dy = 1, 0
		dist = 1
	} else {
		dist = math.Sqrt(distSq)
	}

	overlap := minDist - dist
	p.X += dx / dist * overlap
	p.Y += dy / dist * overlap
}

// resolvePlayerCollisions separates overlapping live players, splitting the
// overlap between both and re-resolving walls afterwards.
func resolvePlayerCollisions(players []*Player, m proto.MapData) {
	if len(players) < 2 {
		return
	}

	const iterations = 4
	for iter := 0; iter < iterations; iter++ {
		adjusted := false
		for i := 0; i < len(players); i++ {
			for j := i + 1; j < len(players); j++ {
				p1 := players[i]
				p2 := players[j]
				if !p1.Alive() || !p2.Alive() {
					continue
				}

				dx := p2.X - p1.X
				dy := p2.Y - p1.Y
				distSq := dx*dx + dy*dy
				minDist := PlayerRadius * 2

				var dist float64
				if distSq == 0 {
					dx, dy = 1, 0
					dist = 1
				} else {
					dist = math.Sqrt(distSq)
				}

				if dist >= minDist {
					continue
				}

				overlap := (minDist - dist) / 2
				nx := dx / dist
				ny := dy / dist

				p1.X -= nx * overlap
				p1.Y -= ny * overlap
				p2.X += nx * overlap
				p2.Y += ny * overlap

				constrainToMap(p1, m)
				constrainToMap(p2, m)
				for _, shape := range m.Shapes {
					resolveShapePenetration(p1, shape)
					resolveShapePenetration(p2, shape)
				}

				adjusted = true
			}
		}
		if !adjusted {
			break
		}
	}
}

// projectileHitsShape reports whether a projectile overlaps one static shape.
func projectileHitsShape(pr *Projectile, shape proto.Shape) bool {
	switch shape.Kind {
	case proto.ShapeRect:
		closestX := clamp(pr.X, shape.X, shape.X+shape.Width)
		closestY := clamp(pr.Y, shape.Y, shape.Y+shape.Height)
		dx := pr.X - closestX
		dy := pr.Y - closestY
		return dx*dx+dy*dy < ProjectileRadius*ProjectileRadius
	case proto.ShapeCircle:
		dx := pr.X - shape.X
		dy := pr.Y - shape.Y
		minDist := ProjectileRadius + shape.Radius
		return dx*dx+dy*dy < minDist*minDist
	}
	return false
}

// projectileHitsPlayer reports whether a projectile overlaps a player circle.
func projectileHitsPlayer(pr *Projectile, p *Player) bool {
	dx := pr.X - p.X
	dy := pr.Y - p.Y
	minDist := ProjectileRadius + PlayerRadius
	return dx*dx+dy*dy < minDist*minDist
}

func outOfBounds(pr *Projectile, m proto.MapData) bool {
	return pr.X < -ProjectileRadius || pr.Y < -ProjectileRadius ||
		pr.X > m.Width+ProjectileRadius || pr.Y > m.Height+ProjectileRadius
}
