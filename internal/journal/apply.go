package journal

import (
	"cmp"
	"fmt"
	"slices"

	"tankarena/server/internal/proto"
)

// Apply folds a delta into the full state it was computed against and
// returns the reconstructed state at the delta's tick. The base tick must
// match, and the result carries a freshly computed checksum so callers can
// compare it against a later authoritative snapshot.
func Apply(base proto.GameSnapshot, delta proto.GameDelta) (proto.GameSnapshot, error) {
	if delta.BaseTick != base.Tick {
		return proto.GameSnapshot{}, fmt.Errorf("delta base tick %d does not match state tick %d", delta.BaseTick, base.Tick)
	}
	if delta.GameID != base.GameID {
		return proto.GameSnapshot{}, fmt.Errorf("delta game %q does not match state game %q", delta.GameID, base.GameID)
	}

	players := make(map[uint64]proto.PlayerState, len(base.Players))
	for _, p := range base.Players {
		players[p.PlayerID] = p
	}
	for _, p := range delta.PlayersUpdated {
		players[p.PlayerID] = p
	}
	for _, id := range delta.PlayersRemoved {
		delete(players, id)
	}

	projectiles := make(map[uint64]proto.ProjectileState, len(base.Projectiles))
	for _, p := range base.Projectiles {
		projectiles[p.ProjectileID] = p
	}
	for _, p := range delta.ProjectilesUpdated {
		projectiles[p.ProjectileID] = p
	}
	for _, id := range delta.ProjectilesRemoved {
		delete(projectiles, id)
	}

	next := proto.GameSnapshot{
		GameID:      base.GameID,
		Tick:        delta.Tick,
		Players:     make([]proto.PlayerState, 0, len(players)),
		Projectiles: make([]proto.ProjectileState, 0, len(projectiles)),
	}
	for _, p := range players {
		next.Players = append(next.Players, p)
	}
	slices.SortFunc(next.Players, func(a, b proto.PlayerState) int {
		return cmp.Compare(a.PlayerID, b.PlayerID)
	})
	for _, p := range projectiles {
		next.Projectiles = append(next.Projectiles, p)
	}
	slices.SortFunc(next.Projectiles, func(a, b proto.ProjectileState) int {
		return cmp.Compare(a.ProjectileID, b.ProjectileID)
	})

	sum, err := proto.SnapshotChecksum(next)
	if err != nil {
		return proto.GameSnapshot{}, fmt.Errorf("checksum rebuilt state tick %d: %w", delta.Tick, err)
	}
	next.Checksum = sum
	return next, nil
}
