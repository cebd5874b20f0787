package journal

import (
	"fmt"
	"reflect"
	"slices"

	"tankarena/server/internal/proto"
)

// BuildSnapshot renders a frame as the full-state wire payload with its
// checksum filled in.
func BuildSnapshot(gameID string, frame Frame) (proto.GameSnapshot, error) {
	// Slices stay non-nil so a server-built snapshot and a client-rebuilt
	// one serialize identically and their checksums can be compared.
	snapshot := proto.GameSnapshot{
		GameID:      gameID,
		Tick:        frame.Tick,
		Players:     append([]proto.PlayerState{}, frame.Players...),
		Projectiles: append([]proto.ProjectileState{}, frame.Projectiles...),
	}
	sum, err := proto.SnapshotChecksum(snapshot)
	if err != nil {
		return proto.GameSnapshot{}, fmt.Errorf("checksum snapshot tick %d: %w", frame.Tick, err)
	}
	snapshot.Checksum = sum
	return snapshot, nil
}

// BuildDelta computes the change set between two frames. Entities present in
// base but absent from current are reported as removals, so a client holding
// the base state converges on the current one.
func BuildDelta(gameID string, base, current Frame) (proto.GameDelta, error) {
	if base.Tick >= current.Tick {
		return proto.GameDelta{}, fmt.Errorf("delta base tick %d not before tick %d", base.Tick, current.Tick)
	}

	delta := proto.GameDelta{
		GameID:   gameID,
		Tick:     current.Tick,
		BaseTick: base.Tick,
	}

	basePlayers := make(map[uint64]proto.PlayerState, len(base.Players))
	for _, p := range base.Players {
		basePlayers[p.PlayerID] = p
	}
	for _, p := range current.Players {
		prev, ok := basePlayers[p.PlayerID]
		if !ok || !playerStateEqual(prev, p) {
			delta.PlayersUpdated = append(delta.PlayersUpdated, p)
		}
		delete(basePlayers, p.PlayerID)
	}
	for id := range basePlayers {
		delta.PlayersRemoved = append(delta.PlayersRemoved, id)
	}
	slices.Sort(delta.PlayersRemoved)

	baseProjectiles := make(map[uint64]proto.ProjectileState, len(base.Projectiles))
	for _, p := range base.Projectiles {
		baseProjectiles[p.ProjectileID] = p
	}
	for _, p := range current.Projectiles {
		prev, ok := baseProjectiles[p.ProjectileID]
		if !ok || prev != p {
			delta.ProjectilesUpdated = append(delta.ProjectilesUpdated, p)
		}
		delete(baseProjectiles, p.ProjectileID)
	}
	for id := range baseProjectiles {
		delta.ProjectilesRemoved = append(delta.ProjectilesRemoved, id)
	}
	slices.Sort(delta.ProjectilesRemoved)

	sum, err := proto.DeltaChecksum(delta)
	if err != nil {
		return proto.GameDelta{}, fmt.Errorf("checksum delta tick %d: %w", current.Tick, err)
	}
	delta.Checksum = sum
	return delta, nil
}

func playerStateEqual(a, b proto.PlayerState) bool {
	if !slices.Equal(a.Inventory, b.Inventory) {
		return false
	}
	a.Inventory = nil
	b.Inventory = nil
	return reflect.DeepEqual(a, b)
}
