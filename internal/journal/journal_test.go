package journal

import (
	"testing"
	"time"

	"tankarena/server/internal/proto"
)

func frameAt(tick uint64, recorded time.Time) Frame {
	return Frame{
		Tick: tick,
		Players: []proto.PlayerState{
			{PlayerID: 1, Nickname: "alpha", X: float64(tick), Y: 10, Health: 100, Team: proto.TeamBlue, Inventory: []string{"cannon"}},
			{PlayerID: 2, Nickname: "bravo", X: 500, Y: 400, Health: 75, Team: proto.TeamRed, Inventory: []string{"cannon"}},
		},
		Projectiles: []proto.ProjectileState{
			{ProjectileID: 7, OwnerID: 1, X: float64(tick) + 20, Y: 12, DirX: 1, Speed: 420},
		},
		RecordedAt: recorded,
	}
}

func TestJournalEvictsByCount(t *testing.T) {
	j := New(3, time.Hour)
	now := time.Now()

	for tick := uint64(1); tick <= 5; tick++ {
		result := j.Record(frameAt(tick, now.Add(time.Duration(tick)*time.Millisecond)))
		if result.Size > 3 {
			t.Fatalf("expected window capped at 3 frames, got %d after tick %d", result.Size, tick)
		}
	}

	size, oldest, newest := j.Window()
	if size != 3 {
		t.Fatalf("expected 3 retained frames, got %d", size)
	}
	if oldest != 3 || newest != 5 {
		t.Fatalf("expected window [3,5], got [%d,%d]", oldest, newest)
	}
	if _, ok := j.Frame(2); ok {
		t.Fatalf("expected tick 2 to be evicted")
	}
	if _, ok := j.Frame(4); !ok {
		t.Fatalf("expected tick 4 to be retained")
	}
}

func TestJournalEvictsByAge(t *testing.T) {
	j := New(100, 50*time.Millisecond)
	now := time.Now()

	j.Record(frameAt(1, now.Add(-200*time.Millisecond)))
	j.Record(frameAt(2, now.Add(-10*time.Millisecond)))
	result := j.Record(frameAt(3, now))

	if result.Size != 2 {
		t.Fatalf("expected age eviction to leave 2 frames, got %d", result.Size)
	}
	if len(result.Evicted) != 1 || result.Evicted[0].Tick != 1 || result.Evicted[0].Reason != "expired" {
		t.Fatalf("unexpected evictions: %+v", result.Evicted)
	}
	if result.OldestTick != 2 || result.NewestTick != 3 {
		t.Fatalf("expected window [2,3], got [%d,%d]", result.OldestTick, result.NewestTick)
	}
}

func TestBuildDeltaReportsChangesAndRemovals(t *testing.T) {
	now := time.Now()
	base := frameAt(10, now)
	current := Frame{
		Tick: 12,
		Players: []proto.PlayerState{
			// Player 1 moved, player 2 is gone, player 3 is new.
			{PlayerID: 1, Nickname: "alpha", X: 42, Y: 10, Health: 100, Team: proto.TeamBlue, Inventory: []string{"cannon"}},
			{PlayerID: 3, Nickname: "charlie", X: 60, Y: 70, Health: 100, Team: proto.TeamRed, Inventory: []string{"cannon"}},
		},
		Projectiles: nil,
		RecordedAt:  now,
	}

	delta, err := BuildDelta("game-1", base, current)
	if err != nil {
		t.Fatalf("BuildDelta: %v", err)
	}
	if delta.BaseTick != 10 || delta.Tick != 12 {
		t.Fatalf("expected delta 10->12, got %d->%d", delta.BaseTick, delta.Tick)
	}
	if len(delta.PlayersUpdated) != 2 {
		t.Fatalf("expected 2 player updates, got %d", len(delta.PlayersUpdated))
	}
	if len(delta.PlayersRemoved) != 1 || delta.PlayersRemoved[0] != 2 {
		t.Fatalf("expected player 2 removed, got %v", delta.PlayersRemoved)
	}
	if len(delta.ProjectilesRemoved) != 1 || delta.ProjectilesRemoved[0] != 7 {
		t.Fatalf("expected projectile 7 removed, got %v", delta.ProjectilesRemoved)
	}
	if delta.Checksum == 0 {
		t.Fatalf("expected delta checksum to be set")
	}
	if !proto.VerifyDelta(delta) {
		t.Fatalf("expected delta checksum to verify")
	}
}

func TestBuildDeltaSkipsUnchangedEntities(t *testing.T) {
	now := time.Now()
	base := frameAt(10, now)
	current := frameAt(10, now)
	current.Tick = 11
	current.Players[0].X += 3.75

	delta, err := BuildDelta("game-1", base, current)
	if err != nil {
		t.Fatalf("BuildDelta: %v", err)
	}
	if len(delta.PlayersUpdated) != 1 {
		t.Fatalf("expected only the moving player in the delta, got %d updates", len(delta.PlayersUpdated))
	}
	if delta.PlayersUpdated[0].PlayerID != 1 {
		t.Fatalf("expected player 1 update, got player %d", delta.PlayersUpdated[0].PlayerID)
	}
	if len(delta.PlayersRemoved) != 0 || len(delta.ProjectilesRemoved) != 0 {
		t.Fatalf("expected no tombstones, got %v / %v", delta.PlayersRemoved, delta.ProjectilesRemoved)
	}
}

func TestApplyDeltaReproducesSnapshot(t *testing.T) {
	now := time.Now()
	base := frameAt(10, now)
	current := Frame{
		Tick: 13,
		Players: []proto.PlayerState{
			{PlayerID: 1, Nickname: "alpha", X: 99, Y: 11, Health: 50, Team: proto.TeamBlue, Inventory: []string{"cannon"}},
		},
		Projectiles: []proto.ProjectileState{
			{ProjectileID: 8, OwnerID: 1, X: 120, Y: 15, DirX: 1, Speed: 420},
		},
		RecordedAt: now,
	}

	baseSnapshot, err := BuildSnapshot("game-1", base)
	if err != nil {
		t.Fatalf("BuildSnapshot base: %v", err)
	}
	wantSnapshot, err := BuildSnapshot("game-1", current)
	if err != nil {
		t.Fatalf("BuildSnapshot current: %v", err)
	}
	delta, err := BuildDelta("game-1", base, current)
	if err != nil {
		t.Fatalf("BuildDelta: %v", err)
	}

	got, err := Apply(baseSnapshot, delta)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got.Tick != wantSnapshot.Tick {
		t.Fatalf("expected rebuilt tick %d, got %d", wantSnapshot.Tick, got.Tick)
	}
	if got.Checksum != wantSnapshot.Checksum {
		t.Fatalf("rebuilt checksum %d does not match authoritative %d", got.Checksum, wantSnapshot.Checksum)
	}
	if len(got.Players) != 1 || got.Players[0].PlayerID != 1 || got.Players[0].Health != 50 {
		t.Fatalf("unexpected rebuilt players: %+v", got.Players)
	}
	if len(got.Projectiles) != 1 || got.Projectiles[0].ProjectileID != 8 {
		t.Fatalf("unexpected rebuilt projectiles: %+v", got.Projectiles)
	}
}

func TestApplyOrdersPlayersByFullIDRange(t *testing.T) {
	now := time.Now()
	base, err := BuildSnapshot("game-1", Frame{Tick: 5, RecordedAt: now})
	if err != nil {
		t.Fatalf("BuildSnapshot: %v", err)
	}

	huge := uint64(1)<<63 + 2
	delta := proto.GameDelta{
		GameID:   "game-1",
		Tick:     6,
		BaseTick: 5,
		PlayersUpdated: []proto.PlayerState{
			{PlayerID: huge, Nickname: "omega", Health: 100, Team: proto.TeamRed},
			{PlayerID: 3, Nickname: "alpha", Health: 100, Team: proto.TeamBlue},
		},
	}

	got, err := Apply(base, delta)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(got.Players) != 2 {
		t.Fatalf("expected 2 players, got %d", len(got.Players))
	}
	if got.Players[0].PlayerID != 3 || got.Players[1].PlayerID != huge {
		t.Fatalf("players out of id order: %d, %d", got.Players[0].PlayerID, got.Players[1].PlayerID)
	}
}

func TestApplyRejectsMismatchedBase(t *testing.T) {
	now := time.Now()
	base, err := BuildSnapshot("game-1", frameAt(10, now))
	if err != nil {
		t.Fatalf("BuildSnapshot: %v", err)
	}
	delta := proto.GameDelta{GameID: "game-1", Tick: 15, BaseTick: 11}
	if _, err := Apply(base, delta); err == nil {
		t.Fatalf("expected base tick mismatch to fail")
	}
}

func TestPolicySignalsOnSustainedMisses(t *testing.T) {
	p := NewPolicy()
	for i := 0; i < 100; i++ {
		p.NoteDelta()
	}
	if _, ok := p.Consume(); ok {
		t.Fatalf("expected no signal without misses")
	}

	for i := 0; i < 5; i++ {
		p.NoteMiss("base_evicted", uint64(i))
	}
	signal, ok := p.Consume()
	if !ok {
		t.Fatalf("expected signal after sustained misses")
	}
	if signal.Misses != 5 {
		t.Fatalf("expected 5 misses in signal, got %d", signal.Misses)
	}
	if _, ok := p.Consume(); ok {
		t.Fatalf("expected counters to reset after consume")
	}
}
