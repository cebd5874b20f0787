package proto

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func sampleSnapshot() GameSnapshot {
	return GameSnapshot{
		GameID: "game-1",
		Tick:   42,
		Players: []PlayerState{
			{PlayerID: 1, Nickname: "alpha", X: 100, Y: 200, Health: 75, Team: TeamBlue, Inventory: []string{"cannon"}},
			{PlayerID: 2, Nickname: "bravo", X: 300, Y: 400, Health: 100, Team: TeamRed, Inventory: []string{"cannon"}},
		},
		Projectiles: []ProjectileState{
			{ProjectileID: 7, OwnerID: 1, X: 150, Y: 250, DirX: 1, Speed: 420},
		},
	}
}

func TestSnapshotChecksumIgnoresChecksumField(t *testing.T) {
	snap := sampleSnapshot()
	first, err := SnapshotChecksum(snap)
	require.NoError(t, err)

	snap.Checksum = first
	second, err := SnapshotChecksum(snap)
	require.NoError(t, err)
	require.Equal(t, first, second)
}

func TestVerifySnapshotDetectsCorruption(t *testing.T) {
	snap := sampleSnapshot()
	sum, err := SnapshotChecksum(snap)
	require.NoError(t, err)
	snap.Checksum = sum
	require.True(t, VerifySnapshot(snap))

	snap.Players[0].Health -= 25
	require.False(t, VerifySnapshot(snap))
}

func TestVerifyDeltaDetectsCorruption(t *testing.T) {
	delta := GameDelta{
		GameID:         "game-1",
		Tick:           43,
		BaseTick:       42,
		PlayersUpdated: []PlayerState{{PlayerID: 1, X: 104, Y: 200, Health: 75, Team: TeamBlue}},
		PlayersRemoved: []uint64{2},
	}
	sum, err := DeltaChecksum(delta)
	require.NoError(t, err)
	delta.Checksum = sum
	require.True(t, VerifyDelta(delta))

	delta.BaseTick = 41
	require.False(t, VerifyDelta(delta))
}

func TestChecksumSurvivesWireRoundTrip(t *testing.T) {
	snap := sampleSnapshot()
	sum, err := SnapshotChecksum(snap)
	require.NoError(t, err)
	snap.Checksum = sum

	data, err := json.Marshal(GameSnapshotMessage{Ver: Version, Type: TypeGameSnapshot, GameSnapshot: snap})
	require.NoError(t, err)

	var decoded GameSnapshotMessage
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Equal(t, TypeGameSnapshot, decoded.Type)
	require.True(t, VerifySnapshot(decoded.GameSnapshot))
}
