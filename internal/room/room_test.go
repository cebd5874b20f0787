package room

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tankarena/server/internal/game"
	"tankarena/server/internal/proto"
)

type captureMessenger struct {
	mu      sync.Mutex
	control map[string][]any
	state   map[string][]any
}

func newCaptureMessenger() *captureMessenger {
	return &captureMessenger{
		control: make(map[string][]any),
		state:   make(map[string][]any),
	}
}

func (c *captureMessenger) SendControl(sessionID string, msg any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.control[sessionID] = append(c.control[sessionID], msg)
}

func (c *captureMessenger) SendState(sessionID string, msg any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state[sessionID] = append(c.state[sessionID], msg)
}

func (c *captureMessenger) controlFor(sessionID string) []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]any(nil), c.control[sessionID]...)
}

func (c *captureMessenger) stateFor(sessionID string) []any {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]any(nil), c.state[sessionID]...)
}

func newTestRoom(t *testing.T) (*Room, *captureMessenger) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.FillWithBots = false
	msgr := newCaptureMessenger()
	mapDef, err := game.MapByName(game.DefaultMapName)
	require.NoError(t, err)
	r := newRoom("ABCDEF", game.DefaultMapName, mapDef, 3, cfg.normalized(), Deps{Messenger: msgr}.normalized())
	return r, msgr
}

func startTestGame(t *testing.T, r *Room) {
	t.Helper()
	require.NoError(t, r.StartCountdown("s1", 1))
	r.step(1.5)
	require.Equal(t, PhaseStarted, r.Phase())
}

func TestJoinAssignsBalancedTeams(t *testing.T) {
	r, _ := newTestRoom(t)

	m1, payload, err := r.Join("s1", "alpha")
	require.NoError(t, err)
	assert.Equal(t, proto.TeamBlue, m1.Team)
	assert.Equal(t, uint64(1), m1.PlayerID)
	assert.Len(t, payload.Players, 1)

	m2, _, err := r.Join("s2", "bravo")
	require.NoError(t, err)
	assert.Equal(t, proto.TeamRed, m2.Team)

	m3, _, err := r.Join("s3", "charlie")
	require.NoError(t, err)
	assert.Equal(t, proto.TeamBlue, m3.Team)

	m4, payload, err := r.Join("s4", "delta")
	require.NoError(t, err)
	assert.Equal(t, proto.TeamRed, m4.Team)
	assert.Len(t, payload.Players, 4)
	assert.Equal(t, uint64(4), payload.StateID)
}

func TestJoinNotifiesExistingMembers(t *testing.T) {
	r, msgr := newTestRoom(t)

	_, _, err := r.Join("s1", "alpha")
	require.NoError(t, err)
	_, _, err = r.Join("s2", "bravo")
	require.NoError(t, err)

	msgs := msgr.controlFor("s1")
	require.Len(t, msgs, 1)
	delta, ok := msgs[0].(proto.RoomDeltaMessage)
	require.True(t, ok, "expected a roomDelta, got %T", msgs[0])
	require.Len(t, delta.Joined, 1)
	assert.Equal(t, "bravo", delta.Joined[0].Nickname)
	// The joiner learns the room from its own ok payload, not the delta.
	assert.Empty(t, msgr.controlFor("s2"))
}

func TestJoinRejectsDuplicateSession(t *testing.T) {
	r, _ := newTestRoom(t)
	_, _, err := r.Join("s1", "alpha")
	require.NoError(t, err)
	_, _, err = r.Join("s1", "alpha")
	assert.ErrorIs(t, err, ErrAlreadyMember)
}

func TestJoinRefusedOnceStarted(t *testing.T) {
	r, _ := newTestRoom(t)
	_, _, err := r.Join("s1", "alpha")
	require.NoError(t, err)
	_, _, err = r.Join("s2", "bravo")
	require.NoError(t, err)
	startTestGame(t, r)

	_, _, err = r.Join("s3", "late")
	assert.ErrorIs(t, err, ErrGameStarted)
}

func TestJoinDuringCountdownKeepsCounting(t *testing.T) {
	r, msgr := newTestRoom(t)
	_, _, err := r.Join("s1", "alpha")
	require.NoError(t, err)
	_, _, err = r.Join("s2", "bravo")
	require.NoError(t, err)
	require.NoError(t, r.StartCountdown("s1", 3))

	m3, payload, err := r.Join("s3", "charlie")
	require.NoError(t, err)
	assert.Len(t, payload.Players, 3)
	assert.Equal(t, PhaseCountdown, r.Phase())

	// Existing members hear about the late arrival.
	joined := false
	for _, msg := range msgr.controlFor("s1") {
		if delta, ok := msg.(proto.RoomDeltaMessage); ok && len(delta.Joined) > 0 {
			joined = joined || delta.Joined[0].Nickname == "charlie"
		}
	}
	assert.True(t, joined)

	r.step(1.0)
	r.step(1.0)
	r.step(1.0)
	require.Equal(t, PhaseStarted, r.Phase())

	// The joiner is in the game: its input is accepted.
	r.step(1.0 / 60.0)
	_, ok := r.SubmitInput("s3", 1, proto.InputPayload{MoveX: 1})
	assert.True(t, ok, "player %d input rejected", m3.PlayerID)
}

func TestStartCountdownValidation(t *testing.T) {
	r, _ := newTestRoom(t)
	_, _, err := r.Join("s1", "alpha")
	require.NoError(t, err)

	assert.ErrorIs(t, r.StartCountdown("ghost", 3), ErrNotMember)
	assert.ErrorIs(t, r.StartCountdown("s1", 3), ErrNotEnoughPlayers)

	_, _, err = r.Join("s2", "bravo")
	require.NoError(t, err)
	assert.ErrorIs(t, r.StartCountdown("s1", 99), ErrInvalidDuration)
	assert.ErrorIs(t, r.StartCountdown("s1", -1), ErrInvalidDuration)

	require.NoError(t, r.StartCountdown("s1", 3))
	assert.ErrorIs(t, r.StartCountdown("s2", 3), ErrInvalidState)
}

func TestCountdownTicksWholeSecondsAndStartsGame(t *testing.T) {
	r, msgr := newTestRoom(t)
	_, _, err := r.Join("s1", "alpha")
	require.NoError(t, err)
	_, _, err = r.Join("s2", "bravo")
	require.NoError(t, err)

	require.NoError(t, r.StartCountdown("s1", 3))
	assert.Equal(t, PhaseCountdown, r.Phase())

	r.step(1.0)
	r.step(1.0)
	assert.Equal(t, PhaseCountdown, r.Phase())
	r.step(1.0)
	assert.Equal(t, PhaseStarted, r.Phase())

	var started *proto.CountdownStartedMessage
	var ticks []int
	finished := false
	sawMap, sawStart, sawRound := false, false, false
	for _, msg := range msgr.controlFor("s1") {
		switch m := msg.(type) {
		case proto.CountdownStartedMessage:
			started = &m
		case proto.CountdownTickMessage:
			ticks = append(ticks, m.SecondsLeft)
		case proto.CountdownFinishedMessage:
			finished = true
		case proto.GameMapMessage:
			sawMap = true
			assert.Equal(t, game.DefaultMapName, m.Map.Name)
		case proto.GameStartMessage:
			sawStart = true
			assert.NotEmpty(t, m.GameID)
		case proto.RoundStartMessage:
			sawRound = true
			assert.Equal(t, 1, m.Round)
		}
	}
	require.NotNil(t, started)
	assert.Equal(t, 3, started.Seconds)
	assert.Equal(t, []int{2, 1, 0}, ticks)
	assert.True(t, finished)
	assert.True(t, sawMap)
	assert.True(t, sawStart)
	assert.True(t, sawRound)

	// Both members receive the initial full snapshot.
	for _, session := range []string{"s1", "s2"} {
		states := msgr.stateFor(session)
		require.NotEmpty(t, states, "session %s got no state", session)
		snapshot, ok := states[0].(proto.GameSnapshotMessage)
		require.True(t, ok, "expected snapshot, got %T", states[0])
		assert.Equal(t, uint64(0), snapshot.Tick)
		assert.Len(t, snapshot.Players, 2)
		assert.True(t, proto.VerifySnapshot(snapshot.GameSnapshot))
	}
}

func TestLeaveCancelsCountdownBelowTwoPlayers(t *testing.T) {
	r, msgr := newTestRoom(t)
	_, _, err := r.Join("s1", "alpha")
	require.NoError(t, err)
	_, _, err = r.Join("s2", "bravo")
	require.NoError(t, err)
	require.NoError(t, r.StartCountdown("s1", 3))

	_, err = r.Leave("s2")
	require.NoError(t, err)
	assert.Equal(t, PhaseWaiting, r.Phase())

	cancelled := false
	for _, msg := range msgr.controlFor("s1") {
		if _, ok := msg.(proto.CountdownCancelledMessage); ok {
			cancelled = true
		}
	}
	assert.True(t, cancelled)
}

func TestLeaveRefusedOnceStarted(t *testing.T) {
	r, _ := newTestRoom(t)
	_, _, err := r.Join("s1", "alpha")
	require.NoError(t, err)
	_, _, err = r.Join("s2", "bravo")
	require.NoError(t, err)
	startTestGame(t, r)

	_, err = r.Leave("s2")
	assert.ErrorIs(t, err, ErrGameStarted)
	assert.Len(t, r.Members(), 2)
}

func TestDropRemovesMidGamePlayer(t *testing.T) {
	r, msgr := newTestRoom(t)
	_, _, err := r.Join("s1", "alpha")
	require.NoError(t, err)
	m2, _, err := r.Join("s2", "bravo")
	require.NoError(t, err)
	startTestGame(t, r)

	_, err = r.Drop("s2")
	require.NoError(t, err)
	require.Len(t, r.Members(), 1)

	r.step(1.0 / 60.0)
	states := msgr.stateFor("s1")
	last := states[len(states)-1]
	delta, ok := last.(proto.GameDeltaMessage)
	require.True(t, ok, "expected delta, got %T", last)
	assert.Contains(t, delta.PlayersRemoved, m2.PlayerID)
}

func TestLeaveUnknownSession(t *testing.T) {
	r, _ := newTestRoom(t)
	_, err := r.Leave("ghost")
	assert.ErrorIs(t, err, ErrNotMember)
}

func TestGameTicksBroadcastDeltas(t *testing.T) {
	r, msgr := newTestRoom(t)
	_, _, err := r.Join("s1", "alpha")
	require.NoError(t, err)
	_, _, err = r.Join("s2", "bravo")
	require.NoError(t, err)
	startTestGame(t, r)

	r.step(1.0 / 60.0)

	states := msgr.stateFor("s1")
	require.Len(t, states, 2)
	delta, ok := states[1].(proto.GameDeltaMessage)
	require.True(t, ok, "expected delta, got %T", states[1])
	assert.Equal(t, uint64(1), delta.Tick)
	assert.Equal(t, uint64(0), delta.BaseTick)
	assert.True(t, proto.VerifyDelta(delta.GameDelta))
}

func TestResyncSendsFullSnapshotNextTick(t *testing.T) {
	r, msgr := newTestRoom(t)
	_, _, err := r.Join("s1", "alpha")
	require.NoError(t, err)
	_, _, err = r.Join("s2", "bravo")
	require.NoError(t, err)
	startTestGame(t, r)
	r.step(1.0 / 60.0)

	require.NoError(t, r.RequestResync("s2", 0))
	r.step(1.0 / 60.0)

	s2States := msgr.stateFor("s2")
	require.Len(t, s2States, 3)
	snapshot, ok := s2States[2].(proto.GameSnapshotMessage)
	require.True(t, ok, "expected snapshot after resync, got %T", s2States[2])
	assert.Equal(t, uint64(2), snapshot.Tick)

	// The other member keeps receiving deltas.
	s1States := msgr.stateFor("s1")
	require.Len(t, s1States, 3)
	_, ok = s1States[2].(proto.GameDeltaMessage)
	assert.True(t, ok, "expected delta, got %T", s1States[2])
}

func TestResyncOutsideGame(t *testing.T) {
	r, _ := newTestRoom(t)
	_, _, err := r.Join("s1", "alpha")
	require.NoError(t, err)
	assert.ErrorIs(t, r.RequestResync("s1", 0), ErrInvalidState)
	assert.ErrorIs(t, r.RequestResync("ghost", 0), ErrNotMember)
}

func TestSubmitInputOutsideGame(t *testing.T) {
	r, _ := newTestRoom(t)
	_, _, err := r.Join("s1", "alpha")
	require.NoError(t, err)
	code, ok := r.SubmitInput("s1", 1, proto.InputPayload{})
	assert.False(t, ok)
	assert.Equal(t, proto.ErrInvalidState, code)
}

func TestSubmitInputDuringGame(t *testing.T) {
	r, _ := newTestRoom(t)
	_, _, err := r.Join("s1", "alpha")
	require.NoError(t, err)
	_, _, err = r.Join("s2", "bravo")
	require.NoError(t, err)
	startTestGame(t, r)
	r.step(1.0 / 60.0)

	code, ok := r.SubmitInput("s1", 1, proto.InputPayload{MoveX: 1})
	assert.True(t, ok, "unexpected rejection: %s", code)

	_, ok = r.SubmitInput("ghost", 1, proto.InputPayload{})
	assert.False(t, ok)
}

func TestEmptyForTracksAbandonment(t *testing.T) {
	r, _ := newTestRoom(t)
	now := time.Now()
	assert.True(t, r.EmptyFor(0, now), "fresh room with no members counts as empty")

	_, _, err := r.Join("s1", "alpha")
	require.NoError(t, err)
	assert.False(t, r.EmptyFor(0, now.Add(time.Hour)))

	_, err = r.Leave("s1")
	require.NoError(t, err)
	assert.False(t, r.EmptyFor(time.Minute, time.Now()))
	assert.True(t, r.EmptyFor(time.Minute, time.Now().Add(2*time.Minute)))
}

func TestTickPanicAbandonsGame(t *testing.T) {
	r, msgr := newTestRoom(t)
	_, _, err := r.Join("s1", "alpha")
	require.NoError(t, err)
	_, _, err = r.Join("s2", "bravo")
	require.NoError(t, err)
	startTestGame(t, r)

	// Poison the game state so the next tick panics.
	r.mu.Lock()
	r.journal = nil
	r.mu.Unlock()

	require.NotPanics(t, func() { r.safeStep(1.0 / 60.0) })
	assert.Equal(t, PhaseWaiting, r.Phase())
	assert.Len(t, r.Members(), 2, "members survive the abandoned game")

	sawEnd := false
	for _, msg := range msgr.controlFor("s1") {
		if _, ok := msg.(proto.GameEndMessage); ok {
			sawEnd = true
		}
	}
	assert.True(t, sawEnd, "members are told the game is over")

	// The lobby is usable again.
	require.NoError(t, r.StartCountdown("s1", 1))
	r.step(1.5)
	assert.Equal(t, PhaseStarted, r.Phase())
}

func TestEmptyForReapsNonWaitingImmediately(t *testing.T) {
	r, _ := newTestRoom(t)
	_, _, err := r.Join("s1", "alpha")
	require.NoError(t, err)
	_, _, err = r.Join("s2", "bravo")
	require.NoError(t, err)
	startTestGame(t, r)

	_, err = r.Drop("s1")
	require.NoError(t, err)
	_, err = r.Drop("s2")
	require.NoError(t, err)

	assert.True(t, r.EmptyFor(time.Hour, time.Now()), "abandoned game skips the grace period")
}

func TestCountdownMarks(t *testing.T) {
	cd := newCountdown(3)

	marks, finished := cd.advance(0.5)
	assert.Empty(t, marks)
	assert.False(t, finished)

	marks, finished = cd.advance(0.6)
	assert.Equal(t, []int{2}, marks)
	assert.False(t, finished)

	// A long stall crosses several boundaries at once, down to the zero
	// mark that precedes the finish.
	marks, finished = cd.advance(2.5)
	assert.Equal(t, []int{1, 0}, marks)
	assert.True(t, finished)
}
