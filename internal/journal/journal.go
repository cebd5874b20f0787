// Package journal keeps the rolling tick history for one game and derives
// the wire snapshots and deltas sent to clients. Frames are evicted by count
// and by age so a delta base can never reference state the server no longer
// holds; a client whose base fell out of the window gets a full snapshot
// instead.
package journal

import (
	"sync"
	"time"

	"tankarena/server/internal/proto"
)

const (
	// DefaultCapacity bounds how many ticks back a delta base may reach.
	DefaultCapacity = 120
	// DefaultMaxAge drops frames that outlive the retention window even
	// when the ring is not full.
	DefaultMaxAge = 5 * time.Second
)

// Frame captures the complete dynamic state at one tick.
type Frame struct {
	Tick        uint64
	Players     []proto.PlayerState
	Projectiles []proto.ProjectileState
	RecordedAt  time.Time
}

// FrameEviction describes one frame dropped while recording.
type FrameEviction struct {
	Tick   uint64
	Reason string
}

// RecordResult reports the retention window after a record.
type RecordResult struct {
	Size       int
	OldestTick uint64
	NewestTick uint64
	Evicted    []FrameEviction
}

// Journal is the per-game frame buffer. Writes come from the room loop and
// reads from resync handling, so access stays guarded.
type Journal struct {
	mu        sync.RWMutex
	frames    []Frame
	maxFrames int
	maxAge    time.Duration
}

// New constructs a journal with the configured retention. Non-positive
// values fall back to the defaults.
func New(capacity int, maxAge time.Duration) *Journal {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &Journal{
		frames:    make([]Frame, 0, capacity),
		maxFrames: capacity,
		maxAge:    maxAge,
	}
}

// Record stores a frame enforcing retention limits by count and age.
func (j *Journal) Record(frame Frame) RecordResult {
	j.mu.Lock()
	defer j.mu.Unlock()

	if frame.RecordedAt.IsZero() {
		frame.RecordedAt = time.Now()
	}
	j.frames = append(j.frames, frame)

	evicted := make([]FrameEviction, 0)

	cutoff := frame.RecordedAt.Add(-j.maxAge)
	idx := 0
	for idx < len(j.frames) {
		if !j.frames[idx].RecordedAt.Before(cutoff) {
			break
		}
		evicted = append(evicted, FrameEviction{Tick: j.frames[idx].Tick, Reason: "expired"})
		idx++
	}
	if idx > 0 {
		copy(j.frames, j.frames[idx:])
		j.frames = j.frames[:len(j.frames)-idx]
	}

	if len(j.frames) > j.maxFrames {
		overflow := len(j.frames) - j.maxFrames
		for i := 0; i < overflow; i++ {
			evicted = append(evicted, FrameEviction{Tick: j.frames[i].Tick, Reason: "count"})
		}
		copy(j.frames, j.frames[overflow:])
		j.frames = j.frames[:len(j.frames)-overflow]
	}

	size := len(j.frames)
	result := RecordResult{Size: size, Evicted: evicted}
	if size > 0 {
		result.OldestTick = j.frames[0].Tick
		result.NewestTick = j.frames[size-1].Tick
	}
	return result
}

// Frame returns the stored frame for the given tick.
func (j *Journal) Frame(tick uint64) (Frame, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	for i := len(j.frames) - 1; i >= 0; i-- {
		if j.frames[i].Tick == tick {
			return j.frames[i], true
		}
	}
	return Frame{}, false
}

// Latest returns the newest frame.
func (j *Journal) Latest() (Frame, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if len(j.frames) == 0 {
		return Frame{}, false
	}
	return j.frames[len(j.frames)-1], true
}

// Window reports the current retention window.
func (j *Journal) Window() (size int, oldest, newest uint64) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	size = len(j.frames)
	if size == 0 {
		return size, 0, 0
	}
	return size, j.frames[0].Tick, j.frames[size-1].Tick
}
