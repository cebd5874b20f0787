package room

import "math"

// Countdown duration bounds accepted from clients, in whole seconds.
const (
	MinCountdownSeconds = 1
	MaxCountdownSeconds = 10
)

// countdown tracks the pre-game timer. A tick fires at every whole-second
// boundary so clients can render the remaining seconds without
// interpolating.
type countdown struct {
	remaining float64
	lastWhole int
}

func newCountdown(seconds int) *countdown {
	return &countdown{
		remaining: float64(seconds),
		lastWhole: seconds,
	}
}

// advance moves the timer forward and returns the whole-second marks crossed
// during this step, highest first, plus whether the countdown completed. The
// zero mark is emitted too, so a 3-second timer produces 2, 1, 0 and then
// the finish.
func (c *countdown) advance(dt float64) (marks []int, finished bool) {
	c.remaining -= dt
	whole := 0
	if c.remaining > 0 {
		whole = int(math.Ceil(c.remaining))
	}
	for c.lastWhole > whole {
		c.lastWhole--
		marks = append(marks, c.lastWhole)
	}
	return marks, c.remaining <= 0
}
