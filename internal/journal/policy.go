package journal

import (
	"fmt"
)

// ResyncReason records one delta that could not be encoded against its base.
type ResyncReason struct {
	Kind     string
	BaseTick uint64
}

// ResyncSignal summarises how often delta encoding fell back to full
// snapshots since the last consumption.
type ResyncSignal struct {
	Misses      uint64
	TotalDeltas uint64
	Reasons     []ResyncReason
}

// Policy watches the ratio of delta-base misses to delta sends. A miss means
// a client requested state against a base the journal already evicted, which
// forces a full snapshot; a sustained miss rate is the signal that the
// retention window is too short for the room's clients.
type Policy struct {
	totalDeltas uint64
	misses      uint64
	pending     bool
	reasons     []ResyncReason
}

const missThresholdPerHundred = 5
const resyncReasonLimit = 8

func NewPolicy() *Policy {
	return &Policy{reasons: make([]ResyncReason, 0, resyncReasonLimit)}
}

// NoteDelta records one successful delta encode.
func (p *Policy) NoteDelta() {
	if p == nil {
		return
	}
	if p.totalDeltas == ^uint64(0) {
		p.totalDeltas = p.totalDeltas / 2
		p.misses = p.misses / 2
	}
	p.totalDeltas++
}

// NoteMiss records one fallback to a full snapshot.
func (p *Policy) NoteMiss(kind string, baseTick uint64) {
	if p == nil {
		return
	}
	p.misses++
	if len(p.reasons) < resyncReasonLimit {
		p.reasons = append(p.reasons, ResyncReason{Kind: kind, BaseTick: baseTick})
	}
	p.evaluate()
}

func (p *Policy) evaluate() {
	if p == nil || p.pending || p.misses == 0 {
		return
	}
	total := p.totalDeltas
	if total == 0 {
		total = 1
	}
	if p.misses*100 >= total*missThresholdPerHundred {
		p.pending = true
	}
}

// Consume returns the pending signal, if one fired, and resets the counters.
func (p *Policy) Consume() (ResyncSignal, bool) {
	if p == nil || !p.pending {
		return ResyncSignal{}, false
	}
	signal := ResyncSignal{
		Misses:      p.misses,
		TotalDeltas: p.totalDeltas,
		Reasons:     append([]ResyncReason(nil), p.reasons...),
	}
	p.pending = false
	p.totalDeltas = 0
	p.misses = 0
	if len(p.reasons) > 0 {
		p.reasons = p.reasons[:0]
	}
	return signal, true
}

func (s ResyncSignal) Summary() string {
	if s.Misses == 0 && s.TotalDeltas == 0 {
		return ""
	}
	return fmt.Sprintf("misses=%d total_deltas=%d reasons=%v", s.Misses, s.TotalDeltas, s.Reasons)
}
