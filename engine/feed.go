package engine

import (
	"math"

	gcode "github.com/leftmike/polargcode"
)

// FeedCompensator speeds up moves near the center of rotation, where a polar machine covers
// less distance per degree. The feed rate is scaled linearly from feed*(1+Boost) at the
// center to feed at MaximumRadius.
type FeedCompensator struct {
	MaximumRadius float64 // 0 turns compensation off
	Boost         float64

	feed      float64 // last F seen
	applied   float64 // the feed the machine is running at
	candidate float64
	evalRad   float64
	evalFeed  float64
	evaluated bool
}

func (fc *FeedCompensator) Enabled() bool {
	return fc.MaximumRadius > 0
}

func (fc *FeedCompensator) Reset() {
	*fc = FeedCompensator{
		MaximumRadius: fc.MaximumRadius,
		Boost:         fc.Boost,
	}
}

// Applied is the feed rate of the most recent F written or passed through.
func (fc *FeedCompensator) Applied() float64 {
	return fc.applied
}

func (fc *FeedCompensator) rate(radius float64) float64 {
	return fc.feed*fc.Boost*(1-radius/fc.MaximumRadius) + fc.feed
}

// Compensate updates cmd in place. For transformed commands, X is the radius; the caller's
// F is replaced by the compensated feed, written only when it changes. Other commands keep
// their F.
func (fc *FeedCompensator) Compensate(cmd *gcode.Command, transformed bool) {
	if !fc.Enabled() {
		return
	}

	f, hasF := cmd.Get('F')
	if hasF {
		fc.feed = f
	}
	if !transformed {
		if hasF {
			fc.applied = f
		}
		return
	}

	r, _ := cmd.Get('X')
	if !fc.evaluated || math.Abs(r-fc.evalRad) >= 1.0 || fc.feed != fc.evalFeed {
		fc.candidate = fc.rate(r)
		fc.evalRad = r
		fc.evalFeed = fc.feed
		fc.evaluated = true
	}

	if fc.candidate != fc.applied {
		cmd.Set('F', fc.candidate)
		fc.applied = fc.candidate
	} else {
		cmd.Delete('F')
	}
}
