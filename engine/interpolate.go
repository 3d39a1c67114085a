package engine

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	gcode "github.com/leftmike/polargcode"
)

// MaxSegments bounds the number of segments one move is split into; past it, segments are
// longer than the tolerance.
const MaxSegments = 1 << 16

// Interpolator splits long G0 and G1 moves into segments no longer, in the XY plane, than
// the tolerance. A polar machine moves along an arc between two points, so shorter segments
// stay closer to the straight line.
type Interpolator struct {
	Tolerance       float64
	InterpolateG0   bool
	InterpolateG1   bool
	G0HalfTolerance bool // G0 moves may be twice as long

	last gcode.MotionPoint
}

func (ip *Interpolator) Reset() {
	ip.last = gcode.MotionPoint{}
}

// Last is the end point of the most recent move.
func (ip *Interpolator) Last() gcode.MotionPoint {
	return ip.last
}

func (ip *Interpolator) subdivide(cmd *gcode.Command) bool {
	g0 := cmd.HasG(0)
	g1 := cmd.HasG(1)
	if !g0 && !g1 {
		return false
	}
	if g0 && !ip.InterpolateG0 {
		return false
	}
	if g1 && !ip.InterpolateG1 {
		return false
	}
	return true
}

func (ip *Interpolator) tolerance(cmd *gcode.Command) float64 {
	if cmd.HasG(0) && ip.G0HalfTolerance {
		return ip.Tolerance * 2
	}
	return ip.Tolerance
}

func planarDistance(pt1, pt2 gcode.MotionPoint) float64 {
	return r2.Norm(r2.Sub(r2.Vec{X: pt2.X, Y: pt2.Y}, r2.Vec{X: pt1.X, Y: pt1.Y}))
}

// Interpolate returns the commands which replace cmd: either cmd itself, or segments
// ending at the same point. Only the first segment carries F; Z and E are interpolated
// only if cmd has them.
func (ip *Interpolator) Interpolate(cmd *gcode.Command) []*gcode.Command {
	if !cmd.IsMotion() {
		return []*gcode.Command{cmd}
	}
	if cmd.HasG(92) {
		ip.last = ip.last.Update(cmd)
		return []*gcode.Command{cmd}
	}

	from := ip.last
	to := ip.last.Update(cmd)
	ip.last = to

	if !ip.subdivide(cmd) {
		return []*gcode.Command{cmd}
	}
	tol := ip.tolerance(cmd)
	dist := planarDistance(from, to)
	if !(dist > tol) {
		return []*gcode.Command{cmd}
	}

	n := MaxSegments
	if segs := math.Ceil(dist / tol); segs < MaxSegments {
		n = int(segs)
	}
	hasZ := cmd.Has('Z')
	hasE := cmd.Has('E')

	segs := make([]*gcode.Command, 0, n)
	for i := 1; i <= n; i++ {
		pt := to
		if i < n {
			frac := float64(i) / float64(n)
			pt = gcode.MotionPoint{
				X: from.X + (to.X-from.X)*frac,
				Y: from.Y + (to.Y-from.Y)*frac,
				Z: from.Z + (to.Z-from.Z)*frac,
				E: from.E + (to.E-from.E)*frac,
			}
		}

		seg := cmd.Clone()
		seg.Set('X', pt.X)
		seg.Set('Y', pt.Y)
		if hasZ {
			seg.Set('Z', pt.Z)
		}
		if hasE {
			seg.Set('E', pt.E)
		}
		if i > 1 {
			seg.Delete('F')
		}
		segs = append(segs, seg)
	}
	return segs
}
