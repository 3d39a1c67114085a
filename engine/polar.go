package engine

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"

	gcode "github.com/leftmike/polargcode"
)

// Outcome says what Transform did with a command.
type Outcome int

const (
	NotMotion     Outcome = iota // no G numbers; untouched
	PassedThrough                // motion without X or Y, or G92; untouched
	Transformed                  // X is now the radius and Y the angle
)

func (o Outcome) String() string {
	switch o {
	case NotMotion:
		return "not motion"
	case PassedThrough:
		return "passed through"
	case Transformed:
		return "transformed"
	default:
		return "unknown"
	}
}

// Transformer rewrites X and Y of motion commands as a radius and an angle in degrees.
// An angle of zero points along +Y and angles increase clockwise, toward +X. The angle is
// unwrapped: it is never more than 180 degrees from the previous angle, so it can run past
// 360 or below 0.
type Transformer struct {
	// ToolOffset is the distance of the tool tip from the radial line through the center
	// of rotation.
	ToolOffset float64

	last   gcode.MotionPoint
	radius float64
	angle  float64
}

func (tf *Transformer) Reset() {
	tf.last = gcode.MotionPoint{}
	tf.radius = 0
	tf.angle = 0
}

func (tf *Transformer) Radius() float64 {
	return tf.radius
}

// Angle is the unwrapped angle of the most recent transformed command.
func (tf *Transformer) Angle() float64 {
	return tf.angle
}

func degrees(rad float64) float64 {
	return rad * 180.0 / math.Pi
}

func normalizeAngle(a float64) float64 {
	a = math.Mod(a, 360)
	if a < 0 {
		a += 360
	}
	if a >= 360 {
		a -= 360
	}
	return a
}

// toPolar returns the radius and the angle, in [0, 360), of the point (x, y). With an
// offset, the radius is along the tool's line and the angle is turned so the tool tip lands
// on the point.
func toPolar(x, y, offset float64) (float64, float64) {
	r := r2.Norm(r2.Vec{X: x, Y: y})
	a := normalizeAngle(degrees(math.Atan2(x, y)))
	if r < offset {
		r = offset
	}
	if offset == 0 {
		return r, a
	}

	rp := math.Sqrt(math.Abs(r*r - offset*offset))
	phi := degrees(math.Atan2(offset, rp))
	return rp, normalizeAngle(normalizeAngle(phi) + a)
}

// unwrapAngle returns the angle equivalent to next which is closest to prev.
func unwrapAngle(prev, next float64) float64 {
	prevNorm := normalizeAngle(prev)
	delta := normalizeAngle(next) - prevNorm
	if math.Abs(delta) <= 180 {
		return prev + delta
	} else if prevNorm > 180 {
		return prev + 360 + delta
	}
	return prev - (360 - delta)
}

// Transform returns cmd, or for Transformed, a copy with X and Y rewritten. Every motion
// command, including G92, moves the last known point.
func (tf *Transformer) Transform(cmd *gcode.Command) (*gcode.Command, Outcome) {
	if !cmd.IsMotion() {
		return cmd, NotMotion
	}

	tf.last = tf.last.Update(cmd)
	if cmd.HasG(92) || (!cmd.Has('X') && !cmd.Has('Y')) {
		return cmd, PassedThrough
	}

	r, a := toPolar(tf.last.X, tf.last.Y, tf.ToolOffset)
	tf.radius = r
	tf.angle = unwrapAngle(tf.angle, a)

	out := cmd.Clone()
	out.Set('X', tf.radius)
	out.Set('Y', tf.angle)
	return out, Transformed
}
