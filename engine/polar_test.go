package engine

import (
	"fmt"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
)

func TestNormalizeAngle(t *testing.T) {
	cases := []struct {
		a, want float64
	}{
		{a: 0, want: 0},
		{a: 359.5, want: 359.5},
		{a: 360, want: 0},
		{a: 725, want: 5},
		{a: -90, want: 270},
		{a: -720, want: 0},
		{a: -1e-15, want: 0},
	}

	for _, c := range cases {
		got := normalizeAngle(c.a)
		if got < 0 || got >= 360 || !scalar.EqualWithinAbs(got, c.want, 1e-9) {
			t.Errorf("normalizeAngle(%v): got %v want %v", c.a, got, c.want)
		}
	}
}

func TestUnwrapAngle(t *testing.T) {
	cases := []struct {
		prev, next, want float64
	}{
		{prev: 0, next: 90, want: 90},
		{prev: 0, next: 180, want: 180},
		{prev: 180, next: 0, want: 0},
		{prev: 0, next: 350, want: -10},
		{prev: -10, next: 10, want: 10},
		{prev: 350, next: 10, want: 370},
		{prev: 710, next: 5, want: 725},
		{prev: 170, next: 359, want: -1},
		{prev: 190, next: 0, want: 360},
	}

	for _, c := range cases {
		got := unwrapAngle(c.prev, c.next)
		if !scalar.EqualWithinAbs(got, c.want, 1e-9) {
			t.Errorf("unwrapAngle(%v, %v): got %v want %v", c.prev, c.next, got, c.want)
		}
	}
}

func TestTransform(t *testing.T) {
	cases := []struct {
		offset float64
		lines  []string
		radius []float64
		angle  []float64
	}{
		{
			lines:  []string{"G0 X0 Y0", "G0 X0 Y-5", "G0 X0 Y5"},
			radius: []float64{0, 5, 5},
			angle:  []float64{0, 180, 0},
		},
		{
			lines:  []string{"G1 X0 Y10", "G1 X10"},
			radius: []float64{10, math.Sqrt(200)},
			angle:  []float64{0, 45},
		},
		{
			lines:  []string{"G1 X-1 Y10"},
			radius: []float64{math.Sqrt(101)},
			angle:  []float64{math.Atan2(-1, 10) * 180 / math.Pi},
		},
		{
			lines:  []string{"G1 X10 Y0", "G1 X0 Y-10", "G1 X-10 Y0", "G1 X0 Y10", "G1 X10 Y0"},
			radius: []float64{10, 10, 10, 10, 10},
			angle:  []float64{90, 180, 270, 360, 450},
		},
		{
			offset: 5,
			lines:  []string{"G1 X0 Y10"},
			radius: []float64{math.Sqrt(75)},
			angle:  []float64{30},
		},
		{
			offset: 2,
			lines:  []string{"G1 X0 Y1"},
			radius: []float64{0},
			angle:  []float64{90},
		},
	}

	for i, c := range cases {
		tf := Transformer{ToolOffset: c.offset}
		for j, s := range c.lines {
			out, outcome := tf.Transform(parseCommand(t, s))
			if outcome != Transformed {
				t.Errorf("Transform(%d, %s): got %s want transformed", i, s, outcome)
				continue
			}
			r, _ := out.Get('X')
			a, _ := out.Get('Y')
			if !scalar.EqualWithinAbs(r, c.radius[j], 1e-9) {
				t.Errorf("Transform(%d, %s): got radius %v want %v", i, s, r, c.radius[j])
			}
			if !scalar.EqualWithinAbs(a, c.angle[j], 1e-9) {
				t.Errorf("Transform(%d, %s): got angle %v want %v", i, s, a, c.angle[j])
			}
		}
	}
}

func TestTransformOutcome(t *testing.T) {
	cases := []struct {
		s       string
		outcome Outcome
	}{
		{s: "M3 S1000", outcome: NotMotion},
		{s: "; comment", outcome: NotMotion},
		{s: "G92 X1 Y1", outcome: PassedThrough},
		{s: "G1 F100", outcome: PassedThrough},
		{s: "G1 Z5", outcome: PassedThrough},
		{s: "G21", outcome: PassedThrough},
		{s: "G1 X1", outcome: Transformed},
		{s: "G0 Y1", outcome: Transformed},
	}

	for _, c := range cases {
		var tf Transformer
		cmd := parseCommand(t, c.s)
		before := cmd.String()
		out, outcome := tf.Transform(cmd)
		if outcome != c.outcome {
			t.Errorf("Transform(%s): got %s want %s", c.s, outcome, c.outcome)
		}
		if outcome != Transformed && out != cmd {
			t.Errorf("Transform(%s): untouched command was copied", c.s)
		}
		if cmd.String() != before {
			t.Errorf("Transform(%s): command changed to %s", c.s, cmd)
		}
	}
}

func TestTransformContinuity(t *testing.T) {
	var tf Transformer
	prev := 0.0
	for i, deg := range []float64{350, 10, 350, 10, 180, 359, 1, 181, 0} {
		rad := deg * math.Pi / 180
		s := fmt.Sprintf("G1 X%.9f Y%.9f", 20*math.Sin(rad), 20*math.Cos(rad))
		out, _ := tf.Transform(parseCommand(t, s))
		a, _ := out.Get('Y')
		if math.Abs(a-prev) > 180+1e-6 {
			t.Errorf("Transform(%d, %s): step from %v to %v", i, s, prev, a)
		}
		d := math.Abs(normalizeAngle(a) - deg)
		if d > 1e-6 && 360-d > 1e-6 {
			t.Errorf("Transform(%d, %s): got %v want equivalent of %v", i, s, a, deg)
		}
		prev = a
	}

	tf.Reset()
	for i := 1; i <= 36; i++ {
		rad := float64(i*30) * math.Pi / 180
		s := fmt.Sprintf("G1 X%.12f Y%.12f", 10*math.Sin(rad), 10*math.Cos(rad))
		out, _ := tf.Transform(parseCommand(t, s))
		a, _ := out.Get('Y')
		if !scalar.EqualWithinAbs(a, float64(i*30), 1e-6) {
			t.Errorf("Transform(%s): got %v want %v", s, a, i*30)
		}
	}
}

func TestTransformOffset(t *testing.T) {
	prev := math.Inf(1)
	for _, offset := range []float64{0, 1, 2, 5, 9, 9.99} {
		tf := Transformer{ToolOffset: offset}
		out, _ := tf.Transform(parseCommand(t, "G1 X0 Y10"))
		r, _ := out.Get('X')
		if !(r < prev) {
			t.Errorf("Transform(offset %v): radius %v not less than %v", offset, r, prev)
		}
		prev = r
	}
}

func TestTransformG92(t *testing.T) {
	var tf Transformer
	tf.Transform(parseCommand(t, "G1 X10 Y10"))
	if _, outcome := tf.Transform(parseCommand(t, "G92 X0 Y5")); outcome != PassedThrough {
		t.Errorf("Transform(G92): got %s", outcome)
	}
	out, _ := tf.Transform(parseCommand(t, "G1 Z1"))
	if out.Has('X') || out.Has('Y') {
		t.Errorf("Transform(G1 Z1): got %s", out)
	}
	out, _ = tf.Transform(parseCommand(t, "G1 X0"))
	if r, _ := out.Get('X'); r != 5 {
		t.Errorf("Transform(G1 X0) after G92: got radius %v want 5", r)
	}
	if a, _ := out.Get('Y'); !scalar.EqualWithinAbs(a, 0, 1e-9) {
		t.Errorf("Transform(G1 X0) after G92: got angle %v want 0", a)
	}
}
