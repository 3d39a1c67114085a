package gcode

import (
	"testing"
)

func TestCommandWords(t *testing.T) {
	var cmd Command
	if !cmd.Empty() {
		t.Errorf("Empty(): new command not empty")
	}

	cmd.Set('X', 1)
	cmd.AddG(1)
	cmd.Set('F', 100)
	cmd.Set('X', 2)
	if got := cmd.String(); got != "X2 G1 F100" {
		t.Errorf("String(): got %q want %q", got, "X2 G1 F100")
	}

	c := cmd.Clone()
	c.Delete('F')
	c.Set('Y', 3)
	c.AddG(0)
	if got := c.String(); got != "X2 G1 G0 Y3" {
		t.Errorf("String(): got %q want %q", got, "X2 G1 G0 Y3")
	}
	if got := cmd.String(); got != "X2 G1 F100" {
		t.Errorf("String(): clone changed original: got %q", got)
	}
	if _, ok := c.Get('F'); ok {
		t.Errorf("Get(F): deleted word present")
	}
	if !c.HasG(0) || !c.HasG(1) || c.HasG(92) {
		t.Errorf("HasG(): got %v", c.GNumbers())
	}

	c.Delete('G')
	if c.IsMotion() {
		t.Errorf("IsMotion(): G numbers deleted but still motion")
	}
	c.Delete('Q')
	if got := c.String(); got != "X2 Y3" {
		t.Errorf("String(): got %q want %q", got, "X2 Y3")
	}
}

func TestMotionPointUpdate(t *testing.T) {
	cases := []struct {
		s    string
		pt   MotionPoint
		want MotionPoint
	}{
		{s: "G1 X1", pt: MotionPoint{5, 6, 7, 8}, want: MotionPoint{1, 6, 7, 8}},
		{s: "G1 Y-1 E2", pt: MotionPoint{5, 6, 7, 8}, want: MotionPoint{5, -1, 7, 2}},
		{s: "G1 F100", pt: MotionPoint{5, 6, 7, 8}, want: MotionPoint{5, 6, 7, 8}},
		{s: "G92 X0 Y0 Z0 E0", pt: MotionPoint{5, 6, 7, 8}, want: MotionPoint{}},
	}

	p := NewParser(false)
	for _, c := range cases {
		cmd, ok := p.ParseLine(c.s)
		if !ok {
			t.Fatalf("ParseLine(%q) failed", c.s)
		}
		if got := c.pt.Update(cmd); got != c.want {
			t.Errorf("Update(%q): got %+v want %+v", c.s, got, c.want)
		}
	}
}
