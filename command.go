package gcode

import (
	"fmt"
	"strconv"
	"strings"
)

// Letter is a word letter: 'A' to 'Z'.
type Letter byte

func (l Letter) Valid() bool {
	return l >= 'A' && l <= 'Z'
}

func (l Letter) String() string {
	return string(rune(l))
}

// Command is one parsed program line: a value for each word letter present, the G numbers
// in the order they appeared, and an optional comment.
type Command struct {
	words   [26]float64
	present uint32
	order   []Letter // first occurrence of each letter; 'G' stands for the G numbers
	gnums   []float64
	comment string
}

func (cmd *Command) bit(l Letter) uint32 {
	if !l.Valid() {
		panic(fmt.Sprintf("invalid word letter: %d", l))
	}
	return 1 << (l - 'A')
}

func (cmd *Command) Has(l Letter) bool {
	if l == 'G' {
		return len(cmd.gnums) > 0
	}
	return cmd.present&cmd.bit(l) != 0
}

func (cmd *Command) Get(l Letter) (float64, bool) {
	if !cmd.Has(l) || l == 'G' {
		return 0, false
	}
	return cmd.words[l-'A'], true
}

// Set overwrites the value of l; a letter seen for the first time goes to the end of the
// word order. Use AddG for G numbers.
func (cmd *Command) Set(l Letter, val float64) {
	if l == 'G' {
		panic("Set: use AddG for G numbers")
	}
	b := cmd.bit(l)
	if cmd.present&b == 0 {
		cmd.present |= b
		cmd.order = append(cmd.order, l)
	}
	cmd.words[l-'A'] = val
}

func (cmd *Command) Delete(l Letter) {
	if l == 'G' {
		cmd.gnums = nil
	} else {
		b := cmd.bit(l)
		if cmd.present&b == 0 {
			return
		}
		cmd.present &^= b
		cmd.words[l-'A'] = 0
	}

	for i, o := range cmd.order {
		if o == l {
			cmd.order = append(cmd.order[:i:i], cmd.order[i+1:]...)
			break
		}
	}
}

func (cmd *Command) AddG(num float64) {
	if len(cmd.gnums) == 0 {
		cmd.order = append(cmd.order, 'G')
	}
	cmd.gnums = append(cmd.gnums, num)
}

func (cmd *Command) GNumbers() []float64 {
	return cmd.gnums
}

func (cmd *Command) HasG(num float64) bool {
	for _, g := range cmd.gnums {
		if g == num {
			return true
		}
	}
	return false
}

// IsMotion is true for any command with at least one G number; only those are interpolated
// and transformed.
func (cmd *Command) IsMotion() bool {
	return len(cmd.gnums) > 0
}

// Comment returns the comment including its delimiter, or "".
func (cmd *Command) Comment() string {
	return cmd.comment
}

func (cmd *Command) SetComment(comment string) {
	cmd.comment = comment
}

// Letters returns the letters present in the order they first appeared.
func (cmd *Command) Letters() []Letter {
	return cmd.order
}

func (cmd *Command) Empty() bool {
	return cmd.present == 0 && len(cmd.gnums) == 0 && cmd.comment == ""
}

func (cmd *Command) Clone() *Command {
	c := *cmd
	c.order = append([]Letter(nil), cmd.order...)
	c.gnums = append([]float64(nil), cmd.gnums...)
	return &c
}

// String is for debugging; use a Formatter for output.
func (cmd *Command) String() string {
	var parts []string
	for _, l := range cmd.order {
		if l == 'G' {
			for _, g := range cmd.gnums {
				parts = append(parts, "G"+strconv.FormatFloat(g, 'f', -1, 64))
			}
		} else {
			parts = append(parts, l.String()+strconv.FormatFloat(cmd.words[l-'A'], 'f', -1, 64))
		}
	}
	if cmd.comment != "" {
		parts = append(parts, cmd.comment)
	}
	return strings.Join(parts, " ")
}

// MotionPoint is a position on the four linear axes.
type MotionPoint struct {
	X, Y, Z, E float64
}

// Update returns pt with each of X, Y, Z and E replaced by the command's value when the
// command has that word; absent axes keep their value from pt.
func (pt MotionPoint) Update(cmd *Command) MotionPoint {
	if x, ok := cmd.Get('X'); ok {
		pt.X = x
	}
	if y, ok := cmd.Get('Y'); ok {
		pt.Y = y
	}
	if z, ok := cmd.Get('Z'); ok {
		pt.Z = z
	}
	if e, ok := cmd.Get('E'); ok {
		pt.E = e
	}
	return pt
}
