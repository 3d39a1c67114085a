package gcode

import (
	"html"
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Words are written in this order when reordering; anything else follows in the order it
// appeared.
var priorityOrder = [...]Letter{'M', 'G', 'A', 'X', 'Y', 'Z', 'E', 'F', 'S'}

type Formatter struct {
	Precision    int
	KeepComments bool
	Reorder      bool

	// Relabel renames word letters on output, e.g. Y to A for a rotary axis. Letters not in
	// the map are written as is.
	Relabel map[Letter]Letter
}

type word struct {
	letter Letter
	val    float64
}

// FormatNumber rounds the exact binary value of val to precision decimal places, halves
// away from zero, and drops trailing zeros and a bare decimal point.
func FormatNumber(val float64, precision int) string {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return strconv.FormatFloat(val, 'f', -1, 64)
	}

	s := new(big.Rat).SetFloat64(val).FloatString(precision)
	if strings.IndexByte(s, '.') >= 0 {
		s = strings.TrimRight(s, "0")
		s = strings.TrimSuffix(s, ".")
	}
	if s == "-0" {
		// No -0.
		s = "0"
	}
	return s
}

func (f *Formatter) words(cmd *Command) []word {
	words := make([]word, 0, len(cmd.order))
	for _, l := range cmd.order {
		if l == 'G' {
			words = append(words, word{letter: 'G'})
			continue
		}

		target := l
		if to, ok := f.Relabel[l]; ok && to.Valid() {
			target = to
		}

		val := cmd.words[l-'A']
		found := false
		for i := range words {
			if words[i].letter == target {
				words[i].val = val
				found = true
				break
			}
		}
		if !found {
			words = append(words, word{letter: target, val: val})
		}
	}

	if !f.Reorder {
		return words
	}

	ordered := make([]word, 0, len(words))
	for _, l := range priorityOrder {
		for i, w := range words {
			if w.letter == l {
				ordered = append(ordered, w)
				words = append(words[:i:i], words[i+1:]...)
				break
			}
		}
	}
	return append(ordered, words...)
}

func (f *Formatter) gnumbers(cmd *Command) string {
	gs := make([]string, len(cmd.gnums))
	for i, g := range cmd.gnums {
		gs[i] = "G" + strconv.FormatFloat(g, 'f', -1, 64)
	}
	return strings.Join(gs, " ")
}

func (f *Formatter) format(cmd *Command, toHTML bool) (string, bool) {
	var tokens []string
	for _, w := range f.words(cmd) {
		var s string
		if w.letter == 'G' {
			s = f.gnumbers(cmd)
		} else {
			s = w.letter.String() + FormatNumber(w.val, f.Precision)
		}
		if toHTML {
			s = `<span class="gcode_` + w.letter.String() + `">` + s + `</span>`
		}
		tokens = append(tokens, s)
	}

	if f.KeepComments && cmd.comment != "" {
		if toHTML {
			tokens = append(tokens,
				`<span class="gcode_comment">`+html.EscapeString(cmd.comment)+`</span>`)
		} else {
			tokens = append(tokens, cmd.comment)
		}
	}

	if len(tokens) == 0 {
		return "", false
	}
	return strings.Join(tokens, " "), true
}

// Format renders cmd as a program line. It returns false if there is nothing to write.
func (f *Formatter) Format(cmd *Command) (string, bool) {
	return f.format(cmd, false)
}

// FormatHTML renders cmd for display with each word in a span of class gcode_<letter> and
// the comment in a span of class gcode_comment.
func (f *Formatter) FormatHTML(cmd *Command) (string, bool) {
	return f.format(cmd, true)
}
