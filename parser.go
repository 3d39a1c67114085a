package gcode

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type Parser struct {
	// KeepComments retains comments on the parsed commands; otherwise they are parsed and
	// thrown away.
	KeepComments bool

	// Skipped is called for each non-blank line which did not produce a command.
	Skipped func(num int, line string)

	line string
	pos  int
}

func NewParser(keepComments bool) *Parser {
	return &Parser{KeepComments: keepComments}
}

func commentByte(b byte) bool {
	return b == ';' || b == '|' || b == '/' || b == '#'
}

func digitByte(b byte) bool {
	return b >= '0' && b <= '9'
}

func spaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\r' || b == '\n' || b == '\v' || b == '\f'
}

func upcaseByte(b byte) byte {
	if b >= 'a' && b <= 'z' {
		return (b - 'a') + 'A'
	}
	return b
}

func (p *Parser) peekByte(pos int) (byte, bool) {
	if pos >= len(p.line) {
		return 0, false
	}
	return p.line[pos], true
}

// scanNumber scans [+-]?[0-9]*\.?[0-9]+ at pos and returns the end of the number, or pos if
// there is no number there.
func (p *Parser) scanNumber(pos int) int {
	end := pos
	if b, ok := p.peekByte(end); ok && (b == '+' || b == '-') {
		end += 1
	}

	whole := end
	for {
		b, ok := p.peekByte(end)
		if !ok || !digitByte(b) {
			break
		}
		end += 1
	}
	cnt := end - whole

	if b, ok := p.peekByte(end); ok && b == '.' {
		fraction := end + 1
		for {
			b, ok := p.peekByte(fraction)
			if !ok || !digitByte(b) {
				break
			}
			fraction += 1
		}
		if fraction > end+1 {
			return fraction
		}
		// A trailing . is not part of the number.
	}

	if cnt == 0 {
		return pos
	}
	return end
}

// parseWord tries to parse a letter and its value at p.pos.
func (p *Parser) parseWord(cmd *Command) bool {
	b := upcaseByte(p.line[p.pos])
	if b < 'A' || b > 'Z' {
		return false
	}

	start := p.pos + 1
	for {
		n, ok := p.peekByte(start)
		if !ok || !spaceByte(n) {
			break
		}
		start += 1
	}

	end := p.scanNumber(start)
	if end == start {
		return false
	}

	val, err := strconv.ParseFloat(p.line[start:end], 64)
	if err != nil {
		// Only reachable for values beyond the range of a float64.
		return false
	}

	if b == 'G' {
		cmd.AddG(val)
	} else {
		cmd.Set(Letter(b), val)
	}
	p.pos = end
	return true
}

// ParseLine parses a single program line. It returns false if the line is blank or has
// nothing in it which makes a command.
func (p *Parser) ParseLine(line string) (*Command, bool) {
	p.line = strings.TrimSpace(line)
	p.pos = 0
	if p.line == "" {
		return nil, false
	}

	var cmd Command
	for p.pos < len(p.line) {
		if p.parseWord(&cmd) {
			continue
		}

		b := p.line[p.pos]
		if commentByte(b) && p.pos+1 < len(p.line) {
			if p.KeepComments {
				cmd.SetComment(p.line[p.pos:])
			}
			break
		}
		p.pos += 1
	}

	if cmd.Empty() {
		return nil, false
	}
	return &cmd, true
}

// ParseLines reads r to the end, parses every non-blank line and returns the commands in
// program order along with the number of lines read.
func (p *Parser) ParseLines(r io.Reader) ([]*Command, int, error) {
	var cmds []*Command
	var num int

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		num += 1
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmd, ok := p.ParseLine(line)
		if !ok {
			if p.Skipped != nil {
				p.Skipped(num, line)
			}
			continue
		}
		cmds = append(cmds, cmd)
	}
	if err := scanner.Err(); err != nil {
		return nil, num, fmt.Errorf("line %d: %w", num+1, err)
	}

	return cmds, num, nil
}
