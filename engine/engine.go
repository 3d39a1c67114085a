// Package engine turns a Cartesian program into one for a polar machine: long moves are
// subdivided, X and Y become a radius and an angle, and feed rates are compensated for the
// radius.
package engine

import (
	"bufio"
	"fmt"
	"io"

	gcode "github.com/leftmike/polargcode"
	"github.com/leftmike/polargcode/config"
	"github.com/leftmike/polargcode/internal/log"
)

// Stats counts what happened during a run.
type Stats struct {
	Lines       int // lines read, including blank ones
	Skipped     int // non-blank lines without a command
	Commands    int
	Segments    int // extra commands added by subdivision
	Transformed int
	Emitted     int // lines written
}

// Engine runs commands through the interpolator, the transformer and the feed compensator,
// in program order. It is not safe for concurrent use.
type Engine struct {
	logger       *log.Logger
	parser       *gcode.Parser
	formatter    *gcode.Formatter
	interpolator Interpolator
	transformer  Transformer
	feed         FeedCompensator
	stats        Stats
}

// New validates cfg and returns an engine for it. A nil logger discards everything.
func New(cfg config.Config, logger *log.Logger) (*Engine, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Discard()
	}

	relabel := map[gcode.Letter]gcode.Letter{}
	for from, to := range cfg.Relabel() {
		relabel[gcode.Letter(from)] = gcode.Letter(to)
	}

	eng := &Engine{
		logger: logger,
		parser: gcode.NewParser(cfg.KeepComments),
		formatter: &gcode.Formatter{
			Precision:    cfg.DecimalPrecision,
			KeepComments: cfg.KeepComments,
			Reorder:      cfg.Reorder,
			Relabel:      relabel,
		},
		interpolator: Interpolator{
			Tolerance:       cfg.Tolerance,
			InterpolateG0:   cfg.InterpolateG0,
			InterpolateG1:   cfg.InterpolateG1,
			G0HalfTolerance: cfg.G0HalfTolerance,
		},
		transformer: Transformer{
			ToolOffset: cfg.ToolOffset,
		},
		feed: FeedCompensator{
			MaximumRadius: cfg.MaximumRadius,
			Boost:         cfg.Boost(),
		},
	}
	eng.parser.Skipped = func(num int, line string) {
		eng.stats.Skipped += 1
		eng.logger.WithField("line", num).Debug("skipped %q", line)
	}
	return eng, nil
}

// Reset returns the engine to the state of a new program: the machine at the origin with an
// angle of zero and no feed rate.
func (eng *Engine) Reset() {
	eng.interpolator.Reset()
	eng.transformer.Reset()
	eng.feed.Reset()
	eng.stats = Stats{}
}

func (eng *Engine) Formatter() *gcode.Formatter {
	return eng.formatter
}

func (eng *Engine) Stats() Stats {
	return eng.stats
}

// Polarize returns the commands which replace cmd in the output program.
func (eng *Engine) Polarize(cmd *gcode.Command) []*gcode.Command {
	eng.stats.Commands += 1

	segs := eng.interpolator.Interpolate(cmd)
	eng.stats.Segments += len(segs) - 1

	out := make([]*gcode.Command, 0, len(segs))
	for _, seg := range segs {
		pcmd, outcome := eng.transformer.Transform(seg)
		if outcome == Transformed {
			eng.stats.Transformed += 1
		}
		eng.feed.Compensate(pcmd, outcome == Transformed)
		out = append(out, pcmd)
	}
	return out
}

// Run reads and parses all of r, then polarizes every command.
func (eng *Engine) Run(r io.Reader) ([]*gcode.Command, error) {
	cmds, num, err := eng.parser.ParseLines(r)
	eng.stats.Lines += num
	if err != nil {
		return nil, err
	}

	var out []*gcode.Command
	for _, cmd := range cmds {
		out = append(out, eng.Polarize(cmd)...)
	}
	return out, nil
}

// Evaluate polarizes the program in r and writes it to w, one line per command.
func (eng *Engine) Evaluate(r io.Reader, w io.Writer) (Stats, error) {
	cmds, err := eng.Run(r)
	if err != nil {
		return eng.stats, fmt.Errorf("engine: read failed: %w", err)
	}

	bw := bufio.NewWriter(w)
	for _, cmd := range cmds {
		s, ok := eng.formatter.Format(cmd)
		if !ok {
			continue
		}
		bw.WriteString(s)
		bw.WriteByte('\n')
		eng.stats.Emitted += 1
	}
	err = bw.Flush()
	if err != nil {
		return eng.stats, fmt.Errorf("engine: write failed: %w", err)
	}

	eng.logger.WithFields(log.Fields{
		"lines":       eng.stats.Lines,
		"skipped":     eng.stats.Skipped,
		"commands":    eng.stats.Commands,
		"segments":    eng.stats.Segments,
		"transformed": eng.stats.Transformed,
		"emitted":     eng.stats.Emitted,
	}).Info("polarized")
	return eng.stats, nil
}
