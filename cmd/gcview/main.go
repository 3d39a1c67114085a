package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	gcode "github.com/leftmike/polargcode"
	"github.com/leftmike/polargcode/config"
	"github.com/leftmike/polargcode/engine"
	"github.com/leftmike/polargcode/internal/log"
)

const (
	defaultLimit = 1000
)

type point struct {
	X, Y, Z float64
}

func (pt point) String() string {
	return fmt.Sprintf("{x: %s, y: %s, z: %s}", gcode.FormatNumber(pt.X, 4),
		gcode.FormatNumber(pt.Y, 4), gcode.FormatNumber(pt.Z, 4))
}

// toolpath follows the polarized program and returns each G0 and G1 move projected back
// onto the plane, as Zdog path commands, along with the farthest distance from the center.
func toolpath(cmds []*gcode.Command) ([]string, float64) {
	var moves []string
	var radius, angle, z, extent float64
	var cur point

	for _, cmd := range cmds {
		if !cmd.IsMotion() || cmd.HasG(92) {
			continue
		}
		if r, ok := cmd.Get('X'); ok {
			radius = r
		}
		if a, ok := cmd.Get('Y'); ok {
			angle = a
		}
		if v, ok := cmd.Get('Z'); ok {
			z = v
		}

		rad := angle * math.Pi / 180
		pt := point{X: radius * math.Sin(rad), Y: radius * math.Cos(rad), Z: z}
		if pt == cur {
			continue
		}
		cur = pt
		if math.Abs(radius) > extent {
			extent = math.Abs(radius)
		}

		if cmd.HasG(0) {
			moves = append(moves, fmt.Sprintf("  {rapidTo: %s},", pt))
		} else if cmd.HasG(1) {
			moves = append(moves, fmt.Sprintf("  {linearTo: %s},", pt))
		}
	}
	return moves, extent
}

func listing(f *gcode.Formatter, cmds []*gcode.Command, limit int) []string {
	var items []string
	for _, cmd := range cmds {
		s, ok := f.FormatHTML(cmd)
		if !ok {
			continue
		}
		if len(items) == limit {
			items = append(items, `      <li class="gcode_limit">preview limit reached</li>`)
			break
		}
		items = append(items, "      <li>"+s+"</li>")
	}
	return items
}

func writeHTML(w io.Writer, title string, cfg config.Config, f *gcode.Formatter,
	cmds []*gcode.Command, limit int) error {

	moves, extent := toolpath(cmds)
	maxRadius := cfg.MaximumRadius
	if maxRadius < extent {
		maxRadius = extent
	}
	if maxRadius == 0 {
		maxRadius = 1
	}

	params := []string{
		"  maxRadius: " + gcode.FormatNumber(maxRadius, 4) + ",",
		"  zoom: " + gcode.FormatNumber(250/maxRadius, 4) + ",",
		"  axisLength: " + gcode.FormatNumber(maxRadius/10, 4) + ",",
	}

	_, err := fmt.Fprintf(w, indexHTML, strings.Join(listing(f, cmds, limit), "\n"),
		strconv.Quote(title), strings.Join(params, "\n"), strings.Join(moves, "\n"))
	return err
}

func main() {
	configFile := flag.String("config", "", "YAML config `file`")
	limit := flag.Int("limit", defaultLimit, "number of lines to list")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [flags] [file]\n",
			filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	logger := log.New("gcview")
	log.ConfigureFromEnv(logger)

	cfg := config.Default()
	if *configFile != "" {
		var err error
		cfg, err = config.Load(*configFile)
		if err != nil {
			logger.WithError(err).Error("unable to load config")
			os.Exit(1)
		}
	}

	eng, err := engine.New(cfg, logger.WithPrefix("engine"))
	if err != nil {
		logger.WithError(err).Error("invalid config")
		os.Exit(1)
	}

	var r io.Reader = os.Stdin
	title := "stdin"
	if flag.NArg() > 1 {
		flag.Usage()
		os.Exit(2)
	} else if flag.NArg() == 1 {
		title = flag.Arg(0)
		f, err := os.Open(title)
		if err != nil {
			logger.WithError(err).Error("unable to open input")
			os.Exit(1)
		}
		defer f.Close()
		r = f
	}

	cmds, err := eng.Run(bufio.NewReader(r))
	if err != nil {
		logger.WithError(err).WithField("file", title).Error("unable to read input")
		os.Exit(1)
	}

	w := bufio.NewWriter(os.Stdout)
	err = writeHTML(w, title, cfg, eng.Formatter(), cmds, *limit)
	if err == nil {
		err = w.Flush()
	}
	if err != nil {
		logger.WithError(err).Error("unable to write preview")
		os.Exit(1)
	}
}
