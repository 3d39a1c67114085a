package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/shlex"

	"github.com/leftmike/polargcode/config"
	"github.com/leftmike/polargcode/engine"
	"github.com/leftmike/polargcode/internal/log"
)

const (
	flagsEnv = "POLARIZE_FLAGS"
)

// Flags which are not config options.
var commandFlags = map[string]bool{
	"config": true,
	"o":      true,
	"stdout": true,
	"v":      true,
}

// polarizedName returns path with -polarized before its extension.
func polarizedName(path string) string {
	ext := filepath.Ext(path)
	if ext == "" || ext == filepath.Base(path) {
		return path + "-polarized"
	}
	return strings.TrimSuffix(path, ext) + "-polarized" + ext
}

// splitArgs puts the arguments from env in front of args.
func splitArgs(env string, args []string) ([]string, error) {
	if strings.TrimSpace(env) == "" {
		return args, nil
	}
	envArgs, err := shlex.Split(env)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", flagsEnv, err)
	}
	return append(envArgs, args...), nil
}

type polarizer struct {
	cfg      config.Config
	logger   *log.Logger
	output   string
	toStdout bool
	stdout   io.Writer
}

func (p *polarizer) polarizeFile(path string) error {
	in, err := os.Open(path)
	if err != nil {
		return err
	}
	defer in.Close()

	eng, err := engine.New(p.cfg, p.logger.WithPrefix("engine"))
	if err != nil {
		return err
	}

	if p.toStdout {
		_, err = eng.Evaluate(bufio.NewReader(in), p.stdout)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		return nil
	}

	outPath := p.output
	if outPath == "" {
		outPath = polarizedName(path)
	}
	out, err := os.Create(outPath)
	if err != nil {
		return err
	}

	stats, err := eng.Evaluate(bufio.NewReader(in), out)
	cerr := out.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	} else if cerr != nil {
		return cerr
	}

	p.logger.WithFields(log.Fields{
		"input":  path,
		"output": outPath,
		"lines":  stats.Emitted,
	}).Info("wrote %s", outPath)
	return nil
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer, logger *log.Logger) error {
	def := config.Default()

	fs := flag.NewFlagSet("polarize", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configFile := fs.String("config", "", "YAML config `file`; flags override it")
	fs.Float64("tolerance", def.Tolerance, "longest XY segment before a move is subdivided")
	fs.Bool("interpolate-g0", def.InterpolateG0, "subdivide G0 moves")
	fs.Bool("interpolate-g1", def.InterpolateG1, "subdivide G1 moves")
	fs.Bool("g0-half-tolerance", def.G0HalfTolerance, "allow G0 segments twice the tolerance")
	fs.Bool("keep-comments", def.KeepComments, "keep comments in the output")
	fs.Int("precision", def.DecimalPrecision, "decimal places in the output (0 to 6)")
	fs.Float64("tool-offset", def.ToolOffset,
		"distance of the tool tip from the line through the center of rotation")
	fs.Float64("max-radius", def.MaximumRadius,
		"worktable radius for feed rate compensation; 0 turns it off")
	fs.Float64("feed-multiplier", def.FeedRateMultiplier,
		"feed rate multiplier at the center of the worktable")
	fs.String("axes", "", "rename axes on output, e.g. `Y=A,X=R`")
	fs.Bool("reorder", def.Reorder, "write words in the order M G A X Y Z E F S")
	output := fs.String("o", "", "output `file`; only with a single input")
	toStdout := fs.Bool("stdout", false, "write to stdout instead of files")
	verbose := fs.Bool("v", false, "log debug messages")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: polarize [flags] [file ...]\n")
		fs.PrintDefaults()
		fmt.Fprintf(fs.Output(), "\nflags are also read from $%s\n", flagsEnv)
	}

	err := fs.Parse(args)
	if err != nil {
		return err
	}
	if *verbose {
		logger.SetLevel(log.DEBUG)
	}

	cfg := def
	if *configFile != "" {
		cfg, err = config.Load(*configFile)
		if err != nil {
			return err
		}
	}
	fs.Visit(func(f *flag.Flag) {
		if err != nil || commandFlags[f.Name] {
			return
		}
		err = cfg.Set(f.Name, f.Value.String())
	})
	if err != nil {
		return err
	}
	err = cfg.Validate()
	if err != nil {
		return err
	}

	files := fs.Args()
	if *output != "" && len(files) != 1 {
		return errors.New("-o needs exactly one input file")
	}

	if len(files) == 0 {
		eng, err := engine.New(cfg, logger.WithPrefix("engine"))
		if err != nil {
			return err
		}
		_, err = eng.Evaluate(bufio.NewReader(stdin), stdout)
		return err
	}

	p := polarizer{
		cfg:      cfg,
		logger:   logger,
		output:   *output,
		toStdout: *toStdout,
		stdout:   stdout,
	}
	for _, path := range files {
		err = p.polarizeFile(path)
		if err != nil {
			return err
		}
	}
	return nil
}

func main() {
	logger := log.New("polarize")
	log.ConfigureFromEnv(logger)

	args, err := splitArgs(os.Getenv(flagsEnv), os.Args[1:])
	if err != nil {
		logger.WithError(err).Error("bad arguments")
		os.Exit(2)
	}

	w := bufio.NewWriter(os.Stdout)
	err = run(args, os.Stdin, w, os.Stderr, logger)
	if ferr := w.Flush(); err == nil {
		err = ferr
	}
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	} else if err != nil {
		logger.WithError(err).Error("polarize failed")
		os.Exit(1)
	}
}
