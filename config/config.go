// Package config holds the options of a polarizing run: subdivision, polar transform, feed
// compensation and output formatting. A Config is built once, validated, and then not
// changed for the length of a run.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	MaxPrecision = 6

	// MinTolerance keeps the number of segments per move within reason.
	MinTolerance = 0.001
)

// RelabelAxes are the axes which can be renamed on output.
var RelabelAxes = []string{"X", "Y", "Z", "E", "A", "B", "C"}

type Config struct {
	// Tolerance is the longest planar chord allowed before a move is subdivided.
	Tolerance       float64 `yaml:"tolerance"`
	InterpolateG0   bool    `yaml:"interpolate_g0"`
	InterpolateG1   bool    `yaml:"interpolate_g1"`
	G0HalfTolerance bool    `yaml:"g0_half_tolerance"` // G0 moves use twice the tolerance

	KeepComments     bool `yaml:"keep_comments"`
	DecimalPrecision int  `yaml:"decimal_precision"`

	// ToolOffset is the distance of the tool tip from the line through the center of
	// rotation.
	ToolOffset float64 `yaml:"tool_offset"`

	// MaximumRadius is the radius of the worktable; 0 turns off feed rate compensation.
	MaximumRadius float64 `yaml:"maximum_radius"`

	// FeedRateMultiplier is the feed rate multiplier at the center of the worktable; 1 means
	// no boost.
	FeedRateMultiplier float64 `yaml:"feed_rate_multiplier"`

	// AxisMap renames axes on output, e.g. Y: A.
	AxisMap map[string]string `yaml:"axis_map"`
	Reorder bool              `yaml:"reorder"`
}

func Default() Config {
	return Config{
		Tolerance:          1.0,
		InterpolateG0:      true,
		InterpolateG1:      true,
		G0HalfTolerance:    true,
		KeepComments:       true,
		DecimalPrecision:   3,
		ToolOffset:         0.0,
		MaximumRadius:      0.0,
		FeedRateMultiplier: 1.0,
		AxisMap: map[string]string{
			"X": "X",
			"Y": "Y",
			"Z": "Z",
			"E": "E",
		},
		Reorder: true,
	}
}

// Parse returns the defaults overridden by the YAML document in data. Unknown keys are an
// error.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	cfg.AxisMap = nil

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	err := dec.Decode(&cfg)
	if err != nil && !errors.Is(err, io.EOF) {
		return Config{}, optionError("file", "", err.Error(), err)
	}

	axes := cfg.AxisMap
	cfg.AxisMap = Default().AxisMap
	for from, to := range axes {
		cfg.AxisMap[strings.ToUpper(from)] = strings.ToUpper(to)
	}

	return cfg, cfg.Validate()
}

func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: unable to read %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func parseFloat(option, value string) (float64, error) {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, optionError(option, value, "expected a number", err)
	} else if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, optionError(option, value, "expected a finite number", nil)
	}
	return f, nil
}

func parseBool(option, value string) (bool, error) {
	b, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return false, optionError(option, value, "expected true or false", err)
	}
	return b, nil
}

// ParseAxisMap parses a list of axis renames such as "Y=A,X=R" or "Y:A X:R".
func ParseAxisMap(s string) (map[string]string, error) {
	m := map[string]string{}
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	for _, f := range fields {
		kv := strings.FieldsFunc(f, func(r rune) bool {
			return r == '=' || r == ':'
		})
		if len(kv) != 2 {
			return nil, optionError("axes", f, "expected FROM=TO", nil)
		}
		m[strings.ToUpper(kv[0])] = strings.ToUpper(kv[1])
	}
	return m, nil
}

// Set sets an option from its text form. Names are the YAML keys; dashes may be used in
// place of underscores, and "axes" takes a list of renames for ParseAxisMap.
func (cfg *Config) Set(option, value string) error {
	var err error
	switch strings.ReplaceAll(strings.ToLower(option), "-", "_") {
	case "tolerance":
		cfg.Tolerance, err = parseFloat(option, value)
	case "interpolate_g0":
		cfg.InterpolateG0, err = parseBool(option, value)
	case "interpolate_g1":
		cfg.InterpolateG1, err = parseBool(option, value)
	case "g0_half_tolerance":
		cfg.G0HalfTolerance, err = parseBool(option, value)
	case "keep_comments":
		cfg.KeepComments, err = parseBool(option, value)
	case "decimal_precision", "precision":
		var n int
		n, err = strconv.Atoi(strings.TrimSpace(value))
		if err != nil {
			return optionError(option, value, "expected an integer between 0 and 6", err)
		}
		cfg.DecimalPrecision = n
	case "tool_offset":
		cfg.ToolOffset, err = parseFloat(option, value)
	case "maximum_radius", "max_radius":
		cfg.MaximumRadius, err = parseFloat(option, value)
	case "feed_rate_multiplier", "feed_multiplier":
		cfg.FeedRateMultiplier, err = parseFloat(option, value)
	case "reorder":
		cfg.Reorder, err = parseBool(option, value)
	case "axis_map", "axes":
		var m map[string]string
		m, err = ParseAxisMap(value)
		if err != nil {
			return err
		}
		if cfg.AxisMap == nil {
			cfg.AxisMap = map[string]string{}
		}
		for from, to := range m {
			cfg.AxisMap[from] = to
		}
	default:
		return optionError(option, "", "unknown option", nil)
	}
	return err
}

func relabelAxis(axis string) bool {
	for _, a := range RelabelAxes {
		if a == axis {
			return true
		}
	}
	return false
}

// Validate checks every option and returns the first problem found.
func (cfg Config) Validate() error {
	for _, opt := range []struct {
		name string
		val  float64
	}{
		{"tolerance", cfg.Tolerance},
		{"tool_offset", cfg.ToolOffset},
		{"maximum_radius", cfg.MaximumRadius},
		{"feed_rate_multiplier", cfg.FeedRateMultiplier},
	} {
		if math.IsNaN(opt.val) || math.IsInf(opt.val, 0) {
			return optionError(opt.name, strconv.FormatFloat(opt.val, 'g', -1, 64),
				"must be a finite number", nil)
		}
	}

	if !(cfg.Tolerance >= MinTolerance) {
		return optionError("tolerance", strconv.FormatFloat(cfg.Tolerance, 'g', -1, 64),
			"must be at least 0.001", nil)
	}
	if cfg.DecimalPrecision < 0 || cfg.DecimalPrecision > MaxPrecision {
		return optionError("decimal_precision", strconv.Itoa(cfg.DecimalPrecision),
			"must be an integer between 0 and 6", nil)
	}
	if cfg.ToolOffset < 0 {
		return optionError("tool_offset", strconv.FormatFloat(cfg.ToolOffset, 'g', -1, 64),
			"must not be negative", nil)
	}
	if cfg.MaximumRadius < 0 {
		return optionError("maximum_radius",
			strconv.FormatFloat(cfg.MaximumRadius, 'g', -1, 64), "must not be negative", nil)
	}

	froms := make([]string, 0, len(cfg.AxisMap))
	for from := range cfg.AxisMap {
		froms = append(froms, from)
	}
	sort.Strings(froms)
	for _, from := range froms {
		to := cfg.AxisMap[from]
		if !relabelAxis(from) {
			return optionError("axis_map", from, "only X, Y, Z, E, A, B and C can be renamed",
				nil)
		}
		if len(to) != 1 || to[0] < 'A' || to[0] > 'Z' || to == "G" {
			return optionError("axis_map", from+"="+to, "must rename to a letter other than G",
				nil)
		}
	}
	return nil
}

// Boost is the factor applied to the feed rate at the center of the worktable.
func (cfg Config) Boost() float64 {
	return cfg.FeedRateMultiplier - 1.0
}

// Relabel returns the axis map as letters.
func (cfg Config) Relabel() map[byte]byte {
	m := make(map[byte]byte, len(cfg.AxisMap))
	for from, to := range cfg.AxisMap {
		if len(from) == 1 && len(to) == 1 {
			m[from[0]] = to[0]
		}
	}
	return m
}
