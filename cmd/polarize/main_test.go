package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/leftmike/polargcode/config"
	"github.com/leftmike/polargcode/internal/log"
)

func TestPolarizedName(t *testing.T) {
	cases := []struct {
		path, want string
	}{
		{path: "part.gcode", want: "part-polarized.gcode"},
		{path: "part", want: "part-polarized"},
		{path: "dir/part.nc", want: "dir/part-polarized.nc"},
		{path: "dir.v2/part", want: "dir.v2/part-polarized"},
		{path: "a.b.gcode", want: "a.b-polarized.gcode"},
		{path: ".gcode", want: ".gcode-polarized"},
	}

	for _, c := range cases {
		got := polarizedName(filepath.FromSlash(c.path))
		if got != filepath.FromSlash(c.want) {
			t.Errorf("polarizedName(%s): got %s want %s", c.path, got, c.want)
		}
	}
}

func TestSplitArgs(t *testing.T) {
	cases := []struct {
		env  string
		args []string
		want []string
		fail bool
	}{
		{env: "", args: []string{"a.gcode"}, want: []string{"a.gcode"}},
		{env: "  ", args: []string{"a.gcode"}, want: []string{"a.gcode"}},
		{
			env:  `-tolerance 0.5 -axes "Y=A, X=R"`,
			args: []string{"a.gcode"},
			want: []string{"-tolerance", "0.5", "-axes", "Y=A, X=R", "a.gcode"},
		},
		{env: `-config "unterminated`, fail: true},
	}

	for _, c := range cases {
		got, err := splitArgs(c.env, c.args)
		if c.fail {
			if err == nil {
				t.Errorf("splitArgs(%q) did not fail", c.env)
			}
		} else if err != nil {
			t.Errorf("splitArgs(%q) failed with %s", c.env, err)
		} else if !reflect.DeepEqual(got, c.want) {
			t.Errorf("splitArgs(%q): got %q want %q", c.env, got, c.want)
		}
	}
}

func quietLogger() *log.Logger {
	logger := log.New("polarize")
	logger.SetWriter(&bytes.Buffer{})
	return logger
}

func TestRunStdin(t *testing.T) {
	var stdout, stderr bytes.Buffer
	err := run([]string{"-tolerance", "5", "-axes", "Y=A"},
		strings.NewReader("G1 X10 Y0 F500\n"), &stdout, &stderr, quietLogger())
	if err != nil {
		t.Fatalf("run() failed with %s", err)
	}
	want := "G1 A90 X5 F500\nG1 A90 X10\n"
	if stdout.String() != want {
		t.Errorf("run(): got %q want %q", stdout.String(), want)
	}
}

func TestRunFiles(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "part.gcode")
	err := os.WriteFile(input, []byte("G1 X0 Y10\nG1 X10 Y0\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}
	cfgPath := filepath.Join(dir, "polarize.yaml")
	err = os.WriteFile(cfgPath, []byte("tolerance: 0.1\ndecimal_precision: 2\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	err = run([]string{"-config", cfgPath, "-tolerance", "100", input}, nil, &stdout, &stderr,
		quietLogger())
	if err != nil {
		t.Fatalf("run() failed with %s", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "part-polarized.gcode"))
	if err != nil {
		t.Fatal(err)
	}
	want := "G1 X10 Y0\nG1 X10 Y90\n"
	if string(data) != want {
		t.Errorf("run(): got %q want %q", string(data), want)
	}
	if stdout.Len() != 0 {
		t.Errorf("run(): wrote to stdout: %q", stdout.String())
	}

	output := filepath.Join(dir, "out.nc")
	err = run([]string{"-o", output, "-precision", "1", "-tolerance", "100", input}, nil,
		&stdout, &stderr, quietLogger())
	if err != nil {
		t.Fatalf("run(-o) failed with %s", err)
	}
	data, err = os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != want {
		t.Errorf("run(-o): got %q want %q", string(data), want)
	}

	err = run([]string{"-stdout", "-tolerance", "100", input, input}, nil, &stdout, &stderr,
		quietLogger())
	if err != nil {
		t.Fatalf("run(-stdout) failed with %s", err)
	}
	if stdout.String() != want+want {
		t.Errorf("run(-stdout): got %q want %q", stdout.String(), want+want)
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "part.gcode")
	err := os.WriteFile(input, []byte("G1 X1\n"), 0644)
	if err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		args    []string
		invalid bool
	}{
		{args: []string{"-tolerance", "0", input}, invalid: true},
		{args: []string{"-precision", "9", input}, invalid: true},
		{args: []string{"-axes", "Y=GG", input}, invalid: true},
		{args: []string{"-tool-offset", "-1"}, invalid: true},
		{args: []string{"-o", "out.gcode", input, input}},
		{args: []string{"-no-such-flag"}},
		{args: []string{filepath.Join(dir, "missing.gcode")}},
		{args: []string{"-config", filepath.Join(dir, "missing.yaml"), input}},
	}

	for _, c := range cases {
		var stdout, stderr bytes.Buffer
		err := run(c.args, strings.NewReader(""), &stdout, &stderr, quietLogger())
		if err == nil {
			t.Errorf("run(%q) did not fail", c.args)
		} else if c.invalid && !errors.Is(err, config.ErrInvalid) {
			t.Errorf("run(%q): got %s want a config error", c.args, err)
		}
	}
}
