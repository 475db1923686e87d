package main

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rmja/niljs/internal/config"
	"github.com/rmja/niljs/internal/conformance"
)

func TestRunExitCodes(t *testing.T) {
	dir := t.TempDir()
	write := func(name, src string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}
	ok := write("ok.js", "var x = [1, 2].join('+');")
	bad := write("bad.js", "undefinedFunction();")
	cfg := write("niljs.yaml", "engine:\n  simplify: false\n")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"file", []string{ok}, 0},
		{"uncaught", []string{bad}, 1},
		{"missing file", []string{filepath.Join(dir, "absent.js")}, 1},
		{"expression", []string{"-e", "1 + 1"}, 0},
		{"thrown expression", []string{"-e", "throw new Error('x')"}, 1},
		{"syntax error", []string{"-e", "var = ;"}, 1},
		{"dump", []string{"-dump", ok}, 0},
		{"config", []string{"-config", cfg, "-p", ok}, 0},
		{"bad config", []string{"-config", filepath.Join(dir, "none.yaml"), ok}, 1},
		{"bad flag", []string{"-nope"}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(tt.args, io.Discard, io.Discard); got != tt.want {
				t.Errorf("run(%v) = %d, want %d", tt.args, got, tt.want)
			}
		})
	}
}

func TestReplKeepsState(t *testing.T) {
	var out bytes.Buffer
	r := newRepl(config.Default(), &out, io.Discard)
	ctx := context.Background()
	for _, input := range []string{"var a = 2;", "a * 21", "'s' + a", "console.log('hi')", "[1, 2]"} {
		r.eval(ctx, input)
	}
	got := out.String()
	for _, want := range []string{"42\n", "\"s2\"\n", "hi\n", "1,2\n"} {
		if !strings.Contains(got, want) {
			t.Errorf("output %q lacks %q", got, want)
		}
	}
}

func TestReplCommands(t *testing.T) {
	var out bytes.Buffer
	r := newRepl(config.Default(), &out, io.Discard)
	if r.command(".help") {
		t.Error(".help exits")
	}
	if r.command(".bogus") {
		t.Error("unknown command exits")
	}
	if !r.command(".exit") {
		t.Error(".exit does not exit")
	}
	if !strings.Contains(out.String(), "unknown command") {
		t.Errorf("output %q", out.String())
	}
}

func TestReport(t *testing.T) {
	run := &conformance.Run{
		ID:     "run-1",
		Dir:    "suite",
		Passed: 1,
		Failed: 1,
		Results: []conformance.Result{
			{Path: "suite/a.js", Passed: true},
			{Path: "suite/b.js", Message: "Uncaught Test262Error: no"},
		},
		Regressions: []string{"suite/b.js"},
	}
	var out bytes.Buffer
	report(&out, run, false)
	want := "FAIL suite/b.js\n     Uncaught Test262Error: no\nsuite: 1/2 passed (run run-1)\nREGRESSION suite/b.js\n"
	if out.String() != want {
		t.Errorf("report = %q, want %q", out.String(), want)
	}

	out.Reset()
	report(&out, run, true)
	if strings.Contains(out.String(), "FAIL") {
		t.Errorf("quiet report lists failures: %q", out.String())
	}
}

func TestTestCommand(t *testing.T) {
	db := filepath.Join(t.TempDir(), "results.db")
	if got := runTestCommand([]string{"-q", "-db", db, "../../internal/conformance/testdata/sputnik"}, io.Discard, io.Discard); got != 0 {
		t.Errorf("sputnik suite exit = %d", got)
	}
	if got := runTestCommand([]string{"-q", "-db", "-", "../../internal/conformance/testdata/failing"}, io.Discard, io.Discard); got != 1 {
		t.Errorf("failing suite exit = %d", got)
	}
	if got := runTestCommand(nil, io.Discard, io.Discard); got != 2 {
		t.Errorf("no dir exit = %d", got)
	}
}
