package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/peterh/liner"

	"github.com/rmja/niljs/internal/backend"
	"github.com/rmja/niljs/internal/builtins"
	"github.com/rmja/niljs/internal/config"
	"github.com/rmja/niljs/internal/evaluator"
	"github.com/rmja/niljs/internal/parser"
	"github.com/rmja/niljs/internal/pipeline"
)

const (
	promptMain = "> "
	promptCont = "... "
)

// repl evaluates inputs one after another in a single realm.
type repl struct {
	opts  config.Options
	realm *evaluator.Realm
	exec  *pipeline.Pipeline
	out   io.Writer
	errs  io.Writer
}

func newRepl(opts config.Options, out, errs io.Writer) *repl {
	realm := builtins.NewRealm(opts.Engine)
	realm.Out = out
	return &repl{
		opts:  opts,
		realm: realm,
		exec:  newPipeline(backend.NewTreeWalk()),
		out:   out,
		errs:  errs,
	}
}

// eval runs one input and writes its value or errors.
func (r *repl) eval(host context.Context, code string) {
	pctx := pipeline.NewContext("<repl>", code, r.opts)
	pctx.Host = host
	pctx.Realm = r.realm
	pctx = r.exec.Run(pctx)
	if pctx.Failed() {
		for _, err := range pctx.Errors {
			printError(r.errs, err)
		}
		return
	}
	if pctx.Result.Kind() == evaluator.KindString {
		fmt.Fprintln(r.out, pctx.Result.Inspect())
		return
	}
	fmt.Fprintln(r.out, display(r.realm, pctx.Result))
}

// command handles a line starting with a dot. It reports whether the REPL
// should exit.
func (r *repl) command(line string) bool {
	switch strings.TrimSpace(line) {
	case ".exit", ".quit":
		return true
	case ".help":
		fmt.Fprintln(r.out, ".exit  leave the REPL\n.help  show this help")
	default:
		fmt.Fprintln(r.out, "unknown command, type .help")
	}
	return false
}

func runRepl(opts config.Options, stdout, stderr io.Writer) int {
	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	history := historyPath()
	if history != "" {
		if f, err := os.Open(history); err == nil {
			ln.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(history); err == nil {
				ln.WriteHistory(f)
				f.Close()
			}
		}()
	}

	r := newRepl(opts, stdout, stderr)
	for {
		code, ok := readInput(ln)
		if !ok {
			fmt.Fprintln(stdout)
			return 0
		}
		if strings.TrimSpace(code) == "" {
			continue
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
		if strings.HasPrefix(code, ".") {
			if r.command(code) {
				return 0
			}
			continue
		}
		host, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		r.eval(host, code)
		stop()
	}
}

// readInput prompts until the input parses or fails with an error other
// than a premature end.
func readInput(ln *liner.State) (string, bool) {
	var b strings.Builder
	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if errors.Is(err, liner.ErrPromptAborted) {
			return "", true
		}
		if err != nil {
			log.Errorf("read input: %s", err)
			return "", false
		}
		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		src := b.String()
		if _, err := parser.Parse("<repl>", src); err != nil && parser.IsIncomplete(err) {
			continue
		}
		return src, true
	}
}
