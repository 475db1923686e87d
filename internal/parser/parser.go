// Package parser reads JavaScript source with the otto parser and lowers
// its AST into the evaluator's executable tree.
package parser

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robertkrimen/otto/ast"
	"github.com/robertkrimen/otto/file"
	ottoparser "github.com/robertkrimen/otto/parser"

	"github.com/rmja/niljs/internal/config"
	"github.com/rmja/niljs/internal/evaluator"
)

// Error is a syntax error at a source position.
type Error struct {
	Position file.Position
	Message  string
}

func (e *Error) Error() string {
	if e.Position.Line == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Position.String(), e.Message)
}

// ErrorList collects every syntax error found in one source.
type ErrorList []*Error

func (l ErrorList) Error() string {
	switch len(l) {
	case 0:
		return "no errors"
	case 1:
		return l[0].Error()
	}
	return fmt.Sprintf("%s (and %d more errors)", l[0].Error(), len(l)-1)
}

func (l ErrorList) err() error {
	if len(l) == 0 {
		return nil
	}
	return l
}

// Parse reads a whole program.
func Parse(name, src string) (*evaluator.Script, error) {
	prog, err := parseProgram(name, src)
	if err != nil {
		return nil, err
	}
	l := &lowerer{file: prog.File}
	body := l.statements(prog.Body)
	if err := l.errs.err(); err != nil {
		return nil, err
	}
	return evaluator.NewScript(name, src, body, hasUseStrict(prog.Body)), nil
}

// ParseEval reads code passed to eval.
func ParseEval(src string) (*evaluator.Script, error) {
	prog, err := parseProgram(config.EvalFuncName, src)
	if err != nil {
		return nil, err
	}
	l := &lowerer{file: prog.File}
	body := l.statements(prog.Body)
	if err := l.errs.err(); err != nil {
		return nil, err
	}
	return evaluator.NewEvalScript(src, body, hasUseStrict(prog.Body)), nil
}

// IsIncomplete reports whether err only says the source ended early, as it
// does for an unfinished block typed into the REPL.
func IsIncomplete(err error) bool {
	var list ErrorList
	if !errors.As(err, &list) || len(list) == 0 {
		return false
	}
	for _, e := range list {
		if !strings.Contains(e.Message, "end of input") {
			return false
		}
	}
	return true
}

// FunctionSource builds the source text the Function constructor parses.
func FunctionSource(params []string, body string) string {
	return "(function anonymous(" + strings.Join(params, ",") + "\n) {\n" + body + "\n})"
}

func parseProgram(name, src string) (*ast.Program, error) {
	prog, err := ottoparser.ParseFile(nil, name, src, 0)
	if err == nil {
		return prog, nil
	}
	var list *ottoparser.ErrorList
	if errors.As(err, &list) && list != nil {
		out := make(ErrorList, 0, len(*list))
		for _, e := range *list {
			out = append(out, &Error{Position: e.Position, Message: e.Message})
		}
		return nil, out
	}
	return nil, fmt.Errorf("parse %s: %w", name, err)
}

// hasUseStrict scans the directive prologue of a body.
func hasUseStrict(body []ast.Statement) bool {
	for _, stmt := range body {
		es, ok := stmt.(*ast.ExpressionStatement)
		if !ok {
			return false
		}
		lit, ok := es.Expression.(*ast.StringLiteral)
		if !ok {
			return false
		}
		if lit.Value == config.UseStrictDirective {
			return true
		}
	}
	return false
}

// lowerer converts one otto program. Unsupported constructs are recorded
// and lowering continues so that every error is reported.
type lowerer struct {
	file *file.File
	errs ErrorList
}

func (l *lowerer) errorf(node ast.Node, format string, args ...any) {
	e := &Error{Message: fmt.Sprintf(format, args...)}
	if l.file != nil && node != nil {
		if pos := l.file.Position(node.Idx0()); pos != nil {
			e.Position = *pos
		}
	}
	l.errs = append(l.errs, e)
}
