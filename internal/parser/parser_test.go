package parser_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rmja/niljs/internal/config"
	"github.com/rmja/niljs/internal/evaluator"
	"github.com/rmja/niljs/internal/parser"
	"github.com/rmja/niljs/internal/pipeline"
)

func run(t *testing.T, src string) (evaluator.Value, error) {
	t.Helper()
	script, err := parser.Parse("test.js", src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if script.Prepare(); script.HasErrors() {
		t.Fatalf("prepare: %v", script.Diagnostics())
	}
	script.Simplify()
	r := evaluator.NewRealm(config.Default().Engine)
	return r.Run(context.Background(), script)
}

func TestLoweredProgramsRun(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"arithmetic", "1 + 2 * 3", "7"},
		{"compound assignment", "var x = 10; x -= 3; x *= 2; x", "14"},
		{"update", "var i = 5; var j = i++; j * 10 + i", "56"},
		{"prefix update", "var i = 5; --i", "4"},
		{"for loop", "var s = 0; for (var i = 0; i < 4; i++) s += i; s", "6"},
		{"for without var", "var s = 0, i; for (i = 0; i < 3; i++) { s += i; } s", "3"},
		{"while", "var n = 0; while (n < 7) n++; n", "7"},
		{"do while", "var n = 10; do { n++; } while (n < 5); n", "11"},
		{"recursion", "function f(n) { return n < 2 ? n : f(n - 1) + f(n - 2); } f(10)", "55"},
		{"closure", "function mk() { var c = 0; return function () { return ++c; }; } var g = mk(); g(); g()", "2"},
		{"logical", "var a = 0 || 'x'; var b = 1 && null; a + b", "xnull"},
		{"labelled continue", "var n = 0; outer: for (var i = 0; i < 3; i++) { for (var j = 0; j < 3; j++) { if (j == 1) continue outer; n++; } } n", "3"},
		{"switch", "var r; switch (3) { case 1: r = 'a'; break; case 3: r = 'c'; break; default: r = 'd'; } r", "c"},
		{"switch default", "var r; switch ('q') { case 1: r = 'a'; break; default: r = 'd'; } r", "d"},
		{"try catch", "var r; try { throw 'boom'; } catch (e) { r = e + '!'; } r", "boom!"},
		{"finally", "function f() { try { return 1; } finally { x = 2; } } var x; f() + x", "3"},
		{"object literal", "var o = { a: 1, 'b': 2, 3: 4 }; o.a + o.b + o[3]", "7"},
		{"getter", "var o = { get x() { return 42; } }; o.x", "42"},
		{"setter", "var seen; var o = { set x(v) { seen = v; } }; o.x = 9; seen", "9"},
		{"array literal", "var a = [1, , 3]; a.length", "3"},
		{"array hole", "var a = [1, , 3]; 1 in a", "false"},
		{"array hole for in", "var s = ''; for (var k in [1, , 3]) s += k; s", "02"},
		{"return after expression", "function f() { var x; x = 5; return 1; } f()", "1"},
		{"return in nested block", "function f() { var x; { x = 5; return 2; } } f()", "2"},
		{"break keeps loop value", "var i = 0; while (true) { i = 7; break; }", "7"},
		{"for in", "var o = { a: 1, b: 2 }; var k, s = ''; for (k in o) s += k; s", "ab"},
		{"for var in", "var s = ''; for (var k in { p: 1, q: 2 }) s += k; s", "pq"},
		{"typeof", "typeof undeclared + ' ' + typeof function () {}", "undefined function"},
		{"delete", "var o = { a: 1 }; delete o.a; 'a' in o", "false"},
		{"new", "function P(x) { this.x = x; } var p = new P(4); p.x", "4"},
		{"instanceof", "function P() {} new P() instanceof P", "true"},
		{"sequence", "var a = (1, 2, 3); a", "3"},
		{"void", "void 0", "undefined"},
		{"bitwise", "(5 & 3) | (1 << 4) ^ ~0", "-17"},
		{"shift", "-16 >>> 28", "15"},
		{"strict equality", "'1' === 1", "false"},
		{"conditional", "1 > 2 ? 'a' : 'b'", "b"},
		{"hex literal", "0x1f", "31"},
		{"float literal", "1.5e1", "15"},
		{"string escapes", "'a\\tb'.length", "3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := run(t, tt.input)
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			got, err := evaluator.ToString(nil, v)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("%s = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestUseStrictDirective(t *testing.T) {
	script, err := parser.Parse("strict.js", "'use strict'; function f() { return 1; }")
	if err != nil {
		t.Fatal(err)
	}
	if !script.Root.Statistics.Strict {
		t.Error("script-level directive not detected")
	}

	script, err = parser.Parse("loose.js", "var a = 1; 'use strict';")
	if err != nil {
		t.Fatal(err)
	}
	if script.Root.Statistics.Strict {
		t.Error("directive after the prologue must not enable strict mode")
	}

	script, err = parser.Parse("inner.js", "function f() { 'use strict'; return this; }")
	if err != nil {
		t.Fatal(err)
	}
	decl, ok := script.Root.Body.Statements[0].(*evaluator.FunctionDeclaration)
	if !ok {
		t.Fatalf("first statement is %T", script.Root.Body.Statements[0])
	}
	if !decl.Function.Statistics.Strict {
		t.Error("function-level directive not detected")
	}
	if script.Root.Statistics.Strict {
		t.Error("function directive leaked to the script")
	}
}

func TestStrictUndeclaredAssignment(t *testing.T) {
	_, err := run(t, "'use strict'; undeclared = 1;")
	if kind, ok := evaluator.KindOf(err); !ok || kind != evaluator.ErrReference {
		t.Errorf("expected ReferenceError, got %v", err)
	}
}

func TestFunctionSourceIsKept(t *testing.T) {
	src := "function add(a, b) { return a + b; }"
	script, err := parser.Parse("src.js", src)
	if err != nil {
		t.Fatal(err)
	}
	decl := script.Root.Body.Statements[0].(*evaluator.FunctionDeclaration)
	if !strings.HasPrefix(decl.Function.Source, "function add") || !strings.Contains(decl.Function.Source, "return a + b") {
		t.Errorf("source = %q", decl.Function.Source)
	}
	if decl.Function.Name != "add" || len(decl.Function.Parameters) != 2 {
		t.Errorf("name %q, %d parameters", decl.Function.Name, len(decl.Function.Parameters))
	}
	if !decl.Function.Declaration {
		t.Error("function statement not marked as declaration")
	}
}

func TestFunctionSource(t *testing.T) {
	src := parser.FunctionSource([]string{"a", "b"}, "return a * b;")
	script, err := parser.ParseEval(src)
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	if !script.IsEval() {
		t.Error("ParseEval did not produce eval code")
	}
	es, ok := script.Root.Body.Statements[0].(*evaluator.ExpressionStatement)
	if !ok {
		t.Fatalf("statement is %T", script.Root.Body.Statements[0])
	}
	def, ok := es.Expression.(*evaluator.FunctionDefinition)
	if !ok || def.Name != "anonymous" || len(def.Parameters) != 2 {
		t.Errorf("unexpected function %s", es.Expression)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		message string
	}{
		{"unexpected token", "var = 1;", "Unexpected"},
		{"unterminated", "function f( {", "Unexpected"},
		{"with", "with (o) { x; }", "with statement is not supported"},
		{"regexp", "var r = /ab+c/;", "regular expression"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parser.Parse("bad.js", tt.input)
			if err == nil {
				t.Fatal("expected an error")
			}
			var list parser.ErrorList
			if !errors.As(err, &list) || len(list) == 0 {
				t.Fatalf("error %T is not an ErrorList", err)
			}
			if list[0].Position.Line != 1 {
				t.Errorf("line = %d, want 1", list[0].Position.Line)
			}
			if !strings.Contains(err.Error(), tt.message) {
				t.Errorf("error %q does not mention %q", err.Error(), tt.message)
			}
		})
	}
}

func TestParserProcessor(t *testing.T) {
	ctx := pipeline.NewContext("ok.js", "var a = 1;", config.Default())
	ctx = (&parser.ParserProcessor{}).Process(ctx)
	if ctx.Failed() || ctx.Script == nil {
		t.Fatalf("errors: %v", ctx.Errors)
	}
	if ctx.Script.Name != "ok.js" {
		t.Errorf("script name = %q", ctx.Script.Name)
	}

	ctx = pipeline.NewContext("bad.js", "var a = ;\nvar b = ;", config.Default())
	ctx = (&parser.ParserProcessor{}).Process(ctx)
	if !ctx.Failed() || ctx.Script != nil {
		t.Fatal("expected parse errors and no script")
	}
}

func TestIsIncomplete(t *testing.T) {
	tests := []struct {
		src  string
		want bool
	}{
		{"function f() {", true},
		{"var a = [1, 2", true},
		{"if (x) {\n  y();", true},
		{"var = 1;", false},
		{"x = 1;", false},
	}
	for _, tt := range tests {
		_, err := parser.Parse("repl", tt.src)
		if got := parser.IsIncomplete(err); got != tt.want {
			t.Errorf("IsIncomplete(%q) = %v, want %v (err: %v)", tt.src, got, tt.want, err)
		}
	}
}
