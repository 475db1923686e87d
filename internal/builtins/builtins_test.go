package builtins_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/rmja/niljs/internal/builtins"
	"github.com/rmja/niljs/internal/config"
	"github.com/rmja/niljs/internal/evaluator"
	"github.com/rmja/niljs/internal/parser"
)

func newRealm() (*evaluator.Realm, *bytes.Buffer) {
	r := builtins.NewRealm(config.Default().Engine)
	out := &bytes.Buffer{}
	r.Out = out
	return r, out
}

func run(t *testing.T, r *evaluator.Realm, src string) (evaluator.Value, error) {
	t.Helper()
	script, err := parser.Parse("test.js", src)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if script.Prepare(); script.HasErrors() {
		t.Fatalf("prepare: %v", script.Diagnostics())
	}
	script.Simplify()
	return r.Run(context.Background(), script)
}

type evalTest struct {
	name  string
	input string
	want  string
}

func runTable(t *testing.T, tests []evalTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, _ := newRealm()
			v, err := run(t, r, tt.input)
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

func TestObjectConstructor(t *testing.T) {
	runTable(t, []evalTest{
		{"wraps primitives", "typeof Object(1)", "object"},
		{"identity for objects", "var o = {}; Object(o) === o", "true"},
		{"fresh for null", "var o = Object(null); typeof o + (o === null)", "objectfalse"},
		{"fresh for undefined", "Object(undefined) instanceof Object", "true"},
		{"new with value", "new Object('ab').length", "2"},
		{"keys", "Object.keys({ a: 1, b: 2 }).join()", "a,b"},
		{"create", "var p = { x: 7 }; var o = Object.create(p); o.x + ' ' + o.hasOwnProperty('x')", "7 false"},
		{"getPrototypeOf", "Object.getPrototypeOf([]) === Array.prototype", "true"},
		{"defineProperty read only", "var o = {}; Object.defineProperty(o, 'x', { value: 1 }); o.x = 5; o.x", "1"},
		{"defineProperty hidden", "var o = { a: 1 }; Object.defineProperty(o, 'b', { value: 2 }); Object.keys(o).join()", "a"},
		{"defineProperty getter", "var o = {}; Object.defineProperty(o, 'x', { get: function () { return 3; } }); o.x", "3"},
		{"propertyIsEnumerable", "[1].propertyIsEnumerable(0) + ' ' + [1].propertyIsEnumerable('length')", "true false"},
		{"isPrototypeOf", "Array.prototype.isPrototypeOf([])", "true"},
		{"toString tag", "Object.prototype.toString.call([])", "[object Array]"},
	})
}

func TestArrayMethods(t *testing.T) {
	runTable(t, []evalTest{
		{"constructor length", "new Array(3).length", "3"},
		{"constructor values", "new Array(1, 2).join('-')", "1-2"},
		{"isArray", "Array.isArray([]) + ' ' + Array.isArray({})", "true false"},
		{"push", "var a = []; a.push(1, 2) + a.length", "4"},
		{"pop", "var a = [1, 2]; a.pop() + a.length", "3"},
		{"shift", "var a = [1, 2, 3]; a.shift() + '|' + a.join()", "1|2,3"},
		{"unshift", "var a = [3]; a.unshift(1, 2); a.join()", "1,2,3"},
		{"indexOf", "[1, 2, 3, 2].indexOf(2)", "1"},
		{"indexOf from", "[1, 2, 3, 2].indexOf(2, 2)", "3"},
		{"indexOf strict", "[1, '2'].indexOf(2)", "-1"},
		{"indexOf on array-like", "var obj = {}; obj.length = 3; obj[2] = true; Array.prototype.indexOf.call(obj, true)", "2"},
		{"lastIndexOf", "[1, 2, 3, 2].lastIndexOf(2)", "3"},
		{"some", "[1, 2, 3].some(function (x) { return x > 2; })", "true"},
		{"every", "[1, 2, 3].every(function (x) { return x > 1; })", "false"},
		{"forEach", "var s = 0; [1, 2, 3].forEach(function (x, i) { s += x * i; }); s", "8"},
		{"map", "[1, 2, 3].map(function (x) { return x * 2; }).join('-')", "2-4-6"},
		{"filter", "[1, 2, 3, 4].filter(function (x) { return x % 2 == 0; }).join()", "2,4"},
		{"reduce", "[1, 2, 3].reduce(function (a, b) { return a + b; })", "6"},
		{"reduce initial", "[].reduce(function (a, b) { return a + b; }, 'x')", "x"},
		{"join holes", "[1, null, undefined, 4].join()", "1,,,4"},
		{"toString", "String([1, [2, 3]])", "1,2,3"},
		{"slice", "[1, 2, 3, 4].slice(1, -1).join()", "2,3"},
		{"splice", "var a = [1, 2, 3, 4]; a.splice(1, 2, 'x').join() + '|' + a.join()", "2,3|1,x,4"},
		{"concat", "[1].concat([2, 3], 4).length", "4"},
		{"reverse", "[1, 2, 3].reverse().join('')", "321"},
		{"sort default", "[10, 9, 1].sort().join()", "1,10,9"},
		{"sort comparator", "[10, 9, 1].sort(function (a, b) { return a - b; }).join()", "1,9,10"},
		{"sort undefined last", "[undefined, 2, 1].sort().join()", "1,2,"},
		{"length truncates", "var a = [1, 2, 3]; a.length = 1; a.join()", "1"},
	})
}

func TestStringMethods(t *testing.T) {
	runTable(t, []evalTest{
		{"call converts", "String(12) + String(true)", "12true"},
		{"construct wraps", "typeof new String('a')", "object"},
		{"fromCharCode", "String.fromCharCode(72, 105)", "Hi"},
		{"charAt", "'abc'.charAt(1) + 'abc'.charAt(9)", "b"},
		{"charCodeAt", "'A'.charCodeAt(0)", "65"},
		{"indexOf", "'hello'.indexOf('l') + ' ' + 'hello'.indexOf('z')", "2 -1"},
		{"lastIndexOf", "'hello'.lastIndexOf('l')", "3"},
		{"substring swaps", "'abcdef'.substring(4, 1)", "bcd"},
		{"substr negative", "'abcdef'.substr(-3, 2)", "de"},
		{"slice negative", "'abcdef'.slice(-2)", "ef"},
		{"case", "'Hello'.toUpperCase() + 'Hello'.toLowerCase()", "HELLOhello"},
		{"trim", "'[' + '  x \\t'.trim() + ']'", "[x]"},
		{"split", "'a,b,c'.split(',').length", "3"},
		{"split limit", "'a,b,c'.split(',', 2).join('|')", "a|b"},
		{"split chars", "'abc'.split('').join('-')", "a-b-c"},
		{"concat", "'a'.concat(1, 'b')", "a1b"},
		{"valueOf", "new String('q').valueOf()", "q"},
		{"length of wrapper", "new String('abcd').length", "4"},
	})
}

func TestNumberAndBoolean(t *testing.T) {
	runTable(t, []evalTest{
		{"call converts", "Number('42') + 1", "43"},
		{"empty call", "Number()", "0"},
		{"radix", "(255).toString(16)", "ff"},
		{"binary", "(5).toString(2)", "101"},
		{"toFixed", "(3.14159).toFixed(2)", "3.14"},
		{"constants", "Number.POSITIVE_INFINITY === Infinity", "true"},
		{"wrapper valueOf", "new Number(5) + 1", "6"},
		{"boolean call", "Boolean('') + ' ' + Boolean('x')", "false true"},
		{"boolean wrapper truthy", "new Boolean(false) ? 1 : 2", "1"},
		{"boolean wrapper string", "String(new Boolean(false))", "false"},
	})
}

func TestMath(t *testing.T) {
	runTable(t, []evalTest{
		{"max", "Math.max(1, 3, 2)", "3"},
		{"max empty", "Math.max()", "-Infinity"},
		{"min nan", "Math.min(1, NaN)", "NaN"},
		{"round half", "Math.round(2.5) + ' ' + Math.round(-2.5)", "3 -2"},
		{"floor", "Math.floor(-1.5)", "-2"},
		{"ceil", "Math.ceil(1.2)", "2"},
		{"abs", "Math.abs(-4)", "4"},
		{"pow", "Math.pow(2, 10)", "1024"},
		{"sqrt", "Math.sqrt(81)", "9"},
		{"random range", "var r = Math.random(); r >= 0 && r < 1", "true"},
		{"pi", "Math.PI > 3.14 && Math.PI < 3.15", "true"},
	})
}

func TestGlobalFunctions(t *testing.T) {
	runTable(t, []evalTest{
		{"parseInt hex", "parseInt('0x1f')", "31"},
		{"parseInt prefix", "parseInt('12px')", "12"},
		{"parseInt radix", "parseInt('z', 36)", "35"},
		{"parseInt negative", "parseInt('  -7')", "-7"},
		{"parseInt invalid", "isNaN(parseInt('px'))", "true"},
		{"parseFloat", "parseFloat('3.5e2abc')", "350"},
		{"parseFloat dot", "parseFloat('.5')", "0.5"},
		{"parseFloat infinity", "parseFloat('-Infinityx')", "-Infinity"},
		{"isNaN", "isNaN('abc') + ' ' + isNaN('1')", "true false"},
		{"isFinite", "isFinite(1 / 0)", "false"},
	})
}

func TestEval(t *testing.T) {
	runTable(t, []evalTest{
		{"expression", "eval('1 + 2')", "3"},
		{"non string", "eval(5)", "5"},
		{"direct sees locals", "var x = 'g'; function f() { var x = 'l'; return eval('x'); } f()", "l"},
		{"indirect sees globals", "var x = 'g'; var e = eval; function f() { var x = 'l'; return e('x'); } f()", "g"},
		{"direct declares in caller", "function f() { eval('var y = 4'); return y; } f()", "4"},
		{"global declaration", "eval('var z = 9'); z", "9"},
		{"syntax error", "var r; try { eval('var = ;'); } catch (e) { r = e instanceof SyntaxError; } r", "true"},
	})
}

func TestFunctionConstructor(t *testing.T) {
	runTable(t, []evalTest{
		{"params and body", "new Function('a', 'b', 'return a + b')(2, 3)", "5"},
		{"joined params", "Function('a, b', 'return a * b')(4, 5)", "20"},
		{"no params", "Function('return 7')()", "7"},
		{"global scope", "var q = 'g'; function f() { var q = 'l'; return Function('return q')(); } f()", "g"},
		{"syntax error", "var r = 'no'; try { Function('return ('); } catch (e) { r = e.name; } r", "SyntaxError"},
	})
}

func TestErrorConstructors(t *testing.T) {
	runTable(t, []evalTest{
		{"message", "new Error('m').message", "m"},
		{"call without new", "Error('x') instanceof Error", "true"},
		{"subclass chain", "new TypeError() instanceof Error", "true"},
		{"toString", "String(new RangeError('r'))", "RangeError: r"},
		{"runtime type error", "var r; try { null.x; } catch (e) { r = e instanceof TypeError; } r", "true"},
		{"runtime reference error", "var r; try { nope; } catch (e) { r = e.name; } r", "ReferenceError"},
		{"name", "ReferenceError.prototype.name", "ReferenceError"},
	})
}

func TestDebugOutput(t *testing.T) {
	r, out := newRealm()
	_, err := run(t, r, "console.log('a', 1, true); Debug.write('x'); Debug.writeln('y');")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := out.String(), "a 1 true\nxy\n"; got != want {
		t.Errorf("output = %q, want %q", got, want)
	}

	_, err = run(t, r, "Debug.assert(1 > 2, 'order')")
	if kind, ok := evaluator.KindOf(err); !ok || kind != evaluator.ErrGeneric {
		t.Fatalf("expected Error, got %v", err)
	}
}

func TestBuiltinsAreHidden(t *testing.T) {
	r, _ := newRealm()
	v, err := run(t, r, "var ks = []; for (var k in this) ks.push(k); ks.sort().join()")
	if err != nil {
		t.Fatal(err)
	}
	if got := v.Str(); got != "k,ks" {
		t.Errorf("enumerable globals = %q", got)
	}
}
