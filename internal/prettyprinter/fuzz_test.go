package prettyprinter_test

import (
	"testing"

	"github.com/rmja/niljs/internal/parser"
	"github.com/rmja/niljs/internal/prettyprinter"
)

// FuzzRoundTrip checks that printed code parses again and prints the same
// way a second time.
func FuzzRoundTrip(f *testing.F) {
	f.Add("var a = 1, b;")
	f.Add("x = (1 + 2) * 3;")
	f.Add("a - (b - c);")
	f.Add("new (f())();")
	f.Add("if (a) { b(); } else c();")
	f.Add("for (var i = 0; i < 3; i++) { s += i; }")
	f.Add("switch (x) { case 1: y(); break; default: z(); }")
	f.Add("try { a(); } catch (e) { b(); } finally { c(); }")

	f.Fuzz(func(t *testing.T, src string) {
		if len(src) > 2048 {
			return
		}
		script, err := parser.Parse("fuzz.js", src)
		if err != nil {
			return
		}
		printed := prettyprinter.PrintScript(script)
		again, err := parser.Parse("fuzz.js", printed)
		if err != nil {
			t.Fatalf("printed code does not parse: %v\n%s", err, printed)
		}
		if reprinted := prettyprinter.PrintScript(again); reprinted != printed {
			t.Errorf("printing is not stable:\n%s\n---\n%s", printed, reprinted)
		}
	})
}
