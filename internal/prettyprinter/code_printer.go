package prettyprinter

import (
	"bytes"
	"fmt"
	"math"
	"strings"
	"unicode/utf16"

	"github.com/rmja/niljs/internal/evaluator"
)

// --- Code Printer (Output looks like source code) ---

// Precedence levels, higher binds tighter.
const (
	precSequence = iota
	precAssign
	precConditional
	precOr
	precAnd
	precBitOr
	precBitXor
	precBitAnd
	precEquality
	precRelational
	precShift
	precAdditive
	precMultiplicative
	precUnary
	precPostfix
	precCall
	precPrimary
)

var binaryPrecedence = map[evaluator.BinaryOperator]int{
	evaluator.OpBitOr:       precBitOr,
	evaluator.OpBitXor:      precBitXor,
	evaluator.OpBitAnd:      precBitAnd,
	evaluator.OpEq:          precEquality,
	evaluator.OpNotEq:       precEquality,
	evaluator.OpStrictEq:    precEquality,
	evaluator.OpStrictNotEq: precEquality,
	evaluator.OpLess:        precRelational,
	evaluator.OpLessEq:      precRelational,
	evaluator.OpGreater:     precRelational,
	evaluator.OpGreaterEq:   precRelational,
	evaluator.OpIn:          precRelational,
	evaluator.OpInstanceOf:  precRelational,
	evaluator.OpShl:         precShift,
	evaluator.OpShr:         precShift,
	evaluator.OpUShr:        precShift,
	evaluator.OpAdd:         precAdditive,
	evaluator.OpSub:         precAdditive,
	evaluator.OpMul:         precMultiplicative,
	evaluator.OpDiv:         precMultiplicative,
	evaluator.OpMod:         precMultiplicative,
}

func precedence(e evaluator.Expression) int {
	switch e := e.(type) {
	case *evaluator.Sequence:
		return precSequence
	case *evaluator.Assign:
		return precAssign
	case *evaluator.Conditional:
		return precConditional
	case *evaluator.Logical:
		if e.Operator == evaluator.OpAnd {
			return precAnd
		}
		return precOr
	case *evaluator.Binary:
		return binaryPrecedence[e.Operator]
	case *evaluator.Unary:
		return precUnary
	case *evaluator.Update:
		if e.Prefix {
			return precUnary
		}
		return precPostfix
	case *evaluator.Call, *evaluator.GetMember:
		return precCall
	case *evaluator.Constant:
		if e.Value.Kind() == evaluator.KindNumber && math.Signbit(e.Value.Number()) && !math.IsNaN(e.Value.Number()) {
			return precUnary
		}
	}
	return precPrimary
}

// CodePrinter renders a prepared tree back to source text.
type CodePrinter struct {
	buf    bytes.Buffer
	indent int
}

func NewCodePrinter() *CodePrinter {
	return &CodePrinter{}
}

// Print renders a single node.
func Print(n evaluator.Node) string {
	p := NewCodePrinter()
	if s, ok := n.(evaluator.Statement); ok {
		p.statement(s)
	} else {
		n.Accept(p)
	}
	return p.String()
}

// PrintScript renders the top-level statements of a script, one per line.
func PrintScript(s *evaluator.Script) string {
	p := NewCodePrinter()
	for _, stmt := range s.Root.Body.Statements {
		p.statement(stmt)
		p.writeln()
	}
	return p.String()
}

func (p *CodePrinter) String() string {
	return p.buf.String()
}

func (p *CodePrinter) write(s string) {
	p.buf.WriteString(s)
}

func (p *CodePrinter) writeln() {
	p.buf.WriteByte('\n')
}

func (p *CodePrinter) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.buf.WriteString("    ")
	}
}

// expr prints e, adding parentheses only if it binds looser than minPrec.
func (p *CodePrinter) expr(e evaluator.Expression, minPrec int) {
	if e == nil {
		p.write("<???>")
		return
	}
	if precedence(e) < minPrec {
		p.write("(")
		e.Accept(p)
		p.write(")")
		return
	}
	e.Accept(p)
}

func (p *CodePrinter) exprList(list []evaluator.Expression) {
	for i, e := range list {
		if i > 0 {
			p.write(", ")
		}
		p.expr(e, precAssign)
	}
}

func (p *CodePrinter) statement(s evaluator.Statement) {
	p.writeIndent()
	s.Accept(p)
}

// body prints the body of a compound statement: blocks stay on the same
// line, anything else goes indented on the next.
func (p *CodePrinter) body(s evaluator.Statement) {
	if b, ok := s.(*evaluator.Block); ok {
		p.write(" ")
		b.Accept(p)
		return
	}
	p.indent++
	p.writeln()
	p.statement(s)
	p.indent--
}

// leftmost follows the left edge of e to the token a statement would
// start with.
func leftmost(e evaluator.Expression) evaluator.Expression {
	for {
		switch n := e.(type) {
		case *evaluator.Call:
			if n.Construct {
				return n
			}
			e = n.Callee
		case *evaluator.GetMember:
			e = n.Object
		case *evaluator.Binary:
			e = n.Left
		case *evaluator.Logical:
			e = n.Left
		case *evaluator.Assign:
			e = n.Target
		case *evaluator.Conditional:
			e = n.Test
		case *evaluator.Sequence:
			if len(n.Expressions) == 0 {
				return n
			}
			e = n.Expressions[0]
		case *evaluator.Update:
			if n.Prefix {
				return n
			}
			e = n.Target
		default:
			return e
		}
	}
}

// containsCall reports whether a call sits on the member chain of e, which
// would otherwise capture the arguments of an enclosing new.
func containsCall(e evaluator.Expression) bool {
	for {
		switch n := e.(type) {
		case *evaluator.Call:
			return true
		case *evaluator.GetMember:
			e = n.Object
		default:
			return false
		}
	}
}

// Expressions

func (p *CodePrinter) VisitConstant(n *evaluator.Constant) {
	v := n.Value
	switch v.Kind() {
	case evaluator.KindUndefined:
		p.write("void 0")
	case evaluator.KindNull:
		p.write("null")
	case evaluator.KindBoolean:
		p.write(fmt.Sprint(v.Bool()))
	case evaluator.KindNumber:
		p.write(evaluator.NumberToString(v.Number()))
	case evaluator.KindString:
		p.write(quote(v.Str()))
	default:
		p.write(v.Inspect())
	}
}

func (p *CodePrinter) VisitIdentifier(n *evaluator.Identifier) { p.write(n.Name) }
func (p *CodePrinter) VisitThis(*evaluator.This)               { p.write("this") }
func (p *CodePrinter) VisitSuper(*evaluator.Super)             { p.write("super") }

func (p *CodePrinter) VisitFunctionDefinition(n *evaluator.FunctionDefinition) {
	p.write("function")
	if n.Generator {
		p.write("*")
	}
	if n.Name != "" {
		p.write(" " + n.Name)
	}
	p.functionTail(n)
}

// functionTail prints the parameter list and body.
func (p *CodePrinter) functionTail(n *evaluator.FunctionDefinition) {
	names := make([]string, len(n.Parameters))
	for i, param := range n.Parameters {
		names[i] = param.Name
	}
	p.write("(" + strings.Join(names, ", ") + ") ")
	n.Body.Accept(p)
}

func (p *CodePrinter) VisitCall(n *evaluator.Call) {
	if n.Construct {
		p.write("new ")
		if containsCall(n.Callee) {
			p.write("(")
			n.Callee.Accept(p)
			p.write(")")
		} else {
			p.expr(n.Callee, precCall)
		}
	} else {
		p.expr(n.Callee, precCall)
	}
	p.write("(")
	p.exprList(n.Arguments)
	p.write(")")
}

func (p *CodePrinter) VisitSpread(n *evaluator.Spread) {
	p.write("...")
	p.expr(n.Argument, precAssign)
}

func (p *CodePrinter) VisitGetMember(n *evaluator.GetMember) {
	obj := n.Object
	if c, ok := obj.(*evaluator.Constant); ok && c.Value.Kind() == evaluator.KindNumber {
		p.write("(")
		obj.Accept(p)
		p.write(")")
	} else {
		p.expr(obj, precCall)
	}
	if c, ok := n.Property.(*evaluator.Constant); ok && !n.Computed && c.Value.Kind() == evaluator.KindString && isIdentifierName(c.Value.Str()) {
		p.write("." + c.Value.Str())
		return
	}
	p.write("[")
	p.expr(n.Property, precSequence)
	p.write("]")
}

func (p *CodePrinter) VisitAssign(n *evaluator.Assign) {
	p.expr(n.Target, precCall)
	if n.Operator == evaluator.OpNone {
		p.write(" = ")
	} else {
		p.write(" " + n.Operator.String() + "= ")
	}
	p.expr(n.Value, precAssign)
}

func (p *CodePrinter) VisitBinary(n *evaluator.Binary) {
	prec := binaryPrecedence[n.Operator]
	p.expr(n.Left, prec)
	p.write(" " + n.Operator.String() + " ")
	p.expr(n.Right, prec+1)
}

func (p *CodePrinter) VisitLogical(n *evaluator.Logical) {
	prec := precedence(n)
	p.expr(n.Left, prec)
	p.write(" " + n.Operator.String() + " ")
	p.expr(n.Right, prec+1)
}

func (p *CodePrinter) VisitUnary(n *evaluator.Unary) {
	p.write(n.Operator.String())
	operandPrec := precUnary
	if n.Operator == evaluator.OpNegate || n.Operator == evaluator.OpPlus {
		// "- -x" must not print as "--x"
		operandPrec = precPostfix
	}
	p.expr(n.Operand, operandPrec)
}

func (p *CodePrinter) VisitUpdate(n *evaluator.Update) {
	op := "--"
	if n.Increment {
		op = "++"
	}
	if n.Prefix {
		p.write(op)
		p.expr(n.Target, precCall)
		return
	}
	p.expr(n.Target, precCall)
	p.write(op)
}

func (p *CodePrinter) VisitConditional(n *evaluator.Conditional) {
	p.expr(n.Test, precOr)
	p.write(" ? ")
	p.expr(n.Consequent, precAssign)
	p.write(" : ")
	p.expr(n.Alternate, precAssign)
}

func (p *CodePrinter) VisitSequence(n *evaluator.Sequence) {
	if len(n.Expressions) == 1 {
		// indirect member read left by Simplify
		p.write("0, ")
	}
	p.exprList(n.Expressions)
}

func (p *CodePrinter) VisitObjectLiteral(n *evaluator.ObjectLiteral) {
	if len(n.Properties) == 0 {
		p.write("{}")
		return
	}
	p.write("{ ")
	for i, prop := range n.Properties {
		if i > 0 {
			p.write(", ")
		}
		key := prop.Key
		if !isIdentifierName(key) && !isArrayIndex(key) {
			key = quote(key)
		}
		fn, isFn := prop.Value.(*evaluator.FunctionDefinition)
		switch {
		case prop.Kind == evaluator.PropertyGet && isFn:
			p.write("get " + key)
			p.functionTail(fn)
		case prop.Kind == evaluator.PropertySet && isFn:
			p.write("set " + key)
			p.functionTail(fn)
		default:
			p.write(key + ": ")
			p.expr(prop.Value, precAssign)
		}
	}
	p.write(" }")
}

func (p *CodePrinter) VisitArrayLiteral(n *evaluator.ArrayLiteral) {
	p.write("[")
	for i, e := range n.Elements {
		if i > 0 {
			p.write(", ")
		}
		if e != nil {
			p.expr(e, precAssign)
		}
	}
	if k := len(n.Elements); k > 0 && n.Elements[k-1] == nil {
		p.write(",")
	}
	p.write("]")
}

// Statements

func (p *CodePrinter) VisitBlock(n *evaluator.Block) {
	if len(n.Statements) == 0 {
		p.write("{}")
		return
	}
	p.write("{")
	p.indent++
	for _, s := range n.Statements {
		p.writeln()
		p.statement(s)
	}
	p.indent--
	p.writeln()
	p.writeIndent()
	p.write("}")
}

func (p *CodePrinter) VisitExpressionStatement(n *evaluator.ExpressionStatement) {
	switch leftmost(n.Expression).(type) {
	case *evaluator.FunctionDefinition, *evaluator.ObjectLiteral:
		p.write("(")
		n.Expression.Accept(p)
		p.write(");")
		return
	}
	p.expr(n.Expression, precSequence)
	p.write(";")
}

func (p *CodePrinter) declarators(n *evaluator.VarDeclaration) {
	p.write("var ")
	for i, d := range n.Declarations {
		if i > 0 {
			p.write(", ")
		}
		p.write(d.Name.Name)
		if d.Init != nil {
			p.write(" = ")
			p.expr(d.Init, precAssign)
		}
	}
}

func (p *CodePrinter) VisitVarDeclaration(n *evaluator.VarDeclaration) {
	p.declarators(n)
	p.write(";")
}

func (p *CodePrinter) VisitFunctionDeclaration(n *evaluator.FunctionDeclaration) {
	p.VisitFunctionDefinition(n.Function)
}

func (p *CodePrinter) VisitReturn(n *evaluator.Return) {
	if n.Argument == nil {
		p.write("return;")
		return
	}
	p.write("return ")
	p.expr(n.Argument, precSequence)
	p.write(";")
}

func (p *CodePrinter) VisitIf(n *evaluator.If) {
	p.write("if (")
	p.expr(n.Test, precSequence)
	p.write(")")
	p.body(n.Consequent)
	if n.Alternate == nil {
		return
	}
	if _, ok := n.Consequent.(*evaluator.Block); ok {
		p.write(" else")
	} else {
		p.writeln()
		p.writeIndent()
		p.write("else")
	}
	if elseIf, ok := n.Alternate.(*evaluator.If); ok {
		p.write(" ")
		elseIf.Accept(p)
		return
	}
	p.body(n.Alternate)
}

func (p *CodePrinter) VisitFor(n *evaluator.For) {
	p.write("for (")
	switch init := n.Init.(type) {
	case nil:
	case *evaluator.VarDeclaration:
		p.declarators(init)
	case *evaluator.ExpressionStatement:
		p.expr(init.Expression, precSequence)
	default:
		init.Accept(p)
	}
	p.write(";")
	if n.Test != nil {
		p.write(" ")
		p.expr(n.Test, precSequence)
	}
	p.write(";")
	if n.Update != nil {
		p.write(" ")
		p.expr(n.Update, precSequence)
	}
	p.write(")")
	p.body(n.Body)
}

func (p *CodePrinter) VisitForIn(n *evaluator.ForIn) {
	p.write("for (")
	if n.Declare {
		p.write("var ")
	}
	p.expr(n.Target, precCall)
	p.write(" in ")
	p.expr(n.Object, precSequence)
	p.write(")")
	p.body(n.Body)
}

func (p *CodePrinter) VisitWhile(n *evaluator.While) {
	p.write("while (")
	p.expr(n.Test, precSequence)
	p.write(")")
	p.body(n.Body)
}

func (p *CodePrinter) VisitDoWhile(n *evaluator.DoWhile) {
	p.write("do")
	p.body(n.Body)
	if _, ok := n.Body.(*evaluator.Block); ok {
		p.write(" ")
	} else {
		p.writeln()
		p.writeIndent()
	}
	p.write("while (")
	p.expr(n.Test, precSequence)
	p.write(");")
}

func (p *CodePrinter) VisitBreak(n *evaluator.Break) {
	if n.Label == "" {
		p.write("break;")
		return
	}
	p.write("break " + n.Label + ";")
}

func (p *CodePrinter) VisitContinue(n *evaluator.Continue) {
	if n.Label == "" {
		p.write("continue;")
		return
	}
	p.write("continue " + n.Label + ";")
}

func (p *CodePrinter) VisitLabeled(n *evaluator.Labeled) {
	p.write(n.Label + ": ")
	n.Body.Accept(p)
}

func (p *CodePrinter) VisitThrow(n *evaluator.Throw) {
	p.write("throw ")
	p.expr(n.Argument, precSequence)
	p.write(";")
}

func (p *CodePrinter) VisitTry(n *evaluator.Try) {
	p.write("try ")
	n.Block.Accept(p)
	if n.Catch != nil {
		p.write(" catch (" + n.CatchParam.Name + ") ")
		n.Catch.Accept(p)
	}
	if n.Finally != nil {
		p.write(" finally ")
		n.Finally.Accept(p)
	}
}

func (p *CodePrinter) VisitSwitch(n *evaluator.Switch) {
	p.write("switch (")
	p.expr(n.Discriminant, precSequence)
	p.write(") {")
	for _, c := range n.Cases {
		p.writeln()
		p.writeIndent()
		if c.Test == nil {
			p.write("default:")
		} else {
			p.write("case ")
			p.expr(c.Test, precSequence)
			p.write(":")
		}
		p.indent++
		for _, s := range c.Body {
			p.writeln()
			p.statement(s)
		}
		p.indent--
	}
	p.writeln()
	p.writeIndent()
	p.write("}")
}

func (p *CodePrinter) VisitEmpty(*evaluator.Empty) { p.write(";") }

// quote renders s as a double-quoted string literal, escaping by UTF-16
// code unit.
func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, u := range utf16.Encode([]rune(s)) {
		switch u {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if u < 0x20 || u > 0x7e {
				fmt.Fprintf(&b, `\u%04x`, u)
			} else {
				b.WriteByte(byte(u))
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}

var reservedWords = map[string]bool{
	"break": true, "case": true, "catch": true, "continue": true, "debugger": true,
	"default": true, "delete": true, "do": true, "else": true, "finally": true,
	"for": true, "function": true, "if": true, "in": true, "instanceof": true,
	"new": true, "return": true, "switch": true, "this": true, "throw": true,
	"try": true, "typeof": true, "var": true, "void": true, "while": true,
	"with": true, "null": true, "true": true, "false": true,
}

func isIdentifierName(s string) bool {
	if s == "" || reservedWords[s] {
		return false
	}
	for i, c := range s {
		switch {
		case c == '$' || c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z'):
		case i > 0 && c >= '0' && c <= '9':
		default:
			return false
		}
	}
	return true
}

func isArrayIndex(s string) bool {
	if s == "" || (len(s) > 1 && s[0] == '0') {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
