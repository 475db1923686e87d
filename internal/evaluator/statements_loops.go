package evaluator

import (
	"slices"
)

// loopLabels holds the labels a Labeled statement attached to a loop, so
// that labeled continue reaches the right iteration.
type loopLabels struct {
	labels []string
}

func (l *loopLabels) addLabel(label string) { l.labels = append(l.labels, label) }

// Labels returns the statement labels that target this loop.
func (l *loopLabels) Labels() []string { return l.labels }

func (l *loopLabels) owns(label string) bool {
	return label == "" || slices.Contains(l.labels, label)
}

// step interprets the completion of one body run. exit reports that the
// loop must stop and return result.
func (l *loopLabels) step(c Completion, last *Completion) (exit bool, result Completion) {
	if c.valued {
		*last = Completion{Value: c.Value, valued: true}
	}
	switch c.Kind {
	case CompletionBreak:
		if l.owns(c.Label) {
			return true, *last
		}
		return true, c
	case CompletionContinue:
		if l.owns(c.Label) {
			return false, normal
		}
		return true, c
	case CompletionReturn, CompletionTailRecursion:
		return true, c
	}
	return false, normal
}

type labelTarget interface {
	addLabel(string)
}

func prepareLoopBody(p *Preparer, body Statement) Statement {
	p.frame.loops++
	body = body.Prepare(p)
	p.frame.loops--
	return body
}

type For struct {
	loopLabels
	Init   Statement
	Test   Expression
	Update Expression
	Body   Statement
}

func (n *For) Accept(v Visitor) { v.VisitFor(n) }
func (n *For) statementNode()   {}

func (n *For) String() string {
	s := "for ("
	if n.Init != nil {
		s += n.Init.String()
	} else {
		s += ";"
	}
	if n.Test != nil {
		s += " " + n.Test.String()
	}
	s += ";"
	if n.Update != nil {
		s += " " + n.Update.String()
	}
	return s + ") " + n.Body.String()
}

func (n *For) Execute(ctx *Context) (Completion, error) {
	if n.Init != nil {
		if _, err := n.Init.Execute(ctx); err != nil {
			return normal, err
		}
	}
	var last Completion
	for {
		if err := ctx.checkInterrupt(); err != nil {
			return normal, err
		}
		if n.Test != nil {
			t, err := n.Test.Evaluate(ctx)
			if err != nil {
				return normal, err
			}
			if !ToBoolean(t) {
				return last, nil
			}
		}
		c, err := n.Body.Execute(ctx)
		if err != nil {
			return normal, err
		}
		if exit, result := n.step(c, &last); exit {
			return result, nil
		}
		if n.Update != nil {
			if _, err := n.Update.Evaluate(ctx); err != nil {
				return normal, err
			}
		}
	}
}

func (n *For) Prepare(p *Preparer) Statement {
	if n.Init != nil {
		n.Init = n.Init.Prepare(p)
	}
	if n.Test != nil {
		n.Test = n.Test.Prepare(p)
	}
	if n.Update != nil {
		n.Update = n.Update.Prepare(p)
	}
	n.Body = prepareLoopBody(p, n.Body)
	return n
}

func (n *For) Simplify() Statement {
	if n.Init != nil {
		n.Init = n.Init.Simplify()
	}
	if n.Test != nil {
		n.Test = n.Test.Simplify()
		if c, ok := n.Test.(*Constant); ok && ToBoolean(c.Value) {
			n.Test = nil
		}
	}
	if n.Update != nil {
		n.Update = n.Update.Simplify()
	}
	n.Body = n.Body.Simplify()
	return n
}

// ForIn iterates the enumerable keys of an object and its prototype chain.
// Keys deleted during the iteration are skipped.
type ForIn struct {
	loopLabels
	Target  Expression
	Declare bool
	Object  Expression
	Body    Statement
}

func (n *ForIn) Accept(v Visitor) { v.VisitForIn(n) }
func (n *ForIn) statementNode()   {}

func (n *ForIn) String() string {
	target := n.Target.String()
	if n.Declare {
		target = "var " + target
	}
	return "for (" + target + " in " + n.Object.String() + ") " + n.Body.String()
}

func (n *ForIn) Execute(ctx *Context) (Completion, error) {
	ov, err := n.Object.Evaluate(ctx)
	if err != nil {
		return normal, err
	}
	if ov.IsNullish() {
		return normal, nil
	}
	if ov, err = ToObject(ctx, ov); err != nil {
		return normal, err
	}
	obj := ov.Object()
	var last Completion
	for key := range EnumerateChain(obj, true, EnumerateKeys) {
		if err := ctx.checkInterrupt(); err != nil {
			return normal, err
		}
		if !obj.HasProperty(key) {
			continue
		}
		if err := assignTarget(ctx, n.Target, String(key)); err != nil {
			return normal, err
		}
		c, err := n.Body.Execute(ctx)
		if err != nil {
			return normal, err
		}
		if exit, result := n.step(c, &last); exit {
			return result, nil
		}
	}
	return last, nil
}

// assignTarget stores v into a reference expression.
func assignTarget(ctx *Context, target Expression, v Value) error {
	switch t := target.(type) {
	case *Identifier:
		return t.assign(ctx, v)
	case *GetMember:
		base, key, err := t.reference(ctx)
		if err != nil {
			return err
		}
		return PutValue(ctx, base, key, v)
	}
	return ctx.referenceError("Invalid left-hand side in for-in")
}

func (n *ForIn) Prepare(p *Preparer) Statement {
	n.Target = n.Target.Prepare(p)
	if !isReference(n.Target) {
		p.report(SeverityError, "Invalid left-hand side in for-in", n)
	}
	n.Object = n.Object.Prepare(p)
	n.Body = prepareLoopBody(p, n.Body)
	return n
}

func (n *ForIn) Simplify() Statement {
	n.Target = simplifyTarget(n.Target)
	n.Object = n.Object.Simplify()
	n.Body = n.Body.Simplify()
	return n
}

type While struct {
	loopLabels
	Test Expression
	Body Statement
}

func (n *While) Accept(v Visitor) { v.VisitWhile(n) }
func (n *While) statementNode()   {}
func (n *While) String() string   { return "while (" + n.Test.String() + ") " + n.Body.String() }

func (n *While) Execute(ctx *Context) (Completion, error) {
	var last Completion
	for {
		if err := ctx.checkInterrupt(); err != nil {
			return normal, err
		}
		t, err := n.Test.Evaluate(ctx)
		if err != nil {
			return normal, err
		}
		if !ToBoolean(t) {
			return last, nil
		}
		c, err := n.Body.Execute(ctx)
		if err != nil {
			return normal, err
		}
		if exit, result := n.step(c, &last); exit {
			return result, nil
		}
	}
}

func (n *While) Prepare(p *Preparer) Statement {
	n.Test = n.Test.Prepare(p)
	n.Body = prepareLoopBody(p, n.Body)
	return n
}

func (n *While) Simplify() Statement {
	n.Test = n.Test.Simplify()
	n.Body = n.Body.Simplify()
	if c, ok := n.Test.(*Constant); ok && !ToBoolean(c.Value) {
		return &Empty{}
	}
	return n
}

type DoWhile struct {
	loopLabels
	Body Statement
	Test Expression
}

func (n *DoWhile) Accept(v Visitor) { v.VisitDoWhile(n) }
func (n *DoWhile) statementNode()   {}
func (n *DoWhile) String() string   { return "do " + n.Body.String() + " while (" + n.Test.String() + ");" }

func (n *DoWhile) Execute(ctx *Context) (Completion, error) {
	var last Completion
	for {
		if err := ctx.checkInterrupt(); err != nil {
			return normal, err
		}
		c, err := n.Body.Execute(ctx)
		if err != nil {
			return normal, err
		}
		if exit, result := n.step(c, &last); exit {
			return result, nil
		}
		t, err := n.Test.Evaluate(ctx)
		if err != nil {
			return normal, err
		}
		if !ToBoolean(t) {
			return last, nil
		}
	}
}

func (n *DoWhile) Prepare(p *Preparer) Statement {
	n.Body = prepareLoopBody(p, n.Body)
	n.Test = n.Test.Prepare(p)
	return n
}

func (n *DoWhile) Simplify() Statement {
	n.Body = n.Body.Simplify()
	n.Test = n.Test.Simplify()
	return n
}

type Break struct {
	Label string
}

func (n *Break) Accept(v Visitor) { v.VisitBreak(n) }
func (n *Break) statementNode()   {}

func (n *Break) String() string {
	if n.Label == "" {
		return "break;"
	}
	return "break " + n.Label + ";"
}

func (n *Break) Execute(ctx *Context) (Completion, error) {
	return Completion{Kind: CompletionBreak, Label: n.Label}, nil
}

func (n *Break) Prepare(p *Preparer) Statement {
	f := p.frame
	switch {
	case n.Label != "" && !slices.Contains(f.labels, n.Label):
		p.report(SeverityError, "Undefined label '"+n.Label+"'", n)
	case n.Label == "" && f.loops == 0 && f.switches == 0:
		p.report(SeverityError, "Illegal break statement", n)
	}
	return n
}

func (n *Break) Simplify() Statement { return n }

type Continue struct {
	Label string
}

func (n *Continue) Accept(v Visitor) { v.VisitContinue(n) }
func (n *Continue) statementNode()   {}

func (n *Continue) String() string {
	if n.Label == "" {
		return "continue;"
	}
	return "continue " + n.Label + ";"
}

func (n *Continue) Execute(ctx *Context) (Completion, error) {
	return Completion{Kind: CompletionContinue, Label: n.Label}, nil
}

func (n *Continue) Prepare(p *Preparer) Statement {
	f := p.frame
	switch {
	case f.loops == 0:
		p.report(SeverityError, "Illegal continue statement", n)
	case n.Label != "" && !slices.Contains(f.labels, n.Label):
		p.report(SeverityError, "Undefined label '"+n.Label+"'", n)
	}
	return n
}

func (n *Continue) Simplify() Statement { return n }

// Labeled attaches a label to a statement. Loops learn their labels during
// Prepare; any other statement only answers labeled break.
type Labeled struct {
	Label string
	Body  Statement
}

func (n *Labeled) Accept(v Visitor) { v.VisitLabeled(n) }
func (n *Labeled) statementNode()   {}
func (n *Labeled) String() string   { return n.Label + ": " + n.Body.String() }

func (n *Labeled) Execute(ctx *Context) (Completion, error) {
	c, err := n.Body.Execute(ctx)
	if err != nil {
		return c, err
	}
	if c.Kind == CompletionBreak && c.Label == n.Label {
		return Completion{Value: c.Value, valued: c.valued}, nil
	}
	return c, nil
}

func (n *Labeled) Prepare(p *Preparer) Statement {
	f := p.frame
	if slices.Contains(f.labels, n.Label) {
		p.report(SeverityError, "Label '"+n.Label+"' has already been declared", n)
	}
	target := n.Body
	for {
		inner, ok := target.(*Labeled)
		if !ok {
			break
		}
		target = inner.Body
	}
	if t, ok := target.(labelTarget); ok {
		t.addLabel(n.Label)
	}
	f.labels = append(f.labels, n.Label)
	n.Body = n.Body.Prepare(p)
	f.labels = f.labels[:len(f.labels)-1]
	return n
}

func (n *Labeled) Simplify() Statement {
	n.Body = n.Body.Simplify()
	return n
}
