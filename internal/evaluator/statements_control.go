package evaluator

import (
	"errors"
	"strings"
)

// Try runs Block and hands a thrown value to Catch. Host errors such as
// interruption are not catchable and pass through to Finally.
type Try struct {
	Block      *Block
	CatchParam *Identifier
	Catch      *Block
	Finally    *Block

	catchSlot int
}

func (n *Try) Accept(v Visitor) { v.VisitTry(n) }
func (n *Try) statementNode()   {}

func (n *Try) String() string {
	s := "try " + n.Block.String()
	if n.Catch != nil {
		s += " catch (" + n.CatchParam.Name + ") " + n.Catch.String()
	}
	if n.Finally != nil {
		s += " finally " + n.Finally.String()
	}
	return s
}

func (n *Try) Execute(ctx *Context) (Completion, error) {
	c, err := n.Block.Execute(ctx)
	if err != nil && n.Catch != nil {
		var exc *Exception
		if errors.As(err, &exc) {
			ctx.scope.slots[n.catchSlot] = exc.Value
			c, err = n.Catch.Execute(ctx)
		}
	}
	if n.Finally != nil {
		fc, ferr := n.Finally.Execute(ctx)
		if ferr != nil {
			return fc, ferr
		}
		if fc.Kind != CompletionNormal {
			return fc, nil
		}
	}
	return c, err
}

func (n *Try) Prepare(p *Preparer) Statement {
	f := p.frame
	f.def.Statistics.ContainsTry = true

	f.tryDepth++
	n.Block.prepareInPlace(p)
	if n.Finally == nil {
		f.tryDepth--
	}
	if n.Catch != nil {
		d := p.pushCatch(n.CatchParam.Name)
		n.catchSlot = d.Index
		p.resolve(n.CatchParam)
		n.Catch.prepareInPlace(p)
		p.popCatch()
	}
	if n.Finally != nil {
		f.tryDepth--
		n.Finally.prepareInPlace(p)
	}
	return n
}

func (n *Try) Simplify() Statement {
	n.Block.simplifyInPlace()
	if n.Catch != nil {
		n.Catch.simplifyInPlace()
	}
	if n.Finally != nil {
		n.Finally.simplifyInPlace()
	}
	return n
}

// SwitchCase is one clause; a nil Test marks the default clause.
type SwitchCase struct {
	Test Expression
	Body []Statement
}

type Switch struct {
	Discriminant Expression
	Cases        []*SwitchCase
}

func (n *Switch) Accept(v Visitor) { v.VisitSwitch(n) }
func (n *Switch) statementNode()   {}

func (n *Switch) String() string {
	var sb strings.Builder
	sb.WriteString("switch (" + n.Discriminant.String() + ") {")
	for _, c := range n.Cases {
		if c.Test == nil {
			sb.WriteString(" default:")
		} else {
			sb.WriteString(" case " + c.Test.String() + ":")
		}
		for _, s := range c.Body {
			sb.WriteString(" " + s.String())
		}
	}
	sb.WriteString(" }")
	return sb.String()
}

// Execute selects the first clause whose test is strictly equal to the
// discriminant, falling back to default, and falls through from there.
func (n *Switch) Execute(ctx *Context) (Completion, error) {
	d, err := n.Discriminant.Evaluate(ctx)
	if err != nil {
		return normal, err
	}
	start, def := -1, -1
	for i, c := range n.Cases {
		if c.Test == nil {
			def = i
			continue
		}
		v, err := c.Test.Evaluate(ctx)
		if err != nil {
			return normal, err
		}
		if StrictEquals(d, v) {
			start = i
			break
		}
	}
	if start < 0 {
		start = def
	}
	if start < 0 {
		return normal, nil
	}

	var last Completion
	for _, c := range n.Cases[start:] {
		for _, s := range c.Body {
			r, err := s.Execute(ctx)
			if err != nil {
				return normal, err
			}
			if r.valued {
				last = Completion{Value: r.Value, valued: true}
			}
			switch {
			case r.Kind == CompletionBreak && r.Label == "":
				return last, nil
			case r.Kind != CompletionNormal:
				if !r.valued && last.valued {
					r.Value, r.valued = last.Value, true
				}
				return r, nil
			}
		}
	}
	return last, nil
}

func (n *Switch) Prepare(p *Preparer) Statement {
	n.Discriminant = n.Discriminant.Prepare(p)
	defaults := 0
	p.frame.switches++
	for _, c := range n.Cases {
		if c.Test == nil {
			defaults++
		} else {
			c.Test = c.Test.Prepare(p)
		}
		prepareStatements(p, c.Body)
	}
	p.frame.switches--
	if defaults > 1 {
		p.report(SeverityError, "More than one default clause in switch statement", n)
	}
	return n
}

func (n *Switch) Simplify() Statement {
	n.Discriminant = n.Discriminant.Simplify()
	for _, c := range n.Cases {
		if c.Test != nil {
			c.Test = c.Test.Simplify()
		}
		for i, s := range c.Body {
			c.Body[i] = s.Simplify()
		}
	}
	return n
}
