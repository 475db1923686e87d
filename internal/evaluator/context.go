package evaluator

import (
	"context"
	"fmt"

	"github.com/rmja/niljs/internal/config"
)

// CompletionKind classifies how a statement finished.
type CompletionKind uint8

const (
	CompletionNormal CompletionKind = iota
	CompletionReturn
	CompletionBreak
	CompletionContinue
	// CompletionTailRecursion asks the enclosing function body to rebind its
	// parameters to Args and this to This, and run again.
	CompletionTailRecursion
)

func (k CompletionKind) String() string {
	switch k {
	case CompletionReturn:
		return "return"
	case CompletionBreak:
		return "break"
	case CompletionContinue:
		return "continue"
	case CompletionTailRecursion:
		return "tail-recursion"
	}
	return "normal"
}

// Completion is the result of executing a statement.
type Completion struct {
	Kind  CompletionKind
	Value Value
	Label string
	Args  *Arguments
	This  Value
	// valued marks normal completions that produced a value (expression
	// statements), which eval and the REPL report.
	valued bool
}

var normal = Completion{}

// Context is the frame of one active call. It is owned by that call and
// never shared between goroutines.
type Context struct {
	realm        *Realm
	caller       *Context
	scope        *Scope
	owner        *Function
	this         Value
	objectSource Value
	args         *Arguments
	argsObject   *Object
	// abort carries the pending tail-recursion request of an expression.
	abort     CompletionKind
	abortArgs *Arguments
	abortThis Value
	spare     *Arguments
	depth     int
	strict    bool
	construct bool
	host      context.Context
	ticks     *uint32
}

// NewContext creates a top-level context whose this is the global object.
// Cancelling host interrupts loops and calls running in it.
func (r *Realm) NewContext(host context.Context) *Context {
	if host == nil {
		host = context.Background()
	}
	return &Context{
		realm:  r,
		this:   ObjectValue(r.Global),
		strict: r.strict,
		host:   host,
		ticks:  new(uint32),
	}
}

func newCallContext(caller *Context, fn *Function, this Value, args *Arguments) *Context {
	return &Context{
		realm:  caller.realm,
		caller: caller,
		owner:  fn,
		this:   this,
		args:   args,
		depth:  caller.depth + 1,
		strict: fn.def.Statistics.Strict || caller.realm.strict,
		host:   caller.host,
		ticks:  caller.ticks,
	}
}

func (c *Context) Realm() *Realm         { return c.realm }
func (c *Context) This() Value           { return c.this }
func (c *Context) Owner() *Function      { return c.owner }
func (c *Context) Arguments() *Arguments { return c.args }
func (c *Context) Depth() int            { return c.depth }
func (c *Context) Strict() bool          { return c.strict }
func (c *Context) Caller() *Context      { return c.caller }
func (c *Context) Host() context.Context { return c.host }
func (c *Context) IsConstructing() bool  { return c.construct }
func (c *Context) Scope() *Scope         { return c.scope }

// Resolve finds the storage cell of name by walking the scope chain and
// then the global object.
func (c *Context) Resolve(name string) (Reference, error) {
	for s := c.scope; s != nil; s = s.parent {
		if cell := s.lookup(name); cell != nil {
			return Reference{cell: cell, name: name}, nil
		}
	}
	if name == config.ArgumentsName && c.args != nil {
		v := c.argumentsValue()
		return Reference{cell: &v, name: name}, nil
	}
	g := c.realm.Global
	if g.HasProperty(name) {
		return Reference{base: g, name: name}, nil
	}
	return Reference{}, c.referenceError("%s is not defined", name)
}

// resolveForWrite is Resolve for assignment targets: unknown names become
// global properties outside strict mode.
func (c *Context) resolveForWrite(name string) (Reference, error) {
	ref, err := c.Resolve(name)
	if err == nil {
		return ref, nil
	}
	if c.strict {
		return Reference{}, err
	}
	return Reference{base: c.realm.Global, name: name}, nil
}

// takeObjectSource returns and clears the receiver left by the last member
// expression.
func (c *Context) takeObjectSource() Value {
	v := c.objectSource
	c.objectSource = Undefined
	return v
}

func (c *Context) requestTailRecursion(this Value, args *Arguments) {
	c.abort = CompletionTailRecursion
	c.abortArgs = args
	c.abortThis = this
}

// takeTailRecursion consumes a pending tail-recursion request as the
// completion the function body loop expects.
func (c *Context) takeTailRecursion() (Completion, bool) {
	if c.abort != CompletionTailRecursion {
		return normal, false
	}
	next := Completion{Kind: CompletionTailRecursion, Args: c.abortArgs, This: c.abortThis}
	c.abort = CompletionNormal
	c.abortArgs = nil
	c.abortThis = Undefined
	return next, true
}

// Aborted reports a pending tail-recursion request.
func (c *Context) Aborted() bool { return c.abort != CompletionNormal }

// argumentsValue returns the arguments object, creating it on first use.
func (c *Context) argumentsValue() Value {
	if c.argsObject == nil {
		if c.args == nil {
			return Undefined
		}
		c.argsObject = c.realm.newArgumentsObject(c.args)
	}
	return ObjectValue(c.argsObject)
}

// checkInterrupt polls the host context every few hundred steps.
func (c *Context) checkInterrupt() error {
	*c.ticks++
	if *c.ticks&0xff != 0 {
		return nil
	}
	select {
	case <-c.host.Done():
		return fmt.Errorf("execution interrupted: %w", c.host.Err())
	default:
		return nil
	}
}
