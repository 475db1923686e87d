package evaluator

import (
	"github.com/rmja/niljs/internal/config"
)

// Preparer carries the state of the binding-resolution pass. A Preparer
// is used for exactly one script.
type Preparer struct {
	frame       *frame
	diagnostics []Diagnostic
	// evalCode is set for eval scripts, whose free names must be looked up
	// through the caller's scope chain at run time.
	evalCode bool
}

// frame is the Prepare state of one function body (or the script).
type frame struct {
	parent *frame
	def    *FunctionDefinition
	depth  int
	script bool
	names  map[string]*VariableDescriptor
	// blocks holds catch parameters, innermost last.
	blocks []map[string]*VariableDescriptor
	// pending are identifiers of this body or nested bodies that resolved
	// to a scope outside this body or to the global object.
	pending  []*Identifier
	tryDepth int
	loops    int
	switches int
	labels   []string
}

// Diagnostics returns what the pass reported so far.
func (p *Preparer) Diagnostics() []Diagnostic { return p.diagnostics }

// Statistics of the function body being prepared.
func (p *Preparer) Statistics() *FunctionStatistics { return &p.frame.def.Statistics }

func (p *Preparer) report(sev Severity, msg string, n Node) {
	d := Diagnostic{Severity: sev, Message: msg}
	if n != nil {
		d.Node = n.String()
	}
	p.diagnostics = append(p.diagnostics, d)
}

// inFunction is false at script level.
func (p *Preparer) inFunction() bool { return p.frame != nil && !p.frame.script }

// tailAllowed reports whether calls in the current return statement may
// become tail calls.
func (p *Preparer) tailAllowed() bool {
	f := p.frame
	return !f.script && f.tryDepth == 0 && !f.def.Generator
}

// enterFunction opens a body: it declares parameters, hoists var and
// function declarations and assigns slots.
func (p *Preparer) enterFunction(def *FunctionDefinition, script bool) {
	f := &frame{parent: p.frame, def: def, script: script, names: make(map[string]*VariableDescriptor)}
	if p.frame != nil {
		f.depth = p.frame.depth + 1
		if p.frame.def.Statistics.Strict {
			def.Statistics.Strict = true
		}
	}
	p.frame = f

	def.layout = newLayout()
	def.depth = f.depth
	def.selfSlot = -1
	def.functions = nil
	def.globals = nil
	def.Statistics.ResultType = PredictUnknown
	if def.Body == nil {
		def.Body = &Block{}
	}

	if !script {
		for _, param := range def.Parameters {
			param.Descriptor = p.declare(param.Name)
		}
	}

	var vars []string
	var funcs []*FunctionDefinition
	collectDeclarations(def.Body.Statements, &vars, &funcs)
	for _, name := range vars {
		p.declare(name)
	}
	for _, fn := range funcs {
		desc := p.declare(fn.Name)
		if desc.Initializer == nil {
			if desc.Kind == VarGlobal {
				def.globalFunctions = append(def.globalFunctions, desc)
			} else {
				def.functions = append(def.functions, desc)
			}
		}
		desc.Initializer = fn
	}

	if !script && !def.Declaration && def.Name != "" {
		if _, taken := f.names[def.Name]; !taken {
			def.selfSlot = def.layout.alloc()
			f.names[def.Name] = &VariableDescriptor{Name: def.Name, Kind: VarLocal, Depth: f.depth, Index: def.selfSlot}
		}
	}
}

// declare adds a function-level name, or returns the existing descriptor.
func (p *Preparer) declare(name string) *VariableDescriptor {
	f := p.frame
	if d, ok := f.names[name]; ok {
		return d
	}
	d := &VariableDescriptor{Name: name, Depth: f.depth, Index: -1}
	if f.script {
		d.Kind = VarGlobal
		f.def.globals = append(f.def.globals, d)
	} else {
		d.Kind = VarLocal
		d.Index = f.def.layout.alloc()
		f.def.layout.names[name] = d.Index
	}
	f.names[name] = d
	return d
}

// exitFunction closes the current body. Identifiers that escape the body
// are demoted to dynamic lookup when the body contains direct eval, since
// eval may introduce shadowing declarations at run time.
func (p *Preparer) exitFunction() {
	f := p.frame
	st := &f.def.Statistics
	if !st.HasReturn && st.ResultType == PredictUnknown {
		st.ResultType = PredictUndefined
	}
	var escaping []*Identifier
	for _, id := range f.pending {
		if id.depth >= f.depth {
			continue
		}
		if st.ContainsEval && !id.catchBound {
			id.mode = resolveDynamic
		}
		if f.parent != nil && id.depth < f.parent.depth {
			escaping = append(escaping, id)
		}
	}
	p.frame = f.parent
	if p.frame != nil {
		p.frame.pending = append(p.frame.pending, escaping...)
	}
}

// pushCatch opens a block scope holding a catch parameter.
func (p *Preparer) pushCatch(name string) *VariableDescriptor {
	f := p.frame
	d := &VariableDescriptor{Name: name, Kind: VarLocal, Depth: f.depth, Index: f.def.layout.alloc()}
	f.blocks = append(f.blocks, map[string]*VariableDescriptor{name: d})
	return d
}

func (p *Preparer) popCatch() {
	f := p.frame
	f.blocks = f.blocks[:len(f.blocks)-1]
}

// resolve binds an identifier to a slot, the global object or dynamic
// lookup.
func (p *Preparer) resolve(id *Identifier) {
	cur := p.frame
	for f := cur; f != nil; f = f.parent {
		for i := len(f.blocks) - 1; i >= 0; i-- {
			if d, ok := f.blocks[i][id.Name]; ok {
				p.bind(id, d, f)
				id.catchBound = true
				return
			}
		}
		if d, ok := f.names[id.Name]; ok {
			p.bind(id, d, f)
			return
		}
		if f == cur && !f.script && id.Name == config.ArgumentsName {
			id.mode = resolveArguments
			id.depth = f.depth
			f.def.Statistics.ContainsArguments = true
			return
		}
	}
	id.desc = nil
	id.depth = -1
	if p.evalCode {
		id.mode = resolveDynamic
	} else {
		id.mode = resolveGlobal
	}
	cur.pending = append(cur.pending, id)
}

func (p *Preparer) bind(id *Identifier, d *VariableDescriptor, owner *frame) {
	d.References++
	id.desc = d
	id.catchBound = false
	if d.Kind == VarGlobal {
		id.depth = -1
		id.mode = resolveGlobal
		if p.evalCode {
			id.mode = resolveDynamic
		}
		p.frame.pending = append(p.frame.pending, id)
		return
	}
	id.mode = resolveSlot
	id.index = d.Index
	id.depth = owner.depth
	id.hops = p.frame.depth - owner.depth
	if id.hops > 0 {
		d.Captured = true
		p.frame.pending = append(p.frame.pending, id)
	}
}

// collectDeclarations gathers var names and function declarations of a
// body without descending into nested functions.
func collectDeclarations(stmts []Statement, vars *[]string, funcs *[]*FunctionDefinition) {
	for _, s := range stmts {
		collectStatement(s, vars, funcs)
	}
}

func collectStatement(s Statement, vars *[]string, funcs *[]*FunctionDefinition) {
	switch n := s.(type) {
	case *VarDeclaration:
		for _, d := range n.Declarations {
			*vars = append(*vars, d.Name.Name)
		}
	case *FunctionDeclaration:
		*funcs = append(*funcs, n.Function)
	case *Block:
		collectDeclarations(n.Statements, vars, funcs)
	case *If:
		collectStatement(n.Consequent, vars, funcs)
		if n.Alternate != nil {
			collectStatement(n.Alternate, vars, funcs)
		}
	case *For:
		if n.Init != nil {
			collectStatement(n.Init, vars, funcs)
		}
		collectStatement(n.Body, vars, funcs)
	case *ForIn:
		if n.Declare {
			if id, ok := n.Target.(*Identifier); ok {
				*vars = append(*vars, id.Name)
			}
		}
		collectStatement(n.Body, vars, funcs)
	case *While:
		collectStatement(n.Body, vars, funcs)
	case *DoWhile:
		collectStatement(n.Body, vars, funcs)
	case *Labeled:
		collectStatement(n.Body, vars, funcs)
	case *Try:
		collectStatement(n.Block, vars, funcs)
		if n.Catch != nil {
			collectStatement(n.Catch, vars, funcs)
		}
		if n.Finally != nil {
			collectStatement(n.Finally, vars, funcs)
		}
	case *Switch:
		for _, c := range n.Cases {
			collectDeclarations(c.Body, vars, funcs)
		}
	}
}

func prepareExpressions(p *Preparer, list []Expression) {
	for i, e := range list {
		if e != nil {
			list[i] = e.Prepare(p)
		}
	}
}

func prepareStatements(p *Preparer, list []Statement) {
	for i, s := range list {
		list[i] = s.Prepare(p)
	}
}

// markTail flags the calls in tail position of a returned expression.
func markTail(e Expression) {
	switch n := e.(type) {
	case *Call:
		if !n.Construct {
			n.allowTail = true
		}
	case *Conditional:
		markTail(n.Consequent)
		markTail(n.Alternate)
	case *Sequence:
		if len(n.Expressions) > 0 {
			markTail(n.Expressions[len(n.Expressions)-1])
		}
	case *Logical:
		markTail(n.Right)
	}
}
