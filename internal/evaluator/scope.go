package evaluator

// VariableKind says where a declared name lives at run time.
type VariableKind uint8

const (
	// VarLocal names a slot of a function scope.
	VarLocal VariableKind = iota
	// VarGlobal names a property of the global object.
	VarGlobal
)

// VariableDescriptor describes one declared name of a function or script.
type VariableDescriptor struct {
	Name  string
	Kind  VariableKind
	Depth int
	Index int
	// Initializer is the function bound by a function declaration.
	Initializer *FunctionDefinition
	// Captured is set when a nested function refers to the variable.
	Captured   bool
	References int
}

// Layout is the slot map of one function body, shared by every activation.
type Layout struct {
	names map[string]int
	size  int
}

func newLayout() *Layout {
	return &Layout{names: make(map[string]int)}
}

func (l *Layout) Size() int { return l.size }

func (l *Layout) alloc() int {
	l.size++
	return l.size - 1
}

// Scope is one activation of a Layout. Dynamic bindings hold variables
// introduced at run time by direct eval.
type Scope struct {
	parent  *Scope
	layout  *Layout
	slots   []Value
	dynamic map[string]*Value
}

func newScope(parent *Scope, layout *Layout) *Scope {
	s := &Scope{parent: parent, layout: layout}
	if layout != nil && layout.size > 0 {
		s.slots = make([]Value, layout.size)
	}
	return s
}

func (s *Scope) Parent() *Scope { return s.parent }

// up walks hops scopes outwards.
func (s *Scope) up(hops int) *Scope {
	for ; hops > 0; hops-- {
		s = s.parent
	}
	return s
}

// lookup finds the cell of name in this scope only.
func (s *Scope) lookup(name string) *Value {
	if cell, ok := s.dynamic[name]; ok {
		return cell
	}
	if s.layout != nil {
		if idx, ok := s.layout.names[name]; ok {
			return &s.slots[idx]
		}
	}
	return nil
}

// declare introduces a dynamic binding unless one with the same name exists.
func (s *Scope) declare(name string) *Value {
	if cell := s.lookup(name); cell != nil {
		return cell
	}
	if s.dynamic == nil {
		s.dynamic = make(map[string]*Value)
	}
	cell := new(Value)
	s.dynamic[name] = cell
	return cell
}

// Reference is a resolved storage cell: either a scope slot or a property
// of the global object.
type Reference struct {
	cell *Value
	base *Object
	name string
}

func (r Reference) Name() string { return r.name }

func (r Reference) Get(ctx *Context) (Value, error) {
	if r.cell != nil {
		return *r.cell, nil
	}
	return r.base.Get(ctx, ObjectValue(r.base), r.name)
}

func (r Reference) Set(ctx *Context, v Value) error {
	if r.cell != nil {
		*r.cell = v
		return nil
	}
	return r.base.Put(ctx, ObjectValue(r.base), r.name, v)
}
