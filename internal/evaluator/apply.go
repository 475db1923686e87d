package evaluator

// checkStack is the native-stack guard run before every non-tail
// invocation. A limit of zero or less means the headroom cannot be
// determined, which is treated as exhausted.
func (c *Context) checkStack() error {
	limit := c.realm.maxCallDepth
	if limit <= 0 || c.depth+1 > limit {
		return c.rangeError("Stack overflow.")
	}
	return nil
}

// invoke is the invocation protocol shared by calls, constructs and
// natives. The caller has already run the stack guard.
func (f *Function) invoke(caller *Context, this Value, args *Arguments, construct bool, flags CallFlags) (Value, error) {
	if err := caller.checkInterrupt(); err != nil {
		return Undefined, err
	}
	if f.kind == FunctionNative {
		return f.native(&Invocation{
			Context:   caller,
			This:      this,
			Args:      args,
			Callee:    f,
			Construct: construct,
			Flags:     flags,
		})
	}
	if f.kind == FunctionGenerator {
		return Undefined, caller.typeError("generator functions are not supported")
	}

	var instance *Object
	if construct {
		proto, err := f.prototypeObject(caller)
		if err != nil {
			return Undefined, err
		}
		instance = NewObject(proto)
		this = ObjectValue(instance)
	} else {
		var err error
		if this, err = f.bindThis(caller, this); err != nil {
			return Undefined, err
		}
	}

	result, err := f.run(caller, this, args, construct)
	if err != nil {
		return Undefined, err
	}
	if construct && !result.IsObject() {
		return ObjectValue(instance), nil
	}
	return result, nil
}

// bindThis applies the non-strict receiver rules: nullish becomes the
// global object and primitives are boxed.
func (f *Function) bindThis(ctx *Context, this Value) (Value, error) {
	if f.def.Statistics.Strict || f.realm.strict {
		return this, nil
	}
	switch {
	case this.IsNullish():
		return ObjectValue(f.realm.Global), nil
	case this.IsPrimitive():
		return ToObject(ctx, this)
	}
	return this, nil
}

// run executes the body of an interpreted function. A tail-recursive self
// call completes the body with CompletionTailRecursion; the loop then
// rebinds the parameters in a fresh scope and runs the body again in the
// same Context with the receiver of the tail call, so self tail recursion
// uses constant native stack.
func (f *Function) run(caller *Context, this Value, args *Arguments, construct bool) (Value, error) {
	def := f.def
	ctx := newCallContext(caller, f, this, args)
	ctx.construct = construct
	for {
		f.enter(ctx, args)
		c, err := def.Body.Execute(ctx)
		if err != nil {
			return Undefined, err
		}
		if c.Kind != CompletionTailRecursion {
			if next, ok := ctx.takeTailRecursion(); ok {
				c = next
			}
		}
		switch c.Kind {
		case CompletionTailRecursion:
			if !def.Statistics.ContainsArguments {
				ctx.spare = args
			}
			args = c.Args
			if ctx.this, err = f.bindThis(ctx, c.This); err != nil {
				return Undefined, err
			}
			if err := ctx.checkInterrupt(); err != nil {
				return Undefined, err
			}
			continue
		case CompletionReturn:
			return c.Value, nil
		}
		return Undefined, nil
	}
}

// enter binds parameters, the function's own name and hoisted function
// declarations in a new activation scope.
func (f *Function) enter(ctx *Context, args *Arguments) {
	def := f.def
	scope := newScope(f.scope, def.layout)
	if def.selfSlot >= 0 {
		scope.slots[def.selfSlot] = FunctionValue(f)
	}
	for i, p := range def.Parameters {
		if p.Descriptor != nil {
			scope.slots[p.Descriptor.Index] = args.At(i)
		}
	}
	for _, decl := range def.functions {
		scope.slots[decl.Index] = FunctionValue(f.realm.newClosure(decl.Initializer, scope))
	}
	ctx.scope = scope
	ctx.args = args
	ctx.argsObject = nil
	ctx.objectSource = Undefined
}

// tailArguments hands out the Arguments list for the next iteration of a
// self tail call, reusing the previous iteration's list when it is free.
func (c *Context) tailArguments() *Arguments {
	if a := c.spare; a != nil {
		c.spare = nil
		a.reset(c.owner)
		return a
	}
	return &Arguments{callee: c.owner}
}
