package niljs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/rmja/niljs/internal/backend"
	"github.com/rmja/niljs/internal/builtins"
	"github.com/rmja/niljs/internal/config"
	"github.com/rmja/niljs/internal/evaluator"
	"github.com/rmja/niljs/internal/parser"
	"github.com/rmja/niljs/internal/pipeline"
)

// Engine wraps a realm with the builtin library and provides a high-level
// embedding API. It is safe for concurrent use; scripts run one at a time.
type Engine struct {
	mu         sync.Mutex
	realm      *evaluator.Realm
	marshaller *Marshaller
	opts       config.Options
}

// New creates an engine with the default configuration.
func New() *Engine {
	return newEngine(config.Default())
}

// NewFromConfig creates an engine configured by a YAML file.
func NewFromConfig(path string) (*Engine, error) {
	opts, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	return newEngine(opts), nil
}

func newEngine(opts config.Options) *Engine {
	realm := builtins.NewRealm(opts.Engine)
	return &Engine{
		realm:      realm,
		marshaller: NewMarshaller(realm),
		opts:       opts,
	}
}

// Bind exposes a Go value or function as a global. Pointers to structs stay
// live: scripts read and write their fields and call their methods.
func (e *Engine) Bind(name string, val any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, err := e.marshaller.ToValue(val)
	if err != nil {
		return fmt.Errorf("bind %s: %w", name, err)
	}
	e.realm.Global.DefineOwn(name, v, evaluator.AttrDefault)
	return nil
}

// Set assigns a global variable.
func (e *Engine) Set(name string, val any) error {
	return e.Bind(name, val)
}

// Get returns a global variable converted to Go.
func (e *Engine) Get(name string) (any, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, err := e.global(name)
	if err != nil {
		return nil, err
	}
	return e.marshaller.FromValue(v, nil)
}

func (e *Engine) global(name string) (evaluator.Value, error) {
	if !e.realm.Global.HasProperty(name) {
		return evaluator.Undefined, fmt.Errorf("global %q not found", name)
	}
	ctx := e.realm.NewContext(context.Background())
	return e.realm.Global.Get(ctx, evaluator.ObjectValue(e.realm.Global), name)
}

// Call invokes a global function with Go arguments.
func (e *Engine) Call(funcName string, args ...any) (any, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, err := e.global(funcName)
	if err != nil {
		return nil, err
	}
	fn := v.Function()
	if fn == nil {
		return nil, fmt.Errorf("%s is not a function", funcName)
	}
	return e.marshaller.callScript(e.realm.NewContext(context.Background()), fn, args)
}

// Eval runs code in the engine's realm and returns its completion value.
func (e *Engine) Eval(code string) (any, error) {
	return e.EvalContext(context.Background(), code)
}

// EvalContext is Eval bounded by ctx; cancelling it interrupts the script.
func (e *Engine) EvalContext(ctx context.Context, code string) (any, error) {
	return e.run(ctx, "<eval>", code)
}

// LoadFile runs a script file.
func (e *Engine) LoadFile(path string) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return e.run(context.Background(), filepath.Base(path), string(data))
}

func (e *Engine) run(host context.Context, file, code string) (any, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	pctx := pipeline.NewContext(file, code, e.opts)
	pctx.Host = host
	pctx.Realm = e.realm
	pctx = pipeline.New(
		&parser.ParserProcessor{},
		&pipeline.PrepareProcessor{},
		&pipeline.SimplifyProcessor{},
		backend.NewExecutionProcessor(backend.NewTreeWalk()),
	).Run(pctx)
	if pctx.Failed() {
		return nil, errors.Join(pctx.Errors...)
	}
	return e.marshaller.FromValue(pctx.Result, nil)
}

// Export converts a global to a protobuf Struct value so results can cross
// process boundaries. Functions and host objects cannot be exported.
func (e *Engine) Export(name string) (*structpb.Value, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, err := e.global(name)
	if err != nil {
		return nil, err
	}
	return e.toProto(e.realm.NewContext(context.Background()), v, map[*evaluator.Object]bool{})
}

func (e *Engine) toProto(ctx *evaluator.Context, v evaluator.Value, seen map[*evaluator.Object]bool) (*structpb.Value, error) {
	switch v.Kind() {
	case evaluator.KindUndefined, evaluator.KindNull:
		return structpb.NewNullValue(), nil
	case evaluator.KindBoolean:
		return structpb.NewBoolValue(v.Bool()), nil
	case evaluator.KindNumber:
		return structpb.NewNumberValue(v.Number()), nil
	case evaluator.KindString:
		return structpb.NewStringValue(v.Str()), nil
	case evaluator.KindFunction:
		return nil, fmt.Errorf("cannot export function %s", v.Inspect())
	}
	obj := v.Object()
	if _, ok := e.marshaller.hosts[obj]; ok {
		return nil, errors.New("cannot export a host object")
	}
	if isWrapper(obj) {
		return e.toProto(ctx, obj.PrimitiveValue(), seen)
	}
	if seen[obj] {
		return nil, errors.New("cyclic object value")
	}
	seen[obj] = true
	defer delete(seen, obj)

	if obj.IsArray() {
		n, err := obj.Length(ctx)
		if err != nil {
			return nil, err
		}
		list := &structpb.ListValue{Values: make([]*structpb.Value, n)}
		for i := range list.Values {
			el, err := obj.Get(ctx, v, strconv.Itoa(i))
			if err != nil {
				return nil, err
			}
			if list.Values[i], err = e.toProto(ctx, el, seen); err != nil {
				return nil, err
			}
		}
		return structpb.NewListValue(list), nil
	}
	st := &structpb.Struct{Fields: make(map[string]*structpb.Value)}
	for key := range obj.GetEnumerator(true, evaluator.EnumerateKeys) {
		el, err := obj.Get(ctx, v, key)
		if err != nil {
			return nil, err
		}
		if st.Fields[key], err = e.toProto(ctx, el, seen); err != nil {
			return nil, fmt.Errorf("%s: %w", key, err)
		}
	}
	return structpb.NewStructValue(st), nil
}
