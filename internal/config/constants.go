package config

// SourceFileExtensions are all recognized source file extensions
var SourceFileExtensions = []string{".js", ".jsx"}

// DefaultMaxCallDepth bounds the number of nested non-tail invocations.
const DefaultMaxCallDepth = 10000

// Global names installed by the engine itself rather than by the builtin library.
const (
	UndefinedName = "undefined"
	NaNName       = "NaN"
	InfinityName  = "Infinity"
	EvalFuncName  = "eval"
	ArgumentsName = "arguments"
)

// Property names the engine reads or writes directly.
const (
	ProtoPropName       = "__proto__"
	PrototypePropName   = "prototype"
	ConstructorPropName = "constructor"
	LengthPropName      = "length"
	CalleePropName      = "callee"
	NamePropName        = "name"
	MessagePropName     = "message"
	ValueOfMethodName   = "valueOf"
	ToStringMethodName  = "toString"
	CallMethodName      = "call"
	ApplyMethodName     = "apply"
)

// Builtin object names
const (
	ObjectTypeName   = "Object"
	FunctionTypeName = "Function"
	ArrayTypeName    = "Array"
	NumberTypeName   = "Number"
	StringTypeName   = "String"
	BooleanTypeName  = "Boolean"
	ErrorTypeName    = "Error"
	ArgumentsClass   = "Arguments"
	MathObjectName   = "Math"
	DebugObjectName  = "Debug"
	ConsoleName      = "console"
)

// UseStrictDirective enables strict mode when it opens a script or function body.
const UseStrictDirective = "use strict"
