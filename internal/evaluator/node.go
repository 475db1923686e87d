package evaluator

// Node is any element of the executable tree.
type Node interface {
	Accept(v Visitor)
	String() string
}

// Expression is a node that evaluates to a Value. Prepare and Simplify
// return the node that replaces the receiver.
type Expression interface {
	Node
	expressionNode()
	Evaluate(ctx *Context) (Value, error)
	Prepare(p *Preparer) Expression
	Simplify() Expression
	ResultType() PredictedType
}

// Statement is a node executed for its effect.
type Statement interface {
	Node
	statementNode()
	Execute(ctx *Context) (Completion, error)
	Prepare(p *Preparer) Statement
	Simplify() Statement
}

// PredictedType is a static guess of an expression's runtime kind. It is
// only a hint and never decides behaviour.
type PredictedType uint8

const (
	PredictUnknown PredictedType = iota
	PredictAmbiguous
	PredictUndefined
	PredictNull
	PredictBoolean
	PredictNumber
	PredictString
	PredictObject
	PredictFunction
)

func (t PredictedType) String() string {
	switch t {
	case PredictUnknown:
		return "unknown"
	case PredictAmbiguous:
		return "ambiguous"
	case PredictUndefined:
		return "undefined"
	case PredictNull:
		return "null"
	case PredictBoolean:
		return "boolean"
	case PredictNumber:
		return "number"
	case PredictString:
		return "string"
	case PredictObject:
		return "object"
	case PredictFunction:
		return "function"
	}
	return "?"
}

// MergePrediction joins two predictions: Unknown is the identity,
// Ambiguous absorbs everything and two different concrete kinds give
// Ambiguous. The merge is commutative and never leaves Ambiguous.
func MergePrediction(a, b PredictedType) PredictedType {
	switch {
	case a == PredictUnknown:
		return b
	case b == PredictUnknown:
		return a
	case a == b:
		return a
	}
	return PredictAmbiguous
}

func predictionOf(v Value) PredictedType {
	switch v.kind {
	case KindUndefined:
		return PredictUndefined
	case KindNull:
		return PredictNull
	case KindBoolean:
		return PredictBoolean
	case KindNumber:
		return PredictNumber
	case KindString:
		return PredictString
	case KindFunction:
		return PredictFunction
	}
	if v.IsMissing() {
		return PredictNull
	}
	return PredictObject
}

// FunctionStatistics are facts collected by Prepare about a function body.
type FunctionStatistics struct {
	UseCall                bool
	ContainsEval           bool
	ContainsThis           bool
	ContainsArguments      bool
	ContainsInnerFunctions bool
	ContainsTry            bool
	Strict                 bool
	HasReturn              bool
	ResultType             PredictedType
}

// Severity of a Prepare diagnostic.
type Severity uint8

const (
	SeverityWarning Severity = iota
	SeverityError
)

func (s Severity) String() string {
	if s == SeverityError {
		return "error"
	}
	return "warning"
}

// Diagnostic reports a malformed construct found by Prepare.
type Diagnostic struct {
	Severity Severity
	Message  string
	Node     string
}

func (d Diagnostic) String() string {
	if d.Node == "" {
		return d.Severity.String() + ": " + d.Message
	}
	return d.Severity.String() + ": " + d.Message + " (" + d.Node + ")"
}
