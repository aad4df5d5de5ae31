package types

import "github.com/brightclark/slang/internal/constant"

// Symbol represents a named entity produced by the (external) symbol
// table. Binding consumes symbols through the Scope interface below and
// never mutates them, except for the compute-once cells noted on
// ValueSymbol.
type Symbol interface {
	SymbolName() string
	isSymbol()
}

// ValueSymbol is a symbol that holds a value: a parameter, variable or
// net. Parameters carry an initializer thunk whose result is memoized on
// first access (safe under the single-thread-per-unit model; not safe for
// cross-unit sharing).
type ValueSymbol struct {
	Name string
	Type Type

	// IsParameter marks elaboration-time constants.
	IsParameter bool
	// IsAutomatic marks automatic variables, which are only usable in
	// constant contexts once they have been assigned.
	IsAutomatic bool

	// Init computes the initializer value, if any.
	Init func() constant.Value

	initDone bool
	initVal  constant.Value
}

func (s *ValueSymbol) SymbolName() string { return s.Name }
func (s *ValueSymbol) isSymbol()          {}

// Initializer returns the memoized initializer value, computing it on
// first call. Symbols without an initializer yield the not-a-constant
// marker.
func (s *ValueSymbol) Initializer() constant.Value {
	if !s.initDone {
		s.initDone = true
		if s.Init != nil {
			s.initVal = s.Init()
		}
	}
	return s.initVal
}

// ArgDirection describes how a subroutine formal receives its value.
type ArgDirection uint8

const (
	ArgIn ArgDirection = iota
	ArgOut
	ArgInOut
	ArgRef
	ArgConstRef
)

func (d ArgDirection) String() string {
	switch d {
	case ArgIn:
		return "input"
	case ArgOut:
		return "output"
	case ArgInOut:
		return "inout"
	case ArgRef:
		return "ref"
	default:
		return "const ref"
	}
}

// FormalArg describes one declared subroutine argument.
type FormalArg struct {
	Name      string
	Type      Type
	Direction ArgDirection

	// DefaultValue supplies the constant used when the actual argument
	// is elided, if the declaration provides one.
	DefaultValue constant.Value
	HasDefault   bool
}

// Subroutine is a user-declared function or task.
type Subroutine struct {
	Name       string
	ReturnType Type
	Args       []*FormalArg

	// IsConstEval marks subroutines legal in constant expressions.
	IsConstEval bool
	// Eval computes the subroutine's result from fully evaluated
	// argument values, when IsConstEval is set.
	Eval func(args []constant.Value) constant.Value
}

func (s *Subroutine) SymbolName() string { return s.Name }
func (s *Subroutine) isSymbol()          {}

// LookupLocation orders lookups for visibility rules: a symbol is only
// visible at lookups that occur at or after its declaration.
type LookupLocation struct {
	Index int
}

// Max is a lookup location after every declaration.
var LookupMax = LookupLocation{Index: int(^uint(0) >> 1)}

// Scope is the narrow name-resolution interface this core consumes. The
// real implementation lives with the symbol table machinery.
type Scope interface {
	// Lookup resolves a simple name at the given location, or nil.
	Lookup(name string, location LookupLocation) Symbol
	// LookupHierarchical resolves a dotted cross-scope path, or nil.
	LookupHierarchical(parts []string) Symbol
}
