package diag

import "fmt"

// Stage identifies which analysis phase produced the diagnostic.
type Stage string

const (
	StageBinder Stage = "binder"
	StageEval   Stage = "eval"
)

// Severity captures how impactful the diagnostic is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityNote    Severity = "note"
)

// Code is a stable identifier for a diagnostic.
type Code string

const (
	// Binding errors
	CodeUndefinedIdentifier    Code = "BIND_UNDEFINED_IDENTIFIER"
	CodeNotAValue              Code = "BIND_NOT_A_VALUE"
	CodeBadUnaryOperand        Code = "BIND_BAD_UNARY_OPERAND"
	CodeBadBinaryOperands      Code = "BIND_BAD_BINARY_OPERANDS"
	CodeBadConditionalValue    Code = "BIND_BAD_CONDITIONAL_VALUE"
	CodeCannotIndex            Code = "BIND_CANNOT_INDEX"
	CodeIndexMustBeIntegral    Code = "BIND_INDEX_MUST_BE_INTEGRAL"
	CodeRangeOutOfBounds       Code = "BIND_RANGE_OUT_OF_BOUNDS"
	CodeRangeNotConstant       Code = "BIND_RANGE_NOT_CONSTANT"
	CodeUnknownMember          Code = "BIND_UNKNOWN_MEMBER"
	CodeMemberOfScalar         Code = "BIND_MEMBER_OF_SCALAR"
	CodeNoImplicitConversion   Code = "BIND_NO_IMPLICIT_CONVERSION"
	CodeNarrowingConversion    Code = "BIND_NARROWING_CONVERSION"
	CodeBadCast                Code = "BIND_BAD_CAST"
	CodeNotASubroutine         Code = "BIND_NOT_A_SUBROUTINE"
	CodeUnknownSystemName      Code = "BIND_UNKNOWN_SYSTEM_NAME"
	CodeArgCountMismatch       Code = "BIND_ARG_COUNT_MISMATCH"
	CodeRefArgNotLValue        Code = "BIND_REF_ARG_NOT_LVALUE"
	CodeEmptyArgNotAllowed     Code = "BIND_EMPTY_ARG_NOT_ALLOWED"
	CodeBadAssignmentTarget    Code = "BIND_BAD_ASSIGNMENT_TARGET"
	CodeBadMembershipType      Code = "BIND_BAD_MEMBERSHIP_TYPE"
	CodeBadReplicationCount    Code = "BIND_BAD_REPLICATION_COUNT"
	CodeBadConcatOperand       Code = "BIND_BAD_CONCAT_OPERAND"
	CodePatternCountMismatch   Code = "BIND_PATTERN_COUNT_MISMATCH"
	CodePatternMissingSlot     Code = "BIND_PATTERN_MISSING_SLOT"
	CodePatternBadTarget       Code = "BIND_PATTERN_BAD_TARGET"
	CodePatternUnknownSetter   Code = "BIND_PATTERN_UNKNOWN_SETTER"
	CodeHierarchicalNotAllowed Code = "BIND_HIERARCHICAL_NOT_ALLOWED"

	// Constant evaluation errors
	CodeEvalNotConstant     Code = "EVAL_NOT_CONSTANT"
	CodeEvalDivideByZero    Code = "EVAL_DIVIDE_BY_ZERO"
	CodeEvalHierarchical    Code = "EVAL_HIERARCHICAL_REFERENCE"
	CodeEvalNonConstantCall Code = "EVAL_NON_CONSTANT_CALL"
	CodeEvalUninitialized   Code = "EVAL_UNINITIALIZED_VALUE"
	CodeEvalDepthExceeded   Code = "EVAL_DEPTH_EXCEEDED"
)

// Span represents a location in source code.
type Span struct {
	Filename string
	Line     int
	Column   int
	Start    int
	End      int
}

// String returns a human-readable representation of the span.
func (s Span) String() string {
	if s.Filename != "" {
		return fmt.Sprintf("%s:%d:%d", s.Filename, s.Line, s.Column)
	}
	return fmt.Sprintf("%d:%d", s.Line, s.Column)
}

// IsValid returns true if the span has valid location information.
func (s Span) IsValid() bool {
	return s.Line > 0 && s.Column > 0
}

// Diagnostic is an analysis diagnostic surfaced to end-users.
type Diagnostic struct {
	Stage    Stage
	Severity Severity
	Code     Code
	Message  string
	Span     Span
	Notes    []string
	Help     string
}

// WithNote adds a note to the diagnostic.
func (d Diagnostic) WithNote(note string) Diagnostic {
	d.Notes = append(d.Notes, note)
	return d
}

// WithHelp adds help text to the diagnostic.
func (d Diagnostic) WithHelp(help string) Diagnostic {
	d.Help = help
	return d
}

// Sink accumulates diagnostics produced during binding and evaluation.
// A single sink is shared by all analyses over one compilation unit.
type Sink struct {
	Diagnostics []Diagnostic
}

// Report appends a diagnostic to the sink.
func (s *Sink) Report(d Diagnostic) {
	s.Diagnostics = append(s.Diagnostics, d)
}

// Error reports an error diagnostic with the given code, message and span.
func (s *Sink) Error(stage Stage, code Code, msg string, span Span) {
	s.Report(Diagnostic{
		Stage:    stage,
		Severity: SeverityError,
		Code:     code,
		Message:  msg,
		Span:     span,
	})
}

// HasErrors returns true if any error-severity diagnostic was reported.
func (s *Sink) HasErrors() bool {
	for _, d := range s.Diagnostics {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}
