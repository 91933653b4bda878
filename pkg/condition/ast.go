package condition

// Operator is an atom's comparison/string operator, per the spec's
// operator table (§4.3.2).
type Operator int

const (
	OpEq Operator = iota
	OpNeq
	OpLt
	OpLte
	OpGt
	OpGte
	OpIn
	OpNotIn
	OpContains
	OpNotContains
	OpStartsWith
	OpNotStartsWith
	OpEndsWith
	OpNotEndsWith
	OpMatch
	OpLike
)

func (op Operator) String() string {
	switch op {
	case OpEq:
		return "="
	case OpNeq:
		return "!="
	case OpLt:
		return "<"
	case OpLte:
		return "<="
	case OpGt:
		return ">"
	case OpGte:
		return ">="
	case OpIn:
		return "IN"
	case OpNotIn:
		return "NOT IN"
	case OpContains:
		return "CONTAINS"
	case OpNotContains:
		return "NOT CONTAINS"
	case OpStartsWith:
		return "STARTSWITH"
	case OpNotStartsWith:
		return "NOT STARTSWITH"
	case OpEndsWith:
		return "ENDSWITH"
	case OpNotEndsWith:
		return "NOT ENDSWITH"
	case OpMatch:
		return "MATCH"
	case OpLike:
		return "LIKE"
	default:
		return "?"
	}
}

// Literal is an atom's right-hand-side value: a string, a float64 number,
// a bool, or (for IN/NOT IN) a list of any of those.
type Literal struct {
	Kind LiteralKind
	Str  string
	Num  float64
	Bool bool
	List []Literal
}

type LiteralKind int

const (
	LitString LiteralKind = iota
	LitNumber
	LitBool
	LitList
)

// Node is a condition expression tree node. Exactly one of the concrete
// node kinds below is populated per evaluation path; Node itself is a
// tagged union rather than an interface so the evaluator and validator
// can switch on Kind without a type switch over many small types.
type NodeKind int

const (
	NodeAnd NodeKind = iota
	NodeOr
	NodeNot
	NodeAtom
	NodeNullCheck
)

type Node struct {
	Kind NodeKind

	// NodeAnd / NodeOr
	Left  *Node
	Right *Node

	// NodeNot
	Child *Node

	// NodeAtom
	Path    string
	Op      Operator
	Literal Literal

	// NodeNullCheck
	Negate bool // IS NOT NULL
}
