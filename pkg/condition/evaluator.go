package condition

import (
	"encoding/json"
	"fmt"

	"github.com/ccollicutt/siftlog/pkg/fieldpath"
)

// Evaluate walks the expression tree against record and returns its
// boolean result, per the operator semantics table in §4.3.2. The
// critical invariant: every operator except IS NULL returns false (never
// true) when its path does not resolve.
func Evaluate(node *Node, record map[string]interface{}) bool {
	switch node.Kind {
	case NodeAnd:
		return Evaluate(node.Left, record) && Evaluate(node.Right, record)
	case NodeOr:
		return Evaluate(node.Left, record) || Evaluate(node.Right, record)
	case NodeNot:
		return !Evaluate(node.Child, record)
	case NodeNullCheck:
		v, present := fieldpath.Resolve(record, node.Path)
		isNull := !present || v == nil
		if node.Negate {
			return !isNull
		}
		return isNull
	case NodeAtom:
		return evaluateAtom(node, record)
	default:
		return false
	}
}

func evaluateAtom(node *Node, record map[string]interface{}) bool {
	v, present := fieldpath.Resolve(record, node.Path)
	if !present {
		return false
	}

	switch v.(type) {
	case map[string]interface{}, []interface{}:
		// Objects and arrays are a type mismatch for the string operators,
		// negated forms included: no match.
		switch node.Op {
		case OpContains, OpNotContains, OpStartsWith, OpNotStartsWith,
			OpEndsWith, OpNotEndsWith, OpMatch, OpLike:
			return false
		}
	}

	switch node.Op {
	case OpEq:
		return valuesEqual(v, node.Literal)
	case OpNeq:
		return !valuesEqual(v, node.Literal)
	case OpLt, OpLte, OpGt, OpGte:
		return compareNumeric(v, node.Literal, node.Op)
	case OpIn:
		return inList(v, node.Literal)
	case OpNotIn:
		return !inList(v, node.Literal)
	case OpContains:
		return contains(stringOf(v), node.Literal.Str)
	case OpNotContains:
		return !contains(stringOf(v), node.Literal.Str)
	case OpStartsWith:
		return startsWith(stringOf(v), node.Literal.Str)
	case OpNotStartsWith:
		return !startsWith(stringOf(v), node.Literal.Str)
	case OpEndsWith:
		return endsWith(stringOf(v), node.Literal.Str)
	case OpNotEndsWith:
		return !endsWith(stringOf(v), node.Literal.Str)
	case OpMatch:
		return matchWildcard(stringOf(v), node.Literal.Str)
	case OpLike:
		return matchLike(stringOf(v), node.Literal.Str)
	default:
		return false
	}
}

func valuesEqual(v interface{}, lit Literal) bool {
	switch lit.Kind {
	case LitString:
		s, ok := v.(string)
		if ok {
			return s == lit.Str
		}
		return stringOf(v) == lit.Str
	case LitNumber:
		n, ok := numberOf(v)
		return ok && n == lit.Num
	case LitBool:
		b, ok := v.(bool)
		return ok && b == lit.Bool
	default:
		return false
	}
}

func compareNumeric(v interface{}, lit Literal, op Operator) bool {
	left, ok := numberOf(v)
	if !ok {
		return false
	}
	var right float64
	switch lit.Kind {
	case LitNumber:
		right = lit.Num
	default:
		r, ok := parseNumber(lit.Str)
		if !ok {
			return false
		}
		right = r
	}

	switch op {
	case OpLt:
		return left < right
	case OpLte:
		return left <= right
	case OpGt:
		return left > right
	case OpGte:
		return left >= right
	default:
		return false
	}
}

func inList(v interface{}, lit Literal) bool {
	for _, item := range lit.List {
		if valuesEqual(v, item) {
			return true
		}
	}
	return false
}

func contains(s, sub string) bool  { return indexOf(s, sub) >= 0 }
func startsWith(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}
func endsWith(s, suffix string) bool {
	return len(s) >= len(suffix) && s[len(s)-len(suffix):] == suffix
}

func indexOf(s, sub string) int {
	if sub == "" {
		return 0
	}
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}

// stringOf stringifies a resolved JSON scalar for the string operators
// (CONTAINS/STARTSWITH/ENDSWITH/MATCH/LIKE). Objects and arrays never reach
// those operators (evaluateAtom treats them as a type mismatch); when
// compared with '=' against a string literal they stringify to their JSON
// form.
func stringOf(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case nil:
		return ""
	case bool:
		if t {
			return "true"
		}
		return "false"
	case json.Number:
		return t.String()
	case float64:
		return fmt.Sprintf("%g", t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

func numberOf(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		return parseNumber(t)
	default:
		return 0, false
	}
}

func parseNumber(s string) (float64, bool) {
	var f float64
	n, err := fmt.Sscanf(s, "%g", &f)
	return f, err == nil && n == 1
}
