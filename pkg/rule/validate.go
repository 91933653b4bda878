package rule

import (
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/ccollicutt/siftlog/pkg/condition"
	"github.com/ccollicutt/siftlog/pkg/sifterr"
)

var structValidator = validator.New()

// Validate checks a rule against the schema of §3: required fields,
// status/severity enums, date format, a parseable condition, and (if
// aggregation is enabled) a well-formed window and threshold. It returns
// the first *sifterr.SchemaError found, or nil.
func Validate(r *Rule) error {
	if err := structValidator.Struct(r); err != nil {
		if ve, ok := err.(validator.ValidationErrors); ok && len(ve) > 0 {
			fe := ve[0]
			return &sifterr.SchemaError{Field: fe.Namespace(), Msg: fe.Tag() + " constraint failed"}
		}
		return &sifterr.SchemaError{Msg: err.Error()}
	}

	if r.Date != "" {
		if _, err := time.Parse("2006-01-02", r.Date); err != nil {
			return &sifterr.SchemaError{Field: "date", Msg: "must be YYYY-MM-DD"}
		}
	}

	if _, err := condition.Parse(r.Detection.Condition); err != nil {
		return &sifterr.SchemaError{Field: "detection.condition", Msg: err.Error()}
	}

	if r.Detection.Aggregation != nil && r.Detection.Aggregation.Enabled {
		agg := r.Detection.Aggregation
		if _, err := ParseWindow(agg.Window); err != nil {
			return &sifterr.SchemaError{Field: "detection.aggregation.window", Msg: err.Error()}
		}
		if _, _, err := ParseThreshold(agg.Threshold); err != nil {
			return &sifterr.SchemaError{Field: "detection.aggregation.threshold", Msg: err.Error()}
		}
	}

	return nil
}

// ParseWindow parses a "<int><s|m|h|d>" duration string.
func ParseWindow(s string) (time.Duration, error) {
	if s == "" {
		return 0, fmt.Errorf("empty window")
	}
	unit := s[len(s)-1]
	numPart := s[:len(s)-1]
	n, err := strconv.Atoi(numPart)
	if err != nil || n <= 0 {
		return 0, fmt.Errorf("invalid window %q: expected <int><s|m|h|d>", s)
	}
	switch unit {
	case 's':
		return time.Duration(n) * time.Second, nil
	case 'm':
		return time.Duration(n) * time.Minute, nil
	case 'h':
		return time.Duration(n) * time.Hour, nil
	case 'd':
		return time.Duration(n) * 24 * time.Hour, nil
	default:
		return 0, fmt.Errorf("invalid window %q: unknown unit %q", s, string(unit))
	}
}

// ThresholdOp is the comparison operator of a rule's aggregation threshold.
type ThresholdOp string

const (
	ThresholdGT  ThresholdOp = ">"
	ThresholdGTE ThresholdOp = ">="
	ThresholdLT  ThresholdOp = "<"
	ThresholdLTE ThresholdOp = "<="
	ThresholdEQ  ThresholdOp = "="
)

// ParseThreshold parses a "<op> <n>" threshold string, e.g. "> 10".
func ParseThreshold(s string) (ThresholdOp, int, error) {
	var opStr string
	var numStr string

	for _, op := range []string{">=", "<=", ">", "<", "="} {
		if len(s) >= len(op) && s[:len(op)] == op {
			opStr = op
			numStr = s[len(op):]
			break
		}
	}
	if opStr == "" {
		return "", 0, fmt.Errorf("invalid threshold %q: expected a leading comparison operator", s)
	}

	n, err := strconv.Atoi(trimSpace(numStr))
	if err != nil {
		return "", 0, fmt.Errorf("invalid threshold %q: not a valid integer", s)
	}
	return ThresholdOp(opStr), n, nil
}

func trimSpace(s string) string {
	start := 0
	for start < len(s) && s[start] == ' ' {
		start++
	}
	end := len(s)
	for end > start && s[end-1] == ' ' {
		end--
	}
	return s[start:end]
}

// Compare applies the threshold operator to an observed count.
func (op ThresholdOp) Compare(count, threshold int) bool {
	switch op {
	case ThresholdGT:
		return count > threshold
	case ThresholdGTE:
		return count >= threshold
	case ThresholdLT:
		return count < threshold
	case ThresholdLTE:
		return count <= threshold
	case ThresholdEQ:
		return count == threshold
	default:
		return false
	}
}
