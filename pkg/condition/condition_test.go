package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func eval(t *testing.T, cond string, record map[string]interface{}) bool {
	t.Helper()
	node, err := Parse(cond)
	require.NoError(t, err)
	return Evaluate(node, record)
}

func TestSimpleEquality(t *testing.T) {
	record := map[string]interface{}{
		"eventName": "ConsoleLogin",
		"responseElements": map[string]interface{}{
			"ConsoleLogin": "Success",
		},
	}
	assert.True(t, eval(t, "eventName = 'ConsoleLogin' AND responseElements.ConsoleLogin = 'Success'", record))
}

func TestParenthesesRespectAndAbsence(t *testing.T) {
	record := map[string]interface{}{"eventName": "x"}
	got := eval(t, "verb != '' AND (userAgent CONTAINS 'python' OR userAgent CONTAINS 'curl')", record)
	assert.False(t, got)
}

func TestAbsenceSemantics(t *testing.T) {
	record := map[string]interface{}{}

	assert.False(t, eval(t, "missing = 'x'", record))
	assert.False(t, eval(t, "missing != 'x'", record))
	assert.False(t, eval(t, "missing NOT IN ('x','y')", record))
	assert.False(t, eval(t, "missing CONTAINS 'x'", record))
	assert.False(t, eval(t, "missing NOT CONTAINS 'x'", record))
	assert.True(t, eval(t, "missing IS NULL", record))
	assert.False(t, eval(t, "missing IS NOT NULL", record))
}

func TestDoubleNegation(t *testing.T) {
	record := map[string]interface{}{"a": "1"}
	p := eval(t, "a = '1'", record)
	nn := eval(t, "NOT NOT a = '1'", record)
	assert.Equal(t, p, nn)
}

func TestOperatorLongestMatch(t *testing.T) {
	record := map[string]interface{}{"a": "xyz"}
	assert.False(t, eval(t, "a NOT CONTAINS 'xyz'", record))
	assert.True(t, eval(t, "a NOT CONTAINS 'q'", record))
}

func TestCaseInsensitiveKeywords(t *testing.T) {
	record := map[string]interface{}{"a": "1", "b": "2"}
	assert.True(t, eval(t, "a = '1' and b = '2'", record))
	assert.True(t, eval(t, "a = '1' And b = '2'", record))
}

func TestNumericComparison(t *testing.T) {
	record := map[string]interface{}{"count": 15.0}
	assert.True(t, eval(t, "count > 10", record))
	assert.False(t, eval(t, "count < 10", record))
}

func TestInOperator(t *testing.T) {
	record := map[string]interface{}{"code": "AccessDenied"}
	assert.True(t, eval(t, "code IN ('AccessDenied', 'Throttling')", record))
	assert.False(t, eval(t, "code NOT IN ('AccessDenied', 'Throttling')", record))
}

func TestMatchAndLike(t *testing.T) {
	record := map[string]interface{}{"path": "/api/v1/users"}
	assert.True(t, eval(t, "path MATCH '/api/*/users'", record))
	assert.True(t, eval(t, "path LIKE '/api/%/users'", record))
	assert.False(t, eval(t, "path LIKE '/admin/%'", record))
}

func TestValidateDetectsUnbalancedParens(t *testing.T) {
	r := Validate("(a = '1' AND b = '2'")
	assert.False(t, r.Valid)
}

func TestValidateRejectsWhere(t *testing.T) {
	r := Validate("WHERE eventName = 'x'")
	assert.False(t, r.Valid)
}

func TestValidateAcceptsGoodCondition(t *testing.T) {
	r := Validate("eventName = 'ConsoleLogin' OR eventName = 'Login'")
	assert.True(t, r.Valid)
}

func TestConditionCache(t *testing.T) {
	c := NewCache()
	n1, err := c.Get("a = '1'")
	require.NoError(t, err)
	n2, err := c.Get("a = '1'")
	require.NoError(t, err)
	assert.Same(t, n1, n2)
}
