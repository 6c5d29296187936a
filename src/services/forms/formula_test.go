package forms

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluate(t *testing.T) {
	t.Run("SubstitutesFieldsAndAdds", func(t *testing.T) {
		doc := map[string]interface{}{"a": "2", "b": "3.5"}
		assert.InDelta(t, 5.5, Evaluate("a+b", doc), 1e-9)
	})

	t.Run("PrecedenceAndParens", func(t *testing.T) {
		doc := map[string]interface{}{"a": 2.0, "b": 3.0, "c": 4.0}
		assert.InDelta(t, 14, Evaluate("a+b*c", doc), 1e-9)
		assert.InDelta(t, 20, Evaluate("(a+b)*c", doc), 1e-9)
		assert.InDelta(t, -1, Evaluate("a-b", doc), 1e-9)
		assert.InDelta(t, 0.5, Evaluate("a/c", doc), 1e-9)
	})

	t.Run("UnaryMinus", func(t *testing.T) {
		doc := map[string]interface{}{"a": 5.0}
		assert.InDelta(t, -5, Evaluate("-a", doc), 1e-9)
		assert.InDelta(t, 3, Evaluate("-a+8", doc), 1e-9)
	})

	t.Run("LongestKeyWins", func(t *testing.T) {
		// "total" must not be partially consumed by the shorter key "tot"
		doc := map[string]interface{}{"tot": 1.0, "total": 10.0}
		assert.InDelta(t, 11, Evaluate("tot+total", doc), 1e-9)
	})

	t.Run("RejectsUnresolvedInput", func(t *testing.T) {
		doc := map[string]interface{}{"a": 1.0, "b": 2.0}
		assert.Zero(t, Evaluate("a+b; rm -rf /", doc))
		assert.Zero(t, Evaluate("unknownField+1", doc))
		assert.Zero(t, Evaluate("a+system(1)", doc))
	})

	t.Run("DivisionByZeroIsZero", func(t *testing.T) {
		doc := map[string]interface{}{"a": 4.0, "b": 0.0}
		assert.Zero(t, Evaluate("a/b", doc))
	})

	t.Run("MalformedExpressionIsZero", func(t *testing.T) {
		doc := map[string]interface{}{"a": 4.0}
		assert.Zero(t, Evaluate("a+", doc))
		assert.Zero(t, Evaluate("(a", doc))
	})

	t.Run("NonNumericFieldCountsAsZero", func(t *testing.T) {
		doc := map[string]interface{}{"a": "hello", "b": "3"}
		assert.InDelta(t, 3, Evaluate("a+b", doc), 1e-9)
	})
}

func TestHasArithmetic(t *testing.T) {
	assert.True(t, HasArithmetic("a+b"))
	assert.True(t, HasArithmetic("price*qty"))
	assert.False(t, HasArithmetic("just a label"))
}

func TestParseFloatLoose(t *testing.T) {
	assert.InDelta(t, 12.5, parseFloatLoose("12.5kg"), 1e-9)
	assert.InDelta(t, -3, parseFloatLoose(" -3 "), 1e-9)
	assert.Zero(t, parseFloatLoose("abc"))
	assert.Zero(t, parseFloatLoose(nil))
	assert.InDelta(t, 7, parseFloatLoose(7), 1e-9)
	assert.InDelta(t, 2.5, parseFloatLoose(float32(2.5)), 1e-9)
}
