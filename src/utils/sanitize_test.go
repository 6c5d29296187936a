package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	t.Run("LowercasesAndReplacesWhitespace", func(t *testing.T) {
		assert.Equal(t, "full_name", Sanitize("Full Name"))
		assert.Equal(t, "order_total", Sanitize("  Order   Total  "))
	})

	t.Run("StripsDisallowedCharacters", func(t *testing.T) {
		assert.Equal(t, "email_address", Sanitize("Email (Address)!"))
		assert.Equal(t, "priceusd", Sanitize("Price$USD"))
		assert.Equal(t, "a-b_c", Sanitize("A-B C"))
	})

	t.Run("Idempotent", func(t *testing.T) {
		inputs := []string{"Full Name", "order_total", "ปีการศึกษา Amount", "a-b_c9"}
		for _, in := range inputs {
			once := Sanitize(in)
			assert.Equal(t, once, Sanitize(once))
		}
	})

	t.Run("EmptyAndSymbolOnly", func(t *testing.T) {
		assert.Equal(t, "", Sanitize(""))
		assert.Equal(t, "", Sanitize("!!!"))
	})
}

func TestCollectionName(t *testing.T) {
	t.Run("SlugOnly", func(t *testing.T) {
		assert.Equal(t, "intake", CollectionName("Intake", ""))
		assert.Equal(t, "intake", CollectionName("intake", "null"))
		assert.Equal(t, "intake", CollectionName("intake", "   "))
	})

	t.Run("ProjectSuffix", func(t *testing.T) {
		assert.Equal(t, "intake_block_a", CollectionName("Intake", "Block A"))
		assert.Equal(t, "intake_north", CollectionName("intake", "North"))
	})
}

func TestSearchRegex(t *testing.T) {
	re := SearchRegex("a.b(c)")
	assert.Equal(t, `a\.b\(c\)`, re.Pattern)
	assert.Equal(t, "i", re.Options)
}
