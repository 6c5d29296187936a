package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultTenant(t *testing.T) {
	t.Setenv("GO_ENV", "production")
	assert.Equal(t, "prod", DefaultTenant())

	t.Setenv("GO_ENV", "development")
	assert.Equal(t, "dev", DefaultTenant())

	t.Setenv("GO_ENV", "")
	assert.Equal(t, "dev", DefaultTenant())
}

func TestResolveTenant(t *testing.T) {
	t.Setenv("GO_ENV", "")

	t.Run("PlainSegment", func(t *testing.T) {
		name, err := ResolveTenant("acme")
		assert.NoError(t, err)
		assert.Equal(t, "acme", name)
	})

	t.Run("ReservedNameMapsToDefault", func(t *testing.T) {
		name, err := ResolveTenant(ReservedTenant)
		assert.NoError(t, err)
		assert.Equal(t, "dev", name)
	})

	t.Run("InvalidSegments", func(t *testing.T) {
		for _, segment := range []string{"", "undefined", "favicon.ico", "a/b", "x.y"} {
			_, err := ResolveTenant(segment)
			assert.ErrorIs(t, err, ErrTenantNotFound, segment)
		}
	})
}
