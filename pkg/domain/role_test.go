package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "navbat/pkg/domain-errors"
)

func TestParseRole_Invariants(t *testing.T) {
	t.Run("rejects empty string", func(t *testing.T) {
		_, err := ParseRole("")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("rejects unknown role", func(t *testing.T) {
		_, err := ParseRole("ROOT")
		require.Error(t, err)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	t.Run("matching is case sensitive", func(t *testing.T) {
		_, err := ParseRole("admin")
		require.Error(t, err)
	})

	t.Run("accepts known roles", func(t *testing.T) {
		for _, in := range []string{"ADMIN", "OPERATOR", "VIEWER"} {
			r, err := ParseRole(in)
			require.NoError(t, err)
			assert.Equal(t, in, r.String())
		}
	})
}

func TestRole_IsAdmin(t *testing.T) {
	assert.True(t, RoleAdmin.IsAdmin())
	assert.False(t, RoleOperator.IsAdmin())
	assert.False(t, RoleViewer.IsAdmin())
	assert.False(t, Role("").IsAdmin())
}
