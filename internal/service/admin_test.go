package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/untdf/catalog/internal/errors"
)

func TestGrantAdmin(t *testing.T) {
	grant, err := GrantAdmin("s3cret", "s3cret")
	require.NoError(t, err)
	assert.True(t, grant.Valid())

	grant, err = GrantAdmin("s3cret", "guess")
	assert.ErrorIs(t, err, errors.ErrForbidden)
	assert.False(t, grant.Valid())

	grant, err = GrantAdmin("", "")
	assert.ErrorIs(t, err, errors.ErrForbidden, "empty configured token disables admin")
	assert.False(t, grant.Valid())

	assert.False(t, AdminGrant{}.Valid())
}
