package middleware

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type ownedResource struct {
	owner string
}

func (r ownedResource) OwnerID() string { return r.owner }

func TestAuthenticatedOnly(t *testing.T) {
	authz := AuthenticatedOnly{}

	assert.True(t, authz.Authorize("user-1", nil))
	assert.True(t, authz.Authorize("user-1", ownedResource{owner: "user-2"}))
	assert.False(t, authz.Authorize("", nil))
}

func TestOwnerOnly(t *testing.T) {
	authz := OwnerOnly{}

	assert.True(t, authz.Authorize("user-1", ownedResource{owner: "user-1"}))
	assert.False(t, authz.Authorize("user-1", ownedResource{owner: "user-2"}))
	assert.False(t, authz.Authorize("", ownedResource{owner: ""}))
	assert.False(t, authz.Authorize("user-1", nil))
}
