package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaypeewhat/ThriftStore/entity"
	"github.com/jaypeewhat/ThriftStore/pkg/apperr"
)

func TestRegisterLoginAuthorize(t *testing.T) {
	f := newFixture(t)
	auth := NewAuthService(f.db, "secret", time.Hour)

	p, err := auth.Register(f.ctx, RegisterInput{Email: " Sam@Example.com ", Password: "hunter22", FullName: "Sam", Role: entity.RoleSeller})
	require.NoError(t, err)
	assert.Equal(t, "sam@example.com", p.Email)
	assert.NotEqual(t, "hunter22", p.Password)

	_, err = auth.Register(f.ctx, RegisterInput{Email: "sam@example.com", Password: "hunter22", FullName: "Sam"})
	assert.ErrorIs(t, err, apperr.ErrEmailTaken)
	_, err = auth.Register(f.ctx, RegisterInput{Email: "root@example.com", Password: "hunter22", FullName: "Root", Role: entity.RoleAdmin})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, _, err = auth.Login(f.ctx, "sam@example.com", "wrong")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	token, me, err := auth.Login(f.ctx, "SAM@example.com", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, p.ID, me.ID)

	got, err := auth.Authorize(f.ctx, token)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleSeller, got.Role)

	_, err = auth.Authorize(f.ctx, "nope")
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
}

func TestSuspensionEndsSessions(t *testing.T) {
	f := newFixture(t)
	auth := NewAuthService(f.db, "secret", time.Hour)
	p, err := auth.Register(f.ctx, RegisterInput{Email: "bea@example.com", Password: "hunter22", FullName: "Bea"})
	require.NoError(t, err)
	token, _, err := auth.Login(f.ctx, "bea@example.com", "hunter22")
	require.NoError(t, err)

	suspended, err := auth.SetSuspended(f.ctx, p.ID, true)
	require.NoError(t, err)
	assert.True(t, suspended.IsSuspended)

	_, err = auth.Authorize(f.ctx, token)
	assert.ErrorIs(t, err, apperr.ErrSuspended)
	_, _, err = auth.Login(f.ctx, "bea@example.com", "hunter22")
	assert.ErrorIs(t, err, apperr.ErrSuspended)

	_, err = auth.SetSuspended(f.ctx, p.ID, false)
	require.NoError(t, err)
	_, err = auth.Authorize(f.ctx, token)
	assert.NoError(t, err)

	admin := f.profile(t, entity.RoleAdmin, "root")
	_, err = auth.SetSuspended(f.ctx, admin.ID, true)
	assert.ErrorIs(t, err, apperr.ErrForbidden)
}
