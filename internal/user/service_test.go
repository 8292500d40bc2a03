package user_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/storefront/internal/auth"
	"github.com/example/storefront/internal/store/memstore"
	"github.com/example/storefront/internal/user"
)

func newUserService(t *testing.T) *user.Service {
	t.Helper()
	return user.NewService(memstore.New().Users())
}

func TestRegister_Success(t *testing.T) {
	svc := newUserService(t)

	u, err := svc.Register(context.Background(), "jane@example.com", "s3cret-pass", "Jane")
	require.NoError(t, err)

	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "jane@example.com", u.Email)
	assert.Equal(t, user.RoleCustomer, u.Role)
	assert.NotEmpty(t, u.PasswordHash)
	assert.NotEqual(t, "s3cret-pass", u.PasswordHash)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "jane@example.com", "s3cret-pass", "Jane")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "jane@example.com", "other-pass1", "Janet")
	assert.ErrorIs(t, err, user.ErrEmailTaken)
}

func TestRegister_Validation(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, "", "s3cret-pass", "Jane")
	assert.ErrorIs(t, err, user.ErrInvalidEmail)

	_, err = svc.Register(ctx, "jane@example.com", "short", "Jane")
	assert.ErrorIs(t, err, auth.ErrPasswordTooShort)
}

func TestAuthenticate(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "jane@example.com", "s3cret-pass", "Jane")
	require.NoError(t, err)

	u, err := svc.Authenticate(ctx, "jane@example.com", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, u.ID)

	// Wrong password and unknown email yield the same error.
	_, wrongPass := svc.Authenticate(ctx, "jane@example.com", "wrong-pass1")
	_, unknown := svc.Authenticate(ctx, "nobody@example.com", "s3cret-pass")
	assert.ErrorIs(t, wrongPass, user.ErrInvalidCredentials)
	assert.ErrorIs(t, unknown, user.ErrInvalidCredentials)
	assert.Equal(t, wrongPass.Error(), unknown.Error())
}

func TestUpgradeToSeller(t *testing.T) {
	svc := newUserService(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, "jane@example.com", "s3cret-pass", "Jane")
	require.NoError(t, err)

	upgraded, err := svc.UpgradeToSeller(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, user.RoleSeller, upgraded.Role)

	// Upgrading again is a no-op.
	again, err := svc.UpgradeToSeller(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, user.RoleSeller, again.Role)
}

func TestUpgradeToSeller_UnknownUser(t *testing.T) {
	svc := newUserService(t)

	_, err := svc.UpgradeToSeller(context.Background(), "missing")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}
