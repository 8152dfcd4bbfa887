package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	app "github.com/venduo/marketplace-identity/internal/application"
	"github.com/venduo/marketplace-identity/internal/domain/entity"
	"github.com/venduo/marketplace-identity/pkg/helpers"
)

func newIdentityService(repo *memRepo, notifier *fakeNotifier) (*app.IdentityService, *fakeTokenStore) {
	tokens := newFakeTokenStore()
	logger := logrus.New()
	jwt := helpers.NewJWTManager("test-access-secret", "test-refresh-secret", time.Hour, 24*time.Hour)
	svc := app.NewIdentityService(repo, fakeHasher{}, jwt, tokens, notifier, logger)
	return svc, tokens
}

func register(t *testing.T, svc *app.IdentityService, email string, role entity.Role) *entity.User {
	t.Helper()
	u, err := svc.Register(context.Background(), app.RegisterInput{
		Email:    email,
		Username: "user-" + string(role),
		Password: "secret-password",
		Role:     role,
	})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	return u
}

func TestRegisterApprovalDefaults(t *testing.T) {
	svc, _ := newIdentityService(newMemRepo(), &fakeNotifier{})

	customer := register(t, svc, "c@example.com", entity.RoleCustomer)
	assert.False(t, customer.IsApproved)
	assert.Nil(t, customer.VendorDetails)

	vendor := register(t, svc, "v@example.com", entity.RoleVendor)
	assert.True(t, vendor.IsApproved)
	require.NotNil(t, vendor.VendorDetails)
	assert.Empty(t, vendor.VendorDetails.Reputation.Comments)
	assert.Zero(t, vendor.VendorDetails.Reputation.AverageRating)

	admin := register(t, svc, "a@example.com", entity.RoleAdmin)
	assert.True(t, admin.IsApproved)
	assert.Nil(t, admin.VendorDetails)
}

func TestRegisterPartitionedUniqueness(t *testing.T) {
	svc, _ := newIdentityService(newMemRepo(), &fakeNotifier{})
	ctx := context.Background()

	// Same email may exist once in the customer partition and once in the
	// staff partition.
	register(t, svc, "shared@example.com", entity.RoleCustomer)
	register(t, svc, "shared@example.com", entity.RoleVendor)

	_, err := svc.Register(ctx, app.RegisterInput{
		Email: "shared@example.com", Username: "dup", Password: "secret-password", Role: entity.RoleCustomer,
	})
	assert.ErrorIs(t, err, app.ErrEmailTaken)

	// Admin shares the staff partition with the vendor above.
	_, err = svc.Register(ctx, app.RegisterInput{
		Email: "shared@example.com", Username: "dup", Password: "secret-password", Role: entity.RoleAdmin,
	})
	assert.ErrorIs(t, err, app.ErrEmailTaken)
}

func TestRegisterNotifiesPendingApproval(t *testing.T) {
	notifier := &fakeNotifier{}
	svc, _ := newIdentityService(newMemRepo(), notifier)

	customer := register(t, svc, "c@example.com", entity.RoleCustomer)
	register(t, svc, "v@example.com", entity.RoleVendor)

	require.Len(t, notifier.notified, 1)
	assert.Equal(t, customer.ID, notifier.notified[0])
}

func TestRegisterSucceedsWhenNotifierFails(t *testing.T) {
	svc, _ := newIdentityService(newMemRepo(), &fakeNotifier{err: errNotifierDown})

	u := register(t, svc, "c@example.com", entity.RoleCustomer)
	assert.False(t, u.IsApproved)
}

func TestLogin(t *testing.T) {
	svc, tokens := newIdentityService(newMemRepo(), &fakeNotifier{})
	ctx := context.Background()
	register(t, svc, "c@example.com", entity.RoleCustomer)

	u, pair, err := svc.Login(ctx, "c@example.com", "secret-password", entity.RoleCustomer)
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.NotEmpty(t, pair.AccessToken)
	assert.NotEmpty(t, pair.RefreshToken)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	stored, err := tokens.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshToken, stored)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	svc, _ := newIdentityService(newMemRepo(), &fakeNotifier{})
	ctx := context.Background()
	register(t, svc, "c@example.com", entity.RoleCustomer)

	// Wrong password, wrong partition, and unknown email must all produce
	// the same result so callers cannot enumerate accounts.
	_, _, err := svc.Login(ctx, "c@example.com", "wrong-password", entity.RoleCustomer)
	assert.ErrorIs(t, err, app.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "c@example.com", "secret-password", entity.RoleVendor)
	assert.ErrorIs(t, err, app.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, "nobody@example.com", "secret-password", entity.RoleCustomer)
	assert.ErrorIs(t, err, app.ErrInvalidCredentials)
}

func TestSetCustomerApproval(t *testing.T) {
	repo := newMemRepo()
	svc, _ := newIdentityService(repo, &fakeNotifier{})
	ctx := context.Background()

	customer := register(t, svc, "c@example.com", entity.RoleCustomer)
	vendor := register(t, svc, "v@example.com", entity.RoleVendor)

	modified, err := svc.SetCustomerApproval(ctx, customer.ID, true)
	require.NoError(t, err)
	assert.True(t, modified)

	got, err := svc.GetUser(ctx, customer.ID)
	require.NoError(t, err)
	assert.True(t, got.IsApproved)

	// The operation sets a boolean, so approved accounts can be returned
	// to pending.
	modified, err = svc.SetCustomerApproval(ctx, customer.ID, false)
	require.NoError(t, err)
	assert.True(t, modified)
	got, err = svc.GetUser(ctx, customer.ID)
	require.NoError(t, err)
	assert.False(t, got.IsApproved)

	// Unknown ids and non-customer accounts are a no-op, not an error.
	modified, err = svc.SetCustomerApproval(ctx, "no-such-id", true)
	require.NoError(t, err)
	assert.False(t, modified)

	modified, err = svc.SetCustomerApproval(ctx, vendor.ID, true)
	require.NoError(t, err)
	assert.False(t, modified)
}

func TestRefreshAndLogout(t *testing.T) {
	svc, tokens := newIdentityService(newMemRepo(), &fakeNotifier{})
	ctx := context.Background()
	register(t, svc, "c@example.com", entity.RoleCustomer)

	u, pair, err := svc.Login(ctx, "c@example.com", "secret-password", entity.RoleCustomer)
	require.NoError(t, err)

	rotated, err := svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	stored, err := tokens.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, rotated.RefreshToken, stored)

	_, err = svc.Refresh(ctx, "not-a-token")
	assert.ErrorIs(t, err, app.ErrInvalidCredentials)

	require.NoError(t, svc.Logout(ctx, u.ID))
	_, err = svc.Refresh(ctx, rotated.RefreshToken)
	assert.ErrorIs(t, err, app.ErrInvalidCredentials)
}

func TestUpdateProfile(t *testing.T) {
	repo := newMemRepo()
	svc, _ := newIdentityService(repo, &fakeNotifier{})
	ctx := context.Background()
	u := register(t, svc, "c@example.com", entity.RoleCustomer)

	updated, err := svc.UpdateProfile(ctx, u.ID, app.UpdateProfileInput{
		Username: "renamed", Address: "1 Market St", MobileNumber: "+15551234567",
	})
	require.NoError(t, err)
	assert.Equal(t, "renamed", updated.Username)
	assert.Equal(t, "1 Market St", updated.Address)
	assert.Equal(t, "+15551234567", updated.MobileNumber)

	_, err = svc.UpdateProfile(ctx, "no-such-id", app.UpdateProfileInput{Username: "x"})
	assert.ErrorIs(t, err, app.ErrUserNotFound)

	repo.staleReplaces = 1
	_, err = svc.UpdateProfile(ctx, u.ID, app.UpdateProfileInput{Username: "y"})
	assert.ErrorIs(t, err, app.ErrConflict)
}

func TestDeleteUser(t *testing.T) {
	svc, _ := newIdentityService(newMemRepo(), &fakeNotifier{})
	ctx := context.Background()
	u := register(t, svc, "c@example.com", entity.RoleCustomer)

	require.NoError(t, svc.DeleteUser(ctx, u.ID))
	_, err := svc.GetUser(ctx, u.ID)
	assert.ErrorIs(t, err, app.ErrUserNotFound)

	assert.ErrorIs(t, svc.DeleteUser(ctx, u.ID), app.ErrUserNotFound)
}

func TestListUsers(t *testing.T) {
	svc, _ := newIdentityService(newMemRepo(), &fakeNotifier{})
	register(t, svc, "c@example.com", entity.RoleCustomer)
	register(t, svc, "v@example.com", entity.RoleVendor)

	users, err := svc.ListUsers(context.Background())
	require.NoError(t, err)
	assert.Len(t, users, 2)
}
