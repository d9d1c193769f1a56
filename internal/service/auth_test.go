package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"familytree_go/internal/model"
)

func newTestAuth(t *testing.T) *Auth {
	t.Helper()
	return NewAuth(&AuthConfig{SecretKey: "test-secret", TokenDuration: time.Hour}, newTestDB(t), NewValidator(), NewNopLogger())
}

func createModerator(t *testing.T, a *Auth, email, role string) *model.Moderator {
	t.Helper()
	m, err := a.CreateModerator(context.Background(), &CreateModeratorInput{Email: email, Password: "password123", Role: role})
	require.NoError(t, err)
	return m
}

func TestAuth_LoginAndValidate(t *testing.T) {
	a := newTestAuth(t)
	ctx := context.Background()
	m := createModerator(t, a, "Mod@Example.com", "")
	assert.Equal(t, "mod@example.com", m.Email)
	assert.Equal(t, model.RoleModerator, m.Role)
	assert.NotEqual(t, "password123", m.Password)

	result, err := a.Login(ctx, &LoginInput{Email: "MOD@example.com", Password: "password123"})
	require.NoError(t, err)
	require.NotEmpty(t, result.AccessToken)

	claims, err := a.ValidateToken(ctx, result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, m.ID, claims.ModeratorID)
	assert.Equal(t, model.RoleModerator, claims.Role)
}

func TestAuth_LoginRejectsBadPassword(t *testing.T) {
	a := newTestAuth(t)
	createModerator(t, a, "mod@example.com", "")

	_, err := a.Login(context.Background(), &LoginInput{Email: "mod@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrAuthentication))

	_, err = a.Login(context.Background(), &LoginInput{Email: "nobody@example.com", Password: "password123"})
	assert.True(t, IsCode(err, ErrAuthentication))
}

func TestAuth_TokenRejectedAfterLogout(t *testing.T) {
	a := newTestAuth(t)
	ctx := context.Background()
	createModerator(t, a, "mod@example.com", "")

	result, err := a.Login(ctx, &LoginInput{Email: "mod@example.com", Password: "password123"})
	require.NoError(t, err)
	claims, err := a.ValidateToken(ctx, result.AccessToken)
	require.NoError(t, err)

	require.NoError(t, a.Logout(ctx, claims))

	_, err = a.ValidateToken(ctx, result.AccessToken)
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrAuthentication))
}

func TestAuth_TokenExpires(t *testing.T) {
	a := newTestAuth(t)
	ctx := context.Background()
	createModerator(t, a, "mod@example.com", "")

	result, err := a.Login(ctx, &LoginInput{Email: "mod@example.com", Password: "password123"})
	require.NoError(t, err)

	a.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = a.ValidateToken(ctx, result.AccessToken)
	assert.True(t, IsCode(err, ErrAuthentication))

	n, err := a.PurgeExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestAuth_RejectsForeignSignature(t *testing.T) {
	a := newTestAuth(t)
	other := NewAuth(&AuthConfig{SecretKey: "other-secret", TokenDuration: time.Hour}, a.db, a.validator, a.logger)
	m := createModerator(t, a, "mod@example.com", "")

	token, err := other.GenerateToken(m, &model.UserSession{BaseModel: model.BaseModel{ID: "s1"}, TokenExpiresAt: time.Now().Add(time.Hour)})
	require.NoError(t, err)

	_, err = a.ValidateToken(context.Background(), token)
	assert.True(t, IsCode(err, ErrAuthentication))
}

func TestAuth_CreateModeratorDuplicate(t *testing.T) {
	a := newTestAuth(t)
	createModerator(t, a, "mod@example.com", "")

	_, err := a.CreateModerator(context.Background(), &CreateModeratorInput{Email: "MOD@example.com", Password: "password123"})
	require.Error(t, err)
	assert.True(t, IsCode(err, ErrConflict))
}

func TestAuth_ChangePasswordRevokesOtherSessions(t *testing.T) {
	a := newTestAuth(t)
	ctx := context.Background()
	createModerator(t, a, "mod@example.com", "")

	first, err := a.Login(ctx, &LoginInput{Email: "mod@example.com", Password: "password123"})
	require.NoError(t, err)
	second, err := a.Login(ctx, &LoginInput{Email: "mod@example.com", Password: "password123"})
	require.NoError(t, err)
	claims, err := a.ValidateToken(ctx, second.AccessToken)
	require.NoError(t, err)

	err = a.ChangePassword(ctx, claims, &ChangePasswordInput{OldPassword: "wrong", NewPassword: "newpassword1"})
	assert.True(t, IsCode(err, ErrAuthentication))

	require.NoError(t, a.ChangePassword(ctx, claims, &ChangePasswordInput{OldPassword: "password123", NewPassword: "newpassword1"}))

	_, err = a.ValidateToken(ctx, first.AccessToken)
	assert.Error(t, err)
	_, err = a.ValidateToken(ctx, second.AccessToken)
	assert.NoError(t, err)

	_, err = a.Login(ctx, &LoginInput{Email: "mod@example.com", Password: "newpassword1"})
	assert.NoError(t, err)
}

func TestAuth_EnsureSuperAdminIdempotent(t *testing.T) {
	a := newTestAuth(t)
	ctx := context.Background()

	require.NoError(t, a.EnsureSuperAdmin(ctx, "root@example.com", "supersecret"))
	require.NoError(t, a.EnsureSuperAdmin(ctx, "root@example.com", "supersecret"))
	require.NoError(t, a.EnsureSuperAdmin(ctx, "", ""))

	var admins []model.Moderator
	require.NoError(t, a.db.Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.True(t, admins[0].IsSuperAdmin())
}
