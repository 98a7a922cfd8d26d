package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gaiafact/internal/core/apperror"
	"gaiafact/internal/core/id"
)

type fakeUsers struct {
	byEmail map[string]*User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byEmail: make(map[string]*User)}
}

func (f *fakeUsers) Create(ctx context.Context, user *User) error {
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeUsers) GetByID(ctx context.Context, userID id.ID) (*User, error) {
	for _, u := range f.byEmail {
		if u.ID == userID {
			return u, nil
		}
	}
	return nil, apperror.NewNotFound("user", userID)
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*User, error) {
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, apperror.NewNotFound("user", email)
}

func (f *fakeUsers) Update(ctx context.Context, user *User) error {
	f.byEmail[user.Email] = user
	return nil
}

func (f *fakeUsers) Exists(ctx context.Context, email string) (bool, error) {
	_, ok := f.byEmail[email]
	return ok, nil
}

func (f *fakeUsers) ListByRoles(ctx context.Context, roles ...string) ([]User, error) {
	var out []User
	for _, u := range f.byEmail {
		if !u.Verified || !u.IsActive {
			continue
		}
		for _, r := range roles {
			if u.Role == r {
				out = append(out, *u)
				break
			}
		}
	}
	return out, nil
}

func newAuthService() (*Service, *fakeUsers) {
	repo := newFakeUsers()
	jwtSvc := NewJWTService(DefaultJWTConfig("test-secret"))
	return NewService(repo, jwtSvc, DefaultServiceConfig()), repo
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{
		Email:    "Clerk@Example.COM",
		Password: "s3cret-pass",
		Name:     "Clerk",
	})
	require.NoError(t, err)
	assert.Equal(t, "clerk@example.com", user.Email, "email normalized")
	assert.Equal(t, RoleOperator, user.Role)
	assert.False(t, user.Verified)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)

	result, logged, err := svc.Login(ctx, Credentials{Email: "clerk@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken)
	assert.Equal(t, user.ID, logged.ID)
	assert.NotNil(t, logged.LastLoginAt)

	// Token round-trips to a user context.
	uc, err := svc.jwtService.ValidateToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), uc.UserID)
	assert.Equal(t, RoleOperator, uc.Role)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "a@b.co", Password: "longenough", Name: "A"})
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, Credentials{Email: "a@b.co", Password: "wrong-pass"})
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)

	_, _, err = svc.Login(ctx, Credentials{Email: "nobody@b.co", Password: "longenough"})
	appErr, ok = apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeUnauthorized, appErr.Code)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "not-an-email", Password: "longenough"})
	require.Error(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Email: "a@b.co", Password: "short"})
	require.Error(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Email: "a@b.co", Password: "longenough"})
	require.NoError(t, err)
	_, err = svc.Register(ctx, RegisterRequest{Email: "a@b.co", Password: "longenough"})
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeConflict, appErr.Code)
}

func TestReviewerDirectory(t *testing.T) {
	svc, repo := newAuthService()
	ctx := context.Background()

	operator, err := svc.Register(ctx, RegisterRequest{Email: "op@x.co", Password: "longenough", Name: "Op"})
	require.NoError(t, err)
	admin, err := svc.Register(ctx, RegisterRequest{Email: "admin@x.co", Password: "longenough", Name: "Admin"})
	require.NoError(t, err)

	_, err = svc.SetRole(ctx, admin.ID, RoleAdmin)
	require.NoError(t, err)

	emails, err := svc.ReviewerEmails(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"admin@x.co"}, emails)

	// Disabled reviewers drop out.
	repo.byEmail["admin@x.co"].IsActive = false
	emails, err = svc.ReviewerEmails(ctx)
	require.NoError(t, err)
	assert.Empty(t, emails)

	email, err := svc.UserEmail(ctx, operator.ID)
	require.NoError(t, err)
	assert.Equal(t, "op@x.co", email)
}

func TestSetRoleRejectsUnknownRole(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Email: "a@b.co", Password: "longenough"})
	require.NoError(t, err)

	_, err = svc.SetRole(ctx, user.ID, "root")
	require.Error(t, err)
	appErr, ok := apperror.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeValidation, appErr.Code)
}
