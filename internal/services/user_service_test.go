package services

import (
	"context"
	"testing"
	"time"

	"github.com/civictrack/backend/internal/config"
	"github.com/civictrack/backend/internal/models"
	"github.com/civictrack/backend/internal/workflow"
	"github.com/civictrack/backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSessionStore struct {
	sessions    map[string]string
	blacklisted map[string]bool
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{
		sessions:    make(map[string]string),
		blacklisted: make(map[string]bool),
	}
}

func (s *fakeSessionStore) SetUserSession(ctx context.Context, userID string, sessionData interface{}, expiration time.Duration) error {
	s.sessions[userID] = sessionData.(string)
	return nil
}

func (s *fakeSessionStore) DeleteUserSession(ctx context.Context, userID string) error {
	delete(s.sessions, userID)
	return nil
}

func (s *fakeSessionStore) BlacklistToken(ctx context.Context, token string, expiration time.Duration) error {
	s.blacklisted[token] = true
	return nil
}

func newUserFixture() (UserService, *fakeUserRepo, *fakeSessionStore) {
	repo := newFakeUserRepo()
	sessions := newFakeSessionStore()
	jwtManager := utils.NewJWTManager("test-secret", 24)
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "test-secret", ExpireHour: 24}}
	return NewUserService(repo, jwtManager, sessions, cfg), repo, sessions
}

func TestRegisterIssuesToken(t *testing.T) {
	svc, repo, sessions := newUserFixture()

	resp, err := svc.Register(context.Background(), &models.UserRegisterRequest{
		Email:     "asha@example.com",
		Password:  "secret123",
		FirstName: "Asha",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.Positive(t, resp.ExpiresIn)
	assert.Equal(t, models.RoleCitizen, resp.User.Role)

	stored, err := repo.FindByEmail(context.Background(), "asha@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret123", stored.Password)

	// Registration opens a session keyed by the new user.
	assert.Equal(t, resp.Token, sessions.sessions[stored.ID.String()])
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _, _ := newUserFixture()
	req := &models.UserRegisterRequest{
		Email:     "asha@example.com",
		Password:  "secret123",
		FirstName: "Asha",
	}

	_, err := svc.Register(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), req)
	assert.EqualError(t, err, "email already exists")
}

func TestLogin(t *testing.T) {
	svc, repo, sessions := newUserFixture()
	hash, err := utils.HashPassword("secret123")
	require.NoError(t, err)
	user := repo.add(&models.User{
		Email:    "asha@example.com",
		Password: hash,
		Role:     models.RoleCitizen,
	})

	resp, err := svc.Login(context.Background(), &models.UserLoginRequest{
		Email:    "asha@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.NotNil(t, repo.users[user.ID].LastLoginAt)
	assert.Equal(t, resp.Token, sessions.sessions[user.ID.String()])

	_, err = svc.Login(context.Background(), &models.UserLoginRequest{
		Email:    "asha@example.com",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// Unknown emails fail identically to wrong passwords.
	_, err = svc.Login(context.Background(), &models.UserLoginRequest{
		Email:    "nobody@example.com",
		Password: "secret123",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsDeactivatedAccount(t *testing.T) {
	svc, repo, _ := newUserFixture()
	hash, err := utils.HashPassword("secret123")
	require.NoError(t, err)
	user := repo.add(&models.User{
		Email:    "asha@example.com",
		Password: hash,
		Role:     models.RoleCitizen,
	})
	repo.users[user.ID].IsActive = false

	_, err = svc.Login(context.Background(), &models.UserLoginRequest{
		Email:    "asha@example.com",
		Password: "secret123",
	})
	assert.EqualError(t, err, "account is deactivated")
}

func TestCreateOfficer(t *testing.T) {
	svc, repo, _ := newUserFixture()
	admin := models.Actor{UserID: uuid.New(), Role: models.RoleAdmin}

	resp, err := svc.CreateOfficer(context.Background(), admin, &models.User{
		Email:     "officer@civictrack.gov",
		FirstName: "Ravi",
		Role:      models.RoleDepartmentOfficer,
	}, "secret123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleDepartmentOfficer, resp.Role)

	stored, err := repo.FindByEmail(context.Background(), "officer@civictrack.gov")
	require.NoError(t, err)
	assert.True(t, utils.CheckPassword(stored.Password, "secret123"))

	_, err = svc.CreateOfficer(context.Background(), admin, &models.User{
		Email: "sneaky@civictrack.gov",
		Role:  models.RoleCitizen,
	}, "secret123")
	assert.EqualError(t, err, "invalid officer role")

	citizen := models.Actor{UserID: uuid.New(), Role: models.RoleCitizen}
	_, err = svc.CreateOfficer(context.Background(), citizen, &models.User{
		Email: "another@civictrack.gov",
		Role:  models.RoleWardOfficer,
	}, "secret123")
	assert.ErrorIs(t, err, workflow.ErrForbidden)
}

func TestListUsersIsAdminOnly(t *testing.T) {
	svc, repo, _ := newUserFixture()
	repo.add(&models.User{Email: "one@example.com", Role: models.RoleCitizen})
	repo.add(&models.User{Email: "two@example.com", Role: models.RoleWardOfficer})

	users, total, err := svc.ListUsers(context.Background(),
		models.Actor{UserID: uuid.New(), Role: models.RoleAdmin}, &models.UserFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, users, 2)

	_, _, err = svc.ListUsers(context.Background(),
		models.Actor{UserID: uuid.New(), Role: models.RoleWardOfficer}, &models.UserFilter{})
	assert.ErrorIs(t, err, workflow.ErrForbidden)
}

func TestDeactivationRevokesSession(t *testing.T) {
	svc, repo, sessions := newUserFixture()
	hash, err := utils.HashPassword("secret123")
	require.NoError(t, err)
	user := repo.add(&models.User{
		Email:    "asha@example.com",
		Password: hash,
		Role:     models.RoleCitizen,
	})

	_, err = svc.Login(context.Background(), &models.UserLoginRequest{
		Email:    "asha@example.com",
		Password: "secret123",
	})
	require.NoError(t, err)
	require.Contains(t, sessions.sessions, user.ID.String())

	admin := models.Actor{UserID: uuid.New(), Role: models.RoleAdmin}
	require.NoError(t, svc.SetActivation(context.Background(), admin, user.ID, false))

	// The session is gone, so the issued token is dead with it.
	assert.NotContains(t, sessions.sessions, user.ID.String())
	assert.False(t, repo.users[user.ID].IsActive)

	// Reactivation does not resurrect the old session.
	require.NoError(t, svc.SetActivation(context.Background(), admin, user.ID, true))
	assert.NotContains(t, sessions.sessions, user.ID.String())
}

func TestLogoutBlacklistsToken(t *testing.T) {
	svc, _, sessions := newUserFixture()

	resp, err := svc.Register(context.Background(), &models.UserRegisterRequest{
		Email:     "asha@example.com",
		Password:  "secret123",
		FirstName: "Asha",
	})
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), resp.Token))
	assert.True(t, sessions.blacklisted[resp.Token])
}
