package auth

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/pkg/auth"
	apperrors "github.com/jwalitptl/hospital-api/pkg/errors"
	"github.com/jwalitptl/hospital-api/pkg/pagination"
	"github.com/jwalitptl/hospital-api/pkg/security"
)

type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uuid.UUID]*model.User)}
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	user.ID = uuid.New()
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.NewNotFound("user", nil)
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == strings.ToLower(email) {
			copied := *u
			return &copied, nil
		}
	}
	return nil, apperrors.NewNotFound("user", nil)
}

func (f *fakeUserRepo) Update(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[user.ID]; !ok {
		return apperrors.NewNotFound("user", nil)
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) List(ctx context.Context, filters *model.UserFilters, page pagination.Params) ([]*model.User, int, error) {
	return nil, 0, nil
}

const testPassword = "correct-horse"

var testNow = time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

type testEnv struct {
	svc         *Service
	repo        *fakeUserRepo
	revocations *auth.RevocationList
	clock       time.Time
	user        *model.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	hash, err := hasher.Hash(testPassword)
	require.NoError(t, err)

	repo := newFakeUserRepo()
	user := &model.User{
		Email:        "nurse@hospital.test",
		PasswordHash: hash,
		Name:         "Joy",
		Role:         model.RoleNurse,
		Status:       model.UserStatusActive,
	}
	require.NoError(t, repo.Create(context.Background(), user))

	env := &testEnv{
		repo:        repo,
		revocations: auth.NewRevocationList(time.Minute),
		clock:       testNow,
		user:        user,
	}
	jwtSvc := auth.NewJWTService(auth.Config{Secret: "test-secret", Issuer: "hospital-api", Expiry: time.Hour})
	env.svc = NewService(repo, hasher, jwtSvc, env.revocations)
	env.svc.now = func() time.Time { return env.clock }
	return env
}

func (e *testEnv) login(password string) (*model.TokenResponse, error) {
	return e.svc.Login(context.Background(), &model.LoginRequest{Email: e.user.Email, Password: password})
}

func (e *testEnv) stored(t *testing.T) *model.User {
	t.Helper()
	u, err := e.repo.Get(context.Background(), e.user.ID)
	require.NoError(t, err)
	return u
}

func TestLoginSucceeds(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.login(testPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, env.user.ID, resp.User.ID)

	stored := env.stored(t)
	require.NotNil(t, stored.LastLoginAt)
	assert.Equal(t, testNow, *stored.LastLoginAt)
}

func TestLoginUnknownEmailLooksLikeWrongPassword(t *testing.T) {
	env := newTestEnv(t)

	_, unknown := env.svc.Login(context.Background(), &model.LoginRequest{Email: "nobody@hospital.test", Password: testPassword})
	_, wrong := env.login("wrong-password")

	require.Error(t, unknown)
	require.Error(t, wrong)
	assert.Equal(t, apperrors.ErrUnauthorized, apperrors.CodeOf(unknown))
	assert.Equal(t, wrong.Error(), unknown.Error())
}

func TestLoginLocksAfterFiveFailures(t *testing.T) {
	env := newTestEnv(t)

	for i := 1; i < maxLoginAttempts; i++ {
		_, err := env.login("wrong-password")
		require.Error(t, err)
		assert.Equal(t, i, env.stored(t).LoginAttempts)
		assert.Equal(t, model.UserStatusActive, env.stored(t).Status)
	}

	_, err := env.login("wrong-password")
	require.Error(t, err)
	assert.Equal(t, model.UserStatusLocked, env.stored(t).Status)

	// While locked even the right password is refused.
	env.clock = testNow.Add(lockoutDuration - time.Second)
	_, err = env.login(testPassword)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrUnauthorized, apperrors.CodeOf(err))
	assert.Contains(t, err.Error(), "locked")
}

func TestLockoutExpires(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < maxLoginAttempts; i++ {
		_, err := env.login("wrong-password")
		require.Error(t, err)
	}
	require.Equal(t, model.UserStatusLocked, env.stored(t).Status)

	env.clock = testNow.Add(lockoutDuration)
	resp, err := env.login(testPassword)
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)

	stored := env.stored(t)
	assert.Equal(t, model.UserStatusActive, stored.Status)
	assert.Zero(t, stored.LoginAttempts)
}

func TestLockoutExpiryRestartsCount(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < maxLoginAttempts; i++ {
		_, _ = env.login("wrong-password")
	}

	env.clock = testNow.Add(lockoutDuration)
	_, err := env.login("wrong-password")
	require.Error(t, err)

	stored := env.stored(t)
	assert.Equal(t, 1, stored.LoginAttempts)
	assert.Equal(t, model.UserStatusActive, stored.Status)
}

func TestDisabledAccountRefused(t *testing.T) {
	env := newTestEnv(t)
	u := env.stored(t)
	u.Status = model.UserStatusDisabled
	require.NoError(t, env.repo.Update(context.Background(), u))

	_, err := env.login(testPassword)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disabled")
}

func TestLogoutRevokesToken(t *testing.T) {
	env := newTestEnv(t)
	resp, err := env.login(testPassword)
	require.NoError(t, err)

	jwtSvc := auth.NewJWTService(auth.Config{Secret: "test-secret", Issuer: "hospital-api", Expiry: time.Hour})
	claims, err := jwtSvc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)

	require.NoError(t, env.svc.Logout(context.Background(), claims))
	revoked, err := env.revocations.IsRevoked(context.Background(), claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)

	assert.Error(t, env.svc.Logout(context.Background(), &auth.Claims{}))
}
