package service

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"grocery-backend/internal/domains/user"
	"grocery-backend/pkg/jwt"
)

// fakeRepo is an in-memory user.Repository
type fakeRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*user.User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{users: make(map[uuid.UUID]*user.User)}
}

func (r *fakeRepo) Create(_ context.Context, u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Username == u.Username {
			return user.ErrUsernameTaken
		}
		if existing.Email == u.Email {
			return user.ErrEmailAlreadyExists
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeRepo) FindByID(_ context.Context, id uuid.UUID) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, user.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeRepo) FindByLogin(_ context.Context, login string) (*user.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == login || strings.EqualFold(u.Email, login) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, user.ErrUserNotFound
}

func (r *fakeRepo) save(u *user.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; !ok {
		return user.ErrUserNotFound
	}
	cp := *u
	r.users[u.ID] = &cp
	return nil
}

func (r *fakeRepo) UpdateProfile(_ context.Context, u *user.User) error  { return r.save(u) }
func (r *fakeRepo) UpdateSettings(_ context.Context, u *user.User) error { return r.save(u) }

func (r *fakeRepo) List(_ context.Context, req user.ListUsersRequest) ([]user.User, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]user.User, 0)
	for _, u := range r.users {
		if req.Role != "" && string(u.Role) != req.Role {
			continue
		}
		out = append(out, *u)
	}
	return out, len(out), nil
}

func (r *fakeRepo) UpdateRole(_ context.Context, userID uuid.UUID, role user.Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[userID]
	if !ok {
		return user.ErrUserNotFound
	}
	u.Role = role
	return nil
}

func newTestService() (user.Service, *fakeRepo, *jwt.Manager) {
	repo := newFakeRepo()
	tokens := jwt.NewManager("test-secret", 15*time.Minute, 24*time.Hour)
	return NewUserService(repo, tokens, bcrypt.MinCost), repo, tokens
}

func registerAlice(t *testing.T, svc user.Service) *user.UserDTO {
	t.Helper()
	dto, err := svc.Register(context.Background(), user.RegisterRequest{
		Username:        "alice",
		Email:           " Alice@Example.com ",
		Password:        "apples123",
		PasswordConfirm: "apples123",
	})
	require.NoError(t, err)
	return dto
}

// ========================================
// REGISTER / LOGIN
// ========================================

func TestRegister_Defaults(t *testing.T) {
	svc, repo, _ := newTestService()

	dto := registerAlice(t, svc)

	assert.Equal(t, "alice@example.com", dto.Email)
	assert.Equal(t, user.RoleCustomer, dto.Role)
	assert.True(t, dto.Profile.Rating.Equal(user.DefaultRating))

	stored, err := repo.FindByID(context.Background(), dto.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "apples123", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("apples123")))
	assert.Equal(t, user.LanguageEnglish, stored.PreferredLanguage)
}

func TestRegister_Validation(t *testing.T) {
	svc, _, _ := newTestService()

	tests := []struct {
		name  string
		req   user.RegisterRequest
		field string
	}{
		{"short username", user.RegisterRequest{Username: "al", Email: "a@b.co", Password: "apples123", PasswordConfirm: "apples123"}, "username"},
		{"bad email", user.RegisterRequest{Username: "alice", Email: "nope", Password: "apples123", PasswordConfirm: "apples123"}, "email"},
		{"no digit", user.RegisterRequest{Username: "alice", Email: "a@b.co", Password: "applesauce", PasswordConfirm: "applesauce"}, "password"},
		{"mismatch", user.RegisterRequest{Username: "alice", Email: "a@b.co", Password: "apples123", PasswordConfirm: "apples124"}, "password_confirm"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.req)
			var verrs validation.Errors
			require.ErrorAs(t, err, &verrs)
			assert.Contains(t, verrs, tt.field)
		})
	}
}

func TestRegister_Duplicates(t *testing.T) {
	svc, _, _ := newTestService()
	registerAlice(t, svc)

	_, err := svc.Register(context.Background(), user.RegisterRequest{
		Username: "alice", Email: "other@example.com", Password: "apples123", PasswordConfirm: "apples123",
	})
	assert.ErrorIs(t, err, user.ErrUsernameTaken)

	_, err = svc.Register(context.Background(), user.RegisterRequest{
		Username: "alice2", Email: "alice@example.com", Password: "apples123", PasswordConfirm: "apples123",
	})
	assert.ErrorIs(t, err, user.ErrEmailAlreadyExists)
}

func TestLogin_ByUsernameOrEmail(t *testing.T) {
	svc, _, tokens := newTestService()
	dto := registerAlice(t, svc)

	for _, login := range []string{"alice", "ALICE@example.com"} {
		res, err := svc.Login(context.Background(), user.LoginRequest{Username: login, Password: "apples123"})
		require.NoError(t, err, login)

		claims, err := tokens.ValidateAccessToken(res.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, dto.ID.String(), claims.UserID)
		assert.Equal(t, "customer", claims.Role)
		assert.NotEmpty(t, res.RefreshToken)
		assert.True(t, res.ExpiresAt.After(time.Now()))
	}
}

func TestLogin_WrongPasswordAndUnknownUserLookTheSame(t *testing.T) {
	svc, _, _ := newTestService()
	registerAlice(t, svc)

	_, err := svc.Login(context.Background(), user.LoginRequest{Username: "alice", Password: "wrong123"})
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), user.LoginRequest{Username: "bob", Password: "apples123"})
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)
}

func TestRefreshToken(t *testing.T) {
	svc, _, _ := newTestService()
	registerAlice(t, svc)

	res, err := svc.Login(context.Background(), user.LoginRequest{Username: "alice", Password: "apples123"})
	require.NoError(t, err)

	refreshed, err := svc.RefreshToken(context.Background(), res.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)

	// an access token is not a refresh token
	_, err = svc.RefreshToken(context.Background(), res.AccessToken)
	assert.ErrorIs(t, err, user.ErrInvalidToken)

	_, err = svc.RefreshToken(context.Background(), "garbage")
	assert.ErrorIs(t, err, user.ErrInvalidToken)
}

// ========================================
// PROFILE / SETTINGS
// ========================================

func TestUpdateProfile(t *testing.T) {
	svc, _, _ := newTestService()
	dto := registerAlice(t, svc)

	nick := "Ally"
	bio := "  likes fruit  "
	updated, err := svc.UpdateProfile(context.Background(), dto.ID, user.UpdateProfileRequest{Nickname: &nick, Bio: &bio})
	require.NoError(t, err)
	require.NotNil(t, updated.Profile.Nickname)
	assert.Equal(t, "Ally", *updated.Profile.Nickname)
	assert.Equal(t, "likes fruit", updated.Profile.Bio)

	badURL := "not a url"
	_, err = svc.UpdateProfile(context.Background(), dto.ID, user.UpdateProfileRequest{AvatarURL: &badURL})
	var verrs validation.Errors
	assert.ErrorAs(t, err, &verrs)
}

func TestUpdateSettings_BlankClears(t *testing.T) {
	svc, _, _ := newTestService()
	dto := registerAlice(t, svc)

	addr := "1 Market St"
	phone := "+1 555 0100"
	lang := "ru"
	settings, err := svc.UpdateSettings(context.Background(), dto.ID, user.UpdateSettingsRequest{
		DefaultAddress: &addr, DefaultPhone: &phone, PreferredLanguage: &lang,
	})
	require.NoError(t, err)
	require.NotNil(t, settings.DefaultAddress)
	assert.Equal(t, user.LanguageRussian, settings.PreferredLanguage)

	blank := ""
	settings, err = svc.UpdateSettings(context.Background(), dto.ID, user.UpdateSettingsRequest{DefaultAddress: &blank})
	require.NoError(t, err)
	assert.Nil(t, settings.DefaultAddress)
	assert.NotNil(t, settings.DefaultPhone)
}

func TestUpdateSettings_InvalidPhone(t *testing.T) {
	svc, _, _ := newTestService()
	dto := registerAlice(t, svc)

	phone := "call me"
	_, err := svc.UpdateSettings(context.Background(), dto.ID, user.UpdateSettingsRequest{DefaultPhone: &phone})
	var verrs validation.Errors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "default_phone")
}

func TestGetProfile_NotFound(t *testing.T) {
	svc, _, _ := newTestService()

	_, err := svc.GetProfile(context.Background(), uuid.New())
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

// ========================================
// ADMIN
// ========================================

func TestUpdateUserRole(t *testing.T) {
	svc, _, _ := newTestService()
	alice := registerAlice(t, svc)
	adminID := uuid.New()

	updated, err := svc.UpdateUserRole(context.Background(), adminID, alice.ID, user.UpdateRoleRequest{Role: user.RoleAdmin})
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, updated.Role)

	_, err = svc.UpdateUserRole(context.Background(), alice.ID, alice.ID, user.UpdateRoleRequest{Role: user.RoleCustomer})
	assert.ErrorIs(t, err, user.ErrCannotDemoteSelf)

	_, err = svc.UpdateUserRole(context.Background(), adminID, uuid.New(), user.UpdateRoleRequest{Role: user.RoleCustomer})
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestListUsers_ClampsPagination(t *testing.T) {
	svc, _, _ := newTestService()
	registerAlice(t, svc)

	res, err := svc.ListUsers(context.Background(), user.ListUsersRequest{Page: 0, Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 20, res.Limit)
	assert.Equal(t, 1, res.Total)

	_, err = svc.ListUsers(context.Background(), user.ListUsersRequest{Role: "owner"})
	var verrs validation.Errors
	assert.ErrorAs(t, err, &verrs)
}
