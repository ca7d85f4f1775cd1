package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"grocery-backend/internal/domains/user"
	"grocery-backend/internal/shared/utils"
	"grocery-backend/pkg/jwt"
	"grocery-backend/pkg/logger"
)

// DefaultHashCost balances login latency against brute-force cost.
const DefaultHashCost = 12

// userService implements user.Service
type userService struct {
	repo     user.Repository
	tokens   *jwt.Manager
	hashCost int
}

// NewUserService injects the repository and the token manager.
// hashCost <= 0 uses DefaultHashCost.
func NewUserService(repo user.Repository, tokens *jwt.Manager, hashCost int) user.Service {
	if hashCost <= 0 {
		hashCost = DefaultHashCost
	}
	return &userService{
		repo:     repo,
		tokens:   tokens,
		hashCost: hashCost,
	}
}

// ========================================
// AUTHENTICATION
// ========================================

func (s *userService) Register(ctx context.Context, req user.RegisterRequest) (*user.UserDTO, error) {
	// 1. VALIDATE INPUT
	req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// 2. HASH PASSWORD
	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	// 3. CREATE USER ENTITY
	newUser := &user.User{
		Username:          req.Username,
		Email:             req.Email,
		PasswordHash:      string(passwordHash),
		Role:              user.RoleCustomer,
		Rating:            user.DefaultRating,
		PreferredLanguage: user.LanguageEnglish,
	}

	// 4. PERSIST (unique constraints report duplicates)
	if err := s.repo.Create(ctx, newUser); err != nil {
		return nil, err
	}

	logger.Info("user registered", map[string]interface{}{
		"user_id":  newUser.ID.String(),
		"username": newUser.Username,
	})

	dto := newUser.ToDTO()
	return &dto, nil
}

func (s *userService) Login(ctx context.Context, req user.LoginRequest) (*user.LoginResponse, error) {
	// 1. VALIDATE INPUT
	if err := req.Validate(); err != nil {
		return nil, err
	}

	// 2. FIND USER (unknown login and wrong password look the same)
	u, err := s.repo.FindByLogin(ctx, req.Username)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, user.ErrInvalidCredentials
		}
		return nil, err
	}

	// 3. VERIFY PASSWORD
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)); err != nil {
		return nil, user.ErrInvalidCredentials
	}

	// 4. ISSUE TOKENS
	return s.issueTokens(u)
}

func (s *userService) RefreshToken(ctx context.Context, refreshToken string) (*user.LoginResponse, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, user.ErrInvalidToken
	}

	userID := utils.ParseStringToUUID(claims.UserID)
	if userID == uuid.Nil {
		return nil, user.ErrInvalidToken
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, user.ErrInvalidToken
		}
		return nil, err
	}

	return s.issueTokens(u)
}

func (s *userService) issueTokens(u *user.User) (*user.LoginResponse, error) {
	accessToken, err := s.tokens.GenerateAccessToken(u.ID.String(), u.Username, u.Role.String())
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.tokens.GenerateRefreshToken(u.ID.String())
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	return &user.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    s.tokens.AccessExpiry(),
		User:         u.ToDTO(),
	}, nil
}

// ========================================
// PROFILE & SETTINGS
// ========================================

func (s *userService) GetProfile(ctx context.Context, userID uuid.UUID) (*user.UserDTO, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	dto := u.ToDTO()
	return &dto, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, req user.UpdateProfileRequest) (*user.UserDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	req.Apply(u)
	if err := s.repo.UpdateProfile(ctx, u); err != nil {
		return nil, err
	}

	dto := u.ToDTO()
	return &dto, nil
}

func (s *userService) GetSettings(ctx context.Context, userID uuid.UUID) (*user.Settings, error) {
	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	settings := u.Settings()
	return &settings, nil
}

func (s *userService) UpdateSettings(ctx context.Context, userID uuid.UUID, req user.UpdateSettingsRequest) (*user.Settings, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	req.Apply(u)
	if err := s.repo.UpdateSettings(ctx, u); err != nil {
		return nil, err
	}

	settings := u.Settings()
	return &settings, nil
}

// ========================================
// ADMIN
// ========================================

func (s *userService) ListUsers(ctx context.Context, req user.ListUsersRequest) (*user.ListUsersResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	page := utils.Pagination{Page: req.Page, Limit: req.Limit}
	if page.Page < 1 {
		page.Page = 1
	}
	if page.Limit < 1 || page.Limit > 100 {
		page.Limit = 20
	}
	req.Page, req.Limit = page.Page, page.Limit

	users, total, err := s.repo.List(ctx, req)
	if err != nil {
		return nil, err
	}

	dtos := make([]user.UserDTO, 0, len(users))
	for i := range users {
		dtos = append(dtos, users[i].ToDTO())
	}

	return &user.ListUsersResponse{
		Users: dtos,
		Total: total,
		Page:  page.Page,
		Limit: page.Limit,
	}, nil
}

// UpdateUserRole refuses to let an admin change their own role.
func (s *userService) UpdateUserRole(ctx context.Context, actorID, userID uuid.UUID, req user.UpdateRoleRequest) (*user.UserDTO, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if !req.Role.IsValid() {
		return nil, user.ErrInvalidRole
	}
	if actorID == userID {
		return nil, user.ErrCannotDemoteSelf
	}

	if err := s.repo.UpdateRole(ctx, userID, req.Role); err != nil {
		return nil, err
	}

	u, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	logger.Info("user role changed", map[string]interface{}{
		"actor_id": actorID.String(),
		"user_id":  userID.String(),
		"role":     req.Role.String(),
	})

	dto := u.ToDTO()
	return &dto, nil
}
