package user

import (
	"errors"
	"regexp"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
)

var (
	usernamePattern = regexp.MustCompile(`^[\w.@+-]+$`)
	phonePattern    = regexp.MustCompile(`^\+?[0-9][0-9 ()-]{4,19}$`)
)

// PhonePattern is shared with checkout, which accepts the same phone formats.
func PhonePattern() *regexp.Regexp {
	return phonePattern
}

// ========================================
// AUTH DTOs
// ========================================

type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
}

func (r *RegisterRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username,
			validation.Required.Error("username is required"),
			validation.Length(3, 150).Error("username must be 3-150 characters"),
			validation.Match(usernamePattern).Error("username may contain letters, digits and @.+-_ only"),
		),
		validation.Field(&r.Email,
			validation.Required.Error("email is required"),
			is.Email.Error("invalid email format"),
			validation.Length(5, 254),
		),
		validation.Field(&r.Password,
			validation.Required.Error("password is required"),
			validation.Length(8, 128).Error("password must be 8-128 characters"),
			validation.Match(regexp.MustCompile(`[A-Za-z]`)).Error("password must contain at least one letter"),
			validation.Match(regexp.MustCompile(`[0-9]`)).Error("password must contain at least one number"),
		),
		validation.Field(&r.PasswordConfirm,
			validation.Required.Error("password_confirm is required"),
			validation.By(func(interface{}) error {
				if r.PasswordConfirm != r.Password {
					return errors.New("passwords do not match")
				}
				return nil
			}),
		),
	)
}

// LoginRequest accepts a username or an email in Username.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required.Error("username is required")),
		validation.Field(&r.Password, validation.Required.Error("password is required")),
	)
}

type LoginResponse struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         UserDTO   `json:"user"`
}

// ========================================
// PROFILE & SETTINGS DTOs
// ========================================

// UpdateProfileRequest - nil fields are left unchanged
type UpdateProfileRequest struct {
	Nickname  *string `json:"nickname"`
	AvatarURL *string `json:"avatar_url"`
	Bio       *string `json:"bio"`
}

func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Nickname, validation.Length(1, 30).Error("nickname must be 1-30 characters")),
		validation.Field(&r.AvatarURL, is.URL.Error("avatar_url must be a valid URL")),
		validation.Field(&r.Bio, validation.Length(0, 1000).Error("bio must be at most 1000 characters")),
	)
}

func (r UpdateProfileRequest) Apply(u *User) {
	if r.Nickname != nil {
		u.Nickname = blankToNil(*r.Nickname)
	}
	if r.AvatarURL != nil {
		u.AvatarURL = blankToNil(*r.AvatarURL)
	}
	if r.Bio != nil {
		u.Bio = strings.TrimSpace(*r.Bio)
	}
}

type UpdateSettingsRequest struct {
	Newsletter        *bool   `json:"newsletter"`
	PreferredLanguage *string `json:"preferred_language"`
	DefaultAddress    *string `json:"default_address"`
	DefaultPhone      *string `json:"default_phone"`
}

func (r UpdateSettingsRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.PreferredLanguage,
			validation.In(string(LanguageEnglish), string(LanguageRussian)).Error("preferred_language must be en or ru"),
		),
		validation.Field(&r.DefaultAddress, validation.Length(0, 500).Error("default_address must be at most 500 characters")),
		validation.Field(&r.DefaultPhone,
			validation.When(r.DefaultPhone != nil && *r.DefaultPhone != "",
				validation.Match(phonePattern).Error("default_phone is not a valid phone number"),
			),
		),
	)
}

// Apply writes the request onto u. An empty address or phone clears it.
func (r UpdateSettingsRequest) Apply(u *User) {
	if r.Newsletter != nil {
		u.Newsletter = *r.Newsletter
	}
	if r.PreferredLanguage != nil {
		u.PreferredLanguage = Language(*r.PreferredLanguage)
	}
	if r.DefaultAddress != nil {
		u.DefaultAddress = blankToNil(*r.DefaultAddress)
	}
	if r.DefaultPhone != nil {
		u.DefaultPhone = blankToNil(*r.DefaultPhone)
	}
}

// ========================================
// ADMIN DTOs
// ========================================

type ListUsersRequest struct {
	Search string `form:"search"`
	Role   string `form:"role"`
	Page   int    `form:"page"`
	Limit  int    `form:"limit"`
}

func (r ListUsersRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Role, validation.In(string(RoleCustomer), string(RoleAdmin)).Error("role must be customer or admin")),
	)
}

type ListUsersResponse struct {
	Users []UserDTO `json:"users"`
	Total int       `json:"total"`
	Page  int       `json:"page"`
	Limit int       `json:"limit"`
}

type UpdateRoleRequest struct {
	Role Role `json:"role"`
}

func (r UpdateRoleRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Role,
			validation.Required.Error("role is required"),
			validation.In(RoleCustomer, RoleAdmin).Error("role must be customer or admin"),
		),
	)
}

func blankToNil(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
