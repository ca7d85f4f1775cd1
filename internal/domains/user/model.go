package user

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User maps 1:1 to the users table. Profile and settings live on the same row.
type User struct {
	// Identity
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	Email    string    `json:"email"`

	// Authentication
	PasswordHash string `json:"-"` // Never expose in JSON

	// Authorization
	Role Role `json:"role"`

	// Profile
	Nickname  *string         `json:"nickname,omitempty"`
	AvatarURL *string         `json:"avatar_url,omitempty"`
	Bio       string          `json:"bio"`
	Rating    decimal.Decimal `json:"rating"`

	// Settings (prefill checkout)
	Newsletter        bool     `json:"newsletter"`
	PreferredLanguage Language `json:"preferred_language"`
	DefaultAddress    *string  `json:"default_address,omitempty"`
	DefaultPhone      *string  `json:"default_phone,omitempty"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleAdmin:
		return true
	}
	return false
}

func (r Role) String() string {
	return string(r)
}

type Language string

const (
	LanguageEnglish Language = "en"
	LanguageRussian Language = "ru"
)

func (l Language) IsValid() bool {
	return l == LanguageEnglish || l == LanguageRussian
}

// DefaultRating is what every new profile starts with.
var DefaultRating = decimal.NewFromInt(5)

// ========================================
// VIEWS
// ========================================

type Profile struct {
	Nickname  *string         `json:"nickname,omitempty"`
	AvatarURL *string         `json:"avatar_url,omitempty"`
	Bio       string          `json:"bio"`
	Rating    decimal.Decimal `json:"rating"`
}

type Settings struct {
	Newsletter        bool     `json:"newsletter"`
	PreferredLanguage Language `json:"preferred_language"`
	DefaultAddress    *string  `json:"default_address,omitempty"`
	DefaultPhone      *string  `json:"default_phone,omitempty"`
}

// UserDTO is the public shape of a user.
type UserDTO struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	Profile   Profile   `json:"profile"`
	CreatedAt time.Time `json:"created_at"`
}

func (u *User) ToDTO() UserDTO {
	return UserDTO{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		Role:      u.Role,
		Profile:   u.Profile(),
		CreatedAt: u.CreatedAt,
	}
}

func (u *User) Profile() Profile {
	return Profile{
		Nickname:  u.Nickname,
		AvatarURL: u.AvatarURL,
		Bio:       u.Bio,
		Rating:    u.Rating,
	}
}

func (u *User) Settings() Settings {
	return Settings{
		Newsletter:        u.Newsletter,
		PreferredLanguage: u.PreferredLanguage,
		DefaultAddress:    u.DefaultAddress,
		DefaultPhone:      u.DefaultPhone,
	}
}
