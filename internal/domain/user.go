package domain

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for identity operations.
var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already in use")
)

// Account roles carried in the auth token.
const (
	RoleUser      = "user"
	RoleOrganizer = "organizer"
)

// User represents an attendee account.
// swagger:model User
type User struct {
	ID           string    `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	Avatar       string    `json:"avatar"`
	PhoneNo      string    `json:"phone_no"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Organizer represents an event-organizer account.
// swagger:model Organizer
type Organizer struct {
	ID           string    `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Salt         string    `json:"-"`
	Avatar       string    `json:"avatar"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PasswordHasher handles salt generation, hashing, and verification.
// Implementations may use bcrypt, argon2, etc.
type PasswordHasher interface {
	GenerateSalt() (string, error)
	Hash(salt, password string) (hash string, err error)
	Compare(hash, salt, password string) error
}

// TokenIssuer issues tokens (e.g. JWT) for an authenticated principal.
type TokenIssuer interface {
	Issue(subjectID, email, role string, expiry time.Duration) (string, error)
}

// TokenVerifier verifies a token and returns the authenticated principal's
// ID and role.
type TokenVerifier interface {
	Verify(token string) (subjectID, role string, err error)
}

// UserRepository defines the interface for attendee account storage.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}

// OrganizerRepository defines the interface for organizer account storage.
type OrganizerRepository interface {
	Create(ctx context.Context, organizer *Organizer) error
	GetByEmail(ctx context.Context, email string) (*Organizer, error)
	GetByID(ctx context.Context, id string) (*Organizer, error)
}

// AuthService handles signup and login for both account types. Token
// issuance beyond HS256 signing (refresh, revocation) is out of scope.
type AuthService interface {
	SignUpUser(ctx context.Context, fullName, email, password, phoneNo string) (*User, string, error)
	LoginUser(ctx context.Context, email, password string) (*User, string, error)
	SignUpOrganizer(ctx context.Context, fullName, email, password string) (*Organizer, string, error)
	LoginOrganizer(ctx context.Context, email, password string) (*Organizer, string, error)
}
