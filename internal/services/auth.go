package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"eventticketing/internal/domain"
)

const (
	minPasswordLen = 8
	tokenExpiry    = 24 * time.Hour
)

var emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

type authService struct {
	userRepo      domain.UserRepository
	organizerRepo domain.OrganizerRepository
	hasher        domain.PasswordHasher
	issuer        domain.TokenIssuer
}

// NewAuthService creates an AuthService over both account repositories.
func NewAuthService(userRepo domain.UserRepository,
	organizerRepo domain.OrganizerRepository,
	hasher domain.PasswordHasher,
	issuer domain.TokenIssuer,
) domain.AuthService {
	return &authService{
		userRepo:      userRepo,
		organizerRepo: organizerRepo,
		hasher:        hasher,
		issuer:        issuer,
	}
}

func (s *authService) validateCredentials(email, password string) (string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if !emailRegexp.MatchString(email) {
		return "", fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}
	if len(password) < minPasswordLen {
		return "", fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalidInput, minPasswordLen)
	}
	return email, nil
}

func (s *authService) hashPassword(password string) (salt, hash string, err error) {
	salt, err = s.hasher.GenerateSalt()
	if err != nil {
		return "", "", fmt.Errorf("generate salt: %w", err)
	}
	hash, err = s.hasher.Hash(salt, password)
	if err != nil {
		return "", "", fmt.Errorf("hash password: %w", err)
	}
	return salt, hash, nil
}

func (s *authService) SignUpUser(ctx context.Context, fullName, email, password, phoneNo string) (*domain.User, string, error) {
	email, err := s.validateCredentials(email, password)
	if err != nil {
		return nil, "", err
	}
	salt, hash, err := s.hashPassword(password)
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	user := &domain.User{
		FullName:     strings.TrimSpace(fullName),
		Email:        email,
		PasswordHash: hash,
		Salt:         salt,
		PhoneNo:      strings.TrimSpace(phoneNo),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, "", domain.ErrDuplicateEmail
		}
		return nil, "", fmt.Errorf("create user: %w", err)
	}

	token, err := s.issuer.Issue(user.ID, user.Email, domain.RoleUser, tokenExpiry)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

func (s *authService) LoginUser(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, "", domain.ErrUserNotFound
		}
		return nil, "", fmt.Errorf("get user: %w", err)
	}
	if err := s.hasher.Compare(user.PasswordHash, user.Salt, password); err != nil {
		return nil, "", domain.ErrForbidden
	}
	token, err := s.issuer.Issue(user.ID, user.Email, domain.RoleUser, tokenExpiry)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return user, token, nil
}

func (s *authService) SignUpOrganizer(ctx context.Context, fullName, email, password string) (*domain.Organizer, string, error) {
	email, err := s.validateCredentials(email, password)
	if err != nil {
		return nil, "", err
	}
	salt, hash, err := s.hashPassword(password)
	if err != nil {
		return nil, "", err
	}

	now := time.Now()
	organizer := &domain.Organizer{
		FullName:     strings.TrimSpace(fullName),
		Email:        email,
		PasswordHash: hash,
		Salt:         salt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.organizerRepo.Create(ctx, organizer); err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, "", domain.ErrDuplicateEmail
		}
		return nil, "", fmt.Errorf("create organizer: %w", err)
	}

	token, err := s.issuer.Issue(organizer.ID, organizer.Email, domain.RoleOrganizer, tokenExpiry)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return organizer, token, nil
}

func (s *authService) LoginOrganizer(ctx context.Context, email, password string) (*domain.Organizer, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	organizer, err := s.organizerRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, "", domain.ErrUserNotFound
		}
		return nil, "", fmt.Errorf("get organizer: %w", err)
	}
	if err := s.hasher.Compare(organizer.PasswordHash, organizer.Salt, password); err != nil {
		return nil, "", domain.ErrForbidden
	}
	token, err := s.issuer.Issue(organizer.ID, organizer.Email, domain.RoleOrganizer, tokenExpiry)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}
	return organizer, token, nil
}
