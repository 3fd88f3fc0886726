package postgres

import (
	"context"
	"database/sql"
	"errors"

	"eventticketing/internal/domain"
)

type organizerRepository struct {
	DB *sql.DB
}

func NewOrganizerRepository(db *sql.DB) domain.OrganizerRepository {
	return &organizerRepository{DB: db}
}

func (r *organizerRepository) Create(ctx context.Context, o *domain.Organizer) error {
	query := `
		INSERT INTO organizers (full_name, email, password_hash, salt, avatar, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id
	`
	err := r.DB.QueryRowContext(ctx, query,
		o.FullName, o.Email, o.PasswordHash, o.Salt, o.Avatar, o.CreatedAt, o.UpdatedAt,
	).Scan(&o.ID)
	if isUniqueViolation(err) {
		return domain.ErrDuplicateEmail
	}
	return err
}

func (r *organizerRepository) GetByEmail(ctx context.Context, email string) (*domain.Organizer, error) {
	query := `
		SELECT id, full_name, email, password_hash, salt, avatar, created_at, updated_at
		FROM organizers
		WHERE email = $1
	`
	o := &domain.Organizer{}
	err := r.DB.QueryRowContext(ctx, query, email).Scan(
		&o.ID, &o.FullName, &o.Email, &o.PasswordHash, &o.Salt, &o.Avatar, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return o, nil
}

func (r *organizerRepository) GetByID(ctx context.Context, id string) (*domain.Organizer, error) {
	query := `
		SELECT id, full_name, email, password_hash, salt, avatar, created_at, updated_at
		FROM organizers
		WHERE id = $1
	`
	o := &domain.Organizer{}
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&o.ID, &o.FullName, &o.Email, &o.PasswordHash, &o.Salt, &o.Avatar, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return o, nil
}
