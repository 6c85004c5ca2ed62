package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/pkg/pagination"
	"github.com/jwalitptl/hospital-api/pkg/query"
)

const userSelect = `
		SELECT id, email, password_hash, name, role, status,
			   login_attempts, last_login_attempt, last_login_at,
			   created_at, updated_at
		FROM users`

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (
			id, email, password_hash, name, role, status,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	if user.Status == "" {
		user.Status = model.UserStatusActive
	}
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Role,
		user.Status,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", mapError(err, "user"))
	}
	return nil
}

func (r *userRepository) Get(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var user model.User
	if err := r.db.GetContext(ctx, &user, userSelect+" WHERE id = $1", id); err != nil {
		return nil, fmt.Errorf("failed to get user: %w", mapError(err, "user"))
	}
	return &user, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := r.db.GetContext(ctx, &user, userSelect+" WHERE lower(email) = lower($1)", email); err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", mapError(err, "user"))
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	query := `
		UPDATE users
		SET name = $1, role = $2, status = $3, login_attempts = $4,
			last_login_attempt = $5, last_login_at = $6, updated_at = $7
		WHERE id = $8
	`
	user.UpdatedAt = time.Now().UTC()

	result, err := r.db.ExecContext(ctx, query,
		user.Name,
		user.Role,
		user.Status,
		user.LoginAttempts,
		user.LastLoginAttempt,
		user.LastLoginAt,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", mapError(err, "user"))
	}
	return checkAffected(result, "user")
}

func (r *userRepository) List(ctx context.Context, filters *model.UserFilters, page pagination.Params) ([]*model.User, int, error) {
	if filters == nil {
		filters = &model.UserFilters{}
	}
	q := query.New().
		Eq("role", filters.Role).
		Contains("name || ' ' || email", filters.Query)

	countSQL, countArgs := q.Count("SELECT COUNT(*) FROM users")
	var total int
	if err := r.db.GetContext(ctx, &total, countSQL, countArgs...); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	listSQL, args := q.Select(userSelect, "name, id", page.Limit, page.Offset)
	users := []*model.User{}
	if err := r.db.SelectContext(ctx, &users, listSQL, args...); err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	return users, total, nil
}
