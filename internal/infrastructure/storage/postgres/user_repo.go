package postgres

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"gaiafact/internal/core/apperror"
	"gaiafact/internal/core/id"
	"gaiafact/internal/domain/auth"
)

const userTable = "users"

var userCols = []string{
	"id", "email", "password_hash", "name", "role",
	"verified", "is_active", "last_login_at", "created_at", "updated_at",
}

// Compile-time check.
var _ auth.UserRepository = (*UserRepo)(nil)

// UserRepo implements auth.UserRepository.
type UserRepo struct {
	txm *TxManager
}

// NewUserRepo creates a new user repository.
func NewUserRepo(txm *TxManager) *UserRepo {
	return &UserRepo{txm: txm}
}

func (r *UserRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *UserRepo) baseSelect() squirrel.SelectBuilder {
	return r.builder().Select(userCols...).From(userTable)
}

// Create inserts a new user.
func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	q := r.builder().
		Insert(userTable).
		Columns(userCols...).
		Values(user.ID, user.Email, user.PasswordHash, user.Name, user.Role,
			user.Verified, user.IsActive, user.LastLoginAt, user.CreatedAt, user.UpdatedAt)

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		return apperror.NewDatabase(fmt.Errorf("insert user: %w", err))
	}
	return nil
}

// GetByID retrieves user by ID.
func (r *UserRepo) GetByID(ctx context.Context, userID id.ID) (*auth.User, error) {
	q := r.baseSelect().Where(squirrel.Eq{"id": userID}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var user auth.User
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &user, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("user", userID.String())
		}
		return nil, apperror.NewDatabase(fmt.Errorf("get user: %w", err))
	}
	return &user, nil
}

// GetByEmail retrieves user by email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	q := r.baseSelect().Where(squirrel.Eq{"email": email}).Limit(1)

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var user auth.User
	if err := pgxscan.Get(ctx, r.txm.GetQuerier(ctx), &user, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("user", email)
		}
		return nil, apperror.NewDatabase(fmt.Errorf("get user by email: %w", err))
	}
	return &user, nil
}

// Update updates user data.
func (r *UserRepo) Update(ctx context.Context, user *auth.User) error {
	q := r.builder().
		Update(userTable).
		Set("name", user.Name).
		Set("role", user.Role).
		Set("verified", user.Verified).
		Set("is_active", user.IsActive).
		Set("last_login_at", user.LastLoginAt).
		Set("updated_at", user.UpdatedAt).
		Where(squirrel.Eq{"id": user.ID})

	sql, args, err := q.ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	tag, err := r.txm.GetQuerier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return apperror.NewDatabase(fmt.Errorf("update user: %w", err))
	}
	if tag.RowsAffected() == 0 {
		return apperror.NewNotFound("user", user.ID.String())
	}
	return nil
}

// Exists checks if email is already registered.
func (r *UserRepo) Exists(ctx context.Context, email string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	if err := r.txm.GetQuerier(ctx).QueryRow(ctx, q, email).Scan(&exists); err != nil {
		return false, apperror.NewDatabase(fmt.Errorf("check user exists: %w", err))
	}
	return exists, nil
}

// ListByRoles retrieves verified active users holding one of roles.
func (r *UserRepo) ListByRoles(ctx context.Context, roles ...string) ([]auth.User, error) {
	q := r.baseSelect().
		Where(squirrel.Eq{"role": roles}).
		Where(squirrel.Eq{"verified": true}).
		Where(squirrel.Eq{"is_active": true}).
		OrderBy("email ASC")

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var users []auth.User
	if err := pgxscan.Select(ctx, r.txm.GetQuerier(ctx), &users, sql, args...); err != nil {
		return nil, apperror.NewDatabase(fmt.Errorf("list users by role: %w", err))
	}
	return users, nil
}
