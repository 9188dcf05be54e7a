// Package users implements the PostgreSQL credential store.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/dbx"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation  = "23505"
	pgInvalidTextRepr  = "22P02"
	usernameConstraint = "users_username_key"
	emailConstraint    = "users_email_key"
	userColumns        = `id, username, email, password_hash, avatar_data, avatar_type, avatar_key, created_at, updated_at`
)

// Conflict errors returned when an insert violates a unique index.
var (
	ErrUsernameTaken = common.NewConflictError("Username is already in use!")
	ErrEmailTaken    = common.NewConflictError("Email is already in use!")
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) (*models.User, error) {
	query :=
		`INSERT INTO users (id, username, email, password_hash)
		 VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.UserName, user.Email, user.PasswordHash).Scan(&user.CreatedAt, &user.UpdatedAt)

	if err != nil {
		return nil, translateError(err)
	}

	return user, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.queryUser(ctx, query, id)
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(username) = lower($1)`
	return r.queryUser(ctx, query, username)
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return r.queryUser(ctx, query, email)
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) (*models.User, error) {
	query :=
		`UPDATE users SET password_hash = $2, updated_at = now()
		 WHERE id = $1
		 RETURNING ` + userColumns

	return r.queryUser(ctx, query, id, passwordHash)
}

// UpdateAvatar replaces the avatar reference. Data is stored only when the
// avatar is kept inline; an empty Avatar clears the columns.
func (r *PostgresRepository) UpdateAvatar(ctx context.Context, id string, avatar models.Avatar) (*models.User, error) {
	query :=
		`UPDATE users SET avatar_data = $2, avatar_type = $3, avatar_key = $4, updated_at = now()
		 WHERE id = $1
		 RETURNING ` + userColumns

	return r.queryUser(ctx, query, id, avatar.Data, nullString(avatar.ContentType), nullString(avatar.Key))
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) (*models.User, error) {
	query := `DELETE FROM users WHERE id = $1 RETURNING ` + userColumns
	return r.queryUser(ctx, query, id)
}

func (r *PostgresRepository) queryUser(ctx context.Context, query string, args ...any) (*models.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, translateError(err)
	}
	return user, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		user       models.User
		avatarType sql.NullString
		avatarKey  sql.NullString
	)

	err := row.Scan(&user.ID, &user.UserName, &user.Email, &user.PasswordHash,
		&user.Avatar.Data, &avatarType, &avatarKey, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		return nil, err
	}

	user.Avatar.ContentType = avatarType.String
	user.Avatar.Key = avatarKey.String

	return &user, nil
}

// translateError maps driver errors onto the common error kinds. Ids that
// are not valid UUIDs cannot match any row and read as not found.
func translateError(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgUniqueViolation:
			switch pgErr.ConstraintName {
			case usernameConstraint:
				return ErrUsernameTaken
			case emailConstraint:
				return ErrEmailTaken
			}
			return fmt.Errorf("db error: %w: %w", common.ErrConflict, err)
		case pgInvalidTextRepr:
			return common.ErrorNotFound
		}
	}

	return fmt.Errorf("db error: %w", err)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
