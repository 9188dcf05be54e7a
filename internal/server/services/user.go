// Package services contains server-side business logic. This file implements
// UserService: signup, login, password change, avatar upload/fetch, account
// deletion and the authorize probe.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/profilekeeper/internal/common"
	"github.com/dmitrijs2005/profilekeeper/internal/dbx"
	"github.com/dmitrijs2005/profilekeeper/internal/logging"
	"github.com/dmitrijs2005/profilekeeper/internal/server/avatars"
	"github.com/dmitrijs2005/profilekeeper/internal/server/metrics"
	"github.com/dmitrijs2005/profilekeeper/internal/server/models"
	"github.com/dmitrijs2005/profilekeeper/internal/server/passwords"
	"github.com/dmitrijs2005/profilekeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/profilekeeper/internal/server/validation"
	"github.com/google/uuid"
)

// User-facing messages not produced by the validator.
const (
	MsgIncorrectUsername = "Incorrect username!"
	MsgIncorrectPassword = "Incorrect password!"
	MsgPasswordsSame     = "New passwords must be different!"
	MsgOnlyImages        = "Only images are allowed!"
)

// TokenIssuer signs bearer tokens. A zero ttl means no expiry.
type TokenIssuer interface {
	Issue(userID string, ttl time.Duration) (string, error)
}

// AuthResult is what signup and login hand back to the client.
type AuthResult struct {
	User  models.PublicUser
	Token string
}

// UserService implements the account operations on top of the users
// repository, the password hasher, the token issuer and the avatar pipeline.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	hasher      passwords.Hasher
	tokens      TokenIssuer
	validator   *validation.Validator
	avatars     *avatars.Pipeline
	tokenTTL    time.Duration
	log         logging.Logger
	newID       func() string
}

// NewUserService wires a UserService. tokenTTL is the lifetime of tokens
// issued without the remember flag.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher passwords.Hasher, tokens TokenIssuer,
	pipeline *avatars.Pipeline, tokenTTL time.Duration, log logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		validator:   validation.New(),
		avatars:     pipeline,
		tokenTTL:    tokenTTL,
		log:         log,
		newID:       uuid.NewString,
	}
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func blank(values ...string) bool {
	for _, v := range values {
		if strings.TrimSpace(v) == "" {
			return true
		}
	}
	return false
}

func notFound() error {
	return common.NewNotFoundError(common.GenericMessage)
}

// Signup registers a new account and logs it in.
func (s *UserService) Signup(ctx context.Context, username, email, password string, remember bool) (res *AuthResult, err error) {
	defer func() {
		metrics.AuthAttempts.WithLabelValues("signup", metrics.Result(err)).Inc()
	}()

	if blank(username, email, password) {
		return nil, common.NewValidationError(validation.MsgFieldsRequired)
	}

	in := validation.SignupInput{
		UserName: normalize(username),
		Email:    normalize(email),
		Password: password,
	}
	if err := s.validator.Check(in); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.Create(ctx, &models.User{
		ID:           s.newID(),
		UserName:     in.UserName,
		Email:        in.Email,
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "user signed up", "user_id", user.ID)
	return s.authResult(user, remember)
}

// Login checks the credentials and issues a token.
func (s *UserService) Login(ctx context.Context, username, password string, remember bool) (res *AuthResult, err error) {
	defer func() {
		metrics.AuthAttempts.WithLabelValues("login", metrics.Result(err)).Inc()
	}()

	in := validation.LoginInput{UserName: normalize(username), Password: password}
	if err := s.validator.Check(in); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByUsername(ctx, in.UserName)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewNotFoundError(MsgIncorrectUsername)
		}
		return nil, err
	}

	if !s.hasher.Compare(user.PasswordHash, password) {
		return nil, common.NewAuthError(MsgIncorrectPassword)
	}

	return s.authResult(user, remember)
}

func (s *UserService) authResult(user *models.User, remember bool) (*AuthResult, error) {
	ttl := s.tokenTTL
	if remember {
		ttl = 0
	}

	token, err := s.tokens.Issue(user.ID, ttl)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}

	return &AuthResult{User: user.Public(), Token: token}, nil
}

// UpdatePassword replaces the password of userID after checking the old one.
func (s *UserService) UpdatePassword(ctx context.Context, userID, oldPassword, newPassword string) (*models.PublicUser, error) {
	in := validation.PasswordInput{Password: oldPassword, NewPassword: newPassword}
	if err := s.validator.Check(in); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, notFound()
		}
		return nil, err
	}

	if !s.hasher.Compare(user.PasswordHash, oldPassword) {
		return nil, common.NewAuthError(MsgIncorrectPassword)
	}
	if s.hasher.Compare(user.PasswordHash, newPassword) {
		return nil, common.NewValidationError(MsgPasswordsSame)
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return nil, err
	}

	user, err = repo.UpdatePassword(ctx, userID, hash)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, notFound()
		}
		return nil, err
	}

	pub := user.Public()
	return &pub, nil
}

// UpdateAvatar normalizes data and makes it the avatar of userID. Uploads
// that are not images are rejected before anything is written.
func (s *UserService) UpdateAvatar(ctx context.Context, userID string, data []byte, contentType string) (*models.PublicUser, error) {
	if !avatars.IsImage(contentType, data) {
		return nil, common.NewValidationError(MsgOnlyImages)
	}

	repo := s.repomanager.Users(s.db)
	if _, err := repo.GetByID(ctx, userID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, notFound()
		}
		return nil, err
	}

	user, err := s.avatars.Put(ctx, repo, userID, data)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, notFound()
		}
		return nil, err
	}

	pub := user.Public()
	return &pub, nil
}

// GetAvatar returns the PNG avatar of userID and its content type.
func (s *UserService) GetAvatar(ctx context.Context, userID string) ([]byte, string, error) {
	data, err := s.avatars.Fetch(ctx, s.repomanager.Users(s.db), userID)
	if err != nil {
		return nil, "", err
	}
	return data, avatars.ContentType, nil
}

// DeleteUser removes the account of userID. A non-empty password must
// match the stored one. Avatar files are removed after the row is gone.
func (s *UserService) DeleteUser(ctx context.Context, userID, password string) (*models.PublicUser, error) {
	var deleted *models.User

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		user, err := repo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if password != "" && !s.hasher.Compare(user.PasswordHash, password) {
			return common.NewAuthError(MsgIncorrectPassword)
		}

		deleted, err = repo.Delete(ctx, userID)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, notFound()
		}
		return nil, err
	}

	s.avatars.Evict(ctx, userID, deleted.Avatar)
	s.log.Info(ctx, "user deleted", "user_id", userID)

	return &models.PublicUser{UserName: deleted.UserName}, nil
}

// Authorize returns the account behind a verified token.
func (s *UserService) Authorize(ctx context.Context, userID string) (*models.PublicUser, error) {
	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, notFound()
		}
		return nil, err
	}

	pub := user.Public()
	return &pub, nil
}
