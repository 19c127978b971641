package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/dbx"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
	"github.com/dmitrijs2005/taskkeeper/internal/server/config"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 7

// UserUpdate carries the profile fields a client may change. Nil means the
// field was not given. The set of fields here is the complete update
// whitelist; anything else in a request payload rejects the whole update.
type UserUpdate struct {
	Name     *string
	Email    *string
	Age      *int
	Password *string
}

// UserService implements account management and the token lifecycle: it is
// the credential store and token service of the system.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	jwtSecret   []byte
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		jwtSecret:   []byte(cfg.SecretKey),
	}
}

// normalizeEmail lowercases and trims, then checks the format. The stored
// value is always the normalized form, so the uniqueness constraint is
// case-insensitive in practice.
func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", fmt.Errorf("%w: invalid email", common.ErrValidation)
	}
	return email, nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrValidation, minPasswordLength)
	}
	if strings.Contains(strings.ToLower(password), "password") {
		return fmt.Errorf("%w: password cannot contain the word \"password\"", common.ErrValidation)
	}
	return nil
}

func hashPassword(password string) ([]byte, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}
	return hash, nil
}

// issueToken signs a token for userID and appends it to the user's active
// records. Both must land together, so the caller passes the handle it wants
// the insert to run on.
func (s *UserService) issueToken(ctx context.Context, db dbx.DBTX, userID string) (string, error) {
	token, err := auth.GenerateToken(userID, s.jwtSecret)
	if err != nil {
		return "", err
	}
	if err := s.repomanager.Tokens(db).Add(ctx, userID, token); err != nil {
		return "", err
	}
	return token, nil
}

// Register validates the signup fields, hashes the password and creates the
// user together with its first session token.
func (s *UserService) Register(ctx context.Context, name, email, password string, age int) (*models.User, string, error) {

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, "", fmt.Errorf("%w: name is required", common.ErrValidation)
	}

	email, err := normalizeEmail(email)
	if err != nil {
		return nil, "", err
	}

	if age < 0 {
		return nil, "", fmt.Errorf("%w: age must be a non-negative number", common.ErrValidation)
	}

	if err := validatePassword(password); err != nil {
		return nil, "", err
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, "", common.ErrInternal
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		Age:          age,
		PasswordHash: hash,
	}

	var token string

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		created, err := s.repomanager.Users(tx).Create(ctx, user)
		if err != nil {
			return err
		}
		user = created

		token, err = s.issueToken(ctx, tx, user.ID)
		return err
	})

	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("error creating user: %w", err)
	}

	return user, token, nil
}

// Login resolves the user by credentials and issues a fresh session token.
// A missing account and a wrong password return the same generic error.
func (s *UserService) Login(ctx context.Context, email, password string) (*models.User, string, error) {

	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, "", common.ErrUnauthorized
		}
		return nil, "", common.ErrInternal
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return nil, "", common.ErrUnauthorized
	}

	token, err := s.issueToken(ctx, s.db, user.ID)
	if err != nil {
		return nil, "", common.ErrInternal
	}

	return user, token, nil
}

// Authenticate resolves the acting user from a bearer token string: the
// signature must verify, the embedded user must exist, and the exact token
// must still be among the user's active records. Every failure collapses to
// common.ErrUnauthorized.
func (s *UserService) Authenticate(ctx context.Context, token string) (*models.User, error) {

	userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
	if err != nil {
		return nil, common.ErrUnauthorized
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUnauthorized
		}
		return nil, common.ErrInternal
	}

	ok, err := s.repomanager.Tokens(s.db).Exists(ctx, userID, token)
	if err != nil {
		return nil, common.ErrInternal
	}
	if !ok {
		return nil, common.ErrUnauthorized
	}

	return user, nil
}

// Logout revokes exactly the presented token. Idempotent.
func (s *UserService) Logout(ctx context.Context, userID, token string) error {
	if err := s.repomanager.Tokens(s.db).Delete(ctx, userID, token); err != nil {
		return common.ErrInternal
	}
	return nil
}

// LogoutAll revokes every active token of the user.
func (s *UserService) LogoutAll(ctx context.Context, userID string) error {
	if err := s.repomanager.Tokens(s.db).DeleteAll(ctx, userID); err != nil {
		return common.ErrInternal
	}
	return nil
}

// Update applies a whitelisted partial update to the user's profile. Changed
// fields are re-validated and a changed password is re-hashed; nothing is
// persisted unless every given field passes.
func (s *UserService) Update(ctx context.Context, userID string, upd UserUpdate) (*models.User, error) {

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}

	if upd.Name != nil {
		name := strings.TrimSpace(*upd.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name is required", common.ErrValidation)
		}
		user.Name = name
	}

	if upd.Email != nil {
		email, err := normalizeEmail(*upd.Email)
		if err != nil {
			return nil, err
		}
		user.Email = email
	}

	if upd.Age != nil {
		if *upd.Age < 0 {
			return nil, fmt.Errorf("%w: age must be a non-negative number", common.ErrValidation)
		}
		user.Age = *upd.Age
	}

	if upd.Password != nil {
		if err := validatePassword(*upd.Password); err != nil {
			return nil, err
		}
		hash, err := hashPassword(*upd.Password)
		if err != nil {
			return nil, common.ErrInternal
		}
		user.PasswordHash = hash
	}

	updated, err := repo.Update(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrValidation) || errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, common.ErrInternal
	}

	return updated, nil
}

// Delete removes the account. Task and token rows go with the user row in
// the same statement via foreign-key cascade, so no orphans can remain.
// The removed user is returned so the caller can notify them.
func (s *UserService) Delete(ctx context.Context, userID string) (*models.User, error) {

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}

	if err := repo.Delete(ctx, userID); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, common.ErrInternal
	}

	return user, nil
}
