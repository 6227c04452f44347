package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"team-chat-service/internal/auth"
	"team-chat-service/internal/models"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrDuplicateEmail    = errors.New("email already registered")
	ErrDuplicateUsername = errors.New("username already taken")
	// ErrInvalidCredentials covers both unknown email and wrong password so
	// callers cannot probe which accounts exist.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

const userColumns = `id, username, email, password_hash, display_name, avatar_url, status, created_at, updated_at`

// RegisterUserParams carries the fields required to create an account.
type RegisterUserParams struct {
	Username    string
	Email       string
	Password    string
	DisplayName *string
}

// UpdateUserParams is a partial profile update. The Has* flags distinguish
// "field absent from the request" from "field explicitly set to null".
type UpdateUserParams struct {
	DisplayName    *string
	HasDisplayName bool
	AvatarURL      *string
	HasAvatarURL   bool
	Status         *models.PresenceStatus
	HasStatus      bool
}

// UserRepository abstracts account persistence and credential checks.
type UserRepository interface {
	Register(ctx context.Context, params RegisterUserParams) (models.User, error)
	Authenticate(ctx context.Context, email, password string) (models.User, error)
	UpdateProfile(ctx context.Context, userID int, params UpdateUserParams) (models.User, error)
	GetByID(ctx context.Context, userID int) (*models.User, error)
	ListOnline(ctx context.Context) ([]models.User, error)
}

// UserRepo is a sqlx implementation of UserRepository.
type UserRepo struct {
	db     *sqlx.DB
	hasher auth.PasswordHasher
}

// NewUserRepo constructs a UserRepo.
func NewUserRepo(db *sqlx.DB, hasher auth.PasswordHasher) *UserRepo {
	return &UserRepo{db: db, hasher: hasher}
}

// Register creates an account after a single duplicate pre-check. Email and
// username are compared case-sensitively.
func (r *UserRepo) Register(ctx context.Context, params RegisterUserParams) (models.User, error) {
	var taken struct {
		Email    bool `db:"email_taken"`
		Username bool `db:"username_taken"`
	}
	err := r.db.GetContext(ctx, &taken, `SELECT
        EXISTS(SELECT 1 FROM users WHERE email=$1) AS email_taken,
        EXISTS(SELECT 1 FROM users WHERE username=$2) AS username_taken`,
		params.Email, params.Username)
	if err != nil {
		return models.User{}, err
	}
	if taken.Email {
		return models.User{}, fmt.Errorf("%w: %s", ErrDuplicateEmail, params.Email)
	}
	if taken.Username {
		return models.User{}, fmt.Errorf("%w: %s", ErrDuplicateUsername, params.Username)
	}

	hash, err := r.hasher.Hash(params.Password)
	if err != nil {
		return models.User{}, err
	}

	var user models.User
	err = r.db.GetContext(ctx, &user, `INSERT INTO users (username, email, password_hash, display_name)
        VALUES ($1, $2, $3, $4) RETURNING `+userColumns,
		params.Username, params.Email, hash, params.DisplayName)
	return user, err
}

// Authenticate verifies the credentials and unconditionally transitions the
// user to online.
func (r *UserRepo) Authenticate(ctx context.Context, email, password string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE email=$1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return models.User{}, err
	}

	if !r.hasher.Verify(password, user.PasswordHash) {
		return models.User{}, ErrInvalidCredentials
	}

	err = r.db.GetContext(ctx, &user, `UPDATE users SET status='online', updated_at=NOW()
        WHERE id=$1 RETURNING `+userColumns, user.ID)
	return user, err
}

// UpdateProfile applies a partial update. Omitted fields are untouched; an
// explicit null clears display_name or avatar_url. updated_at always
// refreshes.
func (r *UserRepo) UpdateProfile(ctx context.Context, userID int, params UpdateUserParams) (models.User, error) {
	set := []string{"updated_at=NOW()"}
	args := []any{userID}

	if params.HasDisplayName {
		args = append(args, params.DisplayName)
		set = append(set, fmt.Sprintf("display_name=$%d", len(args)))
	}
	if params.HasAvatarURL {
		args = append(args, params.AvatarURL)
		set = append(set, fmt.Sprintf("avatar_url=$%d", len(args)))
	}
	if params.HasStatus {
		args = append(args, params.Status)
		set = append(set, fmt.Sprintf("status=$%d", len(args)))
	}

	var user models.User
	query := `UPDATE users SET ` + strings.Join(set, ", ") + ` WHERE id=$1 RETURNING ` + userColumns
	err := r.db.GetContext(ctx, &user, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, fmt.Errorf("%w: id %d", ErrUserNotFound, userID)
	}
	return user, err
}

// GetByID returns nil for non-positive or unknown ids rather than an error.
func (r *UserRepo) GetByID(ctx context.Context, userID int) (*models.User, error) {
	if userID <= 0 {
		return nil, nil
	}
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ListOnline returns users whose status is online.
func (r *UserRepo) ListOnline(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users WHERE status='online' ORDER BY username ASC`)
	return users, err
}
