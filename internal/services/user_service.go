package services

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"fileshare/internal/models"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(username, password string) (models.User, error)
	Authenticate(username, password string) (models.User, error)
	GetByUsername(username string) (models.User, error)
	Count() (int, error)
}

// UserService provides business logic for account management. The users
// table is the single source of truth for accounts.
type UserService struct {
	db *sql.DB
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB) *UserService {
	return &UserService{db: db}
}

// GetByUsername retrieves a single user, including the password hash.
func (s *UserService) GetByUsername(username string) (models.User, error) {
	var user models.User
	row := s.db.QueryRow("SELECT id, username, password_hash, created_at FROM users WHERE username = ?", username)
	err := row.Scan(&user.ID, &user.Username, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return user, nil
}

// Register creates a new user, hashing their password. The uniqueness
// check and the insert run inside one transaction so a duplicate attempt
// leaves no row behind.
func (s *UserService) Register(username, password string) (models.User, error) {
	if username == "" || password == "" {
		return models.User{}, ErrMissingCredentials
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return models.User{}, err
	}
	defer tx.Rollback()

	var existing int
	if err := tx.QueryRow("SELECT COUNT(1) FROM users WHERE username = ?", username).Scan(&existing); err != nil {
		return models.User{}, err
	}
	if existing > 0 {
		return models.User{}, ErrUsernameTaken
	}

	user := models.User{
		Username:     username,
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now().UTC(),
	}

	res, err := tx.Exec("INSERT INTO users(username, password_hash, created_at) VALUES(?, ?, ?)",
		user.Username, user.PasswordHash, user.CreatedAt)
	if err != nil {
		return models.User{}, err
	}
	if user.ID, err = res.LastInsertId(); err != nil {
		return models.User{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Authenticate verifies a user's credentials.
func (s *UserService) Authenticate(username, password string) (models.User, error) {
	user, err := s.GetByUsername(username)
	if err != nil {
		if err == ErrUserNotFound {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return models.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// Count returns the number of registered users.
func (s *UserService) Count() (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(1) FROM users").Scan(&n)
	return n, err
}

// EnsureAdmin seeds the default admin account on first startup so a fresh
// install is reachable. The default credentials must be changed before
// exposing the service.
func (s *UserService) EnsureAdmin() error {
	_, err := s.GetByUsername("admin")
	if err == nil {
		return nil
	}
	if err != ErrUserNotFound {
		return err
	}

	if _, err := s.Register("admin", "admin"); err != nil {
		return err
	}
	log.Warn().Msg("Seeded default admin account with default credentials; change them immediately")
	return nil
}
