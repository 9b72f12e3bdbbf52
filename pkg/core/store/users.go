package store

import (
	"database/sql"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"bendcalc/pkg/models"
)

// ResetSentinel is the stored password value that forces the user to
// choose a new password on the next login.
const ResetSentinel = "nova_senha"

// ErrPasswordReset signals that the account exists but its password
// was reset by an admin; the caller must collect a new one.
var ErrPasswordReset = errors.New("password reset required")

// ErrBadCredentials covers both unknown user and wrong password.
var ErrBadCredentials = errors.New("invalid user or password")

// UserStore manages authentication records.
type UserStore struct {
	db *DB
}

func NewUserStore(db *DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) UserByName(name string) (*models.User, error) {
	var u models.User
	err := s.db.conn.QueryRow(
		`SELECT id, name, password_hash, role FROM user WHERE name = ?`, name,
	).Scan(&u.ID, &u.Name, &u.PasswordHash, &u.Role)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// Create registers a user with a bcrypt-hashed password.
func (s *UserStore) Create(name, password, role string) (*models.User, error) {
	if name == "" || password == "" {
		return nil, fmt.Errorf("name and password are required")
	}
	if _, err := s.UserByName(name); err == nil {
		return nil, fmt.Errorf("user %q %w", name, ErrDuplicate)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	res, err := s.db.conn.Exec(
		`INSERT INTO user (name, password_hash, role) VALUES (?, ?, ?)`, name, string(hash), role)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.User{ID: id, Name: name, Role: role}, nil
}

// Authenticate checks name/password. A stored reset sentinel yields
// ErrPasswordReset so the caller can run the new-password flow.
func (s *UserStore) Authenticate(name, password string) (*models.User, error) {
	u, err := s.UserByName(name)
	if err != nil {
		return nil, ErrBadCredentials
	}
	if u.PasswordHash == ResetSentinel {
		return nil, ErrPasswordReset
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrBadCredentials
	}
	return u, nil
}

// SetPassword replaces the stored hash with a new bcrypt hash. It is
// used both by the reset flow and by admins changing their own password.
func (s *UserStore) SetPassword(name, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = s.db.conn.Exec(`UPDATE user SET password_hash = ? WHERE name = ?`, string(hash), name)
	return err
}

// RequestReset stores the sentinel, forcing a new password next login.
func (s *UserStore) RequestReset(name string) error {
	_, err := s.db.conn.Exec(`UPDATE user SET password_hash = ? WHERE name = ?`, ResetSentinel, name)
	return err
}

func (s *UserStore) Delete(name string) error {
	_, err := s.db.conn.Exec(`DELETE FROM user WHERE name = ?`, name)
	return err
}
