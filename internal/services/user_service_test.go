package services

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fileshare/internal/database"
)

func newTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))
	return db
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc := NewUserService(newTestDB(t))

	user, err := svc.Register("alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Username)
	assert.NotZero(t, user.ID)
	assert.NotEqual(t, "secret", user.PasswordHash)

	got, err := svc.Authenticate("alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Authenticate("alice", "not-the-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_UnknownUser(t *testing.T) {
	svc := NewUserService(newTestDB(t))

	_, err := svc.Authenticate("nobody", "whatever")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegister_Duplicate(t *testing.T) {
	svc := NewUserService(newTestDB(t))

	_, err := svc.Register("alice", "secret")
	require.NoError(t, err)

	before, err := svc.Count()
	require.NoError(t, err)

	_, err = svc.Register("alice", "other-password")
	assert.ErrorIs(t, err, ErrUsernameTaken)

	after, err := svc.Count()
	require.NoError(t, err)
	assert.Equal(t, before, after)
}

func TestRegister_MissingFields(t *testing.T) {
	svc := NewUserService(newTestDB(t))

	_, err := svc.Register("", "secret")
	assert.ErrorIs(t, err, ErrMissingCredentials)

	_, err = svc.Register("alice", "")
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestGetByUsername_NotFound(t *testing.T) {
	svc := NewUserService(newTestDB(t))

	_, err := svc.GetByUsername("nobody")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestEnsureAdmin(t *testing.T) {
	svc := NewUserService(newTestDB(t))

	require.NoError(t, svc.EnsureAdmin())

	admin, err := svc.GetByUsername("admin")
	require.NoError(t, err)
	assert.Equal(t, "admin", admin.Username)

	// Idempotent on a seeded database.
	require.NoError(t, svc.EnsureAdmin())
	count, err := svc.Count()
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}
