package services

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFileService(t *testing.T) (*FileService, *UserService) {
	t.Helper()
	db := newTestDB(t)
	dir := t.TempDir()
	return NewFileService(db, dir), NewUserService(db)
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{"../../etc/passwd", "passwd"},
		{"/etc/shadow", "shadow"},
		{`..\..\windows\system.ini`, "system.ini"},
		{"dir/sub/notes.txt", "notes.txt"},
		{"..data", "..data"},
	}
	for _, tc := range cases {
		got, err := SanitizeFilename(tc.in)
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
		assert.False(t, strings.ContainsAny(got, `/\`), tc.in)
	}

	for _, in := range []string{"", ".", "..", "../..", "/"} {
		_, err := SanitizeFilename(in)
		assert.ErrorIs(t, err, ErrBadFilename, in)
	}
}

func TestSaveUploadAndList(t *testing.T) {
	files, users := newTestFileService(t)

	alice, err := users.Register("alice", "secret")
	require.NoError(t, err)
	bob, err := users.Register("bob", "secret")
	require.NoError(t, err)

	record, err := files.SaveUpload(alice.ID, "notes.txt", strings.NewReader("hello"))
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", record.Filename)

	data, err := os.ReadFile(filepath.Join(files.UploadDir(), "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))

	aliceFiles, err := files.ListForUser(alice.ID)
	require.NoError(t, err)
	require.Len(t, aliceFiles, 1)
	assert.Equal(t, "notes.txt", aliceFiles[0].Filename)

	bobFiles, err := files.ListForUser(bob.ID)
	require.NoError(t, err)
	assert.Empty(t, bobFiles)
}

func TestSaveUpload_TraversalStaysInside(t *testing.T) {
	files, users := newTestFileService(t)

	alice, err := users.Register("alice", "secret")
	require.NoError(t, err)

	record, err := files.SaveUpload(alice.ID, "../../etc/passwd", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "passwd", record.Filename)

	_, err = os.Stat(filepath.Join(files.UploadDir(), "passwd"))
	assert.NoError(t, err)

	entries, err := os.ReadDir(files.UploadDir())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "passwd", entries[0].Name())
}

func TestSaveUpload_BadName(t *testing.T) {
	files, users := newTestFileService(t)

	alice, err := users.Register("alice", "secret")
	require.NoError(t, err)

	_, err = files.SaveUpload(alice.ID, "..", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrBadFilename)
}

func TestOpen_OwnerScoped(t *testing.T) {
	files, users := newTestFileService(t)

	alice, err := users.Register("alice", "secret")
	require.NoError(t, err)
	bob, err := users.Register("bob", "secret")
	require.NoError(t, err)

	_, err = files.SaveUpload(alice.ID, "notes.txt", strings.NewReader("hello"))
	require.NoError(t, err)

	f, record, err := files.Open(alice.ID, "notes.txt")
	require.NoError(t, err)
	f.Close()
	assert.Equal(t, alice.ID, record.UserID)

	// The name exists on disk, but bob never uploaded it.
	_, _, err = files.Open(bob.ID, "notes.txt")
	assert.ErrorIs(t, err, ErrFileNotFound)

	_, _, err = files.Open(alice.ID, "missing.txt")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestFilenames(t *testing.T) {
	files, users := newTestFileService(t)

	alice, err := users.Register("alice", "secret")
	require.NoError(t, err)

	_, err = files.SaveUpload(alice.ID, "a.txt", strings.NewReader("a"))
	require.NoError(t, err)
	_, err = files.SaveUpload(alice.ID, "b.txt", strings.NewReader("b"))
	require.NoError(t, err)

	names, err := files.Filenames()
	require.NoError(t, err)
	assert.Len(t, names, 2)
	assert.Contains(t, names, "a.txt")
	assert.Contains(t, names, "b.txt")
}
