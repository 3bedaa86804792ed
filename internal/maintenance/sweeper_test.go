package maintenance

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fileshare/internal/database"
	"fileshare/internal/services"
)

func TestNewSweeper_BadSchedule(t *testing.T) {
	_, err := NewSweeper(nil, "not a cron spec", time.Hour)
	assert.Error(t, err)
}

func TestSweep(t *testing.T) {
	db, err := database.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(db))

	dir := t.TempDir()
	files := services.NewFileService(db, dir)
	users := services.NewUserService(db)

	alice, err := users.Register("alice", "secret")
	require.NoError(t, err)

	// Indexed upload: must survive the sweep regardless of age.
	_, err = files.SaveUpload(alice.ID, "kept.txt", strings.NewReader("kept"))
	require.NoError(t, err)
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "kept.txt"), old, old))

	// Old orphan: on disk, never indexed, past the grace window.
	orphan := filepath.Join(dir, "orphan.bin")
	require.NoError(t, os.WriteFile(orphan, []byte("junk"), 0644))
	require.NoError(t, os.Chtimes(orphan, old, old))

	// Fresh orphan: could be an upload still in flight.
	fresh := filepath.Join(dir, "inflight.bin")
	require.NoError(t, os.WriteFile(fresh, []byte("junk"), 0644))

	sweeper, err := NewSweeper(files, "@hourly", 24*time.Hour)
	require.NoError(t, err)
	sweeper.Sweep()

	_, err = os.Stat(filepath.Join(dir, "kept.txt"))
	assert.NoError(t, err, "indexed file must not be swept")

	_, err = os.Stat(fresh)
	assert.NoError(t, err, "fresh orphan must be left for the grace window")

	_, err = os.Stat(orphan)
	assert.True(t, os.IsNotExist(err), "old orphan must be removed")
}
