package services

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestSessionManager(t *testing.T) SessionManager {
	t.Helper()

	manager, err := NewSessionManager(t.TempDir(), zap.NewNop().Sugar())
	require.NoError(t, err)
	return manager
}

func TestSessionCreateAndSaveFile(t *testing.T) {
	manager := newTestSessionManager(t)

	sessionID, err := manager.Create()
	require.NoError(t, err)
	require.NoError(t, uuid.Validate(sessionID))

	path, err := manager.SaveFile(sessionID, "cv.pdf", []byte("pdf bytes"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(manager.Dir(sessionID), "cv.pdf"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []byte("pdf bytes"), data)
}

func TestSaveFileRejectsTraversal(t *testing.T) {
	manager := newTestSessionManager(t)

	sessionID, err := manager.Create()
	require.NoError(t, err)

	for _, filename := range []string{
		"../evil.txt",
		"a/b.txt",
		`a\b.txt`,
		"..",
		".",
		"",
		"/etc/passwd",
	} {
		_, err := manager.SaveFile(sessionID, filename, []byte("x"))
		assert.Error(t, err, "filename %q must be rejected", filename)
	}
}

func TestSaveFileUnknownSession(t *testing.T) {
	manager := newTestSessionManager(t)

	_, err := manager.SaveFile(uuid.New().String(), "cv.pdf", []byte("x"))
	assert.Error(t, err)
}

func TestCleanupIsIdempotent(t *testing.T) {
	manager := newTestSessionManager(t)

	sessionID, err := manager.Create()
	require.NoError(t, err)

	_, err = manager.SaveFile(sessionID, "cv.pdf", []byte("x"))
	require.NoError(t, err)

	assert.True(t, manager.Cleanup(sessionID))
	_, err = os.Stat(manager.Dir(sessionID))
	assert.True(t, os.IsNotExist(err))

	// Second cleanup of the same session is still a success.
	assert.True(t, manager.Cleanup(sessionID))

	// So is cleaning a session that never existed.
	assert.True(t, manager.Cleanup(uuid.New().String()))
}

func TestSweepOlderThan(t *testing.T) {
	manager := newTestSessionManager(t)

	aged, err := manager.Create()
	require.NoError(t, err)
	fresh, err := manager.Create()
	require.NoError(t, err)

	// Backdate the aged session past the cutoff.
	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(manager.Dir(aged), old, old))

	swept := manager.SweepOlderThan(24 * time.Hour)

	assert.Equal(t, []string{aged}, swept)
	_, err = os.Stat(manager.Dir(aged))
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(manager.Dir(fresh))
	assert.NoError(t, err)
}
