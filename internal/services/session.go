package services

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SessionManager owns the per-request isolation boundary: each session
// gets its own directory for uploaded files, and cleanup removes the
// whole tree. Vector cleanup is the indexer's job; the sweeper ties the
// two together for aged sessions.
type SessionManager interface {
	Create() (string, error)
	SaveFile(sessionID, filename string, data []byte) (string, error)
	Dir(sessionID string) string
	Cleanup(sessionID string) bool
	SweepOlderThan(maxAge time.Duration) []string
}

type sessionManager struct {
	baseDir string
	logger  *zap.SugaredLogger
}

func NewSessionManager(baseDir string, logger *zap.SugaredLogger) (SessionManager, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create session base directory: %w", err)
	}

	return &sessionManager{
		baseDir: baseDir,
		logger:  logger,
	}, nil
}

// Create implements SessionManager.
func (s *sessionManager) Create() (string, error) {
	sessionID := uuid.New().String()

	if err := os.MkdirAll(s.Dir(sessionID), 0o755); err != nil {
		return "", fmt.Errorf("failed to create session directory: %w", err)
	}

	s.logger.Infow("created session", "session_id", sessionID)
	return sessionID, nil
}

// Dir implements SessionManager.
func (s *sessionManager) Dir(sessionID string) string {
	return filepath.Join(s.baseDir, sessionID)
}

// SaveFile implements SessionManager. Filenames must resolve inside the
// session directory; crafted names with separators or parent references
// are rejected.
func (s *sessionManager) SaveFile(sessionID, filename string, data []byte) (string, error) {
	cleaned := filepath.Base(filepath.Clean(filename))
	if cleaned != filename || cleaned == "." || cleaned == ".." || cleaned == "" ||
		strings.ContainsAny(filename, `/\`) {
		return "", fmt.Errorf("invalid filename: %q", filename)
	}

	sessionDir := s.Dir(sessionID)
	if _, err := os.Stat(sessionDir); err != nil {
		return "", fmt.Errorf("session %s not found: %w", sessionID, err)
	}

	filePath := filepath.Join(sessionDir, cleaned)
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to save file: %w", err)
	}

	return filePath, nil
}

// Cleanup implements SessionManager. Safe to call repeatedly and on a
// session that never finished initializing.
func (s *sessionManager) Cleanup(sessionID string) bool {
	sessionDir := s.Dir(sessionID)

	if _, err := os.Stat(sessionDir); os.IsNotExist(err) {
		return true
	}

	if err := os.RemoveAll(sessionDir); err != nil {
		s.logger.Errorw("failed to clean up session",
			"session_id", sessionID,
			"error", err,
		)
		return false
	}

	s.logger.Infow("cleaned up session", "session_id", sessionID)
	return true
}

// SweepOlderThan implements SessionManager. Removes session directories
// whose modification time is older than maxAge and returns their ids,
// guarding against crashes that skipped explicit cleanup.
func (s *sessionManager) SweepOlderThan(maxAge time.Duration) []string {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		s.logger.Errorw("failed to read session base directory", "error", err)
		return nil
	}

	cutoff := time.Now().Add(-maxAge)

	var swept []string
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			s.logger.Warnw("failed to stat session directory",
				"session_id", entry.Name(),
				"error", err,
			)
			continue
		}

		if info.ModTime().Before(cutoff) && s.Cleanup(entry.Name()) {
			swept = append(swept, entry.Name())
		}
	}

	return swept
}
