package handlers

import (
	"encoding/json"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"hragent/cv-ranker/internal/models"
	"hragent/cv-ranker/internal/repositories"
	"hragent/cv-ranker/internal/services"
)

// SessionHandler exposes the lifecycle of a ranking session after the
// ranking call: re-reading the stored result, downloading an uploaded
// CV, and explicit cleanup.
type SessionHandler struct {
	sessions    services.SessionManager
	indexer     services.VectorIndexer
	rankingRepo repositories.RankingRepository
	logger      *zap.SugaredLogger
}

func NewSessionHandler(
	sessions services.SessionManager,
	indexer services.VectorIndexer,
	rankingRepo repositories.RankingRepository,
	logger *zap.SugaredLogger,
) *SessionHandler {
	return &SessionHandler{
		sessions:    sessions,
		indexer:     indexer,
		rankingRepo: rankingRepo,
		logger:      logger,
	}
}

// HandleGetResult handles GET /api/v1/result/:session_id.
func (h *SessionHandler) HandleGetResult(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")
	if _, err := uuid.Parse(sessionID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid session ID format",
		})
	}

	rankings, err := h.rankingRepo.FindBySessionID(sessionID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to load ranking result",
		})
	}

	if len(rankings) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no ranking result for this session",
		})
	}

	return c.JSON(models.ResultResponse{
		SessionID:  sessionID,
		Candidates: toCandidateScores(rankings),
	})
}

// HandleDownload handles GET /api/v1/download/:session_id/:filename.
func (h *SessionHandler) HandleDownload(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")
	if _, err := uuid.Parse(sessionID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid session ID format",
		})
	}

	filename, err := filenameParam(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid filename",
		})
	}

	sessionDir := h.sessions.Dir(sessionID)
	filePath := filepath.Join(sessionDir, filename)

	// The resolved path must stay inside the session directory
	if rel, err := filepath.Rel(sessionDir, filePath); err != nil || strings.HasPrefix(rel, "..") {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid filename",
		})
	}

	if _, err := os.Stat(filePath); err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "file not found",
		})
	}

	return c.Download(filePath, filename)
}

// HandleDeleteSession handles DELETE /api/v1/session/:session_id.
// Deleting an unknown or already-deleted session succeeds.
func (h *SessionHandler) HandleDeleteSession(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")
	if _, err := uuid.Parse(sessionID); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid session ID format",
		})
	}

	if !h.sessions.Cleanup(sessionID) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to clean up session files",
		})
	}

	if err := h.indexer.DeleteSession(c.Context(), sessionID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to clean up session vectors",
		})
	}

	if err := h.rankingRepo.DeleteBySessionID(sessionID); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to clean up session rankings",
		})
	}

	return c.JSON(fiber.Map{
		"message": "session cleaned up successfully",
	})
}

func filenameParam(c *fiber.Ctx) (string, error) {
	raw, err := url.PathUnescape(c.Params("filename"))
	if err != nil {
		return "", err
	}

	cleaned := filepath.Base(filepath.Clean(raw))
	if cleaned == "." || cleaned == ".." || cleaned == "" || strings.ContainsAny(raw, `/\`) {
		return "", fiber.ErrBadRequest
	}

	return cleaned, nil
}

func toCandidateScores(rankings []models.Ranking) []models.CandidateScore {
	scores := make([]models.CandidateScore, 0, len(rankings))
	for _, row := range rankings {
		scores = append(scores, models.CandidateScore{
			CandidateName:   row.CandidateName,
			FilePath:        row.FilePath,
			MatchScore:      row.MatchScore,
			MatchedSkills:   unmarshalSkills(row.MatchedSkills),
			MissingSkills:   unmarshalSkills(row.MissingSkills),
			Explanation:     row.Explanation,
			SkillMatchScore: row.SkillMatchScore,
			ExperienceScore: row.ExperienceScore,
			ToolTechScore:   row.ToolTechScore,
			SeniorityScore:  row.SeniorityScore,
			SemanticScore:   row.SemanticScore,
		})
	}
	return scores
}

func unmarshalSkills(raw string) []string {
	var skills []string
	if err := json.Unmarshal([]byte(raw), &skills); err != nil || skills == nil {
		return []string{}
	}
	return skills
}
