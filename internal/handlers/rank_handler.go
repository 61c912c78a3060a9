package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"hragent/cv-ranker/internal/models"
	"hragent/cv-ranker/internal/repositories"
	"hragent/cv-ranker/internal/services"
)

var allowedExtensions = map[string]bool{
	".pdf": true,
	".txt": true,
}

const defaultTopN = 3

// RankHandler orchestrates one ranking request end to end: session
// creation, file validation and storage, ingestion, semantic scoring,
// ranking, and persistence of the session-scoped result.
type RankHandler struct {
	sessions    services.SessionManager
	extractor   services.DocumentExtractor
	indexer     services.VectorIndexer
	scorer      services.SemanticScorer
	engine      services.RankingEngine
	rankingRepo repositories.RankingRepository
	maxFileSize int64
	maxCVCount  int
	logger      *zap.SugaredLogger
}

func NewRankHandler(
	sessions services.SessionManager,
	extractor services.DocumentExtractor,
	indexer services.VectorIndexer,
	scorer services.SemanticScorer,
	engine services.RankingEngine,
	rankingRepo repositories.RankingRepository,
	maxFileSize int64,
	maxCVCount int,
	logger *zap.SugaredLogger,
) *RankHandler {
	return &RankHandler{
		sessions:    sessions,
		extractor:   extractor,
		indexer:     indexer,
		scorer:      scorer,
		engine:      engine,
		rankingRepo: rankingRepo,
		maxFileSize: maxFileSize,
		maxCVCount:  maxCVCount,
		logger:      logger,
	}
}

// HandleRank handles POST /api/v1/rank.
func (h *RankHandler) HandleRank(c *fiber.Ctx) error {
	startTime := time.Now()

	jobDescription := c.FormValue("job_description")
	if strings.TrimSpace(jobDescription) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "job_description is required",
		})
	}

	topN := defaultTopN
	if formTopN := c.FormValue("top_n"); formTopN != "" {
		if parsed, err := strconv.Atoi(formTopN); err == nil && parsed > 0 {
			topN = parsed
		}
	}

	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to parse multipart form",
		})
	}

	files := form.File["files"]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "at least one CV file is required",
		})
	}
	if len(files) > h.maxCVCount {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("maximum %d CVs allowed per request", h.maxCVCount),
		})
	}

	for _, file := range files {
		if !allowedExtensions[strings.ToLower(filepath.Ext(file.Filename))] {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("invalid file %s: only .pdf and .txt files are allowed", file.Filename),
			})
		}
		if file.Size > h.maxFileSize {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": fmt.Sprintf("file %s too large, max size: %d bytes", file.Filename, h.maxFileSize),
			})
		}
	}

	sessionID, err := h.sessions.Create()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to create session",
		})
	}

	response, err := h.processRanking(c, sessionID, jobDescription, files, topN, startTime)
	if err != nil {
		// One failed request must not leave files or vectors behind
		h.sessions.Cleanup(sessionID)
		if cleanupErr := h.indexer.DeleteSession(c.Context(), sessionID); cleanupErr != nil {
			h.logger.Errorw("failed to clean up vectors after error",
				"session_id", sessionID,
				"error", cleanupErr,
			)
		}

		h.logger.Errorw("ranking request failed",
			"session_id", sessionID,
			"error", err,
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(response)
}

func (h *RankHandler) processRanking(
	c *fiber.Ctx,
	sessionID string,
	jobDescription string,
	files []*multipart.FileHeader,
	topN int,
	startTime time.Time,
) (*models.RankingResponse, error) {
	ctx := c.Context()

	// Save uploads into the session directory, preserving upload order
	// so exact-tie candidates keep a deterministic ranking. Repeated
	// basenames get a numeric suffix so no upload overwrites another.
	cvFilePaths := make([]string, 0, len(files))
	seenNames := make(map[string]int, len(files))
	for _, file := range files {
		data, err := readMultipartFile(file)
		if err != nil {
			return nil, fmt.Errorf("failed to read uploaded file %s: %w", file.Filename, err)
		}

		filePath, err := h.sessions.SaveFile(sessionID, uniqueFilename(seenNames, filepath.Base(file.Filename)), data)
		if err != nil {
			return nil, fmt.Errorf("failed to save file %s: %w", file.Filename, err)
		}
		cvFilePaths = append(cvFilePaths, filePath)
	}

	cvData := h.extractor.ExtractBatch(cvFilePaths)
	if len(cvData) == 0 {
		return nil, fmt.Errorf("failed to extract text from any CV file")
	}

	if _, err := h.indexer.IngestJobDescription(ctx, sessionID, jobDescription); err != nil {
		return nil, fmt.Errorf("failed to ingest job description: %w", err)
	}

	if _, err := h.indexer.IngestCVs(ctx, sessionID, cvData); err != nil {
		return nil, fmt.Errorf("failed to ingest CVs: %w", err)
	}

	semanticScores := h.scorer.ScoreAll(ctx, jobDescription, cvData)

	candidates := make([]services.Candidate, 0, len(cvData))
	for _, filePath := range cvFilePaths {
		text, ok := cvData[filePath]
		if !ok {
			continue
		}
		candidates = append(candidates, services.Candidate{FilePath: filePath, Text: text})
	}

	ranked := h.engine.Rank(ctx, jobDescription, candidates, semanticScores)

	if err := h.rankingRepo.SaveAll(toRankingRows(sessionID, ranked)); err != nil {
		return nil, fmt.Errorf("failed to persist ranking: %w", err)
	}

	h.logger.Infow("ranking completed",
		"session_id", sessionID,
		"candidates", len(ranked),
		"duration", time.Since(startTime),
	)

	return &models.RankingResponse{
		SessionID:             sessionID,
		TopCandidates:         h.engine.Top(ranked, topN),
		TotalCandidates:       len(ranked),
		ProcessingTimeSeconds: roundSeconds(time.Since(startTime)),
	}, nil
}

// uniqueFilename returns filename on first sight and stem_N.ext for
// repeats. Suffixed names are registered in seen too, so a generated
// name never collides with a later literal upload.
func uniqueFilename(seen map[string]int, filename string) string {
	if seen[filename] == 0 {
		seen[filename] = 1
		return filename
	}

	ext := filepath.Ext(filename)
	stem := strings.TrimSuffix(filename, ext)
	for {
		seen[filename]++
		candidate := fmt.Sprintf("%s_%d%s", stem, seen[filename], ext)
		if seen[candidate] == 0 {
			seen[candidate] = 1
			return candidate
		}
	}
}

func readMultipartFile(file *multipart.FileHeader) ([]byte, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return io.ReadAll(src)
}

func toRankingRows(sessionID string, ranked []models.CandidateScore) []models.Ranking {
	rows := make([]models.Ranking, 0, len(ranked))
	for i, score := range ranked {
		rows = append(rows, models.Ranking{
			SessionID:       sessionID,
			Position:        i + 1,
			CandidateName:   score.CandidateName,
			FilePath:        score.FilePath,
			MatchScore:      score.MatchScore,
			SkillMatchScore: score.SkillMatchScore,
			ExperienceScore: score.ExperienceScore,
			ToolTechScore:   score.ToolTechScore,
			SeniorityScore:  score.SeniorityScore,
			SemanticScore:   score.SemanticScore,
			MatchedSkills:   marshalSkills(score.MatchedSkills),
			MissingSkills:   marshalSkills(score.MissingSkills),
			Explanation:     score.Explanation,
		})
	}
	return rows
}

func marshalSkills(skills []string) string {
	if skills == nil {
		skills = []string{}
	}
	data, err := json.Marshal(skills)
	if err != nil {
		return "[]"
	}
	return string(data)
}

func roundSeconds(d time.Duration) float64 {
	return float64(d.Milliseconds()) / 1000
}
