package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"hragent/cv-ranker/internal/models"
	"hragent/cv-ranker/internal/services"
)

// RequirementsHandler exposes JD-only requirement extraction.
type RequirementsHandler struct {
	analyzer services.AnalysisService
}

func NewRequirementsHandler(analyzer services.AnalysisService) *RequirementsHandler {
	return &RequirementsHandler{analyzer: analyzer}
}

// HandleExtract handles POST /api/v1/requirements.
func (h *RequirementsHandler) HandleExtract(c *fiber.Ctx) error {
	var req models.RequirementsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request payload",
		})
	}

	if strings.TrimSpace(req.JobDescription) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "job_description is required",
		})
	}

	requirements := h.analyzer.ExtractRequirements(c.Context(), req.JobDescription)

	return c.JSON(models.RequirementsResponse{
		Requirements: requirements,
	})
}
