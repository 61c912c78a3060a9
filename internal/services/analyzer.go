package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"hragent/cv-ranker/internal/models"
)

// AnalysisService is the adapter between the untrusted LLM output and
// the typed AnalysisResult / JobRequirements the rest of the system
// consumes. It never returns an error for a single candidate: any
// failure degrades to a fully populated default result so one broken
// analysis cannot abort ranking of the others.
type AnalysisService interface {
	AnalyzeMatch(ctx context.Context, jdText, cvText string) *models.AnalysisResult
	ExtractRequirements(ctx context.Context, jdText string) *models.JobRequirements
}

type analysisService struct {
	generator     TextGenerator
	promptBuilder *PromptBuilder
	maxChars      int
	timeout       time.Duration
	maxRetries    int
	logger        *zap.SugaredLogger
}

func NewAnalysisService(
	generator TextGenerator,
	maxChars int,
	timeout time.Duration,
	maxRetries int,
	logger *zap.SugaredLogger,
) AnalysisService {
	if maxChars <= 0 {
		maxChars = 15000
	}
	if maxRetries <= 0 {
		maxRetries = 1
	}

	return &analysisService{
		generator:     generator,
		promptBuilder: NewPromptBuilder(),
		maxChars:      maxChars,
		timeout:       timeout,
		maxRetries:    maxRetries,
		logger:        logger,
	}
}

// AnalyzeMatch implements AnalysisService.
func (a *analysisService) AnalyzeMatch(ctx context.Context, jdText, cvText string) *models.AnalysisResult {
	if strings.TrimSpace(jdText) == "" || strings.TrimSpace(cvText) == "" {
		return models.DefaultAnalysisResult("No job description or CV text provided for analysis.")
	}

	prompt := a.promptBuilder.BuildMatchAnalysisPrompt(
		truncate(jdText, a.maxChars),
		truncate(cvText, a.maxChars),
	)

	response, err := a.generate(ctx, prompt, 0)
	if err != nil {
		a.logger.Warnw("match analysis call failed", "error", err)
		return models.DefaultAnalysisResult(fmt.Sprintf("Analysis failed: %v. Please review manually.", err))
	}

	var result models.AnalysisResult
	if err := json.Unmarshal([]byte(stripCodeFences(response)), &result); err != nil {
		a.logger.Warnw("failed to parse analysis response",
			"error", err,
			"response", excerpt(response, 500),
		)
		return models.DefaultAnalysisResult("Analysis response could not be parsed. Please review manually.")
	}

	normalizeAnalysis(&result)
	return &result
}

// ExtractRequirements implements AnalysisService.
func (a *analysisService) ExtractRequirements(ctx context.Context, jdText string) *models.JobRequirements {
	if strings.TrimSpace(jdText) == "" {
		return models.DefaultJobRequirements()
	}

	prompt := a.promptBuilder.BuildRequirementsPrompt(truncate(jdText, 10000))

	response, err := a.generate(ctx, prompt, 0)
	if err != nil {
		a.logger.Warnw("requirement extraction call failed", "error", err)
		return models.DefaultJobRequirements()
	}

	var requirements models.JobRequirements
	if err := json.Unmarshal([]byte(stripCodeFences(response)), &requirements); err != nil {
		a.logger.Warnw("failed to parse requirements response", "error", err)
		return models.DefaultJobRequirements()
	}

	if requirements.RequiredSkills == nil {
		requirements.RequiredSkills = []string{}
	}
	if requirements.RequiredTools == nil {
		requirements.RequiredTools = []string{}
	}
	if requirements.KeyResponsibilities == nil {
		requirements.KeyResponsibilities = []string{}
	}
	if requirements.SeniorityLevel == "" {
		requirements.SeniorityLevel = "unknown"
	}
	if requirements.RequiredExperienceYears < 0 {
		requirements.RequiredExperienceYears = 0
	}

	return &requirements
}

func (a *analysisService) generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	return a.generator.GenerateTextWithRetry(ctx, prompt, temperature, a.maxRetries)
}

// normalizeAnalysis fills missing fields with safe defaults and clamps
// the four sub-scores into [0,100].
func normalizeAnalysis(result *models.AnalysisResult) {
	if result.CandidateName == "" {
		result.CandidateName = "Unknown"
	}
	if result.MatchedSkills == nil {
		result.MatchedSkills = []string{}
	}
	if result.MissingSkills == nil {
		result.MissingSkills = []string{}
	}
	if result.Explanation == "" {
		result.Explanation = "Analysis completed."
	}

	result.SkillMatchScore = clampScore(result.SkillMatchScore)
	result.ExperienceScore = clampScore(result.ExperienceScore)
	result.ToolTechScore = clampScore(result.ToolTechScore)
	result.SeniorityScore = clampScore(result.SeniorityScore)
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// stripCodeFences removes markdown fencing the model may wrap around
// its JSON and trims to the outermost object or array boundaries.
func stripCodeFences(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")
	text = strings.TrimSpace(text)

	startObj := strings.Index(text, "{")
	endObj := strings.LastIndex(text, "}")
	startArr := strings.Index(text, "[")
	endArr := strings.LastIndex(text, "]")

	if startObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	}
	if startArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return text
}
