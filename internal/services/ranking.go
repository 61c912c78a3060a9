package services

import (
	"context"
	"math"
	"sort"
	"sync"

	"go.uber.org/zap"

	"hragent/cv-ranker/internal/config"
	"hragent/cv-ranker/internal/models"
)

// Candidate pairs a CV's identity (file path) with its extracted text.
// Rank preserves the order of this slice for equal final scores.
type Candidate struct {
	FilePath string
	Text     string
}

// RankingEngine merges LLM analysis scores and semantic similarity into
// one weighted match score per candidate and sorts the result.
type RankingEngine interface {
	Rank(ctx context.Context, jdText string, candidates []Candidate, semanticScores map[string]float64) []models.CandidateScore
	Top(ranked []models.CandidateScore, n int) []models.CandidateScore
	Weights() config.WeightsConfig
}

type rankingEngine struct {
	analyzer AnalysisService
	weights  config.WeightsConfig
	logger   *zap.SugaredLogger
}

func NewRankingEngine(analyzer AnalysisService, weights config.WeightsConfig, logger *zap.SugaredLogger) RankingEngine {
	return &rankingEngine{
		analyzer: analyzer,
		weights:  weights,
		logger:   logger,
	}
}

// Weights implements RankingEngine. The weights are the single most
// consequential tunable of the system, so they are exposed rather than
// buried in the scoring arithmetic.
func (r *rankingEngine) Weights() config.WeightsConfig {
	return r.weights
}

// Rank implements RankingEngine. Analysis fans out per candidate into
// an index-addressed slice, so completion order never affects output
// order; the final sort is stable and ties keep input order.
func (r *rankingEngine) Rank(ctx context.Context, jdText string, candidates []Candidate, semanticScores map[string]float64) []models.CandidateScore {
	scores := make([]models.CandidateScore, len(candidates))

	var wg sync.WaitGroup
	for i, candidate := range candidates {
		wg.Add(1)
		go func(i int, candidate Candidate) {
			defer wg.Done()
			scores[i] = r.scoreCandidate(ctx, jdText, candidate, semanticScores[candidate.FilePath])
		}(i, candidate)
	}
	wg.Wait()

	sort.SliceStable(scores, func(i, j int) bool {
		return scores[i].MatchScore > scores[j].MatchScore
	})

	r.logger.Infow("ranked candidates", "count", len(scores))
	return scores
}

// Top implements RankingEngine. The prefix is returned verbatim: no
// rescaling, no re-normalization.
func (r *rankingEngine) Top(ranked []models.CandidateScore, n int) []models.CandidateScore {
	if n <= 0 {
		return []models.CandidateScore{}
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	return ranked[:n]
}

func (r *rankingEngine) scoreCandidate(ctx context.Context, jdText string, candidate Candidate, semanticSimilarity float64) models.CandidateScore {
	analysis := r.analyzer.AnalyzeMatch(ctx, jdText, candidate.Text)

	// Semantic similarity arrives in [0,1] and joins the other
	// sub-scores on the 0-100 scale.
	semanticScore := semanticSimilarity * 100

	finalScore := analysis.SkillMatchScore*r.weights.SkillMatch +
		analysis.ExperienceScore*r.weights.Experience +
		analysis.ToolTechScore*r.weights.ToolTech +
		analysis.SeniorityScore*r.weights.Seniority +
		semanticScore*r.weights.Semantic

	finalScore = clampScore(finalScore)

	candidateName := analysis.CandidateName
	if candidateName == "" || candidateName == "Unknown" {
		candidateName = ExtractCandidateName(candidate.FilePath, candidate.Text)
	}

	return models.CandidateScore{
		CandidateName:   candidateName,
		FilePath:        candidate.FilePath,
		MatchScore:      round2(finalScore),
		MatchedSkills:   analysis.MatchedSkills,
		MissingSkills:   analysis.MissingSkills,
		Explanation:     analysis.Explanation,
		SkillMatchScore: round2(analysis.SkillMatchScore),
		ExperienceScore: round2(analysis.ExperienceScore),
		ToolTechScore:   round2(analysis.ToolTechScore),
		SeniorityScore:  round2(analysis.SeniorityScore),
		SemanticScore:   round2(semanticScore),
	}
}

func round2(value float64) float64 {
	return math.Round(value*100) / 100
}
