package models

// AnalysisResult is the normalized output of the LLM match analysis.
// Every field is always populated; the analyzer substitutes defaults
// when the model response is missing or malformed.
type AnalysisResult struct {
	CandidateName   string   `json:"candidate_name"`
	SkillMatchScore float64  `json:"skill_match_score"`
	ExperienceScore float64  `json:"experience_score"`
	ToolTechScore   float64  `json:"tool_tech_score"`
	SeniorityScore  float64  `json:"seniority_score"`
	MatchedSkills   []string `json:"matched_skills"`
	MissingSkills   []string `json:"missing_skills"`
	Explanation     string   `json:"explanation"`
}

// DefaultAnalysisResult returns the degraded-default analysis used when
// the LLM call fails or its output cannot be parsed. The explanation
// carries a human-readable reason so failed candidates are still ranked.
func DefaultAnalysisResult(explanation string) *AnalysisResult {
	if explanation == "" {
		explanation = "Analysis encountered an error. Please review manually."
	}
	return &AnalysisResult{
		CandidateName:   "Unknown",
		SkillMatchScore: 0,
		ExperienceScore: 0,
		ToolTechScore:   0,
		SeniorityScore:  0,
		MatchedSkills:   []string{},
		MissingSkills:   []string{},
		Explanation:     explanation,
	}
}

// JobRequirements is the structured output of JD-only requirement extraction.
type JobRequirements struct {
	RequiredSkills          []string `json:"required_skills"`
	RequiredTools           []string `json:"required_tools"`
	RequiredExperienceYears float64  `json:"required_experience_years"`
	SeniorityLevel          string   `json:"seniority_level"`
	KeyResponsibilities     []string `json:"key_responsibilities"`
}

// DefaultJobRequirements returns the fallback used when extraction fails.
func DefaultJobRequirements() *JobRequirements {
	return &JobRequirements{
		RequiredSkills:          []string{},
		RequiredTools:           []string{},
		RequiredExperienceYears: 0,
		SeniorityLevel:          "unknown",
		KeyResponsibilities:     []string{},
	}
}
