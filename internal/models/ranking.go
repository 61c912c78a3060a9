package models

import (
	"time"

	"github.com/google/uuid"
)

// CandidateScore is the final per-candidate ranking record. Sub-scores,
// the semantic score, and the weighted match score are all in [0,100].
type CandidateScore struct {
	CandidateName   string   `json:"candidate_name"`
	FilePath        string   `json:"file_path"`
	MatchScore      float64  `json:"match_score"`
	MatchedSkills   []string `json:"matched_skills"`
	MissingSkills   []string `json:"missing_skills"`
	Explanation     string   `json:"explanation"`
	SkillMatchScore float64  `json:"skill_match_score"`
	ExperienceScore float64  `json:"experience_score"`
	ToolTechScore   float64  `json:"tool_tech_score"`
	SeniorityScore  float64  `json:"seniority_score"`
	SemanticScore   float64  `json:"semantic_score"`
}

// Ranking is the persisted form of one CandidateScore, scoped to the
// session that produced it. Rows live only as long as the session and
// are removed by session cleanup or the age sweep.
type Ranking struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	SessionID       string    `gorm:"type:text;not null;index" json:"session_id"`
	Position        int       `gorm:"not null" json:"position"`
	CandidateName   string    `gorm:"type:text" json:"candidate_name"`
	FilePath        string    `gorm:"type:text" json:"file_path"`
	MatchScore      float64   `gorm:"type:decimal(5,2)" json:"match_score"`
	SkillMatchScore float64   `gorm:"type:decimal(5,2)" json:"skill_match_score"`
	ExperienceScore float64   `gorm:"type:decimal(5,2)" json:"experience_score"`
	ToolTechScore   float64   `gorm:"type:decimal(5,2)" json:"tool_tech_score"`
	SeniorityScore  float64   `gorm:"type:decimal(5,2)" json:"seniority_score"`
	SemanticScore   float64   `gorm:"type:decimal(5,2)" json:"semantic_score"`
	MatchedSkills   string    `gorm:"type:text" json:"matched_skills"`
	MissingSkills   string    `gorm:"type:text" json:"missing_skills"`
	Explanation     string    `gorm:"type:text" json:"explanation"`
	CreatedAt       time.Time `gorm:"default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Ranking) TableName() string {
	return "rankings"
}
