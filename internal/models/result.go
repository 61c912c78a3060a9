package models

// RankingResponse is the payload returned by POST /api/v1/rank.
type RankingResponse struct {
	SessionID             string           `json:"session_id"`
	TopCandidates         []CandidateScore `json:"top_candidates"`
	TotalCandidates       int              `json:"total_candidates"`
	ProcessingTimeSeconds float64          `json:"processing_time_seconds"`
}

// ResultResponse is the payload returned by GET /api/v1/result/:session_id.
type ResultResponse struct {
	SessionID  string           `json:"session_id"`
	Candidates []CandidateScore `json:"candidates"`
}

// RequirementsRequest is the payload accepted by POST /api/v1/requirements.
type RequirementsRequest struct {
	JobDescription string `json:"job_description"`
}

// RequirementsResponse wraps the extracted JD requirements.
type RequirementsResponse struct {
	Requirements *JobRequirements `json:"requirements"`
}
