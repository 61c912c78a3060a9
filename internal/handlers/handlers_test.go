package handlers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hragent/cv-ranker/internal/models"
)

func TestRankingRowsRoundTrip(t *testing.T) {
	ranked := []models.CandidateScore{
		{
			CandidateName:   "Jane Doe",
			FilePath:        "/tmp/s1/jane_doe.pdf",
			MatchScore:      77.6,
			MatchedSkills:   []string{"Go", "PostgreSQL"},
			MissingSkills:   []string{"Kubernetes"},
			Explanation:     "Strong backend match.",
			SkillMatchScore: 80,
			ExperienceScore: 70,
			ToolTechScore:   90,
			SeniorityScore:  60,
			SemanticScore:   82,
		},
		{
			CandidateName: "John Smith",
			FilePath:      "/tmp/s1/john_smith.pdf",
			MatchScore:    54.25,
			Explanation:   "Partial match.",
		},
	}

	rows := toRankingRows("s1", ranked)
	require.Len(t, rows, 2)
	assert.Equal(t, 1, rows[0].Position)
	assert.Equal(t, 2, rows[1].Position)
	assert.Equal(t, "s1", rows[0].SessionID)

	restored := toCandidateScores(rows)
	require.Len(t, restored, 2)
	assert.Equal(t, ranked[0], restored[0])

	// nil skill slices come back as empty, never nil
	assert.Equal(t, []string{}, restored[1].MatchedSkills)
	assert.Equal(t, []string{}, restored[1].MissingSkills)
}

func TestUnmarshalSkillsToleratesBadRows(t *testing.T) {
	assert.Equal(t, []string{"Go"}, unmarshalSkills(`["Go"]`))
	assert.Equal(t, []string{}, unmarshalSkills(""))
	assert.Equal(t, []string{}, unmarshalSkills("not json"))
	assert.Equal(t, []string{}, unmarshalSkills("null"))
}

func TestUniqueFilename(t *testing.T) {
	seen := make(map[string]int)

	assert.Equal(t, "cv.pdf", uniqueFilename(seen, "cv.pdf"))
	assert.Equal(t, "cv_2.pdf", uniqueFilename(seen, "cv.pdf"))

	// A literal upload matching a generated name still gets its own file
	assert.Equal(t, "cv_2_2.pdf", uniqueFilename(seen, "cv_2.pdf"))
	assert.Equal(t, "cv_3.pdf", uniqueFilename(seen, "cv.pdf"))

	assert.Equal(t, "other.txt", uniqueFilename(seen, "other.txt"))
}

func TestRoundSeconds(t *testing.T) {
	assert.Equal(t, 1.234, roundSeconds(1234*time.Millisecond))
	assert.Equal(t, 0.0, roundSeconds(0))
}
