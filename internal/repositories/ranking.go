package repositories

import (
	"fmt"

	"gorm.io/gorm"

	"hragent/cv-ranker/internal/models"
)

// RankingRepository stores completed ranking rows for the lifetime of
// their session. Rows are deleted by explicit session cleanup or the
// age sweep; nothing outlives its session.
type RankingRepository interface {
	SaveAll(rankings []models.Ranking) error
	FindBySessionID(sessionID string) ([]models.Ranking, error)
	DeleteBySessionID(sessionID string) error
}

type rankingRepository struct {
	db *gorm.DB
}

func NewRankingRepository(db *gorm.DB) RankingRepository {
	return &rankingRepository{db: db}
}

// SaveAll implements RankingRepository.
func (r *rankingRepository) SaveAll(rankings []models.Ranking) error {
	if len(rankings) == 0 {
		return nil
	}

	if err := r.db.Create(&rankings).Error; err != nil {
		return fmt.Errorf("failed to save rankings: %w", err)
	}

	return nil
}

// FindBySessionID implements RankingRepository.
func (r *rankingRepository) FindBySessionID(sessionID string) ([]models.Ranking, error) {
	var rankings []models.Ranking
	if err := r.db.Where("session_id = ?", sessionID).Order("position asc").Find(&rankings).Error; err != nil {
		return nil, fmt.Errorf("failed to find rankings: %w", err)
	}

	return rankings, nil
}

// DeleteBySessionID implements RankingRepository. Deleting a session
// with no rows is a no-op.
func (r *rankingRepository) DeleteBySessionID(sessionID string) error {
	if err := r.db.Where("session_id = ?", sessionID).Delete(&models.Ranking{}).Error; err != nil {
		return fmt.Errorf("failed to delete rankings: %w", err)
	}

	return nil
}
