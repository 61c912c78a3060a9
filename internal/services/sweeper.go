package services

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"hragent/cv-ranker/internal/repositories"
)

// SessionSweeper periodically removes sessions whose files have aged
// past the configured maximum, along with their vectors and stored
// ranking rows.
type SessionSweeper interface {
	Start(ctx context.Context)
	Stop()
}

type sessionSweeper struct {
	sessions    SessionManager
	indexer     VectorIndexer
	rankingRepo repositories.RankingRepository
	maxAge      time.Duration
	interval    time.Duration
	logger      *zap.SugaredLogger
	wg          sync.WaitGroup
	stopChan    chan struct{}
}

func NewSessionSweeper(
	sessions SessionManager,
	indexer VectorIndexer,
	rankingRepo repositories.RankingRepository,
	maxAge time.Duration,
	interval time.Duration,
	logger *zap.SugaredLogger,
) SessionSweeper {
	return &sessionSweeper{
		sessions:    sessions,
		indexer:     indexer,
		rankingRepo: rankingRepo,
		maxAge:      maxAge,
		interval:    interval,
		logger:      logger,
		stopChan:    make(chan struct{}),
	}
}

// Start implements SessionSweeper.
func (s *sessionSweeper) Start(ctx context.Context) {
	s.wg.Add(1)
	go s.run(ctx)
	s.logger.Infow("session sweeper started",
		"max_age", s.maxAge,
		"interval", s.interval,
	)
}

// Stop implements SessionSweeper.
func (s *sessionSweeper) Stop() {
	close(s.stopChan)
	s.wg.Wait()
	s.logger.Info("session sweeper stopped")
}

func (s *sessionSweeper) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *sessionSweeper) sweep(ctx context.Context) {
	swept := s.sessions.SweepOlderThan(s.maxAge)
	if len(swept) == 0 {
		return
	}

	s.logger.Infow("swept aged sessions", "count", len(swept))

	for _, sessionID := range swept {
		if err := s.indexer.DeleteSession(ctx, sessionID); err != nil {
			s.logger.Errorw("failed to delete vectors for swept session",
				"session_id", sessionID,
				"error", err,
			)
		}

		if err := s.rankingRepo.DeleteBySessionID(sessionID); err != nil {
			s.logger.Errorw("failed to delete rankings for swept session",
				"session_id", sessionID,
				"error", err,
			)
		}
	}
}
