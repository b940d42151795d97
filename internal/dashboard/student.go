// Package dashboard holds the view-models behind the student and teacher
// dashboards. They are thin read/command surfaces: fetch on mount and on
// explicit refresh, render, and forward commands to the backend. Each
// view-model is torn down with Close so late results are discarded.
package dashboard

import (
	"context"
	"math"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"eduassess/internal/domain"
	"eduassess/internal/logger"
	"eduassess/internal/notify"
)

// StudentStats are the aggregate tiles on the student overview tab.
type StudentStats struct {
	// AverageScore is the rounded mean score across the student's quiz
	// history, 0 with no history.
	AverageScore int
	QuizzesTaken int
	// ImprovementAreas counts weaknesses across all submissions.
	ImprovementAreas int
}

// Student is the student dashboard view-model.
type Student struct {
	mu       sync.Mutex
	backend  domain.Backend
	notifier notify.Notifier
	token    string

	loading bool
	profile *domain.User
	history []domain.Submission

	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

// NewStudent creates the view-model. Call Refresh to populate it and Close
// when the view goes away.
func NewStudent(backend domain.Backend, notifier notify.Notifier, token string) *Student {
	ctx, cancel := context.WithCancel(context.Background())
	return &Student{
		backend:  backend,
		notifier: notifier,
		token:    token,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Refresh fetches the profile and the quiz history concurrently and applies
// both atomically. A failure of either leaves the previous data in place and
// is reported through the notifier.
func (s *Student) Refresh() error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	var (
		profile *domain.User
		history []domain.Submission
	)

	g, ctx := errgroup.WithContext(s.ctx)
	g.Go(func() error {
		u, err := s.backend.CurrentUser(ctx, s.token)
		if err != nil {
			return err
		}
		profile = u
		return nil
	})
	g.Go(func() error {
		h, err := s.backend.QuizHistory(ctx, s.token)
		if err != nil {
			return err
		}
		history = h
		return nil
	})
	err := g.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.loading = false

	if err != nil {
		logger.Get().Warn("Student dashboard refresh failed", zap.Error(err))
		s.notifier.Error("Failed to load your dashboard data")
		return err
	}

	s.profile = profile
	s.history = history
	return nil
}

// Profile returns the last fetched user record, or nil before Refresh.
func (s *Student) Profile() *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// History returns the last fetched quiz history, newest first.
func (s *Student) History() []domain.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Submission(nil), s.history...)
}

// IsLoading reports whether a refresh is in flight.
func (s *Student) IsLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Stats computes the overview aggregates from the fetched history.
func (s *Student) Stats() StudentStats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := StudentStats{QuizzesTaken: len(s.history)}
	if len(s.history) == 0 {
		return stats
	}

	var sum float64
	for _, sub := range s.history {
		sum += sub.Score
		stats.ImprovementAreas += len(sub.Weaknesses)
	}
	stats.AverageScore = int(math.Round(sum / float64(len(s.history))))
	return stats
}

// Close tears the view-model down; refreshes still in flight are discarded.
func (s *Student) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.cancel()
}
