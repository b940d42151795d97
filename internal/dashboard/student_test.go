package dashboard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eduassess/internal/domain"
	"eduassess/internal/notify"
)

type fakeBackend struct {
	domain.Backend
	CurrentUserFunc       func(ctx context.Context, token string) (*domain.User, error)
	QuizHistoryFunc       func(ctx context.Context, token string) ([]domain.Submission, error)
	AllSubmissionsFunc    func(ctx context.Context, token string) ([]domain.Submission, error)
	AddTeacherCommentFunc func(ctx context.Context, token, submissionID, comments string) error
	SubmitReviewFunc      func(ctx context.Context, token, submissionID string) (*domain.ReviewOutcome, error)
	SubmitReviewBulkFunc  func(ctx context.Context, token string, submissionIDs []string) (*domain.BulkReviewOutcome, error)
}

func (f *fakeBackend) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	return f.CurrentUserFunc(ctx, token)
}

func (f *fakeBackend) QuizHistory(ctx context.Context, token string) ([]domain.Submission, error) {
	return f.QuizHistoryFunc(ctx, token)
}

func (f *fakeBackend) AllSubmissions(ctx context.Context, token string) ([]domain.Submission, error) {
	return f.AllSubmissionsFunc(ctx, token)
}

func (f *fakeBackend) AddTeacherComment(ctx context.Context, token, submissionID, comments string) error {
	return f.AddTeacherCommentFunc(ctx, token, submissionID, comments)
}

func (f *fakeBackend) SubmitReview(ctx context.Context, token, submissionID string) (*domain.ReviewOutcome, error) {
	return f.SubmitReviewFunc(ctx, token, submissionID)
}

func (f *fakeBackend) SubmitReviewBulk(ctx context.Context, token string, submissionIDs []string) (*domain.BulkReviewOutcome, error) {
	return f.SubmitReviewBulkFunc(ctx, token, submissionIDs)
}

func historyFixture() []domain.Submission {
	return []domain.Submission{
		{
			ID:         "s2",
			UserID:     "u1",
			Score:      80,
			Weaknesses: []string{"Emotional"},
			Status:     domain.StatusCompleted,
		},
		{
			ID:         "s1",
			UserID:     "u1",
			Score:      55,
			Weaknesses: []string{"Emotional", "Behavioural"},
			Status:     domain.StatusCompleted,
		},
	}
}

func TestStudent_RefreshFetchesProfileAndHistory(t *testing.T) {
	be := &fakeBackend{
		CurrentUserFunc: func(ctx context.Context, token string) (*domain.User, error) {
			assert.Equal(t, "tok", token)
			return &domain.User{ID: "u1", Name: "Alice Johnson", QuizAttempts: 2}, nil
		},
		QuizHistoryFunc: func(ctx context.Context, token string) ([]domain.Submission, error) {
			return historyFixture(), nil
		},
	}
	s := NewStudent(be, &notify.Recorder{}, "tok")
	defer s.Close()

	require.NoError(t, s.Refresh())
	assert.False(t, s.IsLoading())
	require.NotNil(t, s.Profile())
	assert.Equal(t, "Alice Johnson", s.Profile().Name)
	assert.Len(t, s.History(), 2)
}

func TestStudent_Stats(t *testing.T) {
	be := &fakeBackend{
		CurrentUserFunc: func(ctx context.Context, token string) (*domain.User, error) {
			return &domain.User{ID: "u1"}, nil
		},
		QuizHistoryFunc: func(ctx context.Context, token string) ([]domain.Submission, error) {
			return historyFixture(), nil
		},
	}
	s := NewStudent(be, &notify.Recorder{}, "tok")
	defer s.Close()
	require.NoError(t, s.Refresh())

	stats := s.Stats()
	assert.Equal(t, 2, stats.QuizzesTaken)
	assert.Equal(t, 68, stats.AverageScore, "mean of 80 and 55, rounded")
	assert.Equal(t, 3, stats.ImprovementAreas)
}

func TestStudent_StatsEmptyHistory(t *testing.T) {
	s := NewStudent(&fakeBackend{}, &notify.Recorder{}, "tok")
	defer s.Close()

	stats := s.Stats()
	assert.Equal(t, StudentStats{}, stats)
}

func TestStudent_RefreshFailureKeepsPreviousData(t *testing.T) {
	failHistory := false
	be := &fakeBackend{
		CurrentUserFunc: func(ctx context.Context, token string) (*domain.User, error) {
			return &domain.User{ID: "u1", Name: "Alice Johnson"}, nil
		},
		QuizHistoryFunc: func(ctx context.Context, token string) ([]domain.Submission, error) {
			if failHistory {
				return nil, errors.New("gateway timeout")
			}
			return historyFixture(), nil
		},
	}
	rec := &notify.Recorder{}
	s := NewStudent(be, rec, "tok")
	defer s.Close()

	require.NoError(t, s.Refresh())
	failHistory = true
	require.Error(t, s.Refresh())

	assert.Len(t, s.History(), 2, "stale data beats no data")
	assert.False(t, s.IsLoading())
	assert.NotEmpty(t, rec.Errors)
}

func TestStudent_CloseDiscardsInFlightRefresh(t *testing.T) {
	release := make(chan struct{})
	be := &fakeBackend{
		CurrentUserFunc: func(ctx context.Context, token string) (*domain.User, error) {
			return &domain.User{ID: "u1"}, nil
		},
		QuizHistoryFunc: func(ctx context.Context, token string) ([]domain.Submission, error) {
			<-release
			return historyFixture(), nil
		},
	}
	s := NewStudent(be, &notify.Recorder{}, "tok")

	done := make(chan error, 1)
	go func() { done <- s.Refresh() }()

	time.Sleep(20 * time.Millisecond)
	s.Close()
	close(release)

	require.NoError(t, <-done)
	assert.Empty(t, s.History(), "a discarded result mutates nothing")
}
