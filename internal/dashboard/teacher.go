package dashboard

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"eduassess/internal/domain"
	"eduassess/internal/logger"
	"eduassess/internal/notify"
)

// StudentSummary is one row of the teacher's per-student performance table,
// aggregated from that student's submissions.
type StudentSummary struct {
	UserID       string
	Name         string
	Email        string
	Attempts     int
	AverageScore int
	LatestScore  int
	Pending      int
}

// Teacher is the teacher dashboard view-model. Each submission-level action
// is independently loading-gated so one in-flight call does not block the
// others; the backend remains the sole arbiter of final submission state.
type Teacher struct {
	mu       sync.Mutex
	backend  domain.Backend
	notifier notify.Notifier
	token    string

	loading     bool
	submissions []domain.Submission
	busy        map[string]bool
	bulkBusy    bool

	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

// NewTeacher creates the view-model. Call Refresh to populate it and Close
// when the view goes away.
func NewTeacher(backend domain.Backend, notifier notify.Notifier, token string) *Teacher {
	ctx, cancel := context.WithCancel(context.Background())
	return &Teacher{
		backend:  backend,
		notifier: notifier,
		token:    token,
		busy:     make(map[string]bool),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Refresh fetches all submissions. Local copies are advisory until the next
// refresh; actions never patch them beyond their own optimistic update.
func (t *Teacher) Refresh() error {
	t.mu.Lock()
	t.loading = true
	t.mu.Unlock()

	subs, err := t.backend.AllSubmissions(t.ctx, t.token)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	t.loading = false

	if err != nil {
		logger.Get().Warn("Teacher dashboard refresh failed", zap.Error(err))
		t.notifier.Error("Failed to load submissions")
		return err
	}

	t.submissions = subs
	return nil
}

// AddComment attaches teacher comments to one submission. The submission is
// busy for the duration; a concurrent action against the same submission is
// rejected rather than queued.
func (t *Teacher) AddComment(submissionID, comments string) error {
	if strings.TrimSpace(comments) == "" {
		t.notifier.Error("Please enter a comment")
		return domain.NewMissingFieldError("comments")
	}
	if err := t.acquire(submissionID); err != nil {
		return err
	}

	err := t.backend.AddTeacherComment(t.ctx, t.token, submissionID, comments)

	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.busy, submissionID)
	if t.closed {
		return nil
	}
	if err != nil {
		logger.Get().Warn("Failed to add teacher comment",
			zap.String("submission_id", submissionID), zap.Error(err))
		t.notifier.Error("Failed to add comment")
		return err
	}

	t.patch(submissionID, func(s *domain.Submission) {
		s.TeacherComments = comments
		s.Status = domain.StatusReviewed
	})
	t.notifier.Success("Comment added successfully")
	return nil
}

// SubmitOne finalizes a single submission, producing recommendations and an
// explanation for the student.
func (t *Teacher) SubmitOne(submissionID string) (*domain.ReviewOutcome, error) {
	if err := t.acquire(submissionID); err != nil {
		return nil, err
	}

	outcome, err := t.backend.SubmitReview(t.ctx, t.token, submissionID)

	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.busy, submissionID)
	if t.closed {
		return nil, nil
	}
	if err != nil {
		logger.Get().Warn("Failed to submit review",
			zap.String("submission_id", submissionID), zap.Error(err))
		t.notifier.Error("Failed to submit review")
		return nil, err
	}

	t.patch(submissionID, func(s *domain.Submission) {
		s.Status = domain.StatusCompleted
		s.Recommendations = outcome.Recommendations
		s.Explanation = outcome.Explanation
	})
	t.notifier.Success("Review submitted to student")
	return outcome, nil
}

// SubmitBulk finalizes the selected submissions. The selection is
// pre-filtered to those still pending locally; the returned outcome carries
// the server-confirmed processed count, which is what callers must report.
// Discrepancies reconcile on the next refresh, not by client-side patching.
func (t *Teacher) SubmitBulk(submissionIDs []string) (*domain.BulkReviewOutcome, error) {
	pending := t.pendingOf(submissionIDs)
	if len(pending) == 0 {
		t.notifier.Warning("No pending submissions selected")
		return &domain.BulkReviewOutcome{}, nil
	}

	t.mu.Lock()
	if t.bulkBusy {
		t.mu.Unlock()
		return nil, domain.NewQuizStateError("a bulk submit is already running")
	}
	t.bulkBusy = true
	t.mu.Unlock()

	outcome, err := t.backend.SubmitReviewBulk(t.ctx, t.token, pending)

	t.mu.Lock()
	defer t.mu.Unlock()
	t.bulkBusy = false
	if t.closed {
		return nil, nil
	}
	if err != nil {
		logger.Get().Warn("Bulk review submit failed", zap.Error(err))
		t.notifier.Error("Failed to submit reviews")
		return nil, err
	}

	t.notifier.Success(bulkSummary(outcome))
	return outcome, nil
}

// Submission returns the local copy of one submission for the detail view.
func (t *Teacher) Submission(submissionID string) (domain.Submission, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, s := range t.submissions {
		if s.ID == submissionID {
			return s, true
		}
	}
	return domain.Submission{}, false
}

// Submissions returns the last fetched submission list.
func (t *Teacher) Submissions() []domain.Submission {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]domain.Submission(nil), t.submissions...)
}

// Filter returns the submissions whose student name or email contains the
// search term, case-insensitively. An empty term matches everything.
func (t *Teacher) Filter(search string) []domain.Submission {
	t.mu.Lock()
	defer t.mu.Unlock()

	search = strings.ToLower(strings.TrimSpace(search))
	if search == "" {
		return append([]domain.Submission(nil), t.submissions...)
	}

	var out []domain.Submission
	for _, s := range t.submissions {
		if strings.Contains(strings.ToLower(s.UserName), search) ||
			strings.Contains(strings.ToLower(s.UserEmail), search) {
			out = append(out, s)
		}
	}
	return out
}

// StudentSummaries aggregates submissions per student, sorted by name.
func (t *Teacher) StudentSummaries() []StudentSummary {
	t.mu.Lock()
	defer t.mu.Unlock()

	byUser := make(map[string]*StudentSummary)
	sums := make(map[string]float64)
	for _, s := range t.submissions {
		sum, ok := byUser[s.UserID]
		if !ok {
			sum = &StudentSummary{UserID: s.UserID, Name: s.UserName, Email: s.UserEmail}
			byUser[s.UserID] = sum
		}
		sum.Attempts++
		sums[s.UserID] += s.Score
		// Lists arrive newest first, so the first score seen is the latest.
		if sum.Attempts == 1 {
			sum.LatestScore = int(math.Round(s.Score))
		}
		if s.IsPending() {
			sum.Pending++
		}
	}

	out := make([]StudentSummary, 0, len(byUser))
	for id, sum := range byUser {
		sum.AverageScore = int(math.Round(sums[id] / float64(sum.Attempts)))
		out = append(out, *sum)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ClassAverage is the rounded mean score across all submissions, 0 when
// there are none.
func (t *Teacher) ClassAverage() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.submissions) == 0 {
		return 0
	}
	var sum float64
	for _, s := range t.submissions {
		sum += s.Score
	}
	return int(math.Round(sum / float64(len(t.submissions))))
}

// PendingCount returns how many submissions still await review.
func (t *Teacher) PendingCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	n := 0
	for _, s := range t.submissions {
		if s.IsPending() {
			n++
		}
	}
	return n
}

// IsBusy reports whether an action against the given submission is in
// flight.
func (t *Teacher) IsBusy(submissionID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.busy[submissionID]
}

// IsLoading reports whether a refresh is in flight.
func (t *Teacher) IsLoading() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loading
}

// Close tears the view-model down; in-flight call results are discarded.
func (t *Teacher) Close() {
	t.mu.Lock()
	t.closed = true
	t.mu.Unlock()
	t.cancel()
}

func (t *Teacher) acquire(submissionID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.busy[submissionID] {
		return domain.NewQuizStateError("an action for this submission is already running")
	}
	t.busy[submissionID] = true
	return nil
}

// patch applies an optimistic local update; the next refresh is
// authoritative.
func (t *Teacher) patch(submissionID string, apply func(*domain.Submission)) {
	for i := range t.submissions {
		if t.submissions[i].ID == submissionID {
			apply(&t.submissions[i])
			return
		}
	}
}

func (t *Teacher) pendingOf(submissionIDs []string) []string {
	t.mu.Lock()
	defer t.mu.Unlock()

	pendingByID := make(map[string]bool, len(t.submissions))
	for _, s := range t.submissions {
		pendingByID[s.ID] = s.IsPending()
	}

	var out []string
	for _, id := range submissionIDs {
		if pendingByID[id] {
			out = append(out, id)
		}
	}
	return out
}

func bulkSummary(outcome *domain.BulkReviewOutcome) string {
	if outcome.Failed > 0 {
		return fmt.Sprintf("%d reviews submitted, %d failed", outcome.Processed, outcome.Failed)
	}
	return fmt.Sprintf("%d reviews submitted to students", outcome.Processed)
}
