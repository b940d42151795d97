package stub

import (
	"context"
	"sync"

	"github.com/oklog/ulid/v2"

	"eduassess/internal/domain"
)

// Backend adapts a Store to the remote collaborator interface, issuing
// opaque session tokens on login. It is the drop-in replacement for the
// HTTP adapter in tests and local development.
type Backend struct {
	store *Store

	mu     sync.Mutex
	tokens map[string]string
}

var _ domain.Backend = (*Backend)(nil)

// NewBackend wraps the given store.
func NewBackend(store *Store) *Backend {
	return &Backend{
		store:  store,
		tokens: make(map[string]string),
	}
}

// Store exposes the underlying data for test setup.
func (b *Backend) Store() *Store {
	return b.store
}

func (b *Backend) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error) {
	user, err := b.store.Authenticate(creds.Email, creds.Password)
	if err != nil {
		return nil, err
	}
	return &domain.AuthResult{Token: b.issue(user.ID), User: user}, nil
}

func (b *Backend) Signup(ctx context.Context, input domain.SignupInput) (*domain.User, error) {
	return b.store.CreateUser(input)
}

func (b *Backend) CurrentUser(ctx context.Context, token string) (*domain.User, error) {
	userID, err := b.resolve(token)
	if err != nil {
		return nil, err
	}
	return b.store.UserByID(userID)
}

func (b *Backend) GenerateQuiz(ctx context.Context, token, prompt string, cfg domain.QuizConfig) ([]domain.Question, error) {
	if _, err := b.resolve(token); err != nil {
		return nil, err
	}
	return b.store.Generate(cfg), nil
}

func (b *Backend) SubmitQuiz(ctx context.Context, token string, submission domain.QuizSubmission) (*domain.SubmitReceipt, error) {
	userID, err := b.resolve(token)
	if err != nil {
		return nil, err
	}
	sub, err := b.store.Submit(userID, submission.Answers, submission.Questions)
	if err != nil {
		return nil, err
	}
	return &domain.SubmitReceipt{
		SubmissionID:     sub.ID,
		Score:            sub.Score,
		CorrectAnswers:   sub.CorrectAnswers,
		TotalQuestions:   sub.TotalQuestions,
		SkillPerformance: sub.SkillPerformance,
		Strengths:        sub.Strengths,
		Weaknesses:       sub.Weaknesses,
		Status:           sub.Status,
	}, nil
}

func (b *Backend) QuizHistory(ctx context.Context, token string) ([]domain.Submission, error) {
	userID, err := b.resolve(token)
	if err != nil {
		return nil, err
	}
	return b.store.HistoryFor(userID), nil
}

func (b *Backend) AllSubmissions(ctx context.Context, token string) ([]domain.Submission, error) {
	if _, err := b.requireTeacher(token); err != nil {
		return nil, err
	}
	return b.store.All(), nil
}

func (b *Backend) AddTeacherComment(ctx context.Context, token, submissionID, comments string) error {
	teacher, err := b.requireTeacher(token)
	if err != nil {
		return err
	}
	return b.store.Comment(submissionID, comments, teacher.Name)
}

func (b *Backend) SubmitReview(ctx context.Context, token, submissionID string) (*domain.ReviewOutcome, error) {
	teacher, err := b.requireTeacher(token)
	if err != nil {
		return nil, err
	}
	return b.store.Review(submissionID, teacher.Name)
}

func (b *Backend) SubmitReviewBulk(ctx context.Context, token string, submissionIDs []string) (*domain.BulkReviewOutcome, error) {
	teacher, err := b.requireTeacher(token)
	if err != nil {
		return nil, err
	}
	return b.store.ReviewBulk(submissionIDs, teacher.Name), nil
}

func (b *Backend) issue(userID string) string {
	token := ulid.Make().String()
	b.mu.Lock()
	b.tokens[token] = userID
	b.mu.Unlock()
	return token
}

func (b *Backend) resolve(token string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	userID, ok := b.tokens[token]
	if !ok {
		return "", domain.NewUnauthorizedError("Invalid or expired token")
	}
	return userID, nil
}

func (b *Backend) requireTeacher(token string) (*domain.User, error) {
	userID, err := b.resolve(token)
	if err != nil {
		return nil, err
	}
	user, err := b.store.UserByID(userID)
	if err != nil {
		return nil, err
	}
	if !user.Roles.Has(domain.RoleTeacher) {
		return nil, domain.NewForbiddenError("Access denied. Teachers only.")
	}
	return user, nil
}
