// Package quizflow drives the adaptive quiz lifecycle: configuration,
// question generation, the answer loop, and submission. One Flow instance
// belongs to one quiz session of one user and is torn down with Close.
package quizflow

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"eduassess/internal/domain"
	"eduassess/internal/logger"
	"eduassess/internal/notify"
)

// State is the quiz flow's lifecycle position.
type State int

const (
	NotStarted State = iota
	Configuring
	Generating
	InProgress
	GenerationFailed
	Completed
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not_started"
	case Configuring:
		return "configuring"
	case Generating:
		return "generating"
	case InProgress:
		return "in_progress"
	case GenerationFailed:
		return "generation_failed"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}

// Flow is the quiz state machine. All exported methods are safe for
// concurrent use; the elapsed-time ticker runs on its own goroutine.
type Flow struct {
	mu       sync.Mutex
	backend  domain.Backend
	notifier notify.Notifier
	token    string
	user     *domain.User

	state     State
	config    domain.QuizConfig
	questions []domain.Question
	answers   []domain.Answer
	current   int
	selected  string
	locked    bool
	elapsed   int
	receipt   *domain.SubmitReceipt

	ctx    context.Context
	cancel context.CancelFunc
	closed bool
}

// New creates a flow for the given user. The token authenticates the
// generation and submission calls. Call Close when the owning view goes
// away so in-flight results are discarded instead of applied.
func New(backend domain.Backend, notifier notify.Notifier, token string, user *domain.User) *Flow {
	ctx, cancel := context.WithCancel(context.Background())
	f := &Flow{
		backend:  backend,
		notifier: notifier,
		token:    token,
		user:     user,
		state:    NotStarted,
		ctx:      ctx,
		cancel:   cancel,
	}
	go f.tick()
	return f
}

// tick increments the advisory elapsed counter once per second while a
// question is on screen. It never blocks answering.
func (f *Flow) tick() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-f.ctx.Done():
			return
		case <-ticker.C:
			f.mu.Lock()
			if f.state == InProgress {
				f.elapsed++
			}
			f.mu.Unlock()
		}
	}
}

// Start opens the configuration step. It fails when the user has exhausted
// the lifetime attempt cap or the flow has already left NotStarted.
func (f *Flow) Start() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != NotStarted {
		return domain.NewQuizStateError("quiz already started")
	}
	if !f.user.CanStartQuiz() {
		return domain.NewAttemptLimitError(f.user.QuizAttempts)
	}

	f.config = domain.QuizConfig{
		Age:             f.user.Age,
		Grade:           "5",
		LearningLevel:   f.user.LearningLevel(),
		SpecialNeedType: "None",
		Interests:       "",
		Language:        "English",
	}
	if f.config.Age == 0 {
		f.config.Age = 10
	}
	f.state = Configuring
	return nil
}

// Config returns the pending configuration shown on the config screen.
func (f *Flow) Config() domain.QuizConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.config
}

// Generate validates the submitted configuration and runs the generation
// call. The learning level is always derived from the user's attempt count;
// any level in cfg is overwritten. The call blocks until the backend
// responds, a caller that needs to stay responsive runs it on a goroutine
// and relies on Close for teardown.
func (f *Flow) Generate(cfg domain.QuizConfig) error {
	f.mu.Lock()
	if f.state != Configuring {
		f.mu.Unlock()
		return domain.NewQuizStateError("quiz is not awaiting configuration")
	}

	cfg.LearningLevel = f.user.LearningLevel()
	if errs := cfg.Validate(); len(errs) > 0 {
		f.mu.Unlock()
		f.notifier.Error("Please enter your interests")
		return errs
	}

	f.config = cfg
	f.state = Generating
	token := f.token
	f.mu.Unlock()

	questions, err := f.backend.GenerateQuiz(f.ctx, token, BuildPrompt(cfg), cfg)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		// The owning view is gone; drop the result on the floor.
		return nil
	}
	if f.state != Generating {
		return nil
	}

	if err == nil && len(questions) == 0 {
		err = domain.NewGenerationFailedError(errors.New("generation returned no questions"))
	}
	if err != nil {
		logger.Get().Warn("Quiz generation failed", zap.Error(err))
		f.state = GenerationFailed
		f.notifier.Error("Failed to generate quiz. Please try again.")
		return err
	}

	f.questions = questions
	f.answers = f.answers[:0]
	f.current = 0
	f.selected = ""
	f.locked = false
	f.elapsed = 0
	f.state = InProgress
	f.notifier.Success("Quiz generated successfully!")
	return nil
}

// SelectAnswer records the choice for the current question and locks
// further selection. It returns whether the choice was correct. Answers are
// not revisable; a second call for the same question fails.
func (f *Flow) SelectAnswer(option string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != InProgress {
		return false, domain.NewQuizStateError("no question is active")
	}
	if f.locked {
		return false, domain.NewQuizStateError("answer already locked for this question")
	}

	q := f.questions[f.current]
	f.selected = option
	f.locked = true
	f.answers = append(f.answers, domain.Answer{
		QuestionID:   q.ID,
		Answer:       option,
		TimeSpentSec: f.elapsed,
	})
	return option == q.CorrectAnswer, nil
}

// Advance moves to the next question, or, on the last question, completes
// the quiz and submits the full answer set. Completion is optimistic: a
// failed submission is reported through the notifier but never rolls the
// state back, and the in-session answers are not re-offered for retry.
func (f *Flow) Advance() error {
	f.mu.Lock()
	if f.state != InProgress {
		f.mu.Unlock()
		return domain.NewQuizStateError("no question is active")
	}
	if !f.locked {
		f.mu.Unlock()
		return domain.NewQuizStateError("current question has no answer yet")
	}

	if f.current < len(f.questions)-1 {
		f.current++
		f.selected = ""
		f.locked = false
		f.elapsed = 0
		f.mu.Unlock()
		return nil
	}

	f.state = Completed
	submission := domain.QuizSubmission{
		UserID:    f.user.ID,
		Answers:   append([]domain.Answer(nil), f.answers...),
		Questions: append([]domain.Question(nil), f.questions...),
	}
	token := f.token
	f.mu.Unlock()

	receipt, err := f.backend.SubmitQuiz(f.ctx, token, submission)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	if err != nil {
		logger.Get().Warn("Quiz submission failed", zap.Error(err))
		f.notifier.Error("Failed to submit quiz results")
		return nil
	}
	f.receipt = receipt
	f.notifier.Success("Quiz submitted for teacher review!")
	return nil
}

// Reset returns to NotStarted with all in-memory quiz state cleared. It is
// only available from the completion and generation-failure screens.
func (f *Flow) Reset() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != Completed && f.state != GenerationFailed {
		return domain.NewQuizStateError("quiz is still running")
	}

	f.state = NotStarted
	f.questions = nil
	f.answers = nil
	f.current = 0
	f.selected = ""
	f.locked = false
	f.elapsed = 0
	f.receipt = nil
	return nil
}

// Close tears the flow down. In-flight generation or submission calls are
// cancelled, and any result that still arrives is discarded. Close is
// idempotent.
func (f *Flow) Close() {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	f.cancel()
}

// State returns the current lifecycle position.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// CurrentQuestion returns the active question and its zero-based index.
// The second value is false outside InProgress.
func (f *Flow) CurrentQuestion() (domain.Question, int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != InProgress {
		return domain.Question{}, 0, false
	}
	return f.questions[f.current], f.current, true
}

// Questions returns a copy of the generated question list.
func (f *Flow) Questions() []domain.Question {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Question(nil), f.questions...)
}

// Answers returns a copy of the recorded answers so far.
func (f *Flow) Answers() []domain.Answer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Answer(nil), f.answers...)
}

// Selected returns the locked choice for the current question, if any.
func (f *Flow) Selected() (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.selected, f.locked
}

// Elapsed returns the advisory seconds spent on the current question.
func (f *Flow) Elapsed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.elapsed
}

// Receipt returns the backend's submission acknowledgement, or nil when the
// quiz has not been submitted or the submission call failed.
func (f *Flow) Receipt() *domain.SubmitReceipt {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.receipt
}
