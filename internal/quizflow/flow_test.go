package quizflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"eduassess/internal/domain"
	"eduassess/internal/notify"
)

type fakeBackend struct {
	domain.Backend
	GenerateQuizFunc func(ctx context.Context, token, prompt string, cfg domain.QuizConfig) ([]domain.Question, error)
	SubmitQuizFunc   func(ctx context.Context, token string, sub domain.QuizSubmission) (*domain.SubmitReceipt, error)
}

func (f *fakeBackend) GenerateQuiz(ctx context.Context, token, prompt string, cfg domain.QuizConfig) ([]domain.Question, error) {
	return f.GenerateQuizFunc(ctx, token, prompt, cfg)
}

func (f *fakeBackend) SubmitQuiz(ctx context.Context, token string, sub domain.QuizSubmission) (*domain.SubmitReceipt, error) {
	return f.SubmitQuizFunc(ctx, token, sub)
}

func sampleQuestions(n int) []domain.Question {
	qs := make([]domain.Question, 0, n)
	for i := 1; i <= n; i++ {
		qs = append(qs, domain.Question{
			ID:            i,
			Text:          fmt.Sprintf("Question %d", i),
			SkillType:     domain.SkillCognitive,
			Difficulty:    "Easy",
			Options:       []string{"A", "B", "C", "D"},
			CorrectAnswer: "A",
			TimeLimitSec:  30,
		})
	}
	return qs
}

func student(attempts int) *domain.User {
	return &domain.User{
		ID:           "u1",
		Name:         "Alice Johnson",
		Roles:        domain.NewRoleSet(domain.RoleStudent),
		Age:          12,
		QuizAttempts: attempts,
	}
}

func generatingBackend(qs []domain.Question, genErr error) *fakeBackend {
	return &fakeBackend{
		GenerateQuizFunc: func(ctx context.Context, token, prompt string, cfg domain.QuizConfig) ([]domain.Question, error) {
			return qs, genErr
		},
		SubmitQuizFunc: func(ctx context.Context, token string, sub domain.QuizSubmission) (*domain.SubmitReceipt, error) {
			return &domain.SubmitReceipt{SubmissionID: "s1", Status: domain.StatusPendingReview}, nil
		},
	}
}

func startedFlow(t *testing.T, be domain.Backend, user *domain.User) (*Flow, *notify.Recorder) {
	t.Helper()
	rec := &notify.Recorder{}
	f := New(be, rec, "tok", user)
	t.Cleanup(f.Close)
	require.NoError(t, f.Start())
	return f, rec
}

func TestFlow_StartBlockedAtAttemptLimit(t *testing.T) {
	f := New(generatingBackend(nil, nil), &notify.Recorder{}, "tok", student(3))
	defer f.Close()

	err := f.Start()
	require.Error(t, err)
	var derr *domain.DomainError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, domain.CodeAttemptLimit, derr.Code)
	assert.Equal(t, NotStarted, f.State())
}

func TestFlow_StartSeedsDerivedConfig(t *testing.T) {
	f, _ := startedFlow(t, generatingBackend(nil, nil), student(2))

	assert.Equal(t, Configuring, f.State())
	cfg := f.Config()
	assert.Equal(t, 12, cfg.Age)
	assert.Equal(t, domain.LevelIntermediate, cfg.LearningLevel)
	assert.Equal(t, "English", cfg.Language)
}

func TestFlow_GenerateRequiresInterests(t *testing.T) {
	f, rec := startedFlow(t, generatingBackend(sampleQuestions(3), nil), student(0))

	cfg := f.Config()
	cfg.Interests = ""
	err := f.Generate(cfg)
	require.Error(t, err)
	assert.Equal(t, Configuring, f.State(), "validation failure stays on the config screen")
	assert.NotEmpty(t, rec.Errors)
}

func TestFlow_GenerateOverridesLearningLevel(t *testing.T) {
	var seen domain.QuizConfig
	be := &fakeBackend{
		GenerateQuizFunc: func(ctx context.Context, token, prompt string, cfg domain.QuizConfig) ([]domain.Question, error) {
			seen = cfg
			return sampleQuestions(2), nil
		},
	}
	f, _ := startedFlow(t, be, student(0))

	cfg := f.Config()
	cfg.Interests = "dinosaurs"
	cfg.LearningLevel = domain.LevelAdvanced
	require.NoError(t, f.Generate(cfg))

	assert.Equal(t, domain.LevelBeginner, seen.LearningLevel, "level is derived, never user-editable")
	assert.Equal(t, InProgress, f.State())
}

func TestFlow_GeneratePromptCarriesStudentDetails(t *testing.T) {
	var seenPrompt string
	be := &fakeBackend{
		GenerateQuizFunc: func(ctx context.Context, token, prompt string, cfg domain.QuizConfig) ([]domain.Question, error) {
			seenPrompt = prompt
			return sampleQuestions(1), nil
		},
	}
	f, _ := startedFlow(t, be, student(0))

	cfg := f.Config()
	cfg.Interests = "space travel"
	require.NoError(t, f.Generate(cfg))

	assert.True(t, strings.HasPrefix(seenPrompt, "You are an expert educational psychologist"))
	assert.Contains(t, seenPrompt, "- Interests: space travel")
	assert.Contains(t, seenPrompt, "- Learning Level: beginner")
	assert.Contains(t, seenPrompt, "Total Questions: 15")
}

func TestFlow_GenerationFailureAndReset(t *testing.T) {
	f, rec := startedFlow(t, generatingBackend(nil, errors.New("upstream unavailable")), student(0))

	cfg := f.Config()
	cfg.Interests = "music"
	err := f.Generate(cfg)
	require.Error(t, err)
	assert.Equal(t, GenerationFailed, f.State())
	assert.NotEmpty(t, rec.Errors)

	require.NoError(t, f.Reset())
	assert.Equal(t, NotStarted, f.State())
	assert.Empty(t, f.Questions())
	assert.Empty(t, f.Answers())
}

func TestFlow_EmptyQuestionListIsGenerationFailure(t *testing.T) {
	f, _ := startedFlow(t, generatingBackend([]domain.Question{}, nil), student(0))

	cfg := f.Config()
	cfg.Interests = "music"
	err := f.Generate(cfg)
	require.Error(t, err)
	assert.Equal(t, GenerationFailed, f.State())
}

func TestFlow_AnswerLoopRecordsOneAnswerPerQuestion(t *testing.T) {
	questions := sampleQuestions(3)
	f, rec := startedFlow(t, generatingBackend(questions, nil), student(0))

	cfg := f.Config()
	cfg.Interests = "drawing"
	require.NoError(t, f.Generate(cfg))

	for i := range questions {
		q, idx, ok := f.CurrentQuestion()
		require.True(t, ok)
		assert.Equal(t, i, idx)

		// Answer before selection is a state error.
		err := f.Advance()
		require.Error(t, err)

		correct, err := f.SelectAnswer("A")
		require.NoError(t, err)
		assert.True(t, correct)
		assert.Equal(t, q.CorrectAnswer, "A")

		// Locked: a second selection must be rejected.
		_, err = f.SelectAnswer("B")
		require.Error(t, err)

		require.NoError(t, f.Advance())
	}

	assert.Equal(t, Completed, f.State())
	answers := f.Answers()
	require.Len(t, answers, len(questions))
	for i, a := range answers {
		assert.Equal(t, questions[i].ID, a.QuestionID)
	}
	require.NotNil(t, f.Receipt())
	assert.Equal(t, "s1", f.Receipt().SubmissionID)
	assert.NotEmpty(t, rec.Successes)
}

func TestFlow_SubmissionFailureIsOptimistic(t *testing.T) {
	be := generatingBackend(sampleQuestions(1), nil)
	be.SubmitQuizFunc = func(ctx context.Context, token string, sub domain.QuizSubmission) (*domain.SubmitReceipt, error) {
		return nil, errors.New("connection reset")
	}
	f, rec := startedFlow(t, be, student(0))

	cfg := f.Config()
	cfg.Interests = "chess"
	require.NoError(t, f.Generate(cfg))

	_, err := f.SelectAnswer("B")
	require.NoError(t, err)
	require.NoError(t, f.Advance(), "submission failure never rolls the state back")

	assert.Equal(t, Completed, f.State())
	assert.Nil(t, f.Receipt())
	assert.NotEmpty(t, rec.Errors)
}

func TestFlow_ResetOnlyFromTerminalStates(t *testing.T) {
	f, _ := startedFlow(t, generatingBackend(sampleQuestions(2), nil), student(0))

	require.Error(t, f.Reset(), "no reset from the config screen")

	cfg := f.Config()
	cfg.Interests = "robots"
	require.NoError(t, f.Generate(cfg))
	require.Error(t, f.Reset(), "no reset mid-quiz")
}

func TestFlow_CloseDiscardsInFlightGeneration(t *testing.T) {
	release := make(chan struct{})
	done := make(chan error, 1)
	be := &fakeBackend{
		GenerateQuizFunc: func(ctx context.Context, token, prompt string, cfg domain.QuizConfig) ([]domain.Question, error) {
			<-release
			return sampleQuestions(5), nil
		},
	}
	rec := &notify.Recorder{}
	f := New(be, rec, "tok", student(0))
	require.NoError(t, f.Start())

	cfg := f.Config()
	cfg.Interests = "painting"
	go func() { done <- f.Generate(cfg) }()

	// Let the generation call get in flight, then tear the flow down.
	time.Sleep(20 * time.Millisecond)
	f.Close()
	close(release)

	require.NoError(t, <-done)
	assert.Equal(t, Generating, f.State(), "a discarded result mutates nothing")
	assert.Empty(t, f.Questions())
	assert.Empty(t, rec.Successes)
}

func TestFlow_ElapsedTimerResetsOnAdvance(t *testing.T) {
	f, _ := startedFlow(t, generatingBackend(sampleQuestions(2), nil), student(0))

	cfg := f.Config()
	cfg.Interests = "reading"
	require.NoError(t, f.Generate(cfg))

	_, err := f.SelectAnswer("A")
	require.NoError(t, err)
	require.NoError(t, f.Advance())

	assert.Equal(t, 0, f.Elapsed(), "advance resets the advisory counter")
}
