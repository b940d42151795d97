// Package stub is an in-memory stand-in for the remote platform backend.
// It implements the same collaborator interface as the HTTP adapter so
// tests and the dev server can run without a deployment.
package stub

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"eduassess/internal/domain"
)

// Store holds the in-memory users and submissions. All methods are safe for
// concurrent use.
type Store struct {
	mu          sync.Mutex
	users       map[string]*domain.User
	byEmail     map[string]string
	passwords   map[string]string
	submissions map[string]*domain.Submission
	now         func() time.Time
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		users:       make(map[string]*domain.User),
		byEmail:     make(map[string]string),
		passwords:   make(map[string]string),
		submissions: make(map[string]*domain.Submission),
		now:         time.Now,
	}
}

// NewSeededStore creates a store pre-loaded with the demo roster: two
// students and one teacher, password "password" for all of them.
func NewSeededStore() *Store {
	s := NewStore()
	seed := []struct {
		user     domain.User
		password string
	}{
		{
			user: domain.User{
				Name:   "Alice Johnson",
				Email:  "alice@college.edu",
				Roles:  domain.NewRoleSet(domain.RoleStudent),
				RollNo: "CS001",
				Class:  "10A",
				Age:    16,
			},
			password: "password",
		},
		{
			user: domain.User{
				Name:   "Bob Smith",
				Email:  "bob@college.edu",
				Roles:  domain.NewRoleSet(domain.RoleStudent),
				RollNo: "CS002",
				Class:  "10A",
				Age:    15,
			},
			password: "password",
		},
		{
			user: domain.User{
				Name:  "Dr. Sarah Wilson",
				Email: "sarah@college.edu",
				Roles: domain.NewRoleSet(domain.RoleTeacher),
				Age:   35,
			},
			password: "password",
		},
	}
	for _, entry := range seed {
		u := entry.user
		u.ID = ulid.Make().String()
		s.users[u.ID] = &u
		s.byEmail[u.Email] = u.ID
		s.passwords[u.Email] = entry.password
	}
	return s
}

// Authenticate checks the email/password pair and returns the user.
func (s *Store) Authenticate(email, password string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.byEmail[email]
	if !ok || s.passwords[email] != password {
		return nil, domain.NewUnauthorizedError("Invalid email or password")
	}
	return s.copyUser(id), nil
}

// CreateUser registers a new student account.
func (s *Store) CreateUser(input domain.SignupInput) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[input.Email]; exists {
		return nil, domain.NewError(domain.CodeValidation, "Email already registered", nil)
	}

	u := &domain.User{
		ID:     ulid.Make().String(),
		Name:   input.Name,
		Email:  input.Email,
		Roles:  domain.NewRoleSet(domain.RoleStudent),
		RollNo: input.RollNo,
		Class:  input.Department,
		Age:    input.Age,
	}
	s.users[u.ID] = u
	s.byEmail[u.Email] = u.ID
	s.passwords[u.Email] = input.Password
	cp := *u
	return &cp, nil
}

// UserByID returns a copy of the user record.
func (s *Store) UserByID(id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return nil, domain.NewNotFoundError("user")
	}
	return s.copyUser(id), nil
}

// Generate produces a deterministic question set for the configuration,
// cycling through the three skill dimensions.
func (s *Store) Generate(cfg domain.QuizConfig) []domain.Question {
	interest := strings.TrimSpace(cfg.Interests)
	if interest == "" {
		interest = "everyday life"
	}

	questions := make([]domain.Question, 0, len(questionBank))
	for i, tpl := range questionBank {
		questions = append(questions, domain.Question{
			ID:                i + 1,
			Text:              fmt.Sprintf(tpl.text, interest),
			SkillType:         tpl.skill,
			Difficulty:        difficultyFor(cfg.LearningLevel),
			Options:           tpl.options,
			CorrectAnswer:     tpl.correct,
			TimeLimitSec:      30,
			BehaviorIndicator: tpl.indicator,
		})
	}
	return questions
}

// Submit grades the quiz, stores the submission, and bumps the student's
// attempt count.
func (s *Store) Submit(userID string, answers []domain.Answer, questions []domain.Question) (*domain.Submission, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, domain.NewNotFoundError("user")
	}

	score, perf, details, strengths, weaknesses := domain.GradeSubmission(questions, answers)
	sub := &domain.Submission{
		ID:               ulid.Make().String(),
		UserID:           user.ID,
		UserName:         user.Name,
		UserEmail:        user.Email,
		SubmittedAt:      s.now(),
		Score:            float64(score.Percentage),
		CorrectAnswers:   score.Correct,
		TotalQuestions:   score.Total,
		SkillPerformance: perf,
		Strengths:        strengths,
		Weaknesses:       weaknesses,
		DetailedResults:  details,
		Status:           domain.StatusPendingReview,
	}
	s.submissions[sub.ID] = sub
	user.QuizAttempts++

	cp := *sub
	return &cp, nil
}

// HistoryFor returns the user's ten most recent submissions, newest first.
func (s *Store) HistoryFor(userID string) []domain.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []domain.Submission
	for _, sub := range s.submissions {
		if sub.UserID == userID {
			out = append(out, *sub)
		}
	}
	sortNewestFirst(out)
	if len(out) > 10 {
		out = out[:10]
	}
	return out
}

// All returns every submission, newest first.
func (s *Store) All() []domain.Submission {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Submission, 0, len(s.submissions))
	for _, sub := range s.submissions {
		out = append(out, *sub)
	}
	sortNewestFirst(out)
	return out
}

// Comment attaches teacher comments and marks the submission reviewed.
func (s *Store) Comment(submissionID, comments, teacherName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sub, ok := s.submissions[submissionID]
	if !ok {
		return domain.NewNotFoundError("submission")
	}
	now := s.now()
	sub.TeacherComments = comments
	sub.ReviewedBy = teacherName
	sub.ReviewedAt = &now
	sub.Status = domain.StatusReviewed
	return nil
}

// Review finalizes one submission with generated recommendations and marks
// it completed.
func (s *Store) Review(submissionID, teacherName string) (*domain.ReviewOutcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reviewLocked(submissionID, teacherName)
}

// ReviewBulk finalizes many submissions, counting per-item outcomes.
func (s *Store) ReviewBulk(submissionIDs []string, teacherName string) *domain.BulkReviewOutcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	outcome := &domain.BulkReviewOutcome{}
	for _, id := range submissionIDs {
		if _, err := s.reviewLocked(id, teacherName); err != nil {
			outcome.Failed++
			continue
		}
		outcome.Processed++
	}
	return outcome
}

func (s *Store) reviewLocked(submissionID, teacherName string) (*domain.ReviewOutcome, error) {
	sub, ok := s.submissions[submissionID]
	if !ok {
		return nil, domain.NewNotFoundError("submission")
	}

	outcome := &domain.ReviewOutcome{
		Recommendations: recommendationsFor(sub),
		Explanation:     explanationFor(sub),
	}
	now := s.now()
	sub.Recommendations = outcome.Recommendations
	sub.Explanation = outcome.Explanation
	sub.Status = domain.StatusCompleted
	sub.CompletedBy = teacherName
	sub.CompletedAt = &now
	return outcome, nil
}

func (s *Store) copyUser(id string) *domain.User {
	cp := *s.users[id]
	return &cp
}

func sortNewestFirst(subs []domain.Submission) {
	sort.Slice(subs, func(i, j int) bool {
		if subs[i].SubmittedAt.Equal(subs[j].SubmittedAt) {
			return subs[i].ID > subs[j].ID
		}
		return subs[i].SubmittedAt.After(subs[j].SubmittedAt)
	})
}

func recommendationsFor(sub *domain.Submission) []string {
	recs := []string{"Practice regularly", "Focus on weaker areas"}
	for _, w := range sub.Weaknesses {
		recs = append(recs, fmt.Sprintf("Spend extra time on %s exercises", strings.ToLower(w)))
	}
	return recs
}

func explanationFor(sub *domain.Submission) string {
	switch {
	case sub.Score >= 70:
		return fmt.Sprintf("Strong overall performance at %.0f%%. Keep reinforcing the areas that are already working.", sub.Score)
	case sub.Score >= 50:
		return fmt.Sprintf("Steady performance at %.0f%% with clear room to grow in the flagged skill areas.", sub.Score)
	default:
		return fmt.Sprintf("Performance at %.0f%% suggests the fundamentals need revisiting. Continue practicing to improve your skills.", sub.Score)
	}
}

func difficultyFor(level domain.LearningLevel) string {
	switch level {
	case domain.LevelAdvanced:
		return "Hard"
	case domain.LevelIntermediate:
		return "Medium"
	default:
		return "Easy"
	}
}

type questionTemplate struct {
	text      string
	skill     domain.SkillType
	options   []string
	correct   string
	indicator string
}

// questionBank cycles Cognitive, Emotional, Behavioural so every skill
// dimension is exercised. The %s slot carries the student's interests.
var questionBank = []questionTemplate{
	{
		text:      "If you have 3 books about %s and get 2 more, how many do you have?",
		skill:     domain.SkillCognitive,
		options:   []string{"4", "5", "6", "7"},
		correct:   "5",
		indicator: "Tests memory recall",
	},
	{
		text:      "A friend looks sad after losing a game about %s. What do you do?",
		skill:     domain.SkillEmotional,
		options:   []string{"Laugh", "Comfort them", "Walk away", "Ignore them"},
		correct:   "Comfort them",
		indicator: "Tests emotional awareness",
	},
	{
		text:      "You are halfway through a task about %s and it gets hard. What next?",
		skill:     domain.SkillBehavioural,
		options:   []string{"Give up", "Take a short break and continue", "Start something else", "Rush to finish"},
		correct:   "Take a short break and continue",
		indicator: "Tests task completion ability",
	},
	{
		text:      "Which comes next in the pattern 2, 4, 6 when counting items about %s?",
		skill:     domain.SkillCognitive,
		options:   []string{"7", "8", "9", "10"},
		correct:   "8",
		indicator: "Tests logical reasoning",
	},
	{
		text:      "You feel frustrated while practicing %s. What is the best first step?",
		skill:     domain.SkillEmotional,
		options:   []string{"Shout", "Take a deep breath", "Quit forever", "Blame someone"},
		correct:   "Take a deep breath",
		indicator: "Tests frustration tolerance",
	},
	{
		text:      "During a lesson about %s, a classmate keeps talking to you. What do you do?",
		skill:     domain.SkillBehavioural,
		options:   []string{"Talk back", "Politely ask to chat later", "Leave the room", "Get angry"},
		correct:   "Politely ask to chat later",
		indicator: "Tests impulse control",
	},
	{
		text:      "You read a short story about %s. What helps you remember it best?",
		skill:     domain.SkillCognitive,
		options:   []string{"Skipping pages", "Retelling it in your own words", "Reading faster", "Closing the book"},
		correct:   "Retelling it in your own words",
		indicator: "Tests attention span",
	},
	{
		text:      "How would you feel if you won a prize for a project about %s?",
		skill:     domain.SkillEmotional,
		options:   []string{"Happy", "Angry", "Scared", "Bored"},
		correct:   "Happy",
		indicator: "Tests mood recognition",
	},
	{
		text:      "You planned to finish an activity about %s today. It is almost bedtime. What do you do?",
		skill:     domain.SkillBehavioural,
		options:   []string{"Stay up all night", "Finish what you can and plan the rest for tomorrow", "Throw it away", "Pretend it is done"},
		correct:   "Finish what you can and plan the rest for tomorrow",
		indicator: "Tests reaction style",
	},
}
