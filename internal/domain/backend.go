package domain

import "context"

// Credentials are the login form fields. Validated client-side before any
// network call.
type Credentials struct {
	Email      string
	Password   string
	Department string
}

// SignupInput are the signup form fields.
type SignupInput struct {
	Name       string
	Email      string
	Password   string
	Department string
	RollNo     string
	Age        int
}

// AuthResult is what a successful login yields: an opaque bearer token and
// the user record the backend attached to it. The token is never parsed or
// validated client-side.
type AuthResult struct {
	Token string
	User  *User
}

// QuizSubmission is the full answer set shipped to the backend when the quiz
// completes.
type QuizSubmission struct {
	UserID    string
	Answers   []Answer
	Questions []Question
}

// SubmitReceipt is the backend's acknowledgement of a quiz submission.
type SubmitReceipt struct {
	SubmissionID     string
	Score            float64
	CorrectAnswers   int
	TotalQuestions   int
	SkillPerformance map[SkillType]SkillTally
	Strengths        []string
	Weaknesses       []string
	Status           ReviewStatus
}

// ReviewOutcome is the result of a teacher finalizing a single submission.
type ReviewOutcome struct {
	Recommendations []string
	Explanation     string
}

// BulkReviewOutcome reports the server-confirmed counts for a bulk review.
// Processed is authoritative; the client-selected count is not.
type BulkReviewOutcome struct {
	Processed int
	Failed    int
}

// Backend is the remote platform API. Every implementation is an opaque
// network collaborator: callers treat any error as a uniform operation
// failure and trust response data as-is.
type Backend interface {
	Login(ctx context.Context, creds Credentials) (*AuthResult, error)
	Signup(ctx context.Context, input SignupInput) (*User, error)
	CurrentUser(ctx context.Context, token string) (*User, error)

	GenerateQuiz(ctx context.Context, token string, prompt string, cfg QuizConfig) ([]Question, error)
	SubmitQuiz(ctx context.Context, token string, submission QuizSubmission) (*SubmitReceipt, error)
	QuizHistory(ctx context.Context, token string) ([]Submission, error)

	AllSubmissions(ctx context.Context, token string) ([]Submission, error)
	AddTeacherComment(ctx context.Context, token, submissionID, comments string) error
	SubmitReview(ctx context.Context, token, submissionID string) (*ReviewOutcome, error)
	SubmitReviewBulk(ctx context.Context, token string, submissionIDs []string) (*BulkReviewOutcome, error)
}
