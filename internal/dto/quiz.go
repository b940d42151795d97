package dto

import (
	"time"

	"eduassess/internal/domain"
)

// ConfigPayload is the quiz configuration as the backend expects it
type ConfigPayload struct {
	Age             int    `json:"age"`
	Grade           string `json:"grade"`
	LearningLevel   string `json:"learningLevel"`
	SpecialNeedType string `json:"specialNeedType"`
	Interests       string `json:"interests"`
	Language        string `json:"language"`
}

func ConfigPayloadFromDomain(c domain.QuizConfig) ConfigPayload {
	return ConfigPayload{
		Age:             c.Age,
		Grade:           c.Grade,
		LearningLevel:   string(c.LearningLevel),
		SpecialNeedType: c.SpecialNeedType,
		Interests:       c.Interests,
		Language:        c.Language,
	}
}

func (p ConfigPayload) ToDomain() domain.QuizConfig {
	return domain.QuizConfig{
		Age:             p.Age,
		Grade:           p.Grade,
		LearningLevel:   domain.LearningLevel(p.LearningLevel),
		SpecialNeedType: p.SpecialNeedType,
		Interests:       p.Interests,
		Language:        p.Language,
	}
}

// QuestionPayload is a generated question on the wire
type QuestionPayload struct {
	ID                int      `json:"id"`
	Question          string   `json:"question"`
	SkillType         string   `json:"skillType"`
	Difficulty        string   `json:"difficulty"`
	Options           []string `json:"options"`
	CorrectAnswer     string   `json:"correctAnswer"`
	TimeLimit         int      `json:"timeLimit"`
	BehaviorIndicator string   `json:"behaviorIndicator"`
}

func (p QuestionPayload) ToDomain() domain.Question {
	return domain.Question{
		ID:                p.ID,
		Text:              p.Question,
		SkillType:         domain.NormalizeSkillType(p.SkillType),
		Difficulty:        p.Difficulty,
		Options:           p.Options,
		CorrectAnswer:     p.CorrectAnswer,
		TimeLimitSec:      p.TimeLimit,
		BehaviorIndicator: p.BehaviorIndicator,
	}
}

func QuestionPayloadFromDomain(q domain.Question) QuestionPayload {
	return QuestionPayload{
		ID:                q.ID,
		Question:          q.Text,
		SkillType:         string(q.SkillType),
		Difficulty:        q.Difficulty,
		Options:           q.Options,
		CorrectAnswer:     q.CorrectAnswer,
		TimeLimit:         q.TimeLimitSec,
		BehaviorIndicator: q.BehaviorIndicator,
	}
}

// AnswerPayload is a recorded answer on the wire
type AnswerPayload struct {
	QuestionID int    `json:"questionId"`
	Answer     string `json:"answer"`
	TimeSpent  int    `json:"timeSpent"`
}

func AnswerPayloadFromDomain(a domain.Answer) AnswerPayload {
	return AnswerPayload{QuestionID: a.QuestionID, Answer: a.Answer, TimeSpent: a.TimeSpentSec}
}

func (p AnswerPayload) ToDomain() domain.Answer {
	return domain.Answer{QuestionID: p.QuestionID, Answer: p.Answer, TimeSpentSec: p.TimeSpent}
}

// GenerateQuizRequest is the body for POST /quiz/generate. The prompt is an
// opaque string the backend forwards to its AI service.
type GenerateQuizRequest struct {
	Prompt string        `json:"prompt"`
	Config ConfigPayload `json:"config"`
}

// GenerateQuizResponse is the body returned by POST /quiz/generate
type GenerateQuizResponse struct {
	Success   bool              `json:"success"`
	QuizID    string            `json:"quizId,omitempty"`
	Questions []QuestionPayload `json:"questions"`
}

// SubmitQuizRequest is the body for POST /quiz/submit
type SubmitQuizRequest struct {
	UserID    string            `json:"userId"`
	Answers   []AnswerPayload   `json:"answers"`
	Questions []QuestionPayload `json:"questions"`
}

// SkillTallyPayload mirrors one entry of the skillPerformance map
type SkillTallyPayload struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// SubmitQuizResponse is the body returned by POST /quiz/submit
type SubmitQuizResponse struct {
	Success          bool                         `json:"success"`
	SubmissionID     string                       `json:"submissionId"`
	Score            float64                      `json:"score"`
	CorrectAnswers   int                          `json:"correctAnswers"`
	TotalQuestions   int                          `json:"totalQuestions"`
	SkillPerformance map[string]SkillTallyPayload `json:"skillPerformance"`
	Strengths        []string                     `json:"strengths"`
	Weaknesses       []string                     `json:"weaknesses"`
	Status           string                       `json:"status"`
	Message          string                       `json:"message,omitempty"`
}

// AnswerReviewPayload is one entry of a submission's detailedResults
type AnswerReviewPayload struct {
	QuestionID    int    `json:"questionId"`
	Question      string `json:"question"`
	SkillType     string `json:"skillType"`
	UserAnswer    string `json:"userAnswer"`
	CorrectAnswer string `json:"correctAnswer"`
	IsCorrect     bool   `json:"isCorrect"`
	TimeSpent     int    `json:"timeSpent"`
}

// SubmissionPayload is a stored submission as the backend serializes it.
// The backend-driven shape (_id, recommendations, skillPerformance) is
// authoritative.
type SubmissionPayload struct {
	ID               string                       `json:"_id"`
	UserID           string                       `json:"userId"`
	UserName         string                       `json:"userName"`
	UserEmail        string                       `json:"userEmail"`
	SubmittedAt      string                       `json:"submittedAt"`
	Score            float64                      `json:"score"`
	CorrectAnswers   int                          `json:"correctAnswers"`
	TotalQuestions   int                          `json:"totalQuestions"`
	SkillPerformance map[string]SkillTallyPayload `json:"skillPerformance"`
	Strengths        []string                     `json:"strengths"`
	Weaknesses       []string                     `json:"weaknesses"`
	DetailedResults  []AnswerReviewPayload        `json:"detailedResults,omitempty"`
	Status           string                       `json:"status"`
	TeacherComments  string                       `json:"teacherComments"`
	Recommendations  []string                     `json:"recommendations"`
	Explanation      string                       `json:"explanation"`
	ReviewedBy       string                       `json:"reviewedBy,omitempty"`
	ReviewedAt       string                       `json:"reviewedAt,omitempty"`
	CompletedBy      string                       `json:"completedBy,omitempty"`
	CompletedAt      string                       `json:"completedAt,omitempty"`
}

// HistoryResponse is the body returned by GET /quiz/history
type HistoryResponse struct {
	Success bool                `json:"success"`
	Results []SubmissionPayload `json:"results"`
}

// AllSubmissionsResponse is the body returned by GET /quiz/all-submissions
type AllSubmissionsResponse struct {
	Success     bool                `json:"success"`
	Submissions []SubmissionPayload `json:"submissions"`
}

// TeacherCommentRequest is the body for POST /quiz/teacher-comment
type TeacherCommentRequest struct {
	SubmissionID string `json:"submissionId"`
	Comments     string `json:"comments"`
}

// BulkSubmitRequest is the body for POST /quiz/teacher-submit-bulk
type BulkSubmitRequest struct {
	SubmissionIDs []string `json:"submissionIds"`
}

// ReviewResponse is the body returned by POST /quiz/teacher-submit/{id}
type ReviewResponse struct {
	Success         bool     `json:"success"`
	Message         string   `json:"message,omitempty"`
	Recommendations []string `json:"recommendations"`
	Explanation     string   `json:"explanation"`
}

// BulkReviewResponse is the body returned by POST /quiz/teacher-submit-bulk
type BulkReviewResponse struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	Processed int    `json:"processed"`
	Failed    int    `json:"failed"`
}

// ErrorResponse is the backend's error body
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ToDomain converts a wire submission to the domain model. Timestamps arrive
// as ISO-8601 strings, with or without an offset.
func (p SubmissionPayload) ToDomain() domain.Submission {
	perf := make(map[domain.SkillType]domain.SkillTally, len(p.SkillPerformance))
	for skill, tally := range p.SkillPerformance {
		perf[domain.NormalizeSkillType(skill)] = domain.SkillTally{Correct: tally.Correct, Total: tally.Total}
	}

	var reviews []domain.AnswerReview
	for _, r := range p.DetailedResults {
		reviews = append(reviews, domain.AnswerReview{
			QuestionID:    r.QuestionID,
			Question:      r.Question,
			SkillType:     domain.NormalizeSkillType(r.SkillType),
			UserAnswer:    r.UserAnswer,
			CorrectAnswer: r.CorrectAnswer,
			IsCorrect:     r.IsCorrect,
			TimeSpentSec:  r.TimeSpent,
		})
	}

	return domain.Submission{
		ID:               p.ID,
		UserID:           p.UserID,
		UserName:         p.UserName,
		UserEmail:        p.UserEmail,
		SubmittedAt:      parseTimestamp(p.SubmittedAt),
		Score:            p.Score,
		CorrectAnswers:   p.CorrectAnswers,
		TotalQuestions:   p.TotalQuestions,
		SkillPerformance: perf,
		Strengths:        p.Strengths,
		Weaknesses:       p.Weaknesses,
		DetailedResults:  reviews,
		Status:           domain.ReviewStatus(p.Status),
		TeacherComments:  p.TeacherComments,
		Recommendations:  p.Recommendations,
		Explanation:      p.Explanation,
		ReviewedBy:       p.ReviewedBy,
		ReviewedAt:       parseOptionalTimestamp(p.ReviewedAt),
		CompletedBy:      p.CompletedBy,
		CompletedAt:      parseOptionalTimestamp(p.CompletedAt),
	}
}

// SubmissionPayloadFromDomain converts a domain submission to the wire shape.
func SubmissionPayloadFromDomain(s domain.Submission) SubmissionPayload {
	perf := make(map[string]SkillTallyPayload, len(s.SkillPerformance))
	for skill, tally := range s.SkillPerformance {
		perf[string(skill)] = SkillTallyPayload{Correct: tally.Correct, Total: tally.Total}
	}

	var reviews []AnswerReviewPayload
	for _, r := range s.DetailedResults {
		reviews = append(reviews, AnswerReviewPayload{
			QuestionID:    r.QuestionID,
			Question:      r.Question,
			SkillType:     string(r.SkillType),
			UserAnswer:    r.UserAnswer,
			CorrectAnswer: r.CorrectAnswer,
			IsCorrect:     r.IsCorrect,
			TimeSpent:     r.TimeSpentSec,
		})
	}

	return SubmissionPayload{
		ID:               s.ID,
		UserID:           s.UserID,
		UserName:         s.UserName,
		UserEmail:        s.UserEmail,
		SubmittedAt:      s.SubmittedAt.UTC().Format(time.RFC3339),
		Score:            s.Score,
		CorrectAnswers:   s.CorrectAnswers,
		TotalQuestions:   s.TotalQuestions,
		SkillPerformance: perf,
		Strengths:        s.Strengths,
		Weaknesses:       s.Weaknesses,
		DetailedResults:  reviews,
		Status:           string(s.Status),
		TeacherComments:  s.TeacherComments,
		Recommendations:  s.Recommendations,
		Explanation:      s.Explanation,
		ReviewedBy:       s.ReviewedBy,
		ReviewedAt:       formatOptionalTimestamp(s.ReviewedAt),
		CompletedBy:      s.CompletedBy,
		CompletedAt:      formatOptionalTimestamp(s.CompletedAt),
	}
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02T15:04:05",
}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func parseOptionalTimestamp(s string) *time.Time {
	if s == "" {
		return nil
	}
	t := parseTimestamp(s)
	if t.IsZero() {
		return nil
	}
	return &t
}

func formatOptionalTimestamp(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
