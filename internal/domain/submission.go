package domain

import "time"

// ReviewStatus is the three-stage teacher-review lifecycle of a submission.
type ReviewStatus string

const (
	StatusPendingReview ReviewStatus = "pending_review"
	StatusReviewed      ReviewStatus = "reviewed"
	StatusCompleted     ReviewStatus = "completed"
)

// SkillTally is the correct/total count for one skill dimension.
type SkillTally struct {
	Correct int
	Total   int
}

// AnswerReview is the per-question breakdown stored with a submission.
type AnswerReview struct {
	QuestionID    int
	Question      string
	SkillType     SkillType
	UserAnswer    string
	CorrectAnswer string
	IsCorrect     bool
	TimeSpentSec  int
}

// Submission is a graded quiz owned by the remote backend. The client reads
// and displays it; only the teacher comment and review actions mutate it, and
// they do so remotely.
type Submission struct {
	ID               string
	UserID           string
	UserName         string
	UserEmail        string
	SubmittedAt      time.Time
	Score            float64
	CorrectAnswers   int
	TotalQuestions   int
	SkillPerformance map[SkillType]SkillTally
	Strengths        []string
	Weaknesses       []string
	DetailedResults  []AnswerReview
	Status           ReviewStatus
	TeacherComments  string
	Recommendations  []string
	Explanation      string
	ReviewedBy       string
	ReviewedAt       *time.Time
	CompletedBy      string
	CompletedAt      *time.Time
}

// IsPending reports whether the submission still awaits teacher action.
func (s *Submission) IsPending() bool {
	return s.Status == StatusPendingReview
}

// Strength and weakness cutoffs used when grading a submission, matching the
// platform backend: a skill is a strength at 70% and above, a weakness
// below 50%.
const (
	strengthCutoff = 70.0
	weaknessCutoff = 50.0
)

// GradeSubmission computes the score, per-skill breakdown, per-question
// reviews, and strength/weakness lists for a full answer set. Mirrors the
// grading the backend applies on submit so the stub collaborator and local
// result views agree with the remote ones.
func GradeSubmission(questions []Question, answers []Answer) (Score, map[SkillType]SkillTally, []AnswerReview, []string, []string) {
	byID := make(map[int]Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	perf := map[SkillType]SkillTally{
		SkillCognitive:   {},
		SkillEmotional:   {},
		SkillBehavioural: {},
	}
	var reviews []AnswerReview
	correct := 0

	for _, a := range answers {
		q, ok := byID[a.QuestionID]
		if !ok {
			continue
		}
		skill := NormalizeSkillType(string(q.SkillType))
		isCorrect := a.Answer == q.CorrectAnswer

		tally := perf[skill]
		tally.Total++
		if isCorrect {
			tally.Correct++
			correct++
		}
		perf[skill] = tally

		reviews = append(reviews, AnswerReview{
			QuestionID:    q.ID,
			Question:      q.Text,
			SkillType:     skill,
			UserAnswer:    a.Answer,
			CorrectAnswer: q.CorrectAnswer,
			IsCorrect:     isCorrect,
			TimeSpentSec:  a.TimeSpentSec,
		})
	}

	var strengths, weaknesses []string
	for _, skill := range SkillTypes {
		tally := perf[skill]
		if tally.Total == 0 {
			continue
		}
		pct := float64(tally.Correct) / float64(tally.Total) * 100
		if pct >= strengthCutoff {
			strengths = append(strengths, string(skill))
		} else if pct < weaknessCutoff {
			weaknesses = append(weaknesses, string(skill))
		}
	}

	score := CalculateScore(questions, answers)
	return score, perf, reviews, strengths, weaknesses
}
