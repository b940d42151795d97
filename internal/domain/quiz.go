package domain

import "math"

// SkillType classifies the dimension a quiz question assesses.
type SkillType string

const (
	SkillCognitive   SkillType = "Cognitive"
	SkillEmotional   SkillType = "Emotional"
	SkillBehavioural SkillType = "Behavioural"
)

// SkillTypes lists all skill dimensions in presentation order.
var SkillTypes = []SkillType{SkillCognitive, SkillEmotional, SkillBehavioural}

// NormalizeSkillType folds the American "Behavioral" spelling, which the
// generation service sometimes returns, into the canonical form. Unknown
// values default to Cognitive as the backend does.
func NormalizeSkillType(s string) SkillType {
	switch SkillType(s) {
	case SkillCognitive, SkillEmotional, SkillBehavioural:
		return SkillType(s)
	}
	if s == "Behavioral" {
		return SkillBehavioural
	}
	return SkillCognitive
}

// LearningLevel is the difficulty tier driving quiz generation. It is always
// derived from the user's attempt count and never user-editable.
type LearningLevel string

const (
	LevelBeginner     LearningLevel = "beginner"
	LevelIntermediate LearningLevel = "intermediate"
	LevelAdvanced     LearningLevel = "advanced"
)

// LearningLevelForAttempts maps the lifetime attempt count to a level:
// 0-1 beginner, 2 intermediate, 3 and above advanced.
func LearningLevelForAttempts(attempts int) LearningLevel {
	switch {
	case attempts <= 1:
		return LevelBeginner
	case attempts == 2:
		return LevelIntermediate
	default:
		return LevelAdvanced
	}
}

// QuizConfig is the per-session generation configuration. It lives only for
// the request that generates questions and is never persisted.
type QuizConfig struct {
	Age             int
	Grade           string
	LearningLevel   LearningLevel
	SpecialNeedType string
	Interests       string
	Language        string
}

// Validate checks the user-editable configuration fields. Interests is the
// only required field; the level is derived elsewhere.
func (c *QuizConfig) Validate() ValidationErrors {
	var errs ValidationErrors
	if c.Interests == "" {
		errs = append(errs, NewMissingFieldError("interests"))
	}
	return errs
}

// Question is a generated quiz question. Supplied entirely by the external
// generation service and immutable once received.
type Question struct {
	ID                int
	Text              string
	SkillType         SkillType
	Difficulty        string
	Options           []string
	CorrectAnswer     string
	TimeLimitSec      int
	BehaviorIndicator string
}

// Answer records the chosen option for one question. Appended exactly once
// per question, in question order; immutable after quiz submission.
type Answer struct {
	QuestionID   int
	Answer       string
	TimeSpentSec int
}

// Score is the correct/total aggregate for a completed quiz.
type Score struct {
	Correct    int
	Total      int
	Percentage int
}

// CalculateScore counts correct answers against the full question set. Total
// is the number of questions, not answers, so unanswered questions count
// against the score.
func CalculateScore(questions []Question, answers []Answer) Score {
	byID := make(map[int]Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	correct := 0
	for _, a := range answers {
		if q, ok := byID[a.QuestionID]; ok && a.Answer == q.CorrectAnswer {
			correct++
		}
	}

	total := len(questions)
	percentage := 0
	if total > 0 {
		percentage = int(math.Round(float64(correct) / float64(total) * 100))
	}
	return Score{Correct: correct, Total: total, Percentage: percentage}
}
