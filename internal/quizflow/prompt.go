package quizflow

import (
	"fmt"

	"eduassess/internal/domain"
)

const promptTemplate = `You are an expert educational psychologist and special education content designer.
Create an adaptive quiz to assess a student's cognitive, emotional, and behavioural skills.
The quiz must be suitable for students with special educational needs and should be engaging, simple, and non-stressful.

Student Details:
- Age: %d
- Grade: %s
- Learning Level: %s
- Special Need Type: %s
- Interests: %s
- Preferred Language: %s

Quiz Design Requirements:

1. Cognitive Skill Assessment:
  - Include questions to test memory recall, problem-solving, attention span, logical reasoning
  - Use short and clear instructions
  - Record response time and accuracy

2. Emotional Skill Assessment:
  - Include scenario-based questions to evaluate emotional awareness, stress handling, frustration tolerance, mood recognition
  - Use options like emojis or simple choices

3. Behavioural Skill Assessment:
  - Include task-based questions to assess focus consistency, impulse control, task completion ability, reaction style

Quiz Format:
- Total Questions: 15
- Difficulty: Adaptive based on performance
- Question Types: Multiple-choice
- Provide clear, simple wording and supportive tone

Return ONLY a valid JSON array with this exact structure:
[
  {
    "id": 1,
    "question": "question text",
    "skillType": "Cognitive",
    "difficulty": "Easy",
    "options": ["option1", "option2", "option3", "option4"],
    "correctAnswer": "option1",
    "timeLimit": 30,
    "behaviorIndicator": "Tests memory recall"
  }
]`

// BuildPrompt renders the generation prompt for the given configuration.
// The backend forwards it opaquely to the question-generation model.
func BuildPrompt(cfg domain.QuizConfig) string {
	return fmt.Sprintf(promptTemplate,
		cfg.Age,
		cfg.Grade,
		cfg.LearningLevel,
		cfg.SpecialNeedType,
		cfg.Interests,
		cfg.Language,
	)
}
