package course

import "gorm.io/gorm"

// QuizQuestion is one question of a QUIZ lesson
type QuizQuestion struct {
	gorm.Model
	LessonID   uint   `json:"lesson_id" gorm:"index;not null"`
	Prompt     string `json:"prompt"`
	OrderIndex int    `json:"order_index" gorm:"default:0"`

	Options []QuizOption `json:"options" gorm:"foreignKey:QuestionID"`
}

// QuizOption is a possible answer to a question
type QuizOption struct {
	gorm.Model
	QuestionID uint   `json:"question_id" gorm:"index;not null"`
	OptionText string `json:"option_text"`
	IsCorrect  bool   `json:"is_correct,omitempty" gorm:"default:false"`
	OrderIndex int    `json:"order_index" gorm:"default:0"`
}

// ScoreQuiz grades answers (question ID -> chosen option ID) as a percentage.
// Unanswered questions count as wrong.
func ScoreQuiz(questions []QuizQuestion, answers map[uint]uint) float64 {
	if len(questions) == 0 {
		return 0
	}
	correct := 0
	for _, q := range questions {
		chosen, ok := answers[q.ID]
		if !ok {
			continue
		}
		for _, o := range q.Options {
			if o.ID == chosen && o.IsCorrect {
				correct++
				break
			}
		}
	}
	return float64(correct) / float64(len(questions)) * 100
}

// HideAnswers strips correctness flags before questions are sent to learners.
func HideAnswers(questions []QuizQuestion) {
	for i := range questions {
		for j := range questions[i].Options {
			questions[i].Options[j].IsCorrect = false
		}
	}
}
