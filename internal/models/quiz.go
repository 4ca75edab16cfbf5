package models

import "time"

// QuestionType selects how an answer is compared.
type QuestionType string

const (
	QuestionTypeMCQ         QuestionType = "MCQ"
	QuestionTypeShortAnswer QuestionType = "ShortAnswer"
)

// Question is one graded item in a quiz.
type Question struct {
	ID            string       `json:"id"`
	Question      string       `json:"question" validate:"required"`
	Type          QuestionType `json:"type" validate:"required,oneof=MCQ ShortAnswer"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer string       `json:"correctAnswer,omitempty" validate:"required"`
	Points        int          `json:"points" validate:"gt=0"`
}

// Quiz is an ordered list of questions with a pass mark. AttemptsAllowed is informational.
type Quiz struct {
	ID              string    `db:"id" json:"id"`
	Title           string    `db:"title" json:"title"`
	Description     string    `db:"description" json:"description"`
	CourseID        *string   `db:"course_id" json:"courseId,omitempty"`
	Questions       Questions `db:"questions" json:"questions"`
	PassingScore    int       `db:"passing_score" json:"passingScore"`
	AttemptsAllowed int       `db:"attempts_allowed" json:"attemptsAllowed"`
	CreatedBy       string    `db:"created_by" json:"createdBy"`
	CreatedAt       time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time `db:"updated_at" json:"updatedAt"`
}

// TotalPoints sums the points of every question.
func (q Quiz) TotalPoints() int {
	total := 0
	for _, question := range q.Questions {
		total += question.Points
	}
	return total
}

// WithoutAnswers returns a copy safe to show to quiz takers.
func (q Quiz) WithoutAnswers() Quiz {
	questions := make(Questions, len(q.Questions))
	for i, question := range q.Questions {
		question.CorrectAnswer = ""
		questions[i] = question
	}
	q.Questions = questions
	return q
}

// SubmittedAnswer is one answer in a quiz submission.
type SubmittedAnswer struct {
	QuestionID string `json:"questionId" validate:"required"`
	Answer     string `json:"answer"`
}

// GradedAnswer is the outcome for one question.
type GradedAnswer struct {
	QuestionID    string `json:"questionId"`
	Answer        string `json:"answer"`
	Correct       bool   `json:"correct"`
	PointsAwarded int    `json:"pointsAwarded"`
}

// QuizResult is the single stored result per user and quiz.
type QuizResult struct {
	ID          string        `db:"id" json:"id"`
	UserID      string        `db:"user_id" json:"userId"`
	QuizID      string        `db:"quiz_id" json:"quizId"`
	Score       int           `db:"score" json:"score"`
	TotalPoints int           `db:"total_points" json:"totalPoints"`
	Percentage  int           `db:"percentage" json:"percentage"`
	Passed      bool          `db:"passed" json:"passed"`
	Answers     GradedAnswers `db:"answers" json:"answers"`
	SubmittedAt time.Time     `db:"submitted_at" json:"submittedAt"`
}
