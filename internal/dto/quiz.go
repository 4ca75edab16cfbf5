package dto

import "github.com/rukundo0023/empowerhered-sub000/internal/models"

// CreateQuizRequest defines a quiz. Question ids are assigned by the server.
type CreateQuizRequest struct {
	Title           string            `json:"title" validate:"required,max=200"`
	Description     string            `json:"description" validate:"omitempty,max=2000"`
	CourseID        *string           `json:"courseId"`
	Questions       []models.Question `json:"questions" validate:"required,min=1,dive"`
	PassingScore    int               `json:"passingScore" validate:"min=0,max=100"`
	AttemptsAllowed int               `json:"attemptsAllowed" validate:"min=0"`
}

// SubmitQuizRequest carries one answer per question. Missing answers are graded incorrect.
type SubmitQuizRequest struct {
	Answers []models.SubmittedAnswer `json:"answers" validate:"dive"`
}
