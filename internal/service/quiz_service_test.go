package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rukundo0023/empowerhered-sub000/internal/dto"
	"github.com/rukundo0023/empowerhered-sub000/internal/models"
	appErrors "github.com/rukundo0023/empowerhered-sub000/pkg/errors"
)

type mockQuizStore struct {
	quiz    *models.Quiz
	created *models.Quiz
	results map[string]*models.QuizResult
}

func (m *mockQuizStore) Create(ctx context.Context, quiz *models.Quiz) error {
	quiz.ID = "quiz-new"
	m.created = quiz
	return nil
}

func (m *mockQuizStore) FindByID(ctx context.Context, id string) (*models.Quiz, error) {
	if m.quiz == nil || m.quiz.ID != id {
		return nil, sql.ErrNoRows
	}
	dup := *m.quiz
	return &dup, nil
}

func (m *mockQuizStore) UpsertResult(ctx context.Context, result *models.QuizResult) error {
	if m.results == nil {
		m.results = map[string]*models.QuizResult{}
	}
	key := result.UserID + "/" + result.QuizID
	if prev, ok := m.results[key]; ok {
		result.ID = prev.ID
	} else {
		result.ID = "result-" + result.UserID
	}
	stored := *result
	m.results[key] = &stored
	return nil
}

func (m *mockQuizStore) FindResult(ctx context.Context, userID, quizID string) (*models.QuizResult, error) {
	if r, ok := m.results[userID+"/"+quizID]; ok {
		return r, nil
	}
	return nil, sql.ErrNoRows
}

func ans(questionID, answer string) models.SubmittedAnswer {
	return models.SubmittedAnswer{QuestionID: questionID, Answer: answer}
}

func sampleQuiz() models.Quiz {
	return models.Quiz{
		ID:           "quiz-1",
		Title:        "Budgeting basics",
		PassingScore: 70,
		CreatedBy:    "instructor-1",
		Questions: models.Questions{
			{ID: "q1", Question: "2+2?", Type: models.QuestionTypeMCQ, Options: []string{"3", "4"}, CorrectAnswer: "4", Points: 2},
			{ID: "q2", Question: "Capital of Rwanda?", Type: models.QuestionTypeShortAnswer, CorrectAnswer: "Kigali", Points: 3},
			{ID: "q3", Question: "Pick B", Type: models.QuestionTypeMCQ, Options: []string{"A", "B"}, CorrectAnswer: "B", Points: 5},
		},
	}
}

func TestGradeQuiz(t *testing.T) {
	cases := []struct {
		name       string
		answers    []models.SubmittedAnswer
		score      int
		percentage int
		passed     bool
	}{
		{"all correct", []models.SubmittedAnswer{ans("q1", "4"), ans("q2", "  kigali "), ans("q3", "B")}, 10, 100, true},
		{"mcq is case sensitive", []models.SubmittedAnswer{ans("q1", "4"), ans("q2", "Kigali"), ans("q3", "b")}, 5, 50, false},
		{"unanswered", nil, 0, 0, false},
		{"exactly passing", []models.SubmittedAnswer{ans("q1", "4"), ans("q3", "B")}, 7, 70, true},
		{"unknown question ignored", []models.SubmittedAnswer{ans("zz", "4"), ans("q2", "KIGALI")}, 3, 30, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := GradeQuiz(sampleQuiz(), tc.answers)
			assert.Equal(t, tc.score, result.Score)
			assert.Equal(t, 10, result.TotalPoints)
			assert.Equal(t, tc.percentage, result.Percentage)
			assert.Equal(t, tc.passed, result.Passed)
			assert.Len(t, result.Answers, 3)
		})
	}
}

func TestGradeQuizRoundsAndHandlesEmptyQuiz(t *testing.T) {
	quiz := models.Quiz{PassingScore: 67, Questions: models.Questions{
		{ID: "a", Type: models.QuestionTypeMCQ, CorrectAnswer: "x", Points: 1},
		{ID: "b", Type: models.QuestionTypeMCQ, CorrectAnswer: "x", Points: 1},
		{ID: "c", Type: models.QuestionTypeMCQ, CorrectAnswer: "x", Points: 1},
	}}
	result := GradeQuiz(quiz, []models.SubmittedAnswer{ans("a", "x"), ans("b", "x")})
	assert.Equal(t, 67, result.Percentage)
	assert.True(t, result.Passed)

	empty := GradeQuiz(models.Quiz{PassingScore: 0}, nil)
	assert.Equal(t, 0, empty.Percentage)
	assert.True(t, empty.Passed)
	assert.Empty(t, empty.Answers)
}

func TestQuizSubmitOverwritesResult(t *testing.T) {
	quiz := sampleQuiz()
	store := &mockQuizStore{quiz: &quiz}
	svc := NewQuizService(store, nil, nil, nil)
	claims := &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent}

	first, err := svc.Submit(context.Background(), "quiz-1", dto.SubmitQuizRequest{Answers: []models.SubmittedAnswer{ans("q1", "3")}}, claims)
	require.NoError(t, err)
	assert.False(t, first.Passed)

	second, err := svc.Submit(context.Background(), "quiz-1", dto.SubmitQuizRequest{Answers: []models.SubmittedAnswer{ans("q1", "4"), ans("q2", "kigali"), ans("q3", "B")}}, claims)
	require.NoError(t, err)
	assert.True(t, second.Passed)
	assert.Equal(t, first.ID, second.ID)

	stored, err := svc.Result(context.Background(), "quiz-1", claims)
	require.NoError(t, err)
	assert.Equal(t, 100, stored.Percentage)
	assert.Len(t, store.results, 1)
}

func TestQuizSubmitUnknownQuiz(t *testing.T) {
	svc := NewQuizService(&mockQuizStore{}, nil, nil, nil)
	_, err := svc.Submit(context.Background(), "nope", dto.SubmitQuizRequest{}, &models.JWTClaims{UserID: "u"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	_, err = svc.Result(context.Background(), "nope", &models.JWTClaims{UserID: "u"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestQuizGetHidesAnswers(t *testing.T) {
	quiz := sampleQuiz()
	svc := NewQuizService(&mockQuizStore{quiz: &quiz}, nil, nil, nil)

	asStudent, err := svc.Get(context.Background(), "quiz-1", &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent})
	require.NoError(t, err)
	for _, q := range asStudent.Questions {
		assert.Empty(t, q.CorrectAnswer)
	}

	asAuthor, err := svc.Get(context.Background(), "quiz-1", &models.JWTClaims{UserID: "instructor-1", Role: models.RoleInstructor})
	require.NoError(t, err)
	assert.Equal(t, "4", asAuthor.Questions[0].CorrectAnswer)
}

func TestQuizCreate(t *testing.T) {
	store := &mockQuizStore{}
	svc := NewQuizService(store, nil, nil, nil)
	instructor := &models.JWTClaims{UserID: "instructor-1", Role: models.RoleInstructor}
	req := dto.CreateQuizRequest{
		Title:        "Budgeting",
		PassingScore: 60,
		Questions: []models.Question{
			{Question: "2+2?", Type: models.QuestionTypeMCQ, Options: []string{"3", "4"}, CorrectAnswer: "4", Points: 1},
			{Question: "Capital?", Type: models.QuestionTypeShortAnswer, CorrectAnswer: "Kigali", Points: 2},
		},
	}

	quiz, err := svc.Create(context.Background(), req, instructor)
	require.NoError(t, err)
	assert.Equal(t, "instructor-1", quiz.CreatedBy)
	require.Len(t, quiz.Questions, 2)
	assert.NotEmpty(t, quiz.Questions[0].ID)
	assert.NotEqual(t, quiz.Questions[0].ID, quiz.Questions[1].ID)

	_, err = svc.Create(context.Background(), req, &models.JWTClaims{UserID: "s", Role: models.RoleStudent})
	assert.True(t, errors.Is(err, appErrors.ErrForbidden))

	bad := req
	bad.Questions = []models.Question{{Question: "Pick", Type: models.QuestionTypeMCQ, Options: []string{"a"}, CorrectAnswer: "b", Points: 1}}
	_, err = svc.Create(context.Background(), bad, instructor)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	bad.Questions = []models.Question{{Question: "Pick", Type: "Essay", CorrectAnswer: "b", Points: 1}}
	_, err = svc.Create(context.Background(), bad, instructor)
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
