package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rukundo0023/empowerhered-sub000/internal/dto"
	"github.com/rukundo0023/empowerhered-sub000/internal/models"
	appErrors "github.com/rukundo0023/empowerhered-sub000/pkg/errors"
)

type quizStore interface {
	Create(ctx context.Context, quiz *models.Quiz) error
	FindByID(ctx context.Context, id string) (*models.Quiz, error)
	UpsertResult(ctx context.Context, result *models.QuizResult) error
	FindResult(ctx context.Context, userID, quizID string) (*models.QuizResult, error)
}

// GradeQuiz scores answers against the quiz. MCQ answers must match exactly; short answers are
// compared trimmed and case-insensitively. Unanswered questions score zero. When an answer is
// given twice for a question the last one counts.
func GradeQuiz(quiz models.Quiz, answers []models.SubmittedAnswer) models.QuizResult {
	given := make(map[string]string, len(answers))
	for _, a := range answers {
		given[a.QuestionID] = a.Answer
	}

	result := models.QuizResult{
		QuizID:  quiz.ID,
		Answers: make(models.GradedAnswers, 0, len(quiz.Questions)),
	}
	for _, q := range quiz.Questions {
		answer, answered := given[q.ID]
		graded := models.GradedAnswer{QuestionID: q.ID, Answer: answer}
		if answered && answerMatches(q, answer) {
			graded.Correct = true
			graded.PointsAwarded = q.Points
		}
		result.Score += graded.PointsAwarded
		result.TotalPoints += q.Points
		result.Answers = append(result.Answers, graded)
	}

	if result.TotalPoints > 0 {
		result.Percentage = int(math.Round(float64(result.Score) / float64(result.TotalPoints) * 100))
	}
	result.Passed = result.Percentage >= quiz.PassingScore
	return result
}

func answerMatches(q models.Question, answer string) bool {
	switch q.Type {
	case models.QuestionTypeShortAnswer:
		return strings.EqualFold(strings.TrimSpace(answer), strings.TrimSpace(q.CorrectAnswer))
	default:
		return answer == q.CorrectAnswer
	}
}

// QuizService creates quizzes and grades submissions.
type QuizService struct {
	repo      quizStore
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewQuizService constructs a QuizService.
func NewQuizService(repo quizStore, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *QuizService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuizService{
		repo:      repo,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Create stores a new quiz authored by the caller. Question ids are generated.
func (s *QuizService) Create(ctx context.Context, req dto.CreateQuizRequest, claims *models.JWTClaims) (*models.Quiz, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if claims.Role != models.RoleInstructor && claims.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only instructors can create quizzes")
	}
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid quiz payload")
	}

	questions := make(models.Questions, len(req.Questions))
	for i, q := range req.Questions {
		if q.Type == models.QuestionTypeMCQ && !containsOption(q.Options, q.CorrectAnswer) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("question %d: correct answer must be one of the options", i+1))
		}
		q.ID = uuid.NewString()
		questions[i] = q
	}

	quiz := &models.Quiz{
		Title:           req.Title,
		Description:     strings.TrimSpace(req.Description),
		CourseID:        req.CourseID,
		Questions:       questions,
		PassingScore:    req.PassingScore,
		AttemptsAllowed: req.AttemptsAllowed,
		CreatedBy:       claims.UserID,
	}
	if err := s.repo.Create(ctx, quiz); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create quiz")
	}
	s.logger.Info("quiz created", zap.String("quiz_id", quiz.ID), zap.Int("questions", len(questions)))
	return quiz, nil
}

// Get returns the quiz. Correct answers are only shown to its author and admins.
func (s *QuizService) Get(ctx context.Context, id string, claims *models.JWTClaims) (*models.Quiz, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	quiz, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if quiz.CreatedBy != claims.UserID && claims.Role != models.RoleAdmin {
		redacted := quiz.WithoutAnswers()
		return &redacted, nil
	}
	return quiz, nil
}

// Submit grades the caller's answers and replaces any previous result for the quiz.
func (s *QuizService) Submit(ctx context.Context, id string, req dto.SubmitQuizRequest, claims *models.JWTClaims) (*models.QuizResult, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}
	quiz, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	result := GradeQuiz(*quiz, req.Answers)
	result.UserID = claims.UserID
	result.SubmittedAt = s.now()
	if err := s.repo.UpsertResult(ctx, &result); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save quiz result")
	}

	s.metrics.RecordQuizSubmission(result.Passed)
	s.logger.Info("quiz graded",
		zap.String("quiz_id", quiz.ID),
		zap.String("user_id", claims.UserID),
		zap.Int("percentage", result.Percentage),
		zap.Bool("passed", result.Passed),
	)
	return &result, nil
}

// Result returns the caller's stored result for the quiz.
func (s *QuizService) Result(ctx context.Context, id string, claims *models.JWTClaims) (*models.QuizResult, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	result, err := s.repo.FindResult(ctx, claims.UserID, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "No result for this quiz")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load quiz result")
	}
	return result, nil
}

func (s *QuizService) load(ctx context.Context, id string) (*models.Quiz, error) {
	quiz, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Quiz not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load quiz")
	}
	return quiz, nil
}

func containsOption(options []string, answer string) bool {
	for _, o := range options {
		if o == answer {
			return true
		}
	}
	return false
}
