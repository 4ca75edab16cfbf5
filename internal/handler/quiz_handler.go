package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/rukundo0023/empowerhered-sub000/internal/dto"
	"github.com/rukundo0023/empowerhered-sub000/internal/models"
	"github.com/rukundo0023/empowerhered-sub000/pkg/response"
)

type quizService interface {
	Create(ctx context.Context, req dto.CreateQuizRequest, claims *models.JWTClaims) (*models.Quiz, error)
	Get(ctx context.Context, id string, claims *models.JWTClaims) (*models.Quiz, error)
	Submit(ctx context.Context, id string, req dto.SubmitQuizRequest, claims *models.JWTClaims) (*models.QuizResult, error)
	Result(ctx context.Context, id string, claims *models.JWTClaims) (*models.QuizResult, error)
}

type certificateIssuer interface {
	Issue(ctx context.Context, quizID string, claims *models.JWTClaims) (*models.CertificateLink, error)
}

// QuizHandler exposes quiz authoring, grading and certificates.
type QuizHandler struct {
	service      quizService
	certificates certificateIssuer
}

// NewQuizHandler constructs a QuizHandler.
func NewQuizHandler(svc quizService, certificates certificateIssuer) *QuizHandler {
	return &QuizHandler{service: svc, certificates: certificates}
}

// Create godoc
// @Summary Create a quiz
// @Tags Quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.CreateQuizRequest true "Quiz"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /quizzes [post]
func (h *QuizHandler) Create(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.CreateQuizRequest
	if !bindJSON(c, &req, "invalid quiz payload") {
		return
	}
	quiz, err := h.service.Create(c.Request.Context(), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, quiz)
}

// Get godoc
// @Summary Get a quiz
// @Description Correct answers are only returned to the quiz author and admins.
// @Tags Quizzes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quiz ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /quizzes/{id} [get]
func (h *QuizHandler) Get(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	quiz, err := h.service.Get(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, quiz)
}

// Submit godoc
// @Summary Submit quiz answers
// @Description Grades the answers and replaces any previous result for this quiz.
// @Tags Quizzes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quiz ID"
// @Param payload body dto.SubmitQuizRequest true "Answers"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /quizzes/{id}/submit [post]
func (h *QuizHandler) Submit(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.SubmitQuizRequest
	if !bindJSON(c, &req, "invalid submission payload") {
		return
	}
	result, err := h.service.Submit(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// Result godoc
// @Summary Get my quiz result
// @Tags Quizzes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quiz ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /quizzes/{id}/result [get]
func (h *QuizHandler) Result(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	result, err := h.service.Result(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, result)
}

// IssueCertificate godoc
// @Summary Issue a completion certificate
// @Tags Quizzes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Quiz ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /quizzes/{id}/certificate [post]
func (h *QuizHandler) IssueCertificate(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	link, err := h.certificates.Issue(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, link)
}
