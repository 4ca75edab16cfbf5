package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/rukundo0023/empowerhered-sub000/internal/dto"
	"github.com/rukundo0023/empowerhered-sub000/internal/models"
	"github.com/rukundo0023/empowerhered-sub000/pkg/response"
)

type mentorshipService interface {
	List(ctx context.Context, claims *models.JWTClaims) ([]models.Mentorship, error)
	Get(ctx context.Context, id string, claims *models.JWTClaims) (*dto.MentorshipDetail, error)
	Cancel(ctx context.Context, id string, claims *models.JWTClaims) (*models.Mentorship, error)
	ScheduleMeeting(ctx context.Context, id string, req dto.ScheduleMeetingRequest, claims *models.JWTClaims) (*models.Meeting, error)
	ListMeetings(ctx context.Context, id string, claims *models.JWTClaims) ([]models.Meeting, error)
	AddGoal(ctx context.Context, id string, req dto.AddGoalRequest, claims *models.JWTClaims) (*models.Mentorship, error)
	UpdateProgress(ctx context.Context, id string, req dto.UpdateProgressRequest, claims *models.JWTClaims) (*models.Mentorship, error)
	AddFeedback(ctx context.Context, id string, req dto.MentorshipFeedbackRequest, claims *models.JWTClaims) (*models.Mentorship, error)
}

// MentorshipHandler exposes mentorship management endpoints.
type MentorshipHandler struct {
	service mentorshipService
}

// NewMentorshipHandler constructs a MentorshipHandler.
func NewMentorshipHandler(svc mentorshipService) *MentorshipHandler {
	return &MentorshipHandler{service: svc}
}

// List godoc
// @Summary List my mentorships
// @Tags Mentorships
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /mentors/mentorships [get]
func (h *MentorshipHandler) List(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	items, err := h.service.List(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, items)
}

// Get godoc
// @Summary Get a mentorship
// @Tags Mentorships
// @Produce json
// @Security BearerAuth
// @Param id path string true "Mentorship ID"
// @Success 200 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /mentors/mentorships/{id} [get]
func (h *MentorshipHandler) Get(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	detail, err := h.service.Get(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, detail)
}

// Cancel godoc
// @Summary Cancel a mentorship
// @Tags Mentorships
// @Produce json
// @Security BearerAuth
// @Param id path string true "Mentorship ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /mentors/mentorships/{id}/cancel [put]
func (h *MentorshipHandler) Cancel(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	mentorship, err := h.service.Cancel(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, mentorship)
}

// ScheduleMeeting godoc
// @Summary Schedule a meeting
// @Tags Mentorships
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Mentorship ID"
// @Param payload body dto.ScheduleMeetingRequest true "Meeting"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /mentors/mentorships/{id}/meetings [post]
func (h *MentorshipHandler) ScheduleMeeting(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.ScheduleMeetingRequest
	if !bindJSON(c, &req, "invalid meeting payload") {
		return
	}
	meeting, err := h.service.ScheduleMeeting(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, meeting)
}

// ListMeetings godoc
// @Summary List meetings of a mentorship
// @Tags Mentorships
// @Produce json
// @Security BearerAuth
// @Param id path string true "Mentorship ID"
// @Success 200 {object} response.Envelope
// @Router /mentors/mentorships/{id}/meetings [get]
func (h *MentorshipHandler) ListMeetings(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	meetings, err := h.service.ListMeetings(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, meetings)
}

// AddGoal godoc
// @Summary Add a goal
// @Tags Mentorships
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Mentorship ID"
// @Param payload body dto.AddGoalRequest true "Goal"
// @Success 201 {object} response.Envelope
// @Router /mentors/mentorships/{id}/goals [post]
func (h *MentorshipHandler) AddGoal(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.AddGoalRequest
	if !bindJSON(c, &req, "invalid goal payload") {
		return
	}
	mentorship, err := h.service.AddGoal(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, mentorship)
}

// UpdateProgress godoc
// @Summary Update progress
// @Tags Mentorships
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Mentorship ID"
// @Param payload body dto.UpdateProgressRequest true "Progress"
// @Success 200 {object} response.Envelope
// @Router /mentors/mentorships/{id}/progress [put]
func (h *MentorshipHandler) UpdateProgress(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.UpdateProgressRequest
	if !bindJSON(c, &req, "invalid progress payload") {
		return
	}
	mentorship, err := h.service.UpdateProgress(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, mentorship)
}

// AddFeedback godoc
// @Summary Rate a mentorship
// @Tags Mentorships
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Mentorship ID"
// @Param payload body dto.MentorshipFeedbackRequest true "Feedback"
// @Success 201 {object} response.Envelope
// @Router /mentors/mentorships/{id}/feedback [post]
func (h *MentorshipHandler) AddFeedback(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.MentorshipFeedbackRequest
	if !bindJSON(c, &req, "invalid feedback payload") {
		return
	}
	mentorship, err := h.service.AddFeedback(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, mentorship)
}
