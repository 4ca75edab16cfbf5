package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/rukundo0023/empowerhered-sub000/internal/dto"
	"github.com/rukundo0023/empowerhered-sub000/internal/models"
	"github.com/rukundo0023/empowerhered-sub000/pkg/response"
)

type bookingService interface {
	Submit(ctx context.Context, req dto.SubmitBookingRequest) (*models.Booking, error)
	ListPending(ctx context.Context) ([]models.PendingBooking, error)
	ListMine(ctx context.Context, claims *models.JWTClaims) ([]models.Booking, error)
	Accept(ctx context.Context, id string, claims *models.JWTClaims) (*dto.AcceptBookingResponse, error)
	Reject(ctx context.Context, id string, claims *models.JWTClaims) (*models.Booking, error)
	SubmitFeedback(ctx context.Context, id string, req dto.BookingFeedbackRequest, claims *models.JWTClaims) (*models.Booking, error)
}

// BookingHandler exposes the mentorship booking workflow.
type BookingHandler struct {
	service bookingService
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(svc bookingService) *BookingHandler {
	return &BookingHandler{service: svc}
}

// Submit godoc
// @Summary Request a mentorship session
// @Tags Bookings
// @Accept json
// @Produce json
// @Param payload body dto.SubmitBookingRequest true "Booking payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /mentors/bookings [post]
func (h *BookingHandler) Submit(c *gin.Context) {
	var req dto.SubmitBookingRequest
	if !bindJSON(c, &req, "Please provide all required fields") {
		return
	}
	booking, err := h.service.Submit(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, booking)
}

// ListPending godoc
// @Summary List pending bookings
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /mentors/bookings/pending [get]
func (h *BookingHandler) ListPending(c *gin.Context) {
	bookings, err := h.service.ListPending(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, bookings)
}

// ListMine godoc
// @Summary List my bookings
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /mentors/bookings/mine [get]
func (h *BookingHandler) ListMine(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	bookings, err := h.service.ListMine(c.Request.Context(), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, bookings)
}

// Accept godoc
// @Summary Accept a pending booking
// @Description Confirms the booking, creates or reactivates the mentorship and schedules the first meeting.
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /mentors/bookings/{id}/accept [put]
func (h *BookingHandler) Accept(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	res, err := h.service.Accept(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, res)
}

// Reject godoc
// @Summary Reject a pending booking
// @Tags Bookings
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /mentors/bookings/{id}/reject [put]
func (h *BookingHandler) Reject(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	booking, err := h.service.Reject(c.Request.Context(), c.Param("id"), claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, booking)
}

// Feedback godoc
// @Summary Rate a confirmed booking
// @Tags Bookings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Booking ID"
// @Param payload body dto.BookingFeedbackRequest true "Feedback"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /mentors/bookings/{id}/feedback [put]
func (h *BookingHandler) Feedback(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req dto.BookingFeedbackRequest
	if !bindJSON(c, &req, "invalid feedback payload") {
		return
	}
	booking, err := h.service.SubmitFeedback(c.Request.Context(), c.Param("id"), req, claims)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, booking)
}
