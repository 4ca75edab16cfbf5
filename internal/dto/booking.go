package dto

import "github.com/rukundo0023/empowerhered-sub000/internal/models"

// SubmitBookingRequest is the public booking form. Name and Email are stored as a snapshot.
type SubmitBookingRequest struct {
	Mentee   string `json:"mentee" validate:"required"`
	Name     string `json:"name" validate:"required,max=120"`
	Email    string `json:"email" validate:"required,email"`
	Topic    string `json:"topic" validate:"omitempty,max=200"`
	Duration *int   `json:"duration" validate:"omitempty,gt=0,lte=480"`
}

// BookingFeedbackRequest rates a confirmed session.
type BookingFeedbackRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"omitempty,max=2000"`
}

// AcceptBookingResponse is the confirmed booking plus the records written alongside it.
type AcceptBookingResponse struct {
	models.Booking
	MentorshipID string `json:"mentorshipId"`
	MeetingID    string `json:"meetingId"`
}
