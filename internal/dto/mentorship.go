package dto

import (
	"time"

	"github.com/rukundo0023/empowerhered-sub000/internal/models"
)

// ScheduleMeetingRequest adds a session to an active mentorship.
type ScheduleMeetingRequest struct {
	Date        time.Time          `json:"date" validate:"required"`
	Duration    int                `json:"duration" validate:"omitempty,gt=0,lte=480"`
	MeetingType models.MeetingType `json:"meetingType" validate:"omitempty,oneof=video audio in-person"`
	MeetingLink string             `json:"meetingLink" validate:"omitempty,url"`
	Notes       string             `json:"notes" validate:"omitempty,max=2000"`
}

// AddGoalRequest appends a goal.
type AddGoalRequest struct {
	Description string     `json:"description" validate:"required,max=500"`
	TargetDate  *time.Time `json:"targetDate"`
}

// UpdateProgressRequest sets mentorship progress.
type UpdateProgressRequest struct {
	Progress *int `json:"progress" validate:"required,min=0,max=100"`
}

// MentorshipFeedbackRequest is a mentee's rating of the relationship.
type MentorshipFeedbackRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment" validate:"omitempty,max=2000"`
}

// MentorshipDetail is a mentorship with its meetings resolved.
type MentorshipDetail struct {
	models.Mentorship
	MeetingDetails []models.Meeting `json:"meetingDetails"`
}
