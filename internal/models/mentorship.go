package models

import (
	"time"

	"github.com/lib/pq"
)

// MentorshipStatus tracks a mentor/mentee relationship.
type MentorshipStatus string

const (
	MentorshipStatusPending   MentorshipStatus = "pending"
	MentorshipStatusActive    MentorshipStatus = "active"
	MentorshipStatusCompleted MentorshipStatus = "completed"
	MentorshipStatusCancelled MentorshipStatus = "cancelled"
)

var mentorshipTransitions = map[MentorshipStatus][]MentorshipStatus{
	MentorshipStatusPending:   {MentorshipStatusActive, MentorshipStatusCancelled},
	MentorshipStatusActive:    {MentorshipStatusCancelled},
	MentorshipStatusCancelled: {MentorshipStatusActive},
}

// Valid returns true when the status is a supported value.
func (s MentorshipStatus) Valid() bool {
	switch s {
	case MentorshipStatusPending, MentorshipStatusActive, MentorshipStatusCompleted, MentorshipStatusCancelled:
		return true
	default:
		return false
	}
}

// TransitionTo returns next when the move is allowed and a *TransitionError otherwise.
func (s MentorshipStatus) TransitionTo(next MentorshipStatus) (MentorshipStatus, error) {
	if !allowed(mentorshipTransitions, s, next) {
		return s, &TransitionError{Entity: "mentorship", From: string(s), To: string(next)}
	}
	return next, nil
}

// Goal is one objective agreed within a mentorship.
type Goal struct {
	Description string     `json:"description"`
	Completed   bool       `json:"completed"`
	TargetDate  *time.Time `json:"targetDate,omitempty"`
}

// MentorshipFeedback is a mentee's rating of the relationship at a point in time.
type MentorshipFeedback struct {
	Rating  int       `json:"rating"`
	Comment string    `json:"comment,omitempty"`
	Date    time.Time `json:"date"`
}

// Mentorship is the relationship created or reactivated when a mentor accepts a booking.
// MeetingIDs is ordered by the position each meeting was appended.
type Mentorship struct {
	ID         string           `db:"id" json:"id"`
	MentorID   string           `db:"mentor_id" json:"mentor"`
	MenteeID   string           `db:"mentee_id" json:"mentee"`
	Status     MentorshipStatus `db:"status" json:"status"`
	StartDate  time.Time        `db:"start_date" json:"startDate"`
	EndDate    *time.Time       `db:"end_date" json:"endDate,omitempty"`
	Progress   int              `db:"progress" json:"progress"`
	Goals      Goals            `db:"goals" json:"goals"`
	Feedback   FeedbackEntries  `db:"feedback" json:"feedback"`
	MeetingIDs pq.StringArray   `db:"meeting_ids" json:"meetings"`
	CreatedAt  time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt  time.Time        `db:"updated_at" json:"updatedAt"`
}

// HasParticipant reports whether userID is the mentor or the mentee.
func (m Mentorship) HasParticipant(userID string) bool {
	return userID != "" && (m.MentorID == userID || m.MenteeID == userID)
}
