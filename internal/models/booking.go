package models

import "time"

// BookingStatus tracks a mentee's request through review.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusCompleted BookingStatus = "completed"
)

// Submission defaults.
const (
	DefaultBookingTopic    = "Initial Mentorship Session"
	DefaultBookingDuration = 60
	DefaultBookingTime     = "To be scheduled"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending: {BookingStatusConfirmed, BookingStatusCancelled},
}

// Valid returns true when the status is a supported value.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCancelled, BookingStatusCompleted:
		return true
	default:
		return false
	}
}

// TransitionTo returns next when the move is allowed and a *TransitionError otherwise.
func (s BookingStatus) TransitionTo(next BookingStatus) (BookingStatus, error) {
	if !allowed(bookingTransitions, s, next) {
		return s, &TransitionError{Entity: "booking", From: string(s), To: string(next)}
	}
	return next, nil
}

// Terminal reports whether no further transition is possible.
func (s BookingStatus) Terminal() bool {
	return len(bookingTransitions[s]) == 0
}

// BookingFeedback is the mentee's rating of a confirmed session.
type BookingFeedback struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}

// Booking is a mentee's request for a mentorship session. MenteeName and MenteeEmail are copied
// at submission and are not kept in sync with the user record.
type Booking struct {
	ID              string           `db:"id" json:"id"`
	MenteeID        string           `db:"mentee_id" json:"mentee"`
	MenteeName      string           `db:"mentee_name" json:"menteeName"`
	MenteeEmail     string           `db:"mentee_email" json:"menteeEmail"`
	MentorID        *string          `db:"mentor_id" json:"mentor"`
	Topic           string           `db:"topic" json:"topic"`
	Duration        int              `db:"duration" json:"duration"`
	Date            time.Time        `db:"date" json:"date"`
	Time            string           `db:"time" json:"time"`
	Status          BookingStatus    `db:"status" json:"status"`
	MeetingLink     *string          `db:"meeting_link" json:"meetingLink,omitempty"`
	FeedbackRating  *int             `db:"feedback_rating" json:"-"`
	FeedbackComment *string          `db:"feedback_comment" json:"-"`
	Feedback        *BookingFeedback `db:"-" json:"feedback,omitempty"`
	CreatedAt       time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt       time.Time        `db:"updated_at" json:"updatedAt"`
}

// LoadFeedback populates Feedback from the flattened feedback columns.
func (b *Booking) LoadFeedback() {
	if b.FeedbackRating == nil {
		b.Feedback = nil
		return
	}
	fb := &BookingFeedback{Rating: *b.FeedbackRating}
	if b.FeedbackComment != nil {
		fb.Comment = *b.FeedbackComment
	}
	b.Feedback = fb
}

// PendingBooking is a pending booking with its mentee resolved from the users table.
type PendingBooking struct {
	Booking
	Mentee UserSummary `db:"mentee" json:"mentee"`
}

// BookingAcceptance is everything written when a mentor accepts a booking. Mentorship is either new
// (CreateMentorship) or an existing cancelled one being reactivated.
type BookingAcceptance struct {
	Booking          *Booking
	Mentorship       *Mentorship
	CreateMentorship bool
	Meeting          *Meeting
}
