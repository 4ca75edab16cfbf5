package models

import "time"

// MeetingStatus tracks a single session.
type MeetingStatus string

const (
	MeetingStatusScheduled MeetingStatus = "scheduled"
	MeetingStatusCompleted MeetingStatus = "completed"
	MeetingStatusCancelled MeetingStatus = "cancelled"
)

// MeetingType describes how a session is held.
type MeetingType string

const (
	MeetingTypeVideo    MeetingType = "video"
	MeetingTypeAudio    MeetingType = "audio"
	MeetingTypeInPerson MeetingType = "in-person"
)

// Meeting is one session between a mentor and mentee. It carries no reference to its mentorship;
// the link is kept on the mentorship side only.
type Meeting struct {
	ID          string        `db:"id" json:"id"`
	MentorID    string        `db:"mentor_id" json:"mentor"`
	MenteeID    string        `db:"mentee_id" json:"mentee"`
	Date        time.Time     `db:"date" json:"date"`
	Status      MeetingStatus `db:"status" json:"status"`
	Notes       string        `db:"notes" json:"notes"`
	Duration    int           `db:"duration" json:"duration"`
	MeetingType MeetingType   `db:"meeting_type" json:"meetingType"`
	MeetingLink *string       `db:"meeting_link" json:"meetingLink,omitempty"`
	RemindedAt  *time.Time    `db:"reminded_at" json:"-"`
	CreatedAt   time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updatedAt"`
}

// MeetingReminder is an upcoming meeting joined with both participants' contact details.
type MeetingReminder struct {
	MeetingID   string      `db:"meeting_id"`
	Date        time.Time   `db:"date"`
	Duration    int         `db:"duration"`
	MeetingType MeetingType `db:"meeting_type"`
	MeetingLink *string     `db:"meeting_link"`
	Mentor      UserSummary `db:"mentor"`
	Mentee      UserSummary `db:"mentee"`
}
