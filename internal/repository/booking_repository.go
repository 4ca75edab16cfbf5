package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/rukundo0023/empowerhered-sub000/internal/models"
)

const bookingColumns = `b.id, b.mentee_id, b.mentee_name, b.mentee_email, b.mentor_id, b.topic, b.duration, b.date, b.time, b.status, b.meeting_link, b.feedback_rating, b.feedback_comment, b.created_at, b.updated_at`

// BookingRepository persists bookings and the acceptance unit of work.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository constructs the repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// Create inserts a booking.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now

	const query = `INSERT INTO bookings (id, mentee_id, mentee_name, mentee_email, mentor_id, topic, duration, date, time, status, meeting_link, created_at, updated_at)
VALUES (:id, :mentee_id, :mentee_name, :mentee_email, :mentor_id, :topic, :duration, :date, :time, :status, :meeting_link, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, booking); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

// FindByID returns a booking or sql.ErrNoRows.
func (r *BookingRepository) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	if !validID(id) {
		return nil, sql.ErrNoRows
	}
	const query = `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.id = $1`
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find booking: %w", err)
	}
	booking.LoadFeedback()
	return &booking, nil
}

// ListPending returns every pending booking, oldest first, with the mentee resolved.
func (r *BookingRepository) ListPending(ctx context.Context) ([]models.PendingBooking, error) {
	const query = `SELECT ` + bookingColumns + `, u.id AS "mentee.id", u.name AS "mentee.name", u.email AS "mentee.email"
FROM bookings b JOIN users u ON u.id = b.mentee_id
WHERE b.status = $1
ORDER BY b.created_at ASC`
	bookings := make([]models.PendingBooking, 0)
	if err := r.db.SelectContext(ctx, &bookings, query, models.BookingStatusPending); err != nil {
		return nil, fmt.Errorf("list pending bookings: %w", err)
	}
	return bookings, nil
}

// ListByMentee returns the bookings a user submitted, newest first.
func (r *BookingRepository) ListByMentee(ctx context.Context, menteeID string) ([]models.Booking, error) {
	bookings := make([]models.Booking, 0)
	if !validID(menteeID) {
		return bookings, nil
	}
	const query = `SELECT ` + bookingColumns + ` FROM bookings b WHERE b.mentee_id = $1 ORDER BY b.created_at DESC`
	if err := r.db.SelectContext(ctx, &bookings, query, menteeID); err != nil {
		return nil, fmt.Errorf("list bookings by mentee: %w", err)
	}
	for i := range bookings {
		bookings[i].LoadFeedback()
	}
	return bookings, nil
}

// Accept confirms the booking and writes the mentorship, meeting and meeting link in one
// transaction. Returns sql.ErrNoRows when the booking is no longer pending, ErrMentorshipChanged when
// the mentorship being reactivated is no longer cancelled and ErrDuplicate when another mentorship
// for the pair appeared.
func (r *BookingRepository) Accept(ctx context.Context, a *models.BookingAcceptance) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin accept booking: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	b := a.Booking
	res, err := tx.ExecContext(ctx,
		`UPDATE bookings SET mentor_id = $2, status = $3, updated_at = $4 WHERE id = $1 AND status = $5`,
		b.ID, b.MentorID, b.Status, b.UpdatedAt, models.BookingStatusPending)
	if err != nil {
		return fmt.Errorf("confirm booking: %w", err)
	}
	if err = expectOneRow(res); err != nil {
		return err
	}

	m := a.Mentorship
	if a.CreateMentorship {
		const insert = `INSERT INTO mentorships (id, mentor_id, mentee_id, status, start_date, end_date, progress, goals, feedback, created_at, updated_at)
VALUES (:id, :mentor_id, :mentee_id, :status, :start_date, :end_date, :progress, :goals, :feedback, :created_at, :updated_at)`
		if _, err = tx.NamedExecContext(ctx, insert, m); err != nil {
			if isUniqueViolation(err) {
				return ErrDuplicate
			}
			return fmt.Errorf("create mentorship: %w", err)
		}
	} else {
		res, err = tx.ExecContext(ctx,
			`UPDATE mentorships SET status = $2, start_date = $3, end_date = NULL, updated_at = $4 WHERE id = $1 AND status = $5`,
			m.ID, m.Status, m.StartDate, m.UpdatedAt, models.MentorshipStatusCancelled)
		if err != nil {
			return fmt.Errorf("reactivate mentorship: %w", err)
		}
		if err = expectOneRow(res); errors.Is(err, sql.ErrNoRows) {
			return ErrMentorshipChanged
		} else if err != nil {
			return err
		}
	}

	if err = insertMeeting(ctx, tx, m.ID, a.Meeting); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit accept booking: %w", err)
	}
	return nil
}

// Cancel moves a pending booking to cancelled. Returns sql.ErrNoRows if it was not pending.
func (r *BookingRepository) Cancel(ctx context.Context, id string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = $2, updated_at = $3 WHERE id = $1 AND status = $4`,
		id, models.BookingStatusCancelled, at, models.BookingStatusPending)
	if err != nil {
		return fmt.Errorf("cancel booking: %w", err)
	}
	return expectOneRow(res)
}

// SaveFeedback stores the mentee's rating on a confirmed booking.
func (r *BookingRepository) SaveFeedback(ctx context.Context, id string, feedback models.BookingFeedback, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET feedback_rating = $2, feedback_comment = $3, updated_at = $4 WHERE id = $1 AND status = $5`,
		id, feedback.Rating, feedback.Comment, at, models.BookingStatusConfirmed)
	if err != nil {
		return fmt.Errorf("save booking feedback: %w", err)
	}
	return expectOneRow(res)
}

func insertMeeting(ctx context.Context, tx *sqlx.Tx, mentorshipID string, meeting *models.Meeting) error {
	const insert = `INSERT INTO meetings (id, mentor_id, mentee_id, date, status, notes, duration, meeting_type, meeting_link, created_at, updated_at)
VALUES (:id, :mentor_id, :mentee_id, :date, :status, :notes, :duration, :meeting_type, :meeting_link, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, insert, meeting); err != nil {
		return fmt.Errorf("create meeting: %w", err)
	}

	const link = `INSERT INTO mentorship_meetings (mentorship_id, meeting_id, position)
SELECT $1, $2, COALESCE(MAX(position), 0) + 1 FROM mentorship_meetings WHERE mentorship_id = $1`
	if _, err := tx.ExecContext(ctx, link, mentorshipID, meeting.ID); err != nil {
		return fmt.Errorf("link meeting: %w", err)
	}
	return nil
}

func expectOneRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
