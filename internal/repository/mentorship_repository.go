package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/rukundo0023/empowerhered-sub000/internal/models"
)

const mentorshipColumns = `m.id, m.mentor_id, m.mentee_id, m.status, m.start_date, m.end_date, m.progress, m.goals, m.feedback,
ARRAY(SELECT mm.meeting_id::text FROM mentorship_meetings mm WHERE mm.mentorship_id = m.id ORDER BY mm.position) AS meeting_ids,
m.created_at, m.updated_at`

const meetingColumns = `mt.id, mt.mentor_id, mt.mentee_id, mt.date, mt.status, mt.notes, mt.duration, mt.meeting_type, mt.meeting_link, mt.reminded_at, mt.created_at, mt.updated_at`

// MentorshipRepository persists mentorships and their meetings.
type MentorshipRepository struct {
	db *sqlx.DB
}

// NewMentorshipRepository constructs the repository.
func NewMentorshipRepository(db *sqlx.DB) *MentorshipRepository {
	return &MentorshipRepository{db: db}
}

// FindByID returns a mentorship with its ordered meeting ids.
func (r *MentorshipRepository) FindByID(ctx context.Context, id string) (*models.Mentorship, error) {
	if !validID(id) {
		return nil, sql.ErrNoRows
	}
	return r.get(ctx, `SELECT `+mentorshipColumns+` FROM mentorships m WHERE m.id = $1`, id)
}

// FindByPair returns the mentorship for a mentor and mentee, or sql.ErrNoRows.
func (r *MentorshipRepository) FindByPair(ctx context.Context, mentorID, menteeID string) (*models.Mentorship, error) {
	return r.get(ctx, `SELECT `+mentorshipColumns+` FROM mentorships m WHERE m.mentor_id = $1 AND m.mentee_id = $2`, mentorID, menteeID)
}

func (r *MentorshipRepository) get(ctx context.Context, query string, args ...interface{}) (*models.Mentorship, error) {
	var m models.Mentorship
	if err := r.db.GetContext(ctx, &m, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find mentorship: %w", err)
	}
	return &m, nil
}

// ListForUser returns mentorships where the user is mentor or mentee, most recently started first.
func (r *MentorshipRepository) ListForUser(ctx context.Context, userID string) ([]models.Mentorship, error) {
	items := make([]models.Mentorship, 0)
	const query = `SELECT ` + mentorshipColumns + ` FROM mentorships m WHERE m.mentor_id = $1 OR m.mentee_id = $1 ORDER BY m.start_date DESC`
	if err := r.db.SelectContext(ctx, &items, query, userID); err != nil {
		return nil, fmt.Errorf("list mentorships: %w", err)
	}
	return items, nil
}

// AddMeeting inserts a meeting and appends it to an active mentorship in one transaction.
// Returns sql.ErrNoRows when the mentorship is not active.
func (r *MentorshipRepository) AddMeeting(ctx context.Context, mentorshipID string, meeting *models.Meeting) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schedule meeting: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx,
		`UPDATE mentorships SET updated_at = $2 WHERE id = $1 AND status = $3`,
		mentorshipID, meeting.CreatedAt, models.MentorshipStatusActive)
	if err != nil {
		return fmt.Errorf("touch mentorship: %w", err)
	}
	if err = expectOneRow(res); err != nil {
		return err
	}
	if err = insertMeeting(ctx, tx, mentorshipID, meeting); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit schedule meeting: %w", err)
	}
	return nil
}

// ListMeetings returns the mentorship's meetings in the order they were appended.
func (r *MentorshipRepository) ListMeetings(ctx context.Context, mentorshipID string) ([]models.Meeting, error) {
	meetings := make([]models.Meeting, 0)
	const query = `SELECT ` + meetingColumns + ` FROM mentorship_meetings mm JOIN meetings mt ON mt.id = mm.meeting_id WHERE mm.mentorship_id = $1 ORDER BY mm.position`
	if err := r.db.SelectContext(ctx, &meetings, query, mentorshipID); err != nil {
		return nil, fmt.Errorf("list meetings: %w", err)
	}
	return meetings, nil
}

// AppendGoal adds a goal to the end of the mentorship's goal list.
func (r *MentorshipRepository) AppendGoal(ctx context.Context, id string, goal models.Goal, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE mentorships SET goals = goals || $2::jsonb, updated_at = $3 WHERE id = $1`,
		id, models.Goals{goal}, at)
	if err != nil {
		return fmt.Errorf("append goal: %w", err)
	}
	return expectOneRow(res)
}

// AppendFeedback adds a feedback entry to the mentorship.
func (r *MentorshipRepository) AppendFeedback(ctx context.Context, id string, entry models.MentorshipFeedback) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE mentorships SET feedback = feedback || $2::jsonb, updated_at = $3 WHERE id = $1`,
		id, models.FeedbackEntries{entry}, entry.Date)
	if err != nil {
		return fmt.Errorf("append mentorship feedback: %w", err)
	}
	return expectOneRow(res)
}

// UpdateProgress sets progress on an active mentorship. Returns sql.ErrNoRows when not active.
func (r *MentorshipRepository) UpdateProgress(ctx context.Context, id string, progress int, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE mentorships SET progress = $2, updated_at = $3 WHERE id = $1 AND status = $4`,
		id, progress, at, models.MentorshipStatusActive)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return expectOneRow(res)
}

// Cancel moves the mentorship from the given status to cancelled and stamps the end date.
func (r *MentorshipRepository) Cancel(ctx context.Context, id string, from models.MentorshipStatus, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE mentorships SET status = $2, end_date = $3, updated_at = $3 WHERE id = $1 AND status = $4`,
		id, models.MentorshipStatusCancelled, at, from)
	if err != nil {
		return fmt.Errorf("cancel mentorship: %w", err)
	}
	return expectOneRow(res)
}

// ListDueReminders returns scheduled, unreminded meetings starting in [from, to).
func (r *MentorshipRepository) ListDueReminders(ctx context.Context, from, to time.Time) ([]models.MeetingReminder, error) {
	const query = `SELECT mt.id AS meeting_id, mt.date, mt.duration, mt.meeting_type, mt.meeting_link,
mr.id AS "mentor.id", mr.name AS "mentor.name", mr.email AS "mentor.email",
me.id AS "mentee.id", me.name AS "mentee.name", me.email AS "mentee.email"
FROM meetings mt
JOIN users mr ON mr.id = mt.mentor_id
JOIN users me ON me.id = mt.mentee_id
WHERE mt.status = $1 AND mt.reminded_at IS NULL AND mt.date >= $2 AND mt.date < $3
ORDER BY mt.date`
	reminders := make([]models.MeetingReminder, 0)
	if err := r.db.SelectContext(ctx, &reminders, query, models.MeetingStatusScheduled, from, to); err != nil {
		return nil, fmt.Errorf("list due reminders: %w", err)
	}
	return reminders, nil
}

// ClaimReminder marks a meeting as reminded. It reports false if another tick already claimed it.
func (r *MentorshipRepository) ClaimReminder(ctx context.Context, meetingID string, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE meetings SET reminded_at = $2 WHERE id = $1 AND reminded_at IS NULL`, meetingID, at)
	if err != nil {
		return false, fmt.Errorf("claim reminder: %w", err)
	}
	if err := expectOneRow(res); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// ReleaseReminder clears a claim so a later tick can retry.
func (r *MentorshipRepository) ReleaseReminder(ctx context.Context, meetingID string) error {
	if _, err := r.db.ExecContext(ctx, `UPDATE meetings SET reminded_at = NULL WHERE id = $1`, meetingID); err != nil {
		return fmt.Errorf("release reminder: %w", err)
	}
	return nil
}
