package service

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/rukundo0023/empowerhered-sub000/internal/models"
	"github.com/rukundo0023/empowerhered-sub000/pkg/jobs"
)

// JobKindMeetingReminder identifies reminder jobs on the worker queue.
const JobKindMeetingReminder = "meeting_reminder"

const defaultReminderSchedule = "*/5 * * * *"

type reminderStore interface {
	ListDueReminders(ctx context.Context, from, to time.Time) ([]models.MeetingReminder, error)
	ClaimReminder(ctx context.Context, meetingID string, at time.Time) (bool, error)
	ReleaseReminder(ctx context.Context, meetingID string) error
}

type reminderNotifier interface {
	MeetingReminder(ctx context.Context, reminder models.MeetingReminder, to, other models.UserSummary) error
}

// Reminder recipients.
const (
	reminderToMentor = "mentor"
	reminderToMentee = "mentee"
)

// ReminderDelivery is the payload of a reminder job. The queue retries the same payload, so Sent
// carries over and participants already emailed are skipped.
type ReminderDelivery struct {
	Reminder models.MeetingReminder
	Sent     map[string]bool
}

// Pending lists the recipients still waiting for the email.
func (d *ReminderDelivery) Pending() []string {
	var out []string
	for _, r := range []string{reminderToMentor, reminderToMentee} {
		if !d.Sent[r] {
			out = append(out, r)
		}
	}
	return out
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// ReminderConfig sets how far ahead reminders go out.
type ReminderConfig struct {
	LeadTime time.Duration
	Window   time.Duration
}

// ReminderService finds meetings that start soon and emails both participants through a job queue.
type ReminderService struct {
	store    reminderStore
	notifier reminderNotifier
	queue    jobEnqueuer
	metrics  *MetricsService
	cfg      ReminderConfig
	logger   *zap.Logger
	now      func() time.Time
}

// NewReminderService constructs a ReminderService. Attach a queue with UseQueue before scanning.
func NewReminderService(store reminderStore, notifier reminderNotifier, metrics *MetricsService, cfg ReminderConfig, logger *zap.Logger) *ReminderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.LeadTime <= 0 {
		cfg.LeadTime = time.Hour
	}
	if cfg.Window <= 0 {
		cfg.Window = 5 * time.Minute
	}
	return &ReminderService{
		store:    store,
		notifier: notifier,
		metrics:  metrics,
		cfg:      cfg,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// UseQueue sets the queue reminder jobs are pushed to.
func (s *ReminderService) UseQueue(q jobEnqueuer) {
	s.queue = q
}

// Schedule registers the scan on the cron scheduler.
func (s *ReminderService) Schedule(c *cron.Cron, spec string) (cron.EntryID, error) {
	if spec == "" {
		spec = defaultReminderSchedule
	}
	return c.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := s.Scan(ctx); err != nil {
			s.logger.Error("reminder scan failed", zap.Error(err))
		}
	})
}

// Scan claims every meeting starting in [now+lead, now+lead+window) and enqueues a reminder for it.
// It returns the number of jobs enqueued. A claim whose job cannot be enqueued is released.
func (s *ReminderService) Scan(ctx context.Context) (int, error) {
	if s.queue == nil {
		return 0, fmt.Errorf("reminder queue not attached")
	}
	now := s.now()
	from := now.Add(s.cfg.LeadTime)
	due, err := s.store.ListDueReminders(ctx, from, from.Add(s.cfg.Window))
	if err != nil {
		return 0, err
	}

	enqueued := 0
	for _, reminder := range due {
		claimed, err := s.store.ClaimReminder(ctx, reminder.MeetingID, now)
		if err != nil {
			s.logger.Warn("failed to claim reminder", zap.String("meeting_id", reminder.MeetingID), zap.Error(err))
			continue
		}
		if !claimed {
			continue
		}

		job := jobs.Job{Kind: JobKindMeetingReminder, Payload: &ReminderDelivery{Reminder: reminder, Sent: map[string]bool{}}}
		if err := s.queue.Enqueue(job); err != nil {
			s.logger.Warn("failed to enqueue reminder", zap.String("meeting_id", reminder.MeetingID), zap.Error(err))
			if relErr := s.store.ReleaseReminder(ctx, reminder.MeetingID); relErr != nil {
				s.logger.Error("failed to release reminder claim", zap.String("meeting_id", reminder.MeetingID), zap.Error(relErr))
			}
			continue
		}
		s.metrics.RecordReminderEnqueued()
		enqueued++
	}

	if enqueued > 0 {
		s.logger.Info("meeting reminders enqueued", zap.Int("count", enqueued))
	}
	return enqueued, nil
}

// Handle is the queue handler for reminder jobs. Each participant is emailed at most once per job.
func (s *ReminderService) Handle(ctx context.Context, job jobs.Job) error {
	if job.Kind != JobKindMeetingReminder {
		return fmt.Errorf("unexpected job kind %q", job.Kind)
	}
	delivery, ok := job.Payload.(*ReminderDelivery)
	if !ok || delivery == nil {
		return fmt.Errorf("unexpected reminder payload %T", job.Payload)
	}
	if delivery.Sent == nil {
		delivery.Sent = map[string]bool{}
	}

	r := delivery.Reminder
	var firstErr error
	for _, recipient := range delivery.Pending() {
		to, other := r.Mentor, r.Mentee
		if recipient == reminderToMentee {
			to, other = r.Mentee, r.Mentor
		}
		if err := s.notifier.MeetingReminder(ctx, r, to, other); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("remind %s: %w", recipient, err)
			}
			continue
		}
		delivery.Sent[recipient] = true
	}
	return firstErr
}

// Dropped logs a reminder that ran out of retries. The claim is kept so the meeting is not retried.
func (s *ReminderService) Dropped(job jobs.Job, err error) {
	fields := []zap.Field{zap.String("job_id", job.ID), zap.Int("attempts", job.Attempt), zap.Error(err)}
	if delivery, ok := job.Payload.(*ReminderDelivery); ok && delivery != nil {
		fields = append(fields, zap.String("meeting_id", delivery.Reminder.MeetingID), zap.Strings("not_reminded", delivery.Pending()))
	}
	s.logger.Error("meeting reminder dropped", fields...)
}
