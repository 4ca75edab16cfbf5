package service

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"go.uber.org/zap"

	"github.com/rukundo0023/empowerhered-sub000/internal/models"
	"github.com/rukundo0023/empowerhered-sub000/pkg/mail"
)

// Notification kinds, used as the metrics label.
const (
	NotificationBookingAccepted = "booking_accepted"
	NotificationBookingRejected = "booking_rejected"
	NotificationMeetingReminder = "meeting_reminder"
)

var emailTemplates = template.Must(template.New("emails").Funcs(template.FuncMap{
	"datetime": func(t time.Time) string { return t.UTC().Format("Monday, 2 January 2006 15:04 MST") },
}).Parse(`
{{define "booking_accepted"}}<h2>Your mentorship session is confirmed</h2>
<p>Hi {{.Booking.MenteeName}},</p>
<p>{{if .MentorName}}{{.MentorName}}{{else}}A mentor{{end}} accepted your request for <strong>{{.Booking.Topic}}</strong>.</p>
<ul>
<li>Date: {{datetime .Booking.Date}}</li>
<li>Time: {{.Booking.Time}}</li>
<li>Duration: {{.Booking.Duration}} minutes</li>
</ul>
<p>Your mentor will share the meeting details before the session.</p>{{end}}

{{define "booking_rejected"}}<h2>Update on your mentorship request</h2>
<p>Hi {{.Booking.MenteeName}},</p>
<p>Your request for <strong>{{.Booking.Topic}}</strong> could not be accepted this time. You are welcome to submit a new request.</p>{{end}}

{{define "meeting_reminder"}}<h2>Upcoming mentorship session</h2>
<p>Hi {{.RecipientName}},</p>
<p>Your session with {{.OtherName}} starts at {{datetime .Reminder.Date}} and lasts {{.Reminder.Duration}} minutes ({{.Reminder.MeetingType}}).</p>
{{with .Reminder.MeetingLink}}<p>Join here: <a href="{{.}}">{{.}}</a></p>{{end}}{{end}}
`))

// NotificationService renders and sends transactional email.
type NotificationService struct {
	sender  mail.Sender
	metrics *MetricsService
	logger  *zap.Logger
	timeout time.Duration
}

// NewNotificationService constructs a NotificationService. A zero timeout defaults to ten seconds.
func NewNotificationService(sender mail.Sender, metrics *MetricsService, timeout time.Duration, logger *zap.Logger) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &NotificationService{sender: sender, metrics: metrics, logger: logger, timeout: timeout}
}

// BookingAccepted tells the mentee their booking was confirmed. Failures are logged and counted only.
func (s *NotificationService) BookingAccepted(ctx context.Context, booking models.Booking, mentorName string) {
	data := struct {
		Booking    models.Booking
		MentorName string
	}{booking, mentorName}
	err := s.deliver(ctx, NotificationBookingAccepted, booking.MenteeEmail, booking.MenteeName, "Your mentorship session is confirmed", data)
	s.report(NotificationBookingAccepted, booking.ID, err)
}

// BookingRejected tells the mentee their booking was declined. Failures are logged and counted only.
func (s *NotificationService) BookingRejected(ctx context.Context, booking models.Booking) {
	data := struct{ Booking models.Booking }{booking}
	err := s.deliver(ctx, NotificationBookingRejected, booking.MenteeEmail, booking.MenteeName, "Update on your mentorship request", data)
	s.report(NotificationBookingRejected, booking.ID, err)
}

// MeetingReminder emails one participant about the meeting with the other. The error is returned
// so the caller can retry that recipient.
func (s *NotificationService) MeetingReminder(ctx context.Context, reminder models.MeetingReminder, to, other models.UserSummary) error {
	data := struct {
		RecipientName string
		OtherName     string
		Reminder      models.MeetingReminder
	}{to.Name, other.Name, reminder}
	err := s.deliver(ctx, NotificationMeetingReminder, to.Email, to.Name, "Reminder: mentorship session soon", data)
	s.report(NotificationMeetingReminder, reminder.MeetingID, err)
	return err
}

func (s *NotificationService) deliver(ctx context.Context, kind, to, toName, subject string, data interface{}) error {
	if s == nil || s.sender == nil {
		return fmt.Errorf("mail sender not configured")
	}
	var body bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&body, kind, data); err != nil {
		return fmt.Errorf("render %s email: %w", kind, err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.sender.Send(sendCtx, mail.Message{To: to, ToName: toName, Subject: subject, HTML: body.String()})
}

func (s *NotificationService) report(kind, resourceID string, err error) {
	if s == nil {
		return
	}
	s.metrics.RecordNotification(kind, err)
	if err != nil {
		s.logger.Warn("notification not delivered", zap.String("kind", kind), zap.String("resource_id", resourceID), zap.Error(err))
		return
	}
	s.logger.Debug("notification delivered", zap.String("kind", kind), zap.String("resource_id", resourceID))
}
