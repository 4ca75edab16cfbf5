package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rukundo0023/empowerhered-sub000/internal/dto"
	"github.com/rukundo0023/empowerhered-sub000/internal/models"
	appErrors "github.com/rukundo0023/empowerhered-sub000/pkg/errors"
)

const msgMentorshipNotActive = "Mentorship is not active"

type mentorshipStore interface {
	FindByID(ctx context.Context, id string) (*models.Mentorship, error)
	ListForUser(ctx context.Context, userID string) ([]models.Mentorship, error)
	AddMeeting(ctx context.Context, mentorshipID string, meeting *models.Meeting) error
	ListMeetings(ctx context.Context, mentorshipID string) ([]models.Meeting, error)
	AppendGoal(ctx context.Context, id string, goal models.Goal, at time.Time) error
	AppendFeedback(ctx context.Context, id string, entry models.MentorshipFeedback) error
	UpdateProgress(ctx context.Context, id string, progress int, at time.Time) error
	Cancel(ctx context.Context, id string, from models.MentorshipStatus, at time.Time) error
}

// MentorshipService manages an established mentor/mentee relationship.
type MentorshipService struct {
	repo      mentorshipStore
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	now       func() time.Time
}

// NewMentorshipService constructs a MentorshipService.
func NewMentorshipService(repo mentorshipStore, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *MentorshipService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MentorshipService{
		repo:      repo,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// List returns the mentorships the caller takes part in.
func (s *MentorshipService) List(ctx context.Context, claims *models.JWTClaims) ([]models.Mentorship, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	items, err := s.repo.ListForUser(ctx, claims.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list mentorships")
	}
	return items, nil
}

// Get returns one mentorship with its meetings in list order.
func (s *MentorshipService) Get(ctx context.Context, id string, claims *models.JWTClaims) (*dto.MentorshipDetail, error) {
	mentorship, err := s.loadVisible(ctx, id, claims)
	if err != nil {
		return nil, err
	}
	meetings, err := s.repo.ListMeetings(ctx, mentorship.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list meetings")
	}
	return &dto.MentorshipDetail{Mentorship: *mentorship, MeetingDetails: meetings}, nil
}

// Cancel ends the mentorship for either participant.
func (s *MentorshipService) Cancel(ctx context.Context, id string, claims *models.JWTClaims) (*models.Mentorship, error) {
	mentorship, err := s.loadVisible(ctx, id, claims)
	if err != nil {
		return nil, err
	}
	if !mentorship.HasParticipant(claims.UserID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only participants can cancel a mentorship")
	}
	from := mentorship.Status
	next, err := from.TransitionTo(models.MentorshipStatusCancelled)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidState.Code, appErrors.ErrInvalidState.Status, "Mentorship cannot be cancelled")
	}

	now := s.now()
	if err := s.repo.Cancel(ctx, mentorship.ID, from, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidState, "Mentorship cannot be cancelled")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to cancel mentorship")
	}
	mentorship.Status = next
	mentorship.EndDate = &now
	mentorship.UpdatedAt = now

	s.metrics.RecordTransition("mentorship", string(from), string(next))
	s.logger.Info("mentorship cancelled", zap.String("mentorship_id", mentorship.ID), zap.String("actor_id", claims.UserID))
	return mentorship, nil
}

// ScheduleMeeting appends a new meeting to an active mentorship. Only its mentor may schedule.
func (s *MentorshipService) ScheduleMeeting(ctx context.Context, id string, req dto.ScheduleMeetingRequest, claims *models.JWTClaims) (*models.Meeting, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid meeting payload")
	}
	mentorship, err := s.loadVisible(ctx, id, claims)
	if err != nil {
		return nil, err
	}
	if mentorship.MentorID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the mentor can schedule meetings")
	}
	if mentorship.Status != models.MentorshipStatusActive {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, msgMentorshipNotActive)
	}

	now := s.now()
	meeting := &models.Meeting{
		ID:          uuid.NewString(),
		MentorID:    mentorship.MentorID,
		MenteeID:    mentorship.MenteeID,
		Date:        req.Date.UTC(),
		Status:      models.MeetingStatusScheduled,
		Notes:       strings.TrimSpace(req.Notes),
		Duration:    req.Duration,
		MeetingType: req.MeetingType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if meeting.Duration == 0 {
		meeting.Duration = models.DefaultBookingDuration
	}
	if meeting.MeetingType == "" {
		meeting.MeetingType = models.MeetingTypeVideo
	}
	if link := strings.TrimSpace(req.MeetingLink); link != "" {
		meeting.MeetingLink = &link
	}

	if err := s.repo.AddMeeting(ctx, mentorship.ID, meeting); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidState, msgMentorshipNotActive)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to schedule meeting")
	}
	s.logger.Info("meeting scheduled", zap.String("mentorship_id", mentorship.ID), zap.String("meeting_id", meeting.ID))
	return meeting, nil
}

// ListMeetings returns the mentorship's meetings in the order they were appended.
func (s *MentorshipService) ListMeetings(ctx context.Context, id string, claims *models.JWTClaims) ([]models.Meeting, error) {
	mentorship, err := s.loadVisible(ctx, id, claims)
	if err != nil {
		return nil, err
	}
	meetings, err := s.repo.ListMeetings(ctx, mentorship.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list meetings")
	}
	return meetings, nil
}

// AddGoal appends a goal. Either participant may add goals.
func (s *MentorshipService) AddGoal(ctx context.Context, id string, req dto.AddGoalRequest, claims *models.JWTClaims) (*models.Mentorship, error) {
	req.Description = strings.TrimSpace(req.Description)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid goal payload")
	}
	mentorship, err := s.loadVisible(ctx, id, claims)
	if err != nil {
		return nil, err
	}
	if !mentorship.HasParticipant(claims.UserID) {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only participants can add goals")
	}

	goal := models.Goal{Description: req.Description, TargetDate: req.TargetDate}
	now := s.now()
	if err := s.repo.AppendGoal(ctx, mentorship.ID, goal, now); err != nil {
		return nil, s.writeError(err, "failed to add goal")
	}
	mentorship.Goals = append(mentorship.Goals, goal)
	mentorship.UpdatedAt = now
	return mentorship, nil
}

// UpdateProgress sets progress on an active mentorship. Only its mentor may do so.
func (s *MentorshipService) UpdateProgress(ctx context.Context, id string, req dto.UpdateProgressRequest, claims *models.JWTClaims) (*models.Mentorship, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "progress must be between 0 and 100")
	}
	mentorship, err := s.loadVisible(ctx, id, claims)
	if err != nil {
		return nil, err
	}
	if mentorship.MentorID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the mentor can update progress")
	}
	if mentorship.Status != models.MentorshipStatusActive {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, msgMentorshipNotActive)
	}

	now := s.now()
	if err := s.repo.UpdateProgress(ctx, mentorship.ID, *req.Progress, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidState, msgMentorshipNotActive)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update progress")
	}
	mentorship.Progress = *req.Progress
	mentorship.UpdatedAt = now
	return mentorship, nil
}

// AddFeedback records the mentee's rating of the mentorship.
func (s *MentorshipService) AddFeedback(ctx context.Context, id string, req dto.MentorshipFeedbackRequest, claims *models.JWTClaims) (*models.Mentorship, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "rating must be between 1 and 5")
	}
	mentorship, err := s.loadVisible(ctx, id, claims)
	if err != nil {
		return nil, err
	}
	if mentorship.MenteeID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the mentee can leave feedback")
	}

	entry := models.MentorshipFeedback{Rating: req.Rating, Comment: strings.TrimSpace(req.Comment), Date: s.now()}
	if err := s.repo.AppendFeedback(ctx, mentorship.ID, entry); err != nil {
		return nil, s.writeError(err, "failed to add feedback")
	}
	mentorship.Feedback = append(mentorship.Feedback, entry)
	mentorship.UpdatedAt = entry.Date
	return mentorship, nil
}

// loadVisible returns the mentorship when the caller is a participant or an admin.
func (s *MentorshipService) loadVisible(ctx context.Context, id string, claims *models.JWTClaims) (*models.Mentorship, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	mentorship, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Mentorship not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mentorship")
	}
	if !mentorship.HasParticipant(claims.UserID) && claims.Role != models.RoleAdmin {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "not a participant of this mentorship")
	}
	return mentorship, nil
}

func (s *MentorshipService) writeError(err error, message string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Clone(appErrors.ErrNotFound, "Mentorship not found")
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}
