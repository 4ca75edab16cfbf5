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
	"github.com/rukundo0023/empowerhered-sub000/internal/repository"
	appErrors "github.com/rukundo0023/empowerhered-sub000/pkg/errors"
)

const (
	msgBookingNotFound   = "Booking not found"
	msgBookingNotPending = "Booking is no longer pending"
	msgMentorshipExists  = "A mentorship already exists with this mentee"
)

type bookingStore interface {
	Create(ctx context.Context, booking *models.Booking) error
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	ListPending(ctx context.Context) ([]models.PendingBooking, error)
	ListByMentee(ctx context.Context, menteeID string) ([]models.Booking, error)
	Accept(ctx context.Context, a *models.BookingAcceptance) error
	Cancel(ctx context.Context, id string, at time.Time) error
	SaveFeedback(ctx context.Context, id string, feedback models.BookingFeedback, at time.Time) error
}

type mentorshipPairFinder interface {
	FindByPair(ctx context.Context, mentorID, menteeID string) (*models.Mentorship, error)
}

type userFinder interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

type bookingNotifier interface {
	BookingAccepted(ctx context.Context, booking models.Booking, mentorName string)
	BookingRejected(ctx context.Context, booking models.Booking)
}

// BookingService runs the booking review workflow.
type BookingService struct {
	repo        bookingStore
	mentorships mentorshipPairFinder
	users       userFinder
	notifier    bookingNotifier
	cache       *CacheService
	metrics     *MetricsService
	validator   *validator.Validate
	logger      *zap.Logger
	now         func() time.Time
}

// NewBookingService constructs a BookingService.
func NewBookingService(
	repo bookingStore,
	mentorships mentorshipPairFinder,
	users userFinder,
	notifier bookingNotifier,
	cache *CacheService,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
) *BookingService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &BookingService{
		repo:        repo,
		mentorships: mentorships,
		users:       users,
		notifier:    notifier,
		cache:       cache,
		metrics:     metrics,
		validator:   validate,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Submit records a new pending booking for an existing mentee.
func (s *BookingService) Submit(ctx context.Context, req dto.SubmitBookingRequest) (*models.Booking, error) {
	req.Mentee = strings.TrimSpace(req.Mentee)
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "Please provide all required fields")
	}

	if _, err := s.users.FindByID(ctx, req.Mentee); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Mentee not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mentee")
	}

	booking := &models.Booking{
		MenteeID:    req.Mentee,
		MenteeName:  req.Name,
		MenteeEmail: req.Email,
		Topic:       models.DefaultBookingTopic,
		Duration:    models.DefaultBookingDuration,
		Date:        s.now(),
		Time:        models.DefaultBookingTime,
		Status:      models.BookingStatusPending,
	}
	if topic := strings.TrimSpace(req.Topic); topic != "" {
		booking.Topic = topic
	}
	if req.Duration != nil {
		booking.Duration = *req.Duration
	}

	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create booking")
	}
	s.invalidateBookings(ctx)
	s.logger.Info("booking submitted", zap.String("booking_id", booking.ID), zap.String("mentee_id", booking.MenteeID))
	return booking, nil
}

// ListPending returns every pending booking, oldest first.
func (s *BookingService) ListPending(ctx context.Context) ([]models.PendingBooking, error) {
	generation, cacheable := s.cache.Generation(ctx, cacheKeyBookingsGeneration)
	key := cacheKeyPendingBookings + ":" + generation

	var cached []models.PendingBooking
	if cacheable && s.cache.Get(ctx, key, &cached) {
		return cached, nil
	}

	bookings, err := s.repo.ListPending(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pending bookings")
	}
	if cacheable {
		s.cache.Set(ctx, key, bookings, 0)
	}
	return bookings, nil
}

// invalidateBookings bumps the bookings generation before clearing cached pages so a listing
// still in flight cannot write back a stale page under the live key.
func (s *BookingService) invalidateBookings(ctx context.Context) {
	s.cache.Bump(ctx, cacheKeyBookingsGeneration)
	s.cache.Invalidate(ctx, cachePatternBookings)
}

// ListMine returns the bookings submitted by the caller.
func (s *BookingService) ListMine(ctx context.Context, claims *models.JWTClaims) ([]models.Booking, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	bookings, err := s.repo.ListByMentee(ctx, claims.UserID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}
	return bookings, nil
}

// Accept confirms a pending booking on behalf of the calling mentor. The mentorship for the pair is
// created or reactivated and a first meeting is scheduled, all in one transaction. The mentee is
// emailed after commit.
func (s *BookingService) Accept(ctx context.Context, id string, claims *models.JWTClaims) (*dto.AcceptBookingResponse, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := booking.Status.TransitionTo(models.BookingStatusConfirmed); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidState.Code, appErrors.ErrInvalidState.Status, msgBookingNotPending)
	}

	now := s.now()
	mentorID := claims.UserID

	mentorship, created, from, err := s.resolveMentorship(ctx, mentorID, booking.MenteeID, now)
	if err != nil {
		return nil, err
	}

	booking.MentorID = &mentorID
	booking.Status = models.BookingStatusConfirmed
	booking.UpdatedAt = now

	meeting := &models.Meeting{
		ID:          uuid.NewString(),
		MentorID:    mentorID,
		MenteeID:    booking.MenteeID,
		Date:        booking.Date,
		Status:      models.MeetingStatusScheduled,
		Notes:       booking.Topic,
		Duration:    booking.Duration,
		MeetingType: models.MeetingTypeVideo,
		MeetingLink: booking.MeetingLink,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err = s.repo.Accept(ctx, &models.BookingAcceptance{
		Booking:          booking,
		Mentorship:       mentorship,
		CreateMentorship: created,
		Meeting:          meeting,
	})
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return nil, appErrors.Clone(appErrors.ErrInvalidState, msgBookingNotPending)
	case errors.Is(err, repository.ErrDuplicate), errors.Is(err, repository.ErrMentorshipChanged):
		return nil, appErrors.Clone(appErrors.ErrInvalidState, msgMentorshipExists)
	case err != nil:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to accept booking")
	}

	s.metrics.RecordTransition("booking", string(models.BookingStatusPending), string(models.BookingStatusConfirmed))
	s.metrics.RecordTransition("mentorship", from, string(models.MentorshipStatusActive))
	s.invalidateBookings(ctx)
	s.logger.Info("booking accepted",
		zap.String("booking_id", booking.ID),
		zap.String("mentor_id", mentorID),
		zap.String("mentorship_id", mentorship.ID),
		zap.Bool("mentorship_created", created),
	)

	if s.notifier != nil {
		s.notifier.BookingAccepted(ctx, *booking, claims.Name)
	}

	return &dto.AcceptBookingResponse{Booking: *booking, MentorshipID: mentorship.ID, MeetingID: meeting.ID}, nil
}

// resolveMentorship returns the mentorship to write, whether it is new and the status it leaves.
func (s *BookingService) resolveMentorship(ctx context.Context, mentorID, menteeID string, now time.Time) (*models.Mentorship, bool, string, error) {
	existing, err := s.mentorships.FindByPair(ctx, mentorID, menteeID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, false, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load mentorship")
		}
		return &models.Mentorship{
			ID:        uuid.NewString(),
			MentorID:  mentorID,
			MenteeID:  menteeID,
			Status:    models.MentorshipStatusActive,
			StartDate: now,
			Progress:  0,
			Goals:     models.Goals{},
			Feedback:  models.FeedbackEntries{},
			CreatedAt: now,
			UpdatedAt: now,
		}, true, "none", nil
	}

	if existing.Status != models.MentorshipStatusCancelled {
		return nil, false, "", appErrors.Clone(appErrors.ErrInvalidState, msgMentorshipExists)
	}
	from := existing.Status
	next, err := from.TransitionTo(models.MentorshipStatusActive)
	if err != nil {
		return nil, false, "", appErrors.Wrap(err, appErrors.ErrInvalidState.Code, appErrors.ErrInvalidState.Status, msgMentorshipExists)
	}
	existing.Status = next
	existing.StartDate = now
	existing.EndDate = nil
	existing.UpdatedAt = now
	return existing, false, string(from), nil
}

// Reject cancels a pending booking and tells the mentee.
func (s *BookingService) Reject(ctx context.Context, id string, claims *models.JWTClaims) (*models.Booking, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := booking.Status.TransitionTo(models.BookingStatusCancelled)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInvalidState.Code, appErrors.ErrInvalidState.Status, msgBookingNotPending)
	}

	now := s.now()
	if err := s.repo.Cancel(ctx, booking.ID, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidState, msgBookingNotPending)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reject booking")
	}
	booking.Status = next
	booking.UpdatedAt = now

	s.metrics.RecordTransition("booking", string(models.BookingStatusPending), string(next))
	s.invalidateBookings(ctx)
	s.logger.Info("booking rejected", zap.String("booking_id", booking.ID), zap.String("mentor_id", claims.UserID))

	if s.notifier != nil {
		s.notifier.BookingRejected(ctx, *booking)
	}
	return booking, nil
}

// SubmitFeedback stores the mentee's rating on a confirmed booking.
func (s *BookingService) SubmitFeedback(ctx context.Context, id string, req dto.BookingFeedbackRequest, claims *models.JWTClaims) (*models.Booking, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid feedback payload")
	}
	booking, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.MenteeID != claims.UserID {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "only the mentee can rate this booking")
	}
	if booking.Status != models.BookingStatusConfirmed {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "Feedback can only be left on confirmed bookings")
	}

	feedback := models.BookingFeedback{Rating: req.Rating, Comment: strings.TrimSpace(req.Comment)}
	now := s.now()
	if err := s.repo.SaveFeedback(ctx, booking.ID, feedback, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrInvalidState, "Feedback can only be left on confirmed bookings")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save feedback")
	}
	booking.Feedback = &feedback
	booking.UpdatedAt = now
	return booking, nil
}

func (s *BookingService) load(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, msgBookingNotFound)
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}
	return booking, nil
}
