package models

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookingStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to BookingStatus
		ok       bool
	}{
		{BookingStatusPending, BookingStatusConfirmed, true},
		{BookingStatusPending, BookingStatusCancelled, true},
		{BookingStatusPending, BookingStatusCompleted, false},
		{BookingStatusConfirmed, BookingStatusCancelled, false},
		{BookingStatusConfirmed, BookingStatusConfirmed, false},
		{BookingStatusCancelled, BookingStatusConfirmed, false},
		{BookingStatusCompleted, BookingStatusPending, false},
	}
	for _, tc := range cases {
		got, err := tc.from.TransitionTo(tc.to)
		if tc.ok {
			require.NoError(t, err)
			assert.Equal(t, tc.to, got)
			continue
		}
		assert.ErrorIs(t, err, ErrIllegalTransition, "%s -> %s", tc.from, tc.to)
		assert.Equal(t, tc.from, got)
		var te *TransitionError
		require.True(t, errors.As(err, &te))
		assert.Equal(t, "booking", te.Entity)
	}

	assert.False(t, BookingStatusPending.Terminal())
	assert.True(t, BookingStatusConfirmed.Terminal())
	assert.True(t, BookingStatusCancelled.Terminal())
	assert.True(t, BookingStatusCompleted.Terminal())
	assert.False(t, BookingStatus("archived").Valid())
}

func TestMentorshipStatusTransitions(t *testing.T) {
	ok := [][2]MentorshipStatus{
		{MentorshipStatusPending, MentorshipStatusActive},
		{MentorshipStatusPending, MentorshipStatusCancelled},
		{MentorshipStatusActive, MentorshipStatusCancelled},
		{MentorshipStatusCancelled, MentorshipStatusActive},
	}
	for _, pair := range ok {
		_, err := pair[0].TransitionTo(pair[1])
		assert.NoError(t, err, "%s -> %s", pair[0], pair[1])
	}

	bad := [][2]MentorshipStatus{
		{MentorshipStatusActive, MentorshipStatusActive},
		{MentorshipStatusActive, MentorshipStatusCompleted},
		{MentorshipStatusCompleted, MentorshipStatusActive},
		{MentorshipStatusCancelled, MentorshipStatusPending},
	}
	for _, pair := range bad {
		_, err := pair[0].TransitionTo(pair[1])
		assert.ErrorIs(t, err, ErrIllegalTransition, "%s -> %s", pair[0], pair[1])
	}
}

func TestBookingJSONShape(t *testing.T) {
	rating := 4
	b := Booking{ID: "b-1", MenteeID: "u-1", Status: BookingStatusPending, FeedbackRating: &rating}
	b.LoadFeedback()

	raw, err := json.Marshal(b)
	require.NoError(t, err)

	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	assert.Contains(t, out, "mentor")
	assert.Nil(t, out["mentor"])
	assert.Equal(t, "u-1", out["mentee"])
	assert.Equal(t, map[string]interface{}{"rating": float64(4)}, out["feedback"])
	assert.NotContains(t, out, "feedbackRating")
}

func TestPendingBookingExpandsMentee(t *testing.T) {
	pb := PendingBooking{
		Booking: Booking{ID: "b-1", MenteeID: "u-1"},
		Mentee:  UserSummary{ID: "u-1", Name: "Ada", Email: "ada@example.com"},
	}
	raw, err := json.Marshal(pb)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"mentee":{"id":"u-1","name":"Ada","email":"ada@example.com"}`)
}

func TestQuizWithoutAnswers(t *testing.T) {
	q := Quiz{Questions: Questions{{ID: "q1", CorrectAnswer: "B", Points: 2}, {ID: "q2", CorrectAnswer: "Paris", Points: 3}}}
	hidden := q.WithoutAnswers()

	assert.Equal(t, 5, q.TotalPoints())
	for _, question := range hidden.Questions {
		assert.Empty(t, question.CorrectAnswer)
	}
	assert.Equal(t, "B", q.Questions[0].CorrectAnswer)
}

func TestJSONBRoundTrip(t *testing.T) {
	target := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	goals := Goals{{Description: "Ship portfolio", TargetDate: &target}}
	v, err := goals.Value()
	require.NoError(t, err)

	var scanned Goals
	require.NoError(t, scanned.Scan(v))
	require.Len(t, scanned, 1)
	assert.Equal(t, "Ship portfolio", scanned[0].Description)

	empty, err := Goals(nil).Value()
	require.NoError(t, err)
	assert.Equal(t, "[]", empty)

	assert.Error(t, scanned.Scan(42))
}
