package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rukundo0023/empowerhered-sub000/internal/dto"
	"github.com/rukundo0023/empowerhered-sub000/internal/middleware"
	"github.com/rukundo0023/empowerhered-sub000/internal/models"
	appErrors "github.com/rukundo0023/empowerhered-sub000/pkg/errors"
)

type bookingServiceMock struct {
	submitReq  dto.SubmitBookingRequest
	submitResp *models.Booking
	acceptResp *dto.AcceptBookingResponse
	acceptErr  error
	acceptID   string
	pending    []models.PendingBooking
	rejectErr  error
}

func (m *bookingServiceMock) Submit(ctx context.Context, req dto.SubmitBookingRequest) (*models.Booking, error) {
	m.submitReq = req
	return m.submitResp, nil
}

func (m *bookingServiceMock) ListPending(ctx context.Context) ([]models.PendingBooking, error) {
	return m.pending, nil
}

func (m *bookingServiceMock) ListMine(ctx context.Context, claims *models.JWTClaims) ([]models.Booking, error) {
	return []models.Booking{}, nil
}

func (m *bookingServiceMock) Accept(ctx context.Context, id string, claims *models.JWTClaims) (*dto.AcceptBookingResponse, error) {
	m.acceptID = id
	return m.acceptResp, m.acceptErr
}

func (m *bookingServiceMock) Reject(ctx context.Context, id string, claims *models.JWTClaims) (*models.Booking, error) {
	return &models.Booking{ID: id, Status: models.BookingStatusCancelled}, m.rejectErr
}

func (m *bookingServiceMock) SubmitFeedback(ctx context.Context, id string, req dto.BookingFeedbackRequest, claims *models.JWTClaims) (*models.Booking, error) {
	return &models.Booking{ID: id}, nil
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Status  int    `json:"status"`
	} `json:"error"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func testContext(method, target, body string, claims *models.JWTClaims) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	if claims != nil {
		c.Set(middleware.ContextUserKey, claims)
	}
	return c, w
}

var mentor = &models.JWTClaims{UserID: "mentor-1", Role: models.RoleMentor}

func TestBookingHandlerSubmit(t *testing.T) {
	svc := &bookingServiceMock{submitResp: &models.Booking{ID: "b1", Status: models.BookingStatusPending}}
	c, w := testContext(http.MethodPost, "/api/mentors/bookings", `{"mentee":"u1","name":"Amina","email":"a@example.com","duration":30}`, nil)

	NewBookingHandler(svc).Submit(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "u1", svc.submitReq.Mentee)
	require.NotNil(t, svc.submitReq.Duration)
	assert.Equal(t, 30, *svc.submitReq.Duration)

	var booking map[string]interface{}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &booking))
	assert.Equal(t, "pending", booking["status"])
	assert.Contains(t, booking, "mentor")
	assert.Nil(t, booking["mentor"])
}

func TestBookingHandlerSubmitMalformedBody(t *testing.T) {
	c, w := testContext(http.MethodPost, "/api/mentors/bookings", `{"mentee":`, nil)
	NewBookingHandler(&bookingServiceMock{}).Submit(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, appErrors.ErrValidation.Code, decode(t, w).Error.Code)
}

func TestBookingHandlerAccept(t *testing.T) {
	svc := &bookingServiceMock{acceptResp: &dto.AcceptBookingResponse{
		Booking:      models.Booking{ID: "b1", Status: models.BookingStatusConfirmed},
		MentorshipID: "ms-1",
		MeetingID:    "m-1",
	}}
	c, w := testContext(http.MethodPut, "/api/mentors/bookings/b1/accept", "", mentor)
	c.Params = gin.Params{{Key: "id", Value: "b1"}}

	NewBookingHandler(svc).Accept(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "b1", svc.acceptID)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &body))
	assert.Equal(t, "confirmed", body["status"])
	assert.Equal(t, "ms-1", body["mentorshipId"])
	assert.Equal(t, "m-1", body["meetingId"])
}

func TestBookingHandlerAcceptErrors(t *testing.T) {
	cases := []struct {
		err    error
		status int
		msg    string
	}{
		{appErrors.Clone(appErrors.ErrNotFound, "Booking not found"), http.StatusNotFound, "Booking not found"},
		{appErrors.Clone(appErrors.ErrInvalidState, "Booking is no longer pending"), http.StatusBadRequest, "Booking is no longer pending"},
	}
	for _, tc := range cases {
		c, w := testContext(http.MethodPut, "/api/mentors/bookings/b1/accept", "", mentor)
		NewBookingHandler(&bookingServiceMock{acceptErr: tc.err}).Accept(c)

		assert.Equal(t, tc.status, w.Code)
		assert.Equal(t, tc.msg, decode(t, w).Error.Message)
	}
}

func TestBookingHandlerRequiresClaims(t *testing.T) {
	c, w := testContext(http.MethodPut, "/api/mentors/bookings/b1/reject", "", nil)
	NewBookingHandler(&bookingServiceMock{}).Reject(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestBookingHandlerListPending(t *testing.T) {
	svc := &bookingServiceMock{pending: []models.PendingBooking{{
		Booking: models.Booking{ID: "b1", MenteeID: "u1", Status: models.BookingStatusPending},
		Mentee:  models.UserSummary{ID: "u1", Name: "Amina", Email: "a@example.com"},
	}}}
	c, w := testContext(http.MethodGet, "/api/mentors/bookings/pending", "", mentor)
	NewBookingHandler(svc).ListPending(c)

	require.Equal(t, http.StatusOK, w.Code)
	var items []map[string]interface{}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &items))
	require.Len(t, items, 1)
	mentee, ok := items[0]["mentee"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "Amina", mentee["name"])
}
