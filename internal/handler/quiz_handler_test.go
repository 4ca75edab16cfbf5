package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rukundo0023/empowerhered-sub000/internal/dto"
	"github.com/rukundo0023/empowerhered-sub000/internal/models"
	"github.com/rukundo0023/empowerhered-sub000/internal/service"
	appErrors "github.com/rukundo0023/empowerhered-sub000/pkg/errors"
)

type quizServiceMock struct {
	submitReq dto.SubmitQuizRequest
	submitID  string
}

func (m *quizServiceMock) Create(ctx context.Context, req dto.CreateQuizRequest, claims *models.JWTClaims) (*models.Quiz, error) {
	return &models.Quiz{ID: "quiz-1", Title: req.Title, CreatedBy: claims.UserID}, nil
}

func (m *quizServiceMock) Get(ctx context.Context, id string, claims *models.JWTClaims) (*models.Quiz, error) {
	return nil, appErrors.Clone(appErrors.ErrNotFound, "Quiz not found")
}

func (m *quizServiceMock) Submit(ctx context.Context, id string, req dto.SubmitQuizRequest, claims *models.JWTClaims) (*models.QuizResult, error) {
	m.submitID = id
	m.submitReq = req
	return &models.QuizResult{QuizID: id, Score: 3, TotalPoints: 4, Percentage: 75, Passed: true}, nil
}

func (m *quizServiceMock) Result(ctx context.Context, id string, claims *models.JWTClaims) (*models.QuizResult, error) {
	return &models.QuizResult{QuizID: id}, nil
}

type certificateMock struct {
	file *service.CertificateFile
	err  error
}

func (m *certificateMock) Issue(ctx context.Context, quizID string, claims *models.JWTClaims) (*models.CertificateLink, error) {
	return &models.CertificateLink{Certificate: models.Certificate{ID: "c1", QuizID: quizID}, DownloadURL: "/api/certificates/download/tok"}, nil
}

func (m *certificateMock) Open(ctx context.Context, token string) (*service.CertificateFile, error) {
	return m.file, m.err
}

var student = &models.JWTClaims{UserID: "student-1", Role: models.RoleStudent}

func TestQuizHandlerSubmit(t *testing.T) {
	svc := &quizServiceMock{}
	c, w := testContext(http.MethodPost, "/api/quizzes/quiz-1/submit", `{"answers":[{"questionId":"q1","answer":"4"}]}`, student)
	c.Params = gin.Params{{Key: "id", Value: "quiz-1"}}

	NewQuizHandler(svc, &certificateMock{}).Submit(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "quiz-1", svc.submitID)
	require.Len(t, svc.submitReq.Answers, 1)
	var result models.QuizResult
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &result))
	assert.Equal(t, 75, result.Percentage)
	assert.True(t, result.Passed)
}

func TestQuizHandlerGetNotFound(t *testing.T) {
	c, w := testContext(http.MethodGet, "/api/quizzes/x", "", student)
	NewQuizHandler(&quizServiceMock{}, &certificateMock{}).Get(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQuizHandlerIssueCertificate(t *testing.T) {
	c, w := testContext(http.MethodPost, "/api/quizzes/quiz-1/certificate", "", student)
	c.Params = gin.Params{{Key: "id", Value: "quiz-1"}}
	NewQuizHandler(&quizServiceMock{}, &certificateMock{}).IssueCertificate(c)

	require.Equal(t, http.StatusOK, w.Code)
	var link map[string]interface{}
	require.NoError(t, json.Unmarshal(decode(t, w).Data, &link))
	assert.Equal(t, "/api/certificates/download/tok", link["downloadUrl"])
}

func TestCertificateHandlerDownload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cert.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.3"), 0o600))
	f, err := os.Open(path)
	require.NoError(t, err)

	c, w := testContext(http.MethodGet, "/api/certificates/download/tok", "", nil)
	NewCertificateHandler(&certificateMock{file: &service.CertificateFile{Name: "certificate-c1.pdf", File: f, Size: 8}}).Download(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "certificate-c1.pdf")
	assert.Equal(t, "%PDF-1.3", w.Body.String())
}

func TestCertificateHandlerDownloadRejected(t *testing.T) {
	c, w := testContext(http.MethodGet, "/api/certificates/download/bad", "", nil)
	NewCertificateHandler(&certificateMock{err: appErrors.Clone(appErrors.ErrForbidden, "invalid download link")}).Download(c)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

type authServiceMock struct{}

func (authServiceMock) Register(ctx context.Context, req models.RegisterRequest) (*models.LoginResponse, error) {
	return &models.LoginResponse{AccessToken: "t", User: models.UserInfo{Email: req.Email}}, nil
}

func (authServiceMock) Login(ctx context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	return nil, appErrors.ErrInvalidCredentials
}

func (authServiceMock) Me(ctx context.Context, userID string) (*models.User, error) {
	return &models.User{ID: userID, PasswordHash: "secret-hash"}, nil
}

func TestAuthHandler(t *testing.T) {
	h := NewAuthHandler(authServiceMock{})

	c, w := testContext(http.MethodPost, "/api/auth/register", `{"name":"A","email":"a@example.com","password":"longenough"}`, nil)
	h.Register(c)
	assert.Equal(t, http.StatusCreated, w.Code)

	c, w = testContext(http.MethodPost, "/api/auth/login", `{"email":"a@example.com","password":"x"}`, nil)
	h.Login(c)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	c, w = testContext(http.MethodGet, "/api/auth/me", "", student)
	h.Me(c)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "secret-hash")
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) PingContext(ctx context.Context) error { return f(ctx) }

func TestMetricsHandlerReady(t *testing.T) {
	c, w := testContext(http.MethodGet, "/ready", "", nil)
	NewMetricsHandler(nil, pingerFunc(func(context.Context) error { return nil })).Ready(c)
	assert.Equal(t, http.StatusOK, w.Code)

	c, w = testContext(http.MethodGet, "/ready", "", nil)
	NewMetricsHandler(nil, pingerFunc(func(context.Context) error { return errors.New("down") })).Ready(c)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	c, w = testContext(http.MethodGet, "/metrics", "", nil)
	NewMetricsHandler(service.NewMetricsService(), nil).Prometheus(c)
	assert.Equal(t, http.StatusOK, w.Code)
}

type mentorshipServiceMock struct {
	scheduled dto.ScheduleMeetingRequest
}

func (m *mentorshipServiceMock) List(ctx context.Context, claims *models.JWTClaims) ([]models.Mentorship, error) {
	return []models.Mentorship{}, nil
}

func (m *mentorshipServiceMock) Get(ctx context.Context, id string, claims *models.JWTClaims) (*dto.MentorshipDetail, error) {
	return nil, appErrors.Clone(appErrors.ErrForbidden, "not a participant of this mentorship")
}

func (m *mentorshipServiceMock) Cancel(ctx context.Context, id string, claims *models.JWTClaims) (*models.Mentorship, error) {
	return &models.Mentorship{ID: id, Status: models.MentorshipStatusCancelled}, nil
}

func (m *mentorshipServiceMock) ScheduleMeeting(ctx context.Context, id string, req dto.ScheduleMeetingRequest, claims *models.JWTClaims) (*models.Meeting, error) {
	m.scheduled = req
	return &models.Meeting{ID: "m1"}, nil
}

func (m *mentorshipServiceMock) ListMeetings(ctx context.Context, id string, claims *models.JWTClaims) ([]models.Meeting, error) {
	return []models.Meeting{}, nil
}

func (m *mentorshipServiceMock) AddGoal(ctx context.Context, id string, req dto.AddGoalRequest, claims *models.JWTClaims) (*models.Mentorship, error) {
	return &models.Mentorship{ID: id}, nil
}

func (m *mentorshipServiceMock) UpdateProgress(ctx context.Context, id string, req dto.UpdateProgressRequest, claims *models.JWTClaims) (*models.Mentorship, error) {
	return &models.Mentorship{ID: id, Progress: *req.Progress}, nil
}

func (m *mentorshipServiceMock) AddFeedback(ctx context.Context, id string, req dto.MentorshipFeedbackRequest, claims *models.JWTClaims) (*models.Mentorship, error) {
	return &models.Mentorship{ID: id}, nil
}

func TestMentorshipHandler(t *testing.T) {
	svc := &mentorshipServiceMock{}
	h := NewMentorshipHandler(svc)

	c, w := testContext(http.MethodPost, "/api/mentors/mentorships/ms-1/meetings", `{"date":"2024-06-01T10:00:00Z","meetingType":"audio"}`, mentor)
	h.ScheduleMeeting(c)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, models.MeetingTypeAudio, svc.scheduled.MeetingType)
	assert.Equal(t, 2024, svc.scheduled.Date.Year())

	c, w = testContext(http.MethodGet, "/api/mentors/mentorships/ms-1", "", student)
	h.Get(c)
	assert.Equal(t, http.StatusForbidden, w.Code)

	c, w = testContext(http.MethodPut, "/api/mentors/mentorships/ms-1/progress", `{"progress":40}`, mentor)
	h.UpdateProgress(c)
	require.Equal(t, http.StatusOK, w.Code)
}
