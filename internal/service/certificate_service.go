package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rukundo0023/empowerhered-sub000/internal/models"
	"github.com/rukundo0023/empowerhered-sub000/internal/repository"
	appErrors "github.com/rukundo0023/empowerhered-sub000/pkg/errors"
	"github.com/rukundo0023/empowerhered-sub000/pkg/export"
	"github.com/rukundo0023/empowerhered-sub000/pkg/storage"
)

type certificateStore interface {
	FindByID(ctx context.Context, id string) (*models.Quiz, error)
	FindResult(ctx context.Context, userID, quizID string) (*models.QuizResult, error)
	FindCertificate(ctx context.Context, userID, quizID string) (*models.Certificate, error)
	FindCertificateByID(ctx context.Context, id string) (*models.Certificate, error)
	CreateCertificate(ctx context.Context, cert *models.Certificate) error
}

type fileStorage interface {
	Save(filename string, data []byte) (string, error)
	Open(filename string) (*os.File, error)
	Exists(filename string) bool
	Delete(filename string) error
}

type urlSigner interface {
	Sign(resourceID, path string) (string, time.Time, error)
	Verify(token string) (storage.Grant, error)
}

type certificateRenderer interface {
	Render(data export.CertificateData) ([]byte, error)
}

// CertificateFile is an opened certificate ready to stream. Callers must close File.
type CertificateFile struct {
	Name string
	File *os.File
	Size int64
}

// CertificateService issues completion certificates for passed quizzes.
type CertificateService struct {
	repo      certificateStore
	users     userFinder
	storage   fileStorage
	signer    urlSigner
	renderer  certificateRenderer
	apiPrefix string
	logger    *zap.Logger
	now       func() time.Time
}

// NewCertificateService constructs a CertificateService. A nil renderer uses the default PDF layout.
func NewCertificateService(repo certificateStore, users userFinder, files fileStorage, signer urlSigner, renderer certificateRenderer, apiPrefix string, logger *zap.Logger) *CertificateService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if renderer == nil {
		renderer = export.NewCertificateRenderer("")
	}
	return &CertificateService{
		repo:      repo,
		users:     users,
		storage:   files,
		signer:    signer,
		renderer:  renderer,
		apiPrefix: strings.TrimRight(apiPrefix, "/"),
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Issue returns a download link for the caller's certificate, rendering it on first request.
func (s *CertificateService) Issue(ctx context.Context, quizID string, claims *models.JWTClaims) (*models.CertificateLink, error) {
	if claims == nil {
		return nil, appErrors.ErrUnauthorized
	}
	result, err := s.repo.FindResult(ctx, claims.UserID, quizID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "No result for this quiz")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load quiz result")
	}
	if !result.Passed {
		return nil, appErrors.Clone(appErrors.ErrInvalidState, "Quiz has not been passed")
	}

	cert, err := s.repo.FindCertificate(ctx, claims.UserID, quizID)
	switch {
	case err == nil:
		if !s.storage.Exists(cert.FilePath) {
			if err := s.render(ctx, cert, result); err != nil {
				return nil, err
			}
		}
	case errors.Is(err, sql.ErrNoRows):
		cert, err = s.create(ctx, claims.UserID, result)
		if err != nil {
			return nil, err
		}
	default:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load certificate")
	}

	return s.link(*cert)
}

func (s *CertificateService) create(ctx context.Context, userID string, result *models.QuizResult) (*models.Certificate, error) {
	id := uuid.NewString()
	cert := &models.Certificate{
		ID:       id,
		UserID:   userID,
		QuizID:   result.QuizID,
		FilePath: fmt.Sprintf("%s/%s.pdf", userID, id),
		IssuedAt: s.now(),
	}
	if err := s.render(ctx, cert, result); err != nil {
		return nil, err
	}

	err := s.repo.CreateCertificate(ctx, cert)
	if errors.Is(err, repository.ErrDuplicate) {
		// Lost a concurrent issue; keep the winner's file.
		if delErr := s.storage.Delete(cert.FilePath); delErr != nil {
			s.logger.Warn("failed to remove orphaned certificate", zap.String("path", cert.FilePath), zap.Error(delErr))
		}
		existing, findErr := s.repo.FindCertificate(ctx, userID, result.QuizID)
		if findErr != nil {
			return nil, appErrors.Wrap(findErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load certificate")
		}
		return existing, nil
	}
	if err != nil {
		_ = s.storage.Delete(cert.FilePath)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record certificate")
	}
	s.logger.Info("certificate issued", zap.String("certificate_id", cert.ID), zap.String("user_id", userID), zap.String("quiz_id", cert.QuizID))
	return cert, nil
}

func (s *CertificateService) render(ctx context.Context, cert *models.Certificate, result *models.QuizResult) error {
	quiz, err := s.repo.FindByID(ctx, cert.QuizID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load quiz")
	}
	user, err := s.users.FindByID(ctx, cert.UserID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load recipient")
	}

	pdf, err := s.renderer.Render(export.CertificateData{
		CertificateID: cert.ID,
		RecipientName: user.Name,
		QuizTitle:     quiz.Title,
		Percentage:    result.Percentage,
		IssuedAt:      cert.IssuedAt,
	})
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render certificate")
	}
	if _, err := s.storage.Save(cert.FilePath, pdf); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store certificate")
	}
	return nil
}

func (s *CertificateService) link(cert models.Certificate) (*models.CertificateLink, error) {
	token, expiresAt, err := s.signer.Sign(cert.ID, cert.FilePath)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to sign download link")
	}
	return &models.CertificateLink{
		Certificate: cert,
		DownloadURL: fmt.Sprintf("%s/certificates/download/%s", s.apiPrefix, token),
		ExpiresAt:   expiresAt,
	}, nil
}

// Open verifies a download token and opens the certificate it grants.
func (s *CertificateService) Open(ctx context.Context, token string) (*CertificateFile, error) {
	grant, err := s.signer.Verify(token)
	if err != nil {
		if errors.Is(err, storage.ErrTokenExpired) {
			return nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "download link has expired")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "invalid download link")
	}

	cert, err := s.repo.FindCertificateByID(ctx, grant.ResourceID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Certificate not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load certificate")
	}
	if cert.FilePath != grant.Path {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid download link")
	}

	file, err := s.storage.Open(cert.FilePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "Certificate file not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to open certificate")
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat certificate")
	}
	return &CertificateFile{Name: fmt.Sprintf("certificate-%s.pdf", cert.ID), File: file, Size: info.Size()}, nil
}
