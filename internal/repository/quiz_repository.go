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

// QuizRepository persists quizzes, results and issued certificates.
type QuizRepository struct {
	db *sqlx.DB
}

// NewQuizRepository constructs the repository.
func NewQuizRepository(db *sqlx.DB) *QuizRepository {
	return &QuizRepository{db: db}
}

// Create inserts a quiz.
func (r *QuizRepository) Create(ctx context.Context, quiz *models.Quiz) error {
	if quiz.ID == "" {
		quiz.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	quiz.CreatedAt = now
	quiz.UpdatedAt = now

	const query = `INSERT INTO quizzes (id, title, description, course_id, questions, passing_score, attempts_allowed, created_by, created_at, updated_at)
VALUES (:id, :title, :description, :course_id, :questions, :passing_score, :attempts_allowed, :created_by, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, quiz); err != nil {
		return fmt.Errorf("create quiz: %w", err)
	}
	return nil
}

// FindByID returns a quiz or sql.ErrNoRows.
func (r *QuizRepository) FindByID(ctx context.Context, id string) (*models.Quiz, error) {
	if !validID(id) {
		return nil, sql.ErrNoRows
	}
	const query = `SELECT id, title, description, course_id, questions, passing_score, attempts_allowed, created_by, created_at, updated_at FROM quizzes WHERE id = $1`
	var quiz models.Quiz
	if err := r.db.GetContext(ctx, &quiz, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find quiz: %w", err)
	}
	return &quiz, nil
}

// UpsertResult stores the result, replacing any previous one for the same user and quiz.
// The stored row keeps its original id.
func (r *QuizRepository) UpsertResult(ctx context.Context, result *models.QuizResult) error {
	if result.ID == "" {
		result.ID = uuid.NewString()
	}
	const query = `INSERT INTO quiz_results (id, user_id, quiz_id, score, total_points, percentage, passed, answers, submitted_at)
VALUES (:id, :user_id, :quiz_id, :score, :total_points, :percentage, :passed, :answers, :submitted_at)
ON CONFLICT (user_id, quiz_id) DO UPDATE SET
    score = EXCLUDED.score,
    total_points = EXCLUDED.total_points,
    percentage = EXCLUDED.percentage,
    passed = EXCLUDED.passed,
    answers = EXCLUDED.answers,
    submitted_at = EXCLUDED.submitted_at
RETURNING id`
	rows, err := r.db.NamedQueryContext(ctx, query, result)
	if err != nil {
		return fmt.Errorf("upsert quiz result: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&result.ID); err != nil {
			return fmt.Errorf("scan quiz result id: %w", err)
		}
	}
	return rows.Err()
}

// FindResult returns the stored result for a user and quiz, or sql.ErrNoRows.
func (r *QuizRepository) FindResult(ctx context.Context, userID, quizID string) (*models.QuizResult, error) {
	if !validID(quizID) {
		return nil, sql.ErrNoRows
	}
	const query = `SELECT id, user_id, quiz_id, score, total_points, percentage, passed, answers, submitted_at FROM quiz_results WHERE user_id = $1 AND quiz_id = $2`
	var result models.QuizResult
	if err := r.db.GetContext(ctx, &result, query, userID, quizID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find quiz result: %w", err)
	}
	return &result, nil
}

// FindCertificate returns the certificate issued to a user for a quiz, or sql.ErrNoRows.
func (r *QuizRepository) FindCertificate(ctx context.Context, userID, quizID string) (*models.Certificate, error) {
	const query = `SELECT id, user_id, quiz_id, file_path, issued_at FROM certificates WHERE user_id = $1 AND quiz_id = $2`
	return r.getCertificate(ctx, query, userID, quizID)
}

// FindCertificateByID returns a certificate by id, or sql.ErrNoRows.
func (r *QuizRepository) FindCertificateByID(ctx context.Context, id string) (*models.Certificate, error) {
	if !validID(id) {
		return nil, sql.ErrNoRows
	}
	const query = `SELECT id, user_id, quiz_id, file_path, issued_at FROM certificates WHERE id = $1`
	return r.getCertificate(ctx, query, id)
}

func (r *QuizRepository) getCertificate(ctx context.Context, query string, args ...interface{}) (*models.Certificate, error) {
	var cert models.Certificate
	if err := r.db.GetContext(ctx, &cert, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("find certificate: %w", err)
	}
	return &cert, nil
}

// CreateCertificate records an issued certificate. A concurrent issue for the same pair yields ErrDuplicate.
func (r *QuizRepository) CreateCertificate(ctx context.Context, cert *models.Certificate) error {
	if cert.ID == "" {
		cert.ID = uuid.NewString()
	}
	const query = `INSERT INTO certificates (id, user_id, quiz_id, file_path, issued_at) VALUES (:id, :user_id, :quiz_id, :file_path, :issued_at)`
	if _, err := r.db.NamedExecContext(ctx, query, cert); err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("create certificate: %w", err)
	}
	return nil
}
