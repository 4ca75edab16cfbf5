package models

import "time"

// Certificate records a completion certificate issued for a passed quiz.
type Certificate struct {
	ID       string    `db:"id" json:"id"`
	UserID   string    `db:"user_id" json:"userId"`
	QuizID   string    `db:"quiz_id" json:"quizId"`
	FilePath string    `db:"file_path" json:"-"`
	IssuedAt time.Time `db:"issued_at" json:"issuedAt"`
}

// CertificateLink is a time-limited download link for a certificate.
type CertificateLink struct {
	Certificate Certificate `json:"certificate"`
	DownloadURL string      `json:"downloadUrl"`
	ExpiresAt   time.Time   `json:"expiresAt"`
}
