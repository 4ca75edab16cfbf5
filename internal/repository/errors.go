package repository

import (
	"errors"

	"github.com/lib/pq"
)

// ErrDuplicate is returned when an insert hits a unique constraint.
var ErrDuplicate = errors.New("repository: duplicate record")

// ErrMentorshipChanged is returned when a mentorship being reactivated is no longer cancelled.
var ErrMentorshipChanged = errors.New("repository: mentorship no longer cancelled")

const uniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
