package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Goals is persisted as a JSONB array.
type Goals []Goal

// FeedbackEntries is persisted as a JSONB array.
type FeedbackEntries []MentorshipFeedback

// Questions is persisted as a JSONB array.
type Questions []Question

// GradedAnswers is persisted as a JSONB array.
type GradedAnswers []GradedAnswer

// Value marshals goals for persistence.
func (g Goals) Value() (driver.Value, error) { return jsonArrayValue(g, len(g)) }

// Scan unmarshals a JSONB goals column.
func (g *Goals) Scan(value interface{}) error { return jsonScan(value, g, "goals") }

func (f FeedbackEntries) Value() (driver.Value, error) { return jsonArrayValue(f, len(f)) }

func (f *FeedbackEntries) Scan(value interface{}) error {
	return jsonScan(value, f, "mentorship feedback")
}

func (q Questions) Value() (driver.Value, error) { return jsonArrayValue(q, len(q)) }

func (q *Questions) Scan(value interface{}) error { return jsonScan(value, q, "questions") }

func (a GradedAnswers) Value() (driver.Value, error) { return jsonArrayValue(a, len(a)) }

func (a *GradedAnswers) Scan(value interface{}) error {
	return jsonScan(value, a, "graded answers")
}

func jsonArrayValue(v interface{}, n int) (driver.Value, error) {
	if n == 0 {
		return "[]", nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal jsonb: %w", err)
	}
	// lib/pq sends []byte as bytea, which jsonb rejects.
	return string(data), nil
}

func jsonScan(value interface{}, dst interface{}, what string) error {
	var data []byte
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported type %T for %s", value, what)
	}
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("unmarshal %s: %w", what, err)
	}
	return nil
}
