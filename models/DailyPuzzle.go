package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// StringList stores a JSON-encoded string slice in a text column so the
// schema stays portable between postgres and sqlite
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	data, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (l *StringList) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*l = nil
		return nil
	case []byte:
		return json.Unmarshal(v, l)
	case string:
		return json.Unmarshal([]byte(v), l)
	default:
		return fmt.Errorf("unsupported type for StringList: %T", value)
	}
}

// PreviewPayload stores the partial dataset shown to players before they
// guess, as a value -> count histogram
type PreviewPayload map[string]int

func (p PreviewPayload) Value() (driver.Value, error) {
	if p == nil {
		return "{}", nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

func (p *PreviewPayload) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*p = nil
		return nil
	case []byte:
		return json.Unmarshal(v, p)
	case string:
		return json.Unmarshal([]byte(v), p)
	default:
		return fmt.Errorf("unsupported type for PreviewPayload: %T", value)
	}
}

// DailyPuzzle assigns a puzzle to a calendar day. The same PuzzleID may run
// on several days; statistics aggregate across all of them.
type DailyPuzzle struct {
	DateKey         string         `gorm:"type:varchar(10);primary_key;column:date_key" json:"date_key"`
	PuzzleID        string         `gorm:"type:varchar(100);not null;index;column:puzzle_id" json:"puzzle_id"`
	Answer          string         `gorm:"type:text;not null" json:"answer"`
	AcceptedAnswers StringList     `gorm:"type:text;not null;column:accepted_answers" json:"accepted_answers"`
	Preview         PreviewPayload `gorm:"type:text;not null" json:"preview"`
	SolutionLabel   string         `gorm:"type:varchar(255);not null;column:solution_label" json:"solution_label"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}
