package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Question is one multiple-choice item inside a quiz. The answer must match
// one of the choices exactly; scoring compares submitted strings verbatim.
type Question struct {
	Question    string   `json:"question"`
	Choices     []string `json:"choices"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
}

// QuestionList stores the fixed question set as a JSON column.
type QuestionList []Question

func (q QuestionList) Value() (driver.Value, error) {
	return json.Marshal(q)
}

func (q *QuestionList) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, q)
	case string:
		return json.Unmarshal([]byte(v), q)
	case nil:
		*q = nil
		return nil
	}
	return errors.New("unsupported type for QuestionList")
}

// Quiz is one generated assessment. Once answered it is immutable history:
// Answered flips exactly once and Score is written in the same update.
//
// swagger:model Quiz
type Quiz struct {
	UUIDBase
	UserID     uint         `gorm:"not null;index:idx_quiz_lookup" json:"userId"`
	Title      string       `gorm:"size:255;not null" json:"title"`
	Language   string       `gorm:"size:50;not null;index:idx_quiz_lookup" json:"language"`
	Type       Skill        `gorm:"type:enum('vocab','grammar');not null;index:idx_quiz_lookup" json:"type"`
	Level      int          `gorm:"not null;index:idx_quiz_lookup" json:"level"`
	Questions  QuestionList `gorm:"type:json;not null" json:"questions"`
	Score      int          `gorm:"default:0" json:"score"`
	Answered   bool         `gorm:"default:false" json:"answered"`
	AnsweredAt *time.Time   `json:"answeredAt,omitempty"`
}

func (Quiz) TableName() string {
	return "quizzes"
}
