package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

const (
	SenderUser = "user"
	SenderBot  = "bot"
)

// UnknownLanguage is stored when the detector could not name a target
// language for a chat session.
const UnknownLanguage = "CHAT_SESSION"

// ChatMessage is one turn of a tutor conversation.
type ChatMessage struct {
	Sender    string    `json:"sender"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// MessageList stores the conversation as a JSON column.
type MessageList []ChatMessage

func (m MessageList) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *MessageList) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, m)
	case string:
		return json.Unmarshal([]byte(v), m)
	case nil:
		*m = nil
		return nil
	}
	return errors.New("unsupported type for MessageList")
}

// Chat is one tutor conversation. Language is the single-word uppercase
// target language the detector inferred from the opening message; quizzes
// and progress records are scoped by it.
//
// swagger:model Chat
type Chat struct {
	UUIDBase
	UserID   uint        `gorm:"not null;index" json:"userId"`
	Title    string      `gorm:"size:255;not null" json:"title"`
	Language string      `gorm:"size:50;not null" json:"language"`
	Messages MessageList `gorm:"type:json" json:"messages"`
}

func (Chat) TableName() string {
	return "chats"
}
