package repository

import (
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/model"

	"gorm.io/gorm"
)

type ChatRepository struct {
	DB *gorm.DB
}

func NewChatRepository(db *gorm.DB) *ChatRepository {
	return &ChatRepository{DB: db}
}

func (r *ChatRepository) Create(chat *model.Chat) error {
	return r.DB.Create(chat).Error
}

func (r *ChatRepository) FindByID(id string) (*model.Chat, error) {
	var chat model.Chat
	err := r.DB.Where("id = ?", id).First(&chat).Error
	if err != nil {
		return nil, err
	}
	return &chat, nil
}

// ListRecent returns the user's most recent chats, newest first.
func (r *ChatRepository) ListRecent(userID uint, limit int) ([]model.Chat, error) {
	var chats []model.Chat
	err := r.DB.
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&chats).Error
	return chats, err
}

func (r *ChatRepository) Update(chat *model.Chat) error {
	return r.DB.Save(chat).Error
}

func (r *ChatRepository) Delete(id string) error {
	return r.DB.Where("id = ?", id).Delete(&model.Chat{}).Error
}

func (r *ChatRepository) DeleteByUser(userID uint) error {
	return r.DB.Where("user_id = ?", userID).Delete(&model.Chat{}).Error
}
