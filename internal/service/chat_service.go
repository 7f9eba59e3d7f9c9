package service

import (
	"context"
	"errors"
	"time"

	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/model"
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/repository"
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/util"
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Most recent chats returned by the sidebar listing.
const recentChatLimit = 20

// ChatService owns tutor conversations. Each chat is pinned to the target
// language detected from its opening message; that detection is also the
// moment a LanguageProgress record is first created for the user, so quizzes
// and progress lookups never see an untracked language that has a chat.
type ChatService struct {
	Repo     *repository.ChatRepository
	AI       *AIService
	Progress *ProgressService
}

func NewChatService(repo *repository.ChatRepository, ai *AIService, progress *ProgressService) *ChatService {
	return &ChatService{Repo: repo, AI: ai, Progress: progress}
}

// CreateChat opens a new tutor session from the user's first message:
// detects the target language, starts tracking progress for it, generates a
// title and the tutor's first reply.
func (s *ChatService) CreateChat(ctx context.Context, userID uint, message string) (*model.Chat, error) {
	language := s.AI.DetectLanguage(ctx, message)
	title := s.AI.SummaryTitle(ctx, message)

	if language != model.UnknownLanguage {
		if _, err := s.Progress.Track(ctx, userID, language); err != nil {
			logger.Log.Error("failed to track detected language",
				zap.Error(err),
				zap.Uint("userId", userID),
				zap.String("language", language),
			)
		}
	}

	chat := &model.Chat{
		UserID:   userID,
		Title:    title,
		Language: language,
		Messages: model.MessageList{
			{Sender: model.SenderUser, Message: message, Timestamp: time.Now()},
		},
	}

	if err := s.Repo.Create(chat); err != nil {
		return nil, err
	}

	reply := s.AI.TutorReply(ctx, nil, message)
	chat.Messages = append(chat.Messages, model.ChatMessage{
		Sender:    model.SenderBot,
		Message:   reply,
		Timestamp: time.Now(),
	})

	if err := s.Repo.Update(chat); err != nil {
		return nil, err
	}

	return chat, nil
}

// ContinueChat appends a user message and the tutor's reply to an existing
// session. Only the owner may continue a chat.
func (s *ChatService) ContinueChat(ctx context.Context, userID uint, chatID, message string) (*model.Chat, error) {
	chat, err := s.getOwned(userID, chatID)
	if err != nil {
		return nil, err
	}

	history := chat.Messages
	chat.Messages = append(chat.Messages, model.ChatMessage{
		Sender:    model.SenderUser,
		Message:   message,
		Timestamp: time.Now(),
	})
	if err := s.Repo.Update(chat); err != nil {
		return nil, err
	}

	reply := s.AI.TutorReply(ctx, history, message)
	chat.Messages = append(chat.Messages, model.ChatMessage{
		Sender:    model.SenderBot,
		Message:   reply,
		Timestamp: time.Now(),
	})
	if err := s.Repo.Update(chat); err != nil {
		return nil, err
	}

	return chat, nil
}

func (s *ChatService) GetChats(userID uint) ([]model.Chat, error) {
	return s.Repo.ListRecent(userID, recentChatLimit)
}

func (s *ChatService) GetChat(userID uint, chatID string) (*model.Chat, error) {
	return s.getOwned(userID, chatID)
}

func (s *ChatService) GetMessages(userID uint, chatID string) (model.MessageList, error) {
	chat, err := s.getOwned(userID, chatID)
	if err != nil {
		return nil, err
	}
	return chat.Messages, nil
}

func (s *ChatService) DeleteChat(userID uint, chatID string) error {
	if _, err := s.getOwned(userID, chatID); err != nil {
		return err
	}
	return s.Repo.Delete(chatID)
}

func (s *ChatService) ClearHistory(userID uint) error {
	return s.Repo.DeleteByUser(userID)
}

func (s *ChatService) getOwned(userID uint, chatID string) (*model.Chat, error) {
	chat, err := s.Repo.FindByID(chatID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrChatNotFound
		}
		return nil, err
	}
	if chat.UserID != userID {
		return nil, util.ErrChatNotFound
	}
	return chat, nil
}
