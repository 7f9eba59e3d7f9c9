package service

import (
	"context"
	"strings"
	"time"

	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/config"
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/model"
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/pkg/logger"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const metaPrompt = `You are an expert language tutor dedicated to helping users enhance their language skills through engaging and informative conversations.

Provide clear, concise, and accurate responses to their questions. When correcting mistakes, be gentle and offer explanations to help the user understand their errors.

Include examples and practice exercises where appropriate. Encourage the user and provide positive reinforcement to boost their confidence.

Adapt your language level to match the user's proficiency and be patient with their learning process.

Consider the following message and respond appropriately. If the message lacks context, ask for more information.

If the message is irrelevant or inappropriate, respond in a way that steers the conversation back on track.`

// fallbackReply is returned to the user when the upstream model is down, so
// a chat turn never hard-fails on the tutor side.
const fallbackReply = "Sorry, I am unable to respond at the moment."

// tutorContextWindow caps how many prior messages are replayed to the model.
const tutorContextWindow = 5

// AIService wraps the chat-completion API used for tutoring, chat titles and
// target-language detection.
type AIService struct {
	client *openai.Client
	cfg    config.AIConfig
}

func NewAIService(cfg config.AIConfig) *AIService {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &AIService{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
	}
}

func (s *AIService) timeout() time.Duration {
	if s.cfg.TimeoutSeconds > 0 {
		return time.Duration(s.cfg.TimeoutSeconds) * time.Second
	}
	return 30 * time.Second
}

// TutorReply answers one user message with recent conversation context.
// Upstream failures degrade to a canned apology rather than an error: losing
// one tutor turn should not fail the whole chat request.
func (s *AIService) TutorReply(ctx context.Context, history []model.ChatMessage, message string) string {
	ctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	recent := history
	if len(recent) > tutorContextWindow {
		recent = recent[len(recent)-tutorContextWindow:]
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: metaPrompt},
	}
	for _, msg := range recent {
		role := openai.ChatMessageRoleAssistant
		if msg.Sender == model.SenderUser {
			role = openai.ChatMessageRoleUser
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: msg.Message})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: message})

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:           s.cfg.Model,
		Messages:        messages,
		Temperature:     0.7,
		PresencePenalty: 0.1,
	})
	if err != nil || len(resp.Choices) == 0 {
		logger.Log.Error("tutor reply failed", zap.Error(err))
		return fallbackReply
	}

	return resp.Choices[0].Message.Content
}

// DetectLanguage infers the target language the user wants to practice from
// their opening message. Returns model.UnknownLanguage when the call fails.
func (s *AIService) DetectLanguage(ctx context.Context, message string) string {
	ctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: metaPrompt},
			{Role: openai.ChatMessageRoleSystem, Content: "Determine the target language the user is trying to learn during this chat session and return the language as one word"},
			{Role: openai.ChatMessageRoleUser, Content: "Language for chat: " + message},
		},
		Temperature: 0.7,
		MaxTokens:   30,
	})
	if err != nil || len(resp.Choices) == 0 {
		logger.Log.Warn("language detection failed", zap.Error(err))
		return model.UnknownLanguage
	}

	language := NormalizeLanguage(resp.Choices[0].Message.Content)
	if language == "" {
		return model.UnknownLanguage
	}
	return language
}

// SummaryTitle produces a short one-line title for a new chat session.
func (s *AIService) SummaryTitle(ctx context.Context, message string) string {
	ctx, cancel := context.WithTimeout(ctx, s.timeout())
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: metaPrompt},
			{Role: openai.ChatMessageRoleSystem, Content: "Generate a brief, one-line title for this chat session."},
			{Role: openai.ChatMessageRoleUser, Content: "Title for chat about: " + message},
		},
		Temperature: 0.7,
		MaxTokens:   30,
	})
	if err != nil || len(resp.Choices) == 0 {
		logger.Log.Warn("title generation failed", zap.Error(err))
		return "Chat Session"
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content)
}

// NormalizeLanguage canonicalizes a detected or user-supplied language name:
// uppercase, trimmed, quotes stripped. Progress records and quizzes key on
// this form.
func NormalizeLanguage(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, `"`, "")
	s = strings.ReplaceAll(s, "'", "")
	return strings.ToUpper(strings.TrimSpace(s))
}
