package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/config"
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/model"
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/util"
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/pkg/logger"
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/pkg/monitoring"

	"github.com/santhosh-tekuri/jsonschema/v6"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// QuestionGenerator produces the question set for a new quiz. Implementations
// must return exactly the configured number of questions, each with four
// choices, an answer matching one choice, and a non-empty explanation.
type QuestionGenerator interface {
	Generate(ctx context.Context, past []model.Question, qtype model.Skill, language string, vocabLvl, grammarLvl int) ([]model.Question, error)
}

const choicesPerQuestion = 4

const proficiencyRubric = `
Below is the various proficiency levels for reference:

Vocabulary Mastery (0-10):
Level 0: Unassessed
Level 1: Absolute Beginner (0-150 words)
Level 2: Basic Beginner (150-400 words)
Level 3: Elementary (400-800 words)
Level 4: Pre-Intermediate (800-1200 words)
Level 5: Lower Intermediate (1200-1800 words)
Level 6: Intermediate (1800-2400 words)
Level 7: Upper Intermediate (2400-3000 words)
Level 8: Pre-Advanced (3000-4000 words)
Level 9: Advanced (4000-5000 words)
Level 10: Mastery (5000+ words)

Grammar Mastery (0-10):
Level 0: Unassessed
Level 1: Can recognize basic sentence structures
Level 2: Can form simple present tense sentences
Level 3: Can use present and past tenses
Level 4: Can use future tense and basic modals
Level 5: Can form complex sentences with conjunctions
Level 6: Can use conditional forms
Level 7: Can handle passive voice and perfect tenses
Level 8: Can use advanced clause structures
Level 9: Can express complex ideas fluently
Level 10: Near-native grammar mastery
`

func quizPrompt(questionCount int) string {
	return fmt.Sprintf(`You are a language learning expert. Generate %d multiple-choice questions for language learning.
Return the response in the following JSON format only:
{
  "questions": [
    {
      "question": "The question text",
      "choices": ["Choice 1", "Choice 2", "Choice 3", "Choice 4"],
      "answer": "The correct answer text",
      "explanation": "Brief explanation why this is correct"
    }
  ]
}

Each question should have 4 choices and only one correct answer. Replace the "Choice 1", "Choice 2", "Choice 3", "Choice 4" with generated choices for the question.

Focus on making questions that test either grammar or vocab depending on the specified quiz type and make it appropriate for the specified levels.
Make sure the questions are challenging but fair for the given level.
Remember to return ONLY valid JSON, no additional text.
%s`, questionCount, proficiencyRubric)
}

// quizSchema constrains the generator output shape; question count is checked
// separately because it is configurable.
const quizSchema = `{
  "type": "object",
  "required": ["questions"],
  "properties": {
    "questions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["question", "choices", "answer", "explanation"],
        "properties": {
          "question": {"type": "string", "minLength": 1},
          "choices": {
            "type": "array",
            "items": {"type": "string", "minLength": 1},
            "minItems": 4,
            "maxItems": 4
          },
          "answer": {"type": "string", "minLength": 1},
          "explanation": {"type": "string", "minLength": 1}
        }
      }
    }
  }
}`

var (
	compiledQuizSchema *jsonschema.Schema
	quizSchemaOnce     sync.Once
	quizSchemaErr      error
)

func getQuizSchema() (*jsonschema.Schema, error) {
	quizSchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(strings.NewReader(quizSchema))
		if err != nil {
			quizSchemaErr = err
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource("schema://quiz.json", doc); err != nil {
			quizSchemaErr = err
			return
		}
		compiledQuizSchema, quizSchemaErr = c.Compile("schema://quiz.json")
	})
	return compiledQuizSchema, quizSchemaErr
}

// ParseQuestions validates raw generator output and returns the question set.
// Rejects payloads with the wrong question count, an answer that is not one
// of the choices, or a missing explanation.
func ParseQuestions(raw []byte, questionCount int) ([]model.Question, error) {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}

	schema, err := getQuizSchema()
	if err != nil {
		return nil, fmt.Errorf("compile quiz schema: %w", err)
	}
	if err := schema.Validate(parsed); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	var payload struct {
		Questions []model.Question `json:"questions"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, err
	}

	if len(payload.Questions) != questionCount {
		return nil, fmt.Errorf("expected %d questions, got %d", questionCount, len(payload.Questions))
	}

	for i, q := range payload.Questions {
		found := false
		for _, choice := range q.Choices {
			if choice == q.Answer {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("question %d: answer does not match any choice", i)
		}
	}

	return payload.Questions, nil
}

// OpenAIQuizGenerator asks a chat-completion model for a fresh quiz, passing
// earlier questions so the model avoids repeating itself.
type OpenAIQuizGenerator struct {
	client *openai.Client
	cfg    config.AIConfig
	quiz   config.QuizConfig
}

func NewOpenAIQuizGenerator(cfg config.AIConfig, quizCfg config.QuizConfig) *OpenAIQuizGenerator {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	return &OpenAIQuizGenerator{
		client: openai.NewClientWithConfig(clientCfg),
		cfg:    cfg,
		quiz:   quizCfg,
	}
}

func (g *OpenAIQuizGenerator) Generate(ctx context.Context, past []model.Question, qtype model.Skill, language string, vocabLvl, grammarLvl int) ([]model.Question, error) {
	timeout := time.Duration(g.cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	pastJSON, _ := json.Marshal(past)
	userMsg := fmt.Sprintf(
		"Previous quiz questions for reference: %s\nPlease generate a new quiz targeting %s. Vocabulary level: %d, Grammar level: %d. This should be a %s quiz. Repetition is allowed to test concepts but do not overdo it.",
		pastJSON, language, vocabLvl, grammarLvl, qtype,
	)

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.cfg.Model,
		Temperature: 0.7,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: quizPrompt(g.quiz.QuestionCount)},
			{Role: openai.ChatMessageRoleUser, Content: userMsg},
		},
	})
	monitoring.QuizGenerationDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		logger.Log.Error("quiz generation call failed", zap.Error(err), zap.String("language", language))
		return nil, util.ErrQuizGeneration
	}
	if len(resp.Choices) == 0 {
		logger.Log.Error("quiz generation returned no choices", zap.String("language", language))
		return nil, util.ErrQuizGeneration
	}

	questions, err := ParseQuestions([]byte(resp.Choices[0].Message.Content), g.quiz.QuestionCount)
	if err != nil {
		logger.Log.Error("quiz generation returned malformed content", zap.Error(err), zap.String("language", language))
		return nil, util.ErrQuizGeneration
	}

	return questions, nil
}
