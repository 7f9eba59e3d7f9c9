package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/config"
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/model"
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/repository"
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/util"
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Retries for the scoring transaction when a concurrent writer bumped the
// progress record's version between our read and write.
const scoreTxRetries = 3

// QuizStore is the persistence surface the lifecycle manager needs.
type QuizStore interface {
	Create(quiz *model.Quiz) error
	FindByID(id string) (*model.Quiz, error)
	FindPast(userID uint, language string, qtype model.Skill, level int) ([]model.Quiz, error)
	ListByLanguage(userID uint, language string) ([]model.Quiz, error)
}

// ProgressStore reads leveling records outside the scoring transaction.
type ProgressStore interface {
	FindByUserAndLanguage(userID uint, language string) (*model.LanguageProgress, error)
}

// TxRunner runs the quiz transition and progress credit atomically.
type TxRunner interface {
	InScoreTx(fn func(tx repository.ScoreTx) error) error
}

// ProgressAdvancer applies score-derived deltas to a leveling record.
type ProgressAdvancer interface {
	Advance(p *model.LanguageProgress, skill model.Skill, points float64) bool
	Invalidate(ctx context.Context, userID uint, language string)
}

// QuizService manages the quiz lifecycle: Created (score 0, unanswered) ->
// Scored, a terminal state. There are no retakes and no re-scores.
type QuizService struct {
	Quizzes  QuizStore
	Progress ProgressStore
	Advancer ProgressAdvancer
	Tx       TxRunner
	Gen      QuestionGenerator
	Cfg      config.QuizConfig
}

func NewQuizService(quizzes QuizStore, progress ProgressStore, advancer ProgressAdvancer, tx TxRunner, gen QuestionGenerator, cfg config.QuizConfig) *QuizService {
	return &QuizService{
		Quizzes:  quizzes,
		Progress: progress,
		Advancer: advancer,
		Tx:       tx,
		Gen:      gen,
		Cfg:      cfg,
	}
}

// ScoreAnswers counts exact string matches between submitted answers and the
// questions' correct answers, position by position.
func ScoreAnswers(questions []model.Question, answers []string) int {
	score := 0
	for i := range questions {
		if i < len(answers) && answers[i] == questions[i].Answer {
			score++
		}
	}
	return score
}

// QuizTitle builds the display title shown in quiz history.
func QuizTitle(language string, qtype model.Skill, vocabLvl, grammarLvl int) string {
	return fmt.Sprintf("%s %s Quiz - Vocab: Lv%d, Grammar: Lv%d", language, qtype, vocabLvl, grammarLvl)
}

// CreateQuiz generates and persists a new quiz for the user's current level
// in the given language. The target level is a snapshot taken now; later
// level changes leave the quiz untouched. Fails with ErrLanguageNotTracked
// when the user has no progress record for the language, and with
// ErrQuizGeneration (nothing persisted) when the generator call fails.
func (s *QuizService) CreateQuiz(ctx context.Context, userID uint, language string, qtype model.Skill) (*model.Quiz, error) {
	language = NormalizeLanguage(language)

	progress, err := s.Progress.FindByUserAndLanguage(userID, language)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLanguageNotTracked
		}
		return nil, err
	}

	level := progress.Level(qtype)

	past, err := s.Quizzes.FindPast(userID, language, qtype, level)
	if err != nil {
		return nil, err
	}
	var pastQuestions []model.Question
	for _, q := range past {
		pastQuestions = append(pastQuestions, q.Questions...)
	}

	questions, err := s.Gen.Generate(ctx, pastQuestions, qtype, language, progress.VocabularyLevel, progress.GrammarLevel)
	if err != nil {
		return nil, err
	}

	quiz := &model.Quiz{
		UserID:    userID,
		Title:     QuizTitle(language, qtype, progress.VocabularyLevel, progress.GrammarLevel),
		Language:  language,
		Type:      qtype,
		Level:     level,
		Questions: questions,
	}

	if err := s.Quizzes.Create(quiz); err != nil {
		return nil, err
	}

	logger.Log.Info("quiz created",
		zap.String("quizId", quiz.ID),
		zap.Uint("userId", userID),
		zap.String("language", language),
		zap.String("type", string(qtype)),
		zap.Int("level", level),
	)

	return quiz, nil
}

// AnswerResult is returned once a quiz is scored.
type AnswerResult struct {
	Score    int            `json:"score"`
	Quiz     *model.Quiz    `json:"quiz"`
	Progress ProgressReport `json:"progress"`
}

// AnswerQuiz scores a submission and credits the user's leveling state.
//
// Failure contract: ErrQuizNotFound when the quiz is missing or belongs to
// another user (ownership is never revealed), ErrAnswerCountMismatch before
// any mutation, ErrQuizAlreadyAnswered on a second submission. The Scored
// transition and the progress write commit in one transaction, so a quiz can
// never end up scored without its progress credit.
func (s *QuizService) AnswerQuiz(ctx context.Context, userID uint, quizID string, answers []string) (*AnswerResult, error) {
	quiz, err := s.Quizzes.FindByID(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrQuizNotFound
		}
		return nil, err
	}
	if quiz.UserID != userID {
		return nil, util.ErrQuizNotFound
	}
	if quiz.Answered {
		return nil, util.ErrQuizAlreadyAnswered
	}
	if len(answers) != len(quiz.Questions) {
		return nil, util.ErrAnswerCountMismatch
	}

	score := ScoreAnswers(quiz.Questions, answers)
	points := ProgressPoints(score, len(quiz.Questions), s.Cfg)

	var (
		updated   *model.LanguageProgress
		completed int64
	)

	for attempt := 0; ; attempt++ {
		err = s.Tx.InScoreTx(func(tx repository.ScoreTx) error {
			ok, err := tx.MarkAnswered(quiz.ID, score)
			if err != nil {
				return err
			}
			if !ok {
				return util.ErrQuizAlreadyAnswered
			}

			progress, err := tx.ProgressByUserAndLanguage(userID, quiz.Language)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return util.ErrLanguageNotTracked
				}
				return err
			}

			s.Advancer.Advance(progress, quiz.Type, points)

			ok, err = tx.SaveProgressVersioned(progress)
			if err != nil {
				return err
			}
			if !ok {
				return util.ErrProgressConflict
			}

			completed, err = tx.CountAnswered(userID)
			if err != nil {
				return err
			}

			updated = progress
			return nil
		})

		if errors.Is(err, util.ErrProgressConflict) && attempt < scoreTxRetries {
			logger.Log.Warn("progress version conflict, retrying",
				zap.String("quizId", quiz.ID),
				zap.Int("attempt", attempt+1),
			)
			continue
		}
		break
	}
	if err != nil {
		return nil, err
	}

	s.Advancer.Invalidate(ctx, userID, quiz.Language)

	quiz.Score = score
	quiz.Answered = true

	logger.Log.Info("quiz answered",
		zap.String("quizId", quiz.ID),
		zap.Uint("userId", userID),
		zap.Int("score", score),
		zap.Float64("points", points),
	)

	result := &AnswerResult{
		Score:    score,
		Quiz:     quiz,
		Progress: BuildReport(updated, score, len(quiz.Questions), points, completed),
	}
	return result, nil
}

// ListQuizzes returns the user's quiz history for one language, newest first.
func (s *QuizService) ListQuizzes(userID uint, language string) ([]model.Quiz, error) {
	return s.Quizzes.ListByLanguage(userID, NormalizeLanguage(language))
}
