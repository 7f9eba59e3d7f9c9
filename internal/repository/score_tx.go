package repository

import (
	"time"

	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/model"

	"gorm.io/gorm"
)

// ScoreTx exposes the writes allowed inside a scoring transaction. The quiz
// state transition and the progress credit either both commit or both roll
// back.
type ScoreTx interface {
	// MarkAnswered performs the single atomic Created -> Scored transition.
	// Returns false when the quiz was already answered (the guard condition
	// matched no row), which callers must treat as a double-answer.
	MarkAnswered(quizID string, score int) (bool, error)
	ProgressByUserAndLanguage(userID uint, language string) (*model.LanguageProgress, error)
	// SaveProgressVersioned writes the new leveling state guarded by the
	// version column. Returns false on a version conflict; the caller rolls
	// back and retries the whole transaction with a fresh read.
	SaveProgressVersioned(p *model.LanguageProgress) (bool, error)
	CountAnswered(userID uint) (int64, error)
}

// ScoreTxRunner runs the answer-quiz write path in one database transaction.
type ScoreTxRunner struct {
	DB *gorm.DB
}

func NewScoreTxRunner(db *gorm.DB) *ScoreTxRunner {
	return &ScoreTxRunner{DB: db}
}

func (r *ScoreTxRunner) InScoreTx(fn func(tx ScoreTx) error) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		return fn(&scoreTx{tx: tx})
	})
}

type scoreTx struct {
	tx *gorm.DB
}

func (t *scoreTx) MarkAnswered(quizID string, score int) (bool, error) {
	now := time.Now()
	res := t.tx.Model(&model.Quiz{}).
		Where("id = ? AND answered = ?", quizID, false).
		Updates(map[string]interface{}{
			"answered":    true,
			"score":       score,
			"answered_at": now,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (t *scoreTx) ProgressByUserAndLanguage(userID uint, language string) (*model.LanguageProgress, error) {
	var progress model.LanguageProgress
	err := t.tx.Where("user_id = ? AND language = ?", userID, language).First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (t *scoreTx) SaveProgressVersioned(p *model.LanguageProgress) (bool, error) {
	res := t.tx.Model(&model.LanguageProgress{}).
		Where("id = ? AND version = ?", p.ID, p.Version).
		Updates(map[string]interface{}{
			"vocabulary_level":    p.VocabularyLevel,
			"vocabulary_progress": p.VocabularyProgress,
			"grammar_level":       p.GrammarLevel,
			"grammar_progress":    p.GrammarProgress,
			"version":             p.Version + 1,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (t *scoreTx) CountAnswered(userID uint) (int64, error) {
	var count int64
	err := t.tx.Model(&model.Quiz{}).
		Where("user_id = ? AND answered = ?", userID, true).
		Count(&count).Error
	return count, err
}
