package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/config"
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/model"
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/repository"
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/util"
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/pkg/logger"
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	RecommendLevelUpSoon = "Ready for level up soon"
	RecommendKeepGoing   = "Keep practicing at current level"

	// Progress at or above this fraction earns the level-up-soon nudge.
	levelUpSoonThreshold = 0.8

	progressCacheTTL = 5 * time.Minute
)

// ProgressPoints maps a quiz score onto progress points. A perfect run earns
// the full reward, one miss earns half, anything worse earns nothing. The
// table is parameterized by question count so it is not welded to 3-question
// quizzes.
func ProgressPoints(score, total int, cfg config.QuizConfig) float64 {
	switch {
	case total > 0 && score >= total:
		return cfg.PointsPerfect
	case total > 1 && score == total-1:
		return cfg.PointsNear
	default:
		return 0
	}
}

// ApplyDelta advances one skill's (level, progress) pair by a non-negative
// delta. Crossing 1.0 levels up and resets progress in the same step, so no
// state with progress >= 1.0 is ever observable. At the level cap nothing
// moves: neither level nor progress. Overflow past 1.0 is discarded unless
// carry is set.
func ApplyDelta(level int, progress, delta float64, carry bool) (int, float64) {
	if level >= model.MaxLevel {
		return level, progress
	}

	updated := progress + delta
	if updated < 1.0 {
		return level, updated
	}

	level++
	if !carry || level >= model.MaxLevel {
		return level, 0
	}

	leftover := updated - 1.0
	if leftover >= 1.0 {
		// a single quiz cannot span two level-ups
		leftover = 0
	}
	return level, leftover
}

// ProgressReport is the payload returned after a scored quiz credits the
// user's leveling state.
type ProgressReport struct {
	Language        string          `json:"language"`
	CurrentStatus   CurrentStatus   `json:"currentStatus"`
	QuizPerformance QuizPerformance `json:"quizPerformance"`
	Recommendations Recommendations `json:"recommendations"`
}

type CurrentStatus struct {
	VocabularyLevel    int     `json:"vocabularyLevel"`
	VocabularyProgress float64 `json:"vocabularyProgress"`
	GrammarLevel       int     `json:"grammarLevel"`
	GrammarProgress    float64 `json:"grammarProgress"`
	QuizzesCompleted   int64   `json:"quizzesCompleted"`
}

type QuizPerformance struct {
	Score                int     `json:"score"`
	TotalQuestions       int     `json:"totalQuestions"`
	ProgressPointsEarned float64 `json:"progressPointsEarned"`
}

type Recommendations struct {
	Vocabulary string `json:"vocabulary"`
	Grammar    string `json:"grammar"`
}

func recommendation(progress float64) string {
	if progress >= levelUpSoonThreshold {
		return RecommendLevelUpSoon
	}
	return RecommendKeepGoing
}

// BuildReport assembles the post-quiz progress summary.
func BuildReport(p *model.LanguageProgress, score, total int, points float64, quizzesCompleted int64) ProgressReport {
	return ProgressReport{
		Language: p.Language,
		CurrentStatus: CurrentStatus{
			VocabularyLevel:    p.VocabularyLevel,
			VocabularyProgress: p.VocabularyProgress,
			GrammarLevel:       p.GrammarLevel,
			GrammarProgress:    p.GrammarProgress,
			QuizzesCompleted:   quizzesCompleted,
		},
		QuizPerformance: QuizPerformance{
			Score:                score,
			TotalQuestions:       total,
			ProgressPointsEarned: points,
		},
		Recommendations: Recommendations{
			Vocabulary: recommendation(p.VocabularyProgress),
			Grammar:    recommendation(p.GrammarProgress),
		},
	}
}

type ProgressService struct {
	Repo *repository.LanguageProgressRepository
	Cfg  config.QuizConfig
	RDB  *redis.Client
}

func NewProgressService(repo *repository.LanguageProgressRepository, cfg config.QuizConfig, rdb *redis.Client) *ProgressService {
	return &ProgressService{Repo: repo, Cfg: cfg, RDB: rdb}
}

func progressCacheKey(userID uint, language string) string {
	return fmt.Sprintf("progress:%d:%s", userID, language)
}

// GetProgress returns the leveling record for (user, language), or
// util.ErrLanguageNotTracked when the user has never practiced it.
// Reads go through a short-lived Redis cache.
func (s *ProgressService) GetProgress(ctx context.Context, userID uint, language string) (*model.LanguageProgress, error) {
	language = NormalizeLanguage(language)

	if s.RDB != nil {
		if cached, err := s.RDB.Get(ctx, progressCacheKey(userID, language)).Bytes(); err == nil {
			var p model.LanguageProgress
			if err := json.Unmarshal(cached, &p); err == nil {
				return &p, nil
			}
		}
	}

	progress, err := s.Repo.FindByUserAndLanguage(userID, language)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrLanguageNotTracked
		}
		return nil, err
	}

	s.cache(ctx, progress)
	return progress, nil
}

// ListProgress returns every language the user is tracking.
func (s *ProgressService) ListProgress(userID uint) ([]model.LanguageProgress, error) {
	return s.Repo.ListByUser(userID)
}

// Track lazily creates the leveling record the first time a language is
// detected for the user. Levels start at 0 (unassessed).
func (s *ProgressService) Track(ctx context.Context, userID uint, language string) (*model.LanguageProgress, error) {
	language = NormalizeLanguage(language)
	progress, err := s.Repo.FirstOrCreate(userID, language)
	if err != nil {
		return nil, err
	}
	s.cache(ctx, progress)
	return progress, nil
}

// Invalidate drops the cached snapshot after a progress write.
func (s *ProgressService) Invalidate(ctx context.Context, userID uint, language string) {
	if s.RDB == nil {
		return
	}
	if err := s.RDB.Del(ctx, progressCacheKey(userID, language)).Err(); err != nil {
		logger.Log.Warn("failed to invalidate progress cache", zap.Error(err))
	}
}

// Advance applies the points delta to the skill-matching half of the record
// and reports whether a level-up happened.
func (s *ProgressService) Advance(p *model.LanguageProgress, skill model.Skill, points float64) bool {
	before := p.Level(skill)
	level, progress := ApplyDelta(before, p.Progress(skill), points, s.Cfg.CarryOverflow)
	p.SetState(skill, level, progress)

	if level > before {
		monitoring.LevelUps.WithLabelValues(string(skill)).Inc()
		return true
	}
	return false
}

func (s *ProgressService) cache(ctx context.Context, p *model.LanguageProgress) {
	if s.RDB == nil {
		return
	}
	data, err := json.Marshal(p)
	if err != nil {
		return
	}
	if err := s.RDB.Set(ctx, progressCacheKey(p.UserID, p.Language), data, progressCacheTTL).Err(); err != nil {
		logger.Log.Warn("failed to cache progress", zap.Error(err))
	}
}
