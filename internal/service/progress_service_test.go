package service

import (
	"testing"

	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/config"
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultQuizConfig() config.QuizConfig {
	return config.QuizConfig{
		QuestionCount: 3,
		PointsPerfect: 0.2,
		PointsNear:    0.1,
		CarryOverflow: false,
	}
}

func TestProgressPoints(t *testing.T) {
	cfg := defaultQuizConfig()

	tests := []struct {
		name  string
		score int
		total int
		want  float64
	}{
		{"perfect", 3, 3, 0.2},
		{"one miss", 2, 3, 0.1},
		{"two misses", 1, 3, 0},
		{"zero", 0, 3, 0},
		{"perfect five questions", 5, 5, 0.2},
		{"one miss five questions", 4, 5, 0.1},
		{"single question perfect", 1, 1, 0.2},
		{"single question miss", 0, 1, 0},
		{"zero total", 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ProgressPoints(tt.score, tt.total, cfg))
		})
	}
}

func TestApplyDelta(t *testing.T) {
	tests := []struct {
		name         string
		level        int
		progress     float64
		delta        float64
		carry        bool
		wantLevel    int
		wantProgress float64
	}{
		{"simple gain", 3, 0.5, 0.2, false, 3, 0.7},
		{"no gain", 3, 0.5, 0, false, 3, 0.5},
		{"level up discards excess", 3, 0.9, 0.2, false, 4, 0},
		{"level up exact boundary", 3, 0.8, 0.2, false, 4, 0},
		{"level up with carry", 3, 0.9, 0.2, true, 4, 0.1},
		{"carry into cap discards", 9, 0.9, 0.2, true, 10, 0},
		{"frozen at cap", 10, 0.5, 0.2, false, 10, 0.5},
		{"frozen at cap zero progress", 10, 0, 0.2, true, 10, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, progress := ApplyDelta(tt.level, tt.progress, tt.delta, tt.carry)
			assert.Equal(t, tt.wantLevel, level)
			assert.InDelta(t, tt.wantProgress, progress, 1e-9)
		})
	}
}

func TestApplyDeltaInvariants(t *testing.T) {
	deltas := []float64{0, 0.1, 0.2}

	for level := 0; level <= model.MaxLevel; level++ {
		for _, start := range []float64{0, 0.1, 0.5, 0.8, 0.9} {
			for _, delta := range deltas {
				for _, carry := range []bool{false, true} {
					newLevel, newProgress := ApplyDelta(level, start, delta, carry)

					assert.GreaterOrEqual(t, newLevel, level, "level must never decrease")
					assert.LessOrEqual(t, newLevel, model.MaxLevel, "level must never exceed the cap")
					assert.GreaterOrEqual(t, newProgress, 0.0)
					assert.Less(t, newProgress, 1.0, "persisted progress must stay below 1.0")

					if level == model.MaxLevel {
						assert.Equal(t, level, newLevel)
						assert.Equal(t, start, newProgress, "capped records must not move")
					}
				}
			}
		}
	}
}

func TestAdvance(t *testing.T) {
	svc := &ProgressService{Cfg: defaultQuizConfig()}

	t.Run("vocab level up", func(t *testing.T) {
		p := &model.LanguageProgress{VocabularyLevel: 2, VocabularyProgress: 0.9, GrammarLevel: 1, GrammarProgress: 0.3}
		leveled := svc.Advance(p, model.SkillVocab, 0.2)

		require.True(t, leveled)
		assert.Equal(t, 3, p.VocabularyLevel)
		assert.Equal(t, 0.0, p.VocabularyProgress)
		assert.Equal(t, 1, p.GrammarLevel, "the other skill must be untouched")
		assert.Equal(t, 0.3, p.GrammarProgress)
	})

	t.Run("grammar no level up", func(t *testing.T) {
		p := &model.LanguageProgress{GrammarLevel: 4, GrammarProgress: 0.2}
		leveled := svc.Advance(p, model.SkillGrammar, 0.1)

		require.False(t, leveled)
		assert.Equal(t, 4, p.GrammarLevel)
		assert.InDelta(t, 0.3, p.GrammarProgress, 1e-9)
	})
}

func TestRecommendation(t *testing.T) {
	assert.Equal(t, RecommendKeepGoing, recommendation(0))
	assert.Equal(t, RecommendKeepGoing, recommendation(0.79))
	assert.Equal(t, RecommendLevelUpSoon, recommendation(0.8))
	assert.Equal(t, RecommendLevelUpSoon, recommendation(0.95))
}

func TestBuildReport(t *testing.T) {
	p := &model.LanguageProgress{
		Language:           "SPANISH",
		VocabularyLevel:    3,
		VocabularyProgress: 0.85,
		GrammarLevel:       2,
		GrammarProgress:    0.4,
	}

	report := BuildReport(p, 2, 3, 0.1, 7)

	assert.Equal(t, "SPANISH", report.Language)
	assert.Equal(t, 3, report.CurrentStatus.VocabularyLevel)
	assert.Equal(t, int64(7), report.CurrentStatus.QuizzesCompleted)
	assert.Equal(t, 2, report.QuizPerformance.Score)
	assert.Equal(t, 3, report.QuizPerformance.TotalQuestions)
	assert.Equal(t, 0.1, report.QuizPerformance.ProgressPointsEarned)
	assert.Equal(t, RecommendLevelUpSoon, report.Recommendations.Vocabulary)
	assert.Equal(t, RecommendKeepGoing, report.Recommendations.Grammar)
}
