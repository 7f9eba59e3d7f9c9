package service

import (
	"context"
	"testing"

	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/model"
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/repository"
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeQuizStore struct {
	quizzes map[string]*model.Quiz
	past    []model.Quiz
	created []*model.Quiz
}

func newFakeQuizStore() *fakeQuizStore {
	return &fakeQuizStore{quizzes: make(map[string]*model.Quiz)}
}

func (f *fakeQuizStore) Create(quiz *model.Quiz) error {
	if quiz.ID == "" {
		quiz.ID = "quiz-1"
	}
	f.quizzes[quiz.ID] = quiz
	f.created = append(f.created, quiz)
	return nil
}

func (f *fakeQuizStore) FindByID(id string) (*model.Quiz, error) {
	quiz, ok := f.quizzes[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *quiz
	return &copied, nil
}

func (f *fakeQuizStore) FindPast(userID uint, language string, qtype model.Skill, level int) ([]model.Quiz, error) {
	return f.past, nil
}

func (f *fakeQuizStore) ListByLanguage(userID uint, language string) ([]model.Quiz, error) {
	var out []model.Quiz
	for _, q := range f.quizzes {
		if q.UserID == userID && q.Language == language {
			out = append(out, *q)
		}
	}
	return out, nil
}

type fakeProgressStore struct {
	records map[string]*model.LanguageProgress
}

func newFakeProgressStore() *fakeProgressStore {
	return &fakeProgressStore{records: make(map[string]*model.LanguageProgress)}
}

func (f *fakeProgressStore) put(p *model.LanguageProgress) {
	f.records[p.Language] = p
}

func (f *fakeProgressStore) FindByUserAndLanguage(userID uint, language string) (*model.LanguageProgress, error) {
	p, ok := f.records[language]
	if !ok || p.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *p
	return &copied, nil
}

// fakeScoreTx drives the scoring transaction without a database.
type fakeScoreTx struct {
	progress *fakeProgressStore
	userID   uint

	answered      map[string]bool
	markCalls     int
	saveCalls     int
	saveConflicts int
	completed     int64
	lastScore     int
	saved         *model.LanguageProgress
}

func (f *fakeScoreTx) MarkAnswered(quizID string, score int) (bool, error) {
	f.markCalls++
	if f.answered[quizID] {
		return false, nil
	}
	if f.answered == nil {
		f.answered = make(map[string]bool)
	}
	f.answered[quizID] = true
	f.lastScore = score
	return true, nil
}

func (f *fakeScoreTx) ProgressByUserAndLanguage(userID uint, language string) (*model.LanguageProgress, error) {
	return f.progress.FindByUserAndLanguage(userID, language)
}

func (f *fakeScoreTx) SaveProgressVersioned(p *model.LanguageProgress) (bool, error) {
	f.saveCalls++
	if f.saveConflicts > 0 {
		f.saveConflicts--
		return false, nil
	}
	f.saved = p
	f.progress.put(p)
	return true, nil
}

func (f *fakeScoreTx) CountAnswered(userID uint) (int64, error) {
	return f.completed, nil
}

type fakeTxRunner struct {
	tx       repository.ScoreTx
	attempts int
}

func (f *fakeTxRunner) InScoreTx(fn func(tx repository.ScoreTx) error) error {
	f.attempts++
	// mimic the rollback a real transaction does on error
	scoreTx, ok := f.tx.(*fakeScoreTx)
	err := fn(f.tx)
	if err != nil && ok {
		for id := range scoreTx.answered {
			delete(scoreTx.answered, id)
		}
	}
	return err
}

type fakeGenerator struct {
	questions []model.Question
	err       error
	gotPast   []model.Question
}

func (f *fakeGenerator) Generate(ctx context.Context, past []model.Question, qtype model.Skill, language string, vocabLvl, grammarLvl int) ([]model.Question, error) {
	f.gotPast = past
	if f.err != nil {
		return nil, f.err
	}
	return f.questions, nil
}

func threeQuestions() []model.Question {
	return []model.Question{
		{Question: "Q1", Choices: []string{"A", "B", "C", "D"}, Answer: "A", Explanation: "because"},
		{Question: "Q2", Choices: []string{"A", "B", "C", "D"}, Answer: "B", Explanation: "because"},
		{Question: "Q3", Choices: []string{"A", "B", "C", "D"}, Answer: "C", Explanation: "because"},
	}
}

type quizFixture struct {
	svc      *QuizService
	quizzes  *fakeQuizStore
	progress *fakeProgressStore
	tx       *fakeScoreTx
	runner   *fakeTxRunner
	gen      *fakeGenerator
}

func newQuizFixture(t *testing.T) *quizFixture {
	t.Helper()

	cfg := defaultQuizConfig()
	quizzes := newFakeQuizStore()
	progress := newFakeProgressStore()
	tx := &fakeScoreTx{progress: progress, answered: make(map[string]bool), completed: 1}
	runner := &fakeTxRunner{tx: tx}
	gen := &fakeGenerator{questions: threeQuestions()}
	advancer := &ProgressService{Cfg: cfg}

	return &quizFixture{
		svc:      NewQuizService(quizzes, progress, advancer, runner, gen, cfg),
		quizzes:  quizzes,
		progress: progress,
		tx:       tx,
		runner:   runner,
		gen:      gen,
	}
}

func TestScoreAnswers(t *testing.T) {
	questions := threeQuestions()

	assert.Equal(t, 3, ScoreAnswers(questions, []string{"A", "B", "C"}))
	assert.Equal(t, 2, ScoreAnswers(questions, []string{"A", "X", "C"}))
	assert.Equal(t, 0, ScoreAnswers(questions, []string{"X", "Y", "Z"}))
	assert.Equal(t, 1, ScoreAnswers(questions, []string{"A"}), "short submissions only score what they cover")
	assert.Equal(t, 0, ScoreAnswers(questions, nil))
}

func TestQuizTitle(t *testing.T) {
	title := QuizTitle("SPANISH", model.SkillVocab, 3, 2)
	assert.Equal(t, "SPANISH vocab Quiz - Vocab: Lv3, Grammar: Lv2", title)
}

func TestCreateQuiz(t *testing.T) {
	f := newQuizFixture(t)
	f.progress.put(&model.LanguageProgress{UserID: 1, Language: "SPANISH", VocabularyLevel: 3, GrammarLevel: 2})

	quiz, err := f.svc.CreateQuiz(context.Background(), 1, "spanish", model.SkillVocab)
	require.NoError(t, err)

	assert.Equal(t, "SPANISH", quiz.Language, "language is normalized before lookup")
	assert.Equal(t, model.SkillVocab, quiz.Type)
	assert.Equal(t, 3, quiz.Level, "level is a snapshot of the vocab level")
	assert.Equal(t, 0, quiz.Score)
	assert.False(t, quiz.Answered)
	assert.Len(t, quiz.Questions, 3)
	assert.Len(t, f.quizzes.created, 1)
}

func TestCreateQuizPassesPastQuestions(t *testing.T) {
	f := newQuizFixture(t)
	f.progress.put(&model.LanguageProgress{UserID: 1, Language: "SPANISH", VocabularyLevel: 3})
	f.quizzes.past = []model.Quiz{{Questions: threeQuestions()}}

	_, err := f.svc.CreateQuiz(context.Background(), 1, "SPANISH", model.SkillVocab)
	require.NoError(t, err)

	assert.Len(t, f.gen.gotPast, 3, "earlier questions are handed to the generator for dedupe")
}

func TestCreateQuizLanguageNotTracked(t *testing.T) {
	f := newQuizFixture(t)

	_, err := f.svc.CreateQuiz(context.Background(), 1, "KLINGON", model.SkillVocab)
	assert.ErrorIs(t, err, util.ErrLanguageNotTracked)
	assert.Empty(t, f.quizzes.created)
}

func TestCreateQuizGenerationFailure(t *testing.T) {
	f := newQuizFixture(t)
	f.progress.put(&model.LanguageProgress{UserID: 1, Language: "SPANISH"})
	f.gen.err = util.ErrQuizGeneration

	_, err := f.svc.CreateQuiz(context.Background(), 1, "SPANISH", model.SkillGrammar)
	assert.ErrorIs(t, err, util.ErrQuizGeneration)
	assert.Empty(t, f.quizzes.created, "nothing may be persisted when generation fails")
}

func answeredFixture(t *testing.T) *quizFixture {
	t.Helper()

	f := newQuizFixture(t)
	f.progress.put(&model.LanguageProgress{UserID: 1, Language: "SPANISH", VocabularyLevel: 3, VocabularyProgress: 0.5})
	f.quizzes.Create(&model.Quiz{
		UUIDBase:  model.UUIDBase{ID: "quiz-1"},
		UserID:    1,
		Language:  "SPANISH",
		Type:      model.SkillVocab,
		Level:     3,
		Questions: threeQuestions(),
	})
	return f
}

func TestAnswerQuiz(t *testing.T) {
	f := answeredFixture(t)

	result, err := f.svc.AnswerQuiz(context.Background(), 1, "quiz-1", []string{"A", "B", "C"})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Score)
	assert.True(t, result.Quiz.Answered)
	assert.Equal(t, 3, f.tx.lastScore, "the stored score matches the computed one")
	require.NotNil(t, f.tx.saved)
	assert.InDelta(t, 0.7, f.tx.saved.VocabularyProgress, 1e-9, "perfect run credits 0.2")
	assert.Equal(t, 3, f.tx.saved.VocabularyLevel)
	assert.Equal(t, 0.2, result.Progress.QuizPerformance.ProgressPointsEarned)
	assert.Equal(t, int64(1), result.Progress.CurrentStatus.QuizzesCompleted)
}

func TestAnswerQuizOneMiss(t *testing.T) {
	f := answeredFixture(t)

	result, err := f.svc.AnswerQuiz(context.Background(), 1, "quiz-1", []string{"A", "X", "C"})
	require.NoError(t, err)

	assert.Equal(t, 2, result.Score)
	assert.InDelta(t, 0.6, f.tx.saved.VocabularyProgress, 1e-9, "one miss credits 0.1")
}

func TestAnswerQuizLevelUp(t *testing.T) {
	f := newQuizFixture(t)
	f.progress.put(&model.LanguageProgress{UserID: 1, Language: "SPANISH", VocabularyLevel: 3, VocabularyProgress: 0.9})
	f.quizzes.Create(&model.Quiz{
		UUIDBase:  model.UUIDBase{ID: "quiz-1"},
		UserID:    1,
		Language:  "SPANISH",
		Type:      model.SkillVocab,
		Questions: threeQuestions(),
	})

	result, err := f.svc.AnswerQuiz(context.Background(), 1, "quiz-1", []string{"A", "B", "C"})
	require.NoError(t, err)

	assert.Equal(t, 4, result.Progress.CurrentStatus.VocabularyLevel)
	assert.Equal(t, 0.0, result.Progress.CurrentStatus.VocabularyProgress, "excess past 1.0 is discarded")
}

func TestAnswerQuizNotFound(t *testing.T) {
	f := newQuizFixture(t)

	_, err := f.svc.AnswerQuiz(context.Background(), 1, "missing", []string{"A", "B", "C"})
	assert.ErrorIs(t, err, util.ErrQuizNotFound)
}

func TestAnswerQuizWrongOwner(t *testing.T) {
	f := answeredFixture(t)

	_, err := f.svc.AnswerQuiz(context.Background(), 2, "quiz-1", []string{"A", "B", "C"})
	assert.ErrorIs(t, err, util.ErrQuizNotFound, "foreign quizzes look like missing ones")
	assert.Zero(t, f.tx.markCalls)
}

func TestAnswerQuizCountMismatch(t *testing.T) {
	f := answeredFixture(t)

	_, err := f.svc.AnswerQuiz(context.Background(), 1, "quiz-1", []string{"A", "B"})
	assert.ErrorIs(t, err, util.ErrAnswerCountMismatch)

	_, err = f.svc.AnswerQuiz(context.Background(), 1, "quiz-1", []string{"A", "B", "C", "D"})
	assert.ErrorIs(t, err, util.ErrAnswerCountMismatch)

	assert.Zero(t, f.tx.markCalls, "validation happens before any mutation")
}

func TestAnswerQuizAlreadyAnsweredFastPath(t *testing.T) {
	f := answeredFixture(t)
	f.quizzes.quizzes["quiz-1"].Answered = true

	_, err := f.svc.AnswerQuiz(context.Background(), 1, "quiz-1", []string{"A", "B", "C"})
	assert.ErrorIs(t, err, util.ErrQuizAlreadyAnswered)
	assert.Zero(t, f.tx.markCalls)
}

func TestAnswerQuizAlreadyAnsweredInTx(t *testing.T) {
	f := answeredFixture(t)
	// a concurrent submission won the conditional update
	f.tx.answered["quiz-1"] = true

	_, err := f.svc.AnswerQuiz(context.Background(), 1, "quiz-1", []string{"A", "B", "C"})
	assert.ErrorIs(t, err, util.ErrQuizAlreadyAnswered)
	assert.Nil(t, f.tx.saved, "no progress write after a lost race")
}

func TestAnswerQuizVersionConflictRetries(t *testing.T) {
	f := answeredFixture(t)
	f.tx.saveConflicts = 2

	result, err := f.svc.AnswerQuiz(context.Background(), 1, "quiz-1", []string{"A", "B", "C"})
	require.NoError(t, err)

	assert.Equal(t, 3, f.runner.attempts, "two conflicts then success")
	assert.Equal(t, 3, result.Score)
}

func TestAnswerQuizVersionConflictExhausted(t *testing.T) {
	f := answeredFixture(t)
	f.tx.saveConflicts = 100

	_, err := f.svc.AnswerQuiz(context.Background(), 1, "quiz-1", []string{"A", "B", "C"})
	assert.ErrorIs(t, err, util.ErrProgressConflict)
	assert.Equal(t, scoreTxRetries+1, f.runner.attempts)
}

func TestAnswerQuizSecondSubmission(t *testing.T) {
	f := answeredFixture(t)

	_, err := f.svc.AnswerQuiz(context.Background(), 1, "quiz-1", []string{"A", "B", "C"})
	require.NoError(t, err)

	_, err = f.svc.AnswerQuiz(context.Background(), 1, "quiz-1", []string{"A", "B", "C"})
	assert.ErrorIs(t, err, util.ErrQuizAlreadyAnswered)
	assert.Equal(t, 1, f.tx.saveCalls, "progress is credited exactly once")
}

func TestListQuizzes(t *testing.T) {
	f := answeredFixture(t)

	quizzes, err := f.svc.ListQuizzes(1, "spanish")
	require.NoError(t, err)
	require.Len(t, quizzes, 1)
	assert.Equal(t, "quiz-1", quizzes[0].ID)
}
