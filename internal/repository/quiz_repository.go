package repository

import (
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/model"

	"gorm.io/gorm"
)

type QuizRepository struct {
	DB *gorm.DB
}

func NewQuizRepository(db *gorm.DB) *QuizRepository {
	return &QuizRepository{DB: db}
}

func (r *QuizRepository) Create(quiz *model.Quiz) error {
	return r.DB.Create(quiz).Error
}

func (r *QuizRepository) FindByID(id string) (*model.Quiz, error) {
	var quiz model.Quiz
	err := r.DB.Where("id = ?", id).First(&quiz).Error
	if err != nil {
		return nil, err
	}
	return &quiz, nil
}

// FindPast returns earlier quizzes for the same (user, language, type, level)
// target, newest first. Their questions seed the generator's de-duplication
// context.
func (r *QuizRepository) FindPast(userID uint, language string, qtype model.Skill, level int) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.
		Where("user_id = ? AND language = ? AND type = ? AND level = ?", userID, language, qtype, level).
		Order("created_at DESC").
		Find(&quizzes).Error
	return quizzes, err
}

func (r *QuizRepository) ListByLanguage(userID uint, language string) ([]model.Quiz, error) {
	var quizzes []model.Quiz
	err := r.DB.
		Where("user_id = ? AND language = ?", userID, language).
		Order("created_at DESC").
		Find(&quizzes).Error
	return quizzes, err
}
