package repository

import (
	"github.com/ChenHY1217/SoraAi-Language-Tutor-ChatBot/internal/model"

	"gorm.io/gorm"
)

type LanguageProgressRepository struct {
	DB *gorm.DB
}

func NewLanguageProgressRepository(db *gorm.DB) *LanguageProgressRepository {
	return &LanguageProgressRepository{DB: db}
}

func (r *LanguageProgressRepository) FindByUserAndLanguage(userID uint, language string) (*model.LanguageProgress, error) {
	var progress model.LanguageProgress
	err := r.DB.Where("user_id = ? AND language = ?", userID, language).First(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *LanguageProgressRepository) ListByUser(userID uint) ([]model.LanguageProgress, error) {
	var records []model.LanguageProgress
	err := r.DB.Where("user_id = ?", userID).Order("language ASC").Find(&records).Error
	return records, err
}

func (r *LanguageProgressRepository) Create(progress *model.LanguageProgress) error {
	return r.DB.Create(progress).Error
}

// FirstOrCreate tracks a language for the user if it is not tracked yet.
// Safe against the duplicate-insert race: the unique (user_id, language)
// index makes the second insert fail, in which case the existing row wins.
func (r *LanguageProgressRepository) FirstOrCreate(userID uint, language string) (*model.LanguageProgress, error) {
	progress := model.LanguageProgress{UserID: userID, Language: language}
	err := r.DB.Where("user_id = ? AND language = ?", userID, language).
		FirstOrCreate(&progress).Error
	if err != nil {
		return nil, err
	}
	return &progress, nil
}
