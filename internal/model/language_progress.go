package model

// Skill selects which half of a LanguageProgress record a quiz credits.
type Skill string

const (
	SkillVocab   Skill = "vocab"
	SkillGrammar Skill = "grammar"
)

func (s Skill) Valid() bool {
	return s == SkillVocab || s == SkillGrammar
}

const MaxLevel = 10

// LanguageProgress tracks one user's leveling state for one target language.
// Levels are 0-10 and never decrease; progress stays in [0,1) between updates.
// Version backs the optimistic-concurrency write in the repository.
//
// swagger:model LanguageProgress
type LanguageProgress struct {
	BaseModel
	UserID             uint    `gorm:"not null;uniqueIndex:idx_user_language" json:"userId"`
	Language           string  `gorm:"size:50;not null;uniqueIndex:idx_user_language" json:"language"`
	VocabularyLevel    int     `gorm:"default:0" json:"vocabularyLevel"`
	VocabularyProgress float64 `gorm:"default:0" json:"vocabularyProgress"`
	GrammarLevel       int     `gorm:"default:0" json:"grammarLevel"`
	GrammarProgress    float64 `gorm:"default:0" json:"grammarProgress"`
	Version            int     `gorm:"default:0" json:"-"`
}

func (LanguageProgress) TableName() string {
	return "language_progress"
}

// Level returns the level tracked for the given skill.
func (p *LanguageProgress) Level(skill Skill) int {
	if skill == SkillGrammar {
		return p.GrammarLevel
	}
	return p.VocabularyLevel
}

// Progress returns the fractional progress tracked for the given skill.
func (p *LanguageProgress) Progress(skill Skill) float64 {
	if skill == SkillGrammar {
		return p.GrammarProgress
	}
	return p.VocabularyProgress
}

// SetState overwrites the level/progress pair for the given skill.
func (p *LanguageProgress) SetState(skill Skill, level int, progress float64) {
	if skill == SkillGrammar {
		p.GrammarLevel = level
		p.GrammarProgress = progress
		return
	}
	p.VocabularyLevel = level
	p.VocabularyProgress = progress
}
