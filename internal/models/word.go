package models

import "gorm.io/gorm"

// Difficulty tiers for a word. The labels match the corpus language.
const (
	DifficultyEasy   = "Kolay"
	DifficultyMedium = "Orta"
	DifficultyHard   = "Zor"
)

// Word represents one entry of the vocabulary corpus.
type Word struct {
	ID          string `json:"id" gorm:"primaryKey;type:varchar(36)" validate:"omitempty,uuid"`
	Polish      string `json:"polish" gorm:"uniqueIndex;type:varchar(255)" validate:"required,min=1,max=255"`
	Turkish     string `json:"turkish" gorm:"type:varchar(255)" validate:"required,min=1,max=255"`
	Phonetic    string `json:"phonetic,omitempty" gorm:"type:varchar(255)" validate:"omitempty,max=255"`
	Example     string `json:"example,omitempty" gorm:"type:varchar(500)" validate:"omitempty,max=500"`
	Translation string `json:"translation,omitempty" gorm:"type:varchar(500)" validate:"omitempty,max=500"`
	Difficulty  string `json:"difficulty" gorm:"type:varchar(20);default:Orta" validate:"omitempty,oneof=Kolay Orta Zor"`
	gorm.Model  `json:"-"`
}
