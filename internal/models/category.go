package models

import "time"

// Category labels a user can file a word under. A (user, word) pair holds
// at most one of these at a time.
const (
	CategoryLearned   = "Öğrendiğim Kelimeler"
	CategoryDifficult = "Zorlandığım Kelimeler"
	CategoryToReview  = "Tekrar Edilecek Kelimeler"
)

// CategoryNames lists every valid category label.
var CategoryNames = []string{CategoryLearned, CategoryDifficult, CategoryToReview}

// IsValidCategory reports whether name is one of the fixed category labels.
func IsValidCategory(name string) bool {
	for _, c := range CategoryNames {
		if c == name {
			return true
		}
	}
	return false
}

// CategoryAssignment binds one user to one word under a single category.
// The compound unique index enforces the at-most-one rule even under
// concurrent writers.
type CategoryAssignment struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID       string    `json:"userId" gorm:"type:varchar(36);uniqueIndex:idx_user_word" validate:"required"`
	WordID       string    `json:"wordId" gorm:"type:varchar(36);uniqueIndex:idx_user_word" validate:"required"`
	CategoryName string    `json:"categoryName" gorm:"type:varchar(50)" validate:"required"`
	AddedAt      time.Time `json:"addedAt"`
}
