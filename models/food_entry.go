package models

import (
	"time"

	"gorm.io/gorm"
)

type MealType string

const (
	MealTypeBreakfast MealType = "breakfast"
	MealTypeLunch     MealType = "lunch"
	MealTypeDinner    MealType = "dinner"
	MealTypeSnack     MealType = "snack"
)

func (m MealType) Valid() bool {
	switch m {
	case MealTypeBreakfast, MealTypeLunch, MealTypeDinner, MealTypeSnack:
		return true
	}
	return false
}

// FoodEntry is a manual (non-scheduled) food log record. Macros are
// snapshotted at log time so later edits to the food don't rewrite
// history; entries always count at their logged value in reports.
type FoodEntry struct {
	gorm.Model
	UserID     uint       `gorm:"index;not null"`
	Date       time.Time  `gorm:"index;not null"` // midnight local
	MealType   MealType   `gorm:"size:16;not null"`
	FoodItemID *uint      `gorm:"index"` // nil for free-form entries
	Name       string     `gorm:"not null"`
	Amount     float64    `gorm:"not null"`
	Unit       AmountUnit `gorm:"size:8;not null"`
	Calories   float64
	Protein    float64
	Carbs      float64
	Fat        float64
}

func (e *FoodEntry) Nutrition() Nutrition {
	return Nutrition{Calories: e.Calories, Protein: e.Protein, Carbs: e.Carbs, Fat: e.Fat}
}
