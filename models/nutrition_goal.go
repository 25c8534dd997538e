package models

import (
	"gorm.io/gorm"
)

// NutritionGoal holds a user's daily macro targets. A zero value means
// the macro has no active goal and adherence is not reported for it.
type NutritionGoal struct {
	gorm.Model
	UserID   uint    `gorm:"uniqueIndex;not null"`
	Calories float64 // e.g. 2000 kcal
	Protein  float64 // e.g. 120 g
	Carbs    float64 // e.g. 250 g
	Fat      float64 // e.g. 70 g
}
