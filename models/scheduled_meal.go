package models

import (
	"time"

	"gorm.io/gorm"
)

// ScheduledMeal is one dated occurrence of a template meal time,
// generated in a batch when a plan is applied. IsCompleted is the only
// cached aggregate; it is recomputed from the consumed foods after
// every consumption or template mutation, never trusted on its own
// for nutrition math.
type ScheduledMeal struct {
	gorm.Model
	AppliedPlanID uint           `gorm:"index;not null"`
	UserID        uint           `gorm:"index;not null"`
	MealTimeID    uint           `gorm:"index;not null"`
	MealTime      MealTime       `gorm:"foreignKey:MealTimeID"`
	Date          time.Time      `gorm:"index;not null"` // midnight local
	WeekNumber    int            `gorm:"not null"`
	IsCompleted   bool           `gorm:"default:false"`
	IsActive      bool           `gorm:"default:true"`
	ConsumedFoods []ConsumedFood `gorm:"foreignKey:ScheduledMealID"`
}

// ConsumedFood logs what was actually eaten against one planned item.
// At most one row exists per (scheduled meal, planned item) pair;
// logging again updates in place.
type ConsumedFood struct {
	gorm.Model
	ScheduledMealID   uint            `gorm:"not null;uniqueIndex:idx_meal_planned_item"`
	PlannedFoodItemID uint            `gorm:"not null;uniqueIndex:idx_meal_planned_item"`
	PlannedFoodItem   PlannedFoodItem `gorm:"foreignKey:PlannedFoodItemID"`
	Amount            float64         `gorm:"not null"`
	Unit              AmountUnit      `gorm:"size:8;not null"`
	Notes             string          `gorm:"type:text"`
}

// Nutrition scales the planned item's food to the consumed amount.
func (c *ConsumedFood) Nutrition() Nutrition {
	return c.PlannedFoodItem.Food.NutritionFor(c.Amount)
}
