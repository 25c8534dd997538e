package models

import "gorm.io/gorm"

type PlanStatus string

const (
	PlanStatusDraft     PlanStatus = "draft"
	PlanStatusPublished PlanStatus = "published"
)

type PlanVisibility string

const (
	PlanVisibilityPrivate PlanVisibility = "private"
	PlanVisibilityPublic  PlanVisibility = "public"
)

// MealPlan is the reusable template: up to 7 plan days, each holding
// named meal times with planned food items. Aggregate nutrition is
// always recomputed from the leaves, never stored.
type MealPlan struct {
	gorm.Model
	OwnerID      uint           `gorm:"index;not null"`
	Title        string         `gorm:"not null"`
	GoalCategory string         `gorm:"size:32"`
	Status       PlanStatus     `gorm:"size:16;not null;default:'draft'"`
	Visibility   PlanVisibility `gorm:"size:16;not null;default:'private'"`
	Days         []PlanDay      `gorm:"foreignKey:MealPlanID"`
}

// PlanDay is a position in the template (day1..dayN), not a calendar
// weekday. Position is 1-based and unique within a plan.
type PlanDay struct {
	gorm.Model
	MealPlanID uint       `gorm:"index;not null"`
	Position   int        `gorm:"not null"`
	MealTimes  []MealTime `gorm:"foreignKey:PlanDayID"`
}

// MealTime is a named slot within a plan day, e.g. "Breakfast" at
// "08:00". TimeOfDay is local wall-clock "HH:MM".
type MealTime struct {
	gorm.Model
	PlanDayID uint              `gorm:"index;not null"`
	Name      string            `gorm:"not null"`
	TimeOfDay string            `gorm:"size:5"`
	Foods     []PlannedFoodItem `gorm:"foreignKey:MealTimeID"`
}

// PlannedFoodItem places a food into a meal time with a quantity.
type PlannedFoodItem struct {
	gorm.Model
	MealTimeID uint       `gorm:"index;not null"`
	FoodItemID uint       `gorm:"index;not null"`
	Food       FoodItem   `gorm:"foreignKey:FoodItemID"`
	Amount     float64    `gorm:"not null"`
	Unit       AmountUnit `gorm:"size:8;not null"`
}

func (p *PlannedFoodItem) Nutrition() Nutrition {
	return p.Food.NutritionFor(p.Amount)
}

func (mt *MealTime) Nutrition() Nutrition {
	var total Nutrition
	for i := range mt.Foods {
		total = total.Add(mt.Foods[i].Nutrition())
	}
	return total
}

func (d *PlanDay) Nutrition() Nutrition {
	var total Nutrition
	for i := range d.MealTimes {
		total = total.Add(d.MealTimes[i].Nutrition())
	}
	return total
}

func (mp *MealPlan) Nutrition() Nutrition {
	var total Nutrition
	for i := range mp.Days {
		total = total.Add(mp.Days[i].Nutrition())
	}
	return total
}
