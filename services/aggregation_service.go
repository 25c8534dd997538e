package services

import (
	"math"
	"time"

	"github.com/X-spec7/coach-mobile-sub000/models"
	"github.com/X-spec7/coach-mobile-sub000/utils"

	"gorm.io/gorm"
)

// AggregationService computes completion ratios and nutrition rollups
// from template + consumption state. Everything here is read-only and
// recomputed bottom-up from the leaves on every call.
type AggregationService struct {
	db *gorm.DB
}

func NewAggregationService(db *gorm.DB) *AggregationService {
	return &AggregationService{db: db}
}

type MacroSet struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

type ScheduledMealSummary struct {
	ID                   uint    `json:"id"`
	MealTimeName         string  `json:"meal_time_name"`
	MealTimeTime         string  `json:"meal_time_time"`
	ScheduledDate        string  `json:"scheduled_date"`
	WeekNumber           int     `json:"week_number"`
	IsCompleted          bool    `json:"is_completed"`
	CompletionPercentage float64 `json:"completion_percentage"`
	ConsumedFoodsCount   int     `json:"consumed_foods_count"`
	TotalFoodsCount      int     `json:"total_foods_count"`
}

type ScheduledMealDetail struct {
	ScheduledMealSummary
	ConsumedCalories  float64            `json:"consumed_calories"`
	ConsumedNutrition MacroSet           `json:"consumed_nutrition"`
	PlannedCalories   float64            `json:"planned_calories"`
	PlannedNutrition  MacroSet           `json:"planned_nutrition"`
	ConsumedFoods     []ConsumedFoodView `json:"consumed_foods"`
	PlannedFoods      []PlannedFoodView  `json:"planned_foods"`
}

type ConsumedFoodView struct {
	ID                   uint              `json:"id"`
	MealPlanFoodItemID   uint              `json:"meal_plan_food_item_id"`
	ConsumedAmount       float64           `json:"consumed_amount"`
	ConsumedUnit         models.AmountUnit `json:"consumed_unit"`
	PlannedAmount        float64           `json:"planned_amount"`
	PlannedUnit          models.AmountUnit `json:"planned_unit"`
	Calories             float64           `json:"calories"`
	Protein              float64           `json:"protein"`
	Carbs                float64           `json:"carbs"`
	Fat                  float64           `json:"fat"`
	CompletionPercentage float64           `json:"completion_percentage"`
	IsFullyConsumed      bool              `json:"is_fully_consumed"`
	Notes                string            `json:"notes,omitempty"`
}

type PlannedFoodView struct {
	ID         uint              `json:"id"`
	FoodItemID uint              `json:"food_item_id"`
	FoodName   string            `json:"food_name"`
	Amount     float64           `json:"amount"`
	Unit       models.AmountUnit `json:"unit"`
	Calories   float64           `json:"calories"`
	Protein    float64           `json:"protein"`
	Carbs      float64           `json:"carbs"`
	Fat        float64           `json:"fat"`
	IsConsumed bool              `json:"is_consumed"`
}

// MealProgress is the derived completion state of one scheduled meal.
type MealProgress struct {
	TotalFoods           int
	ConsumedFoods        int
	FullyConsumedFoods   int
	CompletionPercentage float64
	IsCompleted          bool
	Planned              models.Nutrition
	Consumed             models.Nutrition
}

// ItemCompletion is consumed/planned expressed 0-100+, deliberately
// unclamped so over-consumption stays visible.
func ItemCompletion(consumed, planned float64) float64 {
	if planned <= 0 {
		if consumed <= 0 {
			return 0
		}
		return 100
	}
	return round2(consumed / planned * 100)
}

// ComputeMealProgress derives the completion state of a scheduled meal
// whose MealTime.Foods (with Food) and ConsumedFoods are loaded. The
// meal-level ratio is count-based: every planned item weighs the same
// regardless of its calorie share.
func ComputeMealProgress(meal *models.ScheduledMeal) MealProgress {
	plannedByID := map[uint]*models.PlannedFoodItem{}
	for i := range meal.MealTime.Foods {
		plannedByID[meal.MealTime.Foods[i].ID] = &meal.MealTime.Foods[i]
	}

	p := MealProgress{
		TotalFoods: len(meal.MealTime.Foods),
		Planned:    meal.MealTime.Nutrition(),
	}
	for i := range meal.ConsumedFoods {
		cf := &meal.ConsumedFoods[i]
		planned, ok := plannedByID[cf.PlannedFoodItemID]
		if !ok {
			// consumed row orphaned by a template edit; skip it
			continue
		}
		p.ConsumedFoods++
		p.Consumed = p.Consumed.Add(planned.Food.NutritionFor(cf.Amount))
		if cf.Amount >= planned.Amount {
			p.FullyConsumedFoods++
		}
	}
	if p.TotalFoods > 0 {
		p.CompletionPercentage = round2(float64(p.FullyConsumedFoods) / float64(p.TotalFoods) * 100)
	}
	p.IsCompleted = p.TotalFoods > 0 && p.FullyConsumedFoods == p.TotalFoods
	return p
}

// MealContribution applies the completed-meal snap rule: a fully
// completed meal contributes its designed nutrition, a partial one
// contributes what was actually logged.
func MealContribution(p MealProgress) models.Nutrition {
	if p.IsCompleted {
		return p.Planned
	}
	return p.Consumed
}

// ListScheduledMeals returns summaries for active occurrences in the
// inclusive [from, to] date window, optionally filtered by completion.
func (s *AggregationService) ListScheduledMeals(userID uint, from, to time.Time, completed *bool) ([]ScheduledMealSummary, error) {
	meals, err := s.loadMeals(userID, from, to, completed)
	if err != nil {
		return nil, err
	}
	out := make([]ScheduledMealSummary, 0, len(meals))
	for i := range meals {
		out = append(out, mealSummary(&meals[i], ComputeMealProgress(&meals[i])))
	}
	return out, nil
}

// GetScheduledMeal returns the full detail for one occurrence.
func (s *AggregationService) GetScheduledMeal(userID, mealID uint) (*ScheduledMealDetail, error) {
	var meal models.ScheduledMeal
	err := s.db.
		Preload("MealTime.Foods.Food").
		Preload("ConsumedFoods").
		Where("id = ? AND user_id = ?", mealID, userID).
		First(&meal).Error
	if err != nil {
		return nil, utils.AsNotFound(err, "scheduled meal", mealID)
	}

	progress := ComputeMealProgress(&meal)
	detail := &ScheduledMealDetail{
		ScheduledMealSummary: mealSummary(&meal, progress),
		ConsumedCalories:     round2(progress.Consumed.Calories),
		ConsumedNutrition:    macroSet(progress.Consumed),
		PlannedCalories:      round2(progress.Planned.Calories),
		PlannedNutrition:     macroSet(progress.Planned),
	}

	consumedByItem := map[uint]*models.ConsumedFood{}
	for i := range meal.ConsumedFoods {
		consumedByItem[meal.ConsumedFoods[i].PlannedFoodItemID] = &meal.ConsumedFoods[i]
	}
	for i := range meal.MealTime.Foods {
		planned := &meal.MealTime.Foods[i]
		nut := planned.Nutrition()
		_, logged := consumedByItem[planned.ID]
		detail.PlannedFoods = append(detail.PlannedFoods, PlannedFoodView{
			ID:         planned.ID,
			FoodItemID: planned.FoodItemID,
			FoodName:   planned.Food.Name,
			Amount:     planned.Amount,
			Unit:       planned.Unit,
			Calories:   round2(nut.Calories),
			Protein:    round2(nut.Protein),
			Carbs:      round2(nut.Carbs),
			Fat:        round2(nut.Fat),
			IsConsumed: logged,
		})
		if cf, ok := consumedByItem[planned.ID]; ok {
			detail.ConsumedFoods = append(detail.ConsumedFoods, consumedView(cf, planned))
		}
	}
	return detail, nil
}

// ScheduledNutrition sums the contributions of all active scheduled
// meals in the window, per the snap rule.
func (s *AggregationService) ScheduledNutrition(userID uint, from, to time.Time) (models.Nutrition, error) {
	meals, err := s.loadMeals(userID, from, to, nil)
	if err != nil {
		return models.Nutrition{}, err
	}
	var total models.Nutrition
	for i := range meals {
		total = total.Add(MealContribution(ComputeMealProgress(&meals[i])))
	}
	return total, nil
}

// PeriodNutrition is the window total: scheduled contributions plus
// every manual food entry at its logged value.
func (s *AggregationService) PeriodNutrition(userID uint, from, to time.Time) (models.Nutrition, error) {
	total, err := s.ScheduledNutrition(userID, from, to)
	if err != nil {
		return models.Nutrition{}, err
	}
	var entries []models.FoodEntry
	err = s.db.
		Where("user_id = ? AND date >= ? AND date < ?", userID, dayStart(from), dayStart(to).AddDate(0, 0, 1)).
		Find(&entries).Error
	if err != nil {
		return models.Nutrition{}, err
	}
	for i := range entries {
		total = total.Add(entries[i].Nutrition())
	}
	return total, nil
}

func (s *AggregationService) loadMeals(userID uint, from, to time.Time, completed *bool) ([]models.ScheduledMeal, error) {
	q := s.db.
		Preload("MealTime.Foods.Food").
		Preload("ConsumedFoods").
		Where("user_id = ? AND is_active = ? AND date >= ? AND date < ?",
			userID, true, dayStart(from), dayStart(to).AddDate(0, 0, 1)).
		Order("date ASC, id ASC")
	if completed != nil {
		q = q.Where("is_completed = ?", *completed)
	}
	var meals []models.ScheduledMeal
	err := q.Find(&meals).Error
	return meals, err
}

func mealSummary(meal *models.ScheduledMeal, p MealProgress) ScheduledMealSummary {
	return ScheduledMealSummary{
		ID:                   meal.ID,
		MealTimeName:         meal.MealTime.Name,
		MealTimeTime:         meal.MealTime.TimeOfDay,
		ScheduledDate:        meal.Date.Format("2006-01-02"),
		WeekNumber:           meal.WeekNumber,
		IsCompleted:          p.IsCompleted,
		CompletionPercentage: p.CompletionPercentage,
		ConsumedFoodsCount:   p.ConsumedFoods,
		TotalFoodsCount:      p.TotalFoods,
	}
}

func consumedView(cf *models.ConsumedFood, planned *models.PlannedFoodItem) ConsumedFoodView {
	nut := planned.Food.NutritionFor(cf.Amount)
	return ConsumedFoodView{
		ID:                   cf.ID,
		MealPlanFoodItemID:   cf.PlannedFoodItemID,
		ConsumedAmount:       cf.Amount,
		ConsumedUnit:         cf.Unit,
		PlannedAmount:        planned.Amount,
		PlannedUnit:          planned.Unit,
		Calories:             round2(nut.Calories),
		Protein:              round2(nut.Protein),
		Carbs:                round2(nut.Carbs),
		Fat:                  round2(nut.Fat),
		CompletionPercentage: ItemCompletion(cf.Amount, planned.Amount),
		IsFullyConsumed:      cf.Amount >= planned.Amount,
		Notes:                cf.Notes,
	}
}

func macroSet(n models.Nutrition) MacroSet {
	return MacroSet{Protein: round2(n.Protein), Carbs: round2(n.Carbs), Fat: round2(n.Fat)}
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func avg(sum float64, n int) float64 {
	if n <= 0 {
		return 0
	}
	return round2(sum / float64(n))
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
