package services

import (
	"regexp"

	"github.com/X-spec7/coach-mobile-sub000/models"
	"github.com/X-spec7/coach-mobile-sub000/utils"

	"gorm.io/gorm"
)

// PlanService authors and reads meal-plan templates. Aggregate
// nutrition in every view is recomputed from the planned items on
// read.
type PlanService struct {
	db *gorm.DB
}

func NewPlanService(db *gorm.DB) *PlanService {
	return &PlanService{db: db}
}

type CreatePlanRequest struct {
	Title        string                `json:"title"`
	GoalCategory string                `json:"goal_category"`
	Visibility   models.PlanVisibility `json:"visibility"`
}

type AddMealTimeRequest struct {
	Name      string `json:"name"`
	TimeOfDay string `json:"time_of_day"` // HH:MM
}

type AddPlannedFoodRequest struct {
	FoodItemID uint              `json:"food_item_id"`
	Amount     float64           `json:"amount"`
	Unit       models.AmountUnit `json:"unit"`
}

type PlanView struct {
	ID           uint                  `json:"id"`
	Title        string                `json:"title"`
	GoalCategory string                `json:"goal_category"`
	Status       models.PlanStatus     `json:"status"`
	Visibility   models.PlanVisibility `json:"visibility"`
	Nutrition    models.Nutrition      `json:"nutrition"`
	Days         []PlanDayView         `json:"days"`
}

type PlanDayView struct {
	ID        uint             `json:"id"`
	Position  int              `json:"position"`
	Nutrition models.Nutrition `json:"nutrition"`
	MealTimes []MealTimeView   `json:"meal_times"`
}

type MealTimeView struct {
	ID        uint              `json:"id"`
	Name      string            `json:"name"`
	TimeOfDay string            `json:"time_of_day"`
	Nutrition models.Nutrition  `json:"nutrition"`
	Foods     []PlannedFoodView `json:"foods"`
}

var timeOfDayRe = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

func (s *PlanService) CreatePlan(userID uint, req CreatePlanRequest) (*models.MealPlan, error) {
	if req.Title == "" {
		return nil, utils.Validationf("title must not be empty")
	}
	visibility := req.Visibility
	if visibility == "" {
		visibility = models.PlanVisibilityPrivate
	}
	if visibility != models.PlanVisibilityPrivate && visibility != models.PlanVisibilityPublic {
		return nil, utils.Validationf("visibility must be 'private' or 'public'")
	}

	plan := models.MealPlan{
		OwnerID:      userID,
		Title:        req.Title,
		GoalCategory: req.GoalCategory,
		Status:       models.PlanStatusDraft,
		Visibility:   visibility,
	}
	if err := s.db.Create(&plan).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// AddDay appends the next day position to a plan, up to 7.
func (s *PlanService) AddDay(userID, planID uint) (*models.PlanDay, error) {
	plan, err := s.ownedPlan(userID, planID)
	if err != nil {
		return nil, err
	}
	var count int64
	if err := s.db.Model(&models.PlanDay{}).Where("meal_plan_id = ?", plan.ID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count >= 7 {
		return nil, utils.Validationf("a meal plan holds at most 7 days")
	}
	day := models.PlanDay{MealPlanID: plan.ID, Position: int(count) + 1}
	if err := s.db.Create(&day).Error; err != nil {
		return nil, err
	}
	return &day, nil
}

func (s *PlanService) AddMealTime(userID, dayID uint, req AddMealTimeRequest) (*models.MealTime, error) {
	if req.Name == "" {
		return nil, utils.Validationf("name must not be empty")
	}
	if req.TimeOfDay != "" && !timeOfDayRe.MatchString(req.TimeOfDay) {
		return nil, utils.Validationf("time_of_day must be HH:MM")
	}

	var day models.PlanDay
	if err := s.db.First(&day, dayID).Error; err != nil {
		return nil, utils.AsNotFound(err, "plan day", dayID)
	}
	if _, err := s.ownedPlan(userID, day.MealPlanID); err != nil {
		return nil, err
	}

	mt := models.MealTime{PlanDayID: day.ID, Name: req.Name, TimeOfDay: req.TimeOfDay}
	if err := s.db.Create(&mt).Error; err != nil {
		return nil, err
	}
	return &mt, nil
}

func (s *PlanService) AddPlannedFood(userID, mealTimeID uint, req AddPlannedFoodRequest) (*models.PlannedFoodItem, error) {
	if req.Amount <= 0 {
		return nil, utils.Validationf("amount must be > 0")
	}
	if !req.Unit.Valid() {
		return nil, utils.Validationf("unknown unit %q", req.Unit)
	}

	var mt models.MealTime
	if err := s.db.First(&mt, mealTimeID).Error; err != nil {
		return nil, utils.AsNotFound(err, "meal time", mealTimeID)
	}
	var day models.PlanDay
	if err := s.db.First(&day, mt.PlanDayID).Error; err != nil {
		return nil, err
	}
	if _, err := s.ownedPlan(userID, day.MealPlanID); err != nil {
		return nil, err
	}

	var food models.FoodItem
	if err := s.db.First(&food, req.FoodItemID).Error; err != nil {
		return nil, utils.AsNotFound(err, "food item", req.FoodItemID)
	}
	if food.OwnerID != nil && *food.OwnerID != userID {
		return nil, &utils.NotFoundError{Resource: "food item", ID: req.FoodItemID}
	}

	item := models.PlannedFoodItem{
		MealTimeID: mt.ID,
		FoodItemID: food.ID,
		Amount:     req.Amount,
		Unit:       req.Unit,
	}
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&item).Error; err != nil {
			return err
		}
		return refreshCompletion(tx, mt.ID)
	})
	if err != nil {
		return nil, err
	}
	item.Food = food
	return &item, nil
}

func (s *PlanService) RemovePlannedFood(userID, itemID uint) error {
	var item models.PlannedFoodItem
	if err := s.db.First(&item, itemID).Error; err != nil {
		return utils.AsNotFound(err, "planned food item", itemID)
	}
	var mt models.MealTime
	if err := s.db.First(&mt, item.MealTimeID).Error; err != nil {
		return err
	}
	var day models.PlanDay
	if err := s.db.First(&day, mt.PlanDayID).Error; err != nil {
		return err
	}
	if _, err := s.ownedPlan(userID, day.MealPlanID); err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Delete(&item).Error; err != nil {
			return err
		}
		return refreshCompletion(tx, item.MealTimeID)
	})
}

// refreshCompletion re-derives is_completed for every scheduled meal
// generated from a meal time after its planned items changed. Editing
// a template otherwise leaves the cached flag describing a different
// item set than the one the meal now has.
func refreshCompletion(tx *gorm.DB, mealTimeID uint) error {
	var meals []models.ScheduledMeal
	err := tx.
		Preload("MealTime.Foods.Food").
		Preload("ConsumedFoods").
		Where("meal_time_id = ?", mealTimeID).
		Find(&meals).Error
	if err != nil {
		return err
	}
	for i := range meals {
		completed := ComputeMealProgress(&meals[i]).IsCompleted
		if completed == meals[i].IsCompleted {
			continue
		}
		if err := tx.Model(&meals[i]).Update("is_completed", completed).Error; err != nil {
			return err
		}
	}
	return nil
}

func (s *PlanService) Publish(userID, planID uint) error {
	plan, err := s.ownedPlan(userID, planID)
	if err != nil {
		return err
	}
	return s.db.Model(plan).Update("status", models.PlanStatusPublished).Error
}

func (s *PlanService) GetPlan(userID, planID uint) (*PlanView, error) {
	var plan models.MealPlan
	err := s.db.
		Preload("Days", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Days.MealTimes.Foods.Food").
		First(&plan, planID).Error
	if err != nil {
		return nil, utils.AsNotFound(err, "meal plan", planID)
	}
	if plan.OwnerID != userID &&
		!(plan.Status == models.PlanStatusPublished && plan.Visibility == models.PlanVisibilityPublic) {
		return nil, &utils.NotFoundError{Resource: "meal plan", ID: planID}
	}
	return planView(&plan), nil
}

func (s *PlanService) ListPlans(userID uint) ([]PlanView, error) {
	var plans []models.MealPlan
	err := s.db.
		Preload("Days", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Days.MealTimes.Foods.Food").
		Where("owner_id = ? OR (status = ? AND visibility = ?)",
			userID, models.PlanStatusPublished, models.PlanVisibilityPublic).
		Order("created_at DESC").
		Find(&plans).Error
	if err != nil {
		return nil, err
	}
	out := make([]PlanView, 0, len(plans))
	for i := range plans {
		out = append(out, *planView(&plans[i]))
	}
	return out, nil
}

func (s *PlanService) ownedPlan(userID, planID uint) (*models.MealPlan, error) {
	var plan models.MealPlan
	if err := s.db.Where("id = ? AND owner_id = ?", planID, userID).First(&plan).Error; err != nil {
		return nil, utils.AsNotFound(err, "meal plan", planID)
	}
	return &plan, nil
}

func planView(plan *models.MealPlan) *PlanView {
	v := &PlanView{
		ID:           plan.ID,
		Title:        plan.Title,
		GoalCategory: plan.GoalCategory,
		Status:       plan.Status,
		Visibility:   plan.Visibility,
		Nutrition:    plan.Nutrition(),
		Days:         make([]PlanDayView, 0, len(plan.Days)),
	}
	for i := range plan.Days {
		day := &plan.Days[i]
		dv := PlanDayView{
			ID:        day.ID,
			Position:  day.Position,
			Nutrition: day.Nutrition(),
			MealTimes: make([]MealTimeView, 0, len(day.MealTimes)),
		}
		for j := range day.MealTimes {
			mt := &day.MealTimes[j]
			mv := MealTimeView{
				ID:        mt.ID,
				Name:      mt.Name,
				TimeOfDay: mt.TimeOfDay,
				Nutrition: mt.Nutrition(),
				Foods:     make([]PlannedFoodView, 0, len(mt.Foods)),
			}
			for k := range mt.Foods {
				item := &mt.Foods[k]
				nut := item.Nutrition()
				mv.Foods = append(mv.Foods, PlannedFoodView{
					ID:         item.ID,
					FoodItemID: item.FoodItemID,
					FoodName:   item.Food.Name,
					Amount:     item.Amount,
					Unit:       item.Unit,
					Calories:   round2(nut.Calories),
					Protein:    round2(nut.Protein),
					Carbs:      round2(nut.Carbs),
					Fat:        round2(nut.Fat),
				})
			}
			dv.MealTimes = append(dv.MealTimes, mv)
		}
		v.Days = append(v.Days, dv)
	}
	return v
}
