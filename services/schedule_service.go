package services

import (
	"sort"
	"time"

	"github.com/X-spec7/coach-mobile-sub000/models"
	"github.com/X-spec7/coach-mobile-sub000/utils"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ScheduleService turns a meal-plan template into dated scheduled
// meals and manages the lifecycle of the applied plan.
type ScheduleService struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewScheduleService(db *gorm.DB, log *zap.Logger) *ScheduleService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ScheduleService{db: db, log: log}
}

type ApplyPlanRequest struct {
	MealPlanID   uint              `json:"meal_plan_id"`
	SelectedDays []string          `json:"selected_days"`
	WeeksCount   int               `json:"weeks_count"`
	StartDate    string            `json:"start_date"` // YYYY-MM-DD
	Source       models.PlanSource `json:"source"`
}

type AppliedPlanView struct {
	ID                  uint              `json:"id"`
	MealPlanID          uint              `json:"meal_plan_id"`
	SelectedDays        []string          `json:"selected_days"`
	WeeksCount          int               `json:"weeks_count"`
	StartDate           string            `json:"start_date"`
	IsActive            bool              `json:"is_active"`
	Source              models.PlanSource `json:"source"`
	ScheduledMealsCount int               `json:"scheduled_meals_count"`
}

// ScheduledSlot is one (date, meal time) occurrence produced by the
// expansion, before it is persisted.
type ScheduledSlot struct {
	Date       time.Time
	WeekNumber int
	MealTimeID uint
}

// ValidateRecurrence checks the recurrence parameters up front, before
// any state change.
func ValidateRecurrence(weekdays []time.Weekday, weeks int, start, today time.Time) error {
	if len(weekdays) == 0 {
		return utils.Validationf("selected_days must not be empty")
	}
	if weeks < 1 || weeks > 52 {
		return utils.Validationf("weeks_count must be between 1 and 52, got %d", weeks)
	}
	if start.Before(today) {
		return utils.Validationf("start_date must not be in the past")
	}
	return nil
}

// ExpandSchedule enumerates the dates in [start, start+weeks*7d) whose
// weekday is selected, ascending, and assigns the i-th date the plan
// day at position i mod N, cycling through the template's days in
// order. One slot is produced per meal time of the assigned day. A
// template with no days expands to nothing.
func ExpandSchedule(days []models.PlanDay, weekdays []time.Weekday, weeks int, start time.Time) []ScheduledSlot {
	if len(days) == 0 {
		return nil
	}
	ordered := make([]models.PlanDay, len(days))
	copy(ordered, days)
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].Position < ordered[j].Position })

	selected := map[time.Weekday]bool{}
	for _, wd := range weekdays {
		selected[wd] = true
	}

	var slots []ScheduledSlot
	matched := 0
	for off := 0; off < weeks*7; off++ {
		date := start.AddDate(0, 0, off)
		if !selected[date.Weekday()] {
			continue
		}
		day := ordered[matched%len(ordered)]
		for _, mt := range day.MealTimes {
			slots = append(slots, ScheduledSlot{
				Date:       date,
				WeekNumber: off/7 + 1,
				MealTimeID: mt.ID,
			})
		}
		matched++
	}
	return slots
}

// ApplyPlan creates the recurrence binding and its full batch of
// scheduled meals in one transaction.
func (s *ScheduleService) ApplyPlan(userID uint, req ApplyPlanRequest) (*AppliedPlanView, error) {
	weekdays, err := models.ParseWeekdays(req.SelectedDays)
	if err != nil {
		return nil, utils.Validationf("selected_days: %v", err)
	}
	start, err := time.ParseInLocation("2006-01-02", req.StartDate, time.Local)
	if err != nil {
		return nil, utils.Validationf("start_date must be YYYY-MM-DD")
	}
	if err := ValidateRecurrence(weekdays, req.WeeksCount, start, dayStart(time.Now())); err != nil {
		return nil, err
	}
	source := req.Source
	if source == "" {
		source = models.PlanSourceSelf
	}
	if source != models.PlanSourceSelf && source != models.PlanSourceCoach {
		return nil, utils.Validationf("source must be 'self' or 'coach'")
	}

	var plan models.MealPlan
	err = s.db.
		Preload("Days", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Days.MealTimes").
		First(&plan, req.MealPlanID).Error
	if err != nil {
		return nil, utils.AsNotFound(err, "meal plan", req.MealPlanID)
	}
	if plan.OwnerID != userID &&
		!(plan.Status == models.PlanStatusPublished && plan.Visibility == models.PlanVisibilityPublic) {
		return nil, &utils.NotFoundError{Resource: "meal plan", ID: req.MealPlanID}
	}

	applied := models.AppliedMealPlan{
		UserID:       userID,
		MealPlanID:   plan.ID,
		SelectedDays: models.JoinWeekdays(weekdays),
		WeeksCount:   req.WeeksCount,
		StartDate:    start,
		IsActive:     true,
		Source:       source,
	}

	slots := ExpandSchedule(plan.Days, weekdays, req.WeeksCount, start)

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&applied).Error; err != nil {
			return err
		}
		if len(slots) == 0 {
			return nil
		}
		meals := make([]models.ScheduledMeal, 0, len(slots))
		for _, slot := range slots {
			meals = append(meals, models.ScheduledMeal{
				AppliedPlanID: applied.ID,
				UserID:        userID,
				MealTimeID:    slot.MealTimeID,
				Date:          slot.Date,
				WeekNumber:    slot.WeekNumber,
				IsActive:      true,
			})
		}
		return tx.CreateInBatches(meals, 200).Error
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("applied meal plan",
		zap.Uint("user_id", userID),
		zap.Uint("meal_plan_id", plan.ID),
		zap.Int("scheduled_meals", len(slots)))

	view := appliedPlanView(&applied)
	view.ScheduledMealsCount = len(slots)
	return view, nil
}

// DeactivatePlan soft-ends the binding: occurrences from today onward
// are deactivated, past occurrences stay as history. Deactivating an
// already-inactive plan is a no-op success.
func (s *ScheduleService) DeactivatePlan(userID, appliedID uint) error {
	var applied models.AppliedMealPlan
	err := s.db.Where("id = ? AND user_id = ?", appliedID, userID).First(&applied).Error
	if err != nil {
		return utils.AsNotFound(err, "applied plan", appliedID)
	}
	if !applied.IsActive {
		return nil
	}

	now := time.Now()
	today := dayStart(now)
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&applied).
			Updates(map[string]any{"is_active": false, "ended_at": now}).Error; err != nil {
			return err
		}
		return tx.Model(&models.ScheduledMeal{}).
			Where("applied_plan_id = ? AND date >= ?", applied.ID, today).
			Update("is_active", false).Error
	})
}

func (s *ScheduleService) ListAppliedPlans(userID uint) ([]AppliedPlanView, error) {
	var rows []models.AppliedMealPlan
	if err := s.db.Where("user_id = ?", userID).Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]AppliedPlanView, 0, len(rows))
	for i := range rows {
		var count int64
		if err := s.db.Model(&models.ScheduledMeal{}).
			Where("applied_plan_id = ?", rows[i].ID).Count(&count).Error; err != nil {
			return nil, err
		}
		v := appliedPlanView(&rows[i])
		v.ScheduledMealsCount = int(count)
		out = append(out, *v)
	}
	return out, nil
}

func appliedPlanView(a *models.AppliedMealPlan) *AppliedPlanView {
	names := make([]string, 0, 7)
	for _, wd := range a.Weekdays() {
		names = append(names, models.JoinWeekdays([]time.Weekday{wd}))
	}
	return &AppliedPlanView{
		ID:           a.ID,
		MealPlanID:   a.MealPlanID,
		SelectedDays: names,
		WeeksCount:   a.WeeksCount,
		StartDate:    a.StartDate.Format("2006-01-02"),
		IsActive:     a.IsActive,
		Source:       a.Source,
	}
}
