package services

import (
	"errors"
	"time"

	"github.com/X-spec7/coach-mobile-sub000/models"
	"github.com/X-spec7/coach-mobile-sub000/utils"

	"gorm.io/gorm"
)

// ReportService combines aggregator output, manual food entries and
// the user's goals into period statistics. Read-only, safely
// retryable.
type ReportService struct {
	db  *gorm.DB
	agg *AggregationService
}

func NewReportService(db *gorm.DB, agg *AggregationService) *ReportService {
	return &ReportService{db: db, agg: agg}
}

type MacroAdherence struct {
	Goal                float64 `json:"goal"`
	AverageConsumed     float64 `json:"average_consumed"`
	AdherencePercentage float64 `json:"adherence_percentage"`
}

type MealTypeStats struct {
	Count         int     `json:"count"`
	TotalCalories float64 `json:"total_calories"`
}

type PeriodReport struct {
	TotalDays         int                               `json:"total_days"`
	Totals            models.Nutrition                  `json:"totals"`
	Averages          models.Nutrition                  `json:"averages"`
	GoalAdherence     map[string]MacroAdherence         `json:"goal_adherence"`
	MealTypeBreakdown map[models.MealType]MealTypeStats `json:"meal_type_breakdown"`
}

// Report builds the period statistics for the inclusive [from, to]
// window. Adherence is reported only for macros with an active goal;
// a macro without one is absent from the map, not zero.
func (s *ReportService) Report(userID uint, from, to time.Time) (*PeriodReport, error) {
	from, to = dayStart(from), dayStart(to)
	if to.Before(from) {
		return nil, utils.Validationf("date_to must not be before date_from")
	}

	totalDays := 0
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		totalDays++
	}

	scheduled, err := s.agg.ScheduledNutrition(userID, from, to)
	if err != nil {
		return nil, err
	}

	var entries []models.FoodEntry
	err = s.db.
		Where("user_id = ? AND date >= ? AND date < ?", userID, from, to.AddDate(0, 0, 1)).
		Find(&entries).Error
	if err != nil {
		return nil, err
	}

	totals := scheduled
	breakdown := map[models.MealType]MealTypeStats{
		models.MealTypeBreakfast: {},
		models.MealTypeLunch:     {},
		models.MealTypeDinner:    {},
		models.MealTypeSnack:     {},
	}
	for i := range entries {
		totals = totals.Add(entries[i].Nutrition())
		st := breakdown[entries[i].MealType]
		st.Count++
		st.TotalCalories = round2(st.TotalCalories + entries[i].Calories)
		breakdown[entries[i].MealType] = st
	}

	averages := models.Nutrition{
		Calories: avg(totals.Calories, totalDays),
		Protein:  avg(totals.Protein, totalDays),
		Carbs:    avg(totals.Carbs, totalDays),
		Fat:      avg(totals.Fat, totalDays),
	}

	goal, err := s.goalSnapshot(userID)
	if err != nil {
		return nil, err
	}
	adherence := map[string]MacroAdherence{}
	for _, m := range []struct {
		name string
		goal float64
		avg  float64
	}{
		{"calories", goal.Calories, averages.Calories},
		{"protein", goal.Protein, averages.Protein},
		{"carbs", goal.Carbs, averages.Carbs},
		{"fat", goal.Fat, averages.Fat},
	} {
		if m.goal <= 0 {
			continue
		}
		adherence[m.name] = MacroAdherence{
			Goal:                m.goal,
			AverageConsumed:     m.avg,
			AdherencePercentage: round2(m.avg / m.goal * 100),
		}
	}

	return &PeriodReport{
		TotalDays: totalDays,
		Totals: models.Nutrition{
			Calories: round2(totals.Calories),
			Protein:  round2(totals.Protein),
			Carbs:    round2(totals.Carbs),
			Fat:      round2(totals.Fat),
		},
		Averages:          averages,
		GoalAdherence:     adherence,
		MealTypeBreakdown: breakdown,
	}, nil
}

func (s *ReportService) goalSnapshot(userID uint) (*models.NutritionGoal, error) {
	var g models.NutritionGoal
	if err := s.db.Where("user_id = ?", userID).First(&g).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.NutritionGoal{UserID: userID}, nil
		}
		return nil, err
	}
	return &g, nil
}
