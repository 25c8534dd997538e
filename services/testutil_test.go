package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/X-spec7/coach-mobile-sub000/config"
	"github.com/X-spec7/coach-mobile-sub000/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, config.AutoMigrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB) *models.User {
	t.Helper()
	user := models.User{Email: fmt.Sprintf("user%d@example.com", time.Now().UnixNano()), Password: "x"}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

// seedFood creates a catalog food with a 100 gram serving.
func seedFood(t *testing.T, db *gorm.DB, name string, calories, protein, carbs, fat float64) *models.FoodItem {
	t.Helper()
	food := models.FoodItem{
		Name:        name,
		Kind:        models.FoodKindCatalog,
		ServingSize: 100,
		ServingUnit: models.UnitGram,
		Calories:    calories,
		Protein:     protein,
		Carbs:       carbs,
		Fat:         fat,
	}
	require.NoError(t, db.Create(&food).Error)
	return &food
}

func seedPlan(t *testing.T, db *gorm.DB, ownerID uint) *models.MealPlan {
	t.Helper()
	plan := models.MealPlan{
		OwnerID:    ownerID,
		Title:      "Cut phase",
		Status:     models.PlanStatusPublished,
		Visibility: models.PlanVisibilityPublic,
	}
	require.NoError(t, db.Create(&plan).Error)
	return &plan
}

func seedDay(t *testing.T, db *gorm.DB, plan *models.MealPlan, position int) *models.PlanDay {
	t.Helper()
	day := models.PlanDay{MealPlanID: plan.ID, Position: position}
	require.NoError(t, db.Create(&day).Error)
	return &day
}

func seedMealTime(t *testing.T, db *gorm.DB, day *models.PlanDay, name string) *models.MealTime {
	t.Helper()
	mt := models.MealTime{PlanDayID: day.ID, Name: name, TimeOfDay: "08:00"}
	require.NoError(t, db.Create(&mt).Error)
	return &mt
}

func seedPlannedFood(t *testing.T, db *gorm.DB, mt *models.MealTime, food *models.FoodItem, amount float64) *models.PlannedFoodItem {
	t.Helper()
	item := models.PlannedFoodItem{
		MealTimeID: mt.ID,
		FoodItemID: food.ID,
		Amount:     amount,
		Unit:       models.UnitGram,
	}
	require.NoError(t, db.Create(&item).Error)
	return &item
}

// applyToday applies the plan starting today on all weekdays for one
// week and returns the scheduled meals, date ascending.
func applyToday(t *testing.T, db *gorm.DB, svc *ScheduleService, userID, planID uint) []models.ScheduledMeal {
	t.Helper()
	_, err := svc.ApplyPlan(userID, ApplyPlanRequest{
		MealPlanID:   planID,
		SelectedDays: []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"},
		WeeksCount:   1,
		StartDate:    time.Now().Format("2006-01-02"),
	})
	require.NoError(t, err)

	var meals []models.ScheduledMeal
	require.NoError(t, db.Where("user_id = ?", userID).Order("date ASC, id ASC").Find(&meals).Error)
	return meals
}
