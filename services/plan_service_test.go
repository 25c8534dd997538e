package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/X-spec7/coach-mobile-sub000/models"
	"github.com/X-spec7/coach-mobile-sub000/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePlanValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewPlanService(db)
	user := seedUser(t, db)

	_, err := svc.CreatePlan(user.ID, CreatePlanRequest{Title: ""})
	var ve *utils.ValidationError
	require.ErrorAs(t, err, &ve)

	_, err = svc.CreatePlan(user.ID, CreatePlanRequest{Title: "Bulk", Visibility: "everyone"})
	require.ErrorAs(t, err, &ve)

	plan, err := svc.CreatePlan(user.ID, CreatePlanRequest{Title: "Bulk"})
	require.NoError(t, err)
	assert.Equal(t, models.PlanStatusDraft, plan.Status)
	assert.Equal(t, models.PlanVisibilityPrivate, plan.Visibility)
}

func TestAddDayCapsAtSeven(t *testing.T) {
	db := newTestDB(t)
	svc := NewPlanService(db)
	user := seedUser(t, db)
	plan, err := svc.CreatePlan(user.ID, CreatePlanRequest{Title: "Week"})
	require.NoError(t, err)

	for i := 1; i <= 7; i++ {
		day, err := svc.AddDay(user.ID, plan.ID)
		require.NoError(t, err)
		assert.Equal(t, i, day.Position)
	}

	_, err = svc.AddDay(user.ID, plan.ID)
	var ve *utils.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestAddMealTimeValidatesTimeOfDay(t *testing.T) {
	db := newTestDB(t)
	svc := NewPlanService(db)
	user := seedUser(t, db)
	plan, err := svc.CreatePlan(user.ID, CreatePlanRequest{Title: "Week"})
	require.NoError(t, err)
	day, err := svc.AddDay(user.ID, plan.ID)
	require.NoError(t, err)

	var ve *utils.ValidationError
	for _, bad := range []string{"25:00", "7:30", "12:60", "noon"} {
		t.Run(fmt.Sprintf("rejects %s", bad), func(t *testing.T) {
			_, err := svc.AddMealTime(user.ID, day.ID, AddMealTimeRequest{Name: "Lunch", TimeOfDay: bad})
			require.ErrorAs(t, err, &ve)
		})
	}

	mt, err := svc.AddMealTime(user.ID, day.ID, AddMealTimeRequest{Name: "Lunch", TimeOfDay: "12:30"})
	require.NoError(t, err)
	assert.Equal(t, "12:30", mt.TimeOfDay)
}

func TestAddPlannedFoodValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewPlanService(db)
	user := seedUser(t, db)
	food := seedFood(t, db, "Rice", 360, 7, 79, 1)
	plan, err := svc.CreatePlan(user.ID, CreatePlanRequest{Title: "Week"})
	require.NoError(t, err)
	day, err := svc.AddDay(user.ID, plan.ID)
	require.NoError(t, err)
	mt, err := svc.AddMealTime(user.ID, day.ID, AddMealTimeRequest{Name: "Dinner"})
	require.NoError(t, err)

	var ve *utils.ValidationError
	_, err = svc.AddPlannedFood(user.ID, mt.ID, AddPlannedFoodRequest{FoodItemID: food.ID, Amount: 0, Unit: models.UnitGram})
	require.ErrorAs(t, err, &ve)
	_, err = svc.AddPlannedFood(user.ID, mt.ID, AddPlannedFoodRequest{FoodItemID: food.ID, Amount: 100, Unit: "bowl"})
	require.ErrorAs(t, err, &ve)

	// another user's custom food is invisible here
	stranger := seedUser(t, db)
	private := models.FoodItem{Name: "Secret sauce", Kind: models.FoodKindCustom, OwnerID: &stranger.ID,
		ServingSize: 100, ServingUnit: models.UnitGram, Calories: 90}
	require.NoError(t, db.Create(&private).Error)
	_, err = svc.AddPlannedFood(user.ID, mt.ID, AddPlannedFoodRequest{FoodItemID: private.ID, Amount: 50, Unit: models.UnitGram})
	var nf *utils.NotFoundError
	require.ErrorAs(t, err, &nf)

	item, err := svc.AddPlannedFood(user.ID, mt.ID, AddPlannedFoodRequest{FoodItemID: food.ID, Amount: 150, Unit: models.UnitGram})
	require.NoError(t, err)
	assert.Equal(t, "Rice", item.Food.Name)
}

func TestRollupsRecomputeAfterRemoval(t *testing.T) {
	db := newTestDB(t)
	svc := NewPlanService(db)
	user := seedUser(t, db)
	food := seedFood(t, db, "Rice", 360, 7, 79, 1)
	plan, err := svc.CreatePlan(user.ID, CreatePlanRequest{Title: "Week"})
	require.NoError(t, err)
	day, err := svc.AddDay(user.ID, plan.ID)
	require.NoError(t, err)
	mt, err := svc.AddMealTime(user.ID, day.ID, AddMealTimeRequest{Name: "Dinner"})
	require.NoError(t, err)

	a, err := svc.AddPlannedFood(user.ID, mt.ID, AddPlannedFoodRequest{FoodItemID: food.ID, Amount: 100, Unit: models.UnitGram})
	require.NoError(t, err)
	_, err = svc.AddPlannedFood(user.ID, mt.ID, AddPlannedFoodRequest{FoodItemID: food.ID, Amount: 50, Unit: models.UnitGram})
	require.NoError(t, err)

	view, err := svc.GetPlan(user.ID, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 540.0, view.Nutrition.Calories) // 360 + 180

	require.NoError(t, svc.RemovePlannedFood(user.ID, a.ID))

	view, err = svc.GetPlan(user.ID, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, 180.0, view.Nutrition.Calories)
	require.Len(t, view.Days, 1)
	require.Len(t, view.Days[0].MealTimes, 1)
	assert.Len(t, view.Days[0].MealTimes[0].Foods, 1)
}

func TestAddPlannedFoodRefreshesScheduledCompletion(t *testing.T) {
	db := newTestDB(t)
	plans := NewPlanService(db)
	schedule := NewScheduleService(db, nil)
	consumption := NewConsumptionService(db, nil, nil)
	agg := NewAggregationService(db)

	user := seedUser(t, db)
	food := seedFood(t, db, "Oats", 380, 13, 68, 7)
	plan := seedPlan(t, db, user.ID)
	day := seedDay(t, db, plan, 1)
	mt := seedMealTime(t, db, day, "Breakfast")
	item := seedPlannedFood(t, db, mt, food, 80)

	meals := applyToday(t, db, schedule, user.ID, plan.ID)
	_, err := consumption.QuickComplete(user.ID, meals[0].ID, item.ID)
	require.NoError(t, err)

	// growing the meal time drops every completed occurrence back to
	// partial, including the cached flag the list filter queries
	_, err = plans.AddPlannedFood(user.ID, mt.ID, AddPlannedFoodRequest{
		FoodItemID: food.ID, Amount: 40, Unit: models.UnitGram,
	})
	require.NoError(t, err)

	completed := true
	today := time.Now()
	rows, err := agg.ListScheduledMeals(user.ID, today, today, &completed)
	require.NoError(t, err)
	assert.Empty(t, rows)

	detail, err := agg.GetScheduledMeal(user.ID, meals[0].ID)
	require.NoError(t, err)
	assert.False(t, detail.IsCompleted)
	assert.Equal(t, 50.0, detail.CompletionPercentage)
	assert.Equal(t, 2, detail.TotalFoodsCount)
}

func TestRemovePlannedFoodRefreshesScheduledCompletion(t *testing.T) {
	db := newTestDB(t)
	plans := NewPlanService(db)
	schedule := NewScheduleService(db, nil)
	consumption := NewConsumptionService(db, nil, nil)
	agg := NewAggregationService(db)

	user := seedUser(t, db)
	food := seedFood(t, db, "Rice", 360, 7, 79, 1)
	plan := seedPlan(t, db, user.ID)
	day := seedDay(t, db, plan, 1)
	mt := seedMealTime(t, db, day, "Dinner")
	kept := seedPlannedFood(t, db, mt, food, 100)
	dropped := seedPlannedFood(t, db, mt, food, 50)

	meals := applyToday(t, db, schedule, user.ID, plan.ID)
	_, err := consumption.QuickComplete(user.ID, meals[0].ID, kept.ID)
	require.NoError(t, err)
	_, err = consumption.QuickComplete(user.ID, meals[0].ID, dropped.ID)
	require.NoError(t, err)

	require.NoError(t, plans.RemovePlannedFood(user.ID, dropped.ID))

	// still completed against the remaining item; the orphaned
	// consumed row is excluded from the counts
	completed := true
	today := time.Now()
	rows, err := agg.ListScheduledMeals(user.ID, today, today, &completed)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].TotalFoodsCount)
	assert.Equal(t, 1, rows[0].ConsumedFoodsCount)
	assert.True(t, rows[0].IsCompleted)

	// removing the last fully-consumed item empties the meal and
	// clears the flag
	require.NoError(t, plans.RemovePlannedFood(user.ID, kept.ID))
	rows, err = agg.ListScheduledMeals(user.ID, today, today, &completed)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestPlanVisibilityRules(t *testing.T) {
	db := newTestDB(t)
	svc := NewPlanService(db)
	owner := seedUser(t, db)
	other := seedUser(t, db)

	plan, err := svc.CreatePlan(owner.ID, CreatePlanRequest{Title: "Shared", Visibility: models.PlanVisibilityPublic})
	require.NoError(t, err)

	// draft public plans stay invisible to other users
	_, err = svc.GetPlan(other.ID, plan.ID)
	var nf *utils.NotFoundError
	require.ErrorAs(t, err, &nf)

	require.NoError(t, svc.Publish(owner.ID, plan.ID))

	view, err := svc.GetPlan(other.ID, plan.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PlanStatusPublished, view.Status)

	// and only the owner can publish
	plan2, err := svc.CreatePlan(owner.ID, CreatePlanRequest{Title: "Private"})
	require.NoError(t, err)
	err = svc.Publish(other.ID, plan2.ID)
	require.ErrorAs(t, err, &nf)

	// listings show own plans plus published public ones
	views, err := svc.ListPlans(other.ID)
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Shared", views[0].Title)
}
