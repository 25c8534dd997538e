package services

import (
	"testing"
	"time"

	"github.com/X-spec7/coach-mobile-sub000/models"
	"github.com/X-spec7/coach-mobile-sub000/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildDay constructs an in-memory plan day with n meal times whose
// ids start at base.
func buildDay(position int, base uint, mealTimes int) models.PlanDay {
	day := models.PlanDay{Position: position}
	for i := 0; i < mealTimes; i++ {
		mt := models.MealTime{Name: "Meal"}
		mt.ID = base + uint(i)
		day.MealTimes = append(day.MealTimes, mt)
	}
	return day
}

func TestExpandScheduleCyclesDayPositions(t *testing.T) {
	// 2 template days: day1 has 2 meal times, day2 has 3
	days := []models.PlanDay{
		buildDay(1, 10, 2),
		buildDay(2, 20, 3),
	}
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.Local) // a Monday
	weekdays := []time.Weekday{time.Monday, time.Wednesday}

	slots := ExpandSchedule(days, weekdays, 2, start)

	// 4 matching dates, assigned day1, day2, day1, day2 -> 2+3+2+3
	require.Len(t, slots, 10)

	wantDates := []time.Time{
		time.Date(2026, 1, 5, 0, 0, 0, 0, time.Local),
		time.Date(2026, 1, 7, 0, 0, 0, 0, time.Local),
		time.Date(2026, 1, 12, 0, 0, 0, 0, time.Local),
		time.Date(2026, 1, 14, 0, 0, 0, 0, time.Local),
	}
	wantMealTimes := [][]uint{{10, 11}, {20, 21, 22}, {10, 11}, {20, 21, 22}}
	wantWeeks := []int{1, 1, 2, 2}

	i := 0
	for d, date := range wantDates {
		for _, mtID := range wantMealTimes[d] {
			assert.True(t, slots[i].Date.Equal(date), "slot %d date", i)
			assert.Equal(t, mtID, slots[i].MealTimeID, "slot %d meal time", i)
			assert.Equal(t, wantWeeks[d], slots[i].WeekNumber, "slot %d week", i)
			i++
		}
	}
}

func TestExpandScheduleDatesAscendingWithinWindow(t *testing.T) {
	days := []models.PlanDay{buildDay(1, 1, 1)}
	start := time.Date(2026, 3, 4, 0, 0, 0, 0, time.Local) // a Wednesday
	weekdays := []time.Weekday{time.Friday, time.Tuesday}

	slots := ExpandSchedule(days, weekdays, 3, start)
	require.Len(t, slots, 6)

	end := start.AddDate(0, 0, 21)
	var prev time.Time
	for _, s := range slots {
		assert.False(t, s.Date.Before(start))
		assert.True(t, s.Date.Before(end))
		assert.Contains(t, weekdays, s.Date.Weekday())
		assert.True(t, prev.Before(s.Date))
		prev = s.Date
	}
}

func TestExpandScheduleZeroDaysIsNoop(t *testing.T) {
	slots := ExpandSchedule(nil, []time.Weekday{time.Monday}, 4,
		time.Date(2026, 1, 5, 0, 0, 0, 0, time.Local))
	assert.Empty(t, slots)
}

func TestExpandScheduleUnsortedDayPositions(t *testing.T) {
	// days supplied out of order still cycle day1, day2
	days := []models.PlanDay{
		buildDay(2, 20, 1),
		buildDay(1, 10, 1),
	}
	start := time.Date(2026, 1, 5, 0, 0, 0, 0, time.Local)
	slots := ExpandSchedule(days, []time.Weekday{time.Monday}, 2, start)
	require.Len(t, slots, 2)
	assert.Equal(t, uint(10), slots[0].MealTimeID)
	assert.Equal(t, uint(20), slots[1].MealTimeID)
}

func TestValidateRecurrence(t *testing.T) {
	today := time.Date(2026, 6, 1, 0, 0, 0, 0, time.Local)
	all := []time.Weekday{time.Monday}

	tests := []struct {
		name     string
		weekdays []time.Weekday
		weeks    int
		start    time.Time
		wantErr  bool
	}{
		{"valid", all, 1, today, false},
		{"valid max weeks", all, 52, today.AddDate(0, 0, 3), false},
		{"zero weeks", all, 0, today, true},
		{"too many weeks", all, 53, today, true},
		{"empty weekday set", nil, 4, today, true},
		{"start in the past", all, 4, today.AddDate(0, 0, -1), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRecurrence(tt.weekdays, tt.weeks, tt.start, today)
			if tt.wantErr {
				var ve *utils.ValidationError
				require.ErrorAs(t, err, &ve)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestApplyPlanCreatesScheduledMeals(t *testing.T) {
	db := newTestDB(t)
	svc := NewScheduleService(db, nil)
	user := seedUser(t, db)
	food := seedFood(t, db, "Oats", 380, 13, 68, 7)

	plan := seedPlan(t, db, user.ID)
	day := seedDay(t, db, plan, 1)
	mt := seedMealTime(t, db, day, "Breakfast")
	seedPlannedFood(t, db, mt, food, 80)

	view, err := svc.ApplyPlan(user.ID, ApplyPlanRequest{
		MealPlanID:   plan.ID,
		SelectedDays: []string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"},
		WeeksCount:   2,
		StartDate:    time.Now().Format("2006-01-02"),
	})
	require.NoError(t, err)
	assert.Equal(t, 14, view.ScheduledMealsCount)
	assert.True(t, view.IsActive)
	assert.Equal(t, models.PlanSourceSelf, view.Source)

	var count int64
	require.NoError(t, db.Model(&models.ScheduledMeal{}).
		Where("user_id = ? AND is_active = ?", user.ID, true).Count(&count).Error)
	assert.EqualValues(t, 14, count)
}

func TestApplyPlanValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewScheduleService(db, nil)
	user := seedUser(t, db)
	plan := seedPlan(t, db, user.ID)

	base := ApplyPlanRequest{
		MealPlanID:   plan.ID,
		SelectedDays: []string{"monday"},
		WeeksCount:   1,
		StartDate:    time.Now().Format("2006-01-02"),
	}

	tests := []struct {
		name   string
		mutate func(*ApplyPlanRequest)
	}{
		{"weeks below range", func(r *ApplyPlanRequest) { r.WeeksCount = 0 }},
		{"weeks above range", func(r *ApplyPlanRequest) { r.WeeksCount = 53 }},
		{"empty weekday set", func(r *ApplyPlanRequest) { r.SelectedDays = nil }},
		{"unknown weekday", func(r *ApplyPlanRequest) { r.SelectedDays = []string{"someday"} }},
		{"past start", func(r *ApplyPlanRequest) {
			r.StartDate = time.Now().AddDate(0, 0, -1).Format("2006-01-02")
		}},
		{"bad date format", func(r *ApplyPlanRequest) { r.StartDate = "05-01-2026" }},
		{"bad source", func(r *ApplyPlanRequest) { r.Source = "friend" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			_, err := svc.ApplyPlan(user.ID, req)
			var ve *utils.ValidationError
			require.ErrorAs(t, err, &ve)
		})
	}

	// nothing was written by the rejected requests
	var count int64
	require.NoError(t, db.Model(&models.AppliedMealPlan{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestApplyPlanWithNoDaysSucceedsEmpty(t *testing.T) {
	db := newTestDB(t)
	svc := NewScheduleService(db, nil)
	user := seedUser(t, db)
	plan := seedPlan(t, db, user.ID)

	view, err := svc.ApplyPlan(user.ID, ApplyPlanRequest{
		MealPlanID:   plan.ID,
		SelectedDays: []string{"monday", "friday"},
		WeeksCount:   4,
		StartDate:    time.Now().Format("2006-01-02"),
	})
	require.NoError(t, err)
	assert.Zero(t, view.ScheduledMealsCount)
}

func TestDeactivatePreservesHistory(t *testing.T) {
	db := newTestDB(t)
	svc := NewScheduleService(db, nil)
	agg := NewAggregationService(db)
	user := seedUser(t, db)
	food := seedFood(t, db, "Rice", 360, 7, 79, 1)

	plan := seedPlan(t, db, user.ID)
	day := seedDay(t, db, plan, 1)
	mt := seedMealTime(t, db, day, "Lunch")
	seedPlannedFood(t, db, mt, food, 150)

	meals := applyToday(t, db, svc, user.ID, plan.ID)
	require.Len(t, meals, 7)

	// pretend the first occurrence already happened yesterday
	yesterday := time.Now().AddDate(0, 0, -1)
	require.NoError(t, db.Model(&meals[0]).Update("date", yesterday).Error)

	var applied models.AppliedMealPlan
	require.NoError(t, db.Where("user_id = ?", user.ID).First(&applied).Error)
	require.NoError(t, svc.DeactivatePlan(user.ID, applied.ID))

	require.NoError(t, db.First(&applied, applied.ID).Error)
	assert.False(t, applied.IsActive)
	assert.NotNil(t, applied.EndedAt)

	// future occurrences are gone from the active window
	today := time.Now()
	upcoming, err := agg.ListScheduledMeals(user.ID, today, today.AddDate(0, 0, 7), nil)
	require.NoError(t, err)
	assert.Empty(t, upcoming)

	// the past occurrence is kept as history
	history, err := agg.ListScheduledMeals(user.ID, yesterday, yesterday, nil)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	// deactivating again is a no-op success
	require.NoError(t, svc.DeactivatePlan(user.ID, applied.ID))
}

func TestApplyPlanNotFoundForForeignPrivatePlan(t *testing.T) {
	db := newTestDB(t)
	svc := NewScheduleService(db, nil)
	owner := seedUser(t, db)
	other := seedUser(t, db)

	plan := seedPlan(t, db, owner.ID)
	require.NoError(t, db.Model(plan).Update("visibility", models.PlanVisibilityPrivate).Error)

	_, err := svc.ApplyPlan(other.ID, ApplyPlanRequest{
		MealPlanID:   plan.ID,
		SelectedDays: []string{"monday"},
		WeeksCount:   1,
		StartDate:    time.Now().Format("2006-01-02"),
	})
	var nf *utils.NotFoundError
	require.ErrorAs(t, err, &nf)
}

func TestListAppliedPlansPropagatesCountErrors(t *testing.T) {
	db := newTestDB(t)
	svc := NewScheduleService(db, nil)
	user := seedUser(t, db)
	plan := seedPlan(t, db, user.ID)

	require.NoError(t, db.Create(&models.AppliedMealPlan{
		UserID:       user.ID,
		MealPlanID:   plan.ID,
		SelectedDays: "monday",
		WeeksCount:   1,
		StartDate:    time.Now(),
		IsActive:     true,
		Source:       models.PlanSourceSelf,
	}).Error)

	require.NoError(t, db.Migrator().DropTable(&models.ScheduledMeal{}))

	_, err := svc.ListAppliedPlans(user.ID)
	require.Error(t, err)
}

func TestExpiryJobDeactivatesElapsedPlans(t *testing.T) {
	db := newTestDB(t)
	user := seedUser(t, db)
	plan := seedPlan(t, db, user.ID)

	elapsed := models.AppliedMealPlan{
		UserID:       user.ID,
		MealPlanID:   plan.ID,
		SelectedDays: "monday",
		WeeksCount:   1,
		StartDate:    time.Now().AddDate(0, 0, -14),
		IsActive:     true,
		Source:       models.PlanSourceSelf,
	}
	require.NoError(t, db.Create(&elapsed).Error)

	running := models.AppliedMealPlan{
		UserID:       user.ID,
		MealPlanID:   plan.ID,
		SelectedDays: "monday",
		WeeksCount:   4,
		StartDate:    time.Now().AddDate(0, 0, -7),
		IsActive:     true,
		Source:       models.PlanSourceSelf,
	}
	require.NoError(t, db.Create(&running).Error)

	NewExpiryJob(db, nil).Run()

	check := func(id uint) bool {
		var p models.AppliedMealPlan
		require.NoError(t, db.First(&p, id).Error)
		return p.IsActive
	}
	assert.False(t, check(elapsed.ID))
	assert.True(t, check(running.ID))
}
