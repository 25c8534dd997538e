package models

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/gorm"
)

type PlanSource string

const (
	PlanSourceSelf  PlanSource = "self"
	PlanSourceCoach PlanSource = "coach"
)

// AppliedMealPlan binds a user to a template with concrete recurrence
// parameters. It is never edited in place: deactivation flips IsActive
// and stamps EndedAt, leaving the row as history.
type AppliedMealPlan struct {
	gorm.Model
	UserID       uint       `gorm:"index;not null"`
	MealPlanID   uint       `gorm:"index;not null"`
	MealPlan     MealPlan   `gorm:"foreignKey:MealPlanID"`
	SelectedDays string     `gorm:"size:64;not null"` // comma-joined weekday names
	WeeksCount   int        `gorm:"not null"`
	StartDate    time.Time  `gorm:"not null"`
	IsActive     bool       `gorm:"default:true"`
	Source       PlanSource `gorm:"size:8;not null;default:'self'"`
	EndedAt      *time.Time
}

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekdays converts lowercase weekday names into a deduplicated,
// Sunday-first sorted slice.
func ParseWeekdays(names []string) ([]time.Weekday, error) {
	seen := map[time.Weekday]bool{}
	var out []time.Weekday
	for _, n := range names {
		wd, ok := weekdayNames[strings.ToLower(strings.TrimSpace(n))]
		if !ok {
			return nil, fmt.Errorf("unknown weekday %q", n)
		}
		if !seen[wd] {
			seen[wd] = true
			out = append(out, wd)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out, nil
}

func JoinWeekdays(days []time.Weekday) string {
	names := make([]string, 0, len(days))
	for _, d := range days {
		names = append(names, strings.ToLower(d.String()))
	}
	return strings.Join(names, ",")
}

// Weekdays parses the stored SelectedDays column.
func (a *AppliedMealPlan) Weekdays() []time.Weekday {
	days, _ := ParseWeekdays(strings.Split(a.SelectedDays, ","))
	return days
}

// WindowEnd is the exclusive end of the recurrence window.
func (a *AppliedMealPlan) WindowEnd() time.Time {
	return a.StartDate.AddDate(0, 0, a.WeeksCount*7)
}
