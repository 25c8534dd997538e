package services

import (
	"time"

	"github.com/X-spec7/coach-mobile-sub000/models"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ExpiryJob deactivates applied plans whose recurrence window has
// fully elapsed, so expired schedules stop showing up as active
// without a user action.
type ExpiryJob struct {
	db   *gorm.DB
	cron *cron.Cron
	log  *zap.Logger
}

func NewExpiryJob(db *gorm.DB, log *zap.Logger) *ExpiryJob {
	if log == nil {
		log = zap.NewNop()
	}
	return &ExpiryJob{db: db, cron: cron.New(), log: log}
}

// Start schedules the nightly sweep shortly after midnight.
func (j *ExpiryJob) Start() {
	if _, err := j.cron.AddFunc("15 0 * * *", j.Run); err != nil {
		j.log.Error("failed to schedule plan expiry sweep", zap.Error(err))
		return
	}
	j.cron.Start()
	j.log.Info("plan expiry sweep scheduled")
}

func (j *ExpiryJob) Stop() {
	j.cron.Stop()
}

// Run sweeps once. Exported so a deployment can trigger it manually.
func (j *ExpiryJob) Run() {
	today := dayStart(time.Now())

	var plans []models.AppliedMealPlan
	if err := j.db.Where("is_active = ?", true).Find(&plans).Error; err != nil {
		j.log.Error("plan expiry sweep query failed", zap.Error(err))
		return
	}

	expired := 0
	for i := range plans {
		p := &plans[i]
		if p.WindowEnd().After(today) {
			continue
		}
		now := time.Now()
		err := j.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Model(p).
				Updates(map[string]any{"is_active": false, "ended_at": now}).Error; err != nil {
				return err
			}
			return tx.Model(&models.ScheduledMeal{}).
				Where("applied_plan_id = ? AND date >= ?", p.ID, today).
				Update("is_active", false).Error
		})
		if err != nil {
			j.log.Error("failed to expire applied plan", zap.Uint("applied_plan_id", p.ID), zap.Error(err))
			continue
		}
		expired++
	}
	if expired > 0 {
		j.log.Info("expired applied plans", zap.Int("count", expired))
	}
}
