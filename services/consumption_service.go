package services

import (
	"errors"

	"github.com/X-spec7/coach-mobile-sub000/models"
	"github.com/X-spec7/coach-mobile-sub000/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ConsumptionService records what was actually eaten against the
// planned items of a scheduled meal. Every mutation runs in one
// transaction, recomputes the owning meal's completion flag and
// returns the re-read aggregate so callers never display stale math.
type ConsumptionService struct {
	db  *gorm.DB
	hub *EventHub
	log *zap.Logger
}

func NewConsumptionService(db *gorm.DB, hub *EventHub, log *zap.Logger) *ConsumptionService {
	if log == nil {
		log = zap.NewNop()
	}
	return &ConsumptionService{db: db, hub: hub, log: log}
}

type LogConsumptionRequest struct {
	MealPlanFoodItemID uint              `json:"meal_plan_food_item_id"`
	ConsumedAmount     float64           `json:"consumed_amount"`
	ConsumedUnit       models.AmountUnit `json:"consumed_unit"`
	Notes              string            `json:"notes"`
}

type UpdateConsumptionRequest struct {
	ConsumedAmount *float64           `json:"consumed_amount"`
	ConsumedUnit   *models.AmountUnit `json:"consumed_unit"`
	Notes          *string            `json:"notes"`
}

// Log upserts the consumption record for (scheduled meal, planned
// item): a second log against an already-logged item updates it in
// place rather than inserting a duplicate.
func (s *ConsumptionService) Log(userID, scheduledMealID uint, req LogConsumptionRequest) (*ConsumedFoodView, error) {
	if req.ConsumedAmount < 0 {
		return nil, utils.Validationf("consumed_amount must be >= 0")
	}
	if !req.ConsumedUnit.Valid() {
		return nil, utils.Validationf("unknown unit %q", req.ConsumedUnit)
	}

	meal, err := s.loadMeal(userID, scheduledMealID)
	if err != nil {
		return nil, err
	}
	planned := findPlannedItem(meal, req.MealPlanFoodItemID)
	if planned == nil {
		return nil, utils.Mismatchf("planned food item %d does not belong to scheduled meal %d",
			req.MealPlanFoodItemID, scheduledMealID)
	}
	if req.ConsumedUnit != planned.Unit {
		// accepted, but the completion ratio compares raw numbers
		s.log.Warn("consumed unit differs from planned unit",
			zap.Uint("planned_food_item_id", planned.ID),
			zap.String("planned_unit", string(planned.Unit)),
			zap.String("consumed_unit", string(req.ConsumedUnit)))
	}

	var record models.ConsumedFood
	err = s.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Where("scheduled_meal_id = ? AND planned_food_item_id = ?", meal.ID, planned.ID).
			First(&record).Error
		switch {
		case err == nil:
			record.Amount = req.ConsumedAmount
			record.Unit = req.ConsumedUnit
			record.Notes = req.Notes
			if err := tx.Save(&record).Error; err != nil {
				return err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			record = models.ConsumedFood{
				ScheduledMealID:   meal.ID,
				PlannedFoodItemID: planned.ID,
				Amount:            req.ConsumedAmount,
				Unit:              req.ConsumedUnit,
				Notes:             req.Notes,
			}
			if err := tx.Create(&record).Error; err != nil {
				return err
			}
		default:
			return err
		}
		return s.recomputeCompletion(tx, meal.ID, userID)
	})
	if err != nil {
		return nil, err
	}

	view := consumedView(&record, planned)
	return &view, nil
}

// Update edits an existing consumption record. Only the provided
// fields change.
func (s *ConsumptionService) Update(userID, consumedID uint, req UpdateConsumptionRequest) (*ConsumedFoodView, error) {
	if req.ConsumedAmount != nil && *req.ConsumedAmount < 0 {
		return nil, utils.Validationf("consumed_amount must be >= 0")
	}
	if req.ConsumedUnit != nil && !req.ConsumedUnit.Valid() {
		return nil, utils.Validationf("unknown unit %q", *req.ConsumedUnit)
	}

	record, meal, err := s.loadConsumed(userID, consumedID)
	if err != nil {
		return nil, err
	}
	planned := findPlannedItem(meal, record.PlannedFoodItemID)
	if planned == nil {
		return nil, utils.Mismatchf("planned food item %d no longer belongs to scheduled meal %d",
			record.PlannedFoodItemID, meal.ID)
	}

	if req.ConsumedAmount != nil {
		record.Amount = *req.ConsumedAmount
	}
	if req.ConsumedUnit != nil {
		record.Unit = *req.ConsumedUnit
	}
	if req.Notes != nil {
		record.Notes = *req.Notes
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(record).Error; err != nil {
			return err
		}
		return s.recomputeCompletion(tx, meal.ID, userID)
	})
	if err != nil {
		return nil, err
	}

	view := consumedView(record, planned)
	return &view, nil
}

// Delete removes a consumption record, resetting that item's
// contribution to zero. Deletes are keyed by an idempotency key: a
// replay with a known key, or a delete of an already-gone record, is
// reported as success because the operation is idempotent.
func (s *ConsumptionService) Delete(userID, consumedID uint, idemKey string) error {
	if idemKey == "" {
		idemKey = uuid.NewString()
	}

	var receipt models.DeleteReceipt
	err := s.db.Where("user_id = ? AND idempotency_key = ?", userID, idemKey).First(&receipt).Error
	if err == nil {
		s.log.Info("delete replayed, idempotency key already processed",
			zap.String("key", idemKey), zap.Uint("record_id", receipt.RecordID))
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	record, meal, err := s.loadConsumed(userID, consumedID)
	if utils.IsNotFound(err) {
		// already deleted; record the key so a replay stays cheap
		return s.db.Create(&models.DeleteReceipt{
			UserID: userID, IdempotencyKey: idemKey, Resource: "consumed_food", RecordID: consumedID,
		}).Error
	}
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Delete(record).Error; err != nil {
			return err
		}
		if err := tx.Create(&models.DeleteReceipt{
			UserID: userID, IdempotencyKey: idemKey, Resource: "consumed_food", RecordID: consumedID,
		}).Error; err != nil {
			return err
		}
		return s.recomputeCompletion(tx, meal.ID, userID)
	})
}

// QuickComplete logs consumption equal to the planned amount and unit
// in one call, assuming full adherence.
func (s *ConsumptionService) QuickComplete(userID, scheduledMealID, plannedItemID uint) (*ConsumedFoodView, error) {
	meal, err := s.loadMeal(userID, scheduledMealID)
	if err != nil {
		return nil, err
	}
	planned := findPlannedItem(meal, plannedItemID)
	if planned == nil {
		return nil, utils.Mismatchf("planned food item %d does not belong to scheduled meal %d",
			plannedItemID, scheduledMealID)
	}
	return s.Log(userID, scheduledMealID, LogConsumptionRequest{
		MealPlanFoodItemID: planned.ID,
		ConsumedAmount:     planned.Amount,
		ConsumedUnit:       planned.Unit,
	})
}

// QuickUncomplete deletes the consumption record for the pair, if any.
func (s *ConsumptionService) QuickUncomplete(userID, scheduledMealID, plannedItemID uint) error {
	var record models.ConsumedFood
	err := s.db.
		Joins("JOIN scheduled_meals ON scheduled_meals.id = consumed_foods.scheduled_meal_id").
		Where("consumed_foods.scheduled_meal_id = ? AND consumed_foods.planned_food_item_id = ? AND scheduled_meals.user_id = ?",
			scheduledMealID, plannedItemID, userID).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.Delete(userID, record.ID, "")
}

// recomputeCompletion re-derives is_completed from the children and
// persists it when it changed, emitting a realtime event on the
// transition.
func (s *ConsumptionService) recomputeCompletion(tx *gorm.DB, mealID, userID uint) error {
	var meal models.ScheduledMeal
	err := tx.
		Preload("MealTime.Foods.Food").
		Preload("ConsumedFoods").
		First(&meal, mealID).Error
	if err != nil {
		return err
	}
	progress := ComputeMealProgress(&meal)
	if progress.IsCompleted == meal.IsCompleted {
		return nil
	}
	if err := tx.Model(&meal).Update("is_completed", progress.IsCompleted).Error; err != nil {
		return err
	}
	if s.hub != nil {
		kind := "meal.completed"
		if !progress.IsCompleted {
			kind = "meal.uncompleted"
		}
		s.hub.Broadcast(userID, ProgressEvent{
			Kind:                 kind,
			ScheduledMealID:      meal.ID,
			Date:                 meal.Date.Format("2006-01-02"),
			CompletionPercentage: progress.CompletionPercentage,
		})
	}
	return nil
}

func (s *ConsumptionService) loadMeal(userID, mealID uint) (*models.ScheduledMeal, error) {
	var meal models.ScheduledMeal
	err := s.db.
		Preload("MealTime.Foods.Food").
		Preload("ConsumedFoods").
		Where("id = ? AND user_id = ?", mealID, userID).
		First(&meal).Error
	if err != nil {
		return nil, utils.AsNotFound(err, "scheduled meal", mealID)
	}
	return &meal, nil
}

func (s *ConsumptionService) loadConsumed(userID, consumedID uint) (*models.ConsumedFood, *models.ScheduledMeal, error) {
	var record models.ConsumedFood
	err := s.db.First(&record, consumedID).Error
	if err != nil {
		return nil, nil, utils.AsNotFound(err, "consumed food", consumedID)
	}
	meal, err := s.loadMeal(userID, record.ScheduledMealID)
	if err != nil {
		return nil, nil, err
	}
	return &record, meal, nil
}

func findPlannedItem(meal *models.ScheduledMeal, plannedItemID uint) *models.PlannedFoodItem {
	for i := range meal.MealTime.Foods {
		if meal.MealTime.Foods[i].ID == plannedItemID {
			return &meal.MealTime.Foods[i]
		}
	}
	return nil
}
