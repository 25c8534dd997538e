package services

import (
	"time"

	"github.com/X-spec7/coach-mobile-sub000/models"
	"github.com/X-spec7/coach-mobile-sub000/utils"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FoodEntryService manages manual (non-scheduled) food log entries.
// These always count at their logged value in reports, independent of
// any plan.
type FoodEntryService struct {
	db *gorm.DB
}

func NewFoodEntryService(db *gorm.DB) *FoodEntryService {
	return &FoodEntryService{db: db}
}

type FoodEntryRequest struct {
	Date       string            `json:"date"` // YYYY-MM-DD
	MealType   models.MealType   `json:"meal_type"`
	FoodItemID *uint             `json:"food_item_id"`
	Name       string            `json:"name"`
	Amount     float64           `json:"amount"`
	Unit       models.AmountUnit `json:"unit"`
	Calories   float64           `json:"calories"`
	Protein    float64           `json:"protein"`
	Carbs      float64           `json:"carbs"`
	Fat        float64           `json:"fat"`
}

func (s *FoodEntryService) Create(userID uint, req FoodEntryRequest) (*models.FoodEntry, error) {
	entry, err := s.buildEntry(userID, req)
	if err != nil {
		return nil, err
	}
	if err := s.db.Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *FoodEntryService) List(userID uint, from, to time.Time) ([]models.FoodEntry, error) {
	var entries []models.FoodEntry
	err := s.db.
		Where("user_id = ? AND date >= ? AND date < ?", userID, dayStart(from), dayStart(to).AddDate(0, 0, 1)).
		Order("date ASC, id ASC").
		Find(&entries).Error
	return entries, err
}

func (s *FoodEntryService) Update(userID, entryID uint, req FoodEntryRequest) (*models.FoodEntry, error) {
	var existing models.FoodEntry
	err := s.db.Where("id = ? AND user_id = ?", entryID, userID).First(&existing).Error
	if err != nil {
		return nil, utils.AsNotFound(err, "food entry", entryID)
	}

	entry, err := s.buildEntry(userID, req)
	if err != nil {
		return nil, err
	}
	entry.ID = existing.ID
	entry.CreatedAt = existing.CreatedAt
	if err := s.db.Save(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}

// Delete is idempotency-keyed like consumption deletes: replays and
// already-deleted entries report success.
func (s *FoodEntryService) Delete(userID, entryID uint, idemKey string) error {
	if idemKey == "" {
		idemKey = uuid.NewString()
	}
	var receipt models.DeleteReceipt
	if err := s.db.Where("user_id = ? AND idempotency_key = ?", userID, idemKey).First(&receipt).Error; err == nil {
		return nil
	}

	var entry models.FoodEntry
	err := s.db.Where("id = ? AND user_id = ?", entryID, userID).First(&entry).Error
	if err != nil {
		err = utils.AsNotFound(err, "food entry", entryID)
		if utils.IsNotFound(err) {
			return s.db.Create(&models.DeleteReceipt{
				UserID: userID, IdempotencyKey: idemKey, Resource: "food_entry", RecordID: entryID,
			}).Error
		}
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Delete(&entry).Error; err != nil {
			return err
		}
		return tx.Create(&models.DeleteReceipt{
			UserID: userID, IdempotencyKey: idemKey, Resource: "food_entry", RecordID: entryID,
		}).Error
	})
}

func (s *FoodEntryService) buildEntry(userID uint, req FoodEntryRequest) (*models.FoodEntry, error) {
	date, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
	if err != nil {
		return nil, utils.Validationf("date must be YYYY-MM-DD")
	}
	if !req.MealType.Valid() {
		return nil, utils.Validationf("unknown meal type %q", req.MealType)
	}
	if req.Amount < 0 {
		return nil, utils.Validationf("amount must be >= 0")
	}
	if !req.Unit.Valid() {
		return nil, utils.Validationf("unknown unit %q", req.Unit)
	}

	entry := &models.FoodEntry{
		UserID:   userID,
		Date:     date,
		MealType: req.MealType,
		Name:     req.Name,
		Amount:   req.Amount,
		Unit:     req.Unit,
		Calories: req.Calories,
		Protein:  req.Protein,
		Carbs:    req.Carbs,
		Fat:      req.Fat,
	}

	if req.FoodItemID != nil {
		var food models.FoodItem
		if err := s.db.First(&food, *req.FoodItemID).Error; err != nil {
			return nil, utils.AsNotFound(err, "food item", *req.FoodItemID)
		}
		if food.OwnerID != nil && *food.OwnerID != userID {
			return nil, &utils.NotFoundError{Resource: "food item", ID: *req.FoodItemID}
		}
		nut := food.NutritionFor(req.Amount)
		entry.FoodItemID = &food.ID
		entry.Calories = nut.Calories
		entry.Protein = nut.Protein
		entry.Carbs = nut.Carbs
		entry.Fat = nut.Fat
		if entry.Name == "" {
			entry.Name = food.Name
		}
	} else if entry.Name == "" {
		return nil, utils.Validationf("name is required for free-form entries")
	}

	return entry, nil
}
