package services

import (
	"github.com/X-spec7/coach-mobile-sub000/models"
	"github.com/X-spec7/coach-mobile-sub000/utils"

	"gorm.io/gorm"
)

// FoodService is the catalog bookkeeping for food records. Users can
// create custom and adhoc foods; catalog foods are shared reference
// data.
type FoodService struct {
	db *gorm.DB
}

func NewFoodService(db *gorm.DB) *FoodService {
	return &FoodService{db: db}
}

type CreateFoodRequest struct {
	Name        string            `json:"name"`
	Kind        models.FoodKind   `json:"kind"`
	ServingSize float64           `json:"serving_size"`
	ServingUnit models.AmountUnit `json:"serving_unit"`
	Calories    float64           `json:"calories"`
	Protein     float64           `json:"protein"`
	Carbs       float64           `json:"carbs"`
	Fat         float64           `json:"fat"`
}

func (s *FoodService) Create(userID uint, req CreateFoodRequest) (*models.FoodItem, error) {
	if req.Name == "" {
		return nil, utils.Validationf("name must not be empty")
	}
	kind := req.Kind
	if kind == "" {
		kind = models.FoodKindCustom
	}
	if kind == models.FoodKindCatalog {
		return nil, utils.Validationf("user-created foods must be 'custom' or 'adhoc'")
	}
	if !kind.Valid() {
		return nil, utils.Validationf("unknown food kind %q", kind)
	}
	if req.ServingSize <= 0 {
		return nil, utils.Validationf("serving_size must be > 0")
	}
	if !req.ServingUnit.Valid() {
		return nil, utils.Validationf("unknown unit %q", req.ServingUnit)
	}

	food := models.FoodItem{
		Name:        req.Name,
		Kind:        kind,
		OwnerID:     &userID,
		ServingSize: req.ServingSize,
		ServingUnit: req.ServingUnit,
		Calories:    req.Calories,
		Protein:     req.Protein,
		Carbs:       req.Carbs,
		Fat:         req.Fat,
	}
	if err := s.db.Create(&food).Error; err != nil {
		return nil, err
	}
	return &food, nil
}

// List returns catalog foods plus the user's own custom/adhoc foods.
func (s *FoodService) List(userID uint) ([]models.FoodItem, error) {
	var foods []models.FoodItem
	err := s.db.
		Where("owner_id IS NULL OR owner_id = ?", userID).
		Order("name ASC").
		Find(&foods).Error
	return foods, err
}
