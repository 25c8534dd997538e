package services

import (
	"errors"

	"github.com/X-spec7/coach-mobile-sub000/models"
	"github.com/X-spec7/coach-mobile-sub000/utils"

	"gorm.io/gorm"
)

// GoalService is the goal store: per-user daily macro targets. A zero
// macro means no active goal for it.
type GoalService struct {
	db *gorm.DB
}

func NewGoalService(db *gorm.DB) *GoalService {
	return &GoalService{db: db}
}

type UpsertGoalRequest struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
}

func (s *GoalService) Get(userID uint) (*models.NutritionGoal, error) {
	var goal models.NutritionGoal
	err := s.db.Where("user_id = ?", userID).First(&goal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.NutritionGoal{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &goal, nil
}

func (s *GoalService) Upsert(userID uint, req UpsertGoalRequest) (*models.NutritionGoal, error) {
	if req.Calories < 0 || req.Protein < 0 || req.Carbs < 0 || req.Fat < 0 {
		return nil, utils.Validationf("goal values must be >= 0")
	}

	var goal models.NutritionGoal
	err := s.db.Where("user_id = ?", userID).First(&goal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		goal = models.NutritionGoal{
			UserID:   userID,
			Calories: req.Calories,
			Protein:  req.Protein,
			Carbs:    req.Carbs,
			Fat:      req.Fat,
		}
		if err := s.db.Create(&goal).Error; err != nil {
			return nil, err
		}
		return &goal, nil
	}
	if err != nil {
		return nil, err
	}

	goal.Calories = req.Calories
	goal.Protein = req.Protein
	goal.Carbs = req.Carbs
	goal.Fat = req.Fat
	if err := s.db.Save(&goal).Error; err != nil {
		return nil, err
	}
	return &goal, nil
}
