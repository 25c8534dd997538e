package services

import (
	"errors"

	"github.com/X-spec7/coach-mobile-sub000/models"
	"github.com/X-spec7/coach-mobile-sub000/utils"

	"gorm.io/gorm"
)

type AuthService struct {
	db *gorm.DB
}

func NewAuthService(db *gorm.DB) *AuthService {
	return &AuthService{db: db}
}

func (s *AuthService) Register(email, password, fullName string) error {
	if email == "" || password == "" {
		return utils.Validationf("email and password are required")
	}
	hashed, err := utils.HashPassword(password)
	if err != nil {
		return err
	}
	user := models.User{Email: email, Password: hashed, FullName: fullName}
	return s.db.Create(&user).Error
}

func (s *AuthService) Authenticate(email, password string) (string, error) {
	var user models.User
	if err := s.db.Where("email = ?", email).First(&user).Error; err != nil {
		return "", errors.New("invalid credentials")
	}
	if !utils.CheckPasswordHash(password, user.Password) {
		return "", errors.New("invalid credentials")
	}
	return utils.GenerateJWT(user.ID, user.Email)
}

func (s *AuthService) GetProfile(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		return nil, utils.AsNotFound(err, "user", userID)
	}
	user.Password = ""
	return &user, nil
}
