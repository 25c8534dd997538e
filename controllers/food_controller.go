package controllers

import (
	"net/http"

	"github.com/X-spec7/coach-mobile-sub000/services"
	"github.com/X-spec7/coach-mobile-sub000/utils"

	"github.com/gin-gonic/gin"
)

type FoodController struct {
	foods *services.FoodService
}

func NewFoodController(foods *services.FoodService) *FoodController {
	return &FoodController{foods: foods}
}

func (fc *FoodController) Create(c *gin.Context) {
	var req services.CreateFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	food, err := fc.foods.Create(c.GetUint("userID"), req)
	if err != nil {
		c.JSON(utils.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, food)
}

func (fc *FoodController) List(c *gin.Context) {
	foods, err := fc.foods.List(c.GetUint("userID"))
	if err != nil {
		c.JSON(utils.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, foods)
}
