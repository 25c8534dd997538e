package controllers

import (
	"net/http"
	"strconv"

	"github.com/X-spec7/coach-mobile-sub000/services"
	"github.com/X-spec7/coach-mobile-sub000/utils"

	"github.com/gin-gonic/gin"
)

type PlanController struct {
	plans *services.PlanService
}

func NewPlanController(plans *services.PlanService) *PlanController {
	return &PlanController{plans: plans}
}

func pathID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}

func (pc *PlanController) Create(c *gin.Context) {
	var req services.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	plan, err := pc.plans.CreatePlan(c.GetUint("userID"), req)
	if err != nil {
		c.JSON(utils.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, plan)
}

func (pc *PlanController) AddDay(c *gin.Context) {
	planID, ok := pathID(c, "id")
	if !ok {
		return
	}
	day, err := pc.plans.AddDay(c.GetUint("userID"), planID)
	if err != nil {
		c.JSON(utils.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, day)
}

func (pc *PlanController) AddMealTime(c *gin.Context) {
	dayID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.AddMealTimeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	mt, err := pc.plans.AddMealTime(c.GetUint("userID"), dayID, req)
	if err != nil {
		c.JSON(utils.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, mt)
}

func (pc *PlanController) AddFood(c *gin.Context) {
	mealTimeID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.AddPlannedFoodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item, err := pc.plans.AddPlannedFood(c.GetUint("userID"), mealTimeID, req)
	if err != nil {
		c.JSON(utils.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (pc *PlanController) RemoveFood(c *gin.Context) {
	itemID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := pc.plans.RemovePlannedFood(c.GetUint("userID"), itemID); err != nil {
		c.JSON(utils.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (pc *PlanController) Publish(c *gin.Context) {
	planID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := pc.plans.Publish(c.GetUint("userID"), planID); err != nil {
		c.JSON(utils.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (pc *PlanController) Get(c *gin.Context) {
	planID, ok := pathID(c, "id")
	if !ok {
		return
	}
	plan, err := pc.plans.GetPlan(c.GetUint("userID"), planID)
	if err != nil {
		c.JSON(utils.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, plan)
}

func (pc *PlanController) List(c *gin.Context) {
	plans, err := pc.plans.ListPlans(c.GetUint("userID"))
	if err != nil {
		c.JSON(utils.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, plans)
}
