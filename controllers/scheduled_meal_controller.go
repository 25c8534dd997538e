package controllers

import (
	"net/http"
	"time"

	"github.com/X-spec7/coach-mobile-sub000/services"
	"github.com/X-spec7/coach-mobile-sub000/utils"

	"github.com/gin-gonic/gin"
)

type ScheduledMealController struct {
	agg *services.AggregationService
}

func NewScheduledMealController(agg *services.AggregationService) *ScheduledMealController {
	return &ScheduledMealController{agg: agg}
}

func dateWindow(c *gin.Context) (time.Time, time.Time, bool) {
	from, err := time.ParseInLocation("2006-01-02", c.Query("date_from"), time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date_from must be YYYY-MM-DD"})
		return time.Time{}, time.Time{}, false
	}
	to, err := time.ParseInLocation("2006-01-02", c.Query("date_to"), time.Local)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date_to must be YYYY-MM-DD"})
		return time.Time{}, time.Time{}, false
	}
	return from, to, true
}

func (smc *ScheduledMealController) List(c *gin.Context) {
	from, to, ok := dateWindow(c)
	if !ok {
		return
	}
	var completed *bool
	switch c.Query("is_completed") {
	case "":
	case "true":
		v := true
		completed = &v
	case "false":
		v := false
		completed = &v
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "is_completed must be true or false"})
		return
	}

	meals, err := smc.agg.ListScheduledMeals(c.GetUint("userID"), from, to, completed)
	if err != nil {
		c.JSON(utils.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, meals)
}

func (smc *ScheduledMealController) Get(c *gin.Context) {
	mealID, ok := pathID(c, "id")
	if !ok {
		return
	}
	detail, err := smc.agg.GetScheduledMeal(c.GetUint("userID"), mealID)
	if err != nil {
		c.JSON(utils.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, detail)
}
