package controllers

import (
	"net/http"

	"github.com/X-spec7/coach-mobile-sub000/services"
	"github.com/X-spec7/coach-mobile-sub000/utils"

	"github.com/gin-gonic/gin"
)

type AppliedPlanController struct {
	schedule *services.ScheduleService
}

func NewAppliedPlanController(schedule *services.ScheduleService) *AppliedPlanController {
	return &AppliedPlanController{schedule: schedule}
}

func (apc *AppliedPlanController) Apply(c *gin.Context) {
	var req services.ApplyPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	applied, err := apc.schedule.ApplyPlan(c.GetUint("userID"), req)
	if err != nil {
		c.JSON(utils.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"applied_plan": applied})
}

func (apc *AppliedPlanController) Deactivate(c *gin.Context) {
	appliedID, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := apc.schedule.DeactivatePlan(c.GetUint("userID"), appliedID); err != nil {
		c.JSON(utils.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (apc *AppliedPlanController) List(c *gin.Context) {
	plans, err := apc.schedule.ListAppliedPlans(c.GetUint("userID"))
	if err != nil {
		c.JSON(utils.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, plans)
}
