package controllers

import (
	"net/http"

	"github.com/X-spec7/coach-mobile-sub000/services"
	"github.com/X-spec7/coach-mobile-sub000/utils"

	"github.com/gin-gonic/gin"
)

type ConsumptionController struct {
	consumption *services.ConsumptionService
}

func NewConsumptionController(consumption *services.ConsumptionService) *ConsumptionController {
	return &ConsumptionController{consumption: consumption}
}

func (cc *ConsumptionController) Log(c *gin.Context) {
	mealID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.LogConsumptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view, err := cc.consumption.Log(c.GetUint("userID"), mealID, req)
	if err != nil {
		c.JSON(utils.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (cc *ConsumptionController) Update(c *gin.Context) {
	consumedID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.UpdateConsumptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	view, err := cc.consumption.Update(c.GetUint("userID"), consumedID, req)
	if err != nil {
		c.JSON(utils.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, view)
}

func (cc *ConsumptionController) Delete(c *gin.Context) {
	consumedID, ok := pathID(c, "id")
	if !ok {
		return
	}
	idemKey := c.GetHeader("Idempotency-Key")
	if err := cc.consumption.Delete(c.GetUint("userID"), consumedID, idemKey); err != nil {
		c.JSON(utils.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}

func (cc *ConsumptionController) QuickComplete(c *gin.Context) {
	mealID, ok := pathID(c, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "itemID")
	if !ok {
		return
	}
	view, err := cc.consumption.QuickComplete(c.GetUint("userID"), mealID, itemID)
	if err != nil {
		c.JSON(utils.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, view)
}

func (cc *ConsumptionController) QuickUncomplete(c *gin.Context) {
	mealID, ok := pathID(c, "id")
	if !ok {
		return
	}
	itemID, ok := pathID(c, "itemID")
	if !ok {
		return
	}
	if err := cc.consumption.QuickUncomplete(c.GetUint("userID"), mealID, itemID); err != nil {
		c.JSON(utils.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
