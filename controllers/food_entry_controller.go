package controllers

import (
	"net/http"

	"github.com/X-spec7/coach-mobile-sub000/services"
	"github.com/X-spec7/coach-mobile-sub000/utils"

	"github.com/gin-gonic/gin"
)

type FoodEntryController struct {
	entries *services.FoodEntryService
}

func NewFoodEntryController(entries *services.FoodEntryService) *FoodEntryController {
	return &FoodEntryController{entries: entries}
}

func (fec *FoodEntryController) Create(c *gin.Context) {
	var req services.FoodEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entry, err := fec.entries.Create(c.GetUint("userID"), req)
	if err != nil {
		c.JSON(utils.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, entry)
}

func (fec *FoodEntryController) List(c *gin.Context) {
	from, to, ok := dateWindow(c)
	if !ok {
		return
	}
	entries, err := fec.entries.List(c.GetUint("userID"), from, to)
	if err != nil {
		c.JSON(utils.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, entries)
}

func (fec *FoodEntryController) Update(c *gin.Context) {
	entryID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.FoodEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	entry, err := fec.entries.Update(c.GetUint("userID"), entryID, req)
	if err != nil {
		c.JSON(utils.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, entry)
}

func (fec *FoodEntryController) Delete(c *gin.Context) {
	entryID, ok := pathID(c, "id")
	if !ok {
		return
	}
	idemKey := c.GetHeader("Idempotency-Key")
	if err := fec.entries.Delete(c.GetUint("userID"), entryID, idemKey); err != nil {
		c.JSON(utils.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.Status(http.StatusNoContent)
}
