package controllers

import (
	"net/http"

	"github.com/X-spec7/coach-mobile-sub000/services"
	"github.com/X-spec7/coach-mobile-sub000/utils"

	"github.com/gin-gonic/gin"
)

type StatsController struct {
	reports *services.ReportService
}

func NewStatsController(reports *services.ReportService) *StatsController {
	return &StatsController{reports: reports}
}

func (sc *StatsController) Report(c *gin.Context) {
	from, to, ok := dateWindow(c)
	if !ok {
		return
	}
	report, err := sc.reports.Report(c.GetUint("userID"), from, to)
	if err != nil {
		c.JSON(utils.HTTPStatus(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}
