package routes

import (
	"github.com/X-spec7/coach-mobile-sub000/controllers"
	"github.com/X-spec7/coach-mobile-sub000/middlewares"
	"github.com/X-spec7/coach-mobile-sub000/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func SetupRouter(db *gorm.DB, hub *services.EventHub, logger *zap.Logger) *gin.Engine {
	authSvc := services.NewAuthService(db)
	planSvc := services.NewPlanService(db)
	foodSvc := services.NewFoodService(db)
	scheduleSvc := services.NewScheduleService(db, logger)
	aggSvc := services.NewAggregationService(db)
	consumptionSvc := services.NewConsumptionService(db, hub, logger)
	goalSvc := services.NewGoalService(db)
	entrySvc := services.NewFoodEntryService(db)
	reportSvc := services.NewReportService(db, aggSvc)

	authCtl := controllers.NewAuthController(authSvc)
	planCtl := controllers.NewPlanController(planSvc)
	foodCtl := controllers.NewFoodController(foodSvc)
	appliedCtl := controllers.NewAppliedPlanController(scheduleSvc)
	mealCtl := controllers.NewScheduledMealController(aggSvc)
	consumptionCtl := controllers.NewConsumptionController(consumptionSvc)
	goalCtl := controllers.NewGoalController(goalSvc)
	entryCtl := controllers.NewFoodEntryController(entrySvc)
	statsCtl := controllers.NewStatsController(reportSvc)
	realtimeCtl := controllers.NewRealtimeController(hub)

	r := gin.Default()

	// Public auth routes
	auth := r.Group("/auth")
	{
		auth.POST("/register", authCtl.Register)
		auth.POST("/login", authCtl.Login)
	}

	api := r.Group("/api")
	api.Use(middlewares.AuthMiddleware())
	{
		api.GET("/profile", authCtl.Profile)

		api.POST("/plans", planCtl.Create)
		api.GET("/plans", planCtl.List)
		api.GET("/plans/:id", planCtl.Get)
		api.PATCH("/plans/:id/publish", planCtl.Publish)
		api.POST("/plans/:id/days", planCtl.AddDay)
		api.POST("/days/:id/meal-times", planCtl.AddMealTime)
		api.POST("/meal-times/:id/foods", planCtl.AddFood)
		api.DELETE("/planned-foods/:id", planCtl.RemoveFood)

		api.POST("/foods", foodCtl.Create)
		api.GET("/foods", foodCtl.List)

		api.POST("/applied-plans", appliedCtl.Apply)
		api.GET("/applied-plans", appliedCtl.List)
		api.DELETE("/applied-plans/:id", appliedCtl.Deactivate)

		api.GET("/scheduled-meals", mealCtl.List)
		api.GET("/scheduled-meals/:id", mealCtl.Get)
		api.POST("/scheduled-meals/:id/consumed-foods", consumptionCtl.Log)
		api.POST("/scheduled-meals/:id/foods/:itemID/complete", consumptionCtl.QuickComplete)
		api.DELETE("/scheduled-meals/:id/foods/:itemID/complete", consumptionCtl.QuickUncomplete)
		api.PUT("/consumed-foods/:id", consumptionCtl.Update)
		api.DELETE("/consumed-foods/:id", consumptionCtl.Delete)

		api.PUT("/goals", goalCtl.Upsert)
		api.GET("/goals", goalCtl.Get)

		api.POST("/food-entries", entryCtl.Create)
		api.GET("/food-entries", entryCtl.List)
		api.PUT("/food-entries/:id", entryCtl.Update)
		api.DELETE("/food-entries/:id", entryCtl.Delete)

		api.GET("/stats", statsCtl.Report)

		api.GET("/ws/progress", realtimeCtl.ProgressWS)
	}

	return r
}
