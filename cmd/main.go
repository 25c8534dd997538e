package main

import (
	"github.com/X-spec7/coach-mobile-sub000/config"
	"github.com/X-spec7/coach-mobile-sub000/routes"
	"github.com/X-spec7/coach-mobile-sub000/services"
	"github.com/X-spec7/coach-mobile-sub000/utils"

	"go.uber.org/zap"
)

func main() {
	logger := utils.MustLogger(utils.NewLogger())
	defer logger.Sync()

	cfg := config.Load()
	db, err := config.InitDB(cfg)
	if err != nil {
		logger.Fatal("database init failed", zap.Error(err))
	}

	hub := services.NewEventHub()

	expiry := services.NewExpiryJob(db, logger)
	expiry.Start()
	defer expiry.Stop()

	r := routes.SetupRouter(db, hub, logger)
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Fatal("server exited", zap.Error(err))
	}
}
