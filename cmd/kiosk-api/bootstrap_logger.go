package main

import (
	config "github.com/foyerhq/foyer/internal/config/kiosk-api"
	"github.com/foyerhq/foyer/internal/obs"
	"go.uber.org/zap"
)

func initLogger(cfg *config.Config) (*zap.Logger, error) {
	return obs.NewLogger(cfg.AsLoggerConfig())
}
