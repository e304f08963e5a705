package main

import (
	"context"

	config "github.com/foyerhq/foyer/internal/config/kiosk-api"
	pg "github.com/foyerhq/foyer/internal/repository/postgres"
)

func initDB(ctx context.Context, cfg *config.Config) (*pg.DB, error) {
	return pg.NewDB(ctx, cfg.DB)
}
