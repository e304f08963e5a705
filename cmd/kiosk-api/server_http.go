package main

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	config "github.com/foyerhq/foyer/internal/config/kiosk-api"
	"github.com/foyerhq/foyer/internal/httpapi"
	"github.com/foyerhq/foyer/internal/services/kiosk"
)

func buildHTTPServer(cfg *config.Config, logger *zap.Logger, uc *kiosk.Usecase) *http.Server {
	if cfg.App.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery(), httpapi.RequestLogger(logger))

	guard := httpapi.NewOriginGuard(httpapi.OriginConfig{
		PublicURL:  cfg.Security.PublicURL,
		Production: cfg.App.Production(),
	})
	httpapi.NewHandler(logger, uc).Register(router, guard)

	return &http.Server{
		Addr:              cfg.Server.HTTPAddr,
		Handler:           otelhttp.NewHandler(router, "kiosk-api"),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}
}

func serveHTTP(srv *http.Server, logger *zap.Logger) error {
	logger.Info("http listening", zap.String("addr", srv.Addr))
	return srv.ListenAndServe()
}
