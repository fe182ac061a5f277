package server

import (
	"fmt"

	"vidprep/config"
	"vidprep/internal/router"
	"vidprep/internal/service"
	"vidprep/log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StartBackend builds the service, wires the HTTP API, and blocks serving it.
func StartBackend() error {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	svc := service.NewService()
	router.SetupRouter(engine, svc)

	addr := fmt.Sprintf("%s:%d", config.Conf.Server.Host, config.Conf.Server.Port)
	log.GetLogger().Info("Server: listening", zap.String("addr", addr))
	return engine.Run(addr)
}
