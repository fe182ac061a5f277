package main

import (
	"os"

	"vidprep/config"
	"vidprep/internal/server"
	"vidprep/internal/storage"
	"vidprep/log"

	"go.uber.org/zap"
)

func main() {
	log.InitLogger()
	defer log.GetLogger().Sync()

	if !config.LoadConfig() {
		return
	}

	if err := config.CheckConfig(); err != nil {
		log.GetLogger().Error("invalid configuration", zap.Error(err))
		return
	}

	storage.InitDB()

	// zombie cleanup: batches left running by a previous process
	if count, err := storage.MarkStaleBatches(); err != nil {
		log.GetLogger().Warn("Failed to mark stale batches", zap.Error(err))
	} else if count > 0 {
		log.GetLogger().Info("Marked stale batches as canceled", zap.Int64("count", count))
	}

	if err := server.StartBackend(); err != nil {
		log.GetLogger().Error("backend failed", zap.Error(err))
		os.Exit(1)
	}
}
