package handler

import (
	"vidprep/config"
	"vidprep/internal/response"
	"vidprep/log"
	apperrors "vidprep/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h Handler) GetConfig(c *gin.Context) {
	response.Success(c, config.Conf)
}

func (h Handler) UpdateConfig(c *gin.Context) {
	var updated config.Config
	if err := c.ShouldBindJSON(&updated); err != nil {
		response.Error(c, apperrors.CodeInvalidParams, "params error: "+err.Error())
		return
	}

	previous := config.Conf
	config.Conf = updated
	if err := config.CheckConfig(); err != nil {
		config.Conf = previous
		response.ErrorResponse(c, err)
		return
	}
	if err := config.SaveConfig(); err != nil {
		log.GetLogger().Error("UpdateConfig: save failed", zap.Error(err))
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, config.Conf)
}
