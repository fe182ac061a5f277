package handler

import (
	"vidprep/internal/dto"
	"vidprep/internal/response"
	"vidprep/log"
	apperrors "vidprep/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ConvertFps runs the whole batch synchronously; folders are typically small
// and the client polls nothing, it just waits for the report.
func (h Handler) ConvertFps(c *gin.Context) {
	var req dto.ConvertFpsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.CodeInvalidParams, "params error: "+err.Error())
		return
	}

	report, err := h.Service.ConvertFps(c.Request.Context(), req.Folder, req.Subfolder, req.TargetFps)
	if err != nil {
		log.GetLogger().Error("ConvertFps failed", zap.String("folder", req.Folder), zap.Error(err))
		response.ErrorResponse(c, err)
		return
	}

	data := dto.ConvertFpsResData{OutputFolder: report.OutDir}
	data.Succeeded, data.Failed = report.Counts()
	for _, res := range report.Results {
		if res.Err == nil {
			continue
		}
		data.Failures = append(data.Failures, struct {
			InputPath string `json:"input_path"`
			Reason    string `json:"reason"`
		}{InputPath: res.InputPath, Reason: res.Err.Error()})
	}
	response.Success(c, data)
}
