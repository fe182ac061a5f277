package router

import (
	"vidprep/internal/handler"
	"vidprep/internal/service"

	"github.com/gin-gonic/gin"
)

func SetupRouter(r *gin.Engine, svc *service.Service) {
	api := r.Group("/api")

	hdl := handler.NewHandler(svc)
	{
		api.POST("/session/open", hdl.OpenFolder)
		api.GET("/session", hdl.GetSession)
		api.POST("/session/save", hdl.SaveSession)
		api.POST("/session/video/select", hdl.SelectVideo)
		api.POST("/session/range", hdl.AddRange)
		api.POST("/session/range/nudge", hdl.NudgeRange)
		api.POST("/session/range/crop", hdl.SetCrop)
		api.POST("/session/range/remove", hdl.RemoveRange)
		api.POST("/session/exportSettings", hdl.UpdateExportSettings)

		api.POST("/export", hdl.StartExport)
		api.GET("/export/history", hdl.GetExportHistory)
		api.GET("/export/batch/:batchId", hdl.GetExportStatus)
		api.POST("/export/batch/:batchId/cancel", hdl.CancelExport)
		api.GET("/export/batch/:batchId/report", hdl.GetExportBatch)
		api.GET("/export/batch/:batchId/progress", hdl.ExportProgress)

		api.POST("/fps/convert", hdl.ConvertFps)

		api.GET("/config", hdl.GetConfig)
		api.POST("/config", hdl.UpdateConfig)
	}
}
