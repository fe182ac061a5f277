package handler

import (
	"net/http"
	"strconv"

	"vidprep/internal/dto"
	"vidprep/internal/response"
	"vidprep/internal/storage"
	"vidprep/log"
	apperrors "vidprep/pkg/errors"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

func (h Handler) StartExport(c *gin.Context) {
	var req dto.StartExportReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.CodeInvalidParams, "params error: "+err.Error())
		return
	}

	batchId, jobCount, err := h.Service.StartExport(req.Folder)
	if err != nil {
		log.GetLogger().Error("StartExport failed", zap.String("folder", req.Folder), zap.Error(err))
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, dto.StartExportResData{BatchId: batchId, JobCount: jobCount})
}

func (h Handler) GetExportStatus(c *gin.Context) {
	batchId := c.Param("batchId")
	status, err := h.Service.ExportStatus(batchId)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, status)
}

func (h Handler) CancelExport(c *gin.Context) {
	batchId := c.Param("batchId")
	if err := h.Service.CancelExport(batchId); err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, nil)
}

func (h Handler) GetExportBatch(c *gin.Context) {
	batch, err := storage.GetBatch(c.Param("batchId"))
	if err != nil {
		response.Error(c, apperrors.CodeNotFound, "batch not found")
		return
	}
	response.Success(c, batch)
}

func (h Handler) GetExportHistory(c *gin.Context) {
	limit := 50
	if l, err := strconv.Atoi(c.Query("limit")); err == nil && l > 0 {
		limit = l
	}
	batches, err := storage.GetBatchHistory(limit)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, batches)
}

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// ExportProgress streams per-job progress events for one batch over a
// websocket until the batch reaches a terminal stage.
func (h Handler) ExportProgress(c *gin.Context) {
	batchId := c.Param("batchId")
	events, off, err := h.Service.SubscribeBatch(batchId)
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	defer off()

	conn, err := wsUpgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.GetLogger().Warn("ExportProgress: upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	for ev := range events {
		if err := conn.WriteJSON(ev); err != nil {
			log.GetLogger().Debug("ExportProgress: client gone", zap.Error(err))
			return
		}
	}

	// terminal snapshot so the client sees the final stage
	if status, err := h.Service.ExportStatus(batchId); err == nil {
		_ = conn.WriteJSON(status)
	}
}
