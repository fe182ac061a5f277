package handler

import (
	"vidprep/internal/dto"
	"vidprep/internal/geometry"
	"vidprep/internal/response"
	"vidprep/internal/session"
	"vidprep/log"
	apperrors "vidprep/pkg/errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h Handler) OpenFolder(c *gin.Context) {
	var req dto.OpenFolderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.CodeInvalidParams, "params error: "+err.Error())
		return
	}

	s, report, err := h.Service.OpenFolder(c.Request.Context(), req.Folder)
	if err != nil {
		log.GetLogger().Error("OpenFolder failed", zap.String("folder", req.Folder), zap.Error(err))
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, dto.OpenFolderResData{Session: s, Report: report})
}

func (h Handler) GetSession(c *gin.Context) {
	folder := c.Query("folder")
	if folder == "" {
		response.Error(c, apperrors.CodeInvalidParams, "folder query parameter is required")
		return
	}

	// copy inside the lock; gin serializes after it is released
	var snapshot *session.Session
	err := h.Service.WithSession(folder, func(s *session.Session) error {
		snapshot = s.Clone()
		return nil
	})
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, snapshot)
}

func (h Handler) SaveSession(c *gin.Context) {
	var req dto.OpenFolderReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.CodeInvalidParams, "params error: "+err.Error())
		return
	}
	if err := h.Service.SaveSession(req.Folder); err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, nil)
}

func (h Handler) AddRange(c *gin.Context) {
	var req dto.AddRangeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.CodeInvalidParams, "params error: "+err.Error())
		return
	}

	var created *session.Range
	err := h.Service.WithSession(req.Folder, func(s *session.Session) error {
		v := s.VideoByPath(req.VideoPath)
		if v == nil {
			return apperrors.WrapWithDetail(apperrors.CodeNotFound,
				"video not in session", req.VideoPath, nil)
		}
		crop, err := resolveCrop(req.Crop, req.PreviewCrop, v)
		if err != nil {
			return err
		}
		r, err := v.AddRangeWithCrop(req.StartFrame, req.DurationFrames, crop)
		if err != nil {
			return err
		}
		created = r.Clone()
		return nil
	})
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, created)
}

func (h Handler) NudgeRange(c *gin.Context) {
	var req dto.NudgeRangeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.CodeInvalidParams, "params error: "+err.Error())
		return
	}

	var nudged *session.Range
	err := h.Service.WithSession(req.Folder, func(s *session.Session) error {
		v := s.VideoByPath(req.VideoPath)
		if v == nil {
			return apperrors.WrapWithDetail(apperrors.CodeNotFound,
				"video not in session", req.VideoPath, nil)
		}
		r := v.RangeByID(req.RangeId)
		if r == nil {
			return apperrors.WrapWithDetail(apperrors.CodeNotFound,
				"range not found", req.RangeId, nil)
		}
		switch req.Edge {
		case "start":
			v.NudgeStart(r, req.Delta)
		case "end":
			v.NudgeEnd(r, req.Delta)
		default:
			return apperrors.WrapWithDetail(apperrors.CodeInvalidParams,
				"edge must be \"start\" or \"end\"", req.Edge, nil)
		}
		nudged = r.Clone()
		return nil
	})
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, nudged)
}

func (h Handler) SetCrop(c *gin.Context) {
	var req dto.SetCropReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.CodeInvalidParams, "params error: "+err.Error())
		return
	}

	var updated *session.Range
	err := h.Service.WithSession(req.Folder, func(s *session.Session) error {
		v := s.VideoByPath(req.VideoPath)
		if v == nil {
			return apperrors.WrapWithDetail(apperrors.CodeNotFound,
				"video not in session", req.VideoPath, nil)
		}
		r := v.RangeByID(req.RangeId)
		if r == nil {
			return apperrors.WrapWithDetail(apperrors.CodeNotFound,
				"range not found", req.RangeId, nil)
		}
		crop, err := resolveCrop(req.Crop, req.PreviewCrop, v)
		if err != nil {
			return err
		}
		r.SetCrop(crop)
		updated = r.Clone()
		return nil
	})
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, updated)
}

func (h Handler) RemoveRange(c *gin.Context) {
	var req dto.RemoveRangeReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.CodeInvalidParams, "params error: "+err.Error())
		return
	}

	err := h.Service.WithSession(req.Folder, func(s *session.Session) error {
		v := s.VideoByPath(req.VideoPath)
		if v == nil {
			return apperrors.WrapWithDetail(apperrors.CodeNotFound,
				"video not in session", req.VideoPath, nil)
		}
		if !v.RemoveRange(req.RangeId) {
			return apperrors.WrapWithDetail(apperrors.CodeNotFound,
				"range not found", req.RangeId, nil)
		}
		return nil
	})
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, nil)
}

func (h Handler) SelectVideo(c *gin.Context) {
	var req dto.SelectVideoReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.CodeInvalidParams, "params error: "+err.Error())
		return
	}

	err := h.Service.WithSession(req.Folder, func(s *session.Session) error {
		v := s.VideoByPath(req.VideoPath)
		if v == nil {
			return apperrors.WrapWithDetail(apperrors.CodeNotFound,
				"video not in session", req.VideoPath, nil)
		}
		v.ExportSelected = req.Selected
		return nil
	})
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, nil)
}

func (h Handler) UpdateExportSettings(c *gin.Context) {
	var req dto.UpdateExportSettingsReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperrors.CodeInvalidParams, "params error: "+err.Error())
		return
	}

	err := h.Service.WithSession(req.Folder, func(s *session.Session) error {
		s.Export = req.Settings
		return nil
	})
	if err != nil {
		response.ErrorResponse(c, err)
		return
	}
	response.Success(c, nil)
}

// resolveCrop picks the crop from the request: source pixels pass through,
// preview coordinates are mapped against the video's native resolution. A
// degenerate preview drag resolves to no crop.
func resolveCrop(crop *geometry.Rect, preview *dto.PreviewCrop, v *session.VideoEntry) (*geometry.Rect, error) {
	if crop != nil && preview != nil {
		return nil, apperrors.New(apperrors.CodeInvalidParams,
			"provide either crop or preview_crop, not both")
	}
	if preview == nil {
		return crop, nil
	}
	mapped, ok := geometry.ToSource(preview.Rect, preview.Preview, v.Resolution)
	if !ok {
		return nil, nil
	}
	return &mapped, nil
}
