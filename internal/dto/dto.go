package dto

import (
	"vidprep/internal/geometry"
	"vidprep/internal/session"
)

type OpenFolderReq struct {
	Folder string `json:"folder" binding:"required"`
}

type OpenFolderResData struct {
	Session *session.Session   `json:"session"`
	Report  session.ScanReport `json:"scan_report"`
}

// PreviewCrop carries a crop drawn on a scaled preview surface; the server
// maps it into source pixels before storing it.
type PreviewCrop struct {
	Rect    geometry.RectF `json:"rect"`
	Preview geometry.Size  `json:"preview_size"`
}

type AddRangeReq struct {
	Folder         string `json:"folder" binding:"required"`
	VideoPath      string `json:"video_path" binding:"required"`
	StartFrame     int    `json:"start_frame"`
	DurationFrames int    `json:"duration_frames"`

	// at most one of the two crop forms
	Crop        *geometry.Rect `json:"crop,omitempty"`
	PreviewCrop *PreviewCrop   `json:"preview_crop,omitempty"`
}

type NudgeRangeReq struct {
	Folder    string `json:"folder" binding:"required"`
	VideoPath string `json:"video_path" binding:"required"`
	RangeId   string `json:"range_id" binding:"required"`
	Edge      string `json:"edge" binding:"required"` // "start" or "end"
	Delta     int    `json:"delta"`
}

type SetCropReq struct {
	Folder      string         `json:"folder" binding:"required"`
	VideoPath   string         `json:"video_path" binding:"required"`
	RangeId     string         `json:"range_id" binding:"required"`
	Crop        *geometry.Rect `json:"crop,omitempty"`
	PreviewCrop *PreviewCrop   `json:"preview_crop,omitempty"`
}

type RemoveRangeReq struct {
	Folder    string `json:"folder" binding:"required"`
	VideoPath string `json:"video_path" binding:"required"`
	RangeId   string `json:"range_id" binding:"required"`
}

type SelectVideoReq struct {
	Folder    string `json:"folder" binding:"required"`
	VideoPath string `json:"video_path" binding:"required"`
	Selected  bool   `json:"selected"`
}

type UpdateExportSettingsReq struct {
	Folder   string                 `json:"folder" binding:"required"`
	Settings session.ExportSettings `json:"settings"`
}

type StartExportReq struct {
	Folder string `json:"folder" binding:"required"`
}

type StartExportResData struct {
	BatchId  string `json:"batch_id"`
	JobCount int    `json:"job_count"`
}

type ConvertFpsReq struct {
	Folder    string `json:"folder" binding:"required"`
	Subfolder string `json:"subfolder"`
	TargetFps int    `json:"target_fps" binding:"required"`
}

type ConvertFpsResData struct {
	OutputFolder string `json:"output_folder"`
	Succeeded    int    `json:"succeeded"`
	Failed       int    `json:"failed"`
	Failures     []struct {
		InputPath string `json:"input_path"`
		Reason    string `json:"reason"`
	} `json:"failures,omitempty"`
}
