package storage

import (
	"errors"
	"time"

	"vidprep/internal/export"

	"gorm.io/gorm"
)

// ExportBatch is one persisted export run with its per-job outcomes.
type ExportBatch struct {
	Id         uint   `gorm:"primarykey" json:"-"`
	BatchId    string `gorm:"type:varchar(64);uniqueIndex" json:"batch_id"`
	RootFolder string `gorm:"type:text" json:"root_folder"`
	Status     string `gorm:"type:varchar(16);index" json:"status"`
	JobCount   int    `json:"job_count"`
	Succeeded  int    `json:"succeeded"`
	Failed     int    `json:"failed"`
	CreateTime int64  `json:"create_time"`
	FinishTime int64  `json:"finish_time"`

	Jobs []ExportJobRecord `gorm:"foreignKey:BatchRef;references:BatchId" json:"jobs,omitempty"`
}

// ExportJobRecord is the persisted outcome of one job within a batch.
type ExportJobRecord struct {
	Id           uint   `gorm:"primarykey" json:"-"`
	BatchRef     string `gorm:"type:varchar(64);index" json:"-"`
	JobIndex     int    `json:"job_index"`
	VideoPath    string `gorm:"type:text" json:"video_path"`
	RangeId      string `gorm:"type:varchar(64)" json:"range_id"`
	Kind         string `gorm:"type:varchar(24)" json:"kind"`
	OutputPath   string `gorm:"type:text" json:"output_path"`
	Succeeded    bool   `json:"succeeded"`
	FailReason   string `gorm:"type:text" json:"fail_reason,omitempty"`
	CaptionError string `gorm:"type:text" json:"caption_error,omitempty"`
}

// CreateBatch records a freshly started batch.
func CreateBatch(batchId, rootFolder string, jobCount int) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	return DB.Create(&ExportBatch{
		BatchId:    batchId,
		RootFolder: rootFolder,
		Status:     export.BatchStageRunning.String(),
		JobCount:   jobCount,
		CreateTime: time.Now().Unix(),
	}).Error
}

// FinishBatch stores the final stage and the full per-job report.
func FinishBatch(batchId string, stage export.BatchStage, report export.Report) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	succeeded, failed := report.Counts()

	records := make([]ExportJobRecord, 0, len(report.Results))
	for _, res := range report.Results {
		rec := ExportJobRecord{
			BatchRef:   batchId,
			JobIndex:   res.Job.Index,
			VideoPath:  res.Job.VideoPath,
			RangeId:    res.Job.RangeID,
			Kind:       string(res.Job.Kind),
			OutputPath: res.Job.OutputPath,
			Succeeded:  res.Succeeded(),
		}
		if res.Err != nil {
			rec.FailReason = res.Err.Error()
		}
		if res.CaptionErr != nil {
			rec.CaptionError = res.CaptionErr.Error()
		}
		records = append(records, rec)
	}

	return DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&ExportBatch{}).
			Where("batch_id = ?", batchId).
			Updates(map[string]interface{}{
				"status":      stage.String(),
				"succeeded":   succeeded,
				"failed":      failed,
				"finish_time": time.Now().Unix(),
			}).Error; err != nil {
			return err
		}
		if len(records) == 0 {
			return nil
		}
		return tx.Create(&records).Error
	})
}

// GetBatch loads one batch with its job records.
func GetBatch(batchId string) (*ExportBatch, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var batch ExportBatch
	if err := DB.Preload("Jobs").Where("batch_id = ?", batchId).First(&batch).Error; err != nil {
		return nil, err
	}
	return &batch, nil
}

// GetBatchHistory returns the most recent batches, newest first, without
// their job records.
func GetBatchHistory(limit int) ([]ExportBatch, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var batches []ExportBatch
	if err := DB.Order("create_time desc").Limit(limit).Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// MarkStaleBatches flips batches left "running" by a previous process to
// canceled. Called on startup.
func MarkStaleBatches() (int64, error) {
	if DB == nil {
		return 0, errors.New("database not initialized")
	}
	result := DB.Model(&ExportBatch{}).
		Where("status = ?", export.BatchStageRunning.String()).
		Updates(map[string]interface{}{
			"status":      export.BatchStageCanceled.String(),
			"finish_time": time.Now().Unix(),
		})
	return result.RowsAffected, result.Error
}
