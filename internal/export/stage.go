package export

// BatchStage is the lifecycle of an export batch as tracked by the service
// layer and persisted with its history record.
type BatchStage uint8

const (
	BatchStageQueued BatchStage = iota + 1
	BatchStageRunning
	BatchStageCompleted
	BatchStageCanceled
)

func (s BatchStage) String() string {
	switch s {
	case BatchStageQueued:
		return "queued"
	case BatchStageRunning:
		return "running"
	case BatchStageCompleted:
		return "completed"
	case BatchStageCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

func (s BatchStage) IsTerminal() bool {
	return s == BatchStageCompleted || s == BatchStageCanceled
}
