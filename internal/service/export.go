package service

import (
	"context"
	"sync"

	"vidprep/config"
	"vidprep/internal/caption"
	"vidprep/internal/export"
	"vidprep/internal/session"
	"vidprep/internal/storage"
	"vidprep/log"
	"vidprep/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ProgressEvent is pushed to batch subscribers after every finished job.
type ProgressEvent struct {
	BatchId    string `json:"batch_id"`
	JobIndex   int    `json:"job_index"`
	Kind       string `json:"kind"`
	OutputPath string `json:"output_path"`
	Succeeded  bool   `json:"succeeded"`
	FailReason string `json:"fail_reason,omitempty"`
	Done       int    `json:"done"`
	Total      int    `json:"total"`
	Stage      string `json:"stage"`
}

// BatchStatus is a point-in-time snapshot of a batch.
type BatchStatus struct {
	BatchId   string `json:"batch_id"`
	Stage     string `json:"stage"`
	Total     int    `json:"total"`
	Done      int    `json:"done"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
}

type batchState struct {
	id     string
	cancel context.CancelFunc

	mu          sync.Mutex
	stage       export.BatchStage
	total       int
	done        int
	succeeded   int
	failed      int
	subscribers map[chan ProgressEvent]struct{}
}

func (b *batchState) snapshot() BatchStatus {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BatchStatus{
		BatchId:   b.id,
		Stage:     b.stage.String(),
		Total:     b.total,
		Done:      b.done,
		Succeeded: b.succeeded,
		Failed:    b.failed,
	}
}

func (b *batchState) record(res export.Result) {
	b.mu.Lock()
	b.done++
	if res.Succeeded() {
		b.succeeded++
	} else {
		b.failed++
	}
	ev := ProgressEvent{
		BatchId:    b.id,
		JobIndex:   res.Job.Index,
		Kind:       string(res.Job.Kind),
		OutputPath: res.Job.OutputPath,
		Succeeded:  res.Succeeded(),
		Done:       b.done,
		Total:      b.total,
		Stage:      b.stage.String(),
	}
	if res.Err != nil {
		ev.FailReason = res.Err.Error()
	}
	subs := make([]chan ProgressEvent, 0, len(b.subscribers))
	for ch := range b.subscribers {
		subs = append(subs, ch)
	}
	b.mu.Unlock()

	for _, ch := range subs {
		select {
		case ch <- ev:
		default: // slow subscriber, drop rather than stall the batch
		}
	}
}

func (b *batchState) finish(stage export.BatchStage) {
	b.mu.Lock()
	b.stage = stage
	subs := b.subscribers
	b.subscribers = map[chan ProgressEvent]struct{}{}
	b.mu.Unlock()

	for ch := range subs {
		close(ch)
	}
}

// StartExport plans the folder's session and launches the batch in the
// background. It returns the batch id and the planned job count.
func (svc *Service) StartExport(folder string) (string, int, error) {
	var jobs []export.Job
	var settings session.ExportSettings
	var root string

	err := svc.WithSession(folder, func(s *session.Session) error {
		var planErr error
		settings = s.Export
		root = s.RootFolder
		jobs, planErr = export.Plan(s, settings)
		return planErr
	})
	if err != nil {
		return "", 0, err
	}
	if len(jobs) == 0 {
		return "", 0, errors.New(errors.CodeInvalidConfig,
			"nothing to export: no selected videos with ranges")
	}

	batchId := uuid.New().String()
	ctx, cancel := context.WithCancel(context.Background())
	state := &batchState{
		id:          batchId,
		cancel:      cancel,
		stage:       export.BatchStageRunning,
		total:       len(jobs),
		subscribers: map[chan ProgressEvent]struct{}{},
	}
	svc.batches.Store(batchId, state)

	if err = storage.CreateBatch(batchId, root, len(jobs)); err != nil {
		log.GetLogger().Warn("Export: cannot persist batch record", zap.Error(err))
	}

	captioner := svc.Captioner
	if settings.CaptionEnabled && settings.CaptionApiKey != "" {
		captioner = buildCaptioner(svc.Transcoder, settings.CaptionApiKey)
	}
	executor := &export.Executor{
		Transcoder: svc.Transcoder,
		Captions: caption.New(captioner, caption.Settings{
			Enabled:       settings.CaptionEnabled,
			TriggerWord:   settings.TriggerWord,
			CharacterName: settings.CharacterName,
			MaxRetries:    config.Conf.Caption.MaxRetries,
		}),
		Concurrency: config.Conf.Export.Concurrency,
		OnResult:    state.record,
	}

	go func() {
		defer cancel()
		report := executor.Run(ctx, jobs)

		stage := export.BatchStageCompleted
		if ctx.Err() != nil {
			stage = export.BatchStageCanceled
		}
		if err := storage.FinishBatch(batchId, stage, report); err != nil {
			log.GetLogger().Warn("Export: cannot persist batch report", zap.Error(err))
		}
		state.finish(stage)
	}()

	log.GetLogger().Info("Export: batch started",
		zap.String("batch_id", batchId),
		zap.String("root", root),
		zap.Int("jobs", len(jobs)))
	return batchId, len(jobs), nil
}

// ExportStatus reports a running batch, falling back to the persisted record
// for batches from earlier runs.
func (svc *Service) ExportStatus(batchId string) (BatchStatus, error) {
	if state, ok := svc.batches.Load(batchId); ok {
		return state.(*batchState).snapshot(), nil
	}
	batch, err := storage.GetBatch(batchId)
	if err != nil {
		return BatchStatus{}, errors.WrapWithDetail(errors.CodeNotFound,
			"unknown batch", batchId, err)
	}
	return BatchStatus{
		BatchId:   batch.BatchId,
		Stage:     batch.Status,
		Total:     batch.JobCount,
		Done:      batch.Succeeded + batch.Failed,
		Succeeded: batch.Succeeded,
		Failed:    batch.Failed,
	}, nil
}

// CancelExport stops dispatching new jobs and kills in-flight backend
// processes. Artifacts already produced are kept.
func (svc *Service) CancelExport(batchId string) error {
	state, ok := svc.batches.Load(batchId)
	if !ok {
		return errors.WrapWithDetail(errors.CodeNotFound, "unknown batch", batchId, nil)
	}
	state.(*batchState).cancel()
	log.GetLogger().Info("Export: batch cancel requested", zap.String("batch_id", batchId))
	return nil
}

// SubscribeBatch registers a progress listener. The returned channel is
// closed when the batch reaches a terminal stage; call off to unsubscribe
// early.
func (svc *Service) SubscribeBatch(batchId string) (<-chan ProgressEvent, func(), error) {
	stateAny, ok := svc.batches.Load(batchId)
	if !ok {
		return nil, nil, errors.WrapWithDetail(errors.CodeNotFound, "unknown batch", batchId, nil)
	}
	state := stateAny.(*batchState)

	ch := make(chan ProgressEvent, 64)
	state.mu.Lock()
	terminal := state.stage.IsTerminal()
	if !terminal {
		state.subscribers[ch] = struct{}{}
	}
	state.mu.Unlock()
	if terminal {
		close(ch)
		return ch, func() {}, nil
	}

	off := func() {
		state.mu.Lock()
		_, registered := state.subscribers[ch]
		delete(state.subscribers, ch)
		state.mu.Unlock()
		if registered {
			close(ch)
		}
	}
	return ch, off, nil
}
