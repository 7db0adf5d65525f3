package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/UnendingLoop/ImageLab/internal/kafka"
	"github.com/UnendingLoop/ImageLab/internal/model"
	"github.com/UnendingLoop/ImageLab/internal/mwlogger"
	"github.com/UnendingLoop/ImageLab/internal/poller"
	"github.com/UnendingLoop/ImageLab/internal/provider/meshy"
)

const pendingMessage = "Task is still processing. Use the task ID to check status."

// Reconstruct3D creates a vendor task and polls it until it is terminal or the budget runs out.
// The loop is detached from the request: if the caller leaves, it still runs to the end and
// its outcome only reaches the event bus.
func (s *ImageService) Reconstruct3D(ctx context.Context, img model.ImageReference) (*model.Model3D, error) {
	if err := validateImage(&img); err != nil {
		return nil, err
	}
	if s.builder == nil {
		return nil, &model.ConfigError{Vendor: meshy.Name}
	}

	taskID, err := s.builder.CreateTask(ctx, img.Source())
	if err != nil {
		return nil, vendorFailure(ctx, "Failed to create 3D task", err)
	}

	detached := context.WithoutCancel(ctx)
	// медленный брокер не должен задерживать опрос
	created := make(chan struct{})
	go func() {
		defer close(created)
		s.publish(detached, kafka.JobEvent{Type: kafka.EventCreated, TaskID: taskID, State: model.StateCreated})
	}()

	done := make(chan poller.Outcome, 1)
	go func() {
		out := s.poller.Run(detached, s.builder, taskID)
		// итог уходит строго после created
		<-created
		s.publish(detached, outcomeEvent(out))
		done <- out
	}()

	select {
	case out := <-done:
		return model3DFromOutcome(out)
	case <-ctx.Done():
		logger := mwlogger.LoggerFromContext(ctx)
		logger.Warn().Str("task_id", taskID).Msg("Client left while 3D task was polled, result goes to the event bus only")
		return nil, fmt.Errorf("%w: %w", model.ErrCommon500, ctx.Err())
	}
}

// Model3DStatus does a single status check of a task returned as pending earlier.
func (s *ImageService) Model3DStatus(ctx context.Context, taskID string) (*model.Model3D, error) {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return nil, model.ErrEmptyTaskID
	}
	if s.builder == nil {
		return nil, &model.ConfigError{Vendor: meshy.Name}
	}

	st, err := s.builder.JobStatus(ctx, taskID)
	if err != nil {
		return nil, vendorFailure(ctx, fmt.Sprintf("Failed to check 3D task %q", taskID), err)
	}

	res := &model.Model3D{
		Envelope: model.NewEnvelope(model.KindModel3D),
		TaskID:   taskID,
		Status:   st.Status,
	}
	switch st.Status {
	case model.JobSucceeded:
		res.ModelURL = st.AssetURL
		res.ThumbnailURL = st.ThumbnailURL
	case model.JobFailed:
		return nil, fmt.Errorf("%s %w", meshy.Name, model.ErrJobFailed)
	default:
		res.Message = pendingMessage
	}
	return res, nil
}

func model3DFromOutcome(out poller.Outcome) (*model.Model3D, error) {
	res := &model.Model3D{
		Envelope: model.NewEnvelope(model.KindModel3D),
		TaskID:   out.Job.ID,
		Attempts: out.Job.Attempts,
	}

	switch out.State {
	case model.StateSucceeded:
		res.Status = model.JobSucceeded
		res.ModelURL = out.AssetURL
		res.ThumbnailURL = out.ThumbnailURL
	case model.StateFailed:
		return nil, fmt.Errorf("%s %w", meshy.Name, model.ErrJobFailed)
	default:
		res.Status = model.JobPending
		res.Message = pendingMessage
	}
	return res, nil
}

func outcomeEvent(out poller.Outcome) kafka.JobEvent {
	ev := kafka.JobEvent{
		TaskID:       out.Job.ID,
		State:        out.State,
		Attempts:     out.Job.Attempts,
		ModelURL:     out.AssetURL,
		ThumbnailURL: out.ThumbnailURL,
	}
	switch out.State {
	case model.StateSucceeded:
		ev.Type = kafka.EventSucceeded
	case model.StateFailed:
		ev.Type = kafka.EventFailed
	default:
		ev.Type = kafka.EventPending
	}
	if out.LastErr != nil {
		ev.Error = out.LastErr.Error()
	}
	return ev
}

func (s *ImageService) publish(ctx context.Context, ev kafka.JobEvent) {
	ev.Vendor = meshy.Name
	if err := s.events.Publish(ctx, ev); err != nil {
		logger := mwlogger.LoggerFromContext(ctx)
		logger.Error().Err(err).Str("task_id", ev.TaskID).Msg("Failed to publish 3D task event")
	}
}
