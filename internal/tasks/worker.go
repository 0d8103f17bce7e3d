package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"
)

// Cleaner removes every persisted record of a room.
type Cleaner interface {
	DeleteRoomData(ctx context.Context, roomID string) error
}

// Enqueuer schedules tasks; hand its Enqueue method to the game manager as
// the OnFinished hook.
type Enqueuer struct {
	client *asynq.Client
	log    *logrus.Entry
}

func NewEnqueuer(redisOpt asynq.RedisClientOpt, log *logrus.Entry) *Enqueuer {
	return &Enqueuer{
		client: asynq.NewClient(redisOpt),
		log:    log.WithField("component", "task-enqueuer"),
	}
}

func (e *Enqueuer) EnqueueRoomCleanup(roomID string) {
	task, err := NewRoomCleanupTask(roomID)
	if err != nil {
		e.log.WithError(err).Error("build cleanup task")
		return
	}
	if _, err := e.client.Enqueue(task, asynq.ProcessIn(CleanupDelay), asynq.MaxRetry(5)); err != nil {
		e.log.WithError(err).WithField("room", roomID).Error("enqueue cleanup")
		return
	}
	e.log.WithField("room", roomID).Info("cleanup scheduled")
}

func (e *Enqueuer) Close() error {
	return e.client.Close()
}

// Worker runs the task handlers. Start blocks; call it from its own
// goroutine and Shutdown on exit.
type Worker struct {
	server  *asynq.Server
	cleaner Cleaner
	log     *logrus.Entry
}

func NewWorker(redisOpt asynq.RedisClientOpt, cleaner Cleaner, log *logrus.Entry) *Worker {
	entry := log.WithField("component", "worker")
	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 4,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			entry.WithError(err).WithField("task_type", task.Type()).Error("task failed")
		}),
	})
	return &Worker{server: server, cleaner: cleaner, log: entry}
}

func (w *Worker) Start() error {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeRoomCleanup, w.handleRoomCleanup)

	w.log.Info("worker starting")
	if err := w.server.Run(mux); err != nil && !errors.Is(err, asynq.ErrServerClosed) {
		return fmt.Errorf("run worker: %w", err)
	}
	return nil
}

func (w *Worker) Shutdown() {
	w.server.Shutdown()
}

func (w *Worker) handleRoomCleanup(ctx context.Context, task *asynq.Task) error {
	var payload RoomCleanupPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal cleanup payload: %v: %w", err, asynq.SkipRetry)
	}
	if err := w.cleaner.DeleteRoomData(ctx, payload.RoomID); err != nil {
		return fmt.Errorf("delete room %s: %w", payload.RoomID, err)
	}
	w.log.WithField("room", payload.RoomID).Info("room records removed")
	return nil
}
