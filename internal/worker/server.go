package worker

import (
	"context"
	"errors"
	"net/http"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"github.com/xinzhang-hello/meet-your-dog/internal/repository"
	"github.com/xinzhang-hello/meet-your-dog/internal/tasks"
)

// WorkerServer wraps the asynq server lifecycle.
type WorkerServer struct {
	server     *asynq.Server
	log        *logrus.Entry
	roomRepo   repository.RoomRepository
	memberRepo repository.MemberRepository
}

func NewWorkerServer(redisOpt asynq.RedisClientOpt, roomRepo repository.RoomRepository, memberRepo repository.MemberRepository, logger *logrus.Logger) *WorkerServer {
	logEntry := logger.WithField("component", "worker_server")

	server := asynq.NewServer(
		redisOpt,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				retryCount, _ := asynq.GetRetryCount(ctx)
				maxRetry, _ := asynq.GetMaxRetry(ctx)
				logEntry.WithFields(logrus.Fields{
					"task_type": task.Type(),
					"retries":   retryCount,
					"max_retry": maxRetry,
				}).Errorf("Task failed: %v", err)
			}),
		},
	)

	return &WorkerServer{
		server:     server,
		log:        logEntry,
		roomRepo:   roomRepo,
		memberRepo: memberRepo,
	}
}

// Start runs the worker server. Call it in its own goroutine.
func (ws *WorkerServer) Start() {
	mux := asynq.NewServeMux()

	reconcileHandler := NewReconcileHandler(ws.roomRepo, ws.memberRepo)
	mux.HandleFunc(tasks.TypeRoomReconcile, reconcileHandler.ProcessTask)

	ws.log.Info("Worker server starting...")
	if err := ws.server.Run(mux); err != nil {
		if !errors.Is(err, http.ErrServerClosed) && !errors.Is(err, asynq.ErrServerClosed) {
			ws.log.Fatalf("Could not run worker server: %v", err)
		} else {
			ws.log.Info("Worker server stopped.")
		}
	}
}

// Shutdown gracefully stops the worker server.
func (ws *WorkerServer) Shutdown() {
	ws.log.Info("Shutting down worker server...")
	ws.server.Shutdown()
	ws.log.Info("Worker server shut down complete.")
}
