// Package cleanup retries blob deletions whose metadata record is already
// gone, through an asynq queue backed by Redis.
package cleanup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// TypeBlobDelete is enqueued when a blob delete errored after its
	// metadata record was removed.
	TypeBlobDelete = "blob:delete"

	// Queue is the asynq queue cleanup tasks run on.
	Queue = "cleanup"

	maxRetry   = 10
	retryDelay = time.Minute
)

// BlobDeletePayload identifies the orphaned blob.
type BlobDeletePayload struct {
	PublicID string `json:"public_id"`
}

func NewBlobDeleteTask(publicID string) (*asynq.Task, error) {
	data, err := json.Marshal(BlobDeletePayload{PublicID: publicID})
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return asynq.NewTask(TypeBlobDelete, data), nil
}

type enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// Scheduler enqueues cleanup tasks.
type Scheduler struct {
	client enqueuer
}

func NewScheduler(client *asynq.Client) *Scheduler {
	return &Scheduler{client: client}
}

func (s *Scheduler) ScheduleBlobDelete(ctx context.Context, publicID string) error {
	task, err := NewBlobDeleteTask(publicID)
	if err != nil {
		return err
	}
	_, err = s.client.EnqueueContext(ctx, task,
		asynq.Queue(Queue),
		asynq.MaxRetry(maxRetry),
		asynq.ProcessIn(retryDelay),
		asynq.TaskID(TypeBlobDelete+":"+publicID),
	)
	if errors.Is(err, asynq.ErrTaskIDConflict) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("enqueue %s: %w", TypeBlobDelete, err)
	}
	return nil
}
