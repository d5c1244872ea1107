package cleanup

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/dmitrijs2005/assetvault/internal/logging"
	"github.com/dmitrijs2005/assetvault/internal/server/blobstore"
)

// Handler processes cleanup tasks against the blob store.
type Handler struct {
	blobs  blobstore.Store
	logger logging.Logger
}

func NewHandler(blobs blobstore.Store, logger logging.Logger) *Handler {
	return &Handler{blobs: blobs, logger: logger.With("module", "cleanup")}
}

// Mux registers the task handlers.
func (h *Handler) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeBlobDelete, h.handleBlobDelete)
	return mux
}

// handleBlobDelete returns an error to make asynq retry. A blob that is
// already gone completes the task.
func (h *Handler) handleBlobDelete(ctx context.Context, task *asynq.Task) error {
	var p BlobDeletePayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return fmt.Errorf("decode payload: %v: %w", err, asynq.SkipRetry)
	}
	if p.PublicID == "" {
		return fmt.Errorf("empty public id: %w", asynq.SkipRetry)
	}

	res, err := h.blobs.Delete(ctx, p.PublicID)
	if err != nil {
		h.logger.Warn(ctx, "blob cleanup failed", "public_id", p.PublicID, "error", err)
		return err
	}
	h.logger.Info(ctx, "blob cleanup done", "public_id", p.PublicID, "result", res.Result)
	return nil
}
