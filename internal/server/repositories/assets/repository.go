// Package assets is the metadata store adapter for asset records.
package assets

import (
	"context"

	"github.com/dmitrijs2005/assetvault/internal/server/models"
)

// Repository persists one metadata record per stored file.
type Repository interface {
	// InsertMany writes all records in one call and returns their ids in
	// input order. It either writes every record or fails.
	InsertMany(ctx context.Context, assets []*models.Asset) ([]string, error)
	// ListByOwner returns the owner's records newest first, ties broken by
	// id descending. A limit of zero returns everything after skip.
	ListByOwner(ctx context.Context, owner string, skip, limit int64) ([]*models.Asset, error)
	// DeleteByID removes the record with id if it belongs to owner and
	// reports how many were deleted.
	DeleteByID(ctx context.Context, owner, id string) (int64, error)
}
