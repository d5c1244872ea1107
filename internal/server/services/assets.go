// Package services holds the business operations behind the transport
// layer: the asset reconciliation core and account management.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/assetvault/internal/common"
	"github.com/dmitrijs2005/assetvault/internal/filex"
	"github.com/dmitrijs2005/assetvault/internal/logging"
	"github.com/dmitrijs2005/assetvault/internal/server/blobstore"
	"github.com/dmitrijs2005/assetvault/internal/server/config"
	"github.com/dmitrijs2005/assetvault/internal/server/models"
	"github.com/dmitrijs2005/assetvault/internal/server/repositories/assets"
	"github.com/dmitrijs2005/assetvault/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/assetvault/internal/server/repositories/users"
	"github.com/dmitrijs2005/assetvault/internal/timex"
)

// MaxSelection is the selection-limit hint returned with every listing.
const MaxSelection = 10

const (
	defaultPage     = 1
	defaultPageSize = 50
)

// PurgeMessage is the confirmation returned by a successful Purge.
const PurgeMessage = "user and assets deleted successfully"

// CleanupScheduler queues a blob deletion for a later retry. It is used
// when the metadata record is already gone but the blob delete errored.
type CleanupScheduler interface {
	ScheduleBlobDelete(ctx context.Context, publicID string) error
}

// AssetService keeps the blob store and the metadata store in a best-effort
// consistent state, reporting exactly what reached each store.
type AssetService struct {
	blobs       blobstore.Store
	assets      assets.Repository
	users       users.Repository
	display     *timex.Displayer
	concurrency int
	cleanup     CleanupScheduler
	logger      logging.Logger
	now         func() time.Time
}

type AssetOption func(*AssetService)

// WithCleanupScheduler enables deferred retries of failed blob deletes.
func WithCleanupScheduler(c CleanupScheduler) AssetOption {
	return func(s *AssetService) { s.cleanup = c }
}

// WithClock overrides the clock used for creation timestamps.
func WithClock(now func() time.Time) AssetOption {
	return func(s *AssetService) { s.now = now }
}

func NewAssetService(blobs blobstore.Store, m repomanager.RepositoryManager, cfg *config.Config, logger logging.Logger, opts ...AssetOption) (*AssetService, error) {
	display, err := timex.NewDisplayer(cfg.DisplayTimezone)
	if err != nil {
		return nil, err
	}
	concurrency := cfg.DeleteConcurrency
	if concurrency < 1 {
		concurrency = 1
	}

	s := &AssetService{
		blobs:       blobs,
		assets:      m.Assets(),
		users:       m.Users(),
		display:     display,
		concurrency: concurrency,
		logger:      logger.With("module", "assets"),
		now:         time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

func requireOwner(owner string) (string, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return "", fmt.Errorf("owner email is required: %w", common.ErrorValidation)
	}
	return owner, nil
}

// Upload pushes each file to the blob store in order, then records every
// accepted file with a single batch insert. Files the blob store rejects are
// skipped. Every temp file is released once its push attempt is over.
func (s *AssetService) Upload(ctx context.Context, owner string, files []models.LocalFile) (*models.UploadResult, error) {
	owner, err := requireOwner(owner)
	if err != nil {
		for _, f := range files {
			s.release(ctx, f)
		}
		return nil, err
	}

	// in-flight batches run to completion
	ctx = context.WithoutCancel(ctx)
	folder := blobstore.Folder(owner)

	stored := make([]models.StoredFile, 0, len(files))
	staged := make([]*models.Asset, 0, len(files))
	for _, f := range files {
		sf, err := s.blobs.Upload(ctx, f.Path, folder)
		s.release(ctx, f)
		if err != nil {
			s.logger.Warn(ctx, "blob upload failed", "owner", owner, "file", f.Name, "error", err)
			continue
		}

		sf.FileName = f.Name
		stored = append(stored, *sf)
		staged = append(staged, &models.Asset{
			Email:        owner,
			FileName:     f.Name,
			URL:          sf.URL,
			PublicID:     sf.PublicID,
			ResourceType: sf.ResourceType,
			CreatedAt:    s.now(),
		})
	}

	result := &models.UploadResult{Files: stored, InsertedIDs: []string{}, Requested: len(files)}
	if len(staged) == 0 {
		return result, nil
	}

	ids, err := s.assets.InsertMany(ctx, staged)
	if err != nil {
		orphans := make([]string, 0, len(staged))
		for _, a := range staged {
			orphans = append(orphans, a.PublicID)
		}
		s.logger.Error(ctx, "asset metadata insert failed, blobs left without records",
			"owner", owner, "public_ids", orphans, "error", err)
		return nil, fmt.Errorf("insert asset metadata: %w: %w", common.ErrorMetadataWrite, err)
	}

	result.InsertedIDs = ids
	s.logger.Info(ctx, "assets uploaded", "owner", owner, "requested", len(files), "stored", len(ids))
	return result, nil
}

func (s *AssetService) release(ctx context.Context, f models.LocalFile) {
	if err := filex.Release(f.Path); err != nil {
		s.logger.Warn(ctx, "temp file release failed", "path", f.Path, "error", err)
	}
}

// Delete removes each of owner's records from both stores. Both sides are
// attempted for every record and per-record failures only shrink the
// confirmed lists. Metadata of another owner is never matched. It fails only
// for malformed input.
func (s *AssetService) Delete(ctx context.Context, owner string, reqs []models.DeleteRequest) (*models.DeletionResult, error) {
	owner, err := requireOwner(owner)
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, fmt.Errorf("at least one asset is required: %w", common.ErrorValidation)
	}
	for i, r := range reqs {
		if strings.TrimSpace(r.PublicID) == "" || strings.TrimSpace(r.MetaID) == "" {
			return nil, fmt.Errorf("asset %d: public_id and _id are required: %w", i, common.ErrorValidation)
		}
	}

	res := s.reconcileDeletes(context.WithoutCancel(ctx), owner, reqs)
	return &res, nil
}

func (s *AssetService) reconcileDeletes(ctx context.Context, owner string, reqs []models.DeleteRequest) models.DeletionResult {
	items := make([]models.ItemResult, len(reqs))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, r := range reqs {
		g.Go(func() error {
			items[i] = s.deleteOne(ctx, owner, r)
			return nil
		})
	}
	_ = g.Wait()

	res := models.NewDeletionResult(items)
	s.logger.Info(ctx, "assets deleted",
		"owner", owner,
		"requested", res.Summary.Requested,
		"blob_deleted", res.Summary.BlobDeleted,
		"meta_deleted", res.Summary.MetaDeleted)
	return res
}

func (s *AssetService) deleteOne(ctx context.Context, owner string, r models.DeleteRequest) models.ItemResult {
	item := models.ItemResult{Request: r}

	br, blobErr := s.blobs.Delete(ctx, r.PublicID)
	switch {
	case blobErr != nil:
		s.logger.Warn(ctx, "blob delete failed", "public_id", r.PublicID, "error", blobErr)
	case br != nil && br.OK:
		item.BlobDeleted = true
	default:
		result := ""
		if br != nil {
			result = br.Result
		}
		s.logger.Debug(ctx, "blob delete not confirmed", "public_id", r.PublicID, "result", result)
	}

	n, err := s.assets.DeleteByID(ctx, owner, r.MetaID)
	switch {
	case err != nil:
		s.logger.Warn(ctx, "metadata delete failed", "id", r.MetaID, "error", err)
	case n == 1:
		item.MetaDeleted = true
	default:
		s.logger.Debug(ctx, "metadata delete not confirmed", "id", r.MetaID, "deleted", n)
	}

	if item.MetaDeleted && blobErr != nil && s.cleanup != nil {
		if err := s.cleanup.ScheduleBlobDelete(ctx, r.PublicID); err != nil {
			s.logger.Warn(ctx, "blob cleanup not scheduled", "public_id", r.PublicID, "error", err)
		}
	}

	return item
}

// Purge removes every asset of owner, then the owner folder, then the
// account. Asset cleanup is not undone when the account is missing.
func (s *AssetService) Purge(ctx context.Context, owner string) (*models.PurgeResult, error) {
	owner, err := requireOwner(owner)
	if err != nil {
		return nil, err
	}
	ctx = context.WithoutCancel(ctx)

	list, err := s.assets.ListByOwner(ctx, owner, 0, 0)
	if err != nil {
		return nil, fmt.Errorf("list assets of %s: %w: %w", owner, common.ErrorExternalStore, err)
	}

	reqs := make([]models.DeleteRequest, 0, len(list))
	for _, a := range list {
		reqs = append(reqs, models.DeleteRequest{PublicID: a.PublicID, MetaID: a.ID})
	}

	deleted := models.NewDeletionResult(nil)
	if len(reqs) > 0 {
		deleted = s.reconcileDeletes(ctx, owner, reqs)
	}

	folderDeleted := true
	if err := s.blobs.DeleteFolder(ctx, blobstore.Folder(owner)); err != nil {
		folderDeleted = false
		s.logger.Warn(ctx, "owner folder not deleted", "owner", owner, "error", err)
	}

	n, err := s.users.DeleteByEmail(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("delete user %s: %w: %w", owner, common.ErrorExternalStore, err)
	}
	if n == 0 {
		return nil, fmt.Errorf("user not found: %w", common.ErrorNotFound)
	}

	s.logger.Info(ctx, "owner purged", "owner", owner, "assets", deleted.Summary.Requested)
	return &models.PurgeResult{Message: PurgeMessage, Assets: deleted, FolderDeleted: folderDeleted}, nil
}

// List returns one page of owner's assets, newest first, with the owner
// profile. A missing account yields a nil User and a page past the end is
// simply empty.
func (s *AssetService) List(ctx context.Context, owner string, page, pageSize int64) (*models.AssetPage, error) {
	owner, err := requireOwner(owner)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = defaultPage
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	list, err := s.assets.ListByOwner(ctx, owner, (page-1)*pageSize, pageSize)
	if err != nil {
		return nil, fmt.Errorf("list assets of %s: %w: %w", owner, common.ErrorExternalStore, err)
	}

	out := &models.AssetPage{
		Assets:         make([]models.AssetView, 0, len(list)),
		Page:           page,
		PageSize:       pageSize,
		SelectionLimit: MaxSelection,
	}
	for _, a := range list {
		out.Assets = append(out.Assets, s.assetView(a))
	}

	u, err := s.users.GetByEmail(ctx, owner)
	switch {
	case err == nil:
		out.User = s.userView(u)
	case errors.Is(err, common.ErrorNotFound):
	default:
		return nil, fmt.Errorf("get user %s: %w: %w", owner, common.ErrorExternalStore, err)
	}

	return out, nil
}

func (s *AssetService) assetView(a *models.Asset) models.AssetView {
	return models.AssetView{
		ID:           a.ID,
		Email:        a.Email,
		FileName:     a.FileName,
		URL:          a.URL,
		PublicID:     a.PublicID,
		ResourceType: a.ResourceType,
		CreatedAt:    s.display.Format(a.CreatedAt),
	}
}

func (s *AssetService) userView(u *models.User) *models.UserView {
	return &models.UserView{
		ID:              u.ID,
		Username:        u.Username,
		Email:           u.Email,
		IsEmailVerified: u.IsEmailVerified,
		CreatedAt:       s.display.Format(u.CreatedAt),
	}
}
