package services

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/assetvault/internal/common"
	"github.com/dmitrijs2005/assetvault/internal/server/blobstore"
	"github.com/dmitrijs2005/assetvault/internal/server/models"
	"github.com/dmitrijs2005/assetvault/internal/server/repositories/assets"
	"github.com/dmitrijs2005/assetvault/internal/server/repositories/users"
)

// callLog records store calls across fakes so tests can assert ordering.
type callLog struct {
	mu    sync.Mutex
	calls []string
}

func (l *callLog) add(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, fmt.Sprintf(format, args...))
}

func (l *callLog) list() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.calls...)
}

type fakeBlobStore struct {
	mu      sync.Mutex
	log     *callLog
	objects map[string]bool

	uploadErr map[string]error // by file base name
	deleteErr map[string]error // by public id
	folderErr error
}

func newFakeBlobStore(log *callLog) *fakeBlobStore {
	return &fakeBlobStore{log: log, objects: map[string]bool{}, uploadErr: map[string]error{}, deleteErr: map[string]error{}}
}

func (f *fakeBlobStore) Upload(ctx context.Context, localPath, folder string) (*models.StoredFile, error) {
	f.log.add("blob.upload %s", filepath.Base(localPath))
	if err := f.uploadErr[filepath.Base(localPath)]; err != nil {
		return nil, err
	}
	if _, err := os.Stat(localPath); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	id := folder + "/" + filepath.Base(localPath)
	f.objects[id] = true
	return &models.StoredFile{PublicID: id, URL: "http://blob/" + id, ResourceType: models.ResourceRaw}, nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, publicID string) (*blobstore.DeleteResult, error) {
	f.log.add("blob.delete %s", publicID)
	if err := f.deleteErr[publicID]; err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.objects[publicID] {
		return &blobstore.DeleteResult{OK: false, Result: blobstore.ResultNotFound}, nil
	}
	delete(f.objects, publicID)
	return &blobstore.DeleteResult{OK: true, Result: blobstore.ResultOK}, nil
}

func (f *fakeBlobStore) DeleteFolder(ctx context.Context, folder string) error {
	f.log.add("blob.deleteFolder %s", folder)
	return f.folderErr
}

type fakeAssetsRepo struct {
	assets.Repository

	mu      sync.Mutex
	log     *callLog
	records map[string]*models.Asset
	nextID  int

	insertErr error
	listErr   error
	deleteErr map[string]error
	inserts   int
}

func newFakeAssetsRepo(log *callLog) *fakeAssetsRepo {
	return &fakeAssetsRepo{log: log, records: map[string]*models.Asset{}, deleteErr: map[string]error{}}
}

func (f *fakeAssetsRepo) InsertMany(ctx context.Context, in []*models.Asset) ([]string, error) {
	f.log.add("meta.insertMany %d", len(in))
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserts++
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	ids := make([]string, 0, len(in))
	for _, a := range in {
		f.nextID++
		a.ID = fmt.Sprintf("m%d", f.nextID)
		cp := *a
		f.records[a.ID] = &cp
		ids = append(ids, a.ID)
	}
	return ids, nil
}

func (f *fakeAssetsRepo) ListByOwner(ctx context.Context, owner string, skip, limit int64) ([]*models.Asset, error) {
	f.log.add("meta.list %s", owner)
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []*models.Asset
	for _, a := range f.records {
		if a.Email == owner {
			cp := *a
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if skip >= int64(len(out)) {
		return []*models.Asset{}, nil
	}
	out = out[skip:]
	if limit > 0 && limit < int64(len(out)) {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeAssetsRepo) DeleteByID(ctx context.Context, owner, id string) (int64, error) {
	f.log.add("meta.delete %s", id)
	if err := f.deleteErr[id]; err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.records[id]; !ok || a.Email != owner {
		return 0, nil
	}
	delete(f.records, id)
	return 1, nil
}

type fakeUsersRepo struct {
	users.Repository

	mu    sync.Mutex
	log   *callLog
	byKey map[string]*models.User

	createErr error
	getErr    error
	deleteErr error
	updateErr error
}

func newFakeUsersRepo(log *callLog) *fakeUsersRepo {
	return &fakeUsersRepo{log: log, byKey: map[string]*models.User{}}
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return nil, f.createErr
	}
	if _, ok := f.byKey[u.Email]; ok {
		return nil, common.ErrorAlreadyExists
	}
	u.ID = "u-" + u.Email
	cp := *u
	f.byKey[u.Email] = &cp
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.log.add("users.get %s", email)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.byKey[email]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsersRepo) UpdatePassword(ctx context.Context, email, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	u, ok := f.byKey[email]
	if !ok {
		return common.ErrorNotFound
	}
	u.Password = hash
	return nil
}

func (f *fakeUsersRepo) SetEmailVerified(ctx context.Context, email string, verified bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	u, ok := f.byKey[email]
	if !ok {
		return common.ErrorNotFound
	}
	u.IsEmailVerified = verified
	return nil
}

func (f *fakeUsersRepo) DeleteByEmail(ctx context.Context, email string) (int64, error) {
	f.log.add("users.delete %s", email)
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byKey[email]; !ok {
		return 0, nil
	}
	delete(f.byKey, email)
	return 1, nil
}

type fakeRepoManager struct {
	a *fakeAssetsRepo
	u *fakeUsersRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context) error { return nil }
func (m *fakeRepoManager) Assets() assets.Repository           { return m.a }
func (m *fakeRepoManager) Users() users.Repository             { return m.u }
func (m *fakeRepoManager) Ping(context.Context) error          { return nil }
func (m *fakeRepoManager) Close(context.Context) error         { return nil }

type fakeCleanup struct {
	mu        sync.Mutex
	scheduled []string
	err       error
}

func (f *fakeCleanup) ScheduleBlobDelete(ctx context.Context, publicID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduled = append(f.scheduled, publicID)
	return f.err
}

type fakeMailer struct {
	to, subject, body string
	err               error
}

func (f *fakeMailer) Send(ctx context.Context, to, subject, html string) error {
	f.to, f.subject, f.body = to, subject, html
	return f.err
}

// tempFiles creates one temp file per name and returns them as LocalFiles.
func tempFiles(t *testing.T, names ...string) []models.LocalFile {
	t.Helper()
	dir := t.TempDir()
	out := make([]models.LocalFile, 0, len(names))
	for _, n := range names {
		p := filepath.Join(dir, n)
		require.NoError(t, os.WriteFile(p, []byte("data-"+n), 0o600))
		out = append(out, models.LocalFile{Path: p, Name: n, Size: int64(len("data-" + n))})
	}
	return out
}
