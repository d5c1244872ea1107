// Package blobstore is the blob store adapter of the reconciliation core.
// Objects live under an owner-scoped folder derived by Folder; two backends
// are provided, S3 via aws-sdk-go-v2 and MinIO via minio-go.
package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/assetvault/internal/server/models"
)

// Delete result strings, mirroring what object stores report.
const (
	ResultOK       = "ok"
	ResultNotFound = "not found"
)

// cacheControl is set on every object so retrieval URLs are revalidated
// once the object is deleted.
const cacheControl = "no-cache"

var (
	ErrFolderNotEmpty = errors.New("folder is not empty")
	ErrEmptyPublicID  = errors.New("public id cannot be empty")
)

// DeleteResult reports the store's answer to a delete request. OK is true
// only when the object existed and was removed.
type DeleteResult struct {
	OK     bool
	Result string
}

// Store is the contract the reconciliation core holds against object storage.
// Implementations are safe for concurrent use.
type Store interface {
	// Upload pushes the file at localPath under folder and returns the
	// assigned content identifier, a retrieval URL and the resource kind.
	Upload(ctx context.Context, localPath, folder string) (*models.StoredFile, error)
	// Delete removes one object by content identifier.
	Delete(ctx context.Context, publicID string) (*DeleteResult, error)
	// DeleteFolder removes an owner folder. It fails with ErrFolderNotEmpty
	// while objects remain under it.
	DeleteFolder(ctx context.Context, folder string) error
}

// Folder derives the blob store folder that namespaces an owner's objects.
// Upload, folder deletion and purge all go through this function.
func Folder(owner string) string {
	return "users/" + strings.TrimSpace(owner)
}

// newPublicID builds a unique object key inside folder, keeping the file
// extension of localPath.
func newPublicID(folder, localPath string) string {
	ext := strings.ToLower(filepath.Ext(localPath))
	return strings.TrimSuffix(folder, "/") + "/" + uuid.NewString() + ext
}

// folderPrefix returns the listing prefix for folder.
func folderPrefix(folder string) string {
	return strings.TrimSuffix(folder, "/") + "/"
}

// publicURL joins base and key, escaping each key segment.
func publicURL(base, key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.Join(parts, "/")
}

// openUpload opens localPath and sniffs its content type. The returned file
// is positioned at offset zero.
func openUpload(localPath string) (*os.File, int64, string, error) {
	f, err := os.Open(localPath)
	if err != nil {
		return nil, 0, "", fmt.Errorf("open %s: %w", localPath, err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, "", fmt.Errorf("stat %s: %w", localPath, err)
	}
	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		f.Close()
		return nil, 0, "", fmt.Errorf("read %s: %w", localPath, err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		f.Close()
		return nil, 0, "", fmt.Errorf("rewind %s: %w", localPath, err)
	}
	return f, fi.Size(), http.DetectContentType(head[:n]), nil
}

// ResourceKind maps a MIME type to the resource kind reported to callers.
func ResourceKind(contentType string) string {
	switch {
	case strings.HasPrefix(contentType, "image/"):
		return models.ResourceImage
	case strings.HasPrefix(contentType, "video/"):
		return models.ResourceVideo
	default:
		return models.ResourceRaw
	}
}
