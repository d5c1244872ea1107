package httpapi

import (
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/assetvault/internal/common"
	"github.com/dmitrijs2005/assetvault/internal/filex"
	"github.com/dmitrijs2005/assetvault/internal/server/models"
)

// uploadField is the multipart field carrying the files.
const uploadField = "files"

// stageFiles copies every uploaded part to a temp file under the upload
// directory. On error the files staged so far are removed.
func (s *Server) stageFiles(headers []*multipart.FileHeader) ([]models.LocalFile, error) {
	if len(headers) == 0 {
		return nil, fmt.Errorf("no files in field %q: %w", uploadField, common.ErrorValidation)
	}
	if s.limits.MaxFilesPerRequest > 0 && len(headers) > s.limits.MaxFilesPerRequest {
		return nil, fmt.Errorf("at most %d files per request: %w", s.limits.MaxFilesPerRequest, common.ErrorValidation)
	}

	staged := make([]models.LocalFile, 0, len(headers))
	fail := func(err error) ([]models.LocalFile, error) {
		for _, f := range staged {
			_ = filex.Release(f.Path)
		}
		return nil, err
	}

	for _, h := range headers {
		if h.Size > s.limits.MaxUploadSize {
			return fail(fmt.Errorf("%s exceeds %d bytes: %w", h.Filename, s.limits.MaxUploadSize, common.ErrorValidation))
		}
		lf, err := s.stageOne(h)
		if err != nil {
			return fail(err)
		}
		staged = append(staged, lf)
	}
	return staged, nil
}

func (s *Server) stageOne(h *multipart.FileHeader) (models.LocalFile, error) {
	src, err := h.Open()
	if err != nil {
		return models.LocalFile{}, fmt.Errorf("open part %s: %w", h.Filename, err)
	}
	defer src.Close()

	name := filepath.Base(h.Filename)
	ext := strings.ToLower(filepath.Ext(name))
	path, n, err := filex.SaveTemp(s.limits.UploadDir, "upload-*"+ext, src, s.limits.MaxUploadSize)
	if err != nil {
		if errors.Is(err, filex.ErrTooLarge) {
			return models.LocalFile{}, fmt.Errorf("%s exceeds %d bytes: %w", name, s.limits.MaxUploadSize, common.ErrorValidation)
		}
		return models.LocalFile{}, err
	}
	return models.LocalFile{Path: path, Name: name, Size: n}, nil
}
