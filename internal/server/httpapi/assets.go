package httpapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/assetvault/internal/common"
	"github.com/dmitrijs2005/assetvault/internal/server/blobstore"
	"github.com/dmitrijs2005/assetvault/internal/server/models"
)

func (s *Server) handleUpload(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return badRequest(c, "invalid multipart form")
	}
	defer form.RemoveAll()

	files, err := s.stageFiles(form.File[uploadField])
	if err != nil {
		return s.writeError(c, err)
	}

	res, err := s.assets.Upload(c.Request().Context(), ownerFrom(c), files)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

type deleteAssetsRequest struct {
	Assets []models.DeleteRequest `json:"assets"`
}

func (s *Server) handleDelete(c echo.Context) error {
	var req deleteAssetsRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	owner := ownerFrom(c)
	prefix := blobstore.Folder(owner) + "/"
	for _, a := range req.Assets {
		if a.PublicID != "" && !strings.HasPrefix(a.PublicID, prefix) {
			return s.writeError(c, fmt.Errorf("asset %s is not owned by caller: %w", a.PublicID, common.ErrorValidation))
		}
	}

	res, err := s.assets.Delete(c.Request().Context(), owner, req.Assets)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) handleList(c echo.Context) error {
	page := queryInt(c, "page")
	pageSize := queryInt(c, "page_size")

	res, err := s.assets.List(c.Request().Context(), ownerFrom(c), page, pageSize)
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// queryInt returns the named query parameter, or 0 when it is absent or
// malformed so the service applies its default.
func queryInt(c echo.Context, name string) int64 {
	v, err := strconv.ParseInt(c.QueryParam(name), 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func (s *Server) handlePurge(c echo.Context) error {
	res, err := s.assets.Purge(c.Request().Context(), ownerFrom(c))
	if err != nil {
		return s.writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}
