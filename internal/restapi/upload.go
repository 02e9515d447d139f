package restapi

import (
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/openshelf/catalogd/internal/media"
	"github.com/pkg/errors"
)

const (
	// uploadField is the single multipart field an image may arrive under.
	uploadField = "image"
	// MaxUploadBytes caps accepted image size at 5 MiB.
	MaxUploadBytes = 5 << 20

	uploadContextKey = "catalogd.upload"
)

var acceptedImageExts = map[string]bool{
	".jpeg": true,
	".jpg":  true,
	".png":  true,
	".gif":  true,
}

var acceptedImageMIMEs = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
}

// Upload intercepts an optional image on create/update requests. An accepted
// file is streamed to the media store and the resulting URL/publicId pair is
// attached to the request context. Without a file the middleware is a no-op.
func Upload(store media.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			fh, err := c.FormFile(uploadField)
			if err != nil {
				// no file attached
				return next(c)
			}

			ext := strings.ToLower(filepath.Ext(fh.Filename))
			mime := fh.Header.Get("Content-Type")
			if !acceptedImageExts[ext] || !acceptedImageMIMEs[mime] {
				return fail(c, http.StatusBadRequest,
					"Only jpeg, jpg, png and gif images are accepted")
			}
			if fh.Size > MaxUploadBytes {
				return fail(c, http.StatusBadRequest,
					"Image exceeds the 5MB size limit")
			}

			src, err := fh.Open()
			if err != nil {
				return fail(c, http.StatusInternalServerError, err.Error())
			}
			data, err := io.ReadAll(src)
			src.Close()
			if err != nil {
				return fail(c, http.StatusInternalServerError, err.Error())
			}

			res, err := store.Upload(c.Request().Context(), fh.Filename, data)
			if err != nil {
				if errors.Is(err, media.ErrCredentials) {
					return fail(c, http.StatusInternalServerError,
						"media host credentials are misconfigured")
				}
				return fail(c, http.StatusInternalServerError, err.Error())
			}

			c.Set(uploadContextKey, res)
			return next(c)
		}
	}
}

func uploadFromContext(c echo.Context) *media.UploadResult {
	if res, ok := c.Get(uploadContextKey).(*media.UploadResult); ok {
		return res
	}
	return nil
}
