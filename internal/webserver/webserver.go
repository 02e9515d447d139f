package webserver

import (
	"context"
	"embed"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/openshelf/catalogd/config"
	"github.com/openshelf/catalogd/internal/media"
	"github.com/openshelf/catalogd/internal/restapi"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed assets
var assetsFS embed.FS

// Server wraps the echo instance serving the API and the static pages.
type Server struct {
	cfg          *config.AppConfig
	root         *echo.Echo
	notFoundPage []byte
}

func New(cfg *config.AppConfig, db *gorm.DB, store media.Store, idgen *snowflake.Node) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = cfg.System.Debug
	e.JSONSerializer = jsonSerializer{}

	s := &Server{cfg: cfg, root: e}
	if page, err := assetsFS.ReadFile("assets/templates/404.html"); err == nil {
		s.notFoundPage = page
	}
	e.HTTPErrorHandler = s.errorHandler

	e.Use(requestLogger())
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("24M"))

	e.GET("/", s.page("index.html"))
	e.GET("/admin", s.page("admin.html"))
	e.StaticFS("/static", echo.MustSubFS(assetsFS, "assets/static"))

	restapi.NewHandler(db, store, idgen).Register(e)
	return s
}

// Echo exposes the router, mainly for tests.
func (s *Server) Echo() *echo.Echo {
	return s.root
}

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Web.Host, s.cfg.Web.Port)
	zap.L().Info("web server listening", zap.String("addr", addr))
	return s.root.Start(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.root.Shutdown(ctx)
}

func (s *Server) page(name string) echo.HandlerFunc {
	return func(c echo.Context) error {
		data, err := assetsFS.ReadFile("assets/templates/" + name)
		if err != nil {
			return err
		}
		return c.HTMLBlob(http.StatusOK, data)
	}
}

// errorHandler turns every unhandled error into the uniform JSON error
// body, except for unmatched non-API paths which get the 404 page.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := err.Error()

	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		message = fmt.Sprintf("%v", he.Message)
	}

	switch {
	case errors.Is(err, media.ErrCredentials):
		// never leak upstream credential details
		code = http.StatusInternalServerError
		message = "media host credentials are misconfigured"
	case code == http.StatusRequestEntityTooLarge:
		code = http.StatusBadRequest
		message = "Image exceeds the 5MB size limit"
	}

	if code == http.StatusNotFound && !strings.HasPrefix(c.Request().URL.Path, "/api") {
		if len(s.notFoundPage) > 0 {
			_ = c.HTMLBlob(http.StatusNotFound, s.notFoundPage)
			return
		}
	}
	_ = c.JSON(code, echo.Map{"message": message})
}

func requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			req := c.Request()
			zap.L().Info("http request",
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Int("status", c.Response().Status),
				zap.Duration("latency", time.Since(start)))
			return err
		}
	}
}
