package restapi

import (
	"github.com/bwmarrin/snowflake"
	"github.com/labstack/echo/v4"
	"github.com/openshelf/catalogd/internal/media"
	"gorm.io/gorm"
)

// Handler carries the collaborators every product operation needs. The
// operations share no in-memory state beyond these handles.
type Handler struct {
	db    *gorm.DB
	store media.Store
	idgen *snowflake.Node
}

func NewHandler(db *gorm.DB, store media.Store, idgen *snowflake.Node) *Handler {
	return &Handler{db: db, store: store, idgen: idgen}
}

// Register mounts the API surface under /api.
func (h *Handler) Register(e *echo.Echo) {
	api := e.Group("/api")
	api.GET("/health", h.health)

	products := api.Group("/products")
	products.GET("", h.listProducts)
	products.GET("/category/:category", h.listProductsByCategory)
	products.GET("/:id", h.getProduct)
	products.POST("", h.createProduct, Upload(h.store))
	products.PUT("/:id", h.updateProduct, Upload(h.store))
	products.DELETE("/:id", h.deleteProduct)
}

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, echo.Map{"message": message})
}
