package restapi

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/openshelf/catalogd/internal/domain"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type productForm struct {
	Name        string
	Price       float64
	Category    string
	Description string
	InStock     bool
}

// bindProductForm reads and validates the multipart form fields shared by
// create and update. All required fields must be present again on update,
// there are no partial-update semantics.
func bindProductForm(c echo.Context) (*productForm, error) {
	name := strings.TrimSpace(c.FormValue("name"))
	priceStr := strings.TrimSpace(c.FormValue("price"))
	category := strings.TrimSpace(c.FormValue("category"))
	if name == "" || priceStr == "" || category == "" {
		return nil, errors.New("name, price and category are required")
	}
	price, err := cast.ToFloat64E(priceStr)
	if err != nil {
		return nil, errors.New("price must be a number")
	}
	if price < 0 {
		return nil, errors.New("price must not be negative")
	}
	return &productForm{
		Name:        name,
		Price:       price,
		Category:    category,
		Description: c.FormValue("description"),
		// only the literal string "true" enables inStock
		InStock: c.FormValue("inStock") == "true",
	}, nil
}

func parseProductID(c echo.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

func (h *Handler) listProducts(c echo.Context) error {
	rows := make([]domain.Product, 0)
	if err := h.db.Order("created_at DESC").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *Handler) listProductsByCategory(c echo.Context) error {
	rows := make([]domain.Product, 0)
	err := h.db.Where("category = ?", c.Param("category")).
		Order("created_at DESC").Find(&rows).Error
	if err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, rows)
}

func (h *Handler) getProduct(c echo.Context) error {
	id, err := parseProductID(c)
	if err != nil {
		// an unparseable identifier can never match a record
		return fail(c, http.StatusNotFound, "Product not found")
	}
	var p domain.Product
	if err := h.db.Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusNotFound, "Product not found")
		}
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) createProduct(c echo.Context) error {
	form, err := bindProductForm(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}

	p := domain.Product{
		ID:          h.idgen.Generate().Int64(),
		Name:        form.Name,
		Price:       form.Price,
		Category:    form.Category,
		Description: form.Description,
		ImageURL:    domain.PlaceholderImageURL,
		InStock:     form.InStock,
		CreatedAt:   time.Now(),
	}
	if img := uploadFromContext(c); img != nil {
		p.ImageURL = img.URL
		p.PublicID = &img.PublicID
	}

	if err := h.db.Create(&p).Error; err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusCreated, p)
}

func (h *Handler) updateProduct(c echo.Context) error {
	id, err := parseProductID(c)
	if err != nil {
		return fail(c, http.StatusNotFound, "Product not found")
	}
	var p domain.Product
	if err := h.db.Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusNotFound, "Product not found")
		}
		return fail(c, http.StatusInternalServerError, err.Error())
	}

	form, err := bindProductForm(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, err.Error())
	}

	// ID and CreatedAt are immutable; without a new upload the image
	// fields stay untouched.
	p.Name = form.Name
	p.Price = form.Price
	p.Category = form.Category
	p.Description = form.Description
	p.InStock = form.InStock

	var previousPublicID string
	img := uploadFromContext(c)
	if img != nil {
		if p.HasHostedImage() {
			previousPublicID = *p.PublicID
		}
		p.ImageURL = img.URL
		p.PublicID = &img.PublicID
	}

	if err := h.db.Save(&p).Error; err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}

	// The replaced image is removed only after the new one is recorded.
	if previousPublicID != "" {
		h.destroyImage(c, previousPublicID)
	}
	return c.JSON(http.StatusOK, p)
}

func (h *Handler) deleteProduct(c echo.Context) error {
	id, err := parseProductID(c)
	if err != nil {
		return fail(c, http.StatusNotFound, "Product not found")
	}
	var p domain.Product
	if err := h.db.Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fail(c, http.StatusNotFound, "Product not found")
		}
		return fail(c, http.StatusInternalServerError, err.Error())
	}

	if p.HasHostedImage() {
		h.destroyImage(c, *p.PublicID)
	}

	if err := h.db.Delete(&domain.Product{}, p.ID).Error; err != nil {
		return fail(c, http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Product deleted successfully"})
}

// destroyImage is best-effort: a failed deletion is logged and never fails
// the enclosing request.
func (h *Handler) destroyImage(c echo.Context, publicID string) {
	if err := h.store.Destroy(c.Request().Context(), publicID); err != nil {
		zap.L().Warn("hosted image cleanup failed",
			zap.String("public_id", publicID),
			zap.Error(err))
	}
}
