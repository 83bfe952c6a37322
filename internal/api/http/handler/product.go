package handler

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/humanoid-ai/humanoid-server/internal/api/http/middleware"
	"github.com/humanoid-ai/humanoid-server/internal/model"
	"github.com/humanoid-ai/humanoid-server/internal/service"
)

// Product serves the product catalog endpoints. Creation accepts multipart
// form data so the image travels with the metadata.
type Product struct {
	products *service.Product
}

func NewProduct(products *service.Product) *Product {
	return &Product{products: products}
}

func (h *Product) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	name := c.PostForm("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	priceCents, err := strconv.ParseInt(c.DefaultPostForm("price_cents", "0"), 10, 64)
	if err != nil || priceCents < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid price"})
		return
	}

	params := service.CreateProductParams{
		OwnerID:     userID,
		Name:        name,
		Description: c.PostForm("description"),
		PriceCents:  priceCents,
	}

	if fileHeader, err := c.FormFile("image"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image"})
			return
		}
		defer file.Close()
		params.Image = file
	}

	product, err := h.products.CreateProduct(c.Request.Context(), params)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, productJSON(product, false))
}

func (h *Product) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	products, err := h.products.GetProducts(c.Request.Context(), userID)
	if err != nil {
		handleError(c, err)
		return
	}

	out := make([]gin.H, 0, len(products))
	for _, p := range products {
		out = append(out, productJSON(p, false))
	}
	c.JSON(http.StatusOK, gin.H{"products": out})
}

func (h *Product) Get(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	product, err := h.products.GetProduct(c.Request.Context(), userID, productID)
	if err != nil {
		handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, productJSON(product, true))
}

// Image streams the product image from object storage.
func (h *Product) Image(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	reader, err := h.products.GetProductImage(c.Request.Context(), userID, productID)
	if err != nil {
		handleError(c, err)
		return
	}
	defer reader.Close()

	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		_ = c.Error(err)
	}
}

func (h *Product) Delete(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	if err := h.products.DeleteProduct(c.Request.Context(), userID, productID); err != nil {
		handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func productJSON(p model.Product, includeDescription bool) gin.H {
	out := gin.H{
		"id":          p.ID,
		"name":        p.Name,
		"price_cents": p.PriceCents,
		"has_image":   p.ImageKey != "",
		"created_at":  p.CreatedAt,
	}
	if includeDescription {
		out["description"] = p.Description
	}
	return out
}
