package handlers

import (
	"context"
	"math"
	"net/http"
	"time"

	"github.com/decoambiente/decoambiente-backend/internal/adapters/repository"
	"github.com/decoambiente/decoambiente-backend/internal/models"
	"github.com/decoambiente/decoambiente-backend/internal/services/catalog"
	"github.com/decoambiente/decoambiente-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CategoryHandler struct {
	Categories repository.CategoryRepository
	Catalog    *catalog.Service
}

func NewCategoryHandler(categories repository.CategoryRepository, svc *catalog.Service) *CategoryHandler {
	return &CategoryHandler{Categories: categories, Catalog: svc}
}

// counts tallies products per category from the cached catalog. A catalog failure
// yields zero counts rather than failing the listing.
func (h *CategoryHandler) counts(ctx context.Context) (map[string]int, []models.Product) {
	snapshot, err := h.Catalog.Products(ctx)
	if err != nil {
		logrus.WithError(err).Warn("Catalog unavailable, category counts set to zero")
		return map[string]int{}, nil
	}
	return catalog.CategoryCounts(snapshot.Products), snapshot.Products
}

func (h *CategoryHandler) GetAllProductCategories(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	categories, err := h.Categories.FindAll(ctx)
	if err != nil {
		respondError(c, err, "categories")
		return
	}
	counts, _ := h.counts(ctx)
	c.JSON(http.StatusOK, utils.SuccessResponse("categories fetched successfully", gin.H{
		"categories": catalog.WithCounts(categories, counts),
	}))
}

func (h *CategoryHandler) GetCategoryBySlug(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	category, err := h.Categories.FindBySlug(ctx, c.Param("slug"))
	if err != nil {
		respondError(c, err, "category")
		return
	}
	counts, products := h.counts(ctx)
	c.JSON(http.StatusOK, utils.SuccessResponse("category fetched successfully", gin.H{
		"category": models.CategoryWithCount{Category: category, Count: counts[category.Slug]},
		"products": catalog.Apply(products, catalog.Filter{Category: category.Slug, MaxPrice: math.MaxFloat64}),
	}))
}

func (h *CategoryHandler) CreateProductCategory(c *gin.Context) {
	var input models.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid json payload"))
		return
	}
	if err := validate.Struct(input); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse(err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	category, err := h.Categories.Create(ctx, input.ToCategory())
	if err != nil {
		respondError(c, err, "category")
		return
	}
	invalidate(h.Catalog)

	c.JSON(http.StatusCreated, utils.SuccessResponse("category created successfully", gin.H{
		"category": category,
	}))
}

func (h *CategoryHandler) UpdateProductCategory(c *gin.Context) {
	var update models.CategoryUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid json payload"))
		return
	}
	if update.Empty() {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("no fields to update"))
		return
	}
	if err := validate.Struct(update); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse(err.Error()))
		return
	}
	update.Normalize()

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	category, err := h.Categories.Update(ctx, c.Param("id"), update)
	if err != nil {
		respondError(c, err, "category")
		return
	}
	invalidate(h.Catalog)

	c.JSON(http.StatusOK, utils.SuccessResponse("category updated successfully", gin.H{
		"category": category,
	}))
}

// DeleteProductCategory leaves the category's products untouched; they keep the
// dangling slug.
func (h *CategoryHandler) DeleteProductCategory(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	id := c.Param("id")
	if err := h.Categories.Delete(ctx, id); err != nil {
		respondError(c, err, "category")
		return
	}
	invalidate(h.Catalog)

	c.JSON(http.StatusOK, utils.SuccessResponse("category deleted successfully", gin.H{"id": id}))
}
