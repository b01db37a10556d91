package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/decoambiente/decoambiente-backend/internal/adapters/repository"
	"github.com/decoambiente/decoambiente-backend/internal/models"
	"github.com/decoambiente/decoambiente-backend/internal/services/assistant"
	"github.com/decoambiente/decoambiente-backend/internal/services/catalog"
	"github.com/decoambiente/decoambiente-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type ProductHandler struct {
	Products repository.ProductRepository
	Catalog  *catalog.Service
	Writer   *assistant.DescriptionWriter
	MaxPrice float64
}

func NewProductHandler(products repository.ProductRepository, svc *catalog.Service, writer *assistant.DescriptionWriter, maxPrice float64) *ProductHandler {
	return &ProductHandler{Products: products, Catalog: svc, Writer: writer, MaxPrice: maxPrice}
}

// FetchProductsPublic serves the catalog. When the store is down the bundled list
// is returned with fallback set.
func (h *ProductHandler) FetchProductsPublic(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	filter := catalog.ParseFilter(c.Request.URL.Query(), h.MaxPrice)
	snapshot, err := h.Catalog.Search(ctx, filter)
	if err != nil {
		respondError(c, err, "products")
		return
	}
	res := gin.H{
		"products": snapshot.Products,
		"count":    len(snapshot.Products),
		"fallback": snapshot.Fallback,
		"filter":   filter,
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("products fetched successfully", res))
}

func (h *ProductHandler) FetchProductsPublicById(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	product, ok, err := h.Catalog.Product(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err, "product")
		return
	}
	if !ok {
		c.JSON(http.StatusNotFound, utils.ErrorResponse("product not found"))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("product fetched successfully", gin.H{
		"product": product,
	}))
}

// GetProducts lists the stored products for the admin, bypassing cache and fallback.
func (h *ProductHandler) GetProducts(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	products, err := h.Products.FindAll(ctx)
	if err != nil {
		respondError(c, err, "products")
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("products fetched successfully", gin.H{
		"products": products,
		"count":    len(products),
	}))
}

func (h *ProductHandler) GetProductById(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	product, err := h.Products.FindByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err, "product")
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("product fetched successfully", gin.H{
		"product": product,
	}))
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var input models.ProductInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid json body"))
		return
	}
	if err := validate.Struct(input); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse(err.Error()))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	product, err := h.Products.Create(ctx, input.ToProduct())
	if err != nil {
		respondError(c, err, "product")
		return
	}
	invalidate(h.Catalog)

	logrus.WithFields(logrus.Fields{"id": product.ID, "name": product.Name}).Info("Product created")
	c.JSON(http.StatusCreated, utils.SuccessResponse("Product created successfully", gin.H{
		"product": product,
	}))
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var update models.ProductUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid json body"))
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

	product, err := h.Products.Update(ctx, c.Param("id"), update)
	if err != nil {
		respondError(c, err, "product")
		return
	}
	invalidate(h.Catalog)

	c.JSON(http.StatusOK, utils.SuccessResponse("Product updated successfully", gin.H{
		"product": product,
	}))
}

func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	id := c.Param("id")
	if err := h.Products.Delete(ctx, id); err != nil {
		respondError(c, err, "product")
		return
	}
	invalidate(h.Catalog)

	logrus.WithField("id", id).Info("Product deleted")
	c.JSON(http.StatusOK, utils.SuccessResponse("Product deleted successfully", gin.H{"id": id}))
}

// GetProductStats backs the dashboard counters.
func (h *ProductHandler) GetProductStats(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	products, err := h.Products.FindAll(ctx)
	if err != nil {
		respondError(c, err, "products")
		return
	}
	byCategory, err := h.Products.CountByCategory(ctx)
	if err != nil {
		respondError(c, err, "products")
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("stats fetched successfully", gin.H{
		"stats":      catalog.Stats(products),
		"byCategory": byCategory,
	}))
}

// DescribeProduct drafts a description with the AI assistant. The draft is returned,
// not saved.
func (h *ProductHandler) DescribeProduct(c *gin.Context) {
	if h.Writer == nil || !h.Writer.Enabled() {
		c.JSON(http.StatusServiceUnavailable, utils.ErrorResponse("description assistant is not configured"))
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	product, err := h.Products.FindByID(ctx, c.Param("id"))
	if err != nil {
		respondError(c, err, "product")
		return
	}

	draft, err := h.Writer.Draft(c.Request.Context(), product)
	if err != nil {
		if errors.Is(err, assistant.ErrDisabled) {
			c.JSON(http.StatusServiceUnavailable, utils.ErrorResponse("description assistant is not configured"))
			return
		}
		logrus.WithError(err).WithField("id", product.ID).Error("Failed to draft description")
		c.JSON(http.StatusBadGateway, utils.ErrorResponse("the assistant could not draft a description"))
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("description drafted", gin.H{
		"id":          product.ID,
		"description": draft,
	}))
}
