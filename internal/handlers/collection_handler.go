package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/decoambiente/decoambiente-backend/internal/adapters/repository"
	"github.com/decoambiente/decoambiente-backend/internal/models"
	"github.com/decoambiente/decoambiente-backend/internal/services/catalog"
	"github.com/decoambiente/decoambiente-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

type CollectionHandler struct {
	Collections repository.CollectionRepository
	Products    repository.ProductRepository
	Catalog     *catalog.Service
	Now         func() time.Time
}

func NewCollectionHandler(collections repository.CollectionRepository, products repository.ProductRepository, svc *catalog.Service) *CollectionHandler {
	return &CollectionHandler{Collections: collections, Products: products, Catalog: svc, Now: time.Now}
}

type productIDsInput struct {
	ProductIDs []string `json:"productIds" validate:"required,min=1,dive,required"`
}

// GetCollections lists collections. ?featured=true and ?active=true narrow the list.
func (h *CollectionHandler) GetCollections(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	featuredOnly, _ := strconv.ParseBool(c.Query("featured"))
	activeOnly, _ := strconv.ParseBool(c.Query("active"))

	collections, err := h.Collections.FindAll(ctx)
	if err != nil {
		respondError(c, err, "collections")
		return
	}

	now := h.Now()
	out := make([]models.Collection, 0, len(collections))
	for _, col := range collections {
		if featuredOnly && !col.Featured {
			continue
		}
		if activeOnly && !col.Active(now) {
			continue
		}
		out = append(out, col)
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("collections fetched successfully", gin.H{
		"collections": out,
	}))
}

// GetCollectionBySlug returns the collection with its products resolved in list order.
// Ids that no longer exist are skipped.
func (h *CollectionHandler) GetCollectionBySlug(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	collection, err := h.Collections.FindBySlug(ctx, c.Param("slug"))
	if err != nil {
		respondError(c, err, "collection")
		return
	}

	products := h.resolve(ctx, collection.ProductIDs)
	c.JSON(http.StatusOK, utils.SuccessResponse("collection fetched successfully", gin.H{
		"collection": models.CollectionDetail{
			Collection:   collection,
			ProductCount: len(products),
			Products:     products,
		},
	}))
}

func (h *CollectionHandler) resolve(ctx context.Context, ids []string) []models.Product {
	if len(ids) == 0 {
		return []models.Product{}
	}
	products, err := h.Products.FindByIDs(ctx, ids)
	if err == nil {
		return products
	}
	logrus.WithError(err).Warn("Product lookup failed, resolving collection from the catalog")

	snapshot, err := h.Catalog.Products(ctx)
	if err != nil {
		return []models.Product{}
	}
	out := make([]models.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := catalog.FindByID(snapshot.Products, id); ok {
			out = append(out, p)
		}
	}
	return out
}

func (h *CollectionHandler) CreateCollection(c *gin.Context) {
	var input models.CollectionInput
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

	collection, err := h.Collections.Create(ctx, input.ToCollection())
	if err != nil {
		respondError(c, err, "collection")
		return
	}
	invalidate(h.Catalog)

	c.JSON(http.StatusCreated, utils.SuccessResponse("collection created successfully", gin.H{
		"collection": collection,
	}))
}

func (h *CollectionHandler) UpdateCollection(c *gin.Context) {
	var update models.CollectionUpdate
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

	collection, err := h.Collections.Update(ctx, c.Param("id"), update)
	if err != nil {
		respondError(c, err, "collection")
		return
	}
	invalidate(h.Catalog)

	c.JSON(http.StatusOK, utils.SuccessResponse("collection updated successfully", gin.H{
		"collection": collection,
	}))
}

func (h *CollectionHandler) DeleteCollection(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	id := c.Param("id")
	if err := h.Collections.Delete(ctx, id); err != nil {
		respondError(c, err, "collection")
		return
	}
	invalidate(h.Catalog)

	c.JSON(http.StatusOK, utils.SuccessResponse("collection deleted successfully", gin.H{"id": id}))
}

func (h *CollectionHandler) AddProducts(c *gin.Context) {
	h.changeProducts(c, h.Collections.AddProducts, "products added to collection")
}

func (h *CollectionHandler) RemoveProducts(c *gin.Context) {
	h.changeProducts(c, h.Collections.RemoveProducts, "products removed from collection")
}

func (h *CollectionHandler) changeProducts(c *gin.Context, apply func(context.Context, string, []string) (models.Collection, error), message string) {
	var input productIDsInput
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

	collection, err := apply(ctx, c.Param("id"), models.UniqueIDs(input.ProductIDs))
	if err != nil {
		respondError(c, err, "collection")
		return
	}
	invalidate(h.Catalog)

	c.JSON(http.StatusOK, utils.SuccessResponse(message, gin.H{
		"collection": collection,
	}))
}
