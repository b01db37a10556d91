package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/decoambiente/decoambiente-backend/internal/adapters/repository"
	"github.com/decoambiente/decoambiente-backend/internal/seed"
	"github.com/decoambiente/decoambiente-backend/internal/services/catalog"
	"github.com/decoambiente/decoambiente-backend/utils"
	"github.com/gin-gonic/gin"
)

type SeedHandler struct {
	Categories  repository.CategoryRepository
	Collections repository.CollectionRepository
	Catalog     *catalog.Service
	Data        seed.Data
}

// SeedCatalog creates the initial categories and collections. Existing slugs are skipped.
func (h *SeedHandler) SeedCatalog(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	result := seed.Run(ctx, h.Data, h.Categories, h.Collections)
	invalidate(h.Catalog)

	c.JSON(http.StatusOK, utils.SuccessResponse("seed finished", result))
}
