package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/decoambiente/decoambiente-backend/internal/adapters/repository"
	"github.com/decoambiente/decoambiente-backend/internal/auth"
	"github.com/decoambiente/decoambiente-backend/internal/config"
	"github.com/decoambiente/decoambiente-backend/internal/metrics"
	"github.com/decoambiente/decoambiente-backend/internal/seed"
	"github.com/decoambiente/decoambiente-backend/internal/services/assistant"
	"github.com/decoambiente/decoambiente-backend/internal/services/catalog"
	"github.com/decoambiente/decoambiente-backend/internal/services/importer"
	"github.com/decoambiente/decoambiente-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var validate = utils.NewValidator()

// Dependencies is everything the router needs. Nil repositories mean the database
// is not connected: the catalog serves its fallback list and data routes answer 503.
type Dependencies struct {
	Config      config.Config
	Products    repository.ProductRepository
	Categories  repository.CategoryRepository
	Collections repository.CollectionRepository
	Catalog     *catalog.Service
	Importer    *importer.Importer
	Uploader    utils.ImageUploader
	Writer      *assistant.DescriptionWriter
	Tokens      *utils.TokenManager
	Guard       *auth.Guard
	Google      *auth.GoogleVerifier
	Passwords   *auth.PasswordVerifier
	Metrics     *metrics.Metrics
	Seed        seed.Data
	Ping        func(ctx context.Context) error
}

func (d Dependencies) databaseReady() bool {
	return d.Products != nil && d.Categories != nil && d.Collections != nil
}

// respondError maps repository errors to a status and a message safe to show users.
func respondError(c *gin.Context, err error, what string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, utils.ErrorResponse(what+" not found"))
	case errors.Is(err, repository.ErrDuplicate):
		c.JSON(http.StatusConflict, utils.ErrorResponse(what+" already exists"))
	case errors.Is(err, context.DeadlineExceeded):
		logrus.WithError(err).WithField("path", c.FullPath()).Error("Request timed out")
		c.JSON(http.StatusGatewayTimeout, utils.ErrorResponse("the data service took too long to answer"))
	default:
		logrus.WithError(err).WithField("path", c.FullPath()).Error("Data service error")
		c.JSON(http.StatusInternalServerError, utils.ErrorResponse("something went wrong, please try again later"))
	}
}

func requireDatabase(ready bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ready {
			c.JSON(http.StatusServiceUnavailable, utils.ErrorResponse("Database connection not available"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func invalidate(svc *catalog.Service) {
	if svc != nil {
		svc.Invalidate()
	}
}
