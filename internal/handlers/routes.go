package handlers

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/decoambiente/decoambiente-backend/internal/middleware"
	"github.com/decoambiente/decoambiente-backend/internal/site"
	"github.com/decoambiente/decoambiente-backend/utils"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// SetupRouter builds the engine with the middleware stack, templates and routes.
func SetupRouter(deps Dependencies) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())
	if deps.Metrics != nil {
		router.Use(middleware.Metrics(deps.Metrics))
	}
	if origins := deps.Config.Server.CORSOrigins; len(origins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	templates, err := site.Templates(deps.Config.Site.Locale)
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	router.SetHTMLTemplate(templates)

	SetupRoutes(router, deps)
	return router, nil
}

func SetupRoutes(router *gin.Engine, deps Dependencies) {
	logrus.Info("Setting up routes...")
	cfg := deps.Config

	router.GET("/health", func(c *gin.Context) {
		status := "connected"
		if !deps.databaseReady() {
			status = "unavailable"
		} else if deps.Ping != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := deps.Ping(ctx); err != nil {
				status = "unreachable"
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"service":  "decoambiente-backend",
			"database": status,
		})
	})
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Metrics.Registry, promhttp.HandlerOpts{})))
	}

	dbReady := deps.databaseReady()
	if !dbReady {
		logrus.Warn("Database not connected - running with limited functionality")
	}

	sessionCookie := cfg.Auth.CookieName
	authRequired := middleware.AuthMiddleware(deps.Tokens, sessionCookie)
	adminOnly := middleware.AdminGuard(deps.Guard)

	// Site pages
	pages := site.NewHandler(site.Options{
		Catalog:        deps.Catalog,
		Categories:     deps.Categories,
		Collections:    deps.Collections,
		Site:           cfg.Site,
		Testimonials:   deps.Seed.Testimonials,
		MaxPrice:       cfg.Catalog.MaxPrice,
		GoogleClientID: cfg.Auth.GoogleClientID,
		PasswordLogin:  deps.Passwords.Enabled(),
	})
	router.GET("/", pages.Home)
	router.GET("/catalogo", pages.Catalog)
	router.GET("/nosotros", pages.About)
	router.GET("/contacto", pages.Contact)
	router.POST("/contacto", pages.SubmitContact)
	router.GET("/admin", pages.AdminLogin)
	router.GET("/admin/dashboard",
		middleware.OptionalAuth(deps.Tokens, sessionCookie),
		middleware.AdminPageGuard(deps.Guard, "/admin"),
		pages.AdminDashboard,
	)

	productHandler := NewProductHandler(deps.Products, deps.Catalog, deps.Writer, cfg.Catalog.MaxPrice)
	categoryHandler := NewCategoryHandler(deps.Categories, deps.Catalog)
	collectionHandler := NewCollectionHandler(deps.Collections, deps.Products, deps.Catalog)
	importHandler := NewImportHandler(deps.Importer, cfg.Import.MaxUploadMB)
	uploadHandler := NewUploadHandler(deps.Uploader)
	contactHandler := &ContactHandler{WhatsApp: cfg.Site.WhatsApp}
	seedHandler := &SeedHandler{
		Categories:  deps.Categories,
		Collections: deps.Collections,
		Catalog:     deps.Catalog,
		Data:        deps.Seed,
	}
	authHandler := &AuthHandler{
		Tokens:       deps.Tokens,
		Guard:        deps.Guard,
		Google:       deps.Google,
		Passwords:    deps.Passwords,
		CookieName:   sessionCookie,
		CookieSecure: cfg.Auth.CookieSecure,
	}

	// Public Routes
	api := router.Group("/api/v1")
	{
		// served from the catalog cache, which falls back to the bundled list
		api.GET("/products", productHandler.FetchProductsPublic)
		api.GET("/products/:id", productHandler.FetchProductsPublicById)
		api.POST("/contact", contactHandler.CreateContactLink)

		data := api.Group("", requireDatabase(dbReady))
		{
			data.GET("/categories", categoryHandler.GetAllProductCategories)
			data.GET("/categories/:slug", categoryHandler.GetCategoryBySlug)
			data.GET("/collections", collectionHandler.GetCollections)
			data.GET("/collections/:slug", collectionHandler.GetCollectionBySlug)
		}
	}

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/google", authHandler.GoogleSignIn)
		authGroup.POST("/login", authHandler.LoginUser)
		authGroup.POST("/logout", authHandler.Logout)
		authGroup.GET("/me", authRequired, adminOnly, authHandler.Me)
	}

	// Admin Routes
	admin := api.Group("/admin")
	admin.Use(authRequired, middleware.RoleMiddleware(utils.RoleAdmin), adminOnly, requireDatabase(dbReady))
	{
		products := admin.Group("/products")
		{
			products.GET("", productHandler.GetProducts)
			products.POST("", productHandler.CreateProduct)
			products.GET("/stats", productHandler.GetProductStats)
			products.GET("/:id", productHandler.GetProductById)
			products.PUT("/:id", productHandler.UpdateProduct)
			products.DELETE("/:id", productHandler.DeleteProduct)
			products.POST("/:id/describe", productHandler.DescribeProduct)
		}

		categories := admin.Group("/categories")
		{
			categories.GET("", categoryHandler.GetAllProductCategories)
			categories.POST("", categoryHandler.CreateProductCategory)
			categories.PUT("/:id", categoryHandler.UpdateProductCategory)
			categories.DELETE("/:id", categoryHandler.DeleteProductCategory)
		}

		collections := admin.Group("/collections")
		{
			collections.GET("", collectionHandler.GetCollections)
			collections.POST("", collectionHandler.CreateCollection)
			collections.PUT("/:id", collectionHandler.UpdateCollection)
			collections.DELETE("/:id", collectionHandler.DeleteCollection)
			collections.POST("/:id/products", collectionHandler.AddProducts)
			collections.DELETE("/:id/products", collectionHandler.RemoveProducts)
		}

		admin.POST("/import/preview", importHandler.PreviewImport)
		admin.POST("/import", importHandler.ImportProducts)

		// Media Routes
		admin.POST("/upload", uploadHandler.UploadImage)

		admin.POST("/seed", seedHandler.SeedCatalog)
	}
}
