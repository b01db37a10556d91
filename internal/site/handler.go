package site

import (
	"context"
	"net/http"
	"time"

	"github.com/decoambiente/decoambiente-backend/internal/config"
	"github.com/decoambiente/decoambiente-backend/internal/middleware"
	"github.com/decoambiente/decoambiente-backend/internal/models"
	"github.com/decoambiente/decoambiente-backend/internal/seed"
	"github.com/decoambiente/decoambiente-backend/internal/services/catalog"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

type CategoryLister interface {
	FindAll(ctx context.Context) ([]models.Category, error)
}

type CollectionLister interface {
	FindAll(ctx context.Context) ([]models.Collection, error)
}

type Options struct {
	Catalog        *catalog.Service
	Categories     CategoryLister
	Collections    CollectionLister
	Site           config.Site
	Testimonials   []seed.Testimonial
	MaxPrice       float64
	GoogleClientID string
	PasswordLogin  bool
}

// Handler renders the public pages and the admin shell.
type Handler struct {
	opts Options
	now  func() time.Time
}

func NewHandler(opts Options) *Handler {
	if opts.MaxPrice <= 0 {
		opts.MaxPrice = catalog.DefaultMaxPrice
	}
	return &Handler{opts: opts, now: time.Now}
}

func (h *Handler) page(active, title string, data gin.H) gin.H {
	data["Site"] = h.opts.Site
	data["Nav"] = navLinks
	data["Active"] = active
	data["Title"] = title
	data["WhatsAppURL"] = WhatsAppURL(h.opts.Site.WhatsApp, "")
	return data
}

func (h *Handler) categories(ctx context.Context) []models.Category {
	if h.opts.Categories == nil {
		return []models.Category{}
	}
	categories, err := h.opts.Categories.FindAll(ctx)
	if err != nil {
		logrus.WithError(err).Warn("Categories unavailable, rendering without them")
		return []models.Category{}
	}
	return categories
}

func (h *Handler) collections(ctx context.Context) []models.Collection {
	if h.opts.Collections == nil {
		return []models.Collection{}
	}
	collections, err := h.opts.Collections.FindAll(ctx)
	if err != nil {
		logrus.WithError(err).Warn("Collections unavailable, rendering without them")
		return []models.Collection{}
	}
	return collections
}

func (h *Handler) Home(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	var (
		snapshot    catalog.Snapshot
		categories  []models.Category
		collections []models.Collection
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		snapshot, err = h.opts.Catalog.Products(gctx)
		return err
	})
	g.Go(func() error {
		categories = h.categories(gctx)
		return nil
	})
	g.Go(func() error {
		collections = h.collections(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		logrus.WithError(err).Error("Failed to load home page")
		c.HTML(http.StatusInternalServerError, "error", h.page("", "Error", gin.H{
			"Message": "No pudimos cargar el catálogo. Intenta nuevamente en unos minutos.",
		}))
		return
	}

	now := h.now()
	featuredCollections := []models.Collection{}
	for _, col := range collections {
		if col.Featured && col.Active(now) {
			featuredCollections = append(featuredCollections, col)
		}
	}

	c.HTML(http.StatusOK, "home", h.page("/", h.opts.Site.Name, gin.H{
		"Featured":     catalog.Featured(snapshot.Products),
		"Categories":   catalog.WithCounts(categories, catalog.CategoryCounts(snapshot.Products)),
		"Collections":  featuredCollections,
		"Testimonials": h.opts.Testimonials,
		"Stats":        heroStats,
		"Fallback":     snapshot.Fallback,
	}))
}

func (h *Handler) Catalog(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	filter := catalog.ParseFilter(c.Request.URL.Query(), h.opts.MaxPrice)
	snapshot, err := h.opts.Catalog.Search(ctx, filter)
	if err != nil {
		logrus.WithError(err).Error("Failed to load catalog page")
		c.HTML(http.StatusInternalServerError, "error", h.page("/catalogo", "Error", gin.H{
			"Message": "No pudimos cargar el catálogo. Intenta nuevamente en unos minutos.",
		}))
		return
	}

	c.HTML(http.StatusOK, "catalog", h.page("/catalogo", "Catálogo", gin.H{
		"Products":    snapshot.Products,
		"Count":       len(snapshot.Products),
		"Filter":      filter,
		"Categories":  h.categories(ctx),
		"SortOptions": sortOptions,
		"Fallback":    snapshot.Fallback,
	}))
}

func (h *Handler) About(c *gin.Context) {
	c.HTML(http.StatusOK, "about", h.page("/nosotros", "Nosotros", gin.H{
		"About": about,
	}))
}

func (h *Handler) Contact(c *gin.Context) {
	c.HTML(http.StatusOK, "contact", h.page("/contacto", "Contacto", gin.H{}))
}

// SubmitContact sends the visitor to WhatsApp with the form contents pre-filled.
func (h *Handler) SubmitContact(c *gin.Context) {
	msg := ContactMessage(c.PostForm("nombre"), c.PostForm("mensaje"))
	c.Redirect(http.StatusSeeOther, WhatsAppURL(h.opts.Site.WhatsApp, msg))
}

func (h *Handler) AdminLogin(c *gin.Context) {
	c.HTML(http.StatusOK, "admin_login", h.page("/admin", "Administración", gin.H{
		"GoogleClientID": h.opts.GoogleClientID,
		"PasswordLogin":  h.opts.PasswordLogin,
	}))
}

func (h *Handler) AdminDashboard(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	snapshot, err := h.opts.Catalog.Products(ctx)
	if err != nil {
		logrus.WithError(err).Error("Failed to load dashboard")
		c.HTML(http.StatusInternalServerError, "error", h.page("/admin", "Error", gin.H{
			"Message": "No pudimos cargar los productos.",
		}))
		return
	}
	catalog.Sort(snapshot.Products, catalog.SortNameAsc)

	c.HTML(http.StatusOK, "admin_dashboard", h.page("/admin", "Panel", gin.H{
		"Email":       c.GetString(middleware.ContextEmail),
		"Stats":       catalog.Stats(snapshot.Products),
		"Products":    snapshot.Products,
		"Categories":  len(h.categories(ctx)),
		"Collections": len(h.collections(ctx)),
		"Fallback":    snapshot.Fallback,
	}))
}
