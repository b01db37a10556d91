package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/decoambiente/decoambiente-backend/internal/adapters/repository"
	"github.com/decoambiente/decoambiente-backend/internal/auth"
	"github.com/decoambiente/decoambiente-backend/internal/config"
	"github.com/decoambiente/decoambiente-backend/internal/metrics"
	"github.com/decoambiente/decoambiente-backend/internal/models"
	"github.com/decoambiente/decoambiente-backend/internal/seed"
	"github.com/decoambiente/decoambiente-backend/internal/services/assistant"
	"github.com/decoambiente/decoambiente-backend/internal/services/catalog"
	"github.com/decoambiente/decoambiente-backend/internal/services/importer"
	"github.com/decoambiente/decoambiente-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	ownerEmail = "owner@decoambiente.cl"
	cookieName = "deco_session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

type testEnv struct {
	router      *gin.Engine
	deps        Dependencies
	products    *MockProductRepository
	categories  *MockCategoryRepository
	collections *MockCollectionRepository
	tokens      *utils.TokenManager
	allow       *auth.AllowList
}

func testConfig() config.Config {
	return config.Config{
		Auth: config.Auth{CookieName: cookieName},
		Catalog: config.Catalog{
			CacheTTL: time.Minute,
			MaxPrice: 2000000,
			Fallback: true,
		},
		Import: config.Import{MaxUploadMB: 1},
		Site: config.Site{
			Name:     "Deco Ambiente",
			Locale:   "es-CL",
			WhatsApp: "+56 9 8765 4321",
		},
	}
}

func newTestEnv(t *testing.T, customize ...func(*Dependencies)) *testEnv {
	t.Helper()
	env := &testEnv{
		products:    new(MockProductRepository),
		categories:  new(MockCategoryRepository),
		collections: new(MockCollectionRepository),
		tokens:      utils.NewTokenManager("test-secret", time.Hour),
		allow:       auth.NewAllowList([]string{ownerEmail}),
	}
	data, err := seed.Load()
	require.NoError(t, err)
	m := metrics.New()
	svc := catalog.NewService(env.products, catalog.Options{
		TTL:         time.Minute,
		UseFallback: true,
		Fallback:    data.Products,
		Metrics:     m,
	})

	env.deps = Dependencies{
		Config:      testConfig(),
		Products:    env.products,
		Categories:  env.categories,
		Collections: env.collections,
		Catalog:     svc,
		Importer:    importer.New(env.products, utils.NewValidator(), importer.WithOnCreated(svc.Invalidate)),
		Tokens:      env.tokens,
		Guard:       auth.NewGuard(env.allow, env.tokens.Ready),
		Google:      auth.NewGoogleVerifier(""),
		Passwords:   auth.NewPasswordVerifier(nil),
		Metrics:     m,
		Seed:        data,
	}
	for _, fn := range customize {
		fn(&env.deps)
	}

	router, err := SetupRouter(env.deps)
	require.NoError(t, err)
	env.router = router
	return env
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()
	token, err := e.tokens.GenerateToken(ownerEmail, "Owner", utils.RoleAdmin)
	require.NoError(t, err)
	return token
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) request(method, target string, body interface{}, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return e.do(req)
}

func decode(t *testing.T, w *httptest.ResponseRecorder, data interface{}) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	if data != nil {
		require.NoError(t, json.Unmarshal(env.Data, data), string(env.Data))
	}
	return env
}

func multipartFile(t *testing.T, field, filename string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func storedProducts() []models.Product {
	return []models.Product{
		{ID: "p1", Name: "Sofá Riviera", Category: "living", Price: 1890000, Featured: true, Tags: []string{}},
		{ID: "p2", Name: "Mesa Travertino", Category: "living", Price: 670000, Featured: true, Tags: []string{}},
		{ID: "p3", Name: "Lámpara Arc", Category: "iluminacion", Price: 420000, Tags: []string{}},
	}
}

type productsPayload struct {
	Products []models.Product `json:"products"`
	Count    int              `json:"count"`
	Fallback bool             `json:"fallback"`
}

func names(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t, func(d *Dependencies) {
		d.Ping = func(context.Context) error { return errors.New("no primary") }
	})

	w := env.request(http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"healthy","service":"decoambiente-backend","database":"unreachable"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestPublicProductsFilterAndSort(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("FindAll", mock.Anything).Return(storedProducts(), nil).Once()

	w := env.request(http.MethodGet, "/api/v1/products?categoria=living&sort=precio-asc", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var payload productsPayload
	decode(t, w, &payload)
	assert.Equal(t, []string{"Mesa Travertino", "Sofá Riviera"}, names(payload.Products))
	assert.Equal(t, 2, payload.Count)
	assert.False(t, payload.Fallback)

	// served from cache
	w = env.request(http.MethodGet, "/api/v1/products/p3", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	env.products.AssertNumberOfCalls(t, "FindAll", 1)
}

func TestPublicProductsFallBackWhenStoreFails(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("FindAll", mock.Anything).Return(nil, errors.New("connection refused"))

	w := env.request(http.MethodGet, "/api/v1/products", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var payload productsPayload
	decode(t, w, &payload)
	assert.True(t, payload.Fallback)
	assert.Len(t, payload.Products, 6)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestPublicProductNotFound(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("FindAll", mock.Anything).Return(storedProducts(), nil)

	w := env.request(http.MethodGet, "/api/v1/products/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "product not found", decode(t, w, nil).Error)
}

func TestAdminRoutesAreGuarded(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("FindAll", mock.Anything).Return(storedProducts(), nil)

	w := env.request(http.MethodGet, "/api/v1/admin/products", nil, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.request(http.MethodGet, "/api/v1/admin/products", nil, "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	stranger, err := env.tokens.GenerateToken("visitor@gmail.com", "", utils.RoleAdmin)
	require.NoError(t, err)
	w = env.request(http.MethodGet, "/api/v1/admin/products", nil, stranger)
	assert.Equal(t, http.StatusForbidden, w.Code)

	token := env.adminToken(t)
	w = env.request(http.MethodGet, "/api/v1/admin/products", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)

	// removing the email from the list revokes tokens already issued
	env.allow.Replace(nil)
	w = env.request(http.MethodGet, "/api/v1/admin/products", nil, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestAdminRoutesPendingWithoutSecret(t *testing.T) {
	env := newTestEnv(t, func(d *Dependencies) {
		d.Tokens = utils.NewTokenManager("", time.Hour)
		d.Guard = auth.NewGuard(auth.NewAllowList([]string{ownerEmail}), d.Tokens.Ready)
	})

	w := env.request(http.MethodGet, "/api/v1/admin/products", nil, "whatever")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}

func TestCreateProduct(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)
	env.products.On("FindAll", mock.Anything).Return(storedProducts(), nil)

	w := env.request(http.MethodPost, "/api/v1/admin/products", gin.H{"name": "Silla", "price": 0}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.request(http.MethodPost, "/api/v1/admin/products", "not an object", token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// prime the cache
	require.Equal(t, http.StatusOK, env.request(http.MethodGet, "/api/v1/products", nil, "").Code)

	env.products.On("Create", mock.Anything, mock.MatchedBy(func(p models.Product) bool {
		return p.Name == "Silla Eames" && p.Category == "comedor" && p.Emoji == models.DefaultProductEmoji
	})).Return(models.Product{ID: "p9", Name: "Silla Eames", Category: "comedor", Price: 150000}, nil).Once()

	w = env.request(http.MethodPost, "/api/v1/admin/products", gin.H{
		"name": "Silla Eames", "category": "Comedor", "price": 150000,
	}, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var payload struct {
		Product models.Product `json:"product"`
	}
	decode(t, w, &payload)
	assert.Equal(t, "p9", payload.Product.ID)

	// the mutation dropped the cached list
	require.Equal(t, http.StatusOK, env.request(http.MethodGet, "/api/v1/products", nil, "").Code)
	env.products.AssertNumberOfCalls(t, "FindAll", 2)
	env.products.AssertExpectations(t)
}

func TestUpdateProduct(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	w := env.request(http.MethodPut, "/api/v1/admin/products/p1", gin.H{}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "no fields to update", decode(t, w, nil).Error)

	w = env.request(http.MethodPut, "/api/v1/admin/products/p1", gin.H{"price": -5}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env.products.On("Update", mock.Anything, "missing", mock.AnythingOfType("models.ProductUpdate")).
		Return(models.Product{}, repository.ErrNotFound).Once()
	w = env.request(http.MethodPut, "/api/v1/admin/products/missing", gin.H{"featured": false}, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	env.products.On("Update", mock.Anything, "p1", mock.MatchedBy(func(u models.ProductUpdate) bool {
		return u.Category != nil && *u.Category == "living" && u.Featured != nil && !*u.Featured && u.Name == nil
	})).Return(models.Product{ID: "p1", Name: "Sofá Riviera", Category: "living"}, nil).Once()
	w = env.request(http.MethodPut, "/api/v1/admin/products/p1", gin.H{"category": " LIVING ", "featured": false}, token)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	env.products.AssertExpectations(t)
}

func TestDeleteProduct(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)
	env.products.On("Delete", mock.Anything, "p1").Return(nil).Once()
	env.products.On("Delete", mock.Anything, "p2").Return(fmt.Errorf("delete product p2: %w", errors.New("socket closed"))).Once()

	w := env.request(http.MethodDelete, "/api/v1/admin/products/p1", nil, token)
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.request(http.MethodDelete, "/api/v1/admin/products/p2", nil, token)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "socket closed")
}

func TestProductStats(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("FindAll", mock.Anything).Return(storedProducts(), nil)
	env.products.On("CountByCategory", mock.Anything).Return(map[string]int{"living": 2, "iluminacion": 1}, nil)

	w := env.request(http.MethodGet, "/api/v1/admin/products/stats", nil, env.adminToken(t))
	require.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		Stats      models.ProductStats `json:"stats"`
		ByCategory map[string]int      `json:"byCategory"`
	}
	decode(t, w, &payload)
	assert.Equal(t, models.ProductStats{Total: 3, Featured: 2, Categories: 2}, payload.Stats)
	assert.Equal(t, 2, payload.ByCategory["living"])
}

type stubGenerator struct {
	answer string
	err    error
}

func (s stubGenerator) Generate(context.Context, string) (string, error) {
	return s.answer, s.err
}

func TestDescribeProduct(t *testing.T) {
	env := newTestEnv(t)
	w := env.request(http.MethodPost, "/api/v1/admin/products/p1/describe", nil, env.adminToken(t))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	env = newTestEnv(t, func(d *Dependencies) {
		d.Writer = assistant.NewDescriptionWriter(stubGenerator{answer: `"Sofá de lino natural."`})
	})
	env.products.On("FindByID", mock.Anything, "p1").Return(storedProducts()[0], nil)

	w = env.request(http.MethodPost, "/api/v1/admin/products/p1/describe", nil, env.adminToken(t))
	require.Equal(t, http.StatusOK, w.Code)
	var payload struct {
		Description string `json:"description"`
	}
	decode(t, w, &payload)
	assert.Equal(t, "Sofá de lino natural.", payload.Description)
}

func TestCategories(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("FindAll", mock.Anything).Return(storedProducts(), nil)
	env.categories.On("FindAll", mock.Anything).Return([]models.Category{
		{ID: "c1", Slug: "living", Name: "Living"},
		{ID: "c2", Slug: "jardin", Name: "Jardin"},
	}, nil)

	w := env.request(http.MethodGet, "/api/v1/categories", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var payload struct {
		Categories []models.CategoryWithCount `json:"categories"`
	}
	decode(t, w, &payload)
	require.Len(t, payload.Categories, 2)
	assert.Equal(t, 2, payload.Categories[0].Count)
	assert.Equal(t, 0, payload.Categories[1].Count)

	env.categories.On("FindBySlug", mock.Anything, "living").Return(models.Category{ID: "c1", Slug: "living", Name: "Living"}, nil)
	w = env.request(http.MethodGet, "/api/v1/categories/living", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var detail struct {
		Category models.CategoryWithCount `json:"category"`
		Products []models.Product         `json:"products"`
	}
	decode(t, w, &detail)
	assert.Equal(t, 2, detail.Category.Count)
	assert.Len(t, detail.Products, 2)
}

func TestCreateCategoryDuplicate(t *testing.T) {
	env := newTestEnv(t)
	env.categories.On("Create", mock.Anything, mock.MatchedBy(func(c models.Category) bool {
		return c.Slug == "living" && c.Emoji == models.DefaultCategoryEmoji
	})).Return(models.Category{}, fmt.Errorf("insert category: %w", repository.ErrDuplicate))

	w := env.request(http.MethodPost, "/api/v1/admin/categories", gin.H{"slug": "Living", "name": "Living"}, env.adminToken(t))
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "category already exists", decode(t, w, nil).Error)

	w = env.request(http.MethodPost, "/api/v1/admin/categories", gin.H{"slug": "living"}, env.adminToken(t))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCollectionsFilters(t *testing.T) {
	env := newTestEnv(t)
	env.collections.On("FindAll", mock.Anything).Return([]models.Collection{
		{ID: "1", Slug: "vintage", Name: "Vintage", Featured: true},
		{ID: "2", Slug: "pasada", Name: "Pasada", Featured: true, StartDate: "2019-01-01", EndDate: "2020-01-31"},
		{ID: "3", Slug: "futura", Name: "Futura", Featured: true, StartDate: "2999-01-01"},
		{ID: "4", Slug: "minimalista", Name: "Minimalista"},
	}, nil)

	slugs := func(target string) []string {
		w := env.request(http.MethodGet, target, nil, "")
		require.Equal(t, http.StatusOK, w.Code)
		var payload struct {
			Collections []models.Collection `json:"collections"`
		}
		decode(t, w, &payload)
		out := []string{}
		for _, c := range payload.Collections {
			out = append(out, c.Slug)
		}
		return out
	}

	assert.Equal(t, []string{"vintage", "pasada", "futura", "minimalista"}, slugs("/api/v1/collections"))
	assert.Equal(t, []string{"vintage", "pasada", "futura"}, slugs("/api/v1/collections?featured=true"))
	assert.Equal(t, []string{"vintage"}, slugs("/api/v1/collections?featured=true&active=true"))
}

func TestCollectionBySlugResolvesProducts(t *testing.T) {
	env := newTestEnv(t)
	col := models.Collection{ID: "c1", Slug: "vintage", Name: "Vintage", ProductIDs: []string{"p3", "p1", "gone"}}
	env.collections.On("FindBySlug", mock.Anything, "vintage").Return(col, nil)
	env.collections.On("FindBySlug", mock.Anything, "nada").Return(models.Collection{}, repository.ErrNotFound)

	all := storedProducts()
	env.products.On("FindByIDs", mock.Anything, []string{"p3", "p1", "gone"}).Return([]models.Product{all[2], all[0]}, nil).Once()

	w := env.request(http.MethodGet, "/api/v1/collections/vintage", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var payload struct {
		Collection models.CollectionDetail `json:"collection"`
	}
	decode(t, w, &payload)
	assert.Equal(t, 2, payload.Collection.ProductCount)
	assert.Equal(t, []string{"Lámpara Arc", "Sofá Riviera"}, names(payload.Collection.Products))

	// a failed lookup resolves from the cached catalog instead
	env.products.On("FindByIDs", mock.Anything, mock.Anything).Return(nil, errors.New("timeout")).Once()
	env.products.On("FindAll", mock.Anything).Return(all, nil)
	w = env.request(http.MethodGet, "/api/v1/collections/vintage", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &payload)
	assert.Equal(t, []string{"Lámpara Arc", "Sofá Riviera"}, names(payload.Collection.Products))

	w = env.request(http.MethodGet, "/api/v1/collections/nada", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCollectionProducts(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	w := env.request(http.MethodPost, "/api/v1/admin/collections/c1/products", gin.H{"productIds": []string{}}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env.collections.On("AddProducts", mock.Anything, "c1", []string{"p1", "p2"}).
		Return(models.Collection{ID: "c1", ProductIDs: []string{"p1", "p2"}}, nil).Once()
	w = env.request(http.MethodPost, "/api/v1/admin/collections/c1/products", gin.H{"productIds": []string{"p1", " p2", "p1"}}, token)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	env.collections.On("RemoveProducts", mock.Anything, "c1", []string{"p1"}).
		Return(models.Collection{ID: "c1", ProductIDs: []string{"p2"}}, nil).Once()
	req := httptest.NewRequest(http.MethodDelete, "/api/v1/admin/collections/c1/products", strings.NewReader(`{"productIds":["p1"]}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w = env.do(req)
	assert.Equal(t, http.StatusOK, w.Code)
	env.collections.AssertExpectations(t)
}

func TestCreateCollectionValidatesDates(t *testing.T) {
	env := newTestEnv(t)
	w := env.request(http.MethodPost, "/api/v1/admin/collections", gin.H{
		"slug": "otono", "name": "Otoño", "startDate": "marzo",
	}, env.adminToken(t))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateCollectionRejectsInvertedRange(t *testing.T) {
	env := newTestEnv(t)
	w := env.request(http.MethodPost, "/api/v1/admin/collections", gin.H{
		"slug": "otono", "name": "Otoño", "startDate": "2026-05-01", "endDate": "2026-04-01",
	}, env.adminToken(t))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w, nil).Error, "endDate")
	env.collections.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateRejectsInvalidImageURL(t *testing.T) {
	env := newTestEnv(t)
	token := env.adminToken(t)

	w := env.request(http.MethodPut, "/api/v1/admin/products/p1", gin.H{"imageUrl": "not a url"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decode(t, w, nil).Error, "imageUrl")

	w = env.request(http.MethodPut, "/api/v1/admin/collections/c1", gin.H{"imageUrl": "not a url"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	env.products.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	env.collections.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestImportPreview(t *testing.T) {
	env := newTestEnv(t)
	csv := "nombre;precio;categoria\nSofá Riviera;$1.890.000;Living\nSin precio;;living\n"
	body, contentType := multipartFile(t, "file", "catalogo.csv", []byte(csv))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/import/preview", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+env.adminToken(t))
	w := env.do(req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var payload importer.Preview
	decode(t, w, &payload)
	require.Len(t, payload.Products, 1)
	assert.Equal(t, float64(1890000), payload.Products[0].Price)
	require.Len(t, payload.Skipped, 1)
	assert.Equal(t, 3, payload.Skipped[0].Row)
	env.products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestImportPreviewRejectsUnknownFormat(t *testing.T) {
	env := newTestEnv(t)
	body, contentType := multipartFile(t, "file", "catalogo.pdf", []byte("%PDF"))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/import/preview", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+env.adminToken(t))
	w := env.do(req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, importer.ErrUnsupportedFormat.Error(), decode(t, w, nil).Error)
}

func TestImportProductsKeepsGoingOnFailure(t *testing.T) {
	env := newTestEnv(t)
	env.products.On("Create", mock.Anything, mock.MatchedBy(func(p models.Product) bool { return p.Name == "Sofá" })).
		Return(models.Product{ID: "n1", Name: "Sofá"}, nil).Once()
	env.products.On("Create", mock.Anything, mock.MatchedBy(func(p models.Product) bool { return p.Name == "Mesa" })).
		Return(models.Product{}, errors.New("write conflict")).Once()

	w := env.request(http.MethodPost, "/api/v1/admin/import", gin.H{"products": []gin.H{
		{"name": "Sofá", "price": 100},
		{"name": "Mesa", "price": 200},
	}}, env.adminToken(t))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var payload struct {
		Created int      `json:"created"`
		Failed  int      `json:"failed"`
		Errors  []string `json:"errors"`
	}
	decode(t, w, &payload)
	assert.Equal(t, 1, payload.Created)
	assert.Equal(t, 1, payload.Failed)
	assert.Equal(t, []string{"Mesa: write conflict"}, payload.Errors)

	w = env.request(http.MethodPost, "/api/v1/admin/import", gin.H{"products": []gin.H{}}, env.adminToken(t))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

type fakeUploader struct {
	filename string
	size     int
}

func (f *fakeUploader) Upload(_ context.Context, file io.Reader, filename string) (string, error) {
	b, err := io.ReadAll(file)
	if err != nil {
		return "", err
	}
	f.filename, f.size = filename, len(b)
	return "https://res.cloudinary.com/demo/image/upload/" + filename, nil
}

func upload(t *testing.T, env *testEnv, filename string, content []byte) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartFile(t, "image", filename, content)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/admin/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+env.adminToken(t))
	return env.do(req)
}

func TestUploadImage(t *testing.T) {
	png := append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

	env := newTestEnv(t)
	w := upload(t, env, "foto.png", png)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	uploader := &fakeUploader{}
	env = newTestEnv(t, func(d *Dependencies) { d.Uploader = uploader })

	w = upload(t, env, "notas.txt", []byte("hola, esto no es una imagen"))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = upload(t, env, "foto", png)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.True(t, strings.HasSuffix(uploader.filename, ".png"))
	assert.Equal(t, len(png), uploader.size, "the whole file is uploaded after sniffing")

	var payload struct {
		URL  string `json:"url"`
		Type string `json:"type"`
	}
	decode(t, w, &payload)
	assert.Equal(t, "image/png", payload.Type)
	assert.Contains(t, payload.URL, uploader.filename)
}

func TestPasswordLoginFlow(t *testing.T) {
	hash, err := auth.HashPassword("correct-horse")
	require.NoError(t, err)
	env := newTestEnv(t, func(d *Dependencies) {
		d.Passwords = auth.NewPasswordVerifier(map[string]string{
			ownerEmail:           hash,
			"former@example.com": hash,
		})
	})

	w := env.request(http.MethodPost, "/api/v1/auth/login", gin.H{"email": ownerEmail, "password": "wrong-horse"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.request(http.MethodPost, "/api/v1/auth/login", gin.H{"email": "former@example.com", "password": "correct-horse"}, "")
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = env.request(http.MethodPost, "/api/v1/auth/login", gin.H{"email": "OWNER@decoambiente.cl", "password": "correct-horse"}, "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var session *http.Cookie
	for _, c := range w.Result().Cookies() {
		if c.Name == cookieName {
			session = c
		}
	}
	require.NotNil(t, session)
	assert.True(t, session.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, session.SameSite)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.AddCookie(session)
	w = env.do(req)
	require.Equal(t, http.StatusOK, w.Code)
	var me struct {
		Email string `json:"email"`
		Role  string `json:"role"`
	}
	decode(t, w, &me)
	assert.Equal(t, ownerEmail, me.Email)
	assert.Equal(t, utils.RoleAdmin, me.Role)

	req = httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	req.AddCookie(session)
	env.products.On("FindAll", mock.Anything).Return(storedProducts(), nil)
	env.categories.On("FindAll", mock.Anything).Return([]models.Category{}, nil)
	env.collections.On("FindAll", mock.Anything).Return([]models.Collection{}, nil)
	w = env.do(req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), ownerEmail)

	w = env.request(http.MethodPost, "/api/v1/auth/logout", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestLoginDisabledAndGoogleDisabled(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(http.MethodPost, "/api/v1/auth/login", gin.H{"email": ownerEmail, "password": "x"}, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = env.request(http.MethodPost, "/api/v1/auth/google", gin.H{"idToken": "abc"}, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = env.request(http.MethodPost, "/api/v1/auth/google", gin.H{}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminDashboardRedirectsVisitors(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(http.MethodGet, "/admin/dashboard", nil, "")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/admin", w.Header().Get("Location"))
}

func TestContactLink(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(http.MethodPost, "/api/v1/contact", gin.H{"nombre": "Ana", "mensaje": "¿Hacen envíos?"}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var payload struct {
		WhatsAppURL string `json:"whatsappUrl"`
	}
	decode(t, w, &payload)
	u, err := url.Parse(payload.WhatsAppURL)
	require.NoError(t, err)
	assert.Equal(t, "/56987654321", u.Path)
	assert.Equal(t, "Hola! Me contacto desde la web. Soy Ana y quería consultar: ¿Hacen envíos?", u.Query().Get("text"))
}

func TestSeedSkipsExisting(t *testing.T) {
	env := newTestEnv(t)
	env.categories.On("Create", mock.Anything, mock.Anything).Return(models.Category{ID: "c"}, nil)
	env.collections.On("Create", mock.Anything, mock.Anything).Return(models.Collection{}, repository.ErrDuplicate)

	w := env.request(http.MethodPost, "/api/v1/admin/seed", nil, env.adminToken(t))
	require.Equal(t, http.StatusOK, w.Code)

	var result seed.Result
	decode(t, w, &result)
	assert.Equal(t, 10, result.CategoriesCreated)
	assert.Equal(t, 0, result.CollectionsCreated)
	assert.Equal(t, 5, result.Skipped)
	assert.Empty(t, result.Errors)
}

func TestDatabaseUnavailable(t *testing.T) {
	env := newTestEnv(t, func(d *Dependencies) {
		d.Products, d.Categories, d.Collections = nil, nil, nil
		d.Catalog = catalog.NewService(nil, catalog.Options{UseFallback: true, Fallback: d.Seed.Products})
	})

	w := env.request(http.MethodGet, "/api/v1/categories", nil, "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = env.request(http.MethodGet, "/api/v1/admin/products", nil, env.adminToken(t))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = env.request(http.MethodGet, "/api/v1/products", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	var payload productsPayload
	decode(t, w, &payload)
	assert.True(t, payload.Fallback)

	w = env.request(http.MethodGet, "/", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = env.request(http.MethodGet, "/health", nil, "")
	assert.Contains(t, w.Body.String(), `"database":"unavailable"`)
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.request(http.MethodGet, "/health", nil, "")

	w := env.request(http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `decoambiente_http_requests_total{method="GET",route="/health",status="200"} 1`)
}
