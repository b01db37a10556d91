package catalog

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/decoambiente/decoambiente-backend/internal/models"
)

const DefaultMaxPrice = 1000000

const (
	SortFeatured  = "featured"
	SortNameAsc   = "name-asc"
	SortNameDesc  = "name-desc"
	SortPriceAsc  = "price-asc"
	SortPriceDesc = "price-desc"
)

var sortAliases = map[string]string{
	"":            SortFeatured,
	"featured":    SortFeatured,
	"destacados":  SortFeatured,
	"name-asc":    SortNameAsc,
	"nombre-asc":  SortNameAsc,
	"name-desc":   SortNameDesc,
	"nombre-desc": SortNameDesc,
	"price-asc":   SortPriceAsc,
	"precio-asc":  SortPriceAsc,
	"price-desc":  SortPriceDesc,
	"precio-desc": SortPriceDesc,
}

// Filter narrows and orders the product list shown in the catalog.
type Filter struct {
	Category string  `json:"category,omitempty"`
	Query    string  `json:"q,omitempty"`
	MinPrice float64 `json:"min"`
	MaxPrice float64 `json:"max"`
	Sort     string  `json:"sort"`
}

// NormalizeSort maps Spanish and English sort keys to their canonical form.
// Unknown keys fall back to featured-first.
func NormalizeSort(s string) string {
	if canonical, ok := sortAliases[strings.ToLower(strings.TrimSpace(s))]; ok {
		return canonical
	}
	return SortFeatured
}

// ParseFilter reads the catalog query string. Unparseable numbers are ignored.
func ParseFilter(query url.Values, maxPrice float64) Filter {
	if maxPrice <= 0 {
		maxPrice = DefaultMaxPrice
	}
	f := Filter{
		Category: strings.ToLower(strings.TrimSpace(firstParam(query, "categoria", "category"))),
		Query:    strings.TrimSpace(firstParam(query, "q", "busqueda", "search")),
		MinPrice: 0,
		MaxPrice: maxPrice,
		Sort:     NormalizeSort(firstParam(query, "sort", "orden")),
	}
	if v, ok := parsePrice(firstParam(query, "min", "precioMin")); ok {
		f.MinPrice = v
	}
	if v, ok := parsePrice(firstParam(query, "max", "precioMax")); ok {
		f.MaxPrice = v
	}
	return f
}

func firstParam(query url.Values, keys ...string) string {
	for _, k := range keys {
		if v := query.Get(k); v != "" {
			return v
		}
	}
	return ""
}

func parsePrice(s string) (float64, bool) {
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || v < 0 {
		return 0, false
	}
	return v, true
}

// Apply filters by category, search text and price range, then sorts.
// The input slice is not modified.
func Apply(products []models.Product, f Filter) []models.Product {
	maxPrice := f.MaxPrice
	if maxPrice <= 0 {
		maxPrice = DefaultMaxPrice
	}
	category := strings.ToLower(strings.TrimSpace(f.Category))
	query := strings.ToLower(strings.TrimSpace(f.Query))

	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if category != "" && p.Category != category {
			continue
		}
		if query != "" && !matchesQuery(p, query) {
			continue
		}
		if p.Price < f.MinPrice || p.Price > maxPrice {
			continue
		}
		out = append(out, p)
	}
	Sort(out, f.Sort)
	return out
}

func matchesQuery(p models.Product, query string) bool {
	if strings.Contains(strings.ToLower(p.Name), query) ||
		strings.Contains(strings.ToLower(p.Description), query) {
		return true
	}
	for _, tag := range p.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

// Sort orders products in place. All orders are stable.
func Sort(products []models.Product, key string) {
	switch NormalizeSort(key) {
	case SortNameAsc:
		sort.SliceStable(products, func(i, j int) bool {
			return strings.ToLower(products[i].Name) < strings.ToLower(products[j].Name)
		})
	case SortNameDesc:
		sort.SliceStable(products, func(i, j int) bool {
			return strings.ToLower(products[i].Name) > strings.ToLower(products[j].Name)
		})
	case SortPriceAsc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price < products[j].Price })
	case SortPriceDesc:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Price > products[j].Price })
	default:
		sort.SliceStable(products, func(i, j int) bool { return products[i].Featured && !products[j].Featured })
	}
}

func Featured(products []models.Product) []models.Product {
	out := []models.Product{}
	for _, p := range products {
		if p.Featured {
			out = append(out, p)
		}
	}
	return out
}

// CategoryCounts counts products per category slug.
func CategoryCounts(products []models.Product) map[string]int {
	counts := make(map[string]int)
	for _, p := range products {
		counts[p.Category]++
	}
	return counts
}

func WithCounts(categories []models.Category, counts map[string]int) []models.CategoryWithCount {
	out := make([]models.CategoryWithCount, 0, len(categories))
	for _, c := range categories {
		out = append(out, models.CategoryWithCount{Category: c, Count: counts[c.Slug]})
	}
	return out
}

func Stats(products []models.Product) models.ProductStats {
	stats := models.ProductStats{Total: len(products)}
	categories := make(map[string]struct{})
	for _, p := range products {
		if p.Featured {
			stats.Featured++
		}
		if p.Category != "" {
			categories[p.Category] = struct{}{}
		}
	}
	stats.Categories = len(categories)
	return stats
}

func FindByID(products []models.Product, id string) (models.Product, bool) {
	for _, p := range products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}
