package importer

import (
	"context"
	"fmt"
	"io"

	"github.com/decoambiente/decoambiente-backend/internal/metrics"
	"github.com/decoambiente/decoambiente-backend/internal/models"
	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
)

type ProductCreator interface {
	Create(ctx context.Context, product models.Product) (models.Product, error)
}

type Importer struct {
	products  ProductCreator
	validate  *validator.Validate
	metrics   *metrics.Metrics
	onCreated func()
}

type Option func(*Importer)

func WithMetrics(m *metrics.Metrics) Option {
	return func(i *Importer) { i.metrics = m }
}

// WithOnCreated registers a hook that runs once after a bulk create added at least one product.
func WithOnCreated(fn func()) Option {
	return func(i *Importer) { i.onCreated = fn }
}

func New(products ProductCreator, validate *validator.Validate, opts ...Option) *Importer {
	i := &Importer{products: products, validate: validate}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Importer) Preview(filename string, r io.Reader) (Preview, error) {
	return Parse(filename, r, i.validate)
}

// BulkCreate inserts the products one by one. A failure is recorded and the import
// carries on; nothing already created is rolled back.
func (i *Importer) BulkCreate(ctx context.Context, inputs []models.ProductInput) models.BulkImportResult {
	result := models.BulkImportResult{Errors: []string{}}

	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", displayName(in.Name), err))
			continue
		}
		if i.validate != nil {
			if err := i.validate.Struct(in); err != nil {
				result.Failed++
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", displayName(in.Name), err))
				continue
			}
		}
		if _, err := i.products.Create(ctx, in.ToProduct()); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", displayName(in.Name), err))
			logrus.WithError(err).WithField("product", in.Name).Warn("Bulk import: product not created")
			continue
		}
		result.Created++
	}

	if i.metrics != nil {
		i.metrics.ImportCreated.Add(float64(result.Created))
		i.metrics.ImportFailed.Add(float64(result.Failed))
	}
	if result.Created > 0 && i.onCreated != nil {
		i.onCreated()
	}
	logrus.WithFields(logrus.Fields{
		"created": result.Created,
		"failed":  result.Failed,
	}).Info("Bulk import finished")
	return result
}

func displayName(name string) string {
	if name == "" {
		return "unnamed"
	}
	return name
}
