package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/decoambiente/decoambiente-backend/internal/models"
	"github.com/decoambiente/decoambiente-backend/internal/services/importer"
	"github.com/decoambiente/decoambiente-backend/utils"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const defaultMaxImportBytes = 10 << 20

type ImportHandler struct {
	Importer       *importer.Importer
	MaxUploadBytes int64
}

func NewImportHandler(imp *importer.Importer, maxUploadMB int64) *ImportHandler {
	maxBytes := maxUploadMB << 20
	if maxBytes <= 0 {
		maxBytes = defaultMaxImportBytes
	}
	return &ImportHandler{Importer: imp, MaxUploadBytes: maxBytes}
}

type bulkImportInput struct {
	Products []models.ProductInput `json:"products" validate:"required,min=1"`
}

// preview reads the multipart "file" field. It writes the error response itself and
// reports false when the spreadsheet could not be used.
func (h *ImportHandler) preview(c *gin.Context) (importer.Preview, bool) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.MaxUploadBytes)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("No file provided or file too large"))
		return importer.Preview{}, false
	}
	defer file.Close()

	preview, err := h.Importer.Preview(header.Filename, file)
	switch {
	case err == nil:
		return preview, true
	case errors.Is(err, importer.ErrEmptySpreadsheet),
		errors.Is(err, importer.ErrNoValidProducts),
		errors.Is(err, importer.ErrUnsupportedFormat):
		c.JSON(http.StatusBadRequest, utils.ErrorResponse(err.Error()))
	default:
		logrus.WithError(err).WithField("file", header.Filename).Warn("Spreadsheet could not be read")
		c.JSON(http.StatusBadRequest, utils.ErrorResponse("the spreadsheet could not be read"))
	}
	return importer.Preview{}, false
}

// PreviewImport parses the spreadsheet without writing anything.
func (h *ImportHandler) PreviewImport(c *gin.Context) {
	preview, ok := h.preview(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("spreadsheet parsed successfully", gin.H{
		"products": preview.Products,
		"skipped":  preview.Skipped,
		"rows":     preview.Rows,
	}))
}

// ImportProducts bulk-creates either the JSON {products} the admin confirmed from a
// preview, or every valid row of an uploaded spreadsheet.
func (h *ImportHandler) ImportProducts(c *gin.Context) {
	var (
		inputs  []models.ProductInput
		skipped []importer.SkippedRow
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		preview, ok := h.preview(c)
		if !ok {
			return
		}
		inputs, skipped = preview.Products, preview.Skipped
	} else {
		var body bulkImportInput
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, utils.ErrorResponse("Invalid json body"))
			return
		}
		if err := validate.Struct(body); err != nil {
			c.JSON(http.StatusBadRequest, utils.ErrorResponse(err.Error()))
			return
		}
		inputs = body.Products
	}

	// one product at a time; allow a minute for large sheets
	ctx, cancel := context.WithTimeout(c.Request.Context(), time.Minute)
	defer cancel()

	result := h.Importer.BulkCreate(ctx, inputs)
	if skipped == nil {
		skipped = []importer.SkippedRow{}
	}
	c.JSON(http.StatusOK, utils.SuccessResponse("import finished", gin.H{
		"created": result.Created,
		"failed":  result.Failed,
		"errors":  result.Errors,
		"skipped": skipped,
	}))
}
