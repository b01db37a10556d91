package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/decoambiente/decoambiente-backend/internal/models"
	"github.com/decoambiente/decoambiente-backend/utils"
	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"
)

var (
	ErrEmptySpreadsheet  = errors.New("the spreadsheet is empty")
	ErrNoValidProducts   = errors.New(`no valid products found; make sure the sheet has "nombre" and "precio" columns`)
	ErrUnsupportedFormat = errors.New("unsupported file type; upload a .xlsx or .csv file")
)

type field int

const (
	fieldName field = iota
	fieldCategory
	fieldPrice
	fieldDescription
	fieldEmoji
	fieldTags
	fieldFeatured
	fieldSKU
	fieldStock
	fieldImage
)

// headerAliases lists accepted column titles after normalizeHeader.
var headerAliases = map[string]field{
	"nombre":      fieldName,
	"name":        fieldName,
	"producto":    fieldName,
	"categoria":   fieldCategory,
	"category":    fieldCategory,
	"precio":      fieldPrice,
	"price":       fieldPrice,
	"descripcion": fieldDescription,
	"description": fieldDescription,
	"emoji":       fieldEmoji,
	"tags":        fieldTags,
	"etiquetas":   fieldTags,
	"destacado":   fieldFeatured,
	"featured":    fieldFeatured,
	"sku":         fieldSKU,
	"codigo":      fieldSKU,
	"stock":       fieldStock,
	"imagen":      fieldImage,
	"image":       fieldImage,
	"imageurl":    fieldImage,
}

var (
	headerStrip   = regexp.MustCompile(`[^a-z0-9]`)
	tagSeparators = regexp.MustCompile(`[,;|]`)
	groupedNumber = regexp.MustCompile(`^\d{1,3}(\.\d{3})+(,\d+)?$`)
)

// SkippedRow is a data row left out of the preview. Row is the 1-based sheet row.
type SkippedRow struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

type Preview struct {
	Products []models.ProductInput `json:"products"`
	Skipped  []SkippedRow          `json:"skipped"`
	Rows     int                   `json:"rows"`
}

func normalizeHeader(h string) string {
	return headerStrip.ReplaceAllString(strings.ToLower(utils.StripAccents(strings.TrimSpace(h))), "")
}

// Parse reads the first sheet of an .xlsx workbook or a .csv file. The first row is
// the header; rows without a name or a positive price are reported as skipped.
func Parse(filename string, r io.Reader, validate *validator.Validate) (Preview, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		rows, err = readXLSX(r)
	case ".csv":
		rows, err = readCSV(r)
	default:
		return Preview{}, ErrUnsupportedFormat
	}
	if err != nil {
		return Preview{}, err
	}
	return mapRows(rows, validate)
}

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmptySpreadsheet
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(r io.Reader) ([][]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	if first, _, _ := bytes.Cut(data, []byte("\n")); bytes.Count(first, []byte(";")) > bytes.Count(first, []byte(",")) {
		// spreadsheet exports in Spanish locales separate with semicolons
		reader.Comma = ';'
	}
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

func mapRows(rows [][]string, validate *validator.Validate) (Preview, error) {
	if len(rows) < 2 {
		return Preview{}, ErrEmptySpreadsheet
	}

	columns := map[field]int{}
	for i, h := range rows[0] {
		if f, ok := headerAliases[normalizeHeader(h)]; ok {
			if _, seen := columns[f]; !seen {
				columns[f] = i
			}
		}
	}

	preview := Preview{Products: []models.ProductInput{}, Skipped: []SkippedRow{}}
	for i, row := range rows[1:] {
		if blank(row) {
			continue
		}
		preview.Rows++
		rowNumber := i + 2

		in, reason := mapRow(row, columns)
		if reason == "" && validate != nil {
			if err := validate.Struct(in); err != nil {
				reason = err.Error()
			}
		}
		if reason != "" {
			preview.Skipped = append(preview.Skipped, SkippedRow{Row: rowNumber, Reason: reason})
			continue
		}
		preview.Products = append(preview.Products, in)
	}

	if preview.Rows == 0 {
		return Preview{}, ErrEmptySpreadsheet
	}
	if len(preview.Products) == 0 {
		return preview, ErrNoValidProducts
	}
	return preview, nil
}

func mapRow(row []string, columns map[field]int) (models.ProductInput, string) {
	cell := func(f field) string {
		i, ok := columns[f]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	in := models.ProductInput{
		Name:        cell(fieldName),
		Category:    strings.ToLower(cell(fieldCategory)),
		Description: cell(fieldDescription),
		Emoji:       cell(fieldEmoji),
		Featured:    truthy(cell(fieldFeatured)),
		Tags:        splitTags(cell(fieldTags)),
		SKU:         cell(fieldSKU),
		ImageURL:    cell(fieldImage),
	}
	if in.Name == "" {
		return in, "missing name"
	}

	price, ok := parseNumber(cell(fieldPrice))
	if !ok || price <= 0 {
		return in, "price must be a positive number"
	}
	in.Price = price

	if in.Emoji == "" {
		in.Emoji = models.DefaultProductEmoji
	}
	if in.SKU == "" {
		in.SKU = utils.Slugify(in.Name)
	}
	stock := 0
	if v, ok := parseNumber(cell(fieldStock)); ok && v >= 0 {
		if v > math.MaxInt32 {
			return in, "stock is out of range"
		}
		stock = int(v)
	}
	in.Stock = &stock
	return in, ""
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

func truthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "si", "sí", "yes", "true", "1", "x":
		return true
	default:
		return false
	}
}

func splitTags(s string) []string {
	tags := []string{}
	for _, t := range tagSeparators.Split(s, -1) {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// parseNumber accepts plain numbers and Chilean-formatted amounts like "$1.890.000" or "670000,50".
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), "$"))
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0, false
	}
	switch {
	case groupedNumber.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case strings.Count(s, ",") == 1 && !strings.Contains(s, "."):
		s = strings.Replace(s, ",", ".", 1)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}
