package repository

import (
	"strconv"
	"strings"
	"time"

	"github.com/decoambiente/decoambiente-backend/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// Documents are read field by field so that records written by older tooling
// still load: Spanish field names, numbers stored as strings, id lists stored as
// comma-separated text and ISO string timestamps are all accepted.

func productFromRaw(raw bson.Raw) models.Product {
	p := models.Product{
		ID:          rawID(raw.Lookup("_id")),
		Name:        firstString(raw, "name", "nombre"),
		Category:    firstString(raw, "category", "categoria"),
		Price:       rawFloat(firstValue(raw, "price", "precio")),
		Description: firstString(raw, "description", "descripcion"),
		ImageURL:    firstString(raw, "imageUrl", "imagen"),
		Emoji:       firstString(raw, "emoji"),
		Featured:    rawBool(firstValue(raw, "featured", "destacado")),
		Tags:        rawStrings(raw.Lookup("tags")),
		SKU:         firstString(raw, "sku"),
		CreatedAt:   rawTime(raw.Lookup("createdAt")),
		UpdatedAt:   rawTime(raw.Lookup("updatedAt")),
	}
	if v := raw.Lookup("stock"); present(v) {
		stock := int(rawFloat(v))
		p.Stock = &stock
	}
	p.Normalize()
	return p
}

func categoryFromRaw(raw bson.Raw) models.Category {
	c := models.Category{
		ID:          rawID(raw.Lookup("_id")),
		Slug:        firstString(raw, "slug"),
		Name:        firstString(raw, "name", "nombre"),
		Description: firstString(raw, "description", "descripcion"),
		Emoji:       firstString(raw, "emoji"),
		Order:       int(rawFloat(raw.Lookup("order"))),
		Featured:    rawBool(firstValue(raw, "featured", "destacado")),
		CreatedAt:   rawTime(raw.Lookup("createdAt")),
		UpdatedAt:   rawTime(raw.Lookup("updatedAt")),
	}
	c.Normalize()
	return c
}

func collectionFromRaw(raw bson.Raw) models.Collection {
	return models.Collection{
		ID:          rawID(raw.Lookup("_id")),
		Slug:        firstString(raw, "slug"),
		Name:        firstString(raw, "name", "nombre"),
		Description: firstString(raw, "description", "descripcion"),
		ImageURL:    firstString(raw, "imageUrl", "imagen"),
		Featured:    rawBool(firstValue(raw, "featured", "destacado")),
		ProductIDs:  models.UniqueIDs(rawStrings(raw.Lookup("productIds"))),
		Order:       int(rawFloat(raw.Lookup("order"))),
		StartDate:   firstString(raw, "startDate", "fechaInicio"),
		EndDate:     firstString(raw, "endDate", "fechaFin"),
		CreatedAt:   rawTime(raw.Lookup("createdAt")),
		UpdatedAt:   rawTime(raw.Lookup("updatedAt")),
	}
}

func present(v bson.RawValue) bool {
	return !v.IsZero() && v.Type != bson.TypeNull && v.Type != bson.TypeUndefined
}

// firstValue returns the first key that is present with a non-empty value.
func firstValue(raw bson.Raw, keys ...string) bson.RawValue {
	for _, key := range keys {
		v := raw.Lookup(key)
		if !present(v) {
			continue
		}
		if s, ok := v.StringValueOK(); ok && strings.TrimSpace(s) == "" {
			continue
		}
		return v
	}
	return bson.RawValue{}
}

func firstString(raw bson.Raw, keys ...string) string {
	return rawString(firstValue(raw, keys...))
}

func rawID(v bson.RawValue) string {
	if oid, ok := v.ObjectIDOK(); ok {
		return oid.Hex()
	}
	return rawString(v)
}

func rawString(v bson.RawValue) string {
	if !present(v) {
		return ""
	}
	switch v.Type {
	case bson.TypeString:
		return strings.TrimSpace(v.StringValue())
	case bson.TypeObjectID:
		return v.ObjectID().Hex()
	case bson.TypeInt32, bson.TypeInt64, bson.TypeDouble, bson.TypeDecimal128:
		return strconv.FormatFloat(rawFloat(v), 'f', -1, 64)
	case bson.TypeBoolean:
		return strconv.FormatBool(v.Boolean())
	default:
		return ""
	}
}

func rawFloat(v bson.RawValue) float64 {
	if !present(v) {
		return 0
	}
	switch v.Type {
	case bson.TypeDouble:
		return v.Double()
	case bson.TypeInt32:
		return float64(v.Int32())
	case bson.TypeInt64:
		return float64(v.Int64())
	case bson.TypeDecimal128:
		f, err := strconv.ParseFloat(v.Decimal128().String(), 64)
		if err != nil {
			return 0
		}
		return f
	case bson.TypeString:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.StringValue()), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func rawBool(v bson.RawValue) bool {
	if !present(v) {
		return false
	}
	switch v.Type {
	case bson.TypeBoolean:
		return v.Boolean()
	case bson.TypeString:
		switch strings.ToLower(strings.TrimSpace(v.StringValue())) {
		case "true", "si", "sí", "yes", "1", "x":
			return true
		}
		return false
	default:
		return rawFloat(v) != 0
	}
}

func rawStrings(v bson.RawValue) []string {
	if !present(v) {
		return []string{}
	}
	switch v.Type {
	case bson.TypeArray:
		values, err := v.Array().Values()
		if err != nil {
			return []string{}
		}
		out := make([]string, 0, len(values))
		for _, item := range values {
			if s := rawString(item); s != "" {
				out = append(out, s)
			}
		}
		return out
	case bson.TypeString:
		out := []string{}
		for _, part := range strings.Split(v.StringValue(), ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}

func rawTime(v bson.RawValue) *time.Time {
	if !present(v) {
		return nil
	}
	switch v.Type {
	case bson.TypeDateTime:
		t := v.Time().UTC()
		return &t
	case bson.TypeString:
		s := strings.TrimSpace(v.StringValue())
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, time.DateOnly} {
			if t, err := time.Parse(layout, s); err == nil {
				return &t
			}
		}
	}
	return nil
}
