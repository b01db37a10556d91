package utils

import (
	"reflect"
	"strings"

	"github.com/decoambiente/decoambiente-backend/internal/models"
	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator that reports JSON field names and knows the
// catalog's custom tags.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("collectiondate", func(fl validator.FieldLevel) bool {
		return models.ValidCollectionDate(fl.Field().String())
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		in := sl.Current().Interface().(models.CollectionInput)
		if !models.ValidCollectionRange(in.StartDate, in.EndDate) {
			sl.ReportError(in.EndDate, "endDate", "EndDate", "daterange", "")
		}
	}, models.CollectionInput{})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		u := sl.Current().Interface().(models.CollectionUpdate)
		if u.StartDate != nil && u.EndDate != nil && !models.ValidCollectionRange(*u.StartDate, *u.EndDate) {
			sl.ReportError(u.EndDate, "endDate", "EndDate", "daterange", "")
		}
	}, models.CollectionUpdate{})
	return v
}
