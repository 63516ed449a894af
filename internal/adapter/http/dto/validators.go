package dto

import (
	"reflect"
	"regexp"
	"strings"
	"unicode"

	"personal-ledger/internal/core/domain"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

var currencyRe = regexp.MustCompile(`^[A-Za-z]{3}$`)

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterValidators(v)
	}
}

// RegisterValidators installs the ledger's custom tags on v.
func RegisterValidators(v *validator.Validate) {
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	_ = v.RegisterValidation("iso_currency", validateCurrency)
	_ = v.RegisterValidation("account_type", validateAccountType)
}

// decimalValue lets numeric tags such as gt and gte compare decimals.
func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		return d.InexactFloat64()
	}
	return nil
}

// validateCurrency accepts a three-letter code, ignoring surrounding whitespace.
func validateCurrency(fl validator.FieldLevel) bool {
	return currencyRe.MatchString(strings.TrimSpace(fl.Field().String()))
}

func validateAccountType(fl validator.FieldLevel) bool {
	_, err := domain.ParseAccountType(fl.Field().String())
	return err == nil
}

// SanitizeStruct trims whitespace and strips control characters from every
// exported string field (including *string) of a struct pointer.
func SanitizeStruct(v interface{}) {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return
	}
	sanitizeFields(rv.Elem())
}

func sanitizeFields(rv reflect.Value) {
	for i := 0; i < rv.NumField(); i++ {
		f := rv.Field(i)
		if !f.CanSet() {
			continue
		}
		switch f.Kind() {
		case reflect.String:
			f.SetString(sanitize(f.String()))
		case reflect.Ptr:
			if f.IsNil() {
				continue
			}
			elem := f.Elem()
			if elem.Kind() == reflect.String {
				elem.SetString(sanitize(elem.String()))
			}
		}
	}
}

func sanitize(s string) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}
