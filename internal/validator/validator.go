// Package validator provides the custom input rules shared by the form,
// the filter holder and Gin's binding engine.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const dateLayout = "2006-01-02"

var (
	instance     *validator.Validate
	once         sync.Once
	registerOnce sync.Once
)

// Get returns a shared validator with the custom rules registered. Field
// names in errors come from the struct's form or json tag.
func Get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		v.RegisterTagNameFunc(tagName)
		register(v)
		instance = v
	})
	return instance
}

// Register registers all custom validators with the Gin binding engine.
func Register() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			register(v)
		}
	})
}

func register(v *validator.Validate) {
	_ = v.RegisterValidation("transaction_type", validateTransactionType)
	_ = v.RegisterValidation("date_only", validateDateOnly)
	_ = v.RegisterValidation("amount", validateAmount)
	_ = v.RegisterValidation("record_id", validateRecordID)
}

func tagName(fld reflect.StructField) string {
	for _, key := range []string{"form", "json"} {
		name := strings.SplitN(fld.Tag.Get(key), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return fld.Name
}

func validateTransactionType(fl validator.FieldLevel) bool {
	switch fl.Field().String() {
	case "income", "expense":
		return true
	}
	return false
}

// validateRecordID accepts a positive integer that fits in an int.
func validateRecordID(fl validator.FieldLevel) bool {
	id, err := strconv.Atoi(fl.Field().String())
	return err == nil && id > 0
}

func validateDateOnly(fl validator.FieldLevel) bool {
	_, err := time.Parse(dateLayout, fl.Field().String())
	return err == nil
}

// validateAmount accepts a positive decimal string with at most two decimal
// places, the same constraint as a number input with min 0.01 and step 0.01.
func validateAmount(fl validator.FieldLevel) bool {
	d, err := decimal.NewFromString(strings.TrimSpace(fl.Field().String()))
	if err != nil {
		return false
	}
	return d.IsPositive() && d.Equal(d.Round(2))
}

// Message converts a validation error into a single user-facing sentence
// describing the first failing field.
func Message(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		if err == nil {
			return ""
		}
		return err.Error()
	}

	fe := verrs[0]
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "transaction_type":
		return fmt.Sprintf("%s must be income or expense", field)
	case "date_only":
		return fmt.Sprintf("%s must be a date in YYYY-MM-DD format", field)
	case "amount":
		return fmt.Sprintf("%s must be a number greater than 0 with at most 2 decimal places", field)
	case "record_id":
		return fmt.Sprintf("%s must be a positive whole number", field)
	case "number", "numeric":
		return fmt.Sprintf("%s must be a whole number", field)
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
