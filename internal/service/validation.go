package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"goldloan-backend/internal/domain"
	"goldloan-backend/internal/interest"
)

type ImageInput struct {
	Name        string `json:"name" validate:"max=255"`
	ContentType string `json:"content_type" validate:"omitempty,max=100"`
	Data        []byte `json:"data" validate:"required,max=5242880"`
}

type CustomerInput struct {
	Name                string       `json:"name" validate:"required,max=255"`
	Email               string       `json:"email" validate:"omitempty,email"`
	Phone               string       `json:"phone" validate:"omitempty,max=32"`
	Address             string       `json:"address" validate:"max=1000"`
	IDType              string       `json:"id_type" validate:"max=32"`
	IDNumber            string       `json:"id_number" validate:"max=64"`
	GoldWeight          float64      `json:"gold_weight" validate:"gte=0"`
	GoldRate            float64      `json:"gold_rate" validate:"gte=0"`
	LentAmount          float64      `json:"lent_amount" validate:"gt=0"`
	TargetAmount        float64      `json:"target_amount" validate:"gte=0"`
	LentDate            string       `json:"lent_date" validate:"omitempty,datetime=2006-01-02"`
	AutoInterestEnabled *bool        `json:"auto_interest_enabled"`
	Images              []ImageInput `json:"images" validate:"max=10,dive"`
}

// HistoricalCustomerInput describes a loan that started before it was entered.
// AsOfDate defaults to today; MonthlyRatePercent defaults to the configured rate.
type HistoricalCustomerInput struct {
	CustomerInput
	AsOfDate           string  `json:"as_of_date" validate:"omitempty,datetime=2006-01-02"`
	MonthlyRatePercent float64 `json:"monthly_rate_percent" validate:"gte=0,lte=100"`
}

type PaymentInput struct {
	Amount      float64 `json:"amount" validate:"gt=0"`
	Date        string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Description string  `json:"description" validate:"max=500"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// validateInput runs the struct tags and maps the first failure onto a
// *domain.ValidationError.
func validateInput(in interface{}) error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return domain.NewValidationError(fe.Field(), describe(fe))
	}
	return domain.NewValidationError("", err.Error())
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte", "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "email":
		return "must be a valid email address"
	case "datetime":
		return "must be a date in yyyy-mm-dd format"
	}
	return fmt.Sprintf("failed the %q check", fe.Tag())
}

// parseCivilDate parses an optional yyyy-mm-dd field, falling back to def.
func parseCivilDate(field, value string, def time.Time) (time.Time, error) {
	if value == "" {
		return def, nil
	}
	d, err := interest.ParseDate(value, time.UTC)
	if err != nil {
		return time.Time{}, domain.NewValidationError(field, err.Error())
	}
	return d, nil
}
