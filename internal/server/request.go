package server

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/NimaEtemadi/broken-wing-butterfly-scanner/internal/butterfly"
	"github.com/NimaEtemadi/broken-wing-butterfly-scanner/internal/config"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report fields by their JSON names so messages match the wire format.
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// scanRequest is the JSON body of POST /api/scan. Symbol and expiry are
// required; the numeric thresholds are optional and fall back to the
// configured scan defaults when omitted. CSVPath, when set, scans that chain
// file instead of the configured source.
type scanRequest struct {
	Symbol        string   `json:"symbol" validate:"required"`
	Expiry        string   `json:"expiry" validate:"required"`
	CSVPath       string   `json:"csv_path"`
	MinDTE        *int     `json:"min_dte" validate:"omitempty,gte=0"`
	MaxDTE        *int     `json:"max_dte" validate:"omitempty,gte=0"`
	MinCredit     *float64 `json:"min_credit"`
	ShortDeltaMin *float64 `json:"short_delta_min" validate:"omitempty,gte=0,lte=1"`
	ShortDeltaMax *float64 `json:"short_delta_max" validate:"omitempty,gte=0,lte=1"`
}

// params merges the request overrides over the configured defaults.
func (r *scanRequest) params(defaults config.ScanConfig) butterfly.Params {
	p := butterfly.Params{
		Symbol:        r.Symbol,
		Expiry:        r.Expiry,
		MinDTE:        defaults.MinDTE,
		MaxDTE:        defaults.MaxDTE,
		MinCredit:     defaults.MinCredit,
		ShortDeltaMin: defaults.ShortDeltaMin,
		ShortDeltaMax: defaults.ShortDeltaMax,
	}
	if r.MinDTE != nil {
		p.MinDTE = *r.MinDTE
	}
	if r.MaxDTE != nil {
		p.MaxDTE = *r.MaxDTE
	}
	if r.MinCredit != nil {
		p.MinCredit = *r.MinCredit
	}
	if r.ShortDeltaMin != nil {
		p.ShortDeltaMin = *r.ShortDeltaMin
	}
	if r.ShortDeltaMax != nil {
		p.ShortDeltaMax = *r.ShortDeltaMax
	}
	return p
}

// validateRequest runs struct validation and flattens the field errors into
// one user-facing message.
func validateRequest(r *scanRequest) error {
	err := validate.Struct(r)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		field := fe.Field()
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", field))
		case "gte":
			msgs = append(msgs, fmt.Sprintf("%s must be >= %s", field, fe.Param()))
		case "lte":
			msgs = append(msgs, fmt.Sprintf("%s must be <= %s", field, fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed validation: %s", field, fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}
