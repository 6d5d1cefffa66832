package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	ex "github.com/fongbrandon1928/Market-Dynamics/data/extensions"
)

// ZScoreRequest is the input document. StartDate is inclusive, EndDate exclusive.
type ZScoreRequest struct {
	Tickers             []string `json:"tickers" validate:"required,min=1,dive,required"`
	NormalizationTicker string   `json:"normalizationTicker" validate:"required"`
	StartDate           string   `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate             string   `json:"endDate" validate:"required,datetime=2006-01-02"`

	Start time.Time `json:"-"`
	End   time.Time `json:"-"`
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()

	// messages use the json field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	return v
}

// LoadZScoreRequest reads, validates and normalizes the request at path
func LoadZScoreRequest(path string) (*ZScoreRequest, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading input file: %w", err)
	}

	return ParseZScoreRequest(b)
}

// ParseZScoreRequest decodes a request document. Symbols are trimmed and duplicate
// tickers removed, keeping the first occurrence.
func ParseZScoreRequest(b []byte) (*ZScoreRequest, error) {
	var req ZScoreRequest
	if err := json.Unmarshal(b, &req); err != nil {
		return nil, fmt.Errorf("error parsing input file: %w", err)
	}

	for i := range req.Tickers {
		req.Tickers[i] = strings.TrimSpace(req.Tickers[i])
	}
	req.NormalizationTicker = strings.TrimSpace(req.NormalizationTicker)
	req.StartDate = strings.TrimSpace(req.StartDate)
	req.EndDate = strings.TrimSpace(req.EndDate)

	if err := validate.Struct(&req); err != nil {
		return nil, formatValidationError(err)
	}

	req.Tickers = ex.Distinct(req.Tickers)

	// both already passed the datetime tag
	req.Start, _ = ex.ParseShort(req.StartDate)
	req.End, _ = ex.ParseShort(req.EndDate)

	return &req, nil
}

// Symbols is every symbol that has to be fetched, the normalization ticker included
func (r *ZScoreRequest) Symbols() []string {
	return ex.Distinct(append(append([]string{}, r.Tickers...), r.NormalizationTicker))
}

func formatValidationError(err error) error {
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) || len(ves) == 0 {
		return fmt.Errorf("error validating input file: %w", err)
	}

	// first failure only, the rest are usually consequences of it
	fe := ves[0]
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "required":
		return fmt.Errorf("missing required field: %s", field)
	case "min":
		return fmt.Errorf("invalid field %s: at least %s entry is required", field, fe.Param())
	case "datetime":
		return fmt.Errorf("invalid field %s: expected a YYYY-MM-DD date", field)
	default:
		return fmt.Errorf("invalid field %s: failed %s validation", field, fe.Tag())
	}
}
