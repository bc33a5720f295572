package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"

	"github.com/pmitra96/castleverde/models"
)

const maxBodyBytes = 1 << 20

// decodeBody decodes a JSON request body into dst, reporting malformed JSON
// and type mismatches as validation errors.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) *models.ValidationError {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		ve := &models.ValidationError{}
		ve.Add("Request body could not be read", models.ErrTypeJSONInvalid, "body")
		return ve
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		ve := &models.ValidationError{}
		ve.Add("Field required", models.ErrTypeMissing, "body")
		return ve
	}
	return jsonValidation(json.Unmarshal(body, dst))
}

func jsonValidation(err error) *models.ValidationError {
	if err == nil {
		return nil
	}
	ve := &models.ValidationError{}
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.As(err, &typeErr):
		loc := []any{"body"}
		if typeErr.Field != "" {
			for _, part := range strings.Split(typeErr.Field, ".") {
				loc = append(loc, part)
			}
		}
		typ, msg := models.ErrTypeFloat, "Input should be a valid number"
		if kind := typeErr.Type.Kind(); kind == reflect.String {
			typ, msg = models.ErrTypeString, "Input should be a valid string"
		} else if kind == reflect.Struct || kind == reflect.Map {
			typ, msg = "model_type", "Input should be a valid object"
		}
		ve.Add(msg, typ, loc...)
	case errors.As(err, &syntaxErr):
		ve.Add("JSON decode error", models.ErrTypeJSONInvalid, "body", int(syntaxErr.Offset))
	default:
		ve.Add("JSON decode error", models.ErrTypeJSONInvalid, "body")
	}
	return ve
}

// macroInput is a macro record as sent by clients. Pointer fields let
// missing values be told apart from zeros.
type macroInput struct {
	Protein    *float64 `json:"protein"`
	Fat        *float64 `json:"fat"`
	TotalCarbs *float64 `json:"total_carbs"`
	Fiber      *float64 `json:"fiber"`
	Sugar      *float64 `json:"sugar"`
	NetCarbs   *float64 `json:"net_carbs"`
}

// require checks every field is present and non-negative. net_carbs is
// optional and ignored since it is always re-derived.
func (in *macroInput) require(ve *models.ValidationError, loc ...any) models.MacroNutrients {
	fields := []struct {
		name string
		v    *float64
	}{
		{"protein", in.Protein},
		{"fat", in.Fat},
		{"total_carbs", in.TotalCarbs},
		{"fiber", in.Fiber},
		{"sugar", in.Sugar},
	}
	for _, f := range fields {
		at := append(append([]any{}, loc...), f.name)
		if f.v == nil {
			ve.Add("Field required", models.ErrTypeMissing, at...)
			continue
		}
		if err := models.CheckGrams(f.name, *f.v); err != nil {
			ve.Add("Input should be greater than or equal to 0", models.ErrTypeGreaterEq, at...)
		}
	}
	m, _ := in.partial().Resolve(0)
	return m
}

// optional treats absent fields as zero but still rejects negatives.
func (in *macroInput) optional(ve *models.ValidationError, loc ...any) models.PartialMacros {
	p := in.partial()
	m, _ := p.Resolve(0)
	for _, err := range m.ValidateAll() {
		ve.Add("Input should be greater than or equal to 0", models.ErrTypeGreaterEq, append(append([]any{}, loc...), err.Field)...)
	}
	return p
}

func (in *macroInput) partial() models.PartialMacros {
	return models.PartialMacros{
		Protein:    in.Protein,
		Fat:        in.Fat,
		TotalCarbs: in.TotalCarbs,
		Fiber:      in.Fiber,
		Sugar:      in.Sugar,
	}
}

// parseAnchorField validates a required anchor id at loc.
func parseAnchorField(ve *models.ValidationError, raw *string, loc ...any) models.AnchorKey {
	if raw == nil {
		ve.Add("Field required", models.ErrTypeMissing, loc...)
		return ""
	}
	anchor, err := models.ParseAnchor(*raw)
	if err != nil {
		ve.Add(err.Error(), models.ErrTypeEnum, loc...)
		return ""
	}
	return anchor
}
