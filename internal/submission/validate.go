package submission

import (
	"fmt"
	"net/url"
	"strings"

	apperrors "github.com/Yhangokk/vidnav/internal/common/errors"

	"github.com/xeipuuv/gojsonschema"
)

// payloadSchema mirrors the field rules of Payload: required non-empty
// title/url/description/category, optional subcategory and submitterNote.
var payloadSchema = map[string]interface{}{
	"type": "object",
	"properties": map[string]interface{}{
		"title":         map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 200},
		"url":           map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 2000},
		"description":   map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 2000},
		"category":      map[string]interface{}{"type": "string", "minLength": 1, "maxLength": 100},
		"subcategory":   map[string]interface{}{"type": "string", "maxLength": 100},
		"submitterNote": map[string]interface{}{"type": "string", "maxLength": 2000},
	},
	"required":             []string{"title", "url", "description", "category"},
	"additionalProperties": false,
}

// Validate checks a payload against the schema plus the rules the schema
// cannot express: the URL must parse as an absolute URL, and no field may
// contain the fence delimiter, which would break round-trip decoding of
// the stored record. Returns a VALIDATION_FAILED StandardError; no
// external call has been made when it fails.
func Validate(p *Payload) error {
	doc := map[string]interface{}{
		"title":       p.Title,
		"url":         p.URL,
		"description": p.Description,
		"category":    p.Category,
	}
	if p.Subcategory != "" {
		doc["subcategory"] = p.Subcategory
	}
	if p.SubmitterNote != "" {
		doc["submitterNote"] = p.SubmitterNote
	}

	schemaLoader := gojsonschema.NewGoLoader(payloadSchema)
	documentLoader := gojsonschema.NewGoLoader(doc)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return apperrors.NewValidationFailedError(fmt.Sprintf("schema validation error: %v", err))
	}

	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return apperrors.NewValidationFailedError(strings.Join(errs, "; "))
	}

	u, err := url.Parse(p.URL)
	if err != nil || !u.IsAbs() || u.Host == "" {
		return apperrors.NewValidationFailedError(fmt.Sprintf("url: %q is not an absolute URL", p.URL))
	}

	for field, val := range map[string]string{
		"title":         p.Title,
		"url":           p.URL,
		"description":   p.Description,
		"category":      p.Category,
		"subcategory":   p.Subcategory,
		"submitterNote": p.SubmitterNote,
	} {
		if strings.Contains(val, "```") {
			return apperrors.NewValidationFailedError(fmt.Sprintf("%s: must not contain the record delimiter sequence", field))
		}
	}

	return nil
}
