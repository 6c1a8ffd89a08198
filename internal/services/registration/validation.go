package registration

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// businessSchema enforces the required field set before any store write.
// Website and the uploaded document are the only optional attributes.
const businessSchema = `{
	"type": "object",
	"required": [
		"companyName", "industry", "yearEstablished", "headquarters",
		"franchiseName", "franchiseDescription", "investmentRange",
		"franchiseFee", "royaltyFee", "email"
	],
	"properties": {
		"companyName":          {"type": "string", "minLength": 1, "maxLength": 200},
		"industry":             {"type": "string", "minLength": 1, "maxLength": 100},
		"yearEstablished":      {"type": "string", "minLength": 1, "maxLength": 10},
		"headquarters":         {"type": "string", "minLength": 1, "maxLength": 200},
		"website":              {"type": "string", "maxLength": 300},
		"franchiseName":        {"type": "string", "minLength": 1, "maxLength": 200},
		"franchiseDescription": {"type": "string", "minLength": 1, "maxLength": 5000},
		"investmentRange":      {"type": "string", "minLength": 1, "maxLength": 100},
		"franchiseFee":         {"type": "string", "minLength": 1, "maxLength": 100},
		"royaltyFee":           {"type": "string", "minLength": 1, "maxLength": 100},
		"email":                {"type": "string", "format": "email", "maxLength": 254}
	}
}`

var compiledSchema = gojsonschema.NewStringLoader(businessSchema)

// validateInput checks the registration payload against the schema and
// returns a flat description of every violation.
func validateInput(input *Input) error {
	raw, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("marshal input: %w", err)
	}

	// Empty strings must fail the required check the same way a missing
	// field does, so strip them before validation.
	var asMap map[string]interface{}
	if err := json.Unmarshal(raw, &asMap); err != nil {
		return fmt.Errorf("unmarshal input: %w", err)
	}
	for k, v := range asMap {
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			delete(asMap, k)
		}
	}

	result, err := gojsonschema.Validate(compiledSchema, gojsonschema.NewGoLoader(asMap))
	if err != nil {
		return fmt.Errorf("schema validation: %w", err)
	}

	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return fmt.Errorf("%s", strings.Join(details, "; "))
	}

	return nil
}
