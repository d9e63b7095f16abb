// internal/handlers/detect-daily-discrepancy/validation.go
package detectdailydiscrepancy

import (
	"fmt"

	apperrors "cauldron-reconciler/internal/common/errors"
	"cauldron-reconciler/internal/common/validation"
)

const bodySchemaJSON = `{
	"type": "object",
	"additionalProperties": true,
	"properties": {
		"tolerance":     {"type": "number", "nullable": true, "description": "relative tolerance"},
		"threshold":     {"type": "number", "nullable": true, "description": "absolute threshold"},
		"cauldron_data": {"type": "object"}
	}
}`

const cauldronDataSchemaJSON = `{
	"type": "object",
	"required": ["cauldron_id", "date_time", "drain_volume"],
	"additionalProperties": true,
	"properties": {
		"cauldron_id":  {"type": "string", "minLength": 1},
		"date_time":    {"type": "string", "minLength": 1},
		"drain_volume": {"type": "number"}
	}
}`

var (
	bodySchema         = mustLoadSchema(bodySchemaJSON)
	cauldronDataSchema = mustLoadSchema(cauldronDataSchemaJSON)
)

func mustLoadSchema(raw string) validation.JSONSchema {
	schema, err := validation.GetSchemaFromJSON(raw)
	if err != nil {
		panic(fmt.Sprintf("detect-daily-discrepancy: invalid schema: %v", err))
	}
	return schema
}

// parseInput applies the boundary checks in order: body shape, presence of
// cauldron_data, presence of the required cauldron fields, then field types.
func parseInput(raw interface{}) (*Input, error) {
	body, ok := raw.(map[string]interface{})
	if !ok {
		return nil, apperrors.NewInvalidBodyError(fmt.Sprintf("body must be a JSON object, got %T", raw))
	}

	cauldronData, ok := body[fieldCauldronData].(map[string]interface{})
	if !ok || len(cauldronData) == 0 {
		return nil, apperrors.NewMissingCauldronDataError()
	}

	var missing []string
	if !truthy(cauldronData[fieldCauldronID]) {
		missing = append(missing, fieldCauldronID)
	}
	if !truthy(cauldronData[fieldDateTime]) {
		missing = append(missing, fieldDateTime)
	}
	// Zero is a valid drain volume; only absence or null counts as missing.
	if cauldronData[fieldDrainVolume] == nil {
		missing = append(missing, fieldDrainVolume)
	}
	if len(missing) > 0 {
		return nil, apperrors.NewMissingRequiredFieldError(missing)
	}

	var problems []string
	problems = append(problems, validation.ValidateInput(body, bodySchema).GetErrorMessages()...)
	for _, msg := range validation.ValidateInput(cauldronData, cauldronDataSchema).GetErrorMessages() {
		problems = append(problems, fieldCauldronData+"."+msg)
	}
	if len(problems) > 0 {
		return nil, apperrors.NewInvalidFieldTypeError(problems)
	}

	return &Input{
		Tolerance: optionalNumber(body[fieldTolerance]),
		Threshold: optionalNumber(body[fieldThreshold]),
		CauldronData: CauldronData{
			CauldronID:  cauldronData[fieldCauldronID].(string),
			DateTime:    cauldronData[fieldDateTime].(string),
			DrainVolume: cauldronData[fieldDrainVolume].(float64),
		},
	}, nil
}

// truthy treats null, false, zero and empty values as absent.
func truthy(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case bool:
		return val
	case string:
		return val != ""
	case float64:
		return val != 0
	case []interface{}:
		return len(val) > 0
	case map[string]interface{}:
		return len(val) > 0
	}
	return true
}

func optionalNumber(v interface{}) *float64 {
	f, ok := v.(float64)
	if !ok {
		return nil
	}
	return &f
}
