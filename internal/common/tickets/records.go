package tickets

import (
	"fmt"
	"math"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"

	"cauldron-reconciler/internal/common/dates"
	apperrors "cauldron-reconciler/internal/common/errors"
	"cauldron-reconciler/internal/models"
)

// maxReportedRecordErrors caps how many invalid records are listed in a
// parse failure message.
const maxReportedRecordErrors = 5

var ticketSchema = mustCompileSchema(map[string]interface{}{
	"type":     "object",
	"required": []interface{}{models.ColumnCauldronID, models.ColumnDate, models.ColumnAmountCollected},
	"properties": map[string]interface{}{
		models.ColumnCauldronID:      map[string]interface{}{"type": "string", "minLength": 1},
		models.ColumnDate:            map[string]interface{}{"type": "string", "minLength": 1},
		models.ColumnAmountCollected: map[string]interface{}{"type": "number"},
	},
})

func mustCompileSchema(schema map[string]interface{}) *gojsonschema.Schema {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("tickets: invalid record schema: %v", err))
	}
	return compiled
}

// Decode turns an upstream response body into validated tickets. It also
// reports which payload shape was recognized.
func Decode(body []byte) ([]models.Ticket, Shape, error) {
	if !gjson.ValidBytes(body) {
		return nil, "", apperrors.NewParseFailedError(fmt.Errorf("response body is not valid JSON"))
	}

	shape, records, err := extractRecords(gjson.ParseBytes(body))
	if err != nil {
		return nil, shape, err
	}
	if len(records) == 0 {
		return nil, shape, apperrors.NewEmptyDatasetError()
	}

	for i, record := range records {
		if !record.IsObject() {
			return nil, shape, apperrors.NewParseFailedError(
				fmt.Errorf("record %d is %s, not an object", i, describe(record)))
		}
	}

	columns := collectColumns(records)
	if missing := missingColumns(columns); len(missing) > 0 {
		return nil, shape, apperrors.NewMissingColumnsError(columns, missing)
	}

	if err := validateRecords(records); err != nil {
		return nil, shape, apperrors.NewParseFailedError(err)
	}

	tickets := make([]models.Ticket, 0, len(records))
	for i, record := range records {
		ticket, err := toTicket(record)
		if err != nil {
			return nil, shape, apperrors.NewParseFailedError(fmt.Errorf("record %d: %w", i, err))
		}
		tickets = append(tickets, ticket)
	}
	return tickets, shape, nil
}

// collectColumns returns the union of record keys in first-seen order.
// Nested objects contribute dotted names ("meta.source").
func collectColumns(records []gjson.Result) []string {
	seen := make(map[string]bool)
	var columns []string
	for _, record := range records {
		appendColumns("", record, seen, &columns)
	}
	return columns
}

func appendColumns(prefix string, obj gjson.Result, seen map[string]bool, columns *[]string) {
	obj.ForEach(func(key, value gjson.Result) bool {
		name := key.String()
		if prefix != "" {
			name = prefix + "." + name
		}
		if value.IsObject() && len(value.Map()) > 0 {
			appendColumns(name, value, seen, columns)
			return true
		}
		if !seen[name] {
			seen[name] = true
			*columns = append(*columns, name)
		}
		return true
	})
}

func missingColumns(columns []string) []string {
	present := make(map[string]bool, len(columns))
	for _, c := range columns {
		present[c] = true
	}
	var missing []string
	for _, required := range models.RequiredTicketColumns {
		if !present[required] {
			missing = append(missing, required)
		}
	}
	return missing
}

// validateRecords checks every record against the ticket schema and
// aggregates the first few failures into one error.
func validateRecords(records []gjson.Result) error {
	var problems []string
	invalid := 0
	for i, record := range records {
		result, err := ticketSchema.Validate(gojsonschema.NewStringLoader(record.Raw))
		if err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if result.Valid() {
			continue
		}
		invalid++
		if len(problems) >= maxReportedRecordErrors {
			continue
		}
		descs := make([]string, len(result.Errors()))
		for j, desc := range result.Errors() {
			descs[j] = desc.String()
		}
		problems = append(problems, fmt.Sprintf("record %d: %s", i, strings.Join(descs, "; ")))
	}

	if invalid == 0 {
		return nil
	}
	if invalid > len(problems) {
		problems = append(problems, fmt.Sprintf("and %d more invalid records", invalid-len(problems)))
	}
	return fmt.Errorf("%d invalid ticket records: %s", invalid, strings.Join(problems, ", "))
}

func toTicket(record gjson.Result) (models.Ticket, error) {
	rawDate := record.Get(models.ColumnDate).String()
	date, err := dates.Normalize(rawDate)
	if err != nil {
		return models.Ticket{}, err
	}

	// Literals such as 1e400 are valid JSON numbers but overflow float64.
	amount := record.Get(models.ColumnAmountCollected).Float()
	if math.IsInf(amount, 0) || math.IsNaN(amount) {
		return models.Ticket{}, fmt.Errorf("%s %s is not a finite number",
			models.ColumnAmountCollected, record.Get(models.ColumnAmountCollected).Raw)
	}

	return models.Ticket{
		TicketID:        optionalString(record, "ticket_id"),
		CauldronID:      record.Get(models.ColumnCauldronID).String(),
		CourierID:       optionalString(record, "courier_id"),
		Date:            date,
		AmountCollected: amount,
	}, nil
}

func optionalString(record gjson.Result, key string) string {
	v := record.Get(key)
	if v.Type != gjson.String {
		return ""
	}
	return v.String()
}
