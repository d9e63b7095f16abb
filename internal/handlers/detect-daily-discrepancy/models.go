// internal/handlers/detect-daily-discrepancy/models.go
package detectdailydiscrepancy

// Input is the decoded request body. Tolerance and Threshold are nil when
// the client omits them or sends null.
type Input struct {
	Tolerance    *float64
	Threshold    *float64
	CauldronData CauldronData
}

type CauldronData struct {
	CauldronID  string
	DateTime    string
	DrainVolume float64
}

// Body and cauldron_data field names.
const (
	fieldTolerance    = "tolerance"
	fieldThreshold    = "threshold"
	fieldCauldronData = "cauldron_data"
	fieldCauldronID   = "cauldron_id"
	fieldDateTime     = "date_time"
	fieldDrainVolume  = "drain_volume"
)
