package models

// DiscrepancyStatus classifies the outcome of comparing ticket volume to drain volume.
type DiscrepancyStatus string

const (
	StatusOK            DiscrepancyStatus = "OK"
	StatusOverReported  DiscrepancyStatus = "OVER_REPORTED"
	StatusUnderReported DiscrepancyStatus = "UNDER_REPORTED"
	StatusMissingTicket DiscrepancyStatus = "MISSING_TICKET"
)

const (
	DefaultTolerance = 0.05
	DefaultThreshold = 5.0
)

// ReconciliationRequest is one evaluation input. Date is the caller's raw
// date-like value; it is normalized during evaluation.
type ReconciliationRequest struct {
	CauldronID  string  `json:"cauldron_id"`
	Date        string  `json:"date"`
	DrainVolume float64 `json:"drain_volume"`
	Tolerance   float64 `json:"tolerance"`
	Threshold   float64 `json:"threshold"`
}

// NewReconciliationRequest builds a request with the default tolerance and threshold.
func NewReconciliationRequest(cauldronID, date string, drainVolume float64) ReconciliationRequest {
	return ReconciliationRequest{
		CauldronID:  cauldronID,
		Date:        date,
		DrainVolume: drainVolume,
		Tolerance:   DefaultTolerance,
		Threshold:   DefaultThreshold,
	}
}

// ReconciliationResult is the classified comparison for one cauldron and date.
// NumTickets is omitted for MISSING_TICKET results.
type ReconciliationResult struct {
	CauldronID        string            `json:"cauldron_id"`
	Date              string            `json:"date"`
	DrainVolume       float64           `json:"drain_volume"`
	TotalTicketVolume float64           `json:"total_ticket_volume"`
	Difference        float64           `json:"difference"`
	RelativeDiff      float64           `json:"relative_diff"`
	Status            DiscrepancyStatus `json:"status"`
	NumTickets        int               `json:"num_tickets,omitempty"`
}
