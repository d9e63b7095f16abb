package models

// Ticket is one reported-volume record from the upstream tickets API.
// Date is already normalized to YYYY-MM-DD.
type Ticket struct {
	TicketID        string  `json:"ticket_id,omitempty"`
	CauldronID      string  `json:"cauldron_id"`
	CourierID       string  `json:"courier_id,omitempty"`
	Date            string  `json:"date"`
	AmountCollected float64 `json:"amount_collected"`
}

// Required ticket columns, in the order they are reported when missing.
const (
	ColumnCauldronID      = "cauldron_id"
	ColumnDate            = "date"
	ColumnAmountCollected = "amount_collected"
)

var RequiredTicketColumns = []string{ColumnCauldronID, ColumnDate, ColumnAmountCollected}
