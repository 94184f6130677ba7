package salary

type AdjustOverrideRequest struct {
	DriverID string  `json:"driver_id" binding:"required,uuid"`
	Date     string  `json:"date"` // YYYY-MM-DD, defaults to today
	Amount   *int64  `json:"amount" binding:"required"`
	Reason   *string `json:"reason"`
}

type OverrideResponse struct {
	ID         string  `json:"id"`
	DriverID   string  `json:"driver_id"`
	Date       string  `json:"date"`
	ActualPaid int64   `json:"actual_paid"`
	Reason     *string `json:"reason,omitempty"`
}

type BreakdownEntryResponse struct {
	Date       string `json:"date"`
	Amount     int64  `json:"amount"`
	Overridden bool   `json:"overridden"`
}

type BreakdownResponse struct {
	DriverID  string                   `json:"driver_id"`
	Breakdown []BreakdownEntryResponse `json:"breakdown"`
}

type UnpaidTotalResponse struct {
	DriverID     string `json:"driver_id"`
	TotalPayable int64  `json:"total_payable"`
}

type PayoutResponse struct {
	ID          string  `json:"id"`
	DriverID    string  `json:"driver_id"`
	TotalAmount int64   `json:"total_amount"`
	PaidAt      string  `json:"paid_at"`
	ReceiptPath *string `json:"receipt_path,omitempty"`
}

type SettlementResponse struct {
	DriverID    string  `json:"driver_id"`
	Settled     bool    `json:"settled"`
	TotalAmount int64   `json:"total_amount"`
	PayoutID    *string `json:"payout_id,omitempty"`
	PaidAt      *string `json:"paid_at,omitempty"`
}

type ExportFile struct {
	FileName    string
	ContentType string
	Content     []byte
}
