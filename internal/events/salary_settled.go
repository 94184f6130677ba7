package events

import "time"

const SalarySettledTopic = "logistics.salary.settled.v1"

type SalarySettledEvent struct {
	EventType   string    `json:"event_type"`
	PayoutID    string    `json:"payout_id"`
	DriverID    string    `json:"driver_id"`
	DriverName  string    `json:"driver_name"`
	AdminID     string    `json:"admin_id"`
	TotalAmount int64     `json:"total_amount"`
	PaidAt      time.Time `json:"paid_at"`
	OccurredAt  time.Time `json:"occurred_at"`
}
