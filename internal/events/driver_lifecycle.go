package events

import "time"

const DriverLifecycleTopic = "logistics.driver.lifecycle.v1"

// DriverLifecycleEvent covers driver fleet membership changes; EventType is
// "driver_registered" or "driver_removed".
type DriverLifecycleEvent struct {
	EventType  string    `json:"event_type"`
	DriverID   string    `json:"driver_id"`
	AdminID    string    `json:"admin_id"`
	DriverName string    `json:"driver_name"`
	OccurredAt time.Time `json:"occurred_at"`
}
