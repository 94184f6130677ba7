package attendance

type MarkRequest struct {
	Shift string `json:"shift" binding:"required,oneof=MORNING EVENING"`
}

type AttendanceResponse struct {
	ID       string `json:"id"`
	DriverID string `json:"driver_id"`
	Date     string `json:"date"`
	Shift    string `json:"shift"`
	MarkedAt string `json:"marked_at"`
}
