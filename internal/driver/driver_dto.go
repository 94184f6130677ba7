package driver

type UpdateDriverRequest struct {
	Name        string  `json:"name" binding:"required"`
	Phone       *string `json:"phone"`
	VehicleType string  `json:"vehicle_type" binding:"required,oneof=BIKE MINI_TRUCK"`
	Shift       string  `json:"shift" binding:"required,oneof=MORNING EVENING BOTH"`
}

type DriverResponse struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Phone       *string `json:"phone,omitempty"`
	VehicleType string  `json:"vehicle_type"`
	Shift       string  `json:"shift"`
	BaseSalary  int64   `json:"base_salary"`
	JoiningDate string  `json:"joining_date"`
}

// DriverListItem is a driver plus today's delivery workload, used on the
// admin dashboard.
type DriverListItem struct {
	DriverResponse
	AssignedToday  int64 `json:"assigned_today"`
	DeliveredToday int64 `json:"delivered_today"`
}

type PerformanceResponse struct {
	DriverID         string  `json:"driver_id"`
	TotalDeliveries  int64   `json:"total_deliveries"`
	Delivered        int64   `json:"delivered"`
	SuccessRate      float64 `json:"success_rate"`
	DaysSinceJoining int64   `json:"days_since_joining"`
	DaysPresent      int64   `json:"days_present"`
	AttendanceRate   float64 `json:"attendance_rate"`
}
