package delivery

type CreateDeliveryRequest struct {
	CustomerName string  `json:"customer_name" binding:"required"`
	Address      string  `json:"address" binding:"required"`
	Phone        *string `json:"phone"`
	PackageSize  string  `json:"package_size" binding:"required,oneof=SMALL LARGE"`
}

type AssignRequest struct {
	DriverID string `json:"driver_id" binding:"required,uuid"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=IN_TRANSIT DELIVERED"`
}

type DeliveryResponse struct {
	ID           string  `json:"id"`
	CustomerName string  `json:"customer_name"`
	Address      string  `json:"address"`
	Phone        *string `json:"phone,omitempty"`
	PackageSize  string  `json:"package_size"`
	Status       string  `json:"status"`
	Price        int64   `json:"price"`
	DriverID     string  `json:"driver_id,omitempty"`
	AssignedAt   string  `json:"assigned_at,omitempty"`
	DeliveredAt  string  `json:"delivered_at,omitempty"`
}

type EligibleDriverResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	VehicleType string `json:"vehicle_type"`
	Shift       string `json:"shift"`
	OpenLoad    int64  `json:"open_load"`
	SmallLoad   int64  `json:"small_load"`
}

type BulkUploadResponse struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}
