package delivery

import (
	"time"

	"go-courier/internal/driver"

	"github.com/google/uuid"
)

type PackageSize string

const (
	SizeSmall PackageSize = "SMALL"
	SizeLarge PackageSize = "LARGE"
)

type Status string

const (
	StatusNotPicked Status = "NOT_PICKED"
	StatusInTransit Status = "IN_TRANSIT"
	StatusDelivered Status = "DELIVERED"
)

// Workload ceilings per vehicle. A mini truck carries any mix up to 40
// open deliveries; a bike only takes small packages, up to 25.
const (
	BikeSmallLimit     = 25
	MiniTruckLoadLimit = 40
)

type Delivery struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey"`
	AdminID      uuid.UUID   `gorm:"type:uuid;not null;index"`
	DriverID     *uuid.UUID  `gorm:"type:uuid;index"`
	CustomerName string      `gorm:"type:varchar(255);not null"`
	Address      string      `gorm:"type:text;not null"`
	Phone        *string     `gorm:"type:varchar(32)"`
	PackageSize  PackageSize `gorm:"type:varchar(10);not null"`
	Status       Status      `gorm:"type:varchar(20);not null;default:'NOT_PICKED'"`
	Price        int64       `gorm:"not null;default:0"`
	AssignedAt   *time.Time
	DeliveredAt  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (Delivery) TableName() string { return "deliveries" }

// PriceFor is the per-delivery charge given the package size and the
// assigned driver's vehicle and shift.
func PriceFor(size PackageSize, vehicle driver.VehicleType, shift driver.Shift) int64 {
	switch {
	case size == SizeSmall && vehicle == driver.VehicleBike:
		if shift == driver.ShiftEvening {
			return 45
		}
		return 50
	case size == SizeLarge && vehicle == driver.VehicleMiniTruck:
		if shift == driver.ShiftEvening {
			return 100
		}
		return 120
	default:
		return 60
	}
}

// ValidTransition enforces the delivery lifecycle: NOT_PICKED -> IN_TRANSIT
// -> DELIVERED, no skipping and no going back.
func ValidTransition(from, to Status) bool {
	switch from {
	case StatusNotPicked:
		return to == StatusInTransit
	case StatusInTransit:
		return to == StatusDelivered
	default:
		return false
	}
}
