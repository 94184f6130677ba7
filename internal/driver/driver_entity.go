package driver

import (
	"crypto/rand"
	"time"

	"github.com/google/uuid"
)

type VehicleType string

const (
	VehicleBike      VehicleType = "BIKE"
	VehicleMiniTruck VehicleType = "MINI_TRUCK"
)

type Shift string

const (
	ShiftMorning Shift = "MORNING"
	ShiftEvening Shift = "EVENING"
	ShiftBoth    Shift = "BOTH"
)

// baseSalaryTable maps a vehicle and shift combination to the monthly
// base salary in currency minor units.
var baseSalaryTable = map[VehicleType]map[Shift]int64{
	VehicleBike: {
		ShiftMorning: 8000,
		ShiftEvening: 5000,
		ShiftBoth:    15000,
	},
	VehicleMiniTruck: {
		ShiftMorning: 12000,
		ShiftEvening: 8000,
		ShiftBoth:    25000,
	},
}

func BaseSalaryFor(vehicle VehicleType, shift Shift) (int64, bool) {
	shifts, ok := baseSalaryTable[vehicle]
	if !ok {
		return 0, false
	}
	salary, ok := shifts[shift]
	return salary, ok
}

// Admin is the fleet-owner profile behind an ADMIN user. Drivers join the
// admin's fleet by presenting the invite key at signup.
type Admin struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;uniqueIndex;not null"`
	InviteKey string    `gorm:"type:varchar(16);uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Admin) TableName() string { return "admins" }

type Driver struct {
	ID               uuid.UUID   `gorm:"type:uuid;primaryKey"`
	AdminID          uuid.UUID   `gorm:"type:uuid;not null;index"`
	UserID           uuid.UUID   `gorm:"type:uuid;uniqueIndex;not null"`
	Name             string      `gorm:"type:varchar(255);not null"`
	Phone            *string     `gorm:"type:varchar(32)"`
	VehicleType      VehicleType `gorm:"type:varchar(20);not null"`
	Shift            Shift       `gorm:"type:varchar(20);not null"`
	BaseSalary       int64       `gorm:"not null"`
	JoiningDate      time.Time   `gorm:"type:date;not null"`
	LastSalaryPayout *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (Driver) TableName() string { return "drivers" }

const inviteKeyCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// NewInviteKey returns an 8-character key from an unambiguous charset.
func NewInviteKey() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic("invite key generation: " + err.Error())
	}
	for i, b := range buf {
		buf[i] = inviteKeyCharset[int(b)%len(inviteKeyCharset)]
	}
	return string(buf)
}
