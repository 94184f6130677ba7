package salary

import (
	"time"

	"github.com/google/uuid"
)

// DailyOverride is an admin-entered actual-paid amount for one calendar
// day, replacing the computed daily rate for that day. Exactly one row per
// (driver, day); a second adjustment for the same day overwrites the first.
type DailyOverride struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DriverID   uuid.UUID `gorm:"type:uuid;not null;index:idx_override_driver_date,unique"`
	Date       time.Time `gorm:"type:date;not null;index:idx_override_driver_date,unique"`
	ActualPaid int64     `gorm:"type:bigint;not null"`
	Reason     *string   `gorm:"type:text"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (DailyOverride) TableName() string {
	return "daily_salary_overrides"
}

// PayoutRecord is one settlement in the append-only ledger. Rows are never
// updated or deleted (the receipt columns are filled in asynchronously and
// carry no settlement semantics). The most recent paid_at is the
// authoritative paid-through boundary.
type PayoutRecord struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	DriverID    uuid.UUID `gorm:"type:uuid;not null;index"`
	TotalAmount int64     `gorm:"type:bigint;not null"`
	PaidAt      time.Time `gorm:"not null;index"`

	ReceiptPath        *string
	ReceiptGeneratedAt *time.Time

	CreatedAt time.Time
}

func (PayoutRecord) TableName() string {
	return "salary_payouts"
}

// Driver is the salary package's projection of the drivers table: just the
// columns settlement needs.
type Driver struct {
	ID               uuid.UUID `gorm:"type:uuid;primaryKey"`
	AdminID          uuid.UUID `gorm:"type:uuid"`
	UserID           uuid.UUID `gorm:"type:uuid"`
	Name             string
	BaseSalary       int64     `gorm:"type:bigint"`
	JoiningDate      time.Time `gorm:"type:date"`
	LastSalaryPayout *time.Time
}

func (Driver) TableName() string {
	return "drivers"
}
