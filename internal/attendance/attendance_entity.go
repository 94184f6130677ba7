package attendance

import (
	"time"

	"go-courier/internal/driver"

	"github.com/google/uuid"
)

// AttendanceRecord is one shift worked by a driver on one calendar day.
// The unique index makes double-marking a database-level conflict.
type AttendanceRecord struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey"`
	DriverID  uuid.UUID    `gorm:"type:uuid;not null;uniqueIndex:idx_attendance_driver_date_shift"`
	Date      time.Time    `gorm:"type:date;not null;uniqueIndex:idx_attendance_driver_date_shift"`
	Shift     driver.Shift `gorm:"type:varchar(20);not null;uniqueIndex:idx_attendance_driver_date_shift"`
	MarkedAt  time.Time    `gorm:"not null"`
	CreatedAt time.Time
}

func (AttendanceRecord) TableName() string { return "attendance_records" }
