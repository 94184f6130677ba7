package attendance

import (
	"context"
	"database/sql"
	"time"

	"go-courier/internal/shared/dateutil"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository
	Create(ctx context.Context, rec *AttendanceRecord) error
	ListByDriver(ctx context.Context, driverID string, from, to time.Time) ([]AttendanceRecord, error)
	ListForDay(ctx context.Context, driverID string, day time.Time) ([]AttendanceRecord, error)
}

type repository struct {
	db *gorm.DB
	tx *sql.Tx
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *sql.Tx) Repository {
	return &repository{db: r.db, tx: tx}
}

func (r *repository) Create(ctx context.Context, rec *AttendanceRecord) error {
	query := `
INSERT INTO attendance_records (id, driver_id, date, shift, marked_at, created_at)
VALUES ($1, $2, $3::date, $4, $5, NOW())
`
	_, err := r.execer().ExecContext(
		ctx, query,
		rec.ID, rec.DriverID, dateutil.DayKey(rec.Date), rec.Shift, rec.MarkedAt,
	)
	return err
}

func (r *repository) ListByDriver(ctx context.Context, driverID string, from, to time.Time) ([]AttendanceRecord, error) {
	var recs []AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("driver_id = ?", driverID).
		Where("date >= ?::date AND date <= ?::date", dateutil.DayKey(from), dateutil.DayKey(to)).
		Order("date ASC, shift ASC").
		Find(&recs).Error
	return recs, err
}

func (r *repository) ListForDay(ctx context.Context, driverID string, day time.Time) ([]AttendanceRecord, error) {
	var recs []AttendanceRecord
	err := r.db.WithContext(ctx).
		Where("driver_id = ?", driverID).
		Where("date = ?::date", dateutil.DayKey(day)).
		Find(&recs).Error
	return recs, err
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		panic("attendance repository: underlying sql.DB unavailable: " + err.Error())
	}
	return sqlDB
}
