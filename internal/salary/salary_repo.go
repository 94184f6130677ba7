package salary

import (
	"context"
	"database/sql"
	"time"

	"go-courier/internal/shared/dateutil"
	"go-courier/internal/tenant"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository

	FindDriverByID(ctx context.Context, driverID string) (*Driver, error)
	FindDriverByIDAndAdmin(ctx context.Context, adminID, driverID string) (*Driver, error)
	FindDriverByUser(ctx context.Context, userID string) (*Driver, error)
	// LockDriver reads the driver row FOR UPDATE so concurrent settlements
	// for the same driver serialize on the row lock. Only valid inside a tx.
	LockDriver(ctx context.Context, driverID string) (*Driver, error)

	ListOverrides(ctx context.Context, driverID string) ([]DailyOverride, error)
	UpsertOverride(ctx context.Context, driverID string, day time.Time, amount int64, reason *string) (*DailyOverride, error)

	ListPayouts(ctx context.Context, driverID string) ([]PayoutRecord, error)
	LatestPayout(ctx context.Context, driverID string) (*PayoutRecord, error)
	CreatePayout(ctx context.Context, p *PayoutRecord) error
	// AdvancePayoutBoundary keeps drivers.last_salary_payout consistent
	// with the newest ledger entry.
	AdvancePayoutBoundary(ctx context.Context, driverID string, paidAt time.Time) error

	FindPayout(ctx context.Context, payoutID string) (*PayoutRecord, error)
	SetPayoutReceipt(ctx context.Context, payoutID, path string, generatedAt time.Time) error
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

func (r *repository) FindDriverByID(ctx context.Context, driverID string) (*Driver, error) {
	var driver Driver
	err := r.db.WithContext(ctx).
		First(&driver, "id = ?", driverID).Error
	return &driver, err
}

func (r *repository) FindDriverByIDAndAdmin(ctx context.Context, adminID, driverID string) (*Driver, error) {
	var driver Driver
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(adminID)).
		First(&driver, "id = ?", driverID).Error
	return &driver, err
}

func (r *repository) FindDriverByUser(ctx context.Context, userID string) (*Driver, error) {
	var driver Driver
	err := r.db.WithContext(ctx).
		First(&driver, "user_id = ?", userID).Error
	return &driver, err
}

func (r *repository) LockDriver(ctx context.Context, driverID string) (*Driver, error) {
	query := `
SELECT id, admin_id, user_id, name, base_salary, joining_date, last_salary_payout
FROM drivers
WHERE id = $1
FOR UPDATE
`
	row := r.querier().QueryRowContext(ctx, query, driverID)

	var (
		driver     Driver
		lastPayout sql.NullTime
	)
	if err := row.Scan(
		&driver.ID,
		&driver.AdminID,
		&driver.UserID,
		&driver.Name,
		&driver.BaseSalary,
		&driver.JoiningDate,
		&lastPayout,
	); err != nil {
		return nil, err
	}
	if lastPayout.Valid {
		t := lastPayout.Time
		driver.LastSalaryPayout = &t
	}
	return &driver, nil
}

func (r *repository) ListOverrides(ctx context.Context, driverID string) ([]DailyOverride, error) {
	var overrides []DailyOverride
	err := r.db.WithContext(ctx).
		Where("driver_id = ?", driverID).
		Order("date ASC").
		Find(&overrides).Error
	return overrides, err
}

func (r *repository) UpsertOverride(ctx context.Context, driverID string, day time.Time, amount int64, reason *string) (*DailyOverride, error) {
	// Atomic upsert keyed on (driver_id, date); the day is passed as a
	// YYYY-MM-DD string so the date column can never shift across a
	// timezone conversion.
	query := `
INSERT INTO daily_salary_overrides (id, driver_id, date, actual_paid, reason, created_at, updated_at)
VALUES ($1, $2, $3::date, $4, $5, NOW(), NOW())
ON CONFLICT (driver_id, date) DO UPDATE
SET actual_paid = EXCLUDED.actual_paid, reason = EXCLUDED.reason, updated_at = NOW()
RETURNING id
`
	var id uuid.UUID
	row := r.querier().QueryRowContext(
		ctx, query,
		uuid.New(), driverID, dateutil.DayKey(day), amount, reason,
	)
	if err := row.Scan(&id); err != nil {
		return nil, err
	}

	return &DailyOverride{
		ID:         id,
		DriverID:   uuid.MustParse(driverID),
		Date:       dateutil.DayStart(day),
		ActualPaid: amount,
		Reason:     reason,
	}, nil
}

func (r *repository) ListPayouts(ctx context.Context, driverID string) ([]PayoutRecord, error) {
	var payouts []PayoutRecord
	err := r.db.WithContext(ctx).
		Where("driver_id = ?", driverID).
		Order("paid_at DESC").
		Find(&payouts).Error
	return payouts, err
}

func (r *repository) LatestPayout(ctx context.Context, driverID string) (*PayoutRecord, error) {
	var payout PayoutRecord
	err := r.db.WithContext(ctx).
		Where("driver_id = ?", driverID).
		Order("paid_at DESC").
		First(&payout).Error
	if err != nil {
		return nil, err
	}
	return &payout, nil
}

func (r *repository) CreatePayout(ctx context.Context, p *PayoutRecord) error {
	query := `
INSERT INTO salary_payouts (id, driver_id, total_amount, paid_at, created_at)
VALUES ($1, $2, $3, $4, NOW())
`
	_, err := r.execer().ExecContext(ctx, query, p.ID, p.DriverID, p.TotalAmount, p.PaidAt)
	return err
}

func (r *repository) AdvancePayoutBoundary(ctx context.Context, driverID string, paidAt time.Time) error {
	query := `
UPDATE drivers
SET last_salary_payout = $2, updated_at = NOW()
WHERE id = $1
`
	_, err := r.execer().ExecContext(ctx, query, driverID, paidAt)
	return err
}

func (r *repository) FindPayout(ctx context.Context, payoutID string) (*PayoutRecord, error) {
	var payout PayoutRecord
	err := r.db.WithContext(ctx).
		First(&payout, "id = ?", payoutID).Error
	if err != nil {
		return nil, err
	}
	return &payout, nil
}

func (r *repository) SetPayoutReceipt(ctx context.Context, payoutID, path string, generatedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&PayoutRecord{}).
		Where("id = ?", payoutID).
		Updates(map[string]any{
			"receipt_path":         path,
			"receipt_generated_at": generatedAt,
		}).Error
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	return r.sqlDB()
}

func (r *repository) querier() interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
} {
	if r.tx != nil {
		return r.tx
	}
	return r.sqlDB()
}

func (r *repository) sqlDB() *sql.DB {
	sqlDB, err := r.db.DB()
	if err != nil {
		panic("salary repository: underlying sql.DB unavailable: " + err.Error())
	}
	return sqlDB
}
