package driver

import (
	"context"
	"database/sql"
	"time"

	"go-courier/internal/tenant"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository

	CreateAdmin(ctx context.Context, admin *Admin) error
	FindAdminByInviteKey(ctx context.Context, key string) (*Admin, error)
	FindAdminByUser(ctx context.Context, userID string) (*Admin, error)

	CreateDriver(ctx context.Context, d *Driver) error
	FindByID(ctx context.Context, id string) (*Driver, error)
	FindByIDAndAdmin(ctx context.Context, adminID, id string) (*Driver, error)
	FindByUser(ctx context.Context, userID string) (*Driver, error)
	ListByAdmin(ctx context.Context, adminID string) ([]Driver, error)
	// ListWithWorkload joins today's deliveries onto each driver row.
	// dayStart and dayEnd bound "today" in the reference timezone.
	ListWithWorkload(ctx context.Context, adminID string, dayStart, dayEnd time.Time) ([]DriverWorkloadRow, error)
	Update(ctx context.Context, d *Driver) error

	// RemoveCascade deletes the driver along with its salary history and
	// attendance, detaches its deliveries and removes the backing user
	// account. Only valid inside a tx.
	RemoveCascade(ctx context.Context, driverID, userID string) error

	DeliveryStats(ctx context.Context, driverID string) (total, delivered int64, err error)
	AttendanceDays(ctx context.Context, driverID string) (int64, error)
}

type DriverWorkloadRow struct {
	Driver
	AssignedToday  int64
	DeliveredToday int64
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

func (r *repository) CreateAdmin(ctx context.Context, admin *Admin) error {
	query := `
INSERT INTO admins (id, user_id, invite_key, created_at, updated_at)
VALUES ($1, $2, $3, NOW(), NOW())
`
	_, err := r.execer().ExecContext(ctx, query, admin.ID, admin.UserID, admin.InviteKey)
	return err
}

func (r *repository) FindAdminByInviteKey(ctx context.Context, key string) (*Admin, error) {
	var admin Admin
	err := r.db.WithContext(ctx).
		First(&admin, "invite_key = ?", key).Error
	return &admin, err
}

func (r *repository) FindAdminByUser(ctx context.Context, userID string) (*Admin, error) {
	var admin Admin
	err := r.db.WithContext(ctx).
		First(&admin, "user_id = ?", userID).Error
	return &admin, err
}

func (r *repository) CreateDriver(ctx context.Context, d *Driver) error {
	query := `
INSERT INTO drivers (
	id, admin_id, user_id, name, phone, vehicle_type, shift,
	base_salary, joining_date, created_at, updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9::date, NOW(), NOW())
`
	_, err := r.execer().ExecContext(
		ctx, query,
		d.ID, d.AdminID, d.UserID, d.Name, d.Phone, d.VehicleType, d.Shift,
		d.BaseSalary, d.JoiningDate.Format("2006-01-02"),
	)
	return err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Driver, error) {
	var d Driver
	err := r.db.WithContext(ctx).
		First(&d, "id = ?", id).Error
	return &d, err
}

func (r *repository) FindByIDAndAdmin(ctx context.Context, adminID, id string) (*Driver, error) {
	var d Driver
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(adminID)).
		First(&d, "id = ?", id).Error
	return &d, err
}

func (r *repository) FindByUser(ctx context.Context, userID string) (*Driver, error) {
	var d Driver
	err := r.db.WithContext(ctx).
		First(&d, "user_id = ?", userID).Error
	return &d, err
}

func (r *repository) ListByAdmin(ctx context.Context, adminID string) ([]Driver, error) {
	var drivers []Driver
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(adminID)).
		Order("created_at ASC").
		Find(&drivers).Error
	return drivers, err
}

func (r *repository) ListWithWorkload(ctx context.Context, adminID string, dayStart, dayEnd time.Time) ([]DriverWorkloadRow, error) {
	query := `
SELECT
	d.*,
	COUNT(del.id) FILTER (
		WHERE del.assigned_at >= ? AND del.assigned_at < ?
	) AS assigned_today,
	COUNT(del.id) FILTER (
		WHERE del.status = 'DELIVERED' AND del.delivered_at >= ? AND del.delivered_at < ?
	) AS delivered_today
FROM drivers d
LEFT JOIN deliveries del ON del.driver_id = d.id
WHERE d.admin_id = ?
GROUP BY d.id
ORDER BY d.created_at ASC
`
	var rows []DriverWorkloadRow
	err := r.db.WithContext(ctx).
		Raw(query, dayStart, dayEnd, dayStart, dayEnd, adminID).
		Scan(&rows).Error
	return rows, err
}

func (r *repository) Update(ctx context.Context, d *Driver) error {
	return r.db.WithContext(ctx).Save(d).Error
}

func (r *repository) RemoveCascade(ctx context.Context, driverID, userID string) error {
	statements := []string{
		`DELETE FROM daily_salary_overrides WHERE driver_id = $1`,
		`DELETE FROM salary_payouts WHERE driver_id = $1`,
		`DELETE FROM attendance_records WHERE driver_id = $1`,
		`UPDATE deliveries
		 SET driver_id = NULL,
		     status = CASE WHEN status = 'DELIVERED' THEN status ELSE 'NOT_PICKED' END,
		     assigned_at = NULL
		 WHERE driver_id = $1`,
		`DELETE FROM drivers WHERE id = $1`,
	}
	for _, stmt := range statements {
		if _, err := r.execer().ExecContext(ctx, stmt, driverID); err != nil {
			return err
		}
	}
	_, err := r.execer().ExecContext(ctx, `DELETE FROM users WHERE id = $1`, userID)
	return err
}

func (r *repository) DeliveryStats(ctx context.Context, driverID string) (int64, int64, error) {
	var stats struct {
		Total     int64
		Delivered int64
	}
	err := r.db.WithContext(ctx).
		Table("deliveries").
		Select(`COUNT(*) AS total, COUNT(*) FILTER (WHERE status = 'DELIVERED') AS delivered`).
		Where("driver_id = ?", driverID).
		Scan(&stats).Error
	return stats.Total, stats.Delivered, err
}

func (r *repository) AttendanceDays(ctx context.Context, driverID string) (int64, error) {
	var days int64
	err := r.db.WithContext(ctx).
		Table("attendance_records").
		Select("COUNT(DISTINCT date)").
		Where("driver_id = ?", driverID).
		Scan(&days).Error
	return days, err
}

func (r *repository) execer() interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
} {
	if r.tx != nil {
		return r.tx
	}
	sqlDB, err := r.db.DB()
	if err != nil {
		panic("driver repository: underlying sql.DB unavailable: " + err.Error())
	}
	return sqlDB
}
