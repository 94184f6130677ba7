package delivery

import (
	"context"
	"database/sql"
	"time"

	"go-courier/internal/driver"
	"go-courier/internal/tenant"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *sql.Tx) Repository

	Create(ctx context.Context, d *Delivery) error
	CreateBatch(ctx context.Context, deliveries []Delivery) error
	FindByIDAndAdmin(ctx context.Context, adminID, id string) (*Delivery, error)
	FindByID(ctx context.Context, id string) (*Delivery, error)
	ListByAdmin(ctx context.Context, adminID string, status string) ([]Delivery, error)
	ListAssignedToday(ctx context.Context, driverID string, dayStart, dayEnd time.Time) ([]Delivery, error)

	// DriversWithOpenLoad returns the admin's drivers with their current
	// open (not yet delivered) load, split out by small packages.
	DriversWithOpenLoad(ctx context.Context, adminID string) ([]DriverLoadRow, error)

	Assign(ctx context.Context, deliveryID, driverID string, price int64, assignedAt time.Time) error
	UpdateStatus(ctx context.Context, deliveryID string, status Status, deliveredAt *time.Time) error
}

type DriverLoadRow struct {
	driver.Driver
	OpenLoad  int64
	SmallLoad int64
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

func (r *repository) Create(ctx context.Context, d *Delivery) error {
	return r.db.WithContext(ctx).Create(d).Error
}

func (r *repository) CreateBatch(ctx context.Context, deliveries []Delivery) error {
	if len(deliveries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(deliveries, 100).Error
}

func (r *repository) FindByIDAndAdmin(ctx context.Context, adminID, id string) (*Delivery, error) {
	var d Delivery
	err := r.db.WithContext(ctx).
		Scopes(tenant.Scope(adminID)).
		First(&d, "id = ?", id).Error
	return &d, err
}

func (r *repository) FindByID(ctx context.Context, id string) (*Delivery, error) {
	var d Delivery
	err := r.db.WithContext(ctx).
		First(&d, "id = ?", id).Error
	return &d, err
}

func (r *repository) ListByAdmin(ctx context.Context, adminID string, status string) ([]Delivery, error) {
	q := r.db.WithContext(ctx).
		Scopes(tenant.Scope(adminID)).
		Order("created_at DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var deliveries []Delivery
	err := q.Find(&deliveries).Error
	return deliveries, err
}

func (r *repository) ListAssignedToday(ctx context.Context, driverID string, dayStart, dayEnd time.Time) ([]Delivery, error) {
	var deliveries []Delivery
	err := r.db.WithContext(ctx).
		Where("driver_id = ?", driverID).
		Where("assigned_at >= ? AND assigned_at < ?", dayStart, dayEnd).
		Order("assigned_at ASC").
		Find(&deliveries).Error
	return deliveries, err
}

func (r *repository) DriversWithOpenLoad(ctx context.Context, adminID string) ([]DriverLoadRow, error) {
	query := `
SELECT
	d.*,
	COUNT(del.id) FILTER (WHERE del.status <> 'DELIVERED') AS open_load,
	COUNT(del.id) FILTER (
		WHERE del.status <> 'DELIVERED' AND del.package_size = 'SMALL'
	) AS small_load
FROM drivers d
LEFT JOIN deliveries del ON del.driver_id = d.id
WHERE d.admin_id = ?
GROUP BY d.id
ORDER BY d.name ASC
`
	var rows []DriverLoadRow
	err := r.db.WithContext(ctx).
		Raw(query, adminID).
		Scan(&rows).Error
	return rows, err
}

func (r *repository) Assign(ctx context.Context, deliveryID, driverID string, price int64, assignedAt time.Time) error {
	return r.db.WithContext(ctx).
		Model(&Delivery{}).
		Where("id = ?", deliveryID).
		Updates(map[string]any{
			"driver_id":   driverID,
			"price":       price,
			"assigned_at": assignedAt,
		}).Error
}

func (r *repository) UpdateStatus(ctx context.Context, deliveryID string, status Status, deliveredAt *time.Time) error {
	updates := map[string]any{"status": status}
	if deliveredAt != nil {
		updates["delivered_at"] = *deliveredAt
	}
	return r.db.WithContext(ctx).
		Model(&Delivery{}).
		Where("id = ?", deliveryID).
		Updates(updates).Error
}
