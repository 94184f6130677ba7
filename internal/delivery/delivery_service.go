package delivery

import (
	"context"
	"database/sql"
	"errors"
	"time"

	deliveryerrors "go-courier/internal/delivery/errors"
	"go-courier/internal/driver"
	drivererrors "go-courier/internal/driver/errors"
	"go-courier/internal/shared/contextutil"
	"go-courier/internal/shared/dateutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	Create(ctx context.Context, adminID string, req CreateDeliveryRequest) (DeliveryResponse, error)
	List(ctx context.Context, adminID, status string) ([]DeliveryResponse, error)
	EligibleDrivers(ctx context.Context, adminID, deliveryID string) ([]EligibleDriverResponse, error)
	Assign(ctx context.Context, adminID, deliveryID string, req AssignRequest) (DeliveryResponse, error)
	BulkUpload(ctx context.Context, adminID string, sheet []byte) (BulkUploadResponse, error)

	// Driver self-service.
	ListToday(ctx context.Context, driverID string) ([]DeliveryResponse, error)
	UpdateStatus(ctx context.Context, driverID, deliveryID string, req UpdateStatusRequest) (DeliveryResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	rdb    *redis.Client
	now    func() time.Time
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, rdb *redis.Client) Service {
	return &service{
		db:     db,
		repo:   repo,
		rdb:    rdb,
		now:    time.Now,
		logger: zap.L().Named("delivery.service"),
	}
}

func NewServiceWithClock(db *sql.DB, repo Repository, rdb *redis.Client, now func() time.Time) Service {
	s := NewService(db, repo, rdb).(*service)
	s.now = now
	return s
}

func (s *service) Create(ctx context.Context, adminID string, req CreateDeliveryRequest) (DeliveryResponse, error) {
	if _, err := uuid.Parse(adminID); err != nil {
		return DeliveryResponse{}, drivererrors.ErrInvalidAdminID
	}

	d := &Delivery{
		ID:           uuid.New(),
		AdminID:      uuid.MustParse(adminID),
		CustomerName: req.CustomerName,
		Address:      req.Address,
		Phone:        req.Phone,
		PackageSize:  PackageSize(req.PackageSize),
		Status:       StatusNotPicked,
	}
	if err := s.repo.Create(ctx, d); err != nil {
		return DeliveryResponse{}, err
	}

	s.logger.Info("delivery created",
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("delivery_id", d.ID.String()),
		zap.String("package_size", req.PackageSize),
	)

	return mapToResponse(*d), nil
}

func (s *service) List(ctx context.Context, adminID, status string) ([]DeliveryResponse, error) {
	if _, err := uuid.Parse(adminID); err != nil {
		return nil, drivererrors.ErrInvalidAdminID
	}
	if status != "" {
		switch Status(status) {
		case StatusNotPicked, StatusInTransit, StatusDelivered:
		default:
			return nil, deliveryerrors.ErrInvalidStatusFilter
		}
	}

	deliveries, err := s.repo.ListByAdmin(ctx, adminID, status)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(deliveries), nil
}

// EligibleDrivers filters the fleet down to drivers that can take the
// delivery: large packages need a mini truck with spare load, small ones
// fit a bike with spare small-package slots or any truck with spare load.
func (s *service) EligibleDrivers(ctx context.Context, adminID, deliveryID string) ([]EligibleDriverResponse, error) {
	d, err := s.findScoped(ctx, adminID, deliveryID)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.DriversWithOpenLoad(ctx, adminID)
	if err != nil {
		return nil, err
	}

	eligible := make([]EligibleDriverResponse, 0, len(rows))
	for _, row := range rows {
		if !canTake(d.PackageSize, row) {
			continue
		}
		eligible = append(eligible, EligibleDriverResponse{
			ID:          row.ID.String(),
			Name:        row.Name,
			VehicleType: string(row.VehicleType),
			Shift:       string(row.Shift),
			OpenLoad:    row.OpenLoad,
			SmallLoad:   row.SmallLoad,
		})
	}
	return eligible, nil
}

func (s *service) Assign(ctx context.Context, adminID, deliveryID string, req AssignRequest) (DeliveryResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	d, err := s.findScoped(ctx, adminID, deliveryID)
	if err != nil {
		return DeliveryResponse{}, err
	}
	if d.DriverID != nil {
		return DeliveryResponse{}, deliveryerrors.ErrAlreadyAssigned
	}

	rows, err := s.repo.DriversWithOpenLoad(ctx, adminID)
	if err != nil {
		return DeliveryResponse{}, err
	}

	var target *DriverLoadRow
	for i := range rows {
		if rows[i].ID.String() == req.DriverID {
			target = &rows[i]
			break
		}
	}
	if target == nil {
		return DeliveryResponse{}, drivererrors.ErrDriverNotFound
	}
	if !canTake(d.PackageSize, *target) {
		return DeliveryResponse{}, deliveryerrors.ErrDriverNotEligible
	}

	now := s.now()
	price := PriceFor(d.PackageSize, target.VehicleType, target.Shift)
	if err := s.repo.Assign(ctx, deliveryID, req.DriverID, price, now); err != nil {
		return DeliveryResponse{}, err
	}

	s.invalidateDashboard(ctx, adminID)

	s.logger.Info("delivery assigned",
		zap.String("request_id", rid),
		zap.String("delivery_id", deliveryID),
		zap.String("driver_id", req.DriverID),
		zap.Int64("price", price),
	)

	driverID := target.ID
	d.DriverID = &driverID
	d.Price = price
	d.AssignedAt = &now
	return mapToResponse(*d), nil
}

func (s *service) ListToday(ctx context.Context, driverID string) ([]DeliveryResponse, error) {
	if _, err := uuid.Parse(driverID); err != nil {
		return nil, drivererrors.ErrInvalidDriverID
	}

	dayStart := dateutil.DayStart(s.now())
	dayEnd := dateutil.NextDay(dayStart)

	deliveries, err := s.repo.ListAssignedToday(ctx, driverID, dayStart, dayEnd)
	if err != nil {
		return nil, err
	}
	return mapToListResponse(deliveries), nil
}

func (s *service) UpdateStatus(ctx context.Context, driverID, deliveryID string, req UpdateStatusRequest) (DeliveryResponse, error) {
	if _, err := uuid.Parse(driverID); err != nil {
		return DeliveryResponse{}, drivererrors.ErrInvalidDriverID
	}
	if _, err := uuid.Parse(deliveryID); err != nil {
		return DeliveryResponse{}, deliveryerrors.ErrInvalidDeliveryID
	}

	d, err := s.repo.FindByID(ctx, deliveryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return DeliveryResponse{}, deliveryerrors.ErrDeliveryNotFound
		}
		return DeliveryResponse{}, err
	}
	if d.DriverID == nil || d.DriverID.String() != driverID {
		return DeliveryResponse{}, deliveryerrors.ErrNotYourDelivery
	}

	next := Status(req.Status)
	if !ValidTransition(d.Status, next) {
		return DeliveryResponse{}, deliveryerrors.ErrInvalidStatusTransition
	}

	var deliveredAt *time.Time
	if next == StatusDelivered {
		now := s.now()
		deliveredAt = &now
	}
	if err := s.repo.UpdateStatus(ctx, deliveryID, next, deliveredAt); err != nil {
		return DeliveryResponse{}, err
	}

	s.invalidateDashboard(ctx, d.AdminID.String())

	d.Status = next
	d.DeliveredAt = deliveredAt
	return mapToResponse(*d), nil
}

func (s *service) findScoped(ctx context.Context, adminID, deliveryID string) (*Delivery, error) {
	if _, err := uuid.Parse(adminID); err != nil {
		return nil, drivererrors.ErrInvalidAdminID
	}
	if _, err := uuid.Parse(deliveryID); err != nil {
		return nil, deliveryerrors.ErrInvalidDeliveryID
	}
	d, err := s.repo.FindByIDAndAdmin(ctx, adminID, deliveryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, deliveryerrors.ErrDeliveryNotFound
		}
		return nil, err
	}
	return d, nil
}

func (s *service) invalidateDashboard(ctx context.Context, adminID string) {
	if s.rdb == nil {
		return
	}
	cacheKey := driver.DashboardCacheKey(adminID)
	if err := s.rdb.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Error("failed to invalidate driver dashboard cache",
			zap.Error(err),
			zap.String("key", cacheKey),
		)
	}
}

func canTake(size PackageSize, row DriverLoadRow) bool {
	switch size {
	case SizeLarge:
		return row.VehicleType == driver.VehicleMiniTruck && row.OpenLoad < MiniTruckLoadLimit
	case SizeSmall:
		if row.VehicleType == driver.VehicleBike {
			return row.SmallLoad < BikeSmallLimit
		}
		return row.VehicleType == driver.VehicleMiniTruck && row.OpenLoad < MiniTruckLoadLimit
	default:
		return false
	}
}

func mapToResponse(d Delivery) DeliveryResponse {
	resp := DeliveryResponse{
		ID:           d.ID.String(),
		CustomerName: d.CustomerName,
		Address:      d.Address,
		Phone:        d.Phone,
		PackageSize:  string(d.PackageSize),
		Status:       string(d.Status),
		Price:        d.Price,
	}
	if d.DriverID != nil {
		resp.DriverID = d.DriverID.String()
	}
	if d.AssignedAt != nil {
		resp.AssignedAt = d.AssignedAt.Format(time.RFC3339)
	}
	if d.DeliveredAt != nil {
		resp.DeliveredAt = d.DeliveredAt.Format(time.RFC3339)
	}
	return resp
}

func mapToListResponse(deliveries []Delivery) []DeliveryResponse {
	resp := make([]DeliveryResponse, len(deliveries))
	for i, d := range deliveries {
		resp[i] = mapToResponse(d)
	}
	return resp
}
