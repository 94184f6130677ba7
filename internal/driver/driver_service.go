package driver

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	drivererrors "go-courier/internal/driver/errors"
	"go-courier/internal/events"
	"go-courier/internal/messaging/kafka"
	"go-courier/internal/shared/contextutil"
	"go-courier/internal/shared/dateutil"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

const dashboardKeyPrefix = "drivers:dashboard:"

func DashboardCacheKey(adminID string) string {
	return dashboardKeyPrefix + adminID
}

type Service interface {
	List(ctx context.Context, adminID string) ([]DriverListItem, error)
	GetByID(ctx context.Context, adminID, id string) (DriverResponse, error)
	Update(ctx context.Context, adminID, id string, req UpdateDriverRequest) (DriverResponse, error)
	Remove(ctx context.Context, adminID, id string) error
	Performance(ctx context.Context, adminID, id string) (PerformanceResponse, error)
	GetOwnProfile(ctx context.Context, driverID string) (DriverResponse, error)
}

type service struct {
	db     *sql.DB
	repo   Repository
	outbox kafka.OutboxRepository
	rdb    *redis.Client
	sf     *singleflight.Group
	now    func() time.Time
	logger *zap.Logger
}

func NewService(db *sql.DB, repo Repository, rdb *redis.Client) Service {
	return NewServiceWithOutbox(db, repo, nil, rdb)
}

func NewServiceWithOutbox(db *sql.DB, repo Repository, outbox kafka.OutboxRepository, rdb *redis.Client) Service {
	return &service{
		db:     db,
		repo:   repo,
		outbox: outbox,
		rdb:    rdb,
		sf:     &singleflight.Group{},
		now:    time.Now,
		logger: zap.L().Named("driver.service"),
	}
}

func NewServiceWithClock(db *sql.DB, repo Repository, outbox kafka.OutboxRepository, rdb *redis.Client, now func() time.Time) Service {
	s := NewServiceWithOutbox(db, repo, outbox, rdb).(*service)
	s.now = now
	return s
}

// List returns the admin's drivers with today's delivery workload. The
// dashboard polls this, so results are cached in Redis for a short TTL and
// concurrent misses collapse through singleflight.
func (s *service) List(ctx context.Context, adminID string) ([]DriverListItem, error) {
	if _, err := uuid.Parse(adminID); err != nil {
		return nil, drivererrors.ErrInvalidAdminID
	}

	cacheKey := DashboardCacheKey(adminID)

	if s.rdb != nil {
		if cached, err := s.rdb.Get(ctx, cacheKey).Result(); err == nil {
			var resp []DriverListItem
			if json.Unmarshal([]byte(cached), &resp) == nil {
				return resp, nil
			}
		}
	}

	v, err, _ := s.sf.Do(cacheKey, func() (interface{}, error) {
		dayStart := dateutil.DayStart(s.now())
		dayEnd := dateutil.NextDay(dayStart)

		rows, err := s.repo.ListWithWorkload(ctx, adminID, dayStart, dayEnd)
		if err != nil {
			return nil, mapRepositoryError(err)
		}

		resp := make([]DriverListItem, len(rows))
		for i, row := range rows {
			resp[i] = DriverListItem{
				DriverResponse: mapToResponse(row.Driver),
				AssignedToday:  row.AssignedToday,
				DeliveredToday: row.DeliveredToday,
			}
		}

		if s.rdb != nil {
			if payload, err := json.Marshal(resp); err == nil {
				s.rdb.Set(ctx, cacheKey, payload, 30*time.Second)
			}
		}
		return resp, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]DriverListItem), nil
}

func (s *service) GetByID(ctx context.Context, adminID, id string) (DriverResponse, error) {
	d, err := s.findScoped(ctx, adminID, id)
	if err != nil {
		return DriverResponse{}, err
	}
	return mapToResponse(*d), nil
}

func (s *service) GetOwnProfile(ctx context.Context, driverID string) (DriverResponse, error) {
	if _, err := uuid.Parse(driverID); err != nil {
		return DriverResponse{}, drivererrors.ErrInvalidDriverID
	}
	d, err := s.repo.FindByID(ctx, driverID)
	if err != nil {
		return DriverResponse{}, mapRepositoryError(err)
	}
	return mapToResponse(*d), nil
}

// Update applies profile changes. Changing the vehicle or shift re-derives
// the base salary from the rate table; past payouts and overrides are
// untouched, only days from now on earn at the new rate.
func (s *service) Update(ctx context.Context, adminID, id string, req UpdateDriverRequest) (DriverResponse, error) {
	rid := contextutil.GetRequestID(ctx)

	d, err := s.findScoped(ctx, adminID, id)
	if err != nil {
		return DriverResponse{}, err
	}

	vehicle := VehicleType(req.VehicleType)
	shift := Shift(req.Shift)
	baseSalary, ok := BaseSalaryFor(vehicle, shift)
	if !ok {
		return DriverResponse{}, drivererrors.ErrInvalidVehicleShift
	}

	d.Name = req.Name
	d.Phone = req.Phone
	d.VehicleType = vehicle
	d.Shift = shift
	d.BaseSalary = baseSalary

	if err := s.repo.Update(ctx, d); err != nil {
		return DriverResponse{}, mapRepositoryError(err)
	}

	s.invalidateDashboard(ctx, adminID)

	s.logger.Info("driver profile updated",
		zap.String("request_id", rid),
		zap.String("driver_id", id),
		zap.String("vehicle_type", req.VehicleType),
		zap.String("shift", req.Shift),
		zap.Int64("base_salary", baseSalary),
	)

	return mapToResponse(*d), nil
}

// Remove deletes the driver and everything hanging off it in one tx, and
// emits a lifecycle event through the outbox.
func (s *service) Remove(ctx context.Context, adminID, id string) error {
	rid := contextutil.GetRequestID(ctx)

	d, err := s.findScoped(ctx, adminID, id)
	if err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	qtx := s.repo.WithTx(tx)
	if err := qtx.RemoveCascade(ctx, d.ID.String(), d.UserID.String()); err != nil {
		s.logger.Error("driver cascade removal failed",
			zap.String("request_id", rid),
			zap.String("driver_id", id),
			zap.Error(err),
		)
		return err
	}

	if s.outbox != nil {
		event := events.DriverLifecycleEvent{
			EventType:  "driver_removed",
			DriverID:   d.ID.String(),
			AdminID:    adminID,
			DriverName: d.Name,
			OccurredAt: s.now(),
		}
		payload, err := json.Marshal(event)
		if err != nil {
			return err
		}
		if err := s.outbox.WithTx(tx).Create(ctx, kafka.OutboxEvent{
			ID:            uuid.NewString(),
			RequestID:     rid,
			AggregateType: "driver",
			AggregateID:   d.ID.String(),
			EventType:     event.EventType,
			Topic:         events.DriverLifecycleTopic,
			Payload:       payload,
			Status:        kafka.OutboxStatusPending,
		}); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	s.invalidateDashboard(ctx, adminID)

	s.logger.Info("driver removed",
		zap.String("request_id", rid),
		zap.String("driver_id", id),
	)
	return nil
}

func (s *service) Performance(ctx context.Context, adminID, id string) (PerformanceResponse, error) {
	d, err := s.findScoped(ctx, adminID, id)
	if err != nil {
		return PerformanceResponse{}, err
	}

	total, delivered, err := s.repo.DeliveryStats(ctx, id)
	if err != nil {
		return PerformanceResponse{}, err
	}
	daysPresent, err := s.repo.AttendanceDays(ctx, id)
	if err != nil {
		return PerformanceResponse{}, err
	}

	daysSinceJoining := int64(dateutil.DaysInclusive(dateutil.DayStart(d.JoiningDate), dateutil.DayStart(s.now())))
	if daysSinceJoining < 0 {
		daysSinceJoining = 0
	}

	resp := PerformanceResponse{
		DriverID:         id,
		TotalDeliveries:  total,
		Delivered:        delivered,
		DaysSinceJoining: daysSinceJoining,
		DaysPresent:      daysPresent,
	}
	if total > 0 {
		resp.SuccessRate = float64(delivered) / float64(total)
	}
	if daysSinceJoining > 0 {
		resp.AttendanceRate = float64(daysPresent) / float64(daysSinceJoining)
	}
	return resp, nil
}

func (s *service) findScoped(ctx context.Context, adminID, id string) (*Driver, error) {
	if _, err := uuid.Parse(adminID); err != nil {
		return nil, drivererrors.ErrInvalidAdminID
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, drivererrors.ErrInvalidDriverID
	}
	d, err := s.repo.FindByIDAndAdmin(ctx, adminID, id)
	if err != nil {
		return nil, mapRepositoryError(err)
	}
	return d, nil
}

func (s *service) invalidateDashboard(ctx context.Context, adminID string) {
	if s.rdb == nil {
		return
	}
	cacheKey := DashboardCacheKey(adminID)
	if err := s.rdb.Del(ctx, cacheKey).Err(); err != nil {
		s.logger.Error("failed to invalidate driver dashboard cache",
			zap.Error(err),
			zap.String("key", cacheKey),
		)
	}
}

func mapToResponse(d Driver) DriverResponse {
	return DriverResponse{
		ID:          d.ID.String(),
		Name:        d.Name,
		Phone:       d.Phone,
		VehicleType: string(d.VehicleType),
		Shift:       string(d.Shift),
		BaseSalary:  d.BaseSalary,
		JoiningDate: dateutil.DayKey(d.JoiningDate),
	}
}
