package attendance

import (
	"context"
	"database/sql"
	"errors"
	"time"

	attendanceerrors "go-courier/internal/attendance/errors"
	"go-courier/internal/driver"
	drivererrors "go-courier/internal/driver/errors"
	"go-courier/internal/shared/contextutil"
	"go-courier/internal/shared/dateutil"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service interface {
	// Mark records the driver as present for a shift today. A driver on
	// the BOTH schedule can mark both shifts; otherwise only the rostered
	// shift is accepted. Marking the same shift twice is a conflict.
	Mark(ctx context.Context, driverID string, req MarkRequest) (AttendanceResponse, error)
	ListOwn(ctx context.Context, driverID, fromDay, toDay string) ([]AttendanceResponse, error)
	ListForAdmin(ctx context.Context, adminID, driverID, fromDay, toDay string) ([]AttendanceResponse, error)
}

type service struct {
	db      *sql.DB
	repo    Repository
	drivers driver.Repository
	now     func() time.Time
	logger  *zap.Logger
}

func NewService(db *sql.DB, repo Repository, drivers driver.Repository) Service {
	return &service{
		db:      db,
		repo:    repo,
		drivers: drivers,
		now:     time.Now,
		logger:  zap.L().Named("attendance.service"),
	}
}

func NewServiceWithClock(db *sql.DB, repo Repository, drivers driver.Repository, now func() time.Time) Service {
	s := NewService(db, repo, drivers).(*service)
	s.now = now
	return s
}

func (s *service) Mark(ctx context.Context, driverID string, req MarkRequest) (AttendanceResponse, error) {
	if _, err := uuid.Parse(driverID); err != nil {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidDriverID
	}

	shift := driver.Shift(req.Shift)
	if shift != driver.ShiftMorning && shift != driver.ShiftEvening {
		return AttendanceResponse{}, attendanceerrors.ErrInvalidShift
	}

	d, err := s.drivers.FindByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return AttendanceResponse{}, drivererrors.ErrDriverNotFound
		}
		return AttendanceResponse{}, err
	}
	if d.Shift != driver.ShiftBoth && d.Shift != shift {
		return AttendanceResponse{}, attendanceerrors.ErrShiftNotAllowed
	}

	now := s.now()
	rec := &AttendanceRecord{
		ID:       uuid.New(),
		DriverID: d.ID,
		Date:     dateutil.DayStart(now),
		Shift:    shift,
		MarkedAt: now,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return AttendanceResponse{}, attendanceerrors.ErrAlreadyMarked
		}
		return AttendanceResponse{}, err
	}

	s.logger.Info("attendance marked",
		zap.String("request_id", contextutil.GetRequestID(ctx)),
		zap.String("driver_id", driverID),
		zap.String("date", dateutil.DayKey(rec.Date)),
		zap.String("shift", string(shift)),
	)

	return mapToResponse(*rec), nil
}

func (s *service) ListOwn(ctx context.Context, driverID, fromDay, toDay string) ([]AttendanceResponse, error) {
	if _, err := uuid.Parse(driverID); err != nil {
		return nil, attendanceerrors.ErrInvalidDriverID
	}
	return s.list(ctx, driverID, fromDay, toDay)
}

func (s *service) ListForAdmin(ctx context.Context, adminID, driverID, fromDay, toDay string) ([]AttendanceResponse, error) {
	if _, err := uuid.Parse(adminID); err != nil {
		return nil, drivererrors.ErrInvalidAdminID
	}
	if _, err := uuid.Parse(driverID); err != nil {
		return nil, attendanceerrors.ErrInvalidDriverID
	}
	if _, err := s.drivers.FindByIDAndAdmin(ctx, adminID, driverID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, drivererrors.ErrDriverNotFound
		}
		return nil, err
	}
	return s.list(ctx, driverID, fromDay, toDay)
}

func (s *service) list(ctx context.Context, driverID, fromDay, toDay string) ([]AttendanceResponse, error) {
	to := dateutil.DayStart(s.now())
	from := to.AddDate(0, -1, 0) // default window: last month

	if fromDay != "" {
		parsed, err := dateutil.ParseDay(fromDay)
		if err != nil {
			return nil, attendanceerrors.ErrInvalidDateRange
		}
		from = parsed
	}
	if toDay != "" {
		parsed, err := dateutil.ParseDay(toDay)
		if err != nil {
			return nil, attendanceerrors.ErrInvalidDateRange
		}
		to = parsed
	}

	recs, err := s.repo.ListByDriver(ctx, driverID, from, to)
	if err != nil {
		return nil, err
	}

	resp := make([]AttendanceResponse, len(recs))
	for i, rec := range recs {
		resp[i] = mapToResponse(rec)
	}
	return resp, nil
}

func mapToResponse(rec AttendanceRecord) AttendanceResponse {
	return AttendanceResponse{
		ID:       rec.ID.String(),
		DriverID: rec.DriverID.String(),
		Date:     dateutil.DayKey(rec.Date),
		Shift:    string(rec.Shift),
		MarkedAt: rec.MarkedAt.Format(time.RFC3339),
	}
}
