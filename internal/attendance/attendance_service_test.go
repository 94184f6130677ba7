package attendance_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"go-courier/internal/attendance"
	attendanceerrors "go-courier/internal/attendance/errors"
	"go-courier/internal/driver"
	drivererrors "go-courier/internal/driver/errors"
	"go-courier/internal/shared/dateutil"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeRepo struct {
	createFn       func(ctx context.Context, rec *attendance.AttendanceRecord) error
	listByDriverFn func(ctx context.Context, driverID string, from, to time.Time) ([]attendance.AttendanceRecord, error)
}

func (f *fakeRepo) WithTx(tx *sql.Tx) attendance.Repository { return f }

func (f *fakeRepo) Create(ctx context.Context, rec *attendance.AttendanceRecord) error {
	return f.createFn(ctx, rec)
}

func (f *fakeRepo) ListByDriver(ctx context.Context, driverID string, from, to time.Time) ([]attendance.AttendanceRecord, error) {
	return f.listByDriverFn(ctx, driverID, from, to)
}

func (f *fakeRepo) ListForDay(ctx context.Context, driverID string, day time.Time) ([]attendance.AttendanceRecord, error) {
	return nil, nil
}

type fakeDriverRepo struct {
	findByIDFn         func(ctx context.Context, id string) (*driver.Driver, error)
	findByIDAndAdminFn func(ctx context.Context, adminID, id string) (*driver.Driver, error)
}

func (f *fakeDriverRepo) WithTx(tx *sql.Tx) driver.Repository { return f }

func (f *fakeDriverRepo) CreateAdmin(ctx context.Context, admin *driver.Admin) error { return nil }

func (f *fakeDriverRepo) FindAdminByInviteKey(ctx context.Context, key string) (*driver.Admin, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDriverRepo) FindAdminByUser(ctx context.Context, userID string) (*driver.Admin, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDriverRepo) CreateDriver(ctx context.Context, d *driver.Driver) error { return nil }

func (f *fakeDriverRepo) FindByID(ctx context.Context, id string) (*driver.Driver, error) {
	return f.findByIDFn(ctx, id)
}

func (f *fakeDriverRepo) FindByIDAndAdmin(ctx context.Context, adminID, id string) (*driver.Driver, error) {
	return f.findByIDAndAdminFn(ctx, adminID, id)
}

func (f *fakeDriverRepo) FindByUser(ctx context.Context, userID string) (*driver.Driver, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeDriverRepo) ListByAdmin(ctx context.Context, adminID string) ([]driver.Driver, error) {
	return nil, nil
}

func (f *fakeDriverRepo) ListWithWorkload(ctx context.Context, adminID string, dayStart, dayEnd time.Time) ([]driver.DriverWorkloadRow, error) {
	return nil, nil
}

func (f *fakeDriverRepo) Update(ctx context.Context, d *driver.Driver) error { return nil }

func (f *fakeDriverRepo) RemoveCascade(ctx context.Context, driverID, userID string) error {
	return nil
}

func (f *fakeDriverRepo) DeliveryStats(ctx context.Context, driverID string) (int64, int64, error) {
	return 0, 0, nil
}

func (f *fakeDriverRepo) AttendanceDays(ctx context.Context, driverID string) (int64, error) {
	return 0, nil
}

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2025, time.January, 5, 11, 0, 0, 0, dateutil.Reference)
	}
}

func morningDriver(id uuid.UUID) *driver.Driver {
	return &driver.Driver{
		ID:          id,
		AdminID:     uuid.New(),
		Name:        "Ravi Kumar",
		VehicleType: driver.VehicleBike,
		Shift:       driver.ShiftMorning,
		BaseSalary:  8000,
	}
}

func TestMark_RecordsShiftForToday(t *testing.T) {
	driverID := uuid.New()

	var created *attendance.AttendanceRecord
	repo := &fakeRepo{
		createFn: func(ctx context.Context, rec *attendance.AttendanceRecord) error {
			created = rec
			return nil
		},
	}
	drivers := &fakeDriverRepo{
		findByIDFn: func(ctx context.Context, id string) (*driver.Driver, error) {
			require.Equal(t, driverID.String(), id)
			return morningDriver(driverID), nil
		},
	}

	svc := attendance.NewServiceWithClock(nil, repo, drivers, fixedClock())

	resp, err := svc.Mark(context.Background(), driverID.String(), attendance.MarkRequest{Shift: "MORNING"})
	require.NoError(t, err)

	require.NotNil(t, created)
	assert.Equal(t, "2025-01-05", dateutil.DayKey(created.Date))
	assert.Equal(t, driver.ShiftMorning, created.Shift)
	assert.Equal(t, "2025-01-05", resp.Date)
	assert.Equal(t, "MORNING", resp.Shift)
}

func TestMark_SameShiftTwiceConflicts(t *testing.T) {
	driverID := uuid.New()

	repo := &fakeRepo{
		createFn: func(ctx context.Context, rec *attendance.AttendanceRecord) error {
			return &pgconn.PgError{Code: "23505", ConstraintName: "idx_attendance_driver_date_shift"}
		},
	}
	drivers := &fakeDriverRepo{
		findByIDFn: func(ctx context.Context, id string) (*driver.Driver, error) {
			return morningDriver(driverID), nil
		},
	}

	svc := attendance.NewServiceWithClock(nil, repo, drivers, fixedClock())

	_, err := svc.Mark(context.Background(), driverID.String(), attendance.MarkRequest{Shift: "MORNING"})
	assert.ErrorIs(t, err, attendanceerrors.ErrAlreadyMarked)
}

func TestMark_ShiftOutsideRosterRejected(t *testing.T) {
	driverID := uuid.New()

	repo := &fakeRepo{
		createFn: func(ctx context.Context, rec *attendance.AttendanceRecord) error {
			t.Fatal("record must not be created for an off-roster shift")
			return nil
		},
	}
	drivers := &fakeDriverRepo{
		findByIDFn: func(ctx context.Context, id string) (*driver.Driver, error) {
			return morningDriver(driverID), nil
		},
	}

	svc := attendance.NewServiceWithClock(nil, repo, drivers, fixedClock())

	_, err := svc.Mark(context.Background(), driverID.String(), attendance.MarkRequest{Shift: "EVENING"})
	assert.ErrorIs(t, err, attendanceerrors.ErrShiftNotAllowed)
}

func TestMark_BothScheduleAllowsEitherShift(t *testing.T) {
	driverID := uuid.New()

	var shifts []driver.Shift
	repo := &fakeRepo{
		createFn: func(ctx context.Context, rec *attendance.AttendanceRecord) error {
			shifts = append(shifts, rec.Shift)
			return nil
		},
	}
	drivers := &fakeDriverRepo{
		findByIDFn: func(ctx context.Context, id string) (*driver.Driver, error) {
			d := morningDriver(driverID)
			d.Shift = driver.ShiftBoth
			return d, nil
		},
	}

	svc := attendance.NewServiceWithClock(nil, repo, drivers, fixedClock())

	_, err := svc.Mark(context.Background(), driverID.String(), attendance.MarkRequest{Shift: "MORNING"})
	require.NoError(t, err)
	_, err = svc.Mark(context.Background(), driverID.String(), attendance.MarkRequest{Shift: "EVENING"})
	require.NoError(t, err)

	assert.Equal(t, []driver.Shift{driver.ShiftMorning, driver.ShiftEvening}, shifts)
}

func TestMark_BothIsNotAMarkableShift(t *testing.T) {
	svc := attendance.NewServiceWithClock(nil, &fakeRepo{}, &fakeDriverRepo{}, fixedClock())

	_, err := svc.Mark(context.Background(), uuid.NewString(), attendance.MarkRequest{Shift: "BOTH"})
	assert.ErrorIs(t, err, attendanceerrors.ErrInvalidShift)
}

func TestListForAdmin_ForeignDriverNotFound(t *testing.T) {
	repo := &fakeRepo{
		listByDriverFn: func(ctx context.Context, driverID string, from, to time.Time) ([]attendance.AttendanceRecord, error) {
			t.Fatal("must not list records for a driver outside the admin fleet")
			return nil, nil
		},
	}
	drivers := &fakeDriverRepo{
		findByIDAndAdminFn: func(ctx context.Context, adminID, id string) (*driver.Driver, error) {
			return nil, gorm.ErrRecordNotFound
		},
	}

	svc := attendance.NewServiceWithClock(nil, repo, drivers, fixedClock())

	_, err := svc.ListForAdmin(context.Background(), uuid.NewString(), uuid.NewString(), "", "")
	assert.ErrorIs(t, err, drivererrors.ErrDriverNotFound)
}

func TestListOwn_DefaultWindowIsLastMonth(t *testing.T) {
	driverID := uuid.New()

	var gotFrom, gotTo time.Time
	repo := &fakeRepo{
		listByDriverFn: func(ctx context.Context, id string, from, to time.Time) ([]attendance.AttendanceRecord, error) {
			gotFrom, gotTo = from, to
			return []attendance.AttendanceRecord{
				{
					ID:       uuid.New(),
					DriverID: driverID,
					Date:     time.Date(2025, time.January, 4, 0, 0, 0, 0, dateutil.Reference),
					Shift:    driver.ShiftMorning,
					MarkedAt: time.Date(2025, time.January, 4, 9, 0, 0, 0, dateutil.Reference),
				},
			}, nil
		},
	}

	svc := attendance.NewServiceWithClock(nil, repo, &fakeDriverRepo{}, fixedClock())

	resp, err := svc.ListOwn(context.Background(), driverID.String(), "", "")
	require.NoError(t, err)

	assert.Equal(t, "2024-12-05", dateutil.DayKey(gotFrom))
	assert.Equal(t, "2025-01-05", dateutil.DayKey(gotTo))
	require.Len(t, resp, 1)
	assert.Equal(t, "2025-01-04", resp[0].Date)
	assert.Equal(t, "MORNING", resp[0].Shift)
}

func TestListOwn_BadDateRange(t *testing.T) {
	svc := attendance.NewServiceWithClock(nil, &fakeRepo{}, &fakeDriverRepo{}, fixedClock())

	_, err := svc.ListOwn(context.Background(), uuid.NewString(), "05-01-2025", "")
	assert.ErrorIs(t, err, attendanceerrors.ErrInvalidDateRange)
}
