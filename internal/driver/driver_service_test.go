package driver_test

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-courier/internal/driver"
	drivererrors "go-courier/internal/driver/errors"
	"go-courier/internal/events"
	"go-courier/internal/messaging/kafka"
	"go-courier/internal/shared/dateutil"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeRepo struct {
	findByIDFn         func(ctx context.Context, id string) (*driver.Driver, error)
	findByIDAndAdminFn func(ctx context.Context, adminID, id string) (*driver.Driver, error)
	listWithWorkloadFn func(ctx context.Context, adminID string, dayStart, dayEnd time.Time) ([]driver.DriverWorkloadRow, error)
	updateFn           func(ctx context.Context, d *driver.Driver) error
	removeCascadeFn    func(ctx context.Context, driverID, userID string) error
	deliveryStatsFn    func(ctx context.Context, driverID string) (int64, int64, error)
	attendanceDaysFn   func(ctx context.Context, driverID string) (int64, error)
}

func (f *fakeRepo) WithTx(tx *sql.Tx) driver.Repository { return f }

func (f *fakeRepo) CreateAdmin(ctx context.Context, admin *driver.Admin) error { return nil }

func (f *fakeRepo) FindAdminByInviteKey(ctx context.Context, key string) (*driver.Admin, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) FindAdminByUser(ctx context.Context, userID string) (*driver.Admin, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) CreateDriver(ctx context.Context, d *driver.Driver) error { return nil }

func (f *fakeRepo) FindByID(ctx context.Context, id string) (*driver.Driver, error) {
	return f.findByIDFn(ctx, id)
}

func (f *fakeRepo) FindByIDAndAdmin(ctx context.Context, adminID, id string) (*driver.Driver, error) {
	return f.findByIDAndAdminFn(ctx, adminID, id)
}

func (f *fakeRepo) FindByUser(ctx context.Context, userID string) (*driver.Driver, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRepo) ListByAdmin(ctx context.Context, adminID string) ([]driver.Driver, error) {
	return nil, nil
}

func (f *fakeRepo) ListWithWorkload(ctx context.Context, adminID string, dayStart, dayEnd time.Time) ([]driver.DriverWorkloadRow, error) {
	return f.listWithWorkloadFn(ctx, adminID, dayStart, dayEnd)
}

func (f *fakeRepo) Update(ctx context.Context, d *driver.Driver) error {
	return f.updateFn(ctx, d)
}

func (f *fakeRepo) RemoveCascade(ctx context.Context, driverID, userID string) error {
	return f.removeCascadeFn(ctx, driverID, userID)
}

func (f *fakeRepo) DeliveryStats(ctx context.Context, driverID string) (int64, int64, error) {
	return f.deliveryStatsFn(ctx, driverID)
}

func (f *fakeRepo) AttendanceDays(ctx context.Context, driverID string) (int64, error) {
	return f.attendanceDaysFn(ctx, driverID)
}

type fakeOutbox struct {
	created []kafka.OutboxEvent
}

func (f *fakeOutbox) WithTx(tx *sql.Tx) kafka.OutboxRepository { return f }

func (f *fakeOutbox) Create(ctx context.Context, event kafka.OutboxEvent) error {
	f.created = append(f.created, event)
	return nil
}

func (f *fakeOutbox) ListPending(ctx context.Context, limit int) ([]kafka.OutboxEvent, error) {
	return nil, nil
}
func (f *fakeOutbox) MarkSent(ctx context.Context, id string) error                  { return nil }
func (f *fakeOutbox) MarkFailed(ctx context.Context, id string, reason string) error { return nil }

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2025, time.January, 5, 11, 0, 0, 0, dateutil.Reference)
	}
}

func fleetDriver(adminID uuid.UUID) *driver.Driver {
	return &driver.Driver{
		ID:          uuid.New(),
		AdminID:     adminID,
		UserID:      uuid.New(),
		Name:        "Ravi Kumar",
		VehicleType: driver.VehicleBike,
		Shift:       driver.ShiftMorning,
		BaseSalary:  8000,
		JoiningDate: time.Date(2025, time.January, 1, 0, 0, 0, 0, dateutil.Reference),
	}
}

func TestList_QueriesTodayWorkloadAndCaches(t *testing.T) {
	adminID := uuid.New()
	d := fleetDriver(adminID)

	repo := &fakeRepo{
		listWithWorkloadFn: func(ctx context.Context, gotAdmin string, dayStart, dayEnd time.Time) ([]driver.DriverWorkloadRow, error) {
			assert.Equal(t, adminID.String(), gotAdmin)
			assert.Equal(t, "2025-01-05", dateutil.DayKey(dayStart))
			assert.Equal(t, "2025-01-06", dateutil.DayKey(dayEnd))
			return []driver.DriverWorkloadRow{
				{Driver: *d, AssignedToday: 3, DeliveredToday: 2},
			}, nil
		},
	}

	rdb, rmock := redismock.NewClientMock()
	cacheKey := driver.DashboardCacheKey(adminID.String())
	rmock.ExpectGet(cacheKey).RedisNil()

	expected := []driver.DriverListItem{
		{
			DriverResponse: driver.DriverResponse{
				ID:          d.ID.String(),
				Name:        "Ravi Kumar",
				VehicleType: "BIKE",
				Shift:       "MORNING",
				BaseSalary:  8000,
				JoiningDate: "2025-01-01",
			},
			AssignedToday:  3,
			DeliveredToday: 2,
		},
	}
	payload, err := json.Marshal(expected)
	require.NoError(t, err)
	rmock.ExpectSet(cacheKey, payload, 30*time.Second).SetVal("OK")

	svc := driver.NewServiceWithClock(nil, repo, nil, rdb, fixedClock())

	resp, err := svc.List(context.Background(), adminID.String())
	require.NoError(t, err)
	assert.Equal(t, expected, resp)
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestList_ServesDashboardFromCache(t *testing.T) {
	adminID := uuid.New()

	repo := &fakeRepo{
		listWithWorkloadFn: func(ctx context.Context, gotAdmin string, dayStart, dayEnd time.Time) ([]driver.DriverWorkloadRow, error) {
			t.Fatal("repository must not be hit on a cache hit")
			return nil, nil
		},
	}

	cached := []driver.DriverListItem{
		{
			DriverResponse: driver.DriverResponse{ID: uuid.NewString(), Name: "Ravi Kumar"},
			AssignedToday:  1,
		},
	}
	payload, err := json.Marshal(cached)
	require.NoError(t, err)

	rdb, rmock := redismock.NewClientMock()
	rmock.ExpectGet(driver.DashboardCacheKey(adminID.String())).SetVal(string(payload))

	svc := driver.NewServiceWithClock(nil, repo, nil, rdb, fixedClock())

	resp, err := svc.List(context.Background(), adminID.String())
	require.NoError(t, err)
	assert.Equal(t, cached, resp)
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestUpdate_RederivesBaseSalaryFromRateTable(t *testing.T) {
	adminID := uuid.New()
	d := fleetDriver(adminID)

	var updated *driver.Driver
	repo := &fakeRepo{
		findByIDAndAdminFn: func(ctx context.Context, gotAdmin, id string) (*driver.Driver, error) {
			return d, nil
		},
		updateFn: func(ctx context.Context, d *driver.Driver) error {
			updated = d
			return nil
		},
	}

	svc := driver.NewServiceWithClock(nil, repo, nil, nil, fixedClock())

	resp, err := svc.Update(context.Background(), adminID.String(), d.ID.String(), driver.UpdateDriverRequest{
		Name:        "Ravi Kumar",
		VehicleType: "MINI_TRUCK",
		Shift:       "BOTH",
	})
	require.NoError(t, err)

	require.NotNil(t, updated)
	assert.Equal(t, driver.VehicleMiniTruck, updated.VehicleType)
	assert.Equal(t, driver.ShiftBoth, updated.Shift)
	assert.Equal(t, int64(25000), updated.BaseSalary)
	assert.Equal(t, int64(25000), resp.BaseSalary)
}

func TestUpdate_ScopedToAdmin(t *testing.T) {
	repo := &fakeRepo{
		findByIDAndAdminFn: func(ctx context.Context, adminID, id string) (*driver.Driver, error) {
			return nil, gorm.ErrRecordNotFound
		},
		updateFn: func(ctx context.Context, d *driver.Driver) error {
			t.Fatal("must not update a driver outside the admin fleet")
			return nil
		},
	}

	svc := driver.NewServiceWithClock(nil, repo, nil, nil, fixedClock())

	_, err := svc.Update(context.Background(), uuid.NewString(), uuid.NewString(), driver.UpdateDriverRequest{
		Name:        "Ravi Kumar",
		VehicleType: "BIKE",
		Shift:       "MORNING",
	})
	assert.ErrorIs(t, err, drivererrors.ErrDriverNotFound)
}

func TestRemove_CascadesInTxAndEmitsLifecycleEvent(t *testing.T) {
	adminID := uuid.New()
	d := fleetDriver(adminID)

	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	var removedDriver, removedUser string
	repo := &fakeRepo{
		findByIDAndAdminFn: func(ctx context.Context, gotAdmin, id string) (*driver.Driver, error) {
			return d, nil
		},
		removeCascadeFn: func(ctx context.Context, driverID, userID string) error {
			removedDriver, removedUser = driverID, userID
			return nil
		},
	}
	outbox := &fakeOutbox{}

	rdb, rmock := redismock.NewClientMock()
	rmock.ExpectDel(driver.DashboardCacheKey(adminID.String())).SetVal(1)

	svc := driver.NewServiceWithClock(db, repo, outbox, rdb, fixedClock())

	err := svc.Remove(context.Background(), adminID.String(), d.ID.String())
	require.NoError(t, err)

	assert.Equal(t, d.ID.String(), removedDriver)
	assert.Equal(t, d.UserID.String(), removedUser)

	require.Len(t, outbox.created, 1)
	assert.Equal(t, events.DriverLifecycleTopic, outbox.created[0].Topic)
	assert.Equal(t, "driver_removed", outbox.created[0].EventType)

	var event events.DriverLifecycleEvent
	require.NoError(t, json.Unmarshal(outbox.created[0].Payload, &event))
	assert.Equal(t, d.ID.String(), event.DriverID)
	assert.Equal(t, "Ravi Kumar", event.DriverName)

	assert.NoError(t, mock.ExpectationsWereMet())
	assert.NoError(t, rmock.ExpectationsWereMet())
}

func TestRemove_RollsBackWhenCascadeFails(t *testing.T) {
	adminID := uuid.New()
	d := fleetDriver(adminID)

	db, mock := newMockDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	repo := &fakeRepo{
		findByIDAndAdminFn: func(ctx context.Context, gotAdmin, id string) (*driver.Driver, error) {
			return d, nil
		},
		removeCascadeFn: func(ctx context.Context, driverID, userID string) error {
			return errors.New("deadlock detected")
		},
	}
	outbox := &fakeOutbox{}

	svc := driver.NewServiceWithClock(db, repo, outbox, nil, fixedClock())

	err := svc.Remove(context.Background(), adminID.String(), d.ID.String())
	require.Error(t, err)
	assert.Empty(t, outbox.created)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPerformance_RatesFromStatsAndAttendance(t *testing.T) {
	adminID := uuid.New()
	d := fleetDriver(adminID) // joined 2025-01-01, today is 2025-01-05

	repo := &fakeRepo{
		findByIDAndAdminFn: func(ctx context.Context, gotAdmin, id string) (*driver.Driver, error) {
			return d, nil
		},
		deliveryStatsFn: func(ctx context.Context, driverID string) (int64, int64, error) {
			return 10, 8, nil
		},
		attendanceDaysFn: func(ctx context.Context, driverID string) (int64, error) {
			return 4, nil
		},
	}

	svc := driver.NewServiceWithClock(nil, repo, nil, nil, fixedClock())

	resp, err := svc.Performance(context.Background(), adminID.String(), d.ID.String())
	require.NoError(t, err)

	assert.Equal(t, int64(10), resp.TotalDeliveries)
	assert.Equal(t, int64(8), resp.Delivered)
	assert.InDelta(t, 0.8, resp.SuccessRate, 1e-9)
	assert.Equal(t, int64(5), resp.DaysSinceJoining)
	assert.Equal(t, int64(4), resp.DaysPresent)
	assert.InDelta(t, 0.8, resp.AttendanceRate, 1e-9)
}

func TestGetOwnProfile(t *testing.T) {
	adminID := uuid.New()
	d := fleetDriver(adminID)

	repo := &fakeRepo{
		findByIDFn: func(ctx context.Context, id string) (*driver.Driver, error) {
			require.Equal(t, d.ID.String(), id)
			return d, nil
		},
	}

	svc := driver.NewServiceWithClock(nil, repo, nil, nil, fixedClock())

	resp, err := svc.GetOwnProfile(context.Background(), d.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "Ravi Kumar", resp.Name)
	assert.Equal(t, "2025-01-01", resp.JoiningDate)
}

func TestGetByID_MalformedIDsRejectedEarly(t *testing.T) {
	svc := driver.NewServiceWithClock(nil, &fakeRepo{}, nil, nil, fixedClock())

	_, err := svc.GetByID(context.Background(), "not-a-uuid", uuid.NewString())
	assert.ErrorIs(t, err, drivererrors.ErrInvalidAdminID)

	_, err = svc.GetByID(context.Background(), uuid.NewString(), "nope")
	assert.ErrorIs(t, err, drivererrors.ErrInvalidDriverID)
}

func TestBaseSalaryFor(t *testing.T) {
	cases := []struct {
		vehicle driver.VehicleType
		shift   driver.Shift
		want    int64
	}{
		{driver.VehicleBike, driver.ShiftMorning, 8000},
		{driver.VehicleBike, driver.ShiftEvening, 5000},
		{driver.VehicleBike, driver.ShiftBoth, 15000},
		{driver.VehicleMiniTruck, driver.ShiftMorning, 12000},
		{driver.VehicleMiniTruck, driver.ShiftEvening, 8000},
		{driver.VehicleMiniTruck, driver.ShiftBoth, 25000},
	}
	for _, tc := range cases {
		got, ok := driver.BaseSalaryFor(tc.vehicle, tc.shift)
		require.True(t, ok)
		assert.Equal(t, tc.want, got)
	}

	_, ok := driver.BaseSalaryFor("SCOOTER", driver.ShiftMorning)
	assert.False(t, ok)
}

func TestNewInviteKey(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		key := driver.NewInviteKey()
		assert.Len(t, key, 8)
		seen[key] = true
	}
	// 50 draws from a 32^8 space colliding would mean the generator is broken.
	assert.Len(t, seen, 50)
}
