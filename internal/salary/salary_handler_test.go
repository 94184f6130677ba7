package salary_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go-courier/internal/salary"
	salaryerrors "go-courier/internal/salary/errors"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redismock/v9"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	getBreakdownFn    func(ctx context.Context, adminID, driverID string) (salary.BreakdownResponse, error)
	getUnpaidTotalFn  func(ctx context.Context, adminID, driverID string) (salary.UnpaidTotalResponse, error)
	adjustOverrideFn  func(ctx context.Context, adminID string, req salary.AdjustOverrideRequest) (salary.OverrideResponse, error)
	settleFn          func(ctx context.Context, adminID, driverID string) (salary.SettlementResponse, error)
	getPayoutsFn      func(ctx context.Context, adminID, driverID string) ([]salary.PayoutResponse, error)
	exportFn          func(ctx context.Context, adminID, driverID, format string) (*salary.ExportFile, error)
	getOwnBreakdownFn func(ctx context.Context, driverID string) (salary.BreakdownResponse, error)
	getOwnPayoutsFn   func(ctx context.Context, driverID string) ([]salary.PayoutResponse, error)
}

func (f *fakeService) GetBreakdown(ctx context.Context, adminID, driverID string) (salary.BreakdownResponse, error) {
	return f.getBreakdownFn(ctx, adminID, driverID)
}

func (f *fakeService) GetUnpaidTotal(ctx context.Context, adminID, driverID string) (salary.UnpaidTotalResponse, error) {
	return f.getUnpaidTotalFn(ctx, adminID, driverID)
}

func (f *fakeService) AdjustOverride(ctx context.Context, adminID string, req salary.AdjustOverrideRequest) (salary.OverrideResponse, error) {
	return f.adjustOverrideFn(ctx, adminID, req)
}

func (f *fakeService) Settle(ctx context.Context, adminID, driverID string) (salary.SettlementResponse, error) {
	return f.settleFn(ctx, adminID, driverID)
}

func (f *fakeService) GetPayoutsForAdmin(ctx context.Context, adminID, driverID string) ([]salary.PayoutResponse, error) {
	return f.getPayoutsFn(ctx, adminID, driverID)
}

func (f *fakeService) Export(ctx context.Context, adminID, driverID, format string) (*salary.ExportFile, error) {
	return f.exportFn(ctx, adminID, driverID, format)
}

func (f *fakeService) GetOwnBreakdown(ctx context.Context, driverID string) (salary.BreakdownResponse, error) {
	return f.getOwnBreakdownFn(ctx, driverID)
}

func (f *fakeService) GetOwnPayouts(ctx context.Context, driverID string) ([]salary.PayoutResponse, error) {
	return f.getOwnPayoutsFn(ctx, driverID)
}

func (f *fakeService) AttachReceipt(ctx context.Context, payoutID, path string) error {
	return nil
}

func newTestContext(t *testing.T, method, target string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	var req *http.Request
	if body != nil {
		req = httptest.NewRequest(method, target, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	c.Request = req
	return c, w
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var envelope map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return envelope
}

func TestHandlerGetBreakdown(t *testing.T) {
	adminID := uuid.NewString()
	driverID := uuid.NewString()

	svc := &fakeService{
		getBreakdownFn: func(ctx context.Context, gotAdmin, gotDriver string) (salary.BreakdownResponse, error) {
			assert.Equal(t, adminID, gotAdmin)
			assert.Equal(t, driverID, gotDriver)
			return salary.BreakdownResponse{
				DriverID: driverID,
				Breakdown: []salary.BreakdownEntryResponse{
					{Date: "2025-01-01", Amount: 300},
					{Date: "2025-01-02", Amount: 300},
				},
			}, nil
		},
	}
	h := salary.NewHandler(svc)

	c, w := newTestContext(t, http.MethodGet, "/salary/breakdown/"+driverID, nil)
	c.Set("admin_id", adminID)
	c.Params = gin.Params{{Key: "driverId", Value: driverID}}

	h.GetBreakdown(c)

	assert.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.Equal(t, true, envelope["ok"])
	data := envelope["data"].(map[string]any)
	assert.Equal(t, driverID, data["driver_id"])
	assert.Len(t, data["breakdown"], 2)
}

func TestHandlerGetBreakdown_NotFound(t *testing.T) {
	svc := &fakeService{
		getBreakdownFn: func(ctx context.Context, adminID, driverID string) (salary.BreakdownResponse, error) {
			return salary.BreakdownResponse{}, salaryerrors.ErrDriverNotFound
		},
	}
	h := salary.NewHandler(svc)

	c, w := newTestContext(t, http.MethodGet, "/salary/breakdown/"+uuid.NewString(), nil)
	c.Set("admin_id", uuid.NewString())
	c.Params = gin.Params{{Key: "driverId", Value: uuid.NewString()}}

	h.GetBreakdown(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	envelope := decodeEnvelope(t, w)
	assert.Equal(t, false, envelope["ok"])
	errObj := envelope["error"].(map[string]any)
	assert.Equal(t, "NOT_FOUND", errObj["code"])
}

func TestHandlerAdjust(t *testing.T) {
	adminID := uuid.NewString()
	driverID := uuid.NewString()

	t.Run("valid request", func(t *testing.T) {
		svc := &fakeService{
			adjustOverrideFn: func(ctx context.Context, gotAdmin string, req salary.AdjustOverrideRequest) (salary.OverrideResponse, error) {
				assert.Equal(t, adminID, gotAdmin)
				assert.Equal(t, "2025-01-03", req.Date)
				require.NotNil(t, req.Amount)
				return salary.OverrideResponse{
					ID:         uuid.NewString(),
					DriverID:   req.DriverID,
					Date:       req.Date,
					ActualPaid: *req.Amount,
				}, nil
			},
		}
		h := salary.NewHandler(svc)

		body := []byte(`{"driver_id":"` + driverID + `","date":"2025-01-03","amount":500}`)
		c, w := newTestContext(t, http.MethodPost, "/salary/adjust", body)
		c.Set("admin_id", adminID)

		h.Adjust(c)

		assert.Equal(t, http.StatusOK, w.Code)
		envelope := decodeEnvelope(t, w)
		data := envelope["data"].(map[string]any)
		assert.Equal(t, float64(500), data["actual_paid"])
	})

	t.Run("missing amount rejected by binding", func(t *testing.T) {
		svc := &fakeService{
			adjustOverrideFn: func(ctx context.Context, adminID string, req salary.AdjustOverrideRequest) (salary.OverrideResponse, error) {
				t.Fatal("service must not be called on a binding failure")
				return salary.OverrideResponse{}, nil
			},
		}
		h := salary.NewHandler(svc)

		body := []byte(`{"driver_id":"` + driverID + `","date":"2025-01-03"}`)
		c, w := newTestContext(t, http.MethodPost, "/salary/adjust", body)
		c.Set("admin_id", adminID)

		h.Adjust(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("malformed driver id rejected by binding", func(t *testing.T) {
		h := salary.NewHandler(&fakeService{})

		body := []byte(`{"driver_id":"nope","amount":500}`)
		c, w := newTestContext(t, http.MethodPost, "/salary/adjust", body)
		c.Set("admin_id", adminID)

		h.Adjust(c)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandlerMarkPaid(t *testing.T) {
	adminID := uuid.NewString()
	driverID := uuid.NewString()
	payoutID := uuid.NewString()

	settlement := salary.SettlementResponse{
		DriverID:    driverID,
		Settled:     true,
		TotalAmount: 1700,
		PayoutID:    &payoutID,
	}

	svc := &fakeService{
		settleFn: func(ctx context.Context, gotAdmin, gotDriver string) (salary.SettlementResponse, error) {
			return settlement, nil
		},
	}

	rdb, mock := redismock.NewClientMock()
	h := salary.NewHandlerWithRedis(svc, rdb)

	cacheKey := "idem:cache:" + uuid.NewString()
	lockKey := "idem:lock:" + uuid.NewString()

	payload, err := json.Marshal(settlement)
	require.NoError(t, err)
	mock.ExpectSet(cacheKey, payload, 24*time.Hour).SetVal("OK")
	mock.ExpectDel(lockKey).SetVal(1)

	c, w := newTestContext(t, http.MethodPost, "/salary/mark-paid/"+driverID, nil)
	c.Set("admin_id", adminID)
	c.Set("idempotency_cache_key", cacheKey)
	c.Set("idempotency_lock_key", lockKey)
	c.Params = gin.Params{{Key: "driverId", Value: driverID}}

	h.MarkPaid(c)

	assert.Equal(t, http.StatusOK, w.Code)
	envelope := decodeEnvelope(t, w)
	data := envelope["data"].(map[string]any)
	assert.Equal(t, true, data["settled"])
	assert.Equal(t, float64(1700), data["total_amount"])

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHandlerExport(t *testing.T) {
	adminID := uuid.NewString()
	driverID := uuid.NewString()

	svc := &fakeService{
		exportFn: func(ctx context.Context, gotAdmin, gotDriver, format string) (*salary.ExportFile, error) {
			assert.Equal(t, "csv", format)
			return &salary.ExportFile{
				FileName:    "salary_test.csv",
				ContentType: "text/csv",
				Content:     []byte("date,amount,overridden\n"),
			}, nil
		},
	}
	h := salary.NewHandler(svc)

	c, w := newTestContext(t, http.MethodGet, "/salary/export/"+driverID+"?format=csv", nil)
	c.Set("admin_id", adminID)
	c.Params = gin.Params{{Key: "driverId", Value: driverID}}

	h.Export(c)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "salary_test.csv")
}

func TestHandlerGetOwnBreakdown(t *testing.T) {
	driverID := uuid.NewString()

	svc := &fakeService{
		getOwnBreakdownFn: func(ctx context.Context, gotDriver string) (salary.BreakdownResponse, error) {
			assert.Equal(t, driverID, gotDriver)
			return salary.BreakdownResponse{DriverID: driverID}, nil
		},
	}
	h := salary.NewHandler(svc)

	c, w := newTestContext(t, http.MethodGet, "/driver/salary-breakdown", nil)
	c.Set("driver_id", driverID)

	h.GetOwnBreakdown(c)

	assert.Equal(t, http.StatusOK, w.Code)
}
