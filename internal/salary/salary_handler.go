package salary

import (
	"encoding/json"
	"net/http"
	"time"

	"go-courier/internal/shared/apperror"
	"go-courier/internal/shared/response"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type Handler struct {
	service Service
	rdb     *redis.Client
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func NewHandlerWithRedis(service Service, rdb *redis.Client) *Handler {
	return &Handler{service: service, rdb: rdb}
}

func writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) GetBreakdown(c *gin.Context) {
	ctx := c.Request.Context()
	adminID := c.GetString("admin_id")
	driverID := c.Param("driverId")

	resp, err := h.service.GetBreakdown(ctx, adminID, driverID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetUnpaidTotal(c *gin.Context) {
	ctx := c.Request.Context()
	adminID := c.GetString("admin_id")
	driverID := c.Param("driverId")

	resp, err := h.service.GetUnpaidTotal(ctx, adminID, driverID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Adjust(c *gin.Context) {
	ctx := c.Request.Context()
	adminID := c.GetString("admin_id")

	var req AdjustOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		mapped := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, mapped.Status, mapped.Code, mapped.Message, nil)
		return
	}

	resp, err := h.service.AdjustOverride(ctx, adminID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) MarkPaid(c *gin.Context) {
	ctx := c.Request.Context()
	adminID := c.GetString("admin_id")
	driverID := c.Param("driverId")

	lockKey, _ := c.Get("idempotency_lock_key")
	cacheKey, _ := c.Get("idempotency_cache_key")
	if h.rdb != nil {
		if lk, ok := lockKey.(string); ok && lk != "" {
			defer h.rdb.Del(ctx, lk)
		}
	}

	resp, err := h.service.Settle(ctx, adminID, driverID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	if h.rdb != nil {
		if ck, ok := cacheKey.(string); ok && ck != "" {
			if payload, marshalErr := json.Marshal(resp); marshalErr == nil {
				_ = h.rdb.Set(ctx, ck, payload, 24*time.Hour).Err()
			}
		}
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetPayouts(c *gin.Context) {
	ctx := c.Request.Context()
	adminID := c.GetString("admin_id")
	driverID := c.Param("driverId")

	resp, err := h.service.GetPayoutsForAdmin(ctx, adminID, driverID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Export(c *gin.Context) {
	ctx := c.Request.Context()
	adminID := c.GetString("admin_id")
	driverID := c.Param("driverId")
	format := c.DefaultQuery("format", ExportFormatXLSX)

	file, err := h.service.Export(ctx, adminID, driverID, format)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+file.FileName+`"`)
	c.Data(http.StatusOK, file.ContentType, file.Content)
}

func (h *Handler) GetOwnBreakdown(c *gin.Context) {
	ctx := c.Request.Context()
	driverID := c.GetString("driver_id")

	resp, err := h.service.GetOwnBreakdown(ctx, driverID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetOwnPayouts(c *gin.Context) {
	ctx := c.Request.Context()
	driverID := c.GetString("driver_id")

	resp, err := h.service.GetOwnPayouts(ctx, driverID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
