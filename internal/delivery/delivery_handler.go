package delivery

import (
	"io"
	"net/http"

	deliveryerrors "go-courier/internal/delivery/errors"
	"go-courier/internal/shared/apperror"
	"go-courier/internal/shared/response"

	"github.com/gin-gonic/gin"
)

// uploads above this size are rejected before parsing
const maxUploadBytes = 5 << 20

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

func writeServiceError(c *gin.Context, err error) {
	httpErr := apperror.ToHTTP(err)
	response.Error(c, httpErr.Status, httpErr.Code, httpErr.Message, httpErr.Details)
}

func (h *Handler) Create(c *gin.Context) {
	adminID := c.GetString("admin_id")

	var req CreateDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		mapped := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, mapped.Status, mapped.Code, mapped.Message, nil)
		return
	}

	resp, err := h.service.Create(c.Request.Context(), adminID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) List(c *gin.Context) {
	adminID := c.GetString("admin_id")
	status := c.Query("status")

	resp, err := h.service.List(c.Request.Context(), adminID, status)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) EligibleDrivers(c *gin.Context) {
	adminID := c.GetString("admin_id")
	deliveryID := c.Param("id")

	resp, err := h.service.EligibleDrivers(c.Request.Context(), adminID, deliveryID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Assign(c *gin.Context) {
	adminID := c.GetString("admin_id")
	deliveryID := c.Param("id")

	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		mapped := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, mapped.Status, mapped.Code, mapped.Message, nil)
		return
	}

	resp, err := h.service.Assign(c.Request.Context(), adminID, deliveryID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) BulkUpload(c *gin.Context) {
	adminID := c.GetString("admin_id")

	file, _, err := c.Request.FormFile("file")
	if err != nil {
		httpErr := apperror.ToHTTP(deliveryerrors.ErrMalformedUpload)
		response.Error(c, httpErr.Status, httpErr.Code, "multipart field 'file' is required", nil)
		return
	}
	defer file.Close()

	sheet, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeServiceError(c, deliveryerrors.ErrMalformedUpload)
		return
	}

	resp, err := h.service.BulkUpload(c.Request.Context(), adminID, sheet)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, resp, nil)
}

func (h *Handler) ListToday(c *gin.Context) {
	driverID := c.GetString("driver_id")

	resp, err := h.service.ListToday(c.Request.Context(), driverID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	driverID := c.GetString("driver_id")
	deliveryID := c.Param("id")

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		mapped := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, mapped.Status, mapped.Code, mapped.Message, nil)
		return
	}

	resp, err := h.service.UpdateStatus(c.Request.Context(), driverID, deliveryID, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
