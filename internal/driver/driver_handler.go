package driver

import (
	"net/http"

	"go-courier/internal/shared/apperror"
	"go-courier/internal/shared/response"

	"github.com/gin-gonic/gin"
)

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

func (h *Handler) List(c *gin.Context) {
	adminID := c.GetString("admin_id")

	resp, err := h.service.List(c.Request.Context(), adminID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetByID(c *gin.Context) {
	adminID := c.GetString("admin_id")
	id := c.Param("id")

	resp, err := h.service.GetByID(c.Request.Context(), adminID, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Update(c *gin.Context) {
	adminID := c.GetString("admin_id")
	id := c.Param("id")

	var req UpdateDriverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		mapped := apperror.ToHTTP(apperror.MapValidationError(err))
		response.Error(c, mapped.Status, mapped.Code, mapped.Message, nil)
		return
	}

	resp, err := h.service.Update(c.Request.Context(), adminID, id, req)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) Remove(c *gin.Context) {
	adminID := c.GetString("admin_id")
	id := c.Param("id")

	if err := h.service.Remove(c.Request.Context(), adminID, id); err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"removed": true}, nil)
}

func (h *Handler) Performance(c *gin.Context) {
	adminID := c.GetString("admin_id")
	id := c.Param("id")

	resp, err := h.service.Performance(c.Request.Context(), adminID, id)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}

func (h *Handler) GetOwnProfile(c *gin.Context) {
	driverID := c.GetString("driver_id")

	resp, err := h.service.GetOwnProfile(c.Request.Context(), driverID)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	response.Success(c, http.StatusOK, resp, nil)
}
