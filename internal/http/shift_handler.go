package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"fleet-service/internal/model"
	"fleet-service/internal/repository"
	"fleet-service/internal/service"
)

func (h *Handler) createShift(c *gin.Context) {
	var req struct {
		DriverID  string `json:"driver_id" binding:"required"`
		StartTime string `json:"start_time" binding:"required"`
		EndTime   string `json:"end_time" binding:"required"`
		Timezone  string `json:"timezone"`
		Notes     string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	driverID, err := parseOptionalUUID(req.DriverID)
	if err != nil || driverID == nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid driver_id"))
		return
	}
	start, err := parseTime(req.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid start_time"))
		return
	}
	end, err := parseTime(req.EndTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid end_time"))
		return
	}

	shift, err := h.shiftService.Create(c.Request.Context(), service.CreateShiftInput{
		DriverID:  *driverID,
		StartTime: start,
		EndTime:   end,
		Timezone:  req.Timezone,
		Notes:     req.Notes,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(shift))
}

func (h *Handler) getShift(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	shift, err := h.shiftService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(shift))
}

func (h *Handler) listShifts(c *gin.Context) {
	filter := repository.ShiftListFilter{Page: parsePage(c)}

	driverID, err := parseOptionalUUID(c.Query("driver_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid driver_id"))
		return
	}
	filter.DriverID = driverID

	if status := strings.TrimSpace(c.Query("status")); status != "" {
		ss := model.ShiftStatus(strings.ToUpper(status))
		filter.Status = &ss
	}

	if filter.StartFrom, err = parseOptionalTime(c.Query("start_from")); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid start_from"))
		return
	}
	if filter.StartTo, err = parseOptionalTime(c.Query("start_to")); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid start_to"))
		return
	}

	shifts, err := h.shiftService.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(shifts))
}

func (h *Handler) updateShiftWindow(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		StartTime string  `json:"start_time" binding:"required"`
		EndTime   string  `json:"end_time" binding:"required"`
		Timezone  *string `json:"timezone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	start, err := parseTime(req.StartTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid start_time"))
		return
	}
	end, err := parseTime(req.EndTime)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid end_time"))
		return
	}

	shift, err := h.shiftService.UpdateWindow(c.Request.Context(), id, service.UpdateShiftWindowInput{
		StartTime: start,
		EndTime:   end,
		Timezone:  req.Timezone,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(shift))
}

func (h *Handler) changeShiftStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	to := model.ShiftStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	shift, err := h.shiftService.ChangeStatus(c.Request.Context(), id, to)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(shift))
}

func (h *Handler) deleteShift(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.shiftService.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
