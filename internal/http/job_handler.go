package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"fleet-service/internal/model"
	"fleet-service/internal/repository"
	"fleet-service/internal/service"
)

type jobLineRequest struct {
	PickupTime   model.ClockTime `json:"pickup_time"`
	DeliveryTime model.ClockTime `json:"delivery_time"`
	DriverID     string          `json:"driver_id"`
	VehicleID    string          `json:"vehicle_id"`
	TrailerID    string          `json:"trailer_id"`
	ProductID    string          `json:"product_id"`
	Qty          decimal.Decimal `json:"qty"`
	DocketNo     string          `json:"docket_no"`
	PickupSite   string          `json:"pickup_site"`
	DeliverySite string          `json:"delivery_site"`
}

func (r jobLineRequest) toInput() (service.JobLineInput, string) {
	in := service.JobLineInput{
		PickupTime:   r.PickupTime,
		DeliveryTime: r.DeliveryTime,
		Qty:          r.Qty,
		DocketNo:     strings.TrimSpace(r.DocketNo),
		PickupSite:   strings.TrimSpace(r.PickupSite),
		DeliverySite: strings.TrimSpace(r.DeliverySite),
	}

	var err error
	if in.DriverID, err = parseOptionalUUID(r.DriverID); err != nil {
		return in, "invalid driver_id"
	}
	if in.VehicleID, err = parseOptionalUUID(r.VehicleID); err != nil {
		return in, "invalid vehicle_id"
	}
	if in.TrailerID, err = parseOptionalUUID(r.TrailerID); err != nil {
		return in, "invalid trailer_id"
	}
	if in.ProductID, err = parseOptionalUUID(r.ProductID); err != nil {
		return in, "invalid product_id"
	}
	return in, ""
}

func (h *Handler) createJob(c *gin.Context) {
	var req struct {
		ShiftID  string           `json:"shift_id" binding:"required"`
		ClientID string           `json:"client_id" binding:"required"`
		JobDate  string           `json:"job_date" binding:"required"`
		Notes    string           `json:"notes"`
		Lines    []jobLineRequest `json:"lines"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	shiftID, err := parseOptionalUUID(req.ShiftID)
	if err != nil || shiftID == nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid shift_id"))
		return
	}
	clientID, err := parseOptionalUUID(req.ClientID)
	if err != nil || clientID == nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid client_id"))
		return
	}
	jobDate, err := parseTime(req.JobDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid job_date"))
		return
	}

	input := service.CreateJobInput{
		ShiftID:  *shiftID,
		ClientID: *clientID,
		JobDate:  jobDate,
		Notes:    req.Notes,
	}
	for _, line := range req.Lines {
		in, msg := line.toInput()
		if msg != "" {
			c.JSON(http.StatusBadRequest, errorResponse(msg))
			return
		}
		input.Lines = append(input.Lines, in)
	}

	job, err := h.jobService.Create(c.Request.Context(), input)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(job))
}

func (h *Handler) getJob(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	job, err := h.jobService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(job))
}

func (h *Handler) listJobs(c *gin.Context) {
	filter := repository.JobListFilter{Page: parsePage(c)}

	var err error
	if filter.ShiftID, err = parseOptionalUUID(c.Query("shift_id")); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid shift_id"))
		return
	}
	if filter.ClientID, err = parseOptionalUUID(c.Query("client_id")); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid client_id"))
		return
	}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		js := model.JobStatus(strings.ToUpper(status))
		filter.Status = &js
	}
	if filter.DateFrom, err = parseOptionalTime(c.Query("date_from")); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid date_from"))
		return
	}
	if filter.DateTo, err = parseOptionalTime(c.Query("date_to")); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid date_to"))
		return
	}

	jobs, err := h.jobService.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(jobs))
}

func (h *Handler) changeJobStatus(c *gin.Context) {
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

	to := model.JobStatus(strings.ToUpper(strings.TrimSpace(req.Status)))
	job, err := h.jobService.ChangeStatus(c.Request.Context(), id, to)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(job))
}

func (h *Handler) addJobLine(c *gin.Context) {
	jobID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req jobLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	in, msg := req.toInput()
	if msg != "" {
		c.JSON(http.StatusBadRequest, errorResponse(msg))
		return
	}

	line, err := h.jobService.AddLine(c.Request.Context(), jobID, in)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(line))
}

func (h *Handler) updateJobLine(c *gin.Context) {
	lineID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req jobLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}
	in, msg := req.toInput()
	if msg != "" {
		c.JSON(http.StatusBadRequest, errorResponse(msg))
		return
	}

	line, err := h.jobService.UpdateLine(c.Request.Context(), lineID, in)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(line))
}

func (h *Handler) deleteJobLine(c *gin.Context) {
	lineID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.jobService.DeleteLine(c.Request.Context(), lineID); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
