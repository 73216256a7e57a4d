package http

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"fleet-service/internal/http/middleware"
	"fleet-service/internal/model"
	"fleet-service/internal/repository"
	"fleet-service/internal/service"
)

type Handler struct {
	shiftService     *service.ShiftService
	jobService       *service.JobService
	invoiceService   *service.InvoiceService
	referenceService *service.ReferenceService
	codeService      *service.CodeService
	log              zerolog.Logger
}

func NewHandler(
	shiftService *service.ShiftService,
	jobService *service.JobService,
	invoiceService *service.InvoiceService,
	referenceService *service.ReferenceService,
	codeService *service.CodeService,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		shiftService:     shiftService,
		jobService:       jobService,
		invoiceService:   invoiceService,
		referenceService: referenceService,
		codeService:      codeService,
		log:              log,
	}
}

func (h *Handler) Register(r *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := r.Group("/")
	protected.Use(authMiddleware)

	dispatch := middleware.RequireRole(model.RoleDispatcher)
	billing := middleware.RequireRole(model.RoleAccountant)
	admin := middleware.RequireRole(model.RoleAdmin)

	shifts := protected.Group("/shifts")
	{
		shifts.GET("", h.listShifts)
		shifts.GET("/:id", h.getShift)
		shifts.POST("", dispatch, h.createShift)
		shifts.PUT("/:id/window", dispatch, h.updateShiftWindow)
		shifts.PUT("/:id/status", dispatch, h.changeShiftStatus)
		shifts.DELETE("/:id", dispatch, h.deleteShift)
	}

	jobs := protected.Group("/jobs")
	{
		jobs.GET("", h.listJobs)
		jobs.GET("/:id", h.getJob)
		jobs.POST("", dispatch, h.createJob)
		jobs.PUT("/:id/status", dispatch, h.changeJobStatus)
		jobs.POST("/:id/lines", dispatch, h.addJobLine)
	}

	lines := protected.Group("/job-lines")
	{
		lines.PUT("/:id", dispatch, h.updateJobLine)
		lines.DELETE("/:id", dispatch, h.deleteJobLine)
	}

	invoices := protected.Group("/invoices")
	{
		invoices.GET("", h.listInvoices)
		invoices.GET("/:id", h.getInvoice)
		invoices.POST("", billing, h.createInvoice)
		invoices.PUT("/:id", billing, h.updateInvoice)
		invoices.PUT("/:id/issue", billing, h.issueInvoice)
		invoices.PUT("/:id/cancel", billing, h.cancelInvoice)
		invoices.DELETE("/:id", billing, h.deleteInvoice)
	}

	protected.GET("/drivers", h.listDrivers)
	protected.GET("/drivers/:id", h.getDriver)
	protected.POST("/drivers", dispatch, h.createDriver)
	protected.GET("/vehicles", h.listVehicles)
	protected.GET("/vehicles/:id", h.getVehicle)
	protected.POST("/vehicles", dispatch, h.createVehicle)
	protected.GET("/trailers", h.listTrailers)
	protected.POST("/trailers", dispatch, h.createTrailer)
	protected.GET("/clients", h.listClients)
	protected.POST("/clients", billing, h.createClient)
	protected.GET("/products", h.listProducts)
	protected.POST("/products", billing, h.createProduct)
	protected.PUT("/products/:id/price", billing, h.updateProductPrice)

	counters := protected.Group("/counters", admin)
	{
		counters.GET("/:type", h.getCurrentCounter)
		counters.POST("/:type/next", h.nextCode)
	}
}

func (h *Handler) getCurrentCounter(c *gin.Context) {
	codeType := model.CodeType(strings.ToUpper(strings.TrimSpace(c.Param("type"))))
	if !codeType.Valid() {
		c.JSON(http.StatusBadRequest, errorResponse("unknown code type"))
		return
	}

	current, err := h.codeService.GetCurrentCounter(c.Request.Context(), codeType)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(gin.H{"type": codeType, "current": current}))
}

func (h *Handler) nextCode(c *gin.Context) {
	codeType := model.CodeType(strings.ToUpper(strings.TrimSpace(c.Param("type"))))
	if !codeType.Valid() {
		c.JSON(http.StatusBadRequest, errorResponse("unknown code type"))
		return
	}

	code, err := h.codeService.GetNextCode(c.Request.Context(), codeType)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(gin.H{"type": codeType, "code": code}))
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPermissionDenied):
		c.JSON(http.StatusForbidden, errorResponse(err.Error()))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse(err.Error()))
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
	case errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, errorResponse(err.Error()))
	default:
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("handler error")
		c.JSON(http.StatusInternalServerError, errorResponse("internal error"))
	}
}

func successResponse(data interface{}) gin.H {
	return gin.H{
		"data": data,
	}
}

func errorResponse(message string) gin.H {
	return gin.H{
		"error": message,
	}
}

func parseIDParam(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(name)))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

func parseOptionalUUID(raw string) (*uuid.UUID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func parsePage(c *gin.Context) repository.Page {
	var page repository.Page
	if raw := c.Query("limit"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			page.Limit = v
		}
	}
	if raw := c.Query("offset"); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			page.Offset = v
		}
	}
	return page
}

func parseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	layouts := []string{
		time.RFC3339,
		"2006-01-02",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05Z",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, nil
		}
	}
	return time.Time{}, errors.New("invalid time format")
}

func parseOptionalTime(raw string) (*time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	t, err := parseTime(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
