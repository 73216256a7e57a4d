package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"fleet-service/internal/service"
)

func (h *Handler) createDriver(c *gin.Context) {
	var req struct {
		FullName      string `json:"full_name" binding:"required"`
		Phone         string `json:"phone"`
		LicenseNumber string `json:"license_number"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	driver, err := h.referenceService.CreateDriver(c.Request.Context(), service.CreateDriverInput{
		FullName:      req.FullName,
		Phone:         req.Phone,
		LicenseNumber: req.LicenseNumber,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(driver))
}

func (h *Handler) getDriver(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	driver, err := h.referenceService.GetDriver(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(driver))
}

func (h *Handler) listDrivers(c *gin.Context) {
	drivers, err := h.referenceService.ListDrivers(c.Request.Context(), parsePage(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(drivers))
}

func (h *Handler) createVehicle(c *gin.Context) {
	var req struct {
		PlateNumber  string   `json:"plate_number" binding:"required"`
		Make         string   `json:"make"`
		Model        string   `json:"model"`
		CapacityTons *float64 `json:"capacity_tons"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	vehicle, err := h.referenceService.CreateVehicle(c.Request.Context(), service.CreateVehicleInput{
		PlateNumber:  req.PlateNumber,
		Make:         req.Make,
		Model:        req.Model,
		CapacityTons: req.CapacityTons,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(vehicle))
}

func (h *Handler) getVehicle(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	vehicle, err := h.referenceService.GetVehicle(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(vehicle))
}

func (h *Handler) listVehicles(c *gin.Context) {
	vehicles, err := h.referenceService.ListVehicles(c.Request.Context(), parsePage(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(vehicles))
}

func (h *Handler) createTrailer(c *gin.Context) {
	var req struct {
		PlateNumber string `json:"plate_number" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	trailer, err := h.referenceService.CreateTrailer(c.Request.Context(), service.CreateTrailerInput{
		PlateNumber: req.PlateNumber,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(trailer))
}

func (h *Handler) listTrailers(c *gin.Context) {
	trailers, err := h.referenceService.ListTrailers(c.Request.Context(), parsePage(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(trailers))
}

func (h *Handler) createClient(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required"`
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	client, err := h.referenceService.CreateClient(c.Request.Context(), service.CreateClientInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(client))
}

func (h *Handler) listClients(c *gin.Context) {
	clients, err := h.referenceService.ListClients(c.Request.Context(), parsePage(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(clients))
}

func (h *Handler) createProduct(c *gin.Context) {
	var req struct {
		Name      string          `json:"name" binding:"required"`
		Unit      string          `json:"unit"`
		UnitPrice decimal.Decimal `json:"unit_price"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	product, err := h.referenceService.CreateProduct(c.Request.Context(), service.CreateProductInput{
		Name:      req.Name,
		Unit:      req.Unit,
		UnitPrice: req.UnitPrice,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(product))
}

func (h *Handler) listProducts(c *gin.Context) {
	products, err := h.referenceService.ListProducts(c.Request.Context(), parsePage(c))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse(products))
}

func (h *Handler) updateProductPrice(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		UnitPrice decimal.Decimal `json:"unit_price"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	product, err := h.referenceService.UpdateProductPrice(c.Request.Context(), id, req.UnitPrice)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(product))
}
