package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"fleet-service/internal/model"
	"fleet-service/internal/repository"
	"fleet-service/internal/service"
)

func (h *Handler) createInvoice(c *gin.Context) {
	var req struct {
		JobID    string                 `json:"job_id" binding:"required"`
		Currency string                 `json:"currency"`
		Notes    string                 `json:"notes"`
		DueDate  string                 `json:"due_date"`
		Metadata map[string]interface{} `json:"metadata"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	jobID, err := parseOptionalUUID(req.JobID)
	if err != nil || jobID == nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid job_id"))
		return
	}
	dueDate, err := parseOptionalTime(req.DueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid due_date"))
		return
	}

	invoice, err := h.invoiceService.CreateFromJob(c.Request.Context(), service.CreateInvoiceInput{
		JobID:    *jobID,
		Currency: req.Currency,
		Notes:    req.Notes,
		DueDate:  dueDate,
		Metadata: req.Metadata,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusCreated, successResponse(invoice))
}

func (h *Handler) getInvoice(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.Get(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(invoice))
}

func (h *Handler) listInvoices(c *gin.Context) {
	filter := repository.InvoiceListFilter{Page: parsePage(c)}

	var err error
	if filter.ClientID, err = parseOptionalUUID(c.Query("client_id")); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid client_id"))
		return
	}
	if filter.JobID, err = parseOptionalUUID(c.Query("job_id")); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid job_id"))
		return
	}
	if status := strings.TrimSpace(c.Query("status")); status != "" {
		is := model.InvoiceStatus(strings.ToUpper(status))
		filter.Status = &is
	}

	invoices, err := h.invoiceService.List(c.Request.Context(), filter)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(invoices))
}

func (h *Handler) updateInvoice(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Notes    *string                `json:"notes"`
		DueDate  string                 `json:"due_date"`
		Metadata map[string]interface{} `json:"metadata"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
		return
	}

	dueDate, err := parseOptionalTime(req.DueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("invalid due_date"))
		return
	}

	invoice, err := h.invoiceService.Update(c.Request.Context(), id, service.UpdateInvoiceInput{
		Notes:    req.Notes,
		DueDate:  dueDate,
		Metadata: req.Metadata,
	})
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(invoice))
}

func (h *Handler) issueInvoice(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.Issue(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(invoice))
}

func (h *Handler) cancelInvoice(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	invoice, err := h.invoiceService.Cancel(c.Request.Context(), id)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse(invoice))
}

func (h *Handler) deleteInvoice(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := h.invoiceService.Delete(c.Request.Context(), id); err != nil {
		h.handleError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
