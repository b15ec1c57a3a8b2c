package handler

import (
	"net/http"

	"invoicer/internal/auth"
	"invoicer/internal/middleware"
	"invoicer/internal/service"
	"invoicer/pkg/pagination"
	"invoicer/pkg/response"

	"github.com/gin-gonic/gin"
)

type InvoiceHandler struct {
	invoiceService service.InvoiceService
	sequence       service.SequenceService
	authenticator  auth.Authenticator
}

func NewInvoiceHandler(invoiceService service.InvoiceService, sequence service.SequenceService, authenticator auth.Authenticator) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		sequence:       sequence,
		authenticator:  authenticator,
	}
}

func (h *InvoiceHandler) RegisterRoutes(router *gin.RouterGroup) {
	invoices := router.Group("/invoices")
	invoices.Use(middleware.RequireAuth(h.authenticator))
	{
		invoices.POST("", h.CreateInvoice)
		invoices.GET("", h.ListInvoices)
		invoices.POST("/next-number", h.NextInvoiceNumber)
		invoices.GET("/:id", h.GetInvoice)
		invoices.PUT("/:id", h.UpdateInvoice)
		invoices.PATCH("/:id/status", h.UpdateStatus)
		invoices.PATCH("/:id/payment", h.RecordPayment)
	}
}

// CreateInvoice creates a new invoice numbered from the owner's sequence
// @Summary      Create invoice
// @Description  Creates a draft invoice. The invoice number is assigned by the server.
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateInvoiceRequest  true  "Create Invoice Payload"
// @Success      201      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400      {object}  response.Response
// @Failure      401      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Failure      500      {object}  response.Response
// @Router       /api/v1/invoices [post]
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	owner, ok := requireUser(c)
	if !ok {
		return
	}

	var req service.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.invoiceService.CreateInvoice(c.Request.Context(), owner, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response.SuccessMessage(http.StatusCreated, "Invoice created successfully", invoice))
}

// NextInvoiceNumber allocates a number without creating an invoice
// @Summary      Allocate invoice number
// @Description  Consumes and returns the next number of the caller's invoice sequence
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=map[string]string}
// @Failure      401  {object}  response.Response
// @Failure      500  {object}  response.Response
// @Router       /api/v1/invoices/next-number [post]
func (h *InvoiceHandler) NextInvoiceNumber(c *gin.Context) {
	owner, ok := requireUser(c)
	if !ok {
		return
	}

	invoiceNo, err := h.sequence.NextInvoiceNumber(c.Request.Context(), owner.UserID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, map[string]string{"invoice_no": invoiceNo}))
}

// ListInvoices returns the caller's invoices, newest first
// @Summary      List invoices
// @Description  Retrieves a paginated list of the caller's invoices, optionally filtered by status
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Filter by status (draft, sent, paid)"
// @Param        page    query     int     false  "Page number (default 1)"
// @Param        limit   query     int     false  "Number of items per page (default 20)"
// @Success      200     {object}  response.Response{data=pagination.Page[service.InvoiceResponse]}
// @Failure      400     {object}  response.Response
// @Failure      401     {object}  response.Response
// @Router       /api/v1/invoices [get]
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	owner, ok := requireUser(c)
	if !ok {
		return
	}

	params := pagination.Parse(c)
	invoices, total, err := h.invoiceService.ListInvoices(c.Request.Context(), owner.UserID, service.InvoiceFilter{
		Status: c.Query("status"),
		Page:   params.Page,
		Limit:  params.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessMessage(http.StatusOK, "Invoices fetched successfully", pagination.NewPage(invoices, total, params)))
}

// GetInvoice returns one of the caller's invoices
// @Summary      Get invoice
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Invoice ID"
// @Success      200  {object}  response.Response{data=service.InvoiceResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/v1/invoices/{id} [get]
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	owner, ok := requireUser(c)
	if !ok {
		return
	}

	invoice, err := h.invoiceService.GetInvoice(c.Request.Context(), owner.UserID, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessMessage(http.StatusOK, "Invoice fetched successfully", invoice))
}

// UpdateInvoice edits an invoice's content fields
// @Summary      Update invoice
// @Description  Updates dates, parties, items, amounts and presentation. Number and owner never change.
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Invoice ID"
// @Param        payload  body      service.UpdateInvoiceRequest  true  "Update Invoice Payload"
// @Success      200      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/v1/invoices/{id} [put]
func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	owner, ok := requireUser(c)
	if !ok {
		return
	}

	var req service.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.invoiceService.UpdateInvoice(c.Request.Context(), owner.UserID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessMessage(http.StatusOK, "Invoice updated successfully", invoice))
}

// UpdateStatus moves an invoice between draft, sent and paid
// @Summary      Update invoice status
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                       true  "Invoice ID"
// @Param        payload  body      service.UpdateStatusRequest  true  "Status Payload"
// @Success      200      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/v1/invoices/{id}/status [patch]
func (h *InvoiceHandler) UpdateStatus(c *gin.Context) {
	owner, ok := requireUser(c)
	if !ok {
		return
	}

	var req service.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.invoiceService.UpdateStatus(c.Request.Context(), owner.UserID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessMessage(http.StatusOK, "Invoice status updated", invoice))
}

// RecordPayment sets the amount paid so far
// @Summary      Record payment
// @Tags         invoices
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Invoice ID"
// @Param        payload  body      service.RecordPaymentRequest  true  "Payment Payload"
// @Success      200      {object}  response.Response{data=service.InvoiceResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/v1/invoices/{id}/payment [patch]
func (h *InvoiceHandler) RecordPayment(c *gin.Context) {
	owner, ok := requireUser(c)
	if !ok {
		return
	}

	var req service.RecordPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	invoice, err := h.invoiceService.RecordPayment(c.Request.Context(), owner.UserID, c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.SuccessMessage(http.StatusOK, "Payment recorded", invoice))
}
