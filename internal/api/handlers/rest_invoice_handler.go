package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/m-zohaibk/AQUABILL/internal/models"
	"github.com/m-zohaibk/AQUABILL/internal/services"
	"github.com/m-zohaibk/AQUABILL/internal/utils"
)

// RestInvoiceHandler handles REST requests related to invoices.
type RestInvoiceHandler struct {
	invoiceService services.IInvoiceService
}

// NewRestInvoiceHandler creates a new RestInvoiceHandler.
func NewRestInvoiceHandler(invoiceService services.IInvoiceService) *RestInvoiceHandler {
	return &RestInvoiceHandler{invoiceService: invoiceService}
}

// invoiceRequest is the wire form of an invoice submission. AmountReceived
// uses LenientAmount so junk input degrades to zero instead of failing,
// matching how the entry form behaves.
type invoiceRequest struct {
	CustomerID     string               `json:"customer_id"`
	Date           string               `json:"date"`
	StartTime      string               `json:"start_time"`
	EndTime        string               `json:"end_time"`
	RatePerMinute  *float64             `json:"rate_per_minute"`
	AmountReceived models.LenientAmount `json:"amount_received"`
}

func (r invoiceRequest) toInput() (services.InvoiceInput, error) {
	var customerID utils.SixID
	if r.CustomerID != "" {
		parsed, err := utils.ParseSixID(r.CustomerID)
		if err != nil {
			return services.InvoiceInput{}, err
		}
		customerID = parsed
	}
	return services.InvoiceInput{
		CustomerID:     customerID,
		Date:           r.Date,
		StartTime:      r.StartTime,
		EndTime:        r.EndTime,
		RatePerMinute:  r.RatePerMinute,
		AmountReceived: r.AmountReceived.Float64(),
	}, nil
}

// CreateInvoice handles POST /v1/invoice
func (h *RestInvoiceHandler) CreateInvoice(c *gin.Context) {
	var req invoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	input, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer ID format"})
		return
	}

	invoice, err := h.invoiceService.Create(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err, "Invoice not found")
		return
	}
	c.JSON(http.StatusCreated, invoice)
}

// UpdateInvoice handles PUT /v1/invoice/:id
func (h *RestInvoiceHandler) UpdateInvoice(c *gin.Context) {
	invoiceID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invoice ID format"})
		return
	}

	var req invoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}
	input, err := req.toInput()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer ID format"})
		return
	}

	invoice, err := h.invoiceService.Update(c.Request.Context(), invoiceID, input)
	if err != nil {
		respondServiceError(c, err, "Invoice not found")
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// GetInvoiceByID handles GET /v1/invoice/:id
func (h *RestInvoiceHandler) GetInvoiceByID(c *gin.Context) {
	invoiceID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invoice ID format"})
		return
	}

	invoice, err := h.invoiceService.FindByID(c.Request.Context(), invoiceID)
	if err != nil {
		respondServiceError(c, err, "Invoice not found")
		return
	}
	c.JSON(http.StatusOK, invoice)
}

// ListInvoices handles GET /v1/invoice
func (h *RestInvoiceHandler) ListInvoices(c *gin.Context) {
	invoices, err := h.invoiceService.FindAll(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Invoice not found")
		return
	}
	c.JSON(http.StatusOK, invoices)
}

// DeleteInvoice handles DELETE /v1/invoice/:id
func (h *RestInvoiceHandler) DeleteInvoice(c *gin.Context) {
	invoiceID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid invoice ID format"})
		return
	}

	if err := h.invoiceService.Delete(c.Request.Context(), invoiceID); err != nil {
		respondServiceError(c, err, "Invoice not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Invoice deleted"})
}
