package handlers

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/m-zohaibk/AQUABILL/internal/export"
	"github.com/m-zohaibk/AQUABILL/internal/services"
	"github.com/m-zohaibk/AQUABILL/internal/tasks"
	"github.com/m-zohaibk/AQUABILL/internal/utils"
)

// RestExportHandler handles PDF exports and the background jobs that grow
// out of them (payment reminders, statement archiving).
type RestExportHandler struct {
	customerService services.ICustomerService
	invoiceService  services.IInvoiceService
	settingsService services.ISettingsService
	taskClient      IAsynqClient
}

// NewRestExportHandler creates a new RestExportHandler.
func NewRestExportHandler(
	customerService services.ICustomerService,
	invoiceService services.IInvoiceService,
	settingsService services.ISettingsService,
	taskClient IAsynqClient,
) *RestExportHandler {
	return &RestExportHandler{
		customerService: customerService,
		invoiceService:  invoiceService,
		settingsService: settingsService,
		taskClient:      taskClient,
	}
}

// GetCustomerStatement handles GET /v1/customer/:id/statement, rendering the
// customer's full invoice history as a PDF.
func (h *RestExportHandler) GetCustomerStatement(c *gin.Context) {
	customerID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer ID format"})
		return
	}

	customer, err := h.customerService.FindByID(c.Request.Context(), customerID)
	if err != nil {
		respondServiceError(c, err, "Customer not found")
		return
	}

	invoices, err := h.invoiceService.FindByCustomer(c.Request.Context(), customerID)
	if err != nil {
		respondServiceError(c, err, "Customer not found")
		return
	}

	settings, err := h.settingsService.Get(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Settings not found")
		return
	}

	pdf, err := export.StatementPDF(settings, *customer, invoices)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render statement"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="statement_%s.pdf"`, customerID.String()))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// PrintInvoice handles GET /v1/invoice/:id/print, rendering a single invoice
// as a printable PDF.
func (h *RestExportHandler) PrintInvoice(c *gin.Context) {
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

	customer, err := h.customerService.FindByID(c.Request.Context(), invoice.CustomerID)
	if err != nil {
		respondServiceError(c, err, "Customer not found")
		return
	}

	settings, err := h.settingsService.Get(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Settings not found")
		return
	}

	pdf, err := export.InvoicePDF(settings, *customer, *invoice)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render invoice"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`inline; filename="invoice_%s.pdf"`, invoiceID.String()))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// RemindCustomer handles POST /v1/customer/:id/remind, scheduling a payment
// reminder email.
func (h *RestExportHandler) RemindCustomer(c *gin.Context) {
	customerID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer ID format"})
		return
	}

	if _, err := h.customerService.FindByID(c.Request.Context(), customerID); err != nil {
		respondServiceError(c, err, "Customer not found")
		return
	}

	task, err := tasks.NewPaymentReminderTask(customerID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to schedule reminder"})
		return
	}

	info, err := h.taskClient.EnqueueContext(c.Request.Context(), task)
	if err != nil {
		log.Printf("Failed to enqueue reminder task for customer %s: %v", customerID.String(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to schedule reminder"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "Reminder scheduled", "task_id": info.ID})
}

// ArchiveCustomerStatement handles POST /v1/customer/:id/archive, scheduling
// a statement render and upload to archive storage.
func (h *RestExportHandler) ArchiveCustomerStatement(c *gin.Context) {
	customerID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer ID format"})
		return
	}

	if _, err := h.customerService.FindByID(c.Request.Context(), customerID); err != nil {
		respondServiceError(c, err, "Customer not found")
		return
	}

	task, err := tasks.NewStatementArchiveTask(customerID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to schedule archive"})
		return
	}

	info, err := h.taskClient.EnqueueContext(c.Request.Context(), task)
	if err != nil {
		log.Printf("Failed to enqueue archive task for customer %s: %v", customerID.String(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to schedule archive"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"message": "Statement archive scheduled", "task_id": info.ID})
}
