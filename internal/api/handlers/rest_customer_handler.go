package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/m-zohaibk/AQUABILL/internal/services"
	"github.com/m-zohaibk/AQUABILL/internal/tasks"
	"github.com/m-zohaibk/AQUABILL/internal/utils"
)

// RestCustomerHandler handles REST requests related to customers.
type RestCustomerHandler struct {
	customerService services.ICustomerService
	invoiceService  services.IInvoiceService
	taskClient      IAsynqClient
}

// NewRestCustomerHandler creates a new RestCustomerHandler.
func NewRestCustomerHandler(customerService services.ICustomerService, invoiceService services.IInvoiceService, taskClient IAsynqClient) *RestCustomerHandler {
	return &RestCustomerHandler{
		customerService: customerService,
		invoiceService:  invoiceService,
		taskClient:      taskClient,
	}
}

type customerRequest struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

// CreateCustomer handles POST /v1/customer
func (h *RestCustomerHandler) CreateCustomer(c *gin.Context) {
	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	customer, err := h.customerService.Create(c.Request.Context(), req.Name, req.Contact)
	if err != nil {
		respondServiceError(c, err, "Customer not found")
		return
	}
	c.JSON(http.StatusCreated, customer)
}

// UpdateCustomer handles PUT /v1/customer/:id
func (h *RestCustomerHandler) UpdateCustomer(c *gin.Context) {
	customerID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer ID format"})
		return
	}

	var req customerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	customer, err := h.customerService.Update(c.Request.Context(), customerID, req.Name, req.Contact)
	if err != nil {
		respondServiceError(c, err, "Customer not found")
		return
	}
	c.JSON(http.StatusOK, customer)
}

// GetCustomerByID handles GET /v1/customer/:id
func (h *RestCustomerHandler) GetCustomerByID(c *gin.Context) {
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
	c.JSON(http.StatusOK, customer)
}

// ListCustomers handles GET /v1/customer
func (h *RestCustomerHandler) ListCustomers(c *gin.Context) {
	customers, err := h.customerService.FindAll(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Customer not found")
		return
	}
	c.JSON(http.StatusOK, customers)
}

// DeleteCustomer handles DELETE /v1/customer/:id. The customer document is
// removed synchronously; their invoices are purged by a retried background
// task so a transient failure cannot strand the request.
func (h *RestCustomerHandler) DeleteCustomer(c *gin.Context) {
	customerID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer ID format"})
		return
	}

	if err := h.customerService.Delete(c.Request.Context(), customerID); err != nil {
		respondServiceError(c, err, "Customer not found")
		return
	}

	task, err := tasks.NewCustomerPurgeTask(customerID)
	if err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Customer deleted but invoice purge could not be scheduled"})
		return
	}
	if _, err := h.taskClient.EnqueueContext(c.Request.Context(), task); err != nil {
		log.Printf("Failed to enqueue purge task for customer %s: %v", customerID.String(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Customer deleted but invoice purge could not be scheduled"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Customer deleted"})
}

// ListCustomerInvoices handles GET /v1/customer/:id/invoice
func (h *RestCustomerHandler) ListCustomerInvoices(c *gin.Context) {
	customerID, err := utils.ParseSixID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid customer ID format"})
		return
	}

	if _, err := h.customerService.FindByID(c.Request.Context(), customerID); err != nil {
		respondServiceError(c, err, "Customer not found")
		return
	}

	invoices, err := h.invoiceService.FindByCustomer(c.Request.Context(), customerID)
	if err != nil {
		respondServiceError(c, err, "Customer not found")
		return
	}
	c.JSON(http.StatusOK, invoices)
}
