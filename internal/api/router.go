package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/m-zohaibk/AQUABILL/internal/api/handlers"
	"github.com/m-zohaibk/AQUABILL/internal/api/middleware"
	"github.com/m-zohaibk/AQUABILL/internal/config"
	"github.com/m-zohaibk/AQUABILL/internal/services"
)

// SetupRouter configures and returns the main Gin engine.
func SetupRouter(cfg *config.Config, rdb *redis.Client, taskClient handlers.IAsynqClient,
	customerService services.ICustomerService,
	invoiceService services.IInvoiceService,
	settingsService services.ISettingsService,
	userService services.IUserService,
) *gin.Engine {
	r := gin.Default()

	rateLimiter := middleware.NewRateLimiterMiddleware(cfg)

	// Global middleware first (order matters)
	r.Use(middleware.CORSMiddleware())
	r.Use(rateLimiter.Limit())

	authHandler := handlers.NewRestAuthHandler(cfg, userService, rdb)
	customerHandler := handlers.NewRestCustomerHandler(customerService, invoiceService, taskClient)
	invoiceHandler := handlers.NewRestInvoiceHandler(invoiceService)
	settingsHandler := handlers.NewRestSettingsHandler(cfg, settingsService)
	exportHandler := handlers.NewRestExportHandler(customerService, invoiceService, settingsService, taskClient)

	v1 := r.Group("/v1")
	{
		// Public routes
		v1.POST("/auth/signup", authHandler.SignUp)
		v1.POST("/auth/signin", authHandler.SignIn)
		v1.GET("/config", settingsHandler.GetPublicConfig)

		v1.GET("/ping", func(c *gin.Context) {
			c.String(http.StatusOK, "pong")
		})

		// Authenticated routes
		authRequired := v1.Group("/")
		authRequired.Use(middleware.AuthMiddleware(cfg.JwtSecret, rdb))
		{
			authRequired.POST("/auth/signout", authHandler.SignOut)

			authRequired.POST("/customer", customerHandler.CreateCustomer)
			authRequired.GET("/customer", customerHandler.ListCustomers)
			authRequired.GET("/customer/:id", customerHandler.GetCustomerByID)
			authRequired.PUT("/customer/:id", customerHandler.UpdateCustomer)
			authRequired.DELETE("/customer/:id", customerHandler.DeleteCustomer)
			authRequired.GET("/customer/:id/invoice", customerHandler.ListCustomerInvoices)
			authRequired.GET("/customer/:id/statement", exportHandler.GetCustomerStatement)
			authRequired.POST("/customer/:id/remind", exportHandler.RemindCustomer)
			authRequired.POST("/customer/:id/archive", exportHandler.ArchiveCustomerStatement)

			authRequired.POST("/invoice", invoiceHandler.CreateInvoice)
			authRequired.GET("/invoice", invoiceHandler.ListInvoices)
			authRequired.GET("/invoice/:id", invoiceHandler.GetInvoiceByID)
			authRequired.PUT("/invoice/:id", invoiceHandler.UpdateInvoice)
			authRequired.DELETE("/invoice/:id", invoiceHandler.DeleteInvoice)
			authRequired.GET("/invoice/:id/print", exportHandler.PrintInvoice)

			authRequired.GET("/settings", settingsHandler.GetSettings)
			authRequired.PUT("/settings", settingsHandler.UpdateSettings)
			authRequired.POST("/settings/import", settingsHandler.ImportSettings)
			authRequired.GET("/settings/export", settingsHandler.ExportSettings)
		}
	}

	return r
}

// SetupServiceRouter configures and returns the service Gin engine used for
// operational commands on a private port.
func SetupServiceRouter(cfg *config.Config, shutdownChan chan<- struct{}) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.POST("/api", func(c *gin.Context) {
		var req struct {
			Method    string          `json:"method"`
			Arguments json.RawMessage `json:"arguments"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid request format"})
			return
		}

		switch req.Method {
		case "shutdown":
			fmt.Println("Received shutdown command via Service API")
			c.JSON(http.StatusOK, gin.H{"success": true, "result": "Shutdown initiated"})
			select {
			case shutdownChan <- struct{}{}:
				fmt.Println("Shutdown signal sent successfully.")
			default:
				fmt.Println("Shutdown channel already signaled or blocked.")
			}
		default:
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": fmt.Sprintf("Unknown service method: %s", req.Method)})
		}
	})
	return r
}
