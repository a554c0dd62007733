package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/m-zohaibk/AQUABILL/internal/config"
	"github.com/m-zohaibk/AQUABILL/internal/models"
	"github.com/m-zohaibk/AQUABILL/internal/services"
)

// Uploaded settings files are tiny; anything bigger is not a settings file.
const maxSettingsImportBytes = 1 << 20

// RestSettingsHandler handles REST requests for the tenant settings singleton.
type RestSettingsHandler struct {
	cfg             *config.Config
	settingsService services.ISettingsService
}

// NewRestSettingsHandler creates a new RestSettingsHandler.
func NewRestSettingsHandler(cfg *config.Config, settingsService services.ISettingsService) *RestSettingsHandler {
	return &RestSettingsHandler{
		cfg:             cfg,
		settingsService: settingsService,
	}
}

// GetSettings handles GET /v1/settings
func (h *RestSettingsHandler) GetSettings(c *gin.Context) {
	settings, err := h.settingsService.Get(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Settings not found")
		return
	}
	c.JSON(http.StatusOK, settings)
}

// UpdateSettings handles PUT /v1/settings
func (h *RestSettingsHandler) UpdateSettings(c *gin.Context) {
	var req models.Settings
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format"})
		return
	}

	settings, err := h.settingsService.Update(c.Request.Context(), req)
	if err != nil {
		respondServiceError(c, err, "Settings not found")
		return
	}
	c.JSON(http.StatusOK, settings)
}

// ImportSettings handles POST /v1/settings/import. The settings file may
// arrive as a multipart upload under "file" or as the raw request body.
func (h *RestSettingsHandler) ImportSettings(c *gin.Context) {
	raw, err := h.readImportPayload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Could not read settings file"})
		return
	}

	settings, err := h.settingsService.Import(c.Request.Context(), raw)
	if err != nil {
		respondServiceError(c, err, "Settings not found")
		return
	}
	c.JSON(http.StatusOK, settings)
}

func (h *RestSettingsHandler) readImportPayload(c *gin.Context) ([]byte, error) {
	if fileHeader, err := c.FormFile("file"); err == nil {
		file, err := fileHeader.Open()
		if err != nil {
			return nil, err
		}
		defer file.Close()
		return io.ReadAll(io.LimitReader(file, maxSettingsImportBytes))
	}
	return io.ReadAll(io.LimitReader(c.Request.Body, maxSettingsImportBytes))
}

// ExportSettings handles GET /v1/settings/export, returning the settings as
// a downloadable JSON file.
func (h *RestSettingsHandler) ExportSettings(c *gin.Context) {
	data, err := h.settingsService.Export(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, "Settings not found")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="settings.json"`)
	c.Data(http.StatusOK, "application/json", data)
}

// GetPublicConfig handles GET /v1/config, the unauthenticated client
// bootstrap endpoint.
func (h *RestSettingsHandler) GetPublicConfig(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"APP_NAME":                h.cfg.AppName,
		"PASSWORD_MIN_LENGTH":     h.cfg.PasswordMinLength,
		"DEFAULT_RATE_PER_MINUTE": h.cfg.DefaultRatePerMinute,
	})
}
