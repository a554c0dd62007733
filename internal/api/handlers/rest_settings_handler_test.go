package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/m-zohaibk/AQUABILL/internal/api/handlers"
	"github.com/m-zohaibk/AQUABILL/internal/config"
	"github.com/m-zohaibk/AQUABILL/internal/models"
	"github.com/m-zohaibk/AQUABILL/internal/services"
)

func setupSettingsRouter(settingsSvc *MockSettingsService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{AppName: "AquaBill", PasswordMinLength: 6, DefaultRatePerMinute: 16.666}
	h := handlers.NewRestSettingsHandler(cfg, settingsSvc)
	r := gin.New()
	r.GET("/v1/config", h.GetPublicConfig)
	r.GET("/v1/settings", h.GetSettings)
	r.PUT("/v1/settings", h.UpdateSettings)
	r.POST("/v1/settings/import", h.ImportSettings)
	r.GET("/v1/settings/export", h.ExportSettings)
	return r
}

func TestGetSettings_Success(t *testing.T) {
	settingsSvc := new(MockSettingsService)
	r := setupSettingsRouter(settingsSvc)

	settingsSvc.On("Get", mock.Anything).Return(models.Settings{
		RatePerMinute: 16.666, BusinessName: "Blue Drop Water Supply",
	}, nil)

	req := httptest.NewRequest("GET", "/v1/settings", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Blue Drop Water Supply")
	assert.Contains(t, w.Body.String(), "ratePerMinute")
}

func TestUpdateSettings_Success(t *testing.T) {
	settingsSvc := new(MockSettingsService)
	r := setupSettingsRouter(settingsSvc)

	updated := models.Settings{RatePerMinute: 20, BusinessName: "Renamed Water Co"}
	settingsSvc.On("Update", mock.Anything, mock.MatchedBy(func(s models.Settings) bool {
		return s.RatePerMinute == 20 && s.BusinessName == "Renamed Water Co"
	})).Return(updated, nil)

	body, _ := json.Marshal(map[string]any{
		"ratePerMinute": 20,
		"businessName":  "Renamed Water Co",
	})
	req := httptest.NewRequest("PUT", "/v1/settings", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	settingsSvc.AssertExpectations(t)
}

func TestImportSettings_RawBody(t *testing.T) {
	settingsSvc := new(MockSettingsService)
	r := setupSettingsRouter(settingsSvc)

	fileContents := []byte(`{"ratePerMinute": 25}`)
	merged := models.Settings{RatePerMinute: 25, BusinessName: "Kept Business"}
	settingsSvc.On("Import", mock.Anything, fileContents).Return(merged, nil)

	req := httptest.NewRequest("POST", "/v1/settings/import", bytes.NewReader(fileContents))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Kept Business")
	settingsSvc.AssertExpectations(t)
}

func TestImportSettings_MalformedFile(t *testing.T) {
	settingsSvc := new(MockSettingsService)
	r := setupSettingsRouter(settingsSvc)

	fileContents := []byte(`{not json`)
	settingsSvc.On("Import", mock.Anything, fileContents).
		Return(models.Settings{}, fmt.Errorf("%w: settings file is not valid JSON", services.ErrImport))

	req := httptest.NewRequest("POST", "/v1/settings/import", bytes.NewReader(fileContents))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportSettings_Download(t *testing.T) {
	settingsSvc := new(MockSettingsService)
	r := setupSettingsRouter(settingsSvc)

	exported := []byte(`{"ratePerMinute": 16.666}`)
	settingsSvc.On("Export", mock.Anything).Return(exported, nil)

	req := httptest.NewRequest("GET", "/v1/settings/export", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, exported, w.Body.Bytes())
	assert.Contains(t, w.Header().Get("Content-Disposition"), "settings.json")
}

func TestGetPublicConfig(t *testing.T) {
	r := setupSettingsRouter(new(MockSettingsService))

	req := httptest.NewRequest("GET", "/v1/config", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var respBody map[string]any
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &respBody))
	assert.Equal(t, "AquaBill", respBody["APP_NAME"])
	assert.Equal(t, float64(6), respBody["PASSWORD_MIN_LENGTH"])
	assert.Equal(t, 16.666, respBody["DEFAULT_RATE_PER_MINUTE"])
}
