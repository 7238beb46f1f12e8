package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rplus-dev/rplus/internal/logging"
	"github.com/rplus-dev/rplus/internal/settings"
	"github.com/rplus-dev/rplus/internal/validate"
)

// SettingRequest is the body of a setting update. Value may be any JSON
// scalar; known settings check its type. Null resets the setting.
type SettingRequest struct {
	Value any `json:"value"`
}

// ListSettings returns every known setting plus stored extras.
//
// GET /api/v1/settings
func ListSettings(prefs *settings.Settings) gin.HandlerFunc {
	return func(c *gin.Context) {
		entries, err := prefs.All(c.Request.Context())
		if err != nil {
			logging.Error("Settings listing: %v", err)
			errorResponse(c, http.StatusServiceUnavailable, "Settings not available", err)
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "success",
			"data":   entries,
			"count":  len(entries),
		})
	}
}

// GetSetting returns one setting.
//
// GET /api/v1/settings/:key
func GetSetting(prefs *settings.Settings) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Param("key")
		if err := validate.SettingKeyFormat(key); err != nil {
			errorResponse(c, http.StatusBadRequest, "Invalid setting key", err)
			return
		}

		value, err := prefs.Value(c.Request.Context(), key)
		if err != nil {
			logging.Warn("Settings query: %v", err)
			errorResponse(c, http.StatusServiceUnavailable, "Settings not available", err)
			return
		}

		success(c, settings.Change{Key: key, Value: value})
	}
}

// PutSetting stores one setting, or resets it when the value is null. The
// response carries the value now in effect.
//
// PUT /api/v1/settings/:key
func PutSetting(prefs *settings.Settings) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.Param("key")

		var req SettingRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			errorResponse(c, http.StatusBadRequest, "Invalid request body", err)
			return
		}

		err := prefs.Set(c.Request.Context(), key, req.Value)
		if err != nil {
			if errors.Is(err, settings.ErrSettingsUnavailable) {
				logging.Error("Settings update: %v", err)
				errorResponse(c, http.StatusServiceUnavailable, "Settings not available", err)
				return
			}
			errorResponse(c, http.StatusBadRequest, "Invalid setting", err)
			return
		}

		value := req.Value
		if value == nil {
			logging.Info("Setting %s reset", key)
			if value, err = prefs.Value(c.Request.Context(), key); err != nil {
				logging.Warn("Settings query after reset: %v", err)
			}
		} else {
			logging.Info("Setting %s updated", key)
		}
		success(c, settings.Change{Key: key, Value: value})
	}
}
