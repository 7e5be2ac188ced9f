package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"brainwaves/internal/domain"
	"brainwaves/internal/repository"
)

// ConfigHandler serves the global configuration key/value store. Entries
// flagged write_only can be set but never read back over the API; entries
// flagged superuser_only are hidden from regular teachers.
type ConfigHandler struct {
	logger  *zap.Logger
	configs repository.ConfigRepository
}

func NewConfigHandler(logger *zap.Logger, configs repository.ConfigRepository) *ConfigHandler {
	return &ConfigHandler{
		logger:  logger,
		configs: configs,
	}
}

// GetConfig handles GET /config/:key.
func (h *ConfigHandler) GetConfig(c *gin.Context) {
	entry, err := h.configs.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			c.JSON(http.StatusNotFound, gin.H{"error": "config not found"})
			return
		}
		h.logger.Error("get config failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not get config"})
		return
	}

	if entry.WriteOnly {
		c.JSON(http.StatusMethodNotAllowed, gin.H{"error": "config is write only"})
		return
	}
	if entry.SuperuserOnly {
		claims, ok := GetAuthClaims(c)
		if !ok || !claims.Superuser {
			c.JSON(http.StatusForbidden, gin.H{"error": "superuser required"})
			return
		}
	}
	c.JSON(http.StatusOK, entry)
}

// SetConfig handles PUT /config/:key.
func (h *ConfigHandler) SetConfig(c *gin.Context) {
	var req struct {
		Value         string `json:"value"`
		WriteOnly     bool   `json:"write_only"`
		SuperuserOnly bool   `json:"superuser_only"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid set config request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	entry := domain.ConfigEntry{
		Key:           c.Param("key"),
		Value:         req.Value,
		WriteOnly:     req.WriteOnly,
		SuperuserOnly: req.SuperuserOnly,
	}
	if err := h.configs.Upsert(c.Request.Context(), entry); err != nil {
		h.logger.Error("set config failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not set config"})
		return
	}

	// Never echo a write-only value back.
	if entry.WriteOnly {
		entry.Value = ""
	}
	c.JSON(http.StatusOK, entry)
}
