package delivery

import (
	"net/http"

	"readerdash/internal/settings/usecase"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct {
	settingsUsecase usecase.SettingsUsecase
}

func NewSettingsHandler(settingsUsecase usecase.SettingsUsecase) *SettingsHandler {
	return &SettingsHandler{
		settingsUsecase: settingsUsecase,
	}
}

type updateTokenRequest struct {
	Token string `json:"token" binding:"required"`
}

// GetReadwiseSettings returns whether a token is configured, with a masked
// preview. The raw token never leaves the settings store.
func (h *SettingsHandler) GetReadwiseSettings(c *gin.Context) {
	configured, masked, err := h.settingsUsecase.TokenInfo()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"configured": configured,
		"token":      masked,
	})
}

func (h *SettingsHandler) UpdateReadwiseSettings(c *gin.Context) {
	var req updateTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.settingsUsecase.SetReadwiseToken(req.Token); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "readwise token updated"})
}

// TestReadwiseConnection validates the stored token against the upstream
// auth endpoint.
func (h *SettingsHandler) TestReadwiseConnection(c *gin.Context) {
	valid, err := h.settingsUsecase.TestToken(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if !valid {
		c.JSON(http.StatusOK, gin.H{"valid": false, "message": "token missing or rejected by readwise"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"valid": true})
}
