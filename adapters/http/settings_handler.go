package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	settingsUC "github.com/filipposta/legacy-premium-api/internal/application/usecase/settings"
	"github.com/filipposta/legacy-premium-api/pkg/apperror"
)

type SettingsHandler struct {
	settingsUseCase *settingsUC.SettingsUseCase
}

func NewSettingsHandler(uc *settingsUC.SettingsUseCase) *SettingsHandler {
	return &SettingsHandler{settingsUseCase: uc}
}

func (h *SettingsHandler) GetSettings(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("userID not found in context"))
		return
	}

	s, err := h.settingsUseCase.Get(c.Request.Context(), settingsUC.GetSettingsInput{UserID: userID})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, ToSettingsDTO(s))
}

func (h *SettingsHandler) UpdateSettings(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("userID not found in context"))
		return
	}

	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for settings update", err))
		return
	}

	s, err := h.settingsUseCase.Update(c.Request.Context(), settingsUC.UpdateSettingsInput{
		UserID:         userID,
		Notifications:  req.Notifications,
		Privacy:        req.Privacy,
		Theme:          req.Theme,
		Language:       req.Language,
		EmailUpdates:   req.EmailUpdates,
		DataCollection: req.DataCollection,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, ToSettingsDTO(s))
}
