package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	profileUC "github.com/filipposta/legacy-premium-api/internal/application/usecase/profile"
	viewsUC "github.com/filipposta/legacy-premium-api/internal/application/usecase/views"
	"github.com/filipposta/legacy-premium-api/pkg/apperror"
	"github.com/filipposta/legacy-premium-api/pkg/logger"
)

type ProfileHandler struct {
	profileUseCase *profileUC.ProfileUseCase
	logViewUseCase *viewsUC.LogViewUseCase
	logger         logger.Logger
}

func NewProfileHandler(uc *profileUC.ProfileUseCase, logView *viewsUC.LogViewUseCase, log logger.Logger) *ProfileHandler {
	return &ProfileHandler{
		profileUseCase: uc,
		logViewUseCase: logView,
		logger:         log,
	}
}

// GetUser serves a profile page. A successful read by someone else
// also records a ViewEvent; that write is best-effort and never fails
// the read.
func (h *ProfileHandler) GetUser(c *gin.Context) {
	targetID := c.Param("id")
	requesterID, _ := GetUserIDFromGinContext(c)

	output, err := h.profileUseCase.GetProfile(c.Request.Context(), profileUC.GetProfileInput{
		TargetID:    targetID,
		RequesterID: requesterID,
	})
	if err != nil {
		c.Error(err)
		return
	}

	if requesterID != "" && !output.IsOwner {
		err := h.logViewUseCase.Execute(c.Request.Context(), viewsUC.LogViewInput{
			ProfileID: targetID,
			ViewerID:  requesterID,
		})
		if err != nil {
			h.logger.Warn("failed to log profile view",
				zap.String("profile_id", targetID), zap.String("viewer_id", requesterID), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, ToProfileDTO(output.User, output.IsOwner))
}

func (h *ProfileHandler) GetMe(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("userID not found in context"))
		return
	}

	output, err := h.profileUseCase.GetProfile(c.Request.Context(), profileUC.GetProfileInput{
		TargetID:    userID,
		RequesterID: userID,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, ToProfileDTO(output.User, true))
}

func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("userID not found in context"))
		return
	}

	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for profile update", err))
		return
	}

	u, err := h.profileUseCase.UpdateProfile(c.Request.Context(), profileUC.UpdateProfileInput{
		UserID:      userID,
		DisplayName: req.DisplayName,
		Bio:         req.Bio,
		Location:    req.Location,
		Website:     req.Website,
		Nationality: req.Nationality,
		Age:         req.Age,
		Privacy:     req.Privacy,
		IsAdult:     req.IsAdult,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, ToProfileDTO(u, true))
}

func (h *ProfileHandler) UploadAvatar(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("userID not found in context"))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.Error(apperror.NewInvalidInput("'file' is required", err))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		c.Error(apperror.NewInternal("failed to open file", err))
		return
	}
	defer file.Close()

	url, err := h.profileUseCase.UpdateAvatar(c.Request.Context(), profileUC.UpdateAvatarInput{
		UserID: userID,
		File:   file,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile_pic": url})
}
