package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	authUC "github.com/filipposta/legacy-premium-api/internal/application/usecase/auth"
	"github.com/filipposta/legacy-premium-api/pkg/apperror"
)

type AuthHandler struct {
	registerUC *authUC.RegisterUseCase
	loginUC    *authUC.LoginUseCase
	logoutUC   *authUC.LogoutUseCase
	resetUC    *authUC.ResetPasswordUseCase
	deleteUC   *authUC.DeleteAccountUseCase
}

func NewAuthHandler(
	registerUC *authUC.RegisterUseCase,
	loginUC *authUC.LoginUseCase,
	logoutUC *authUC.LogoutUseCase,
	resetUC *authUC.ResetPasswordUseCase,
	deleteUC *authUC.DeleteAccountUseCase,
) *AuthHandler {
	return &AuthHandler{
		registerUC: registerUC,
		loginUC:    loginUC,
		logoutUC:   logoutUC,
		resetUC:    resetUC,
		deleteUC:   deleteUC,
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for registration", err))
		return
	}

	output, err := h.registerUC.Execute(c.Request.Context(), authUC.RegisterInput{
		Email:       req.Email,
		Password:    req.Password,
		Username:    req.Username,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"access_token": output.AccessToken,
		"user_id":      output.UserID,
	})
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for login", err))
		return
	}

	output, err := h.loginUC.Execute(c.Request.Context(), authUC.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"access_token": output.AccessToken,
		"user_id":      output.UserID,
		"display_name": output.DisplayName,
	})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	userID, _ := GetUserIDFromGinContext(c)
	jti := c.GetString(GinContextKeyTokenJTI)

	err := h.logoutUC.Execute(c.Request.Context(), authUC.LogoutInput{
		UserID: userID,
		JTI:    jti,
		TTL:    sessionTTL(c),
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "signed out"})
}

func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req requestResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for password reset", err))
		return
	}

	if err := h.resetUC.Request(c.Request.Context(), authUC.RequestResetInput{Email: req.Email}); err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "reset email dispatched"})
}

func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req confirmResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for password reset confirmation", err))
		return
	}

	err := h.resetUC.Confirm(c.Request.Context(), authUC.ConfirmResetInput{
		Token:       req.Token,
		NewPassword: req.NewPassword,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "password updated"})
}

func (h *AuthHandler) DeleteAccount(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewPermissionDenied("userID not found in context"))
		return
	}

	var req deleteAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput("invalid JSON body for account deletion", err))
		return
	}

	err := h.deleteUC.Execute(c.Request.Context(), authUC.DeleteAccountInput{
		UserID:   userID,
		Password: req.Password,
		JTI:      c.GetString(GinContextKeyTokenJTI),
		TokenTTL: sessionTTL(c),
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "account deleted"})
}
