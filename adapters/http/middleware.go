package http

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	authUC "github.com/filipposta/legacy-premium-api/internal/application/usecase/auth"
	"github.com/filipposta/legacy-premium-api/pkg/apperror"
	"github.com/filipposta/legacy-premium-api/pkg/auth"
	"github.com/filipposta/legacy-premium-api/pkg/logger"
)

const (
	GinContextKeyUserID   = "userID"
	GinContextKeyEmail    = "userEmail"
	GinContextKeyTokenJTI = "tokenJTI"
	GinContextKeyTokenExp = "tokenExp"
)

// AuthMiddleware rejects requests without a valid, unrevoked bearer
// token. Expired or revoked sessions get 401, which the client treats
// as "go sign in again".
func AuthMiddleware(jwtSvc *auth.JWTService, tokens authUC.TokenStore, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := claimsFromRequest(c, jwtSvc)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}

		revoked, err := tokens.IsSessionRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			log.Warn("cannot check session revocation", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "cannot verify session"})
			return
		}
		if revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "session has been signed out"})
			return
		}

		setSessionContext(c, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the identity when a valid token is
// present and stays silent otherwise. Public profile reads use it.
func OptionalAuthMiddleware(jwtSvc *auth.JWTService, tokens authUC.TokenStore, log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, err := claimsFromRequest(c, jwtSvc)
		if err != nil {
			c.Next()
			return
		}
		if revoked, err := tokens.IsSessionRevoked(c.Request.Context(), claims.ID); err != nil || revoked {
			if err != nil {
				log.Warn("cannot check session revocation", zap.Error(err))
			}
			c.Next()
			return
		}
		setSessionContext(c, claims)
		c.Next()
	}
}

func claimsFromRequest(c *gin.Context, jwtSvc *auth.JWTService) (*auth.SessionClaims, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, errors.New("Authorization header is required")
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return nil, errors.New("Invalid token format")
	}

	claims, err := jwtSvc.ValidateToken(tokenString)
	if err != nil {
		return nil, errors.New("Invalid or expired token")
	}
	return claims, nil
}

func setSessionContext(c *gin.Context, claims *auth.SessionClaims) {
	c.Set(GinContextKeyUserID, claims.UserID)
	c.Set(GinContextKeyEmail, claims.Email)
	c.Set(GinContextKeyTokenJTI, claims.ID)
	if claims.ExpiresAt != nil {
		c.Set(GinContextKeyTokenExp, claims.ExpiresAt.Time)
	}
}

func GetUserIDFromGinContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(GinContextKeyUserID)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

// sessionTTL reports how long the current token stays valid, so a
// revocation entry can be sized to outlive it.
func sessionTTL(c *gin.Context) time.Duration {
	v, ok := c.Get(GinContextKeyTokenExp)
	if !ok {
		return 24 * time.Hour
	}
	exp, ok := v.(time.Time)
	if !ok {
		return 24 * time.Hour
	}
	ttl := time.Until(exp)
	if ttl < time.Minute {
		ttl = time.Minute
	}
	return ttl
}

// ErrorMiddleware turns use-case errors attached to the context into
// one JSON response, mapping the apperror taxonomy to status codes.
func ErrorMiddleware(log logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		last := c.Errors.Last()
		if last == nil {
			return
		}
		err := last.Err

		status := apperror.ToHTTPStatus(err)
		if status >= http.StatusInternalServerError {
			log.Error("request failed", err, zap.String("path", c.FullPath()))
		} else {
			log.Debug("request rejected", zap.String("path", c.FullPath()), zap.String("reason", err.Error()))
		}

		var appErr *apperror.AppError
		if errors.As(err, &appErr) {
			c.JSON(status, appErr.ToJSON())
			return
		}
		c.JSON(status, gin.H{"error": "internal server error"})
	}
}
