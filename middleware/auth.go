package middleware

import (
	"errors"
	"net/http"

	"toolbox/web-api/config"
	"toolbox/web-api/model"
	"toolbox/web-api/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const sessionKey = "session"

// Session is the authenticated identity attached to the gin context.
// Anonymous requests never get one, handlers behind NewAuthMiddleware
// can rely on it being present.
type Session struct {
	UserID       string
	Name         string
	Email        string
	Role         string
	ProfileImage *string
}

// GetSession returns the session set by the auth middleware
func GetSession(c *gin.Context) *Session {
	return c.MustGet(sessionKey).(*Session)
}

// NewAuthMiddleware validates the auth cookie, loads the account and
// attaches a typed Session to the context. Unverified accounts are
// bounced back into the verification flow, except legacy rows that
// predate the verification flag which pass through.
func NewAuthMiddleware(cfg *config.Config, d *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.MustGet("requestID").(string)

		tokenStr, err := c.Cookie("auth_token")
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "not_logged_in",
				"requestID": requestID,
			})
			return
		}

		userID, err := security.UserIDFromAuthToken(tokenStr, cfg.JWTSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "token_invalid",
				"requestID": requestID,
			})
			return
		}

		var user model.User
		err = d.Where("id = ?", userID).First(&user).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
					"error":     "user_not_found",
					"requestID": requestID,
				})
				return
			}

			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "internal_server_error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to check if user exists", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		if !user.IsVerified() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":     "account_not_verified",
				"requestID": requestID,
			})
			return
		}

		c.Set(sessionKey, &Session{
			UserID:       user.ID,
			Name:         user.Name,
			Email:        user.Email,
			Role:         user.Role,
			ProfileImage: user.ProfileImage,
		})
		c.Next()
	}
}
