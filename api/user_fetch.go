package api

import (
	"net/http"

	"toolbox/web-api/middleware"
	"toolbox/web-api/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserFetch returns the logged in user's profile
func (a *API) UserFetch(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	sess := middleware.GetSession(c)

	var user model.User
	if err := a.DB.Where("id = ?", sess.UserID).First(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user": user,
	})
}
