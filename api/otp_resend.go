package api

import (
	"errors"
	"net/http"

	"toolbox/web-api/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// OTPResend re-issues the verification passcode for the email in the
// pending cookie. Already verified accounts get a conflict instead of
// a fresh code.
func (a *API) OTPResend(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	email, ok := a.pendingEmail(c, pendingVerifyCookie, pendingVerifyPurpose)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No verification in progress. Please register or login first",
			"requestID": requestID,
		})
		return
	}

	var user model.User
	if err := a.DB.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"error":     "user_not_found",
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to look up user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if user.IsVerified() {
		c.JSON(http.StatusConflict, gin.H{
			"error":     "Account is already verified",
			"requestID": requestID,
		})
		return
	}

	_, delivered, err := a.OTP.Issue(email, model.PurposeVerification)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to re-issue passcode", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	a.OTP.MaybeSweep()

	c.JSON(http.StatusOK, gin.H{
		"delivered": delivered,
		"message":   "A new verification code is on its way",
	})
}
