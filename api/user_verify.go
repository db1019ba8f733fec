package api

import (
	"net/http"
	"strings"

	"toolbox/web-api/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type verifyBody struct {
	Code string `json:"code"`
}

// UserVerifyEmail consumes a verification passcode for the email in
// the pending cookie and flips the account's verified flag
func (a *API) UserVerifyEmail(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	email, ok := a.pendingEmail(c, pendingVerifyCookie, pendingVerifyPurpose)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No verification in progress. Please register or login first",
			"requestID": requestID,
		})
		return
	}

	var data verifyBody
	if err := c.ShouldBind(&data); err != nil || strings.TrimSpace(data.Code) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No verification code provided",
			"requestID": requestID,
		})
		return
	}

	ok, err := a.OTP.Verify(email, strings.TrimSpace(data.Code), model.PurposeVerification)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to verify passcode", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Code invalid or expired",
			"requestID": requestID,
		})
		return
	}

	err = a.DB.Model(&model.User{}).
		Where("email = ?", email).
		Update("verified", true).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Failed to validate user",
			"requestID": requestID,
		})

		zap.L().Error("Failed to mark user verified", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	a.clearPendingCookie(c, pendingVerifyCookie)
	a.OTP.MaybeSweep()

	c.JSON(http.StatusOK, gin.H{
		"message":   "Email verified successfully. You can log in now",
		"requestID": requestID,
	})
}
