package api

import (
	"net/http"
	"strings"

	"toolbox/web-api/model"
	"toolbox/web-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type forgotBody struct {
	Email string `json:"email"`
}

// PasswordForgot starts the reset flow. The response never reveals
// whether the address has an account.
func (a *API) PasswordForgot(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data forgotBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	email := strings.TrimSpace(data.Email)
	if err := validators.EmailValidator(email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	a.issueResetCode(c, email, requestID)
}

// PasswordResetResend re-issues the reset passcode for the email in
// the pending cookie
func (a *API) PasswordResetResend(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	email, ok := a.pendingEmail(c, pendingResetCookie, pendingResetPurpose)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No password reset in progress",
			"requestID": requestID,
		})
		return
	}

	a.issueResetCode(c, email, requestID)
}

func (a *API) issueResetCode(c *gin.Context, email, requestID string) {
	var found bool

	r := a.DB.Model(model.User{}).
		Select("count(*) > 0").
		Where("email = ?", email).
		Find(&found)
	if r.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to look up user", zap.Error(r.Error), zap.String("requestID", requestID))
		return
	}

	// Codes are only issued for real accounts but the cookie and the
	// response are identical either way
	if found {
		if _, _, err := a.OTP.Issue(email, model.PurposePasswordReset); err != nil {
			zap.L().Error("Failed to issue reset passcode", zap.Error(err), zap.String("requestID", requestID))
		}
	}

	if err := a.setPendingCookie(c, pendingResetCookie, email, pendingResetPurpose); err != nil {
		zap.L().Error("Failed to set pending cookie", zap.Error(err), zap.String("requestID", requestID))
	}

	a.OTP.MaybeSweep()

	c.JSON(http.StatusOK, gin.H{
		"message": "If that address has an account, a reset code has been sent",
	})
}

type resetBody struct {
	Code            string `json:"code"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// PasswordReset consumes a reset passcode and stores the new password
func (a *API) PasswordReset(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	email, ok := a.pendingEmail(c, pendingResetCookie, pendingResetPurpose)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No password reset in progress",
			"requestID": requestID,
		})
		return
	}

	var data resetBody
	if err := c.ShouldBind(&data); err != nil || strings.TrimSpace(data.Code) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No reset code provided",
			"requestID": requestID,
		})
		return
	}

	if err := validators.PasswordPairValidator(data.Password, data.ConfirmPassword); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	ok, err := a.OTP.Verify(email, strings.TrimSpace(data.Code), model.PurposePasswordReset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to verify reset passcode", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Code invalid or expired",
			"requestID": requestID,
		})
		return
	}

	hash, err := a.Argon.GenerateFromPassword(data.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to hash password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	err = a.DB.Model(&model.User{}).
		Where("email = ?", email).
		Update("password_hash", hash).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	a.clearPendingCookie(c, pendingResetCookie)
	a.OTP.MaybeSweep()

	c.JSON(http.StatusOK, gin.H{
		"message":   "Password updated. You can log in now",
		"requestID": requestID,
	})
}
