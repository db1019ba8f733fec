package api

import (
	"net/http"
	"path/filepath"
	"strings"

	"toolbox/web-api/middleware"
	"toolbox/web-api/model"
	"toolbox/web-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserUpdate edits name, email, password and profile image of the
// logged in account. Password only changes when a new one is provided.
func (a *API) UserUpdate(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	sess := middleware.GetSession(c)

	name := strings.TrimSpace(c.PostForm("name"))
	email := strings.TrimSpace(c.PostForm("email"))
	newPassword := c.PostForm("new_password")
	confirm := c.PostForm("confirm_password")

	if name == "" || email == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Name and email are required",
			"requestID": requestID,
		})
		return
	}

	if err := validators.EmailValidator(email); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	// Make sure nobody else owns the new address
	var taken bool
	r := a.DB.Model(model.User{}).
		Select("count(*) > 0").
		Where("email = ? AND id != ?", email, sess.UserID).
		Find(&taken)
	if r.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to check email availability", zap.Error(r.Error), zap.String("requestID", requestID))
		return
	}

	if taken {
		c.JSON(http.StatusConflict, gin.H{
			"error":     "Email already in use by another account",
			"requestID": requestID,
		})
		return
	}

	updates := map[string]any{
		"name":  name,
		"email": email,
	}

	if newPassword != "" {
		if err := validators.PasswordPairValidator(newPassword, confirm); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
			return
		}

		hash, err := a.Argon.GenerateFromPassword(newPassword)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to hash password", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		updates["password_hash"] = hash
	}

	if fh, err := c.FormFile("profile_image"); err == nil && fh != nil {
		code, f, err := validators.FileValidator(fh, a.Cfg.MaxUploadSize, "image/")
		if err != nil {
			c.JSON(code, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
			return
		}

		path, err := a.saveUpload(f, fh.Filename, "profile")
		f.Close()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to save profile image", zap.Error(err), zap.String("requestID", requestID))
			return
		}

		updates["profile_image"] = filepath.Base(path)
	}

	err := a.DB.Model(&model.User{}).
		Where("id = ?", sess.UserID).
		Updates(updates).
		Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update profile", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":   "Profile updated successfully",
		"requestID": requestID,
	})
}
