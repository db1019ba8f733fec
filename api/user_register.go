package api

import (
	"net/http"
	"path/filepath"
	"strings"

	"toolbox/web-api/model"
	"toolbox/web-api/validators"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
)

const idCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

func (a *API) UserRegister(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	name := strings.TrimSpace(c.PostForm("name"))
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	confirm := c.PostForm("confirm_password")
	role := c.DefaultPostForm("role", model.RoleFree)

	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Name field can't be empty",
			"requestID": requestID,
		})
		return
	}

	if err := validators.EmailValidator(email); err != nil {
		zap.L().Debug("Invalid email", zap.Error(err), zap.String("requestID", requestID))

		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	if err := validators.PasswordPairValidator(password, confirm); err != nil {
		zap.L().Debug("Invalid password", zap.Error(err), zap.String("requestID", requestID))

		c.JSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	if role != model.RoleFree && role != model.RolePaid {
		role = model.RoleFree
	}

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

		zap.L().Error("Failed to check if user is registered", zap.Error(r.Error), zap.String("requestID", requestID))
		return
	}

	if found {
		c.JSON(http.StatusConflict, gin.H{
			"error":     "This email is already registered. Please login or use a different email",
			"requestID": requestID,
		})
		return
	}

	var profileImage *string
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

		imageName := filepath.Base(path)
		profileImage = &imageName
	}

	hash, err := a.Argon.GenerateFromPassword(password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to hash password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	userID, err := gonanoid.Generate(idCharset, 16)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate user ID", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	verified := false

	if err := a.DB.Create(&model.User{
		ID:           userID,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		ProfileImage: profileImage,
		Verified:     &verified,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	// Only a successfully created account gets a passcode
	_, delivered, err := a.OTP.Issue(email, model.PurposeVerification)
	if err != nil {
		zap.L().Error("Failed to issue verification passcode", zap.Error(err), zap.String("requestID", requestID))
	}

	if err := a.setPendingCookie(c, pendingVerifyCookie, email, pendingVerifyPurpose); err != nil {
		zap.L().Error("Failed to set pending cookie", zap.Error(err), zap.String("requestID", requestID))
	}

	a.OTP.MaybeSweep()

	c.JSON(http.StatusOK, gin.H{
		"userID":    userID,
		"delivered": delivered,
		"message":   "Registration successful. Check your mail for the verification code",
	})
}
