package api

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"toolbox/web-api/security"
	"toolbox/web-api/util"

	"github.com/gin-gonic/gin"
)

const (
	authCookie           = "auth_token"
	pendingVerifyCookie  = "pending_verification"
	pendingResetCookie   = "pending_reset"
	authTokenTTL         = 30 * 24 * time.Hour
	pendingTokenTTL      = time.Hour
	pendingVerifyPurpose = "verification"
	pendingResetPurpose  = "password_reset"
)

func (a *API) setAuthCookies(c *gin.Context, userID string) error {
	token, err := security.MakeAuthToken(userID, a.Cfg.JWTSecret, authTokenTTL)
	if err != nil {
		return err
	}

	maxAge := int(authTokenTTL.Seconds())
	c.SetCookie(authCookie, token, maxAge, "/", "", a.Cfg.Host.SSLEnabled, true)
	c.SetCookie("logged_in", "1", maxAge, "/", "", a.Cfg.Host.SSLEnabled, false)

	return nil
}

func (a *API) clearAuthCookies(c *gin.Context) {
	c.SetCookie(authCookie, "", -1, "/", "", a.Cfg.Host.SSLEnabled, true)
	c.SetCookie("logged_in", "", -1, "/", "", a.Cfg.Host.SSLEnabled, false)
}

func (a *API) setPendingCookie(c *gin.Context, name, email, purpose string) error {
	token, err := security.MakePendingToken(email, purpose, a.Cfg.JWTSecret, pendingTokenTTL)
	if err != nil {
		return err
	}

	c.SetCookie(name, token, int(pendingTokenTTL.Seconds()), "/", "", a.Cfg.Host.SSLEnabled, true)
	return nil
}

func (a *API) clearPendingCookie(c *gin.Context, name string) {
	c.SetCookie(name, "", -1, "/", "", a.Cfg.Host.SSLEnabled, true)
}

// pendingEmail extracts the email currently going through the named
// flow from its purpose-scoped cookie
func (a *API) pendingEmail(c *gin.Context, cookieName, purpose string) (string, bool) {
	token, err := c.Cookie(cookieName)
	if err != nil {
		return "", false
	}

	email, err := security.EmailFromPendingToken(token, purpose, a.Cfg.JWTSecret)
	if err != nil {
		return "", false
	}

	return email, true
}

// saveUpload persists a validated multipart file under the uploads
// directory with the transient <prefix>_<timestamp>_<name> scheme and
// returns the full path
func (a *API) saveUpload(f multipart.File, original, prefix string) (string, error) {
	name := util.UploadName(prefix, original)
	path := filepath.Join(a.Cfg.Paths.Uploads, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create upload file, %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, f); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to write upload file, %w", err)
	}

	return path, nil
}
