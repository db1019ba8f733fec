package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (a *API) UserLogout(c *gin.Context) {
	a.clearAuthCookies(c)

	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}
