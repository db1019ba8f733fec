package api

import (
	"net/http"
	"strings"

	"toolbox/web-api/summarize"

	"github.com/gin-gonic/gin"
)

type summarizeBody struct {
	Text string `json:"text"`
}

// ToolSummarize condenses a block of text. The ranking strategy is
// chosen automatically from the input length, there is no user facing
// method selection.
func (a *API) ToolSummarize(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data summarizeBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	text := strings.TrimSpace(data.Text)
	if text == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Text field can't be empty",
			"requestID": requestID,
		})
		return
	}

	method := summarize.MethodFor(len(strings.Fields(text)))

	c.JSON(http.StatusOK, gin.H{
		"summary": summarize.WithMethod(text, method),
		"method":  method.String(),
	})
}
