package api

import (
	"net/http"

	"toolbox/web-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ToolOCR extracts text from an uploaded image. The result is always
// a message: recognized text, the fixed no-text answer or an error
// description. The upload never outlives the request.
func (a *API) ToolOCR(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	fh, err := c.FormFile("image_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No image file provided",
			"requestID": requestID,
		})
		return
	}

	code, f, err := validators.FileValidator(fh, a.Cfg.MaxUploadSize, "image/")
	if err != nil {
		c.JSON(code, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	path, err := a.saveUpload(f, fh.Filename, "ocr")
	f.Close()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to save image upload", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"text": a.OCR.ExtractText(c.Request.Context(), path),
	})
}
