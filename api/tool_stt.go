package api

import (
	"errors"
	"net/http"

	"toolbox/web-api/service"
	"toolbox/web-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ToolSTT transcribes an uploaded audio file. The upload is transient:
// it and any transcoded intermediate are gone by the time the response
// is written, whatever the outcome.
func (a *API) ToolSTT(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	fh, err := c.FormFile("audio_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "No audio file provided",
			"requestID": requestID,
		})
		return
	}

	// webm/mp4 uploads sniff as video containers but usually carry an
	// audio track, ffmpeg sorts it out
	code, f, err := validators.FileValidator(fh, a.Cfg.MaxUploadSize, "audio/", "video/")
	if err != nil {
		c.JSON(code, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	path, err := a.saveUpload(f, fh.Filename, "stt")
	f.Close()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to save audio upload", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	text, err := a.STT.Transcribe(c.Request.Context(), path)
	if err != nil {
		var reqErr *service.RequestError

		switch {
		case errors.Is(err, service.ErrConversion):
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     "Error converting audio file. Please try a different format.",
				"requestID": requestID,
			})
		case errors.Is(err, service.ErrNoSpeech):
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":     "Could not understand audio. Please try with clearer speech.",
				"requestID": requestID,
			})
		case errors.As(err, &reqErr):
			c.JSON(http.StatusBadGateway, gin.H{
				"error":     reqErr.Error(),
				"requestID": requestID,
			})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Transcription failed", zap.Error(err), zap.String("requestID", requestID))
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"text": text,
	})
}
