package api

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"regexp"

	"toolbox/web-api/middleware"
	"toolbox/web-api/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ttsBody struct {
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

// ToolTTS synthesizes speech from text. Premium voices silently fall
// back to the default for free accounts, surfaced as a warning.
func (a *API) ToolTTS(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	sess := middleware.GetSession(c)

	var data ttsBody
	if err := c.ShouldBind(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	if data.Text == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Text field can't be empty",
			"requestID": requestID,
		})
		return
	}

	name, voice, downgraded, err := a.TTS.Synthesize(c.Request.Context(), data.Text, data.Voice, sess.Role)
	if err != nil {
		if errors.Is(err, service.ErrTextTooLong) {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":     fmt.Sprintf("Text too long! Maximum %v characters.", a.Cfg.TTS.MaxChars),
				"requestID": requestID,
			})
			return
		}

		c.JSON(http.StatusBadGateway, gin.H{
			"error":     "Error generating audio. Please try again later",
			"requestID": requestID,
		})

		zap.L().Error("Synthesis failed", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	resp := gin.H{
		"audio_file": name,
		"voice_name": voice.Name,
	}

	if downgraded {
		resp["warning"] = "Premium voices require a Paid account! Using the default voice."
	}

	c.JSON(http.StatusOK, resp)
}

// TTSVoices lists the available synthesis options
func (a *API) TTSVoices(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"voices": service.Voices(),
	})
}

var artifactNamePattern = regexp.MustCompile(`^tts_\d{14}_[0-9a-f]{12}\.mp3$`)

// TTSAudioServe streams a synthesized artifact from the audio
// directory. Names outside the artifact scheme are rejected before
// touching the filesystem.
func (a *API) TTSAudioServe(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	name := c.Param("name")
	if !artifactNamePattern.MatchString(name) {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid audio file name",
			"requestID": requestID,
		})
		return
	}

	c.Header("Content-Type", "audio/mpeg")
	c.File(filepath.Join(a.Cfg.Paths.Audio, name))
}
