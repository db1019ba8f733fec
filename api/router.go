// Package api contains all endpoints available
package api

import (
	"fmt"
	"time"

	"toolbox/web-api/config"
	"toolbox/web-api/db"
	"toolbox/web-api/middleware"
	"toolbox/web-api/security"
	"toolbox/web-api/service"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	ginzap "github.com/gin-contrib/zap"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

var store = persist.NewMemoryStore(time.Minute)

type API struct {
	Cfg    *config.Config
	DB     *gorm.DB
	Router *gin.Engine
	Argon  *security.ArgonHash
	OTP    *service.OTPService
	TTS    *service.TTSService
	STT    *service.STTService
	OCR    *service.OCRService
}

func NewRouter(cfg *config.Config) (*API, error) {
	a := &API{
		Cfg:   cfg,
		Argon: security.New(),
	}

	db, err := db.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}
	a.DB = db

	makeLogger(cfg.LogLevel)

	mailer := service.NewMailer(cfg)
	a.OTP = service.NewOTPService(cfg, db, mailer)
	a.TTS = service.NewTTSService(cfg, service.NewGoogleSynthesizer())
	a.STT = service.NewSTTService(cfg,
		service.NewFFmpegTranscoder(cfg.STT.FFmpegPath),
		service.NewGoogleRecognizer(cfg.STT.RecognizerURL, cfg.STT.RecognizerKey))
	a.OCR = service.NewOCRService(cfg, service.NewTesseractRunner(cfg.OCR.TesseractPath))

	router := gin.New()
	a.Router = router

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     []string{"http://localhost:5173"},
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true
	a.Router.MaxMultipartMemory = 5 << 20

	auth := middleware.NewAuthMiddleware(cfg, db)
	authLimiter := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: 5,
		Burst:             10,
	})

	main := router.Group("/api")
	{
		// HEAD /api/heartbeat 		-> Used to check if the server is alive
		main.HEAD("/heartbeat", a.Heartbeat)

		// HEAD /api/validate		-> Validates a JWT token
		main.HEAD("/validate", auth, a.Validate)
	}

	users := main.Group("/users", middleware.BodySizeLimiter(cfg.MaxUploadSize))
	{
		// GET /api/users 			-> Returns the logged in user's profile
		users.GET("", auth, a.UserFetch)

		// POST /api/users 			-> Registers a new user and issues a verification passcode
		users.POST("", authLimiter, a.UserRegister)

		// PATCH /api/users 			-> Updates name/email/password/profile image
		users.PATCH("", auth, a.UserUpdate)

		// POST /api/users/login 		-> Logs in a user and returns a JWT cookie
		users.POST("/login", authLimiter, a.UserLogin)

		// POST /api/users/logout 		-> Clears the auth cookies
		users.POST("/logout", a.UserLogout)

		// POST /api/users/verify-email 	-> Consumes a verification passcode
		users.POST("/verify-email", authLimiter, a.UserVerifyEmail)

		// POST /api/users/resend-otp 		-> Re-issues the verification passcode
		users.POST("/resend-otp", authLimiter, a.OTPResend)

		// POST /api/users/forgot-password 	-> Starts the password reset flow
		users.POST("/forgot-password", authLimiter, a.PasswordForgot)

		// POST /api/users/resend-reset-otp 	-> Re-issues the reset passcode
		users.POST("/resend-reset-otp", authLimiter, a.PasswordResetResend)

		// POST /api/users/reset-password 	-> Consumes a reset passcode and sets a new password
		users.POST("/reset-password", authLimiter, a.PasswordReset)
	}

	tools := main.Group("/tools", auth)
	{
		// POST /api/tools/summarize		-> Summarizes a block of text
		tools.POST("/summarize", middleware.BodySizeLimiter(1<<20), a.ToolSummarize)

		// GET /api/tools/tts/voices		-> Lists the available voices
		tools.GET("/tts/voices", cacheFor(300), a.TTSVoices)

		// POST /api/tools/tts			-> Synthesizes speech from text
		tools.POST("/tts", middleware.BodySizeLimiter(1<<20), a.ToolTTS)

		// GET /api/tools/tts/audio/:name	-> Serves a synthesized artifact
		tools.GET("/tts/audio/:name", a.TTSAudioServe)

		// POST /api/tools/stt			-> Transcribes an uploaded audio file
		tools.POST("/stt", middleware.BodySizeLimiter(cfg.MaxUploadSize), a.ToolSTT)

		// POST /api/tools/ocr			-> Extracts text from an uploaded image
		tools.POST("/ocr", middleware.BodySizeLimiter(cfg.MaxUploadSize), a.ToolOCR)
	}

	a.OTP.StartSweeper()

	return a, nil
}

func makeLogger(level string) {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	cfg.DisableStacktrace = true

	if lvl, err := zapcore.ParseLevel(level); err == nil {
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

func cacheFor(sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(store, time.Second*time.Duration(sec))
}
